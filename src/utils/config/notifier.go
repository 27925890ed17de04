package config

import (
	"time"

	"github.com/spf13/viper"
)

type Notifier struct {
	// Capacity of the in-memory event queue between commit and delivery
	QueueSize int

	// How many events are written to the inbox in one batch
	BatchSize int

	// Max time events wait in the dispatcher before being flushed
	FlushInterval time.Duration

	// Webhook endpoint events are POSTed to. Empty disables webhook delivery.
	WebhookUrl string

	// Webhook request timeout
	WebhookTimeout time.Duration

	// Redis channel events are published on. Empty disables publishing.
	RedisChannelName string

	// Delivery backoff configuration, 0 is no limit
	MaxElapsedTime time.Duration
	MaxInterval    time.Duration

	// How long facility contact rows are cached
	ContactCacheTTL time.Duration
}

func setNotifierDefaults() {
	viper.SetDefault("Notifier.QueueSize", "100")
	viper.SetDefault("Notifier.BatchSize", "20")
	viper.SetDefault("Notifier.FlushInterval", "5s")
	viper.SetDefault("Notifier.WebhookUrl", "")
	viper.SetDefault("Notifier.WebhookTimeout", "10s")
	viper.SetDefault("Notifier.RedisChannelName", "hemolink:events")
	viper.SetDefault("Notifier.MaxElapsedTime", "5m")
	viper.SetDefault("Notifier.MaxInterval", "30s")
	viper.SetDefault("Notifier.ContactCacheTTL", "10m")
}
