package report

import (
	"go.uber.org/atomic"
)

type NotifierErrors struct {
	QueueFull    atomic.Uint64 `json:"queue_full"`
	InsertError  atomic.Uint64 `json:"insert_error"`
	PublishError atomic.Uint64 `json:"publish_error"`
	WebhookError atomic.Uint64 `json:"webhook_error"`
}

type NotifierState struct {
	EventsQueued         atomic.Uint64 `json:"events_queued"`
	NotificationsWritten atomic.Uint64 `json:"notifications_written"`
	RedisPublished       atomic.Uint64 `json:"redis_published"`
	WebhooksDelivered    atomic.Uint64 `json:"webhooks_delivered"`
}

type NotifierReport struct {
	State  NotifierState  `json:"state"`
	Errors NotifierErrors `json:"errors"`
}
