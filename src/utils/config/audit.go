package config

import (
	"github.com/spf13/viper"
)

type Audit struct {
	// Num of workers that insert audit entries
	MaxWorkers int

	// Max num of pending inserts in the worker queue
	MaxQueueSize int
}

func setAuditDefaults() {
	viper.SetDefault("Audit.MaxWorkers", "2")
	viper.SetDefault("Audit.MaxQueueSize", "100")
}
