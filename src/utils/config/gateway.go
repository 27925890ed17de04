package config

import (
	"time"

	"github.com/spf13/viper"
)

type Gateway struct {
	// Address the facility-facing REST API binds to
	ListenAddress string

	// Max duration of a single request
	ServerRequestTimeout time.Duration

	// Page size cap for list endpoints
	MaxPageSize int

	// Default page size for list endpoints
	DefaultPageSize int
}

func setGatewayDefaults() {
	viper.SetDefault("Gateway.ListenAddress", "0.0.0.0:4000")
	viper.SetDefault("Gateway.ServerRequestTimeout", "30s")
	viper.SetDefault("Gateway.MaxPageSize", "100")
	viper.SetDefault("Gateway.DefaultPageSize", "20")
}
