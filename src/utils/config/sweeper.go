package config

import (
	"time"

	"github.com/spf13/viper"
)

type Sweeper struct {
	// How often pending requests are checked for expiry
	RequestInterval time.Duration

	// Pending requests older than this get auto-cancelled
	RequestMaxAge time.Duration

	// How often inventory is checked for expired units
	InventoryInterval time.Duration

	// How often stuck transfers are checked
	WatchdogInterval time.Duration

	// Transfers stuck in created longer than this get force-cancelled
	TransferCreatedMaxAge time.Duration

	// Transfers stuck in in_transit longer than this get force-cancelled
	TransferTransitMaxAge time.Duration

	// Max offers processed by one inventory sweep tick
	MaxOffersPerRun int

	// Max transfers force-cancelled by one watchdog tick
	MaxTransfersPerRun int
}

func setSweeperDefaults() {
	viper.SetDefault("Sweeper.RequestInterval", "24h")
	viper.SetDefault("Sweeper.RequestMaxAge", "168h")
	viper.SetDefault("Sweeper.InventoryInterval", "24h")
	viper.SetDefault("Sweeper.WatchdogInterval", "3h")
	viper.SetDefault("Sweeper.TransferCreatedMaxAge", "48h")
	viper.SetDefault("Sweeper.TransferTransitMaxAge", "168h")
	viper.SetDefault("Sweeper.MaxOffersPerRun", "100")
	viper.SetDefault("Sweeper.MaxTransfersPerRun", "100")
}
