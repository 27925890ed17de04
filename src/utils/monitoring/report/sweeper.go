package report

import (
	"go.uber.org/atomic"
)

type SweeperErrors struct {
	RequestExpiryError   atomic.Uint64 `json:"request_expiry_error"`
	InventoryExpiryError atomic.Uint64 `json:"inventory_expiry_error"`
	WatchdogError        atomic.Uint64 `json:"watchdog_error"`
}

type SweeperState struct {
	RequestsExpired         atomic.Uint64 `json:"requests_expired"`
	OffersCancelledByExpiry atomic.Uint64 `json:"offers_cancelled_by_expiry"`
	UnitsArchived           atomic.Uint64 `json:"units_archived"`
	UnitsReleased           atomic.Uint64 `json:"units_released"`
	TransfersForceCancelled atomic.Uint64 `json:"transfers_force_cancelled"`
}

type SweeperReport struct {
	State  SweeperState  `json:"state"`
	Errors SweeperErrors `json:"errors"`
}
