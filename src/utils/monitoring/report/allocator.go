package report

import (
	"go.uber.org/atomic"
)

type AllocatorErrors struct {
	SelectionRejected atomic.Uint64 `json:"selection_rejected"`
	ConflictRejected  atomic.Uint64 `json:"conflict_rejected"`
	DbError           atomic.Uint64 `json:"db_error"`
}

type AllocatorState struct {
	OffersCreated         atomic.Uint64 `json:"offers_created"`
	UnitsReserved         atomic.Uint64 `json:"units_reserved"`
	TransfersFromRequest  atomic.Uint64 `json:"transfers_from_request"`
	TransfersFromOffer    atomic.Uint64 `json:"transfers_from_offer"`
	ShadowOffersCreated   atomic.Uint64 `json:"shadow_offers_created"`
	ShadowRequestsCreated atomic.Uint64 `json:"shadow_requests_created"`
}

type AllocatorReport struct {
	State  AllocatorState  `json:"state"`
	Errors AllocatorErrors `json:"errors"`
}
