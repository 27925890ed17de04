package report

import (
	"go.uber.org/atomic"
)

type TransferErrors struct {
	ForbiddenRejected    atomic.Uint64 `json:"forbidden_rejected"`
	InvalidStateRejected atomic.Uint64 `json:"invalid_state_rejected"`
	DbError              atomic.Uint64 `json:"db_error"`
}

type TransferState struct {
	Sent           atomic.Uint64 `json:"sent"`
	Received       atomic.Uint64 `json:"received"`
	Cancelled      atomic.Uint64 `json:"cancelled"`
	OffersReopened atomic.Uint64 `json:"offers_reopened"`
}

type TransferReport struct {
	State  TransferState  `json:"state"`
	Errors TransferErrors `json:"errors"`
}
