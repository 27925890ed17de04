package model

import "database/sql/driver"

// CREATE TYPE offer_state AS ENUM ('open', 'closed', 'cancelled');
type OfferState string

const (
	OfferStateOpen      OfferState = "open"
	OfferStateClosed    OfferState = "closed"
	OfferStateCancelled OfferState = "cancelled"
)

// Closed offers may reopen when a transfer cancellation returns reserved
// units to them. Cancelled is terminal.
func (self OfferState) CanTransitionTo(next OfferState) bool {
	switch self {
	case OfferStateOpen:
		return next == OfferStateClosed || next == OfferStateCancelled
	case OfferStateClosed:
		return next == OfferStateOpen || next == OfferStateCancelled
	default:
		return false
	}
}

func (self *OfferState) Scan(value interface{}) error {
	*self = OfferState(value.(string))
	return nil
}

func (self OfferState) Value() (driver.Value, error) {
	return string(self), nil
}
