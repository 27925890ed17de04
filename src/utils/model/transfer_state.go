package model

import "database/sql/driver"

// CREATE TYPE transfer_state AS ENUM ('created', 'in_transit', 'received', 'cancelled');
type TransferState string

const (
	TransferStateCreated   TransferState = "created"
	TransferStateInTransit TransferState = "in_transit"
	TransferStateReceived  TransferState = "received"
	TransferStateCancelled TransferState = "cancelled"
)

// State only ever moves forward along created -> in_transit -> received,
// or diverts once to cancelled. No transition is reachable twice.
func (self TransferState) CanTransitionTo(next TransferState) bool {
	switch self {
	case TransferStateCreated:
		return next == TransferStateInTransit || next == TransferStateCancelled
	case TransferStateInTransit:
		return next == TransferStateReceived || next == TransferStateCancelled
	default:
		return false
	}
}

func (self TransferState) IsTerminal() bool {
	return self == TransferStateReceived || self == TransferStateCancelled
}

func (self *TransferState) Scan(value interface{}) error {
	*self = TransferState(value.(string))
	return nil
}

func (self TransferState) Value() (driver.Value, error) {
	return string(self), nil
}
