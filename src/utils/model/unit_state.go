package model

import "database/sql/driver"

// CREATE TYPE unit_state AS ENUM ('available', 'reserved', 'in_transit', 'transferred', 'expired');
type UnitState string

const (
	UnitStateAvailable   UnitState = "available"
	UnitStateReserved    UnitState = "reserved"
	UnitStateInTransit   UnitState = "in_transit"
	UnitStateTransferred UnitState = "transferred"

	// Terminal, only ever written to the archive table
	UnitStateExpired UnitState = "expired"
)

func (self *UnitState) Scan(value interface{}) error {
	*self = UnitState(value.(string))
	return nil
}

func (self UnitState) Value() (driver.Value, error) {
	return string(self), nil
}
