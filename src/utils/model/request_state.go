package model

import "database/sql/driver"

// CREATE TYPE request_state AS ENUM ('pending', 'accepted', 'rejected', 'cancelled', 'partial');
type RequestState string

const (
	RequestStatePending   RequestState = "pending"
	RequestStateAccepted  RequestState = "accepted"
	RequestStateRejected  RequestState = "rejected"
	RequestStateCancelled RequestState = "cancelled"
	RequestStatePartial   RequestState = "partial"
)

func (self RequestState) CanTransitionTo(next RequestState) bool {
	switch self {
	case RequestStatePending:
		return next == RequestStateAccepted || next == RequestStateRejected ||
			next == RequestStateCancelled || next == RequestStatePartial
	case RequestStatePartial:
		return next == RequestStateAccepted || next == RequestStateCancelled
	default:
		return false
	}
}

func (self *RequestState) Scan(value interface{}) error {
	*self = RequestState(value.(string))
	return nil
}

func (self RequestState) Value() (driver.Value, error) {
	return string(self), nil
}
