package model

import "errors"

// Domain error taxonomy. Operations detect these before or during the
// transaction and roll back every write; the gateway maps them to HTTP statuses.
var (
	// Missing or malformed fields, caller error, no state change
	ErrInvalidInput = errors.New("invalid input")

	// Referenced units or requests don't satisfy ownership, availability
	// or homogeneity constraints
	ErrInvalidSelection = errors.New("invalid selection")

	// Target entity is not in the required state for the requested operation
	ErrConflict = errors.New("conflict")

	// Transfer is not in the state the transition requires
	ErrInvalidState = errors.New("invalid state")

	// Actor's facility lacks the role required for this transition
	ErrForbidden = errors.New("forbidden")

	ErrNotFound = errors.New("not found")
)
