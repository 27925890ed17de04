package model

import "github.com/google/uuid"

// Actor is the authenticated context supplied by the external identity
// resolver. The engine trusts it as-is and performs no credential validation.
type Actor struct {
	UserID     uuid.NullUUID
	FacilityID uuid.UUID
	Role       string
}
