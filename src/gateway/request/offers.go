package request

import "github.com/google/uuid"

type CreateOffer struct {
	UnitIDs []uuid.UUID `json:"unit_ids" binding:"required,min=1"`
	Note    string      `json:"note"`
}

type PrecheckOffer struct {
	UnitIDs []uuid.UUID `json:"unit_ids" binding:"required,min=1"`
}

// Claim units from an open offer. An empty unit list takes everything
// still claimable.
type AllocateFromOffer struct {
	UnitIDs []uuid.UUID `json:"unit_ids"`
	Note    string      `json:"note"`
}

type UpdateState struct {
	State string `json:"state" binding:"required"`
}
