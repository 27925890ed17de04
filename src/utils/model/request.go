package model

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

const TableRequest = "requests"

type Request struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	// Requesting facility
	FacilityID uuid.UUID `gorm:"type:uuid; not null; index"`

	ComponentType string `gorm:"not null"`
	BloodGroup    string `gorm:"not null"`
	Rh            string `gorm:"not null"`
	Filtered      bool   `gorm:"not null"`
	Irradiated    bool   `gorm:"not null"`

	// Units still needed. Decremented by partial allocations, always >= 0.
	Quantity int `gorm:"not null; check:quantity >= 0"`

	Urgent bool `gorm:"not null; default:false"`
	Note   sql.NullString

	// Set on requests synthesized by the allocator when an offer is accepted
	// with no matching pending request. Hidden from pending listings.
	Shadow bool `gorm:"not null; default:false"`

	State RequestState `gorm:"not null; type:request_state; index"`

	CreatedByID uuid.NullUUID `gorm:"type:uuid"`
	CreatedAt   time.Time     `gorm:"index"`
}

func (Request) TableName() string {
	return TableRequest
}

func (self *Request) Spec() Spec {
	return Spec{
		ComponentType: self.ComponentType,
		BloodGroup:    self.BloodGroup,
		Rh:            self.Rh,
		Filtered:      self.Filtered,
		Irradiated:    self.Irradiated,
	}
}
