package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/xid"
)

const TableUnit = "units"

type Unit struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	ComponentType string    `gorm:"not null"`
	BloodGroup    string    `gorm:"not null"`
	Rh            string    `gorm:"not null"`
	Filtered      bool      `gorm:"not null"`
	Irradiated    bool      `gorm:"not null"`

	DrawnAt   time.Time `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null; index"`

	// Human-facing code printed on the bag label
	TrackingCode string `gorm:"not null; uniqueIndex"`

	// Current custody
	FacilityID uuid.UUID `gorm:"type:uuid; not null; index"`

	State UnitState `gorm:"not null; type:unit_state"`

	CreatedByID uuid.NullUUID `gorm:"type:uuid"`
	CreatedAt   time.Time
}

func (Unit) TableName() string {
	return TableUnit
}

func (self *Unit) Spec() Spec {
	return Spec{
		ComponentType: self.ComponentType,
		BloodGroup:    self.BloodGroup,
		Rh:            self.Rh,
		Filtered:      self.Filtered,
		Irradiated:    self.Irradiated,
	}
}

func (self *Unit) IsExpired(now time.Time) bool {
	return self.ExpiresAt.Before(now)
}

// NewTrackingCode generates codes like BU-cnbqyfk2h4t0ka31ns50
func NewTrackingCode() string {
	return "BU-" + xid.New().String()
}
