package model

import (
	"time"

	"github.com/google/uuid"
)

const TableArchivedUnit = "archived_units"

// Append-only snapshot of a unit retired from the active ledger.
// Rows are only ever written by the inventory expiry sweeper.
type ArchivedUnit struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	ComponentType string    `gorm:"not null"`
	BloodGroup    string    `gorm:"not null"`
	Rh            string    `gorm:"not null"`
	Filtered      bool      `gorm:"not null"`
	Irradiated    bool      `gorm:"not null"`

	DrawnAt      time.Time `gorm:"not null"`
	ExpiresAt    time.Time `gorm:"not null"`
	TrackingCode string    `gorm:"not null"`
	FacilityID   uuid.UUID `gorm:"type:uuid; not null"`

	// Final state, always expired today
	State UnitState `gorm:"not null; type:unit_state"`

	CreatedByID uuid.NullUUID `gorm:"type:uuid"`
	CreatedAt   time.Time
	ArchivedAt  time.Time `gorm:"not null"`
}

func (ArchivedUnit) TableName() string {
	return TableArchivedUnit
}
