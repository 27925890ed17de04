package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const TableNotification = "notifications"

// Per-user inbox row, written by the notify dispatcher strictly after the
// owning transaction commits. Best-effort, a lost row is logged and dropped.
type Notification struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID  uuid.UUID `gorm:"type:uuid; not null; index"`
	Kind    string    `gorm:"not null"`
	Message string    `gorm:"not null"`

	RefEntityType string    `gorm:"not null"`
	RefEntityID   uuid.UUID `gorm:"type:uuid; not null"`

	// Units the event touched, if any
	UnitIds pq.StringArray `gorm:"type:text[]"`

	Read      bool `gorm:"not null; default:false"`
	CreatedAt time.Time
}

func (Notification) TableName() string {
	return TableNotification
}
