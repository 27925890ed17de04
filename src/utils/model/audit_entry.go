package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const TableAuditEntry = "audit_entries"

// Append-only record of committed mutations. Written best-effort after
// commit, never inside the owning transaction.
type AuditEntry struct {
	ID       int64         `gorm:"primaryKey;autoIncrement"`
	UserID   uuid.NullUUID `gorm:"type:uuid"`
	Entity   string        `gorm:"not null; index"`
	EntityID uuid.NullUUID `gorm:"type:uuid; index"`
	Action   string        `gorm:"not null"`

	Details json.RawMessage `gorm:"type:jsonb"`

	CreatedAt time.Time
}

func (AuditEntry) TableName() string {
	return TableAuditEntry
}
