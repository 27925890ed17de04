package model

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

const (
	TableTransfer     = "transfers"
	TableTransferItem = "transfer_items"
)

type Transfer struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	RequestID uuid.UUID     `gorm:"type:uuid; not null; index"`
	OfferID   uuid.NullUUID `gorm:"type:uuid; index"`

	OriginFacilityID uuid.UUID `gorm:"type:uuid; not null; index"`
	DestFacilityID   uuid.UUID `gorm:"type:uuid; not null; index"`

	State TransferState `gorm:"not null; type:transfer_state; index"`

	CreatedAt   time.Time `gorm:"not null"`
	SentAt      sql.NullTime
	ReceivedAt  sql.NullTime
	CancelledAt sql.NullTime
}

func (Transfer) TableName() string {
	return TableTransfer
}

// The unit set of a transfer is immutable once the transfer exists.
type TransferItem struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	TransferID uuid.UUID `gorm:"type:uuid; not null; index"`
	UnitID     uuid.UUID `gorm:"type:uuid; not null; index"`

	Transfer Transfer // Can be preloaded by gorm, but isn't by default.
	Unit     Unit
}

func (TransferItem) TableName() string {
	return TableTransferItem
}
