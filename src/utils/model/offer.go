package model

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

const (
	TableOffer     = "offers"
	TableOfferItem = "offer_items"
)

type Offer struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	FacilityID uuid.UUID  `gorm:"type:uuid; not null; index"`
	State      OfferState `gorm:"not null; type:offer_state; index"`
	Note       sql.NullString

	// Set on offers synthesized by the allocator to back a direct
	// from-request allocation. Shadow offers are born closed.
	Shadow bool `gorm:"not null; default:false"`

	CreatedAt time.Time
}

func (Offer) TableName() string {
	return TableOffer
}

type OfferItem struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	OfferID uuid.UUID `gorm:"type:uuid; not null; index"`
	UnitID  uuid.UUID `gorm:"type:uuid; not null; index"`

	Offer Offer // Can be preloaded by gorm, but isn't by default.
	Unit  Unit
}

func (OfferItem) TableName() string {
	return TableOfferItem
}
