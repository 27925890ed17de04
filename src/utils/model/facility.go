package model

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

const (
	TableFacility = "facilities"
	TableUser     = "users"
)

// A blood bank or hospital participating in transfers
type Facility struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name   string    `gorm:"not null"`
	Region sql.NullString
	City   sql.NullString

	CreatedAt time.Time
}

func (Facility) TableName() string {
	return TableFacility
}

// Contact row used for notification fan-out. Identity and authorization live
// in an external resolver, this is only who gets told about what.
type User struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	FacilityID uuid.UUID `gorm:"type:uuid; not null; index"`
	Name       string    `gorm:"not null"`
	Email      sql.NullString
	Active     bool `gorm:"not null; default:true"`

	CreatedAt time.Time
}

func (User) TableName() string {
	return TableUser
}
