package request

import "time"

type UnitInput struct {
	ComponentType string    `json:"component_type" binding:"required"`
	BloodGroup    string    `json:"blood_group" binding:"required"`
	Rh            string    `json:"rh" binding:"required"`
	Filtered      bool      `json:"filtered"`
	Irradiated    bool      `json:"irradiated"`
	DrawnAt       time.Time `json:"drawn_at" binding:"required"`
	ExpiresAt     time.Time `json:"expires_at" binding:"required"`
}

type CreateUnits struct {
	Units []UnitInput `json:"units" binding:"required,min=1,dive"`
}
