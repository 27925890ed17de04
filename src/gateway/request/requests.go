package request

import "github.com/google/uuid"

type CreateRequest struct {
	ComponentType string `json:"component_type" binding:"required"`
	BloodGroup    string `json:"blood_group" binding:"required"`
	Rh            string `json:"rh" binding:"required"`
	Filtered      bool   `json:"filtered"`
	Irradiated    bool   `json:"irradiated"`
	Quantity      int    `json:"quantity" binding:"required,gt=0"`
	Urgent        bool   `json:"urgent"`
	Note          string `json:"note"`
}

type AllocateFromRequest struct {
	UnitIDs []uuid.UUID `json:"unit_ids" binding:"required,min=1"`
	Note    string      `json:"note"`
}
