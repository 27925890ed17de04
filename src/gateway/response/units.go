package response

import (
	"time"

	"github.com/google/uuid"

	"hemolink/src/utils/model"
)

type Unit struct {
	ID            uuid.UUID `json:"id"`
	ComponentType string    `json:"component_type"`
	BloodGroup    string    `json:"blood_group"`
	Rh            string    `json:"rh"`
	Filtered      bool      `json:"filtered"`
	Irradiated    bool      `json:"irradiated"`
	DrawnAt       time.Time `json:"drawn_at"`
	ExpiresAt     time.Time `json:"expires_at"`
	TrackingCode  string    `json:"tracking_code"`
	FacilityID    uuid.UUID `json:"facility_id"`
	State         string    `json:"state"`
	CreatedAt     time.Time `json:"created_at"`
}

func UnitToResponse(unit *model.Unit) *Unit {
	return &Unit{
		ID:            unit.ID,
		ComponentType: unit.ComponentType,
		BloodGroup:    unit.BloodGroup,
		Rh:            unit.Rh,
		Filtered:      unit.Filtered,
		Irradiated:    unit.Irradiated,
		DrawnAt:       unit.DrawnAt,
		ExpiresAt:     unit.ExpiresAt,
		TrackingCode:  unit.TrackingCode,
		FacilityID:    unit.FacilityID,
		State:         string(unit.State),
		CreatedAt:     unit.CreatedAt,
	}
}

func UnitsToResponse(units []*model.Unit) (out []*Unit) {
	out = make([]*Unit, 0, len(units))
	for _, unit := range units {
		out = append(out, UnitToResponse(unit))
	}
	return
}
