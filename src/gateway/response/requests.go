package response

import (
	"time"

	"github.com/google/uuid"

	"hemolink/src/utils/model"
)

type Request struct {
	ID            uuid.UUID `json:"id"`
	FacilityID    uuid.UUID `json:"facility_id"`
	ComponentType string    `json:"component_type"`
	BloodGroup    string    `json:"blood_group"`
	Rh            string    `json:"rh"`
	Filtered      bool      `json:"filtered"`
	Irradiated    bool      `json:"irradiated"`
	Quantity      int       `json:"quantity"`
	Urgent        bool      `json:"urgent"`
	Note          string    `json:"note,omitempty"`
	Shadow        bool      `json:"shadow,omitempty"`
	State         string    `json:"state"`
	CreatedAt     time.Time `json:"created_at"`

	// Open offers elsewhere that could fully satisfy this request, set on
	// creation
	MatchingOffers *int64 `json:"matching_offers,omitempty"`

	// The viewing facility's own available units matching this request,
	// set on the detail view
	CandidateUnits []*Unit `json:"candidate_units,omitempty"`
}

func RequestToResponse(request *model.Request) *Request {
	return &Request{
		ID:            request.ID,
		FacilityID:    request.FacilityID,
		ComponentType: request.ComponentType,
		BloodGroup:    request.BloodGroup,
		Rh:            request.Rh,
		Filtered:      request.Filtered,
		Irradiated:    request.Irradiated,
		Quantity:      request.Quantity,
		Urgent:        request.Urgent,
		Note:          request.Note.String,
		Shadow:        request.Shadow,
		State:         string(request.State),
		CreatedAt:     request.CreatedAt,
	}
}

func RequestsToResponse(requests []*model.Request) (out []*Request) {
	out = make([]*Request, 0, len(requests))
	for _, request := range requests {
		out = append(out, RequestToResponse(request))
	}
	return
}
