package response

import (
	"time"

	"github.com/google/uuid"

	"hemolink/src/utils/model"
)

type Offer struct {
	ID         uuid.UUID `json:"id"`
	FacilityID uuid.UUID `json:"facility_id"`
	State      string    `json:"state"`
	Note       string    `json:"note,omitempty"`
	Shadow     bool      `json:"shadow,omitempty"`
	CreatedAt  time.Time `json:"created_at"`

	Units []*Unit `json:"units,omitempty"`

	// Pending requests this offer could fully satisfy, set on creation
	MatchingRequests *int `json:"matching_requests,omitempty"`
}

func OfferToResponse(offer *model.Offer) *Offer {
	return &Offer{
		ID:         offer.ID,
		FacilityID: offer.FacilityID,
		State:      string(offer.State),
		Note:       offer.Note.String,
		Shadow:     offer.Shadow,
		CreatedAt:  offer.CreatedAt,
	}
}

func OffersToResponse(offers []*model.Offer) (out []*Offer) {
	out = make([]*Offer, 0, len(offers))
	for _, offer := range offers {
		out = append(out, OfferToResponse(offer))
	}
	return
}
