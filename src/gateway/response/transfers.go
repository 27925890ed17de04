package response

import (
	"time"

	"github.com/google/uuid"

	"hemolink/src/utils/model"
)

type Transfer struct {
	ID               uuid.UUID  `json:"id"`
	RequestID        uuid.UUID  `json:"request_id"`
	OfferID          *uuid.UUID `json:"offer_id,omitempty"`
	OriginFacilityID uuid.UUID  `json:"origin_facility_id"`
	DestFacilityID   uuid.UUID  `json:"dest_facility_id"`
	State            string     `json:"state"`
	CreatedAt        time.Time  `json:"created_at"`
	SentAt           *time.Time `json:"sent_at,omitempty"`
	ReceivedAt       *time.Time `json:"received_at,omitempty"`
	CancelledAt      *time.Time `json:"cancelled_at,omitempty"`

	// Linked entities, set on the detail view
	Request *Request `json:"request,omitempty"`
	Offer   *Offer   `json:"offer,omitempty"`
	Units   []*Unit  `json:"units,omitempty"`
}

func TransferToResponse(transfer *model.Transfer) *Transfer {
	out := &Transfer{
		ID:               transfer.ID,
		RequestID:        transfer.RequestID,
		OriginFacilityID: transfer.OriginFacilityID,
		DestFacilityID:   transfer.DestFacilityID,
		State:            string(transfer.State),
		CreatedAt:        transfer.CreatedAt,
	}
	if transfer.OfferID.Valid {
		out.OfferID = &transfer.OfferID.UUID
	}
	if transfer.SentAt.Valid {
		out.SentAt = &transfer.SentAt.Time
	}
	if transfer.ReceivedAt.Valid {
		out.ReceivedAt = &transfer.ReceivedAt.Time
	}
	if transfer.CancelledAt.Valid {
		out.CancelledAt = &transfer.CancelledAt.Time
	}
	return out
}

func TransfersToResponse(transfers []*model.Transfer) (out []*Transfer) {
	out = make([]*Transfer, 0, len(transfers))
	for _, transfer := range transfers {
		out = append(out, TransferToResponse(transfer))
	}
	return
}
