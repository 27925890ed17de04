package notify

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	KindOfferCreated           = "offer-created"
	KindOfferStateChanged      = "offer-state-changed"
	KindRequestCreated         = "request-created"
	KindRequestStateChanged    = "request-state-changed"
	KindTransferCreated        = "transfer-created"
	KindTransferStateChanged   = "transfer-state-changed"
	KindOfferCancelledByExpiry = "offer-cancelled-by-expiry"
)

// Event describes a committed state change. Events are emitted strictly
// after the owning transaction commits, so a consumer never sees a change
// that later rolled back.
type Event struct {
	Kind       string    `json:"kind"`
	EntityType string    `json:"entity_type"`
	EntityID   uuid.UUID `json:"entity_id"`

	// Facilities whose users get an inbox row for this event
	FacilityIDs []uuid.UUID `json:"facility_ids"`

	// Units the change touched, if any
	UnitIDs []uuid.UUID `json:"unit_ids,omitempty"`

	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Used by the Redis publisher
func (self *Event) MarshalBinary() ([]byte, error) {
	return json.Marshal(self)
}

func (self *Event) UnitIdStrings() (out []string) {
	out = make([]string, 0, len(self.UnitIDs))
	for _, id := range self.UnitIDs {
		out = append(out, id.String())
	}
	return
}
