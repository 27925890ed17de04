package notify

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

func TestEventTestSuite(t *testing.T) {
	suite.Run(t, new(EventTestSuite))
}

type EventTestSuite struct {
	suite.Suite
}

func (s *EventTestSuite) TestMarshalBinary() {
	event := &Event{
		Kind:        KindTransferCreated,
		EntityType:  "transfer",
		EntityID:    uuid.New(),
		FacilityIDs: []uuid.UUID{uuid.New()},
		UnitIDs:     []uuid.UUID{uuid.New(), uuid.New()},
		Message:     "2 units allocated to your request",
		OccurredAt:  time.Now().UTC(),
	}

	raw, err := event.MarshalBinary()
	s.NoError(err)

	var decoded Event
	s.NoError(json.Unmarshal(raw, &decoded))
	s.Equal(event.Kind, decoded.Kind)
	s.Equal(event.EntityID, decoded.EntityID)
	s.Equal(event.UnitIDs, decoded.UnitIDs)
	s.Equal(event.OccurredAt.Unix(), decoded.OccurredAt.Unix())
}

func (s *EventTestSuite) TestUnitIdsOmittedWhenEmpty() {
	event := &Event{Kind: KindRequestCreated, EntityType: "request", EntityID: uuid.New()}

	raw, err := event.MarshalBinary()
	s.NoError(err)
	s.NotContains(string(raw), "unit_ids")
}

func (s *EventTestSuite) TestUnitIdStrings() {
	a := uuid.New()
	b := uuid.New()
	event := &Event{UnitIDs: []uuid.UUID{a, b}}

	s.Equal([]string{a.String(), b.String()}, event.UnitIdStrings())
}
