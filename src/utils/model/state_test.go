package model

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

func TestStateTestSuite(t *testing.T) {
	suite.Run(t, new(StateTestSuite))
}

type StateTestSuite struct {
	suite.Suite
}

func (s *StateTestSuite) TestOfferTransitions() {
	s.True(OfferStateOpen.CanTransitionTo(OfferStateClosed))
	s.True(OfferStateOpen.CanTransitionTo(OfferStateCancelled))
	s.True(OfferStateClosed.CanTransitionTo(OfferStateOpen))
	s.True(OfferStateClosed.CanTransitionTo(OfferStateCancelled))

	// Cancelled is terminal
	s.False(OfferStateCancelled.CanTransitionTo(OfferStateOpen))
	s.False(OfferStateCancelled.CanTransitionTo(OfferStateClosed))
	s.False(OfferStateOpen.CanTransitionTo(OfferStateOpen))
}

func (s *StateTestSuite) TestRequestTransitions() {
	s.True(RequestStatePending.CanTransitionTo(RequestStateAccepted))
	s.True(RequestStatePending.CanTransitionTo(RequestStateRejected))
	s.True(RequestStatePending.CanTransitionTo(RequestStateCancelled))
	s.True(RequestStatePending.CanTransitionTo(RequestStatePartial))
	s.True(RequestStatePartial.CanTransitionTo(RequestStateAccepted))
	s.True(RequestStatePartial.CanTransitionTo(RequestStateCancelled))

	s.False(RequestStateAccepted.CanTransitionTo(RequestStatePending))
	s.False(RequestStateRejected.CanTransitionTo(RequestStateAccepted))
	s.False(RequestStateCancelled.CanTransitionTo(RequestStatePending))
}

func (s *StateTestSuite) TestTransferTransitions() {
	s.True(TransferStateCreated.CanTransitionTo(TransferStateInTransit))
	s.True(TransferStateCreated.CanTransitionTo(TransferStateCancelled))
	s.True(TransferStateInTransit.CanTransitionTo(TransferStateReceived))
	s.True(TransferStateInTransit.CanTransitionTo(TransferStateCancelled))

	// Only forward, never twice
	s.False(TransferStateCreated.CanTransitionTo(TransferStateReceived))
	s.False(TransferStateInTransit.CanTransitionTo(TransferStateCreated))
	s.False(TransferStateReceived.CanTransitionTo(TransferStateCancelled))
	s.False(TransferStateCancelled.CanTransitionTo(TransferStateInTransit))
}

func (s *StateTestSuite) TestTransferTerminal() {
	s.False(TransferStateCreated.IsTerminal())
	s.False(TransferStateInTransit.IsTerminal())
	s.True(TransferStateReceived.IsTerminal())
	s.True(TransferStateCancelled.IsTerminal())
}

func (s *StateTestSuite) TestSpecMatching() {
	a := Spec{ComponentType: "plasma", BloodGroup: "O", Rh: "+", Filtered: true}
	b := a
	s.True(a.Matches(b))

	b.Irradiated = true
	s.False(a.Matches(b))

	c := a
	c.Rh = "-"
	s.False(a.Matches(c))
}

func (s *StateTestSuite) TestSpecKey() {
	a := Spec{ComponentType: "rbc", BloodGroup: "AB", Rh: "-", Filtered: true, Irradiated: false}
	s.Equal("rbc|AB|-|true|false", a.Key())
}

func (s *StateTestSuite) TestTrackingCode() {
	code := NewTrackingCode()
	s.True(strings.HasPrefix(code, "BU-"))
	s.NotEqual(code, NewTrackingCode())
}

func (s *StateTestSuite) TestUnitExpiry() {
	now := time.Now()
	unit := Unit{ExpiresAt: now.Add(time.Hour)}
	s.False(unit.IsExpired(now))
	s.True(unit.IsExpired(now.Add(2 * time.Hour)))
}
