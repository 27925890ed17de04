package transfer

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"hemolink/src/utils/model"
)

func TestGuardsTestSuite(t *testing.T) {
	suite.Run(t, new(GuardsTestSuite))
}

type GuardsTestSuite struct {
	suite.Suite
	origin uuid.UUID
	dest   uuid.UUID
}

func (s *GuardsTestSuite) SetupSuite() {
	s.origin = uuid.New()
	s.dest = uuid.New()
}

func (s *GuardsTestSuite) transferIn(state model.TransferState) *model.Transfer {
	return &model.Transfer{
		ID:               uuid.New(),
		OriginFacilityID: s.origin,
		DestFacilityID:   s.dest,
		State:            state,
	}
}

func (s *GuardsTestSuite) TestSendRequiresOrigin() {
	err := CheckSend(s.transferIn(model.TransferStateCreated), s.dest)
	s.True(errors.Is(err, model.ErrForbidden))

	s.NoError(CheckSend(s.transferIn(model.TransferStateCreated), s.origin))
}

func (s *GuardsTestSuite) TestSendRequiresCreated() {
	for _, state := range []model.TransferState{
		model.TransferStateInTransit,
		model.TransferStateReceived,
		model.TransferStateCancelled,
	} {
		err := CheckSend(s.transferIn(state), s.origin)
		s.True(errors.Is(err, model.ErrInvalidState), "state %s", state)
	}
}

func (s *GuardsTestSuite) TestRoleCheckedBeforeState() {
	// Wrong facility on an advanced transfer sees Forbidden, not a state hint
	err := CheckSend(s.transferIn(model.TransferStateReceived), s.dest)
	s.True(errors.Is(err, model.ErrForbidden))
}

func (s *GuardsTestSuite) TestReceiveRequiresDestination() {
	err := CheckReceive(s.transferIn(model.TransferStateInTransit), s.origin)
	s.True(errors.Is(err, model.ErrForbidden))

	s.NoError(CheckReceive(s.transferIn(model.TransferStateInTransit), s.dest))
}

func (s *GuardsTestSuite) TestReceiveRequiresInTransit() {
	err := CheckReceive(s.transferIn(model.TransferStateCreated), s.dest)
	s.True(errors.Is(err, model.ErrInvalidState))

	err = CheckReceive(s.transferIn(model.TransferStateReceived), s.dest)
	s.True(errors.Is(err, model.ErrInvalidState))
}

func (s *GuardsTestSuite) TestCancelRequiresOrigin() {
	err := CheckCancel(s.transferIn(model.TransferStateCreated), s.dest)
	s.True(errors.Is(err, model.ErrForbidden))

	s.NoError(CheckCancel(s.transferIn(model.TransferStateCreated), s.origin))
	s.NoError(CheckCancel(s.transferIn(model.TransferStateInTransit), s.origin))
}

func (s *GuardsTestSuite) TestCancelRejectsTerminalStates() {
	err := CheckCancel(s.transferIn(model.TransferStateReceived), s.origin)
	s.True(errors.Is(err, model.ErrInvalidState))

	err = CheckCancel(s.transferIn(model.TransferStateCancelled), s.origin)
	s.True(errors.Is(err, model.ErrInvalidState))
}

func (s *GuardsTestSuite) TestForceCancelSkipsRoleGuard() {
	s.NoError(CheckForceCancel(s.transferIn(model.TransferStateCreated)))
	s.NoError(CheckForceCancel(s.transferIn(model.TransferStateInTransit)))

	// Second sweep on an already settled transfer changes nothing
	err := CheckForceCancel(s.transferIn(model.TransferStateCancelled))
	s.True(errors.Is(err, model.ErrInvalidState))
}
