package transfer

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"hemolink/src/utils/model"
)

func TestMachineTestSuite(t *testing.T) {
	suite.Run(t, new(MachineTestSuite))
}

type MachineTestSuite struct {
	suite.Suite
}

func (s *MachineTestSuite) TestOpenOfferKeepsReturnedUnits() {
	// Partial claim cancelled while the offer is still open: the units stay
	// reserved and claimable under it
	s.Equal(offerKeepsUnits, outcomeFor(model.OfferStateOpen, 3))
	s.Equal(offerKeepsUnits, outcomeFor(model.OfferStateOpen, 0))
}

func (s *MachineTestSuite) TestClosedOfferReopens() {
	s.Equal(offerReopens, outcomeFor(model.OfferStateClosed, 1))
	s.Equal(offerReopens, outcomeFor(model.OfferStateClosed, 5))
}

func (s *MachineTestSuite) TestCancelledOfferReleasesReturnedUnits() {
	// The inventory sweeper may cancel the offer while its transfer is
	// pending. The cancel then has no offer to return the units to, so
	// they must be released rather than left reserved under a dead offer.
	s.Equal(offerGone, outcomeFor(model.OfferStateCancelled, 2))
	s.Equal(offerGone, outcomeFor(model.OfferStateCancelled, 0))
}

func (s *MachineTestSuite) TestEmptiedClosedOfferReleasesUnits() {
	s.Equal(offerGone, outcomeFor(model.OfferStateClosed, 0))
}
