package allocate

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"hemolink/src/utils/model"
)

func TestCoordinatorTestSuite(t *testing.T) {
	suite.Run(t, new(CoordinatorTestSuite))
}

type CoordinatorTestSuite struct {
	suite.Suite
}

func (s *CoordinatorTestSuite) TestTakeCount() {
	// Never more than selected, never more than requested
	s.Equal(3, TakeCount(5, 3))
	s.Equal(3, TakeCount(3, 5))
	s.Equal(0, TakeCount(0, 5))
	s.Equal(0, TakeCount(5, 0))
	s.Equal(4, TakeCount(4, 4))
}

func (s *CoordinatorTestSuite) TestUniqueIDs() {
	a := uuid.New()
	b := uuid.New()

	s.Equal([]uuid.UUID{a, b}, UniqueIDs([]uuid.UUID{a, b, a, b, a}))
	s.Empty(UniqueIDs(nil))
}

func (s *CoordinatorTestSuite) TestSelectUnitsTakesAllWhenUnnamed() {
	claimable := []*model.Unit{
		{ID: uuid.New()},
		{ID: uuid.New()},
	}

	selected, err := selectUnits(claimable, nil)
	s.NoError(err)
	s.Equal(claimable, selected)
}

func (s *CoordinatorTestSuite) TestSelectUnitsNarrowsToNamed() {
	first := &model.Unit{ID: uuid.New()}
	second := &model.Unit{ID: uuid.New()}

	selected, err := selectUnits([]*model.Unit{first, second}, []uuid.UUID{second.ID})
	s.NoError(err)
	s.Equal([]*model.Unit{second}, selected)
}

func (s *CoordinatorTestSuite) TestSelectUnitsRejectsUnknownID() {
	claimable := []*model.Unit{{ID: uuid.New()}}

	_, err := selectUnits(claimable, []uuid.UUID{uuid.New()})
	s.True(errors.Is(err, model.ErrInvalidSelection))
}

func (s *CoordinatorTestSuite) TestSelectUnitsRejectsEmptyOffer() {
	_, err := selectUnits(nil, nil)
	s.True(errors.Is(err, model.ErrInvalidSelection))
}

func (s *CoordinatorTestSuite) TestNoteOrNull() {
	s.False(noteOrNull("").Valid)

	note := noteOrNull("urgent restock")
	s.True(note.Valid)
	s.Equal("urgent restock", note.String)
}
