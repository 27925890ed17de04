package match

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"hemolink/src/utils/model"
)

func TestMatcherTestSuite(t *testing.T) {
	suite.Run(t, new(MatcherTestSuite))
}

type MatcherTestSuite struct {
	suite.Suite
}

func unit(spec model.Spec) *model.Unit {
	return &model.Unit{
		ComponentType: spec.ComponentType,
		BloodGroup:    spec.BloodGroup,
		Rh:            spec.Rh,
		Filtered:      spec.Filtered,
		Irradiated:    spec.Irradiated,
	}
}

func (s *MatcherTestSuite) TestHomogeneousUnits() {
	spec := model.Spec{ComponentType: "plasma", BloodGroup: "O", Rh: "+"}

	s.True(UnitsHomogeneous(nil, spec))
	s.True(UnitsHomogeneous([]*model.Unit{unit(spec), unit(spec)}, spec))
}

func (s *MatcherTestSuite) TestSingleAttributeMismatchExcludes() {
	spec := model.Spec{ComponentType: "plasma", BloodGroup: "O", Rh: "+"}

	other := spec
	other.Filtered = true
	s.False(UnitsHomogeneous([]*model.Unit{unit(spec), unit(other)}, spec))

	other = spec
	other.BloodGroup = "A"
	s.False(UnitsHomogeneous([]*model.Unit{unit(other)}, spec))
}
