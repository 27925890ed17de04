package model

import "fmt"

// Spec is the five-attribute component specification shared by units and
// requests. Matching is exact on all five attributes, a single mismatch
// excludes the candidate.
type Spec struct {
	ComponentType string `json:"component_type"`
	BloodGroup    string `json:"blood_group"`
	Rh            string `json:"rh"`
	Filtered      bool   `json:"filtered"`
	Irradiated    bool   `json:"irradiated"`
}

func (self Spec) Matches(other Spec) bool {
	return self == other
}

func (self Spec) Key() string {
	return fmt.Sprintf("%s|%s|%s|%t|%t",
		self.ComponentType, self.BloodGroup, self.Rh, self.Filtered, self.Irradiated)
}

func (self Spec) String() string {
	flags := ""
	if self.Filtered {
		flags += " filtered"
	}
	if self.Irradiated {
		flags += " irradiated"
	}
	return fmt.Sprintf("%s %s%s%s", self.ComponentType, self.BloodGroup, self.Rh, flags)
}
