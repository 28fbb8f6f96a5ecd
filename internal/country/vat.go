package country

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// VATLevel is how strongly a destination country's customs asks for a
// VAT or tax identifier on inbound shipments.
type VATLevel string

// Levels from strictest to loosest. Only the first two make the identifier
// mandatory on the form.
const (
	VATMandatory            VATLevel = "mandatory"
	VATRequired             VATLevel = "required"
	VATOftenRequired        VATLevel = "often_required"
	VATUsuallyRequired      VATLevel = "usually_required"
	VATSometimesRequired    VATLevel = "sometimes_required"
	VATCanBeRequired        VATLevel = "can_be_required"
	VATOccasionallyRequired VATLevel = "occasionally_required"
	VATMayBeRequired        VATLevel = "may_be_required"
	VATOftenNeeded          VATLevel = "often_needed"
	VATFrequentlyRequired   VATLevel = "frequently_required"
	VATCommonlyRequired     VATLevel = "commonly_required"
	VATOptional             VATLevel = "optional"
)

var knownLevels = map[VATLevel]struct{}{
	VATMandatory:            {},
	VATRequired:             {},
	VATOftenRequired:        {},
	VATUsuallyRequired:      {},
	VATSometimesRequired:    {},
	VATCanBeRequired:        {},
	VATOccasionallyRequired: {},
	VATMayBeRequired:        {},
	VATOftenNeeded:          {},
	VATFrequentlyRequired:   {},
	VATCommonlyRequired:     {},
	VATOptional:             {},
}

// Valid reports whether l is one of the known levels.
func (l VATLevel) Valid() bool {
	_, ok := knownLevels[l]
	return ok
}

// Strict reports whether the level makes the tax identifier mandatory.
func (l VATLevel) Strict() bool {
	return l == VATMandatory || l == VATRequired
}

// UnmarshalYAML rejects unknown levels so a typo in the table fails at load.
func (l *VATLevel) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	lvl := VATLevel(s)
	if !lvl.Valid() {
		return fmt.Errorf("unknown vat level %q at line %d", s, value.Line)
	}
	*l = lvl
	return nil
}

// VATRequirement describes the identifier a destination country expects.
type VATRequirement struct {
	Level      VATLevel `yaml:"level" json:"level"`
	TaxIDTypes []string `yaml:"tax_id_types" json:"taxIdTypes"`
}
