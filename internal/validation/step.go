package validation

import (
	"fmt"

	"github.com/dukerupert/shippor/internal/domain"
	"github.com/dukerupert/shippor/internal/shipping"
)

// Step is a screen of the full booking flow. Steps are visited in order.
type Step int

const (
	StepBasic Step = iota
	StepAddressDetails
	StepShipmentDetails
)

var stepNames = map[Step]string{
	StepBasic:           "basic",
	StepAddressDetails:  "address-details",
	StepShipmentDetails: "shipment-details",
}

func (s Step) String() string {
	if n, ok := stepNames[s]; ok {
		return n
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// ParseStep maps a step name such as "address-details" to a Step.
func ParseStep(name string) (Step, error) {
	for s, n := range stepNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown step %q", name)
}

// Next returns the step after s, or false when s is the last one.
func Next(s Step) (Step, bool) {
	if s >= StepShipmentDetails || s < StepBasic {
		return s, false
	}
	return s + 1, true
}

// StepResult is the outcome of validating one step.
type StepResult struct {
	Step   string `json:"step"`
	Valid  bool   `json:"valid"`
	Errors any    `json:"errors"`
}

// ValidateStep runs the validator for step s.
func (v *Validator) ValidateStep(s Step, d *domain.ShipmentDraft) (StepResult, error) {
	var (
		errs   any
		failed bool
	)
	switch s {
	case StepBasic:
		e := v.ValidateBasic(d)
		errs, failed = e, e.HasErrors()
	case StepAddressDetails:
		e := v.ValidateAddressDetails(d)
		errs, failed = e, e.HasErrors()
	case StepShipmentDetails:
		e := v.ValidateShipmentDetails(d)
		errs, failed = e, e.HasErrors()
	default:
		return StepResult{}, domain.Errorf(domain.EINVALID, "validation.step", "unknown step %d", int(s))
	}
	return StepResult{Step: s.String(), Valid: !failed, Errors: errs}, nil
}

// HasQuickHomeErrors reports whether the quick flow's first screen is
// incomplete: basic step errors or no shipping method chosen.
func (v *Validator) HasQuickHomeErrors(d *domain.ShipmentDraft) bool {
	return v.ValidateBasic(d).HasErrors() || shipping.ValidateSelection(d.SelectedMethod).HasErrors()
}

func (v *Validator) HasQuickAddressErrors(d *domain.ShipmentDraft) bool {
	return v.ValidateAddressDetails(d).HasErrors()
}

func (v *Validator) HasQuickShipmentErrors(d *domain.ShipmentDraft) bool {
	return v.ValidateShipmentDetails(d).HasErrors()
}

// QuickProgress reports which quick-flow screens are complete. Resume names
// the first screen that still has errors, or is empty when the draft can be
// submitted. A screen is only reachable once the ones before it pass.
type QuickProgress struct {
	Home     bool   `json:"home"`
	Address  bool   `json:"address"`
	Shipment bool   `json:"shipment"`
	Resume   string `json:"resume,omitempty"`
}

// Quick screen names used by QuickProgress.Resume.
const (
	QuickScreenHome     = "home"
	QuickScreenAddress  = "address"
	QuickScreenShipment = "shipment"
)

// QuickProgress evaluates the quick flow gates for d.
func (v *Validator) QuickProgress(d *domain.ShipmentDraft) QuickProgress {
	p := QuickProgress{
		Home:     !v.HasQuickHomeErrors(d),
		Address:  !v.HasQuickAddressErrors(d),
		Shipment: !v.HasQuickShipmentErrors(d),
	}
	switch {
	case !p.Home:
		p.Resume = QuickScreenHome
	case !p.Address:
		p.Resume = QuickScreenAddress
	case !p.Shipment:
		p.Resume = QuickScreenShipment
	}
	return p
}
