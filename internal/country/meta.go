// Package country holds the read-only reference tables behind the shipment
// compliance rules: EU membership, postal code and state requirements, form
// field visibility and per-country VAT identifier requirements.
//
// A *Meta is built once and injected into its consumers. Lookups for unknown
// country codes return the zero answer, never an error.
package country

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed countries.yaml
var defaultTable []byte

type set map[string]struct{}

func newSet(codes []string) set {
	s := make(set, len(codes))
	for _, c := range codes {
		s[c] = struct{}{}
	}
	return s
}

func (s set) has(code string) bool {
	_, ok := s[code]
	return ok
}

func (s set) sorted() []string {
	out := make([]string, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}

// Table is the on-disk shape of the country reference data.
type Table struct {
	EUCountries          []string                  `yaml:"eu_countries"`
	VATExemptEU          []string                  `yaml:"vat_exempt_eu"`
	MandatoryPostalCodes []string                  `yaml:"mandatory_postal_codes"`
	StateRequired        []string                  `yaml:"state_required"`
	HidePostalCodes      []string                  `yaml:"hide_postal_codes"`
	HideAddressLine2     []string                  `yaml:"hide_address_line2"`
	HideQuickSearch      []string                  `yaml:"hide_quick_search"`
	VAT                  map[string]VATRequirement `yaml:"vat"`
}

// Meta answers country lookups. It is immutable after construction and
// safe for concurrent use.
type Meta struct {
	eu                   set
	vatExemptEU          set
	mandatoryPostalCodes set
	stateRequired        set
	hidePostalCodes      set
	hideAddressLine2     set
	hideQuickSearch      set
	vat                  map[string]VATRequirement
}

// New builds a Meta from a table. Codes are upper-cased; the table is copied.
func New(t Table) (*Meta, error) {
	norm := func(field string, codes []string) (set, error) {
		out := make([]string, 0, len(codes))
		for _, c := range codes {
			c = strings.ToUpper(strings.TrimSpace(c))
			if len(c) != 2 {
				return nil, fmt.Errorf("%s: invalid country code %q", field, c)
			}
			out = append(out, c)
		}
		return newSet(out), nil
	}

	var (
		m   Meta
		err error
	)
	if m.eu, err = norm("eu_countries", t.EUCountries); err != nil {
		return nil, err
	}
	if m.vatExemptEU, err = norm("vat_exempt_eu", t.VATExemptEU); err != nil {
		return nil, err
	}
	if m.mandatoryPostalCodes, err = norm("mandatory_postal_codes", t.MandatoryPostalCodes); err != nil {
		return nil, err
	}
	if m.stateRequired, err = norm("state_required", t.StateRequired); err != nil {
		return nil, err
	}
	if m.hidePostalCodes, err = norm("hide_postal_codes", t.HidePostalCodes); err != nil {
		return nil, err
	}
	if m.hideAddressLine2, err = norm("hide_address_line2", t.HideAddressLine2); err != nil {
		return nil, err
	}
	if m.hideQuickSearch, err = norm("hide_quick_search", t.HideQuickSearch); err != nil {
		return nil, err
	}

	m.vat = make(map[string]VATRequirement, len(t.VAT))
	for code, req := range t.VAT {
		if !req.Level.Valid() {
			return nil, fmt.Errorf("vat.%s: unknown level %q", code, req.Level)
		}
		m.vat[strings.ToUpper(code)] = VATRequirement{
			Level:      req.Level,
			TaxIDTypes: slices.Clone(req.TaxIDTypes),
		}
	}

	return &m, nil
}

// Load parses a YAML country table.
func Load(r io.Reader) (*Meta, error) {
	var t Table
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("parse country table: %w", err)
	}
	m, err := New(t)
	if err != nil {
		return nil, fmt.Errorf("build country table: %w", err)
	}
	return m, nil
}

// LoadFile parses a YAML country table from disk.
func LoadFile(path string) (*Meta, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open country table: %w", err)
	}
	defer f.Close()
	return Load(f)
}

var loadDefault = sync.OnceValue(func() *Meta {
	m, err := Load(bytes.NewReader(defaultTable))
	if err != nil {
		panic(fmt.Sprintf("country: embedded table is invalid: %v", err))
	}
	return m
})

// Default returns the built-in country table.
func Default() *Meta {
	return loadDefault()
}

func (m *Meta) IsEUMember(code string) bool { return m.eu.has(code) }

// IsVATExemptEUTerritory reports whether code is an EU territory outside the
// EU VAT area.
func (m *Meta) IsVATExemptEUTerritory(code string) bool { return m.vatExemptEU.has(code) }

func (m *Meta) RequiresMandatoryPostalCode(code string) bool {
	return m.mandatoryPostalCodes.has(code)
}

func (m *Meta) RequiresStateField(code string) bool { return m.stateRequired.has(code) }

// HidesPostalCode reports whether the postal code input is hidden for code.
// Hiding never relaxes RequiresMandatoryPostalCode.
func (m *Meta) HidesPostalCode(code string) bool { return m.hidePostalCodes.has(code) }

func (m *Meta) HidesAddressLine2(code string) bool { return m.hideAddressLine2.has(code) }

func (m *Meta) HidesQuickSearch(code string) bool { return m.hideQuickSearch.has(code) }

// VATRequirementLevel returns the level for code and whether the country is
// in the VAT table at all.
func (m *Meta) VATRequirementLevel(code string) (VATLevel, bool) {
	req, ok := m.vat[code]
	return req.Level, ok
}

// HasVATRequirement reports whether code appears in the VAT table.
func (m *Meta) HasVATRequirement(code string) bool {
	_, ok := m.vat[code]
	return ok
}

// AcceptedTaxIDTypes returns a copy of the identifier labels accepted by
// code, or nil.
func (m *Meta) AcceptedTaxIDTypes(code string) []string {
	return slices.Clone(m.vat[code].TaxIDTypes)
}

// IsVATTaxIDMandatory reports whether code's level is one of the two
// strictest tiers.
func (m *Meta) IsVATTaxIDMandatory(code string) bool {
	req, ok := m.vat[code]
	return ok && req.Level.Strict()
}

// StateRequiredCountries lists the state-required codes in sorted order.
func (m *Meta) StateRequiredCountries() []string { return m.stateRequired.sorted() }

// EUCountries lists the EU member codes in sorted order.
func (m *Meta) EUCountries() []string { return m.eu.sorted() }
