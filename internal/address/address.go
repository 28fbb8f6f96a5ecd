// Package address decides which address form fields are shown for a country,
// normalizes phone numbers against a dial code table and searches saved
// addresses. Nothing here mutates the addresses it is given.
package address

import (
	"context"

	"github.com/dukerupert/shippor/internal/country"
	"github.com/dukerupert/shippor/internal/domain"
)

// Validator checks that an address is well formed before it is saved.
// Implementations could call a carrier or postal authority API.
type Validator interface {
	// Validate checks the address. Even if IsValid is false,
	// NormalizedAddress may contain corrections.
	Validate(ctx context.Context, addr domain.Address) (*ValidationResult, error)
}

// ValidationResult contains the outcome of address validation.
type ValidationResult struct {
	IsValid           bool              `json:"isValid"`
	NormalizedAddress *domain.Address   `json:"normalizedAddress,omitempty"`
	Errors            []ValidationError `json:"errors,omitempty"`
	Warnings          []string          `json:"warnings,omitempty"`
}

// ValidationError is a problem with one address field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ShowStateField reports whether the state/region input is shown for code.
func ShowStateField(meta *country.Meta, code string) bool {
	return meta.RequiresStateField(code)
}

// ShowPostalCodeField reports whether the postal code input is shown.
func ShowPostalCodeField(meta *country.Meta, code string) bool {
	return !meta.HidesPostalCode(code)
}

// ShowAddressLine2Field reports whether the second street line is shown.
func ShowAddressLine2Field(meta *country.Meta, code string) bool {
	return !meta.HidesAddressLine2(code)
}

// QuickSearchField returns the address field and label used for quick
// search in a country, or empty strings when quick search is disabled.
func QuickSearchField(meta *country.Meta, code string) (field, label string) {
	if meta.HidesQuickSearch(code) {
		return "", ""
	}
	if code == "HK" {
		return "city", "City"
	}
	return "postalCode", "Postal code"
}
