package address

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dukerupert/shippor/internal/country"
	"github.com/dukerupert/shippor/internal/domain"
)

// BasicValidator performs format validation without external API calls.
type BasicValidator struct {
	meta     *country.Meta
	validate *validator.Validate
}

// NewBasicValidator creates a validator backed by the given country table.
func NewBasicValidator(meta *country.Meta) *BasicValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &BasicValidator{meta: meta, validate: v}
}

type addressForm struct {
	Type       string `json:"type" validate:"omitempty,oneof=private business"`
	Email      string `json:"email" validate:"omitempty,email"`
	Phone      string `json:"phone" validate:"omitempty,min=6,max=16"`
	Street     string `json:"street" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postalCode" validate:"omitempty,max=12"`
	Country    string `json:"country" validate:"required,iso3166_1_alpha2"`
}

// Validate checks required fields and formats and returns the address with
// trimmed values, an upper-case country and a normalized phone number.
func (v *BasicValidator) Validate(ctx context.Context, addr domain.Address) (*ValidationResult, error) {
	norm := addr
	norm.Name = strings.TrimSpace(addr.Name)
	norm.Organization = strings.TrimSpace(addr.Organization)
	norm.Email = strings.TrimSpace(addr.Email)
	norm.Street = strings.TrimSpace(addr.Street)
	norm.Street2 = strings.TrimSpace(addr.Street2)
	norm.City = strings.TrimSpace(addr.City)
	norm.State = strings.TrimSpace(addr.State)
	norm.PostalCode = strings.TrimSpace(addr.PostalCode)
	norm.Country = strings.ToUpper(strings.TrimSpace(addr.Country))
	norm.Phone = NormalizePhone(addr.Phone, norm.Country)

	form := addressForm{
		Type:       string(norm.Type),
		Email:      norm.Email,
		Phone:      norm.Phone,
		Street:     norm.Street,
		City:       norm.City,
		PostalCode: norm.PostalCode,
		Country:    norm.Country,
	}

	result := &ValidationResult{NormalizedAddress: &norm}

	if err := v.validate.StructCtx(ctx, form); err != nil {
		fieldErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return nil, fmt.Errorf("validate address: %w", err)
		}
		for _, fe := range fieldErrs {
			result.Errors = append(result.Errors, ValidationError{
				Field:   fe.Field(),
				Message: msgForTag(fe),
			})
		}
	}

	if norm.PostalCode == "" && v.meta.RequiresMandatoryPostalCode(norm.Country) {
		result.Errors = append(result.Errors, ValidationError{Field: "postalCode", Message: "is required"})
	}
	if norm.State == "" && v.meta.RequiresStateField(norm.Country) {
		result.Errors = append(result.Errors, ValidationError{Field: "state", Message: "is required"})
	}
	if norm.PostalCode != "" && v.meta.HidesPostalCode(norm.Country) {
		result.Warnings = append(result.Warnings, "postal code is not used in "+norm.Country)
	}
	if norm.Street2 != "" && v.meta.HidesAddressLine2(norm.Country) {
		result.Warnings = append(result.Warnings, "second address line is not used in "+norm.Country)
	}

	result.IsValid = len(result.Errors) == 0
	return result, nil
}

func msgForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "iso3166_1_alpha2":
		return "must be a two-letter country code"
	default:
		return fmt.Sprintf("failed on '%s' validation", fe.Tag())
	}
}
