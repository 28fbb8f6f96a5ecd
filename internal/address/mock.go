package address

import (
	"context"

	"github.com/dukerupert/shippor/internal/domain"
)

// MockValidator is a test implementation of Validator.
type MockValidator struct {
	ValidateFunc func(ctx context.Context, addr domain.Address) (*ValidationResult, error)
	Calls        int
}

// NewMockValidator returns a mock that accepts every address unchanged.
func NewMockValidator() *MockValidator {
	return &MockValidator{}
}

// Validate delegates to ValidateFunc, or reports the address as valid.
func (m *MockValidator) Validate(ctx context.Context, addr domain.Address) (*ValidationResult, error) {
	m.Calls++
	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx, addr)
	}
	return &ValidationResult{IsValid: true, NormalizedAddress: &addr}, nil
}
