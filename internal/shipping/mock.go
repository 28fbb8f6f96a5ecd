package shipping

import (
	"context"

	"github.com/dukerupert/shippor/internal/domain"
)

// MockProvider is a test implementation of Provider. Unset funcs return
// empty results.
type MockProvider struct {
	MethodsFunc         func(ctx context.Context, draft domain.ShipmentDraft) ([]domain.ShippingMethod, error)
	PickupLocationsFunc func(ctx context.Context, serviceID string) ([]domain.PickupLocation, error)
	CreateShipmentFunc  func(ctx context.Context, draft domain.ShipmentDraft) (*domain.ShipmentRecord, error)
	ShipmentsFunc       func(ctx context.Context) ([]domain.ShipmentRecord, error)
	TrackingEventsFunc  func(ctx context.Context) ([]domain.TrackingEvent, error)
	TrackFunc           func(ctx context.Context, trackingNumber string) ([]domain.TrackingEvent, error)
	AccountBalanceFunc  func(ctx context.Context) (float64, error)
}

// NewMockProvider creates a new mock shipping provider for testing.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) Methods(ctx context.Context, draft domain.ShipmentDraft) ([]domain.ShippingMethod, error) {
	if m.MethodsFunc != nil {
		return m.MethodsFunc(ctx, draft)
	}
	return nil, nil
}

func (m *MockProvider) PickupLocations(ctx context.Context, serviceID string) ([]domain.PickupLocation, error) {
	if m.PickupLocationsFunc != nil {
		return m.PickupLocationsFunc(ctx, serviceID)
	}
	return nil, nil
}

func (m *MockProvider) CreateShipment(ctx context.Context, draft domain.ShipmentDraft) (*domain.ShipmentRecord, error) {
	if m.CreateShipmentFunc != nil {
		return m.CreateShipmentFunc(ctx, draft)
	}
	return &domain.ShipmentRecord{ID: "SHP-MOCK", Status: domain.ShipmentPending}, nil
}

func (m *MockProvider) Shipments(ctx context.Context) ([]domain.ShipmentRecord, error) {
	if m.ShipmentsFunc != nil {
		return m.ShipmentsFunc(ctx)
	}
	return nil, nil
}

func (m *MockProvider) TrackingEvents(ctx context.Context) ([]domain.TrackingEvent, error) {
	if m.TrackingEventsFunc != nil {
		return m.TrackingEventsFunc(ctx)
	}
	return nil, nil
}

func (m *MockProvider) Track(ctx context.Context, trackingNumber string) ([]domain.TrackingEvent, error) {
	if m.TrackFunc != nil {
		return m.TrackFunc(ctx, trackingNumber)
	}
	return nil, nil
}

func (m *MockProvider) AccountBalance(ctx context.Context) (float64, error) {
	if m.AccountBalanceFunc != nil {
		return m.AccountBalanceFunc(ctx)
	}
	return 0, nil
}
