// Package shipping ranks carrier methods for a draft and defines the
// upstream carrier Provider the booking service talks to.
package shipping

import (
	"context"

	"github.com/dukerupert/shippor/internal/domain"
)

// Provider is the upstream carrier backend. Implementations could integrate
// with a real carrier aggregator; CatalogProvider serves a static catalog.
type Provider interface {
	// Methods returns the shipping methods offered for a draft.
	Methods(ctx context.Context, draft domain.ShipmentDraft) ([]domain.ShippingMethod, error)

	// PickupLocations returns drop-off points for a pickup service.
	PickupLocations(ctx context.Context, serviceID string) ([]domain.PickupLocation, error)

	// CreateShipment books a shipment for a draft and charges the account.
	CreateShipment(ctx context.Context, draft domain.ShipmentDraft) (*domain.ShipmentRecord, error)

	// Shipments lists booked shipments, newest first.
	Shipments(ctx context.Context) ([]domain.ShipmentRecord, error)

	// TrackingEvents lists every tracking event, newest first.
	TrackingEvents(ctx context.Context) ([]domain.TrackingEvent, error)

	// Track returns the events for one tracking number.
	Track(ctx context.Context, trackingNumber string) ([]domain.TrackingEvent, error)

	// AccountBalance returns the prepaid balance left on the account.
	AccountBalance(ctx context.Context) (float64, error)
}
