package shipping

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dukerupert/shippor/internal/domain"
)

// Catalog is the seed data for a CatalogProvider.
type Catalog struct {
	Methods         []domain.ShippingMethod
	PickupLocations map[string][]domain.PickupLocation
	Shipments       []domain.ShipmentRecord
	Events          []domain.TrackingEvent
	Balance         float64
}

// CatalogProvider serves a fixed method catalog and books shipments in
// memory. Used when no carrier integration is configured. It is safe for
// concurrent use.
type CatalogProvider struct {
	mu        sync.RWMutex
	methods   []domain.ShippingMethod
	pickups   map[string][]domain.PickupLocation
	shipments []domain.ShipmentRecord
	events    []domain.TrackingEvent
	balance   decimal.Decimal
	now       func() time.Time
}

// NewCatalogProvider creates a provider seeded from c.
func NewCatalogProvider(c Catalog) *CatalogProvider {
	pickups := make(map[string][]domain.PickupLocation, len(c.PickupLocations))
	for k, v := range c.PickupLocations {
		pickups[k] = slices.Clone(v)
	}
	return &CatalogProvider{
		methods:   slices.Clone(c.Methods),
		pickups:   pickups,
		shipments: slices.Clone(c.Shipments),
		events:    slices.Clone(c.Events),
		balance:   decimal.NewFromFloat(c.Balance),
		now:       time.Now,
	}
}

// Methods returns the full catalog; the static catalog does not price per draft.
func (p *CatalogProvider) Methods(ctx context.Context, draft domain.ShipmentDraft) ([]domain.ShippingMethod, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if len(p.methods) == 0 {
		return nil, ErrNoMethods
	}
	out := make([]domain.ShippingMethod, len(p.methods))
	for i, m := range p.methods {
		out[i] = m.Clone()
	}
	return out, nil
}

// PickupLocations returns the locations for serviceID, or none.
func (p *CatalogProvider) PickupLocations(ctx context.Context, serviceID string) ([]domain.PickupLocation, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.pickups[serviceID]), nil
}

func (p *CatalogProvider) method(id string) (domain.ShippingMethod, bool) {
	for _, m := range p.methods {
		if m.ID == id {
			return m, true
		}
	}
	return domain.ShippingMethod{}, false
}

// CreateShipment books a draft. Drafts without a method fall back to the
// second catalog entry, the economy service. Dangerous goods are refused.
func (p *CatalogProvider) CreateShipment(ctx context.Context, draft domain.ShipmentDraft) (*domain.ShipmentRecord, error) {
	if len(draft.Parcels) == 0 {
		return nil, ErrNoParcels
	}
	if draft.Addons.Dangerous {
		return nil, ErrDangerousGoodsRejected
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	var method domain.ShippingMethod
	switch {
	case draft.SelectedMethod != nil:
		if _, ok := p.method(draft.SelectedMethod.ID); !ok {
			return nil, ErrUnknownMethod
		}
		method = *draft.SelectedMethod
	case len(p.methods) > 1:
		method = p.methods[1]
	case len(p.methods) == 1:
		method = p.methods[0]
	default:
		return nil, ErrNoMethods
	}

	now := p.now().UTC()
	suffix := strings.ToUpper(uuid.NewString()[:8])
	rec := domain.ShipmentRecord{
		ID:             "SHP-" + suffix,
		CreatedAt:      now,
		Status:         domain.ShipmentPending,
		TrackingNumber: "TRK" + suffix,
		RecipientName:  draft.RecipientAddress.Name,
		SenderName:     draft.SenderAddress.Name,
		Service:        method.Label,
		Price:          method.Price,
	}

	p.shipments = append([]domain.ShipmentRecord{rec}, p.shipments...)
	p.events = append([]domain.TrackingEvent{{
		ID:             "evt-" + uuid.NewString()[:8],
		TrackingNumber: rec.TrackingNumber,
		Status:         "Shipment created (" + draft.RouteTitle() + ")",
		Location:       draft.SenderAddress.City,
		Timestamp:      now,
	}}, p.events...)

	p.balance = decimal.Max(decimal.Zero, p.balance.Sub(decimal.NewFromFloat(method.Price)).Round(2))

	return &rec, nil
}

func (p *CatalogProvider) Shipments(ctx context.Context) ([]domain.ShipmentRecord, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.shipments), nil
}

func (p *CatalogProvider) TrackingEvents(ctx context.Context) ([]domain.TrackingEvent, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.events), nil
}

// Track matches tracking numbers case-insensitively after trimming.
func (p *CatalogProvider) Track(ctx context.Context, trackingNumber string) ([]domain.TrackingEvent, error) {
	want := strings.ToLower(strings.TrimSpace(trackingNumber))

	p.mu.RLock()
	defer p.mu.RUnlock()

	out := []domain.TrackingEvent{}
	for _, e := range p.events {
		if strings.ToLower(e.TrackingNumber) == want {
			out = append(out, e)
		}
	}
	return out, nil
}

func (p *CatalogProvider) AccountBalance(ctx context.Context) (float64, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.balance.InexactFloat64(), nil
}
