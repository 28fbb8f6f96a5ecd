// Package service runs the booking flow for browser sessions. Each session
// owns one shipment draft, the methods and pickup points fetched for it, a
// cart and the state of the last checkout. The rules packages do the
// judging; this package stores their inputs and outputs and talks to the
// carrier.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/shippor/internal/address"
	"github.com/dukerupert/shippor/internal/cart"
	"github.com/dukerupert/shippor/internal/country"
	"github.com/dukerupert/shippor/internal/domain"
	"github.com/dukerupert/shippor/internal/eligibility"
	"github.com/dukerupert/shippor/internal/events"
	"github.com/dukerupert/shippor/internal/shipping"
	"github.com/dukerupert/shippor/internal/telemetry"
	"github.com/dukerupert/shippor/internal/validation"
)

// ShipmentService provides the booking flow operations.
type ShipmentService interface {
	// Sessions
	CreateSession(ctx context.Context, opts SessionOptions) (*SessionView, error)
	Session(ctx context.Context, sid string) (*SessionView, error)
	DeleteSession(ctx context.Context, sid string) error
	ExpireSessions(ctx context.Context, idleSince time.Time) int

	// Draft editing
	Draft(ctx context.Context, sid string) (domain.ShipmentDraft, error)
	ResetDraft(ctx context.Context, sid string) (domain.ShipmentDraft, error)
	ReplaceDraft(ctx context.Context, sid string, draft domain.ShipmentDraft) (domain.ShipmentDraft, error)
	ReplaceAddress(ctx context.Context, sid string, role domain.Role, addr domain.Address) (domain.ShipmentDraft, error)
	UseSavedAddress(ctx context.Context, sid string, role domain.Role, addressID string, locked []string) (domain.ShipmentDraft, error)
	UpdateAddressField(ctx context.Context, sid string, role domain.Role, field, value string) (domain.ShipmentDraft, error)
	UpdateParcelField(ctx context.Context, sid, parcelID, field string, value *float64) (domain.ShipmentDraft, error)
	UpsertItem(ctx context.Context, sid string, index int, item domain.ShipmentItem) (domain.ShipmentDraft, error)
	UpdateShipmentDetails(ctx context.Context, sid string, u DetailsUpdate) (domain.ShipmentDraft, error)
	SetAddons(ctx context.Context, sid string, addons domain.Addons) (domain.ShipmentDraft, error)
	AddonAvailability(ctx context.Context, sid string) (eligibility.Availability, error)
	ValidateStep(ctx context.Context, sid string, step validation.Step) (validation.StepResult, error)
	FieldVisibility(ctx context.Context, sid string, role domain.Role) (*FieldsView, error)
	QuickProgress(ctx context.Context, sid string) (validation.QuickProgress, error)

	// Shipping methods
	LoadShippingMethods(ctx context.Context, sid string, mode shipping.SortMode) (*MethodsView, error)
	SelectMethod(ctx context.Context, sid, methodID string) (domain.ShipmentDraft, error)
	LoadPickupLocations(ctx context.Context, sid, serviceID string) (*PickupView, error)
	SelectPickupLocation(ctx context.Context, sid, locationID string) (domain.ShipmentDraft, error)

	// Cart and checkout
	AddDraftToCart(ctx context.Context, sid string) (domain.CartItem, error)
	RetryCartItem(ctx context.Context, sid, itemID string) (domain.ShipmentDraft, error)
	RemoveCartItem(ctx context.Context, sid, itemID string) error
	CartTotals(ctx context.Context, sid string) (cart.Totals, error)
	SubmitCart(ctx context.Context, sid string, req CheckoutRequest) (*CheckoutResult, error)
	SubmitQuickShipment(ctx context.Context, sid string) (*CheckoutResult, error)

	// Account views
	Dashboard(ctx context.Context) (*Dashboard, error)
	Track(ctx context.Context, trackingNumber string) ([]domain.TrackingEvent, error)
	SearchAddresses(ctx context.Context, query string) ([]domain.Address, error)
	QuickSearchAddresses(ctx context.Context, countryCode, query string) (*QuickSearchView, error)
	AddAddress(ctx context.Context, addr domain.Address) (domain.Address, error)
}

// Deps are the collaborators of the shipment service. Meta and Provider are
// required; the rest have working defaults.
type Deps struct {
	Meta             *country.Meta
	Provider         shipping.Provider
	Addresses        *address.Book
	AddressValidator address.Validator
	Publisher        events.Publisher
	Metrics          *telemetry.RuleMetrics
	Aggregator       cart.Aggregator
	Logger           *slog.Logger
}

// SessionOptions are fixed for the life of a session.
type SessionOptions struct {
	// Unregistered marks guest bookings, which see fewer add-ons.
	Unregistered bool `json:"unregistered"`
}

// SessionView is a snapshot of a session. It shares no memory with the
// stored session.
type SessionView struct {
	ID              string                  `json:"id"`
	Unregistered    bool                    `json:"unregistered"`
	Draft           domain.ShipmentDraft    `json:"draft"`
	SortMode        shipping.SortMode       `json:"sortMode"`
	Methods         []domain.ShippingMethod `json:"methods"`
	PickupLocations []domain.PickupLocation `json:"pickupLocations"`
	Cart            []domain.CartItem       `json:"cart"`
	Totals          cart.Totals             `json:"totals"`
	Checkout        cart.State              `json:"checkout"`
	LastShipments   []domain.ShipmentRecord `json:"lastShipments"`
}

type session struct {
	mu sync.Mutex

	id           string
	unregistered bool
	draft        domain.ShipmentDraft
	sortMode     shipping.SortMode
	methods      []domain.ShippingMethod
	pickups      []domain.PickupLocation
	cart         *cart.Cart
	checkout     cart.State
	shipped      []domain.ShipmentRecord

	// lastSeen is read without mu by the idle sweeper.
	lastSeen atomic.Int64
}

// clearMethods drops the fetched catalog after the draft is handed off.
func (s *session) clearMethods() {
	s.methods = nil
	s.pickups = nil
}

type shipmentService struct {
	meta      *country.Meta
	rules     *validation.Validator
	provider  shipping.Provider
	book      *address.Book
	addrCheck address.Validator
	publisher events.Publisher
	metrics   *telemetry.RuleMetrics
	agg       cart.Aggregator
	logger    *slog.Logger
	now       func() time.Time

	mu       sync.RWMutex
	sessions map[string]*session
}

// NewShipmentService creates a new ShipmentService instance.
func NewShipmentService(deps Deps) (ShipmentService, error) {
	if deps.Meta == nil {
		return nil, errors.New("country metadata is required")
	}
	if deps.Provider == nil {
		return nil, errors.New("shipping provider is required")
	}
	if deps.Addresses == nil {
		deps.Addresses = address.NewBook()
	}
	if deps.AddressValidator == nil {
		deps.AddressValidator = address.NewBasicValidator(deps.Meta)
	}
	if deps.Publisher == nil {
		deps.Publisher = events.NopPublisher{}
	}
	if deps.Aggregator.FeeRate.IsZero() {
		deps.Aggregator = cart.NewAggregator(cart.DefaultFeeRate)
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	return &shipmentService{
		meta:      deps.Meta,
		rules:     validation.New(deps.Meta),
		provider:  deps.Provider,
		book:      deps.Addresses,
		addrCheck: deps.AddressValidator,
		publisher: deps.Publisher,
		metrics:   deps.Metrics,
		agg:       deps.Aggregator,
		logger:    deps.Logger,
		now:       time.Now,
		sessions:  make(map[string]*session),
	}, nil
}

func (s *shipmentService) CreateSession(ctx context.Context, opts SessionOptions) (*SessionView, error) {
	sess := &session{
		id:           uuid.NewString(),
		unregistered: opts.Unregistered,
		draft:        domain.NewDraft(),
		sortMode:     shipping.SortByDeliveryTime,
		cart:         cart.New(),
		checkout:     cart.InitialState(),
	}
	sess.lastSeen.Store(s.now().UnixNano())

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	s.logger.Info("session created", "session_id", sess.id, "unregistered", opts.Unregistered)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.view(sess), nil
}

func (s *shipmentService) Session(ctx context.Context, sid string) (*SessionView, error) {
	var out *SessionView
	err := s.withSession(sid, "session.get", func(sess *session) error {
		out = s.view(sess)
		return nil
	})
	return out, err
}

func (s *shipmentService) DeleteSession(ctx context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sid]; !ok {
		return domain.WithOp(domain.ErrSessionNotFound, "session.delete")
	}
	delete(s.sessions, sid)
	return nil
}

// ExpireSessions removes sessions not used since idleSince and returns how
// many were removed.
func (s *shipmentService) ExpireSessions(ctx context.Context, idleSince time.Time) int {
	cutoff := idleSince.UnixNano()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if sess.lastSeen.Load() < cutoff {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *shipmentService) lookup(sid, op string) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sid]
	if !ok {
		return nil, domain.WithOp(domain.ErrSessionNotFound, op)
	}
	return sess, nil
}

// withSession runs fn with the session locked. Calls for one session are
// serialized, carrier calls included; other sessions are not blocked.
func (s *shipmentService) withSession(sid, op string, fn func(*session) error) error {
	sess, err := s.lookup(sid, op)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.lastSeen.Store(s.now().UnixNano())
	return fn(sess)
}

// view snapshots sess. The caller holds sess.mu.
func (s *shipmentService) view(sess *session) *SessionView {
	pickups := make([]domain.PickupLocation, len(sess.pickups))
	copy(pickups, sess.pickups)
	shipped := make([]domain.ShipmentRecord, len(sess.shipped))
	copy(shipped, sess.shipped)

	return &SessionView{
		ID:              sess.id,
		Unregistered:    sess.unregistered,
		Draft:           sess.draft.Clone(),
		SortMode:        sess.sortMode,
		Methods:         cloneMethods(sess.methods),
		PickupLocations: pickups,
		Cart:            sess.cart.Items(),
		Totals:          s.agg.Totals(sess.cart.Lines()),
		Checkout:        cart.Reduce(sess.checkout),
		LastShipments:   shipped,
	}
}

func cloneMethods(ms []domain.ShippingMethod) []domain.ShippingMethod {
	out := make([]domain.ShippingMethod, len(ms))
	for i, m := range ms {
		out[i] = m.Clone()
	}
	return out
}

func (s *shipmentService) publish(ctx context.Context, sid, eventType string, data any) {
	if err := s.publisher.Publish(ctx, events.New(eventType, sid, data)); err != nil {
		s.logger.Warn("event publish failed", "session_id", sid, "type", eventType, "error", err)
	}
}
