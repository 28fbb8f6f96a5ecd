package service

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dukerupert/shippor/internal/address"
	"github.com/dukerupert/shippor/internal/cart"
	"github.com/dukerupert/shippor/internal/domain"
)

// Dashboard is the account overview shown after login and after checkout.
type Dashboard struct {
	Balance   float64                 `json:"accountBalance"`
	Shipments []domain.ShipmentRecord `json:"shipments"`
	Tracking  []domain.TrackingEvent  `json:"trackingEvents"`
	Summary   cart.Summary            `json:"summary"`
}

// Dashboard loads the balance, shipments and tracking history in parallel.
func (s *shipmentService) Dashboard(ctx context.Context) (*Dashboard, error) {
	var d Dashboard
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		bal, err := s.provider.AccountBalance(ctx)
		if err != nil {
			return fmt.Errorf("fetch account balance: %w", err)
		}
		d.Balance = bal
		return nil
	})
	g.Go(func() error {
		recs, err := s.provider.Shipments(ctx)
		if err != nil {
			return fmt.Errorf("fetch shipments: %w", err)
		}
		d.Shipments = recs
		return nil
	})
	g.Go(func() error {
		evts, err := s.provider.TrackingEvents(ctx)
		if err != nil {
			return fmt.Errorf("fetch tracking events: %w", err)
		}
		d.Tracking = evts
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if d.Shipments == nil {
		d.Shipments = []domain.ShipmentRecord{}
	}
	if d.Tracking == nil {
		d.Tracking = []domain.TrackingEvent{}
	}
	d.Summary = cart.StatusSummary(d.Shipments)
	return &d, nil
}

// Track returns the events for a tracking number. A blank number returns
// the whole history.
func (s *shipmentService) Track(ctx context.Context, trackingNumber string) ([]domain.TrackingEvent, error) {
	var (
		evts []domain.TrackingEvent
		err  error
	)
	if strings.TrimSpace(trackingNumber) == "" {
		evts, err = s.provider.TrackingEvents(ctx)
	} else {
		evts, err = s.provider.Track(ctx, trackingNumber)
	}
	if err != nil {
		return nil, fmt.Errorf("track shipment: %w", err)
	}
	if evts == nil {
		evts = []domain.TrackingEvent{}
	}
	return evts, nil
}

func (s *shipmentService) SearchAddresses(ctx context.Context, query string) ([]domain.Address, error) {
	return s.book.Search(ctx, query)
}

// QuickSearchView is the quick-flow address lookup for one country.
type QuickSearchView struct {
	Field     string           `json:"field"`
	Label     string           `json:"label"`
	Addresses []domain.Address `json:"addresses"`
}

func (s *shipmentService) QuickSearchAddresses(ctx context.Context, countryCode, query string) (*QuickSearchView, error) {
	field, label := address.QuickSearchField(s.meta, countryCode)
	found, err := s.book.QuickSearch(ctx, s.meta, countryCode, query)
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, "addresses.quick", "Address search failed")
	}
	return &QuickSearchView{Field: field, Label: label, Addresses: found}, nil
}

// AddAddress validates an address and saves the normalized form.
func (s *shipmentService) AddAddress(ctx context.Context, addr domain.Address) (domain.Address, error) {
	const op = "addresses.add"

	res, err := s.addrCheck.Validate(ctx, addr)
	if err != nil {
		return domain.Address{}, domain.WrapError(err, domain.EUNAVAILABLE, op, "Address validation is unavailable")
	}
	if !res.IsValid {
		var verr error
		for _, fe := range res.Errors {
			verr = domain.AddFieldError(verr, fe.Field, fe.Message)
		}
		if verr == nil {
			return domain.Address{}, domain.WithOp(ErrAddressInvalid, op)
		}
		if ve, ok := verr.(*domain.ValidationError); ok {
			ve.Op = op
		}
		return domain.Address{}, verr
	}

	if res.NormalizedAddress != nil {
		addr = *res.NormalizedAddress
	}
	saved, err := s.book.Add(ctx, addr)
	if err != nil {
		return domain.Address{}, fmt.Errorf("save address: %w", err)
	}
	s.logger.Info("address saved", "address_id", saved.ID, "country", saved.Country)
	return saved, nil
}
