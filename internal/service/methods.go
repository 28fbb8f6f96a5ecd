package service

import (
	"context"
	"fmt"

	"github.com/dukerupert/shippor/internal/domain"
	"github.com/dukerupert/shippor/internal/shipping"
)

// MethodsView is the ranked method list for the current draft.
type MethodsView struct {
	SortMode shipping.SortMode       `json:"sortMode"`
	Buckets  shipping.Buckets        `json:"buckets"`
	Methods  []domain.ShippingMethod `json:"methods"`
	Selected *domain.ShippingMethod  `json:"selected"`
}

// PickupView lists the pickup points of a service and the one preselected.
type PickupView struct {
	ServiceID        string                  `json:"serviceId"`
	Locations        []domain.PickupLocation `json:"locations"`
	PickupLocationID *string                 `json:"pickupLocationId"`
}

// LoadShippingMethods fetches methods for the draft and ranks them. An empty
// mode keeps the session's current mode. A previously selected method stays
// selected only if the carrier still offers it.
func (s *shipmentService) LoadShippingMethods(ctx context.Context, sid string, mode shipping.SortMode) (*MethodsView, error) {
	const op = "methods.load"
	if mode != "" && !mode.Valid() {
		return nil, domain.WithOp(ErrInvalidSortMode, op)
	}

	var out *MethodsView
	err := s.withSession(sid, op, func(sess *session) error {
		if mode != "" {
			sess.sortMode = mode
		}

		methods, err := s.provider.Methods(ctx, sess.draft.Clone())
		if err != nil {
			return fmt.Errorf("fetch shipping methods: %w", err)
		}

		buckets := shipping.BucketAndSort(methods, false, sess.sortMode)
		s.metrics.ObserveRanking(string(sess.sortMode), len(buckets.Home), len(buckets.Pickup), len(buckets.Return))

		sess.methods = buckets.Flatten()
		sess.draft.SelectedMethod = reselect(sess.methods, sess.draft.SelectedMethod)

		s.logger.Debug("shipping methods ranked",
			"session_id", sess.id,
			"sort_mode", sess.sortMode,
			"home", len(buckets.Home),
			"pickup", len(buckets.Pickup),
			"return", len(buckets.Return),
		)

		out = &MethodsView{
			SortMode: sess.sortMode,
			Buckets:  buckets,
			Methods:  cloneMethods(sess.methods),
		}
		if sess.draft.SelectedMethod != nil {
			m := sess.draft.SelectedMethod.Clone()
			out.Selected = &m
		}
		return nil
	})
	return out, err
}

// reselect finds the fresh copy of the previously selected method.
func reselect(methods []domain.ShippingMethod, prev *domain.ShippingMethod) *domain.ShippingMethod {
	if prev == nil {
		return nil
	}
	for _, m := range methods {
		if m.ID == prev.ID {
			c := m.Clone()
			return &c
		}
	}
	return nil
}

// SelectMethod picks one of the methods last loaded for the session.
func (s *shipmentService) SelectMethod(ctx context.Context, sid, methodID string) (domain.ShipmentDraft, error) {
	const op = "methods.select"
	return s.editDraft(sid, op, func(sess *session, d *domain.ShipmentDraft) error {
		for _, m := range sess.methods {
			if m.ID == methodID {
				c := m.Clone()
				if d.SelectedMethod == nil || d.SelectedMethod.ServiceID != c.ServiceID {
					d.PickupLocationID = nil
				}
				d.SelectedMethod = &c
				return nil
			}
		}
		return domain.WithOp(domain.ErrMethodNotFound, op)
	})
}

// LoadPickupLocations fetches the pickup points of a service and
// preselects the first one.
func (s *shipmentService) LoadPickupLocations(ctx context.Context, sid, serviceID string) (*PickupView, error) {
	var out *PickupView
	err := s.withSession(sid, "pickups.load", func(sess *session) error {
		locs, err := s.provider.PickupLocations(ctx, serviceID)
		if err != nil {
			return fmt.Errorf("fetch pickup locations: %w", err)
		}
		if locs == nil {
			locs = []domain.PickupLocation{}
		}

		sess.pickups = locs
		sess.draft.PickupLocationID = nil
		if id, ok := shipping.DefaultPickupLocations(locs)[serviceID]; ok {
			sess.draft.PickupLocationID = &id
		}

		out = &PickupView{
			ServiceID:        serviceID,
			Locations:        append([]domain.PickupLocation(nil), locs...),
			PickupLocationID: cloneString(sess.draft.PickupLocationID),
		}
		return nil
	})
	return out, err
}

// SelectPickupLocation picks one of the pickup points last loaded.
func (s *shipmentService) SelectPickupLocation(ctx context.Context, sid, locationID string) (domain.ShipmentDraft, error) {
	const op = "pickups.select"
	return s.editDraft(sid, op, func(sess *session, d *domain.ShipmentDraft) error {
		if d.SelectedMethod == nil || !d.SelectedMethod.IsPickupLocationMethod {
			return domain.WithOp(ErrPickupNotSupported, op)
		}
		for _, l := range sess.pickups {
			if l.ID == locationID {
				id := l.ID
				d.PickupLocationID = &id
				return nil
			}
		}
		return domain.WithOp(ErrPickupLocationNotFound, op)
	})
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
