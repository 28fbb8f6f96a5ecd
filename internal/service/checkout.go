package service

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"github.com/google/uuid"

	"github.com/dukerupert/shippor/internal/cart"
	"github.com/dukerupert/shippor/internal/domain"
	"github.com/dukerupert/shippor/internal/events"
	"github.com/dukerupert/shippor/internal/shipping"
)

// PaymentInvoice is the invoice gateway, which is stubbed to always fail.
const PaymentInvoice = "invoice"

// CheckoutRequest carries the choices made on the payment screen.
type CheckoutRequest struct {
	Payment      string `json:"payment"`
	AgreeToTerms bool   `json:"agreeToTerms"`
}

// CheckoutResult reports what a checkout attempt did.
type CheckoutResult struct {
	State   cart.State              `json:"state"`
	Created []domain.ShipmentRecord `json:"created"`
	Failed  []domain.CartItem       `json:"failed"`
	Totals  cart.Totals             `json:"totals"`
}

// AddDraftToCart snapshots the draft into the cart and starts a new draft.
func (s *shipmentService) AddDraftToCart(ctx context.Context, sid string) (domain.CartItem, error) {
	var out domain.CartItem
	err := s.withSession(sid, "cart.add", func(sess *session) error {
		out = sess.cart.Add(sess.draft)
		sess.draft = domain.NewDraft()
		sess.clearMethods()

		s.logger.Info("draft added to cart",
			"session_id", sess.id,
			"item_id", out.ID,
			"price", out.Price,
			"items", sess.cart.Len(),
		)
		return nil
	})
	return out, err
}

// RetryCartItem takes an item out of the cart and makes its draft the
// current draft again.
func (s *shipmentService) RetryCartItem(ctx context.Context, sid, itemID string) (domain.ShipmentDraft, error) {
	const op = "cart.retry"
	var out domain.ShipmentDraft
	err := s.withSession(sid, op, func(sess *session) error {
		draft, ok := sess.cart.Retry(itemID)
		if !ok {
			return domain.WithOp(domain.ErrCartItemNotFound, op)
		}
		sess.draft = draft
		sess.clearMethods()

		errs := cart.Errors{PerItem: withoutItem(sess.checkout.Errors.PerItem, itemID)}
		sess.checkout = cart.Reduce(sess.checkout,
			cart.SetErrors(errs),
			cart.SetCartState(cart.StatusNotCreated),
		)

		out = draft.Clone()
		return nil
	})
	return out, err
}

func (s *shipmentService) RemoveCartItem(ctx context.Context, sid, itemID string) error {
	const op = "cart.remove"
	return s.withSession(sid, op, func(sess *session) error {
		if !sess.cart.Remove(itemID) {
			return domain.WithOp(domain.ErrCartItemNotFound, op)
		}
		errs := sess.checkout.Errors
		errs.PerItem = withoutItem(errs.PerItem, itemID)
		sess.checkout = cart.Reduce(sess.checkout, cart.SetErrors(errs))
		return nil
	})
}

func withoutItem(perItem map[string]string, itemID string) map[string]string {
	out := maps.Clone(perItem)
	delete(out, itemID)
	return out
}

func (s *shipmentService) CartTotals(ctx context.Context, sid string) (cart.Totals, error) {
	var out cart.Totals
	err := s.withSession(sid, "cart.totals", func(sess *session) error {
		out = s.agg.Totals(sess.cart.Lines())
		return nil
	})
	return out, err
}

// failCheckout records a checkout that stopped before any booking.
func (s *shipmentService) failCheckout(sess *session, op string, cause *domain.Error) (*CheckoutResult, error) {
	sess.checkout = cart.Reduce(sess.checkout,
		cart.SetCartState(cart.StatusFailedPayment),
		cart.SetErrors(cart.Errors{General: cause.Message, PerItem: sess.checkout.Errors.PerItem}),
	)
	s.logger.Info("checkout refused", "session_id", sess.id, "reason", cause.Message)
	return s.result(sess, nil, nil), domain.WithOp(cause, op)
}

func (s *shipmentService) result(sess *session, created []domain.ShipmentRecord, failed []domain.CartItem) *CheckoutResult {
	if created == nil {
		created = []domain.ShipmentRecord{}
	}
	if failed == nil {
		failed = []domain.CartItem{}
	}
	return &CheckoutResult{
		State:   cart.Reduce(sess.checkout),
		Created: created,
		Failed:  failed,
		Totals:  s.agg.Totals(sess.cart.Lines()),
	}
}

// bookingError is the message stored against a cart item that could not
// be booked.
func bookingError(err error) string {
	var se *shipping.ShippingError
	if errors.As(err, &se) {
		return se.ErrorMessage()
	}
	var de *domain.Error
	if errors.As(err, &de) && de.Code != domain.EINTERNAL {
		return de.Message
	}
	return msgShipmentFailed
}

// SubmitCart pays for the cart and books every item in it. Items that fail
// stay in the cart marked for retry while the rest are booked. The result
// is returned even when err is set so callers can show the stored state.
func (s *shipmentService) SubmitCart(ctx context.Context, sid string, req CheckoutRequest) (*CheckoutResult, error) {
	const op = "cart.submit"
	var (
		out *CheckoutResult
		ret error
	)
	err := s.withSession(sid, op, func(sess *session) error {
		sess.checkout = cart.Reduce(sess.checkout,
			cart.SetPaymentMethod(req.Payment),
			cart.AgreeToTerms(req.AgreeToTerms),
		)

		switch {
		case sess.cart.Len() == 0:
			out, ret = s.failCheckout(sess, op, domain.ErrCartEmpty)
			return nil
		case req.Payment == "":
			out, ret = s.failCheckout(sess, op, domain.ErrPaymentMethodRequired)
			return nil
		case !req.AgreeToTerms:
			out, ret = s.failCheckout(sess, op, domain.ErrTermsNotAccepted)
			return nil
		case req.Payment == PaymentInvoice:
			s.metrics.ObserveCheckout(req.Payment, string(cart.StatusFailedPayment), 0)
			out, ret = s.failCheckout(sess, op, domain.ErrInvoiceGatewayFailed)
			return nil
		}

		actions := []cart.Action{
			cart.SetCartState(cart.StatusPending),
			cart.SetErrors(cart.Errors{}),
		}
		if sess.checkout.CartID == "" {
			actions = append(actions, cart.SetCartID(uuid.NewString()))
		}
		sess.checkout = cart.Reduce(sess.checkout, actions...)

		var (
			created []domain.ShipmentRecord
			booked  []domain.CartItem
			failed  []domain.CartItem
			perItem = map[string]string{}
		)
		for _, item := range sess.cart.Items() {
			var (
				rec *domain.ShipmentRecord
				err error
			)
			if item.Draft.Addons.Dangerous {
				err = domain.ErrDangerousGoodsFailed
			} else {
				rec, err = s.provider.CreateShipment(ctx, item.Draft)
			}
			s.metrics.ObserveBooking(err == nil)

			if err != nil {
				s.logger.Warn("shipment booking failed",
					"session_id", sess.id,
					"item_id", item.ID,
					"error", err,
				)
				sess.cart.SetState(item.ID, domain.CartItemFailedShipmentCanRetry)
				item.State = domain.CartItemFailedShipmentCanRetry
				failed = append(failed, item)
				perItem[item.ID] = bookingError(err)
				continue
			}

			sess.cart.SetState(item.ID, domain.CartItemShipped)
			created = append(created, *rec)
			booked = append(booked, item)
			s.publish(ctx, sess.id, events.TypeShipmentCreated, events.ShipmentCreated{
				ShipmentID:     rec.ID,
				TrackingNumber: rec.TrackingNumber,
				CartItemID:     item.ID,
				Service:        rec.Service,
				Price:          rec.Price,
				Route:          item.Title,
			})
		}

		charged := s.chargeFor(booked)

		if len(created) == 0 {
			sess.checkout = cart.Reduce(sess.checkout,
				cart.SetCartState(cart.StatusFailedPayment),
				cart.SetErrors(cart.Errors{General: domain.ErrAllShipmentsFailed.Message, PerItem: perItem}),
			)
			s.finishCheckout(ctx, sess, req.Payment, 0, len(failed), cart.Totals{})
			out, ret = s.result(sess, created, failed), domain.WithOp(domain.ErrAllShipmentsFailed, op)
			return nil
		}

		for _, item := range booked {
			sess.cart.Remove(item.ID)
		}

		next := cart.StatusShipped
		errs := cart.Errors{}
		if len(failed) > 0 {
			next = cart.StatusFailedPayment
			errs = cart.Errors{
				General: fmt.Sprintf("%d shipment(s) failed. Successful shipments were created.", len(failed)),
				PerItem: perItem,
			}
		}
		sess.checkout = cart.Reduce(sess.checkout,
			cart.SetCartState(cart.StatusPaid),
			cart.SetPrice(charged.Total),
			cart.SetPriceVat0(s.vat0For(booked)),
			cart.SetCartState(next),
			cart.SetErrors(errs),
			cart.SetPaymentMethod(""),
		)

		sess.shipped = created
		sess.draft = domain.NewDraft()
		sess.clearMethods()

		s.finishCheckout(ctx, sess, req.Payment, len(created), len(failed), charged)
		out = s.result(sess, created, failed)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, ret
}

// chargeFor totals the cart items that were booked.
func (s *shipmentService) chargeFor(items []domain.CartItem) cart.Totals {
	lines := make([]cart.Line, len(items))
	for i, it := range items {
		lines[i] = cart.Line{ID: it.ID, Title: it.Title, Price: it.Price}
	}
	return s.agg.Totals(lines)
}

// vat0For sums the VAT-free prices of the booked items. Methods that carry
// no split are taken at their full price.
func (s *shipmentService) vat0For(items []domain.CartItem) float64 {
	lines := make([]cart.Line, len(items))
	for i, it := range items {
		price := it.Price
		if m := it.Draft.SelectedMethod; m != nil && m.PriceVat0 != nil {
			price = *m.PriceVat0
		}
		lines[i] = cart.Line{ID: it.ID, Price: price}
	}
	return s.agg.Totals(lines).Subtotal
}

func (s *shipmentService) finishCheckout(ctx context.Context, sess *session, payment string, succeeded, failed int, charged cart.Totals) {
	outcome := string(sess.checkout.Status)
	s.metrics.ObserveCheckout(payment, outcome, charged.Total)
	s.publish(ctx, sess.id, events.TypeCartCheckedOut, events.CartCheckedOut{
		Payment:   payment,
		Outcome:   outcome,
		Succeeded: succeeded,
		Failed:    failed,
		Total:     charged.Total,
	})
	s.logger.Info("checkout finished",
		"session_id", sess.id,
		"cart_id", sess.checkout.CartID,
		"outcome", outcome,
		"succeeded", succeeded,
		"failed", failed,
		"total", charged.Total,
	)
}

// SubmitQuickShipment books the current draft directly, skipping the cart.
// When no method is selected the first one the carrier offers is used.
func (s *shipmentService) SubmitQuickShipment(ctx context.Context, sid string) (*CheckoutResult, error) {
	const op = "quick.submit"
	var (
		out *CheckoutResult
		ret error
	)
	err := s.withSession(sid, op, func(sess *session) error {
		draft := sess.draft.Clone()
		if draft.SelectedMethod == nil {
			methods, err := s.provider.Methods(ctx, draft.Clone())
			if err != nil && !errors.Is(err, shipping.ErrNoMethods) {
				return fmt.Errorf("fetch shipping methods: %w", err)
			}
			if len(methods) > 0 {
				m := methods[0].Clone()
				draft.SelectedMethod = &m
			}
		}

		if draft.SenderAddress.Name == "" || draft.RecipientAddress.Name == "" || draft.SelectedMethod == nil {
			out, ret = s.failCheckout(sess, op, domain.ErrQuickShipmentIncomplete)
			return nil
		}

		sess.checkout = cart.Reduce(sess.checkout,
			cart.SetCartState(cart.StatusPending),
			cart.SetErrors(cart.Errors{}),
		)

		rec, err := s.provider.CreateShipment(ctx, draft)
		s.metrics.ObserveBooking(err == nil)
		if err != nil {
			sess.checkout = cart.Reduce(sess.checkout,
				cart.SetCartState(cart.StatusFailedPayment),
				cart.SetErrors(cart.Errors{General: bookingError(err)}),
			)
			s.logger.Warn("quick shipment booking failed", "session_id", sess.id, "error", err)
			out, ret = s.result(sess, nil, nil), fmt.Errorf("%s: %w", op, err)
			return nil
		}

		s.publish(ctx, sess.id, events.TypeShipmentCreated, events.ShipmentCreated{
			ShipmentID:     rec.ID,
			TrackingNumber: rec.TrackingNumber,
			Service:        rec.Service,
			Price:          rec.Price,
			Route:          draft.RouteTitle(),
		})

		sess.checkout = cart.Reduce(sess.checkout,
			cart.SetCartState(cart.StatusShipped),
			cart.SetPrice(rec.Price),
			cart.SetPriceVat0(s.vat0For([]domain.CartItem{{ID: rec.ID, Price: rec.Price, Draft: draft}})),
		)
		sess.shipped = []domain.ShipmentRecord{*rec}
		sess.cart.Clear()
		sess.draft = domain.NewDraft()
		sess.clearMethods()

		s.logger.Info("quick shipment created",
			"session_id", sess.id,
			"shipment_id", rec.ID,
			"tracking_number", rec.TrackingNumber,
		)
		out = s.result(sess, []domain.ShipmentRecord{*rec}, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, ret
}
