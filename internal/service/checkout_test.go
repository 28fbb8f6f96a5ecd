package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/shippor/internal/address"
	"github.com/dukerupert/shippor/internal/cart"
	"github.com/dukerupert/shippor/internal/country"
	"github.com/dukerupert/shippor/internal/domain"
	"github.com/dukerupert/shippor/internal/events"
	"github.com/dukerupert/shippor/internal/shipping"
)

// recordingProvider books every draft it is given and can refuse drafts by
// reference.
func recordingProvider(methods ...domain.ShippingMethod) *shipping.MockProvider {
	p := shipping.NewMockProvider()
	p.MethodsFunc = func(ctx context.Context, d domain.ShipmentDraft) ([]domain.ShippingMethod, error) {
		return methods, nil
	}
	p.CreateShipmentFunc = func(ctx context.Context, d domain.ShipmentDraft) (*domain.ShipmentRecord, error) {
		if d.Reference == "refuse" {
			return nil, shipping.ErrUnknownMethod
		}
		if d.Reference == "boom" {
			return nil, errors.New("connection reset")
		}
		rec := &domain.ShipmentRecord{
			ID:             "SHP-" + d.Reference,
			TrackingNumber: "TRK-" + d.Reference,
			Status:         domain.ShipmentPending,
		}
		if d.SelectedMethod != nil {
			rec.Service = d.SelectedMethod.Label
			rec.Price = d.SelectedMethod.Price
		}
		return rec, nil
	}
	return p
}

// addItem builds a draft with the given method and reference and pushes it
// to the cart.
func (e *testEnv) addItem(t *testing.T, sid, methodID, ref string, dangerous bool) domain.CartItem {
	t.Helper()
	ctx := context.Background()

	_, err := e.svc.LoadShippingMethods(ctx, sid, "")
	require.NoError(t, err)
	_, err = e.svc.SelectMethod(ctx, sid, methodID)
	require.NoError(t, err)
	_, err = e.svc.UpdateShipmentDetails(ctx, sid, DetailsUpdate{Reference: &ref})
	require.NoError(t, err)

	if dangerous {
		// Bypass the add-on menu; the cart must cope with restored drafts.
		sess, err := e.svc.lookup(sid, "test")
		require.NoError(t, err)
		sess.mu.Lock()
		sess.draft.Addons.Dangerous = true
		sess.mu.Unlock()
	}

	item, err := e.svc.AddDraftToCart(ctx, sid)
	require.NoError(t, err)
	return item
}

var paid = CheckoutRequest{Payment: "card", AgreeToTerms: true}

// ============================================================================
// Cart
// ============================================================================

func TestAddDraftToCart(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	sid := env.session(t)

	_, err := env.svc.ReplaceAddress(ctx, sid, domain.RoleSender, shipping.DemoAddresses()[0])
	require.NoError(t, err)
	_, err = env.svc.ReplaceAddress(ctx, sid, domain.RoleRecipient, shipping.DemoAddresses()[1])
	require.NoError(t, err)

	item := env.addItem(t, sid, "m-1", "A", false)
	assert.Equal(t, "Austin -> San Diego", item.Title)
	assert.Equal(t, 24.5, item.Price)
	assert.Equal(t, domain.CartItemAdded, item.State)

	view, err := env.svc.Session(ctx, sid)
	require.NoError(t, err)
	assert.Empty(t, view.Draft.SenderAddress.City, "draft reset after adding")
	assert.Empty(t, view.Methods, "methods cleared after adding")
	require.Len(t, view.Cart, 1)
	assert.Equal(t, "Austin", view.Cart[0].Draft.SenderAddress.City)
}

func TestCartTotals(t *testing.T) {
	env := newTestEnv(t, recordingProvider(method("a", 12.2), method("b", 7.8)))
	sid := env.session(t)

	env.addItem(t, sid, "a", "1", false)
	env.addItem(t, sid, "b", "2", false)

	totals, err := env.svc.CartTotals(context.Background(), sid)
	require.NoError(t, err)
	assert.Equal(t, cart.Totals{Subtotal: 20, Fee: 1.2, Total: 21.2}, totals)
}

func TestRemoveCartItem(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	sid := env.session(t)

	item := env.addItem(t, sid, "m-1", "A", false)

	assert.ErrorIs(t, env.svc.RemoveCartItem(ctx, sid, "missing"), domain.ErrCartItemNotFound)
	require.NoError(t, env.svc.RemoveCartItem(ctx, sid, item.ID))

	view, err := env.svc.Session(ctx, sid)
	require.NoError(t, err)
	assert.Empty(t, view.Cart)
}

// ============================================================================
// SubmitCart
// ============================================================================

func TestSubmitCart_Refused(t *testing.T) {
	tests := []struct {
		name    string
		fill    bool
		req     CheckoutRequest
		wantErr *domain.Error
	}{
		{"empty cart", false, paid, domain.ErrCartEmpty},
		{"no payment method", true, CheckoutRequest{AgreeToTerms: true}, domain.ErrPaymentMethodRequired},
		{"terms not accepted", true, CheckoutRequest{Payment: "card"}, domain.ErrTermsNotAccepted},
		{"invoice gateway", true, CheckoutRequest{Payment: PaymentInvoice, AgreeToTerms: true}, domain.ErrInvoiceGatewayFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			sid := env.session(t)
			if tt.fill {
				env.addItem(t, sid, "m-1", "A", false)
			}

			res, err := env.svc.SubmitCart(context.Background(), sid, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			require.NotNil(t, res)
			assert.Equal(t, cart.StatusFailedPayment, res.State.Status)
			assert.Equal(t, tt.wantErr.Message, res.State.Errors.General)
			assert.True(t, res.State.AgreeToTerms, "failed-payment is a settled state")
			assert.Empty(t, res.Created)
			assert.Empty(t, env.pub.Events())

			if tt.fill {
				view, err := env.svc.Session(context.Background(), sid)
				require.NoError(t, err)
				assert.Len(t, view.Cart, 1, "cart kept after refusal")
			}
		})
	}
}

func TestSubmitCart_AllShipped(t *testing.T) {
	pv0 := 10.0
	a := method("a", 12.2)
	a.PriceVat0 = &pv0
	env := newTestEnv(t, recordingProvider(a, method("b", 7.8)))
	ctx := context.Background()
	sid := env.session(t)

	env.addItem(t, sid, "a", "1", false)
	env.addItem(t, sid, "b", "2", false)

	res, err := env.svc.SubmitCart(ctx, sid, paid)
	require.NoError(t, err)

	assert.Equal(t, cart.StatusShipped, res.State.Status)
	assert.NotEmpty(t, res.State.CartID)
	assert.Equal(t, 21.2, res.State.Price)
	assert.Equal(t, 17.8, res.State.PriceVat0)
	assert.Empty(t, res.State.SelectedPayment)
	assert.Empty(t, res.State.Errors.General)
	assert.Len(t, res.Created, 2)
	assert.Empty(t, res.Failed)
	assert.Equal(t, cart.Totals{}, res.Totals)

	view, err := env.svc.Session(ctx, sid)
	require.NoError(t, err)
	assert.Empty(t, view.Cart)
	assert.Len(t, view.LastShipments, 2)

	assert.Len(t, env.pub.OfType(events.TypeShipmentCreated), 2)
	checkedOut := env.pub.OfType(events.TypeCartCheckedOut)
	require.Len(t, checkedOut, 1)
	data := checkedOut[0].Data.(events.CartCheckedOut)
	assert.Equal(t, "shipped", data.Outcome)
	assert.Equal(t, 2, data.Succeeded)
	assert.Equal(t, 21.2, data.Total)
}

func TestSubmitCart_PartialFailure(t *testing.T) {
	env := newTestEnv(t, recordingProvider(method("a", 10), method("b", 5)))
	ctx := context.Background()
	sid := env.session(t)

	env.addItem(t, sid, "a", "1", false)
	bad := env.addItem(t, sid, "b", "2", true)

	res, err := env.svc.SubmitCart(ctx, sid, paid)
	require.NoError(t, err)

	assert.Equal(t, cart.StatusFailedPayment, res.State.Status)
	assert.Equal(t, "1 shipment(s) failed. Successful shipments were created.", res.State.Errors.General)
	assert.Equal(t, domain.ErrDangerousGoodsFailed.Message, res.State.Errors.PerItem[bad.ID])
	assert.Equal(t, 10.6, res.State.Price, "only booked items are charged")
	require.Len(t, res.Created, 1)
	assert.Equal(t, "SHP-1", res.Created[0].ID)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, domain.CartItemFailedShipmentCanRetry, res.Failed[0].State)

	view, err := env.svc.Session(ctx, sid)
	require.NoError(t, err)
	require.Len(t, view.Cart, 1)
	assert.Equal(t, bad.ID, view.Cart[0].ID)
	assert.Equal(t, domain.CartItemFailedShipmentCanRetry, view.Cart[0].State)
}

func TestSubmitCart_AllFailed(t *testing.T) {
	env := newTestEnv(t, recordingProvider(method("a", 10)))
	ctx := context.Background()
	sid := env.session(t)

	refused := env.addItem(t, sid, "a", "refuse", false)
	broken := env.addItem(t, sid, "a", "boom", false)

	res, err := env.svc.SubmitCart(ctx, sid, paid)
	assert.ErrorIs(t, err, domain.ErrAllShipmentsFailed)
	require.NotNil(t, res)

	assert.Equal(t, cart.StatusFailedPayment, res.State.Status)
	assert.Equal(t, domain.ErrAllShipmentsFailed.Message, res.State.Errors.General)
	assert.Equal(t, shipping.ErrUnknownMethod.Message, res.State.Errors.PerItem[refused.ID])
	assert.Equal(t, msgShipmentFailed, res.State.Errors.PerItem[broken.ID])
	assert.Len(t, res.Failed, 2)
	assert.Zero(t, res.State.Price)
	assert.Empty(t, env.pub.OfType(events.TypeShipmentCreated))
}

func TestRetryCartItem(t *testing.T) {
	env := newTestEnv(t, recordingProvider(method("a", 10)))
	ctx := context.Background()
	sid := env.session(t)

	bad := env.addItem(t, sid, "a", "refuse", false)
	_, err := env.svc.SubmitCart(ctx, sid, paid)
	require.Error(t, err)

	_, err = env.svc.RetryCartItem(ctx, sid, "missing")
	assert.ErrorIs(t, err, domain.ErrCartItemNotFound)

	d, err := env.svc.RetryCartItem(ctx, sid, bad.ID)
	require.NoError(t, err)
	assert.Equal(t, "refuse", d.Reference)

	view, err := env.svc.Session(ctx, sid)
	require.NoError(t, err)
	assert.Empty(t, view.Cart)
	assert.Equal(t, "refuse", view.Draft.Reference)
	assert.Equal(t, cart.StatusNotCreated, view.Checkout.Status)
	assert.Empty(t, view.Checkout.Errors.General)
	assert.NotContains(t, view.Checkout.Errors.PerItem, bad.ID)
}

func TestSubmitCart_ChargesCatalogBalance(t *testing.T) {
	provider := shipping.NewCatalogProvider(shipping.DemoCatalog())
	env := newTestEnv(t, provider)
	ctx := context.Background()
	sid := env.session(t)

	env.addItem(t, sid, "m-1", "A", false)
	_, err := env.svc.SubmitCart(ctx, sid, paid)
	require.NoError(t, err)

	dash, err := env.svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 216.0, dash.Balance)
	assert.Len(t, dash.Shipments, 4)
	assert.Equal(t, 2, dash.Summary.Pending)
}

// ============================================================================
// Quick shipment
// ============================================================================

func TestSubmitQuickShipment_Incomplete(t *testing.T) {
	env := newTestEnv(t, nil)
	sid := env.session(t)

	res, err := env.svc.SubmitQuickShipment(context.Background(), sid)
	assert.ErrorIs(t, err, domain.ErrQuickShipmentIncomplete)
	require.NotNil(t, res)
	assert.Equal(t, cart.StatusFailedPayment, res.State.Status)
	assert.Equal(t, domain.ErrQuickShipmentIncomplete.Message, res.State.Errors.General)
}

func TestSubmitQuickShipment_PicksFirstMethod(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	sid := env.session(t)

	_, err := env.svc.UpdateAddressField(ctx, sid, domain.RoleSender, "name", "Alex Freight")
	require.NoError(t, err)
	_, err = env.svc.UpdateAddressField(ctx, sid, domain.RoleRecipient, "name", "Taylor Recipient")
	require.NoError(t, err)

	res, err := env.svc.SubmitQuickShipment(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, cart.StatusShipped, res.State.Status)
	require.Len(t, res.Created, 1)
	assert.Equal(t, "Express Air", res.Created[0].Service)
	assert.Equal(t, 24.5, res.State.Price)

	view, err := env.svc.Session(ctx, sid)
	require.NoError(t, err)
	assert.Empty(t, view.Draft.SenderAddress.Name)
	assert.Len(t, view.LastShipments, 1)
	assert.Len(t, env.pub.OfType(events.TypeShipmentCreated), 1)
}

func TestSubmitQuickShipment_CarrierRefuses(t *testing.T) {
	env := newTestEnv(t, recordingProvider(method("a", 10)))
	ctx := context.Background()
	sid := env.session(t)

	_, err := env.svc.UpdateAddressField(ctx, sid, domain.RoleSender, "name", "Sam")
	require.NoError(t, err)
	_, err = env.svc.UpdateAddressField(ctx, sid, domain.RoleRecipient, "name", "Kim")
	require.NoError(t, err)
	_, err = env.svc.UpdateShipmentDetails(ctx, sid, DetailsUpdate{Reference: ptr("refuse")})
	require.NoError(t, err)

	res, err := env.svc.SubmitQuickShipment(ctx, sid)
	assert.ErrorIs(t, err, shipping.ErrUnknownMethod)
	require.NotNil(t, res)
	assert.Equal(t, cart.StatusFailedPayment, res.State.Status)
	assert.Equal(t, shipping.ErrUnknownMethod.Message, res.State.Errors.General)

	d, err := env.svc.Draft(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, "refuse", d.Reference, "draft kept for another attempt")
}

// ============================================================================
// Account views
// ============================================================================

func TestDashboard(t *testing.T) {
	env := newTestEnv(t, nil)

	dash, err := env.svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 240.5, dash.Balance)
	assert.Len(t, dash.Shipments, 3)
	assert.Len(t, dash.Tracking, 3)
	assert.Equal(t, cart.Summary{Pending: 1, OutForDelivery: 1, Delivered: 1}, dash.Summary)
}

func TestDashboard_ProviderError(t *testing.T) {
	provider := shipping.NewMockProvider()
	provider.ShipmentsFunc = func(ctx context.Context) ([]domain.ShipmentRecord, error) {
		return nil, errors.New("timeout")
	}
	env := newTestEnv(t, provider)

	_, err := env.svc.Dashboard(context.Background())
	assert.ErrorContains(t, err, "fetch shipments")
}

func TestTrack(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	all, err := env.svc.Track(ctx, "  ")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	one, err := env.svc.Track(ctx, "trk1002")
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "Out for delivery", one[0].Status)

	none, err := env.svc.Track(ctx, "nope")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestAddAddress(t *testing.T) {
	ctx := context.Background()

	t.Run("saves normalized address", func(t *testing.T) {
		env := newTestEnv(t, nil)

		saved, err := env.svc.AddAddress(ctx, domain.Address{
			Name:       " Robin ",
			Street:     "1 Main St",
			City:       "Austin",
			State:      "TX",
			PostalCode: "73301",
			Country:    "us",
			Phone:      "202 555 0100",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, saved.ID)
		assert.Equal(t, "US", saved.Country)
		assert.Equal(t, "Robin", saved.Name)
		assert.Equal(t, "+12025550100", saved.Phone)

		found, err := env.svc.SearchAddresses(ctx, "robin")
		require.NoError(t, err)
		assert.Len(t, found, 1)
	})

	t.Run("returns field errors", func(t *testing.T) {
		env := newTestEnv(t, nil)

		_, err := env.svc.AddAddress(ctx, domain.Address{Country: "US"})
		require.Error(t, err)
		fields := domain.GetValidationFields(err)
		assert.Contains(t, fields, "street")
		assert.Contains(t, fields, "city")
		assert.Equal(t, "addresses.add", domain.ErrorOp(err))
	})

	t.Run("validator failure", func(t *testing.T) {
		v := address.NewMockValidator()
		v.ValidateFunc = func(ctx context.Context, a domain.Address) (*address.ValidationResult, error) {
			return nil, errors.New("postal api down")
		}
		svc, err := NewShipmentService(Deps{
			Meta:             country.Default(),
			Provider:         shipping.NewMockProvider(),
			AddressValidator: v,
		})
		require.NoError(t, err)

		_, err = svc.AddAddress(ctx, domain.Address{})
		assert.Equal(t, domain.EUNAVAILABLE, domain.ErrorCode(err))
	})
}
