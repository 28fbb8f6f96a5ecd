package cart_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dukerupert/shippor/internal/cart"
)

func TestInitialState(t *testing.T) {
	s := cart.InitialState()
	assert.Equal(t, cart.StatusNotCreated, s.Status)
	assert.False(t, s.AgreeToTerms)
	assert.Empty(t, s.CartID)
}

func TestReduce_SettledStatusAgreesToTerms(t *testing.T) {
	for _, status := range []cart.Status{
		cart.StatusShipped, cart.StatusPaid, cart.StatusFailedPayment, cart.StatusPayLaterWithBilling,
	} {
		t.Run(string(status), func(t *testing.T) {
			next := cart.Reduce(cart.InitialState(), cart.SetCartState(status))
			assert.Equal(t, status, next.Status)
			assert.True(t, next.AgreeToTerms)
		})
	}

	for _, status := range []cart.Status{cart.StatusPending, cart.StatusLoading, cart.StatusAbandoned} {
		t.Run(string(status), func(t *testing.T) {
			next := cart.Reduce(cart.InitialState(), cart.SetCartState(status))
			assert.False(t, next.AgreeToTerms)
		})
	}
}

func TestReduce_SimpleSetters(t *testing.T) {
	next := cart.Reduce(cart.InitialState(),
		cart.SetCartID("cart-1"),
		cart.SetPaymentMethod("card"),
		cart.SetPrice(21.2),
		cart.SetPriceVat0(17.1),
		cart.AgreeToTerms(true),
	)

	assert.Equal(t, "cart-1", next.CartID)
	assert.Equal(t, "card", next.SelectedPayment)
	assert.Equal(t, 21.2, next.Price)
	assert.Equal(t, 17.1, next.PriceVat0)
	assert.True(t, next.AgreeToTerms)
}

func TestReduce_ItemErrors(t *testing.T) {
	initial := cart.InitialState()
	next := cart.Reduce(initial, cart.SetItemError{ItemID: "item-1", Message: "Invalid shipment"})

	assert.Equal(t, "Invalid shipment", next.Errors.PerItem["item-1"])
	assert.Nil(t, initial.Errors.PerItem)

	later := cart.Reduce(next,
		cart.SetItemError{ItemID: "item-2", Message: "Dangerous goods shipment failed"},
		cart.SetErrors(cart.Errors{General: "1 shipment(s) failed.", PerItem: map[string]string{"item-2": "x"}}),
	)
	assert.Len(t, next.Errors.PerItem, 1, "earlier state must not change")
	assert.Equal(t, "1 shipment(s) failed.", later.Errors.General)
	assert.Equal(t, map[string]string{"item-2": "x"}, later.Errors.PerItem)
}

func TestReduce_DoesNotShareErrorMaps(t *testing.T) {
	per := map[string]string{"a": "b"}
	s := cart.Reduce(cart.InitialState(), cart.SetErrors(cart.Errors{PerItem: per}))
	per["a"] = "changed"
	assert.Equal(t, "b", s.Errors.PerItem["a"])
}
