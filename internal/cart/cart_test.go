package cart_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/shippor/internal/cart"
	"github.com/dukerupert/shippor/internal/domain"
)

func weight(v float64) *float64 { return &v }

func pricedDraft(from, to string, price float64) domain.ShipmentDraft {
	d := domain.NewDraft()
	d.SenderAddress.City = from
	d.RecipientAddress.City = to
	d.Parcels[0].Weight = weight(2)
	d.SelectedMethod = &domain.ShippingMethod{ID: "m-1", Price: price}
	return d
}

func TestCart_Add(t *testing.T) {
	c := cart.New()
	d := pricedDraft("Austin", "", 24.5)

	item := c.Add(d)
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "Austin -> Recipient", item.Title)
	assert.Equal(t, 24.5, item.Price)
	assert.Equal(t, domain.CartItemAdded, item.State)

	*d.Parcels[0].Weight = 99
	d.SenderAddress.City = "Boston"

	stored, ok := c.Get(item.ID)
	require.True(t, ok)
	assert.Equal(t, 2.0, *stored.Draft.Parcels[0].Weight, "stored draft must not alias the caller's draft")
	assert.Equal(t, "Austin", stored.Draft.SenderAddress.City)
}

func TestCart_AddWithoutMethod(t *testing.T) {
	c := cart.New()
	item := c.Add(domain.NewDraft())
	assert.Zero(t, item.Price)
	assert.Equal(t, "Sender -> Recipient", item.Title)
}

func TestCart_RemoveAndRetry(t *testing.T) {
	c := cart.New()
	a := c.Add(pricedDraft("Helsinki", "Oslo", 10))
	b := c.Add(pricedDraft("Turku", "Bergen", 12))

	draft, ok := c.Retry(a.ID)
	require.True(t, ok)
	assert.Equal(t, "Helsinki", draft.SenderAddress.City)
	assert.Equal(t, 1, c.Len())

	_, ok = c.Retry(a.ID)
	assert.False(t, ok)

	assert.True(t, c.Remove(b.ID))
	assert.False(t, c.Remove(b.ID))
	assert.Zero(t, c.Len())
}

func TestCart_ItemsAndLines(t *testing.T) {
	c := cart.New()
	a := c.Add(pricedDraft("A", "B", 12.2))
	b := c.Add(pricedDraft("C", "D", 7.8))

	require.True(t, c.SetState(b.ID, domain.CartItemFailedShipmentCanRetry))
	assert.False(t, c.SetState("missing", domain.CartItemShipped))

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, a.ID, items[0].ID)
	assert.Equal(t, domain.CartItemFailedShipmentCanRetry, items[1].State)

	items[0].Draft.Parcels[0].Weight = weight(50)
	again, _ := c.Get(a.ID)
	assert.Equal(t, 2.0, *again.Draft.Parcels[0].Weight)

	assert.Equal(t, []cart.Line{
		{ID: a.ID, Title: "A -> B", Price: 12.2},
		{ID: b.ID, Title: "C -> D", Price: 7.8},
	}, c.Lines())
	assert.Equal(t, 21.2, cart.CalculateTotals(c.Lines()).Total)

	c.Clear()
	assert.Empty(t, c.Items())
	assert.Empty(t, c.Lines())
}
