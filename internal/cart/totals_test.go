package cart_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dukerupert/shippor/internal/cart"
	"github.com/dukerupert/shippor/internal/domain"
)

func TestCalculateTotals(t *testing.T) {
	tests := []struct {
		name  string
		lines []cart.Line
		want  cart.Totals
	}{
		{
			name:  "two lines",
			lines: []cart.Line{{ID: "1", Title: "A", Price: 12.2}, {ID: "2", Title: "B", Price: 7.8}},
			want:  cart.Totals{Subtotal: 20, Fee: 1.2, Total: 21.2},
		},
		{
			name:  "float noise is rounded away",
			lines: []cart.Line{{ID: "1", Price: 0.1}, {ID: "2", Price: 0.2}},
			want:  cart.Totals{Subtotal: 0.3, Fee: 0.02, Total: 0.32},
		},
		{
			name:  "fee rounded before total",
			lines: []cart.Line{{ID: "1", Price: 19.99}},
			want:  cart.Totals{Subtotal: 19.99, Fee: 1.2, Total: 21.19},
		},
		{
			name:  "empty cart",
			lines: nil,
			want:  cart.Totals{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cart.CalculateTotals(tt.lines))
		})
	}
}

func TestAggregator_CustomRate(t *testing.T) {
	agg := cart.NewAggregator(0.1)
	got := agg.Totals([]cart.Line{{ID: "1", Price: 50}})
	assert.Equal(t, cart.Totals{Subtotal: 50, Fee: 5, Total: 55}, got)

	free := cart.NewAggregator(0)
	assert.Equal(t, cart.Totals{Subtotal: 50, Fee: 0, Total: 50}, free.Totals([]cart.Line{{ID: "1", Price: 50}}))
}

func TestStatusSummary(t *testing.T) {
	records := []domain.ShipmentRecord{
		{ID: "s1", Status: domain.ShipmentPending},
		{ID: "s2", Status: domain.ShipmentOutForDelivery},
		{ID: "s3", Status: domain.ShipmentDelivered},
		{ID: "s4", Status: domain.ShipmentDelivered},
		{ID: "s5", Status: "returned"},
	}

	assert.Equal(t, cart.Summary{Pending: 1, OutForDelivery: 1, Delivered: 2}, cart.StatusSummary(records))
	assert.Equal(t, cart.Summary{}, cart.StatusSummary(nil))
}
