// Package cart holds the checkout basket: the priced lines waiting for
// payment, their totals and the checkout state machine.
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/dukerupert/shippor/internal/domain"
)

// DefaultFeeRate is the service fee charged on top of the cart subtotal.
const DefaultFeeRate = 0.06

// Line is the priced view of one cart item.
type Line struct {
	ID    string  `json:"id" validate:"required"`
	Title string  `json:"title"`
	Price float64 `json:"price" validate:"gte=0"`
}

// Totals is the amount due for a cart.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Fee      float64 `json:"fee"`
	Total    float64 `json:"total"`
}

// Aggregator computes cart totals with a configurable fee rate.
type Aggregator struct {
	FeeRate decimal.Decimal
}

// NewAggregator returns an Aggregator charging rate on the subtotal.
func NewAggregator(rate float64) Aggregator {
	return Aggregator{FeeRate: decimal.NewFromFloat(rate)}
}

// Totals sums the lines and applies the fee. Every stage is rounded to
// cents so the figures match what the customer sees line by line.
func (a Aggregator) Totals(lines []Line) Totals {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(decimal.NewFromFloat(l.Price))
	}
	subtotal := sum.Round(2)
	fee := subtotal.Mul(a.FeeRate).Round(2)
	total := subtotal.Add(fee).Round(2)

	return Totals{
		Subtotal: subtotal.InexactFloat64(),
		Fee:      fee.InexactFloat64(),
		Total:    total.InexactFloat64(),
	}
}

var defaultAggregator = NewAggregator(DefaultFeeRate)

// CalculateTotals computes totals at DefaultFeeRate.
func CalculateTotals(lines []Line) Totals {
	return defaultAggregator.Totals(lines)
}

// Summary counts shipments per lifecycle status.
type Summary struct {
	Pending        int `json:"pending"`
	OutForDelivery int `json:"outForDelivery"`
	Delivered      int `json:"delivered"`
}

// StatusSummary counts records by status. Unknown statuses are not counted.
func StatusSummary(records []domain.ShipmentRecord) Summary {
	var s Summary
	for _, r := range records {
		switch r.Status {
		case domain.ShipmentPending:
			s.Pending++
		case domain.ShipmentOutForDelivery:
			s.OutForDelivery++
		case domain.ShipmentDelivered:
			s.Delivered++
		}
	}
	return s
}
