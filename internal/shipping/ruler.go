package shipping

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/dukerupert/shippor/internal/domain"
)

// SortMode selects fastest-first or cheapest-first ordering.
type SortMode string

const (
	SortByDeliveryTime SortMode = "deliveryTime"
	SortByPrice        SortMode = "price"
)

// Valid reports whether m is a known mode.
func (m SortMode) Valid() bool {
	return m == SortByDeliveryTime || m == SortByPrice
}

// Buckets groups methods by how the parcel reaches the recipient.
type Buckets struct {
	Home   []domain.ShippingMethod `json:"home"`
	Pickup []domain.ShippingMethod `json:"pickup"`
	Return []domain.ShippingMethod `json:"return"`
}

// Len is the number of methods across all buckets.
func (b Buckets) Len() int {
	return len(b.Home) + len(b.Pickup) + len(b.Return)
}

// Flatten returns home, pickup and return methods in that order.
func (b Buckets) Flatten() []domain.ShippingMethod {
	out := make([]domain.ShippingMethod, 0, b.Len())
	out = append(out, b.Home...)
	out = append(out, b.Pickup...)
	return append(out, b.Return...)
}

// rank is the composite sort key of a method in a given mode.
type rank struct {
	min, max int
	tenths   int64
}

// priceTenths scales a price to tenths, rounding half up.
func priceTenths(price float64) int64 {
	return int64(math.Floor(price*10 + 0.5))
}

func rankOf(m domain.ShippingMethod, mode SortMode) rank {
	est := ParseDeliveryEstimate(m.DeliveryTime)
	r := rank{min: est.Min, max: est.Max, tenths: priceTenths(m.Price)}
	// A zero estimate from a carrier without same-day service means the
	// carrier did not say, so it ranks near the end.
	if mode == SortByDeliveryTime && r.min == 0 && r.max == 0 && !SupportsSameDay(m.ServiceID) {
		r.min = 999
	}
	return r
}

// compareRank orders two keys exactly as their ten-digit zero padded string
// forms would compare.
func compareRank(a, b rank, mode SortMode) int {
	if mode == SortByPrice {
		return cmp.Or(
			cmp.Compare(a.tenths, b.tenths),
			cmp.Compare(a.min, b.min),
			cmp.Compare(a.max, b.max),
		)
	}
	return cmp.Or(
		cmp.Compare(a.min, b.min),
		cmp.Compare(a.max, b.max),
		cmp.Compare(a.tenths, b.tenths),
	)
}

// SortKey renders the composite key used to order m, for debugging.
func SortKey(m domain.ShippingMethod, mode SortMode) string {
	r := rankOf(m, mode)
	if mode == SortByPrice {
		return fmt.Sprintf("%010d_%010d_%010d", r.tenths, r.min, r.max)
	}
	return fmt.Sprintf("%010d_%010d_%010d", r.min, r.max, r.tenths)
}

// SortMethods orders methods in place. Equal keys keep their input order.
func SortMethods(methods []domain.ShippingMethod, mode SortMode) {
	slices.SortStableFunc(methods, func(a, b domain.ShippingMethod) int {
		return compareRank(rankOf(a, mode), rankOf(b, mode), mode)
	})
}

// BucketAndSort drops printer-only methods when the user has no printer,
// splits the rest into return, pickup and home buckets (in that priority)
// and sorts each bucket. The input slice is not modified.
func BucketAndSort(methods []domain.ShippingMethod, noPrinterNeeded bool, mode SortMode) Buckets {
	b := Buckets{
		Home:   []domain.ShippingMethod{},
		Pickup: []domain.ShippingMethod{},
		Return: []domain.ShippingMethod{},
	}
	for _, m := range methods {
		if noPrinterNeeded && m.PrinterRequired {
			continue
		}
		switch {
		case m.IsReturnService:
			b.Return = append(b.Return, m)
		case m.IsPickupLocationMethod:
			b.Pickup = append(b.Pickup, m)
		default:
			b.Home = append(b.Home, m)
		}
	}

	SortMethods(b.Home, mode)
	SortMethods(b.Pickup, mode)
	SortMethods(b.Return, mode)
	return b
}

// SelectionErrors is the error bag for the method selection step.
type SelectionErrors struct {
	ShippingMethod string `json:"shippingMethod,omitempty"`
}

func (e SelectionErrors) HasErrors() bool { return e.ShippingMethod != "" }

// ValidateSelection requires a chosen method.
func ValidateSelection(m *domain.ShippingMethod) SelectionErrors {
	if m == nil {
		return SelectionErrors{ShippingMethod: "This field is required"}
	}
	return SelectionErrors{}
}

// DefaultPickupLocations picks the first listed location for each service.
func DefaultPickupLocations(locs []domain.PickupLocation) map[string]string {
	out := make(map[string]string, len(locs))
	for _, l := range locs {
		if _, ok := out[l.ServiceID]; !ok {
			out[l.ServiceID] = l.ID
		}
	}
	return out
}
