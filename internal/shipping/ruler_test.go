package shipping_test

import (
	"math/rand"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dukerupert/shippor/internal/domain"
	"github.com/dukerupert/shippor/internal/shipping"
)

func TestParseDeliveryEstimate(t *testing.T) {
	tests := []struct {
		in   string
		want shipping.Estimate
	}{
		{"1-3", shipping.Estimate{Min: 1, Max: 3}},
		{"0", shipping.Estimate{Min: 0, Max: 0}},
		{" 2 - 4 ", shipping.Estimate{Min: 2, Max: 4}},
		{"5", shipping.Estimate{Min: 5, Max: 5}},
		{"2 days-4 days", shipping.Estimate{Min: 2, Max: 4}},
		{"2.5-3", shipping.Estimate{Min: 2, Max: 3}},
		{"+3", shipping.Estimate{Min: 3, Max: 3}},
		{"x", shipping.Estimate{Min: 9999, Max: 9999}},
		{"", shipping.Estimate{Min: 9999, Max: 9999}},
		{"1-", shipping.Estimate{Min: 9999, Max: 9999}},
		{"-3", shipping.Estimate{Min: 9999, Max: 9999}},
		{"same day", shipping.Estimate{Min: 9999, Max: 9999}},
		{"123456789012", shipping.Estimate{Min: 9999, Max: 9999}},
		{"12345678901", shipping.Estimate{Min: 9999, Max: 9999}},
		{"1-12345678901", shipping.Estimate{Min: 9999, Max: 9999}},
		{"1234567890", shipping.Estimate{Min: 1234567890, Max: 1234567890}},
		{"1-2-3", shipping.Estimate{Min: 1, Max: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, shipping.ParseDeliveryEstimate(tt.in))
		})
	}
}

func TestSupportsSameDay(t *testing.T) {
	assert.True(t, shipping.SupportsSameDay("wolt_same_day"))
	assert.False(t, shipping.SupportsSameDay("dhl_express"))
	assert.False(t, shipping.SupportsSameDay("WOLT"), "marker match is case-sensitive")
}

func method(id, delivery string, price float64) domain.ShippingMethod {
	return domain.ShippingMethod{ID: id, DeliveryTime: delivery, Price: price, ServiceID: "svc_" + id}
}

func methodIDs(ms []domain.ShippingMethod) []string {
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.ID)
	}
	return out
}

func TestBucketAndSort_Buckets(t *testing.T) {
	methods := []domain.ShippingMethod{
		{ID: "home", DeliveryTime: "1-2"},
		{ID: "pickup", DeliveryTime: "1-2", IsPickupLocationMethod: true, PrinterRequired: true},
		{ID: "return", DeliveryTime: "1-2", IsReturnService: true},
		{ID: "both", DeliveryTime: "1-2", IsReturnService: true, IsPickupLocationMethod: true},
	}

	b := shipping.BucketAndSort(methods, false, shipping.SortByDeliveryTime)
	assert.Equal(t, []string{"home"}, methodIDs(b.Home))
	assert.Equal(t, []string{"pickup"}, methodIDs(b.Pickup))
	assert.Equal(t, []string{"return", "both"}, methodIDs(b.Return))
	assert.Equal(t, len(methods), b.Len())

	b = shipping.BucketAndSort(methods, true, shipping.SortByDeliveryTime)
	assert.Empty(t, b.Pickup)
	assert.NotNil(t, b.Pickup)
	assert.Equal(t, 3, b.Len())
}

func TestBucketAndSort_DeliveryTime(t *testing.T) {
	methods := []domain.ShippingMethod{
		method("slow", "3-5", 10),
		method("unknown", "ask", 1),
		method("fast-expensive", "1-2", 30),
		method("fast-cheap", "1-2", 20),
		method("zero-no-sameday", "0", 5),
		{ID: "sameday", DeliveryTime: "0", Price: 40, ServiceID: "wolt_same_day"},
		method("ten-days", "10-12", 3),
	}

	b := shipping.BucketAndSort(methods, false, shipping.SortByDeliveryTime)
	assert.Equal(t,
		[]string{"sameday", "fast-cheap", "fast-expensive", "slow", "ten-days", "zero-no-sameday", "unknown"},
		methodIDs(b.Home))
}

func TestBucketAndSort_Price(t *testing.T) {
	methods := []domain.ShippingMethod{
		method("a", "3-5", 14.75),
		method("b", "1-2", 14.75),
		method("c", "0", 9.99),
		method("d", "1-2", 100),
		method("e", "x", 14.74),
	}

	b := shipping.BucketAndSort(methods, false, shipping.SortByPrice)
	assert.Equal(t, []string{"c", "e", "b", "a", "d"}, methodIDs(b.Home))
}

func TestBucketAndSort_StableAndPure(t *testing.T) {
	methods := []domain.ShippingMethod{
		method("first", "2-3", 10),
		method("second", "2-3", 10.04),
		method("third", "2-3", 10),
	}
	input := slices.Clone(methods)

	b := shipping.BucketAndSort(methods, false, shipping.SortByDeliveryTime)
	assert.Equal(t, []string{"first", "second", "third"}, methodIDs(b.Home), "prices within a tenth tie")
	assert.Equal(t, input, methods, "input must not be reordered")
}

func TestSortKey(t *testing.T) {
	assert.Equal(t, "0000000001_0000000002_0000000245", shipping.SortKey(method("m", "1-2", 24.5), shipping.SortByDeliveryTime))
	assert.Equal(t, "0000000148_0000000003_0000000005", shipping.SortKey(method("m", "3-5", 14.75), shipping.SortByPrice))
	assert.Equal(t, "0000000999_0000000000_0000000050", shipping.SortKey(method("m", "0", 5), shipping.SortByDeliveryTime))
	assert.Equal(t, "0000000050_0000000000_0000000000", shipping.SortKey(method("m", "0", 5), shipping.SortByPrice))
}

// The comparator must order methods exactly as sorting by the padded string
// key would.
func TestSortMatchesPaddedKeys(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	estimates := []string{"0", "1", "1-2", "2-4", "10-12", "3-5", "x", "7", "0-1"}

	for _, mode := range []shipping.SortMode{shipping.SortByDeliveryTime, shipping.SortByPrice} {
		for range 50 {
			methods := make([]domain.ShippingMethod, 12)
			for i := range methods {
				methods[i] = method(string(rune('a'+i)), estimates[rng.Intn(len(estimates))], float64(rng.Intn(600))/10)
				if rng.Intn(4) == 0 {
					methods[i].ServiceID = "wolt_city"
				}
			}

			byKey := slices.Clone(methods)
			slices.SortStableFunc(byKey, func(a, b domain.ShippingMethod) int {
				return strings.Compare(shipping.SortKey(a, mode), shipping.SortKey(b, mode))
			})

			got := shipping.BucketAndSort(methods, false, mode).Home
			assert.Equal(t, methodIDs(byKey), methodIDs(got))
		}
	}
}

func TestValidateSelection(t *testing.T) {
	assert.Equal(t, "This field is required", shipping.ValidateSelection(nil).ShippingMethod)
	assert.True(t, shipping.ValidateSelection(nil).HasErrors())
	assert.False(t, shipping.ValidateSelection(&domain.ShippingMethod{ID: "m-1"}).HasErrors())
}

func TestDefaultPickupLocations(t *testing.T) {
	got := shipping.DefaultPickupLocations([]domain.PickupLocation{
		{ID: "pk-1", ServiceID: "ups"},
		{ID: "pk-2", ServiceID: "ups"},
		{ID: "pk-3", ServiceID: "postnord"},
	})
	assert.Equal(t, map[string]string{"ups": "pk-1", "postnord": "pk-3"}, got)
	assert.Empty(t, shipping.DefaultPickupLocations(nil))
}

func TestBuckets_Flatten(t *testing.T) {
	b := shipping.Buckets{
		Home:   []domain.ShippingMethod{{ID: "h"}},
		Pickup: []domain.ShippingMethod{{ID: "p"}},
		Return: []domain.ShippingMethod{{ID: "r"}},
	}
	assert.Equal(t, []string{"h", "p", "r"}, methodIDs(b.Flatten()))
}
