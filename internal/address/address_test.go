package address

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/shippor/internal/country"
	"github.com/dukerupert/shippor/internal/domain"
)

func TestFieldVisibility(t *testing.T) {
	meta := country.Default()

	for _, c := range meta.StateRequiredCountries() {
		assert.True(t, ShowStateField(meta, c), c)
	}
	for _, c := range []string{"FI", "GB", "HK", "ZZ"} {
		assert.False(t, ShowStateField(meta, c), c)
	}

	assert.False(t, ShowPostalCodeField(meta, "IE"))
	assert.False(t, ShowPostalCodeField(meta, "HK"))
	assert.True(t, ShowPostalCodeField(meta, "FI"))

	assert.False(t, ShowAddressLine2Field(meta, "HK"))
	assert.True(t, ShowAddressLine2Field(meta, "IE"))
}

func TestQuickSearchField(t *testing.T) {
	field, label := QuickSearchField(country.Default(), "HK")
	assert.Equal(t, "city", field)
	assert.Equal(t, "City", label)

	field, label = QuickSearchField(country.Default(), "FI")
	assert.Equal(t, "postalCode", field)
	assert.Equal(t, "Postal code", label)

	meta, err := country.New(country.Table{HideQuickSearch: []string{"FI"}})
	require.NoError(t, err)
	field, label = QuickSearchField(meta, "FI")
	assert.Empty(t, field)
	assert.Empty(t, label)
}

var saved = []domain.Address{
	{ID: "a1", Name: "Matti Meikalainen", City: "Helsinki", Country: "FI", PostalCode: "00100", Email: "matti@example.fi"},
	{ID: "a2", Name: "Jane Doe", Organization: "Acme Corp", City: "New York", Country: "US", PostalCode: "10001"},
	{ID: "a3", Name: "Sven", City: "Stockholm", Country: "SE", PostalCode: "111 22"},
}

func ids(addrs []domain.Address) []string {
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, a.ID)
	}
	return out
}

func TestFilterByWordMatch(t *testing.T) {
	assert.Equal(t, []string{"a1"}, ids(FilterByWordMatch(saved, "HELSINKI")))
	assert.Equal(t, []string{"a2"}, ids(FilterByWordMatch(saved, " acme ")))
	assert.Equal(t, []string{"a1"}, ids(FilterByWordMatch(saved, "example.fi")))
	assert.Len(t, FilterByWordMatch(saved, ""), 3)
	assert.Empty(t, FilterByWordMatch(saved, "tokyo"))
}

func TestFilterByPostalCode(t *testing.T) {
	assert.Equal(t, []string{"a3"}, ids(FilterByPostalCode(saved, "11122")))
	assert.Equal(t, []string{"a3"}, ids(FilterByPostalCode(saved, "111 2")))
	assert.Equal(t, []string{"a1", "a2"}, ids(FilterByPostalCode(saved, "0")))
}

func TestFormatForInput(t *testing.T) {
	assert.Equal(t, "Acme Corp", FormatForInput(saved[1]))
	assert.Equal(t, "Sven", FormatForInput(saved[2]))
	assert.Equal(t, "", FormatForInput(domain.Address{}))
}

func TestIsSafeToChange(t *testing.T) {
	existing := domain.Address{Country: "FI", PostalCode: "00100"}

	assert.True(t, IsSafeToChange(existing, nil, []string{"country"}))
	assert.True(t, IsSafeToChange(existing, &domain.Address{Country: "SE"}, nil))
	assert.True(t, IsSafeToChange(existing, &domain.Address{Country: " fi ", PostalCode: "001 00"}, []string{"country", "postalCode"}))
	assert.False(t, IsSafeToChange(existing, &domain.Address{Country: "SE", PostalCode: "00100"}, []string{"country"}))
}

func TestBook(t *testing.T) {
	ctx := context.Background()
	b := NewBook(
		domain.Address{ID: "addr-1", Label: "Office", Name: "Acme", City: "Helsinki", PostalCode: "00100"},
		domain.Address{ID: "addr-2", Label: "Warehouse", Street: "Dock Road 1", City: "Turku", PostalCode: "20100"},
	)

	all, err := b.Search(ctx, "  ")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	found, err := b.Search(ctx, "turku")
	require.NoError(t, err)
	assert.Equal(t, []string{"addr-2"}, ids(found))

	found, err = b.Search(ctx, "dock")
	require.NoError(t, err)
	assert.Empty(t, found, "street is not a search field")

	found, err = b.Search(ctx, "201 00")
	require.NoError(t, err)
	assert.Equal(t, []string{"addr-2"}, ids(found), "postal codes match without spaces")

	found, err = b.Search(ctx, "100")
	require.NoError(t, err)
	assert.Equal(t, []string{"addr-1", "addr-2"}, ids(found), "no duplicates across matchers")

	got, ok := b.Get(ctx, "addr-1")
	require.True(t, ok)
	assert.Equal(t, "Acme", got.Name)
	_, ok = b.Get(ctx, "missing")
	assert.False(t, ok)

	added, err := b.Add(ctx, domain.Address{ID: "ignored", Label: "Home", City: "Espoo"})
	require.NoError(t, err)
	assert.NotEqual(t, "ignored", added.ID)
	assert.NotEmpty(t, added.ID)

	list, err := b.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, added.ID, list[0].ID, "new entries come first")

	list[0].Label = "mutated"
	again, _ := b.List(ctx)
	assert.Equal(t, "Home", again[0].Label)
}

func TestBook_QuickSearch(t *testing.T) {
	ctx := context.Background()
	b := NewBook(
		domain.Address{ID: "fi", City: "Helsinki", PostalCode: "00100", Country: "FI"},
		domain.Address{ID: "hk", City: "Kowloon", PostalCode: "", Country: "HK"},
	)

	found, err := b.QuickSearch(ctx, country.Default(), "FI", "001 00")
	require.NoError(t, err)
	assert.Equal(t, []string{"fi"}, ids(found))

	found, err = b.QuickSearch(ctx, country.Default(), "HK", "kowl")
	require.NoError(t, err)
	assert.Equal(t, []string{"hk"}, ids(found), "HK searches by city")

	meta, err := country.New(country.Table{HideQuickSearch: []string{"FI"}})
	require.NoError(t, err)
	found, err = b.QuickSearch(ctx, meta, "FI", "00100")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestBasicValidator(t *testing.T) {
	v := NewBasicValidator(country.Default())
	ctx := context.Background()

	t.Run("valid address is normalized", func(t *testing.T) {
		res, err := v.Validate(ctx, domain.Address{
			Type:       domain.AddressTypePrivate,
			Street:     " Mannerheimintie 1 ",
			City:       "Helsinki",
			PostalCode: "00100",
			Country:    "fi",
			Phone:      "040 123 4567",
			Email:      "matti@example.fi",
		})
		require.NoError(t, err)
		assert.True(t, res.IsValid)
		assert.Empty(t, res.Errors)
		assert.Equal(t, "FI", res.NormalizedAddress.Country)
		assert.Equal(t, "Mannerheimintie 1", res.NormalizedAddress.Street)
		assert.Equal(t, "+3580401234567", res.NormalizedAddress.Phone)
	})

	t.Run("reports field errors", func(t *testing.T) {
		res, err := v.Validate(ctx, domain.Address{
			Country: "US",
			Email:   "not-an-email",
			Phone:   "+1",
		})
		require.NoError(t, err)
		assert.False(t, res.IsValid)

		fields := map[string]string{}
		for _, e := range res.Errors {
			fields[e.Field] = e.Message
		}
		assert.Equal(t, "is required", fields["street"])
		assert.Equal(t, "is required", fields["city"])
		assert.Equal(t, "must be a valid email address", fields["email"])
		assert.Equal(t, "must be at least 6 characters", fields["phone"])
		assert.Equal(t, "is required", fields["postalCode"])
		assert.Equal(t, "is required", fields["state"])
	})

	t.Run("unknown country code", func(t *testing.T) {
		res, err := v.Validate(ctx, domain.Address{Street: "x", City: "y", Country: "XX"})
		require.NoError(t, err)
		require.Len(t, res.Errors, 1)
		assert.Equal(t, "country", res.Errors[0].Field)
	})

	t.Run("hidden fields produce warnings", func(t *testing.T) {
		res, err := v.Validate(ctx, domain.Address{Street: "1 Queen's Rd", Street2: "Floor 3", City: "Central", Country: "HK", PostalCode: "999077"})
		require.NoError(t, err)
		assert.True(t, res.IsValid)
		assert.Len(t, res.Warnings, 2)
	})
}

func TestMockValidator(t *testing.T) {
	m := NewMockValidator()
	res, err := m.Validate(context.Background(), domain.Address{City: "Oulu"})
	require.NoError(t, err)
	assert.True(t, res.IsValid)
	assert.Equal(t, "Oulu", res.NormalizedAddress.City)
	assert.Equal(t, 1, m.Calls)
}
