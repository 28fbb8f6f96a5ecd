package validation_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/shippor/internal/country"
	"github.com/dukerupert/shippor/internal/domain"
	"github.com/dukerupert/shippor/internal/validation"
)

func ptr[T any](v T) *T { return &v }

func newValidator() *validation.Validator {
	return validation.New(country.Default())
}

// completeDraft returns an FI business to US private draft that passes the
// basic step and, apart from customs identifiers, the address step.
func completeDraft() domain.ShipmentDraft {
	d := domain.NewDraft()
	d.Parcels[0].Width = ptr(10.0)
	d.Parcels[0].Height = ptr(10.0)
	d.Parcels[0].Length = ptr(20.0)
	d.Parcels[0].Weight = ptr(1.5)

	d.SenderAddress = domain.Address{
		ID:           "sender-address",
		Type:         domain.AddressTypeBusiness,
		Name:         "Matti",
		Organization: "Oy Example Ab",
		Email:        "matti@example.fi",
		Phone:        "+358401234567",
		Street:       "Mannerheimintie 1",
		City:         "Helsinki",
		PostalCode:   "00100",
		Country:      "FI",
		VATNumber:    "FI12345678",
	}
	d.RecipientAddress = domain.Address{
		ID:         "recipient-address",
		Type:       domain.AddressTypePrivate,
		Name:       "Jane Doe",
		Phone:      "+15550109999",
		Street:     "1 Main St",
		City:       "New York",
		State:      "NY",
		PostalCode: "10001",
		Country:    "US",
		VATNumber:  "n/a",
	}
	return d
}

func TestValidateBasic(t *testing.T) {
	v := newValidator()

	t.Run("empty draft", func(t *testing.T) {
		d := domain.NewDraft()
		errs := v.ValidateBasic(&d)

		assert.True(t, errs.HasErrors())
		assert.Equal(t, validation.FieldErrors{"parcel-1": validation.MsgSetWeight}, errs.Parcels)
		assert.Equal(t, validation.FieldErrors{"type": validation.MsgSetValue}, errs.SenderAddress)
		assert.Equal(t, validation.FieldErrors{"type": validation.MsgSelectRecipientType}, errs.RecipientAddress)
	})

	t.Run("weight without dimensions", func(t *testing.T) {
		d := domain.NewDraft()
		d.Parcels[0].Weight = ptr(2.0)
		d.Parcels[0].Width = ptr(0.0)
		errs := v.ValidateBasic(&d)
		assert.Equal(t, validation.MsgSetDimensions, errs.Parcels["parcel-1"])
	})

	t.Run("zero copies", func(t *testing.T) {
		d := completeDraft()
		d.Parcels[0].Copies = ptr(0)
		assert.Equal(t, validation.MsgSetDimensions, v.ValidateBasic(&d).Parcels["parcel-1"])
	})

	t.Run("mandatory postal codes", func(t *testing.T) {
		d := completeDraft()
		d.SenderAddress.PostalCode = "  "
		d.RecipientAddress.PostalCode = ""
		errs := v.ValidateBasic(&d)
		assert.Equal(t, validation.MsgSetValue, errs.SenderAddress["postalCode"])
		assert.Equal(t, validation.MsgSetValue, errs.RecipientAddress["postalCode"])
	})

	t.Run("hidden postal code is not required", func(t *testing.T) {
		d := completeDraft()
		d.RecipientAddress.Country = "IE"
		d.RecipientAddress.PostalCode = ""
		assert.Empty(t, v.ValidateBasic(&d).RecipientAddress)
	})

	t.Run("complete draft passes", func(t *testing.T) {
		d := completeDraft()
		assert.False(t, v.ValidateBasic(&d).HasErrors())
	})

	t.Run("empty parcel list panics", func(t *testing.T) {
		assert.Panics(t, func() { v.ValidateParcels(nil) })
	})
}

func TestValidateAddressDetails(t *testing.T) {
	v := newValidator()

	t.Run("EU business exporter needs EORI", func(t *testing.T) {
		d := completeDraft()
		errs := v.ValidateAddressDetails(&d)

		assert.Equal(t, validation.FieldErrors{"eori": validation.MsgSetValue}, errs.SenderAddress)
		assert.Nil(t, errs.RecipientAddress)
	})

	t.Run("valid sides are omitted", func(t *testing.T) {
		d := completeDraft()
		d.SenderAddress.EORI = "FI1234567-8"
		errs := v.ValidateAddressDetails(&d)
		assert.False(t, errs.HasErrors())

		b, err := json.Marshal(errs)
		require.NoError(t, err)
		assert.JSONEq(t, `{}`, string(b))
	})

	t.Run("empty draft", func(t *testing.T) {
		d := domain.NewDraft()
		errs := v.ValidateAddressDetails(&d)

		for _, side := range []validation.FieldErrors{errs.SenderAddress, errs.RecipientAddress} {
			for _, f := range []string{"street", "city", "country", "phone"} {
				assert.Equal(t, validation.MsgSetValue, side[f], f)
			}
			assert.NotContains(t, side, "name", "name depends on address type")
			assert.NotContains(t, side, "vatNumber", "domestic by default")
		}
		assert.Contains(t, errs.SenderAddress, "email")
		assert.NotContains(t, errs.RecipientAddress, "email")
	})

	t.Run("private needs name and business needs organization", func(t *testing.T) {
		d := completeDraft()
		d.SenderAddress.EORI = "x"
		d.SenderAddress.Organization = ""
		d.RecipientAddress.Name = " "
		errs := v.ValidateAddressDetails(&d)
		assert.Equal(t, validation.FieldErrors{"organization": validation.MsgSetValue}, errs.SenderAddress)
		assert.Equal(t, validation.FieldErrors{"name": validation.MsgSetValue}, errs.RecipientAddress)
	})

	t.Run("recipient email with default method", func(t *testing.T) {
		d := completeDraft()
		d.SenderAddress.EORI = "x"
		d.SelectedMethod = &domain.ShippingMethod{ID: validation.DefaultMethodID}
		assert.Equal(t, validation.MsgSetValue, v.ValidateAddressDetails(&d).RecipientAddress["email"])

		d.SelectedMethod = &domain.ShippingMethod{ID: "m-9", RequiresEmailForRecipient: true}
		assert.Equal(t, validation.MsgSetValue, v.ValidateAddressDetails(&d).RecipientAddress["email"])

		d.SelectedMethod = &domain.ShippingMethod{ID: "m-2"}
		assert.Nil(t, v.ValidateAddressDetails(&d).RecipientAddress)
	})

	t.Run("state required for US", func(t *testing.T) {
		d := completeDraft()
		d.SenderAddress.EORI = "x"
		d.RecipientAddress.State = ""
		assert.Equal(t, validation.FieldErrors{"state": validation.MsgSetValue}, v.ValidateAddressDetails(&d).RecipientAddress)
	})

	t.Run("short phone always flagged", func(t *testing.T) {
		d := completeDraft()
		d.SenderAddress.EORI = "x"
		d.RecipientAddress.Phone = "+1"
		assert.Equal(t, validation.FieldErrors{"phone": validation.MsgSetValue}, v.ValidateAddressDetails(&d).RecipientAddress)
	})

	t.Run("vat number for international shipments", func(t *testing.T) {
		d := completeDraft()
		d.SenderAddress.EORI = "x"
		d.RecipientAddress.VATNumber = ""
		assert.Equal(t, validation.FieldErrors{"vatNumber": validation.MsgSetValue}, v.ValidateAddressDetails(&d).RecipientAddress)
	})
}

func TestValidateShipmentDetails(t *testing.T) {
	v := newValidator()

	t.Run("international invoice with incomplete item", func(t *testing.T) {
		d := completeDraft()
		d.CreateCommerceProformaInvoice = domain.ProformaYes
		d.Items = []domain.ShipmentItem{
			{ID: "item-1", Description: "", Quantity: ptr(1.0), Weight: ptr(0.5), Value: ptr(20.0)},
			{ID: "item-2", Description: "Book", Quantity: ptr(1.0), Weight: ptr(0.5), Value: ptr(20.0)},
		}
		errs := v.ValidateShipmentDetails(&d)

		assert.Equal(t, validation.FieldErrors{"item-1": validation.MsgItemIncomplete}, errs.Items)
		assert.Equal(t, validation.MsgRequired, errs.ShipmentType)
		assert.Equal(t, validation.MsgRequired, errs.Contents)
		assert.Equal(t, validation.MsgRequired, errs.Value)
		assert.Equal(t, validation.MsgRequired, errs.Reference)
		assert.Empty(t, errs.CreateCommerceProformaInvoice)
	})

	t.Run("domestic route needs only reference and invoice choice", func(t *testing.T) {
		d := completeDraft()
		d.RecipientAddress.Country = "FI"
		errs := v.ValidateShipmentDetails(&d)

		assert.Equal(t, validation.ShipmentErrors{
			Reference:                     validation.MsgRequired,
			CreateCommerceProformaInvoice: validation.MsgRequired,
		}, errs)
	})

	t.Run("intra EU has no shipment type", func(t *testing.T) {
		d := completeDraft()
		d.RecipientAddress.Country = "DE"
		errs := v.ValidateShipmentDetails(&d)
		assert.Empty(t, errs.ShipmentType)
		assert.Equal(t, validation.MsgRequired, errs.Contents)
	})

	t.Run("invoice without items", func(t *testing.T) {
		d := completeDraft()
		d.Reference = "ref"
		d.Contents = "Books"
		d.Value = "20"
		d.ShipmentType = "goods"
		d.CreateCommerceProformaInvoice = domain.ProformaYes
		errs := v.ValidateShipmentDetails(&d)
		assert.Equal(t, validation.ShipmentErrors{
			Items: validation.FieldErrors{validation.NoItemsKey: validation.MsgRequired},
		}, errs)
	})

	t.Run("declined invoice ignores items", func(t *testing.T) {
		d := completeDraft()
		d.Reference = "ref"
		d.Contents = "Books"
		d.Value = "20"
		d.ShipmentType = "goods"
		d.CreateCommerceProformaInvoice = domain.ProformaNo
		d.Items = []domain.ShipmentItem{{ID: "item-1"}}
		assert.False(t, v.ValidateShipmentDetails(&d).HasErrors())
	})

	t.Run("cash on delivery", func(t *testing.T) {
		tests := []struct {
			name string
			cod  domain.CashOnDelivery
			want *validation.CODErrors
		}{
			{"all missing", domain.CashOnDelivery{}, &validation.CODErrors{Amount: validation.MsgInvalidAmount, Currency: validation.MsgRequired, Reference: validation.MsgRequired}},
			{"zero amount", domain.CashOnDelivery{Amount: "0", Currency: "EUR", Reference: "r"}, &validation.CODErrors{Amount: validation.MsgInvalidAmount}},
			{"negative amount", domain.CashOnDelivery{Amount: "-5", Currency: "EUR", Reference: "r"}, &validation.CODErrors{Amount: validation.MsgInvalidAmount}},
			{"garbage amount", domain.CashOnDelivery{Amount: "abc", Currency: "EUR", Reference: "r"}, &validation.CODErrors{Amount: validation.MsgInvalidAmount}},
			{"valid", domain.CashOnDelivery{Amount: " 12.50 ", Currency: "EUR", Reference: "r"}, nil},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				d := completeDraft()
				d.Addons.CashOnDelivery = true
				d.CashOnDelivery = tt.cod
				assert.Equal(t, tt.want, v.ValidateShipmentDetails(&d).CashOnDelivery)
			})
		}
	})
}

func TestValidatorsAreIdempotent(t *testing.T) {
	v := newValidator()
	d := domain.NewDraft()
	d.Addons.CashOnDelivery = true
	d.SenderAddress.Country = "FI"
	d.RecipientAddress.Country = "US"
	before := d.Clone()

	for _, run := range []func() any{
		func() any { return v.ValidateBasic(&d) },
		func() any { return v.ValidateAddressDetails(&d) },
		func() any { return v.ValidateShipmentDetails(&d) },
	} {
		a, err := json.Marshal(run())
		require.NoError(t, err)
		b, err := json.Marshal(run())
		require.NoError(t, err)
		assert.Equal(t, string(a), string(b))
	}
	assert.Equal(t, before, d, "validators must not modify the draft")
}
