// Package validation builds the per-step error bags for the booking flow.
// Validators never return an error and never modify the draft; callers block
// the step transition while a bag reports HasErrors.
package validation

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/dukerupert/shippor/internal/address"
	"github.com/dukerupert/shippor/internal/country"
	"github.com/dukerupert/shippor/internal/domain"
	"github.com/dukerupert/shippor/internal/eligibility"
)

// DefaultMethodID is the catalog method whose recipients must give an email.
const DefaultMethodID = "m-1"

// MinPhoneLength is the shortest normalized phone number accepted.
const MinPhoneLength = 6

// addressFields are checked in this order by ValidateAddressDetails.
var addressFields = []string{
	"name",
	"city",
	"country",
	"state",
	"street",
	"street2",
	"organization",
	"postalCode",
	"email",
	"type",
	"phone",
	"eori",
	"vatNumber",
}

// Validator evaluates drafts against a country table.
type Validator struct {
	meta *country.Meta
}

// New returns a Validator using meta for all country lookups.
func New(meta *country.Meta) *Validator {
	return &Validator{meta: meta}
}

func unset(f *float64) bool {
	return f == nil || *f == 0 || math.IsNaN(*f)
}

// ValidateParcels flags every parcel with a missing dimension, weight or copy
// count. It panics on an empty list: a draft always has a parcel.
func (v *Validator) ValidateParcels(parcels []domain.Parcel) FieldErrors {
	if len(parcels) == 0 {
		panic("validation: draft has no parcels")
	}

	errs := FieldErrors{}
	for _, p := range parcels {
		if unset(p.Width) || unset(p.Length) || unset(p.Height) || unset(p.Weight) || p.Copies == nil || *p.Copies == 0 {
			if unset(p.Weight) {
				errs[p.ID] = MsgSetWeight
			} else {
				errs[p.ID] = MsgSetDimensions
			}
		}
	}
	return errs
}

// ValidateBasic checks parcels, both address types and mandatory postal codes.
func (v *Validator) ValidateBasic(d *domain.ShipmentDraft) BasicErrors {
	errs := BasicErrors{
		Parcels:          v.ValidateParcels(d.Parcels),
		SenderAddress:    FieldErrors{},
		RecipientAddress: FieldErrors{},
	}

	if d.SenderAddress.Type == domain.AddressTypeUnset {
		errs.SenderAddress["type"] = MsgSetValue
	}
	if d.RecipientAddress.Type == domain.AddressTypeUnset {
		errs.RecipientAddress["type"] = MsgSelectRecipientType
	}

	if v.meta.RequiresMandatoryPostalCode(d.SenderAddress.Country) && strings.TrimSpace(d.SenderAddress.PostalCode) == "" {
		errs.SenderAddress["postalCode"] = MsgSetValue
	}
	if v.meta.RequiresMandatoryPostalCode(d.RecipientAddress.Country) && strings.TrimSpace(d.RecipientAddress.PostalCode) == "" {
		errs.RecipientAddress["postalCode"] = MsgSetValue
	}

	return errs
}

// IsAddressFieldRequired reports whether field must be filled in for the
// party in role.
func (v *Validator) IsAddressFieldRequired(field string, addr domain.Address, role domain.Role, d *domain.ShipmentDraft) bool {
	switch field {
	case "street", "city", "country", "phone":
		return true
	case "postalCode":
		return v.meta.RequiresMandatoryPostalCode(addr.Country)
	case "state":
		return v.meta.RequiresStateField(addr.Country)
	case "email":
		if role == domain.RoleSender {
			return true
		}
		m := d.SelectedMethod
		return m != nil && (m.ID == DefaultMethodID || m.RequiresEmailForRecipient)
	case "name":
		return addr.Type == domain.AddressTypePrivate
	case "organization":
		return addr.Type == domain.AddressTypeBusiness
	case "eori":
		return eligibility.RequiresEORI(eligibility.EORIInput{
			AddressType:      addr.Type,
			SenderCountry:    d.SenderAddress.Country,
			RecipientCountry: d.RecipientAddress.Country,
			PostalCode:       addr.PostalCode,
			Role:             role,
		}, v.meta)
	case "vatNumber":
		return eligibility.IsInternational(d)
	}
	return false
}

func (v *Validator) addressErrors(d *domain.ShipmentDraft, role domain.Role) FieldErrors {
	addr := d.Address(role)
	errs := FieldErrors{}

	for _, f := range addressFields {
		val, _ := addr.Field(f)
		if strings.TrimSpace(val) == "" && v.IsAddressFieldRequired(f, addr, role, d) {
			errs[f] = MsgSetValue
		}
	}

	if utf8.RuneCountInString(address.NormalizePhone(addr.Phone, addr.Country)) < MinPhoneLength {
		errs["phone"] = MsgSetValue
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidateAddressDetails checks every address field for both parties.
func (v *Validator) ValidateAddressDetails(d *domain.ShipmentDraft) AddressErrors {
	return AddressErrors{
		SenderAddress:    v.addressErrors(d, domain.RoleSender),
		RecipientAddress: v.addressErrors(d, domain.RoleRecipient),
	}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ValidateShipmentDetails checks customs fields, invoice lines and cash on
// delivery.
func (v *Validator) ValidateShipmentDetails(d *domain.ShipmentDraft) ShipmentErrors {
	var errs ShipmentErrors

	if blank(d.Contents) && eligibility.IsInternational(d) {
		errs.Contents = MsgRequired
	}
	if blank(d.ShipmentType) && eligibility.CrossesEUVATBorder(d, v.meta) {
		errs.ShipmentType = MsgRequired
	}
	if blank(d.Value) && eligibility.RequiresCustomsValueField(d) {
		errs.Value = MsgRequired
	}
	if blank(d.Reference) {
		errs.Reference = MsgRequired
	}

	switch d.CreateCommerceProformaInvoice {
	case domain.ProformaUndecided:
		errs.CreateCommerceProformaInvoice = MsgRequired
	case domain.ProformaYes:
		if len(d.Items) == 0 {
			errs.Items = FieldErrors{NoItemsKey: MsgRequired}
		}
		for _, it := range d.Items {
			if unset(it.Quantity) || blank(it.Description) || unset(it.Weight) || unset(it.Value) {
				if errs.Items == nil {
					errs.Items = FieldErrors{}
				}
				errs.Items[it.ID] = MsgItemIncomplete
			}
		}
	}

	if d.Addons.CashOnDelivery {
		var cod CODErrors
		amount, err := decimal.NewFromString(strings.TrimSpace(d.CashOnDelivery.Amount))
		if err != nil || !amount.IsPositive() {
			cod.Amount = MsgInvalidAmount
		}
		if blank(d.CashOnDelivery.Currency) {
			cod.Currency = MsgRequired
		}
		if blank(d.CashOnDelivery.Reference) {
			cod.Reference = MsgRequired
		}
		if !cod.empty() {
			errs.CashOnDelivery = &cod
		}
	}

	return errs
}
