package domain

import (
	"bytes"
	"fmt"
)

// AddressType distinguishes private persons from businesses. The zero value
// means the user has not picked one yet.
type AddressType string

const (
	AddressTypeUnset    AddressType = ""
	AddressTypePrivate  AddressType = "private"
	AddressTypeBusiness AddressType = "business"
)

// Role is the side of the shipment an address sits on.
type Role string

const (
	RoleSender    Role = "sender"
	RoleRecipient Role = "recipient"
)

// PayerRelation names who pays for the shipment relative to the parties.
type PayerRelation string

const (
	PayerSender     PayerRelation = "sender"
	PayerReceiver   PayerRelation = "receiver"
	PayerThirdParty PayerRelation = "thirdParty"
)

// Address is a postal address plus the customs identifiers that may be
// attached to it. Sender and recipient copies inside a draft are independent
// values; the rules engine only ever reads them.
type Address struct {
	ID                           string        `json:"id"`
	Label                        string        `json:"label"`
	Type                         AddressType   `json:"type"`
	Name                         string        `json:"name"`
	Organization                 string        `json:"organization,omitempty"`
	Email                        string        `json:"email"`
	Phone                        string        `json:"phone"`
	Street                       string        `json:"street"`
	Street2                      string        `json:"street2,omitempty"`
	City                         string        `json:"city"`
	State                        string        `json:"state,omitempty"`
	PostalCode                   string        `json:"postalCode"`
	Country                      string        `json:"country"`
	EORI                         string        `json:"eori,omitempty"`
	VATNumber                    string        `json:"vatNumber,omitempty"`
	VATTaxIDType                 string        `json:"vatTaxIdType,omitempty"`
	SocialSecurityNumber         string        `json:"socialSecurityNumber,omitempty"`
	EmployerIdentificationNumber string        `json:"employerIdentificationNumber,omitempty"`
	PayerRelation                PayerRelation `json:"payerRelation,omitempty"`
}

// Field returns the string value of an address field by its wire name.
// The second return value is false for unknown names.
func (a Address) Field(name string) (string, bool) {
	switch name {
	case "id":
		return a.ID, true
	case "label":
		return a.Label, true
	case "type":
		return string(a.Type), true
	case "name":
		return a.Name, true
	case "organization":
		return a.Organization, true
	case "email":
		return a.Email, true
	case "phone":
		return a.Phone, true
	case "street":
		return a.Street, true
	case "street2":
		return a.Street2, true
	case "city":
		return a.City, true
	case "state":
		return a.State, true
	case "postalCode":
		return a.PostalCode, true
	case "country":
		return a.Country, true
	case "eori":
		return a.EORI, true
	case "vatNumber":
		return a.VATNumber, true
	case "vatTaxIdType":
		return a.VATTaxIDType, true
	case "socialSecurityNumber":
		return a.SocialSecurityNumber, true
	case "employerIdentificationNumber":
		return a.EmployerIdentificationNumber, true
	case "payerRelation":
		return string(a.PayerRelation), true
	}
	return "", false
}

// WithField returns a copy of the address with one field replaced.
func (a Address) WithField(name, value string) (Address, error) {
	switch name {
	case "label":
		a.Label = value
	case "type":
		switch AddressType(value) {
		case AddressTypeUnset, AddressTypePrivate, AddressTypeBusiness:
			a.Type = AddressType(value)
		default:
			return a, Errorf(EINVALID, "address.set", "unknown address type: %s", value)
		}
	case "name":
		a.Name = value
	case "organization":
		a.Organization = value
	case "email":
		a.Email = value
	case "phone":
		a.Phone = value
	case "street":
		a.Street = value
	case "street2":
		a.Street2 = value
	case "city":
		a.City = value
	case "state":
		a.State = value
	case "postalCode":
		a.PostalCode = value
	case "country":
		a.Country = value
	case "eori":
		a.EORI = value
	case "vatNumber":
		a.VATNumber = value
	case "vatTaxIdType":
		a.VATTaxIDType = value
	case "socialSecurityNumber":
		a.SocialSecurityNumber = value
	case "employerIdentificationNumber":
		a.EmployerIdentificationNumber = value
	case "payerRelation":
		a.PayerRelation = PayerRelation(value)
	default:
		return a, Errorf(EINVALID, "address.set", "unknown address field: %s", name)
	}
	return a, nil
}

// Parcel dimensions are in centimetres and kilograms. Nil means not filled in.
type Parcel struct {
	ID     string   `json:"id"`
	Width  *float64 `json:"width"`
	Height *float64 `json:"height"`
	Length *float64 `json:"length"`
	Weight *float64 `json:"weight"`
	Copies *int     `json:"copies"`
}

// ShipmentItem is one customs line on a proforma/commercial invoice.
type ShipmentItem struct {
	ID              string   `json:"id"`
	Description     string   `json:"description"`
	CountryOfOrigin string   `json:"countryOfOrigin"`
	HSTariffCode    string   `json:"hsTariffCode"`
	Quantity        *float64 `json:"quantity"`
	QuantityUnit    string   `json:"quantityUnit,omitempty"`
	Weight          *float64 `json:"weight"`
	Value           *float64 `json:"value"`
}

// Addons are the optional services toggled on a shipment.
type Addons struct {
	Pickup             bool `json:"pickup,omitempty"`
	Delivery           bool `json:"delivery,omitempty"`
	Delivery09         bool `json:"delivery09,omitempty"`
	LimitedQtys        bool `json:"limitedQtys,omitempty"`
	Dangerous          bool `json:"dangerous,omitempty"`
	Fragile            bool `json:"fragile,omitempty"`
	ProofOfDelivery    bool `json:"proofOfDelivery,omitempty"`
	CallBeforeDelivery bool `json:"callBeforeDelivery,omitempty"`
	CashOnDelivery     bool `json:"cashOnDelivery"`
	Oversize           bool `json:"oversize,omitempty"`
}

// CashOnDelivery holds the COD details. Amount is kept as typed text.
type CashOnDelivery struct {
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
	Reference string `json:"reference"`
}

// ProformaChoice records whether the user wants a commercial/proforma
// invoice. Undecided is distinct from No and blocks the shipment details step.
type ProformaChoice int

const (
	ProformaUndecided ProformaChoice = iota
	ProformaNo
	ProformaYes
)

// Decided reports whether the user has answered the invoice question.
func (p ProformaChoice) Decided() bool { return p != ProformaUndecided }

func (p ProformaChoice) String() string {
	switch p {
	case ProformaNo:
		return "no"
	case ProformaYes:
		return "yes"
	default:
		return "undecided"
	}
}

// MarshalJSON encodes the choice as null, false or true.
func (p ProformaChoice) MarshalJSON() ([]byte, error) {
	switch p {
	case ProformaNo:
		return []byte("false"), nil
	case ProformaYes:
		return []byte("true"), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts null, false or true.
func (p *ProformaChoice) UnmarshalJSON(b []byte) error {
	switch string(bytes.TrimSpace(b)) {
	case "null":
		*p = ProformaUndecided
	case "false":
		*p = ProformaNo
	case "true":
		*p = ProformaYes
	default:
		return fmt.Errorf("invalid proforma choice %s", b)
	}
	return nil
}

// ShipmentDraft is the aggregate the booking flow edits step by step.
// Parcels always holds at least one entry.
type ShipmentDraft struct {
	SenderAddress                 Address         `json:"senderAddress"`
	RecipientAddress              Address         `json:"recipientAddress"`
	PayingAddress                 Address         `json:"payingAddress"`
	PayingParty                   PayerRelation   `json:"payingParty,omitempty"`
	Parcels                       []Parcel        `json:"parcels"`
	ShipmentType                  string          `json:"shipmentType"`
	Contents                      string          `json:"contents"`
	Reference                     string          `json:"reference"`
	Value                         string          `json:"value"`
	Currency                      string          `json:"currency,omitempty"`
	Incoterms                     string          `json:"incoterms,omitempty"`
	Instructions                  string          `json:"instructions,omitempty"`
	InstructionsPickUp            string          `json:"instructionsPickUp,omitempty"`
	ReturnFreightDoc              bool            `json:"returnFreightDoc"`
	CreateCommerceProformaInvoice ProformaChoice  `json:"createCommerceProformaInvoice"`
	Items                         []ShipmentItem  `json:"items"`
	Addons                        Addons          `json:"addons"`
	CashOnDelivery                CashOnDelivery  `json:"cashOnDelivery"`
	SelectedMethod                *ShippingMethod `json:"selectedMethod"`
	PickupLocationID              *string         `json:"pickupLocationId"`
}

// Address returns the address for a role.
func (d *ShipmentDraft) Address(role Role) Address {
	if role == RoleSender {
		return d.SenderAddress
	}
	return d.RecipientAddress
}

// SetAddress replaces the address for a role.
func (d *ShipmentDraft) SetAddress(role Role, a Address) {
	if role == RoleSender {
		d.SenderAddress = a
		return
	}
	d.RecipientAddress = a
}

// RouteTitle names the draft by its endpoints, e.g. "Austin -> Recipient".
// Missing cities fall back to the role name.
func (d *ShipmentDraft) RouteTitle() string {
	from, to := d.SenderAddress.City, d.RecipientAddress.City
	if from == "" {
		from = "Sender"
	}
	if to == "" {
		to = "Recipient"
	}
	return from + " -> " + to
}

func emptyAddress(prefix string) Address {
	return Address{ID: prefix + "-address"}
}

// NewDraft returns an empty draft with a single blank parcel.
func NewDraft() ShipmentDraft {
	copies := 1
	return ShipmentDraft{
		SenderAddress:    emptyAddress("sender"),
		RecipientAddress: emptyAddress("recipient"),
		PayingAddress:    emptyAddress("paying"),
		Parcels: []Parcel{
			{ID: "parcel-1", Copies: &copies},
		},
		Items: []ShipmentItem{},
	}
}

// Clone returns a deep copy that shares no memory with d.
func (d ShipmentDraft) Clone() ShipmentDraft {
	out := d

	if d.Parcels != nil {
		out.Parcels = make([]Parcel, len(d.Parcels))
		for i, p := range d.Parcels {
			out.Parcels[i] = Parcel{
				ID:     p.ID,
				Width:  cloneFloat(p.Width),
				Height: cloneFloat(p.Height),
				Length: cloneFloat(p.Length),
				Weight: cloneFloat(p.Weight),
				Copies: cloneInt(p.Copies),
			}
		}
	}

	if d.Items != nil {
		out.Items = make([]ShipmentItem, len(d.Items))
		for i, it := range d.Items {
			it.Quantity = cloneFloat(it.Quantity)
			it.Weight = cloneFloat(it.Weight)
			it.Value = cloneFloat(it.Value)
			out.Items[i] = it
		}
	}

	if d.SelectedMethod != nil {
		m := d.SelectedMethod.Clone()
		out.SelectedMethod = &m
	}

	if d.PickupLocationID != nil {
		id := *d.PickupLocationID
		out.PickupLocationID = &id
	}

	return out
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

func cloneInt(i *int) *int {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}
