package validation

// User-facing messages. They are part of the form contract and not localized.
const (
	MsgSetValue            = "Please set the value"
	MsgSelectRecipientType = "Select recipient type"
	MsgSetWeight           = "Please set the weight"
	MsgSetDimensions       = "Please set parcel dimensions"
	MsgRequired            = "This field is required"
	MsgItemIncomplete      = "Please set description, quantity, weight, and value"
	MsgInvalidAmount       = "Please enter valid amount"
)

// NoItemsKey is the Items key used when an invoice is requested without lines.
const NoItemsKey = "shipmentItems"

// FieldErrors maps a field name or entity id to a message. A missing key
// means the field is valid.
type FieldErrors map[string]string

// BasicErrors is the result of the basic step. All three maps are always
// present, possibly empty.
type BasicErrors struct {
	Parcels          FieldErrors `json:"parcels"`
	SenderAddress    FieldErrors `json:"senderAddress"`
	RecipientAddress FieldErrors `json:"recipientAddress"`
}

func (e BasicErrors) HasErrors() bool {
	return len(e.Parcels) > 0 || len(e.SenderAddress) > 0 || len(e.RecipientAddress) > 0
}

// AddressErrors is the result of the address details step. A side is nil
// when it has no errors.
type AddressErrors struct {
	SenderAddress    FieldErrors `json:"senderAddress,omitempty"`
	RecipientAddress FieldErrors `json:"recipientAddress,omitempty"`
}

func (e AddressErrors) HasErrors() bool {
	return e.SenderAddress != nil || e.RecipientAddress != nil
}

// CODErrors reports cash on delivery problems independently per field.
type CODErrors struct {
	Amount    string `json:"amount,omitempty"`
	Currency  string `json:"currency,omitempty"`
	Reference string `json:"reference,omitempty"`
}

func (e CODErrors) empty() bool {
	return e == CODErrors{}
}

// ShipmentErrors is the result of the shipment details step.
type ShipmentErrors struct {
	Contents                      string      `json:"contents,omitempty"`
	ShipmentType                  string      `json:"shipmentType,omitempty"`
	Value                         string      `json:"value,omitempty"`
	Reference                     string      `json:"reference,omitempty"`
	CreateCommerceProformaInvoice string      `json:"createCommerceProformaInvoice,omitempty"`
	Items                         FieldErrors `json:"items,omitempty"`
	CashOnDelivery                *CODErrors  `json:"cashOnDelivery,omitempty"`
}

func (e ShipmentErrors) HasErrors() bool {
	return e.Contents != "" ||
		e.ShipmentType != "" ||
		e.Value != "" ||
		e.Reference != "" ||
		e.CreateCommerceProformaInvoice != "" ||
		len(e.Items) > 0 ||
		e.CashOnDelivery != nil
}
