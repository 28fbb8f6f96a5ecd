package domain

import "slices"

// ShippingMethod is a carrier catalog entry fetched for a draft. It is
// reference data and never mutated after it arrives.
type ShippingMethod struct {
	ID                        string   `json:"id"`
	Label                     string   `json:"label"`
	ETA                       string   `json:"eta,omitempty"`
	Carrier                   string   `json:"carrier"`
	Price                     float64  `json:"price"`
	PriceVat0                 *float64 `json:"priceVat0,omitempty"`
	VATRate                   *float64 `json:"vatRate,omitempty"`
	DeliveryTime              string   `json:"deliveryTime"`
	ServiceID                 string   `json:"serviceId"`
	PrinterRequired           bool     `json:"printerRequired"`
	IsPickupLocationMethod    bool     `json:"isPickupLocationMethod"`
	IsReturnService           bool     `json:"isReturnService"`
	RequiresEmailForRecipient bool     `json:"requiresEmailForRecipient,omitempty"`
	Logo                      string   `json:"logo,omitempty"`
	Tags                      []string `json:"tags,omitempty"`
	InfoText                  []string `json:"infoText,omitempty"`
	DropOffTimes              []string `json:"dropOffTimes,omitempty"`
	OpeningHours              []string `json:"openingHours,omitempty"`
}

// Clone returns a deep copy of the method.
func (m ShippingMethod) Clone() ShippingMethod {
	out := m
	if m.PriceVat0 != nil {
		v := *m.PriceVat0
		out.PriceVat0 = &v
	}
	if m.VATRate != nil {
		v := *m.VATRate
		out.VATRate = &v
	}
	out.Tags = slices.Clone(m.Tags)
	out.InfoText = slices.Clone(m.InfoText)
	out.DropOffTimes = slices.Clone(m.DropOffTimes)
	out.OpeningHours = slices.Clone(m.OpeningHours)
	return out
}

// PickupLocation is a carrier drop-off/pickup point for a service.
type PickupLocation struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Address1  string `json:"address1"`
	Zipcode   string `json:"zipcode"`
	ServiceID string `json:"serviceId"`
}
