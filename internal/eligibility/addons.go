package eligibility

import "github.com/dukerupert/shippor/internal/domain"

// HideAdditionalServices hides the add-on section for Swedish routes booked
// by private senders or guests.
func HideAdditionalServices(d *domain.ShipmentDraft, unregistered bool) bool {
	private := d.SenderAddress.Type == domain.AddressTypePrivate
	sweden := d.SenderAddress.Country == "SE" || d.RecipientAddress.Country == "SE"
	return sweden && (private || unregistered)
}

// CanShowDelivery09 reports whether 09:00 delivery can be offered.
func CanShowDelivery09(d *domain.ShipmentDraft, unregistered bool) bool {
	return d.SenderAddress.Type != domain.AddressTypePrivate && !unregistered
}

// CanShowCashOnDelivery reports whether cash on delivery can be offered.
func CanShowCashOnDelivery(d *domain.ShipmentDraft) bool {
	return d.SenderAddress.Type != domain.AddressTypePrivate
}

// CanShowDangerousAndLimited reports whether dangerous goods and limited
// quantities can be declared.
func CanShowDangerousAndLimited(d *domain.ShipmentDraft, unregistered bool) bool {
	return d.SenderAddress.Type != domain.AddressTypePrivate && !unregistered
}

// Availability is the add-on menu for a draft.
type Availability struct {
	Hidden           bool `json:"hidden"`
	Delivery09       bool `json:"delivery09"`
	CashOnDelivery   bool `json:"cashOnDelivery"`
	DangerousLimited bool `json:"dangerousAndLimited"`
}

// AddonAvailability evaluates every add-on rule for a draft.
func AddonAvailability(d *domain.ShipmentDraft, unregistered bool) Availability {
	return Availability{
		Hidden:           HideAdditionalServices(d, unregistered),
		Delivery09:       CanShowDelivery09(d, unregistered),
		CashOnDelivery:   CanShowCashOnDelivery(d),
		DangerousLimited: CanShowDangerousAndLimited(d, unregistered),
	}
}
