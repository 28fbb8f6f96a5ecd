// Package eligibility answers the cross-border questions behind the booking
// forms: is a shipment domestic, does it leave the EU VAT area, and which
// customs identifiers (EORI, VAT/tax ID, SSN, EIN) each party must supply.
//
// Every function is a pure read of its arguments.
package eligibility

import (
	"strings"

	"github.com/dukerupert/shippor/internal/country"
	"github.com/dukerupert/shippor/internal/domain"
)

// VATCarrierMarker is matched against the selected method's label and
// service id to decide whether the carrier collects destination tax IDs.
// The rule keys off catalog text, so a carrier rename silently disables it.
const VATCarrierMarker = "asendia"

// IsDomestic reports whether sender and recipient share a country code.
// Codes are compared exactly and are expected to be upper-case already.
func IsDomestic(d *domain.ShipmentDraft) bool {
	return d.SenderAddress.Country == d.RecipientAddress.Country
}

func IsInternational(d *domain.ShipmentDraft) bool {
	return !IsDomestic(d)
}

// isSpecialTerritory reports Spanish postal codes outside the EU VAT area:
// Canary Islands (35, 38), Ceuta (51) and Melilla (52).
func isSpecialTerritory(code, postalCode string) bool {
	if code != "ES" {
		return false
	}
	for _, p := range []string{"35", "38", "51", "52"} {
		if strings.HasPrefix(postalCode, p) {
			return true
		}
	}
	return false
}

// CrossesEUVATBorder reports whether the shipment needs a customs
// declaration because it crosses the EU VAT border. Northern Ireland (GB
// postal codes starting "BT-") stays inside, Spanish special territories are
// always outside, and shipments to FI never count unless the sender is
// outside the EU.
func CrossesEUVATBorder(d *domain.ShipmentDraft, meta *country.Meta) bool {
	if IsDomestic(d) {
		return false
	}

	sender := d.SenderAddress.Country
	recipient := d.RecipientAddress.Country
	postal := d.RecipientAddress.PostalCode

	senderInEU := meta.IsEUMember(sender)
	recipientInEU := meta.IsEUMember(recipient)

	if recipientInEU && !senderInEU {
		return true
	}
	if recipient == "GB" && strings.HasPrefix(postal, "BT-") {
		return false
	}
	if recipient == "ES" {
		return isSpecialTerritory(recipient, postal)
	}
	return recipient != "FI" && (meta.IsVATExemptEUTerritory(recipient) || !recipientInEU)
}

// RequiresCustomsValueField reports whether a declared value must be given.
func RequiresCustomsValueField(d *domain.ShipmentDraft) bool {
	if d.SenderAddress.Country == "" || d.RecipientAddress.Country == "" {
		return false
	}
	return IsInternational(d)
}

// EORIInput carries what RequiresEORI needs about one party.
type EORIInput struct {
	AddressType      domain.AddressType
	SenderCountry    string
	RecipientCountry string
	// PostalCode is the postal code of the party being checked.
	PostalCode string
	Role       domain.Role
}

// RequiresEORI reports whether the party must supply an EORI number. Only
// businesses trading across the EU customs border need one, and only the
// party resident in the EU. A Spanish special-territory postal code makes
// any cross-country shipment count as crossing.
func RequiresEORI(in EORIInput, meta *country.Meta) bool {
	if in.AddressType != domain.AddressTypeBusiness {
		return false
	}
	if in.SenderCountry == in.RecipientCountry {
		return false
	}

	senderInEU := meta.IsEUMember(in.SenderCountry)
	recipientInEU := meta.IsEUMember(in.RecipientCountry)
	special := isSpecialTerritory(in.SenderCountry, in.PostalCode) ||
		isSpecialTerritory(in.RecipientCountry, in.PostalCode)

	if senderInEU == recipientInEU && !special {
		return false
	}
	if in.Role == domain.RoleSender {
		return senderInEU
	}
	return recipientInEU
}

// RequiresSSN reports whether a social security number is needed. Private
// recipients in US and KR always need one. Swedish private senders need one
// when the paying address is also Swedish and not a business.
func RequiresSSN(addr, paying domain.Address, role domain.Role) bool {
	if role == domain.RoleRecipient && (addr.Country == "US" || addr.Country == "KR") {
		return addr.Type == domain.AddressTypePrivate
	}
	if role != domain.RoleSender {
		return false
	}
	return addr.Country == "SE" &&
		paying.Country == "SE" &&
		paying.Type != domain.AddressTypeBusiness &&
		addr.Type == domain.AddressTypePrivate
}

// RequiresEIN reports whether a US employer identification number is needed.
func RequiresEIN(addr domain.Address, role domain.Role) bool {
	return role == domain.RoleRecipient && addr.Country == "US" && addr.Type == domain.AddressTypeBusiness
}

// ShowsVATTaxID reports whether the VAT/tax ID input is shown for a party.
// Only recipients are asked, only when the selected carrier collects the
// identifier, and only for countries in the VAT table.
func ShowsVATTaxID(addr domain.Address, role domain.Role, d *domain.ShipmentDraft, meta *country.Meta) bool {
	if role != domain.RoleRecipient {
		return false
	}

	var label, serviceID string
	if d.SelectedMethod != nil {
		label = d.SelectedMethod.Label
		serviceID = d.SelectedMethod.ServiceID
	}
	name := strings.ToLower(label + " " + serviceID)
	if !strings.Contains(name, VATCarrierMarker) {
		return false
	}

	return meta.HasVATRequirement(addr.Country)
}

// RequiresVATTaxID reports whether the shown VAT/tax ID input is mandatory.
// ShowsVATTaxID alone is the "carrier collects it and the country has a VAT
// rule" check that mobile clients call requiresVatTaxId; this adds the two
// strictest VAT tiers on top.
func RequiresVATTaxID(addr domain.Address, role domain.Role, d *domain.ShipmentDraft, meta *country.Meta) bool {
	return ShowsVATTaxID(addr, role, d, meta) && IsVATTaxIDMandatory(meta, addr.Country)
}

// IsVATTaxIDMandatory reports whether code sits in the two strictest tiers.
func IsVATTaxIDMandatory(meta *country.Meta, code string) bool {
	return meta.IsVATTaxIDMandatory(code)
}

// PartyFields tells a client which identification inputs to show or require
// for one party of a draft.
type PartyFields struct {
	EORI             bool     `json:"eori"`
	SSN              bool     `json:"ssn"`
	EIN              bool     `json:"ein"`
	VATTaxID         bool     `json:"vatTaxId"`
	VATTaxIDRequired bool     `json:"vatTaxIdRequired"`
	TaxIDTypes       []string `json:"taxIdTypes,omitempty"`
	CustomsValue     bool     `json:"customsValue"`
}

// Fields evaluates the identification predicates for role against d. The
// paying address decides the Swedish SSN case.
func Fields(d *domain.ShipmentDraft, role domain.Role, meta *country.Meta) PartyFields {
	addr := d.Address(role)

	out := PartyFields{
		EORI: RequiresEORI(EORIInput{
			AddressType:      addr.Type,
			SenderCountry:    d.SenderAddress.Country,
			RecipientCountry: d.RecipientAddress.Country,
			PostalCode:       addr.PostalCode,
			Role:             role,
		}, meta),
		SSN:          RequiresSSN(addr, d.PayingAddress, role),
		EIN:          RequiresEIN(addr, role),
		VATTaxID:     ShowsVATTaxID(addr, role, d, meta),
		CustomsValue: RequiresCustomsValueField(d),
	}
	if out.VATTaxID {
		out.VATTaxIDRequired = IsVATTaxIDMandatory(meta, addr.Country)
		out.TaxIDTypes = meta.AcceptedTaxIDTypes(addr.Country)
	}
	return out
}
