package service

import (
	"context"
	"math"

	"github.com/google/uuid"

	"github.com/dukerupert/shippor/internal/address"
	"github.com/dukerupert/shippor/internal/domain"
	"github.com/dukerupert/shippor/internal/eligibility"
	"github.com/dukerupert/shippor/internal/validation"
)

// DetailsUpdate changes the shipment level fields of a draft. Nil fields
// are left as they are.
type DetailsUpdate struct {
	ShipmentType                  *string                `json:"shipmentType"`
	Contents                      *string                `json:"contents"`
	Reference                     *string                `json:"reference"`
	Value                         *string                `json:"value"`
	Currency                      *string                `json:"currency"`
	Incoterms                     *string                `json:"incoterms"`
	Instructions                  *string                `json:"instructions"`
	InstructionsPickUp            *string                `json:"instructionsPickUp"`
	ReturnFreightDoc              *bool                  `json:"returnFreightDoc"`
	CreateCommerceProformaInvoice *domain.ProformaChoice `json:"createCommerceProformaInvoice"`
	CashOnDelivery                *domain.CashOnDelivery `json:"cashOnDelivery"`
	PayingParty                   *domain.PayerRelation  `json:"payingParty"`
}

// editDraft applies fn to a copy of the session draft and stores the copy
// only when fn succeeds.
func (s *shipmentService) editDraft(sid, op string, fn func(sess *session, d *domain.ShipmentDraft) error) (domain.ShipmentDraft, error) {
	var out domain.ShipmentDraft
	err := s.withSession(sid, op, func(sess *session) error {
		next := sess.draft.Clone()
		if err := fn(sess, &next); err != nil {
			return err
		}
		sess.draft = next
		out = next.Clone()
		return nil
	})
	return out, err
}

func (s *shipmentService) Draft(ctx context.Context, sid string) (domain.ShipmentDraft, error) {
	var out domain.ShipmentDraft
	err := s.withSession(sid, "draft.get", func(sess *session) error {
		out = sess.draft.Clone()
		return nil
	})
	return out, err
}

func (s *shipmentService) ResetDraft(ctx context.Context, sid string) (domain.ShipmentDraft, error) {
	return s.editDraft(sid, "draft.reset", func(sess *session, d *domain.ShipmentDraft) error {
		*d = domain.NewDraft()
		sess.clearMethods()
		return nil
	})
}

// ReplaceDraft swaps in a whole draft, e.g. one restored by the browser.
func (s *shipmentService) ReplaceDraft(ctx context.Context, sid string, draft domain.ShipmentDraft) (domain.ShipmentDraft, error) {
	const op = "draft.replace"
	if len(draft.Parcels) == 0 {
		return domain.ShipmentDraft{}, domain.WithOp(ErrDraftWithoutParcels, op)
	}
	return s.editDraft(sid, op, func(sess *session, d *domain.ShipmentDraft) error {
		*d = draft.Clone()
		if d.Items == nil {
			d.Items = []domain.ShipmentItem{}
		}
		return nil
	})
}

func (s *shipmentService) ReplaceAddress(ctx context.Context, sid string, role domain.Role, addr domain.Address) (domain.ShipmentDraft, error) {
	return s.editDraft(sid, "draft.address.replace", func(sess *session, d *domain.ShipmentDraft) error {
		d.SetAddress(role, addr)
		return nil
	})
}

// UseSavedAddress copies an address book entry into the draft. Fields named
// in locked must match the address already on the draft; the comparison
// ignores case and whitespace.
func (s *shipmentService) UseSavedAddress(ctx context.Context, sid string, role domain.Role, addressID string, locked []string) (domain.ShipmentDraft, error) {
	const op = "draft.address.saved"
	saved, ok := s.book.Get(ctx, addressID)
	if !ok {
		return domain.ShipmentDraft{}, domain.WithOp(ErrSavedAddressMissing, op)
	}
	return s.editDraft(sid, op, func(sess *session, d *domain.ShipmentDraft) error {
		if !address.IsSafeToChange(d.Address(role), &saved, locked) {
			return domain.WithOp(ErrLockedAddressFields, op)
		}
		d.SetAddress(role, saved)
		return nil
	})
}

// UpdateAddressField sets one address field. Phone numbers are normalized
// for the address country as they are typed in.
func (s *shipmentService) UpdateAddressField(ctx context.Context, sid string, role domain.Role, field, value string) (domain.ShipmentDraft, error) {
	return s.editDraft(sid, "draft.address.update", func(sess *session, d *domain.ShipmentDraft) error {
		current := d.Address(role)
		if field == "phone" {
			value = address.NormalizePhone(value, current.Country)
		}
		next, err := current.WithField(field, value)
		if err != nil {
			return err
		}
		d.SetAddress(role, next)
		return nil
	})
}

// UpdateParcelField sets a measure of one parcel. A nil value clears it.
func (s *shipmentService) UpdateParcelField(ctx context.Context, sid, parcelID, field string, value *float64) (domain.ShipmentDraft, error) {
	const op = "draft.parcel.update"
	if value != nil && *value < 0 {
		return domain.ShipmentDraft{}, domain.WithOp(ErrNegativeMeasure, op)
	}

	return s.editDraft(sid, op, func(sess *session, d *domain.ShipmentDraft) error {
		i := -1
		for j := range d.Parcels {
			if d.Parcels[j].ID == parcelID {
				i = j
				break
			}
		}
		if i < 0 {
			return domain.WithOp(ErrParcelNotFound, op)
		}

		p := &d.Parcels[i]
		switch field {
		case "width":
			p.Width = value
		case "height":
			p.Height = value
		case "length":
			p.Length = value
		case "weight":
			p.Weight = value
		case "copies":
			if value == nil {
				p.Copies = nil
				break
			}
			if *value < 1 || *value != math.Trunc(*value) {
				return domain.WithOp(ErrInvalidCopies, op)
			}
			n := int(*value)
			p.Copies = &n
		default:
			return domain.WithOp(ErrUnknownParcelField, op)
		}
		return nil
	})
}

// UpsertItem replaces the customs line at index, or appends when index is
// one past the end.
func (s *shipmentService) UpsertItem(ctx context.Context, sid string, index int, item domain.ShipmentItem) (domain.ShipmentDraft, error) {
	const op = "draft.item.upsert"
	return s.editDraft(sid, op, func(sess *session, d *domain.ShipmentDraft) error {
		if index < 0 || index > len(d.Items) {
			return domain.WithOp(ErrItemIndexOutOfRange, op)
		}
		if item.ID == "" {
			item.ID = "item-" + uuid.NewString()[:8]
		}
		if index == len(d.Items) {
			d.Items = append(d.Items, item)
			return nil
		}
		d.Items[index] = item
		return nil
	})
}

func (s *shipmentService) UpdateShipmentDetails(ctx context.Context, sid string, u DetailsUpdate) (domain.ShipmentDraft, error) {
	return s.editDraft(sid, "draft.details.update", func(sess *session, d *domain.ShipmentDraft) error {
		setIf(&d.ShipmentType, u.ShipmentType)
		setIf(&d.Contents, u.Contents)
		setIf(&d.Reference, u.Reference)
		setIf(&d.Value, u.Value)
		setIf(&d.Currency, u.Currency)
		setIf(&d.Incoterms, u.Incoterms)
		setIf(&d.Instructions, u.Instructions)
		setIf(&d.InstructionsPickUp, u.InstructionsPickUp)
		setIf(&d.ReturnFreightDoc, u.ReturnFreightDoc)
		setIf(&d.CreateCommerceProformaInvoice, u.CreateCommerceProformaInvoice)
		setIf(&d.CashOnDelivery, u.CashOnDelivery)
		setIf(&d.PayingParty, u.PayingParty)
		return nil
	})
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// SetAddons replaces the add-on selection. Add-ons the draft is not
// eligible for are refused rather than silently dropped.
func (s *shipmentService) SetAddons(ctx context.Context, sid string, addons domain.Addons) (domain.ShipmentDraft, error) {
	const op = "draft.addons.set"
	return s.editDraft(sid, op, func(sess *session, d *domain.ShipmentDraft) error {
		avail := eligibility.AddonAvailability(d, sess.unregistered)
		switch {
		case avail.Hidden && addons != (domain.Addons{}):
			return domain.WithOp(ErrAddonsHidden, op)
		case addons.Delivery09 && !avail.Delivery09:
			return domain.WithOp(ErrDelivery09Unavailable, op)
		case addons.CashOnDelivery && !avail.CashOnDelivery:
			return domain.WithOp(ErrCODUnavailable, op)
		case (addons.Dangerous || addons.LimitedQtys) && !avail.DangerousLimited:
			return domain.WithOp(ErrDangerousUnavailable, op)
		}
		d.Addons = addons
		if !addons.CashOnDelivery {
			d.CashOnDelivery = domain.CashOnDelivery{}
		}
		return nil
	})
}

func (s *shipmentService) AddonAvailability(ctx context.Context, sid string) (eligibility.Availability, error) {
	var out eligibility.Availability
	err := s.withSession(sid, "draft.addons.availability", func(sess *session) error {
		out = eligibility.AddonAvailability(&sess.draft, sess.unregistered)
		return nil
	})
	return out, err
}

func (s *shipmentService) ValidateStep(ctx context.Context, sid string, step validation.Step) (validation.StepResult, error) {
	var out validation.StepResult
	err := s.withSession(sid, "draft.validate", func(sess *session) error {
		res, err := s.rules.ValidateStep(step, &sess.draft)
		if err != nil {
			return err
		}
		s.metrics.ObserveValidation(res.Step, res.Valid)
		s.logger.Debug("draft validated", "session_id", sess.id, "step", res.Step, "valid", res.Valid)
		out = res
		return nil
	})
	return out, err
}

// FieldsView tells a client which inputs of one party's address form to
// show and which identifiers the draft needs from that party.
type FieldsView struct {
	Role               domain.Role `json:"role"`
	Country            string      `json:"country"`
	ShowState          bool        `json:"showState"`
	ShowPostalCode     bool        `json:"showPostalCode"`
	ShowAddressLine2   bool        `json:"showAddressLine2"`
	PostalCodeRequired bool        `json:"postalCodeRequired"`
	QuickSearchField   string      `json:"quickSearchField,omitempty"`
	eligibility.PartyFields
}

func (s *shipmentService) FieldVisibility(ctx context.Context, sid string, role domain.Role) (*FieldsView, error) {
	var out *FieldsView
	err := s.withSession(sid, "draft.fields", func(sess *session) error {
		code := sess.draft.Address(role).Country
		field, _ := address.QuickSearchField(s.meta, code)
		out = &FieldsView{
			Role:               role,
			Country:            code,
			ShowState:          address.ShowStateField(s.meta, code),
			ShowPostalCode:     address.ShowPostalCodeField(s.meta, code),
			ShowAddressLine2:   address.ShowAddressLine2Field(s.meta, code),
			PostalCodeRequired: s.meta.RequiresMandatoryPostalCode(code),
			QuickSearchField:   field,
			PartyFields:        eligibility.Fields(&sess.draft, role, s.meta),
		}
		return nil
	})
	return out, err
}

// QuickProgress reports which quick-flow screens the draft passes.
func (s *shipmentService) QuickProgress(ctx context.Context, sid string) (validation.QuickProgress, error) {
	var out validation.QuickProgress
	err := s.withSession(sid, "draft.quick", func(sess *session) error {
		out = s.rules.QuickProgress(&sess.draft)
		return nil
	})
	return out, err
}
