package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/shippor/internal/address"
	"github.com/dukerupert/shippor/internal/cart"
	"github.com/dukerupert/shippor/internal/country"
	"github.com/dukerupert/shippor/internal/domain"
	"github.com/dukerupert/shippor/internal/handler"
	"github.com/dukerupert/shippor/internal/shipping"
	"github.com/dukerupert/shippor/internal/telemetry"
	"github.com/dukerupert/shippor/internal/validation"
)

// RulesHandler exposes the rules engine without a session. Every call is a
// pure function of the request body and the country table.
type RulesHandler struct {
	meta    *country.Meta
	rules   *validation.Validator
	agg     cart.Aggregator
	metrics *telemetry.RuleMetrics
	logger  *slog.Logger
}

// NewRulesHandler creates a rules handler.
func NewRulesHandler(meta *country.Meta, agg cart.Aggregator, metrics *telemetry.RuleMetrics, logger *slog.Logger) *RulesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RulesHandler{
		meta:    meta,
		rules:   validation.New(meta),
		agg:     agg,
		metrics: metrics,
		logger:  logger,
	}
}

// QuickSearch names the address field used for quick lookup.
type QuickSearch struct {
	Field string `json:"field"`
	Label string `json:"label"`
}

// CountryInfo is what an address form needs to know about a country.
type CountryInfo struct {
	Code               string                  `json:"code"`
	EUMember           bool                    `json:"euMember"`
	VATExemptTerritory bool                    `json:"vatExemptTerritory"`
	ShowState          bool                    `json:"showState"`
	ShowPostalCode     bool                    `json:"showPostalCode"`
	PostalCodeRequired bool                    `json:"postalCodeRequired"`
	ShowAddressLine2   bool                    `json:"showAddressLine2"`
	QuickSearch        *QuickSearch            `json:"quickSearch"`
	VAT                *country.VATRequirement `json:"vat"`
	VATTaxIDMandatory  bool                    `json:"vatTaxIdMandatory"`
	DialCode           string                  `json:"dialCode,omitempty"`
}

// Country handles GET /api/countries/{code}
func (h *RulesHandler) Country(w http.ResponseWriter, r *http.Request) {
	const op = "countries.get"
	code := strings.ToUpper(strings.TrimSpace(r.PathValue("code")))
	if len(code) != 2 {
		handler.ErrorResponse(w, r, domain.Invalid(op, "Country code must be two letters"))
		return
	}

	info := CountryInfo{
		Code:               code,
		EUMember:           h.meta.IsEUMember(code),
		VATExemptTerritory: h.meta.IsVATExemptEUTerritory(code),
		ShowState:          address.ShowStateField(h.meta, code),
		ShowPostalCode:     address.ShowPostalCodeField(h.meta, code),
		PostalCodeRequired: h.meta.RequiresMandatoryPostalCode(code),
		ShowAddressLine2:   address.ShowAddressLine2Field(h.meta, code),
		VATTaxIDMandatory:  h.meta.IsVATTaxIDMandatory(code),
		DialCode:           address.DialCodeFor(code),
	}
	if field, label := address.QuickSearchField(h.meta, code); field != "" {
		info.QuickSearch = &QuickSearch{Field: field, Label: label}
	}
	if level, ok := h.meta.VATRequirementLevel(code); ok {
		info.VAT = &country.VATRequirement{Level: level, TaxIDTypes: h.meta.AcceptedTaxIDTypes(code)}
	}

	handler.JSON(w, http.StatusOK, info)
}

type phoneRequest struct {
	Phone   string `json:"phone" validate:"required"`
	Country string `json:"country" validate:"omitempty,len=2"`
}

type phoneResponse struct {
	Phone     string `json:"phone"`
	LocalPart string `json:"localPart"`
}

// NormalizePhone handles POST /api/phone/normalize
func (h *RulesHandler) NormalizePhone(w http.ResponseWriter, r *http.Request) {
	var req phoneRequest
	if err := DecodeAndValidate(r, "phone.normalize", &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	code := strings.ToUpper(req.Country)
	phone := address.NormalizePhone(req.Phone, code)
	handler.JSON(w, http.StatusOK, phoneResponse{
		Phone:     phone,
		LocalPart: address.LocalPartOf(phone, code),
	})
}

// Validate handles POST /api/validate/{step}. The body is a full draft.
// A failing draft is still a 200; the errors are in the result.
func (h *RulesHandler) Validate(w http.ResponseWriter, r *http.Request) {
	const op = "validate.step"
	step, err := validation.ParseStep(r.PathValue("step"))
	if err != nil {
		handler.ErrorResponse(w, r, domain.Invalid(op, "Step must be basic, address-details or shipment-details"))
		return
	}

	draft := domain.NewDraft()
	if err := decodeJSON(r, op, &draft); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	if len(draft.Parcels) == 0 {
		handler.ErrorResponse(w, r, domain.Invalid(op, "A shipment needs at least one parcel"))
		return
	}

	res, err := h.rules.ValidateStep(step, &draft)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	h.metrics.ObserveValidation(res.Step, res.Valid)
	handler.JSON(w, http.StatusOK, res)
}

type rankRequest struct {
	Methods         []domain.ShippingMethod `json:"methods" validate:"dive"`
	NoPrinterNeeded bool                    `json:"noPrinterNeeded"`
	SortMode        shipping.SortMode       `json:"sortMode" validate:"omitempty,oneof=deliveryTime price"`
}

// RankMethods handles POST /api/methods/rank
func (h *RulesHandler) RankMethods(w http.ResponseWriter, r *http.Request) {
	var req rankRequest
	if err := DecodeAndValidate(r, "methods.rank", &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	if req.SortMode == "" {
		req.SortMode = shipping.SortByDeliveryTime
	}

	buckets := shipping.BucketAndSort(req.Methods, req.NoPrinterNeeded, req.SortMode)
	h.metrics.ObserveRanking(string(req.SortMode), len(buckets.Home), len(buckets.Pickup), len(buckets.Return))
	handler.JSON(w, http.StatusOK, buckets)
}

type totalsRequest struct {
	Items []cart.Line `json:"items" validate:"dive"`
}

// CartTotals handles POST /api/cart/totals
func (h *RulesHandler) CartTotals(w http.ResponseWriter, r *http.Request) {
	var req totalsRequest
	if err := DecodeAndValidate(r, "cart.totals", &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, h.agg.Totals(req.Items))
}

type summaryRequest struct {
	Shipments []domain.ShipmentRecord `json:"shipments"`
}

// ShipmentSummary handles POST /api/shipments/summary
func (h *RulesHandler) ShipmentSummary(w http.ResponseWriter, r *http.Request) {
	var req summaryRequest
	if err := decodeJSON(r, "shipments.summary", &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, cart.StatusSummary(req.Shipments))
}
