package api

import (
	"net/http"
	"strings"

	"github.com/dukerupert/shippor/internal/address"
	"github.com/dukerupert/shippor/internal/domain"
	"github.com/dukerupert/shippor/internal/handler"
	"github.com/dukerupert/shippor/internal/service"
)

// AccountHandler serves the account views that do not belong to a
// booking session.
type AccountHandler struct {
	service service.ShipmentService
}

// NewAccountHandler creates an account handler.
func NewAccountHandler(svc service.ShipmentService) *AccountHandler {
	return &AccountHandler{service: svc}
}

// Dashboard handles GET /api/dashboard
func (h *AccountHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Dashboard(r.Context())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, d)
}

// Track handles GET /api/tracking?number=
func (h *AccountHandler) Track(w http.ResponseWriter, r *http.Request) {
	evts, err := h.service.Track(r.Context(), r.URL.Query().Get("number"))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, evts)
}

// addressOption is a saved address with the text a search box shows for it.
type addressOption struct {
	domain.Address
	Display string `json:"display"`
}

func addressOptions(addrs []domain.Address) []addressOption {
	out := make([]addressOption, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, addressOption{Address: a, Display: address.FormatForInput(a)})
	}
	return out
}

// SearchAddresses handles GET /api/addresses?q=
func (h *AccountHandler) SearchAddresses(w http.ResponseWriter, r *http.Request) {
	addrs, err := h.service.SearchAddresses(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, addressOptions(addrs))
}

type quickSearchResponse struct {
	Field     string          `json:"field"`
	Label     string          `json:"label"`
	Addresses []addressOption `json:"addresses"`
}

// QuickSearchAddresses handles GET /api/addresses/quick?country=&q=
func (h *AccountHandler) QuickSearchAddresses(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("country")))
	if len(code) != 2 {
		handler.ErrorResponse(w, r, domain.Invalid("addresses.quick", "Country must be a two letter code"))
		return
	}
	view, err := h.service.QuickSearchAddresses(r.Context(), code, r.URL.Query().Get("q"))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, quickSearchResponse{
		Field:     view.Field,
		Label:     view.Label,
		Addresses: addressOptions(view.Addresses),
	})
}

// AddAddress handles POST /api/addresses
func (h *AccountHandler) AddAddress(w http.ResponseWriter, r *http.Request) {
	var addr domain.Address
	if err := decodeJSON(r, "addresses.add", &addr); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	saved, err := h.service.AddAddress(r.Context(), addr)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusCreated, saved)
}

// Health handles GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	handler.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
