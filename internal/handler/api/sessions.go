package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dukerupert/shippor/internal/cart"
	"github.com/dukerupert/shippor/internal/domain"
	"github.com/dukerupert/shippor/internal/handler"
	"github.com/dukerupert/shippor/internal/service"
	"github.com/dukerupert/shippor/internal/shipping"
	"github.com/dukerupert/shippor/internal/validation"
)

// SessionHandler serves the booking flow of one browser session: the draft,
// its shipping methods, the cart and checkout.
type SessionHandler struct {
	service service.ShipmentService
}

// NewSessionHandler creates a session handler.
func NewSessionHandler(svc service.ShipmentService) *SessionHandler {
	return &SessionHandler{service: svc}
}

func sid(r *http.Request) string {
	return r.PathValue("sid")
}

func parseRole(r *http.Request, op string) (domain.Role, error) {
	switch role := domain.Role(r.PathValue("role")); role {
	case domain.RoleSender, domain.RoleRecipient:
		return role, nil
	default:
		return "", domain.Invalid(op, "Role must be sender or recipient")
	}
}

// draftResponse writes the draft or the error that prevented the edit.
func draftResponse(w http.ResponseWriter, r *http.Request, d domain.ShipmentDraft, err error) {
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, d)
}

// ============================================================================
// Sessions
// ============================================================================

// Create handles POST /api/sessions. The body is optional.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var opts service.SessionOptions
	if err := decodeJSON(r, "session.create", &opts); err != nil && !errors.Is(err, errEmptyBody) {
		handler.ErrorResponse(w, r, err)
		return
	}

	view, err := h.service.CreateSession(r.Context(), opts)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/sessions/"+view.ID)
	handler.JSON(w, http.StatusCreated, view)
}

// Get handles GET /api/sessions/{sid}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Session(r.Context(), sid(r))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, view)
}

// Delete handles DELETE /api/sessions/{sid}
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteSession(r.Context(), sid(r)); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ============================================================================
// Draft
// ============================================================================

// Draft handles GET /api/sessions/{sid}/draft
func (h *SessionHandler) Draft(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Draft(r.Context(), sid(r))
	draftResponse(w, r, d, err)
}

// ReplaceDraft handles PUT /api/sessions/{sid}/draft
func (h *SessionHandler) ReplaceDraft(w http.ResponseWriter, r *http.Request) {
	var d domain.ShipmentDraft
	if err := decodeJSON(r, "draft.replace", &d); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	d, err := h.service.ReplaceDraft(r.Context(), sid(r), d)
	draftResponse(w, r, d, err)
}

// ResetDraft handles DELETE /api/sessions/{sid}/draft
func (h *SessionHandler) ResetDraft(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.ResetDraft(r.Context(), sid(r))
	draftResponse(w, r, d, err)
}

// ReplaceAddress handles PUT /api/sessions/{sid}/draft/address/{role}
func (h *SessionHandler) ReplaceAddress(w http.ResponseWriter, r *http.Request) {
	const op = "draft.address.replace"
	role, err := parseRole(r, op)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	var addr domain.Address
	if err := decodeJSON(r, op, &addr); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	d, err := h.service.ReplaceAddress(r.Context(), sid(r), role, addr)
	draftResponse(w, r, d, err)
}

type fieldUpdate struct {
	Field string `json:"field" validate:"required"`
	Value string `json:"value"`
}

// UpdateAddressField handles PATCH /api/sessions/{sid}/draft/address/{role}
func (h *SessionHandler) UpdateAddressField(w http.ResponseWriter, r *http.Request) {
	const op = "draft.address.update"
	role, err := parseRole(r, op)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	var req fieldUpdate
	if err := DecodeAndValidate(r, op, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	d, err := h.service.UpdateAddressField(r.Context(), sid(r), role, req.Field, req.Value)
	draftResponse(w, r, d, err)
}

type parcelUpdate struct {
	Field string   `json:"field" validate:"required,oneof=width height length weight copies"`
	Value *float64 `json:"value"`
}

// UpdateParcel handles PATCH /api/sessions/{sid}/draft/parcels/{parcelID}
func (h *SessionHandler) UpdateParcel(w http.ResponseWriter, r *http.Request) {
	var req parcelUpdate
	if err := DecodeAndValidate(r, "draft.parcel.update", &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	d, err := h.service.UpdateParcelField(r.Context(), sid(r), r.PathValue("parcelID"), req.Field, req.Value)
	draftResponse(w, r, d, err)
}

// UpsertItem handles PUT /api/sessions/{sid}/draft/items/{index}
func (h *SessionHandler) UpsertItem(w http.ResponseWriter, r *http.Request) {
	const op = "draft.item.upsert"
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil || index < 0 {
		handler.ErrorResponse(w, r, domain.Invalid(op, "Item index must be a non-negative number"))
		return
	}
	var item domain.ShipmentItem
	if err := decodeJSON(r, op, &item); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	d, err := h.service.UpsertItem(r.Context(), sid(r), index, item)
	draftResponse(w, r, d, err)
}

// UpdateDetails handles PATCH /api/sessions/{sid}/draft/details. Only the
// fields present in the body change.
func (h *SessionHandler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	var u service.DetailsUpdate
	if err := decodeJSON(r, "draft.details.update", &u); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	d, err := h.service.UpdateShipmentDetails(r.Context(), sid(r), u)
	draftResponse(w, r, d, err)
}

// Addons handles GET /api/sessions/{sid}/draft/addons
func (h *SessionHandler) Addons(w http.ResponseWriter, r *http.Request) {
	avail, err := h.service.AddonAvailability(r.Context(), sid(r))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, avail)
}

// SetAddons handles PUT /api/sessions/{sid}/draft/addons
func (h *SessionHandler) SetAddons(w http.ResponseWriter, r *http.Request) {
	var addons domain.Addons
	if err := decodeJSON(r, "draft.addons.set", &addons); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	d, err := h.service.SetAddons(r.Context(), sid(r), addons)
	draftResponse(w, r, d, err)
}

type savedAddressRequest struct {
	AddressID    string   `json:"addressId" validate:"required"`
	LockedFields []string `json:"lockedFields"`
}

// UseSavedAddress handles PUT /api/sessions/{sid}/draft/address/{role}/saved
func (h *SessionHandler) UseSavedAddress(w http.ResponseWriter, r *http.Request) {
	const op = "draft.address.saved"
	role, err := parseRole(r, op)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	var req savedAddressRequest
	if err := DecodeAndValidate(r, op, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	d, err := h.service.UseSavedAddress(r.Context(), sid(r), role, req.AddressID, req.LockedFields)
	draftResponse(w, r, d, err)
}

// Fields handles GET /api/sessions/{sid}/draft/fields/{role}
func (h *SessionHandler) Fields(w http.ResponseWriter, r *http.Request) {
	role, err := parseRole(r, "draft.fields")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	view, err := h.service.FieldVisibility(r.Context(), sid(r), role)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, view)
}

// QuickProgress handles GET /api/sessions/{sid}/draft/quick
func (h *SessionHandler) QuickProgress(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.QuickProgress(r.Context(), sid(r))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, p)
}

// ValidateStep handles POST /api/sessions/{sid}/draft/validate/{step}
func (h *SessionHandler) ValidateStep(w http.ResponseWriter, r *http.Request) {
	step, err := validation.ParseStep(r.PathValue("step"))
	if err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("draft.validate", "Step must be basic, address-details or shipment-details"))
		return
	}
	res, err := h.service.ValidateStep(r.Context(), sid(r), step)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, res)
}

// ============================================================================
// Shipping methods and pickup points
// ============================================================================

type loadMethodsRequest struct {
	SortMode shipping.SortMode `json:"sortMode" validate:"omitempty,oneof=deliveryTime price"`
}

// LoadMethods handles POST /api/sessions/{sid}/methods/load. The body is
// optional; without a sort mode the session's current one is kept.
func (h *SessionHandler) LoadMethods(w http.ResponseWriter, r *http.Request) {
	var req loadMethodsRequest
	if err := DecodeAndValidate(r, "methods.load", &req); err != nil && !errors.Is(err, errEmptyBody) {
		handler.ErrorResponse(w, r, err)
		return
	}
	view, err := h.service.LoadShippingMethods(r.Context(), sid(r), req.SortMode)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, view)
}

type selectMethodRequest struct {
	MethodID string `json:"methodId" validate:"required"`
}

// SelectMethod handles PUT /api/sessions/{sid}/methods/selected
func (h *SessionHandler) SelectMethod(w http.ResponseWriter, r *http.Request) {
	var req selectMethodRequest
	if err := DecodeAndValidate(r, "methods.select", &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	d, err := h.service.SelectMethod(r.Context(), sid(r), req.MethodID)
	draftResponse(w, r, d, err)
}

// LoadPickups handles POST /api/sessions/{sid}/pickups/{serviceID}
func (h *SessionHandler) LoadPickups(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.LoadPickupLocations(r.Context(), sid(r), r.PathValue("serviceID"))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, view)
}

type selectPickupRequest struct {
	LocationID string `json:"locationId" validate:"required"`
}

// SelectPickup handles PUT /api/sessions/{sid}/pickup-location
func (h *SessionHandler) SelectPickup(w http.ResponseWriter, r *http.Request) {
	var req selectPickupRequest
	if err := DecodeAndValidate(r, "pickups.select", &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	d, err := h.service.SelectPickupLocation(r.Context(), sid(r), req.LocationID)
	draftResponse(w, r, d, err)
}

// ============================================================================
// Cart and checkout
// ============================================================================

// AddToCart handles POST /api/sessions/{sid}/cart
func (h *SessionHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.AddDraftToCart(r.Context(), sid(r))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusCreated, item)
}

type cartResponse struct {
	Items  []domain.CartItem `json:"items"`
	Totals cart.Totals       `json:"totals"`
}

// Cart handles GET /api/sessions/{sid}/cart
func (h *SessionHandler) Cart(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Session(r.Context(), sid(r))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, cartResponse{Items: view.Cart, Totals: view.Totals})
}

// RemoveCartItem handles DELETE /api/sessions/{sid}/cart/{itemID}
func (h *SessionHandler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RemoveCartItem(r.Context(), sid(r), r.PathValue("itemID")); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RetryCartItem handles POST /api/sessions/{sid}/cart/{itemID}/retry
func (h *SessionHandler) RetryCartItem(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.RetryCartItem(r.Context(), sid(r), r.PathValue("itemID"))
	draftResponse(w, r, d, err)
}

type checkoutErrorResponse struct {
	Error  map[string]string       `json:"error"`
	Result *service.CheckoutResult `json:"result"`
}

// checkoutResponse writes a checkout outcome. A refused or failed checkout
// still carries the cart state so the client can show per-item errors.
func checkoutResponse(w http.ResponseWriter, r *http.Request, res *service.CheckoutResult, err error) {
	if err == nil {
		handler.JSON(w, http.StatusOK, res)
		return
	}
	if res == nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	code, message := handler.Classify(err)
	if res.State.Errors.General != "" {
		message = res.State.Errors.General
	}
	handler.JSON(w, handler.ErrorCodeToHTTPStatus(code), checkoutErrorResponse{
		Error: map[string]string{
			"code":    code,
			"message": message,
		},
		Result: res,
	})
}

// Checkout handles POST /api/sessions/{sid}/checkout
func (h *SessionHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req service.CheckoutRequest
	if err := decodeJSON(r, "cart.submit", &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	res, err := h.service.SubmitCart(r.Context(), sid(r), req)
	checkoutResponse(w, r, res, err)
}

// QuickShipment handles POST /api/sessions/{sid}/quick-shipment
func (h *SessionHandler) QuickShipment(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.SubmitQuickShipment(r.Context(), sid(r))
	checkoutResponse(w, r, res, err)
}
