package routes

import (
	"github.com/dukerupert/shippor/internal/handler/api"
	"github.com/dukerupert/shippor/internal/router"
)

// RegisterAPIRoutes registers the health check, metrics and all JSON API
// routes.
func RegisterAPIRoutes(r *router.Router, deps APIDeps) {
	r.Get("/health", api.Health)
	if deps.MetricsHandler != nil {
		r.Get("/metrics", deps.MetricsHandler.ServeHTTP)
	}

	// Rules engine
	rules := deps.RulesHandler
	r.Get("/api/countries/{code}", rules.Country)
	r.Post("/api/phone/normalize", rules.NormalizePhone)
	r.Post("/api/validate/{step}", rules.Validate)
	r.Post("/api/methods/rank", rules.RankMethods)
	r.Post("/api/cart/totals", rules.CartTotals)
	r.Post("/api/shipments/summary", rules.ShipmentSummary)

	// Account
	account := deps.AccountHandler
	r.Get("/api/dashboard", account.Dashboard)
	r.Get("/api/tracking", account.Track)
	r.Get("/api/addresses", account.SearchAddresses)
	r.Post("/api/addresses", account.AddAddress)
	r.Get("/api/addresses/quick", account.QuickSearchAddresses)

	registerSessionRoutes(r, deps)
}

func registerSessionRoutes(r *router.Router, deps APIDeps) {
	s := deps.SessionHandler

	r.Post("/api/sessions", s.Create)
	r.Get("/api/sessions/{sid}", s.Get)
	r.Delete("/api/sessions/{sid}", s.Delete)

	// Draft
	r.Get("/api/sessions/{sid}/draft", s.Draft)
	r.Put("/api/sessions/{sid}/draft", s.ReplaceDraft)
	r.Delete("/api/sessions/{sid}/draft", s.ResetDraft)
	r.Put("/api/sessions/{sid}/draft/address/{role}", s.ReplaceAddress)
	r.Patch("/api/sessions/{sid}/draft/address/{role}", s.UpdateAddressField)
	r.Put("/api/sessions/{sid}/draft/address/{role}/saved", s.UseSavedAddress)
	r.Get("/api/sessions/{sid}/draft/fields/{role}", s.Fields)
	r.Get("/api/sessions/{sid}/draft/quick", s.QuickProgress)
	r.Patch("/api/sessions/{sid}/draft/parcels/{parcelID}", s.UpdateParcel)
	r.Put("/api/sessions/{sid}/draft/items/{index}", s.UpsertItem)
	r.Patch("/api/sessions/{sid}/draft/details", s.UpdateDetails)
	r.Get("/api/sessions/{sid}/draft/addons", s.Addons)
	r.Put("/api/sessions/{sid}/draft/addons", s.SetAddons)
	r.Post("/api/sessions/{sid}/draft/validate/{step}", s.ValidateStep)

	// Shipping methods and pickup points
	r.Post("/api/sessions/{sid}/methods/load", s.LoadMethods)
	r.Put("/api/sessions/{sid}/methods/selected", s.SelectMethod)
	r.Post("/api/sessions/{sid}/pickups/{serviceID}", s.LoadPickups)
	r.Put("/api/sessions/{sid}/pickup-location", s.SelectPickup)

	// Cart
	r.Get("/api/sessions/{sid}/cart", s.Cart)
	r.Post("/api/sessions/{sid}/cart", s.AddToCart)
	r.Delete("/api/sessions/{sid}/cart/{itemID}", s.RemoveCartItem)
	r.Post("/api/sessions/{sid}/cart/{itemID}/retry", s.RetryCartItem)

	// Checkout books with the carrier, so it is rate limited per client
	checkout := r
	if deps.CheckoutLimit != nil {
		checkout = r.Group(deps.CheckoutLimit)
	}
	checkout.Post("/api/sessions/{sid}/checkout", s.Checkout)
	checkout.Post("/api/sessions/{sid}/quick-shipment", s.QuickShipment)
}
