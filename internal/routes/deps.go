package routes

import (
	"net/http"

	"github.com/dukerupert/shippor/internal/handler/api"
	"github.com/dukerupert/shippor/internal/router"
)

// APIDeps contains dependencies for the JSON API routes
type APIDeps struct {
	// Stateless rules (countries, phone, validation, ranking, totals)
	RulesHandler *api.RulesHandler

	// Booking sessions (draft, methods, cart, checkout)
	SessionHandler *api.SessionHandler

	// Account views (dashboard, tracking, address book)
	AccountHandler *api.AccountHandler

	// MetricsHandler serves Prometheus metrics; nil disables /metrics
	MetricsHandler http.Handler

	// CheckoutLimit wraps routes that book shipments with the carrier
	CheckoutLimit router.Middleware
}
