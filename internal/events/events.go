// Package events publishes booking flow events for downstream consumers
// such as label printing and accounting.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types. The type is appended to the subject prefix.
const (
	TypeShipmentCreated = "shipment.created"
	TypeCartCheckedOut  = "cart.checked_out"
)

// Event is the envelope written to the bus.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	SessionID  string    `json:"sessionId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data"`
}

// New builds an event with a fresh id and the current time.
func New(eventType, sessionID string, data any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		SessionID:  sessionID,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

// ShipmentCreated is published once per booked shipment.
type ShipmentCreated struct {
	ShipmentID     string  `json:"shipmentId"`
	TrackingNumber string  `json:"trackingNumber"`
	CartItemID     string  `json:"cartItemId,omitempty"`
	Service        string  `json:"service"`
	Price          float64 `json:"price"`
	Route          string  `json:"route"`
}

// CartCheckedOut is published after every checkout attempt.
type CartCheckedOut struct {
	Payment   string  `json:"payment"`
	Outcome   string  `json:"outcome"`
	Succeeded int     `json:"succeeded"`
	Failed    int     `json:"failed"`
	Total     float64 `json:"total"`
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, e Event) error { return nil }

func (NopPublisher) Close() error { return nil }
