package domain

import "time"

// CartItemState tracks a cart line through checkout.
type CartItemState string

const (
	CartItemAdded                  CartItemState = "added"
	CartItemFailedShipmentCanRetry CartItemState = "failed-shipment-can-retry"
	CartItemShipped                CartItemState = "shipped"
)

// CartItem is a draft snapshot waiting for checkout. Draft is owned by the
// item and never aliased by the live draft.
type CartItem struct {
	ID    string        `json:"id"`
	Title string        `json:"title"`
	Price float64       `json:"price"`
	Draft ShipmentDraft `json:"draft"`
	State CartItemState `json:"state"`
}

// ShipmentStatus is the carrier-reported lifecycle status of a shipment.
type ShipmentStatus string

const (
	ShipmentPending        ShipmentStatus = "pending"
	ShipmentOutForDelivery ShipmentStatus = "out-for-delivery"
	ShipmentDelivered      ShipmentStatus = "delivered"
)

// ShipmentRecord is a booked shipment as returned by the carrier backend.
type ShipmentRecord struct {
	ID             string         `json:"id"`
	CreatedAt      time.Time      `json:"createdAt"`
	Status         ShipmentStatus `json:"status"`
	TrackingNumber string         `json:"trackingNumber"`
	RecipientName  string         `json:"recipientName"`
	SenderName     string         `json:"senderName"`
	Service        string         `json:"service"`
	Price          float64        `json:"price"`
}

// TrackingEvent is one scan event for a tracking number.
type TrackingEvent struct {
	ID             string    `json:"id"`
	TrackingNumber string    `json:"trackingNumber"`
	Status         string    `json:"status"`
	Location       string    `json:"location"`
	Timestamp      time.Time `json:"timestamp"`
}
