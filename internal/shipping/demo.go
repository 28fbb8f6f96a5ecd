package shipping

import (
	"time"

	"github.com/dukerupert/shippor/internal/domain"
)

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

// DemoCatalog returns the sample catalog used by the development server.
func DemoCatalog() Catalog {
	return Catalog{
		Balance: 240.5,
		Methods: []domain.ShippingMethod{
			{
				ID:                        "m-1",
				Label:                     "Express Air",
				ETA:                       "1-2 business days",
				Carrier:                   "DHL",
				Price:                     24.5,
				DeliveryTime:              "1-2",
				ServiceID:                 "dhl_express",
				RequiresEmailForRecipient: true,
				Tags:                      []string{"Fastest", "Door delivery"},
				InfoText: []string{
					"Best for international parcels and urgent deliveries.",
					"Tracking updates every transit checkpoint.",
				},
				DropOffTimes: []string{"Mon-Fri before 16:00 for same-day dispatch"},
				OpeningHours: []string{"Courier pickup window: 09:00-18:00"},
			},
			{
				ID:                     "m-2",
				Label:                  "Economy Ground",
				ETA:                    "3-5 business days",
				Carrier:                "UPS",
				Price:                  14.75,
				DeliveryTime:           "3-5",
				ServiceID:              "ups_ground_pickup",
				PrinterRequired:        true,
				IsPickupLocationMethod: true,
				Tags:                   []string{"Cheapest", "Pickup point"},
				InfoText: []string{
					"Most affordable service for non-urgent deliveries.",
					"Pickup point handoff required.",
				},
				DropOffTimes: []string{"Mon-Sat before 20:00 at selected pickup point"},
				OpeningHours: []string{"Pickup partner hours vary by location"},
			},
			{
				ID:           "m-3",
				Label:        "Courier Same Day",
				ETA:          "Same day",
				Carrier:      "Local Courier",
				Price:        39.0,
				DeliveryTime: "0",
				ServiceID:    "wolt_same_day",
				Tags:         []string{"Same day", "Metro only"},
				InfoText: []string{
					"Available for selected city zones only.",
					"Service cut-off depends on courier capacity.",
				},
				DropOffTimes: []string{"Order before 14:00 for same-day route"},
				OpeningHours: []string{"Live courier windows shown during checkout"},
			},
		},
		PickupLocations: map[string][]domain.PickupLocation{
			"ups_ground_pickup": {
				{ID: "pk-1", Name: "UPS Point Downtown", Address1: "10 Front Street", Zipcode: "92101", ServiceID: "ups_ground_pickup"},
				{ID: "pk-2", Name: "UPS Point Harbor", Address1: "88 Harbor Rd", Zipcode: "92102", ServiceID: "ups_ground_pickup"},
			},
		},
		Shipments: []domain.ShipmentRecord{
			{ID: "SHP-1001", CreatedAt: mustTime("2026-02-08T14:05:00Z"), Status: domain.ShipmentPending, TrackingNumber: "TRK1001", RecipientName: "Taylor Recipient", SenderName: "Alex Freight", Service: "Express Air", Price: 19.99},
			{ID: "SHP-1002", CreatedAt: mustTime("2026-02-07T09:30:00Z"), Status: domain.ShipmentOutForDelivery, TrackingNumber: "TRK1002", RecipientName: "Morgan Harper", SenderName: "Alex Freight", Service: "Economy Ground", Price: 11.5},
			{ID: "SHP-1003", CreatedAt: mustTime("2026-02-06T16:22:00Z"), Status: domain.ShipmentDelivered, TrackingNumber: "TRK1003", RecipientName: "Jamie Stone", SenderName: "Alex Freight", Service: "Express Air", Price: 14.0},
		},
		Events: []domain.TrackingEvent{
			{ID: "evt-1", TrackingNumber: "TRK1001", Status: "Label created", Location: "Austin, TX", Timestamp: mustTime("2026-02-08T14:06:00Z")},
			{ID: "evt-2", TrackingNumber: "TRK1002", Status: "Out for delivery", Location: "San Diego, CA", Timestamp: mustTime("2026-02-10T08:10:00Z")},
			{ID: "evt-3", TrackingNumber: "TRK1003", Status: "Delivered", Location: "Los Angeles, CA", Timestamp: mustTime("2026-02-09T12:44:00Z")},
		},
	}
}

// DemoAddresses returns the sample address book entries.
func DemoAddresses() []domain.Address {
	return []domain.Address{
		{
			ID: "addr-1", Label: "Warehouse HQ", Type: domain.AddressTypeBusiness,
			Name: "Alex Freight", Email: "alex@sender.com", Phone: "+12025550118",
			Organization: "Shippor Warehouse", Street: "500 Industrial Way",
			City: "Austin", State: "TX", PostalCode: "73301", Country: "US",
		},
		{
			ID: "addr-2", Label: "Main Recipient", Type: domain.AddressTypePrivate,
			Name: "Taylor Recipient", Email: "taylor@recipient.com", Phone: "+12025550119",
			Street: "77 Main Street", City: "San Diego", State: "CA", PostalCode: "92101", Country: "US",
		},
	}
}
