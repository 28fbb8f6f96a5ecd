package service

import (
	"github.com/dukerupert/shippor/internal/domain"
)

// Draft editing errors - use domain.EINVALID / domain.ENOTFOUND
var (
	ErrParcelNotFound         = &domain.Error{Code: domain.ENOTFOUND, Message: "Parcel not found"}
	ErrUnknownParcelField     = &domain.Error{Code: domain.EINVALID, Message: "Unknown parcel field"}
	ErrNegativeMeasure        = &domain.Error{Code: domain.EINVALID, Message: "Parcel measures cannot be negative"}
	ErrInvalidCopies          = &domain.Error{Code: domain.EINVALID, Message: "Copies must be a whole number of at least 1"}
	ErrItemIndexOutOfRange    = &domain.Error{Code: domain.EINVALID, Message: "Item index out of range"}
	ErrDraftWithoutParcels    = &domain.Error{Code: domain.EINVALID, Message: "A shipment needs at least one parcel"}
	ErrInvalidSortMode        = &domain.Error{Code: domain.EINVALID, Message: "Sort mode must be deliveryTime or price"}
	ErrPickupLocationNotFound = &domain.Error{Code: domain.ENOTFOUND, Message: "Pickup location not found"}
	ErrPickupNotSupported     = &domain.Error{Code: domain.EINVALID, Message: "Selected shipping method has no pickup locations"}
)

// Add-on errors - use domain.EUNPROCESSABLE
var (
	ErrAddonsHidden          = &domain.Error{Code: domain.EUNPROCESSABLE, Message: "Additional services are not available for this shipment"}
	ErrDelivery09Unavailable = &domain.Error{Code: domain.EUNPROCESSABLE, Message: "Delivery by 09:00 is not available for this shipment"}
	ErrCODUnavailable        = &domain.Error{Code: domain.EUNPROCESSABLE, Message: "Cash on delivery is not available for private senders"}
	ErrDangerousUnavailable  = &domain.Error{Code: domain.EUNPROCESSABLE, Message: "Dangerous goods and limited quantities are not available for this shipment"}
)

// Address book errors
var (
	ErrAddressInvalid      = &domain.Error{Code: domain.EINVALID, Message: "Address is not valid"}
	ErrSavedAddressMissing = &domain.Error{Code: domain.ENOTFOUND, Message: "Saved address not found"}
	ErrLockedAddressFields = &domain.Error{Code: domain.ECONFLICT, Message: "Saved address changes fields that can no longer be edited"}
)

const msgShipmentFailed = "Shipment could not be created. Retry later."
