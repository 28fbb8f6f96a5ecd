package shipping

// These constants mirror domain error codes to avoid circular imports.
// The handler layer maps these to HTTP status codes.
const (
	codeInvalid       = "invalid"
	codeNotFound      = "not_found"
	codeUnavailable   = "unavailable"
	codeUnprocessable = "unprocessable"
)

// ShippingError represents a shipping-specific error with a code and message.
type ShippingError struct {
	Code    string
	Message string
}

func (e *ShippingError) Error() string {
	return e.Message
}

// ErrorCode returns the error code for HTTP status mapping.
func (e *ShippingError) ErrorCode() string {
	return e.Code
}

// ErrorMessage returns the user-facing message.
func (e *ShippingError) ErrorMessage() string {
	return e.Message
}

func newShippingError(code, message string) *ShippingError {
	return &ShippingError{Code: code, Message: message}
}

var (
	// ErrNoParcels is returned when a draft without parcels is booked.
	ErrNoParcels = newShippingError(codeInvalid, "At least one parcel is required")

	// ErrNoMethods is returned when the carrier offers nothing for a draft.
	ErrNoMethods = newShippingError(codeUnavailable, "No shipping methods available")

	// ErrUnknownMethod is returned when a draft names a method the catalog lacks.
	ErrUnknownMethod = newShippingError(codeNotFound, "Shipping method not found")

	// ErrDangerousGoodsRejected is returned when the carrier refuses a
	// dangerous goods booking.
	ErrDangerousGoodsRejected = newShippingError(codeUnprocessable, "Dangerous goods shipment failed. Review details and retry.")
)
