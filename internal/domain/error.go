package domain

import (
	"errors"
	"fmt"
)

// Application error codes.
// These map to HTTP status codes and determine user-facing messages.
const (
	ECONFLICT      = "conflict"         // 409 - State conflict (cart already paid, etc.)
	EINTERNAL      = "internal"         // 500 - Internal server error (hide details)
	EINVALID       = "invalid"          // 400 - Bad input
	ENOTFOUND      = "not_found"        // 404 - Resource not found
	EUNPROCESSABLE = "unprocessable"    // 422 - Input is well formed but fails a rule
	EPAYMENT       = "payment_required" // 402 - Payment failed or required
	ETOOLARGE      = "too_large"        // 413 - Request body too large
	ERATELIMIT     = "rate_limited"     // 429 - Too many requests
	EUNAVAILABLE   = "unavailable"      // 503 - Upstream carrier or gateway down
)

// Error represents an application error with a code and message.
// It implements the error interface and supports error wrapping.
type Error struct {
	// Code is a machine-readable error code (e.g., EINVALID, ENOTFOUND).
	Code string

	// Message is a human-readable error message safe to show to users.
	Message string

	// Op is the operation where the error occurred (e.g., "cart.submit").
	// Used for debugging and logging, not shown to users.
	Op string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		if e.Op != "" {
			return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
		}
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

// Unwrap implements error unwrapping for errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by code and message so the sentinel values
// below can be compared after an Op has been attached.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// ErrorCode extracts the error code from an error.
// Returns EINTERNAL for non-domain errors and "" for nil.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return EINVALID
	}

	return EINTERNAL
}

const genericMessage = "An internal error occurred. Please try again later."

// ErrorMessage extracts a user-facing message from an error.
// Internal errors get a generic message.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var e *Error
	if errors.As(err, &e) {
		if e.Code == EINTERNAL {
			return genericMessage
		}
		return e.Message
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return "Please correct the highlighted fields."
	}

	return genericMessage
}

// ErrorOp extracts the operation from an error (for logging).
func ErrorOp(err error) string {
	if err == nil {
		return ""
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Op
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Op
	}

	return ""
}

// Errorf creates a new domain error with formatted message.
func Errorf(code, op, format string, args ...any) error {
	return &Error{
		Code:    code,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
	}
}

// WrapError wraps err with a code and operation. Returns nil if err is nil.
func WrapError(err error, code, op, message string) error {
	if err == nil {
		return nil
	}

	return &Error{
		Code:    code,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// WithOp returns a copy of a sentinel error tagged with an operation.
func WithOp(sentinel *Error, op string) error {
	e := *sentinel
	e.Op = op
	return &e
}

// IsCode returns true if err has the given error code.
func IsCode(err error, code string) bool {
	return ErrorCode(err) == code
}

// ValidationError carries field-level failures for a form step.
type ValidationError struct {
	// Fields maps field paths to error messages.
	Fields map[string]string

	// Op is the operation where validation failed.
	Op string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Fields) == 1 {
		for field, msg := range e.Fields {
			if e.Op != "" {
				return fmt.Sprintf("%s: %s: %s", e.Op, field, msg)
			}
			return fmt.Sprintf("%s: %s", field, msg)
		}
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: validation failed for %d fields", e.Op, len(e.Fields))
	}
	return fmt.Sprintf("validation failed for %d fields", len(e.Fields))
}

// NewValidationError creates a validation error for a single field.
func NewValidationError(op, field, message string) error {
	return &ValidationError{
		Op:     op,
		Fields: map[string]string{field: message},
	}
}

// AddFieldError adds a field error to an existing ValidationError, or starts
// a new one when err is nil or of another type.
func AddFieldError(err error, field, message string) error {
	var ve *ValidationError
	if err != nil && errors.As(err, &ve) {
		ve.Fields[field] = message
		return ve
	}

	return &ValidationError{
		Fields: map[string]string{field: message},
	}
}

// IsValidationError returns true if err is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// GetValidationFields extracts field errors from a ValidationError.
// Returns nil if err is not a ValidationError.
func GetValidationFields(err error) map[string]string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}

// Booking flow errors. Messages are shown to the user as-is.
var (
	ErrCartEmpty = &Error{
		Code:    EINVALID,
		Message: "Cart is empty",
	}

	ErrPaymentMethodRequired = &Error{
		Code:    EINVALID,
		Message: "Select a payment method",
	}

	ErrTermsNotAccepted = &Error{
		Code:    EINVALID,
		Message: "You must agree to terms before payment",
	}

	ErrInvoiceGatewayFailed = &Error{
		Code:    EPAYMENT,
		Message: "Invoice gateway stub returned failed-payment. Use card or wallet and retry.",
	}

	ErrAllShipmentsFailed = &Error{
		Code:    EUNPROCESSABLE,
		Message: "All shipments failed. Fix failed items and retry.",
	}

	ErrDangerousGoodsFailed = &Error{
		Code:    EUNPROCESSABLE,
		Message: "Dangerous goods shipment failed. Review details and retry.",
	}

	ErrQuickShipmentIncomplete = &Error{
		Code:    EINVALID,
		Message: "Quick shipment requires sender, recipient, and method",
	}

	ErrSessionNotFound = &Error{
		Code:    ENOTFOUND,
		Message: "Session not found",
	}

	ErrCartItemNotFound = &Error{
		Code:    ENOTFOUND,
		Message: "Cart item not found",
	}

	ErrMethodNotFound = &Error{
		Code:    ENOTFOUND,
		Message: "Shipping method not found",
	}
)

// NotFound creates a not found error for a resource.
func NotFound(op, resource, identifier string) error {
	return &Error{
		Code:    ENOTFOUND,
		Op:      op,
		Message: fmt.Sprintf("%s not found: %s", resource, identifier),
	}
}

// Invalid creates a single-issue input error.
func Invalid(op, message string) error {
	return &Error{
		Code:    EINVALID,
		Op:      op,
		Message: message,
	}
}

// Conflict creates a conflict error.
func Conflict(op, message string) error {
	return &Error{
		Code:    ECONFLICT,
		Op:      op,
		Message: message,
	}
}

// Internal creates an internal error. The message shown to users will be
// generic; the underlying error is for logging.
func Internal(err error, op, message string) error {
	return &Error{
		Code:    EINTERNAL,
		Op:      op,
		Message: message,
		Err:     err,
	}
}
