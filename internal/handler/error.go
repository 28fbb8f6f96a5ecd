package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dukerupert/shippor/internal/domain"
	"github.com/dukerupert/shippor/internal/middleware"
)

// codedError is implemented by package-level errors that carry their own
// code without depending on domain, such as shipping.ShippingError.
type codedError interface {
	error
	ErrorCode() string
	ErrorMessage() string
}

// ErrorCodeToHTTPStatus maps domain error codes to HTTP status codes.
func ErrorCodeToHTTPStatus(code string) int {
	switch code {
	case domain.EINVALID:
		return http.StatusBadRequest
	case domain.EPAYMENT:
		return http.StatusPaymentRequired
	case domain.ENOTFOUND:
		return http.StatusNotFound
	case domain.ECONFLICT:
		return http.StatusConflict
	case domain.ETOOLARGE:
		return http.StatusRequestEntityTooLarge
	case domain.EUNPROCESSABLE:
		return http.StatusUnprocessableEntity
	case domain.ERATELIMIT:
		return http.StatusTooManyRequests
	case domain.EUNAVAILABLE:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Classify extracts the code and user-facing message of err.
func Classify(err error) (code, message string) {
	var de *domain.Error
	var ve *domain.ValidationError
	if !errors.As(err, &de) && !errors.As(err, &ve) {
		var ce codedError
		if errors.As(err, &ce) {
			return ce.ErrorCode(), ce.ErrorMessage()
		}
	}
	return domain.ErrorCode(err), domain.ErrorMessage(err)
}

// ErrorResponse writes err to the client. JSON clients get a structured
// body, with per-field messages for validation errors; others get plain
// text. Internal errors are logged with details and shown with a generic
// message.
func ErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	code, message := Classify(err)
	status := ErrorCodeToHTTPStatus(code)

	logger := middleware.GetLogger(r.Context())
	attrs := []any{
		"error", err.Error(),
		"code", code,
		"op", domain.ErrorOp(err),
		"status", status,
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", attrs...)
	} else {
		logger.Info("request rejected", attrs...)
	}

	if !acceptsJSON(r) {
		http.Error(w, message, status)
		return
	}

	body := map[string]any{
		"code":    code,
		"message": message,
	}
	if fields := domain.GetValidationFields(err); len(fields) > 0 {
		body["fields"] = fields
	}
	JSON(w, status, map[string]any{"error": body})
}

// NotFoundResponse writes a generic 404.
func NotFoundResponse(w http.ResponseWriter, r *http.Request) {
	ErrorResponse(w, r, domain.Errorf(domain.ENOTFOUND, "", "Not found"))
}

// BadRequestResponse writes a 400 with message.
func BadRequestResponse(w http.ResponseWriter, r *http.Request, message string) {
	ErrorResponse(w, r, domain.Invalid("", message))
}

// InternalErrorResponse writes a 500 and logs err.
func InternalErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	ErrorResponse(w, r, domain.Internal(err, "", "internal error"))
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// acceptsJSON reports whether the client expects a JSON body.
func acceptsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") || strings.HasSuffix(r.URL.Path, ".json") {
		return true
	}
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	return strings.Contains(r.Header.Get("Content-Type"), "application/json")
}
