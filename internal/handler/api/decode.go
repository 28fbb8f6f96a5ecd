package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dukerupert/shippor/internal/domain"
)

var validate = newValidate()

var errEmptyBody = &domain.Error{Code: domain.EINVALID, Message: "Request body is empty"}

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names so clients can map errors to inputs.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// DecodeAndValidate reads a JSON body into dst and checks its validate
// tags. Field failures come back as a domain.ValidationError.
func DecodeAndValidate(r *http.Request, op string, dst any) error {
	if err := decodeJSON(r, op, dst); err != nil {
		return err
	}
	return Validate(op, dst)
}

func decodeJSON(r *http.Request, op string, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return domain.Errorf(domain.ETOOLARGE, op, "Request body too large")
		case errors.Is(err, io.EOF):
			return domain.WithOp(errEmptyBody, op)
		default:
			return domain.WrapError(err, domain.EINVALID, op, "Malformed JSON body")
		}
	}
	return nil
}

// Validate checks the validate tags of s.
func Validate(op string, s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return domain.Internal(err, op, "request validation failed")
	}

	var out error
	for _, fe := range fieldErrs {
		out = domain.AddFieldError(out, fieldPath(fe), msgForTag(fe))
	}
	if ve, ok := out.(*domain.ValidationError); ok {
		ve.Op = op
	}
	return out
}

// fieldPath drops the root struct name from the namespace, so
// "checkoutBody.payment" becomes "payment".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func msgForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "len":
		return fmt.Sprintf("must be %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "alpha", "uppercase":
		return "must be an uppercase country code"
	default:
		return fmt.Sprintf("failed on '%s' validation", fe.Tag())
	}
}
