// Package validation turns raw request bodies into validated input.
//
// It parses the body into a generic JSON document first, then applies the
// user input schema with the `validator` library. Callers get one opaque
// reported failure per category; the field-level detail collected here is
// only meant for logs.
package validation

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/deppfellow/go-users/internal/errs"
	"github.com/go-playground/validator/v10"
)

// Validatable is implemented by payload types that know how to validate themselves.
type Validatable interface {
	Validate() error
}

// FieldError describes one failed rule, e.g. { "field": "email", "error": "must be a valid email address" }.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// CustomValidationError represents a field issue that validator tags cannot express.
type CustomValidationError struct {
	Field   string
	Message string
}

// CustomValidationErrors is a slice of custom validation errors that satisfies error.
type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	return "Validation failed"
}

// validate is safe for concurrent use and caches struct metadata, so one
// instance serves every request.
var validate = validator.New(validator.WithRequiredStructEnabled())

// ParseJSONBody parses a raw request body into a generic JSON document.
//
// An empty body is never valid. When isBase64Encoded is set the body is
// decoded first, as API Gateway does for binary payloads.
func ParseJSONBody(body string, isBase64Encoded bool) (any, error) {
	if body == "" {
		return nil, errs.BodyParsingError()
	}

	raw := []byte(body)
	if isBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return nil, errs.BodyParsingError()
		}
		raw = decoded
	}

	var document any
	if err := json.Unmarshal(raw, &document); err != nil {
		return nil, errs.BodyParsingError()
	}

	return document, nil
}

func extractValidationError(err error) []FieldError {
	var fieldErrors []FieldError

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		var customValidationErrors CustomValidationErrors
		customValidationErrors, ok = err.(CustomValidationErrors)
		if !ok {
			return []FieldError{{Field: "", Error: err.Error()}}
		}
		for _, err := range customValidationErrors {
			fieldErrors = append(fieldErrors, FieldError{
				Field: err.Field,
				Error: err.Message,
			})
		}
	}

	for _, err := range validationErrors {
		field := strings.ToLower(err.Field())
		var msg string

		switch err.Tag() {
		case "required":
			msg = "is required"

		case "min":
			if err.Type().Kind() == reflect.String {
				msg = fmt.Sprintf("must be at least %s characters", err.Param())
			} else {
				msg = fmt.Sprintf("must be at least %s", err.Param())
			}

		case "max":
			if err.Type().Kind() == reflect.String {
				msg = fmt.Sprintf("must not exceed %s characters", err.Param())
			} else {
				msg = fmt.Sprintf("must not exceed %s", err.Param())
			}

		case "email":
			msg = "must be a valid email address"

		default:
			if err.Param() != "" {
				msg = fmt.Sprintf("%s: %s:%s", field, err.Tag(), err.Param())
			} else {
				msg = fmt.Sprintf("%s: %s", field, err.Tag())
			}
		}

		fieldErrors = append(fieldErrors, FieldError{
			Field: field,
			Error: msg,
		})
	}

	return fieldErrors
}
