package validation

import (
	"github.com/deppfellow/go-users/internal/errs"
	"github.com/deppfellow/go-users/internal/model"
)

// userPayload mirrors model.UserInput while the document is checked field by field.
type userPayload struct {
	Name  string `validate:"required"`
	Email string `validate:"required,email"`

	typeErrors CustomValidationErrors
}

// Validate runs the type checks collected during decoding, then the struct tags.
func (p *userPayload) Validate() error {
	if len(p.typeErrors) > 0 {
		return p.typeErrors
	}
	return validate.Struct(p)
}

// DecodeUserInput applies the user input schema to a parsed JSON document.
//
// Unknown fields are dropped. A document that is not an object, a missing or
// empty field, a non-string field or a malformed email all fail with the same
// 400 "Input validation error."; the returned FieldError slice says which rule
// failed and is only meant for logging.
func DecodeUserInput(document any) (model.UserInput, []FieldError, error) {
	object, ok := document.(map[string]any)
	if !ok {
		return model.UserInput{}, []FieldError{{Field: "", Error: "must be a JSON object"}}, errs.ValidationError()
	}

	payload := &userPayload{}
	payload.Name = stringField(object, "name", &payload.typeErrors)
	payload.Email = stringField(object, "email", &payload.typeErrors)

	if err := payload.Validate(); err != nil {
		return model.UserInput{}, extractValidationError(err), errs.ValidationError()
	}

	return model.UserInput{
		Name:  payload.Name,
		Email: payload.Email,
	}, nil, nil
}

// ParseUserInput is ParseJSONBody followed by DecodeUserInput.
func ParseUserInput(body string, isBase64Encoded bool) (model.UserInput, []FieldError, error) {
	document, err := ParseJSONBody(body, isBase64Encoded)
	if err != nil {
		return model.UserInput{}, nil, err
	}
	return DecodeUserInput(document)
}

// stringField reads key from object. Absent keys yield "" and are left to
// the required rule; present keys of another JSON type are type errors.
func stringField(object map[string]any, key string, typeErrors *CustomValidationErrors) string {
	value, present := object[key]
	if !present || value == nil {
		return ""
	}

	s, ok := value.(string)
	if !ok {
		*typeErrors = append(*typeErrors, CustomValidationError{
			Field:   key,
			Message: "must be a string",
		})
		return ""
	}
	return s
}
