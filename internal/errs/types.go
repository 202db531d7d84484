package errs

import (
	"fmt"
	"net/http"
)

// NewBadRequestError creates a 400 Bad Request HTTPError.
//
// It covers every "the request itself is malformed" case: an unparsable
// body, a body that fails the schema, a missing path parameter.
func NewBadRequestError(message string) *HTTPError {
	return &HTTPError{
		// http.StatusText(400) => "Bad Request" => "BAD_REQUEST"
		Code:    MakeUpperCaseWithUnderscores(http.StatusText(http.StatusBadRequest)),
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// NewNotFoundError creates a 404 Not Found HTTPError.
func NewNotFoundError(message string) *HTTPError {
	return &HTTPError{
		Code:    MakeUpperCaseWithUnderscores(http.StatusText(http.StatusNotFound)),
		Message: message,
		Status:  http.StatusNotFound,
	}
}

// NewInternalServerError creates the generic 500 HTTPError.
//
// The message is fixed: the real cause is logged by the caller and never
// copied into the response.
func NewInternalServerError() *HTTPError {
	return &HTTPError{
		Code:    MakeUpperCaseWithUnderscores(http.StatusText(http.StatusInternalServerError)),
		Message: MessageInternalServer,
		Status:  http.StatusInternalServerError,
	}
}

// BodyParsingError is returned when the request body is absent or is not a JSON document.
func BodyParsingError() *HTTPError {
	return NewBadRequestError(MessageBodyParsing)
}

// ValidationError is returned when the parsed body does not satisfy the input schema.
//
// Field-level detail is deliberately not carried; callers log it instead.
func ValidationError() *HTTPError {
	return NewBadRequestError(MessageInputValidation)
}

// MissingParamError is returned when a required path parameter is absent or empty.
//
//	errs.MissingParamError("id") // 400 "Param id not found."
func MissingParamError(name string) *HTTPError {
	return NewBadRequestError(fmt.Sprintf("Param %s not found.", name))
}

// UserNotFoundError is returned when an update or delete targets an absent record.
func UserNotFoundError() *HTTPError {
	return NewNotFoundError(MessageUserNotFound)
}
