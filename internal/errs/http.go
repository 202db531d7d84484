package errs

import (
	"errors"
	"strings"
)

// HTTPError is the reported failure type.
//
// Only Message is serialized. Status selects the response status code and
// Code is a machine-friendly label (e.g. "BAD_REQUEST") used in logs.
type HTTPError struct {
	Code    string `json:"-"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

// Error returns the client-facing message.
func (e *HTTPError) Error() string {
	return e.Message
}

// Is reports whether target is also an *HTTPError.
//
// It does not compare Code or Status; errors.Is(err, &HTTPError{}) answers
// "is this a reported failure at all".
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)

	return ok
}

// AsHTTPError extracts the reported failure from err's chain.
// ok is false for unreported failures.
func AsHTTPError(err error) (httpErr *HTTPError, ok bool) {
	ok = errors.As(err, &httpErr)
	return httpErr, ok
}

// MakeUpperCaseWithUnderscores converts "Bad Request" into "BAD_REQUEST".
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
