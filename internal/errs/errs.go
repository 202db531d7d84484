// Package errs defines the reported failures of the users API.
//
// A reported failure is an error the caller is allowed to see: it carries
// an HTTP status and a human-readable message that is echoed verbatim in
// the response body as { "message": "..." }.
//
// Anything that is not an *HTTPError is an unreported failure. The handler
// logs it and answers with NewInternalServerError, so internal detail never
// crosses the API boundary.
package errs

// Messages returned to API clients.
const (
	MessageBodyParsing     = "Body parsing error."
	MessageInputValidation = "Input validation error."
	MessageUserNotFound    = "User not found."
	MessageInternalServer  = "Internal server error."
)
