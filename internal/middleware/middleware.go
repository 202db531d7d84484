// Package middleware stores the Echo middleware of the local HTTP server.
//
// These intercept requests to handle cross-cutting concerns such as
// request ids, New Relic tracing, the request-scoped logger, request
// logging, secure headers and panic recovery.
package middleware
