// Package handler is the entry point of every request.
//
// It maps an API Gateway HTTP API (v2) event onto one of the four user
// routes, extracts path parameters, validates bodies through the
// validation package, calls the service layer and translates the outcome
// into the response envelope:
//
//	{ statusCode, headers: { "Content-Type": "application/json" }, body }
//
// The same Handler serves the Lambda runtime and, through the router
// package, the local HTTP server.
package handler
