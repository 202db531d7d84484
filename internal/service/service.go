// Package service contains the business logic.
//
// It sits between the handler and repository layers. It receives validated
// input from the handler, performs exactly one repository operation per
// request (list: a sequential run of paged scans) and turns the
// repository's not-found condition into a reported failure.
package service
