package handler

import (
	"net/url"
	"strings"

	"github.com/deppfellow/go-users/internal/errs"
)

// Route keys, in API Gateway's "METHOD /path" format.
const (
	RouteCreateUser = "POST /users"
	RouteListUsers  = "GET /users"
	RouteUpdateUser = "PATCH /users/{id}"
	RouteDeleteUser = "DELETE /users/{id}"
)

// ParamID is the path parameter holding the user id.
const ParamID = "id"

// defaultRouteKey is what API Gateway sends for the catch-all route.
const defaultRouteKey = "$default"

// resolveRoute returns the route key of req.
//
// A concrete RouteKey is used as-is. Events from a catch-all integration
// ("$default" or no key at all) are keyed from the HTTP method and raw
// path instead: "/users/<id>" becomes "/users/{id}" and the segment is
// added to the path parameters unless one is already present.
func resolveRoute(req Request) (string, Request) {
	if req.RouteKey != "" && req.RouteKey != defaultRouteKey {
		return req.RouteKey, req
	}

	method := strings.ToUpper(req.RequestContext.HTTP.Method)
	path := req.RawPath
	if path == "" {
		path = req.RequestContext.HTTP.Path
	}

	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) == 2 && segments[0] == "users" && segments[1] != "" {
		id, err := url.PathUnescape(segments[1])
		if err != nil {
			id = segments[1]
		}

		if req.PathParameters[ParamID] == "" {
			params := make(map[string]string, len(req.PathParameters)+1)
			for k, v := range req.PathParameters {
				params[k] = v
			}
			params[ParamID] = id
			req.PathParameters = params
		}
		return method + " /users/{id}", req
	}

	return method + " " + path, req
}

// PathParam returns the named path parameter.
//
// An absent or empty parameter is a malformed request (400), never a
// missing record.
func PathParam(req Request, name string) (string, error) {
	value := req.PathParameters[name]
	if value == "" {
		return "", errs.MissingParamError(name)
	}
	return value, nil
}
