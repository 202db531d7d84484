package router

import (
	"io"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/deppfellow/go-users/internal/handler"
	"github.com/deppfellow/go-users/internal/middleware"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// defaultRouteKey marks an event of a catch-all integration.
const defaultRouteKey = "$default"

// dispatchEvent adapts an Echo request into an API Gateway HTTP API event,
// runs it through api and writes the resulting envelope back.
func dispatchEvent(api *handler.Handler) echo.HandlerFunc {
	return func(c echo.Context) error {
		req, err := newEvent(c)
		if err != nil {
			return err
		}

		resp, err := api.Handle(c.Request().Context(), req)
		if err != nil {
			return err
		}

		return writeEnvelope(c, resp)
	}
}

// newEvent builds the event a "$default" API Gateway route would deliver for c.
func newEvent(c echo.Context) (handler.Request, error) {
	r := c.Request()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return handler.Request{}, errors.Wrap(err, "read request body")
	}

	headers := make(map[string]string, len(r.Header))
	for name, values := range r.Header {
		headers[strings.ToLower(name)] = strings.Join(values, ",")
	}

	now := time.Now()

	return handler.Request{
		Version:         "2.0",
		RouteKey:        defaultRouteKey,
		RawPath:         r.URL.EscapedPath(),
		RawQueryString:  r.URL.RawQuery,
		Headers:         headers,
		Body:            string(body),
		IsBase64Encoded: false,
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			RouteKey:  defaultRouteKey,
			Stage:     "$default",
			RequestID: middleware.GetRequestID(c),
			Time:      now.UTC().Format("02/Jan/2006:15:04:05 -0700"),
			TimeEpoch: now.UnixMilli(),
			HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{
				Method:    r.Method,
				Path:      r.URL.Path,
				Protocol:  r.Proto,
				SourceIP:  c.RealIP(),
				UserAgent: r.UserAgent(),
			},
		},
	}, nil
}

// writeEnvelope writes resp as the HTTP response.
func writeEnvelope(c echo.Context, resp handler.Response) error {
	contentType := handler.ContentTypeJSON
	for name, value := range resp.Headers {
		if strings.EqualFold(name, echo.HeaderContentType) {
			contentType = value
			continue
		}
		c.Response().Header().Set(name, value)
	}

	return c.Blob(resp.StatusCode, contentType, []byte(resp.Body))
}
