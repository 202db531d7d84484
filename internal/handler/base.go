package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/deppfellow/go-users/internal/errs"
	"github.com/deppfellow/go-users/internal/logger"
	"github.com/google/uuid"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
)

// Request and Response are the API Gateway HTTP API (payload v2) event types.
type (
	Request  = events.APIGatewayV2HTTPRequest
	Response = events.APIGatewayV2HTTPResponse
)

// ContentTypeJSON is the only content type this API produces.
const ContentTypeJSON = "application/json"

// RouteFunc executes one route and returns its envelope or a failure.
type RouteFunc func(ctx context.Context, req Request) (Response, error)

// HandlerFunc is a typed route that produces a JSON body.
type HandlerFunc[Res any] func(ctx context.Context, req Request) (Res, error)

// HandlerFuncNoContent is a typed route whose success body is always {}.
type HandlerFuncNoContent func(ctx context.Context, req Request) error

// Handle adapts a typed route into a RouteFunc answering status on success.
func Handle[Res any](handler HandlerFunc[Res], status int) RouteFunc {
	return func(ctx context.Context, req Request) (Response, error) {
		result, err := handler(ctx, req)
		if err != nil {
			return Response{}, err
		}
		return JSONResponse(status, result)
	}
}

// HandleNoContent adapts a route without a result; the body is {}.
func HandleNoContent(handler HandlerFuncNoContent, status int) RouteFunc {
	return func(ctx context.Context, req Request) (Response, error) {
		if err := handler(ctx, req); err != nil {
			return Response{}, err
		}
		return JSONResponse(status, nil)
	}
}

// JSONResponse builds the response envelope. A nil value encodes as {}.
func JSONResponse(status int, value any) (Response, error) {
	body := []byte("{}")
	if value != nil {
		encoded, err := json.Marshal(value)
		if err != nil {
			return Response{}, fmt.Errorf("encode response body: %w", err)
		}
		body = encoded
	}

	return Response{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type": ContentTypeJSON,
		},
		Body: string(body),
	}, nil
}

// mustJSONResponse is JSONResponse for values that always encode.
func mustJSONResponse(status int, value any) Response {
	resp, err := JSONResponse(status, value)
	if err != nil {
		panic(err)
	}
	return resp
}

// Handler dispatches events to routes through a static route table.
type Handler struct {
	logger *zerolog.Logger
	routes map[string]RouteFunc
	nrApp  *newrelic.Application
}

// Option customizes a Handler.
type Option func(*Handler)

// WithNewRelic traces every event as a New Relic transaction named after
// its route key. A nil app disables tracing.
func WithNewRelic(app *newrelic.Application) Option {
	return func(h *Handler) {
		h.nrApp = app
	}
}

// NewHandler creates a Handler over the given route table.
func NewHandler(logger *zerolog.Logger, routes map[string]RouteFunc, opts ...Option) *Handler {
	h := &Handler{
		logger: logger,
		routes: routes,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle is the unified request pipeline:
//
//	Routing -> (Validating) -> Executing -> Responding
//
// Any failure short-circuits to Responding. The returned error is always
// nil: every outcome, including a panic, is expressed as an envelope, so
// the Lambda runtime never reports an invocation error for a request.
func (h *Handler) Handle(ctx context.Context, req Request) (Response, error) {
	start := time.Now()

	routeKey, req := resolveRoute(req)

	requestID := req.RequestContext.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}

	// The local server's nrecho middleware may already run a transaction.
	txn := newrelic.FromContext(ctx)
	if txn == nil && h.nrApp != nil {
		txn = h.nrApp.StartTransaction(routeKey)
		defer txn.End()
		ctx = newrelic.NewContext(ctx, txn)
	}
	if txn != nil {
		txn.SetName(routeKey)
		txn.AddAttribute("request.id", requestID)
	}

	reqLogger := logger.WithTraceContext(h.logger.With().
		Str("request_id", requestID).
		Str("route_key", routeKey).
		Logger(), txn)
	ctx = logger.WithContext(ctx, &reqLogger)

	var resp Response
	route, ok := h.routes[routeKey]
	if ok {
		resp = h.execute(ctx, route, req)
	} else {
		// Unmatched method+path, including known paths with another method.
		resp = mustJSONResponse(http.StatusNotFound, nil)
	}

	var e *zerolog.Event
	switch {
	case resp.StatusCode >= 500:
		e = reqLogger.Error()
	case resp.StatusCode >= 400:
		e = reqLogger.Warn()
	default:
		e = reqLogger.Info()
	}
	e.
		Int("status", resp.StatusCode).
		Bool("matched", ok).
		Dur("duration", time.Since(start)).
		Msg("API")

	if txn != nil {
		txn.AddAttribute("http.status_code", resp.StatusCode)
	}

	return resp, nil
}

// execute runs one route, recovering panics into unreported failures.
func (h *Handler) execute(ctx context.Context, route RouteFunc, req Request) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			resp = h.translateError(ctx, fmt.Errorf("panic: %v", r))
		}
	}()

	resp, err := route(ctx, req)
	if err != nil {
		return h.translateError(ctx, err)
	}
	return resp
}

// translateError is the final error funnel.
//
// Reported failures keep their status and message. Everything else is
// logged with its full detail, noticed on the New Relic transaction and
// answered with the generic 500.
func (h *Handler) translateError(ctx context.Context, err error) Response {
	if httpErr, ok := errs.AsHTTPError(err); ok {
		logger.FromContext(ctx).Debug().
			Str("error_code", httpErr.Code).
			Int("status", httpErr.Status).
			Msg(httpErr.Message)

		return mustJSONResponse(httpErr.Status, httpErr)
	}

	internal := errs.NewInternalServerError()

	if txn := newrelic.FromContext(ctx); txn != nil {
		txn.NoticeError(nrpkgerrors.Wrap(err))
	}

	logger.FromContext(ctx).Error().Stack().
		Err(err).
		Int("status", internal.Status).
		Str("error_code", internal.Code).
		Msg("unhandled error")

	return mustJSONResponse(internal.Status, internal)
}
