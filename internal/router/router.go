// Package router initializes the local HTTP router (using Echo).
//
// It registers the middlewares and maps every request onto the same event
// pipeline the Lambda entrypoint uses, so both share one behavior.
package router

import (
	"github.com/deppfellow/go-users/internal/handler"
	"github.com/deppfellow/go-users/internal/middleware"
	"github.com/deppfellow/go-users/internal/server"
	"github.com/labstack/echo/v4"
)

// NewRouter builds the Echo instance of the local server.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true

	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Use(
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
		middlewares.Global.Secure(),
	)

	registerSystemRoutes(router, h)
	registerUserRoutes(router, h.API)

	return router
}

// registerUserRoutes sends every other request to the event pipeline.
//
// Routing itself stays in the pipeline: it derives the route key from the
// method and path exactly as for a "$default" API Gateway integration, and
// answers unmatched requests with its own not-found envelope.
func registerUserRoutes(r *echo.Echo, api *handler.Handler) {
	r.Any("/*", dispatchEvent(api))
}
