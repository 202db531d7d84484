package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/deppfellow/go-users/internal/middleware"
	"github.com/deppfellow/go-users/internal/repository"
	"github.com/labstack/echo/v4"
)

// healthCheckTimeout bounds each dependency ping.
const healthCheckTimeout = 5 * time.Second

// HealthHandler reports whether the service and its storage are reachable.
type HealthHandler struct {
	env     string
	storage repository.Repository
}

// NewHealthHandler creates a HealthHandler. storage is pinged when it
// implements repository.Pinger.
func NewHealthHandler(env string, storage repository.Repository) *HealthHandler {
	return &HealthHandler{
		env:     env,
		storage: storage,
	}
}

// CheckHealth returns 200 when every check passes and 503 otherwise.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	checks := map[string]any{}
	response := map[string]any{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.env,
		"checks":      checks,
	}

	if pinger, ok := h.storage.(repository.Pinger); ok {
		ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
		defer cancel()

		storageStart := time.Now()
		if err := pinger.Ping(ctx); err != nil {
			checks["storage"] = map[string]any{
				"status":        "unhealthy",
				"response_time": time.Since(storageStart).String(),
				"error":         err.Error(),
			}
			response["status"] = "unhealthy"

			logger.Error().
				Err(err).
				Dur("response_time", time.Since(storageStart)).
				Msg("storage health check failed")
		} else {
			checks["storage"] = map[string]any{
				"status":        "healthy",
				"response_time": time.Since(storageStart).String(),
			}
		}
	}

	if response["status"] != "healthy" {
		logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("health check failed")
		return c.JSON(http.StatusServiceUnavailable, response)
	}

	logger.Debug().
		Dur("total_duration", time.Since(start)).
		Msg("health check passed")

	return c.JSON(http.StatusOK, response)
}
