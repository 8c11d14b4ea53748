package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/deppfellow/crud-api/internal/middleware"
	"github.com/deppfellow/crud-api/internal/server"
	"github.com/labstack/echo/v4"
)

// Pinger is a dependency the health check can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	Handler
	database Pinger
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	h := &HealthHandler{Handler: NewHandler(s)}
	if s.DB != nil {
		h.database = s.DB
	}
	return h
}

// recordHealthCheckError reports a failed check to New Relic when enabled.
func (h *HealthHandler) recordHealthCheckError(attributes map[string]interface{}) {
	if app := h.server.LoggerService.GetApplication(); app != nil {
		attributes["operation"] = "health_check"
		app.RecordCustomEvent("HealthCheckError", attributes)
	}
}

// CheckHealth reports service health: 200 when every enabled check
// passes, 503 otherwise.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	checks := make(map[string]interface{})
	response := map[string]interface{}{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"service":     h.server.Config.Observability.ServiceName,
		"environment": h.server.Config.Primary.Env,
		"checks":      checks,
	}

	isHealthy := true
	healthChecks := h.server.Config.Observability.HealthChecks

	if healthChecks.RunsCheck("database") && h.database != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), healthChecks.Timeout)
		defer cancel()

		dbStart := time.Now()

		if err := h.database.Ping(ctx); err != nil {
			isHealthy = false
			checks["database"] = map[string]interface{}{
				"status":        "unhealthy",
				"response_time": time.Since(dbStart).String(),
				"error":         err.Error(),
			}

			logger.Error().
				Err(err).
				Dur("response_time", time.Since(dbStart)).
				Msg("database health check failed")

			h.recordHealthCheckError(map[string]interface{}{
				"check_type":       "database",
				"error_type":       "database_unhealthy",
				"response_time_ms": time.Since(dbStart).Milliseconds(),
				"error_message":    err.Error(),
			})
		} else {
			checks["database"] = map[string]interface{}{
				"status":        "healthy",
				"response_time": time.Since(dbStart).String(),
			}

			logger.Debug().
				Dur("response_time", time.Since(dbStart)).
				Msg("database health check passed")
		}
	}

	if !isHealthy {
		response["status"] = "unhealthy"

		logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("health check failed")

		return c.JSON(http.StatusServiceUnavailable, response)
	}

	if err := c.JSON(http.StatusOK, response); err != nil {
		logger.Error().Err(err).Msg("failed to write JSON response")
		return fmt.Errorf("failed to write JSON response: %w", err)
	}

	return nil
}
