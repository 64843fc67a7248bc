package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/quantumrocket/quantumrocket/internal/middleware"
	"github.com/quantumrocket/quantumrocket/internal/server"
)

// HealthHandler reports liveness and dependency reachability.
type HealthHandler struct {
	Handler
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{Handler: NewHandler(s)}
}

type checkResult struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time"`
	Error        string `json:"error,omitempty"`
}

type HealthResponse struct {
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Environment string                 `json:"environment"`
	Checks      map[string]checkResult `json:"checks"`
}

// check runs ping with the configured health check timeout.
func (h *HealthHandler) check(c echo.Context, name string, ping func(context.Context) error) (checkResult, bool) {
	timeout := 5 * time.Second
	if obs := h.server.Config.Observability; obs != nil && obs.HealthChecks.Timeout > 0 {
		timeout = obs.HealthChecks.Timeout
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
	defer cancel()

	start := time.Now()
	err := ping(ctx)
	elapsed := time.Since(start)

	if err != nil {
		middleware.GetLogger(c).Error().Err(err).Str("check", name).Dur("response_time", elapsed).Msg("health check failed")

		if app := h.server.LoggerService.GetApplication(); app != nil {
			app.RecordCustomEvent("HealthCheckError", map[string]any{
				"check_type":       name,
				"operation":        "health_check",
				"response_time_ms": elapsed.Milliseconds(),
				"error_message":    err.Error(),
			})
		}
		return checkResult{Status: "unhealthy", ResponseTime: elapsed.String(), Error: err.Error()}, false
	}
	return checkResult{Status: "healthy", ResponseTime: elapsed.String()}, true
}

// CheckHealth answers 200 when the database and session store respond and
// 503 otherwise.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	response := HealthResponse{
		Status:      "healthy",
		Timestamp:   time.Now().UTC(),
		Environment: h.server.Config.Primary.Env,
		Checks:      make(map[string]checkResult),
	}

	healthy := true
	var ok bool

	response.Checks["database"], ok = h.check(c, "database", h.server.DB.Ping)
	healthy = healthy && ok

	response.Checks["sessions"], ok = h.check(c, "sessions", h.server.Sessions.Ping)
	healthy = healthy && ok

	if !healthy {
		response.Status = "unhealthy"
		return c.JSON(http.StatusServiceUnavailable, response)
	}
	return c.JSON(http.StatusOK, response)
}
