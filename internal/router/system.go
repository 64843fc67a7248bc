package router

import (
	"github.com/labstack/echo/v4"

	"github.com/quantumrocket/quantumrocket/internal/handler"
)

// registerSystemRoutes registers endpoints outside the application itself.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/status", h.Health.CheckHealth)
}
