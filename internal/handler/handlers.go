package handler

import (
	"github.com/quantumrocket/quantumrocket/internal/middleware"
	"github.com/quantumrocket/quantumrocket/internal/server"
	"github.com/quantumrocket/quantumrocket/internal/service"
)

// Handlers groups every HTTP handler for the router.
type Handlers struct {
	Health  *HealthHandler
	Auth    *AuthHandler
	Pages   *PageHandler
	Profile *ProfileHandler
	Widgets *WidgetHandler
}

func NewHandlers(s *server.Server, services *service.Services, auth *middleware.AuthMiddleware) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(s),
		Auth:    NewAuthHandler(s, services, auth),
		Pages:   NewPageHandler(s, services),
		Profile: NewProfileHandler(s, services),
		Widgets: NewWidgetHandler(s, services),
	}
}
