package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/quantumrocket/quantumrocket/internal/middleware"
	"github.com/quantumrocket/quantumrocket/internal/model"
	"github.com/quantumrocket/quantumrocket/internal/server"
	"github.com/quantumrocket/quantumrocket/internal/service"
)

// PageHandler serves the home page and the dashboard.
type PageHandler struct {
	Handler
	services *service.Services
}

func NewPageHandler(s *server.Server, services *service.Services) *PageHandler {
	return &PageHandler{Handler: NewHandler(s), services: services}
}

type IndexResponse struct {
	User *model.User       `json:"user"`
	Help *service.PageHelp `json:"help"`
}

type DashboardResponse struct {
	Widgets []model.Widget    `json:"widgets"`
	Help    *service.PageHelp `json:"help"`
}

// Index works for anonymous visitors and for signed-in users.
func (h *PageHandler) Index(c echo.Context, _ *model.EmptyRequest) (*IndexResponse, error) {
	ctx := c.Request().Context()

	var user *model.User
	if userID := middleware.GetUserID(c); userID != "" {
		u, err := h.services.Profile.Get(ctx, userID)
		if err == nil {
			user = u
		} else {
			middleware.GetLogger(c).Warn().Err(err).Msg("ignoring session of a missing user")
		}
	}

	help, err := h.services.Pages.Help(ctx, service.HelpIndex, user)
	if err != nil {
		return nil, err
	}
	return &IndexResponse{User: user, Help: help}, nil
}

func (h *PageHandler) Dashboard(c echo.Context, _ *model.EmptyRequest) (*DashboardResponse, error) {
	ctx := c.Request().Context()

	user, err := h.services.Profile.Get(ctx, middleware.GetUserID(c))
	if err != nil {
		return nil, err
	}
	widgets, err := h.services.Widgets.List(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	help, err := h.services.Pages.Help(ctx, service.HelpDashboard, user)
	if err != nil {
		return nil, err
	}
	return &DashboardResponse{Widgets: widgets, Help: help}, nil
}

// Help lists every page's help text.
func (h *PageHandler) Help(c echo.Context, _ *model.EmptyRequest) (map[string]string, error) {
	return h.services.Pages.AllHelp(c.Request().Context())
}
