package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/quantumrocket/quantumrocket/internal/middleware"
	"github.com/quantumrocket/quantumrocket/internal/model"
	"github.com/quantumrocket/quantumrocket/internal/server"
	"github.com/quantumrocket/quantumrocket/internal/service"
)

type WidgetHandler struct {
	Handler
	services *service.Services
}

func NewWidgetHandler(s *server.Server, services *service.Services) *WidgetHandler {
	return &WidgetHandler{Handler: NewHandler(s), services: services}
}

type WidgetsResponse struct {
	Widgets []model.Widget    `json:"widgets"`
	Help    *service.PageHelp `json:"help"`
}

func (h *WidgetHandler) currentUser(c echo.Context) (*model.User, error) {
	return h.services.Profile.Get(c.Request().Context(), middleware.GetUserID(c))
}

func (h *WidgetHandler) MyWidgets(c echo.Context, _ *model.EmptyRequest) (*WidgetsResponse, error) {
	ctx := c.Request().Context()

	user, err := h.currentUser(c)
	if err != nil {
		return nil, err
	}
	widgets, err := h.services.Widgets.List(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	help, err := h.services.Pages.Help(ctx, service.HelpMyWidgets, user)
	if err != nil {
		return nil, err
	}
	return &WidgetsResponse{Widgets: widgets, Help: help}, nil
}

func (h *WidgetHandler) Create(c echo.Context, req *model.CreateWidgetRequest) (*model.Widget, error) {
	user, err := h.currentUser(c)
	if err != nil {
		return nil, err
	}
	return h.services.Widgets.Create(c.Request().Context(), user, req)
}

func (h *WidgetHandler) Get(c echo.Context, req *model.WidgetIDRequest) (*model.Widget, error) {
	return h.services.Widgets.Get(c.Request().Context(), middleware.GetUserID(c), req.ID)
}

func (h *WidgetHandler) Update(c echo.Context, req *model.UpdateWidgetRequest) (*model.Widget, error) {
	user, err := h.currentUser(c)
	if err != nil {
		return nil, err
	}
	return h.services.Widgets.Update(c.Request().Context(), user, req)
}

func (h *WidgetHandler) Delete(c echo.Context, req *model.WidgetIDRequest) error {
	return h.services.Widgets.Delete(c.Request().Context(), middleware.GetUserID(c), req.ID)
}
