package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/quantumrocket/quantumrocket/internal/middleware"
	"github.com/quantumrocket/quantumrocket/internal/model"
	"github.com/quantumrocket/quantumrocket/internal/server"
	"github.com/quantumrocket/quantumrocket/internal/service"
)

type ProfileHandler struct {
	Handler
	services *service.Services
}

func NewProfileHandler(s *server.Server, services *service.Services) *ProfileHandler {
	return &ProfileHandler{Handler: NewHandler(s), services: services}
}

type ProfileResponse struct {
	User    *model.User       `json:"user"`
	Help    *service.PageHelp `json:"help,omitempty"`
	Message string            `json:"message,omitempty"`
}

func (h *ProfileHandler) MyProfile(c echo.Context, _ *model.EmptyRequest) (*ProfileResponse, error) {
	ctx := c.Request().Context()

	user, err := h.services.Profile.Get(ctx, middleware.GetUserID(c))
	if err != nil {
		return nil, err
	}
	help, err := h.services.Pages.Help(ctx, service.HelpMyProfile, user)
	if err != nil {
		return nil, err
	}
	return &ProfileResponse{User: user, Help: help}, nil
}

func (h *ProfileHandler) UpdateProfile(c echo.Context, req *model.UpdateProfileRequest) (*ProfileResponse, error) {
	user, err := h.services.Profile.Update(c.Request().Context(), middleware.GetUserID(c), req)
	if err != nil {
		return nil, err
	}
	return &ProfileResponse{User: user, Message: "Your profile changes were successful."}, nil
}
