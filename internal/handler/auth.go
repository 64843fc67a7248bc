package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/quantumrocket/quantumrocket/internal/middleware"
	"github.com/quantumrocket/quantumrocket/internal/model"
	"github.com/quantumrocket/quantumrocket/internal/server"
	"github.com/quantumrocket/quantumrocket/internal/service"
)

type AuthHandler struct {
	Handler
	auth    *service.AuthService
	cookies *middleware.AuthMiddleware
}

func NewAuthHandler(s *server.Server, services *service.Services, cookies *middleware.AuthMiddleware) *AuthHandler {
	return &AuthHandler{
		Handler: NewHandler(s),
		auth:    services.Auth,
		cookies: cookies,
	}
}

type AuthResponse struct {
	User     *model.User `json:"user"`
	Redirect string      `json:"redirect"`
	Message  string      `json:"message"`
}

func (h *AuthHandler) SignIn(c echo.Context, req *model.SignInRequest) (*AuthResponse, error) {
	user, sessionID, err := h.auth.SignIn(c.Request().Context(), req)
	if err != nil {
		return nil, err
	}
	h.cookies.SetSessionCookie(c, sessionID)

	name := user.FullName
	if name == "" {
		name = user.DisplayEmail
	}
	return &AuthResponse{User: user, Redirect: "/dashboard", Message: "Welcome back " + name + "!"}, nil
}

func (h *AuthHandler) SignUp(c echo.Context, req *model.SignUpRequest) (*AuthResponse, error) {
	user, sessionID, err := h.auth.SignUp(c.Request().Context(), req)
	if err != nil {
		return nil, err
	}
	h.cookies.SetSessionCookie(c, sessionID)

	return &AuthResponse{User: user, Redirect: "/dashboard", Message: "Welcome to QuantumRocket!"}, nil
}

// SignOut always clears the cookie, even when the session is already gone.
func (h *AuthHandler) SignOut(c echo.Context, _ *model.EmptyRequest) error {
	sessionID := h.cookies.SessionIDFromCookie(c)
	h.cookies.ClearSessionCookie(c)
	return h.auth.SignOut(c.Request().Context(), sessionID)
}
