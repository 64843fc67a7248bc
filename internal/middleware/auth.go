package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/quantumrocket/quantumrocket/internal/errs"
	"github.com/quantumrocket/quantumrocket/internal/server"
	"github.com/quantumrocket/quantumrocket/internal/session"
)

// AuthMiddleware resolves the session cookie into the signed-in user.
type AuthMiddleware struct {
	server *server.Server
}

func NewAuthMiddleware(s *server.Server) *AuthMiddleware {
	return &AuthMiddleware{server: s}
}

func (auth *AuthMiddleware) cookieName() string {
	return auth.server.Config.Auth.SessionCookieName
}

// load reads the session named by the request cookie. It returns nil for
// a missing cookie, an unknown id or an unauthenticated session.
func (auth *AuthMiddleware) load(c echo.Context) (string, *session.Data, error) {
	cookie, err := c.Cookie(auth.cookieName())
	if err != nil || cookie.Value == "" {
		return "", nil, nil
	}

	data, err := auth.server.Sessions.Get(c.Request().Context(), cookie.Value)
	if err != nil {
		return "", nil, err
	}
	if data == nil || !data.Authenticated {
		return cookie.Value, nil, nil
	}
	return cookie.Value, data, nil
}

func (auth *AuthMiddleware) attach(c echo.Context, sessionID string, data *session.Data) {
	c.Set(SessionIDKey, sessionID)
	c.Set(UserIDKey, data.UserID)
	c.Set(UserEmailKey, data.UserEmail)
	setLogger(c, GetLogger(c).With().Str("user_id", data.UserID).Logger())
}

// LoadSession attaches the user when a valid session exists and lets
// anonymous requests through.
func (auth *AuthMiddleware) LoadSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		sessionID, data, err := auth.load(c)
		if err != nil {
			return err
		}
		if data != nil {
			auth.attach(c, sessionID, data)
		}
		return next(c)
	}
}

// RequireSession rejects requests without an authenticated session and
// slides the session's expiry on every authenticated request.
func (auth *AuthMiddleware) RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		sessionID, data, err := auth.load(c)
		if err != nil {
			return err
		}
		if data == nil {
			GetLogger(c).Debug().
				Str("function", "RequireSession").
				Dur("duration", time.Since(start)).
				Msg("request without an authenticated session")

			return errs.NewUnauthorizedError("Please sign in. If you are not already a user, please sign up.", false).
				WithAction(&errs.Action{Type: errs.ActionTypeRedirect, Message: "Sign in", Value: "/"})
		}

		if err := auth.server.Sessions.Refresh(c.Request().Context(), sessionID); err != nil {
			GetLogger(c).Warn().Err(err).Msg("failed to refresh session")
		}

		auth.attach(c, sessionID, data)
		return next(c)
	}
}

// SetSessionCookie hands the session id to the browser.
func (auth *AuthMiddleware) SetSessionCookie(c echo.Context, sessionID string) {
	c.SetCookie(&http.Cookie{
		Name:     auth.cookieName(),
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(auth.server.Config.Auth.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   auth.server.Config.Auth.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func (auth *AuthMiddleware) ClearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     auth.cookieName(),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   auth.server.Config.Auth.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// SessionIDFromCookie returns the raw cookie value, valid or not.
func (auth *AuthMiddleware) SessionIDFromCookie(c echo.Context) string {
	cookie, err := c.Cookie(auth.cookieName())
	if err != nil {
		return ""
	}
	return cookie.Value
}
