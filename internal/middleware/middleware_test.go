package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumrocket/quantumrocket/internal/config"
	"github.com/quantumrocket/quantumrocket/internal/errs"
	"github.com/quantumrocket/quantumrocket/internal/server"
	"github.com/quantumrocket/quantumrocket/internal/session"
)

func newTestServer() *server.Server {
	log := zerolog.Nop()
	return &server.Server{
		Config: &config.Config{
			Auth: config.AuthConfig{
				SessionCookieName: "sid",
				SessionTTL:        time.Hour,
			},
		},
		Logger:   &log,
		Sessions: session.NewMemoryStore(time.Hour),
	}
}

func newContext(cookie *http.Cookie) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func TestRequireSession(t *testing.T) {
	s := newTestServer()
	auth := NewAuthMiddleware(s)

	sid, err := s.Sessions.Create(context.Background(), session.Data{
		Authenticated: true,
		UserEmail:     "a@b.com",
		UserID:        "01HUSER",
	})
	require.NoError(t, err)

	var seen string
	next := func(c echo.Context) error {
		seen = GetUserID(c)
		assert.Equal(t, "a@b.com", GetUserEmail(c))
		assert.Equal(t, sid, GetSessionID(c))
		return nil
	}

	t.Run("valid session", func(t *testing.T) {
		c, _ := newContext(&http.Cookie{Name: "sid", Value: sid})
		require.NoError(t, auth.RequireSession(next)(c))
		assert.Equal(t, "01HUSER", seen)
	})

	t.Run("no cookie", func(t *testing.T) {
		c, _ := newContext(nil)
		err := auth.RequireSession(next)(c)

		var httpErr *errs.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Status)
		require.NotNil(t, httpErr.Action)
		assert.Equal(t, errs.ActionTypeRedirect, httpErr.Action.Type)
	})

	t.Run("unauthenticated session", func(t *testing.T) {
		anon, err := s.Sessions.Create(context.Background(), session.Data{})
		require.NoError(t, err)

		c, _ := newContext(&http.Cookie{Name: "sid", Value: anon})
		assert.Error(t, auth.RequireSession(next)(c))
	})
}

func TestLoadSessionLetsAnonymousThrough(t *testing.T) {
	auth := NewAuthMiddleware(newTestServer())

	called := false
	c, _ := newContext(&http.Cookie{Name: "sid", Value: "unknown"})
	err := auth.LoadSession(func(c echo.Context) error {
		called = true
		assert.Empty(t, GetUserID(c))
		return nil
	})(c)

	require.NoError(t, err)
	assert.True(t, called)
}

func TestSessionCookies(t *testing.T) {
	auth := NewAuthMiddleware(newTestServer())

	c, rec := newContext(nil)
	auth.SetSessionCookie(c, "abc")
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sid", cookies[0].Name)
	assert.Equal(t, "abc", cookies[0].Value)
	assert.Equal(t, 3600, cookies[0].MaxAge)
	assert.True(t, cookies[0].HttpOnly)

	c, rec = newContext(&http.Cookie{Name: "sid", Value: "abc"})
	assert.Equal(t, "abc", auth.SessionIDFromCookie(c))
	auth.ClearSessionCookie(c)
	assert.Equal(t, -1, rec.Result().Cookies()[0].MaxAge)
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusOK, statusOf(nil, http.StatusOK))
	assert.Equal(t, http.StatusForbidden, statusOf(errs.NewForbiddenError("no", false), http.StatusOK))
	assert.Equal(t, http.StatusNotFound, statusOf(echo.ErrNotFound, http.StatusOK))
	assert.Equal(t, http.StatusInternalServerError, statusOf(errors.New("boom"), http.StatusOK))
}

func TestGlobalErrorHandlerHidesInternalErrors(t *testing.T) {
	global := NewGlobalMiddlewares(newTestServer())

	c, rec := newContext(nil)
	global.GlobalErrorHandler(errors.New(`executing "DELETE FROM users": boom`), c)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body errs.HTTPError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotContains(t, body.Message, "DELETE")
}

func TestGetLoggerOutsidePipeline(t *testing.T) {
	c, _ := newContext(nil)
	assert.NotNil(t, GetLogger(c))
	assert.NotNil(t, LoggerFromContext(context.Background()))
}
