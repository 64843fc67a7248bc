package middleware

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"

	"github.com/quantumrocket/quantumrocket/internal/logger"
	"github.com/quantumrocket/quantumrocket/internal/server"
)

// Echo context keys.
const (
	UserIDKey    = "user_id"
	UserEmailKey = "user_email"
	SessionIDKey = "session_id"
	LoggerKey    = "logger"
)

type loggerCtxKey struct{}

// ContextEnhancer attaches a request-scoped logger carrying the request id,
// route, client ip and, when tracing is on, the New Relic trace ids.
type ContextEnhancer struct {
	server *server.Server
}

func NewContextEnhancer(s *server.Server) *ContextEnhancer {
	return &ContextEnhancer{server: s}
}

func (ce *ContextEnhancer) EnhanceContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			contextLogger := ce.server.Logger.With().
				Str("request_id", GetRequestID(c)).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Str("ip", c.RealIP()).
				Logger()

			if txn := newrelic.FromContext(c.Request().Context()); txn != nil {
				contextLogger = logger.WithTraceContext(contextLogger, txn)
			}

			setLogger(c, contextLogger)
			return next(c)
		}
	}
}

// setLogger stores l in both the echo context and the request context.
func setLogger(c echo.Context, l zerolog.Logger) {
	c.Set(LoggerKey, &l)
	ctx := context.WithValue(c.Request().Context(), loggerCtxKey{}, &l)
	c.SetRequest(c.Request().WithContext(ctx))
}

func GetUserID(c echo.Context) string {
	if userID, ok := c.Get(UserIDKey).(string); ok {
		return userID
	}
	return ""
}

func GetUserEmail(c echo.Context) string {
	if email, ok := c.Get(UserEmailKey).(string); ok {
		return email
	}
	return ""
}

func GetSessionID(c echo.Context) string {
	if id, ok := c.Get(SessionIDKey).(string); ok {
		return id
	}
	return ""
}

// GetLogger returns the request logger, or a no-op logger outside a
// request pipeline.
func GetLogger(c echo.Context) *zerolog.Logger {
	if l, ok := c.Get(LoggerKey).(*zerolog.Logger); ok {
		return l
	}
	nop := zerolog.Nop()
	return &nop
}

// LoggerFromContext is GetLogger for code that only sees a context.Context.
func LoggerFromContext(ctx context.Context) *zerolog.Logger {
	if l, ok := ctx.Value(loggerCtxKey{}).(*zerolog.Logger); ok {
		return l
	}
	nop := zerolog.Nop()
	return &nop
}
