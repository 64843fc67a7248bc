package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/quantumrocket/quantumrocket/internal/errs"
	"github.com/quantumrocket/quantumrocket/internal/server"
)

type RateLimitMiddleware struct {
	server *server.Server
}

func NewRateLimitMiddleware(s *server.Server) *RateLimitMiddleware {
	return &RateLimitMiddleware{server: s}
}

// RecordRateLimitHit reports a throttled request to New Relic.
func (r *RateLimitMiddleware) RecordRateLimitHit(endpoint, identifier string) {
	if app := r.server.LoggerService.GetApplication(); app != nil {
		app.RecordCustomEvent("RateLimitHit", map[string]any{
			"endpoint":   endpoint,
			"identifier": identifier,
		})
	}
}

// SignIn throttles credential checks per client IP using the auth rate
// and burst from config.
func (r *RateLimitMiddleware) SignIn() echo.MiddlewareFunc {
	cfg := r.server.Config.Auth
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(cfg.SignInRate),
		Burst:     cfg.SignInBurst,
		ExpiresIn: 3 * time.Minute,
	})

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return errs.NewForbiddenError("Could not identify the client", false)
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			r.RecordRateLimitHit(c.Path(), identifier)
			GetLogger(c).Warn().Str("identifier", identifier).Msg("sign in rate limit exceeded")
			return errs.NewTooManyRequestsError("Too many sign in attempts. Please slow down.")
		},
	})
}
