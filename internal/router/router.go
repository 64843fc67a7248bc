// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the route groups, mapping
// specific paths to their corresponding handlers.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quantumrocket/quantumrocket/internal/handler"
	"github.com/quantumrocket/quantumrocket/internal/middleware"
	"github.com/quantumrocket/quantumrocket/internal/model"
	"github.com/quantumrocket/quantumrocket/internal/server"
)

func NewRouter(s *server.Server, h *handler.Handlers, mw *middleware.Middlewares) *echo.Echo {
	router := echo.New()
	router.HideBanner = true
	router.HTTPErrorHandler = mw.Global.GlobalErrorHandler

	// Order matters: the request id must exist before tracing and the
	// context logger read it, and the request logger needs that logger.
	router.Use(
		middleware.RequestID(),
		mw.Tracing.NewRelicMiddleware(),
		mw.Tracing.EnhanceTracing(),
		mw.ContextEnhancer.EnhanceContext(),
		mw.Global.RequestLogger(),
		mw.Global.Recover(),
		mw.Global.Secure(),
		mw.Global.CORS(),
	)

	registerSystemRoutes(router, h)
	registerAppRoutes(router, h, mw)

	return router
}

func registerAppRoutes(r *echo.Echo, h *handler.Handlers, mw *middleware.Middlewares) {
	base := h.Pages.Handler
	optional := mw.Auth.LoadSession
	required := mw.Auth.RequireSession

	r.GET("/", handler.Handle(base, h.Pages.Index, http.StatusOK, newReq[model.EmptyRequest]), optional)
	r.GET("/help", handler.Handle(base, h.Pages.Help, http.StatusOK, newReq[model.EmptyRequest]))

	r.POST("/sign_in",
		handler.Handle(base, h.Auth.SignIn, http.StatusOK, newReq[model.SignInRequest]),
		mw.RateLimit.SignIn(),
	)
	r.POST("/sign_up", handler.Handle(base, h.Auth.SignUp, http.StatusCreated, newReq[model.SignUpRequest]))
	r.POST("/sign_out", handler.HandleNoContent(base, h.Auth.SignOut, http.StatusNoContent, newReq[model.EmptyRequest]))

	r.GET("/dashboard", handler.Handle(base, h.Pages.Dashboard, http.StatusOK, newReq[model.EmptyRequest]), required)
	r.GET("/my_profile", handler.Handle(base, h.Profile.MyProfile, http.StatusOK, newReq[model.EmptyRequest]), required)
	r.POST("/update_profile", handler.Handle(base, h.Profile.UpdateProfile, http.StatusOK, newReq[model.UpdateProfileRequest]), required)
	r.GET("/my_widgets", handler.Handle(base, h.Widgets.MyWidgets, http.StatusOK, newReq[model.EmptyRequest]), required)

	widgets := r.Group("/widgets", required)
	widgets.POST("", handler.Handle(base, h.Widgets.Create, http.StatusCreated, newReq[model.CreateWidgetRequest]))
	widgets.GET("/:id", handler.Handle(base, h.Widgets.Get, http.StatusOK, newReq[model.WidgetIDRequest]))
	widgets.PUT("/:id", handler.Handle(base, h.Widgets.Update, http.StatusOK, newReq[model.UpdateWidgetRequest]))
	widgets.DELETE("/:id", handler.HandleNoContent(base, h.Widgets.Delete, http.StatusNoContent, newReq[model.WidgetIDRequest]))
}

func newReq[T any]() *T {
	return new(T)
}
