package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/pomodoro-hub/auth-service/docs"
	"github.com/pomodoro-hub/auth-service/internal/api/handler"
	"github.com/pomodoro-hub/auth-service/internal/api/middleware"
	"github.com/pomodoro-hub/auth-service/internal/core/ports"
)

// Dependencies are the collaborators the HTTP layer needs. Registerer and
// Gatherer default to the Prometheus default registry when nil.
type Dependencies struct {
	Auth       ports.AuthService
	Guard      ports.PrincipalResolver
	Health     map[string]handler.Pinger
	Log        zerolog.Logger
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	registerer := deps.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "auth",
		Subsystem:  "http",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Authorization routes ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	authz := e.Group("/authorization")
	authz.POST("", authHandler.Login)
	authz.POST("/user", authHandler.Register)
	authz.POST("/update_password", authHandler.UpdatePassword,
		middleware.Auth(deps.Guard),
		middleware.RequireActive(deps.Guard),
	)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler(deps.Health)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
