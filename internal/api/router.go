package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/pennywise/expense-tracker/internal/api/handler"
	"github.com/pennywise/expense-tracker/internal/api/middleware"
	"github.com/pennywise/expense-tracker/internal/core/ports"
)

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	Auth ports.AuthService
	// Expenses may be nil, in which case the expense routes are not mounted.
	Expenses   ports.ExpenseService
	SessionTTL time.Duration
	// Readiness lists the dependencies pinged by /health/ready.
	Readiness map[string]handler.Pinger
	Logger    zerolog.Logger
	// Registerer and Gatherer back the HTTP metrics and /metrics. Nil means
	// the Prometheus default registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	if deps.Registerer == nil {
		deps.Registerer = prometheus.DefaultRegisterer
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "expensetracker",
		Registerer: deps.Registerer,
	}))
	e.Use(echomiddleware.BodyLimit("64K"))
	e.Use(middleware.Session(middleware.NewCallerResolver(deps.Auth)))

	requireCaller := middleware.RequireCaller()

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(deps.Auth, deps.SessionTTL)
	auth := e.Group("/api/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/me", authHandler.Me, requireCaller)

	// --- Expense routes (caller-scoped) ---
	if deps.Expenses != nil {
		expenseHandler := handler.NewExpenseHandler(deps.Expenses)
		expenses := e.Group("/api/expenses", requireCaller)
		expenses.GET("", expenseHandler.List)
		expenses.POST("", expenseHandler.Create)
	}

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Readiness)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: deps.Gatherer,
	}))

	return e
}
