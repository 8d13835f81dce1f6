package api

import (
	"path"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/agrocean/console/internal/api/handler"
	"github.com/agrocean/console/internal/api/middleware"
	"github.com/agrocean/console/internal/core/domain"
	"github.com/agrocean/console/internal/core/ports"
	"github.com/agrocean/console/internal/core/service"
)

// Deps are the already wired collaborators the router exposes over HTTP.
type Deps struct {
	Log        zerolog.Logger
	StaticDir  string
	Identities ports.IdentitySource
	Guard      *service.RouteGuard

	Auth      *handler.AuthHandler
	Session   *handler.SessionHandler
	Hub       *handler.Hub
	Proxy     *handler.ProxyHandler
	UI        *handler.UIHandler
	Pages     *handler.PageHandler
	Readiness *handler.ReadinessHandler

	// Registry receives the HTTP request metrics and backs /metrics. Nil
	// means the default Prometheus registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if d.Registry != nil {
		registerer, gatherer = d.Registry, d.Registry
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "console",
		Registerer: registerer,
	}))
	if d.StaticDir != "" {
		// Asset files only; extensionless paths are pages and go through the guard.
		e.Use(echomiddleware.StaticWithConfig(echomiddleware.StaticConfig{
			Root: d.StaticDir,
			Skipper: func(c echo.Context) bool {
				return path.Ext(c.Request().URL.Path) == ""
			},
		}))
	}

	// --- Operational endpoints ---
	health := handler.NewHealthHandler()
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", d.Readiness.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Session ---
	requireSession := middleware.RequireSession(d.Identities)

	sess := e.Group("/session")
	sess.POST("/login", d.Auth.Login)
	sess.POST("/logout", d.Auth.Logout)
	sess.POST("/refresh", d.Auth.Refresh)
	sess.GET("/navigate", d.Session.Navigate)
	sess.GET("", d.Session.Me)
	sess.PUT("/profile", d.Auth.UpdateProfile, requireSession)
	sess.POST("/password", d.Auth.ChangePassword, requireSession)
	sess.GET("/menu", d.Session.Menu, requireSession)
	sess.GET("/dashboard", d.Session.Dashboard, requireSession)
	sess.GET("/stream", d.Hub.Serve, requireSession)

	// --- Backend proxy ---
	api := e.Group("/api", requireSession, middleware.ProxyRBAC("/api"))
	api.Any("/*", d.Proxy.Handle)

	// --- Screen helpers ---
	ui := e.Group("/ui", requireSession)
	supply := ui.Group("/supply-requests",
		middleware.RBAC(domain.RoleAdministrator, domain.RoleStockManager, domain.RoleProcurementAgent))
	supply.GET("/:id", d.UI.SupplyRequest)
	supply.POST("/:id/:action", d.UI.SupplyRequestAction)
	ui.POST("/purchase-orders/quote", d.UI.QuotePurchaseOrder,
		middleware.RBAC(domain.RoleAdministrator, domain.RoleProcurementAgent))
	ui.GET("/products/:id/reorder", d.UI.ReorderSuggestion,
		middleware.RBAC(domain.RoleAdministrator, domain.RoleStockManager, domain.RoleProcurementAgent))
	ui.GET("/reference/:kind", d.UI.Reference)

	// --- Pages ---
	// Every other GET is a console page: the guard redirects or lets the
	// page handler answer.
	guard := middleware.GuardPages(d.Guard)
	e.GET("/", d.Pages.Serve, guard)
	e.GET("/*", d.Pages.Serve, guard)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		Skipper: func(c echo.Context) bool {
			p := c.Request().URL.Path
			return p == "/health" || p == "/metrics"
		},
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 || v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency.Round(time.Microsecond)).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
