package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agrocean/console/internal/api/metrics"
	"github.com/agrocean/console/internal/core/domain"
	"github.com/agrocean/console/internal/core/service"
)

type pageGuard interface {
	Evaluate(path string) service.Decision
}

// GuardPages runs the route guard on full-page requests. Any decision with a
// redirect becomes a 302; an allowed decision is stored under "decision".
func GuardPages(guard pageGuard) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			d := guard.Evaluate(c.Request().URL.Path)
			metrics.GuardDecisionsTotal.WithLabelValues(domain.AreaOf(d.Path), d.State.String()).Inc()

			if d.Redirect != "" {
				return c.Redirect(http.StatusFound, d.Redirect)
			}

			c.Set("decision", d)
			return next(c)
		}
	}
}
