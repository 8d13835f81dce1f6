package middleware

import (
	"net/http"
	"path"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/agrocean/console/internal/core/domain"
	"github.com/agrocean/console/internal/core/service"
)

// RBAC enforces role-based access control on the role injected by
// RequireSession.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := domain.RoleSetOf(allowedRoles...)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("role").(string)
			if !allowed.Contains(domain.Role(role)) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

// backendAreas maps backend collections to the console area that owns them
// when the names differ.
var backendAreas = map[string]string{
	"users":                 "utilisateurs",
	"factures":              "finances",
	"factures-fournisseurs": "finances",
	"paiements":             "finances",
	"bilans":                "finances",
}

// ProxyRBAC applies the route table to backend calls forwarded under prefix,
// so the proxy never lets an identity reach data its pages would hide.
func ProxyRBAC(prefix string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, _ := c.Get("identity").(*domain.Identity)
			// Dot segments are resolved first so the area checked is the one
			// the backend will serve.
			p := path.Clean("/" + strings.TrimPrefix(c.Request().URL.Path, prefix))
			if !proxyAllowed(identity, p) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

func proxyAllowed(identity *domain.Identity, p string) bool {
	if identity == nil {
		return false
	}
	area := domain.AreaOf(p)
	switch area {
	case "auth", "sanctum":
		// The console owns the session; use /session/* instead.
		return false
	case "alertes":
		return service.CanViewAlerts(identity)
	}
	if owner, ok := backendAreas[area]; ok {
		area = owner
	}
	route, ok := domain.RouteFor(area)
	if !ok || route.Public {
		return true
	}
	return service.Satisfies(identity, route.Requirement)
}
