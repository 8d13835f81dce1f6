package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agrocean/console/internal/core/domain"
	"github.com/agrocean/console/internal/core/ports"
)

// RequireSession rejects JSON requests made without a signed-in identity and
// injects the identity into the context.
func RequireSession(identities ports.IdentitySource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity := identities.Current()
			if identity == nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error":    "Authentification requise",
					"redirect": domain.LoginPath,
				})
			}

			c.Set("identity", identity)
			c.Set("role", string(identity.Role))

			return next(c)
		}
	}
}
