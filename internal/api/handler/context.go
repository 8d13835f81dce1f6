package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agrocean/console/internal/core/domain"
)

// ctxIdentity returns the identity injected by RequireSession. A missing
// identity means the middleware did not run for this route.
func ctxIdentity(c echo.Context) (*domain.Identity, error) {
	identity, _ := c.Get("identity").(*domain.Identity)
	if identity == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing session identity")
	}
	return identity, nil
}
