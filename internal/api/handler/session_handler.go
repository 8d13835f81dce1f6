package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agrocean/console/internal/api/metrics"
	"github.com/agrocean/console/internal/core/domain"
	"github.com/agrocean/console/internal/core/service"
)

type sessionSource interface {
	Session() (*domain.Session, bool)
}

type navigator interface {
	Evaluate(path string) service.Decision
}

type menuBuilder interface {
	Build(identity *domain.Identity) []domain.MenuItem
}

type dashboardLoader interface {
	Load(ctx context.Context, identity *domain.Identity) (*domain.Dashboard, error)
}

// SessionHandler serves the read side of the session: who is signed in, what
// the menu holds and where navigation may go.
type SessionHandler struct {
	sessions  sessionSource
	guard     navigator
	menu      menuBuilder
	dashboard dashboardLoader
}

func NewSessionHandler(sessions sessionSource, guard navigator, menu menuBuilder, dashboard dashboardLoader) *SessionHandler {
	return &SessionHandler{sessions: sessions, guard: guard, menu: menu, dashboard: dashboard}
}

// Me returns the current session.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  map[string]string
// @Router       /session [get]
func (h *SessionHandler) Me(c echo.Context) error {
	sess, ok := h.sessions.Session()
	if !ok {
		return domain.ErrNotAuthenticated
	}
	return c.JSON(http.StatusOK, newSessionResponse(sess))
}

// Menu returns the navigation menu for the signed-in role.
//
// @Summary      Navigation menu
// @Tags         session
// @Produce      json
// @Success      200  {array}   domain.MenuItem
// @Router       /session/menu [get]
func (h *SessionHandler) Menu(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.menu.Build(identity))
}

type navigateResponse struct {
	State string `json:"state"`
	service.Decision
}

// Navigate asks the route guard about a path without loading the page.
//
// @Summary      Guard decision
// @Tags         session
// @Produce      json
// @Param        path  query     string  true  "Console path, e.g. /ventes/create"
// @Success      200   {object}  navigateResponse
// @Router       /session/navigate [get]
func (h *SessionHandler) Navigate(c echo.Context) error {
	d := h.guard.Evaluate(c.QueryParam("path"))
	metrics.GuardDecisionsTotal.WithLabelValues(domain.AreaOf(d.Path), d.State.String()).Inc()
	return c.JSON(http.StatusOK, navigateResponse{State: d.State.String(), Decision: d})
}

// Dashboard aggregates the home page figures the role may see.
//
// @Summary      Dashboard
// @Tags         session
// @Produce      json
// @Success      200  {object}  domain.Dashboard
// @Failure      502  {object}  map[string]string
// @Router       /session/dashboard [get]
func (h *SessionHandler) Dashboard(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	dash, err := h.dashboard.Load(c.Request().Context(), identity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dash)
}
