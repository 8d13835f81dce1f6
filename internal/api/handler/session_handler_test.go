package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/agrocean/console/internal/core/domain"
	"github.com/agrocean/console/internal/core/service"
)

type fixedSessions struct {
	sess *domain.Session
}

func (f *fixedSessions) Session() (*domain.Session, bool) { return f.sess, f.sess != nil }

func (f *fixedSessions) Current() *domain.Identity {
	if f.sess == nil {
		return nil
	}
	return f.sess.Identity
}

type stubDashboard struct {
	err error
}

func (s stubDashboard) Load(ctx context.Context, identity *domain.Identity) (*domain.Dashboard, error) {
	if s.err != nil {
		return nil, s.err
	}
	n := 4
	return &domain.Dashboard{Stats: &domain.DashboardStats{CommandesAttente: 2}, UnreadAlerts: &n}, nil
}

func newSessionHandler(t *testing.T, sess *domain.Session, dash stubDashboard) *SessionHandler {
	t.Helper()
	sessions := &fixedSessions{sess: sess}
	guard := service.NewRouteGuard(sessions, zerolog.Nop())
	menu, err := service.NewMenuBuilder(domain.MenuSections)
	if err != nil {
		t.Fatalf("menu: %v", err)
	}
	return NewSessionHandler(sessions, guard, menu, dash)
}

func TestSessionHandler_Me(t *testing.T) {
	e := echo.New()
	h := newSessionHandler(t, &domain.Session{
		Identity: &domain.Identity{ID: 1, Prenom: "Moussa", Nom: "Ndiaye", Role: domain.RoleStockManager},
		Token:    "tok",
	}, stubDashboard{})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/session", nil), rec)

	if err := h.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["role_label"] != "Gestionnaire de Stock" {
		t.Fatalf("unexpected role label %v", resp["role_label"])
	}
	if _, ok := resp["expires_at"]; ok {
		t.Fatalf("unknown expiry must be omitted")
	}
}

func TestSessionHandler_Me_Anonymous(t *testing.T) {
	e := echo.New()
	h := newSessionHandler(t, nil, stubDashboard{})

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/session", nil), httptest.NewRecorder())

	if err := h.Me(c); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestSessionHandler_Menu_FiltersByRole(t *testing.T) {
	e := echo.New()
	identity := &domain.Identity{ID: 2, Role: domain.RoleAccountant}
	h := newSessionHandler(t, &domain.Session{Identity: identity}, stubDashboard{})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/session/menu", nil), rec)
	c.Set("identity", identity)

	if err := h.Menu(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var items []domain.MenuItem
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(items) == 0 {
		t.Fatalf("expected at least the home entry")
	}
	body := rec.Body.String()
	for _, hidden := range []string{"/utilisateurs", "/stocks", "/ventes"} {
		if strings.Contains(body, `"`+hidden+`"`) {
			t.Fatalf("accountant menu must not contain %s: %s", hidden, body)
		}
	}
	if !strings.Contains(body, `"/finances`) {
		t.Fatalf("accountant menu must contain finances: %s", body)
	}
}

func TestSessionHandler_Menu_WithoutIdentity(t *testing.T) {
	e := echo.New()
	h := newSessionHandler(t, nil, stubDashboard{})

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/session/menu", nil), httptest.NewRecorder())

	err := h.Menu(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 http error, got %v", err)
	}
}

func TestSessionHandler_Navigate(t *testing.T) {
	tests := []struct {
		name     string
		sess     *domain.Session
		path     string
		state    string
		redirect string
	}{
		{"anonymous", nil, "/ventes", "denied_unauthenticated", "/login?returnUrl=%2Fventes"},
		{"forbidden", &domain.Session{Identity: &domain.Identity{Role: domain.RoleCommercial}}, "/stocks", "denied_forbidden", "/dashboard"},
		{"allowed", &domain.Session{Identity: &domain.Identity{Role: domain.RoleCommercial}}, "/ventes/create", "allowed", ""},
		{"fallback", &domain.Session{Identity: &domain.Identity{Role: domain.RoleCommercial}}, "/nowhere", "allowed", "/dashboard"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			h := newSessionHandler(t, tt.sess, stubDashboard{})

			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/session/navigate?path="+tt.path, nil), rec)

			if err := h.Navigate(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			var resp struct {
				State    string `json:"state"`
				Redirect string `json:"redirect"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp.State != tt.state || resp.Redirect != tt.redirect {
				t.Fatalf("got state=%s redirect=%s, want %s %s", resp.State, resp.Redirect, tt.state, tt.redirect)
			}
		})
	}
}

func TestSessionHandler_Dashboard(t *testing.T) {
	identity := &domain.Identity{ID: 1, Role: domain.RoleAdministrator}

	t.Run("ok", func(t *testing.T) {
		e := echo.New()
		h := newSessionHandler(t, &domain.Session{Identity: identity}, stubDashboard{})
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/session/dashboard", nil), rec)
		c.Set("identity", identity)

		if err := h.Dashboard(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if !strings.Contains(rec.Body.String(), `"unread_alerts":4`) {
			t.Fatalf("unexpected body %s", rec.Body.String())
		}
	})

	t.Run("backend down", func(t *testing.T) {
		e := echo.New()
		h := newSessionHandler(t, &domain.Session{Identity: identity}, stubDashboard{err: &domain.BackendError{Kind: domain.ErrNetwork}})
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/session/dashboard", nil), httptest.NewRecorder())
		c.Set("identity", identity)

		if err := h.Dashboard(c); !errors.Is(err, domain.ErrNetwork) {
			t.Fatalf("expected ErrNetwork, got %v", err)
		}
	})
}
