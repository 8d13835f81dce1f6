package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/agrocean/console/internal/core/domain"
	"github.com/agrocean/console/internal/core/service"
)

type fixedIdentity struct {
	identity *domain.Identity
}

func (f fixedIdentity) Current() *domain.Identity { return f.identity }

func TestRequireSession_InjectsIdentity(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	id := &domain.Identity{ID: 3, Nom: "Sow", Role: domain.RoleStockManager}
	called := false
	handler := RequireSession(fixedIdentity{id})(func(c echo.Context) error {
		called = true
		if c.Get("identity") != id {
			t.Fatalf("identity not set")
		}
		if c.Get("role") != "GestionnaireStock" {
			t.Fatalf("role not set: %v", c.Get("role"))
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestRequireSession_Missing(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := RequireSession(fixedIdentity{})(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})
	_ = handler(c)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body["redirect"] != "/login" {
		t.Fatalf("expected redirect to /login, got %q", body["redirect"])
	}
}

func runGuard(t *testing.T, identity *domain.Identity, path string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	guard := service.NewRouteGuard(fixedIdentity{identity}, zerolog.Nop())
	reached := false
	handler := GuardPages(guard)(func(c echo.Context) error {
		reached = true
		if _, ok := c.Get("decision").(service.Decision); !ok {
			t.Fatalf("decision not stored")
		}
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec, reached
}

func TestGuardPages(t *testing.T) {
	commercial := &domain.Identity{ID: 1, Role: domain.RoleCommercial}

	tests := []struct {
		name     string
		identity *domain.Identity
		path     string
		reached  bool
		location string
	}{
		{"login is public", nil, "/login", true, ""},
		{"anonymous sent to login", nil, "/ventes/create", false, "/login?returnUrl=%2Fventes%2Fcreate"},
		{"allowed area", commercial, "/ventes/create", true, ""},
		{"forbidden area goes home", commercial, "/stocks", false, "/dashboard"},
		{"root goes to dashboard", commercial, "/", false, "/dashboard"},
		{"unknown goes to dashboard", commercial, "/nowhere", false, "/dashboard"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, reached := runGuard(t, tt.identity, tt.path)
			if reached != tt.reached {
				t.Fatalf("reached = %v, want %v", reached, tt.reached)
			}
			if tt.location == "" {
				return
			}
			if rec.Code != http.StatusFound {
				t.Fatalf("expected 302, got %d", rec.Code)
			}
			if got := rec.Header().Get(echo.HeaderLocation); got != tt.location {
				t.Fatalf("Location = %q, want %q", got, tt.location)
			}
		})
	}
}
