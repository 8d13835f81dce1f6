package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/agrocean/console/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     int
		redirect string
		field    string
	}{
		{"echo error", echo.NewHTTPError(http.StatusBadRequest, "invalid id"), http.StatusBadRequest, "", ""},
		{"validation", &domain.ValidationError{Fields: map[string][]string{"email": {"requis"}}}, http.StatusUnprocessableEntity, "", "email"},
		{"invalid credentials", &domain.BackendError{Kind: domain.ErrInvalidCredentials}, http.StatusUnauthorized, "", ""},
		{"session expired", fmt.Errorf("refresh: %w", domain.ErrSessionExpired), http.StatusUnauthorized, "/login", ""},
		{"not authenticated", domain.ErrNotAuthenticated, http.StatusUnauthorized, "/login", ""},
		{"session changed", fmt.Errorf("refresh: %w", domain.ErrSessionChanged), http.StatusConflict, "", ""},
		{"forbidden", &domain.BackendError{Kind: domain.ErrForbidden, Message: "Rôle insuffisant"}, http.StatusForbidden, "", ""},
		{"not found", &domain.BackendError{Kind: domain.ErrNotFound}, http.StatusNotFound, "", ""},
		{"network", &domain.BackendError{Kind: domain.ErrNetwork}, http.StatusBadGateway, "", ""},
		{"server", &domain.BackendError{Kind: domain.ErrServer}, http.StatusBadGateway, "", ""},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/x", nil), rec)

			NewHTTPErrorHandler(zerolog.Nop())(tt.err, c)

			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, rec.Code)
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp.Error == "" {
				t.Fatalf("expected an error message")
			}
			if resp.Redirect != tt.redirect {
				t.Fatalf("expected redirect %q, got %q", tt.redirect, resp.Redirect)
			}
			if tt.field != "" && len(resp.Fields[tt.field]) == 0 {
				t.Fatalf("expected field %s in %+v", tt.field, resp.Fields)
			}
		})
	}
}

func TestHTTPErrorHandler_Head(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodHead, "/x", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrNotAuthenticated, c)

	if rec.Code != http.StatusUnauthorized || rec.Body.Len() != 0 {
		t.Fatalf("expected empty 401, got %d %q", rec.Code, rec.Body.String())
	}
}
