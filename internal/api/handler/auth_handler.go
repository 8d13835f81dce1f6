package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/agrocean/console/internal/api/metrics"
	"github.com/agrocean/console/internal/core/domain"
	"github.com/agrocean/console/internal/core/ports"
)

type resumer interface {
	ResumeTarget(requested string) string
}

type AuthHandler struct {
	gateway ports.AuthGateway
	guard   resumer
}

func NewAuthHandler(gateway ports.AuthGateway, guard resumer) *AuthHandler {
	return &AuthHandler{gateway: gateway, guard: guard}
}

type loginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	ReturnURL string `json:"return_url,omitempty"`
}

type sessionResponse struct {
	User      *domain.Identity `json:"user"`
	RoleLabel string           `json:"role_label"`
	FullName  string           `json:"full_name"`
	ExpiresAt *time.Time       `json:"expires_at,omitempty"`
}

func newSessionResponse(s *domain.Session) sessionResponse {
	resp := sessionResponse{
		User:      s.Identity,
		RoleLabel: s.Identity.Role.DisplayName(),
		FullName:  s.Identity.FullName(),
	}
	if !s.ExpiresAt.IsZero() {
		at := s.ExpiresAt.UTC()
		resp.ExpiresAt = &at
	}
	return resp
}

type loginResponse struct {
	Session  sessionResponse `json:"session"`
	Redirect string          `json:"redirect"`
}

type redirectResponse struct {
	Redirect string `json:"redirect"`
}

// Login opens a backend session and tells the UI where to go next.
//
// @Summary      Login
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials and optional return URL"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      422   {object}  map[string]any
// @Failure      502   {object}  map[string]string
// @Router       /session/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		metrics.LoginsTotal.WithLabelValues("validation").Inc()
		return err
	}

	sess, err := h.gateway.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(loginResult(err)).Inc()
		return err
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	return c.JSON(http.StatusOK, loginResponse{
		Session:  newSessionResponse(sess),
		Redirect: h.guard.ResumeTarget(req.ReturnURL),
	})
}

func loginResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrNetwork):
		return "network"
	case errors.Is(err, domain.ErrServer):
		return "server"
	default:
		return "error"
	}
}

// Logout ends the session locally and notifies the backend.
//
// @Summary      Logout
// @Tags         session
// @Produce      json
// @Success      200  {object}  redirectResponse
// @Router       /session/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	h.gateway.Logout(c.Request().Context())
	return c.JSON(http.StatusOK, redirectResponse{Redirect: domain.LoginPath})
}

// Refresh swaps the bearer token for a fresh one.
//
// @Summary      Refresh token
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  map[string]string
// @Router       /session/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	sess, err := h.gateway.Refresh(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newSessionResponse(sess))
}

// UpdateProfile edits the signed-in user's own profile.
//
// @Summary      Update profile
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      domain.ProfileUpdate  true  "Fields to change"
// @Success      200   {object}  map[string]any
// @Failure      422   {object}  map[string]any
// @Router       /session/profile [put]
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	var req domain.ProfileUpdate
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	identity, err := h.gateway.UpdateProfile(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"user": identity})
}

// ChangePassword changes the signed-in user's password.
//
// @Summary      Change password
// @Tags         session
// @Accept       json
// @Param        body  body  domain.PasswordChange  true  "Current and new password"
// @Success      204
// @Failure      422  {object}  map[string]any
// @Router       /session/password [post]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req domain.PasswordChange
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.gateway.ChangePassword(c.Request().Context(), req); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
