package backend

import (
	"context"
	"net/http"

	"github.com/agrocean/console/internal/core/domain"
	"github.com/agrocean/console/internal/core/ports"
)

// AuthAPI implements ports.AuthAPI against the backend's /auth routes.
type AuthAPI struct {
	c *Client
}

func NewAuthAPI(c *Client) *AuthAPI {
	return &AuthAPI{c: c}
}

var _ ports.AuthAPI = (*AuthAPI)(nil)

type authResponse struct {
	Token     string           `json:"token"`
	User      *domain.Identity `json:"user"`
	ExpiresIn int64            `json:"expires_in"`
}

func (r *authResponse) result() *ports.AuthResult {
	return &ports.AuthResult{Token: r.Token, User: r.User, ExpiresIn: r.ExpiresIn}
}

// CSRFCookie primes the XSRF-TOKEN cookie for the following login.
func (a *AuthAPI) CSRFCookie(ctx context.Context) error {
	return a.c.do(withoutToken(ctx), request{method: http.MethodGet, path: "/sanctum/csrf-cookie"})
}

func (a *AuthAPI) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	var out authResponse
	err := a.c.do(withoutToken(ctx), request{
		method:      http.MethodPost,
		path:        "/auth/login",
		body:        map[string]string{"email": email, "password": password},
		out:         &out,
		credentials: true,
	})
	if err != nil {
		return nil, err
	}
	return out.result(), nil
}

// Logout tells the backend to revoke the token. A 401 here means the token
// is already dead and must not trigger a second logout.
func (a *AuthAPI) Logout(ctx context.Context) error {
	return a.c.do(withoutForceLogout(ctx), request{method: http.MethodPost, path: "/auth/logout", body: struct{}{}})
}

func (a *AuthAPI) Refresh(ctx context.Context) (*ports.AuthResult, error) {
	var out authResponse
	if err := a.c.do(ctx, request{method: http.MethodPost, path: "/auth/refresh", body: struct{}{}, out: &out}); err != nil {
		return nil, err
	}
	return out.result(), nil
}

func (a *AuthAPI) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.Identity, error) {
	var out struct {
		User *domain.Identity `json:"user"`
	}
	if err := a.c.do(ctx, request{method: http.MethodPut, path: "/auth/profile", body: update, out: &out}); err != nil {
		return nil, err
	}
	return out.User, nil
}

func (a *AuthAPI) ChangePassword(ctx context.Context, change domain.PasswordChange) error {
	return a.c.do(ctx, request{method: http.MethodPost, path: "/auth/change-password", body: change})
}
