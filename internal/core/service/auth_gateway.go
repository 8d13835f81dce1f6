package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/agrocean/console/internal/core/domain"
	"github.com/agrocean/console/internal/core/ports"
)

// AuthGateway runs the login, logout, refresh and profile exchanges with the
// backend and keeps the SessionStore in step with their outcome.
type AuthGateway struct {
	api   ports.AuthAPI
	store ports.SessionStore
	nav   ports.Navigator
	log   zerolog.Logger
	now   func() time.Time

	// forceMu makes the compare-and-clear in ForceLogout atomic.
	forceMu sync.Mutex
}

func NewAuthGateway(api ports.AuthAPI, store ports.SessionStore, nav ports.Navigator, log zerolog.Logger) *AuthGateway {
	return &AuthGateway{
		api:   api,
		store: store,
		nav:   nav,
		log:   log,
		now:   time.Now,
	}
}

// Login exchanges credentials for a session. The store is only written when
// the whole exchange succeeded.
func (g *AuthGateway) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if err := g.api.CSRFCookie(ctx); err != nil {
		return nil, fmt.Errorf("login: csrf bootstrap: %w", err)
	}

	res, err := g.api.Login(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if res == nil || res.Token == "" || res.User == nil {
		return nil, &domain.BackendError{Kind: domain.ErrServer, Message: "login response without token or user"}
	}
	if !res.User.Role.Valid() {
		return nil, roleError("login", res.User.Role)
	}

	expiresAt := expiryHint(res.Token, res.ExpiresIn, g.now())
	g.forceMu.Lock()
	err = g.store.Persist(ctx, res.User, res.Token, expiresAt)
	g.forceMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	g.log.Info().Int64("user_id", res.User.ID).Str("role", string(res.User.Role)).Msg("login succeeded")
	return &domain.Session{Identity: res.User.Clone(), Token: res.Token, ExpiresAt: expiresAt}, nil
}

// Logout always succeeds locally. The backend notification is best effort.
func (g *AuthGateway) Logout(ctx context.Context) {
	if g.store.Token() != "" {
		if err := g.api.Logout(ctx); err != nil {
			g.log.Debug().Err(err).Msg("backend logout notification failed")
		}
	}

	g.forceMu.Lock()
	if err := g.store.Clear(ctx); err != nil {
		g.log.Error().Err(err).Msg("logout: clear session")
	}
	g.forceMu.Unlock()

	g.nav.Navigate(domain.LoginPath)
}

// ForceLogout ends the session whose token the backend just rejected. Only
// the first call for the live token has an effect; it reports whether this
// call was that one. A rejection of a token that is no longer current is
// ignored.
func (g *AuthGateway) ForceLogout(token string) bool {
	if token == "" {
		return false
	}

	g.forceMu.Lock()
	if g.store.Token() != token {
		g.forceMu.Unlock()
		return false
	}
	if err := g.store.Clear(context.Background()); err != nil {
		g.log.Error().Err(err).Msg("forced logout: clear session")
	}
	g.forceMu.Unlock()

	g.log.Warn().Msg("session expired, forced logout")
	g.nav.Navigate(domain.LoginPath)
	return true
}

// Refresh swaps the current token for a fresh one. The identity changes only
// if the backend sends a new one.
func (g *AuthGateway) Refresh(ctx context.Context) (*domain.Session, error) {
	token := g.store.Token()
	if token == "" {
		return nil, domain.ErrNotAuthenticated
	}

	res, err := g.api.Refresh(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	if res == nil || res.Token == "" {
		return nil, &domain.BackendError{Kind: domain.ErrServer, Message: "refresh response without token"}
	}
	if res.User != nil && !res.User.Role.Valid() {
		return nil, roleError("refresh", res.User.Role)
	}

	expiresAt := expiryHint(res.Token, res.ExpiresIn, g.now())
	g.forceMu.Lock()
	err = g.store.ReplaceToken(ctx, token, res.Token, expiresAt, res.User)
	g.forceMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}

	sess, ok := g.store.Session()
	if !ok {
		return nil, domain.ErrNotAuthenticated
	}
	return sess, nil
}

// UpdateProfile sends the edited fields and adopts the identity the backend
// returns, if any.
func (g *AuthGateway) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.Identity, error) {
	current := g.store.Current()
	token := g.store.Token()
	if current == nil || token == "" {
		return nil, domain.ErrNotAuthenticated
	}

	updated, err := g.api.UpdateProfile(ctx, update)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if updated == nil {
		return current, nil
	}
	if !updated.Role.Valid() {
		return nil, roleError("update profile", updated.Role)
	}

	g.forceMu.Lock()
	err = g.store.ReplaceIdentity(ctx, token, updated)
	g.forceMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return updated.Clone(), nil
}

func (g *AuthGateway) ChangePassword(ctx context.Context, change domain.PasswordChange) error {
	if g.store.Current() == nil {
		return domain.ErrNotAuthenticated
	}
	if err := g.api.ChangePassword(ctx, change); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}

func roleError(op string, role domain.Role) error {
	return &domain.BackendError{Kind: domain.ErrServer, Message: fmt.Sprintf("%s response with unknown role %q", op, role)}
}
