package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/agrocean/console/internal/core/domain"
	"github.com/agrocean/console/internal/core/ports"
)

type sessionReader interface {
	Session() (*domain.Session, bool)
}

type refresher interface {
	Refresh(ctx context.Context) (*domain.Session, error)
}

// TokenRefresher renews the bearer token shortly before its known expiry.
// Sessions without an expiry hint are left alone.
type TokenRefresher struct {
	sessions sessionReader
	gateway  refresher
	window   time.Duration
	every    time.Duration
	log      zerolog.Logger
	now      func() time.Time
}

func NewTokenRefresher(sessions ports.SessionStore, gateway ports.AuthGateway, window time.Duration, log zerolog.Logger) *TokenRefresher {
	every := window / 4
	if every > time.Minute {
		every = time.Minute
	}
	if every < time.Second {
		every = time.Second
	}
	return &TokenRefresher{
		sessions: sessions,
		gateway:  gateway,
		window:   window,
		every:    every,
		log:      log,
		now:      time.Now,
	}
}

// Run blocks until ctx is cancelled. A zero window disables refreshing.
func (r *TokenRefresher) Run(ctx context.Context) {
	if r.window <= 0 {
		return
	}
	ticker := time.NewTicker(r.every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.check(ctx)
		}
	}
}

// check refreshes when the current session expires within the window. It
// reports whether a refresh was attempted.
func (r *TokenRefresher) check(ctx context.Context) bool {
	sess, ok := r.sessions.Session()
	if !ok || !sess.ExpiresWithin(r.now(), r.window) {
		return false
	}

	if _, err := r.gateway.Refresh(ctx); err != nil {
		switch {
		case errors.Is(err, domain.ErrSessionExpired), errors.Is(err, domain.ErrNotAuthenticated):
			r.log.Info().Msg("token refresh rejected, session ended")
		case errors.Is(err, domain.ErrSessionChanged):
			r.log.Debug().Msg("session replaced during token refresh, result dropped")
		default:
			r.log.Warn().Err(err).Msg("token refresh failed")
		}
		return true
	}
	r.log.Debug().Msg("token refreshed")
	return true
}
