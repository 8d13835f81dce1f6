package ports

import (
	"context"
	"time"

	"github.com/agrocean/console/internal/core/domain"
)

// KeyValueStore is the durable storage behind the session. SetMany must write
// all pairs or none.
type KeyValueStore interface {
	GetMany(ctx context.Context, keys ...string) (map[string]string, error)
	SetMany(ctx context.Context, values map[string]string) error
	DeleteMany(ctx context.Context, keys ...string) error
}

// IdentitySource gives synchronous access to the latest known identity.
type IdentitySource interface {
	Current() *domain.Identity
}

// IdentityStream delivers the current identity on subscribe and every
// change after it. The returned func unsubscribes.
type IdentityStream interface {
	Observe() (<-chan *domain.Identity, func())
}

// SessionStore owns the identity and bearer token pair.
type SessionStore interface {
	IdentitySource
	IdentityStream
	Token() string
	Session() (*domain.Session, bool)
	Persist(ctx context.Context, identity *domain.Identity, token string, expiresAt time.Time) error
	ReplaceIdentity(ctx context.Context, expectedToken string, identity *domain.Identity) error
	ReplaceToken(ctx context.Context, expectedToken, token string, expiresAt time.Time, identity *domain.Identity) error
	Clear(ctx context.Context) error
}

// Navigator moves the operator's UI to a console path.
type Navigator interface {
	Navigate(path string)
}

// AuthGateway is the use-case surface the HTTP handlers consume.
type AuthGateway interface {
	Login(ctx context.Context, email, password string) (*domain.Session, error)
	Logout(ctx context.Context)
	Refresh(ctx context.Context) (*domain.Session, error)
	UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.Identity, error)
	ChangePassword(ctx context.Context, change domain.PasswordChange) error
}
