package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/agrocean/console/internal/core/domain"
	"github.com/agrocean/console/internal/core/ports"
)

const defaultNamespace = "agrocean"

// SessionStore holds the authenticated identity and its bearer token, backed
// by a KeyValueStore so the session survives restarts. All mutations are
// serialized; subscribers are notified while the lock is held so they observe
// changes in mutation order.
type SessionStore struct {
	kv       ports.KeyValueStore
	userKey  string
	tokenKey string
	log      zerolog.Logger
	now      func() time.Time

	mu        sync.Mutex
	identity  *domain.Identity
	token     string
	expiresAt time.Time
	subs      map[int]chan *domain.Identity
	nextSub   int
}

// NewSessionStore hydrates the store from kv. Unusable stored data is wiped
// and the store starts empty; only a storage read failure is returned.
func NewSessionStore(ctx context.Context, kv ports.KeyValueStore, namespace string, log zerolog.Logger) (*SessionStore, error) {
	userKey, tokenKey := SessionKeys(namespace)
	s := &SessionStore{
		kv:       kv,
		userKey:  userKey,
		tokenKey: tokenKey,
		log:      log,
		now:      time.Now,
		subs:     make(map[int]chan *domain.Identity),
	}
	if err := s.hydrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// SessionKeys returns the storage keys a store in namespace uses for the
// identity and the token.
func SessionKeys(namespace string) (userKey, tokenKey string) {
	if namespace == "" {
		namespace = defaultNamespace
	}
	return namespace + "_user", namespace + "_token"
}

func (s *SessionStore) hydrate(ctx context.Context) error {
	values, err := s.kv.GetMany(ctx, s.userKey, s.tokenKey)
	if err != nil {
		return fmt.Errorf("session hydrate: %w", err)
	}

	rawUser, hasUser := values[s.userKey]
	token, hasToken := values[s.tokenKey]
	if !hasUser && !hasToken {
		return nil
	}

	identity, reason := decodeStoredIdentity(rawUser, hasUser, token, hasToken)
	if identity == nil {
		s.log.Warn().Str("reason", reason).Msg("discarding stored session")
		if err := s.kv.DeleteMany(ctx, s.userKey, s.tokenKey); err != nil {
			s.log.Error().Err(err).Msg("failed to wipe stored session")
		}
		return nil
	}

	s.identity = identity
	s.token = token
	s.expiresAt = expiryHint(token, 0, s.now())
	s.log.Debug().Int64("user_id", identity.ID).Str("role", string(identity.Role)).Msg("session restored")
	return nil
}

func decodeStoredIdentity(rawUser string, hasUser bool, token string, hasToken bool) (*domain.Identity, string) {
	if !hasUser || !hasToken || token == "" {
		return nil, "incomplete pair"
	}
	var identity *domain.Identity
	if err := json.Unmarshal([]byte(rawUser), &identity); err != nil {
		return nil, "unreadable identity"
	}
	if identity == nil {
		return nil, "empty identity"
	}
	if !identity.Role.Valid() {
		return nil, "missing role"
	}
	return identity, ""
}

// Current returns a copy of the identity, or nil when no session exists.
func (s *SessionStore) Current() *domain.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity.Clone()
}

func (s *SessionStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Session returns the current pair, if any.
func (s *SessionStore) Session() (*domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return nil, false
	}
	return &domain.Session{Identity: s.identity.Clone(), Token: s.token, ExpiresAt: s.expiresAt}, true
}

// Observe subscribes to identity changes. The current value is delivered
// immediately. Each subscriber keeps only the latest undelivered value, so a
// slow reader never blocks the store. Call cancel to unsubscribe.
func (s *SessionStore) Observe() (<-chan *domain.Identity, func()) {
	ch := make(chan *domain.Identity, 1)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.identity.Clone()
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			close(ch)
			s.mu.Unlock()
		})
	}
	return ch, cancel
}

// Persist writes identity and token as one atomic pair. Memory is only
// updated once storage accepted the write.
func (s *SessionStore) Persist(ctx context.Context, identity *domain.Identity, token string, expiresAt time.Time) error {
	if identity == nil || token == "" {
		return fmt.Errorf("session persist: identity and token are both required")
	}
	raw, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("session persist: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.SetMany(ctx, map[string]string{
		s.userKey:  string(raw),
		s.tokenKey: token,
	}); err != nil {
		return fmt.Errorf("session persist: %w", err)
	}

	s.identity = identity.Clone()
	s.token = token
	s.expiresAt = expiresAt
	s.emitLocked()
	return nil
}

// ReplaceIdentity swaps the identity and keeps the token. It fails with
// ErrSessionChanged unless the live token is still expectedToken.
func (s *SessionStore) ReplaceIdentity(ctx context.Context, expectedToken string, identity *domain.Identity) error {
	if identity == nil {
		return fmt.Errorf("session replace identity: identity is required")
	}
	raw, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("session replace identity: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == "" {
		return domain.ErrNotAuthenticated
	}
	if s.token != expectedToken {
		return domain.ErrSessionChanged
	}
	// Rewrite the token too so the pair stays consistent even if the other
	// key was lost out of band.
	if err := s.kv.SetMany(ctx, map[string]string{
		s.userKey:  string(raw),
		s.tokenKey: s.token,
	}); err != nil {
		return fmt.Errorf("session replace identity: %w", err)
	}

	s.identity = identity.Clone()
	s.emitLocked()
	return nil
}

// ReplaceToken stores a token refreshed from expectedToken. When identity is
// non-nil it replaces the stored identity in the same write. A session that
// no longer holds expectedToken is left alone and ErrSessionChanged returned.
func (s *SessionStore) ReplaceToken(ctx context.Context, expectedToken, token string, expiresAt time.Time, identity *domain.Identity) error {
	if token == "" {
		return fmt.Errorf("session replace token: token is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.identity == nil {
		return domain.ErrNotAuthenticated
	}
	if s.token != expectedToken {
		return domain.ErrSessionChanged
	}
	next := s.identity
	if identity != nil {
		next = identity
	}
	raw, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("session replace token: %w", err)
	}
	if err := s.kv.SetMany(ctx, map[string]string{
		s.userKey:  string(raw),
		s.tokenKey: token,
	}); err != nil {
		return fmt.Errorf("session replace token: %w", err)
	}

	s.token = token
	s.expiresAt = expiresAt
	if identity != nil {
		s.identity = identity.Clone()
		s.emitLocked()
	}
	return nil
}

// Clear drops the session. Calling it on an empty store is a no-op apart
// from the storage delete. Memory is cleared even if storage fails.
func (s *SessionStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	had := s.identity != nil || s.token != ""
	s.identity = nil
	s.token = ""
	s.expiresAt = time.Time{}
	if had {
		s.emitLocked()
	}

	if err := s.kv.DeleteMany(ctx, s.userKey, s.tokenKey); err != nil {
		s.log.Error().Err(err).Msg("failed to delete stored session")
		return fmt.Errorf("session clear: %w", err)
	}
	return nil
}

// emitLocked pushes the current identity to every subscriber, replacing any
// value they have not read yet. Must be called with mu held.
func (s *SessionStore) emitLocked() {
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s.identity.Clone()
	}
}

// expiryHint prefers the backend's expires_in, then the token's own exp
// claim. A zero time means unknown.
func expiryHint(token string, expiresIn int64, now time.Time) time.Time {
	if expiresIn > 0 {
		return now.Add(time.Duration(expiresIn) * time.Second)
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
