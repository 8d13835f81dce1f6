package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/agrocean/console/internal/core/domain"
)

type stubKV struct {
	mu        sync.Mutex
	data      map[string]string
	setErr    error
	deleteErr error
	getErr    error
}

func newStubKV() *stubKV {
	return &stubKV{data: make(map[string]string)}
}

func (s *stubKV) GetMany(_ context.Context, keys ...string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := s.data[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (s *stubKV) SetMany(_ context.Context, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	for k, v := range values {
		s.data[k] = v
	}
	return nil
}

func (s *stubKV) DeleteMany(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

func (s *stubKV) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key]
	return ok
}

func testIdentity(role domain.Role) *domain.Identity {
	return &domain.Identity{
		ID:        7,
		Nom:       "Diop",
		Prenom:    "Awa",
		Email:     "awa@agrocean.sn",
		Telephone: "+221770000000",
		Role:      role,
		IsActive:  true,
	}
}

func newTestStore(t *testing.T, kv *stubKV) *SessionStore {
	t.Helper()
	s, err := NewSessionStore(context.Background(), kv, "agrocean", zerolog.Nop())
	if err != nil {
		t.Fatalf("NewSessionStore: %v", err)
	}
	return s
}

func TestSessionStore_PersistThenHydrate(t *testing.T) {
	kv := newStubKV()
	s := newTestStore(t, kv)

	id := testIdentity(domain.RoleCommercial)
	if err := s.Persist(context.Background(), id, "tok-1", time.Time{}); err != nil {
		t.Fatalf("persist: %v", err)
	}
	if !kv.has("agrocean_user") || !kv.has("agrocean_token") {
		t.Fatalf("expected both keys in storage, got %v", kv.data)
	}

	fresh := newTestStore(t, kv)
	got := fresh.Current()
	if got == nil {
		t.Fatalf("expected identity after hydration")
	}
	if *got != *id {
		t.Fatalf("hydrated identity differs: %+v vs %+v", got, id)
	}
	if fresh.Token() != "tok-1" {
		t.Fatalf("unexpected token %q", fresh.Token())
	}
}

func TestSessionStore_HydrateCorruptIdentity(t *testing.T) {
	cases := map[string]map[string]string{
		"garbage json": {"agrocean_user": "{not json", "agrocean_token": "tok"},
		"unknown role": {"agrocean_user": `{"id":1,"role":"Stagiaire"}`, "agrocean_token": "tok"},
		"null user":    {"agrocean_user": "null", "agrocean_token": "tok"},
		"missing role": {"agrocean_user": `{"id":7,"nom":"X","email":"x@y.z"}`, "agrocean_token": "tok"},
		"null role":    {"agrocean_user": `{"id":7,"role":null}`, "agrocean_token": "tok"},
		"token only":   {"agrocean_token": "tok"},
		"user only":    {"agrocean_user": `{"id":1,"role":"Comptable"}`},
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			kv := newStubKV()
			for k, v := range data {
				kv.data[k] = v
			}
			s := newTestStore(t, kv)
			if s.Current() != nil || s.Token() != "" {
				t.Fatalf("expected empty store")
			}
			if kv.has("agrocean_user") || kv.has("agrocean_token") {
				t.Fatalf("expected storage wiped, got %v", kv.data)
			}
		})
	}
}

func TestSessionStore_HydrateStorageFailure(t *testing.T) {
	kv := newStubKV()
	kv.getErr = errors.New("disk gone")
	if _, err := NewSessionStore(context.Background(), kv, "", zerolog.Nop()); err == nil {
		t.Fatalf("expected error when storage cannot be read")
	}
}

func TestSessionStore_PersistFailureLeavesStateUntouched(t *testing.T) {
	kv := newStubKV()
	s := newTestStore(t, kv)
	kv.setErr = errors.New("read-only")

	if err := s.Persist(context.Background(), testIdentity(domain.RoleAccountant), "tok", time.Time{}); err == nil {
		t.Fatalf("expected persist error")
	}
	if s.Current() != nil || s.Token() != "" {
		t.Fatalf("memory must not change when storage rejects the write")
	}
}

func TestSessionStore_ClearIsIdempotent(t *testing.T) {
	kv := newStubKV()
	s := newTestStore(t, kv)
	_ = s.Persist(context.Background(), testIdentity(domain.RoleAdministrator), "tok", time.Time{})

	for i := 0; i < 2; i++ {
		if err := s.Clear(context.Background()); err != nil {
			t.Fatalf("clear #%d: %v", i+1, err)
		}
		if s.Current() != nil {
			t.Fatalf("identity should be absent after clear #%d", i+1)
		}
	}
	if kv.has("agrocean_user") || kv.has("agrocean_token") {
		t.Fatalf("storage not cleared")
	}
}

func TestSessionStore_ClearStorageFailureStillClearsMemory(t *testing.T) {
	kv := newStubKV()
	s := newTestStore(t, kv)
	_ = s.Persist(context.Background(), testIdentity(domain.RoleAdministrator), "tok", time.Time{})
	kv.deleteErr = errors.New("locked")

	if err := s.Clear(context.Background()); err == nil {
		t.Fatalf("expected storage error to be returned")
	}
	if s.Current() != nil || s.Token() != "" {
		t.Fatalf("memory must be cleared regardless")
	}
}

func TestSessionStore_ObserveEmitsCurrentThenChanges(t *testing.T) {
	s := newTestStore(t, newStubKV())

	ch, cancel := s.Observe()
	defer cancel()

	if first := <-ch; first != nil {
		t.Fatalf("expected nil initial identity, got %+v", first)
	}

	id := testIdentity(domain.RoleStockManager)
	_ = s.Persist(context.Background(), id, "tok", time.Time{})
	if got := <-ch; got == nil || got.Role != domain.RoleStockManager {
		t.Fatalf("expected persisted identity, got %+v", got)
	}

	_ = s.Clear(context.Background())
	if got := <-ch; got != nil {
		t.Fatalf("expected nil after clear, got %+v", got)
	}
}

func TestSessionStore_ObserveKeepsLatestOnly(t *testing.T) {
	s := newTestStore(t, newStubKV())
	ch, cancel := s.Observe()
	defer cancel()

	_ = s.Persist(context.Background(), testIdentity(domain.RoleCommercial), "a", time.Time{})
	_ = s.Persist(context.Background(), testIdentity(domain.RoleAccountant), "b", time.Time{})

	got := <-ch
	if got == nil || got.Role != domain.RoleAccountant {
		t.Fatalf("slow subscriber should see the latest identity, got %+v", got)
	}
	select {
	case extra := <-ch:
		t.Fatalf("unexpected stale emission %+v", extra)
	default:
	}
}

func TestSessionStore_ObserveMulticast(t *testing.T) {
	s := newTestStore(t, newStubKV())
	a, cancelA := s.Observe()
	b, cancelB := s.Observe()
	defer cancelA()
	defer cancelB()
	<-a
	<-b

	_ = s.Persist(context.Background(), testIdentity(domain.RoleCommercial), "tok", time.Time{})
	if got := <-a; got == nil {
		t.Fatalf("subscriber a missed the change")
	}
	if got := <-b; got == nil {
		t.Fatalf("subscriber b missed the change")
	}

	cancelA()
	if _, ok := <-a; ok {
		t.Fatalf("channel should be closed after cancel")
	}
}

func TestSessionStore_CurrentReturnsCopy(t *testing.T) {
	s := newTestStore(t, newStubKV())
	_ = s.Persist(context.Background(), testIdentity(domain.RoleCommercial), "tok", time.Time{})

	got := s.Current()
	got.Role = domain.RoleAdministrator
	if s.Current().Role != domain.RoleCommercial {
		t.Fatalf("store state leaked through Current")
	}
}

func TestSessionStore_ReplaceTokenKeepsIdentity(t *testing.T) {
	s := newTestStore(t, newStubKV())
	id := testIdentity(domain.RoleCommercial)
	_ = s.Persist(context.Background(), id, "old", time.Time{})

	ch, cancel := s.Observe()
	defer cancel()
	<-ch

	if err := s.ReplaceToken(context.Background(), "old", "new", time.Time{}, nil); err != nil {
		t.Fatalf("replace token: %v", err)
	}
	if s.Token() != "new" || s.Current().Email != id.Email {
		t.Fatalf("unexpected state after token replace")
	}
	select {
	case v := <-ch:
		t.Fatalf("token-only replace must not emit, got %+v", v)
	default:
	}
}

func TestSessionStore_ReplaceWithoutSession(t *testing.T) {
	s := newTestStore(t, newStubKV())
	if err := s.ReplaceIdentity(context.Background(), "", testIdentity(domain.RoleCommercial)); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if err := s.ReplaceToken(context.Background(), "", "tok", time.Time{}, nil); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestSessionStore_ReplaceRejectsOtherSession(t *testing.T) {
	kv := newStubKV()
	s := newTestStore(t, kv)
	current := testIdentity(domain.RoleAccountant)
	_ = s.Persist(context.Background(), current, "tok-b", time.Time{})

	if err := s.ReplaceToken(context.Background(), "tok-a", "tok-a2", time.Time{}, nil); !errors.Is(err, domain.ErrSessionChanged) {
		t.Fatalf("expected ErrSessionChanged, got %v", err)
	}
	other := testIdentity(domain.RoleAdministrator)
	if err := s.ReplaceIdentity(context.Background(), "tok-a", other); !errors.Is(err, domain.ErrSessionChanged) {
		t.Fatalf("expected ErrSessionChanged, got %v", err)
	}
	if s.Token() != "tok-b" || s.Current().Role != domain.RoleAccountant {
		t.Fatalf("live session was modified")
	}
	if kv.data["agrocean_token"] != "tok-b" {
		t.Fatalf("stored token was modified: %v", kv.data)
	}
}

func TestExpiryHint(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if got := expiryHint("opaque", 3600, now); !got.Equal(now.Add(time.Hour)) {
		t.Fatalf("expires_in should win, got %v", got)
	}

	exp := now.Add(2 * time.Hour).Truncate(time.Second)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix()})
	signed, err := tok.SignedString([]byte("backend-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if got := expiryHint(signed, 0, now); !got.Equal(exp) {
		t.Fatalf("expected exp claim %v, got %v", exp, got)
	}

	if got := expiryHint("12|laravelsanctumtoken", 0, now); !got.IsZero() {
		t.Fatalf("opaque token should yield unknown expiry, got %v", got)
	}
}

func TestSessionKeys(t *testing.T) {
	user, token := SessionKeys("")
	if user != "agrocean_user" || token != "agrocean_token" {
		t.Fatalf("default keys: %s %s", user, token)
	}
	user, token = SessionKeys("staging")
	if user != "staging_user" || token != "staging_token" {
		t.Fatalf("namespaced keys: %s %s", user, token)
	}
}
