package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrocean/console/internal/api/handler"
	"github.com/agrocean/console/internal/core/domain"
	"github.com/agrocean/console/internal/core/service"
	"github.com/agrocean/console/internal/infrastructure/backend"
	"github.com/agrocean/console/internal/infrastructure/storage"
)

// upstream is a stand-in for the AGROCEAN API with a single Commercial user.
type upstream struct {
	mu       sync.Mutex
	lastAuth string
	hits     map[string]int
}

func (u *upstream) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/sanctum/csrf-cookie", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "XSRF-TOKEN", Value: "x", Path: "/"})
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body struct{ Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Identifiants invalides"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"tok-1","expires_in":3600,"user":{"id":3,"nom":"Sy","prenom":"Fatou","email":"fatou@agrocean.sn","role":"Commercial","is_active":true}}`))
	})
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		u.mu.Lock()
		u.lastAuth = r.Header.Get("Authorization")
		u.hits[r.URL.Path]++
		u.mu.Unlock()
		if r.URL.Path == "/api/ventes" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Unauthenticated."}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":1,"nom":"Marché Kermel"}]}`))
	})
	return mux
}

func newTestRouter(t *testing.T) (*echo.Echo, *upstream, *service.SessionStore) {
	t.Helper()
	log := zerolog.Nop()
	up := &upstream{hits: map[string]int{}}
	srv := httptest.NewServer(up.handler())
	t.Cleanup(srv.Close)

	store, err := service.NewSessionStore(context.Background(), storage.NewMemoryStore(), "test", log)
	require.NoError(t, err)

	client, err := backend.New(srv.URL+"/api", store, log, backend.WithTimeout(2*time.Second))
	require.NoError(t, err)
	catalog := backend.NewCatalog(client)
	hub := handler.NewHub(log)
	t.Cleanup(hub.Close)

	gateway := service.NewAuthGateway(backend.NewAuthAPI(client), store, hub, log)
	client.SetUnauthorizedHandler(gateway.ForceLogout)

	guard := service.NewRouteGuard(store, log)
	menu, err := service.NewMenuBuilder(domain.MenuSections)
	require.NoError(t, err)

	e := NewRouter(Deps{
		Log:        log,
		Identities: store,
		Guard:      guard,
		Auth:       handler.NewAuthHandler(gateway, guard),
		Session:    handler.NewSessionHandler(store, guard, menu, service.NewDashboardService(catalog, log)),
		Hub:        hub,
		Proxy:      handler.NewProxyHandler("/api", client.BaseURL(), client.Transport()),
		UI:         handler.NewUIHandler(catalog.Demandes, catalog, catalog.Produits, backend.NewReferenceCache(catalog, time.Minute, log)),
		Pages:      handler.NewPageHandler("", store),
		Readiness:  handler.NewReadinessHandler(map[string]handler.Checker{"backend": client.Ping}),
		Registry:   prometheus.NewRegistry(),
	})
	return e, up, store
}

func serve(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, e *echo.Echo, returnURL string) map[string]any {
	t.Helper()
	rec := serve(e, http.MethodPost, "/session/login",
		`{"email":"fatou@agrocean.sn","password":"secret","return_url":"`+returnURL+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestRouter_AnonymousAccess(t *testing.T) {
	e, up, _ := newTestRouter(t)

	rec := serve(e, http.MethodGet, "/ventes/create", "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?returnUrl=%2Fventes%2Fcreate", rec.Header().Get(echo.HeaderLocation))

	rec = serve(e, http.MethodGet, "/login", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(e, http.MethodGet, "/session/menu", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redirect":"/login"`)

	rec = serve(e, http.MethodGet, "/api/clients", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, up.hits["/api/clients"])

	rec = serve(e, http.MethodGet, "/session", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_LoginResumesRememberedPage(t *testing.T) {
	e, _, _ := newTestRouter(t)

	serve(e, http.MethodGet, "/ventes/create", "")
	resp := login(t, e, "")
	assert.Equal(t, "/ventes/create", resp["redirect"])

	resp = login(t, e, "")
	assert.Equal(t, domain.HomePath, resp["redirect"], "remembered target is used once")
}

func TestRouter_WrongPassword(t *testing.T) {
	e, _, store := newTestRouter(t)

	rec := serve(e, http.MethodPost, "/session/login", `{"email":"fatou@agrocean.sn","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, store.Current())
}

func TestRouter_RoleChecks(t *testing.T) {
	e, up, _ := newTestRouter(t)
	login(t, e, "")

	rec := serve(e, http.MethodGet, "/api/clients?page=1", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Kermel")
	up.mu.Lock()
	assert.Equal(t, "Bearer tok-1", up.lastAuth)
	up.mu.Unlock()

	rec = serve(e, http.MethodGet, "/api/stocks", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Zero(t, up.hits["/api/stocks"])

	rec = serve(e, http.MethodGet, "/stocks", "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, domain.HomePath, rec.Header().Get(echo.HeaderLocation))

	rec = serve(e, http.MethodGet, "/clients/12", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"title":"Clients"`)

	rec = serve(e, http.MethodGet, "/ui/supply-requests/1", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_BackendRejectionEndsSession(t *testing.T) {
	e, _, store := newTestRouter(t)
	login(t, e, "")
	require.NotNil(t, store.Current())

	rec := serve(e, http.MethodGet, "/api/ventes", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, store.Current())
	assert.Empty(t, store.Token())

	rec = serve(e, http.MethodGet, "/dashboard", "")
	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestRouter_Logout(t *testing.T) {
	e, _, store := newTestRouter(t)
	login(t, e, "")

	rec := serve(e, http.MethodPost, "/session/logout", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, store.Current())
}

func TestRouter_Operational(t *testing.T) {
	e, _, _ := newTestRouter(t)

	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/health/ready", "").Code)

	rec := serve(e, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "console_requests_total")
}
