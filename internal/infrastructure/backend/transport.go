package backend

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	xsrfCookie = "XSRF-TOKEN"
	xsrfHeader = "X-XSRF-TOKEN"
	requestID  = "X-Request-ID"
)

// TokenSource yields the bearer token of the live session, or "".
type TokenSource interface {
	Token() string
}

// ObserveFunc receives one call per backend round trip. status is 0 when the
// request never got a response.
type ObserveFunc func(method string, status int, elapsed time.Duration)

// UnauthorizedFunc is told which token the backend rejected.
type UnauthorizedFunc func(token string) bool

type ctxKey int

const (
	skipTokenKey ctxKey = iota
	skipForceLogoutKey
)

// withoutToken marks requests that must go out anonymously (CSRF bootstrap,
// login).
func withoutToken(ctx context.Context) context.Context {
	return context.WithValue(ctx, skipTokenKey, true)
}

// withoutForceLogout keeps a 401 on this request from ending the session.
func withoutForceLogout(ctx context.Context) context.Context {
	return context.WithValue(ctx, skipForceLogoutKey, true)
}

func flagged(ctx context.Context, key ctxKey) bool {
	v, _ := ctx.Value(key).(bool)
	return v
}

// AuthTransport decorates every backend request with the session's bearer
// token, the Sanctum XSRF header and a request id. It keeps the backend's
// cookies itself so the CSRF bootstrap and later calls share them.
type AuthTransport struct {
	base   http.RoundTripper
	tokens TokenSource
	jar    http.CookieJar

	mu             sync.RWMutex
	onUnauthorized UnauthorizedFunc
	observe        ObserveFunc
}

func NewAuthTransport(base http.RoundTripper, tokens TokenSource) *AuthTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	jar, _ := cookiejar.New(nil)
	return &AuthTransport{base: base, tokens: tokens, jar: jar}
}

// SetUnauthorizedHandler installs the callback run when a request that
// carried a token comes back 401.
func (t *AuthTransport) SetUnauthorizedHandler(fn UnauthorizedFunc) {
	t.mu.Lock()
	t.onUnauthorized = fn
	t.mu.Unlock()
}

// SetObserver installs a per-request latency hook.
func (t *AuthTransport) SetObserver(fn ObserveFunc) {
	t.mu.Lock()
	t.observe = fn
	t.mu.Unlock()
}

func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	out := req.Clone(ctx)

	var token string
	if !flagged(ctx, skipTokenKey) && t.tokens != nil {
		token = t.tokens.Token()
	}
	if token != "" {
		out.Header.Set("Authorization", "Bearer "+token)
	} else {
		out.Header.Del("Authorization")
	}

	for _, c := range t.jar.Cookies(out.URL) {
		out.AddCookie(c)
	}
	if xsrf := t.xsrfToken(out.URL); xsrf != "" {
		out.Header.Set(xsrfHeader, xsrf)
	}
	if out.Header.Get(requestID) == "" {
		out.Header.Set(requestID, uuid.NewString())
	}
	if out.Header.Get("Accept") == "" {
		out.Header.Set("Accept", "application/json")
	}
	out.Header.Set("X-Requested-With", "XMLHttpRequest")

	t.mu.RLock()
	observe, onUnauthorized := t.observe, t.onUnauthorized
	t.mu.RUnlock()

	start := time.Now()
	resp, err := t.base.RoundTrip(out)
	if err != nil {
		if observe != nil {
			observe(out.Method, 0, time.Since(start))
		}
		return nil, err
	}
	if observe != nil {
		observe(out.Method, resp.StatusCode, time.Since(start))
	}

	if cookies := resp.Cookies(); len(cookies) > 0 {
		t.jar.SetCookies(out.URL, cookies)
	}
	if resp.StatusCode == http.StatusUnauthorized && token != "" &&
		!flagged(ctx, skipForceLogoutKey) && onUnauthorized != nil {
		onUnauthorized(token)
	}
	return resp, nil
}

// xsrfToken returns the decoded XSRF-TOKEN cookie Laravel set, if any.
func (t *AuthTransport) xsrfToken(u *url.URL) string {
	for _, c := range t.jar.Cookies(u) {
		if c.Name != xsrfCookie {
			continue
		}
		if v, err := url.QueryUnescape(c.Value); err == nil {
			return v
		}
		return c.Value
	}
	return ""
}
