package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/agrocean/console/internal/core/domain"
)

// maxErrorBody bounds how much of a failed response is read for its message.
const maxErrorBody = 64 << 10

// Client talks JSON to the AGROCEAN REST API.
type Client struct {
	base      *url.URL
	http      *http.Client
	transport *AuthTransport
	log       zerolog.Logger
}

type Option func(*Client)

// WithTimeout bounds every request. Zero keeps the transport default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithBaseTransport replaces the underlying round tripper, mostly for tests.
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.transport.base = rt }
}

// WithObserver installs a latency hook on the transport.
func WithObserver(fn ObserveFunc) Option {
	return func(c *Client) { c.transport.SetObserver(fn) }
}

// New builds a client for baseURL, e.g. http://localhost:8000/api.
func New(baseURL string, tokens TokenSource, log zerolog.Logger, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("backend: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("backend: base url %q must be http or https", baseURL)
	}

	transport := NewAuthTransport(nil, tokens)
	c := &Client{
		base:      u,
		http:      &http.Client{Transport: transport},
		transport: transport,
		log:       log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns a copy of the API root.
func (c *Client) BaseURL() *url.URL {
	u := *c.base
	return &u
}

// Transport is the authenticated round tripper, shared with the /api proxy.
func (c *Client) Transport() *AuthTransport {
	return c.transport
}

// SetUnauthorizedHandler wires the forced-logout path.
func (c *Client) SetUnauthorizedHandler(fn UnauthorizedFunc) {
	c.transport.SetUnauthorizedHandler(fn)
}

// request describes one backend call. out, when set, receives the decoded
// body. credentials maps 401 and 422 to invalid credentials.
type request struct {
	method      string
	path        string
	query       url.Values
	body        any
	out         any
	credentials bool
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	u.RawPath = ""
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) do(ctx context.Context, r request) error {
	var body io.Reader
	if r.body != nil {
		raw, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("backend: encode %s %s: %w", r.method, r.path, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.endpoint(r.path, r.query), body)
	if err != nil {
		return fmt.Errorf("backend: build %s %s: %w", r.method, r.path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		c.log.Debug().Err(err).Str("method", r.method).Str("path", r.path).Msg("backend unreachable")
		return &domain.BackendError{Kind: domain.ErrNetwork, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp, r.credentials)
	}
	if r.out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(r.out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return malformed(err)
	}
	return nil
}

func malformed(err error) error {
	return &domain.BackendError{Kind: domain.ErrServer, Message: "malformed response: " + err.Error()}
}

// errorBody is the Laravel error envelope.
type errorBody struct {
	Message string                     `json:"message"`
	Error   string                     `json:"error"`
	Errors  map[string]json.RawMessage `json:"errors"`
}

func (b errorBody) text() string {
	if b.Message != "" {
		return b.Message
	}
	return b.Error
}

func (b errorBody) fields() map[string][]string {
	if len(b.Errors) == 0 {
		return nil
	}
	out := make(map[string][]string, len(b.Errors))
	for k, raw := range b.Errors {
		var many []string
		if err := json.Unmarshal(raw, &many); err == nil {
			out[k] = many
			continue
		}
		var one string
		if err := json.Unmarshal(raw, &one); err == nil {
			out[k] = []string{one}
		}
	}
	return out
}

func decodeError(resp *http.Response, credentials bool) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body errorBody
	_ = json.Unmarshal(raw, &body)
	msg := body.text()
	status := resp.StatusCode

	if credentials && (status == http.StatusUnauthorized || status == http.StatusUnprocessableEntity) {
		return &domain.BackendError{Kind: domain.ErrInvalidCredentials, Status: status, Message: msg}
	}

	switch {
	case status == http.StatusUnauthorized:
		return &domain.BackendError{Kind: domain.ErrSessionExpired, Status: status, Message: msg}
	case status == http.StatusForbidden:
		return &domain.BackendError{Kind: domain.ErrForbidden, Status: status, Message: msg}
	case status == http.StatusNotFound:
		return &domain.BackendError{Kind: domain.ErrNotFound, Status: status, Message: msg}
	case status == http.StatusUnprocessableEntity || status == http.StatusBadRequest:
		return &domain.ValidationError{Message: msg, Fields: body.fields()}
	default:
		return &domain.BackendError{Kind: domain.ErrServer, Status: status, Message: msg}
	}
}

// Ping checks that the backend answers at all. Any HTTP status counts as
// reachable; only transport failures are reported.
func (c *Client) Ping(ctx context.Context) error {
	ctx = withoutForceLogout(withoutToken(ctx))
	err := c.do(ctx, request{method: http.MethodGet, path: "/sanctum/csrf-cookie"})
	if errors.Is(err, domain.ErrNetwork) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
