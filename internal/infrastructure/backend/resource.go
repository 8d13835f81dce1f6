package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
)

// Page is Laravel's paginated envelope.
type Page[T any] struct {
	Data        []T `json:"data"`
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
}

// ListParams are the query parameters of a list call. Empty filters are not
// sent.
type ListParams struct {
	Page    int
	PerPage int
	Filters map[string]string
}

func (p ListParams) Values() url.Values {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(p.PerPage))
	}
	keys := make([]string, 0, len(p.Filters))
	for k := range p.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if val := p.Filters[k]; val != "" {
			v.Set(k, val)
		}
	}
	return v
}

// Resource is the CRUD surface shared by every backend collection.
type Resource[T any] struct {
	c    *Client
	path string
}

func NewResource[T any](c *Client, path string) *Resource[T] {
	return &Resource[T]{c: c, path: path}
}

func (r *Resource[T]) Path() string { return r.path }

func (r *Resource[T]) item(id int64) string {
	return fmt.Sprintf("%s/%d", r.path, id)
}

func (r *Resource[T]) List(ctx context.Context, p ListParams) (*Page[T], error) {
	var page Page[T]
	if err := r.c.do(ctx, request{method: http.MethodGet, path: r.path, query: p.Values(), out: &page}); err != nil {
		return nil, fmt.Errorf("list %s: %w", r.path, err)
	}
	return &page, nil
}

// ListAll reads collections the backend returns unpaginated. A paginated
// envelope is accepted too and its first page returned.
func (r *Resource[T]) ListAll(ctx context.Context) ([]T, error) {
	var raw json.RawMessage
	if err := r.c.do(ctx, request{method: http.MethodGet, path: r.path, out: &raw}); err != nil {
		return nil, fmt.Errorf("list %s: %w", r.path, err)
	}
	items, err := decodeList[T](raw)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.path, err)
	}
	return items, nil
}

func (r *Resource[T]) Get(ctx context.Context, id int64) (*T, error) {
	return r.one(ctx, http.MethodGet, r.item(id), nil)
}

func (r *Resource[T]) Create(ctx context.Context, v any) (*T, error) {
	return r.one(ctx, http.MethodPost, r.path, v)
}

func (r *Resource[T]) Update(ctx context.Context, id int64, v any) (*T, error) {
	return r.one(ctx, http.MethodPut, r.item(id), v)
}

func (r *Resource[T]) Delete(ctx context.Context, id int64) error {
	if err := r.c.do(ctx, request{method: http.MethodDelete, path: r.item(id)}); err != nil {
		return fmt.Errorf("delete %s: %w", r.item(id), err)
	}
	return nil
}

// Action posts to a nested action, e.g. /ventes/{id}/valider. body may be
// nil, in which case {} is sent.
func (r *Resource[T]) Action(ctx context.Context, id int64, action string, body, out any) error {
	if body == nil {
		body = struct{}{}
	}
	path := r.item(id) + "/" + action
	if err := r.c.do(ctx, request{method: http.MethodPost, path: path, body: body, out: out}); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Collection posts to a collection-level action, e.g. /alertes/tout-lire.
func (r *Resource[T]) Collection(ctx context.Context, action string, body, out any) error {
	if body == nil {
		body = struct{}{}
	}
	path := r.path + "/" + action
	if err := r.c.do(ctx, request{method: http.MethodPost, path: path, body: body, out: out}); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Query reads a nested GET endpoint, e.g. /stocks/verifier/peremptions.
func (r *Resource[T]) Query(ctx context.Context, sub string, query url.Values, out any) error {
	path := r.path + "/" + sub
	if err := r.c.do(ctx, request{method: http.MethodGet, path: path, query: query, out: out}); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func (r *Resource[T]) one(ctx context.Context, method, path string, body any) (*T, error) {
	var raw json.RawMessage
	if err := r.c.do(ctx, request{method: method, path: path, body: body, out: &raw}); err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	v, err := decodeOne[T](raw)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return v, nil
}

// decodeOne accepts a bare object or a {"data": {...}} wrapper.
func decodeOne[T any](raw json.RawMessage) (*T, error) {
	var v T
	if len(bytes.TrimSpace(raw)) == 0 {
		return &v, nil
	}
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err == nil {
		if d := bytes.TrimSpace(env.Data); len(d) > 0 && d[0] == '{' {
			raw = d
		}
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, malformed(err)
	}
	return &v, nil
}

// decodeList accepts a bare array or a {"data": [...]} wrapper.
func decodeList[T any](raw json.RawMessage) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '{' {
		var env struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, malformed(err)
		}
		raw = env.Data
	}
	var items []T
	if len(raw) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, malformed(err)
	}
	return items, nil
}
