package backend

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"

	"github.com/agrocean/console/internal/core/ports"
)

// Reference data kinds served by ReferenceCache.
const (
	RefCategories = "categories"
	RefEntrepots  = "entrepots"
)

var ErrUnknownReference = errors.New("unknown reference kind")

// ReferenceCache keeps the small lookup lists (categories, warehouses) that
// every form needs. Entries expire after ttl and are dropped whenever the
// signed-in identity changes, since visibility depends on the role.
type ReferenceCache struct {
	catalog *Catalog
	lru     *expirable.LRU[string, any]
	log     zerolog.Logger
}

func NewReferenceCache(catalog *Catalog, ttl time.Duration, log zerolog.Logger) *ReferenceCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ReferenceCache{
		catalog: catalog,
		lru:     expirable.NewLRU[string, any](8, nil, ttl),
		log:     log,
	}
}

func (r *ReferenceCache) Categories(ctx context.Context) ([]Categorie, error) {
	return cached(ctx, r, RefCategories, r.catalog.Categories.ListAll)
}

func (r *ReferenceCache) Entrepots(ctx context.Context) ([]Entrepot, error) {
	return cached(ctx, r, RefEntrepots, r.catalog.Entrepots.ListAll)
}

// Lookup returns the list for kind.
func (r *ReferenceCache) Lookup(ctx context.Context, kind string) (any, error) {
	switch kind {
	case RefCategories:
		return r.Categories(ctx)
	case RefEntrepots:
		return r.Entrepots(ctx)
	default:
		return nil, ErrUnknownReference
	}
}

func (r *ReferenceCache) Purge() {
	r.lru.Purge()
}

// Watch purges the cache on every identity change until ctx ends.
func (r *ReferenceCache) Watch(ctx context.Context, identities ports.IdentityStream) {
	ch, cancel := identities.Observe()
	defer cancel()

	first := true
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-ch:
			if !ok {
				return
			}
			if first {
				first = false
				continue
			}
			r.lru.Purge()
			r.log.Debug().Msg("reference cache purged")
		}
	}
}

func cached[T any](ctx context.Context, r *ReferenceCache, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	if v, ok := r.lru.Get(key); ok {
		if items, ok := v.([]T); ok {
			return items, nil
		}
	}
	items, err := load(ctx)
	if err != nil {
		return nil, err
	}
	r.lru.Add(key, items)
	return items, nil
}
