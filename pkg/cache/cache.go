// Package cache stores parsed hypergraphs, decompositions and rendered
// artifacts under content-derived keys.
//
// Backends implement [Cache]: [FileCache] for the CLI, [RedisCache] for the
// HTTP server and [NullCache] when caching is disabled. A [Keyer] derives
// the keys, so the same inputs map to the same entry across backends.
package cache

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/htdecomp/pkg/observability"
)

// Time-to-live of each entry kind. Decompositions are deterministic for
// fixed options, so they may live long.
const (
	TTLGraph    = 7 * 24 * time.Hour
	TTLDecomp   = 30 * 24 * time.Hour
	TTLArtifact = 30 * 24 * time.Hour
)

// Cache is a byte-oriented key-value store with expiry.
type Cache interface {
	// Get returns the value under key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop all of their entries.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Observed wraps c so that every lookup and write is reported to hooks. The
// key type reported is the key prefix before the first colon.
func Observed(c Cache, hooks observability.CacheHooks) Cache {
	if hooks == nil {
		hooks = observability.Cache()
	}
	return &observed{Cache: c, hooks: hooks}
}

type observed struct {
	Cache
	hooks observability.CacheHooks
}

func (o *observed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := o.Cache.Get(ctx, key)
	if err == nil {
		if hit {
			o.hooks.OnCacheHit(ctx, keyType(key))
		} else {
			o.hooks.OnCacheMiss(ctx, keyType(key))
		}
	}
	return data, hit, err
}

func (o *observed) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := o.Cache.Set(ctx, key, data, ttl)
	if err == nil {
		o.hooks.OnCacheSet(ctx, keyType(key), len(data))
	}
	return err
}

func (o *observed) Clear(ctx context.Context) error {
	if c, ok := o.Cache.(Clearer); ok {
		return c.Clear(ctx)
	}
	return nil
}

func keyType(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return "unknown"
}
