package secret

import (
	"context"
	"time"

	"github.com/jonwraymond/poolops/cache"
)

// CachingProvider decorates a Provider with a TTL cache so repeated leases
// of the same account do not hit the backing secret source every time.
type CachingProvider struct {
	inner Provider
	cache cache.Cache
	ttl   time.Duration
}

// NewCachingProvider wraps inner with c. A ttl of zero disables caching and
// every Resolve falls through.
func NewCachingProvider(inner Provider, c cache.Cache, ttl time.Duration) *CachingProvider {
	return &CachingProvider{inner: inner, cache: c, ttl: ttl}
}

// Name returns the wrapped provider's name; the decoration is transparent
// to credref parsing.
func (p *CachingProvider) Name() string { return p.inner.Name() }

// Resolve returns the cached value when present, otherwise resolves through
// the wrapped provider and caches the result. Cache errors are ignored: a
// failed Set only costs a future lookup.
func (p *CachingProvider) Resolve(ctx context.Context, ref string) (string, error) {
	key := "cred:" + p.inner.Name() + ":" + ref
	if err := cache.ValidateKey(key); err != nil {
		return p.inner.Resolve(ctx, ref)
	}

	if cached, ok := p.cache.Get(ctx, key); ok {
		return string(cached), nil
	}

	resolved, err := p.inner.Resolve(ctx, ref)
	if err != nil {
		return "", err
	}
	_ = p.cache.Set(ctx, key, []byte(resolved), p.ttl)
	return resolved, nil
}

// Close closes the wrapped provider.
func (p *CachingProvider) Close() error { return p.inner.Close() }
