// Package cache provides a small TTL cache.
//
// Its main consumer is secret.CachingProvider, which caches resolved account
// credentials so remote secret lookups are not repeated on every lease. The
// Cache interface has an in-memory implementation with lazy expiry; entries
// are dropped on the first read past their TTL.
package cache
