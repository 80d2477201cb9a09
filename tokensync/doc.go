// Package tokensync keeps an API token holder supplied with fresh tokens.
//
// The external service hands out short-lived access tokens alongside account
// sessions. Components that call the service directly hold the current token
// pair; this package bridges session state into that holder and proactively
// refreshes before expiry so requests never go out with a stale token.
//
// Refresh is best effort: failures are logged and reported, never propagated
// as panics, and concurrent callers share a single in-flight refresh.
package tokensync
