package tokensync

import (
	"context"
	"time"
)

// Session is one token pair issued by the external service.
type Session struct {
	// AccessToken authenticates API calls.
	AccessToken string

	// RefreshToken redeems a new pair when the access token expires.
	RefreshToken string

	// ExpiresAt is when the access token lapses. Zero means unknown; the
	// service then falls back to the token's own exp claim.
	ExpiresAt time.Time
}

// Client obtains sessions from the external service.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: Refresh must honor cancellation/deadlines.
// - Errors: Refresh failures propagate; Session never fails, returning the
//   zero Session when no session exists yet.
type Client interface {
	// Session returns the current session.
	Session() Session

	// Refresh redeems the refresh token for a new session.
	Refresh(ctx context.Context) (Session, error)
}

// Holder receives the current token pair, typically an API client that
// stamps the access token on outgoing requests.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: SetTokens must not fail; holders that cannot apply tokens
//   should ignore them.
type Holder interface {
	SetTokens(access, refresh string)
}
