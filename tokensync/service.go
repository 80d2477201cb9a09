package tokensync

import (
	"context"
	"time"

	"github.com/coder/quartz"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/poolops/observe"
)

// ServiceConfig configures a Service.
type ServiceConfig struct {
	// Holder receives synced token pairs. Nil disables syncing; calls
	// become logged no-ops.
	Holder Holder

	// RefreshBuffer is how long before expiry a token counts as due for
	// refresh. Default: 5 minutes.
	RefreshBuffer time.Duration

	// Clock is the time source. Default: the real clock.
	Clock quartz.Clock

	// Logger receives refresh events. Default: no-op.
	Logger observe.Logger
}

// Service bridges sessions into a token Holder and refreshes them before
// they expire.
type Service struct {
	config ServiceConfig
	group  singleflight.Group
}

// NewService creates a Service with defaults applied.
func NewService(config ServiceConfig) *Service {
	if config.RefreshBuffer <= 0 {
		config.RefreshBuffer = 5 * time.Minute
	}
	if config.Clock == nil {
		config.Clock = quartz.NewReal()
	}
	if config.Logger == nil {
		config.Logger = observe.NopLogger()
	}
	return &Service{config: config}
}

// SyncFromSession copies the session's tokens into the holder. A nil holder
// or an empty access token is logged and skipped.
func (s *Service) SyncFromSession(ctx context.Context, session Session) {
	if s.config.Holder == nil {
		s.config.Logger.Warn(ctx, "token sync skipped: no holder configured")
		return
	}
	if session.AccessToken == "" {
		s.config.Logger.Warn(ctx, "token sync skipped: session has no access token")
		return
	}
	s.config.Holder.SetTokens(session.AccessToken, session.RefreshToken)
	s.config.Logger.Debug(ctx, "tokens synced to holder")
}

// ShouldRefresh reports whether the session's access token is due for
// refresh. A nil session has nothing to refresh. When the session carries no
// expiry, the access token's own exp claim is consulted; a token whose
// expiry cannot be determined at all counts as due, since refreshing is the
// safe side.
func (s *Service) ShouldRefresh(session *Session) bool {
	if session == nil {
		return false
	}

	expiresAt := session.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = expiryFromToken(session.AccessToken)
	}
	if expiresAt.IsZero() {
		return true
	}

	now := s.config.Clock.Now().UTC()
	return !now.Add(s.config.RefreshBuffer).Before(expiresAt.UTC())
}

// expiryFromToken extracts the exp claim without verifying the signature;
// only the deadline matters here, not authenticity. Returns the zero time
// when the claim is absent or unreadable.
func expiryFromToken(accessToken string) time.Time {
	if accessToken == "" {
		return time.Time{}
	}
	token, _, err := jwt.NewParser().ParseUnverified(accessToken, jwt.MapClaims{})
	if err != nil {
		return time.Time{}
	}
	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

// EnsureFresh refreshes through client when the current session is due and
// syncs the result to the holder. Concurrent callers share one in-flight
// refresh. Returns false only when a refresh was needed and failed; the
// failure is logged, never propagated.
func (s *Service) EnsureFresh(ctx context.Context, client Client) bool {
	if client == nil {
		return true
	}
	session := client.Session()
	if !s.ShouldRefresh(&session) {
		return true
	}

	result, err, _ := s.group.Do("refresh", func() (any, error) {
		fresh, err := client.Refresh(ctx)
		if err != nil {
			return Session{}, err
		}
		return fresh, nil
	})
	if err != nil {
		s.config.Logger.Warn(ctx, "token refresh failed",
			observe.Field{Key: "error", Value: err.Error()})
		return false
	}

	s.SyncFromSession(ctx, result.(Session))
	return true
}

// Run refreshes proactively on the given interval until ctx is done.
// Default interval: 1 minute.
func (s *Service) Run(ctx context.Context, client Client, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	waiter := s.config.Clock.TickerFunc(ctx, interval, func() error {
		s.EnsureFresh(ctx, client)
		return nil
	}, "token-refresh")
	return waiter.Wait()
}
