package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/poolops/ledger"
	"github.com/jonwraymond/poolops/observe"
	"github.com/jonwraymond/poolops/pool"
	"github.com/jonwraymond/poolops/resilience"
	"github.com/jonwraymond/poolops/secret"
	"github.com/jonwraymond/poolops/tokensync"
)

// Operation is the unit of work one session performs with a leased account.
// credential is the resolved secret for the account; implementations must
// not log it.
type Operation func(ctx context.Context, lease *pool.Lease, credential string) error

// AcquireBackoff tunes the exponential wait while the pool has no eligible
// account.
type AcquireBackoff struct {
	// InitialInterval is the first wait. Default: 500 milliseconds.
	InitialInterval time.Duration

	// MaxInterval caps the wait between attempts. Default: 15 seconds.
	MaxInterval time.Duration

	// MaxElapsedTime bounds the total wait before the session gives up.
	// Default: 5 minutes. Zero keeps waiting until ctx is done.
	MaxElapsedTime time.Duration
}

// Config configures a Runner.
type Config struct {
	// Pool supplies account leases. Required.
	Pool *pool.Manager

	// Operation is the work each session performs. Required.
	Operation Operation

	// Credentials resolves account credential references. Nil passes the
	// raw reference through as the credential.
	Credentials *secret.Resolver

	// Limiter paces calls to the external service across all sessions.
	// Optional.
	Limiter *resilience.WindowLimiter

	// Breakers supplies the named circuit breaker guarding the service.
	// Optional.
	Breakers *resilience.Registry

	// BreakerName selects the breaker from Breakers.
	// Default: "booking-site".
	BreakerName string

	// Retry configures per-operation retries. Bans are never retried
	// regardless of RetryIf.
	Retry resilience.RetryConfig

	// CallTimeout bounds each operation attempt. Default: 30 seconds.
	CallTimeout time.Duration

	// Sessions is how many sessions one Run executes. Default: 1.
	Sessions int

	// Concurrency limits how many sessions run at once. Default: 1.
	Concurrency int

	// Tokens keeps the API token holder fresh before each session.
	// Optional, used together with TokenClient.
	Tokens *tokensync.Service

	// TokenClient refreshes sessions with the external service. Optional.
	TokenClient tokensync.Client

	// AcquireBackoff tunes the wait for an eligible account.
	AcquireBackoff AcquireBackoff

	// Logger receives session events. Default: no-op.
	Logger observe.Logger

	// Metrics receives operation telemetry. Default: no-op.
	Metrics observe.Metrics
}

// Runner executes sessions end to end.
type Runner struct {
	config   Config
	executor *resilience.Executor
}

// NewRunner creates a Runner with defaults applied.
func NewRunner(config Config) (*Runner, error) {
	if config.Pool == nil {
		return nil, errors.New("worker: pool manager is required")
	}
	if config.Operation == nil {
		return nil, errors.New("worker: operation is required")
	}
	if config.BreakerName == "" {
		config.BreakerName = "booking-site"
	}
	if config.CallTimeout <= 0 {
		config.CallTimeout = 30 * time.Second
	}
	if config.Sessions <= 0 {
		config.Sessions = 1
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 1
	}
	if config.AcquireBackoff.InitialInterval <= 0 {
		config.AcquireBackoff.InitialInterval = 500 * time.Millisecond
	}
	if config.AcquireBackoff.MaxInterval <= 0 {
		config.AcquireBackoff.MaxInterval = 15 * time.Second
	}
	if config.AcquireBackoff.MaxElapsedTime < 0 {
		config.AcquireBackoff.MaxElapsedTime = 0
	} else if config.AcquireBackoff.MaxElapsedTime == 0 {
		config.AcquireBackoff.MaxElapsedTime = 5 * time.Minute
	}
	if config.Logger == nil {
		config.Logger = observe.NopLogger()
	}
	if config.Metrics == nil {
		config.Metrics = observe.NopMetrics()
	}

	// A ban is definitive; retrying it only burns the account further.
	userRetryIf := config.Retry.RetryIf
	config.Retry.RetryIf = func(err error) bool {
		if errors.Is(err, ErrBanned) {
			return false
		}
		if userRetryIf != nil {
			return userRetryIf(err)
		}
		return err != nil
	}

	opts := []resilience.ExecutorOption{
		resilience.WithRetry(resilience.NewRetry(config.Retry)),
		resilience.WithTimeout(config.CallTimeout),
	}
	if config.Limiter != nil {
		opts = append(opts, resilience.WithRateLimiter(config.Limiter))
	}
	if config.Breakers != nil {
		breaker := config.Breakers.Get(config.BreakerName)
		name, metrics := config.BreakerName, config.Metrics
		breaker.OnStateChange(func(from, to resilience.State) {
			metrics.RecordBreakerTransition(context.Background(), name, from.String(), to.String())
		})
		opts = append(opts, resilience.WithCircuitBreaker(breaker))
	}

	return &Runner{
		config:   config,
		executor: resilience.NewExecutor(opts...),
	}, nil
}

// Run executes the configured number of sessions and waits for them all.
// The first session whose lease handling fails cancels the rest; operation
// failures are reported to the pool, not propagated.
func (r *Runner) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(r.config.Concurrency)

	for i := 1; i <= r.config.Sessions; i++ {
		session := i
		group.Go(func() error {
			return r.runSession(ctx, session)
		})
	}
	return group.Wait()
}

func (r *Runner) runSession(ctx context.Context, session int) error {
	logger := r.config.Logger.With(observe.Field{Key: "session", Value: session})

	if r.config.Tokens != nil && r.config.TokenClient != nil {
		if !r.config.Tokens.EnsureFresh(ctx, r.config.TokenClient) {
			logger.Warn(ctx, "proceeding with possibly stale token")
		}
	}

	lease, err := r.acquire(ctx)
	if err != nil {
		return fmt.Errorf("worker: session %d: %w", session, err)
	}
	logger = logger.With(
		observe.Field{Key: "account_id", Value: lease.Account.ID},
		observe.Field{Key: "lease_id", Value: lease.ID.String()},
	)

	credential, err := r.resolveCredential(ctx, lease)
	if err != nil {
		logger.Error(ctx, "credential resolution failed", observe.Field{Key: "error", Value: err.Error()})
		return r.release(ctx, lease, session, err)
	}

	start := time.Now()
	opErr := r.executor.Execute(ctx, func(ctx context.Context) error {
		return r.config.Operation(ctx, lease, credential)
	})
	r.config.Metrics.RecordOperation(ctx, observe.OpMeta{
		Op:        "session",
		AccountID: lease.Account.ID,
		LeaseID:   lease.ID.String(),
		Session:   session,
	}, time.Since(start), opErr)

	if opErr != nil {
		logger.Warn(ctx, "operation failed",
			observe.Field{Key: "result", Value: string(Classify(opErr))},
			observe.Field{Key: "error", Value: opErr.Error()})
	} else {
		logger.Info(ctx, "operation succeeded")
	}

	return r.release(ctx, lease, session, opErr)
}

// acquire claims a lease, backing off exponentially while the pool has no
// eligible account. Other acquire failures stop the wait immediately.
func (r *Runner) acquire(ctx context.Context) (*pool.Lease, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = r.config.AcquireBackoff.InitialInterval
	policy.MaxInterval = r.config.AcquireBackoff.MaxInterval
	policy.MaxElapsedTime = r.config.AcquireBackoff.MaxElapsedTime

	var lease *pool.Lease
	err := backoff.Retry(func() error {
		l, err := r.config.Pool.Acquire(ctx, pool.Criteria{})
		if err != nil {
			if errors.Is(err, pool.ErrNoAccountAvailable) {
				return err
			}
			return backoff.Permanent(err)
		}
		lease = l
		return nil
	}, backoff.WithContext(policy, ctx))
	if err != nil {
		return nil, fmt.Errorf("acquire account: %w", err)
	}
	return lease, nil
}

func (r *Runner) resolveCredential(ctx context.Context, lease *pool.Lease) (string, error) {
	if r.config.Credentials == nil {
		return lease.Account.CredentialRef, nil
	}
	credential, err := r.config.Credentials.ResolveValue(ctx, lease.Account.CredentialRef)
	if err != nil {
		return "", fmt.Errorf("resolve credential: %w", err)
	}
	return credential, nil
}

func (r *Runner) release(ctx context.Context, lease *pool.Lease, session int, opErr error) error {
	report := pool.Report{
		Result:        Classify(opErr),
		SessionNumber: session,
		Err:           opErr,
	}
	if err := r.config.Pool.Release(ctx, lease, report); err != nil {
		return fmt.Errorf("worker: session %d: release: %w", session, err)
	}
	return nil
}

// Classify maps an operation error to its ledger result. Wrapped sentinels
// are recognized through the error chain, so retry exhaustion wrapping a
// login failure still classifies as login_fail.
func Classify(err error) ledger.Result {
	switch {
	case err == nil:
		return ledger.ResultSuccess
	case errors.Is(err, ErrNoSlot):
		return ledger.ResultNoSlot
	case errors.Is(err, ErrBanned):
		return ledger.ResultBanned
	case errors.Is(err, ErrLoginFailed):
		return ledger.ResultLoginFail
	default:
		return ledger.ResultError
	}
}
