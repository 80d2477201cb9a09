package pool

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/jonwraymond/poolops/ledger"
	"github.com/jonwraymond/poolops/observe"
)

// Config configures the Manager.
type Config struct {
	// Store is the shared account table. Required.
	Store Store

	// Cooldown is the mandatory idle window after a successful use.
	// Default: 5 minutes
	Cooldown time.Duration

	// FailureCooldown is the shorter window after a failure that does not
	// reach the quarantine threshold.
	// Default: 1 minute
	FailureCooldown time.Duration

	// QuarantineThreshold is the number of consecutive failures that
	// triggers quarantine.
	// Default: 3
	QuarantineThreshold int

	// QuarantineBase is the base quarantine window; the actual window
	// scales linearly with failures past the threshold.
	// Default: 1 hour
	QuarantineBase time.Duration

	// BanQuarantine is the extended window applied on a banned outcome.
	// The account stays active pending manual review.
	// Default: 720 hours (30 days)
	BanQuarantine time.Duration

	// LeaseTimeout is how long a lease may be held before the sweep
	// reclaims it as abandoned.
	// Default: 15 minutes
	LeaseTimeout time.Duration

	// SweepInterval is how often Run sweeps.
	// Default: 30 seconds
	SweepInterval time.Duration

	// Clock is the time source. Default: the real clock.
	Clock quartz.Clock

	// Logger receives structured pool events. Default: no-op.
	Logger observe.Logger

	// Metrics receives pool metrics. Default: no-op.
	Metrics observe.Metrics
}

// Manager is the account-leasing engine. It owns every account state
// transition; workers only ever see leases and report outcomes. Many
// manager instances in independent processes may share one Store.
type Manager struct {
	config Config
}

// NewManager creates a Manager over the given store.
func NewManager(config Config) (*Manager, error) {
	if config.Store == nil {
		return nil, errors.New("pool: store is required")
	}

	// Apply defaults
	if config.Cooldown <= 0 {
		config.Cooldown = 5 * time.Minute
	}
	if config.FailureCooldown <= 0 {
		config.FailureCooldown = time.Minute
	}
	if config.QuarantineThreshold <= 0 {
		config.QuarantineThreshold = 3
	}
	if config.QuarantineBase <= 0 {
		config.QuarantineBase = time.Hour
	}
	if config.BanQuarantine <= 0 {
		config.BanQuarantine = 720 * time.Hour
	}
	if config.LeaseTimeout <= 0 {
		config.LeaseTimeout = 15 * time.Minute
	}
	if config.SweepInterval <= 0 {
		config.SweepInterval = 30 * time.Second
	}
	if config.Clock == nil {
		config.Clock = quartz.NewReal()
	}
	if config.Logger == nil {
		config.Logger = observe.NopLogger()
	}
	if config.Metrics == nil {
		config.Metrics = observe.NopMetrics()
	}

	return &Manager{config: config}, nil
}

// Acquire claims the most eligible account and returns its lease. It never
// blocks waiting for contended rows: concurrent claimers skip each other,
// and ErrNoAccountAvailable is returned as soon as nothing qualifies.
func (m *Manager) Acquire(ctx context.Context, criteria Criteria) (*Lease, error) {
	now := m.config.Clock.Now().UTC()
	leaseID := uuid.New()

	account, err := m.config.Store.ClaimNext(ctx, now, leaseID, criteria)
	if err != nil {
		if errors.Is(err, ErrNoAccountAvailable) {
			m.config.Metrics.RecordAcquireMiss(ctx)
			m.config.Logger.Debug(ctx, "no account available", observe.Field{Key: "excluded", Value: len(criteria.Exclude)})
			return nil, err
		}
		return nil, fmt.Errorf("pool: claim account: %w", err)
	}

	m.config.Logger.Info(ctx, "account leased",
		observe.Field{Key: "account_id", Value: account.ID},
		observe.Field{Key: "lease_id", Value: leaseID.String()},
	)

	return &Lease{
		ID:         leaseID,
		Account:    *account,
		AcquiredAt: now,
	}, nil
}

// Release reports a lease's outcome, applying the account transition and
// appending the usage record in one transaction. The transition applies only
// while the row is still in_use under this lease; a duplicate report returns
// ErrLeaseNotHeld and changes nothing.
func (m *Manager) Release(ctx context.Context, lease *Lease, report Report) error {
	if lease == nil {
		return errors.New("pool: lease is required")
	}
	if !report.Result.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidResult, report.Result)
	}

	now := m.config.Clock.Now().UTC()
	t := m.transitionFor(lease, report, now)

	if err := m.config.Store.FinishLease(ctx, t); err != nil {
		if errors.Is(err, ErrLeaseNotHeld) {
			m.config.Logger.Warn(ctx, "duplicate or late release ignored",
				observe.Field{Key: "account_id", Value: lease.Account.ID},
				observe.Field{Key: "lease_id", Value: lease.ID.String()},
			)
			return err
		}
		return fmt.Errorf("pool: finish lease: %w", err)
	}

	m.config.Metrics.RecordLease(ctx, report.Result.String(), now.Sub(lease.AcquiredAt))
	m.config.Logger.Info(ctx, "account released",
		observe.Field{Key: "account_id", Value: lease.Account.ID},
		observe.Field{Key: "result", Value: report.Result.String()},
		observe.Field{Key: "status", Value: t.Status.String()},
	)
	return nil
}

// transitionFor computes the end state a report produces. The failure count
// in the lease snapshot is authoritative: only the lease holder can
// transition an in_use row.
func (m *Manager) transitionFor(lease *Lease, report Report, now time.Time) Transition {
	t := Transition{
		AccountID: lease.Account.ID,
		LeaseID:   lease.ID,
		Record:    m.recordFor(lease, report, now),
	}

	switch report.Result {
	case ledger.ResultSuccess, ledger.ResultNoSlot:
		// The account performed; a no-slot outcome is the service's
		// scarcity, not the account's failure.
		until := now.Add(m.config.Cooldown)
		t.Status = StatusCooldown
		t.LastUsedAt = &now
		t.CooldownUntil = &until
		t.ConsecutiveFailures = 0
		t.IncrementUses = true

	case ledger.ResultBanned:
		failures := lease.Account.ConsecutiveFailures + 1
		until := now.Add(m.config.BanQuarantine)
		t.Status = StatusQuarantine
		t.QuarantineUntil = &until
		t.ConsecutiveFailures = failures

	default: // login_fail, error
		failures := lease.Account.ConsecutiveFailures + 1
		t.ConsecutiveFailures = failures
		if failures >= m.config.QuarantineThreshold {
			// Window scales linearly with failures past the threshold.
			scale := time.Duration(failures - m.config.QuarantineThreshold + 1)
			until := now.Add(m.config.QuarantineBase * scale)
			t.Status = StatusQuarantine
			t.QuarantineUntil = &until
		} else {
			until := now.Add(m.config.FailureCooldown)
			t.Status = StatusCooldown
			t.CooldownUntil = &until
		}
	}

	return t
}

func (m *Manager) recordFor(lease *Lease, report Report, now time.Time) *ledger.Record {
	rec := &ledger.Record{
		AccountID:     lease.Account.ID,
		LeaseID:       uuid.NullUUID{UUID: lease.ID, Valid: true},
		SessionNumber: report.SessionNumber,
		RequestRef:    report.RequestRef,
		Result:        report.Result,
		StartedAt:     lease.AcquiredAt,
		CompletedAt:   &now,
		CreatedAt:     now,
	}
	if report.Err != nil {
		msg := report.Err.Error()
		rec.ErrorMessage = &msg
	}
	return rec
}

// forcedReleaseFor builds the transition that reclaims an abandoned lease:
// the account returns to available with its failure count untouched, and the
// record charges the lease as an error.
func (m *Manager) forcedReleaseFor(account Account, now time.Time) Transition {
	msg := "lease timeout exceeded; forcibly released"
	startedAt := now
	if account.LeasedAt != nil {
		startedAt = *account.LeasedAt
	}
	return Transition{
		AccountID:           account.ID,
		LeaseID:             account.LeaseID.UUID,
		Status:              StatusAvailable,
		ConsecutiveFailures: account.ConsecutiveFailures,
		Record: &ledger.Record{
			AccountID:    account.ID,
			LeaseID:      account.LeaseID,
			Result:       ledger.ResultError,
			ErrorMessage: &msg,
			StartedAt:    startedAt,
			CompletedAt:  &now,
			CreatedAt:    now,
		},
	}
}

// SweepStats reports the transitions one sweep pass applied.
type SweepStats struct {
	CooldownExpired   int64
	QuarantineExpired int64
	LeasesReclaimed   int64
}

// Sweep normalizes time-based state: cooldown and quarantine rows whose
// window has passed flip back to available, and leases stuck in_use past the
// lease timeout are reclaimed with a forced-release ledger record. Acquire
// filters on the same timestamps, so a late sweep never admits an
// ineligible account.
func (m *Manager) Sweep(ctx context.Context) (SweepStats, error) {
	now := m.config.Clock.Now().UTC()
	var stats SweepStats

	cooldown, quarantine, err := m.config.Store.ExpireWindows(ctx, now)
	if err != nil {
		return stats, fmt.Errorf("pool: expire windows: %w", err)
	}
	stats.CooldownExpired = cooldown
	stats.QuarantineExpired = quarantine

	cutoff := now.Add(-m.config.LeaseTimeout)
	stuck, err := m.config.Store.ListExpiredLeases(ctx, cutoff)
	if err != nil {
		return stats, fmt.Errorf("pool: list expired leases: %w", err)
	}

	for _, account := range stuck {
		if !account.LeaseID.Valid {
			continue
		}

		// Each forced release goes through FinishLease so the reclaim and
		// its ledger record commit in one transaction. A row that raced a
		// late finish or another process's sweep returns ErrLeaseNotHeld
		// and is skipped: the winning report already accounted for it.
		err := m.config.Store.FinishLease(ctx, m.forcedReleaseFor(account, now))
		if errors.Is(err, ErrLeaseNotHeld) {
			continue
		}
		if err != nil {
			return stats, fmt.Errorf("pool: reclaim lease: %w", err)
		}
		stats.LeasesReclaimed++

		m.config.Logger.Warn(ctx, "lease forcibly released",
			observe.Field{Key: "account_id", Value: account.ID},
			observe.Field{Key: "leased_at", Value: account.LeasedAt},
		)
	}

	if stats.CooldownExpired > 0 || stats.QuarantineExpired > 0 || stats.LeasesReclaimed > 0 {
		m.config.Metrics.RecordSweep(ctx, stats.CooldownExpired, stats.QuarantineExpired, stats.LeasesReclaimed)
		m.config.Logger.Debug(ctx, "sweep applied transitions",
			observe.Field{Key: "cooldown_expired", Value: stats.CooldownExpired},
			observe.Field{Key: "quarantine_expired", Value: stats.QuarantineExpired},
			observe.Field{Key: "leases_reclaimed", Value: stats.LeasesReclaimed},
		)
	}

	return stats, nil
}

// Run sweeps on the configured interval until ctx is done. Sweep errors are
// logged and the loop continues; a transient storage failure must not stop
// crash recovery.
func (m *Manager) Run(ctx context.Context) error {
	waiter := m.config.Clock.TickerFunc(ctx, m.config.SweepInterval, func() error {
		if _, err := m.Sweep(ctx); err != nil {
			m.config.Logger.Error(ctx, "sweep failed", observe.Field{Key: "error", Value: err.Error()})
		}
		return nil
	}, "pool-sweep")
	return waiter.Wait()
}

// Stats returns current per-status account counts.
func (m *Manager) Stats(ctx context.Context) (Stats, error) {
	stats, err := m.config.Store.CountByStatus(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("pool: count by status: %w", err)
	}
	return stats, nil
}

// Retire soft-retires an account: it stops being leased but its usage
// history is preserved.
func (m *Manager) Retire(ctx context.Context, id int64) error {
	now := m.config.Clock.Now().UTC()
	if err := m.config.Store.SetActive(ctx, id, false, now); err != nil {
		return err
	}
	m.config.Logger.Info(ctx, "account retired", observe.Field{Key: "account_id", Value: id})
	return nil
}

// Reinstate reactivates a retired account.
func (m *Manager) Reinstate(ctx context.Context, id int64) error {
	now := m.config.Clock.Now().UTC()
	if err := m.config.Store.SetActive(ctx, id, true, now); err != nil {
		return err
	}
	m.config.Logger.Info(ctx, "account reinstated", observe.Field{Key: "account_id", Value: id})
	return nil
}
