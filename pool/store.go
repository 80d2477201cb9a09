package pool

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jonwraymond/poolops/ledger"
)

// Criteria narrows which accounts an acquire will consider.
type Criteria struct {
	// Exclude lists account ids the caller will not accept, typically
	// accounts it already failed on during this session.
	Exclude []int64
}

// Lease is one worker's exclusive claim on one account.
type Lease struct {
	// ID is the lease token stamped on the row; a release applies only
	// while the row still carries it.
	ID uuid.UUID

	// Account is a snapshot of the row as claimed.
	Account Account

	// AcquiredAt is when the claim committed; it becomes the usage
	// record's started_at.
	AcquiredAt time.Time
}

// Report describes the outcome of one lease, supplied by the worker at
// release time.
type Report struct {
	// Result classifies the outcome and selects the release branch.
	Result ledger.Result

	// SessionNumber identifies the worker session for the usage record.
	SessionNumber int

	// RequestRef optionally references the external request row.
	RequestRef *string

	// Err is the underlying error for failed outcomes; its message is
	// recorded in the ledger.
	Err error
}

// Transition is the computed end state a release or reclaim applies to an
// account. The manager owns the policy; the store applies the transition
// verbatim, guarded by (account id, lease id, status=in_use).
type Transition struct {
	AccountID int64
	LeaseID   uuid.UUID

	Status              Status
	LastUsedAt          *time.Time
	CooldownUntil       *time.Time
	QuarantineUntil     *time.Time
	ConsecutiveFailures int
	IncrementUses       bool

	// Record is appended in the same transaction as the transition.
	Record *ledger.Record
}

// Stats counts accounts per status for operational visibility.
type Stats struct {
	Available  int64
	InUse      int64
	Cooldown   int64
	Quarantine int64
	Inactive   int64
}

// Total returns the number of accounts across all statuses.
func (s Stats) Total() int64 {
	return s.Available + s.InUse + s.Cooldown + s.Quarantine + s.Inactive
}

// Store is the durable account table the manager coordinates through. It is
// the single source of truth shared by all worker processes; every method
// must be atomic with respect to concurrent callers in other processes.
//
// Contract:
// - Concurrency: safe for concurrent use within and across processes.
// - Context: all methods honor cancellation/deadlines.
// - Errors: storage errors propagate; a claim is never reported unconfirmed.
type Store interface {
	// ClaimNext atomically claims the most eligible account per
	// Account.Eligible at now, ordered by earliest last_used_at (null
	// first) with ties broken by id ascending. Rows claimed by concurrent
	// callers are skipped, never waited on. Returns ErrNoAccountAvailable
	// when nothing qualifies.
	ClaimNext(ctx context.Context, now time.Time, leaseID uuid.UUID, criteria Criteria) (*Account, error)

	// FinishLease applies t and appends t.Record in one transaction,
	// provided the row is still in_use under t.LeaseID. Returns
	// ErrLeaseNotHeld otherwise, applying and writing nothing.
	FinishLease(ctx context.Context, t Transition) error

	// ExpireWindows returns cooldown and quarantine rows whose window has
	// passed to available.
	ExpireWindows(ctx context.Context, now time.Time) (cooldown, quarantine int64, err error)

	// ListExpiredLeases returns rows stuck in_use since before cutoff, in
	// id order. The sweep force-finishes each through FinishLease so the
	// release and its ledger record stay atomic.
	ListExpiredLeases(ctx context.Context, cutoff time.Time) ([]Account, error)

	// CountByStatus returns current per-status counts.
	CountByStatus(ctx context.Context) (Stats, error)

	// SetActive flips an account's is_active flag. Returns
	// ErrAccountNotFound for unknown ids.
	SetActive(ctx context.Context, id int64, active bool, now time.Time) error
}
