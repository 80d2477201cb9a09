package pool

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an account. All transitions are performed
// exclusively by the Manager; at most one worker holds an account in_use at
// any instant.
type Status string

const (
	// StatusAvailable means the account is eligible for leasing once any
	// cooldown window has passed.
	StatusAvailable Status = "available"
	// StatusInUse means one worker currently holds the account's lease.
	StatusInUse Status = "in_use"
	// StatusCooldown means the account is idling out a mandatory window
	// after use before it becomes eligible again.
	StatusCooldown Status = "cooldown"
	// StatusQuarantine means the account is suspended after repeated
	// failures or a ban, pending expiry or investigation.
	StatusQuarantine Status = "quarantine"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusInUse, StatusCooldown, StatusQuarantine:
		return true
	default:
		return false
	}
}

func (s Status) String() string {
	return string(s)
}

// Account is one credentialed account in the shared pool.
//
// Invariants: CooldownUntil is set iff Status is cooldown, QuarantineUntil is
// set iff Status is quarantine, and LeaseID is set iff Status is in_use.
// Accounts are retired by clearing IsActive, never hard-deleted while usage
// history references them.
type Account struct {
	ID                  int64         `db:"id"`
	CredentialRef       string        `db:"credential_ref"`
	Phone               string        `db:"phone"`
	Status              Status        `db:"status"`
	LeaseID             uuid.NullUUID `db:"lease_id"`
	LeasedAt            *time.Time    `db:"leased_at"`
	LastUsedAt          *time.Time    `db:"last_used_at"`
	CooldownUntil       *time.Time    `db:"cooldown_until"`
	QuarantineUntil     *time.Time    `db:"quarantine_until"`
	ConsecutiveFailures int           `db:"consecutive_failures"`
	TotalUses           int64         `db:"total_uses"`
	IsActive            bool          `db:"is_active"`
	CreatedAt           time.Time     `db:"created_at"`
	UpdatedAt           time.Time     `db:"updated_at"`
}

// Eligible reports whether the account could be leased at instant now.
// Cooldown and quarantine rows whose window has already passed count as
// eligible even before the sweep normalizes them: eligibility is a pure
// function of stored timestamps vs. now, so correctness never depends on
// the sweep running promptly.
func (a *Account) Eligible(now time.Time) bool {
	if !a.IsActive {
		return false
	}
	switch a.Status {
	case StatusAvailable:
		return a.CooldownUntil == nil || !a.CooldownUntil.After(now)
	case StatusCooldown:
		return a.CooldownUntil != nil && !a.CooldownUntil.After(now)
	case StatusQuarantine:
		return a.QuarantineUntil != nil && !a.QuarantineUntil.After(now)
	default:
		return false
	}
}
