package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Result classifies the outcome of one lease.
type Result string

const (
	// ResultSuccess means the external operation completed.
	ResultSuccess Result = "success"
	// ResultNoSlot means the account performed but the service had nothing
	// to offer; the account itself is healthy.
	ResultNoSlot Result = "no_slot"
	// ResultLoginFail means the credential failed to authenticate.
	ResultLoginFail Result = "login_fail"
	// ResultError means the operation failed for any other reason.
	ResultError Result = "error"
	// ResultBanned means the service definitively rejected the account.
	ResultBanned Result = "banned"
)

// ErrInvalidResult is returned when a record carries an unknown result.
var ErrInvalidResult = errors.New("ledger: invalid result")

// Valid reports whether r is one of the known results.
func (r Result) Valid() bool {
	switch r {
	case ResultSuccess, ResultNoSlot, ResultLoginFail, ResultError, ResultBanned:
		return true
	default:
		return false
	}
}

func (r Result) String() string {
	return string(r)
}

// Record is one appended usage entry.
type Record struct {
	ID            int64         `db:"id"`
	AccountID     int64         `db:"account_id"`
	LeaseID       uuid.NullUUID `db:"lease_id"`
	SessionNumber int           `db:"session_number"`
	RequestRef    *string       `db:"request_ref"`
	Result        Result        `db:"result"`
	ErrorMessage  *string       `db:"error_message"`
	StartedAt     time.Time     `db:"started_at"`
	CompletedAt   *time.Time    `db:"completed_at"`
	CreatedAt     time.Time     `db:"created_at"`
}

// Writer appends usage records.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines.
// - Errors: append failures must propagate; records are never dropped silently.
type Writer interface {
	AppendRecord(ctx context.Context, rec *Record) error
}

// Reader queries the usage history.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines.
// - Errors: storage errors propagate; empty results are not errors.
type Reader interface {
	// RecordsByAccount returns an account's records, newest first.
	RecordsByAccount(ctx context.Context, accountID int64, limit int) ([]Record, error)

	// RecentRecords returns the most recent records across all accounts.
	RecentRecords(ctx context.Context, limit int) ([]Record, error)

	// ResultCounts returns the number of records per result.
	ResultCounts(ctx context.Context) (map[Result]int64, error)
}
