package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jonwraymond/poolops/pool"
)

// FinishLease applies a computed transition and appends its usage record in
// one transaction, guarded by (id, lease_id, status='in_use'). A row that no
// longer matches means the lease was already finished or reclaimed; nothing
// is applied and pool.ErrLeaseNotHeld is returned.
func (s *Store) FinishLease(ctx context.Context, t pool.Transition) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin finish lease: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	update := tx.Rebind(`UPDATE accounts SET
			status = ?, lease_id = NULL, leased_at = NULL,
			last_used_at = COALESCE(?, last_used_at),
			cooldown_until = ?, quarantine_until = ?,
			consecutive_failures = ?,
			total_uses = total_uses + ?,
			updated_at = ?
		WHERE id = ? AND lease_id = ? AND status = 'in_use'`)

	uses := 0
	if t.IncrementUses {
		uses = 1
	}
	updatedAt := time.Now().UTC()
	if t.Record != nil && t.Record.CompletedAt != nil {
		updatedAt = *t.Record.CompletedAt
	}

	res, err := tx.ExecContext(ctx, update,
		t.Status, t.LastUsedAt, t.CooldownUntil, t.QuarantineUntil,
		t.ConsecutiveFailures, uses, updatedAt,
		t.AccountID, t.LeaseID,
	)
	if err != nil {
		return fmt.Errorf("store: finish lease: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: finish lease: %w", err)
	}
	if affected == 0 {
		return pool.ErrLeaseNotHeld
	}

	if t.Record != nil {
		if err := appendRecordTx(ctx, tx, t.Record); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit finish lease: %w", err)
	}
	return nil
}

// ExpireWindows returns cooldown and quarantine rows whose window has passed
// to available, clearing the spent window.
func (s *Store) ExpireWindows(ctx context.Context, now time.Time) (cooldown, quarantine int64, err error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(
		`UPDATE accounts SET status = 'available', cooldown_until = NULL, updated_at = ?
			WHERE status = 'cooldown' AND cooldown_until <= ?`), now, now)
	if err != nil {
		return 0, 0, fmt.Errorf("store: expire cooldowns: %w", err)
	}
	cooldown, err = res.RowsAffected()
	if err != nil {
		return 0, 0, fmt.Errorf("store: expire cooldowns: %w", err)
	}

	res, err = s.db.ExecContext(ctx, s.db.Rebind(
		`UPDATE accounts SET status = 'available', quarantine_until = NULL, updated_at = ?
			WHERE status = 'quarantine' AND quarantine_until <= ?`), now, now)
	if err != nil {
		return cooldown, 0, fmt.Errorf("store: expire quarantines: %w", err)
	}
	quarantine, err = res.RowsAffected()
	if err != nil {
		return cooldown, 0, fmt.Errorf("store: expire quarantines: %w", err)
	}

	return cooldown, quarantine, nil
}

// ListExpiredLeases returns rows stuck in_use since before cutoff, in id
// order. Rows are snapshots: the caller releases each through FinishLease,
// whose lease guard makes racing a concurrent finish harmless.
func (s *Store) ListExpiredLeases(ctx context.Context, cutoff time.Time) ([]pool.Account, error) {
	var stuck []pool.Account
	query := s.db.Rebind(`SELECT ` + accountColumns + ` FROM accounts
		WHERE status = 'in_use' AND leased_at IS NOT NULL AND leased_at <= ?
		ORDER BY id ASC`)
	if err := s.db.SelectContext(ctx, &stuck, query, cutoff); err != nil {
		return nil, fmt.Errorf("store: list expired leases: %w", err)
	}
	return stuck, nil
}

// CountByStatus returns per-status counts of active accounts plus the
// number of retired ones.
func (s *Store) CountByStatus(ctx context.Context) (pool.Stats, error) {
	var stats pool.Stats

	rows, err := s.db.QueryxContext(ctx,
		`SELECT status, COUNT(*) FROM accounts WHERE is_active GROUP BY status`)
	if err != nil {
		return stats, fmt.Errorf("store: count by status: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status pool.Status
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return stats, fmt.Errorf("store: count by status: %w", err)
		}
		switch status {
		case pool.StatusAvailable:
			stats.Available = count
		case pool.StatusInUse:
			stats.InUse = count
		case pool.StatusCooldown:
			stats.Cooldown = count
		case pool.StatusQuarantine:
			stats.Quarantine = count
		}
	}
	if err := rows.Err(); err != nil {
		return stats, fmt.Errorf("store: count by status: %w", err)
	}

	err = s.db.GetContext(ctx, &stats.Inactive,
		`SELECT COUNT(*) FROM accounts WHERE NOT is_active`)
	if err != nil {
		return stats, fmt.Errorf("store: count inactive: %w", err)
	}

	return stats, nil
}

// SetActive flips an account's is_active flag.
func (s *Store) SetActive(ctx context.Context, id int64, active bool, now time.Time) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(
		`UPDATE accounts SET is_active = ?, updated_at = ? WHERE id = ?`), active, now, id)
	if err != nil {
		return fmt.Errorf("store: set active: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: set active: %w", err)
	}
	if affected == 0 {
		return pool.ErrAccountNotFound
	}
	return nil
}

// CreateAccount provisions a new available account.
func (s *Store) CreateAccount(ctx context.Context, credentialRef, phone string, now time.Time) (*pool.Account, error) {
	if s.dialect == DialectPostgres {
		var id int64
		err := s.db.GetContext(ctx, &id, s.db.Rebind(
			`INSERT INTO accounts (credential_ref, phone, created_at, updated_at)
				VALUES (?, ?, ?, ?) RETURNING id`),
			credentialRef, phone, now, now)
		if err != nil {
			return nil, fmt.Errorf("store: create account: %w", err)
		}
		return s.GetAccount(ctx, id)
	}

	res, err := s.db.ExecContext(ctx, s.db.Rebind(
		`INSERT INTO accounts (credential_ref, phone, created_at, updated_at)
			VALUES (?, ?, ?, ?)`),
		credentialRef, phone, now, now)
	if err != nil {
		return nil, fmt.Errorf("store: create account: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("store: create account: %w", err)
	}
	return s.GetAccount(ctx, id)
}

// GetAccount fetches one account by id.
func (s *Store) GetAccount(ctx context.Context, id int64) (*pool.Account, error) {
	var account pool.Account
	err := s.db.GetContext(ctx, &account, s.db.Rebind(
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pool.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get account: %w", err)
	}
	return &account, nil
}

// ListAccounts returns all accounts ordered by id, including retired ones.
func (s *Store) ListAccounts(ctx context.Context) ([]pool.Account, error) {
	var accounts []pool.Account
	err := s.db.SelectContext(ctx, &accounts,
		`SELECT `+accountColumns+` FROM accounts ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("store: list accounts: %w", err)
	}
	return accounts, nil
}
