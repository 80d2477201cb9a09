package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jonwraymond/poolops/pool"
)

const accountColumns = `id, credential_ref, phone, status, lease_id, leased_at,
	last_used_at, cooldown_until, quarantine_until, consecutive_failures,
	total_uses, is_active, created_at, updated_at`

// eligibleWhere matches pool.Account.Eligible: active rows that are
// available past any cooldown, or whose cooldown/quarantine window has
// already expired even if the sweep has not normalized them yet. Takes the
// current instant three times.
const eligibleWhere = `is_active AND (
	(status = 'available' AND (cooldown_until IS NULL OR cooldown_until <= ?))
	OR (status = 'cooldown' AND cooldown_until <= ?)
	OR (status = 'quarantine' AND quarantine_until <= ?)
)`

// ClaimNext atomically claims the least-recently-used eligible account.
// Rows being claimed by concurrent callers are skipped, never waited on.
func (s *Store) ClaimNext(ctx context.Context, now time.Time, leaseID uuid.UUID, criteria pool.Criteria) (*pool.Account, error) {
	if s.dialect == DialectPostgres {
		return s.claimSkipLocked(ctx, now, leaseID, criteria)
	}
	return s.claimCompareAndSwap(ctx, now, leaseID, criteria)
}

// claimSkipLocked selects and claims in one statement. FOR UPDATE SKIP
// LOCKED makes the subquery pass over rows locked by concurrent claim
// transactions, so losers keep scanning instead of blocking.
func (s *Store) claimSkipLocked(ctx context.Context, now time.Time, leaseID uuid.UUID, criteria pool.Criteria) (*pool.Account, error) {
	query := `UPDATE accounts SET
			status = 'in_use', lease_id = ?, leased_at = ?,
			cooldown_until = NULL, quarantine_until = NULL, updated_at = ?
		WHERE id = (
			SELECT id FROM accounts
			WHERE ` + eligibleWhere + excludeClause(criteria) + `
			ORDER BY last_used_at ASC NULLS FIRST, id ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + accountColumns

	args := []any{leaseID, now, now, now, now, now}
	query, args, err := expandExclude(query, args, criteria)
	if err != nil {
		return nil, err
	}

	var account pool.Account
	err = s.db.GetContext(ctx, &account, s.db.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pool.ErrNoAccountAvailable
	}
	if err != nil {
		return nil, fmt.Errorf("store: claim account: %w", err)
	}
	return &account, nil
}

// claimCompareAndSwap lists eligible candidates in LRU order and races an
// UPDATE guarded by the observed status for each; the status column acts as
// the version, so the first writer wins and later writers move on to the
// next candidate.
func (s *Store) claimCompareAndSwap(ctx context.Context, now time.Time, leaseID uuid.UUID, criteria pool.Criteria) (*pool.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts
		WHERE ` + eligibleWhere + excludeClause(criteria) + `
		ORDER BY last_used_at ASC NULLS FIRST, id ASC`

	args := []any{now, now, now}
	query, args, err := expandExclude(query, args, criteria)
	if err != nil {
		return nil, err
	}

	var candidates []pool.Account
	if err := s.db.SelectContext(ctx, &candidates, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("store: list claim candidates: %w", err)
	}

	claim := s.db.Rebind(`UPDATE accounts SET
			status = 'in_use', lease_id = ?, leased_at = ?,
			cooldown_until = NULL, quarantine_until = NULL, updated_at = ?
		WHERE id = ? AND status = ? AND lease_id IS NULL`)

	for i := range candidates {
		candidate := &candidates[i]
		res, err := s.db.ExecContext(ctx, claim, leaseID, now, now, candidate.ID, candidate.Status)
		if err != nil {
			return nil, fmt.Errorf("store: claim account: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("store: claim account: %w", err)
		}
		if affected == 0 {
			// Lost the race for this row; try the next candidate.
			continue
		}

		candidate.Status = pool.StatusInUse
		candidate.LeaseID = uuid.NullUUID{UUID: leaseID, Valid: true}
		candidate.LeasedAt = &now
		candidate.CooldownUntil = nil
		candidate.QuarantineUntil = nil
		candidate.UpdatedAt = now
		return candidate, nil
	}

	return nil, pool.ErrNoAccountAvailable
}

// excludeClause appends the NOT IN filter when the criteria excludes ids.
func excludeClause(criteria pool.Criteria) string {
	if len(criteria.Exclude) == 0 {
		return ""
	}
	return " AND id NOT IN (?)"
}

// expandExclude expands the NOT IN placeholder via sqlx.In.
func expandExclude(query string, args []any, criteria pool.Criteria) (string, []any, error) {
	if len(criteria.Exclude) == 0 {
		return query, args, nil
	}
	query, args, err := sqlx.In(query, append(args, criteria.Exclude)...)
	if err != nil {
		return "", nil, fmt.Errorf("store: expand exclude list: %w", err)
	}
	return query, args, nil
}
