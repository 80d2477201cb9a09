package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jonwraymond/poolops/ledger"
)

const recordColumns = `id, account_id, lease_id, session_number, request_ref,
	result, error_message, started_at, completed_at, created_at`

// AppendRecord inserts a usage record. The record's CreatedAt must be set by
// the caller; it is the ledger's ordering key.
func (s *Store) AppendRecord(ctx context.Context, r *ledger.Record) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin append record: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := appendRecordTx(ctx, tx, r); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit append record: %w", err)
	}
	return nil
}

func appendRecordTx(ctx context.Context, tx *sqlx.Tx, r *ledger.Record) error {
	if !r.Result.Valid() {
		return fmt.Errorf("%w: %q", ledger.ErrInvalidResult, r.Result)
	}
	query := tx.Rebind(`INSERT INTO usage_records
		(account_id, lease_id, session_number, request_ref, result,
		 error_message, started_at, completed_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := tx.ExecContext(ctx, query,
		r.AccountID, r.LeaseID, r.SessionNumber, r.RequestRef, r.Result,
		r.ErrorMessage, r.StartedAt, r.CompletedAt, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("store: append record: %w", err)
	}
	return nil
}

// RecordsByAccount returns an account's usage history, newest first.
func (s *Store) RecordsByAccount(ctx context.Context, accountID int64, limit int) ([]ledger.Record, error) {
	var records []ledger.Record
	err := s.db.SelectContext(ctx, &records, s.db.Rebind(
		`SELECT `+recordColumns+` FROM usage_records
			WHERE account_id = ?
			ORDER BY created_at DESC, id DESC
			LIMIT ?`), accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("store: records by account: %w", err)
	}
	return records, nil
}

// RecentRecords returns the newest records across all accounts.
func (s *Store) RecentRecords(ctx context.Context, limit int) ([]ledger.Record, error) {
	var records []ledger.Record
	err := s.db.SelectContext(ctx, &records, s.db.Rebind(
		`SELECT `+recordColumns+` FROM usage_records
			ORDER BY created_at DESC, id DESC
			LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("store: recent records: %w", err)
	}
	return records, nil
}

// ResultCounts tallies records by result across the whole ledger.
func (s *Store) ResultCounts(ctx context.Context) (map[ledger.Result]int64, error) {
	rows, err := s.db.QueryxContext(ctx,
		`SELECT result, COUNT(*) FROM usage_records GROUP BY result`)
	if err != nil {
		return nil, fmt.Errorf("store: result counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[ledger.Result]int64)
	for rows.Next() {
		var result ledger.Result
		var count int64
		if err := rows.Scan(&result, &count); err != nil {
			return nil, fmt.Errorf("store: result counts: %w", err)
		}
		counts[result] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: result counts: %w", err)
	}
	return counts, nil
}
