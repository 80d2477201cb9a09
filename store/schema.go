package store

// schemaFor returns the bootstrap DDL for a dialect. The status and result
// columns are CHECK-constrained to the enums the pool and ledger packages
// define; usage history cascades when an account row is hard-deleted.
func schemaFor(d Dialect) []string {
	if d == DialectPostgres {
		return schemaPostgres
	}
	return schemaSQLite
}

var schemaPostgres = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id                   BIGSERIAL PRIMARY KEY,
		credential_ref       TEXT NOT NULL,
		phone                TEXT NOT NULL DEFAULT '',
		status               TEXT NOT NULL DEFAULT 'available'
			CHECK (status IN ('available', 'in_use', 'cooldown', 'quarantine')),
		lease_id             UUID,
		leased_at            TIMESTAMPTZ,
		last_used_at         TIMESTAMPTZ,
		cooldown_until       TIMESTAMPTZ,
		quarantine_until     TIMESTAMPTZ,
		consecutive_failures INTEGER NOT NULL DEFAULT 0,
		total_uses           BIGINT NOT NULL DEFAULT 0,
		is_active            BOOLEAN NOT NULL DEFAULT TRUE,
		created_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_accounts_eligibility
		ON accounts (status, last_used_at) WHERE is_active`,
	`CREATE TABLE IF NOT EXISTS usage_records (
		id             BIGSERIAL PRIMARY KEY,
		account_id     BIGINT NOT NULL REFERENCES accounts (id) ON DELETE CASCADE,
		lease_id       UUID,
		session_number INTEGER NOT NULL DEFAULT 0,
		request_ref    TEXT,
		result         TEXT NOT NULL
			CHECK (result IN ('success', 'no_slot', 'login_fail', 'error', 'banned')),
		error_message  TEXT,
		started_at     TIMESTAMPTZ NOT NULL,
		completed_at   TIMESTAMPTZ,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_usage_records_account
		ON usage_records (account_id, created_at DESC)`,
}

var schemaSQLite = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id                   INTEGER PRIMARY KEY AUTOINCREMENT,
		credential_ref       TEXT NOT NULL,
		phone                TEXT NOT NULL DEFAULT '',
		status               TEXT NOT NULL DEFAULT 'available'
			CHECK (status IN ('available', 'in_use', 'cooldown', 'quarantine')),
		lease_id             TEXT,
		leased_at            TIMESTAMP,
		last_used_at         TIMESTAMP,
		cooldown_until       TIMESTAMP,
		quarantine_until     TIMESTAMP,
		consecutive_failures INTEGER NOT NULL DEFAULT 0,
		total_uses           INTEGER NOT NULL DEFAULT 0,
		is_active            BOOLEAN NOT NULL DEFAULT 1,
		created_at           TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at           TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_accounts_eligibility
		ON accounts (status, last_used_at)`,
	`CREATE TABLE IF NOT EXISTS usage_records (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		account_id     INTEGER NOT NULL REFERENCES accounts (id) ON DELETE CASCADE,
		lease_id       TEXT,
		session_number INTEGER NOT NULL DEFAULT 0,
		request_ref    TEXT,
		result         TEXT NOT NULL
			CHECK (result IN ('success', 'no_slot', 'login_fail', 'error', 'banned')),
		error_message  TEXT,
		started_at     TIMESTAMP NOT NULL,
		completed_at   TIMESTAMP,
		created_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_usage_records_account
		ON usage_records (account_id, created_at DESC)`,
}
