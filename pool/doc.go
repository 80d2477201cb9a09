// Package pool implements the account-leasing engine: it hands out at most
// one exclusive lease per account at a time, chosen least-recently-used among
// accounts that are active and outside their cooldown and quarantine
// windows, and stays correct when many independent worker processes share
// one database.
//
// # Model
//
// An account is always in exactly one of four states: available, in_use,
// cooldown, or quarantine. Acquire claims an available row atomically and
// stamps it with a fresh lease UUID. Release applies the outcome (success
// returns the account to availability behind a cooldown window, repeated
// failures escalate to quarantine, a ban quarantines immediately) and
// appends a usage record in the same transaction. A release only applies
// while the row is still in_use under that exact lease, so duplicate reports
// of one lease cannot double-count.
//
// Sweep normalizes time-based state: expired cooldown and quarantine windows
// flip back to available, and leases stuck in_use past the lease timeout are
// reclaimed so a crashed worker never strands an account. Eligibility is
// also evaluated at acquire time, so correctness never depends on the sweep
// running promptly.
//
// # Usage
//
//	st, err := store.OpenSQLite("accounts.db")
//	if err != nil { ... }
//	mgr, err := pool.NewManager(pool.Config{Store: st})
//	if err != nil { ... }
//
//	lease, err := mgr.Acquire(ctx, pool.Criteria{})
//	if errors.Is(err, pool.ErrNoAccountAvailable) {
//	    // back off and retry later
//	}
//
//	opErr := doExternalWork(ctx, lease.Account)
//	err = mgr.Release(ctx, lease, pool.Report{
//	    Result: ledger.ResultSuccess,
//	})
package pool
