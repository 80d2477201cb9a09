// Package store implements the durable account table and usage ledger over a
// relational database. It is the single piece of state shared by all worker
// processes; everything else in the system is process-local.
//
// Two dialects are supported. Postgres uses a single claim transaction with
// FOR UPDATE SKIP LOCKED, so concurrent claimers skip contended rows instead
// of blocking. SQLite has no SKIP LOCKED, so the claim falls back to an
// optimistic compare-and-swap over the ordered candidate list: the status
// and lease columns act as the version, and the first UPDATE to land wins.
// Either way the guarantee is the same: two concurrent claims never return
// the same account.
//
// All timestamps are stored in UTC, and the current instant is always passed
// in by the caller; the store itself never reads the wall clock, which keeps
// it deterministic under a test clock.
package store
