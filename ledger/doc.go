// Package ledger defines the append-only usage log written for every lease
// outcome. Each record ties one account to one session attempt and its
// result; records are never updated or silently dropped, making the table an
// audit trail and an analytics feed.
//
// The ledger is storage-agnostic: Writer and Reader are the contracts the
// relational store implements, and pool.Manager writes through them as part
// of every release and sweep reclaim.
package ledger
