package worker

import "errors"

var (
	// ErrNoSlot means the account worked but the service had nothing to
	// offer. The account itself is healthy.
	ErrNoSlot = errors.New("worker: no slot available")

	// ErrLoginFailed means the account's credential was rejected.
	ErrLoginFailed = errors.New("worker: login failed")

	// ErrBanned means the service definitively rejected the account. It is
	// never retried.
	ErrBanned = errors.New("worker: account banned")
)
