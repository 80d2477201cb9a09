package pool

import "errors"

// Sentinel errors for pool operations.
var (
	// ErrNoAccountAvailable is returned when no active account is eligible
	// for a lease. It is transient: accounts leased, cooling, or quarantined
	// now may become eligible later, so callers back off and retry.
	ErrNoAccountAvailable = errors.New("pool: no account available")

	// ErrLeaseNotHeld is returned when a release finds the account no longer
	// in_use under the reported lease. The first report already applied; the
	// duplicate changes nothing and writes nothing.
	ErrLeaseNotHeld = errors.New("pool: lease not held")

	// ErrAccountNotFound is returned when an account id does not exist.
	ErrAccountNotFound = errors.New("pool: account not found")

	// ErrInvalidResult is returned when a release reports an unknown result.
	ErrInvalidResult = errors.New("pool: invalid lease result")
)
