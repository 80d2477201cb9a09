// Package worker runs sessions against the external service using leased
// accounts.
//
// Each session follows one control flow: ensure the API token is fresh,
// acquire an account lease (backing off while the pool is empty), resolve the
// account's credential reference, run the injected operation through the
// resilience executor, classify the outcome, and release the lease with a
// report. Sessions run concurrently under an errgroup with a configurable
// limit.
//
// The operation signals account-level outcomes with the package sentinels:
// ErrNoSlot (healthy account, nothing to book), ErrLoginFailed, and ErrBanned.
// Anything else counts as a generic error.
package worker
