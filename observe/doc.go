// Package observe provides observability primitives for account pool
// operations.
//
// It is a pure instrumentation library: no leasing, no storage, no I/O
// beyond exporter setup. Consumers wire the observer into the pool manager,
// the worker runner, or their own middleware.
package observe
