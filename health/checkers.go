package health

import (
	"context"
	"fmt"

	"github.com/jonwraymond/poolops/pool"
	"github.com/jonwraymond/poolops/resilience"
)

// Pinger is anything that can verify its backing connection, typically the
// account store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StoreChecker reports whether the shared account database is reachable.
type StoreChecker struct {
	pinger Pinger
}

// NewStoreChecker creates a StoreChecker over p.
func NewStoreChecker(p Pinger) *StoreChecker {
	return &StoreChecker{pinger: p}
}

// Name returns "store".
func (c *StoreChecker) Name() string {
	return "store"
}

// Check pings the database.
func (c *StoreChecker) Check(ctx context.Context) Result {
	if c.pinger == nil {
		return Unhealthy("no store configured", ErrCheckFailed)
	}
	if err := c.pinger.Ping(ctx); err != nil {
		return Unhealthy("database unreachable", err)
	}
	return Healthy("database reachable")
}

// StatsSource supplies current pool occupancy, typically *pool.Manager.
type StatsSource interface {
	Stats(ctx context.Context) (pool.Stats, error)
}

// PoolCheckerConfig configures a PoolChecker.
type PoolCheckerConfig struct {
	// Pool supplies occupancy counts. Required.
	Pool StatsSource

	// AvailableFloor is the number of available accounts below which the
	// pool counts as degraded. Default: 1.
	AvailableFloor int64
}

// PoolChecker reports on account pool capacity: unhealthy when no active
// account exists or everything active is quarantined, degraded when the
// number of available accounts falls below the floor.
type PoolChecker struct {
	config PoolCheckerConfig
}

// NewPoolChecker creates a PoolChecker.
func NewPoolChecker(config PoolCheckerConfig) *PoolChecker {
	if config.AvailableFloor <= 0 {
		config.AvailableFloor = 1
	}
	return &PoolChecker{config: config}
}

// Name returns "pool".
func (c *PoolChecker) Name() string {
	return "pool"
}

// Check inspects the pool's per-status counts.
func (c *PoolChecker) Check(ctx context.Context) Result {
	if c.config.Pool == nil {
		return Unhealthy("no pool configured", ErrCheckFailed)
	}
	stats, err := c.config.Pool.Stats(ctx)
	if err != nil {
		return Unhealthy("pool stats unavailable", err)
	}

	details := map[string]any{
		"available":  stats.Available,
		"in_use":     stats.InUse,
		"cooldown":   stats.Cooldown,
		"quarantine": stats.Quarantine,
		"inactive":   stats.Inactive,
	}

	active := stats.Available + stats.InUse + stats.Cooldown + stats.Quarantine
	switch {
	case active == 0:
		return Unhealthy("no active accounts in pool", ErrCheckFailed).WithDetails(details)
	case stats.Quarantine == active:
		return Unhealthy("all active accounts quarantined", ErrCheckFailed).WithDetails(details)
	case stats.Available < c.config.AvailableFloor:
		return Degraded(fmt.Sprintf("available accounts below floor: %d < %d",
			stats.Available, c.config.AvailableFloor)).WithDetails(details)
	default:
		return Healthy(fmt.Sprintf("%d of %d accounts available", stats.Available, active)).
			WithDetails(details)
	}
}

// BreakerChecker reports on the circuit breakers guarding the external
// service: degraded while any circuit is open or probing, unhealthy when
// every circuit is open.
type BreakerChecker struct {
	registry *resilience.Registry
}

// NewBreakerChecker creates a BreakerChecker over the registry.
func NewBreakerChecker(registry *resilience.Registry) *BreakerChecker {
	return &BreakerChecker{registry: registry}
}

// Name returns "breakers".
func (c *BreakerChecker) Name() string {
	return "breakers"
}

// Check inspects every registered breaker's state.
func (c *BreakerChecker) Check(ctx context.Context) Result {
	if c.registry == nil {
		return Unhealthy("no breaker registry configured", ErrCheckFailed)
	}

	states := c.registry.States()
	if len(states) == 0 {
		return Healthy("no circuits registered")
	}

	details := make(map[string]any, len(states))
	open := 0
	notClosed := 0
	for name, state := range states {
		details[name] = state.String()
		if state != resilience.StateClosed {
			notClosed++
		}
		if state == resilience.StateOpen {
			open++
		}
	}

	switch {
	case open == len(states):
		return Unhealthy("all circuits open", ErrCheckFailed).WithDetails(details)
	case notClosed > 0:
		return Degraded(fmt.Sprintf("%d of %d circuits not closed", notClosed, len(states))).
			WithDetails(details)
	default:
		return Healthy("all circuits closed").WithDetails(details)
	}
}
