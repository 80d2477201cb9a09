// Package health exposes the operational status of a pool deployment.
//
// A Checker is any component that can report its health status. The Status
// type represents the health state: Healthy, Degraded, or Unhealthy. The
// domain checkers cover the pieces an operator cares about: StoreChecker
// (the shared account database is reachable), PoolChecker (accounts exist
// and enough are available), and BreakerChecker (circuits guarding the
// external service).
//
// Use Aggregator to combine multiple health checks into a single composite
// check:
//
//	agg := health.NewAggregator()
//	agg.Register("store", health.NewStoreChecker(store))
//	agg.Register("pool", health.NewPoolChecker(health.PoolCheckerConfig{Pool: manager}))
//	agg.Register("breakers", health.NewBreakerChecker(registry))
//
//	results := agg.CheckAll(ctx)
//	overall := agg.OverallStatus(results)
//
// The package also provides HTTP handlers for the usual probe endpoints:
//
//	mux := http.NewServeMux()
//	health.RegisterHandlers(mux, agg) // /healthz, /readyz, /health
package health
