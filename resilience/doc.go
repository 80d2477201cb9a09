// Package resilience provides the process-local guards a worker wraps around
// calls to an unstable external service.
//
// # Patterns
//
// The package provides the following resilience patterns:
//
//   - Circuit Breaker: stops calling a dependency after repeated failures
//     and probes it cautiously once a reset timeout elapses. Breakers are
//     shared by dependency name through a Registry.
//
//   - Retry: bounded retry with configurable backoff; terminal outcomes can
//     be marked non-retryable so they propagate immediately.
//
//   - Window Limiter: sliding-window admission control bounding outbound
//     call rate over a trailing interval.
//
//   - Timeout: bounds each attempt's duration.
//
// All state is in-memory and process-local. Independent worker processes
// each make their own admission decisions; nothing here is synchronized
// across processes.
//
// # Usage
//
// Each pattern can be used independently or composed together:
//
//	breakers := resilience.NewRegistry(resilience.CircuitBreakerConfig{
//	    FailureThreshold: 5,
//	    ResetTimeout:     30 * time.Second,
//	})
//
//	limiter := resilience.NewWindowLimiter(resilience.WindowLimiterConfig{
//	    MaxRequests: 10,
//	    Window:      time.Minute,
//	})
//
//	retry := resilience.NewRetry(resilience.RetryConfig{
//	    MaxAttempts:  3,
//	    InitialDelay: time.Second,
//	    Multiplier:   2.0,
//	})
//
//	executor := resilience.NewExecutor(
//	    resilience.WithRateLimiter(limiter),
//	    resilience.WithCircuitBreaker(breakers.Get("booking-site")),
//	    resilience.WithRetry(retry),
//	    resilience.WithTimeout(30*time.Second),
//	)
//
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return callExternalService(ctx)
//	})
package resilience
