package resilience

import (
	"context"
	"sync"
	"time"
)

// WindowLimiterConfig configures the sliding-window rate limiter.
type WindowLimiterConfig struct {
	// MaxRequests is the number of requests admitted per window.
	// Default: 10
	MaxRequests int

	// Window is the trailing interval over which requests are counted.
	// Default: 1 second
	Window time.Duration
}

// WindowLimiter bounds outbound call rate over a trailing interval. Acquire
// suspends the caller until admission; the limiter holds no other resource
// while a caller waits. State is process-local; independent processes make
// independent admission decisions.
type WindowLimiter struct {
	config WindowLimiterConfig

	// admit serializes admission so a full window forms an orderly queue
	// instead of a stampede when the oldest entry expires.
	admit chan struct{}

	mu         sync.Mutex
	timestamps []time.Time
}

// NewWindowLimiter creates a new sliding-window rate limiter.
func NewWindowLimiter(config WindowLimiterConfig) *WindowLimiter {
	// Apply defaults
	if config.MaxRequests <= 0 {
		config.MaxRequests = 10
	}
	if config.Window <= 0 {
		config.Window = time.Second
	}

	return &WindowLimiter{
		config: config,
		admit:  make(chan struct{}, 1),
	}
}

// Acquire blocks until the caller is admitted under the rate limit or ctx is
// done. When the window is full, the wait is the time until the oldest entry
// leaves the window.
func (wl *WindowLimiter) Acquire(ctx context.Context) error {
	select {
	case wl.admit <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-wl.admit }()

	wl.mu.Lock()
	now := time.Now()
	wl.pruneLocked(now)

	if len(wl.timestamps) >= wl.config.MaxRequests {
		wait := wl.timestamps[0].Add(wl.config.Window).Sub(now)
		wl.mu.Unlock()

		if wait > 0 {
			timer := time.NewTimer(wait)
			defer timer.Stop()
			select {
			case <-timer.C:
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		wl.mu.Lock()
		now = time.Now()
		wl.pruneLocked(now)
		if len(wl.timestamps) >= wl.config.MaxRequests {
			wl.timestamps = wl.timestamps[1:]
		}
	}

	wl.timestamps = append(wl.timestamps, now)
	wl.mu.Unlock()
	return nil
}

// Execute acquires admission and then runs the operation.
func (wl *WindowLimiter) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := wl.Acquire(ctx); err != nil {
		return err
	}
	return op(ctx)
}

// pruneLocked drops entries older than the trailing window.
func (wl *WindowLimiter) pruneLocked(now time.Time) {
	cutoff := now.Add(-wl.config.Window)
	i := 0
	for i < len(wl.timestamps) && !wl.timestamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		wl.timestamps = wl.timestamps[i:]
	}
}

// WindowStats describes current limiter occupancy.
type WindowStats struct {
	// InWindow is the number of requests inside the trailing window.
	InWindow int

	// MaxRequests and Window echo the limiter configuration.
	MaxRequests int
	Window      time.Duration
}

// Stats reports window occupancy without mutating limiter state.
func (wl *WindowLimiter) Stats() WindowStats {
	wl.mu.Lock()
	defer wl.mu.Unlock()

	cutoff := time.Now().Add(-wl.config.Window)
	inWindow := 0
	for _, ts := range wl.timestamps {
		if ts.After(cutoff) {
			inWindow++
		}
	}

	return WindowStats{
		InWindow:    inWindow,
		MaxRequests: wl.config.MaxRequests,
		Window:      wl.config.Window,
	}
}
