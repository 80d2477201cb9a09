package resilience

import (
	"sync"
	"testing"
	"time"
)

func TestRegistry_GetSharesInstance(t *testing.T) {
	reg := NewRegistry(CircuitBreakerConfig{FailureThreshold: 2})

	a := reg.Get("booking-site")
	b := reg.Get("booking-site")

	if a != b {
		t.Error("Get() returned different instances for the same name")
	}

	// Failures recorded via one handle are visible through the other.
	a.RecordFailure()
	a.RecordFailure()

	if b.State() != StateOpen {
		t.Errorf("Shared breaker state = %v, want open", b.State())
	}
}

func TestRegistry_GetDistinctNames(t *testing.T) {
	reg := NewRegistry(CircuitBreakerConfig{FailureThreshold: 1, ResetTimeout: time.Hour})

	reg.Get("upstream-a").RecordFailure()

	if reg.Get("upstream-a").State() != StateOpen {
		t.Errorf("upstream-a state = %v, want open", reg.Get("upstream-a").State())
	}
	if reg.Get("upstream-b").State() != StateClosed {
		t.Errorf("upstream-b state = %v, want closed", reg.Get("upstream-b").State())
	}
}

func TestRegistry_ConcurrentGet(t *testing.T) {
	reg := NewRegistry(CircuitBreakerConfig{})

	const goroutines = 50
	results := make([]*CircuitBreaker, goroutines)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = reg.Get("shared")
		}(i)
	}
	wg.Wait()

	for i := 1; i < goroutines; i++ {
		if results[i] != results[0] {
			t.Fatalf("Goroutine %d got a different breaker instance", i)
		}
	}
}

func TestRegistry_Names(t *testing.T) {
	reg := NewRegistry(CircuitBreakerConfig{})

	reg.Get("a")
	reg.Get("b")
	reg.Get("a")

	names := reg.Names()
	if len(names) != 2 {
		t.Errorf("Names() returned %d names, want 2", len(names))
	}
}

func TestRegistry_States(t *testing.T) {
	reg := NewRegistry(CircuitBreakerConfig{FailureThreshold: 1, ResetTimeout: time.Hour})

	reg.Get("healthy")
	reg.Get("broken").RecordFailure()

	states := reg.States()

	if states["healthy"] != StateClosed {
		t.Errorf("states[healthy] = %v, want closed", states["healthy"])
	}
	if states["broken"] != StateOpen {
		t.Errorf("states[broken] = %v, want open", states["broken"])
	}
}
