package resilience

import "sync"

// Registry maps dependency names to shared circuit breakers so that every
// call site guarding the same dependency shares one failure state. Pass a
// Registry explicitly at construction; there is no package-level instance.
type Registry struct {
	config CircuitBreakerConfig

	mu       sync.RWMutex
	breakers map[string]*CircuitBreaker
}

// NewRegistry creates a registry whose breakers are built from config.
func NewRegistry(config CircuitBreakerConfig) *Registry {
	return &Registry{
		config:   config,
		breakers: make(map[string]*CircuitBreaker),
	}
}

// Get returns the breaker for name, creating it lazily on first use.
// Creation is double-checked so concurrent callers observe one instance.
func (r *Registry) Get(name string) *CircuitBreaker {
	r.mu.RLock()
	cb, ok := r.breakers[name]
	r.mu.RUnlock()
	if ok {
		return cb
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if cb, ok := r.breakers[name]; ok {
		return cb
	}
	cb = NewCircuitBreaker(r.config)
	r.breakers[name] = cb
	return cb
}

// Names returns the names of all breakers created so far.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.breakers))
	for name := range r.breakers {
		names = append(names, name)
	}
	return names
}

// States returns a snapshot of every breaker's current state.
func (r *Registry) States() map[string]State {
	r.mu.RLock()
	defer r.mu.RUnlock()

	states := make(map[string]State, len(r.breakers))
	for name, cb := range r.breakers {
		states[name] = cb.State()
	}
	return states
}
