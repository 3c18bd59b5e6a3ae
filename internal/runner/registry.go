package runner

import (
	"sync"

	"qaforge/internal/config"
	"qaforge/internal/logging"
)

// Factory builds an adapter for a framework spec.
type Factory func(spec config.FrameworkSpec, opts Options) Adapter

// Registry maps framework names to adapter factories. It is thread-safe and
// supports registration at runtime.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a registry preloaded with the built-in frameworks.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.Register("cypress", NewCypressAdapter)
	r.Register("playwright", NewPlaywrightAdapter)
	r.Register("api", NewAPIAdapter)
	return r
}

// Register adds or replaces a factory for a framework name.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
	logging.RunnerDebug("Registered adapter factory: %s", name)
}

// Has returns true if a factory is registered for the name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[name]
	return ok
}

// Create builds an adapter for the spec. Unknown frameworks get the generic
// command adapter so a custom spec still runs.
func (r *Registry) Create(spec config.FrameworkSpec, opts Options) Adapter {
	r.mu.RLock()
	f, ok := r.factories[spec.Name]
	r.mu.RUnlock()

	if !ok {
		return NewCommandAdapter(spec, opts)
	}
	return f(spec, opts)
}
