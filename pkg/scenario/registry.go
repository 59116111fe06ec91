package scenario

import (
	"fmt"
	"sort"
	"sync"
)

// Registry manages builtin scenario presets. Factories return fresh copies
// so prompted parameter values never leak between runs.
type Registry struct {
	mu      sync.RWMutex
	presets map[string]func() *Scenario
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		presets: make(map[string]func() *Scenario),
	}
}

// Register adds a preset to the registry.
func (r *Registry) Register(name string, factory func() *Scenario) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.presets[name]; exists {
		return fmt.Errorf("scenario %s already registered", name)
	}

	r.presets[name] = factory
	return nil
}

// Get returns a fresh instance of the named preset.
func (r *Registry) Get(name string) (*Scenario, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, exists := r.presets[name]
	if !exists {
		return nil, fmt.Errorf("scenario %s not found", name)
	}

	return factory(), nil
}

// List returns all registered preset names, sorted for stable output.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.presets))
	for name := range r.presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global preset registry. Preset packages register
// themselves in init; hosts import them for the side effect.
var DefaultRegistry = NewRegistry()
