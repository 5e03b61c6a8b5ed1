package entkit

import "sync"

// =====================================
// Entity Registry
// =====================================

// Registry is the process-wide lookup from entity slug to configuration.
// It is an explicit, constructible object owned by the composition root and
// passed to the resolver and orchestrator; there is no package-level ambient
// instance. All methods are safe for concurrent use and registration is an
// atomic replace of the slug entry, so no reader ever observes a
// partially-written configuration.
type Registry struct {
	mutex   sync.RWMutex
	configs map[string]EntityConfiguration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		configs: make(map[string]EntityConfiguration),
	}
}

// Register normalizes the configuration and stores it by slug, silently
// overwriting any previous entry. Returns the normalized configuration.
func (r *Registry) Register(config EntityConfiguration) EntityConfiguration {
	config = config.Normalize()

	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.configs[config.Slug] = config
	return config
}

// Get returns the configuration for slug. The second result reports whether
// the slug is registered; Get never fails beyond that.
func (r *Registry) Get(slug string) (EntityConfiguration, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	config, ok := r.configs[slug]
	return config, ok
}

// Has reports whether slug is registered.
func (r *Registry) Has(slug string) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	_, ok := r.configs[slug]
	return ok
}

// Unregister removes the slug's configuration. Removing an unknown slug is a
// no-op.
func (r *Registry) Unregister(slug string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	delete(r.configs, slug)
}

// Slugs returns the registered slugs in unspecified order.
func (r *Registry) Slugs() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	slugs := make([]string, 0, len(r.configs))
	for slug := range r.configs {
		slugs = append(slugs, slug)
	}
	return slugs
}

// Len returns the number of registered configurations.
func (r *Registry) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.configs)
}
