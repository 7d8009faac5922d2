package preview

import "sync"

// Global registry instance
var defaultRegistry *Registry
var registryOnce sync.Once

// InitializeRegistry builds the global template registry on top of the given
// views engine and installs the shipped template set. Called once at startup
// after the views engine exists.
func InitializeRegistry(views Views) error {
	var err error
	registryOnce.Do(func() {
		r := NewRegistry(views)
		if err = RegisterDefaults(r); err != nil {
			return
		}
		defaultRegistry = r
	})
	return err
}

// GetRegistry returns the global template registry instance
func GetRegistry() *Registry {
	if defaultRegistry == nil {
		panic("Template registry not initialized. Call InitializeRegistry first.")
	}
	return defaultRegistry
}
