package source

import (
	"fmt"
	"sync"
)

var (
	registry = make(map[string]Adapter)
	mu       sync.RWMutex
)

// Register adds an adapter to the registry.
func Register(a Adapter) {
	mu.Lock()
	defer mu.Unlock()
	registry[a.Name()] = a
}

// Get retrieves an adapter by platform name.
func Get(name string) (Adapter, error) {
	mu.RLock()
	defer mu.RUnlock()

	a, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown platform: %s", name)
	}
	return a, nil
}

// List returns all registered platform names.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}
