package provider

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/kbukum/clipkit/errors"
)

// Registry manages named provider factories.
type Registry[T Provider, C any] struct {
	kind      string
	mu        sync.RWMutex
	factories map[string]Factory[T, C]
}

// NewRegistry creates an empty Registry. kind names the capability in errors
// and is also the configuration section, e.g. "transcription".
func NewRegistry[T Provider, C any](kind string) *Registry[T, C] {
	return &Registry[T, C]{kind: kind, factories: make(map[string]Factory[T, C])}
}

// RegisterFactory registers a named factory. A later registration under the
// same name replaces the earlier one.
func (r *Registry[T, C]) RegisterFactory(name string, factory Factory[T, C]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Create instantiates the named provider. Unknown names are configuration
// errors.
func (r *Registry[T, C]) Create(name string, cfg C) (T, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		var zero T
		return zero, errors.Configuration(r.kind+".provider",
			fmt.Sprintf("provider %q not registered (have: %s)", name, strings.Join(r.List(), ", ")))
	}
	return factory(cfg)
}

// List returns sorted names of all registered factories.
func (r *Registry[T, C]) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
