// Package registry tracks the platform adapters available to the
// application. The registry is constructed once by the composition root
// and passed to whatever needs adapter lookup; there is no package-level
// state.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/setka-project/medusa/internal/publish"
)

// ErrRegistry is the base error for registry failures.
var ErrRegistry = errors.New("registry error")

// ErrPlatformNotFound indicates a lookup for an unregistered platform.
var ErrPlatformNotFound = fmt.Errorf("%w: platform not found", ErrRegistry)

// ErrPlatformExists indicates a duplicate registration.
var ErrPlatformExists = fmt.Errorf("%w: platform already registered", ErrRegistry)

// Registry maps platform names to their adapters.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]publish.Adapter
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		adapters: make(map[string]publish.Adapter),
	}
}

// Register adds an adapter under its platform name. Names are
// case-insensitive; duplicates fail.
func (r *Registry) Register(adapter publish.Adapter) error {
	if adapter == nil {
		return fmt.Errorf("%w: adapter must not be nil", ErrRegistry)
	}

	name := normalize(adapter.Platform())
	if name == "" {
		return fmt.Errorf("%w: adapter has an empty platform name", ErrRegistry)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.adapters[name]; exists {
		return fmt.Errorf("%w: %s", ErrPlatformExists, name)
	}

	r.adapters[name] = adapter
	return nil
}

// Get returns the adapter for a platform name.
func (r *Registry) Get(platform string) (publish.Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	adapter, exists := r.adapters[normalize(platform)]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrPlatformNotFound, platform)
	}
	return adapter, nil
}

// Unregister removes a platform, reporting whether it was present.
func (r *Registry) Unregister(platform string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := normalize(platform)
	if _, exists := r.adapters[name]; !exists {
		return false
	}
	delete(r.adapters, name)
	return true
}

// CapabilityReporter is optionally implemented by adapters that support
// only a subset of content kinds.
type CapabilityReporter interface {
	Capabilities() []publish.ContentKind
}

// Capabilities returns the content kinds each registered platform supports.
// Adapters that do not report capabilities are assumed to handle every kind.
func (r *Registry) Capabilities() map[string][]publish.ContentKind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string][]publish.ContentKind, len(r.adapters))
	for name, adapter := range r.adapters {
		if reporter, ok := adapter.(CapabilityReporter); ok {
			out[name] = reporter.Capabilities()
			continue
		}
		out[name] = []publish.ContentKind{publish.ContentPost, publish.ContentMedia}
	}
	return out
}

// Platforms returns the registered platform names, sorted.
func (r *Registry) Platforms() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalize(platform string) string {
	return strings.ToLower(strings.TrimSpace(platform))
}
