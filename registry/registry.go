// Package registry provides a process-wide name to swarm directory. It is
// safe for concurrent access and best suited as the single lookup surface
// an application runs swarms through.
package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/logging"
)

// Options configures a Registry.
type Options struct {
	Logger logging.Logger
}

// Registry is a mutex-guarded name to swarm map. Name uniqueness is
// enforced at insertion.
type Registry struct {
	mu     sync.RWMutex
	swarms map[string]core.Swarm
	logger logging.Logger
}

// New constructs an empty registry.
func New(optFns ...func(o *Options)) *Registry {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Registry{
		swarms: make(map[string]core.Swarm),
		logger: opts.Logger,
	}
}

// Add registers the swarm under the given name. A taken name fails with
// ErrDuplicateName.
func (r *Registry) Add(name string, s core.Swarm) error {
	r.mu.Lock()
	if _, exists := r.swarms[name]; exists {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", core.ErrDuplicateName, name)
	}
	r.swarms[name] = s
	r.mu.Unlock()

	r.logger.Debug("swarm registered", "name", name)
	return nil
}

// Remove deletes the named swarm. An unknown name fails with ErrNotFound.
func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	if _, exists := r.swarms[name]; !exists {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", core.ErrNotFound, name)
	}
	delete(r.swarms, name)
	r.mu.Unlock()

	r.logger.Debug("swarm removed", "name", name)
	return nil
}

// Get returns the named swarm, or false if absent.
func (r *Registry) Get(name string) (core.Swarm, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.swarms[name]
	return s, ok
}

// Names returns all registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.swarms))
	for name := range r.swarms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered swarms.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.swarms)
}

// Run looks the swarm up and invokes it. An unknown name fails with
// ErrNotFound.
func (r *Registry) Run(ctx context.Context, name string, task core.Task) (*core.Conversation, error) {
	s, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrNotFound, name)
	}
	return s.Run(ctx, task)
}
