package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Rrens/property-mcp/internal/domain"
)

// Options contains store connection parameters
type Options struct {
	Driver          string
	URL             string
	MaxConns        int32
	MinConns        int32
	ConnMaxLifetime time.Duration
}

// Backend is a property store that can also receive seed data
type Backend interface {
	domain.PropertyStore
	domain.PropertySeeder
}

// Factory opens a backend for the given options
type Factory func(ctx context.Context, opts Options) (Backend, error)

// Registry maps driver names to backend factories
type Registry struct {
	factories map[string]Factory
	mu        sync.RWMutex
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register registers a backend factory for a driver name
func (r *Registry) Register(driver string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[driver] = factory
}

// Drivers returns the registered driver names, sorted
func (r *Registry) Drivers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	drivers := make([]string, 0, len(r.factories))
	for driver := range r.factories {
		drivers = append(drivers, driver)
	}
	sort.Strings(drivers)
	return drivers
}

// Open connects to the backend selected by opts.Driver
func (r *Registry) Open(ctx context.Context, opts Options) (Backend, error) {
	r.mu.RLock()
	factory, ok := r.factories[opts.Driver]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q (available: %v)", opts.Driver, r.Drivers())
	}

	backend, err := factory(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", opts.Driver, err)
	}
	return backend, nil
}
