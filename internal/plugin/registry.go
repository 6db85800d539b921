package plugin

import (
	"sort"
	"sync"
)

// Factory creates instances of one plugin for a capability. Create must be
// referentially transparent in its config: the same config yields a
// functionally equivalent, independent instance.
type Factory[T any] interface {
	Descriptor() Descriptor
	Create(config Config) (T, error)
}

// Registry holds the factories of one capability, indexed by descriptor id.
// Registries never cache instances across runs.
type Registry[T any] struct {
	capability string
	mu         sync.RWMutex
	factories  map[string]Factory[T]
}

// NewRegistry returns an empty registry for the named capability.
func NewRegistry[T any](capability string) *Registry[T] {
	return &Registry[T]{
		capability: capability,
		factories:  make(map[string]Factory[T]),
	}
}

// Register installs a factory, rejecting duplicate ids.
func (r *Registry[T]) Register(f Factory[T]) error {
	id := f.Descriptor().ID
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[id]; exists {
		return &DuplicatePluginError{Capability: r.capability, ID: id}
	}
	r.factories[id] = f
	return nil
}

// Get returns the factory registered under id.
func (r *Registry[T]) Get(id string) (Factory[T], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[id]
	return f, ok
}

// IDs returns the registered ids in sorted order.
func (r *Registry[T]) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Descriptors returns the registered descriptors sorted by id.
func (r *Registry[T]) Descriptors() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Descriptor, 0, len(r.factories))
	for _, f := range r.factories {
		out = append(out, f.Descriptor())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Resolve creates one instance per requested id, in request order. An unknown
// id fails with an UnknownPluginError naming the known ids; configs are
// validated against the descriptor before Create runs, so every
// configuration problem surfaces before any plugin work starts.
func (r *Registry[T]) Resolve(ids []string, configs map[string]Config) ([]T, error) {
	instances := make([]T, 0, len(ids))
	for _, id := range ids {
		factory, ok := r.Get(id)
		if !ok {
			return nil, &UnknownPluginError{Capability: r.capability, ID: id, Known: r.IDs()}
		}
		config := configs[id]
		if err := factory.Descriptor().ValidateConfig(config); err != nil {
			return nil, err
		}
		instance, err := factory.Create(config)
		if err != nil {
			return nil, err
		}
		instances = append(instances, instance)
	}
	return instances, nil
}
