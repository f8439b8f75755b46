package registry

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/tabledriver/typeschema/schema"
)

// Registry is the side-channel lookup for user-defined types, keyed by a
// type's erased fully-qualified name. It is maintained independently of any
// type catalog; a match only happens when both agree on the same name
// string.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]func() (schema.ExternalDescriptor, error)
}

func New() *Registry {
	return &Registry{
		factories: make(map[string]func() (schema.ExternalDescriptor, error)),
	}
}

// Default is the process-wide registry the package-level helpers use.
var Default = New()

// Register binds a descriptor factory to an erased type name. The factory
// runs on every lookup; a factory that cannot produce its descriptor makes
// derivation of that type fail.
func (r *Registry) Register(erasedName string, factory func() (schema.ExternalDescriptor, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[erasedName] = factory
}

// Instantiate looks up the name and, when registered, instantiates the
// external descriptor. The boolean reports registration; the error reports
// instantiation failure and is never produced for unregistered names.
func (r *Registry) Instantiate(erasedName string) (schema.ExternalDescriptor, bool, error) {
	r.mu.RLock()
	factory, ok := r.factories[erasedName]
	r.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	descriptor, err := factory()
	if err != nil {
		return nil, true, errors.Wrapf(err, "couldn't instantiate user type %s", erasedName)
	}
	return descriptor, true, nil
}

func Register(erasedName string, factory func() (schema.ExternalDescriptor, error)) {
	Default.Register(erasedName, factory)
}
