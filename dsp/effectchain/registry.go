package effectchain

import (
	"errors"
	"fmt"
)

// Factory builds one Runtime instance for a node.
type Factory func(ctx Context) (Runtime, error)

// Registry maps roles to their factories.
type Registry struct {
	factories map[Role]Factory
}

var errDuplicateRole = errors.New("duplicate role")

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[Role]Factory)}
}

// Register adds a factory for role. Source and Sink never take a factory.
func (r *Registry) Register(role Role, factory Factory) error {
	if role.structural() {
		return fmt.Errorf("role %s is structural", role)
	}

	if factory == nil {
		return errors.New("nil factory")
	}

	if _, exists := r.factories[role]; exists {
		return fmt.Errorf("%w: %s", errDuplicateRole, role)
	}

	r.factories[role] = factory

	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(role Role, factory Factory) {
	err := r.Register(role, factory)
	if err != nil {
		panic("effectchain registry: " + err.Error())
	}
}

// Lookup returns the factory for role, or nil.
func (r *Registry) Lookup(role Role) Factory {
	return r.factories[role]
}
