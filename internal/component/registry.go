package component

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-markdown/pkg/interfaces"
)

// Registry is the thread-safe in-memory implementation of interfaces.ComponentRegistry.
type Registry struct {
	mu          sync.RWMutex
	definitions map[string]interfaces.ComponentDefinition
	validator   DefinitionValidator
}

// DefinitionValidator abstracts definition validation so callers can customise behaviour in tests.
type DefinitionValidator interface {
	ValidateDefinition(def interfaces.ComponentDefinition) error
}

// NewRegistry constructs a registry using the supplied validator. A nil
// validator falls back to NewValidator.
func NewRegistry(validator DefinitionValidator) *Registry {
	if validator == nil {
		validator = NewValidator()
	}
	return &Registry{
		definitions: make(map[string]interfaces.ComponentDefinition),
		validator:   validator,
	}
}

// Register stores a definition if it passes validation and the name is not taken.
// Names are case-insensitive and stored lowercased.
func (r *Registry) Register(def interfaces.ComponentDefinition) error {
	name := normalizeName(def.Name)
	if name == "" {
		return wrapDefinitionError(fmt.Errorf("%w: name is required", ErrInvalidDefinition))
	}

	if err := r.validator.ValidateDefinition(def); err != nil {
		return wrapDefinitionError(err)
	}
	def.Name = name

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.definitions[name]; exists {
		return wrapDefinitionError(fmt.Errorf("%w: %s", ErrDuplicateDefinition, name))
	}

	r.definitions[name] = def
	return nil
}

// Get returns the stored definition.
func (r *Registry) Get(name string) (interfaces.ComponentDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.definitions[normalizeName(name)]
	return def, ok
}

// Lookup is Get with a not-found error for callers that need one.
func (r *Registry) Lookup(name string) (interfaces.ComponentDefinition, error) {
	def, ok := r.Get(name)
	if !ok {
		return interfaces.ComponentDefinition{}, wrapNotFound(fmt.Errorf("%w: %s", ErrUnknownComponent, name), "component not registered")
	}
	return def, nil
}

// List returns all registered definitions in name order.
func (r *Registry) List() []interfaces.ComponentDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]interfaces.ComponentDefinition, 0, len(r.definitions))
	for _, def := range r.definitions {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// Remove deletes the definition if it exists.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.definitions, normalizeName(name))
}

var _ interfaces.ComponentRegistry = (*Registry)(nil)

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
