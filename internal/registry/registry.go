package registry

import (
	"sort"

	"github.com/specialistvlad/buildgrid/internal/model"
)

// Module is the interface that all rule modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds all the rule kinds for a single application instance.
type Registry struct {
	kinds map[string]*RuleKind
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		kinds: make(map[string]*RuleKind),
	}
}

// Kind returns the named rule kind.
func (r *Registry) Kind(name string) (*RuleKind, bool) {
	k, ok := r.kinds[name]
	return k, ok
}

// Kinds returns the registered kind names, sorted.
func (r *Registry) Kinds() []string {
	names := make([]string, 0, len(r.kinds))
	for name := range r.kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Schema implements model.Schemas.
func (r *Registry) Schema(kind string) (*model.KindSchema, bool) {
	k, ok := r.kinds[kind]
	if !ok {
		return nil, false
	}
	return &model.KindSchema{
		Kind:       k.Name,
		Test:       k.Test,
		Attributes: k.Attributes,
	}, true
}
