// Package stdlib provides the registry of native functions available to Lox programs.
package stdlib

import (
	"sort"

	"github.com/thomasrohde/lox/pkg/evaluator"
)

// Fn represents a native function.
type Fn struct {
	Name    string
	Arity   int
	Execute func(args []evaluator.Value) (evaluator.Value, error)
}

// Registry holds registered native functions.
type Registry struct {
	fns map[string]*Fn
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		fns: make(map[string]*Fn),
	}
}

// Register adds a native function to the registry, replacing any function
// with the same name.
func (r *Registry) Register(fn Fn) {
	r.fns[fn.Name] = &fn
}

// Get retrieves a native function by name.
func (r *Registry) Get(name string) *Fn {
	return r.fns[name]
}

// All returns all registered native functions.
func (r *Registry) All() map[string]*Fn {
	return r.fns
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.fns))
	for name := range r.fns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Natives converts the registry into interpreter natives, sorted by name.
func (r *Registry) Natives() []*evaluator.NativeFn {
	out := make([]*evaluator.NativeFn, 0, len(r.fns))
	for _, name := range r.Names() {
		fn := r.fns[name]
		out = append(out, &evaluator.NativeFn{
			Name:  fn.Name,
			Arity: fn.Arity,
			Fn:    fn.Execute,
		})
	}
	return out
}
