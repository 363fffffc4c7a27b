package evaluator

// Env is a scoped environment for variable bindings.
// It supports enclosing-chained lookup for lexical scoping. A binding whose
// value is nil is declared but holds no value yet.
type Env struct {
	bindings  map[string]Value
	enclosing *Env
}

// NewEnv creates a new environment with an optional enclosing scope.
func NewEnv(enclosing *Env) *Env {
	return &Env{
		bindings:  make(map[string]Value),
		enclosing: enclosing,
	}
}

// Child creates a new scope enclosed by this environment.
func (e *Env) Child() *Env {
	return NewEnv(e)
}

// Enclosing returns the parent scope, or nil for the global scope.
func (e *Env) Enclosing() *Env {
	return e.enclosing
}

// Define binds name in this scope only, shadowing any outer binding.
func (e *Env) Define(name string, val Value) {
	e.bindings[name] = val
}

// Get looks up a variable by name, walking enclosing scopes outward.
// ok is false only when no scope holds the name.
func (e *Env) Get(name string) (Value, bool) {
	for env := e; env != nil; env = env.enclosing {
		if val, ok := env.bindings[name]; ok {
			return val, true
		}
	}
	return nil, false
}

// Assign updates the nearest scope that defines name. It reports false when
// no scope does; it never creates a binding.
func (e *Env) Assign(name string, val Value) bool {
	for env := e; env != nil; env = env.enclosing {
		if _, ok := env.bindings[name]; ok {
			env.bindings[name] = val
			return true
		}
	}
	return false
}

// Has checks whether a variable is defined in this scope or any parent.
func (e *Env) Has(name string) bool {
	_, ok := e.Get(name)
	return ok
}

// Names returns the names bound directly in this scope.
func (e *Env) Names() []string {
	names := make([]string, 0, len(e.bindings))
	for name := range e.bindings {
		names = append(names, name)
	}
	return names
}
