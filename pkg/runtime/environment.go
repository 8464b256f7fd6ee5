package runtime

import (
	"sort"
	"strings"
)

// Environment holds the bindings of one scope: the program globals or a
// subprogram frame. Names are stored lowercased.
type Environment struct {
	name   string
	values map[string]Value
	parent *Environment
}

// NewEnvironment creates a new environment, optionally nested under a parent.
func NewEnvironment(name string, parent *Environment) *Environment {
	return &Environment{
		name:   name,
		values: make(map[string]Value),
		parent: parent,
	}
}

func (e *Environment) Name() string {
	return e.name
}

// Parent exposes the enclosing environment (nil for globals).
func (e *Environment) Parent() *Environment {
	return e.parent
}

// Define inserts or shadows a binding in the current scope.
func (e *Environment) Define(name string, value Value) {
	e.values[strings.ToLower(name)] = value
}

// Assign updates an existing binding in the first scope where it appears.
func (e *Environment) Assign(name string, value Value) error {
	owner := e.owner(name)
	if owner == nil {
		return NewTypeException(VariableNotFound, "variable '%s' not found", name)
	}
	owner.values[strings.ToLower(name)] = value
	return nil
}

// Get retrieves a binding, searching outward through the scope chain.
func (e *Environment) Get(name string) (Value, error) {
	owner := e.owner(name)
	if owner == nil {
		return nil, NewTypeException(VariableNotFound, "variable '%s' not found", name)
	}
	return owner.values[strings.ToLower(name)], nil
}

// owner finds the innermost scope binding name.
func (e *Environment) owner(name string) *Environment {
	for env := e; env != nil; env = env.Parent() {
		if env.Has(name) {
			return env
		}
	}
	return nil
}

// Has reports whether name is bound in this scope only.
func (e *Environment) Has(name string) bool {
	_, ok := e.values[strings.ToLower(name)]
	return ok
}

// Snapshot returns a copy of the current bindings.
func (e *Environment) Snapshot() map[string]Value {
	out := make(map[string]Value, len(e.values))
	for k, v := range e.values {
		out[k] = Copy(v)
	}
	return out
}

// Keys lists the names bound in this scope only, sorted.
func (e *Environment) Keys() []string {
	keys := make([]string, 0, len(e.values))
	for k := range e.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Extend creates a named child scope.
func (e *Environment) Extend(name string) *Environment {
	return NewEnvironment(name, e)
}
