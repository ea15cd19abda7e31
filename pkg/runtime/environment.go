package runtime

import "sort"

// Environment provides lexical scoping for wisp runtime values. Frames are
// shared by reference: every closure that captured an environment observes
// mutations made through any alias of one of its frames.
type Environment struct {
	values map[string]Value
	parent *Environment
}

// NewEnvironment creates a new environment, optionally nested under a parent.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		values: make(map[string]Value),
		parent: parent,
	}
}

// Parent exposes the lexical parent (nil when global).
func (e *Environment) Parent() *Environment {
	return e.parent
}

// Define inserts or shadows a binding in the current frame.
func (e *Environment) Define(name string, value Value) {
	e.values[name] = value
}

// Assign overwrites an existing binding in the innermost frame where it
// appears, searching outward through the chain.
func (e *Environment) Assign(name string, value Value) error {
	if _, ok := e.values[name]; ok {
		e.values[name] = value
		return nil
	}
	if e.parent != nil {
		return e.parent.Assign(name, value)
	}
	return NewError(UnboundVariable, "Undefined variable '%s'", name)
}

// Get retrieves a binding, searching innermost to outermost.
func (e *Environment) Get(name string) (Value, error) {
	if v, ok := e.values[name]; ok {
		return v, nil
	}
	if e.parent != nil {
		return e.parent.Get(name)
	}
	return nil, NewError(UnboundVariable, "Undefined variable '%s'", name)
}

// Keys returns this frame's binding names in sorted order (useful for
// determinism in tests).
func (e *Environment) Keys() []string {
	keys := make([]string, 0, len(e.values))
	for k := range e.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Extend creates an empty child frame chained under the current environment.
// The receiver is not modified, so references captured before the extension
// are unaffected by bindings added to the child.
func (e *Environment) Extend() *Environment {
	return NewEnvironment(e)
}
