package lox

import "sort"

// Env is one lexical scope. Scopes chain through parent up to the globals.
type Env struct {
	parent *Env
	values map[string]Value
}

func newEnv(parent *Env) *Env {
	return &Env{parent: parent, values: make(map[string]Value)}
}

// NewGlobalEnv returns an environment with no enclosing scope.
func NewGlobalEnv() *Env {
	return newEnv(nil)
}

func (e *Env) Enclosing() *Env {
	return e.parent
}

// Define binds name in this scope, replacing any existing binding.
func (e *Env) Define(name string, val Value) {
	e.values[name] = val
}

// Get walks outward from e and fails with ErrUndefinedVariable when no
// scope binds the name.
func (e *Env) Get(name Token) (Value, error) {
	for env := e; env != nil; env = env.parent {
		if val, ok := env.values[name.Lexeme]; ok {
			return val, nil
		}
	}
	return Value{}, newRuntimeError(ErrUndefinedVariable, name, "Undefined variable '%s'.", name.Lexeme)
}

// Assign rebinds an existing name in the nearest scope that has it. It
// never creates a binding.
func (e *Env) Assign(name Token, val Value) error {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.values[name.Lexeme]; ok {
			env.values[name.Lexeme] = val
			return nil
		}
	}
	return newRuntimeError(ErrUndefinedVariable, name, "Undefined variable '%s'.", name.Lexeme)
}

// Ancestor returns the scope distance hops outward. Walking past the
// global scope means the resolver and interpreter disagree, so it panics.
func (e *Env) Ancestor(distance int) *Env {
	env := e
	for i := 0; i < distance; i++ {
		if env.parent == nil {
			panic("lox: environment ancestor out of range")
		}
		env = env.parent
	}
	return env
}

// GetAt reads name from the scope exactly distance hops out. A missing
// name reads as nil.
func (e *Env) GetAt(distance int, name string) Value {
	return e.Ancestor(distance).values[name]
}

func (e *Env) AssignAt(distance int, name Token, val Value) {
	e.Ancestor(distance).values[name.Lexeme] = val
}

// Lookup reads a binding from this scope only.
func (e *Env) Lookup(name string) (Value, bool) {
	val, ok := e.values[name]
	return val, ok
}

// Names lists the bindings of this scope in sorted order.
func (e *Env) Names() []string {
	names := make([]string, 0, len(e.values))
	for name := range e.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
