package lox

import "fmt"

// Callable is implemented by every value that can appear as a callee.
type Callable interface {
	Arity() int
	Call(in *Interpreter, args []Value) (Value, error)
	String() string
}

// Function is a user-defined function or method closed over the
// environment in which its declaration was executed.
type Function struct {
	Declaration   *FunctionStmt
	Closure       *Env
	IsInitializer bool
}

func (fn *Function) Name() string { return fn.Declaration.Name.Lexeme }

func (fn *Function) Arity() int { return len(fn.Declaration.Params) }

// Bind returns a copy of fn whose closure defines "this" as instance.
func (fn *Function) Bind(instance *Instance) *Function {
	env := newEnv(fn.Closure)
	env.Define("this", NewInstance(instance))
	return &Function{Declaration: fn.Declaration, Closure: env, IsInitializer: fn.IsInitializer}
}

// Call runs the body in a fresh scope parented by the closure. An
// initializer always yields its bound instance, even on an early return.
func (fn *Function) Call(in *Interpreter, args []Value) (Value, error) {
	env := newEnv(fn.Closure)
	for i, param := range fn.Declaration.Params {
		env.Define(param.Lexeme, args[i])
	}
	val, returned, err := in.executeBlock(fn.Declaration.Body, env)
	if err != nil {
		return NewNil(), err
	}
	if fn.IsInitializer {
		return fn.Closure.GetAt(0, "this"), nil
	}
	if returned {
		return val, nil
	}
	return NewNil(), nil
}

func (fn *Function) String() string {
	return fmt.Sprintf("<fn %s>", fn.Name())
}

// Class is a runtime class. Calling it constructs an Instance.
type Class struct {
	Name       string
	Superclass *Class
	Methods    map[string]*Function
}

// FindMethod looks name up on the class and then up the superclass chain.
func (c *Class) FindMethod(name string) (*Function, bool) {
	for class := c; class != nil; class = class.Superclass {
		if method, ok := class.Methods[name]; ok {
			return method, true
		}
	}
	return nil, false
}

func (c *Class) Arity() int {
	if init, ok := c.FindMethod("init"); ok {
		return init.Arity()
	}
	return 0
}

func (c *Class) Call(in *Interpreter, args []Value) (Value, error) {
	instance := &Instance{Class: c, Fields: make(map[string]Value)}
	if init, ok := c.FindMethod("init"); ok {
		if _, err := init.Bind(instance).Call(in, args); err != nil {
			return NewNil(), err
		}
	}
	return NewInstance(instance), nil
}

func (c *Class) String() string { return c.Name }

type Instance struct {
	Class  *Class
	Fields map[string]Value
}

// Get reads a field, falling back to a method bound to the instance.
// Fields shadow methods of the same name.
func (i *Instance) Get(name Token) (Value, error) {
	if val, ok := i.Fields[name.Lexeme]; ok {
		return val, nil
	}
	if method, ok := i.Class.FindMethod(name.Lexeme); ok {
		return NewFunction(method.Bind(i)), nil
	}
	return NewNil(), newRuntimeError(ErrUndefinedProperty, name, "Undefined property '%s'.", name.Lexeme)
}

func (i *Instance) Set(name Token, val Value) {
	i.Fields[name.Lexeme] = val
}

func (i *Instance) String() string {
	return i.Class.Name + " instance"
}

// NativeFunc is the host implementation of a native function.
type NativeFunc func(in *Interpreter, args []Value) (Value, error)

// Native is a host-provided function registered on an Engine.
type Native struct {
	Name  string
	arity int
	Fn    NativeFunc
}

func (n *Native) Arity() int { return n.arity }

func (n *Native) Call(in *Interpreter, args []Value) (Value, error) {
	return n.Fn(in, args)
}

func (n *Native) String() string { return "<native fn>" }
