package lox

func (in *Interpreter) evaluateCall(e *CallExpr) (Value, error) {
	callee, err := in.evaluate(e.Callee)
	if err != nil {
		return NewNil(), err
	}

	args := make([]Value, 0, len(e.Args))
	for _, arg := range e.Args {
		val, err := in.evaluate(arg)
		if err != nil {
			return NewNil(), err
		}
		args = append(args, val)
	}

	fn, ok := callee.Callable()
	if !ok {
		return NewNil(), in.errorAt(ErrNotCallable, e.Paren, "Can only call functions and classes.")
	}
	if len(args) != fn.Arity() {
		return NewNil(), in.errorAt(ErrArityMismatch, e.Paren, "Expected %d arguments but got %d.", fn.Arity(), len(args))
	}
	return in.call(fn, args, e.Paren)
}

// call invokes fn with a frame recorded at the call site. Exceeding the
// recursion limit is a stack overflow runtime error.
func (in *Interpreter) call(fn Callable, args []Value, site Token) (Value, error) {
	if err := in.pushFrame(callableName(fn), site); err != nil {
		return NewNil(), err
	}
	val, err := fn.Call(in, args)
	in.popFrame()
	if err != nil {
		return NewNil(), err
	}
	return val, nil
}

func callableName(fn Callable) string {
	switch c := fn.(type) {
	case *Function:
		return c.Name()
	case *Class:
		return c.Name
	case *Native:
		return c.Name
	default:
		return fn.String()
	}
}
