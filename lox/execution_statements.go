package lox

import "fmt"

// execute runs one statement. The boolean result is the return signal:
// when true, the value is the function's result and enclosing blocks and
// loops must stop and pass it up to the call.
func (in *Interpreter) execute(stmt Statement) (Value, bool, error) {
	if err := in.step(); err != nil {
		return NewNil(), false, err
	}

	switch s := stmt.(type) {
	case *ExprStmt:
		val, err := in.evaluate(s.Expr)
		return val, false, err
	case *PrintStmt:
		val, err := in.evaluate(s.Expr)
		if err != nil {
			return NewNil(), false, err
		}
		fmt.Fprintln(in.stdout, val.String())
	case *VarStmt:
		val := NewNil()
		if s.Initializer != nil {
			var err error
			if val, err = in.evaluate(s.Initializer); err != nil {
				return NewNil(), false, err
			}
		}
		in.env.Define(s.Name.Lexeme, val)
	case *BlockStmt:
		return in.executeBlock(s.Statements, newEnv(in.env))
	case *IfStmt:
		cond, err := in.evaluate(s.Condition)
		if err != nil {
			return NewNil(), false, err
		}
		if cond.Truthy() {
			return in.execute(s.Then)
		}
		if s.Else != nil {
			return in.execute(s.Else)
		}
	case *WhileStmt:
		return in.executeWhile(s)
	case *FunctionStmt:
		fn := &Function{Declaration: s, Closure: in.env}
		in.env.Define(s.Name.Lexeme, NewFunction(fn))
	case *ReturnStmt:
		val := NewNil()
		if s.Value != nil {
			var err error
			if val, err = in.evaluate(s.Value); err != nil {
				return NewNil(), false, err
			}
		}
		return val, true, nil
	case *ClassStmt:
		return NewNil(), false, in.executeClass(s)
	default:
		panic(fmt.Sprintf("lox: unsupported statement %T", stmt))
	}
	return NewNil(), false, nil
}

func (in *Interpreter) executeWhile(s *WhileStmt) (Value, bool, error) {
	for {
		cond, err := in.evaluate(s.Condition)
		if err != nil {
			return NewNil(), false, err
		}
		if !cond.Truthy() {
			return NewNil(), false, nil
		}
		val, returned, err := in.execute(s.Body)
		if err != nil || returned {
			return val, returned, err
		}
	}
}

// executeBlock runs stmts with env as the current scope and restores the
// previous scope on every exit path.
func (in *Interpreter) executeBlock(stmts []Statement, env *Env) (Value, bool, error) {
	previous := in.env
	in.env = env
	defer func() { in.env = previous }()

	for _, stmt := range stmts {
		val, returned, err := in.execute(stmt)
		if err != nil || returned {
			return val, returned, err
		}
	}
	return NewNil(), false, nil
}

func (in *Interpreter) executeClass(s *ClassStmt) error {
	var superclass *Class
	if s.Superclass != nil {
		val, err := in.evaluate(s.Superclass)
		if err != nil {
			return err
		}
		if superclass = val.Class(); superclass == nil {
			return in.errorAt(ErrNotAClass, s.Superclass.Name, "Superclass must be a class.")
		}
	}

	in.env.Define(s.Name.Lexeme, NewNil())

	if superclass != nil {
		in.env = newEnv(in.env)
		in.env.Define("super", NewClass(superclass))
	}

	methods := make(map[string]*Function, len(s.Methods))
	for _, method := range s.Methods {
		methods[method.Name.Lexeme] = &Function{
			Declaration:   method,
			Closure:       in.env,
			IsInitializer: method.Name.Lexeme == "init",
		}
	}
	class := &Class{Name: s.Name.Lexeme, Superclass: superclass, Methods: methods}

	if superclass != nil {
		in.env = in.env.Enclosing()
	}
	if err := in.env.Assign(s.Name, NewClass(class)); err != nil {
		return in.withFrames(err)
	}
	return nil
}
