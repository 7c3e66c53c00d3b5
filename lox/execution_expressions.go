package lox

import "fmt"

func (in *Interpreter) evaluate(expr Expression) (Value, error) {
	switch e := expr.(type) {
	case *LiteralExpr:
		return e.Value, nil
	case *GroupingExpr:
		return in.evaluate(e.Expression)
	case *VariableExpr:
		return in.lookUpVariable(e.Name, e)
	case *AssignExpr:
		return in.evaluateAssign(e)
	case *UnaryExpr:
		return in.evaluateUnary(e)
	case *BinaryExpr:
		return in.evaluateBinary(e)
	case *LogicalExpr:
		left, err := in.evaluate(e.Left)
		if err != nil {
			return NewNil(), err
		}
		if e.Operator.Type == tokenOr {
			if left.Truthy() {
				return left, nil
			}
		} else if !left.Truthy() {
			return left, nil
		}
		return in.evaluate(e.Right)
	case *CallExpr:
		return in.evaluateCall(e)
	case *GetExpr:
		object, err := in.evaluate(e.Object)
		if err != nil {
			return NewNil(), err
		}
		instance := object.Instance()
		if instance == nil {
			return NewNil(), in.errorAt(ErrNotAnInstance, e.Name, "Only instances have properties.")
		}
		val, err := instance.Get(e.Name)
		if err != nil {
			return NewNil(), in.withFrames(err)
		}
		return val, nil
	case *SetExpr:
		object, err := in.evaluate(e.Object)
		if err != nil {
			return NewNil(), err
		}
		instance := object.Instance()
		if instance == nil {
			return NewNil(), in.errorAt(ErrNotAnInstance, e.Name, "Only instances have fields.")
		}
		val, err := in.evaluate(e.Value)
		if err != nil {
			return NewNil(), err
		}
		instance.Set(e.Name, val)
		return val, nil
	case *ThisExpr:
		return in.lookUpVariable(e.Keyword, e)
	case *SuperExpr:
		return in.evaluateSuper(e)
	default:
		panic(fmt.Sprintf("lox: unsupported expression %T", expr))
	}
}

// lookUpVariable reads a resolved local at its recorded distance and
// anything unresolved from the globals.
func (in *Interpreter) lookUpVariable(name Token, expr Expression) (Value, error) {
	if distance, ok := in.locals[expr]; ok {
		return in.env.GetAt(distance, name.Lexeme), nil
	}
	val, err := in.globals.Get(name)
	if err != nil {
		return NewNil(), in.withFrames(err)
	}
	return val, nil
}

func (in *Interpreter) evaluateAssign(e *AssignExpr) (Value, error) {
	val, err := in.evaluate(e.Value)
	if err != nil {
		return NewNil(), err
	}
	if distance, ok := in.locals[e]; ok {
		in.env.AssignAt(distance, e.Name, val)
		return val, nil
	}
	if err := in.globals.Assign(e.Name, val); err != nil {
		return NewNil(), in.withFrames(err)
	}
	return val, nil
}

func (in *Interpreter) evaluateUnary(e *UnaryExpr) (Value, error) {
	right, err := in.evaluate(e.Right)
	if err != nil {
		return NewNil(), err
	}
	switch e.Operator.Type {
	case tokenBang:
		return NewBool(!right.Truthy()), nil
	case tokenMinus:
		if right.Kind() != KindNumber {
			return NewNil(), in.errorAt(ErrOperandType, e.Operator, "Operand must be a number.")
		}
		return NewNumber(-right.Number()), nil
	default:
		panic(fmt.Sprintf("lox: unsupported unary operator %s", e.Operator.Type))
	}
}

func (in *Interpreter) evaluateBinary(e *BinaryExpr) (Value, error) {
	left, err := in.evaluate(e.Left)
	if err != nil {
		return NewNil(), err
	}
	right, err := in.evaluate(e.Right)
	if err != nil {
		return NewNil(), err
	}

	switch e.Operator.Type {
	case tokenEQ:
		return NewBool(left.Equal(right)), nil
	case tokenNotEQ:
		return NewBool(!left.Equal(right)), nil
	case tokenPlus:
		switch {
		case left.Kind() == KindNumber && right.Kind() == KindNumber:
			return NewNumber(left.Number() + right.Number()), nil
		case left.Kind() == KindString && right.Kind() == KindString:
			return NewString(left.String() + right.String()), nil
		}
		return NewNil(), in.errorAt(ErrOperandType, e.Operator, "Operands must be two numbers or two strings.")
	}

	if left.Kind() != KindNumber || right.Kind() != KindNumber {
		return NewNil(), in.errorAt(ErrOperandType, e.Operator, "Operands must be numbers.")
	}
	l, r := left.Number(), right.Number()
	switch e.Operator.Type {
	case tokenMinus:
		return NewNumber(l - r), nil
	case tokenAsterisk:
		return NewNumber(l * r), nil
	case tokenSlash:
		return NewNumber(l / r), nil
	case tokenGT:
		return NewBool(l > r), nil
	case tokenGTE:
		return NewBool(l >= r), nil
	case tokenLT:
		return NewBool(l < r), nil
	case tokenLTE:
		return NewBool(l <= r), nil
	default:
		panic(fmt.Sprintf("lox: unsupported binary operator %s", e.Operator.Type))
	}
}

func (in *Interpreter) evaluateSuper(e *SuperExpr) (Value, error) {
	distance := in.locals[e]
	superclass := in.env.GetAt(distance, "super").Class()
	// "this" is bound in the scope just inside the one holding "super".
	object := in.env.GetAt(distance-1, "this").Instance()

	method, ok := superclass.FindMethod(e.Method.Lexeme)
	if !ok {
		return NewNil(), in.errorAt(ErrUndefinedProperty, e.Method, "Undefined property '%s'.", e.Method.Lexeme)
	}
	return NewFunction(method.Bind(object)), nil
}
