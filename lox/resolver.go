package lox

import "fmt"

// Locals maps each resolved variable-referencing expression (variable,
// assignment, this, super) to the number of scopes between its use and
// its declaration. Expressions absent from the table are globals.
type Locals map[Expression]int

type functionType int

const (
	functionNone functionType = iota
	functionFunction
	functionMethod
	functionInitializer
)

type classType int

const (
	classNone classType = iota
	classClass
	classSubclass
)

// Resolver performs the static scope pass over a parsed program. It keeps
// going after an error so a single run reports every problem.
type Resolver struct {
	scopes          []map[string]bool
	locals          Locals
	diagnostics     []Diagnostic
	currentFunction functionType
	currentClass    classType
}

func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve is shorthand for NewResolver().Resolve(program).
func Resolve(program []Statement) (Locals, []Diagnostic) {
	return NewResolver().Resolve(program)
}

// Resolve walks program and returns the scope-distance table plus any
// static diagnostics in source order. Each call starts from a clean
// state, so resolving the same program twice yields the same result.
func (r *Resolver) Resolve(program []Statement) (Locals, []Diagnostic) {
	r.scopes = r.scopes[:0]
	r.locals = make(Locals)
	r.diagnostics = nil
	r.currentFunction = functionNone
	r.currentClass = classNone

	r.resolveStatements(program)
	return r.locals, r.diagnostics
}

func (r *Resolver) resolveStatements(stmts []Statement) {
	for _, stmt := range stmts {
		r.resolveStatement(stmt)
	}
}

func (r *Resolver) resolveStatement(stmt Statement) {
	switch s := stmt.(type) {
	case *BlockStmt:
		r.beginScope()
		r.resolveStatements(s.Statements)
		r.endScope()
	case *VarStmt:
		r.declare(s.Name)
		if s.Initializer != nil {
			r.resolveExpression(s.Initializer)
		}
		r.define(s.Name)
	case *FunctionStmt:
		r.declare(s.Name)
		r.define(s.Name)
		r.resolveFunction(s, functionFunction)
	case *ClassStmt:
		r.resolveClass(s)
	case *ExprStmt:
		r.resolveExpression(s.Expr)
	case *IfStmt:
		r.resolveExpression(s.Condition)
		r.resolveStatement(s.Then)
		if s.Else != nil {
			r.resolveStatement(s.Else)
		}
	case *PrintStmt:
		r.resolveExpression(s.Expr)
	case *ReturnStmt:
		if r.currentFunction == functionNone {
			r.errorAt(s.Keyword, "Can't return from top-level code.")
		}
		if s.Value != nil {
			r.resolveExpression(s.Value)
		}
	case *WhileStmt:
		r.resolveExpression(s.Condition)
		r.resolveStatement(s.Body)
	default:
		panic(fmt.Sprintf("lox: resolver: unsupported statement %T", stmt))
	}
}

func (r *Resolver) resolveClass(s *ClassStmt) {
	enclosingClass := r.currentClass
	r.currentClass = classClass
	defer func() { r.currentClass = enclosingClass }()

	r.declare(s.Name)
	r.define(s.Name)

	if s.Superclass != nil {
		if s.Superclass.Name.Lexeme == s.Name.Lexeme {
			r.errorAt(s.Superclass.Name, "A class can't inherit from itself.")
		}
		r.currentClass = classSubclass
		r.resolveExpression(s.Superclass)

		r.beginScope()
		r.peekScope()["super"] = true
		defer r.endScope()
	}

	r.beginScope()
	r.peekScope()["this"] = true
	for _, method := range s.Methods {
		kind := functionMethod
		if method.Name.Lexeme == "init" {
			kind = functionInitializer
		}
		r.resolveFunction(method, kind)
	}
	r.endScope()
}

func (r *Resolver) resolveFunction(fn *FunctionStmt, kind functionType) {
	enclosing := r.currentFunction
	r.currentFunction = kind

	r.beginScope()
	for _, param := range fn.Params {
		r.declare(param)
		r.define(param)
	}
	r.resolveStatements(fn.Body)
	r.endScope()

	r.currentFunction = enclosing
}

func (r *Resolver) resolveExpression(expr Expression) {
	switch e := expr.(type) {
	case *VariableExpr:
		if len(r.scopes) > 0 {
			if defined, ok := r.peekScope()[e.Name.Lexeme]; ok && !defined {
				r.errorAt(e.Name, "Can't read local variable in its own initializer.")
			}
		}
		r.resolveLocal(e, e.Name.Lexeme)
	case *AssignExpr:
		r.resolveExpression(e.Value)
		r.resolveLocal(e, e.Name.Lexeme)
	case *BinaryExpr:
		r.resolveExpression(e.Left)
		r.resolveExpression(e.Right)
	case *LogicalExpr:
		r.resolveExpression(e.Left)
		r.resolveExpression(e.Right)
	case *UnaryExpr:
		r.resolveExpression(e.Right)
	case *CallExpr:
		r.resolveExpression(e.Callee)
		for _, arg := range e.Args {
			r.resolveExpression(arg)
		}
	case *GetExpr:
		r.resolveExpression(e.Object)
	case *SetExpr:
		r.resolveExpression(e.Value)
		r.resolveExpression(e.Object)
	case *GroupingExpr:
		r.resolveExpression(e.Expression)
	case *LiteralExpr:
	case *ThisExpr:
		if r.currentClass == classNone {
			r.errorAt(e.Keyword, "Can't use 'this' outside of a class.")
			return
		}
		r.resolveLocal(e, "this")
	case *SuperExpr:
		switch r.currentClass {
		case classNone:
			r.errorAt(e.Keyword, "Can't use 'super' outside of a class.")
		case classClass:
			r.errorAt(e.Keyword, "Can't use 'super' in a class with no superclass.")
		}
		r.resolveLocal(e, "super")
	default:
		panic(fmt.Sprintf("lox: resolver: unsupported expression %T", expr))
	}
}

// resolveLocal records the distance to the innermost scope declaring
// name. Names found in no scope are left for global lookup.
func (r *Resolver) resolveLocal(expr Expression, name string) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name]; ok {
			r.locals[expr] = len(r.scopes) - 1 - i
			return
		}
	}
}

func (r *Resolver) beginScope() {
	r.scopes = append(r.scopes, make(map[string]bool))
}

func (r *Resolver) endScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *Resolver) peekScope() map[string]bool {
	return r.scopes[len(r.scopes)-1]
}

func (r *Resolver) declare(name Token) {
	if len(r.scopes) == 0 {
		return
	}
	scope := r.peekScope()
	if _, ok := scope[name.Lexeme]; ok {
		r.errorAt(name, "Already a variable with this name in this scope.")
	}
	scope[name.Lexeme] = false
}

func (r *Resolver) define(name Token) {
	if len(r.scopes) == 0 {
		return
	}
	r.peekScope()[name.Lexeme] = true
}

func (r *Resolver) errorAt(tok Token, message string) {
	r.diagnostics = append(r.diagnostics, diagnosticAt(PhaseResolve, tok, message))
}
