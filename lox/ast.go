package lox

type Node interface {
	Pos() Position
}

type Statement interface {
	Node
	stmtNode()
}

// Expression nodes are compared by identity: the resolver keys scope
// distances by the node pointer, so every occurrence of a name in the
// source is a distinct node.
type Expression interface {
	Node
	exprNode()
}

type LiteralExpr struct {
	Value    Value
	position Position
}

func (e *LiteralExpr) exprNode()     {}
func (e *LiteralExpr) Pos() Position { return e.position }

type VariableExpr struct {
	Name Token
}

func (e *VariableExpr) exprNode()     {}
func (e *VariableExpr) Pos() Position { return e.Name.Pos }

type AssignExpr struct {
	Name  Token
	Value Expression
}

func (e *AssignExpr) exprNode()     {}
func (e *AssignExpr) Pos() Position { return e.Name.Pos }

type BinaryExpr struct {
	Left     Expression
	Operator Token
	Right    Expression
}

func (e *BinaryExpr) exprNode()     {}
func (e *BinaryExpr) Pos() Position { return e.Operator.Pos }

type LogicalExpr struct {
	Left     Expression
	Operator Token
	Right    Expression
}

func (e *LogicalExpr) exprNode()     {}
func (e *LogicalExpr) Pos() Position { return e.Operator.Pos }

type UnaryExpr struct {
	Operator Token
	Right    Expression
}

func (e *UnaryExpr) exprNode()     {}
func (e *UnaryExpr) Pos() Position { return e.Operator.Pos }

type CallExpr struct {
	Callee Expression
	Paren  Token
	Args   []Expression
}

func (e *CallExpr) exprNode()     {}
func (e *CallExpr) Pos() Position { return e.Paren.Pos }

type GetExpr struct {
	Object Expression
	Name   Token
}

func (e *GetExpr) exprNode()     {}
func (e *GetExpr) Pos() Position { return e.Name.Pos }

type SetExpr struct {
	Object Expression
	Name   Token
	Value  Expression
}

func (e *SetExpr) exprNode()     {}
func (e *SetExpr) Pos() Position { return e.Name.Pos }

type ThisExpr struct {
	Keyword Token
}

func (e *ThisExpr) exprNode()     {}
func (e *ThisExpr) Pos() Position { return e.Keyword.Pos }

type SuperExpr struct {
	Keyword Token
	Method  Token
}

func (e *SuperExpr) exprNode()     {}
func (e *SuperExpr) Pos() Position { return e.Keyword.Pos }

type GroupingExpr struct {
	Expression Expression
	position   Position
}

func (e *GroupingExpr) exprNode()     {}
func (e *GroupingExpr) Pos() Position { return e.position }

type ExprStmt struct {
	Expr Expression
}

func (s *ExprStmt) stmtNode()     {}
func (s *ExprStmt) Pos() Position { return s.Expr.Pos() }

type PrintStmt struct {
	Expr     Expression
	position Position
}

func (s *PrintStmt) stmtNode()     {}
func (s *PrintStmt) Pos() Position { return s.position }

type VarStmt struct {
	Name        Token
	Initializer Expression
}

func (s *VarStmt) stmtNode()     {}
func (s *VarStmt) Pos() Position { return s.Name.Pos }

type BlockStmt struct {
	Statements []Statement
	position   Position
}

func (s *BlockStmt) stmtNode()     {}
func (s *BlockStmt) Pos() Position { return s.position }

type IfStmt struct {
	Condition Expression
	Then      Statement
	Else      Statement
	position  Position
}

func (s *IfStmt) stmtNode()     {}
func (s *IfStmt) Pos() Position { return s.position }

type WhileStmt struct {
	Condition Expression
	Body      Statement
	position  Position
}

func (s *WhileStmt) stmtNode()     {}
func (s *WhileStmt) Pos() Position { return s.position }

type FunctionStmt struct {
	Name   Token
	Params []Token
	Body   []Statement
}

func (s *FunctionStmt) stmtNode()     {}
func (s *FunctionStmt) Pos() Position { return s.Name.Pos }

type ReturnStmt struct {
	Keyword Token
	Value   Expression
}

func (s *ReturnStmt) stmtNode()     {}
func (s *ReturnStmt) Pos() Position { return s.Keyword.Pos }

// ClassStmt declares a class. Superclass, when present, is always a
// variable reference so the resolver can bind it like any other read.
type ClassStmt struct {
	Name       Token
	Superclass *VariableExpr
	Methods    []*FunctionStmt
}

func (s *ClassStmt) stmtNode()     {}
func (s *ClassStmt) Pos() Position { return s.Name.Pos }
