package lox

import (
	"fmt"
	"strings"
)

// PrintExpr renders expr as a fully parenthesized prefix form, e.g.
// "(* (- 123) (group 45.67))".
func PrintExpr(expr Expression) string {
	var b strings.Builder
	writeExpr(&b, expr)
	return b.String()
}

// PrintProgram renders each statement on its own line.
func PrintProgram(program []Statement) string {
	var b strings.Builder
	for _, stmt := range program {
		writeStmt(&b, stmt)
		b.WriteString("\n")
	}
	return b.String()
}

func parenthesize(b *strings.Builder, name string, parts ...func()) {
	b.WriteString("(")
	b.WriteString(name)
	for _, part := range parts {
		b.WriteString(" ")
		part()
	}
	b.WriteString(")")
}

func exprPart(b *strings.Builder, expr Expression) func() {
	return func() { writeExpr(b, expr) }
}

func stmtPart(b *strings.Builder, stmt Statement) func() {
	return func() { writeStmt(b, stmt) }
}

func textPart(b *strings.Builder, text string) func() {
	return func() { b.WriteString(text) }
}

func writeExpr(b *strings.Builder, expr Expression) {
	switch e := expr.(type) {
	case *LiteralExpr:
		b.WriteString(e.Value.String())
	case *VariableExpr:
		b.WriteString(e.Name.Lexeme)
	case *AssignExpr:
		parenthesize(b, "=", textPart(b, e.Name.Lexeme), exprPart(b, e.Value))
	case *BinaryExpr:
		parenthesize(b, e.Operator.Lexeme, exprPart(b, e.Left), exprPart(b, e.Right))
	case *LogicalExpr:
		parenthesize(b, e.Operator.Lexeme, exprPart(b, e.Left), exprPart(b, e.Right))
	case *UnaryExpr:
		parenthesize(b, e.Operator.Lexeme, exprPart(b, e.Right))
	case *GroupingExpr:
		parenthesize(b, "group", exprPart(b, e.Expression))
	case *CallExpr:
		parts := []func(){exprPart(b, e.Callee)}
		for _, arg := range e.Args {
			parts = append(parts, exprPart(b, arg))
		}
		parenthesize(b, "call", parts...)
	case *GetExpr:
		parenthesize(b, ".", exprPart(b, e.Object), textPart(b, e.Name.Lexeme))
	case *SetExpr:
		parenthesize(b, "=", exprPart(b, e.Object), textPart(b, e.Name.Lexeme), exprPart(b, e.Value))
	case *ThisExpr:
		b.WriteString("this")
	case *SuperExpr:
		parenthesize(b, "super", textPart(b, e.Method.Lexeme))
	default:
		fmt.Fprintf(b, "<%T>", expr)
	}
}

func writeStmt(b *strings.Builder, stmt Statement) {
	switch s := stmt.(type) {
	case *ExprStmt:
		parenthesize(b, ";", exprPart(b, s.Expr))
	case *PrintStmt:
		parenthesize(b, "print", exprPart(b, s.Expr))
	case *VarStmt:
		if s.Initializer == nil {
			parenthesize(b, "var", textPart(b, s.Name.Lexeme))
			return
		}
		parenthesize(b, "var", textPart(b, s.Name.Lexeme), textPart(b, "="), exprPart(b, s.Initializer))
	case *BlockStmt:
		parts := make([]func(), 0, len(s.Statements))
		for _, inner := range s.Statements {
			parts = append(parts, stmtPart(b, inner))
		}
		parenthesize(b, "block", parts...)
	case *IfStmt:
		if s.Else == nil {
			parenthesize(b, "if", exprPart(b, s.Condition), stmtPart(b, s.Then))
			return
		}
		parenthesize(b, "if-else", exprPart(b, s.Condition), stmtPart(b, s.Then), stmtPart(b, s.Else))
	case *WhileStmt:
		parenthesize(b, "while", exprPart(b, s.Condition), stmtPart(b, s.Body))
	case *FunctionStmt:
		writeFunction(b, "fun", s)
	case *ReturnStmt:
		if s.Value == nil {
			b.WriteString("(return)")
			return
		}
		parenthesize(b, "return", exprPart(b, s.Value))
	case *ClassStmt:
		b.WriteString("(class ")
		b.WriteString(s.Name.Lexeme)
		if s.Superclass != nil {
			b.WriteString(" < ")
			b.WriteString(s.Superclass.Name.Lexeme)
		}
		for _, method := range s.Methods {
			b.WriteString(" ")
			writeFunction(b, "method", method)
		}
		b.WriteString(")")
	default:
		fmt.Fprintf(b, "<%T>", stmt)
	}
}

func writeFunction(b *strings.Builder, label string, fn *FunctionStmt) {
	params := make([]string, len(fn.Params))
	for i, param := range fn.Params {
		params[i] = param.Lexeme
	}
	parts := []func(){
		textPart(b, fn.Name.Lexeme),
		textPart(b, "("+strings.Join(params, " ")+")"),
	}
	for _, stmt := range fn.Body {
		parts = append(parts, stmtPart(b, stmt))
	}
	parenthesize(b, label, parts...)
}
