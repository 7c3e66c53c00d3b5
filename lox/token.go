package lox

import "fmt"

// TokenType identifies the lexical category of a token.
type TokenType string

const (
	tokenIllegal TokenType = "ILLEGAL"
	tokenEOF     TokenType = "EOF"

	tokenIdent  TokenType = "IDENT"
	tokenNumber TokenType = "NUMBER"
	tokenString TokenType = "STRING"

	tokenLParen    TokenType = "("
	tokenRParen    TokenType = ")"
	tokenLBrace    TokenType = "{"
	tokenRBrace    TokenType = "}"
	tokenComma     TokenType = ","
	tokenDot       TokenType = "."
	tokenMinus     TokenType = "-"
	tokenPlus      TokenType = "+"
	tokenSemicolon TokenType = ";"
	tokenSlash     TokenType = "/"
	tokenAsterisk  TokenType = "*"

	tokenBang   TokenType = "!"
	tokenNotEQ  TokenType = "!="
	tokenAssign TokenType = "="
	tokenEQ     TokenType = "=="
	tokenGT     TokenType = ">"
	tokenGTE    TokenType = ">="
	tokenLT     TokenType = "<"
	tokenLTE    TokenType = "<="

	tokenAnd    TokenType = "AND"
	tokenClass  TokenType = "CLASS"
	tokenElse   TokenType = "ELSE"
	tokenFalse  TokenType = "FALSE"
	tokenFun    TokenType = "FUN"
	tokenFor    TokenType = "FOR"
	tokenIf     TokenType = "IF"
	tokenNil    TokenType = "NIL"
	tokenOr     TokenType = "OR"
	tokenPrint  TokenType = "PRINT"
	tokenReturn TokenType = "RETURN"
	tokenSuper  TokenType = "SUPER"
	tokenThis   TokenType = "THIS"
	tokenTrue   TokenType = "TRUE"
	tokenVar    TokenType = "VAR"
	tokenWhile  TokenType = "WHILE"
)

var keywords = map[string]TokenType{
	"and":    tokenAnd,
	"class":  tokenClass,
	"else":   tokenElse,
	"false":  tokenFalse,
	"for":    tokenFor,
	"fun":    tokenFun,
	"if":     tokenIf,
	"nil":    tokenNil,
	"or":     tokenOr,
	"print":  tokenPrint,
	"return": tokenReturn,
	"super":  tokenSuper,
	"this":   tokenThis,
	"true":   tokenTrue,
	"var":    tokenVar,
	"while":  tokenWhile,
}

// Keywords returns the reserved words of the language in sorted order.
func Keywords() []string {
	return []string{
		"and", "class", "else", "false", "for", "fun", "if", "nil",
		"or", "print", "return", "super", "this", "true", "var", "while",
	}
}

// Token captures lexical information for the parser. Literal holds the
// decoded value of number and string tokens and is nil otherwise.
type Token struct {
	Type    TokenType
	Lexeme  string
	Literal any
	Pos     Position
}

// Position identifies a line and column in the source file.
type Position struct {
	Line   int `json:"line" yaml:"line"`
	Column int `json:"column" yaml:"column"`
}

// Line is shorthand for Pos.Line.
func (t Token) Line() int { return t.Pos.Line }

func (t Token) String() string {
	return fmt.Sprintf("%s %q %d:%d", t.Type, t.Lexeme, t.Pos.Line, t.Pos.Column)
}
