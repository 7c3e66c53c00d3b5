package lox

import (
	"cmp"
	"slices"
)

type (
	prefixParseFn func(tok Token) Expression
	infixParseFn  func(left Expression, tok Token) Expression
)

// maxArgs bounds both call arguments and function parameters.
const maxArgs = 255

type parser struct {
	tokens  []Token
	current int

	diagnostics []Diagnostic

	prefixFns map[TokenType]prefixParseFn
	infixFns  map[TokenType]infixParseFn
}

// parseBailout unwinds the parser to the nearest declaration after a
// syntax error. It never escapes the parser.
type parseBailout struct{}

// Parse scans and parses source. Syntax diagnostics from both phases are
// returned in source order; statements that failed to parse are omitted.
func Parse(source string) ([]Statement, []Diagnostic) {
	tokens, diagnostics := scanTokens(source)
	p := newParser(tokens)
	program := p.ParseProgram()
	diagnostics = append(diagnostics, p.diagnostics...)
	slices.SortStableFunc(diagnostics, func(a, b Diagnostic) int {
		if c := cmp.Compare(a.Pos.Line, b.Pos.Line); c != 0 {
			return c
		}
		return cmp.Compare(a.Pos.Column, b.Pos.Column)
	})
	return program, diagnostics
}

func newParser(tokens []Token) *parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != tokenEOF {
		tokens = append(tokens, Token{Type: tokenEOF})
	}
	p := &parser{tokens: tokens}

	p.prefixFns = map[TokenType]prefixParseFn{
		tokenIdent:  p.parseVariable,
		tokenNumber: p.parseLiteral,
		tokenString: p.parseLiteral,
		tokenTrue:   p.parseLiteral,
		tokenFalse:  p.parseLiteral,
		tokenNil:    p.parseLiteral,
		tokenThis:   p.parseThis,
		tokenSuper:  p.parseSuper,
		tokenLParen: p.parseGrouping,
		tokenBang:   p.parseUnary,
		tokenMinus:  p.parseUnary,
	}

	p.infixFns = map[TokenType]infixParseFn{
		tokenAssign:   p.parseAssign,
		tokenOr:       p.parseLogical,
		tokenAnd:      p.parseLogical,
		tokenEQ:       p.parseBinary,
		tokenNotEQ:    p.parseBinary,
		tokenLT:       p.parseBinary,
		tokenLTE:      p.parseBinary,
		tokenGT:       p.parseBinary,
		tokenGTE:      p.parseBinary,
		tokenPlus:     p.parseBinary,
		tokenMinus:    p.parseBinary,
		tokenSlash:    p.parseBinary,
		tokenAsterisk: p.parseBinary,
		tokenLParen:   p.parseCall,
		tokenDot:      p.parseGet,
	}

	return p
}

func (p *parser) ParseProgram() []Statement {
	var program []Statement
	for !p.atEnd() {
		if stmt := p.declaration(); stmt != nil {
			program = append(program, stmt)
		}
	}
	return program
}

func (p *parser) peek() Token {
	return p.tokens[p.current]
}

func (p *parser) previous() Token {
	return p.tokens[p.current-1]
}

func (p *parser) atEnd() bool {
	return p.peek().Type == tokenEOF
}

func (p *parser) advance() Token {
	if !p.atEnd() {
		p.current++
	}
	return p.previous()
}

func (p *parser) check(tt TokenType) bool {
	return p.peek().Type == tt
}

func (p *parser) match(types ...TokenType) bool {
	for _, tt := range types {
		if p.check(tt) {
			p.advance()
			return true
		}
	}
	return false
}

// consume advances past a token of type tt or bails out with message.
func (p *parser) consume(tt TokenType, message string) Token {
	if p.check(tt) {
		return p.advance()
	}
	p.fail(p.peek(), message)
	return Token{}
}

// synchronize discards tokens until a likely statement boundary.
func (p *parser) synchronize() {
	p.advance()
	for !p.atEnd() {
		if p.previous().Type == tokenSemicolon {
			return
		}
		switch p.peek().Type {
		case tokenClass, tokenFun, tokenVar, tokenFor, tokenIf, tokenWhile, tokenPrint, tokenReturn:
			return
		}
		p.advance()
	}
}
