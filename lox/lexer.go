package lox

import (
	"strconv"
	"unicode/utf8"
)

type lexer struct {
	input string

	offset int
	width  int

	line   int
	column int

	ch rune

	diagnostics []Diagnostic
}

func newLexer(input string) *lexer {
	l := &lexer{input: input, line: 1, column: 0}
	l.readRune()
	return l
}

// scanTokens runs the lexer to completion. The returned slice always ends
// with an EOF token, even when diagnostics were reported.
func scanTokens(input string) ([]Token, []Diagnostic) {
	l := newLexer(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		if tok.Type == tokenIllegal {
			continue
		}
		tokens = append(tokens, tok)
		if tok.Type == tokenEOF {
			return tokens, l.diagnostics
		}
	}
}

func (l *lexer) readRune() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.offset >= len(l.input) {
		l.width = 0
		l.ch = 0
		return
	}

	r, w := utf8.DecodeRuneInString(l.input[l.offset:])
	l.width = w
	l.offset += w
	l.column++
	l.ch = r
}

func (l *lexer) peekRune() rune {
	if l.offset >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.offset:])
	return r
}

func (l *lexer) atEnd() bool {
	return l.width == 0 && l.offset >= len(l.input)
}

func (l *lexer) NextToken() Token {
	l.skipWhitespaceAndComments()

	pos := Position{Line: l.line, Column: l.column}
	if l.atEnd() {
		return Token{Type: tokenEOF, Pos: pos}
	}

	switch l.ch {
	case '(':
		return l.single(tokenLParen, pos)
	case ')':
		return l.single(tokenRParen, pos)
	case '{':
		return l.single(tokenLBrace, pos)
	case '}':
		return l.single(tokenRBrace, pos)
	case ',':
		return l.single(tokenComma, pos)
	case '.':
		return l.single(tokenDot, pos)
	case '-':
		return l.single(tokenMinus, pos)
	case '+':
		return l.single(tokenPlus, pos)
	case ';':
		return l.single(tokenSemicolon, pos)
	case '*':
		return l.single(tokenAsterisk, pos)
	case '/':
		return l.single(tokenSlash, pos)
	case '!':
		return l.either('=', tokenNotEQ, tokenBang, pos)
	case '=':
		return l.either('=', tokenEQ, tokenAssign, pos)
	case '<':
		return l.either('=', tokenLTE, tokenLT, pos)
	case '>':
		return l.either('=', tokenGTE, tokenGT, pos)
	case '"':
		return l.readString(pos)
	}

	switch {
	case isDigit(l.ch):
		return l.readNumber(pos)
	case isIdentifierStart(l.ch):
		literal := l.readIdentifier()
		tt, ok := keywords[literal]
		if !ok {
			tt = tokenIdent
		}
		return Token{Type: tt, Lexeme: literal, Pos: pos}
	default:
		l.errorAt(pos, "Unexpected character.")
		illegal := string(l.ch)
		l.readRune()
		return Token{Type: tokenIllegal, Lexeme: illegal, Pos: pos}
	}
}

func (l *lexer) single(tt TokenType, pos Position) Token {
	l.readRune()
	return Token{Type: tt, Lexeme: string(tt), Pos: pos}
}

func (l *lexer) either(next rune, matched, fallback TokenType, pos Position) Token {
	if l.peekRune() == next {
		l.readRune()
		return l.single(matched, pos)
	}
	return l.single(fallback, pos)
}

func (l *lexer) currentOffset() int {
	return l.offset - l.width
}

func (l *lexer) skipWhitespaceAndComments() {
	for {
		switch l.ch {
		case ' ', '\t', '\r', '\n':
			l.readRune()
		case '/':
			if l.peekRune() != '/' {
				return
			}
			for !l.atEnd() && l.ch != '\n' {
				l.readRune()
			}
		default:
			return
		}
	}
}

func (l *lexer) readIdentifier() string {
	start := l.currentOffset()
	for isIdentifierRune(l.peekRune()) {
		l.readRune()
	}
	literal := l.input[start:l.offset]
	l.readRune()
	return literal
}

func (l *lexer) readNumber(pos Position) Token {
	start := l.currentOffset()
	for isDigit(l.peekRune()) {
		l.readRune()
	}
	// A fractional part needs a digit after the dot; "1." is a number
	// followed by a dot token.
	if l.peekRune() == '.' && l.offset+1 < len(l.input) && isDigit(rune(l.input[l.offset+1])) {
		l.readRune()
		for isDigit(l.peekRune()) {
			l.readRune()
		}
	}
	lexeme := l.input[start:l.offset]
	l.readRune()

	value, err := strconv.ParseFloat(lexeme, 64)
	if err != nil {
		l.errorAt(pos, "Invalid number literal.")
		return Token{Type: tokenIllegal, Lexeme: lexeme, Pos: pos}
	}
	return Token{Type: tokenNumber, Lexeme: lexeme, Literal: value, Pos: pos}
}

func (l *lexer) readString(pos Position) Token {
	start := l.currentOffset()
	for {
		l.readRune()
		if l.atEnd() {
			l.errorAt(Position{Line: l.line, Column: l.column}, "Unterminated string.")
			return Token{Type: tokenIllegal, Lexeme: l.input[start:], Pos: pos}
		}
		if l.ch == '"' {
			break
		}
	}
	lexeme := l.input[start:l.offset]
	l.readRune()
	return Token{Type: tokenString, Lexeme: lexeme, Literal: lexeme[1 : len(lexeme)-1], Pos: pos}
}

func (l *lexer) errorAt(pos Position, message string) {
	l.diagnostics = append(l.diagnostics, Diagnostic{Phase: PhaseScan, Pos: pos, Message: message})
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentifierStart(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
}

func isIdentifierRune(r rune) bool {
	return isIdentifierStart(r) || isDigit(r)
}
