package lox

const (
	lowestPrec = iota
	precAssign
	precOr
	precAnd
	precEquality
	precComparison
	precSum
	precProduct
	precPrefix
	precCall
)

var precedences = map[TokenType]int{
	tokenAssign:   precAssign,
	tokenOr:       precOr,
	tokenAnd:      precAnd,
	tokenEQ:       precEquality,
	tokenNotEQ:    precEquality,
	tokenLT:       precComparison,
	tokenLTE:      precComparison,
	tokenGT:       precComparison,
	tokenGTE:      precComparison,
	tokenPlus:     precSum,
	tokenMinus:    precSum,
	tokenSlash:    precProduct,
	tokenAsterisk: precProduct,
	tokenLParen:   precCall,
	tokenDot:      precCall,
}

func (p *parser) expression() Expression {
	return p.parseExpression(lowestPrec)
}

func (p *parser) parseExpression(precedence int) Expression {
	tok := p.peek()
	prefix := p.prefixFns[tok.Type]
	if prefix == nil {
		p.fail(tok, "Expect expression.")
	}
	p.advance()
	left := prefix(tok)

	for precedence < precedences[p.peek().Type] {
		tok := p.advance()
		left = p.infixFns[tok.Type](left, tok)
	}
	return left
}

func (p *parser) parseLiteral(tok Token) Expression {
	var value Value
	switch tok.Type {
	case tokenNumber:
		value = NewNumber(tok.Literal.(float64))
	case tokenString:
		value = NewString(tok.Literal.(string))
	case tokenTrue:
		value = NewBool(true)
	case tokenFalse:
		value = NewBool(false)
	default:
		value = NewNil()
	}
	return &LiteralExpr{Value: value, position: tok.Pos}
}

func (p *parser) parseVariable(tok Token) Expression {
	return &VariableExpr{Name: tok}
}

func (p *parser) parseThis(tok Token) Expression {
	return &ThisExpr{Keyword: tok}
}

func (p *parser) parseSuper(tok Token) Expression {
	p.consume(tokenDot, "Expect '.' after 'super'.")
	method := p.consume(tokenIdent, "Expect superclass method name.")
	return &SuperExpr{Keyword: tok, Method: method}
}

func (p *parser) parseGrouping(tok Token) Expression {
	expr := p.expression()
	p.consume(tokenRParen, "Expect ')' after expression.")
	return &GroupingExpr{Expression: expr, position: tok.Pos}
}

func (p *parser) parseUnary(tok Token) Expression {
	return &UnaryExpr{Operator: tok, Right: p.parseExpression(precPrefix)}
}

func (p *parser) parseBinary(left Expression, tok Token) Expression {
	right := p.parseExpression(precedences[tok.Type])
	return &BinaryExpr{Left: left, Operator: tok, Right: right}
}

func (p *parser) parseLogical(left Expression, tok Token) Expression {
	right := p.parseExpression(precedences[tok.Type])
	return &LogicalExpr{Left: left, Operator: tok, Right: right}
}

// parseAssign is right-associative. An invalid target is reported at the
// '=' but parsing carries on, since the parser is not confused.
func (p *parser) parseAssign(left Expression, equals Token) Expression {
	value := p.parseExpression(precAssign - 1)

	switch target := left.(type) {
	case *VariableExpr:
		return &AssignExpr{Name: target.Name, Value: value}
	case *GetExpr:
		return &SetExpr{Object: target.Object, Name: target.Name, Value: value}
	}
	p.errorAt(equals, "Invalid assignment target.")
	return left
}

func (p *parser) parseCall(callee Expression, _ Token) Expression {
	var args []Expression
	if !p.check(tokenRParen) {
		for {
			if len(args) >= maxArgs {
				p.errorAt(p.peek(), "Can't have more than 255 arguments.")
			}
			args = append(args, p.expression())
			if !p.match(tokenComma) {
				break
			}
		}
	}
	paren := p.consume(tokenRParen, "Expect ')' after arguments.")
	return &CallExpr{Callee: callee, Paren: paren, Args: args}
}

func (p *parser) parseGet(object Expression, _ Token) Expression {
	name := p.consume(tokenIdent, "Expect property name after '.'.")
	return &GetExpr{Object: object, Name: name}
}
