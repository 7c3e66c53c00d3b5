package lox

func (p *parser) declaration() (stmt Statement) {
	defer p.recoverDeclaration(&stmt)

	switch {
	case p.match(tokenClass):
		return p.classDeclaration()
	case p.match(tokenFun):
		return p.function("function")
	case p.match(tokenVar):
		return p.varDeclaration()
	default:
		return p.statement()
	}
}

func (p *parser) classDeclaration() Statement {
	name := p.consume(tokenIdent, "Expect class name.")

	var superclass *VariableExpr
	if p.match(tokenLT) {
		superclass = &VariableExpr{Name: p.consume(tokenIdent, "Expect superclass name.")}
	}

	p.consume(tokenLBrace, "Expect '{' before class body.")
	var methods []*FunctionStmt
	for !p.check(tokenRBrace) && !p.atEnd() {
		methods = append(methods, p.function("method"))
	}
	p.consume(tokenRBrace, "Expect '}' after class body.")

	return &ClassStmt{Name: name, Superclass: superclass, Methods: methods}
}

// function parses a named function after its introducer; kind is
// "function" or "method" and only shapes the error messages.
func (p *parser) function(kind string) *FunctionStmt {
	name := p.consume(tokenIdent, "Expect "+kind+" name.")
	p.consume(tokenLParen, "Expect '(' after "+kind+" name.")

	var params []Token
	if !p.check(tokenRParen) {
		for {
			if len(params) >= maxArgs {
				p.errorAt(p.peek(), "Can't have more than 255 parameters.")
			}
			params = append(params, p.consume(tokenIdent, "Expect parameter name."))
			if !p.match(tokenComma) {
				break
			}
		}
	}
	p.consume(tokenRParen, "Expect ')' after parameters.")

	p.consume(tokenLBrace, "Expect '{' before "+kind+" body.")
	body := p.block()
	return &FunctionStmt{Name: name, Params: params, Body: body}
}

func (p *parser) varDeclaration() Statement {
	name := p.consume(tokenIdent, "Expect variable name.")

	var initializer Expression
	if p.match(tokenAssign) {
		initializer = p.expression()
	}

	p.consume(tokenSemicolon, "Expect ';' after variable declaration.")
	return &VarStmt{Name: name, Initializer: initializer}
}

func (p *parser) statement() Statement {
	switch {
	case p.match(tokenFor):
		return p.forStatement()
	case p.match(tokenIf):
		return p.ifStatement()
	case p.match(tokenPrint):
		return p.printStatement()
	case p.match(tokenReturn):
		return p.returnStatement()
	case p.match(tokenWhile):
		return p.whileStatement()
	case p.match(tokenLBrace):
		pos := p.previous().Pos
		return &BlockStmt{Statements: p.block(), position: pos}
	default:
		return p.expressionStatement()
	}
}

// forStatement desugars a for loop into an optional initializer block
// around a while loop whose body runs the increment after each pass.
func (p *parser) forStatement() Statement {
	pos := p.previous().Pos
	p.consume(tokenLParen, "Expect '(' after 'for'.")

	var initializer Statement
	switch {
	case p.match(tokenSemicolon):
	case p.match(tokenVar):
		initializer = p.varDeclaration()
	default:
		initializer = p.expressionStatement()
	}

	var condition Expression
	if !p.check(tokenSemicolon) {
		condition = p.expression()
	}
	p.consume(tokenSemicolon, "Expect ';' after loop condition.")

	var increment Expression
	if !p.check(tokenRParen) {
		increment = p.expression()
	}
	p.consume(tokenRParen, "Expect ')' after for clauses.")

	body := p.statement()

	if increment != nil {
		body = &BlockStmt{
			Statements: []Statement{body, &ExprStmt{Expr: increment}},
			position:   pos,
		}
	}
	if condition == nil {
		condition = &LiteralExpr{Value: NewBool(true), position: pos}
	}
	body = &WhileStmt{Condition: condition, Body: body, position: pos}

	if initializer != nil {
		body = &BlockStmt{Statements: []Statement{initializer, body}, position: pos}
	}
	return body
}

func (p *parser) ifStatement() Statement {
	pos := p.previous().Pos
	p.consume(tokenLParen, "Expect '(' after 'if'.")
	condition := p.expression()
	p.consume(tokenRParen, "Expect ')' after if condition.")

	then := p.statement()
	var otherwise Statement
	if p.match(tokenElse) {
		otherwise = p.statement()
	}
	return &IfStmt{Condition: condition, Then: then, Else: otherwise, position: pos}
}

func (p *parser) printStatement() Statement {
	pos := p.previous().Pos
	value := p.expression()
	p.consume(tokenSemicolon, "Expect ';' after value.")
	return &PrintStmt{Expr: value, position: pos}
}

func (p *parser) returnStatement() Statement {
	keyword := p.previous()
	var value Expression
	if !p.check(tokenSemicolon) {
		value = p.expression()
	}
	p.consume(tokenSemicolon, "Expect ';' after return value.")
	return &ReturnStmt{Keyword: keyword, Value: value}
}

func (p *parser) whileStatement() Statement {
	pos := p.previous().Pos
	p.consume(tokenLParen, "Expect '(' after 'while'.")
	condition := p.expression()
	p.consume(tokenRParen, "Expect ')' after condition.")
	body := p.statement()
	return &WhileStmt{Condition: condition, Body: body, position: pos}
}

// block parses declarations up to the closing brace. The opening brace
// has already been consumed.
func (p *parser) block() []Statement {
	var stmts []Statement
	for !p.check(tokenRBrace) && !p.atEnd() {
		if stmt := p.declaration(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	p.consume(tokenRBrace, "Expect '}' after block.")
	return stmts
}

func (p *parser) expressionStatement() Statement {
	expr := p.expression()
	p.consume(tokenSemicolon, "Expect ';' after expression.")
	return &ExprStmt{Expr: expr}
}
