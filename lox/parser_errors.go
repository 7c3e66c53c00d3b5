package lox

// errorAt records a syntax error without unwinding. The parser is still
// in a known state, as for an invalid assignment target.
func (p *parser) errorAt(tok Token, message string) {
	p.diagnostics = append(p.diagnostics, diagnosticAt(PhaseParse, tok, message))
}

// fail records a syntax error and unwinds to the enclosing declaration.
func (p *parser) fail(tok Token, message string) {
	p.errorAt(tok, message)
	panic(parseBailout{})
}

// recoverDeclaration turns a bailout into resynchronization. Any other
// panic is re-raised.
func (p *parser) recoverDeclaration(stmt *Statement) {
	r := recover()
	if r == nil {
		return
	}
	if _, ok := r.(parseBailout); !ok {
		panic(r)
	}
	p.synchronize()
	*stmt = nil
}
