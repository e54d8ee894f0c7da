package syntax

import (
	"minicc/ast"
)

// block := '{' {block_item} '}' ;
// block_item := local_decl | stmt ;
func (p *Parser) parseBlock() *ast.Block {
	startSpan := p.want(TOK_LBRACE).Span

	var stmts []ast.ASTNode
	for !p.has(TOK_RBRACE) {
		if p.has(TOK_EOF) {
			p.rejectExpected("`}`")
		}

		if p.isTypeSpec() {
			stmts = append(stmts, p.parseLocalDecl()...)
		} else {
			stmts = append(stmts, p.parseStmt())
		}
	}

	p.next()

	return &ast.Block{
		ASTBase: ast.NewASTBaseOver(startSpan, p.lookbehind.Span),
		Stmts:   stmts,
	}
}

// local_decl := type_spec var_declarators ;
func (p *Parser) parseLocalDecl() []ast.ASTNode {
	startSpan := p.tok.Span
	baseType := p.parseTypeSpec()
	return p.parseVarDeclarators(startSpan, baseType)
}

// stmt := block | if_stmt | while_loop | do_while_loop | for_loop
//
//	| 'return' [expr] ';' | 'break' ';' | 'continue' ';' | ';' | expr ';' ;
func (p *Parser) parseStmt() ast.ASTNode {
	switch p.tok.Kind {
	case TOK_LBRACE:
		return p.parseBlock()
	case TOK_IF:
		return p.parseIfStmt()
	case TOK_WHILE:
		return p.parseWhileLoop()
	case TOK_DO:
		return p.parseDoWhileLoop()
	case TOK_FOR:
		return p.parseForLoop()
	case TOK_BREAK, TOK_CONTINUE:
		kwTok := p.tok
		p.next()
		p.want(TOK_SEMI)

		return &ast.KeywordStmt{
			ASTBase: ast.NewASTBaseOn(kwTok.Span),
			Kind:    kwTok.Kind,
			Name:    kwTok.Value,
		}
	case TOK_RETURN:
		startSpan := p.tok.Span
		p.next()

		var value ast.ASTExpr
		if !p.has(TOK_SEMI) {
			value = p.parseExpr()
		}

		p.want(TOK_SEMI)

		return &ast.ReturnStmt{
			ASTBase: ast.NewASTBaseOver(startSpan, p.lookbehind.Span),
			Value:   value,
		}
	case TOK_SEMI:
		p.next()
		return &ast.NullStmt{ASTBase: ast.NewASTBaseOn(p.lookbehind.Span)}
	default:
		if p.isTypeSpec() {
			p.errorOn(p.tok.Span, "declaration is not allowed here")
		}

		return p.parseExprStmt()
	}
}

// expr_stmt := expr ';' ;
func (p *Parser) parseExprStmt() *ast.ExprStmt {
	expr := p.parseExpr()
	p.want(TOK_SEMI)

	return &ast.ExprStmt{
		ASTBase: ast.NewASTBaseOver(expr.Span(), p.lookbehind.Span),
		Expr:    expr,
	}
}

// if_stmt := 'if' '(' expr ')' stmt ['else' stmt] ;
func (p *Parser) parseIfStmt() *ast.IfStmt {
	startSpan := p.want(TOK_IF).Span

	p.want(TOK_LPAREN)
	cond := p.parseExpr()
	p.want(TOK_RPAREN)

	then := p.parseStmt()

	var elseStmt ast.ASTNode
	if p.has(TOK_ELSE) {
		p.next()
		elseStmt = p.parseStmt()
	}

	return &ast.IfStmt{
		ASTBase: ast.NewASTBaseOver(startSpan, p.lookbehind.Span),
		Cond:    cond,
		Then:    then,
		Else:    elseStmt,
	}
}

// while_loop := 'while' '(' expr ')' stmt ;
func (p *Parser) parseWhileLoop() *ast.WhileLoop {
	startSpan := p.want(TOK_WHILE).Span

	p.want(TOK_LPAREN)
	cond := p.parseExpr()
	p.want(TOK_RPAREN)

	body := p.parseStmt()

	return &ast.WhileLoop{
		ASTBase: ast.NewASTBaseOver(startSpan, p.lookbehind.Span),
		Cond:    cond,
		Body:    body,
	}
}

// do_while_loop := 'do' stmt 'while' '(' expr ')' ';' ;
func (p *Parser) parseDoWhileLoop() *ast.DoWhileLoop {
	startSpan := p.want(TOK_DO).Span

	body := p.parseStmt()

	p.want(TOK_WHILE)
	p.want(TOK_LPAREN)
	cond := p.parseExpr()
	p.want(TOK_RPAREN)
	p.want(TOK_SEMI)

	return &ast.DoWhileLoop{
		ASTBase: ast.NewASTBaseOver(startSpan, p.lookbehind.Span),
		Body:    body,
		Cond:    cond,
	}
}

// for_loop := 'for' '(' [local_decl | expr ';' | ';'] [expr] ';' [expr] ')' stmt ;
func (p *Parser) parseForLoop() *ast.ForLoop {
	startSpan := p.want(TOK_FOR).Span
	p.want(TOK_LPAREN)

	var init []ast.ASTNode
	if p.isTypeSpec() {
		init = p.parseLocalDecl()
	} else if p.has(TOK_SEMI) {
		p.next()
	} else {
		init = []ast.ASTNode{p.parseExprStmt()}
	}

	var cond ast.ASTExpr
	if !p.has(TOK_SEMI) {
		cond = p.parseExpr()
	}
	p.want(TOK_SEMI)

	var post ast.ASTExpr
	if !p.has(TOK_RPAREN) {
		post = p.parseExpr()
	}
	p.want(TOK_RPAREN)

	body := p.parseStmt()

	return &ast.ForLoop{
		ASTBase: ast.NewASTBaseOver(startSpan, p.lookbehind.Span),
		Init:    init,
		Cond:    cond,
		Post:    post,
		Body:    body,
	}
}
