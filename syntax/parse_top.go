package syntax

import (
	"minicc/ast"
	"minicc/report"
	"minicc/types"
	"strconv"
)

// program := {top_decl} EOF ;
func (p *Parser) parseProgram() *ast.Program {
	startSpan := p.tok.Span

	var decls []ast.ASTNode
	for !p.has(TOK_EOF) {
		if !p.isTypeSpec() {
			p.rejectExpected("declaration")
		}

		decls = append(decls, p.parseTopDecl()...)
	}

	return &ast.Program{
		ASTBase: ast.NewASTBaseOver(startSpan, p.tok.Span),
		Decls:   decls,
	}
}

// top_decl := type_spec (func_decl | var_declarators) ;
// func_decl := {'*'} IDENT '(' param_list ')' (block | ';') ;
func (p *Parser) parseTopDecl() []ast.ASTNode {
	startSpan := p.tok.Span
	baseType := p.parseTypeSpec()

	// Look past the pointer stars to see if this is a function.
	ahead := p.ndx - 1
	for ahead < len(p.toks) && p.toks[ahead].Kind == TOK_STAR {
		ahead++
	}

	if ahead+1 < len(p.toks) && p.toks[ahead].Kind == TOK_IDENT && p.toks[ahead+1].Kind == TOK_LPAREN {
		return []ast.ASTNode{p.parseFuncDecl(startSpan, baseType)}
	}

	decls := p.parseVarDeclarators(startSpan, baseType)
	return decls
}

// parseFuncDecl parses a function definition or prototype after its base
// return type.
func (p *Parser) parseFuncDecl(startSpan *report.TextSpan, baseType types.Type) *ast.FuncDecl {
	retType := p.parsePointers(baseType)
	nameTok := p.want(TOK_IDENT)

	p.want(TOK_LPAREN)
	params, variadic := p.parseParamList()
	p.want(TOK_RPAREN)

	sig := &types.FuncType{ReturnType: retType, Variadic: variadic}
	for _, param := range params {
		sig.ParamTypes = append(sig.ParamTypes, param.Type)
	}

	fd := &ast.FuncDecl{
		Name:      nameTok.Value,
		NameSpan:  nameTok.Span,
		Signature: sig,
		Params:    params,
	}

	if p.has(TOK_LBRACE) {
		if variadic {
			p.errorOn(nameTok.Span, "variadic function `%s` can only be declared", nameTok.Value)
		}

		for _, param := range params {
			if param.Name == "" {
				p.errorOn(param.Span(), "parameter name omitted in function definition")
			}
		}

		fd.Body = p.parseBlock()
	} else {
		p.want(TOK_SEMI)
	}

	fd.ASTBase = ast.NewASTBaseOver(startSpan, p.lookbehind.Span)
	return fd
}

// param_list := 'void' | [param {',' param} [',' '...']] ;
// param := type_spec {'*'} [IDENT] {'[' [INTLIT] ']'} ;
func (p *Parser) parseParamList() ([]*ast.Param, bool) {
	if p.has(TOK_VOID) && p.peek().Kind == TOK_RPAREN {
		p.next()
		return nil, false
	}

	if p.has(TOK_RPAREN) {
		return nil, false
	}

	var params []*ast.Param
	for {
		if !p.isTypeSpec() {
			p.rejectExpected("parameter type")
		}

		startSpan := p.tok.Span
		typ := p.parsePointers(p.parseTypeSpec())

		name := ""
		if p.has(TOK_IDENT) {
			name = p.tok.Value
			p.next()
		}

		// Array parameters are adjusted to pointers.
		if p.has(TOK_LBRACKET) {
			p.next()
			if p.has(TOK_INTLIT) {
				p.next()
			}
			p.want(TOK_RBRACKET)

			typ = &types.PointerType{ElemType: p.parseArrayDims(typ)}
		}

		if types.IsVoid(typ) {
			p.errorOn(startSpan, "parameter cannot have type void")
		}

		params = append(params, &ast.Param{
			ASTBase: ast.NewASTBaseOver(startSpan, p.lookbehind.Span),
			Name:    name,
			Type:    typ,
		})

		if p.has(TOK_COMMA) {
			p.next()

			if p.has(TOK_ELLIPSIS) {
				p.next()
				return params, true
			}

			continue
		}

		return params, false
	}
}

// var_declarators := var_declarator {',' var_declarator} ';' ;
// var_declarator := {'*'} IDENT {'[' INTLIT ']'} ['=' expr] ;
func (p *Parser) parseVarDeclarators(startSpan *report.TextSpan, baseType types.Type) []ast.ASTNode {
	var decls []ast.ASTNode

	for {
		declStart := p.tok.Span
		if len(decls) == 0 {
			declStart = startSpan
		}

		typ := p.parsePointers(baseType)
		nameTok := p.want(TOK_IDENT)
		typ = p.parseArrayDims(typ)

		if types.IsVoid(typ) {
			p.errorOn(nameTok.Span, "variable `%s` declared void", nameTok.Value)
		}

		var init ast.ASTExpr
		if p.has(TOK_ASSIGN) {
			p.next()
			init = p.parseExpr()
		}

		decls = append(decls, &ast.VarDecl{
			ASTBase:  ast.NewASTBaseOver(declStart, p.lookbehind.Span),
			Name:     nameTok.Value,
			NameSpan: nameTok.Span,
			Type:     typ,
			Init:     init,
		})

		if p.has(TOK_COMMA) {
			p.next()
			continue
		}

		p.want(TOK_SEMI)
		return decls
	}
}

// -----------------------------------------------------------------------------

// isTypeSpec returns whether the parser is positioned on a type specifier.
func (p *Parser) isTypeSpec() bool {
	return TOK_VOID <= p.tok.Kind && p.tok.Kind <= TOK_DOUBLE
}

// type_spec := 'void' | 'char' | 'int' | 'long' | 'double' ;
func (p *Parser) parseTypeSpec() types.Type {
	var typ types.Type
	switch p.tok.Kind {
	case TOK_VOID:
		typ = types.PrimVoid
	case TOK_CHAR:
		typ = types.PrimChar
	case TOK_INT:
		typ = types.PrimInt
	case TOK_LONG:
		typ = types.PrimLong
	case TOK_DOUBLE:
		typ = types.PrimDouble
	default:
		p.rejectExpected("type")
	}

	p.next()
	return typ
}

// pointers := {'*'} ;
func (p *Parser) parsePointers(typ types.Type) types.Type {
	for p.has(TOK_STAR) {
		p.next()
		typ = &types.PointerType{ElemType: typ}
	}

	return typ
}

// array_dims := {'[' INTLIT ']'} ;
func (p *Parser) parseArrayDims(elemType types.Type) types.Type {
	var dims []int
	for p.has(TOK_LBRACKET) {
		p.next()

		lenTok := p.want(TOK_INTLIT)
		n, err := strconv.ParseInt(trimIntSuffix(lenTok.Value), 0, 64)
		if err != nil || n <= 0 || n > 1<<31 {
			p.errorOn(lenTok.Span, "invalid array length `%s`", lenTok.Value)
		}

		dims = append(dims, int(n))
		p.want(TOK_RBRACKET)
	}

	// The first dimension is the outermost.
	for i := len(dims) - 1; i >= 0; i-- {
		elemType = &types.ArrayType{ElemType: elemType, Len: dims[i]}
	}

	return elemType
}
