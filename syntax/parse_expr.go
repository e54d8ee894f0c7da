package syntax

import (
	"math"
	"minicc/ast"
	"minicc/report"
	"strconv"
	"strings"
)

// assignOps maps compound assignment tokens to their binary operator.
var assignOps = map[int]int{
	TOK_PLUS_ASSIGN:   TOK_PLUS,
	TOK_MINUS_ASSIGN:  TOK_MINUS,
	TOK_STAR_ASSIGN:   TOK_STAR,
	TOK_DIV_ASSIGN:    TOK_DIV,
	TOK_MOD_ASSIGN:    TOK_MOD,
	TOK_AND_ASSIGN:    TOK_AMP,
	TOK_OR_ASSIGN:     TOK_BWOR,
	TOK_XOR_ASSIGN:    TOK_BWXOR,
	TOK_LSHIFT_ASSIGN: TOK_LSHIFT,
	TOK_RSHIFT_ASSIGN: TOK_RSHIFT,
}

// expr := binop_expr [assign_op expr] ;
// assign_op := '=' | '+=' | '-=' | '*=' | '/=' | '%=' | '&=' | '|=' | '^='
//
//	| '<<=' | '>>=' ;
func (p *Parser) parseExpr() ast.ASTExpr {
	lhs := p.parseBinOpExpr()

	if p.has(TOK_ASSIGN) {
		p.next()
		rhs := p.parseExpr()

		return &ast.Assign{
			ExprBase: ast.NewExprBase(report.NewSpanOver(lhs.Span(), rhs.Span())),
			Lhs:      lhs,
			Rhs:      rhs,
		}
	}

	if binKind, ok := assignOps[p.tok.Kind]; ok {
		opTok := p.tok
		p.next()
		rhs := p.parseExpr()

		return &ast.Assign{
			ExprBase: ast.NewExprBase(report.NewSpanOver(lhs.Span(), rhs.Span())),
			Op: &ast.Oper{
				Kind: binKind,
				Name: strings.TrimSuffix(opTok.Value, "="),
				Span: opTok.Span,
			},
			Lhs: lhs,
			Rhs: rhs,
		}
	}

	return lhs
}

// -----------------------------------------------------------------------------

// lor_expr := land_expr {'||' land_expr} ;
// land_expr := bwor_expr {'&&' bwor_expr} ;
// bwor_expr := bwxor_expr {'|' bwxor_expr} ;
// bwxor_expr := bwand_expr {'^' bwand_expr} ;
// bwand_expr := eq_expr {'&' eq_expr} ;
// eq_expr := comp_expr {('==' | '!=') comp_expr} ;
// comp_expr := shift_expr {('<' | '>' | '<=' | '>=') shift_expr} ;
// shift_expr := arith_expr {('<<' | '>>') arith_expr} ;
// arith_expr := term {('+' | '-') term} ;
// term := unary_expr {('*' | '/' | '%') unary_expr} ;
func (p *Parser) parseBinOpExpr() ast.ASTExpr {
	return p.precedenceParse(p.parseUnaryExpr(), len(precTable))
}

// precTable is the operator precedence table for binary operators. The table is
// ordered highest to lowest precedence.
var precTable = [][]int{
	{TOK_STAR, TOK_DIV, TOK_MOD},
	{TOK_PLUS, TOK_MINUS},
	{TOK_LSHIFT, TOK_RSHIFT},
	{TOK_LT, TOK_GT, TOK_LTEQ, TOK_GTEQ},
	{TOK_EQ, TOK_NEQ},
	{TOK_AMP},
	{TOK_BWXOR},
	{TOK_BWOR},
	{TOK_LAND},
	{TOK_LOR},
}

// precedenceParse performs operator precedence parsing for left associative
// binary operators whose precedence level is below maxPrec.
func (p *Parser) precedenceParse(lhs ast.ASTExpr, maxPrec int) ast.ASTExpr {
	for {
		// Check to see if the lookahead matches any of the operators at or
		// above our precedence level.
		var op *Token
		var opPrec int
		for prec, precLevel := range precTable[:maxPrec] {
			if p.hasOneOf(precLevel...) {
				op = p.tok
				opPrec = prec
				break
			}
		}

		if op == nil {
			return lhs
		}

		p.next()
		rhs := p.parseUnaryExpr()

		// Any tighter binding operators following the right operand belong to
		// the right operand.
		for {
			tighter := false
			for _, precLevel := range precTable[:opPrec] {
				if p.hasOneOf(precLevel...) {
					tighter = true
					break
				}
			}

			if !tighter {
				break
			}

			rhs = p.precedenceParse(rhs, opPrec)
		}

		lhs = &ast.BinaryOp{
			ExprBase: ast.NewExprBase(report.NewSpanOver(lhs.Span(), rhs.Span())),
			Op: ast.Oper{
				Kind: op.Kind,
				Name: op.Value,
				Span: op.Span,
			},
			Lhs: lhs,
			Rhs: rhs,
		}
	}
}

// -----------------------------------------------------------------------------

// unary_expr := ('-' | '+' | '!' | '~') unary_expr | '*' unary_expr
//
//	| '&' unary_expr | ('++' | '--') unary_expr
//	| '(' type_name ')' unary_expr | postfix_expr ;
func (p *Parser) parseUnaryExpr() ast.ASTExpr {
	startTok := p.tok

	switch p.tok.Kind {
	case TOK_MINUS, TOK_PLUS, TOK_NOT, TOK_COMPL:
		p.next()
		operand := p.parseUnaryExpr()

		return &ast.UnaryOp{
			ExprBase: ast.NewExprBase(report.NewSpanOver(startTok.Span, operand.Span())),
			Op:       ast.Oper{Kind: startTok.Kind, Name: startTok.Value, Span: startTok.Span},
			Operand:  operand,
		}
	case TOK_STAR:
		p.next()
		operand := p.parseUnaryExpr()

		return &ast.Deref{
			ExprBase: ast.NewExprBase(report.NewSpanOver(startTok.Span, operand.Span())),
			Ptr:      operand,
		}
	case TOK_AMP:
		p.next()
		operand := p.parseUnaryExpr()

		return &ast.AddressOf{
			ExprBase: ast.NewExprBase(report.NewSpanOver(startTok.Span, operand.Span())),
			Elem:     operand,
		}
	case TOK_INC, TOK_DEC:
		p.next()
		operand := p.parseUnaryExpr()

		return &ast.IncDec{
			ExprBase: ast.NewExprBase(report.NewSpanOver(startTok.Span, operand.Span())),
			Op:       ast.Oper{Kind: startTok.Kind, Name: startTok.Value, Span: startTok.Span},
			Operand:  operand,
		}
	case TOK_LPAREN:
		// A parenthesis followed by a type is a cast.
		if next := p.peek(); TOK_VOID <= next.Kind && next.Kind <= TOK_DOUBLE {
			p.next()
			typ := p.parsePointers(p.parseTypeSpec())
			p.want(TOK_RPAREN)

			src := p.parseUnaryExpr()

			return &ast.Cast{
				ExprBase: ast.NewTypedExprBase(report.NewSpanOver(startTok.Span, src.Span()), typ),
				Src:      src,
			}
		}
	}

	return p.parsePostfixExpr()
}

// postfix_expr := atom {'(' [expr {',' expr}] ')' | '[' expr ']' | '++' | '--'} ;
func (p *Parser) parsePostfixExpr() ast.ASTExpr {
	expr := p.parseAtom()

	for {
		switch p.tok.Kind {
		case TOK_LPAREN:
			p.next()

			var args []ast.ASTExpr
			if !p.has(TOK_RPAREN) {
				for {
					args = append(args, p.parseExpr())

					if p.has(TOK_COMMA) {
						p.next()
					} else {
						break
					}
				}
			}

			p.want(TOK_RPAREN)

			expr = &ast.Call{
				ExprBase: ast.NewExprBase(report.NewSpanOver(expr.Span(), p.lookbehind.Span)),
				Func:     expr,
				Args:     args,
			}
		case TOK_LBRACKET:
			p.next()
			index := p.parseExpr()
			p.want(TOK_RBRACKET)

			// `a[i]` is `*(a + i)`.
			span := report.NewSpanOver(expr.Span(), p.lookbehind.Span)
			expr = &ast.Deref{
				ExprBase: ast.NewExprBase(span),
				Ptr: &ast.BinaryOp{
					ExprBase: ast.NewExprBase(span),
					Op:       ast.Oper{Kind: TOK_PLUS, Name: "+", Span: span},
					Lhs:      expr,
					Rhs:      index,
				},
			}
		case TOK_INC, TOK_DEC:
			opTok := p.tok
			p.next()

			expr = &ast.IncDec{
				ExprBase: ast.NewExprBase(report.NewSpanOver(expr.Span(), opTok.Span)),
				Op:       ast.Oper{Kind: opTok.Kind, Name: opTok.Value, Span: opTok.Span},
				Operand:  expr,
				Postfix:  true,
			}
		default:
			return expr
		}
	}
}

// atom := IDENT | INTLIT | FLOATLIT | CHARLIT | STRINGLIT {STRINGLIT}
//
//	| '(' expr ')' ;
func (p *Parser) parseAtom() ast.ASTExpr {
	tok := p.tok

	switch tok.Kind {
	case TOK_IDENT:
		p.next()
		return &ast.Identifier{
			ExprBase: ast.NewExprBase(tok.Span),
			Name:     tok.Value,
		}
	case TOK_INTLIT:
		p.next()
		return p.makeIntLit(tok)
	case TOK_FLOATLIT:
		p.next()

		value, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil && !isRangeError(err) {
			p.errorOn(tok.Span, "invalid floating literal `%s`", tok.Value)
		}

		return &ast.Literal{
			ExprBase:   ast.NewExprBase(tok.Span),
			Kind:       ast.LitFloat,
			Value:      tok.Value,
			FloatValue: value,
		}
	case TOK_CHARLIT:
		p.next()

		// char is signed.
		return &ast.Literal{
			ExprBase: ast.NewExprBase(tok.Span),
			Kind:     ast.LitChar,
			Value:    tok.Value,
			IntValue: int64(int8(tok.Value[0])),
		}
	case TOK_STRINGLIT:
		// Adjacent string literals are concatenated.
		sb := strings.Builder{}
		for p.has(TOK_STRINGLIT) {
			sb.WriteString(p.tok.Value)
			p.next()
		}

		return &ast.Literal{
			ExprBase: ast.NewExprBase(report.NewSpanOver(tok.Span, p.lookbehind.Span)),
			Kind:     ast.LitString,
			Value:    sb.String(),
		}
	case TOK_LPAREN:
		p.next()
		expr := p.parseExpr()
		p.want(TOK_RPAREN)
		return expr
	default:
		p.rejectExpected("expression")
		return nil
	}
}

// makeIntLit builds an integer literal from its token.  A literal with an `l`
// suffix or whose value does not fit in an int is a long.
func (p *Parser) makeIntLit(tok *Token) *ast.Literal {
	text := trimIntSuffix(tok.Value)

	value, err := strconv.ParseUint(text, 0, 64)
	if err != nil || value > math.MaxInt64 {
		p.errorOn(tok.Span, "integer literal `%s` is too large", tok.Value)
	}

	kind := ast.LitInt
	if text != tok.Value || value > math.MaxInt32 {
		kind = ast.LitLong
	}

	return &ast.Literal{
		ExprBase: ast.NewExprBase(tok.Span),
		Kind:     kind,
		Value:    tok.Value,
		IntValue: int64(value),
	}
}

// trimIntSuffix removes the long suffix from an integer literal.
func trimIntSuffix(text string) string {
	return strings.TrimRight(text, "lL")
}

// isRangeError returns whether err is a strconv range error.  Out of range
// floating literals become infinity or zero.
func isRangeError(err error) bool {
	if numErr, ok := err.(*strconv.NumError); ok {
		return numErr.Err == strconv.ErrRange
	}

	return false
}
