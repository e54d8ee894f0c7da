package syntax

import (
	"fmt"
	"minicc/ast"
	"minicc/report"
)

// NOTE: All parsing functions (that are not utility/API functions) are
// commented with the EBNF notation of the grammar they parse.

// Parser is a recursive descent parser over a token sequence produced by the
// lexer.  All parsing functions assume that they begin with the parser
// centered on the first token of their production and must consume all tokens
// (including the last) of their production, leaving the parser on the next
// token.  Errors are raised by panicking with a compile error which is caught
// at the top of the parse.
type Parser struct {
	// The token sequence being parsed.  It always ends with an EOF token.
	toks []*Token

	// The index of the next token to read.
	ndx int

	// The token the parser is positioned on.
	tok *Token

	// The token the parser was previously positioned on.
	lookbehind *Token
}

// Parse parses a token sequence into a program.
func Parse(toks []*Token) (prog *ast.Program, err error) {
	defer report.CatchErrors(&err)

	if len(toks) == 0 || toks[len(toks)-1].Kind != TOK_EOF {
		report.ReportICE("token sequence does not end with end of input")
	}

	p := &Parser{toks: toks}
	p.next()

	prog = p.parseProgram()
	return
}

// -----------------------------------------------------------------------------

// next moves the parser forward one token.  The parser never moves past the
// EOF token.
func (p *Parser) next() {
	p.lookbehind = p.tok

	if p.ndx < len(p.toks) {
		p.tok = p.toks[p.ndx]
		p.ndx++
	}
}

// peek returns the token after the current token.
func (p *Parser) peek() *Token {
	if p.ndx < len(p.toks) {
		return p.toks[p.ndx]
	}

	return p.tok
}

// has returns whether the parser is on a token of the given kind.
func (p *Parser) has(kind int) bool {
	return p.tok.Kind == kind
}

// hasOneOf returns whether the parser is on a token of one of the given kinds.
func (p *Parser) hasOneOf(kinds ...int) bool {
	for _, kind := range kinds {
		if p.tok.Kind == kind {
			return true
		}
	}

	return false
}

// want asserts that the parser is on a token of the given kind and moves
// forward.  The matched token is returned.
func (p *Parser) want(kind int) *Token {
	if !p.has(kind) {
		p.rejectExpected("`" + KindName(kind) + "`")
	}

	p.next()
	return p.lookbehind
}

// -----------------------------------------------------------------------------

// reject reports an unexpected token error on the current token.
func (p *Parser) reject() {
	panic(report.Raise(report.KindParse, p.tok.Span, "unexpected %s", describeToken(p.tok)))
}

// rejectExpected reports that the current token is not the expected construct.
func (p *Parser) rejectExpected(expected string) {
	panic(report.Raise(report.KindParse, p.tok.Span, "expected %s but found %s", expected, describeToken(p.tok)))
}

// errorOn raises an error on the given span.
func (p *Parser) errorOn(span *report.TextSpan, msg string, args ...interface{}) {
	panic(report.Raise(report.KindParse, span, msg, args...))
}

// describeToken returns a user-facing description of a token.
func describeToken(tok *Token) string {
	switch tok.Kind {
	case TOK_EOF:
		return "end of input"
	case TOK_IDENT:
		return fmt.Sprintf("identifier `%s`", tok.Value)
	case TOK_STRINGLIT:
		return fmt.Sprintf("string literal %q", tok.Value)
	case TOK_CHARLIT:
		return "character literal"
	case TOK_INTLIT, TOK_FLOATLIT:
		return fmt.Sprintf("%s `%s`", KindName(tok.Kind), tok.Value)
	default:
		return "`" + KindName(tok.Kind) + "`"
	}
}
