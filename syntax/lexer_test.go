package syntax

import (
	"testing"

	"minicc/report"

	"github.com/nalgeon/be"
)

func tokenKinds(toks []*Token) []int {
	kinds := make([]int, len(toks))
	for i, tok := range toks {
		kinds[i] = tok.Kind
	}

	return kinds
}

func TestLexReturnSum(t *testing.T) {
	toks, err := Lex("int main() { return 1 + 2; }")
	be.Err(t, err, nil)

	// Eleven tokens plus the end of input.
	be.Equal(t, len(toks), 12)
	be.Equal(t, toks[len(toks)-1].Kind, TOK_EOF)

	intLits := 0
	for _, tok := range toks {
		if tok.Kind == TOK_INTLIT {
			intLits++
		}
	}
	be.Equal(t, intLits, 2)

	be.Equal(t, tokenKinds(toks), []int{
		TOK_INT, TOK_IDENT, TOK_LPAREN, TOK_RPAREN, TOK_LBRACE,
		TOK_RETURN, TOK_INTLIT, TOK_PLUS, TOK_INTLIT, TOK_SEMI, TOK_RBRACE,
		TOK_EOF,
	})
}

func TestLexSpans(t *testing.T) {
	toks, err := Lex("int x;\n  x = 42;")
	be.Err(t, err, nil)

	lit := toks[5]
	be.Equal(t, lit.Kind, TOK_INTLIT)
	be.Equal(t, lit.Value, "42")
	be.Equal(t, *lit.Span, report.TextSpan{StartLine: 1, StartCol: 6, EndLine: 1, EndCol: 8, Offset: 13})
}

func TestLexOperators(t *testing.T) {
	toks, err := Lex("a <<= b >> c && d || !e != f -> g++ --h")
	be.Err(t, err, nil)

	be.Equal(t, tokenKinds(toks), []int{
		TOK_IDENT, TOK_LSHIFT_ASSIGN, TOK_IDENT, TOK_RSHIFT, TOK_IDENT,
		TOK_LAND, TOK_IDENT, TOK_LOR, TOK_NOT, TOK_IDENT, TOK_NEQ, TOK_IDENT,
		TOK_MINUS, TOK_GT, TOK_IDENT, TOK_INC, TOK_DEC, TOK_IDENT, TOK_EOF,
	})
}

func TestLexEllipsis(t *testing.T) {
	toks, err := Lex("(char *fmt, ...) .5")
	be.Err(t, err, nil)

	be.Equal(t, tokenKinds(toks), []int{
		TOK_LPAREN, TOK_CHAR, TOK_STAR, TOK_IDENT, TOK_COMMA, TOK_ELLIPSIS,
		TOK_RPAREN, TOK_FLOATLIT, TOK_EOF,
	})
	be.Equal(t, toks[5].Span.EndCol-toks[5].Span.StartCol, 3)
}

func TestLexLiterals(t *testing.T) {
	tests := []struct {
		src   string
		kind  int
		value string
	}{
		{"0", TOK_INTLIT, "0"},
		{"0x1F", TOK_INTLIT, "0x1F"},
		{"017", TOK_INTLIT, "017"},
		{"10l", TOK_INTLIT, "10l"},
		{"1.5", TOK_FLOATLIT, "1.5"},
		{"1e3", TOK_FLOATLIT, "1e3"},
		{".5", TOK_FLOATLIT, ".5"},
		{"2.5e-3", TOK_FLOATLIT, "2.5e-3"},
		{`'a'`, TOK_CHARLIT, "a"},
		{`'\n'`, TOK_CHARLIT, "\n"},
		{`'\0'`, TOK_CHARLIT, "\x00"},
		{`"hi\tthere\\"`, TOK_STRINGLIT, "hi\tthere\\"},
		{`"\x41\101"`, TOK_STRINGLIT, "AA"},
	}

	for _, test := range tests {
		toks, err := Lex(test.src)
		be.Err(t, err, nil)
		be.Equal(t, len(toks), 2)
		be.Equal(t, toks[0].Kind, test.kind)
		be.Equal(t, toks[0].Value, test.value)
	}
}

func TestLexSkipsComments(t *testing.T) {
	toks, err := Lex("a /* b */ / c // d\n/= e")
	be.Err(t, err, nil)

	be.Equal(t, tokenKinds(toks), []int{TOK_IDENT, TOK_DIV, TOK_IDENT, TOK_DIV_ASSIGN, TOK_IDENT, TOK_EOF})
}

func TestLexErrors(t *testing.T) {
	tests := []struct {
		src string
		msg string
	}{
		{"int $x;", "unrecognized character `$`"},
		{`"abc`, "unterminated string literal"},
		{"'a", "unterminated character literal"},
		{"''", "empty character literal"},
		{"0x", "malformed numeric literal"},
		{"12ab", "malformed numeric literal"},
		{"09", "malformed numeric literal"},
		{"1e+", "malformed numeric literal"},
		{`"\q"`, "unknown escape sequence"},
	}

	for _, test := range tests {
		_, err := Lex(test.src)
		be.Err(t, err, test.msg)

		kind, ok := report.KindOf(err)
		be.True(t, ok)
		be.Equal(t, kind, report.KindLex)
	}
}

func TestLexErrorSpan(t *testing.T) {
	_, err := Lex("int a;\nint @;")

	cerr, ok := err.(*report.CompileError)
	be.True(t, ok)
	be.Equal(t, cerr.Span.StartLine, 1)
	be.Equal(t, cerr.Span.StartCol, 4)
}
