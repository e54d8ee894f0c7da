package syntax

import "minicc/report"

// Token represents a single lexical token.
type Token struct {
	// The kind of the token.  This must be one of the enumerated token kinds.
	Kind int

	// The string value of the token.  This may not directly correspond to the
	// source text: the value of a string or char literal is its decoded
	// contents with the quotes trimmed off and escape sequences processed.
	Value string

	// The text span over which the token exists.
	Span *report.TextSpan
}

// Enumeration of token kinds.
const (
	TOK_VOID = iota
	TOK_CHAR
	TOK_INT
	TOK_LONG
	TOK_DOUBLE

	TOK_IF
	TOK_ELSE
	TOK_FOR
	TOK_WHILE
	TOK_DO
	TOK_BREAK
	TOK_CONTINUE
	TOK_RETURN

	TOK_PLUS
	TOK_MINUS
	TOK_STAR
	TOK_DIV
	TOK_MOD

	TOK_EQ
	TOK_NEQ
	TOK_LT
	TOK_GT
	TOK_LTEQ
	TOK_GTEQ

	TOK_AMP
	TOK_BWOR
	TOK_BWXOR
	TOK_LSHIFT
	TOK_RSHIFT
	TOK_COMPL

	TOK_NOT
	TOK_LAND
	TOK_LOR

	TOK_ASSIGN
	TOK_PLUS_ASSIGN
	TOK_MINUS_ASSIGN
	TOK_STAR_ASSIGN
	TOK_DIV_ASSIGN
	TOK_MOD_ASSIGN
	TOK_AND_ASSIGN
	TOK_OR_ASSIGN
	TOK_XOR_ASSIGN
	TOK_LSHIFT_ASSIGN
	TOK_RSHIFT_ASSIGN
	TOK_INC
	TOK_DEC

	TOK_LPAREN
	TOK_RPAREN
	TOK_LBRACE
	TOK_RBRACE
	TOK_LBRACKET
	TOK_RBRACKET
	TOK_COMMA
	TOK_SEMI
	TOK_ELLIPSIS

	TOK_IDENT
	TOK_INTLIT
	TOK_FLOATLIT
	TOK_CHARLIT
	TOK_STRINGLIT

	TOK_EOF
)

// tokenNames gives the user-facing name of each token kind.
var tokenNames = map[int]string{
	TOK_IDENT:     "identifier",
	TOK_INTLIT:    "integer literal",
	TOK_FLOATLIT:  "floating literal",
	TOK_CHARLIT:   "character literal",
	TOK_STRINGLIT: "string literal",
	TOK_ELLIPSIS:  "...",
	TOK_EOF:       "end of input",
}

func init() {
	for text, kind := range keywordPatterns {
		tokenNames[kind] = text
	}

	for text, kind := range symbolPatterns {
		tokenNames[kind] = text
	}
}

// KindName returns the user-facing name for a token kind.
func KindName(kind int) string {
	if name, ok := tokenNames[kind]; ok {
		return name
	}

	return "token"
}

// IsLiteral returns whether a token kind is a literal.
func IsLiteral(kind int) bool {
	return TOK_INTLIT <= kind && kind <= TOK_STRINGLIT
}
