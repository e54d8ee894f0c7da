package syntax

import (
	"minicc/report"
	"strings"
	"unicode/utf8"
)

// Lexer is responsible for tokenizing expanded source text.
type Lexer struct {
	src     string
	tokBuff *strings.Builder

	offset              int
	line, col           int
	startLine, startCol int
	startOffset         int
}

// NewLexer creates a new lexer for the given source text.
func NewLexer(src string) *Lexer {
	return &Lexer{
		src:     src,
		tokBuff: &strings.Builder{},
	}
}

// Lex tokenizes the whole of src.  The returned token sequence always ends with
// an end-of-input token.
func Lex(src string) ([]*Token, error) {
	l := NewLexer(src)

	var toks []*Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}

		toks = append(toks, tok)

		if tok.Kind == TOK_EOF {
			return toks, nil
		}
	}
}

// NextToken retrieves the next token from the input. If the input has ended,
// this will be an EOF token.
func (l *Lexer) NextToken() (*Token, error) {
	for {
		c := l.peek()
		if c == -1 {
			break
		}

		switch c {
		case '\n', '\t', ' ', '\r', '\v', '\f':
			l.skip()
		case '/':
			if tok, err := l.lexCommentOrDiv(); tok != nil || err != nil {
				return tok, err
			}
		case '\'':
			return l.lexCharLit()
		case '"':
			return l.lexStringLit()
		case '.':
			if isDecimalDigit(l.peekAt(1)) {
				return l.lexNumericLit()
			}

			if l.peekAt(1) == '.' && l.peekAt(2) == '.' {
				l.mark()
				l.eat()
				l.eat()
				l.eat()
				return l.makeToken(TOK_ELLIPSIS), nil
			}

			return l.lexPunctOrOper()
		default:
			if isDecimalDigit(c) {
				return l.lexNumericLit()
			} else if isFirstIdentChar(c) {
				return l.lexIdentOrKeyword()
			} else {
				return l.lexPunctOrOper()
			}
		}
	}

	l.mark()
	return l.makeToken(TOK_EOF), nil
}

// -----------------------------------------------------------------------------

// symbolPatterns maps symbol strings (patterns) to their punctuation/operator
// token kind.
var symbolPatterns = map[string]int{
	"+": TOK_PLUS,
	"-": TOK_MINUS,
	"*": TOK_STAR,
	"/": TOK_DIV,
	"%": TOK_MOD,

	"&":  TOK_AMP,
	"|":  TOK_BWOR,
	"^":  TOK_BWXOR,
	"~":  TOK_COMPL,
	"<<": TOK_LSHIFT,
	">>": TOK_RSHIFT,

	"==": TOK_EQ,
	"!=": TOK_NEQ,
	"<":  TOK_LT,
	"<=": TOK_LTEQ,
	">":  TOK_GT,
	">=": TOK_GTEQ,

	"&&": TOK_LAND,
	"||": TOK_LOR,
	"!":  TOK_NOT,

	"=":   TOK_ASSIGN,
	"+=":  TOK_PLUS_ASSIGN,
	"-=":  TOK_MINUS_ASSIGN,
	"*=":  TOK_STAR_ASSIGN,
	"/=":  TOK_DIV_ASSIGN,
	"%=":  TOK_MOD_ASSIGN,
	"&=":  TOK_AND_ASSIGN,
	"|=":  TOK_OR_ASSIGN,
	"^=":  TOK_XOR_ASSIGN,
	"<<=": TOK_LSHIFT_ASSIGN,
	">>=": TOK_RSHIFT_ASSIGN,
	"++":  TOK_INC,
	"--":  TOK_DEC,

	"(": TOK_LPAREN,
	")": TOK_RPAREN,
	"{": TOK_LBRACE,
	"}": TOK_RBRACE,
	"[": TOK_LBRACKET,
	"]": TOK_RBRACKET,
	",": TOK_COMMA,
	";": TOK_SEMI,
}

// lexPunctOrOper lexes a punctuation or operator symbol.  The longest symbol
// pattern matching the input is chosen.
func (l *Lexer) lexPunctOrOper() (*Token, error) {
	l.mark()
	c := l.eat()

	kind, ok := symbolPatterns[l.tokBuff.String()]
	if !ok {
		return nil, report.Raise(report.KindLex, l.getSpan(), "unrecognized character `%c`", c)
	}

	for {
		c := l.peek()
		if c == -1 {
			break
		}

		if _kind, ok := symbolPatterns[l.tokBuff.String()+string(c)]; ok {
			l.eat()
			kind = _kind
		} else {
			break
		}
	}

	return l.makeToken(kind), nil
}

// -----------------------------------------------------------------------------

// keywordPatterns maps keyword strings (patterns) to their keyword token kind.
var keywordPatterns = map[string]int{
	"void":   TOK_VOID,
	"char":   TOK_CHAR,
	"int":    TOK_INT,
	"long":   TOK_LONG,
	"double": TOK_DOUBLE,

	"if":       TOK_IF,
	"else":     TOK_ELSE,
	"for":      TOK_FOR,
	"while":    TOK_WHILE,
	"do":       TOK_DO,
	"break":    TOK_BREAK,
	"continue": TOK_CONTINUE,
	"return":   TOK_RETURN,
}

// lexIdentOrKeyword lexes an identifier or a keyword.
func (l *Lexer) lexIdentOrKeyword() (*Token, error) {
	l.mark()
	l.eat()

	for {
		c := l.peek()
		if !isFirstIdentChar(c) && !isDecimalDigit(c) {
			break
		}

		l.eat()
	}

	var kind int
	if _kind, ok := keywordPatterns[l.tokBuff.String()]; ok {
		kind = _kind
	} else {
		kind = TOK_IDENT
	}

	return l.makeToken(kind), nil
}

// -----------------------------------------------------------------------------

// lexNumericLit lexes an integer or floating literal.  The token's value is the
// literal's source text: the parser converts it.
func (l *Lexer) lexNumericLit() (*Token, error) {
	l.mark()

	// Determine the base of the literal.
	base := 10
	if l.peek() == '0' {
		l.eat()

		switch l.peek() {
		case 'x', 'X':
			l.eat()
			base = 16
		default:
			base = 8
		}
	}

	var isFloat, hasExp bool
	digits := 0
	if base == 8 {
		// The leading `0` is itself a digit.
		digits = 1
	}

numLexLoop:
	for {
		c := l.peek()

		switch {
		case base == 16 && isHexDigit(c):
			l.eat()
			digits++
		case base != 16 && isDecimalDigit(c):
			l.eat()
			digits++
		case base != 16 && c == '.' && !isFloat && !hasExp:
			l.eat()
			isFloat = true
		case base != 16 && (c == 'e' || c == 'E') && !hasExp && digits > 0:
			l.eat()
			isFloat = true
			hasExp = true

			if c := l.peek(); c == '+' || c == '-' {
				l.eat()
			}

			if !isDecimalDigit(l.peek()) {
				return nil, l.malformedNumber()
			}
		default:
			break numLexLoop
		}
	}

	if digits == 0 {
		return nil, l.malformedNumber()
	}

	kind := TOK_INTLIT
	if isFloat {
		kind = TOK_FLOATLIT
	} else {
		// An octal literal may only contain octal digits.
		if base == 8 && strings.ContainsAny(l.tokBuff.String(), "89") {
			return nil, l.malformedNumber()
		}

		if c := l.peek(); c == 'l' || c == 'L' {
			l.eat()
		}
	}

	// A literal running directly into an identifier is malformed: eg. `12ab`.
	if c := l.peek(); isFirstIdentChar(c) || isDecimalDigit(c) || c == '.' {
		for c := l.peek(); isFirstIdentChar(c) || isDecimalDigit(c) || c == '.'; c = l.peek() {
			l.eat()
		}

		return nil, l.malformedNumber()
	}

	return l.makeToken(kind), nil
}

// malformedNumber returns an error for the numeric literal being lexed.
func (l *Lexer) malformedNumber() error {
	return report.Raise(report.KindLex, l.getSpan(), "malformed numeric literal `%s`", l.tokBuff.String())
}

// -----------------------------------------------------------------------------

// lexStringLit lexes a string literal.
func (l *Lexer) lexStringLit() (*Token, error) {
	l.mark()
	l.skip()

	for {
		c := l.peek()

		switch c {
		case -1, '\n':
			return nil, report.Raise(report.KindLex, l.getSpan(), "unterminated string literal")
		case '"':
			l.skip()
			return l.makeToken(TOK_STRINGLIT), nil
		case '\\':
			l.skip()
			if err := l.eatEscapeSequence(); err != nil {
				return nil, err
			}
		default:
			l.eat()
		}
	}
}

// lexCharLit lexes a character literal.
func (l *Lexer) lexCharLit() (*Token, error) {
	l.mark()
	l.skip()

	switch l.peek() {
	case -1, '\n':
		return nil, report.Raise(report.KindLex, l.getSpan(), "unterminated character literal")
	case '\'':
		l.skip()
		return nil, report.Raise(report.KindLex, l.getSpan(), "empty character literal")
	case '\\':
		l.skip()
		if err := l.eatEscapeSequence(); err != nil {
			return nil, err
		}
	default:
		l.eat()
	}

	switch l.peek() {
	case '\'':
		l.skip()
		return l.makeToken(TOK_CHARLIT), nil
	case -1, '\n':
		return nil, report.Raise(report.KindLex, l.getSpan(), "unterminated character literal")
	default:
		return nil, report.Raise(report.KindLex, l.getSpan(), "character literal cannot contain multiple characters")
	}
}

// escapeCodes maps the single-character escape sequences to their values.
var escapeCodes = map[rune]byte{
	'a':  '\a',
	'b':  '\b',
	'f':  '\f',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
	'v':  '\v',
	'\'': '\'',
	'"':  '"',
	'\\': '\\',
	'?':  '?',
}

// eatEscapeSequence consumes an escape sequence and writes its decoded value
// to the token buffer.  This assumes the leading `\` has already been skipped.
func (l *Lexer) eatEscapeSequence() error {
	c := l.skip()

	if b, ok := escapeCodes[c]; ok {
		l.tokBuff.WriteByte(b)
		return nil
	}

	switch {
	case c == -1:
		return report.Raise(report.KindLex, l.getSpan(), "expected escape sequence not end of input")
	case '0' <= c && c <= '7':
		// Up to three octal digits.
		value := int(c - '0')
		for i := 0; i < 2 && '0' <= l.peek() && l.peek() <= '7'; i++ {
			value = value*8 + int(l.skip()-'0')
		}

		l.tokBuff.WriteByte(byte(value))
		return nil
	case c == 'x':
		value, n := 0, 0
		for ; isHexDigit(l.peek()); n++ {
			value = value*16 + hexValue(l.skip())
		}

		if n == 0 {
			return report.Raise(report.KindLex, l.getSpan(), "\\x used with no following hex digits")
		}

		l.tokBuff.WriteByte(byte(value))
		return nil
	default:
		return report.Raise(report.KindLex, l.getSpan(), "unknown escape sequence: `\\%c`", c)
	}
}

// -----------------------------------------------------------------------------

// lexCommentOrDiv lexes a comment or a division token.  Comments are normally
// removed by the preprocessor but are tolerated here.
func (l *Lexer) lexCommentOrDiv() (*Token, error) {
	switch l.peekAt(1) {
	case '/':
		for c := l.peek(); c != '\n' && c != -1; c = l.peek() {
			l.skip()
		}

		return nil, nil
	case '*':
		l.mark()
		l.skip()
		l.skip()

		for {
			c := l.skip()
			if c == -1 {
				return nil, report.Raise(report.KindLex, l.getSpan(), "unterminated block comment")
			}

			if c == '*' && l.peek() == '/' {
				l.skip()
				return nil, nil
			}
		}
	default:
		return l.lexPunctOrOper()
	}
}

// -----------------------------------------------------------------------------

// mark sets the lexer's stored start position to its current position.
func (l *Lexer) mark() {
	l.startLine = l.line
	l.startCol = l.col
	l.startOffset = l.offset
}

// makeToken produces a new token of the given kind from the lexer's state and
// resets the lexer to begin building the next token.
func (l *Lexer) makeToken(kind int) *Token {
	value := l.tokBuff.String()
	l.tokBuff.Reset()

	return &Token{
		Kind:  kind,
		Value: value,
		Span:  l.getSpan(),
	}
}

// getSpan calculates a text span based on the lexer's current state.
func (l *Lexer) getSpan() *report.TextSpan {
	return &report.TextSpan{
		StartLine: l.startLine,
		StartCol:  l.startCol,
		EndLine:   l.line,
		EndCol:    l.col,
		Offset:    l.startOffset,
	}
}

// -----------------------------------------------------------------------------

// eat moves the lexer forward one rune and writes the rune to the token buffer.
// If the lexer is at the end of its input, -1 is returned as the rune value.
func (l *Lexer) eat() rune {
	c := l.skip()
	if c != -1 {
		l.tokBuff.WriteRune(c)
	}

	return c
}

// skip moves the lexer forward one rune but does not write the rune to the
// token buffer.  If the lexer is at the end of its input, -1 is returned as
// the rune value.
func (l *Lexer) skip() rune {
	if l.offset >= len(l.src) {
		return -1
	}

	c, size := utf8.DecodeRuneInString(l.src[l.offset:])
	l.offset += size

	if c == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}

	return c
}

// peek returns the next rune in the input without moving the lexer forward.
func (l *Lexer) peek() rune {
	return l.peekAt(0)
}

// peekAt returns the rune n runes ahead of the lexer's position or -1 if the
// input ends before then.
func (l *Lexer) peekAt(n int) rune {
	offset := l.offset
	for i := 0; ; i++ {
		if offset >= len(l.src) {
			return -1
		}

		c, size := utf8.DecodeRuneInString(l.src[offset:])
		if i == n {
			return c
		}

		offset += size
	}
}

// -----------------------------------------------------------------------------

// isDecimalDigit returns whether c is a decimal digit.
func isDecimalDigit(c rune) bool {
	return '0' <= c && c <= '9'
}

// isHexDigit returns whether c is a hexadecimal digit.
func isHexDigit(c rune) bool {
	return isDecimalDigit(c) || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

// hexValue returns the value of a hexadecimal digit.
func hexValue(c rune) int {
	switch {
	case isDecimalDigit(c):
		return int(c - '0')
	case 'a' <= c && c <= 'f':
		return int(c-'a') + 10
	default:
		return int(c-'A') + 10
	}
}

// isFirstIdentChar returns whether c could be the first rune of an identifier.
func isFirstIdentChar(c rune) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || c == '_'
}
