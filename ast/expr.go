package ast

import (
	"minicc/common"
	"minicc/report"
)

// Oper is an operator used in the AST.
type Oper struct {
	// The token kind of the operator.
	Kind int

	// The operator's source text: eg. `+`.
	Name string

	// Where the operator occurs.
	Span *report.TextSpan
}

// -----------------------------------------------------------------------------

// Literal is a literal value.
type Literal struct {
	ExprBase

	// The kind of the literal.  This must be one of the enumerated literal
	// kinds below.
	Kind int

	// The literal's text.  For string literals this is the decoded contents.
	Value string

	// The decoded numeric value of an integer or character literal.
	IntValue int64

	// The decoded value of a floating literal.
	FloatValue float64
}

// Enumeration of literal kinds.
const (
	LitInt = iota
	LitLong
	LitFloat
	LitChar
	LitString
)

// Identifier is a named value.
type Identifier struct {
	ExprBase

	Name string

	// The symbol the identifier refers to.  Set by the resolver.
	Sym *common.Symbol
}

// -----------------------------------------------------------------------------

// UnaryOp represents the application of `-`, `+`, `!` or `~`.
type UnaryOp struct {
	ExprBase

	Op      Oper
	Operand ASTExpr
}

// Deref is a pointer dereference: `*p`.  Subscripts `a[i]` are parsed as
// `*(a + i)`.
type Deref struct {
	ExprBase

	Ptr ASTExpr
}

// AddressOf is an address-of operation: `&x`.
type AddressOf struct {
	ExprBase

	Elem ASTExpr
}

// IncDec is an increment or decrement: `++x`, `x--`.
type IncDec struct {
	ExprBase

	// The operator: either TOK_INC or TOK_DEC.
	Op Oper

	Operand ASTExpr

	// Whether the operator is postfix and so yields the old value.
	Postfix bool
}

// BinaryOp represents a binary operator application, including the short
// circuit logical operators.
type BinaryOp struct {
	ExprBase

	Op Oper

	Lhs, Rhs ASTExpr
}

// Assign represents a simple or compound assignment.
type Assign struct {
	ExprBase

	// The binary operator of a compound assignment.  This is nil for simple
	// assignment.
	Op *Oper

	Lhs, Rhs ASTExpr
}

// Call is a function call.
type Call struct {
	ExprBase

	Func ASTExpr
	Args []ASTExpr
}

// Cast is a type conversion.  The destination type is the expression's type.
type Cast struct {
	ExprBase

	Src ASTExpr

	// Whether the cast was inserted by the type checker rather than written
	// in source.
	Implicit bool
}
