package ast

import (
	"minicc/report"
	"minicc/types"
)

// The abstract interface for all AST nodes.
type ASTNode interface {
	// The text span of the AST.
	Span() *report.TextSpan
}

// A utility base struct for all AST nodes.
type ASTBase struct {
	// The span over which the AST node occurs.
	span *report.TextSpan
}

// NewASTBaseOn creates a new AST base with the given span.
func NewASTBaseOn(span *report.TextSpan) ASTBase {
	return ASTBase{span: span}
}

// NewASTBaseOver creates a new AST base spanning over two spans.
func NewASTBaseOver(start, end *report.TextSpan) ASTBase {
	return ASTBase{span: report.NewSpanOver(start, end)}
}

func (ab ASTBase) Span() *report.TextSpan {
	return ab.span
}

// -----------------------------------------------------------------------------

// The abstract interface for all AST expressions.
type ASTExpr interface {
	ASTNode

	// The type of the value the expression yields.  This is nil until the
	// expression has been type checked.
	Type() types.Type

	// Sets the yielded type of the expression.
	SetType(typ types.Type)
}

// A utility base struct for all AST expressions.
type ExprBase struct {
	ASTBase

	// The type of the expression.
	typ types.Type
}

// NewExprBase creates a new expression base with the given span and no type.
func NewExprBase(span *report.TextSpan) ExprBase {
	return ExprBase{ASTBase: NewASTBaseOn(span)}
}

// NewTypedExprBase creates a new expression base with a known type.
func NewTypedExprBase(span *report.TextSpan, typ types.Type) ExprBase {
	return ExprBase{ASTBase: NewASTBaseOn(span), typ: typ}
}

func (eb *ExprBase) Type() types.Type {
	return eb.typ
}

func (eb *ExprBase) SetType(typ types.Type) {
	eb.typ = typ
}
