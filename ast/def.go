package ast

import (
	"minicc/common"
	"minicc/report"
	"minicc/types"
)

// Program is the root of the AST: a single translation unit.
type Program struct {
	ASTBase

	// The top-level function and global variable declarations in source
	// order.
	Decls []ASTNode
}

// FuncDecl represents a function definition or prototype.
type FuncDecl struct {
	ASTBase

	// The name of the function.
	Name string

	// The span of the function's name.
	NameSpan *report.TextSpan

	// The declared signature of the function.
	Signature *types.FuncType

	// The function's parameters.
	Params []*Param

	// The function's body.  This is nil for a prototype.
	Body *Block

	// The symbol the declaration binds.  Set by the resolver.
	Sym *common.Symbol
}

// Param represents a function parameter.
type Param struct {
	ASTBase

	Name string
	Type types.Type

	// The symbol the parameter binds.  Set by the resolver.
	Sym *common.Symbol
}

// VarDecl represents the declaration of a single variable: global or local.
type VarDecl struct {
	ASTBase

	// The name of the variable.
	Name string

	// The span of the variable's name.
	NameSpan *report.TextSpan

	// The declared type of the variable.
	Type types.Type

	// The (optional) initializer.
	Init ASTExpr

	// The symbol the declaration binds.  Set by the resolver.
	Sym *common.Symbol
}
