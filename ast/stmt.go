package ast

// Block represents a compound statement.
type Block struct {
	ASTBase

	// The statements of the block.
	Stmts []ASTNode
}

// IfStmt represents an if statement with an optional else branch.
type IfStmt struct {
	ASTBase

	Cond ASTExpr
	Then ASTNode

	// The else branch.  This may be nil.
	Else ASTNode
}

// WhileLoop represents a while loop.
type WhileLoop struct {
	ASTBase

	Cond ASTExpr
	Body ASTNode
}

// DoWhileLoop represents a do-while loop.
type DoWhileLoop struct {
	ASTBase

	Body ASTNode
	Cond ASTExpr
}

// ForLoop represents a C-style for loop.
type ForLoop struct {
	ASTBase

	// The (optional) initializer: a list of variable declarations or a single
	// expression statement.
	Init []ASTNode

	// The (optional) loop condition.
	Cond ASTExpr

	// The (optional) update expression.
	Post ASTExpr

	Body ASTNode
}

// ReturnStmt represents a return statement.
type ReturnStmt struct {
	ASTBase

	// The returned value.  This is nil for a bare `return;`.
	Value ASTExpr
}

// ExprStmt represents an expression evaluated for its side effects.
type ExprStmt struct {
	ASTBase

	Expr ASTExpr
}

// NullStmt represents the empty statement `;`.
type NullStmt struct {
	ASTBase
}

// KeywordStmt represents a single keyword control flow statement (eg. `break`).
type KeywordStmt struct {
	ASTBase

	// The token kind of the keyword.
	Kind int

	// The keyword's source text.
	Name string
}
