package walk

import (
	"minicc/ast"
	"minicc/types"
)

// walkFuncDecl walks a function definition.  Prototypes have nothing to check
// beyond what the resolver already checked.
func (w *Walker) walkFuncDecl(fd *ast.FuncDecl) {
	if fd.Body == nil {
		return
	}

	w.enclosingFunc = fd
	defer func() {
		w.enclosingFunc = nil
	}()

	w.walkBlock(fd.Body)

	// `main` implicitly returns zero.
	if !types.IsVoid(fd.Signature.ReturnType) && fd.Name != "main" && canFallThrough(fd.Body) {
		w.error(fd.NameSpan, "missing return in function `%s` returning %s", fd.Name, fd.Signature.ReturnType.Repr())
	}
}

// walkGlobalVar walks a global variable declaration.  Global initializers must
// be constant expressions.
func (w *Walker) walkGlobalVar(vd *ast.VarDecl) {
	if vd.Init == nil {
		return
	}

	w.walkVarInit(vd)

	cv, ok := ast.EvalConst(vd.Init)
	if !ok {
		w.error(vd.Init.Span(), "initializer of global `%s` is not a constant expression", vd.Name)
	}

	if cv.IsString && !types.IsPointer(vd.Type) {
		w.error(vd.Init.Span(), "cannot initialize `%s` of type %s with a string", vd.Name, vd.Type.Repr())
	}
}

// walkVarInit walks the initializer of a variable declaration.
func (w *Walker) walkVarInit(vd *ast.VarDecl) {
	if _, ok := vd.Type.(*types.ArrayType); ok {
		w.error(vd.Init.Span(), "array `%s` cannot have an initializer", vd.Name)
	}

	vd.Init = w.convert(w.walkExpr(vd.Init), vd.Type, "initialization")
}

// -----------------------------------------------------------------------------

// walkBlock walks a block statement.
func (w *Walker) walkBlock(block *ast.Block) {
	for _, stmt := range block.Stmts {
		w.walkStmt(stmt)
	}
}

// walkStmt walks a statement.
func (w *Walker) walkStmt(stmt ast.ASTNode) {
	switch v := stmt.(type) {
	case *ast.Block:
		w.walkBlock(v)
	case *ast.VarDecl:
		if v.Init != nil {
			w.walkVarInit(v)
		}
	case *ast.IfStmt:
		v.Cond = w.walkCond(v.Cond)
		w.walkStmt(v.Then)

		if v.Else != nil {
			w.walkStmt(v.Else)
		}
	case *ast.WhileLoop:
		v.Cond = w.walkCond(v.Cond)
		w.walkStmt(v.Body)
	case *ast.DoWhileLoop:
		w.walkStmt(v.Body)
		v.Cond = w.walkCond(v.Cond)
	case *ast.ForLoop:
		for _, init := range v.Init {
			w.walkStmt(init)
		}

		if v.Cond != nil {
			v.Cond = w.walkCond(v.Cond)
		}

		if v.Post != nil {
			v.Post = w.rvalue(w.walkExpr(v.Post))
		}

		w.walkStmt(v.Body)
	case *ast.ReturnStmt:
		w.walkReturn(v)
	case *ast.ExprStmt:
		v.Expr = w.rvalue(w.walkExpr(v.Expr))
	case *ast.NullStmt, *ast.KeywordStmt:
		// Nothing to check.
	default:
		w.error(stmt.Span(), "unsupported statement")
	}
}

// walkReturn walks a return statement.
func (w *Walker) walkReturn(rs *ast.ReturnStmt) {
	fd := w.enclosingFunc
	retType := fd.Signature.ReturnType

	if rs.Value == nil {
		if !types.IsVoid(retType) {
			w.error(rs.Span(), "function `%s` must return a value of type %s", fd.Name, retType.Repr())
		}

		return
	}

	if types.IsVoid(retType) {
		w.error(rs.Value.Span(), "void function `%s` cannot return a value", fd.Name)
	}

	rs.Value = w.convert(w.walkExpr(rs.Value), retType, "return")
}

// walkCond walks a condition expression which must have scalar type.
func (w *Walker) walkCond(cond ast.ASTExpr) ast.ASTExpr {
	cond = w.rvalue(w.walkExpr(cond))

	if !types.IsScalar(cond.Type()) {
		w.error(cond.Span(), "condition must have scalar type but has type %s", cond.Type().Repr())
	}

	return cond
}

// -----------------------------------------------------------------------------

// canFallThrough returns whether control can reach the end of stmt.
func canFallThrough(stmt ast.ASTNode) bool {
	switch v := stmt.(type) {
	case *ast.ReturnStmt:
		return false
	case *ast.Block:
		for _, inner := range v.Stmts {
			if !canFallThrough(inner) {
				return false
			}
		}

		return true
	case *ast.IfStmt:
		if v.Else == nil {
			return true
		}

		return canFallThrough(v.Then) || canFallThrough(v.Else)
	case *ast.WhileLoop:
		return !isConstTrue(v.Cond) || containsBreak(v.Body)
	case *ast.ForLoop:
		return (v.Cond != nil && !isConstTrue(v.Cond)) || containsBreak(v.Body)
	case *ast.DoWhileLoop:
		if containsBreak(v.Body) {
			return true
		}

		if isConstTrue(v.Cond) {
			return false
		}

		return canFallThrough(v.Body) || containsContinue(v.Body)
	}

	return true
}

// isConstTrue returns whether cond is a nonzero constant.
func isConstTrue(cond ast.ASTExpr) bool {
	cv, ok := ast.EvalConst(cond)
	if !ok {
		return false
	}

	if cv.IsString {
		return true
	}

	if cv.IsFloat {
		return cv.Float != 0
	}

	return cv.Int != 0
}

// containsBreak returns whether stmt contains a break that exits the loop
// immediately enclosing stmt.
func containsBreak(stmt ast.ASTNode) bool {
	return containsKeyword(stmt, "break")
}

// containsContinue returns whether stmt contains a continue of the loop
// immediately enclosing stmt.
func containsContinue(stmt ast.ASTNode) bool {
	return containsKeyword(stmt, "continue")
}

func containsKeyword(stmt ast.ASTNode, name string) bool {
	switch v := stmt.(type) {
	case *ast.KeywordStmt:
		return v.Name == name
	case *ast.Block:
		for _, inner := range v.Stmts {
			if containsKeyword(inner, name) {
				return true
			}
		}
	case *ast.IfStmt:
		return containsKeyword(v.Then, name) || (v.Else != nil && containsKeyword(v.Else, name))
	}

	// Loop control inside a nested loop belongs to that loop.
	return false
}
