package walk

import (
	"minicc/ast"
	"minicc/common"
	"minicc/types"
)

// rvalue converts an expression used for its value: arrays decay to pointers to
// their first element.  Functions can only be called.
func (w *Walker) rvalue(expr ast.ASTExpr) ast.ASTExpr {
	switch v := expr.Type().(type) {
	case *types.ArrayType:
		return implicitCast(expr, types.Decay(v))
	case *types.FuncType:
		w.error(expr.Span(), "function cannot be used as a value")
	}

	return expr
}

// convert converts an rvalue to the type target as if by assignment.  The
// context names the conversion in error messages.
func (w *Walker) convert(expr ast.ASTExpr, target types.Type, context string) ast.ASTExpr {
	expr = w.rvalue(expr)
	src := expr.Type()

	switch {
	case types.Equals(src, target):
		return expr
	case types.IsArithmetic(src) && types.IsArithmetic(target):
		if types.IsFloating(src) && types.IsIntegral(target) {
			w.warn(expr.Span(), "implicit conversion from double to "+target.Repr()+" may lose precision")
		}

		return implicitCast(expr, target)
	case types.IsPointer(src) && types.IsPointer(target) && (types.IsVoidPointer(src) || types.IsVoidPointer(target)):
		return implicitCast(expr, target)
	case types.IsPointer(target) && isNullConstant(expr):
		return implicitCast(expr, target)
	}

	w.error(expr.Span(), "cannot convert %s to %s in %s", src.Repr(), target.Repr(), context)
	return nil
}

// implicitCast wraps expr in an implicit cast to typ if it is not already of
// that type.
func implicitCast(expr ast.ASTExpr, typ types.Type) ast.ASTExpr {
	if types.Equals(expr.Type(), typ) {
		return expr
	}

	return &ast.Cast{
		ExprBase: ast.NewTypedExprBase(expr.Span(), typ),
		Src:      expr,
		Implicit: true,
	}
}

// isNullConstant returns whether expr is an integer constant equal to zero.
func isNullConstant(expr ast.ASTExpr) bool {
	if !types.IsIntegral(expr.Type()) {
		return false
	}

	cv, ok := ast.EvalConst(expr)
	return ok && !cv.IsFloat && !cv.IsString && cv.Int == 0
}

// -----------------------------------------------------------------------------

// isLValue returns whether expr designates an object.
func isLValue(expr ast.ASTExpr) bool {
	switch v := expr.(type) {
	case *ast.Identifier:
		return v.Sym.Storage != common.StorageFunc
	case *ast.Deref:
		return true
	}

	return false
}

// mustAssignable asserts that expr is a modifiable lvalue.
func (w *Walker) mustAssignable(expr ast.ASTExpr, context string) {
	if !isLValue(expr) {
		w.error(expr.Span(), "expression is not assignable in %s", context)
	}

	if _, ok := expr.Type().(*types.ArrayType); ok {
		w.error(expr.Span(), "array is not assignable in %s", context)
	}
}

// mustPointerArith asserts that expr is a pointer that arithmetic can be
// performed on.
func (w *Walker) mustPointerArith(expr ast.ASTExpr) {
	pt, ok := expr.Type().(*types.PointerType)
	if !ok {
		w.error(expr.Span(), "invalid operand of type %s to arithmetic", expr.Type().Repr())
	}

	if types.IsVoid(pt.ElemType) {
		w.error(expr.Span(), "arithmetic on a void pointer")
	}

	if _, ok := pt.ElemType.(*types.FuncType); ok {
		w.error(expr.Span(), "arithmetic on a function pointer")
	}
}
