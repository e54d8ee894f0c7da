package walk

import (
	"minicc/ast"
	"minicc/common"
	"minicc/report"
	"minicc/types"
)

// walkExpr walks an expression and sets its type.  The returned expression is
// the walked expression: it is not decayed or converted.
func (w *Walker) walkExpr(expr ast.ASTExpr) ast.ASTExpr {
	switch v := expr.(type) {
	case *ast.Literal:
		w.walkLiteral(v)
	case *ast.Identifier:
		if v.Sym == nil {
			report.ReportICE("identifier `%s` was not resolved", v.Name)
		}

		v.SetType(v.Sym.Type)
	case *ast.UnaryOp:
		w.walkUnaryOp(v)
	case *ast.Deref:
		w.walkDeref(v)
	case *ast.AddressOf:
		v.Elem = w.walkExpr(v.Elem)

		if !isLValue(v.Elem) {
			w.error(v.Elem.Span(), "cannot take the address of an rvalue")
		}

		v.SetType(&types.PointerType{ElemType: v.Elem.Type()})
	case *ast.IncDec:
		w.walkIncDec(v)
	case *ast.BinaryOp:
		w.walkBinaryOp(v)
	case *ast.Assign:
		w.walkAssign(v)
	case *ast.Call:
		w.walkCall(v)
	case *ast.Cast:
		w.walkCast(v)
	default:
		report.ReportICE("unexpected expression %T", expr)
	}

	return expr
}

// walkLiteral walks a literal.
func (w *Walker) walkLiteral(lit *ast.Literal) {
	switch lit.Kind {
	case ast.LitInt, ast.LitChar:
		lit.SetType(types.PrimInt)
	case ast.LitLong:
		lit.SetType(types.PrimLong)
	case ast.LitFloat:
		lit.SetType(types.PrimDouble)
	case ast.LitString:
		lit.SetType(&types.PointerType{ElemType: types.PrimChar})
	}
}

// walkUnaryOp walks a `-`, `+`, `!` or `~` application.
func (w *Walker) walkUnaryOp(uop *ast.UnaryOp) {
	uop.Operand = w.rvalue(w.walkExpr(uop.Operand))
	typ := uop.Operand.Type()

	switch uop.Op.Name {
	case "!":
		if !types.IsScalar(typ) {
			w.invalidUnaryOperand(uop)
		}

		uop.SetType(types.PrimInt)
		return
	case "~":
		if !types.IsIntegral(typ) {
			w.invalidUnaryOperand(uop)
		}
	default:
		if !types.IsArithmetic(typ) {
			w.invalidUnaryOperand(uop)
		}
	}

	uop.Operand = implicitCast(uop.Operand, types.Promote(typ))
	uop.SetType(uop.Operand.Type())
}

func (w *Walker) invalidUnaryOperand(uop *ast.UnaryOp) {
	w.error(uop.Span(), "invalid operand of type %s to unary `%s`", uop.Operand.Type().Repr(), uop.Op.Name)
}

// walkDeref walks a pointer dereference.
func (w *Walker) walkDeref(deref *ast.Deref) {
	deref.Ptr = w.rvalue(w.walkExpr(deref.Ptr))

	pt, ok := deref.Ptr.Type().(*types.PointerType)
	if !ok {
		w.error(deref.Span(), "cannot dereference a value of type %s", deref.Ptr.Type().Repr())
	}

	if types.IsVoid(pt.ElemType) {
		w.error(deref.Span(), "cannot dereference a void pointer")
	}

	deref.SetType(pt.ElemType)
}

// walkIncDec walks an increment or decrement.
func (w *Walker) walkIncDec(incdec *ast.IncDec) {
	incdec.Operand = w.walkExpr(incdec.Operand)
	w.mustAssignable(incdec.Operand, "`"+incdec.Op.Name+"`")

	typ := incdec.Operand.Type()
	if !types.IsArithmetic(typ) {
		w.mustPointerArith(incdec.Operand)
	}

	incdec.SetType(typ)
}

// -----------------------------------------------------------------------------

// walkBinaryOp walks a binary operator application.
func (w *Walker) walkBinaryOp(bop *ast.BinaryOp) {
	bop.Lhs = w.rvalue(w.walkExpr(bop.Lhs))
	bop.Rhs = w.rvalue(w.walkExpr(bop.Rhs))

	lt, rt := bop.Lhs.Type(), bop.Rhs.Type()

	switch bop.Op.Name {
	case "&&", "||":
		if !types.IsScalar(lt) || !types.IsScalar(rt) {
			w.invalidBinaryOperands(bop)
		}

		bop.SetType(types.PrimInt)
	case "+":
		switch {
		case types.IsArithmetic(lt) && types.IsArithmetic(rt):
			w.applyArithmetic(bop)
		case types.IsPointer(lt) && types.IsIntegral(rt):
			w.mustPointerArith(bop.Lhs)
			bop.Rhs = implicitCast(bop.Rhs, types.PrimLong)
			bop.SetType(lt)
		case types.IsIntegral(lt) && types.IsPointer(rt):
			w.mustPointerArith(bop.Rhs)
			bop.Lhs = implicitCast(bop.Lhs, types.PrimLong)
			bop.SetType(rt)
		default:
			w.invalidBinaryOperands(bop)
		}
	case "-":
		switch {
		case types.IsArithmetic(lt) && types.IsArithmetic(rt):
			w.applyArithmetic(bop)
		case types.IsPointer(lt) && types.IsIntegral(rt):
			w.mustPointerArith(bop.Lhs)
			bop.Rhs = implicitCast(bop.Rhs, types.PrimLong)
			bop.SetType(lt)
		case types.IsPointer(lt) && types.Equals(lt, rt):
			// The difference of two pointers is a count of elements.
			w.mustPointerArith(bop.Lhs)
			bop.SetType(types.PrimLong)
		default:
			w.invalidBinaryOperands(bop)
		}
	case "*", "/":
		if !types.IsArithmetic(lt) || !types.IsArithmetic(rt) {
			w.invalidBinaryOperands(bop)
		}

		w.applyArithmetic(bop)
	case "%", "&", "|", "^":
		if !types.IsIntegral(lt) || !types.IsIntegral(rt) {
			w.invalidBinaryOperands(bop)
		}

		w.applyArithmetic(bop)
	case "<<", ">>":
		if !types.IsIntegral(lt) || !types.IsIntegral(rt) {
			w.invalidBinaryOperands(bop)
		}

		// The result has the promoted type of the left operand.
		opType := types.Promote(lt)
		bop.Lhs = implicitCast(bop.Lhs, opType)
		bop.Rhs = implicitCast(bop.Rhs, opType)
		bop.SetType(opType)
	default:
		w.walkComparison(bop)
	}
}

// walkComparison walks a relational or equality comparison.
func (w *Walker) walkComparison(bop *ast.BinaryOp) {
	lt, rt := bop.Lhs.Type(), bop.Rhs.Type()
	isEquality := bop.Op.Name == "==" || bop.Op.Name == "!="

	switch {
	case types.IsArithmetic(lt) && types.IsArithmetic(rt):
		opType := types.CommonType(lt, rt)
		bop.Lhs = implicitCast(bop.Lhs, opType)
		bop.Rhs = implicitCast(bop.Rhs, opType)
	case types.IsPointer(lt) && types.Equals(lt, rt):
		// Nothing to convert.
	case isEquality && types.IsPointer(lt) && types.IsPointer(rt) && (types.IsVoidPointer(lt) || types.IsVoidPointer(rt)):
		bop.Rhs = implicitCast(bop.Rhs, lt)
	case isEquality && types.IsPointer(lt) && isNullConstant(bop.Rhs):
		bop.Rhs = implicitCast(bop.Rhs, lt)
	case isEquality && types.IsPointer(rt) && isNullConstant(bop.Lhs):
		bop.Lhs = implicitCast(bop.Lhs, rt)
	default:
		w.invalidBinaryOperands(bop)
	}

	bop.SetType(types.PrimInt)
}

// applyArithmetic converts both operands of bop to their common type which
// becomes the type of bop.
func (w *Walker) applyArithmetic(bop *ast.BinaryOp) {
	opType := types.CommonType(bop.Lhs.Type(), bop.Rhs.Type())
	bop.Lhs = implicitCast(bop.Lhs, opType)
	bop.Rhs = implicitCast(bop.Rhs, opType)
	bop.SetType(opType)
}

func (w *Walker) invalidBinaryOperands(bop *ast.BinaryOp) {
	w.error(
		bop.Op.Span,
		"invalid operands to binary `%s`: %s and %s",
		bop.Op.Name,
		bop.Lhs.Type().Repr(),
		bop.Rhs.Type().Repr(),
	)
}

// -----------------------------------------------------------------------------

// walkAssign walks a simple or compound assignment.
func (w *Walker) walkAssign(asn *ast.Assign) {
	asn.Lhs = w.walkExpr(asn.Lhs)
	w.mustAssignable(asn.Lhs, "assignment")

	asn.Rhs = w.rvalue(w.walkExpr(asn.Rhs))
	lt, rt := asn.Lhs.Type(), asn.Rhs.Type()

	if asn.Op == nil {
		asn.Rhs = w.convert(asn.Rhs, lt, "assignment")
		asn.SetType(lt)
		return
	}

	// The right operand of a compound assignment is converted to the type the
	// operation is performed in.
	switch name := asn.Op.Name; {
	case types.IsPointer(lt) && (name == "+" || name == "-"):
		if !types.IsIntegral(rt) {
			w.invalidCompoundOperands(asn)
		}

		w.mustPointerArith(asn.Lhs)
		asn.Rhs = implicitCast(asn.Rhs, types.PrimLong)
	case name == "<<" || name == ">>":
		if !types.IsIntegral(lt) || !types.IsIntegral(rt) {
			w.invalidCompoundOperands(asn)
		}

		asn.Rhs = implicitCast(asn.Rhs, types.Promote(lt))
	case name == "%" || name == "&" || name == "|" || name == "^":
		if !types.IsIntegral(lt) || !types.IsIntegral(rt) {
			w.invalidCompoundOperands(asn)
		}

		asn.Rhs = implicitCast(asn.Rhs, types.CommonType(lt, rt))
	default:
		if !types.IsArithmetic(lt) || !types.IsArithmetic(rt) {
			w.invalidCompoundOperands(asn)
		}

		asn.Rhs = implicitCast(asn.Rhs, types.CommonType(lt, rt))
	}

	asn.SetType(lt)
}

func (w *Walker) invalidCompoundOperands(asn *ast.Assign) {
	w.error(
		asn.Op.Span,
		"invalid operands to `%s=`: %s and %s",
		asn.Op.Name,
		asn.Lhs.Type().Repr(),
		asn.Rhs.Type().Repr(),
	)
}

// walkCall walks a function call.
func (w *Walker) walkCall(call *ast.Call) {
	call.Func = w.walkExpr(call.Func)

	ident, ok := call.Func.(*ast.Identifier)
	if !ok || ident.Sym.Storage != common.StorageFunc {
		w.error(call.Func.Span(), "called object of type %s is not a function", call.Func.Type().Repr())
	}

	ft := ident.Sym.Type.(*types.FuncType)
	switch {
	case ft.Variadic && len(call.Args) < len(ft.ParamTypes):
		w.error(
			call.Span(),
			"function `%s` expects at least %d arguments but got %d",
			ident.Name,
			len(ft.ParamTypes),
			len(call.Args),
		)
	case !ft.Variadic && len(call.Args) != len(ft.ParamTypes):
		w.error(
			call.Span(),
			"function `%s` expects %d arguments but got %d",
			ident.Name,
			len(ft.ParamTypes),
			len(call.Args),
		)
	}

	for i, arg := range call.Args {
		if i < len(ft.ParamTypes) {
			call.Args[i] = w.convert(w.walkExpr(arg), ft.ParamTypes[i], "argument to `"+ident.Name+"`")
		} else {
			call.Args[i] = w.variadicArg(w.rvalue(w.walkExpr(arg)), ident.Name)
		}
	}

	call.SetType(ft.ReturnType)
}

// variadicArg applies the default argument promotions to an argument passed
// in the variable part of a call: char is promoted to int.
func (w *Walker) variadicArg(arg ast.ASTExpr, funcName string) ast.ASTExpr {
	switch {
	case types.IsVoid(arg.Type()):
		w.error(arg.Span(), "argument to `%s` has type void", funcName)
	case types.Equals(arg.Type(), types.PrimChar):
		return implicitCast(arg, types.PrimInt)
	}

	return arg
}

// walkCast walks an explicit cast.  Its destination type is set by the parser.
func (w *Walker) walkCast(cast *ast.Cast) {
	cast.Src = w.rvalue(w.walkExpr(cast.Src))
	src, dst := cast.Src.Type(), cast.Type()

	switch {
	case types.IsVoid(dst):
	case types.IsArithmetic(src) && types.IsArithmetic(dst):
	case types.IsPointer(src) && types.IsPointer(dst):
	case types.IsPointer(src) && types.IsIntegral(dst):
	case types.IsIntegral(src) && types.IsPointer(dst):
	default:
		w.error(cast.Span(), "cannot cast %s to %s", src.Repr(), dst.Repr())
	}
}
