package generate

import (
	"minicc/ast"
	"minicc/common"
	"minicc/report"
	"minicc/syntax"
	"minicc/types"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// genExpr generates an expression and returns its value.  Expressions of type
// void yield nil.
func (g *Generator) genExpr(expr ast.ASTExpr) value.Value {
	switch v := expr.(type) {
	case *ast.Literal:
		return g.genLiteral(v)
	case *ast.Identifier:
		if v.Sym.Storage == common.StorageFunc {
			report.ReportICE("function `%s` used as a value", v.Name)
		}

		return g.block.NewLoad(g.convType(v.Type()), g.genAddr(v))
	case *ast.UnaryOp:
		return g.genUnaryOp(v)
	case *ast.Deref:
		return g.block.NewLoad(g.convType(v.Type()), g.genExpr(v.Ptr))
	case *ast.AddressOf:
		return g.genAddr(v.Elem)
	case *ast.IncDec:
		return g.genIncDec(v)
	case *ast.BinaryOp:
		return g.genBinaryOp(v)
	case *ast.Assign:
		return g.genAssign(v)
	case *ast.Call:
		return g.genCall(v)
	case *ast.Cast:
		return g.genCast(v)
	}

	report.ReportICE("expression generation not implemented for %T", expr)
	return nil
}

// genAddr generates the address of an lvalue expression.
func (g *Generator) genAddr(expr ast.ASTExpr) value.Value {
	switch v := expr.(type) {
	case *ast.Identifier:
		if ptr, ok := g.vars[v.Sym]; ok {
			return ptr
		}

		report.ReportICE("variable `%s` has no storage", v.Sym.Label)
	case *ast.Deref:
		return g.genExpr(v.Ptr)
	}

	report.ReportICE("expression %T is not an lvalue", expr)
	return nil
}

// genLiteral generates a literal constant.
func (g *Generator) genLiteral(lit *ast.Literal) value.Value {
	switch lit.Kind {
	case ast.LitFloat:
		return constant.NewFloat(lltypes.Double, lit.FloatValue)
	case ast.LitString:
		return g.stringPtr(lit.Value)
	default:
		return constant.NewInt(g.convType(lit.Type()).(*lltypes.IntType), lit.IntValue)
	}
}

// genUnaryOp generates a unary operator application.  The operand has already
// been promoted.
func (g *Generator) genUnaryOp(uop *ast.UnaryOp) value.Value {
	operand := g.genExpr(uop.Operand)

	switch uop.Op.Kind {
	case syntax.TOK_MINUS:
		if types.IsFloating(uop.Type()) {
			return g.block.NewFNeg(operand)
		}

		return g.block.NewSub(constant.NewInt(operand.Type().(*lltypes.IntType), 0), operand)
	case syntax.TOK_COMPL:
		return g.block.NewXor(operand, constant.NewInt(operand.Type().(*lltypes.IntType), -1))
	case syntax.TOK_NOT:
		isZero := g.block.NewXor(g.genTruth(operand, uop.Operand.Type()), constant.True)
		return g.block.NewZExt(isZero, lltypes.I32)
	default:
		return operand
	}
}

// genIncDec generates an increment or decrement.
func (g *Generator) genIncDec(incDec *ast.IncDec) value.Value {
	typ := incDec.Operand.Type()
	ptr := g.genAddr(incDec.Operand)
	old := g.block.NewLoad(g.convType(typ), ptr)

	step := int64(1)
	if incDec.Op.Kind == syntax.TOK_DEC {
		step = -1
	}

	var updated value.Value
	switch llType := old.Type().(type) {
	case *lltypes.PointerType:
		updated = g.block.NewGetElementPtr(llType.ElemType, old, constant.NewInt(lltypes.I64, step))
	case *lltypes.FloatType:
		updated = g.block.NewFAdd(old, constant.NewFloat(llType, float64(step)))
	default:
		// Compute in the promoted type so `char` wraps like it does natively.
		promoted := types.Promote(typ)
		wide := g.convertValue(old, typ, promoted)
		sum := g.block.NewAdd(wide, constant.NewInt(wide.Type().(*lltypes.IntType), step))
		updated = g.convertValue(sum, promoted, typ)
	}

	g.block.NewStore(updated, ptr)

	if incDec.Postfix {
		return old
	}

	return updated
}

// genBinaryOp generates a binary operator application.
func (g *Generator) genBinaryOp(bop *ast.BinaryOp) value.Value {
	switch bop.Op.Kind {
	case syntax.TOK_LAND, syntax.TOK_LOR:
		return g.genLogicalOp(bop)
	case syntax.TOK_EQ, syntax.TOK_NEQ, syntax.TOK_LT, syntax.TOK_GT, syntax.TOK_LTEQ, syntax.TOK_GTEQ:
		return g.genComparison(bop)
	}

	lhs := g.genExpr(bop.Lhs)
	rhs := g.genExpr(bop.Rhs)
	lt, rt := bop.Lhs.Type(), bop.Rhs.Type()

	// Pointer arithmetic.  The integer operand is already a long.
	switch {
	case types.IsPointer(lt) && types.IsPointer(rt):
		return g.genPointerDiff(lhs, rhs, elemType(lt))
	case types.IsPointer(lt):
		if bop.Op.Kind == syntax.TOK_MINUS {
			rhs = g.block.NewSub(constant.NewInt(lltypes.I64, 0), rhs)
		}

		return g.block.NewGetElementPtr(g.convType(elemType(lt)), lhs, rhs)
	case types.IsPointer(rt):
		return g.block.NewGetElementPtr(g.convType(elemType(rt)), rhs, lhs)
	}

	return g.genArith(bop.Op.Kind, lhs, rhs, types.IsFloating(bop.Type()))
}

// genArith generates an arithmetic or bitwise operation on operands of the
// same type.
func (g *Generator) genArith(opKind int, lhs, rhs value.Value, floating bool) value.Value {
	if floating {
		switch opKind {
		case syntax.TOK_PLUS:
			return g.block.NewFAdd(lhs, rhs)
		case syntax.TOK_MINUS:
			return g.block.NewFSub(lhs, rhs)
		case syntax.TOK_STAR:
			return g.block.NewFMul(lhs, rhs)
		case syntax.TOK_DIV:
			return g.block.NewFDiv(lhs, rhs)
		}
	} else {
		switch opKind {
		case syntax.TOK_PLUS:
			return g.block.NewAdd(lhs, rhs)
		case syntax.TOK_MINUS:
			return g.block.NewSub(lhs, rhs)
		case syntax.TOK_STAR:
			return g.block.NewMul(lhs, rhs)
		case syntax.TOK_DIV:
			return g.block.NewSDiv(lhs, rhs)
		case syntax.TOK_MOD:
			return g.block.NewSRem(lhs, rhs)
		case syntax.TOK_AMP:
			return g.block.NewAnd(lhs, rhs)
		case syntax.TOK_BWOR:
			return g.block.NewOr(lhs, rhs)
		case syntax.TOK_BWXOR:
			return g.block.NewXor(lhs, rhs)
		case syntax.TOK_LSHIFT:
			return g.block.NewShl(lhs, rhs)
		case syntax.TOK_RSHIFT:
			return g.block.NewAShr(lhs, rhs)
		}
	}

	report.ReportICE("no LLVM instruction for operator `%s`", syntax.KindName(opKind))
	return nil
}

// genPointerDiff generates the difference of two pointers in elements.
func (g *Generator) genPointerDiff(lhs, rhs value.Value, elem types.Type) value.Value {
	diff := g.block.NewSub(
		g.block.NewPtrToInt(lhs, lltypes.I64),
		g.block.NewPtrToInt(rhs, lltypes.I64),
	)

	if elem.Size() == 1 {
		return diff
	}

	return g.block.NewSDiv(diff, constant.NewInt(lltypes.I64, int64(elem.Size())))
}

var intPreds = map[int]enum.IPred{
	syntax.TOK_EQ:   enum.IPredEQ,
	syntax.TOK_NEQ:  enum.IPredNE,
	syntax.TOK_LT:   enum.IPredSLT,
	syntax.TOK_GT:   enum.IPredSGT,
	syntax.TOK_LTEQ: enum.IPredSLE,
	syntax.TOK_GTEQ: enum.IPredSGE,
}

var floatPreds = map[int]enum.FPred{
	syntax.TOK_EQ:   enum.FPredOEQ,
	syntax.TOK_NEQ:  enum.FPredUNE,
	syntax.TOK_LT:   enum.FPredOLT,
	syntax.TOK_GT:   enum.FPredOGT,
	syntax.TOK_LTEQ: enum.FPredOLE,
	syntax.TOK_GTEQ: enum.FPredOGE,
}

// genComparison generates a comparison yielding an int.
func (g *Generator) genComparison(bop *ast.BinaryOp) value.Value {
	lhs := g.genExpr(bop.Lhs)
	rhs := g.genExpr(bop.Rhs)

	var cmp value.Value
	if types.IsFloating(bop.Lhs.Type()) {
		cmp = g.block.NewFCmp(floatPreds[bop.Op.Kind], lhs, rhs)
	} else {
		cmp = g.block.NewICmp(intPreds[bop.Op.Kind], lhs, rhs)
	}

	return g.block.NewZExt(cmp, lltypes.I32)
}

// genLogicalOp generates a short-circuiting `&&` or `||` yielding an int.
func (g *Generator) genLogicalOp(bop *ast.BinaryOp) value.Value {
	isAnd := bop.Op.Kind == syntax.TOK_LAND

	lhs := g.genCond(bop.Lhs)
	lhsBlock := g.block

	rhsBlock := g.appendBlock("rhs")
	endBlock := g.appendBlock("endlogic")

	if isAnd {
		g.block.NewCondBr(lhs, rhsBlock, endBlock)
	} else {
		g.block.NewCondBr(lhs, endBlock, rhsBlock)
	}

	g.block = rhsBlock
	rhs := g.genCond(bop.Rhs)
	rhsEnd := g.block
	g.block.NewBr(endBlock)

	g.block = endBlock
	result := g.block.NewPhi(
		ir.NewIncoming(constant.NewBool(!isAnd), lhsBlock),
		ir.NewIncoming(rhs, rhsEnd),
	)

	return g.block.NewZExt(result, lltypes.I32)
}

// genAssign generates a simple or compound assignment.  The value of the
// assignment is the stored value.
func (g *Generator) genAssign(asn *ast.Assign) value.Value {
	ptr := g.genAddr(asn.Lhs)
	lt := asn.Lhs.Type()

	if asn.Op == nil {
		val := g.genExpr(asn.Rhs)
		g.block.NewStore(val, ptr)
		return val
	}

	old := g.block.NewLoad(g.convType(lt), ptr)
	rhs := g.genExpr(asn.Rhs)

	var updated value.Value
	if types.IsPointer(lt) {
		if asn.Op.Kind == syntax.TOK_MINUS {
			rhs = g.block.NewSub(constant.NewInt(lltypes.I64, 0), rhs)
		}

		updated = g.block.NewGetElementPtr(g.convType(elemType(lt)), old, rhs)
	} else {
		// The operation is performed in the type of the converted right
		// operand.
		opType := asn.Rhs.Type()
		result := g.genArith(asn.Op.Kind, g.convertValue(old, lt, opType), rhs, types.IsFloating(opType))
		updated = g.convertValue(result, opType, lt)
	}

	g.block.NewStore(updated, ptr)
	return updated
}

// genCall generates a function call.  Arguments are evaluated left to right.
func (g *Generator) genCall(call *ast.Call) value.Value {
	ident, ok := call.Func.(*ast.Identifier)
	if !ok {
		report.ReportICE("call of a non-function")
	}

	llFunc, ok := g.funcs[ident.Sym]
	if !ok {
		report.ReportICE("function `%s` was never declared", ident.Name)
	}

	args := make([]value.Value, len(call.Args))
	for i, arg := range call.Args {
		args[i] = g.genExpr(arg)
	}

	result := g.block.NewCall(llFunc, args...)
	if types.IsVoid(call.Type()) {
		return nil
	}

	return result
}

// genCast generates an explicit or implicit conversion.
func (g *Generator) genCast(cast *ast.Cast) value.Value {
	srcType := cast.Src.Type()

	// Arrays decay to a pointer to their first element.
	if at, ok := srcType.(*types.ArrayType); ok {
		zero := constant.NewInt(lltypes.I64, 0)
		return g.block.NewGetElementPtr(g.convType(at), g.genAddr(cast.Src), zero, zero)
	}

	src := g.genExpr(cast.Src)
	if types.IsVoid(cast.Type()) {
		return nil
	}

	return g.convertValue(src, srcType, cast.Type())
}

// convertValue converts a scalar value between two types.
func (g *Generator) convertValue(val value.Value, from, to types.Type) value.Value {
	if types.Equals(from, to) {
		return val
	}

	llTo := g.convType(to)

	switch {
	case types.IsIntegral(from) && types.IsIntegral(to):
		switch {
		case from.Size() < to.Size():
			return g.block.NewSExt(val, llTo)
		case from.Size() > to.Size():
			return g.block.NewTrunc(val, llTo)
		default:
			return val
		}
	case types.IsIntegral(from) && types.IsFloating(to):
		return g.block.NewSIToFP(val, llTo)
	case types.IsFloating(from) && types.IsIntegral(to):
		return g.block.NewFPToSI(val, llTo)
	case types.IsPointer(from) && types.IsPointer(to):
		return g.block.NewBitCast(val, llTo)
	case types.IsPointer(from) && types.IsIntegral(to):
		return g.block.NewPtrToInt(val, llTo)
	case types.IsIntegral(from) && types.IsPointer(to):
		return g.block.NewIntToPtr(val, llTo)
	}

	report.ReportICE("no conversion from %s to %s", from.Repr(), to.Repr())
	return nil
}
