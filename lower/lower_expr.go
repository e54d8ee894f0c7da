package lower

import (
	"minicc/ast"
	"minicc/ir"
	"minicc/report"
	"minicc/types"
)

// binOpcodes maps binary operators to their IR op codes.
var binOpcodes = map[string]int{
	"+":  ir.OpAdd,
	"-":  ir.OpSub,
	"*":  ir.OpMul,
	"/":  ir.OpDiv,
	"%":  ir.OpRem,
	"&":  ir.OpAnd,
	"|":  ir.OpOr,
	"^":  ir.OpXor,
	"<<": ir.OpShl,
	">>": ir.OpShr,
	"==": ir.OpEq,
	"!=": ir.OpNe,
	"<":  ir.OpLt,
	"<=": ir.OpLe,
	">":  ir.OpGt,
	">=": ir.OpGe,
}

// lowerExpr lowers an expression used for its value.  It returns nil for calls
// to void functions.
func (l *Lowerer) lowerExpr(expr ast.ASTExpr) ir.Value {
	switch v := expr.(type) {
	case *ast.Literal:
		switch v.Kind {
		case ast.LitFloat:
			return ir.NewFloatConst(v.FloatValue)
		case ast.LitString:
			return l.stringGlobal(v.Value)
		default:
			return ir.NewIntConst(v.IntValue, ir.ConvType(v.Type()))
		}
	case *ast.Identifier, *ast.Deref:
		return l.emitLoad(ir.ConvType(v.Type()), l.lowerAddr(v))
	case *ast.AddressOf:
		return l.lowerAddr(v.Elem)
	case *ast.UnaryOp:
		return l.lowerUnaryOp(v)
	case *ast.IncDec:
		return l.lowerIncDec(v)
	case *ast.BinaryOp:
		return l.lowerBinaryOp(v)
	case *ast.Assign:
		return l.lowerAssign(v)
	case *ast.Call:
		return l.lowerCall(v)
	case *ast.Cast:
		// Arrays decay to the address of their first element.
		if _, ok := v.Src.Type().(*types.ArrayType); ok {
			return l.lowerAddr(v.Src)
		}

		value := l.lowerExpr(v.Src)
		if types.IsVoid(v.Type()) {
			return nil
		}

		return l.convert(value, ir.ConvType(v.Type()))
	}

	report.ReportICE("lowering not implemented for expression %T", expr)
	return nil
}

// lowerAddr lowers an lvalue into its address.
func (l *Lowerer) lowerAddr(expr ast.ASTExpr) ir.Value {
	switch v := expr.(type) {
	case *ast.Identifier:
		if v.Sym.IsLocal() {
			return slotValue(l.slots[v.Sym])
		}

		return ir.NewGlobal(v.Sym.Label)
	case *ast.Deref:
		return l.lowerExpr(v.Ptr)
	}

	report.ReportICE("expression %T is not an lvalue", expr)
	return nil
}

// -----------------------------------------------------------------------------

// lowerUnaryOp lowers a `-`, `+`, `!` or `~` application.
func (l *Lowerer) lowerUnaryOp(uop *ast.UnaryOp) ir.Value {
	operand := l.lowerExpr(uop.Operand)

	switch uop.Op.Name {
	case "-":
		switch c := operand.(type) {
		case *ir.IntConst:
			return ir.NewIntConst(truncate(-c.Val, c.Type()), c.Type())
		case *ir.FloatConst:
			return ir.NewFloatConst(-c.Val)
		}

		return l.emitValue(ir.OpNeg, operand.Type(), operand)
	case "~":
		if c, ok := operand.(*ir.IntConst); ok {
			return ir.NewIntConst(^c.Val, c.Type())
		}

		return l.emitValue(ir.OpNot, operand.Type(), operand)
	case "!":
		return l.compare(ir.OpEq, operand, zeroValue(operand.Type()))
	default:
		return operand
	}
}

// lowerIncDec lowers an increment or decrement.
func (l *Lowerer) lowerIncDec(incdec *ast.IncDec) ir.Value {
	typ := incdec.Operand.Type()
	irType := ir.ConvType(typ)
	isDec := incdec.Op.Name == "--"

	addr := l.lowerAddr(incdec.Operand)
	old := l.emitLoad(irType, addr)

	var updated ir.Value
	switch {
	case types.IsPointer(typ):
		updated = l.pointerOffset(old, ir.NewIntConst(1, ir.I64), elemSize(typ), isDec)
	case types.IsFloating(typ):
		updated = l.binop(pick(isDec, ir.OpSub, ir.OpAdd), ir.F64, old, ir.NewFloatConst(1))
	default:
		// Integer arithmetic is performed in at least int.
		wideType := ir.ConvType(types.Promote(typ))
		wide := l.convert(old, wideType)
		result := l.binop(pick(isDec, ir.OpSub, ir.OpAdd), wideType, wide, ir.NewIntConst(1, wideType))
		updated = l.convert(result, irType)
	}

	l.emitStore(addr, updated)

	if incdec.Postfix {
		return old
	}

	return updated
}

// lowerBinaryOp lowers a binary operator application.
func (l *Lowerer) lowerBinaryOp(bop *ast.BinaryOp) ir.Value {
	if bop.Op.Name == "&&" || bop.Op.Name == "||" {
		return l.lowerLogicalValue(bop)
	}

	lhs := l.lowerExpr(bop.Lhs)
	rhs := l.lowerExpr(bop.Rhs)
	lt, rt := bop.Lhs.Type(), bop.Rhs.Type()

	switch {
	case types.IsPointer(bop.Type()):
		// Pointer plus or minus an integer.
		if types.IsPointer(lt) {
			return l.pointerOffset(lhs, rhs, elemSize(lt), bop.Op.Name == "-")
		}

		return l.pointerOffset(rhs, lhs, elemSize(rt), false)
	case bop.Op.Name == "-" && types.IsPointer(lt):
		// The difference of two pointers is measured in elements.
		diff := l.binop(ir.OpSub, ir.I64, lhs, rhs)
		return l.binop(ir.OpDiv, ir.I64, diff, ir.NewIntConst(int64(elemSize(lt)), ir.I64))
	}

	opcode, ok := binOpcodes[bop.Op.Name]
	if !ok {
		report.ReportICE("unknown binary operator `%s`", bop.Op.Name)
	}

	if ir.IsComparison(opcode) {
		return l.compare(opcode, lhs, rhs)
	}

	return l.binop(opcode, ir.ConvType(bop.Type()), lhs, rhs)
}

// lowerLogicalValue lowers a logical operator used for its value.  The result
// is merged through a hidden slot so that every temporary is still defined
// once.
func (l *Lowerer) lowerLogicalValue(bop *ast.BinaryOp) ir.Value {
	result := l.newHiddenSlot(ir.I32)
	trueLabel, falseLabel, endLabel := l.newLabel("true"), l.newLabel("false"), l.newLabel("endlogic")

	l.lowerCondBranch(bop, trueLabel, falseLabel)

	l.startBlock(trueLabel)
	l.emitStore(result, ir.NewIntConst(1, ir.I32))
	l.emitJmp(endLabel)

	l.startBlock(falseLabel)
	l.emitStore(result, ir.NewIntConst(0, ir.I32))
	l.emitJmp(endLabel)

	l.startBlock(endLabel)
	return l.emitLoad(ir.I32, result)
}

// lowerAssign lowers a simple or compound assignment.
func (l *Lowerer) lowerAssign(asn *ast.Assign) ir.Value {
	lt := asn.Lhs.Type()
	irType := ir.ConvType(lt)
	addr := l.lowerAddr(asn.Lhs)

	if asn.Op == nil {
		value := l.lowerExpr(asn.Rhs)
		l.emitStore(addr, value)
		return value
	}

	old := l.emitLoad(irType, addr)
	rhs := l.lowerExpr(asn.Rhs)

	var result ir.Value
	if types.IsPointer(lt) {
		result = l.pointerOffset(old, rhs, elemSize(lt), asn.Op.Name == "-")
	} else {
		// The operation is performed in the type of the right operand.
		opType := rhs.Type()
		value := l.binop(binOpcodes[asn.Op.Name], opType, l.convert(old, opType), rhs)
		result = l.convert(value, irType)
	}

	l.emitStore(addr, result)
	return result
}

// lowerCall lowers a function call.  Arguments are evaluated left to right and
// then passed, last argument first.
func (l *Lowerer) lowerCall(call *ast.Call) ir.Value {
	ident := call.Func.(*ast.Identifier)

	args := make([]ir.Value, len(call.Args))
	for i, arg := range call.Args {
		args[i] = l.lowerExpr(arg)
	}

	for i := len(args) - 1; i >= 0; i-- {
		l.appendInstr(&ir.Instruction{
			OpCode:   ir.OpArg,
			TypeSpec: args[i].Type(),
			Operands: []ir.Value{args[i]},
			Index:    i,
		})
	}

	l.appendInstr(&ir.Instruction{OpCode: ir.OpCall, Label: ident.Sym.Label, Index: len(args)})

	retType := call.Type()
	if types.IsVoid(retType) {
		return nil
	}

	return l.emitValue(ir.OpResult, ir.ConvType(retType))
}

// -----------------------------------------------------------------------------

// pointerOffset computes `ptr + index` or `ptr - index` scaling the index by
// the size of the pointed-to type.
func (l *Lowerer) pointerOffset(ptr, index ir.Value, size int, negate bool) ir.Value {
	index = l.convert(index, ir.I64)

	if size != 1 {
		index = l.binop(ir.OpMul, ir.I64, index, ir.NewIntConst(int64(size), ir.I64))
	}

	return l.binop(pick(negate, ir.OpSub, ir.OpAdd), ir.I64, ptr, index)
}

// elemSize returns the size of the type a pointer points to.
func elemSize(typ types.Type) int {
	return typ.(*types.PointerType).ElemType.Size()
}

func pick(cond bool, a, b int) int {
	if cond {
		return a
	}

	return b
}
