package lower

import (
	"cmp"
	"minicc/ir"
)

// binop emits a binary arithmetic operation.  Operations on constants are
// folded unless folding would divide by zero.
func (l *Lowerer) binop(opcode int, typ ir.Type, lhs, rhs ir.Value) ir.Value {
	switch a := lhs.(type) {
	case *ir.IntConst:
		if b, ok := rhs.(*ir.IntConst); ok {
			if result, ok := foldInt(opcode, typ, a.Val, b.Val); ok {
				return ir.NewIntConst(result, typ)
			}
		}
	case *ir.FloatConst:
		if b, ok := rhs.(*ir.FloatConst); ok {
			if result, ok := foldFloat(opcode, a.Val, b.Val); ok {
				return ir.NewFloatConst(result)
			}
		}
	}

	return l.emitValue(opcode, typ, lhs, rhs)
}

// compare emits a comparison which yields an i32 that is 1 if the comparison
// holds and 0 otherwise.
func (l *Lowerer) compare(opcode int, lhs, rhs ir.Value) ir.Value {
	var result, ok bool
	switch a := lhs.(type) {
	case *ir.IntConst:
		if b, isConst := rhs.(*ir.IntConst); isConst {
			result, ok = compareOrdered(opcode, a.Val, b.Val), true
		}
	case *ir.FloatConst:
		if b, isConst := rhs.(*ir.FloatConst); isConst {
			result, ok = compareOrdered(opcode, a.Val, b.Val), true
		}
	}

	if ok {
		if result {
			return ir.NewIntConst(1, ir.I32)
		}

		return ir.NewIntConst(0, ir.I32)
	}

	dest := l.newTemp(ir.I32)
	l.appendInstr(&ir.Instruction{
		OpCode:   opcode,
		Dest:     dest,
		TypeSpec: lhs.Type(),
		Operands: []ir.Value{lhs, rhs},
	})

	return dest
}

// convert converts a value to the IR type to.  Conversions of constants are
// folded.
func (l *Lowerer) convert(value ir.Value, to ir.Type) ir.Value {
	from := value.Type()
	if from == to {
		return value
	}

	switch c := value.(type) {
	case *ir.IntConst:
		if to.IsFloat() {
			return ir.NewFloatConst(float64(c.Val))
		}

		return ir.NewIntConst(truncate(c.Val, to), to)
	case *ir.FloatConst:
		return ir.NewIntConst(truncate(int64(c.Val), to), to)
	}

	switch {
	case to.IsFloat():
		if from == ir.I8 {
			value = l.emitValue(ir.OpSext, ir.I32, value)
		}

		return l.emitValue(ir.OpItof, ir.F64, value)
	case from.IsFloat():
		if to == ir.I8 {
			return l.emitValue(ir.OpTrunc, ir.I8, l.emitValue(ir.OpFtoi, ir.I32, value))
		}

		return l.emitValue(ir.OpFtoi, to, value)
	case from.Size() < to.Size():
		return l.emitValue(ir.OpSext, to, value)
	default:
		return l.emitValue(ir.OpTrunc, to, value)
	}
}

// -----------------------------------------------------------------------------

// foldInt evaluates an integer operation on constants of type typ.  It returns
// false if the operation cannot be folded.
func foldInt(opcode int, typ ir.Type, a, b int64) (int64, bool) {
	// Shift counts are masked to the width of the operand as the hardware does.
	shiftMask := int64(typ.Size()*8 - 1)

	var result int64
	switch opcode {
	case ir.OpAdd:
		result = a + b
	case ir.OpSub:
		result = a - b
	case ir.OpMul:
		result = a * b
	case ir.OpDiv:
		if b == 0 {
			return 0, false
		}

		result = a / b
	case ir.OpRem:
		if b == 0 {
			return 0, false
		}

		result = a % b
	case ir.OpAnd:
		result = a & b
	case ir.OpOr:
		result = a | b
	case ir.OpXor:
		result = a ^ b
	case ir.OpShl:
		result = a << (b & shiftMask)
	case ir.OpShr:
		result = a >> (b & shiftMask)
	default:
		return 0, false
	}

	return truncate(result, typ), true
}

// foldFloat evaluates a floating-point operation on constants.
func foldFloat(opcode int, a, b float64) (float64, bool) {
	switch opcode {
	case ir.OpAdd:
		return a + b, true
	case ir.OpSub:
		return a - b, true
	case ir.OpMul:
		return a * b, true
	case ir.OpDiv:
		return a / b, true
	}

	return 0, false
}

// compareOrdered evaluates a comparison on constants.
func compareOrdered[T cmp.Ordered](opcode int, a, b T) bool {
	switch opcode {
	case ir.OpEq:
		return a == b
	case ir.OpNe:
		return a != b
	case ir.OpLt:
		return a < b
	case ir.OpLe:
		return a <= b
	case ir.OpGt:
		return a > b
	default:
		return a >= b
	}
}

// truncate truncates an integer constant to the width of typ.
func truncate(val int64, typ ir.Type) int64 {
	switch typ {
	case ir.I8:
		return int64(int8(val))
	case ir.I32:
		return int64(int32(val))
	}

	return val
}

// zeroValue returns the zero constant of a type.
func zeroValue(typ ir.Type) ir.Value {
	if typ.IsFloat() {
		return ir.NewFloatConst(0)
	}

	return ir.NewIntConst(0, typ)
}
