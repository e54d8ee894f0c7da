package ast

import (
	"minicc/types"
)

// ConstValue is the value of a constant expression.
type ConstValue struct {
	// The integer value.  This is also set for floating constants.
	Int int64

	// The floating value.  This is also set for integer constants.
	Float float64

	// The contents of a string constant.
	Str string

	IsFloat, IsString bool
}

// EvalConst evaluates a constant expression: a literal, a negated literal or a
// conversion of a constant expression.  It returns false if expr is not a
// constant expression.
func EvalConst(expr ASTExpr) (ConstValue, bool) {
	switch v := expr.(type) {
	case *Literal:
		switch v.Kind {
		case LitFloat:
			return ConstValue{Int: int64(v.FloatValue), Float: v.FloatValue, IsFloat: true}, true
		case LitString:
			return ConstValue{Str: v.Value, IsString: true}, true
		default:
			return ConstValue{Int: v.IntValue, Float: float64(v.IntValue)}, true
		}
	case *UnaryOp:
		if v.Op.Name != "-" && v.Op.Name != "+" {
			return ConstValue{}, false
		}

		cv, ok := EvalConst(v.Operand)
		if !ok || cv.IsString {
			return ConstValue{}, false
		}

		if v.Op.Name == "-" {
			cv.Int, cv.Float = -cv.Int, -cv.Float
		}

		return truncateConst(cv, v.Type()), true
	case *Cast:
		cv, ok := EvalConst(v.Src)
		if !ok {
			return ConstValue{}, false
		}

		return truncateConst(cv, v.Type()), true
	}

	return ConstValue{}, false
}

// truncateConst converts a constant value to the given type.
func truncateConst(cv ConstValue, typ types.Type) ConstValue {
	if cv.IsString || typ == nil {
		return cv
	}

	switch {
	case types.IsFloating(typ):
		if !cv.IsFloat {
			cv.Float = float64(cv.Int)
		}

		cv.IsFloat = true
		cv.Int = int64(cv.Float)
	case types.IsIntegral(typ) || types.IsPointer(typ):
		if cv.IsFloat {
			cv.Int = int64(cv.Float)
		}

		cv.IsFloat = false

		switch typ.Size() {
		case 1:
			cv.Int = int64(int8(cv.Int))
		case 4:
			cv.Int = int64(int32(cv.Int))
		}

		cv.Float = float64(cv.Int)
	}

	return cv
}
