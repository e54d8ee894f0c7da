package ir

import (
	"minicc/report"
	"minicc/types"
)

// Type represents a type that can be used in IR.  The IR type system is a more
// simplified, "machine-like" version of the C type system: pointers are just
// 64-bit integers.  It must be one of the enumerated IR types.
type Type int

// Enumeration of IR types.
const (
	I8 Type = iota
	I32
	I64
	F64
)

func (t Type) Repr() string {
	switch t {
	case I8:
		return "i8"
	case I32:
		return "i32"
	case I64:
		return "i64"
	default:
		return "f64"
	}
}

// Size returns the size of the type in bytes.
func (t Type) Size() int {
	switch t {
	case I8:
		return 1
	case I32:
		return 4
	default:
		return 8
	}
}

// IsFloat returns whether the type is a floating-point type.
func (t Type) IsFloat() bool {
	return t == F64
}

// ConvType converts a C type into the IR type used to hold its values.  Void,
// array and function types have no IR value type.
func ConvType(typ types.Type) Type {
	switch v := typ.(type) {
	case types.PrimitiveType:
		switch v {
		case types.PrimChar:
			return I8
		case types.PrimInt:
			return I32
		case types.PrimLong:
			return I64
		case types.PrimDouble:
			return F64
		}
	case *types.PointerType:
		return I64
	}

	report.ReportICE("type %s has no IR value type", typ.Repr())
	return I64
}
