package types

import (
	"fmt"
	"minicc/util"
	"strings"
)

// Type represents a C data type.
type Type interface {
	// Returns whether this type is equal to the other type. This should only be
	// called within methods of type instances: use Equals everywhere else.
	equals(other Type) bool

	// Returns the size of this type in bytes.
	Size() int

	// Returns the alignment of this type in bytes.
	Align() int

	// Returns the representative string for this type.
	Repr() string
}

// Equals returns whether two types are equal.
func Equals(a, b Type) bool {
	return a.equals(b)
}

// -----------------------------------------------------------------------------

// PrimitiveType represents a primitive type.  This must be one of the
// enumerated primitive type values below.
type PrimitiveType int

// Enumeration of the different primitive types.  The arithmetic types are
// ordered by conversion rank.
const (
	PrimVoid PrimitiveType = iota
	PrimChar
	PrimInt
	PrimLong
	PrimDouble
)

func (pt PrimitiveType) equals(other Type) bool {
	if opt, ok := other.(PrimitiveType); ok {
		return pt == opt
	}

	return false
}

func (pt PrimitiveType) Size() int {
	switch pt {
	case PrimVoid:
		return 1
	case PrimChar:
		return 1
	case PrimInt:
		return 4
	default:
		return 8
	}
}

func (pt PrimitiveType) Align() int {
	return pt.Size()
}

func (pt PrimitiveType) Repr() string {
	switch pt {
	case PrimVoid:
		return "void"
	case PrimChar:
		return "char"
	case PrimInt:
		return "int"
	case PrimLong:
		return "long"
	default:
		return "double"
	}
}

// -----------------------------------------------------------------------------

// PointerType represents a pointer type.
type PointerType struct {
	// The element (content) type of the pointer.
	ElemType Type
}

func (pt *PointerType) equals(other Type) bool {
	if opt, ok := other.(*PointerType); ok {
		return Equals(pt.ElemType, opt.ElemType)
	}

	return false
}

func (pt *PointerType) Size() int {
	return util.PointerSize
}

func (pt *PointerType) Align() int {
	return util.PointerSize
}

func (pt *PointerType) Repr() string {
	return pt.ElemType.Repr() + "*"
}

// -----------------------------------------------------------------------------

// ArrayType represents a fixed-length array type.
type ArrayType struct {
	// The element type of the array.
	ElemType Type

	// The number of elements in the array.
	Len int
}

func (at *ArrayType) equals(other Type) bool {
	if oat, ok := other.(*ArrayType); ok {
		return at.Len == oat.Len && Equals(at.ElemType, oat.ElemType)
	}

	return false
}

func (at *ArrayType) Size() int {
	return at.Len * at.ElemType.Size()
}

func (at *ArrayType) Align() int {
	return at.ElemType.Align()
}

func (at *ArrayType) Repr() string {
	// The outermost dimension is printed first: int[2][3].
	base, dims := Type(at), ""
	for {
		if inner, ok := base.(*ArrayType); ok {
			dims += fmt.Sprintf("[%d]", inner.Len)
			base = inner.ElemType
		} else {
			break
		}
	}

	return base.Repr() + dims
}

// -----------------------------------------------------------------------------

// FuncType represents a function type.
type FuncType struct {
	// The parameter types of the function.
	ParamTypes []Type

	// The return type of the function.
	ReturnType Type

	// Whether the function takes a variable number of arguments after its
	// fixed parameters.
	Variadic bool
}

func (ft *FuncType) equals(other Type) bool {
	if oft, ok := other.(*FuncType); ok {
		if len(ft.ParamTypes) != len(oft.ParamTypes) || ft.Variadic != oft.Variadic {
			return false
		}

		for i, paramtyp := range ft.ParamTypes {
			if !Equals(paramtyp, oft.ParamTypes[i]) {
				return false
			}
		}

		return Equals(ft.ReturnType, oft.ReturnType)
	}

	return false
}

func (ft *FuncType) Size() int {
	return util.PointerSize
}

func (ft *FuncType) Align() int {
	return util.PointerSize
}

func (ft *FuncType) Repr() string {
	params := util.Map(ft.ParamTypes, Type.Repr)
	if ft.Variadic {
		params = append(params, "...")
	}

	return ft.ReturnType.Repr() + "(" + strings.Join(params, ", ") + ")"
}
