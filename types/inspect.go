package types

// IsVoid returns whether typ is void.
func IsVoid(typ Type) bool {
	return Equals(typ, PrimVoid)
}

// IsIntegral returns whether typ is an integer type: char, int or long.
func IsIntegral(typ Type) bool {
	if pt, ok := typ.(PrimitiveType); ok {
		return PrimChar <= pt && pt <= PrimLong
	}

	return false
}

// IsFloating returns whether typ is a floating-point type.
func IsFloating(typ Type) bool {
	return Equals(typ, PrimDouble)
}

// IsArithmetic returns whether typ is an integral or floating type.
func IsArithmetic(typ Type) bool {
	return IsIntegral(typ) || IsFloating(typ)
}

// IsPointer returns whether typ is a pointer type.
func IsPointer(typ Type) bool {
	_, ok := typ.(*PointerType)
	return ok
}

// IsScalar returns whether typ can be tested for truth: arithmetic types and
// pointers.
func IsScalar(typ Type) bool {
	return IsArithmetic(typ) || IsPointer(typ)
}

// IsVoidPointer returns whether typ is `void*`.
func IsVoidPointer(typ Type) bool {
	if pt, ok := typ.(*PointerType); ok {
		return IsVoid(pt.ElemType)
	}

	return false
}

// Decay returns the type a value of type typ has when it is used as an rvalue:
// arrays decay to a pointer to their first element and functions to function
// pointers.  All other types are returned unchanged.
func Decay(typ Type) Type {
	switch v := typ.(type) {
	case *ArrayType:
		return &PointerType{ElemType: v.ElemType}
	case *FuncType:
		return &PointerType{ElemType: v}
	}

	return typ
}

// Promote applies the integer promotions: char becomes int.
func Promote(typ Type) Type {
	if Equals(typ, PrimChar) {
		return PrimInt
	}

	return typ
}

// CommonType returns the type that two arithmetic operands are converted to by
// the usual arithmetic conversions: the highest ranked of int, long and double.
func CommonType(a, b Type) Type {
	pa, pb := Promote(a).(PrimitiveType), Promote(b).(PrimitiveType)
	if pa > pb {
		return pa
	}

	return pb
}
