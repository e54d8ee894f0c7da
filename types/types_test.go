package types

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestRepr(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{PrimInt, "int"},
		{&PointerType{ElemType: PrimChar}, "char*"},
		{&ArrayType{ElemType: &ArrayType{ElemType: PrimInt, Len: 3}, Len: 2}, "int[2][3]"},
		{&FuncType{ParamTypes: []Type{PrimInt, &PointerType{ElemType: PrimDouble}}, ReturnType: PrimVoid}, "void(int, double*)"},
	}

	for _, test := range tests {
		be.Equal(t, test.typ.Repr(), test.want)
	}
}

func TestSizes(t *testing.T) {
	be.Equal(t, PrimChar.Size(), 1)
	be.Equal(t, PrimInt.Size(), 4)
	be.Equal(t, PrimLong.Size(), 8)
	be.Equal(t, PrimDouble.Size(), 8)

	arr := &ArrayType{ElemType: PrimInt, Len: 5}
	be.Equal(t, arr.Size(), 20)
	be.Equal(t, arr.Align(), 4)
}

func TestEquals(t *testing.T) {
	a := &PointerType{ElemType: PrimInt}
	b := &PointerType{ElemType: PrimInt}
	c := &PointerType{ElemType: PrimLong}

	be.True(t, Equals(a, b))
	be.True(t, !Equals(a, c))
	be.True(t, !Equals(PrimInt, a))

	f1 := &FuncType{ParamTypes: []Type{PrimInt}, ReturnType: PrimInt}
	f2 := &FuncType{ParamTypes: []Type{PrimInt}, ReturnType: PrimInt}
	f3 := &FuncType{ParamTypes: []Type{PrimInt, PrimInt}, ReturnType: PrimInt}
	be.True(t, Equals(f1, f2))
	be.True(t, !Equals(f1, f3))
}

func TestConversions(t *testing.T) {
	be.Equal[Type](t, CommonType(PrimChar, PrimChar), PrimInt)
	be.Equal[Type](t, CommonType(PrimInt, PrimLong), PrimLong)
	be.Equal[Type](t, CommonType(PrimDouble, PrimChar), PrimDouble)

	decayed := Decay(&ArrayType{ElemType: PrimChar, Len: 4})
	be.True(t, Equals(decayed, &PointerType{ElemType: PrimChar}))

	be.True(t, IsScalar(decayed))
	be.True(t, IsIntegral(PrimChar))
	be.True(t, !IsIntegral(PrimDouble))
	be.True(t, IsVoidPointer(&PointerType{ElemType: PrimVoid}))
}
