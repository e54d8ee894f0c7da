package generate

import (
	"minicc/report"
	"minicc/types"

	lltypes "github.com/llir/llvm/ir/types"
)

// convType converts a C type to its LLVM type.  `void *` becomes `i8 *`.
func (g *Generator) convType(typ types.Type) lltypes.Type {
	switch v := typ.(type) {
	case types.PrimitiveType:
		return convPrimType(v)
	case *types.PointerType:
		if types.IsVoid(v.ElemType) {
			return lltypes.I8Ptr
		}

		return lltypes.NewPointer(g.convType(v.ElemType))
	case *types.ArrayType:
		return lltypes.NewArray(uint64(v.Len), g.convType(v.ElemType))
	}

	report.ReportICE("type %s has no LLVM type", typ.Repr())
	return nil
}

func convPrimType(pt types.PrimitiveType) lltypes.Type {
	switch pt {
	case types.PrimChar:
		return lltypes.I8
	case types.PrimInt:
		return lltypes.I32
	case types.PrimLong:
		return lltypes.I64
	case types.PrimDouble:
		return lltypes.Double
	default:
		return lltypes.Void
	}
}

// elemType returns the element type of a pointer type.
func elemType(typ types.Type) types.Type {
	if pt, ok := typ.(*types.PointerType); ok {
		return pt.ElemType
	}

	report.ReportICE("expected a pointer type but got %s", typ.Repr())
	return nil
}
