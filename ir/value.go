package ir

import (
	"fmt"
	"strconv"
)

// Value represents an operand that can be used in an instruction.
type Value interface {
	Repr() string

	Type() Type
}

// ValueBase is the base struct for all values.
type ValueBase struct {
	typ Type
}

func NewValueBase(typ Type) ValueBase {
	return ValueBase{typ: typ}
}

func (vb *ValueBase) Type() Type {
	return vb.typ
}

// -----------------------------------------------------------------------------

// Temp is a virtual register.  Every temporary is defined exactly once.
type Temp struct {
	ValueBase
	ID int
}

func NewTemp(id int, typ Type) *Temp {
	return &Temp{ValueBase: NewValueBase(typ), ID: id}
}

func (t *Temp) Repr() string {
	return fmt.Sprintf("%%%d", t.ID)
}

// IntConst is an integer or pointer constant.
type IntConst struct {
	ValueBase
	Val int64
}

func NewIntConst(val int64, typ Type) *IntConst {
	return &IntConst{ValueBase: NewValueBase(typ), Val: val}
}

func (ic *IntConst) Repr() string {
	return strconv.FormatInt(ic.Val, 10)
}

// FloatConst is a floating-point constant.
type FloatConst struct {
	ValueBase
	Val float64
}

func NewFloatConst(val float64) *FloatConst {
	return &FloatConst{ValueBase: NewValueBase(F64), Val: val}
}

func (fc *FloatConst) Repr() string {
	s := strconv.FormatFloat(fc.Val, 'g', -1, 64)

	// Always distinguish floating constants from integers.
	for _, c := range s {
		if c == '.' || c == 'e' || c == 'I' || c == 'N' {
			return s
		}
	}

	return s + ".0"
}

// Slot is the address of a stack frame slot of the enclosing function.
type Slot struct {
	ValueBase
	Info *SlotInfo
}

func (s *Slot) Repr() string {
	return "&" + s.Info.Name
}

// Global is the address of a global variable or string literal.
type Global struct {
	ValueBase
	Name string
}

func NewGlobal(name string) *Global {
	return &Global{ValueBase: NewValueBase(I64), Name: name}
}

func (g *Global) Repr() string {
	return "@" + g.Name
}
