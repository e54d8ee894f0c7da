package ir

import (
	"testing"

	"github.com/nalgeon/be"
)

func instr(opcode int, dest *Temp, operands ...Value) *Instruction {
	return &Instruction{OpCode: opcode, Dest: dest, TypeSpec: I32, Operands: operands}
}

func jmp(label string) *Instruction {
	return &Instruction{OpCode: OpJmp, Label: label}
}

func br(cond Value, then, els string) *Instruction {
	return &Instruction{OpCode: OpBr, Operands: []Value{cond}, Label: then, ElseLabel: els}
}

func ret(value Value) *Instruction {
	return &Instruction{OpCode: OpRet, TypeSpec: I32, Operands: []Value{value}}
}

func TestVerifyValid(t *testing.T) {
	t0, t1, t2 := NewTemp(0, I32), NewTemp(1, I32), NewTemp(2, I32)

	fn := &Function{
		Name:     "f",
		NumTemps: 3,
		Blocks: []*Block{
			{Label: "entry", Instrs: []*Instruction{
				instr(OpParam, t0),
				br(t0, "then1", "endif2"),
			}},
			{Label: "then1", Instrs: []*Instruction{
				instr(OpAdd, t1, t0, NewIntConst(1, I32)),
				jmp("endif2"),
			}},
			{Label: "endif2", Instrs: []*Instruction{
				instr(OpMul, t2, t0, t0),
				ret(t2),
			}},
		},
	}

	be.Err(t, VerifyFunction(fn), nil)
}

func TestVerifyConditionalDefinition(t *testing.T) {
	t0, t1 := NewTemp(0, I32), NewTemp(1, I32)

	// %1 is only defined along one of the paths to its use.
	fn := &Function{
		Name:     "f",
		NumTemps: 2,
		Blocks: []*Block{
			{Label: "entry", Instrs: []*Instruction{
				instr(OpParam, t0),
				br(t0, "then1", "endif2"),
			}},
			{Label: "then1", Instrs: []*Instruction{
				instr(OpCopy, t1, NewIntConst(1, I32)),
				jmp("endif2"),
			}},
			{Label: "endif2", Instrs: []*Instruction{
				ret(t1),
			}},
		},
	}

	be.Err(t, VerifyFunction(fn), "temporary %1 is used before it is defined in block `endif2`")
}

func TestVerifyLoopCarriedDefinition(t *testing.T) {
	t0, t1 := NewTemp(0, I32), NewTemp(1, I32)

	// The back edge must not make %1 look defined on entry to the loop.
	fn := &Function{
		Name:     "f",
		NumTemps: 2,
		Blocks: []*Block{
			{Label: "entry", Instrs: []*Instruction{
				instr(OpParam, t0),
				jmp("cond1"),
			}},
			{Label: "cond1", Instrs: []*Instruction{
				br(t1, "body2", "end3"),
			}},
			{Label: "body2", Instrs: []*Instruction{
				instr(OpCopy, t1, t0),
				jmp("cond1"),
			}},
			{Label: "end3", Instrs: []*Instruction{
				ret(t0),
			}},
		},
	}

	be.Err(t, VerifyFunction(fn), "temporary %1 is used before it is defined in block `cond1`")
}

func TestVerifyStructure(t *testing.T) {
	t0 := NewTemp(0, I32)

	tests := []struct {
		blocks []*Block
		msg    string
	}{
		{
			[]*Block{{Label: "entry", Instrs: []*Instruction{instr(OpCopy, t0, NewIntConst(1, I32))}}},
			"block `entry` does not end with a terminator",
		},
		{
			[]*Block{{Label: "entry", Instrs: []*Instruction{jmp("missing")}}},
			"branches to undefined block `missing`",
		},
		{
			[]*Block{{Label: "entry", Instrs: []*Instruction{
				instr(OpCopy, t0, NewIntConst(1, I32)),
				instr(OpCopy, t0, NewIntConst(2, I32)),
				ret(t0),
			}}},
			"temporary %0 is defined more than once",
		},
		{
			[]*Block{{Label: "entry", Instrs: []*Instruction{ret(t0), ret(t0)}}},
			"terminator in the middle of block `entry`",
		},
	}

	for _, test := range tests {
		fn := &Function{Name: "f", NumTemps: 1, Blocks: test.blocks}
		be.Err(t, VerifyFunction(fn), test.msg)
	}
}

func TestInstructionRepr(t *testing.T) {
	t0, t1 := NewTemp(0, I32), NewTemp(1, I64)
	slot := &Slot{ValueBase: NewValueBase(I64), Info: &SlotInfo{Name: "x.1", Size: 4, Align: 4}}

	tests := []struct {
		instr *Instruction
		want  string
	}{
		{instr(OpAdd, t0, NewIntConst(1, I32), NewIntConst(2, I32)), "%0 = add i32 1, 2"},
		{&Instruction{OpCode: OpLoad, Dest: t0, TypeSpec: I32, Operands: []Value{slot}}, "%0 = load i32 &x.1"},
		{&Instruction{OpCode: OpStore, TypeSpec: I32, Operands: []Value{slot, t0}}, "store i32 &x.1, %0"},
		{&Instruction{OpCode: OpSext, Dest: t1, TypeSpec: I64, Operands: []Value{t0}}, "%1 = sext i64 %0"},
		{&Instruction{OpCode: OpParam, Dest: t0, TypeSpec: I32, Index: 0}, "%0 = param i32 0"},
		{&Instruction{OpCode: OpArg, TypeSpec: F64, Index: 1, Operands: []Value{NewFloatConst(2)}}, "arg f64 1, 2.0"},
		{&Instruction{OpCode: OpCall, Label: "g", Index: 2}, "call @g"},
		{&Instruction{OpCode: OpResult, Dest: t0, TypeSpec: I32}, "%0 = result i32"},
		{&Instruction{OpCode: OpStore, TypeSpec: I64, Operands: []Value{NewGlobal("p"), NewGlobal(".LC0")}}, "store i64 @p, @.LC0"},
		{br(t0, "then1", "else2"), "br %0, then1, else2"},
		{jmp("end3"), "jmp end3"},
		{&Instruction{OpCode: OpRet}, "ret"},
		{ret(t0), "ret i32 %0"},
	}

	for _, test := range tests {
		be.Equal(t, test.instr.Repr(), test.want)
	}
}
