package codegen

import (
	"minicc/ir"
	"minicc/util"
)

// frame is the stack frame layout of a function.  All frame contents are
// addressed at negative offsets from rbp.
type frame struct {
	// The offset below rbp of each variable slot.
	slotOffsets map[*ir.SlotInfo]int

	// The offset below rbp of each spilled temporary by temporary ID.
	spillOffsets map[int]int

	// The callee-saved registers saved in the frame and their offsets.
	savedRegs    []Reg
	savedOffsets []int

	// The total size of the frame rounded up to keep the stack 16 byte
	// aligned.
	size int
}

// layoutFrame lays out the stack frame of fn: saved registers first, then
// variable slots and finally spill slots.
func layoutFrame(fn *ir.Function, alloc *Allocation) *frame {
	fr := &frame{
		slotOffsets:  make(map[*ir.SlotInfo]int),
		spillOffsets: make(map[int]int),
		savedRegs:    alloc.UsedCalleeSaved(),
	}

	offset := 0
	for range fr.savedRegs {
		offset += 8
		fr.savedOffsets = append(fr.savedOffsets, offset)
	}

	for _, slot := range fn.Slots {
		offset = util.AlignUp(offset+slot.Size, slot.Align)
		fr.slotOffsets[slot] = offset
	}

	for _, iv := range alloc.Spills() {
		offset = util.AlignUp(offset+8, 8)
		fr.spillOffsets[iv.Temp.ID] = offset
	}

	fr.size = util.AlignUp(offset, 16)
	return fr
}

// prologue returns the instructions that set up the frame.
func (fr *frame) prologue(line int) []*Instr {
	instrs := []*Instr{
		{Op: "push", Args: []Operand{RegOp{RBP, 8}}, Line: line},
		{Op: "mov", Args: []Operand{RegOp{RBP, 8}, RegOp{RSP, 8}}, Line: line},
	}

	if fr.size > 0 {
		instrs = append(instrs, &Instr{Op: "sub", Args: []Operand{RegOp{RSP, 8}, ImmOp{int64(fr.size)}}, Line: line})
	}

	for i, reg := range fr.savedRegs {
		instrs = append(instrs, &Instr{
			Op:   "mov",
			Args: []Operand{MemOp{Base: RBP, Disp: -fr.savedOffsets[i], Size: 8}, RegOp{reg, 8}},
			Line: line,
		})
	}

	return instrs
}

// epilogue returns the instructions that restore saved registers, release the
// frame and return.
func (fr *frame) epilogue(label string, line int) []*Instr {
	instrs := []*Instr{{Label: label}}

	for i, reg := range fr.savedRegs {
		instrs = append(instrs, &Instr{
			Op:   "mov",
			Args: []Operand{RegOp{reg, 8}, MemOp{Base: RBP, Disp: -fr.savedOffsets[i], Size: 8}},
			Line: line,
		})
	}

	return append(instrs,
		&Instr{Op: "mov", Args: []Operand{RegOp{RSP, 8}, RegOp{RBP, 8}}, Line: line},
		&Instr{Op: "pop", Args: []Operand{RegOp{RBP, 8}}, Line: line},
		&Instr{Op: "ret", Line: line},
	)
}
