package codegen

import (
	"math"
	"minicc/ir"
	"minicc/report"
)

// funcGen performs instruction selection for a single function.  Temporaries
// live in the registers or spill slots given by the allocation.  rax, rcx and
// rdx together with xmm0 and xmm1 are used as scratch registers: they never
// hold a temporary across instructions.
type funcGen struct {
	g     *Generator
	fn    *ir.Function
	alloc *Allocation
	frame *frame

	// The generated body.
	body []*Instr

	// The source line of the IR instruction being selected.
	line int

	// The locations of the parameters of the function.
	paramLocs []argLoc

	// The call currently being set up if any.
	call *callSetup

	epilogueLabel string
}

// callSetup is the state of a call whose arguments are being placed.
type callSetup struct {
	locs []argLoc

	// The number of bytes pushed for the call including alignment padding.
	stackBytes int

	// The number of SSE registers used to pass arguments.
	nvec int
}

func (fg *funcGen) emit(op string, args ...Operand) {
	fg.body = append(fg.body, &Instr{Op: op, Args: args, Line: fg.line})
}

// blockLabel returns the assembly label of an IR block.
func (fg *funcGen) blockLabel(label string) string {
	return ".L" + fg.fn.Name + "." + label
}

// -----------------------------------------------------------------------------

// genInstr selects the machine instructions for the instruction at index ndx of
// block.  next is the label of the block laid out after block and last
// indicates whether this is the final instruction of the function.
func (fg *funcGen) genInstr(block *ir.Block, ndx int, next string, last bool) {
	instr := block.Instrs[ndx]

	switch instr.OpCode {
	case ir.OpCopy:
		fg.move(instr.Dest, instr.Operands[0])
	case ir.OpLoad:
		fg.genLoad(instr)
	case ir.OpStore:
		fg.genStore(instr)
	case ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpDiv, ir.OpRem, ir.OpAnd, ir.OpOr, ir.OpXor, ir.OpShl, ir.OpShr:
		if instr.TypeSpec.IsFloat() {
			fg.genFloatArith(instr)
		} else {
			fg.genIntArith(instr)
		}
	case ir.OpEq, ir.OpNe, ir.OpLt, ir.OpLe, ir.OpGt, ir.OpGe:
		if instr.TypeSpec.IsFloat() {
			fg.genFloatCompare(instr)
		} else {
			fg.genIntCompare(instr)
		}
	case ir.OpNeg, ir.OpNot:
		fg.genUnary(instr)
	case ir.OpSext, ir.OpZext, ir.OpTrunc, ir.OpItof, ir.OpFtoi:
		fg.genConversion(instr)
	case ir.OpParam:
		fg.genParam(instr)
	case ir.OpArg:
		if fg.call == nil {
			fg.beginCall(block, ndx)
		}

		fg.genArg(instr)
	case ir.OpCall:
		if fg.call == nil {
			fg.beginCall(block, ndx)
		}

		fg.genCall(instr)
	case ir.OpResult:
		if instr.TypeSpec.IsFloat() {
			fg.storeReg(instr.Dest, XMM0)
		} else {
			fg.storeReg(instr.Dest, RAX)
		}
	case ir.OpJmp:
		if instr.Label != next {
			fg.emit("jmp", LabelOp{fg.blockLabel(instr.Label)})
		}
	case ir.OpBr:
		fg.genBranch(instr, next)
	case ir.OpRet:
		if len(instr.Operands) > 0 {
			if instr.TypeSpec.IsFloat() {
				fg.load(XMM0, 8, instr.Operands[0])
			} else {
				fg.load(RAX, instr.TypeSpec.Size(), instr.Operands[0])
			}
		}

		if !last {
			fg.emit("jmp", LabelOp{fg.epilogueLabel})
		}
	default:
		panic(report.Raise(report.KindCodegen, nil, "no machine instructions for IR instruction `%s` in function `%s`", instr.Repr(), fg.fn.Name))
	}
}

// -----------------------------------------------------------------------------

// loc returns the register or spill slot of a temporary accessed with the size
// of its type.
func (fg *funcGen) loc(temp *ir.Temp) Operand {
	iv := fg.alloc.Lookup(temp)
	if iv == nil {
		report.ReportICE("temporary %s of `%s` has no live interval", temp.Repr(), fg.fn.Name)
	}

	size := temp.Type().Size()
	if iv.Spilled() {
		return MemOp{Base: RBP, Disp: -fg.frame.spillOffsets[temp.ID], Size: size}
	}

	return RegOp{iv.Reg, size}
}

// resized returns a register or memory operand accessed with another size.
func resized(op Operand, size int) Operand {
	switch v := op.(type) {
	case RegOp:
		return RegOp{v.Reg, size}
	case MemOp:
		return v.withSize(size)
	default:
		return op
	}
}

// floatMem returns the rip-relative operand of a floating-point constant.
func (fg *funcGen) floatMem(val float64) MemOp {
	return MemOp{Symbol: fg.g.floatLabel(val), Size: 8}
}

// slotMem returns the memory operand of a variable slot.
func (fg *funcGen) slotMem(slot *ir.SlotInfo, size int) MemOp {
	return MemOp{Base: RBP, Disp: -fg.frame.slotOffsets[slot], Size: size}
}

func fitsInt32(val int64) bool {
	return math.MinInt32 <= val && val <= math.MaxInt32
}

// load moves a value into reg accessed with the given size.
func (fg *funcGen) load(reg Reg, size int, v ir.Value) {
	dst := RegOp{reg, size}

	switch v := v.(type) {
	case *ir.Temp:
		src := fg.loc(v)
		if ro, ok := src.(RegOp); ok && ro.Reg == reg {
			return
		}

		if reg.IsFloat() {
			fg.emit("movsd", dst, src)
		} else {
			fg.emit("mov", dst, resized(src, size))
		}
	case *ir.IntConst:
		fg.emit("mov", dst, ImmOp{v.Val})
	case *ir.FloatConst:
		fg.emit("movsd", dst, fg.floatMem(v.Val))
	case *ir.Slot:
		fg.emit("lea", RegOp{reg, 8}, fg.slotMem(v.Info, 0))
	case *ir.Global:
		fg.emit("lea", RegOp{reg, 8}, MemOp{Symbol: v.Name})
	default:
		report.ReportICE("unknown IR value %s", v.Repr())
	}
}

// valueReg returns a register holding v: the register of v itself if it is a
// temporary in a register or scratch after loading v into it.
func (fg *funcGen) valueReg(v ir.Value, scratch Reg, size int) Reg {
	if temp, ok := v.(*ir.Temp); ok {
		if ro, ok := fg.loc(temp).(RegOp); ok {
			return ro.Reg
		}
	}

	fg.load(scratch, size, v)
	return scratch
}

// source returns an operand for v that can be used as the source of an ALU or
// SSE instruction: a register, a memory location or a 32-bit immediate.  Any
// other value is loaded into scratch.
func (fg *funcGen) source(v ir.Value, size int, scratch Reg) Operand {
	switch v := v.(type) {
	case *ir.Temp:
		return resized(fg.loc(v), size)
	case *ir.IntConst:
		if fitsInt32(v.Val) {
			return ImmOp{v.Val}
		}
	case *ir.FloatConst:
		return fg.floatMem(v.Val)
	}

	fg.load(scratch, size, v)
	return RegOp{scratch, size}
}

// regSource is source but never returns a memory operand.
func (fg *funcGen) regSource(v ir.Value, size int, scratch Reg) Operand {
	src := fg.source(v, size, scratch)
	if _, ok := src.(MemOp); ok {
		fg.load(scratch, size, v)
		return RegOp{scratch, size}
	}

	return src
}

// workReg returns the register a result should be computed in: the register
// of dest if it has one or scratch otherwise.  The operands of an instruction
// are live at it so they never share the register of its destination.
func (fg *funcGen) workReg(dest *ir.Temp, scratch Reg) Reg {
	if ro, ok := fg.loc(dest).(RegOp); ok {
		return ro.Reg
	}

	return scratch
}

// storeReg moves the value in reg into the location of dest.
func (fg *funcGen) storeReg(dest *ir.Temp, reg Reg) {
	dst := fg.loc(dest)
	if ro, ok := dst.(RegOp); ok && ro.Reg == reg {
		return
	}

	if reg.IsFloat() {
		fg.emit("movsd", dst, RegOp{reg, 8})
	} else {
		fg.emit("mov", dst, RegOp{reg, dest.Type().Size()})
	}
}

// move copies a value into a temporary.
func (fg *funcGen) move(dest *ir.Temp, v ir.Value) {
	dst := fg.loc(dest)
	if ro, ok := dst.(RegOp); ok {
		fg.load(ro.Reg, ro.Size, v)
		return
	}

	if dest.Type().IsFloat() {
		fg.emit("movsd", dst, RegOp{fg.valueReg(v, XMM0, 8), 8})
	} else {
		fg.emit("mov", dst, fg.regSource(v, dest.Type().Size(), RAX))
	}
}

// address returns the memory operand addressed by a pointer value.
func (fg *funcGen) address(ptr ir.Value, size int) MemOp {
	switch v := ptr.(type) {
	case *ir.Slot:
		return fg.slotMem(v.Info, size)
	case *ir.Global:
		return MemOp{Symbol: v.Name, Size: size}
	default:
		return MemOp{Base: fg.valueReg(ptr, RAX, 8), Size: size}
	}
}

// -----------------------------------------------------------------------------

func (fg *funcGen) genLoad(instr *ir.Instruction) {
	size := instr.TypeSpec.Size()
	addr := fg.address(instr.Operands[0], size)

	scratch := RCX
	op := "mov"
	if instr.TypeSpec.IsFloat() {
		scratch = XMM0
		op = "movsd"
	}

	work := fg.workReg(instr.Dest, scratch)
	fg.emit(op, RegOp{work, size}, addr)
	fg.storeReg(instr.Dest, work)
}

func (fg *funcGen) genStore(instr *ir.Instruction) {
	size := instr.TypeSpec.Size()
	addr := fg.address(instr.Operands[0], size)

	if instr.TypeSpec.IsFloat() {
		fg.emit("movsd", addr, RegOp{fg.valueReg(instr.Operands[1], XMM0, 8), 8})
	} else {
		fg.emit("mov", addr, fg.regSource(instr.Operands[1], size, RCX))
	}
}

var intArithOps = map[int]string{
	ir.OpAdd: "add",
	ir.OpSub: "sub",
	ir.OpMul: "imul",
	ir.OpAnd: "and",
	ir.OpOr:  "or",
	ir.OpXor: "xor",
	ir.OpShl: "shl",
	ir.OpShr: "sar",
}

func (fg *funcGen) genIntArith(instr *ir.Instruction) {
	size := instr.TypeSpec.Size()
	lhs, rhs := instr.Operands[0], instr.Operands[1]

	switch instr.OpCode {
	case ir.OpDiv, ir.OpRem:
		fg.load(RAX, size, lhs)
		if size == 8 {
			fg.emit("cqo")
		} else {
			fg.emit("cdq")
		}

		var divisor Operand
		if temp, ok := rhs.(*ir.Temp); ok {
			divisor = resized(fg.loc(temp), size)
		} else {
			fg.load(RCX, size, rhs)
			divisor = RegOp{RCX, size}
		}

		fg.emit("idiv", divisor)

		if instr.OpCode == ir.OpDiv {
			fg.storeReg(instr.Dest, RAX)
		} else {
			fg.storeReg(instr.Dest, RDX)
		}
	case ir.OpShl, ir.OpShr:
		work := fg.workReg(instr.Dest, RAX)
		fg.load(work, size, lhs)

		if c, ok := rhs.(*ir.IntConst); ok {
			fg.emit(intArithOps[instr.OpCode], RegOp{work, size}, ImmOp{c.Val & int64(size*8-1)})
		} else {
			fg.load(RCX, size, rhs)
			fg.emit(intArithOps[instr.OpCode], RegOp{work, size}, RegOp{RCX, 1})
		}

		fg.storeReg(instr.Dest, work)
	default:
		work := fg.workReg(instr.Dest, RAX)
		fg.load(work, size, lhs)
		fg.emit(intArithOps[instr.OpCode], RegOp{work, size}, fg.source(rhs, size, RCX))
		fg.storeReg(instr.Dest, work)
	}
}

var floatArithOps = map[int]string{
	ir.OpAdd: "addsd",
	ir.OpSub: "subsd",
	ir.OpMul: "mulsd",
	ir.OpDiv: "divsd",
}

func (fg *funcGen) genFloatArith(instr *ir.Instruction) {
	op, ok := floatArithOps[instr.OpCode]
	if !ok {
		panic(report.Raise(report.KindCodegen, nil, "no floating-point form of `%s` in function `%s`", instr.Repr(), fg.fn.Name))
	}

	work := fg.workReg(instr.Dest, XMM0)
	fg.load(work, 8, instr.Operands[0])
	fg.emit(op, RegOp{work, 8}, fg.source(instr.Operands[1], 8, XMM1))
	fg.storeReg(instr.Dest, work)
}

var intSetOps = map[int]string{
	ir.OpEq: "sete",
	ir.OpNe: "setne",
	ir.OpLt: "setl",
	ir.OpLe: "setle",
	ir.OpGt: "setg",
	ir.OpGe: "setge",
}

func (fg *funcGen) genIntCompare(instr *ir.Instruction) {
	size := instr.TypeSpec.Size()

	lhs := fg.valueReg(instr.Operands[0], RAX, size)
	fg.emit("cmp", RegOp{lhs, size}, fg.source(instr.Operands[1], size, RCX))

	work := fg.workReg(instr.Dest, RAX)
	fg.emit(intSetOps[instr.OpCode], RegOp{work, 1})
	fg.emit("movzx", RegOp{work, 4}, RegOp{work, 1})
	fg.storeReg(instr.Dest, work)
}

// genFloatCompare compares with ucomisd which reports an unordered result
// through the parity flag: every comparison involving a NaN is false except
// `ne`.  `lt` and `le` swap their operands to use the unsigned above
// conditions which are false when unordered.
func (fg *funcGen) genFloatCompare(instr *ir.Instruction) {
	a, b := instr.Operands[0], instr.Operands[1]

	setOp := ""
	switch instr.OpCode {
	case ir.OpLt:
		a, b = b, a
		setOp = "seta"
	case ir.OpLe:
		a, b = b, a
		setOp = "setae"
	case ir.OpGt:
		setOp = "seta"
	case ir.OpGe:
		setOp = "setae"
	}

	fg.emit("ucomisd", RegOp{fg.valueReg(a, XMM0, 8), 8}, fg.source(b, 8, XMM1))

	work := fg.workReg(instr.Dest, RAX)
	result := RegOp{work, 1}

	switch instr.OpCode {
	case ir.OpEq:
		fg.emit("sete", result)
		fg.emit("setnp", RegOp{RCX, 1})
		fg.emit("and", result, RegOp{RCX, 1})
	case ir.OpNe:
		fg.emit("setne", result)
		fg.emit("setp", RegOp{RCX, 1})
		fg.emit("or", result, RegOp{RCX, 1})
	default:
		fg.emit(setOp, result)
	}

	fg.emit("movzx", RegOp{work, 4}, result)
	fg.storeReg(instr.Dest, work)
}

func (fg *funcGen) genUnary(instr *ir.Instruction) {
	operand := instr.Operands[0]

	if instr.TypeSpec.IsFloat() {
		if instr.OpCode != ir.OpNeg {
			panic(report.Raise(report.KindCodegen, nil, "no floating-point form of `%s` in function `%s`", instr.Repr(), fg.fn.Name))
		}

		// Flip the sign bit through a general purpose register.
		switch v := operand.(type) {
		case *ir.Temp:
			src := fg.loc(v)
			if ro, ok := src.(RegOp); ok {
				fg.emit("movq", RegOp{RAX, 8}, ro)
			} else {
				fg.emit("mov", RegOp{RAX, 8}, src)
			}
		case *ir.FloatConst:
			fg.emit("mov", RegOp{RAX, 8}, ImmOp{int64(math.Float64bits(v.Val))})
		}

		fg.emit("btc", RegOp{RAX, 8}, ImmOp{63})

		dst := fg.loc(instr.Dest)
		if ro, ok := dst.(RegOp); ok {
			fg.emit("movq", ro, RegOp{RAX, 8})
		} else {
			fg.emit("mov", dst, RegOp{RAX, 8})
		}

		return
	}

	size := instr.TypeSpec.Size()
	work := fg.workReg(instr.Dest, RAX)
	fg.load(work, size, operand)

	if instr.OpCode == ir.OpNeg {
		fg.emit("neg", RegOp{work, size})
	} else {
		fg.emit("not", RegOp{work, size})
	}

	fg.storeReg(instr.Dest, work)
}

func (fg *funcGen) genConversion(instr *ir.Instruction) {
	operand := instr.Operands[0]
	fromSize := operand.Type().Size()
	toSize := instr.TypeSpec.Size()

	switch instr.OpCode {
	case ir.OpSext, ir.OpZext:
		work := fg.workReg(instr.Dest, RAX)
		src := fg.regSourceNoImm(operand, fromSize, RCX)

		switch {
		case instr.OpCode == ir.OpSext && fromSize == 4:
			fg.emit("movsxd", RegOp{work, 8}, src)
		case instr.OpCode == ir.OpSext:
			fg.emit("movsx", RegOp{work, toSize}, src)
		case fromSize == 4:
			// Writing a 32-bit register clears the upper half.
			fg.emit("mov", RegOp{work, 4}, src)
		default:
			fg.emit("movzx", RegOp{work, 4}, src)
		}

		fg.storeReg(instr.Dest, work)
	case ir.OpTrunc:
		work := fg.workReg(instr.Dest, RAX)
		fg.load(work, toSize, operand)
		fg.storeReg(instr.Dest, work)
	case ir.OpItof:
		work := fg.workReg(instr.Dest, XMM0)
		fg.emit("cvtsi2sd", RegOp{work, 8}, fg.regSourceNoImm(operand, fromSize, RAX))
		fg.storeReg(instr.Dest, work)
	case ir.OpFtoi:
		work := fg.workReg(instr.Dest, RAX)
		fg.emit("cvttsd2si", RegOp{work, toSize}, fg.source(operand, 8, XMM0))
		fg.storeReg(instr.Dest, work)
	}
}

// regSourceNoImm is source for instructions that have no immediate form.
func (fg *funcGen) regSourceNoImm(v ir.Value, size int, scratch Reg) Operand {
	if temp, ok := v.(*ir.Temp); ok {
		return resized(fg.loc(temp), size)
	}

	fg.load(scratch, size, v)
	return RegOp{scratch, size}
}

// -----------------------------------------------------------------------------

// genParam moves an incoming parameter into its temporary.  Stack parameters
// sit above the return address and the saved frame pointer.
func (fg *funcGen) genParam(instr *ir.Instruction) {
	loc := fg.paramLocs[instr.Index]
	size := instr.TypeSpec.Size()
	isFloat := instr.TypeSpec.IsFloat()

	if loc.reg != NoReg {
		fg.storeReg(instr.Dest, loc.reg)
		return
	}

	mem := MemOp{Base: RBP, Disp: 16 + 8*loc.stackIndex, Size: size}

	scratch, op := RAX, "mov"
	if isFloat {
		scratch, op = XMM0, "movsd"
	}

	work := fg.workReg(instr.Dest, scratch)
	fg.emit(op, RegOp{work, size}, mem)
	fg.storeReg(instr.Dest, work)
}

// beginCall classifies the arguments of the call whose argument sequence
// starts at index ndx of block and reserves alignment padding for its stack
// arguments.
func (fg *funcGen) beginCall(block *ir.Block, ndx int) {
	var call *ir.Instruction
	for _, instr := range block.Instrs[ndx:] {
		if instr.OpCode == ir.OpCall {
			call = instr
			break
		}
	}

	if call == nil {
		report.ReportICE("argument without a call in `%s`", fg.fn.Name)
	}

	typs := make([]ir.Type, call.Index)
	for _, instr := range block.Instrs[ndx:] {
		if instr == call {
			break
		}

		typs[instr.Index] = instr.TypeSpec
	}

	locs, stackWords, nvec := classifyArgs(typs)
	setup := &callSetup{locs: locs, stackBytes: 8 * stackWords, nvec: nvec}

	// The stack must be 16 byte aligned at the call.
	if stackWords%2 == 1 {
		setup.stackBytes += 8
		fg.emit("sub", RegOp{RSP, 8}, ImmOp{8})
	}

	fg.call = setup
}

// genArg places an argument.  Arguments are placed from last to first so
// stack arguments are pushed in the right order.
func (fg *funcGen) genArg(instr *ir.Instruction) {
	loc := fg.call.locs[instr.Index]
	v := instr.Operands[0]

	if loc.reg != NoReg {
		if instr.TypeSpec.IsFloat() {
			fg.load(loc.reg, 8, v)
		} else {
			fg.load(loc.reg, instr.TypeSpec.Size(), v)
		}

		return
	}

	switch v := v.(type) {
	case *ir.Temp:
		switch src := fg.loc(v).(type) {
		case RegOp:
			if src.Reg.IsFloat() {
				fg.emit("sub", RegOp{RSP, 8}, ImmOp{8})
				fg.emit("movsd", MemOp{Base: RSP, Size: 8}, src)
			} else {
				fg.emit("push", RegOp{src.Reg, 8})
			}
		case MemOp:
			fg.emit("push", src.withSize(8))
		}
	case *ir.FloatConst:
		fg.emit("push", fg.floatMem(v.Val))
	case *ir.IntConst:
		if fitsInt32(v.Val) {
			fg.emit("push", ImmOp{v.Val})
			return
		}

		fg.load(RAX, 8, v)
		fg.emit("push", RegOp{RAX, 8})
	default:
		fg.load(RAX, 8, v)
		fg.emit("push", RegOp{RAX, 8})
	}
}

// genCall emits the call itself.  al holds the number of SSE registers used
// for variadic callees.
func (fg *funcGen) genCall(instr *ir.Instruction) {
	fg.emit("mov", RegOp{RAX, 4}, ImmOp{int64(fg.call.nvec)})

	target := instr.Label
	if _, ok := fg.g.defined[target]; !ok {
		target += "@PLT"
	}

	fg.emit("call", LabelOp{target})

	if fg.call.stackBytes > 0 {
		fg.emit("add", RegOp{RSP, 8}, ImmOp{int64(fg.call.stackBytes)})
	}

	fg.call = nil
}

var inverseJumps = map[string]string{
	"jne": "je",
	"je":  "jne",
}

func (fg *funcGen) genBranch(instr *ir.Instruction, next string) {
	then, els := instr.Label, instr.ElseLabel

	var jump string
	switch v := instr.Operands[0].(type) {
	case *ir.IntConst:
		target := then
		if v.Val == 0 {
			target = els
		}

		if target != next {
			fg.emit("jmp", LabelOp{fg.blockLabel(target)})
		}

		return
	case *ir.Temp:
		switch loc := fg.loc(v).(type) {
		case RegOp:
			fg.emit("test", loc, loc)
		default:
			fg.emit("cmp", loc, ImmOp{0})
		}

		jump = "jne"
	default:
		// Addresses are never null.
		if then != next {
			fg.emit("jmp", LabelOp{fg.blockLabel(then)})
		}

		return
	}

	switch {
	case then == next:
		fg.emit(inverseJumps[jump], LabelOp{fg.blockLabel(els)})
	case els == next:
		fg.emit(jump, LabelOp{fg.blockLabel(then)})
	default:
		fg.emit(jump, LabelOp{fg.blockLabel(then)})
		fg.emit("jmp", LabelOp{fg.blockLabel(els)})
	}
}
