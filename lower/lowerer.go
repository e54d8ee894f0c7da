package lower

import (
	"fmt"
	"minicc/ast"
	"minicc/common"
	"minicc/ir"
	"minicc/report"
	"minicc/types"
)

// Lowerer is the construct responsible for converting the typed AST into IR.
// Lowering is total over type checked programs: any AST it cannot lower is an
// internal compiler error.
type Lowerer struct {
	prog *ir.Program

	// The function being lowered and the block instructions are appended to.
	fn    *ir.Function
	block *ir.Block

	// The frame slots of the local variables and parameters of fn.
	slots map[*common.Symbol]*ir.SlotInfo

	// The string literals already placed in read-only data by contents.
	strings map[string]*ir.StringLit

	// The stacks of labels that `break` and `continue` jump to.
	breakLabels, continueLabels []string

	// blockCounter is a counter used to make block labels unique.
	blockCounter int

	// The number of hidden slots created in fn.
	hiddenCounter int

	// The source line of the statement being lowered.
	line int
}

// Lower converts a type checked program into IR.
func Lower(prog *ast.Program) *ir.Program {
	l := &Lowerer{
		prog:    &ir.Program{},
		strings: make(map[string]*ir.StringLit),
	}

	for _, decl := range prog.Decls {
		switch v := decl.(type) {
		case *ast.FuncDecl:
			if v.Body != nil {
				l.lowerFuncDecl(v)
			}
		case *ast.VarDecl:
			l.lowerGlobalVar(v)
		default:
			report.ReportICE("unexpected top level declaration %T", decl)
		}
	}

	return l.prog
}

// -----------------------------------------------------------------------------

// lowerGlobalVar lowers a global variable definition.
func (l *Lowerer) lowerGlobalVar(vd *ast.VarDecl) {
	global := &ir.GlobalVar{
		Name:  vd.Sym.Label,
		Size:  vd.Type.Size(),
		Align: vd.Type.Align(),
	}

	if _, ok := vd.Type.(*types.ArrayType); !ok {
		global.Type = ir.ConvType(vd.Type)
	}

	if vd.Init != nil {
		cv, ok := ast.EvalConst(vd.Init)
		if !ok {
			report.ReportICE("initializer of global `%s` is not constant", vd.Name)
		}

		switch {
		case cv.IsString:
			global.Init = l.stringGlobal(cv.Str)
		case global.Type.IsFloat():
			global.Init = ir.NewFloatConst(cv.Float)
		default:
			global.Init = ir.NewIntConst(cv.Int, global.Type)
		}
	}

	l.prog.Globals = append(l.prog.Globals, global)
}

// lowerFuncDecl lowers a function definition.
func (l *Lowerer) lowerFuncDecl(fd *ast.FuncDecl) {
	l.fn = &ir.Function{Name: fd.Sym.Label}
	l.slots = make(map[*common.Symbol]*ir.SlotInfo)
	l.blockCounter = 0
	l.hiddenCounter = 0
	l.block = nil
	l.line = fd.NameSpan.StartLine + 1

	for _, param := range fd.Params {
		l.fn.Params = append(l.fn.Params, ir.ConvType(param.Type))
	}

	retType := fd.Signature.ReturnType
	if !types.IsVoid(retType) {
		irRetType := ir.ConvType(retType)
		l.fn.ReturnType = &irRetType
	}

	l.startBlock("entry")

	// All parameters are read before anything else happens so their incoming
	// registers are never clobbered.
	paramValues := make([]ir.Value, len(fd.Params))
	for i, param := range fd.Params {
		paramValues[i] = l.emitParam(i, ir.ConvType(param.Type))
	}

	for i, param := range fd.Params {
		l.emitStore(l.declareLocal(param.Sym, param.Type), paramValues[i])
	}

	l.lowerBlock(fd.Body)

	// Falling off the end of a function returns.  Only `main` can do this with
	// a non-void return type: it returns zero.
	if !l.block.Terminated() {
		if l.fn.ReturnType == nil {
			l.emitRet(nil)
		} else {
			l.emitRet(zeroValue(*l.fn.ReturnType))
		}
	}

	l.fn.Blocks = pruneUnreachable(l.fn.Blocks)
	l.prog.Funcs = append(l.prog.Funcs, l.fn)
}

// pruneUnreachable removes all blocks that cannot be reached from the entry
// block.  The order of the remaining blocks is preserved.
func pruneUnreachable(blocks []*ir.Block) []*ir.Block {
	byLabel := make(map[string]*ir.Block)
	for _, block := range blocks {
		byLabel[block.Label] = block
	}

	reachable := map[*ir.Block]bool{blocks[0]: true}
	worklist := []*ir.Block{blocks[0]}
	for len(worklist) > 0 {
		block := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		for _, succ := range block.Successors() {
			if succBlock := byLabel[succ]; !reachable[succBlock] {
				reachable[succBlock] = true
				worklist = append(worklist, succBlock)
			}
		}
	}

	var pruned []*ir.Block
	for _, block := range blocks {
		if reachable[block] {
			pruned = append(pruned, block)
		}
	}

	return pruned
}

// -----------------------------------------------------------------------------

// declareLocal creates the frame slot of a local variable or parameter.
func (l *Lowerer) declareLocal(sym *common.Symbol, typ types.Type) ir.Value {
	info := &ir.SlotInfo{Name: sym.Label, Size: typ.Size(), Align: typ.Align()}
	l.fn.Slots = append(l.fn.Slots, info)
	l.slots[sym] = info

	return slotValue(info)
}

// newHiddenSlot creates a frame slot for a value that has no variable.
func (l *Lowerer) newHiddenSlot(typ ir.Type) ir.Value {
	l.hiddenCounter++

	info := &ir.SlotInfo{Name: fmt.Sprintf(".tmp%d", l.hiddenCounter), Size: typ.Size(), Align: typ.Size()}
	l.fn.Slots = append(l.fn.Slots, info)

	return slotValue(info)
}

func slotValue(info *ir.SlotInfo) ir.Value {
	return &ir.Slot{ValueBase: ir.NewValueBase(ir.I64), Info: info}
}

// stringGlobal returns the address of a string literal.  Identical literals
// share storage.
func (l *Lowerer) stringGlobal(value string) ir.Value {
	str, ok := l.strings[value]
	if !ok {
		str = &ir.StringLit{Label: fmt.Sprintf(".LC%d", len(l.prog.Strings)), Value: value}
		l.prog.Strings = append(l.prog.Strings, str)
		l.strings[value] = str
	}

	return ir.NewGlobal(str.Label)
}

// -----------------------------------------------------------------------------

// newLabel returns a new unique block label.
func (l *Lowerer) newLabel(kind string) string {
	l.blockCounter++
	return fmt.Sprintf("%s%d", kind, l.blockCounter)
}

// startBlock starts a new block with the given label.  If the current block
// does not end with a terminator, it falls through to the new block.
func (l *Lowerer) startBlock(label string) {
	if l.block != nil && !l.block.Terminated() {
		l.emitJmp(label)
	}

	l.block = &ir.Block{Label: label}
	l.fn.Blocks = append(l.fn.Blocks, l.block)
}

// appendInstr appends an instruction to the current block.  Instructions that
// follow a terminator are unreachable: they are placed in a new block which is
// pruned once the function is lowered.
func (l *Lowerer) appendInstr(instr *ir.Instruction) {
	if l.block.Terminated() {
		l.block = &ir.Block{Label: l.newLabel("dead")}
		l.fn.Blocks = append(l.fn.Blocks, l.block)
	}

	instr.Line = l.line
	l.block.Instrs = append(l.block.Instrs, instr)
}

// newTemp creates a new temporary of the given type.
func (l *Lowerer) newTemp(typ ir.Type) *ir.Temp {
	temp := ir.NewTemp(l.fn.NumTemps, typ)
	l.fn.NumTemps++
	return temp
}

// emitValue emits an instruction defining a new temporary of type typ.
func (l *Lowerer) emitValue(opcode int, typ ir.Type, operands ...ir.Value) *ir.Temp {
	dest := l.newTemp(typ)
	l.appendInstr(&ir.Instruction{OpCode: opcode, Dest: dest, TypeSpec: typ, Operands: operands})
	return dest
}

func (l *Lowerer) emitParam(index int, typ ir.Type) *ir.Temp {
	dest := l.newTemp(typ)
	l.appendInstr(&ir.Instruction{OpCode: ir.OpParam, Dest: dest, TypeSpec: typ, Index: index})
	return dest
}

func (l *Lowerer) emitLoad(typ ir.Type, addr ir.Value) *ir.Temp {
	return l.emitValue(ir.OpLoad, typ, addr)
}

func (l *Lowerer) emitStore(addr, value ir.Value) {
	l.appendInstr(&ir.Instruction{OpCode: ir.OpStore, TypeSpec: value.Type(), Operands: []ir.Value{addr, value}})
}

func (l *Lowerer) emitJmp(label string) {
	if !l.block.Terminated() {
		l.appendInstr(&ir.Instruction{OpCode: ir.OpJmp, Label: label})
	}
}

func (l *Lowerer) emitBr(cond ir.Value, thenLabel, elseLabel string) {
	if !l.block.Terminated() {
		l.appendInstr(&ir.Instruction{
			OpCode:    ir.OpBr,
			Operands:  []ir.Value{cond},
			Label:     thenLabel,
			ElseLabel: elseLabel,
		})
	}
}

func (l *Lowerer) emitRet(value ir.Value) {
	if value == nil {
		l.appendInstr(&ir.Instruction{OpCode: ir.OpRet})
	} else {
		l.appendInstr(&ir.Instruction{OpCode: ir.OpRet, TypeSpec: value.Type(), Operands: []ir.Value{value}})
	}
}
