package generate

import (
	"fmt"
	"minicc/ast"
	"minicc/common"
	"minicc/report"
	"minicc/types"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// TargetTriple is the target triple recorded in generated modules.
const TargetTriple = "x86_64-pc-linux-gnu"

// Generator is responsible for converting the typed AST of a translation unit
// directly into an LLVM module.  It is the alternate backend: it replaces IR
// lowering, code generation and assembly emission, leaving the translation of
// the module into assembly to an external tool.
type Generator struct {
	// mod is the LLVM module being generated.
	mod *ir.Module

	// funcs maps function symbols to their LLVM functions.
	funcs map[*common.Symbol]*ir.Func

	// vars maps variable symbols to the pointer holding their value: either
	// an alloca or a global.
	vars map[*common.Symbol]value.Value

	// strings maps string literal contents to the address of their interned
	// global.
	strings map[string]constant.Constant

	// enclosingFunc is the function whose body is being generated.
	enclosingFunc *ir.Func

	// varBlock is the entry block of the enclosing function.  It holds all the
	// allocas and branches to the first code block.
	varBlock *ir.Block

	// block is the block instructions are being appended to.
	block *ir.Block

	// The stacks of blocks that `break` and `continue` jump to.
	breakBlocks, continueBlocks []*ir.Block
}

// Generate converts a type checked program into an LLVM module.  sourceName
// is recorded as the module's source file name.
func Generate(prog *ast.Program, sourceName string) (mod *ir.Module, err error) {
	defer report.CatchErrors(&err)

	g := &Generator{
		mod:     ir.NewModule(),
		funcs:   make(map[*common.Symbol]*ir.Func),
		vars:    make(map[*common.Symbol]value.Value),
		strings: make(map[string]constant.Constant),
	}
	g.mod.SourceFilename = sourceName
	g.mod.TargetTriple = TargetTriple

	// Declare every function first so calls can refer to functions defined
	// later in the unit.
	for _, decl := range prog.Decls {
		if fd, ok := decl.(*ast.FuncDecl); ok {
			g.declareFunc(fd)
		}
	}

	for _, decl := range prog.Decls {
		switch v := decl.(type) {
		case *ast.FuncDecl:
			if v.Body != nil {
				g.genFuncBody(v)
			}
		case *ast.VarDecl:
			g.genGlobalVar(v)
		default:
			report.ReportICE("unexpected top level declaration %T", decl)
		}
	}

	mod = g.mod
	return
}

// -----------------------------------------------------------------------------

// declareFunc creates the LLVM function for a function symbol if it does not
// already exist.
func (g *Generator) declareFunc(fd *ast.FuncDecl) {
	if _, ok := g.funcs[fd.Sym]; ok {
		return
	}

	params := make([]*ir.Param, len(fd.Params))
	for i, param := range fd.Params {
		params[i] = ir.NewParam(param.Name, g.convType(param.Type))
	}

	llFunc := g.mod.NewFunc(fd.Sym.Label, g.convType(fd.Signature.ReturnType), params...)
	llFunc.Linkage = enum.LinkageExternal
	llFunc.Sig.Variadic = fd.Signature.Variadic
	g.funcs[fd.Sym] = llFunc
}

// genFuncBody generates the body of a function definition.
func (g *Generator) genFuncBody(fd *ast.FuncDecl) {
	llFunc := g.funcs[fd.Sym]
	g.enclosingFunc = llFunc

	// Add the entry/variable block to the function.
	g.varBlock = llFunc.NewBlock("entry")

	// Spill all the parameters into allocas so they can be assigned.
	g.block = g.varBlock
	for i, param := range fd.Params {
		llParam := llFunc.Params[i]
		llParam.SetName(param.Name)

		paramVar := g.newAlloca(param.Sym)
		g.block.NewStore(llParam, paramVar)
	}

	// Generate the function body itself.
	firstBlock := g.appendBlock("body")
	g.block = firstBlock
	g.genBlock(fd.Body)

	// Falling off the end of a function returns zero.
	if g.block.Term == nil {
		if types.IsVoid(fd.Signature.ReturnType) {
			g.block.NewRet(nil)
		} else {
			g.block.NewRet(g.zeroValue(fd.Signature.ReturnType))
		}
	}

	// Build a terminator for the var block to the first code block.
	g.varBlock.NewBr(firstBlock)
}

// genGlobalVar generates a global variable definition.
func (g *Generator) genGlobalVar(vd *ast.VarDecl) {
	llType := g.convType(vd.Type)

	var init constant.Constant
	if vd.Init == nil {
		init = constant.NewZeroInitializer(llType)
	} else {
		cv, ok := ast.EvalConst(vd.Init)
		if !ok {
			report.ReportICE("initializer of global `%s` is not constant", vd.Name)
		}

		init = g.constValue(cv, vd.Type)
	}

	global := g.mod.NewGlobalDef(vd.Sym.Label, init)
	global.Align = ir.Align(vd.Type.Align())
	g.vars[vd.Sym] = global
}

// constValue converts an evaluated constant into an LLVM constant of the type
// typ.
func (g *Generator) constValue(cv ast.ConstValue, typ types.Type) constant.Constant {
	switch {
	case cv.IsString:
		return g.stringPtr(cv.Str)
	case types.IsFloating(typ):
		return constant.NewFloat(lltypes.Double, cv.Float)
	case types.IsPointer(typ):
		ptrType := g.convType(typ).(*lltypes.PointerType)
		if cv.Int == 0 {
			return constant.NewNull(ptrType)
		}

		return constant.NewIntToPtr(constant.NewInt(lltypes.I64, cv.Int), ptrType)
	default:
		return constant.NewInt(g.convType(typ).(*lltypes.IntType), cv.Int)
	}
}

// stringPtr returns a pointer to the first character of an interned string
// literal.
func (g *Generator) stringPtr(s string) constant.Constant {
	if ptr, ok := g.strings[s]; ok {
		return ptr
	}

	data := constant.NewCharArrayFromString(s + "\x00")
	global := g.mod.NewGlobalDef(fmt.Sprintf(".str.%d", len(g.strings)), data)
	global.Immutable = true
	global.Linkage = enum.LinkagePrivate

	zero := constant.NewInt(lltypes.I64, 0)
	ptr := constant.NewGetElementPtr(data.Typ, global, zero, zero)
	g.strings[s] = ptr
	return ptr
}

// -----------------------------------------------------------------------------

// appendBlock adds a new basic block to the current function.  It does *not*
// set the current block to this new block.
func (g *Generator) appendBlock(kind string) *ir.Block {
	return g.enclosingFunc.NewBlock(fmt.Sprintf("%s%d", kind, len(g.enclosingFunc.Blocks)))
}

// newAlloca allocates stack space for a local variable in the var block.
func (g *Generator) newAlloca(sym *common.Symbol) *ir.InstAlloca {
	alloca := g.varBlock.NewAlloca(g.convType(sym.Type))
	alloca.SetName(sym.Label)
	alloca.Align = ir.Align(sym.Type.Align())
	g.vars[sym] = alloca
	return alloca
}

// zeroValue returns the zero value of a scalar type.
func (g *Generator) zeroValue(typ types.Type) value.Value {
	switch llType := g.convType(typ).(type) {
	case *lltypes.IntType:
		return constant.NewInt(llType, 0)
	case *lltypes.FloatType:
		return constant.NewFloat(llType, 0)
	case *lltypes.PointerType:
		return constant.NewNull(llType)
	}

	report.ReportICE("type %s has no zero value", typ.Repr())
	return nil
}
