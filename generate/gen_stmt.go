package generate

import (
	"minicc/ast"
	"minicc/report"
	"minicc/syntax"
	"minicc/types"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// genBlock generates a block of statements.
func (g *Generator) genBlock(block *ast.Block) {
	for _, stmt := range block.Stmts {
		g.genStmt(stmt)
	}
}

// genStmt generates a statement.  The language has no labels so statements
// following a terminator are dead code and are skipped.
func (g *Generator) genStmt(stmt ast.ASTNode) {
	if g.block.Term != nil {
		return
	}

	switch v := stmt.(type) {
	case *ast.Block:
		g.genBlock(v)
	case *ast.VarDecl:
		alloca := g.newAlloca(v.Sym)
		if v.Init != nil {
			g.block.NewStore(g.genExpr(v.Init), alloca)
		}
	case *ast.IfStmt:
		g.genIfStmt(v)
	case *ast.WhileLoop:
		g.genWhileLoop(v)
	case *ast.DoWhileLoop:
		g.genDoWhileLoop(v)
	case *ast.ForLoop:
		g.genForLoop(v)
	case *ast.ReturnStmt:
		if v.Value == nil {
			g.block.NewRet(nil)
		} else {
			g.block.NewRet(g.genExpr(v.Value))
		}
	case *ast.ExprStmt:
		g.genExpr(v.Expr)
	case *ast.NullStmt:
	case *ast.KeywordStmt:
		if v.Kind == syntax.TOK_BREAK {
			g.block.NewBr(g.breakBlocks[len(g.breakBlocks)-1])
		} else {
			g.block.NewBr(g.continueBlocks[len(g.continueBlocks)-1])
		}
	default:
		report.ReportICE("statement generation not implemented for %T", stmt)
	}
}

// genIfStmt generates an if statement.
func (g *Generator) genIfStmt(ifStmt *ast.IfStmt) {
	thenBlock := g.appendBlock("then")
	endBlock := g.appendBlock("endif")

	elseBlock := endBlock
	if ifStmt.Else != nil {
		elseBlock = g.appendBlock("else")
	}

	g.block.NewCondBr(g.genCond(ifStmt.Cond), thenBlock, elseBlock)

	g.block = thenBlock
	g.genStmt(ifStmt.Then)
	g.jumpTo(endBlock)

	if ifStmt.Else != nil {
		g.block = elseBlock
		g.genStmt(ifStmt.Else)
		g.jumpTo(endBlock)
	}

	g.block = endBlock
}

// genWhileLoop generates a while loop.
func (g *Generator) genWhileLoop(loop *ast.WhileLoop) {
	condBlock := g.appendBlock("cond")
	bodyBlock := g.appendBlock("loop")
	endBlock := g.appendBlock("endloop")

	g.block.NewBr(condBlock)

	g.block = condBlock
	g.block.NewCondBr(g.genCond(loop.Cond), bodyBlock, endBlock)

	g.block = bodyBlock
	g.genLoopBody(loop.Body, endBlock, condBlock)
	g.jumpTo(condBlock)

	g.block = endBlock
}

// genDoWhileLoop generates a do-while loop.
func (g *Generator) genDoWhileLoop(loop *ast.DoWhileLoop) {
	bodyBlock := g.appendBlock("loop")
	condBlock := g.appendBlock("cond")
	endBlock := g.appendBlock("endloop")

	g.block.NewBr(bodyBlock)

	g.block = bodyBlock
	g.genLoopBody(loop.Body, endBlock, condBlock)
	g.jumpTo(condBlock)

	g.block = condBlock
	g.block.NewCondBr(g.genCond(loop.Cond), bodyBlock, endBlock)

	g.block = endBlock
}

// genForLoop generates a for loop.  A missing condition is always true.
func (g *Generator) genForLoop(loop *ast.ForLoop) {
	for _, init := range loop.Init {
		g.genStmt(init)
	}

	condBlock := g.appendBlock("cond")
	bodyBlock := g.appendBlock("loop")
	postBlock := g.appendBlock("post")
	endBlock := g.appendBlock("endloop")

	g.block.NewBr(condBlock)

	g.block = condBlock
	if loop.Cond == nil {
		g.block.NewBr(bodyBlock)
	} else {
		g.block.NewCondBr(g.genCond(loop.Cond), bodyBlock, endBlock)
	}

	g.block = bodyBlock
	g.genLoopBody(loop.Body, endBlock, postBlock)
	g.jumpTo(postBlock)

	g.block = postBlock
	if loop.Post != nil {
		g.genExpr(loop.Post)
	}
	g.block.NewBr(condBlock)

	g.block = endBlock
}

// genLoopBody generates the body of a loop with the given break and continue
// targets.
func (g *Generator) genLoopBody(body ast.ASTNode, breakBlock, continueBlock *ir.Block) {
	g.breakBlocks = append(g.breakBlocks, breakBlock)
	g.continueBlocks = append(g.continueBlocks, continueBlock)

	g.genStmt(body)

	g.breakBlocks = g.breakBlocks[:len(g.breakBlocks)-1]
	g.continueBlocks = g.continueBlocks[:len(g.continueBlocks)-1]
}

// jumpTo jumps to target if the current block is not already terminated.
func (g *Generator) jumpTo(target *ir.Block) {
	if g.block.Term == nil {
		g.block.NewBr(target)
	}
}

// -----------------------------------------------------------------------------

// genCond generates a condition as an `i1`.
func (g *Generator) genCond(expr ast.ASTExpr) value.Value {
	return g.genTruth(g.genExpr(expr), expr.Type())
}

// genTruth compares a scalar value against zero.
func (g *Generator) genTruth(val value.Value, typ types.Type) value.Value {
	switch llType := val.Type().(type) {
	case *lltypes.FloatType:
		return g.block.NewFCmp(enum.FPredUNE, val, constant.NewFloat(llType, 0))
	case *lltypes.PointerType:
		return g.block.NewICmp(enum.IPredNE, val, constant.NewNull(llType))
	case *lltypes.IntType:
		return g.block.NewICmp(enum.IPredNE, val, constant.NewInt(llType, 0))
	}

	report.ReportICE("condition of type %s is not scalar", typ.Repr())
	return nil
}
