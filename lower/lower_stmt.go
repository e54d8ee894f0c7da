package lower

import (
	"minicc/ast"
	"minicc/ir"
	"minicc/report"
)

// lowerBlock lowers a block statement.
func (l *Lowerer) lowerBlock(block *ast.Block) {
	for _, stmt := range block.Stmts {
		l.lowerStmt(stmt)
	}
}

// lowerStmt lowers a statement.
func (l *Lowerer) lowerStmt(stmt ast.ASTNode) {
	l.line = stmt.Span().StartLine + 1

	switch v := stmt.(type) {
	case *ast.Block:
		l.lowerBlock(v)
	case *ast.VarDecl:
		slot := l.declareLocal(v.Sym, v.Type)
		if v.Init != nil {
			l.emitStore(slot, l.lowerExpr(v.Init))
		}
	case *ast.IfStmt:
		l.lowerIfStmt(v)
	case *ast.WhileLoop:
		condLabel, bodyLabel, endLabel := l.newLabel("cond"), l.newLabel("body"), l.newLabel("endloop")

		l.startBlock(condLabel)
		l.lowerCondBranch(v.Cond, bodyLabel, endLabel)

		l.startBlock(bodyLabel)
		l.lowerLoopBody(v.Body, endLabel, condLabel)
		l.emitJmp(condLabel)

		l.startBlock(endLabel)
	case *ast.DoWhileLoop:
		bodyLabel, condLabel, endLabel := l.newLabel("body"), l.newLabel("cond"), l.newLabel("endloop")

		l.startBlock(bodyLabel)
		l.lowerLoopBody(v.Body, endLabel, condLabel)

		l.startBlock(condLabel)
		l.line = v.Cond.Span().StartLine + 1
		l.lowerCondBranch(v.Cond, bodyLabel, endLabel)

		l.startBlock(endLabel)
	case *ast.ForLoop:
		l.lowerForLoop(v)
	case *ast.ReturnStmt:
		if v.Value == nil {
			l.emitRet(nil)
		} else {
			l.emitRet(l.lowerExpr(v.Value))
		}
	case *ast.ExprStmt:
		l.lowerExpr(v.Expr)
	case *ast.NullStmt:
	case *ast.KeywordStmt:
		if v.Name == "break" {
			l.emitJmp(l.breakLabels[len(l.breakLabels)-1])
		} else {
			l.emitJmp(l.continueLabels[len(l.continueLabels)-1])
		}
	default:
		report.ReportICE("lowering not implemented for statement %T", stmt)
	}
}

// lowerIfStmt lowers an if statement.
func (l *Lowerer) lowerIfStmt(ifStmt *ast.IfStmt) {
	thenLabel, endLabel := l.newLabel("then"), l.newLabel("endif")

	elseLabel := endLabel
	if ifStmt.Else != nil {
		elseLabel = l.newLabel("else")
	}

	l.lowerCondBranch(ifStmt.Cond, thenLabel, elseLabel)

	l.startBlock(thenLabel)
	l.lowerStmt(ifStmt.Then)
	l.emitJmp(endLabel)

	if ifStmt.Else != nil {
		l.startBlock(elseLabel)
		l.lowerStmt(ifStmt.Else)
		l.emitJmp(endLabel)
	}

	l.startBlock(endLabel)
}

// lowerForLoop lowers a for loop.
func (l *Lowerer) lowerForLoop(loop *ast.ForLoop) {
	for _, init := range loop.Init {
		l.lowerStmt(init)
	}

	condLabel, bodyLabel := l.newLabel("cond"), l.newLabel("body")
	postLabel, endLabel := l.newLabel("post"), l.newLabel("endloop")

	l.startBlock(condLabel)
	if loop.Cond == nil {
		l.emitJmp(bodyLabel)
	} else {
		l.line = loop.Cond.Span().StartLine + 1
		l.lowerCondBranch(loop.Cond, bodyLabel, endLabel)
	}

	l.startBlock(bodyLabel)
	l.lowerLoopBody(loop.Body, endLabel, postLabel)

	l.startBlock(postLabel)
	if loop.Post != nil {
		l.line = loop.Post.Span().StartLine + 1
		l.lowerExpr(loop.Post)
	}
	l.emitJmp(condLabel)

	l.startBlock(endLabel)
}

// lowerLoopBody lowers the body of a loop with the given break and continue
// targets.
func (l *Lowerer) lowerLoopBody(body ast.ASTNode, breakLabel, continueLabel string) {
	l.breakLabels = append(l.breakLabels, breakLabel)
	l.continueLabels = append(l.continueLabels, continueLabel)

	l.lowerStmt(body)

	l.breakLabels = l.breakLabels[:len(l.breakLabels)-1]
	l.continueLabels = l.continueLabels[:len(l.continueLabels)-1]
}

// -----------------------------------------------------------------------------

// lowerCondBranch lowers a condition into a branch to thenLabel if it is true
// and to elseLabel otherwise.  The logical operators are lowered into branches
// so that their right operand is only evaluated when needed.
func (l *Lowerer) lowerCondBranch(cond ast.ASTExpr, thenLabel, elseLabel string) {
	switch v := cond.(type) {
	case *ast.BinaryOp:
		switch v.Op.Name {
		case "&&":
			rhsLabel := l.newLabel("and")
			l.lowerCondBranch(v.Lhs, rhsLabel, elseLabel)
			l.startBlock(rhsLabel)
			l.lowerCondBranch(v.Rhs, thenLabel, elseLabel)
			return
		case "||":
			rhsLabel := l.newLabel("or")
			l.lowerCondBranch(v.Lhs, thenLabel, rhsLabel)
			l.startBlock(rhsLabel)
			l.lowerCondBranch(v.Rhs, thenLabel, elseLabel)
			return
		}
	case *ast.UnaryOp:
		if v.Op.Name == "!" {
			l.lowerCondBranch(v.Operand, elseLabel, thenLabel)
			return
		}
	}

	truth := l.lowerTruth(cond)
	if ic, ok := truth.(*ir.IntConst); ok {
		if ic.Val != 0 {
			l.emitJmp(thenLabel)
		} else {
			l.emitJmp(elseLabel)
		}

		return
	}

	l.emitBr(truth, thenLabel, elseLabel)
}

// lowerTruth lowers a scalar expression into an integer value that is nonzero
// exactly when the expression is true.
func (l *Lowerer) lowerTruth(expr ast.ASTExpr) ir.Value {
	value := l.lowerExpr(expr)

	if value.Type().IsFloat() {
		return l.compare(ir.OpNe, value, zeroValue(ir.F64))
	}

	return value
}
