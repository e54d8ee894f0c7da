package resolve

import (
	"fmt"
	"minicc/ast"
	"minicc/common"
	"minicc/report"
	"minicc/types"
)

// Resolver binds every identifier in a program to the symbol it refers to.  It
// checks for duplicate declarations, undeclared identifiers and loop control
// statements used outside of a loop.  The AST is annotated in place: each
// declaration and identifier gets its Sym field set.
type Resolver struct {
	// The global symbol table.
	globals map[string]*common.Symbol

	// The stack of local scopes used to lookup symbols.
	localScopes []map[string]*common.Symbol

	// The number of loops enclosing the current statement.
	loopDepth int

	// The number used to make the next local label unique.
	labelCounter int
}

// Resolve resolves all the names in prog.  The first violation found in source
// order is returned as a semantic error.
func Resolve(prog *ast.Program) (err error) {
	defer report.CatchErrors(&err)

	r := &Resolver{globals: make(map[string]*common.Symbol)}
	for _, decl := range prog.Decls {
		switch v := decl.(type) {
		case *ast.FuncDecl:
			r.resolveFuncDecl(v)
		case *ast.VarDecl:
			r.resolveGlobalVar(v)
		default:
			report.ReportICE("unexpected top level declaration %T", decl)
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

// resolveFuncDecl resolves a function definition or prototype.
func (r *Resolver) resolveFuncDecl(fd *ast.FuncDecl) {
	if prev, ok := r.globals[fd.Name]; ok {
		switch {
		case prev.Storage != common.StorageFunc:
			r.error(fd.NameSpan, "duplicate declaration of `%s`", fd.Name)
		case !types.Equals(prev.Type, fd.Signature):
			r.error(fd.NameSpan, "conflicting types for `%s`: %s and %s", fd.Name, prev.Type.Repr(), fd.Signature.Repr())
		case prev.Defined && fd.Body != nil:
			r.error(fd.NameSpan, "duplicate declaration of `%s`: function is already defined", fd.Name)
		}

		fd.Sym = prev
	} else {
		fd.Sym = &common.Symbol{
			Name:    fd.Name,
			Label:   fd.Name,
			DefSpan: fd.NameSpan,
			Type:    fd.Signature,
			Storage: common.StorageFunc,
		}

		r.globals[fd.Name] = fd.Sym
	}

	if fd.Body == nil {
		return
	}

	fd.Sym.Defined = true

	// The parameters share a scope with the outermost block of the body.
	r.pushScope()
	defer r.popScope()

	for _, param := range fd.Params {
		param.Sym = r.defineLocal(param.Name, param.Span(), param.Type, common.StorageParam)
	}

	r.resolveStmts(fd.Body.Stmts)
}

// resolveGlobalVar resolves a global variable declaration.
func (r *Resolver) resolveGlobalVar(vd *ast.VarDecl) {
	if _, ok := r.globals[vd.Name]; ok {
		r.error(vd.NameSpan, "duplicate declaration of `%s`", vd.Name)
	}

	vd.Sym = &common.Symbol{
		Name:    vd.Name,
		Label:   vd.Name,
		DefSpan: vd.NameSpan,
		Type:    vd.Type,
		Storage: common.StorageGlobal,
		Defined: true,
	}

	r.globals[vd.Name] = vd.Sym

	if vd.Init != nil {
		r.resolveExpr(vd.Init)
	}
}

// -----------------------------------------------------------------------------

// resolveStmts resolves a list of statements in the current scope.
func (r *Resolver) resolveStmts(stmts []ast.ASTNode) {
	for _, stmt := range stmts {
		r.resolveStmt(stmt)
	}
}

// resolveStmt resolves a statement.
func (r *Resolver) resolveStmt(stmt ast.ASTNode) {
	switch v := stmt.(type) {
	case *ast.Block:
		r.pushScope()
		r.resolveStmts(v.Stmts)
		r.popScope()
	case *ast.VarDecl:
		// The variable is in scope in its own initializer.
		v.Sym = r.defineLocal(v.Name, v.NameSpan, v.Type, common.StorageLocal)

		if v.Init != nil {
			r.resolveExpr(v.Init)
		}
	case *ast.IfStmt:
		r.resolveExpr(v.Cond)
		r.resolveStmt(v.Then)

		if v.Else != nil {
			r.resolveStmt(v.Else)
		}
	case *ast.WhileLoop:
		r.resolveExpr(v.Cond)
		r.resolveLoopBody(v.Body)
	case *ast.DoWhileLoop:
		r.resolveLoopBody(v.Body)
		r.resolveExpr(v.Cond)
	case *ast.ForLoop:
		// Variables declared in the initializer are scoped to the loop.
		r.pushScope()

		r.resolveStmts(v.Init)

		if v.Cond != nil {
			r.resolveExpr(v.Cond)
		}

		if v.Post != nil {
			r.resolveExpr(v.Post)
		}

		r.resolveLoopBody(v.Body)

		r.popScope()
	case *ast.ReturnStmt:
		if v.Value != nil {
			r.resolveExpr(v.Value)
		}
	case *ast.ExprStmt:
		r.resolveExpr(v.Expr)
	case *ast.KeywordStmt:
		if r.loopDepth == 0 {
			r.error(v.Span(), "`%s` statement not within a loop", v.Name)
		}
	case *ast.NullStmt:
	default:
		report.ReportICE("unexpected statement %T", stmt)
	}
}

// resolveLoopBody resolves the body of a loop.
func (r *Resolver) resolveLoopBody(body ast.ASTNode) {
	r.loopDepth++
	r.resolveStmt(body)
	r.loopDepth--
}

// resolveExpr resolves an expression.  Children are visited left to right.
func (r *Resolver) resolveExpr(expr ast.ASTExpr) {
	switch v := expr.(type) {
	case *ast.Literal:
	case *ast.Identifier:
		v.Sym = r.lookup(v.Name, v.Span())
	case *ast.UnaryOp:
		r.resolveExpr(v.Operand)
	case *ast.Deref:
		r.resolveExpr(v.Ptr)
	case *ast.AddressOf:
		r.resolveExpr(v.Elem)
	case *ast.IncDec:
		r.resolveExpr(v.Operand)
	case *ast.BinaryOp:
		r.resolveExpr(v.Lhs)
		r.resolveExpr(v.Rhs)
	case *ast.Assign:
		r.resolveExpr(v.Lhs)
		r.resolveExpr(v.Rhs)
	case *ast.Call:
		r.resolveExpr(v.Func)

		for _, arg := range v.Args {
			r.resolveExpr(arg)
		}
	case *ast.Cast:
		r.resolveExpr(v.Src)
	default:
		report.ReportICE("unexpected expression %T", expr)
	}
}

// -----------------------------------------------------------------------------

// lookup looks up a symbol by name in all visible scopes.  If no symbol by
// the given name can be found, then an error is reported.
func (r *Resolver) lookup(name string, span *report.TextSpan) *common.Symbol {
	// Traverse local scopes in reverse order to implement shadowing.
	for i := len(r.localScopes) - 1; i > -1; i-- {
		if sym, ok := r.localScopes[i][name]; ok {
			return sym
		}
	}

	if sym, ok := r.globals[name]; ok {
		return sym
	}

	r.error(span, "undeclared identifier `%s`", name)
	return nil
}

// defineLocal defines a local symbol in the current local scope.  If the symbol
// is already defined in that scope, then an error is reported.
func (r *Resolver) defineLocal(name string, span *report.TextSpan, typ types.Type, storage int) *common.Symbol {
	currScope := r.localScopes[len(r.localScopes)-1]

	if _, ok := currScope[name]; ok {
		r.error(span, "duplicate declaration of `%s`", name)
	}

	r.labelCounter++
	sym := &common.Symbol{
		Name:    name,
		Label:   fmt.Sprintf("%s.%d", name, r.labelCounter),
		DefSpan: span,
		Type:    typ,
		Storage: storage,
		Defined: true,
	}

	currScope[name] = sym
	return sym
}

// pushScope pushes a new local scope onto the scope stack.
func (r *Resolver) pushScope() {
	r.localScopes = append(r.localScopes, make(map[string]*common.Symbol))
}

// popScope removes the top local scope from the scope stack.
func (r *Resolver) popScope() {
	r.localScopes = r.localScopes[:len(r.localScopes)-1]
}

// error reports an error on the given span that aborts resolution.
func (r *Resolver) error(span *report.TextSpan, msg string, args ...interface{}) {
	panic(report.Raise(report.KindSemantic, span, msg, args...))
}
