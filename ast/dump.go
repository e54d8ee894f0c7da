package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Dump renders an AST as an s-expression.  Expressions that have been type
// checked are suffixed with their type: eg. `(integer 3 :int)`.  The output is
// deterministic so it can be compared in tests.
func Dump(node ASTNode) string {
	d := &dumper{sb: &strings.Builder{}}
	d.node(node)
	return d.sb.String()
}

type dumper struct {
	sb *strings.Builder
}

func (d *dumper) write(format string, args ...interface{}) {
	fmt.Fprintf(d.sb, format, args...)
}

func (d *dumper) node(node ASTNode) {
	switch v := node.(type) {
	case *Program:
		d.write("(program")
		d.list(v.Decls)
		d.write(")")
	case *FuncDecl:
		d.write("(func %q %q", v.Name, v.Signature.Repr())

		if len(v.Params) > 0 {
			d.write(" (params")
			for _, param := range v.Params {
				d.write(" (param %q %q)", param.Name, param.Type.Repr())
			}
			d.write(")")
		}

		if v.Body != nil {
			d.write(" ")
			d.node(v.Body)
		}

		d.write(")")
	case *VarDecl:
		d.write("(var %q %q", v.Name, v.Type.Repr())
		if v.Init != nil {
			d.write(" ")
			d.node(v.Init)
		}
		d.write(")")
	case *Block:
		d.write("(block")
		d.list(v.Stmts)
		d.write(")")
	case *IfStmt:
		d.write("(if ")
		d.node(v.Cond)
		d.write(" ")
		d.node(v.Then)
		if v.Else != nil {
			d.write(" ")
			d.node(v.Else)
		}
		d.write(")")
	case *WhileLoop:
		d.write("(while ")
		d.node(v.Cond)
		d.write(" ")
		d.node(v.Body)
		d.write(")")
	case *DoWhileLoop:
		d.write("(do ")
		d.node(v.Body)
		d.write(" ")
		d.node(v.Cond)
		d.write(")")
	case *ForLoop:
		d.write("(for (init")
		d.list(v.Init)
		d.write(") ")
		d.optional(v.Cond)
		d.write(" ")
		d.optional(v.Post)
		d.write(" ")
		d.node(v.Body)
		d.write(")")
	case *ReturnStmt:
		if v.Value == nil {
			d.write("(return)")
		} else {
			d.write("(return ")
			d.node(v.Value)
			d.write(")")
		}
	case *ExprStmt:
		d.write("(expr ")
		d.node(v.Expr)
		d.write(")")
	case *NullStmt:
		d.write("(null)")
	case *KeywordStmt:
		d.write("(%s)", v.Name)
	case ASTExpr:
		d.expr(v)
	default:
		d.write("(unknown %T)", node)
	}
}

var literalNames = [...]string{
	LitInt:    "integer",
	LitLong:   "long",
	LitFloat:  "float",
	LitChar:   "char",
	LitString: "string",
}

func (d *dumper) expr(expr ASTExpr) {
	switch v := expr.(type) {
	case *Literal:
		switch v.Kind {
		case LitFloat:
			d.write("(float %s", strconv.FormatFloat(v.FloatValue, 'g', -1, 64))
		case LitString:
			d.write("(string %q", v.Value)
		default:
			d.write("(%s %d", literalNames[v.Kind], v.IntValue)
		}
	case *Identifier:
		d.write("(ident %q", v.Name)
	case *UnaryOp:
		d.write("(unary %q ", v.Op.Name)
		d.node(v.Operand)
	case *Deref:
		d.write("(deref ")
		d.node(v.Ptr)
	case *AddressOf:
		d.write("(addr ")
		d.node(v.Elem)
	case *IncDec:
		if v.Postfix {
			d.write("(postfix %q ", v.Op.Name)
		} else {
			d.write("(prefix %q ", v.Op.Name)
		}
		d.node(v.Operand)
	case *BinaryOp:
		d.write("(binary %q ", v.Op.Name)
		d.node(v.Lhs)
		d.write(" ")
		d.node(v.Rhs)
	case *Assign:
		if v.Op == nil {
			d.write("(assign ")
		} else {
			d.write("(assign %q ", v.Op.Name+"=")
		}
		d.node(v.Lhs)
		d.write(" ")
		d.node(v.Rhs)
	case *Call:
		d.write("(call ")
		d.node(v.Func)
		for _, arg := range v.Args {
			d.write(" ")
			d.node(arg)
		}
	case *Cast:
		if v.Implicit {
			d.write("(conv ")
		} else {
			d.write("(cast ")
		}
		d.node(v.Src)
	}

	if typ := expr.Type(); typ != nil {
		d.write(" :%s", typ.Repr())
	}

	d.write(")")
}

func (d *dumper) list(nodes []ASTNode) {
	for _, node := range nodes {
		d.write(" ")
		d.node(node)
	}
}

func (d *dumper) optional(expr ASTExpr) {
	if expr == nil {
		d.write("()")
	} else {
		d.node(expr)
	}
}
