package main

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// format.go converts an AST back to source code

type formatter struct {
	buf     bytes.Buffer
	nindent int
}

// formatProgram renders a program as canonical source: four-space
// indentation, one statement per line. Reparsing the output yields the
// same tree.
func formatProgram(p *Program) string {
	var f formatter
	for _, stmt := range p.Stmts {
		f.visitStmt(stmt)
	}
	return f.buf.String()
}

var binPrec = map[tokenKind]int{
	tAssign: 1,
	tOr:     2,
	tAnd:    3,
	tEq:     4,
	tNe:     4,
	tLt:     5,
	tLe:     5,
	tGt:     5,
	tGe:     5,
	tPlus:   6,
	tMinus:  6,
	tCaret:  6,
	tStar:   7,
	tSlash:  7,
}

const unaryPrec = 8

func (f *formatter) visitStmt(s Stmt) {
	switch s := s.(type) {
	case *VarDecl:
		if s.Init != nil {
			f.line("var " + s.Name + " = " + f.exprString(s.Init))
		} else {
			f.line("var " + s.Name)
		}
	case *FuncDecl:
		f.line("func " + s.Name + "(" + strings.Join(s.Params, ", ") + "):")
		f.visitBody(s.Body)
	case *IfStmt:
		f.line("if " + f.exprString(s.Cond) + ":")
		f.visitBody(s.Then)
		els := s.Else
		for els != nil {
			if chain, ok := els.(*IfStmt); ok {
				f.line("else if " + f.exprString(chain.Cond) + ":")
				f.visitBody(chain.Then)
				els = chain.Else
				continue
			}
			f.line("else:")
			f.visitBody(els)
			break
		}
	case *WhileStmt:
		f.line("while " + f.exprString(s.Cond) + ":")
		f.visitBody(s.Body)
	case *LoopInStmt:
		f.line("loop " + s.Var + " in " + f.exprString(s.Iterable) + ":")
		f.visitBody(s.Body)
	case *LoopTimesStmt:
		f.line("loop " + f.exprString(s.Count) + " times:")
		f.visitBody(s.Body)
	case *ReturnStmt:
		if s.Value != nil {
			f.line("return " + f.exprString(s.Value))
		} else {
			f.line("return")
		}
	case *PrintStmt:
		f.line("print " + f.exprString(s.X))
	case *InputStmt:
		f.line("input " + s.Var)
	case *ExprStmt:
		f.line(f.exprString(s.X))
	case *BlockStmt:
		for _, stmt := range s.Stmts {
			f.visitStmt(stmt)
		}
	default:
		panic(fmt.Sprintf("unhandled case in formatter.visitStmt: %T", s))
	}
}

func (f *formatter) visitBody(body Stmt) {
	f.nindent++
	f.visitStmt(body)
	f.nindent--
}

func (f *formatter) line(s string) {
	for i := 0; i < f.nindent; i++ {
		f.buf.WriteString("    ")
	}
	f.buf.WriteString(s)
	f.buf.WriteString("\n")
}

func (f *formatter) exprString(e Expr) string {
	var b strings.Builder
	f.visitExpr(&b, e, 0)
	return b.String()
}

func (f *formatter) visitExpr(b *strings.Builder, e Expr, prec int) {
	switch e := e.(type) {
	case *LiteralExpr:
		b.WriteString(literalText(e.Value))
	case *VarExpr:
		b.WriteString(e.Name)
	case *BinExpr:
		op := binPrec[e.Op]
		glyph := opGlyph[e.Op]
		if e.Op == tAssign {
			glyph = "="
		}
		// assignment associates to the right, everything else to the left
		lp, rp := op, op+1
		if e.Op == tAssign {
			lp, rp = op+1, op
		}
		if op < prec {
			b.WriteString("(")
		}
		f.visitExpr(b, e.Left, lp)
		b.WriteString(" " + glyph + " ")
		f.visitExpr(b, e.Right, rp)
		if op < prec {
			b.WriteString(")")
		}
	case *UnaryExpr:
		b.WriteString(opGlyph[e.Op])
		f.visitExpr(b, e.Operand, unaryPrec)
	case *CallExpr:
		b.WriteString(e.Callee + "(")
		for i, a := range e.Args {
			if i != 0 {
				b.WriteString(", ")
			}
			f.visitExpr(b, a, 0)
		}
		b.WriteString(")")
	case *ArrayExpr:
		b.WriteString("[")
		for i, elem := range e.Elems {
			if i != 0 {
				b.WriteString(", ")
			}
			f.visitExpr(b, elem, 0)
		}
		b.WriteString("]")
	case *IndexExpr:
		f.visitExpr(b, e.Array, unaryPrec)
		b.WriteString("[")
		f.visitExpr(b, e.Index, 0)
		b.WriteString("]")
	case *MemberExpr:
		f.visitExpr(b, e.Object, unaryPrec)
		b.WriteString("." + e.Member)
	default:
		panic(fmt.Sprintf("unhandled case in formatter.visitExpr: %T", e))
	}
}

func literalText(v interface{}) string {
	switch v := v.(type) {
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			return "true"
		}
		return "false"
	case string:
		return "\"" + strings.ReplaceAll(v, "\"", "\\\"") + "\""
	}
	panic(fmt.Sprintf("unhandled literal type: %T", v))
}
