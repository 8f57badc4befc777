package main

import (
	"fmt"
	"strconv"
	"strings"
)

// lower.go is the middle-end of the compiler: it takes the Program and
// lowers it down to a flat list of IR functions. Each function is a vector
// of three-address instructions; structured control flow becomes labeled
// jumps. Statements outside any function declaration collect into a
// synthetic __main__ function.

type irOpcode int

const (
	irLoadConst irOpcode = iota
	irLoadVar
	irStoreVar
	irBinaryOp
	irUnaryOp
	irJump
	irJumpIfFalse
	irJumpIfTrue
	irCall
	irReturn
	irPrint
	irInput
	irArrayNew
	irArrayGet
	irArraySet
	irMemberGet
	irLabel
	irConvert
	irNop
)

var irOpcodeNames = [...]string{
	irLoadConst:   "LOAD_CONST",
	irLoadVar:     "LOAD_VAR",
	irStoreVar:    "STORE_VAR",
	irBinaryOp:    "BINARY_OP",
	irUnaryOp:     "UNARY_OP",
	irJump:        "JUMP",
	irJumpIfFalse: "JUMP_IF_FALSE",
	irJumpIfTrue:  "JUMP_IF_TRUE",
	irCall:        "CALL",
	irReturn:      "RETURN",
	irPrint:       "PRINT",
	irInput:       "INPUT",
	irArrayNew:    "ARRAY_NEW",
	irArrayGet:    "ARRAY_GET",
	irArraySet:    "ARRAY_SET",
	irMemberGet:   "MEMBER_GET",
	irLabel:       "LABEL",
	irConvert:     "CONVERT",
	irNop:         "NOP",
}

func (op irOpcode) String() string {
	if int(op) < len(irOpcodeNames) {
		return irOpcodeNames[op]
	}
	return fmt.Sprintf("irOpcode(%d)", int(op))
}

type irInstr struct {
	op       irOpcode
	operands []string
}

// An irFunc is one lowered function. Temporaries (t0, t1, ...) and labels
// (L0, L1, ...) are numbered per function.
type irFunc struct {
	name   string
	params []string
	code   []irInstr

	ntemp  int
	nlabel int
}

func (f *irFunc) newTemp() string {
	t := "t" + strconv.Itoa(f.ntemp)
	f.ntemp++
	return t
}

func (f *irFunc) newLabel() string {
	l := "L" + strconv.Itoa(f.nlabel)
	f.nlabel++
	return l
}

func (f *irFunc) emit(op irOpcode, operands ...string) {
	f.code = append(f.code, irInstr{op: op, operands: operands})
}

type irgen struct {
	funcs []*irFunc
	cur   *irFunc
}

// lower generates IR from an analyzed program.
func lower(prog *Program) []*irFunc {
	g := new(irgen)
	main := &irFunc{name: "__main__"}
	g.funcs = append(g.funcs, main)
	g.cur = main
	for _, stmt := range prog.Stmts {
		g.stmt(stmt)
	}
	return g.funcs
}

func (g *irgen) stmt(stmt Stmt) {
	switch s := stmt.(type) {
	case *VarDecl:
		// a bare declaration binds nothing; the analyzer already rejects
		// reads before first assignment
		if s.Init != nil {
			r := g.expr(s.Init)
			g.cur.emit(irStoreVar, s.Name, r)
		}

	case *FuncDecl:
		prev := g.cur
		fn := &irFunc{name: s.Name, params: s.Params}
		g.funcs = append(g.funcs, fn)
		g.cur = fn
		g.stmt(s.Body)
		if len(fn.code) == 0 || fn.code[len(fn.code)-1].op != irReturn {
			fn.emit(irReturn)
		}
		g.cur = prev

	case *ExprStmt:
		g.expr(s.X)

	case *BlockStmt:
		for _, stmt := range s.Stmts {
			g.stmt(stmt)
		}

	case *IfStmt:
		cond := g.expr(s.Cond)
		elseLabel := g.cur.newLabel()
		endLabel := g.cur.newLabel()
		g.cur.emit(irJumpIfFalse, cond, elseLabel)
		g.stmt(s.Then)
		g.cur.emit(irJump, endLabel)
		g.cur.emit(irLabel, elseLabel)
		if s.Else != nil {
			g.stmt(s.Else)
		}
		g.cur.emit(irLabel, endLabel)

	case *WhileStmt:
		loopLabel := g.cur.newLabel()
		endLabel := g.cur.newLabel()
		g.cur.emit(irLabel, loopLabel)
		cond := g.expr(s.Cond)
		g.cur.emit(irJumpIfFalse, cond, endLabel)
		g.stmt(s.Body)
		g.cur.emit(irJump, loopLabel)
		g.cur.emit(irLabel, endLabel)

	case *LoopInStmt:
		iterable := g.expr(s.Iterable)
		index := g.cur.newTemp()
		loopLabel := g.cur.newLabel()
		endLabel := g.cur.newLabel()

		g.cur.emit(irLoadConst, index, "0")
		g.cur.emit(irLabel, loopLabel)

		length := g.cur.newTemp()
		cond := g.cur.newTemp()
		g.cur.emit(irMemberGet, length, iterable, "length")
		g.cur.emit(irBinaryOp, cond, index, "<", length)
		g.cur.emit(irJumpIfFalse, cond, endLabel)

		item := g.cur.newTemp()
		g.cur.emit(irArrayGet, item, iterable, index)
		g.cur.emit(irStoreVar, s.Var, item)

		g.stmt(s.Body)

		next := g.cur.newTemp()
		g.cur.emit(irBinaryOp, next, index, "+", "1")
		g.cur.emit(irStoreVar, index, next)
		g.cur.emit(irJump, loopLabel)
		g.cur.emit(irLabel, endLabel)

	case *LoopTimesStmt:
		count := g.expr(s.Count)
		index := g.cur.newTemp()
		loopLabel := g.cur.newLabel()
		endLabel := g.cur.newLabel()

		g.cur.emit(irLoadConst, index, "0")
		g.cur.emit(irLabel, loopLabel)

		cond := g.cur.newTemp()
		g.cur.emit(irBinaryOp, cond, index, "<", count)
		g.cur.emit(irJumpIfFalse, cond, endLabel)

		g.stmt(s.Body)

		next := g.cur.newTemp()
		g.cur.emit(irBinaryOp, next, index, "+", "1")
		g.cur.emit(irStoreVar, index, next)
		g.cur.emit(irJump, loopLabel)
		g.cur.emit(irLabel, endLabel)

	case *ReturnStmt:
		if s.Value != nil {
			r := g.expr(s.Value)
			g.cur.emit(irReturn, r)
		} else {
			g.cur.emit(irReturn)
		}

	case *PrintStmt:
		r := g.expr(s.X)
		g.cur.emit(irPrint, r)

	case *InputStmt:
		g.cur.emit(irInput, s.Var)

	default:
		panic(fmt.Sprintf("unhandled case in stmt: %T", stmt))
	}
}

// expr lowers an expression and returns the operand holding its value:
// a fresh temporary, or for assignments the stored right-hand operand.
func (g *irgen) expr(expr Expr) string {
	switch e := expr.(type) {
	case *LiteralExpr:
		t := g.cur.newTemp()
		g.cur.emit(irLoadConst, t, renderConst(e.Value))
		return t

	case *VarExpr:
		t := g.cur.newTemp()
		g.cur.emit(irLoadVar, t, e.Name)
		return t

	case *BinExpr:
		if e.Op == tAssign {
			return g.assign(e)
		}
		left := g.expr(e.Left)
		right := g.expr(e.Right)
		t := g.cur.newTemp()
		g.cur.emit(irBinaryOp, t, left, opGlyph[e.Op], right)
		return t

	case *UnaryExpr:
		operand := g.expr(e.Operand)
		t := g.cur.newTemp()
		g.cur.emit(irUnaryOp, t, opGlyph[e.Op], operand)
		return t

	case *CallExpr:
		args := make([]string, len(e.Args))
		for i, arg := range e.Args {
			args[i] = g.expr(arg)
		}
		t := g.cur.newTemp()
		if isConversion(e.Callee) && len(args) == 1 {
			g.cur.emit(irConvert, t, e.Callee, args[0])
		} else {
			g.cur.emit(irCall, t, e.Callee, strings.Join(args, ", "))
		}
		return t

	case *ArrayExpr:
		elems := make([]string, len(e.Elems))
		for i, elem := range e.Elems {
			elems[i] = g.expr(elem)
		}
		t := g.cur.newTemp()
		g.cur.emit(irArrayNew, t, strings.Join(elems, ", "))
		return t

	case *IndexExpr:
		array := g.expr(e.Array)
		index := g.expr(e.Index)
		t := g.cur.newTemp()
		g.cur.emit(irArrayGet, t, array, index)
		return t

	case *MemberExpr:
		object := g.expr(e.Object)
		t := g.cur.newTemp()
		g.cur.emit(irMemberGet, t, object, e.Member)
		return t

	default:
		panic(fmt.Sprintf("unhandled case in expr: %T", expr))
	}
}

func (g *irgen) assign(e *BinExpr) string {
	switch lhs := e.Left.(type) {
	case *VarExpr:
		r := g.expr(e.Right)
		g.cur.emit(irStoreVar, lhs.Name, r)
		return r
	case *IndexExpr:
		array := g.expr(lhs.Array)
		index := g.expr(lhs.Index)
		r := g.expr(e.Right)
		g.cur.emit(irArraySet, array, index, r)
		return r
	}
	// the parser and analyzer only let VarExpr and IndexExpr through
	panic(fmt.Sprintf("unhandled assignment target: %T", e.Left))
}

// renderConst turns a literal value into its LOAD_CONST operand text.
// Strings are wrapped in one pair of double quotes, verbatim; inner
// quotes are not escaped.
func renderConst(v interface{}) string {
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
		return "\"" + v + "\""
	}
	panic(fmt.Sprintf("unhandled constant type: %T", v))
}
