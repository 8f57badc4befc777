package main

import (
	"reflect"
	"testing"
)

func mustLower(t *testing.T, src string) []*irFunc {
	t.Helper()
	prog := mustParse(t, src)
	if err := newAnalyzer().analyze(prog); err != nil {
		t.Fatalf("analyze(%q) failed: %v", src, err)
	}
	return lower(prog)
}

func TestLowerStraightLine(t *testing.T) {
	funcs := mustLower(t, "var x = 2\nprint x\n")
	if len(funcs) != 1 || funcs[0].name != "__main__" {
		t.Fatalf("got %d functions, want a single __main__", len(funcs))
	}
	want := []irInstr{
		{op: irLoadConst, operands: []string{"t0", "2"}},
		{op: irStoreVar, operands: []string{"x", "t0"}},
		{op: irLoadVar, operands: []string{"t1", "x"}},
		{op: irPrint, operands: []string{"t1"}},
	}
	if !reflect.DeepEqual(funcs[0].code, want) {
		t.Errorf("got %v, want %v", funcs[0].code, want)
	}
}

func TestLowerConstants(t *testing.T) {
	funcs := mustLower(t, "print 3.5\nprint true\nprint false\nprint \"hi\"\n")
	var consts []string
	for _, ins := range funcs[0].code {
		if ins.op == irLoadConst {
			consts = append(consts, ins.operands[1])
		}
	}
	want := []string{"3.5", "true", "false", "\"hi\""}
	if !reflect.DeepEqual(consts, want) {
		t.Errorf("got constants %v, want %v", consts, want)
	}
}

func TestLowerBinaryGlyphs(t *testing.T) {
	funcs := mustLower(t, "var a = 1\nvar b = 2\nprint a ^ b\nprint a && b || a\n")
	var glyphs []string
	for _, ins := range funcs[0].code {
		if ins.op == irBinaryOp {
			glyphs = append(glyphs, ins.operands[2])
		}
	}
	want := []string{"^", "&&", "||"}
	if !reflect.DeepEqual(glyphs, want) {
		t.Errorf("got glyphs %v, want %v", glyphs, want)
	}
}

func TestLowerFunction(t *testing.T) {
	funcs := mustLower(t, "func add(a, b):\n    return a + b\nprint add(1, 2)\n")
	if len(funcs) != 2 {
		t.Fatalf("got %d functions, want 2", len(funcs))
	}
	fn := funcs[1]
	if fn.name != "add" || !reflect.DeepEqual(fn.params, []string{"a", "b"}) {
		t.Fatalf("got function %s%v", fn.name, fn.params)
	}
	want := []irInstr{
		{op: irLoadVar, operands: []string{"t0", "a"}},
		{op: irLoadVar, operands: []string{"t1", "b"}},
		{op: irBinaryOp, operands: []string{"t2", "t0", "+", "t1"}},
		{op: irReturn, operands: []string{"t2"}},
	}
	if !reflect.DeepEqual(fn.code, want) {
		t.Errorf("got %v, want %v", fn.code, want)
	}

	// the call site lowers the arguments, then the call with a joined list
	main := funcs[0]
	var call *irInstr
	for i := range main.code {
		if main.code[i].op == irCall {
			call = &main.code[i]
		}
	}
	if call == nil {
		t.Fatal("no CALL emitted in __main__")
	}
	if call.operands[1] != "add" || call.operands[2] != "t0, t1" {
		t.Errorf("got CALL operands %v", call.operands)
	}
}

func TestLowerImplicitReturn(t *testing.T) {
	funcs := mustLower(t, "func greet():\n    print \"hi\"\ngreet()\n")
	fn := funcs[1]
	last := fn.code[len(fn.code)-1]
	if last.op != irReturn || len(last.operands) != 0 {
		t.Errorf("last instruction = %v, want a bare RETURN", last)
	}

	// an explicit trailing return is not doubled
	funcs = mustLower(t, "func f():\n    return 1\nf()\n")
	fn = funcs[1]
	returns := 0
	for _, ins := range fn.code {
		if ins.op == irReturn {
			returns++
		}
	}
	if returns != 1 {
		t.Errorf("got %d RETURNs, want 1", returns)
	}
}

func TestLowerIf(t *testing.T) {
	funcs := mustLower(t, "var a = 1\nif a:\n    print 1\nelse:\n    print 2\n")
	want := []irInstr{
		{op: irLoadConst, operands: []string{"t0", "1"}},
		{op: irStoreVar, operands: []string{"a", "t0"}},
		{op: irLoadVar, operands: []string{"t1", "a"}},
		{op: irJumpIfFalse, operands: []string{"t1", "L0"}},
		{op: irLoadConst, operands: []string{"t2", "1"}},
		{op: irPrint, operands: []string{"t2"}},
		{op: irJump, operands: []string{"L1"}},
		{op: irLabel, operands: []string{"L0"}},
		{op: irLoadConst, operands: []string{"t3", "2"}},
		{op: irPrint, operands: []string{"t3"}},
		{op: irLabel, operands: []string{"L1"}},
	}
	if !reflect.DeepEqual(funcs[0].code, want) {
		t.Errorf("got %v, want %v", funcs[0].code, want)
	}
}

func TestLowerWhile(t *testing.T) {
	funcs := mustLower(t, "var n = 2\nwhile n > 0:\n    n = n - 1\n")
	want := []irInstr{
		{op: irLoadConst, operands: []string{"t0", "2"}},
		{op: irStoreVar, operands: []string{"n", "t0"}},
		{op: irLabel, operands: []string{"L0"}},
		{op: irLoadVar, operands: []string{"t1", "n"}},
		{op: irLoadConst, operands: []string{"t2", "0"}},
		{op: irBinaryOp, operands: []string{"t3", "t1", ">", "t2"}},
		{op: irJumpIfFalse, operands: []string{"t3", "L1"}},
		{op: irLoadVar, operands: []string{"t4", "n"}},
		{op: irLoadConst, operands: []string{"t5", "1"}},
		{op: irBinaryOp, operands: []string{"t6", "t4", "-", "t5"}},
		{op: irStoreVar, operands: []string{"n", "t6"}},
		{op: irJump, operands: []string{"L0"}},
		{op: irLabel, operands: []string{"L1"}},
	}
	if !reflect.DeepEqual(funcs[0].code, want) {
		t.Errorf("got %v, want %v", funcs[0].code, want)
	}
}

func TestLowerLoopIn(t *testing.T) {
	funcs := mustLower(t, "var xs = [7]\nloop v in xs:\n    print v\n")
	want := []irInstr{
		{op: irLoadConst, operands: []string{"t0", "7"}},
		{op: irArrayNew, operands: []string{"t1", "t0"}},
		{op: irStoreVar, operands: []string{"xs", "t1"}},
		{op: irLoadVar, operands: []string{"t2", "xs"}},
		{op: irLoadConst, operands: []string{"t3", "0"}},
		{op: irLabel, operands: []string{"L0"}},
		{op: irMemberGet, operands: []string{"t4", "t2", "length"}},
		{op: irBinaryOp, operands: []string{"t5", "t3", "<", "t4"}},
		{op: irJumpIfFalse, operands: []string{"t5", "L1"}},
		{op: irArrayGet, operands: []string{"t6", "t2", "t3"}},
		{op: irStoreVar, operands: []string{"v", "t6"}},
		{op: irLoadVar, operands: []string{"t7", "v"}},
		{op: irPrint, operands: []string{"t7"}},
		{op: irBinaryOp, operands: []string{"t8", "t3", "+", "1"}},
		{op: irStoreVar, operands: []string{"t3", "t8"}},
		{op: irJump, operands: []string{"L0"}},
		{op: irLabel, operands: []string{"L1"}},
	}
	if !reflect.DeepEqual(funcs[0].code, want) {
		t.Errorf("got %v, want %v", funcs[0].code, want)
	}
}

func TestLowerLoopTimes(t *testing.T) {
	funcs := mustLower(t, "loop 3 times:\n    print 1\n")
	want := []irInstr{
		{op: irLoadConst, operands: []string{"t0", "3"}},
		{op: irLoadConst, operands: []string{"t1", "0"}},
		{op: irLabel, operands: []string{"L0"}},
		{op: irBinaryOp, operands: []string{"t2", "t1", "<", "t0"}},
		{op: irJumpIfFalse, operands: []string{"t2", "L1"}},
		{op: irLoadConst, operands: []string{"t3", "1"}},
		{op: irPrint, operands: []string{"t3"}},
		{op: irBinaryOp, operands: []string{"t4", "t1", "+", "1"}},
		{op: irStoreVar, operands: []string{"t1", "t4"}},
		{op: irJump, operands: []string{"L0"}},
		{op: irLabel, operands: []string{"L1"}},
	}
	if !reflect.DeepEqual(funcs[0].code, want) {
		t.Errorf("got %v, want %v", funcs[0].code, want)
	}
}

func TestLowerArraySet(t *testing.T) {
	funcs := mustLower(t, "var xs = [1, 2]\nxs[0] = 9\n")
	var set *irInstr
	for i := range funcs[0].code {
		if funcs[0].code[i].op == irArraySet {
			set = &funcs[0].code[i]
		}
	}
	if set == nil {
		t.Fatal("no ARRAY_SET emitted")
	}
	// operands are array, index, value in that order
	want := []string{"t3", "t4", "t5"}
	if !reflect.DeepEqual(set.operands, want) {
		t.Errorf("got ARRAY_SET operands %v, want %v", set.operands, want)
	}
}

func TestLowerConvert(t *testing.T) {
	funcs := mustLower(t, "print int(\"42\")\n")
	want := []irInstr{
		{op: irLoadConst, operands: []string{"t0", "\"42\""}},
		{op: irConvert, operands: []string{"t1", "int", "t0"}},
		{op: irPrint, operands: []string{"t1"}},
	}
	if !reflect.DeepEqual(funcs[0].code, want) {
		t.Errorf("got %v, want %v", funcs[0].code, want)
	}
}

// temporaries and labels restart at t0/L0 inside each function
func TestLowerCountersPerFunction(t *testing.T) {
	funcs := mustLower(t, "var a = 1\nfunc f(n):\n    if n:\n        return 1\n    return 0\nprint f(a)\n")
	fn := funcs[1]
	if fn.code[0].operands[0] != "t0" {
		t.Errorf("first temp in %s = %s, want t0", fn.name, fn.code[0].operands[0])
	}
	for _, ins := range fn.code {
		if ins.op == irLabel && ins.operands[0] == "L0" {
			return
		}
	}
	t.Errorf("no L0 label in %s", fn.name)
}

// every jump target names a label defined in the same function, and all
// label names are distinct
func TestLowerJumpInvariants(t *testing.T) {
	sources := []string{
		"var a = 1\nif a:\n    print 1\nelse if a:\n    print 2\nelse:\n    print 3\n",
		"var n = 9\nwhile n > 0:\n    if n > 5:\n        n = n - 2\n    else:\n        n = n - 1\n",
		"var xs = [1, 2, 3]\nloop v in xs:\n    loop 2 times:\n        print v\n",
		"func fib(n):\n    if n < 2:\n        return n\n    return fib(n - 1) + fib(n - 2)\nprint fib(10)\n",
	}
	for _, src := range sources {
		for _, fn := range mustLower(t, src) {
			labels := make(map[string]bool)
			for _, ins := range fn.code {
				if ins.op == irLabel {
					if labels[ins.operands[0]] {
						t.Errorf("lower(%q): duplicate label %s in %s", src, ins.operands[0], fn.name)
					}
					labels[ins.operands[0]] = true
				}
			}
			for _, ins := range fn.code {
				var target string
				switch ins.op {
				case irJump:
					target = ins.operands[0]
				case irJumpIfFalse, irJumpIfTrue:
					target = ins.operands[1]
				default:
					continue
				}
				if !labels[target] {
					t.Errorf("lower(%q): jump to undefined label %s in %s", src, target, fn.name)
				}
			}
		}
	}
}
