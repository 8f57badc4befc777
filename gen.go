package main

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

// gen.go is the back end: it prints each IR function as a Python function
// whose body simulates the instruction vector with an explicit program
// counter dispatched through an if/elif chain. Jumps set _pc to a label's
// instruction index; every other arm falls through with _pc += 1. This
// avoids reconstructing structured control flow in an
// indentation-sensitive target.

const pyHeader = `#!/usr/bin/env python3
# Generated by Vypr Compiler

import sys

# Runtime helper functions
def _vypr_concat(a, b):
    return str(a) + str(b)

def _vypr_input(prompt=""):
    if prompt:
        sys.stdout.write(prompt)
        sys.stdout.flush()
    return input()

`

const pyTrailer = `
# Execute main function if this is the main module
if __name__ == "__main__":
    __main__()
`

type pyEmitter struct {
	w io.Writer
}

// emitPython writes the whole target script: header with runtime helpers,
// one dispatch function per IR function, and the __main__ trailer.
func emitPython(w io.Writer, funcs []*irFunc) error {
	p := &pyEmitter{w: w}
	p.write(pyHeader)
	for _, f := range funcs {
		if err := p.writeFunc(f); err != nil {
			return err
		}
	}
	p.write(pyTrailer)
	return nil
}

func (p *pyEmitter) write(s string) {
	io.WriteString(p.w, s)
}

func indent(level int) string {
	return strings.Repeat("    ", level)
}

func (p *pyEmitter) writeFunc(f *irFunc) error {
	labels := make(map[string]int)
	for i, ins := range f.code {
		if ins.op == irLabel {
			name := ins.operands[0]
			if _, ok := labels[name]; ok {
				return &emitError{fn: f.name, msg: "duplicate label " + name}
			}
			labels[name] = i
		}
	}

	p.write("def " + f.name + "(" + strings.Join(f.params, ", ") + "):\n")
	p.write(indent(1) + "_pc = 0\n")
	p.write(indent(1) + "while True:\n")

	if len(f.code) == 0 {
		p.write(indent(2) + "pass # Empty function\n")
		p.write(indent(2) + "break\n")
		p.write("\n")
		return nil
	}

	for i, ins := range f.code {
		if i == 0 {
			p.write(fmt.Sprintf("%sif _pc == %d:\n", indent(2), i))
		} else {
			p.write(fmt.Sprintf("%selif _pc == %d:\n", indent(2), i))
		}
		if err := p.writeInstr(f, ins, labels); err != nil {
			return err
		}
	}

	// guard against a runaway program counter
	p.write(indent(2) + "else:\n")
	p.write(indent(3) + "# Instruction pointer out of bounds or loop finished\n")
	p.write(indent(3) + "break\n")
	p.write("\n")
	return nil
}

func (p *pyEmitter) writeInstr(f *irFunc, ins irInstr, labels map[string]int) error {
	body := indent(3)

	switch ins.op {
	case irLabel:
		p.write(body + "# LABEL " + ins.operands[0] + "\n")

	case irJump:
		target, ok := labels[ins.operands[0]]
		if !ok {
			return &emitError{fn: f.name, msg: "undefined label referenced in JUMP: " + ins.operands[0]}
		}
		p.write(fmt.Sprintf("%s_pc = %d\n", body, target))
		return nil

	case irJumpIfFalse, irJumpIfTrue:
		cond, label := ins.operands[0], ins.operands[1]
		target, ok := labels[label]
		if !ok {
			return &emitError{fn: f.name, msg: "undefined label referenced in " + ins.op.String() + ": " + label}
		}
		if ins.op == irJumpIfFalse {
			p.write(body + "if not " + cond + ":\n")
		} else {
			p.write(body + "if " + cond + ":\n")
		}
		p.write(fmt.Sprintf("%s_pc = %d\n", body+indent(1), target))
		p.write(body + "else:\n")
		p.write(body + indent(1) + "_pc += 1\n")
		return nil

	case irReturn:
		if len(ins.operands) == 0 {
			p.write(body + "return\n")
		} else {
			p.write(body + "return " + ins.operands[0] + "\n")
		}
		p.write(body + "break # Exit loop after return\n")
		return nil

	default:
		p.write(body + simpleInstr(ins) + "\n")
	}

	p.write(body + "_pc += 1\n")
	return nil
}

// simpleInstr translates the straight-line opcodes, which all become a
// single Python statement.
func simpleInstr(ins irInstr) string {
	ops := ins.operands
	switch ins.op {
	case irLoadConst:
		return ops[0] + " = " + normalizeConst(ops[1])
	case irLoadVar, irStoreVar:
		return ops[0] + " = " + ops[1]
	case irBinaryOp:
		result, left, op, right := ops[0], ops[1], ops[2], ops[3]
		if op == "^" {
			return result + " = _vypr_concat(" + left + ", " + right + ")"
		}
		switch op {
		case "&&":
			op = "and"
		case "||":
			op = "or"
		}
		return result + " = " + left + " " + op + " " + right
	case irUnaryOp:
		result, op, operand := ops[0], ops[1], ops[2]
		if op == "!" {
			op = "not "
		}
		return result + " = " + op + operand
	case irCall:
		return ops[0] + " = " + ops[1] + "(" + ops[2] + ")"
	case irPrint:
		return "print(" + ops[0] + ")"
	case irInput:
		return ops[0] + " = _vypr_input()"
	case irArrayNew:
		return ops[0] + " = [" + ops[1] + "]"
	case irArrayGet:
		return ops[0] + " = " + ops[1] + "[" + ops[2] + "]"
	case irArraySet:
		return ops[0] + "[" + ops[1] + "] = " + ops[2]
	case irMemberGet:
		result, object, member := ops[0], ops[1], ops[2]
		if member == "length" {
			return result + " = len(" + object + ")"
		}
		return result + " = " + object + "." + member
	case irConvert:
		return ops[0] + " = " + ops[1] + "(" + ops[2] + ")"
	case irNop:
		return "pass"
	}
	panic(fmt.Sprintf("unhandled opcode in simpleInstr: %v", ins.op))
}

var numericConst = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// normalizeConst maps a LOAD_CONST operand onto a Python literal. The IR
// carries constants as bare text, so the kind is sniffed back out:
// booleans get their Python casing, quoted and numeric text passes
// through, and anything else is wrapped in quotes.
func normalizeConst(v string) string {
	if len(v) >= 2 {
		if (v[0] == '"' && v[len(v)-1] == '"') || (v[0] == '\'' && v[len(v)-1] == '\'') {
			return v
		}
	}
	switch v {
	case "true":
		return "True"
	case "false":
		return "False"
	}
	if numericConst.MatchString(v) {
		return v
	}
	return "\"" + v + "\""
}
