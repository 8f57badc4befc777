package main

import (
	"bytes"
	"fmt"
	"io"
)

// this file pretty-prints IR functions for debugging

func printIR(w io.Writer, funcs []*irFunc) {
	var buf bytes.Buffer
	for _, f := range funcs {
		fmt.Fprintf(w, "FUNCTION %s", f.name)
		if len(f.params) > 0 {
			fmt.Fprintf(w, "(")
			for i, p := range f.params {
				if i != 0 {
					fmt.Fprintf(w, ", ")
				}
				fmt.Fprintf(w, "%s", p)
			}
			fmt.Fprintf(w, ")")
		}
		fmt.Fprintf(w, ":\n")
		for i, ins := range f.code {
			fmt.Fprintf(w, "\t%3d: %s\n", i, ins.debugstr(&buf))
		}
	}
}

func (ins irInstr) debugstr(b *bytes.Buffer) string {
	b.Reset()
	b.WriteString(ins.op.String())
	for i, operand := range ins.operands {
		if i == 0 {
			b.WriteString(" ")
		} else {
			b.WriteString(", ")
		}
		b.WriteString(operand)
	}
	return b.String()
}
