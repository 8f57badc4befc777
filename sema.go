package main

import (
	"fmt"
	"io"
	"sort"
)

// sema.go resolves names over a lexical scope stack and rejects programs
// that use undeclared or uninitialized bindings, redefine names in one
// scope, return outside a function, or call with the wrong arity.

type symbolKind int

const (
	symVariable symbolKind = iota
	symFunction
)

type symbol struct {
	kind        symbolKind
	initialized bool
	paramCount  int // functions only
}

type scope struct {
	symbols map[string]*symbol
	parent  *scope
}

func newscope(parent *scope) *scope {
	return &scope{symbols: make(map[string]*symbol), parent: parent}
}

// define binds name in this scope; it reports false if the name is taken.
func (s *scope) define(name string, sym *symbol) bool {
	if _, ok := s.symbols[name]; ok {
		return false
	}
	s.symbols[name] = sym
	return true
}

// isDefined checks this scope only, not the chain.
func (s *scope) isDefined(name string) bool {
	_, ok := s.symbols[name]
	return ok
}

// resolve walks the scope chain from here to the root.
func (s *scope) resolve(name string) *symbol {
	if sym, ok := s.symbols[name]; ok {
		return sym
	}
	if s.parent != nil {
		return s.parent.resolve(name)
	}
	return nil
}

type analyzer struct {
	scope      *scope // innermost open scope; the root is the global scope
	inFunction bool
}

func newAnalyzer() *analyzer {
	return &analyzer{scope: newscope(nil)}
}

// analyze walks the program depth-first. Every scope opened is closed on
// all exit paths; the global scope survives for diagnostics.
func (a *analyzer) analyze(prog *Program) error {
	for _, stmt := range prog.Stmts {
		if err := a.visitStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (a *analyzer) enterScope() {
	a.scope = newscope(a.scope)
}

func (a *analyzer) exitScope() {
	a.scope = a.scope.parent
}

func (a *analyzer) visitStmt(stmt Stmt) error {
	switch s := stmt.(type) {
	case *VarDecl:
		if a.scope.isDefined(s.Name) {
			return &semanticError{msg: fmt.Sprintf("Variable '%s' is already defined in this scope", s.Name)}
		}
		// the initializer cannot see the new binding
		if s.Init != nil {
			if err := a.visitExpr(s.Init); err != nil {
				return err
			}
		}
		a.scope.define(s.Name, &symbol{kind: symVariable, initialized: s.Init != nil})
		return nil

	case *FuncDecl:
		if a.scope.isDefined(s.Name) {
			return &semanticError{msg: fmt.Sprintf("Function '%s' is already defined in this scope", s.Name)}
		}
		a.scope.define(s.Name, &symbol{kind: symFunction, initialized: true, paramCount: len(s.Params)})

		a.enterScope()
		prev := a.inFunction
		a.inFunction = true
		err := a.defineParams(s)
		if err == nil {
			err = a.visitStmt(s.Body)
		}
		a.inFunction = prev
		a.exitScope()
		return err

	case *ExprStmt:
		return a.visitExpr(s.X)

	case *IfStmt:
		if err := a.visitExpr(s.Cond); err != nil {
			return err
		}
		a.enterScope()
		err := a.visitStmt(s.Then)
		a.exitScope()
		if err != nil {
			return err
		}
		if s.Else != nil {
			a.enterScope()
			err = a.visitStmt(s.Else)
			a.exitScope()
		}
		return err

	case *WhileStmt:
		if err := a.visitExpr(s.Cond); err != nil {
			return err
		}
		a.enterScope()
		err := a.visitStmt(s.Body)
		a.exitScope()
		return err

	case *LoopInStmt:
		if err := a.visitExpr(s.Iterable); err != nil {
			return err
		}
		a.enterScope()
		a.scope.define(s.Var, &symbol{kind: symVariable, initialized: true})
		err := a.visitStmt(s.Body)
		a.exitScope()
		return err

	case *LoopTimesStmt:
		if err := a.visitExpr(s.Count); err != nil {
			return err
		}
		a.enterScope()
		err := a.visitStmt(s.Body)
		a.exitScope()
		return err

	case *ReturnStmt:
		if !a.inFunction {
			return &semanticError{msg: "Cannot return from outside a function"}
		}
		if s.Value != nil {
			return a.visitExpr(s.Value)
		}
		return nil

	case *BlockStmt:
		for _, stmt := range s.Stmts {
			if err := a.visitStmt(stmt); err != nil {
				return err
			}
		}
		return nil

	case *PrintStmt:
		return a.visitExpr(s.X)

	case *InputStmt:
		sym := a.scope.resolve(s.Var)
		if sym == nil {
			return &semanticError{msg: fmt.Sprintf("Variable '%s' is not defined", s.Var)}
		}
		sym.initialized = true
		return nil
	}
	panic(fmt.Sprintf("unhandled case in visitStmt: %T", stmt))
}

func (a *analyzer) defineParams(fn *FuncDecl) error {
	for _, param := range fn.Params {
		if a.scope.isDefined(param) {
			return &semanticError{msg: fmt.Sprintf("Parameter '%s' is already defined in function '%s'", param, fn.Name)}
		}
		a.scope.define(param, &symbol{kind: symVariable, initialized: true})
	}
	return nil
}

func (a *analyzer) visitExpr(expr Expr) error {
	switch e := expr.(type) {
	case *LiteralExpr:
		return nil

	case *VarExpr:
		sym := a.scope.resolve(e.Name)
		if sym == nil {
			return &semanticError{msg: fmt.Sprintf("Variable '%s' is not defined", e.Name)}
		}
		if !sym.initialized {
			return &semanticError{msg: fmt.Sprintf("Variable '%s' is not initialized", e.Name)}
		}
		return nil

	case *BinExpr:
		err1 := a.visitExpr(e.Left)
		err2 := a.visitExpr(e.Right)
		if err := multiError(err1, err2); err != nil {
			return err
		}
		if e.Op == tAssign {
			switch lhs := e.Left.(type) {
			case *VarExpr:
				sym := a.scope.resolve(lhs.Name)
				if sym == nil {
					return &semanticError{msg: fmt.Sprintf("Variable '%s' is not defined", lhs.Name)}
				}
				sym.initialized = true
			case *IndexExpr:
				// base and index were checked above
			default:
				return &semanticError{msg: "Invalid assignment target"}
			}
		}
		return nil

	case *UnaryExpr:
		return a.visitExpr(e.Operand)

	case *CallExpr:
		if isConversion(e.Callee) {
			if len(e.Args) != 1 {
				return &semanticError{msg: fmt.Sprintf("Built-in function '%s' expects 1 argument, but got %d", e.Callee, len(e.Args))}
			}
		} else {
			sym := a.scope.resolve(e.Callee)
			if sym == nil {
				return &semanticError{msg: fmt.Sprintf("Function '%s' is not defined", e.Callee)}
			}
			if sym.kind != symFunction {
				return &semanticError{msg: fmt.Sprintf("'%s' is not a function", e.Callee)}
			}
			if sym.paramCount != len(e.Args) {
				return &semanticError{msg: fmt.Sprintf("Function '%s' expects %d arguments, but got %d", e.Callee, sym.paramCount, len(e.Args))}
			}
		}
		for _, arg := range e.Args {
			if err := a.visitExpr(arg); err != nil {
				return err
			}
		}
		return nil

	case *ArrayExpr:
		for _, elem := range e.Elems {
			if err := a.visitExpr(elem); err != nil {
				return err
			}
		}
		return nil

	case *IndexExpr:
		err1 := a.visitExpr(e.Array)
		err2 := a.visitExpr(e.Index)
		return multiError(err1, err2)

	case *MemberExpr:
		// member existence cannot be checked without type information
		return a.visitExpr(e.Object)
	}
	panic(fmt.Sprintf("unhandled case in visitExpr: %T", expr))
}

// isConversion reports whether name is one of the built-in conversion
// functions, which take exactly one argument.
func isConversion(name string) bool {
	switch name {
	case "int", "float", "str", "bool":
		return true
	}
	return false
}

// printSymbolTable dumps the global scope for verbose diagnostics.
func (a *analyzer) printSymbolTable(w io.Writer) {
	root := a.scope
	for root.parent != nil {
		root = root.parent
	}

	names := make([]string, 0, len(root.symbols))
	for name := range root.symbols {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "Symbol Table:")
	for _, name := range names {
		sym := root.symbols[name]
		if sym.kind == symVariable {
			if sym.initialized {
				fmt.Fprintf(w, "  %s: VARIABLE\n", name)
			} else {
				fmt.Fprintf(w, "  %s: VARIABLE (uninitialized)\n", name)
			}
		} else {
			fmt.Fprintf(w, "  %s: FUNCTION (%d parameters)\n", name, sym.paramCount)
		}
	}
}
