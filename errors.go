package main

import (
	"fmt"
	"strings"
)

// errors.go defines the per-stage error variants surfaced by the pipeline.
// Each carries the offending line so the driver can report a position
// without re-scanning the source.

type lexError struct {
	line int
	msg  string
}

func (e *lexError) Error() string {
	return fmt.Sprintf("Lexer Error: line %d: %s", e.line, e.msg)
}

type parseError struct {
	line int
	msg  string
}

func (e *parseError) Error() string {
	return fmt.Sprintf("Parse Error: line %d: %s", e.line, e.msg)
}

type semanticError struct {
	msg string
}

func (e *semanticError) Error() string {
	return "Semantic Error: " + e.msg
}

type emitError struct {
	fn  string
	msg string
}

func (e *emitError) Error() string {
	return fmt.Sprintf("Codegen Error: function '%s': %s", e.fn, e.msg)
}

// ErrorList aggregates several errors into one.
type ErrorList []error

func (l ErrorList) Error() string {
	msgs := make([]string, len(l))
	for i, e := range l {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}

// aggregates multiple errors.
// strips out nils (may modify the input list).
func multiError(errors ...error) error {
	j := 0
	for i := range errors {
		if errors[i] != nil {
			if i != j {
				errors[j] = errors[i]
			}
			j++
		}
	}
	switch j {
	case 0:
		return nil
	case 1:
		return errors[0]
	default:
		return ErrorList(errors[:j])
	}
}
