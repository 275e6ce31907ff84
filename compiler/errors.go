// Package compiler turns a stored BASIC program (line number -> source
// text) into a flat vm.Program, following the single-pass
// statement/expression compiler described in spec.md §4.3.
package compiler

import "github.com/pkg/errors"

// CompileError is a compile-time failure: a syntax error caught while
// parsing a line, or an unresolved GOTO/GOSUB/ON target found during
// finalization.
type CompileError struct {
	Kind string
	Line int
	Col  int
	Msg  string
}

func (e *CompileError) Error() string {
	if e.Col != 0 {
		return errors.Errorf("%s (line %d, col %d): %s", e.Kind, e.Line, e.Col, e.Msg).Error()
	}
	return errors.Errorf("%s (line %d): %s", e.Kind, e.Line, e.Msg).Error()
}

func syntaxErr(line, col int, msg string) *CompileError {
	return &CompileError{Kind: "SYNTAX ERROR", Line: line, Col: col, Msg: msg}
}

func undefStatement(line int, msg string) *CompileError {
	return &CompileError{Kind: "UNDEF'D STATEMENT", Line: line, Msg: msg}
}
