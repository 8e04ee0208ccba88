// Package cerrors holds the single structured error kind that every stage
// of the compiler (lexer, symbol table, parser, code generators) reports
// failures through.
package cerrors

import (
	"fmt"
	"strings"
)

// Pos is a 1-based source position.
type Pos struct {
	Line   int
	Column int
}

// CompilationError is the one error kind the compiler ever returns. It
// carries a message plus, when available, the source position and a
// preview of the offending line.
type CompilationError struct {
	Msg    string
	Pos    Pos
	HasPos bool
	Lines  []string
	HasSrc bool
}

// New creates a CompilationError with no position information.
func New(msg string) *CompilationError {
	return &CompilationError{Msg: msg}
}

// NewAt creates a CompilationError carrying a source position and, when
// lines is non-nil, a preview of the offending line.
func NewAt(msg string, pos Pos, lines []string) *CompilationError {
	e := &CompilationError{Msg: msg, Pos: pos, HasPos: true}
	if lines != nil {
		e.Lines = lines
		e.HasSrc = true
	}
	return e
}

// Error implements the error interface, formatting as:
//
//	ERROR: <message>
//	(<line>:<column>)	near: `...<±10-char window>...`
//
// Position and preview are omitted when not available.
func (e *CompilationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ERROR: %s", e.Msg)

	if e.HasPos {
		fmt.Fprintf(&b, "\n(%d:%d)", e.Pos.Line, e.Pos.Column)
	}

	if e.HasSrc && e.Pos.Line >= 1 && e.Pos.Line <= len(e.Lines) {
		line := e.Lines[e.Pos.Line-1]
		col0 := e.Pos.Column - 1
		start := col0 - 10
		if start < 0 {
			start = 0
		}
		end := col0 + 10
		if end > len(line) {
			end = len(line)
		}
		if start > len(line) {
			start = len(line)
		}
		if start > end {
			start = end
		}
		fmt.Fprintf(&b, "\tnear: `...%s...`", line[start:end])
	}

	return b.String()
}
