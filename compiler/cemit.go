// cemit.go implements the restricted C translation: a direct, one-to-one
// mapping from quads to labeled C statements. It only supports
// function-free programs -- synthesizing static links in C would defeat
// the point of having this path be a trivial teaching aid.
package compiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/skx/cimple/cerrors"
	"github.com/skx/cimple/ir"
)

// generateC renders the parser's quad sequence as a standalone C program.
// It fails if the program contains any block besides the outermost one,
// since inter-frame references have no equivalent here.
func (p *parser) generateC() (string, error) {
	vars := map[string]bool{}

	for _, q := range p.quads.Quads {
		if q.Op == ir.OpBeginBlock && q.Label != "L_1" {
			return "", cerrors.New("Cannot generate C code for programs that include functions and procedures.")
		}
		for _, v := range []string{q.X, q.Y, q.Z} {
			if v == ir.ModeCV || v == ir.ModeREF || v == ir.ModeRET {
				continue
			}
			if strings.HasPrefix(v, "L_") {
				continue
			}
			if looksLikeIdentifier(v) {
				vars[v] = true
			}
		}
	}

	names := make([]string, 0, len(vars))
	for v := range vars {
		names = append(names, v)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("#include <stdlib.h>\n#include <stdio.h>\nint main() {\n")
	if len(names) > 0 {
		fmt.Fprintf(&b, "int %s;\n", strings.Join(names, ", "))
	}

	for _, q := range p.quads.Quads {
		stmt, err := quadToC(q)
		if err != nil {
			return "", err
		}
		// No-op quads still get a labeled empty statement, since jumps may
		// target them.
		fmt.Fprintf(&b, "%s:\t%s;\n", q.Label, stmt)
	}

	b.WriteString("\nreturn 0;\n}")
	return b.String(), nil
}

func quadToC(q *ir.Quad) (string, error) {
	switch {
	case ir.IsArithmetic(q.Op):
		return fmt.Sprintf("%s = %s %s %s", q.Z, q.X, q.Op, q.Y), nil

	case ir.IsRelational(q.Op):
		op := q.Op
		switch q.Op {
		case ir.OpNeq:
			op = "!="
		case ir.OpEq:
			op = "=="
		}
		return fmt.Sprintf("if (%s %s %s) goto %s", q.X, op, q.Y, q.Z), nil

	case q.Op == ir.OpJump:
		return fmt.Sprintf("goto %s", q.Z), nil

	case q.Op == ir.OpAssign:
		return fmt.Sprintf("%s = %s", q.Z, q.X), nil

	case q.Op == ir.OpOut:
		return fmt.Sprintf("printf(\"%%d\\n\", %s)", q.X), nil

	case q.Op == ir.OpInp:
		return fmt.Sprintf("scanf(\"%%d\", &%s)", q.X), nil

	case q.Op == ir.OpBeginBlock, q.Op == ir.OpEndBlock, q.Op == ir.OpHalt:
		return "", nil
	}

	return "", cerrors.New(fmt.Sprintf("no C equivalent for quad operator %q", q.Op))
}

func looksLikeIdentifier(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')) {
		return false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_') {
			return false
		}
	}
	return true
}
