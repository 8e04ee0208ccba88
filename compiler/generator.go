// generator.go lowers the quads belonging to one block into RISC-style
// assembly. It is invoked once per block, synchronously, right before the
// parser pops that block's scope -- so every address it resolves walks a
// scope stack that still matches the lexical nesting the quads were
// emitted under.
package compiler

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/skx/cimple/ir"
	"github.com/skx/cimple/symtab"
)

var addrCategories = []symtab.Category{symtab.Variable, symtab.TmpVariable, symtab.Parameter}

var arithMnemonics = map[string]string{
	ir.OpAdd: "add",
	ir.OpSub: "sub",
	ir.OpMul: "mul",
	ir.OpDiv: "div",
}

var relMnemonics = map[string]string{
	ir.OpEq:  "beq",
	ir.OpNeq: "bne",
	ir.OpGt:  "bgt",
	ir.OpLt:  "blt",
	ir.OpGe:  "bge",
	ir.OpLe:  "ble",
}

// asmGenerator accumulates assembly lines across successive compileBlock
// calls, one per block, in the nesting order the parser closes them.
type asmGenerator struct {
	st    *symtab.Table
	quads *ir.Program
	lines []string
	trace bool
}

func newAsmGenerator(st *symtab.Table, quads *ir.Program) *asmGenerator {
	return newAsmGeneratorWithTrace(st, quads, false)
}

// newAsmGeneratorWithTrace creates an asmGenerator with diagnostic tracing
// to stderr enabled or disabled, as loaded from a config.Config/--trace.
func newAsmGeneratorWithTrace(st *symtab.Table, quads *ir.Program, trace bool) *asmGenerator {
	return &asmGenerator{st: st, quads: quads, trace: trace}
}

func (g *asmGenerator) currentScope() int {
	return g.st.CurrentScopeIndex()
}

// gnvlcode computes the address of a non-local variable into t0 by
// chasing the static (access) link from the current frame, once per
// enclosing scope between here and the variable's home scope.
func (g *asmGenerator) gnvlcode(name string) []string {
	ent := g.st.Find(name, addrCategories, 0)
	hops := g.currentScope() - ent.Scope

	asm := []string{"lw t0,-4(sp)"}
	for i := 0; i < hops; i++ {
		asm = append(asm, "lw t0,-4(t0)")
	}
	return append(asm, fmt.Sprintf("addi t0,t0,-%d", ent.Offset))
}

func (g *asmGenerator) loadvr(value, reg string) []string {
	if n, err := strconv.Atoi(value); err == nil {
		return []string{fmt.Sprintf("li %s,%d", reg, n)}
	}
	return g.slVr(value, reg, false)
}

func (g *asmGenerator) storerv(reg, name string) []string {
	return g.slVr(name, reg, true)
}

// slVr loads (store=false) or stores (store=true) reg against the frame
// slot backing name: direct sp-relative access in the current scope,
// access-link chasing for an ancestor scope, and an extra indirection for
// inout parameters either way.
func (g *asmGenerator) slVr(name, reg string, store bool) []string {
	ent := g.st.Find(name, addrCategories, 0)
	stmt := "lw"
	if store {
		stmt = "sw"
	}

	if ent.Offset == 0 {
		return []string{fmt.Sprintf("%s %s,-%d(gp)", stmt, reg, ent.Offset)}
	}

	if ent.Scope == g.currentScope() {
		if ent.Category == symtab.Parameter && ent.Mode == symtab.ModeInout {
			return []string{
				fmt.Sprintf("lw t0,-%d(sp)", ent.Offset),
				fmt.Sprintf("%s %s,(t0)", stmt, reg),
			}
		}
		return []string{fmt.Sprintf("%s %s,-%d(sp)", stmt, reg, ent.Offset)}
	}

	asm := g.gnvlcode(name)
	if ent.Category == symtab.Parameter && ent.Mode == symtab.ModeInout {
		asm = append(asm, "lw t0,(t0)")
	}
	return append(asm, fmt.Sprintf("%s %s,(t0)", stmt, reg))
}

// quadToAsm lowers a single quad. frameLength is the enclosing block's
// activation-record size; parIndex is this quad's position in the run of
// 'par' quads immediately preceding the next 'call', used to place actual
// parameters in the callee's parameter slots (which occupy, in formal
// order, one slot of the symbol table's SlotSize each, starting at the
// table's BaseOffset).
func (g *asmGenerator) quadToAsm(q *ir.Quad, frameLength, parIndex int) []string {
	asm := []string{q.Label + ":"}

	if g.trace {
		fmt.Fprintf(os.Stderr, "generator: quadToAsm: %s (%s, %s, %s, %s)\n", q.Label, q.Op, q.X, q.Y, q.Z)
	}

	switch {
	case q.Op == ir.OpBeginBlock:
		if q.Z == "main" {
			return append(asm, "Lmain:", fmt.Sprintf("addi sp,sp,%d", frameLength), "mv gp,sp")
		}
		return append(asm, fmt.Sprintf("addi sp,sp,%d", frameLength), "sw ra,(sp)")

	case q.Op == ir.OpEndBlock:
		return asm

	case q.Op == ir.OpAssign:
		asm = append(asm, g.loadvr(q.X, "t1")...)
		return append(asm, g.storerv("t1", q.Z)...)

	case ir.IsArithmetic(q.Op):
		asm = append(asm, g.loadvr(q.X, "t1")...)
		asm = append(asm, g.loadvr(q.Y, "t2")...)
		asm = append(asm, fmt.Sprintf("%s t1,t1,t2", arithMnemonics[q.Op]))
		return append(asm, g.storerv("t1", q.Z)...)

	case q.Op == ir.OpJump:
		return append(asm, fmt.Sprintf("j %s", q.Z))

	case ir.IsRelational(q.Op):
		asm = append(asm, g.loadvr(q.X, "t1")...)
		asm = append(asm, g.loadvr(q.Y, "t2")...)
		return append(asm, fmt.Sprintf("%s t1,t2,%s", relMnemonics[q.Op], q.Z))

	case q.Op == ir.OpRetv:
		asm = append(asm, g.loadvr(q.X, "t1")...)
		return append(asm, "lw t0,-8(sp)", "sw t1,(t0)")

	case q.Op == ir.OpCall:
		ent := g.st.Find(q.X, []symtab.Category{symtab.Function, symtab.Procedure}, 0)
		if ent != nil && ent.Scope == g.currentScope() {
			asm = append([]string{"lw t0,-4(sp)", "sw t0,-4(fp)"}, asm...)
		} else {
			asm = append([]string{"sw sp,-4(fp)"}, asm...)
		}
		return append(asm,
			fmt.Sprintf("addi sp,sp,%d", frameLength),
			fmt.Sprintf("jal %s", q.X),
			fmt.Sprintf("add sp,sp,-%d", frameLength))

	case q.Op == ir.OpOut:
		asm = append(asm, g.loadvr(q.X, "t1")...)
		return append(asm, "mv a0,t1", "li a7,1", "ecall", "la a0,str_nl", "li a7,4", "ecall")

	case q.Op == ir.OpInp:
		asm = append(asm, "li a7,5", "ecall")
		return append(asm, g.storerv("a0", q.X)...)

	case q.Op == ir.OpPar:
		return g.parToAsm(asm, q, parIndex)

	case q.Op == ir.OpHalt:
		return append(asm, "li a0,0", "li a7,93", "ecall")
	}

	return asm
}

func (g *asmGenerator) parToAsm(asm []string, q *ir.Quad, parIndex int) []string {
	slot := g.st.BaseOffset + g.st.SlotSize*parIndex

	switch q.Y {
	case ir.ModeCV:
		asm = append(asm, g.loadvr(q.X, "t0")...)
		return append(asm, fmt.Sprintf("sw t0,-%d(fp)", slot))

	case ir.ModeREF:
		ent := g.st.Find(q.X, addrCategories, 0)
		if ent != nil && ent.Scope == g.currentScope() {
			asm = append(asm, fmt.Sprintf("addi t0,sp,-%d", ent.Offset))
		} else {
			asm = append(asm, g.gnvlcode(q.X)...)
		}
		return append(asm, fmt.Sprintf("sw t0,-%d(fp)", slot))

	case ir.ModeRET:
		ent := g.st.Find(q.X, addrCategories, 0)
		asm = append(asm, fmt.Sprintf("addi t0,sp,-%d", ent.Offset))
		return append(asm, "sw t0,-8(fp)")
	}

	return asm
}

// compileBlock scans the global quad sequence for the contiguous range
// belonging to blockName -- from its begin_block to its matching
// end_block -- and appends the lowered assembly to g.lines.
func (g *asmGenerator) compileBlock(blockName string) {
	frameLength := g.st.CurrentScope().Offset
	inside := false
	parIndex := 0

	for _, q := range g.quads.Quads {
		if q.X == blockName && q.Op == ir.OpBeginBlock {
			inside = true
		}
		if inside {
			if q.Op != ir.OpPar {
				parIndex = 0
			}
			g.lines = append(g.lines, g.quadToAsm(q, frameLength, parIndex)...)
			if q.Op == ir.OpPar {
				parIndex++
			}
		}
		if q.X == blockName && q.Op == ir.OpEndBlock {
			break
		}
	}
}

// output renders the fixed .data/.text preamble plus every block compiled
// so far, tab-indenting instructions and leaving labels flush-left.
func (g *asmGenerator) output() string {
	var b strings.Builder
	b.WriteString(".data\n")
	b.WriteString("str_nl: .asciiz \"\\n\"\n")
	b.WriteString(".text\n")
	b.WriteString(".global __start\n")
	b.WriteString("__start:\n")
	b.WriteString("\tj Lmain\n")

	for _, line := range g.lines {
		if strings.HasSuffix(line, ":") {
			b.WriteString(line + "\n")
		} else {
			b.WriteString("\t" + line + "\n")
		}
	}
	return b.String()
}
