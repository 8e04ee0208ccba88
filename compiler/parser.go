// parser.go is the recursive-descent heart of the compiler: it walks the
// token stream produced by the lexer, builds and queries the symbol
// table, emits quads, backpatches jump targets for structured control
// flow, and invokes the assembly generator at the close of every block.
package compiler

import (
	"fmt"
	"os"

	"github.com/skx/cimple/cerrors"
	"github.com/skx/cimple/ir"
	"github.com/skx/cimple/symtab"
	"github.com/skx/cimple/token"
)

var relOpLiterals = []string{"=", "<=", ">=", ">", "<", "<>"}

// parser drives a single pass over the token stream.
type parser struct {
	tokens []token.Token
	idx    int
	lines  []string

	quads   *ir.Program
	st      *symtab.Table
	tempSeq int
	asm     *asmGenerator

	trace bool
}

func newParser(tokens []token.Token, lines []string, trace bool, st *symtab.Table) *parser {
	quads := &ir.Program{}
	return &parser{
		tokens: tokens,
		lines:  lines,
		quads:  quads,
		st:     st,
		asm:    newAsmGeneratorWithTrace(st, quads, trace),
		trace:  trace,
	}
}

// next returns the token at the cursor, advancing it unless peek is true.
// Running off the end of the token stream is the sole source of the
// UnexpectedEOF diagnostic: the grammar always expects a further token
// (even the final '.') so there is never a valid reason to run dry.
func (p *parser) next(peek bool) (token.Token, error) {
	if p.idx >= len(p.tokens) {
		return token.Token{}, cerrors.New("Program should end with a dot (.)")
	}
	t := p.tokens[p.idx]
	if !peek {
		p.idx++
	}
	return t, nil
}

func (p *parser) peek() (token.Token, error) {
	return p.next(true)
}

func (p *parser) pos(t token.Token) cerrors.Pos {
	return cerrors.Pos{Line: t.Line, Column: t.Column}
}

func (p *parser) errAt(t token.Token, format string, args ...interface{}) error {
	return cerrors.NewAt(fmt.Sprintf(format, args...), p.pos(t), p.lines)
}

func (p *parser) assertValueIs(t token.Token, value string) error {
	if t.Literal != value {
		return p.errAt(t, "Unexpected: '%s', closest expected value: '%s'.", t.Literal, value)
	}
	return nil
}

func (p *parser) assertValueIn(t token.Token, values []string) error {
	for _, v := range values {
		if t.Literal == v {
			return nil
		}
	}
	return p.errAt(t, "Unexpected: '%s', expected one of: '%v'.", t.Literal, values)
}

func (p *parser) assertIsIdentifier(t token.Token) error {
	if t.Type == token.IDENT {
		return nil
	}
	if token.IsReserved(t.Literal) {
		return p.errAt(t, "Cannot use '%s' for a variable name.", t.Literal)
	}
	return p.errAt(t, "Expected an identifier, got: '%s'.", t.Literal)
}

// declare sets the symbol table's error context to t's position before
// delegating to Add, so an AlreadyDeclared failure reports where the
// duplicate name was written.
func (p *parser) declare(category symtab.Category, t token.Token, entity *symtab.Entity) error {
	p.st.SetErrorContext(p.pos(t), p.lines)
	return p.st.Add(category, t.Literal, entity)
}

func (p *parser) assertDeclared(t token.Token, categories []symtab.Category) error {
	p.st.SetErrorContext(p.pos(t), p.lines)
	return p.st.AssertDeclared(t.Literal, categories)
}

// newTemp allocates a fresh compiler temporary. Names are unique by
// construction, so the symbol-table insertion can never fail.
func (p *parser) newTemp() string {
	p.tempSeq++
	name := fmt.Sprintf("T_%d", p.tempSeq)
	_ = p.st.Add(symtab.TmpVariable, name, &symtab.Entity{})
	return name
}

func (p *parser) parseProgram() error {
	t, err := p.next(false)
	if err != nil {
		return err
	}
	if err := p.assertValueIs(t, "program"); err != nil {
		return err
	}

	ident, err := p.next(false)
	if err != nil {
		return err
	}
	if err := p.assertIsIdentifier(ident); err != nil {
		return err
	}

	p.st.CreateScope(ident.Literal)
	if err := p.parseBlock(ident.Literal, true); err != nil {
		return err
	}
	p.st.PopScope()

	t, err = p.next(false)
	if err != nil {
		return err
	}
	return p.assertValueIs(t, ".")
}

func (p *parser) parseBlock(name string, isMain bool) error {
	t, err := p.next(false)
	if err != nil {
		return err
	}
	if err := p.assertValueIs(t, "{"); err != nil {
		return err
	}

	if err := p.parseDeclarations(); err != nil {
		return err
	}
	if err := p.parseSubprograms(); err != nil {
		return err
	}

	mainFlag := ""
	if isMain {
		mainFlag = "main"
	}
	p.quads.New(ir.OpBeginBlock, name, "", mainFlag)

	if err := p.parseBlockStatements(); err != nil {
		return err
	}

	if isMain {
		p.quads.New(ir.OpHalt, "", "", "")
	}
	p.quads.New(ir.OpEndBlock, name, "", "")

	t, err = p.next(false)
	if err != nil {
		return err
	}
	if err := p.assertValueIs(t, "}"); err != nil {
		return err
	}

	if p.trace {
		fmt.Fprintf(os.Stderr, "parser: parseBlock: generating assembly for block %q\n", name)
	}
	p.asm.compileBlock(name)
	return nil
}

func (p *parser) parseDeclarations() error {
	for {
		t, err := p.peek()
		if err != nil {
			return err
		}
		if t.Literal != "declare" {
			return nil
		}
		if _, err := p.next(false); err != nil {
			return err
		}
		if err := p.parseVarlist(); err != nil {
			return err
		}
		t, err = p.next(false)
		if err != nil {
			return err
		}
		if err := p.assertValueIs(t, ";"); err != nil {
			return err
		}
	}
}

func (p *parser) parseVarlist() error {
	t, err := p.peek()
	if err != nil {
		return err
	}
	if t.Type != token.IDENT {
		return nil
	}

	for {
		ident, err := p.next(false)
		if err != nil {
			return err
		}
		if err := p.assertIsIdentifier(ident); err != nil {
			return err
		}
		if err := p.declare(symtab.Variable, ident, &symtab.Entity{}); err != nil {
			return err
		}

		t, err := p.peek()
		if err != nil {
			return err
		}
		if t.Literal != "," {
			return nil
		}
		if _, err := p.next(false); err != nil {
			return err
		}
	}
}

func (p *parser) parseSubprograms() error {
	for {
		t, err := p.peek()
		if err != nil {
			return err
		}
		if t.Literal != "function" && t.Literal != "procedure" {
			return nil
		}
		if err := p.parseSubprogram(); err != nil {
			return err
		}
	}
}

type formalParam struct {
	mode symtab.Mode
	tok  token.Token
}

func (p *parser) parseSubprogram() error {
	typ, err := p.next(false)
	if err != nil {
		return err
	}
	if err := p.assertValueIn(typ, []string{"function", "procedure"}); err != nil {
		return err
	}

	ident, err := p.next(false)
	if err != nil {
		return err
	}
	if err := p.assertIsIdentifier(ident); err != nil {
		return err
	}

	t, err := p.next(false)
	if err != nil {
		return err
	}
	if err := p.assertValueIs(t, "("); err != nil {
		return err
	}

	params, err := p.parseFormalParlist()
	if err != nil {
		return err
	}

	t, err = p.next(false)
	if err != nil {
		return err
	}
	if err := p.assertValueIs(t, ")"); err != nil {
		return err
	}

	category := symtab.Function
	if typ.Literal == "procedure" {
		category = symtab.Procedure
	}

	signature := make([]symtab.Mode, len(params))
	for i, prm := range params {
		signature[i] = prm.mode
	}

	entity := &symtab.Entity{StartQuad: p.quads.NextLabel(), Signature: signature}
	if err := p.declare(category, ident, entity); err != nil {
		return err
	}

	p.st.CreateScope(ident.Literal)
	for _, prm := range params {
		if err := p.declare(symtab.Parameter, prm.tok, &symtab.Entity{Mode: prm.mode}); err != nil {
			return err
		}
	}

	if err := p.parseBlock(ident.Literal, false); err != nil {
		return err
	}

	entity.FrameLength = p.st.CurrentScope().Offset
	p.st.PopScope()
	return nil
}

func (p *parser) parseFormalParlist() ([]formalParam, error) {
	var params []formalParam

	t, err := p.peek()
	if err != nil {
		return nil, err
	}
	if t.Literal != "in" && t.Literal != "inout" {
		return params, nil
	}

	for {
		modeTok, err := p.next(false)
		if err != nil {
			return nil, err
		}
		if err := p.assertValueIn(modeTok, []string{"in", "inout"}); err != nil {
			return nil, err
		}

		ident, err := p.next(false)
		if err != nil {
			return nil, err
		}
		if err := p.assertIsIdentifier(ident); err != nil {
			return nil, err
		}

		mode := symtab.ModeIn
		if modeTok.Literal == "inout" {
			mode = symtab.ModeInout
		}
		params = append(params, formalParam{mode: mode, tok: ident})

		t, err := p.peek()
		if err != nil {
			return nil, err
		}
		if t.Literal != "," {
			return params, nil
		}
		if _, err := p.next(false); err != nil {
			return nil, err
		}
	}
}

func (p *parser) parseStatements() error {
	t, err := p.peek()
	if err != nil {
		return err
	}
	if t.Literal == "{" {
		if _, err := p.next(false); err != nil {
			return err
		}
		if err := p.parseBlockStatements(); err != nil {
			return err
		}
		t, err := p.next(false)
		if err != nil {
			return err
		}
		return p.assertValueIs(t, "}")
	}

	if err := p.parseStatement(); err != nil {
		return err
	}
	t, err = p.next(false)
	if err != nil {
		return err
	}
	return p.assertValueIs(t, ";")
}

func (p *parser) parseBlockStatements() error {
	for {
		if err := p.parseStatement(); err != nil {
			return err
		}
		t, err := p.peek()
		if err != nil {
			return err
		}
		if t.Literal != ";" {
			return nil
		}
		if _, err := p.next(false); err != nil {
			return err
		}
	}
}

// parseStatement dispatches on the next token. An unrecognized token is
// not consumed and not an error: the grammar allows the empty statement,
// and the caller (parseStatements/parseBlockStatements) is responsible for
// the trailing ';' or '}' that follows.
func (p *parser) parseStatement() error {
	t, err := p.peek()
	if err != nil {
		return err
	}
	if p.trace {
		fmt.Fprintf(os.Stderr, "parser: parseStatement: dispatching on %q\n", t.Literal)
	}

	switch {
	case t.Type == token.IDENT:
		return p.parseAssign()
	case t.Literal == "if":
		return p.parseIf()
	case t.Literal == "while":
		return p.parseWhile()
	case t.Literal == "switchcase":
		return p.parseSwitchcase()
	case t.Literal == "forcase":
		return p.parseForcase()
	case t.Literal == "incase":
		return p.parseIncase()
	case t.Literal == "call":
		return p.parseCall()
	case t.Literal == "return":
		return p.parseReturn()
	case t.Literal == "input":
		return p.parseInput()
	case t.Literal == "print":
		return p.parsePrint()
	default:
		return nil
	}
}

func (p *parser) parseAssign() error {
	ident, err := p.next(false)
	if err != nil {
		return err
	}
	if err := p.assertIsIdentifier(ident); err != nil {
		return err
	}
	if err := p.assertDeclared(ident, []symtab.Category{symtab.Variable, symtab.Parameter}); err != nil {
		return err
	}

	t, err := p.next(false)
	if err != nil {
		return err
	}
	if err := p.assertValueIs(t, ":="); err != nil {
		return err
	}

	value, err := p.parseExpression()
	if err != nil {
		return err
	}

	p.quads.New(ir.OpAssign, value, "", ident.Literal)
	return nil
}

func (p *parser) parseIf() error {
	if _, err := p.next(false); err != nil {
		return err
	}
	t, err := p.next(false)
	if err != nil {
		return err
	}
	if err := p.assertValueIs(t, "("); err != nil {
		return err
	}

	tf, err := p.parseCondition()
	if err != nil {
		return err
	}

	t, err = p.next(false)
	if err != nil {
		return err
	}
	if err := p.assertValueIs(t, ")"); err != nil {
		return err
	}

	ir.Backpatch(tf.T, p.quads.NextLabel())
	if err := p.parseStatements(); err != nil {
		return err
	}

	j := p.quads.New(ir.OpJump, "", "", "")
	ir.Backpatch(tf.F, p.quads.NextLabel())

	if err := p.parseElse(); err != nil {
		return err
	}
	ir.Backpatch([]*ir.Quad{j}, p.quads.NextLabel())
	return nil
}

func (p *parser) parseElse() error {
	t, err := p.peek()
	if err != nil {
		return err
	}
	if t.Literal != "else" {
		return nil
	}
	if _, err := p.next(false); err != nil {
		return err
	}
	return p.parseStatements()
}

func (p *parser) parseWhile() error {
	condLabel := p.quads.NextLabel()
	if _, err := p.next(false); err != nil {
		return err
	}
	t, err := p.next(false)
	if err != nil {
		return err
	}
	if err := p.assertValueIs(t, "("); err != nil {
		return err
	}

	tf, err := p.parseCondition()
	if err != nil {
		return err
	}

	t, err = p.next(false)
	if err != nil {
		return err
	}
	if err := p.assertValueIs(t, ")"); err != nil {
		return err
	}

	ir.Backpatch(tf.T, p.quads.NextLabel())
	if err := p.parseStatements(); err != nil {
		return err
	}

	p.quads.New(ir.OpJump, "", "", condLabel)
	ir.Backpatch(tf.F, p.quads.NextLabel())
	return nil
}

func (p *parser) parseSwitchcase() error {
	if _, err := p.next(false); err != nil {
		return err
	}
	var jumpOut []*ir.Quad

	for {
		t, err := p.peek()
		if err != nil {
			return err
		}
		if t.Literal != "case" {
			break
		}

		if _, err := p.next(false); err != nil {
			return err
		}
		t, err = p.next(false)
		if err != nil {
			return err
		}
		if err := p.assertValueIs(t, "("); err != nil {
			return err
		}

		tf, err := p.parseCondition()
		if err != nil {
			return err
		}

		t, err = p.next(false)
		if err != nil {
			return err
		}
		if err := p.assertValueIs(t, ")"); err != nil {
			return err
		}

		ir.Backpatch(tf.T, p.quads.NextLabel())
		if err := p.parseStatements(); err != nil {
			return err
		}

		jumpOut = append(jumpOut, p.quads.New(ir.OpJump, "", "", ""))
		ir.Backpatch(tf.F, p.quads.NextLabel())
	}

	t, err := p.next(false)
	if err != nil {
		return err
	}
	if err := p.assertValueIs(t, "default"); err != nil {
		return err
	}
	if err := p.parseStatements(); err != nil {
		return err
	}

	ir.Backpatch(jumpOut, p.quads.NextLabel())
	return nil
}

func (p *parser) parseForcase() error {
	if _, err := p.next(false); err != nil {
		return err
	}
	firstQuad := p.quads.NextLabel()

	for {
		t, err := p.peek()
		if err != nil {
			return err
		}
		if t.Literal != "case" {
			break
		}

		if _, err := p.next(false); err != nil {
			return err
		}
		t, err = p.next(false)
		if err != nil {
			return err
		}
		if err := p.assertValueIs(t, "("); err != nil {
			return err
		}

		tf, err := p.parseCondition()
		if err != nil {
			return err
		}

		t, err = p.next(false)
		if err != nil {
			return err
		}
		if err := p.assertValueIs(t, ")"); err != nil {
			return err
		}

		ir.Backpatch(tf.T, p.quads.NextLabel())
		if err := p.parseStatements(); err != nil {
			return err
		}

		p.quads.New(ir.OpJump, "", "", firstQuad)
		ir.Backpatch(tf.F, p.quads.NextLabel())
	}

	t, err := p.next(false)
	if err != nil {
		return err
	}
	if err := p.assertValueIs(t, "default"); err != nil {
		return err
	}
	return p.parseStatements()
}

func (p *parser) parseIncase() error {
	if _, err := p.next(false); err != nil {
		return err
	}
	firstQuad := p.quads.NextLabel()
	flag := p.quads.New(ir.OpAssign, "0", "", p.newTemp())

	for {
		t, err := p.peek()
		if err != nil {
			return err
		}
		if t.Literal != "case" {
			break
		}

		if _, err := p.next(false); err != nil {
			return err
		}
		t, err = p.next(false)
		if err != nil {
			return err
		}
		if err := p.assertValueIs(t, "("); err != nil {
			return err
		}

		tf, err := p.parseCondition()
		if err != nil {
			return err
		}

		ir.Backpatch(tf.T, p.quads.NextLabel())

		t, err = p.next(false)
		if err != nil {
			return err
		}
		if err := p.assertValueIs(t, ")"); err != nil {
			return err
		}

		if err := p.parseStatements(); err != nil {
			return err
		}

		p.quads.New(ir.OpAssign, "1", "", flag.Z)
		ir.Backpatch(tf.F, p.quads.NextLabel())
	}

	p.quads.New(ir.OpEq, flag.Z, "1", firstQuad)
	return nil
}

func (p *parser) parseCall() error {
	if _, err := p.next(false); err != nil {
		return err
	}
	ident, err := p.next(false)
	if err != nil {
		return err
	}
	if err := p.assertIsIdentifier(ident); err != nil {
		return err
	}
	if err := p.assertDeclared(ident, []symtab.Category{symtab.Procedure}); err != nil {
		return err
	}

	t, err := p.next(false)
	if err != nil {
		return err
	}
	if err := p.assertValueIs(t, "("); err != nil {
		return err
	}

	if err := p.parseActualParlist(); err != nil {
		return err
	}

	t, err = p.next(false)
	if err != nil {
		return err
	}
	if err := p.assertValueIs(t, ")"); err != nil {
		return err
	}

	p.quads.New(ir.OpCall, ident.Literal, "", "")
	return nil
}

func (p *parser) parseReturn() error {
	if _, err := p.next(false); err != nil {
		return err
	}
	t, err := p.next(false)
	if err != nil {
		return err
	}
	if err := p.assertValueIs(t, "("); err != nil {
		return err
	}

	value, err := p.parseExpression()
	if err != nil {
		return err
	}

	t, err = p.next(false)
	if err != nil {
		return err
	}
	if err := p.assertValueIs(t, ")"); err != nil {
		return err
	}

	p.quads.New(ir.OpRetv, value, "", "")
	return nil
}

func (p *parser) parseInput() error {
	if _, err := p.next(false); err != nil {
		return err
	}
	t, err := p.next(false)
	if err != nil {
		return err
	}
	if err := p.assertValueIs(t, "("); err != nil {
		return err
	}

	ident, err := p.next(false)
	if err != nil {
		return err
	}
	if err := p.assertIsIdentifier(ident); err != nil {
		return err
	}

	t, err = p.next(false)
	if err != nil {
		return err
	}
	if err := p.assertValueIs(t, ")"); err != nil {
		return err
	}

	p.quads.New(ir.OpInp, ident.Literal, "", "")
	return nil
}

func (p *parser) parsePrint() error {
	if _, err := p.next(false); err != nil {
		return err
	}
	t, err := p.next(false)
	if err != nil {
		return err
	}
	if err := p.assertValueIs(t, "("); err != nil {
		return err
	}

	value, err := p.parseExpression()
	if err != nil {
		return err
	}

	t, err = p.next(false)
	if err != nil {
		return err
	}
	if err := p.assertValueIs(t, ")"); err != nil {
		return err
	}

	p.quads.New(ir.OpOut, value, "", "")
	return nil
}

func (p *parser) parseActualParlist() error {
	t, err := p.peek()
	if err != nil {
		return err
	}
	if t.Literal != "in" && t.Literal != "inout" {
		return nil
	}

	for {
		if err := p.parseActualParitem(); err != nil {
			return err
		}
		t, err := p.peek()
		if err != nil {
			return err
		}
		if t.Literal != "," {
			return nil
		}
		if _, err := p.next(false); err != nil {
			return err
		}
	}
}

func (p *parser) parseActualParitem() error {
	modeTok, err := p.next(false)
	if err != nil {
		return err
	}
	if err := p.assertValueIn(modeTok, []string{"in", "inout"}); err != nil {
		return err
	}

	var value string
	if modeTok.Literal == "inout" {
		ident, err := p.next(false)
		if err != nil {
			return err
		}
		if err := p.assertIsIdentifier(ident); err != nil {
			return err
		}
		value = ident.Literal
	} else {
		value, err = p.parseExpression()
		if err != nil {
			return err
		}
	}

	mode := ir.ModeCV
	if modeTok.Literal == "inout" {
		mode = ir.ModeREF
	}
	p.quads.New(ir.OpPar, value, mode, "")
	return nil
}

// parseCondition implements short-circuit 'or' over a chain of boolterms.
// The trailing unconditional jump appended once the chain is exhausted is
// the condition's "otherwise false" edge: if control reaches this point
// every boolterm has already branched away on success, so falling through
// means the whole condition failed.
func (p *parser) parseCondition() (ir.TrueFalseList, error) {
	var tf ir.TrueFalseList
	for {
		bt, err := p.parseBoolterm()
		if err != nil {
			return tf, err
		}
		tf.Append(bt)

		t, err := p.peek()
		if err != nil {
			return tf, err
		}
		if t.Literal != "or" {
			tf.Append(ir.TrueFalseList{F: []*ir.Quad{p.quads.New(ir.OpJump, "", "", "")}})
			return tf, nil
		}

		ir.Backpatch(tf.F, p.quads.NextLabel())
		if _, err := p.next(false); err != nil {
			return tf, err
		}
	}
}

func (p *parser) parseBoolterm() (ir.TrueFalseList, error) {
	var tf ir.TrueFalseList
	for {
		bf, err := p.parseBoolfactor()
		if err != nil {
			return tf, err
		}
		tf.Append(bf)

		t, err := p.peek()
		if err != nil {
			return tf, err
		}
		if t.Literal != "and" {
			return tf, nil
		}

		if _, err := p.next(false); err != nil {
			return tf, err
		}
		tf.Append(ir.TrueFalseList{F: []*ir.Quad{p.quads.New(ir.OpJump, "", "", "")}})
		ir.Backpatch(bf.T, p.quads.NextLabel())
	}
}

func (p *parser) parseBoolfactor() (ir.TrueFalseList, error) {
	t, err := p.peek()
	if err != nil {
		return ir.TrueFalseList{}, err
	}

	if t.Literal == "not" {
		if _, err := p.next(false); err != nil {
			return ir.TrueFalseList{}, err
		}
		open, err := p.next(false)
		if err != nil {
			return ir.TrueFalseList{}, err
		}
		if err := p.assertValueIs(open, "["); err != nil {
			return ir.TrueFalseList{}, err
		}

		tf, err := p.parseCondition()
		if err != nil {
			return tf, err
		}

		close, err := p.next(false)
		if err != nil {
			return tf, err
		}
		if err := p.assertValueIs(close, "]"); err != nil {
			return tf, err
		}

		tf.T, tf.F = tf.F, tf.T
		return tf, nil
	}

	if t.Literal == "[" {
		if _, err := p.next(false); err != nil {
			return ir.TrueFalseList{}, err
		}
		tf, err := p.parseCondition()
		if err != nil {
			return tf, err
		}
		close, err := p.next(false)
		if err != nil {
			return tf, err
		}
		return tf, p.assertValueIs(close, "]")
	}

	left, err := p.parseExpression()
	if err != nil {
		return ir.TrueFalseList{}, err
	}

	relop, err := p.next(false)
	if err != nil {
		return ir.TrueFalseList{}, err
	}
	if err := p.assertValueIn(relop, relOpLiterals); err != nil {
		return ir.TrueFalseList{}, err
	}

	right, err := p.parseExpression()
	if err != nil {
		return ir.TrueFalseList{}, err
	}

	q := p.quads.New(relop.Literal, left, right, "")
	return ir.TrueFalseList{T: []*ir.Quad{q}}, nil
}

func (p *parser) parseOpsign() (token.Token, bool, error) {
	t, err := p.peek()
	if err != nil {
		return token.Token{}, false, err
	}
	if token.AddOps[t.Type] {
		tok, err := p.next(false)
		return tok, true, err
	}
	return token.Token{}, false, nil
}

func (p *parser) parseExpression() (string, error) {
	signTok, hasSign, err := p.parseOpsign()
	if err != nil {
		return "", err
	}

	exp, err := p.parseTerm()
	if err != nil {
		return "", err
	}

	if hasSign && signTok.Literal == "-" {
		exp = p.quads.New(ir.OpSub, "0", exp, p.newTemp()).Z
	}

	for {
		t, err := p.peek()
		if err != nil {
			return "", err
		}
		if !token.AddOps[t.Type] {
			return exp, nil
		}
		addop, err := p.next(false)
		if err != nil {
			return "", err
		}
		term, err := p.parseTerm()
		if err != nil {
			return "", err
		}
		exp = p.quads.New(addop.Literal, exp, term, p.newTemp()).Z
	}
}

func (p *parser) parseTerm() (string, error) {
	term, err := p.parseFactor()
	if err != nil {
		return "", err
	}

	for {
		t, err := p.peek()
		if err != nil {
			return "", err
		}
		if !token.MulOps[t.Type] {
			return term, nil
		}
		mulop, err := p.next(false)
		if err != nil {
			return "", err
		}
		fac, err := p.parseFactor()
		if err != nil {
			return "", err
		}
		term = p.quads.New(mulop.Literal, term, fac, p.newTemp()).Z
	}
}

func (p *parser) parseFactor() (string, error) {
	t, err := p.peek()
	if err != nil {
		return "", err
	}

	switch {
	case t.Literal == "(":
		if _, err := p.next(false); err != nil {
			return "", err
		}
		fac, err := p.parseExpression()
		if err != nil {
			return "", err
		}
		close, err := p.next(false)
		if err != nil {
			return "", err
		}
		return fac, p.assertValueIs(close, ")")

	case t.Type == token.INT:
		tok, err := p.next(false)
		return tok.Literal, err

	case t.Type == token.IDENT:
		ident, err := p.next(false)
		if err != nil {
			return "", err
		}

		nxt, err := p.peek()
		if err != nil {
			return "", err
		}
		if nxt.Literal == "(" {
			res, err := p.parseIdtail()
			if err != nil {
				return "", err
			}
			p.quads.New(ir.OpCall, ident.Literal, "", "")
			if err := p.assertDeclared(ident, []symtab.Category{symtab.Function}); err != nil {
				return "", err
			}
			return res, nil
		}
		if err := p.assertDeclared(ident, []symtab.Category{symtab.Variable, symtab.Parameter}); err != nil {
			return "", err
		}
		return ident.Literal, nil

	default:
		return "", p.errAt(t, "Expected integer, expression or function call.")
	}
}

func (p *parser) parseIdtail() (string, error) {
	t, err := p.next(false)
	if err != nil {
		return "", err
	}
	if err := p.assertValueIs(t, "("); err != nil {
		return "", err
	}

	if err := p.parseActualParlist(); err != nil {
		return "", err
	}

	t, err = p.next(false)
	if err != nil {
		return "", err
	}
	if err := p.assertValueIs(t, ")"); err != nil {
		return "", err
	}

	return p.quads.New(ir.OpPar, p.newTemp(), ir.ModeRET, "").X, nil
}
