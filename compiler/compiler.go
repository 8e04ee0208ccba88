// Package compiler contains the core of the Cimple compiler: the
// recursive-descent parser that drives lexing, symbol-table
// construction, quad emission and backpatching in a single pass, plus the
// assembly backend invoked as each block closes and the optional C
// backend run once over the whole quad list after parsing.
//
// The package's public surface is deliberately narrow: construct a
// Compiler over a source string, then call Compile. Everything else --
// the token stream, the scope stack, the quad list -- is an
// implementation detail that lives and dies within one Compile call.
package compiler

import (
	"github.com/skx/cimple/config"
	"github.com/skx/cimple/lexer"
	"github.com/skx/cimple/symtab"
	"github.com/skx/cimple/token"
)

// Result holds the output of a successful compilation.
type Result struct {
	// Asm is always populated: the RISC-style assembly listing.
	Asm string

	// C is populated only when Compile was asked to emit it.
	C string
}

// Compiler holds a Cimple program's source text.
type Compiler struct {
	source string
	trace  bool
	cfg    *config.Config
}

// New creates a Compiler for the given source text, using the default
// lexer limits and activation-record layout. An optional trailing bool
// enables diagnostic tracing in the lexer, parser and assembly generator.
func New(source string, trace ...bool) *Compiler {
	t := false
	if len(trace) > 0 {
		t = trace[0]
	}
	return &Compiler{source: source, trace: t, cfg: config.Default()}
}

// NewWithConfig creates a Compiler whose lexer limits and activation-record
// layout (identifier length, constant ceiling, frame base offset and slot
// size) come from cfg, as loaded by config.Load. An optional trailing bool
// enables diagnostic tracing in the lexer, parser and assembly generator.
func NewWithConfig(source string, cfg *config.Config, trace ...bool) *Compiler {
	t := false
	if len(trace) > 0 {
		t = trace[0]
	}
	return &Compiler{source: source, trace: t, cfg: cfg}
}

// SetTrace toggles diagnostic tracing after construction.
func (c *Compiler) SetTrace(v bool) {
	c.trace = v
}

// Compile lexes, parses and generates assembly for the compiler's source.
// When genC is true it additionally renders the restricted C translation;
// that step fails with a CompilationError if the program declares any
// function or procedure.
func (c *Compiler) Compile(genC bool) (Result, error) {
	lim := c.cfg.Limits
	lex := lexer.NewWithLimits(c.source, lim.MaxIdentifierLen, lim.MaxConstant, c.trace)

	toks, err := tokenize(lex)
	if err != nil {
		return Result{}, err
	}

	st := symtab.NewWithLayout(c.cfg.Codegen.BaseOffset, c.cfg.Codegen.SlotSize)
	p := newParser(toks, lex.Lines(), c.trace, st)
	if err := p.parseProgram(); err != nil {
		return Result{}, err
	}

	res := Result{Asm: p.asm.output()}

	if genC {
		cSrc, err := p.generateC()
		if err != nil {
			return Result{}, err
		}
		res.C = cSrc
	}

	return res, nil
}

// tokenize drains the lexer into a flat token slice, stopping (without
// appending) at the first EOF token.
func tokenize(lex *lexer.Lexer) ([]token.Token, error) {
	var toks []token.Token
	for {
		tok, err := lex.Next()
		if err != nil {
			return nil, err
		}
		if tok.Type == token.EOF {
			break
		}
		toks = append(toks, tok)
	}
	return toks, nil
}
