// This is the main-driver for our compiler.

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/skx/cimple/cerrors"
	"github.com/skx/cimple/compiler"
	"github.com/skx/cimple/config"
)

func main() {

	//
	// Look for flags.
	//
	genC := flag.Bool("gen-c", false, "Also emit a restricted C translation.")
	trace := flag.Bool("trace", false, "Enable lexer/parser diagnostic tracing.")
	configPath := flag.String("config", "", "Optional TOML file overriding compiler tunables.")
	flag.Parse()

	//
	// We need exactly one source-file argument.
	//
	if len(flag.Args()) != 1 {
		fmt.Fprintf(os.Stderr, "Usage: compile <source-file> [--gen-c]\n")
		os.Exit(1)
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Printf("%s\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	src := flag.Args()[0]
	body, err := os.ReadFile(src)
	if err != nil {
		fmt.Println(errors.Wrapf(err, "reading %s", src))
		os.Exit(1)
	}

	//
	// Compile.
	//
	c := compiler.NewWithConfig(string(body), cfg, *trace || cfg.Trace.Lexer || cfg.Trace.Parser)

	res, err := c.Compile(*genC)
	if err != nil {
		fmt.Printf("%s\n", err)
		if _, ok := err.(*cerrors.CompilationError); ok {
			os.Exit(2)
		}
		os.Exit(1)
	}

	//
	// Write the assembly alongside the source file.
	//
	asmPath := src + ".asm"
	if err := os.WriteFile(asmPath, []byte(res.Asm), 0o644); err != nil {
		fmt.Println(errors.Wrapf(err, "writing %s", asmPath))
		os.Exit(1)
	}

	if *genC {
		cPath := src + ".c"
		if err := os.WriteFile(cPath, []byte(res.C), 0o644); err != nil {
			fmt.Println(errors.Wrapf(err, "writing %s", cPath))
			os.Exit(1)
		}
	}
}
