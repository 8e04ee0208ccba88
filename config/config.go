// Package config loads optional compiler tunables from a TOML file. A
// Cimple program compiles fine with no config file at all -- every field
// here has a default matching the fixed constants the rest of the
// compiler used before this package existed.
package config

import (
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Limits bounds a handful of values the lexer enforces while reading a
// program.
type Limits struct {
	// MaxIdentifierLen is the longest an identifier may be before the
	// lexer rejects it.
	MaxIdentifierLen int `toml:"max_identifier_len"`

	// MaxConstant is the largest integer literal the lexer accepts.
	MaxConstant int `toml:"max_constant"`
}

// Codegen controls the activation-record layout the symbol table assigns
// and the assembly backend addresses; the C backend does not use it.
type Codegen struct {
	// BaseOffset is the first stack-frame offset available to a
	// scope's own entities, after the reserved return-address,
	// access-link and return-value slots.
	BaseOffset int `toml:"base_offset"`

	// SlotSize is the number of bytes each entity occupies in a
	// stack frame.
	SlotSize int `toml:"slot_size"`
}

// Trace toggles diagnostic output from the lexer and parser.
type Trace struct {
	Lexer  bool `toml:"lexer"`
	Parser bool `toml:"parser"`
}

// Config is the full set of values a TOML file may override.
type Config struct {
	Limits  Limits  `toml:"limits"`
	Codegen Codegen `toml:"codegen"`
	Trace   Trace   `toml:"trace"`
}

// Default returns the configuration the compiler uses when no file is
// loaded, matching the activation-record layout the generator assumes.
func Default() *Config {
	return &Config{
		Limits: Limits{
			MaxIdentifierLen: 30,
			MaxConstant:      1<<32 - 1,
		},
		Codegen: Codegen{
			BaseOffset: 12,
			SlotSize:   4,
		},
	}
}

// Load reads a TOML file at path, starting from Default and overriding
// only the fields the file sets.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, errors.Wrapf(err, "reading config %q", path)
	}
	return cfg, nil
}
