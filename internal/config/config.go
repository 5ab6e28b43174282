// Package config implements an optional TOML-backed configuration layer
// overlaying CLI flags: a config file fills in whichever flags were left
// at their zero value, rather than replacing flags outright.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds the tunable interpreter/compiler knobs a tylang.toml file
// may override; zero values mean "use the flag or built-in default".
type Config struct {
	Interp struct {
		StepBudget   int `toml:"step_budget"`
		MaxCallDepth int `toml:"max_call_depth"`
	} `toml:"interp"`

	Diag struct {
		Color bool `toml:"color"`
	} `toml:"diag"`
}

// Load reads and decodes a tylang.toml file at path, also returning any
// keys present in the file that no Config field decodes (so the caller
// can warn about typos). A missing file is not an error: Load returns a
// zero-value Config so callers fall back entirely to flags.
func Load(path string) (Config, []string, error) {
	var cfg Config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, nil, err
	}
	var unknown []string
	for _, key := range md.Undecoded() {
		unknown = append(unknown, key.String())
	}
	return cfg, unknown, nil
}
