// Package config handles intcode.toml configuration.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/aryanA101a/intcode-vm-go/asm"
	"github.com/aryanA101a/intcode-vm-go/vm"
)

const DefaultFile = "intcode.toml"

// Config represents an intcode.toml file.
type Config struct {
	VM       VM       `toml:"vm"`
	Asm      Asm      `toml:"asm"`
	Log      Log      `toml:"log"`
	Pipeline Pipeline `toml:"pipeline"`
}

type VM struct {
	MemorySize int   `toml:"memory_size"`
	StepBudget int64 `toml:"step_budget"`
	Quantum    int64 `toml:"quantum"`
	Trace      bool  `toml:"trace"`
}

type Asm struct {
	LabelTableSize int `toml:"label_table_size"`
}

type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

type Pipeline struct {
	Stages []Stage `toml:"stage"`
}

// Stage names the INTCODE sources that make up one compiler pass. Multiple
// sources are concatenated before assembly.
type Stage struct {
	Name    string   `toml:"name"`
	Sources []string `toml:"sources"`
}

func Default() *Config {
	v := vm.DefaultConfig()
	return &Config{
		VM: VM{
			MemorySize: v.MemorySize,
			StepBudget: v.StepBudget,
			Quantum:    v.Quantum,
		},
		Asm: Asm{LabelTableSize: asm.DefaultConfig().LabelTableSize},
	}
}

// Load parses the file at path over the defaults. A missing file is not an
// error when missingOK is set.
func Load(path string, missingOK bool) (*Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if missingOK && errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	if err := Parse(data, c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes TOML into c, keeping values the document does not set.
func Parse(data []byte, c *Config) error {
	if err := toml.Unmarshal(data, c); err != nil {
		return err
	}
	return c.Validate()
}

func (c *Config) Validate() error {
	switch {
	case c.VM.MemorySize <= vm.ProgStart:
		return fmt.Errorf("vm.memory_size must exceed %d", vm.ProgStart)
	case c.VM.MemorySize > 1<<15:
		// chain links and frame pointers are stored in 16-bit words
		return fmt.Errorf("vm.memory_size must not exceed %d", 1<<15)
	case c.VM.StepBudget <= 0:
		return errors.New("vm.step_budget must be positive")
	case c.VM.Quantum < 0:
		return errors.New("vm.quantum must not be negative")
	case c.Asm.LabelTableSize <= 0:
		return errors.New("asm.label_table_size must be positive")
	}
	for i, s := range c.Pipeline.Stages {
		if s.Name == "" {
			return fmt.Errorf("pipeline stage %d has no name", i+1)
		}
		if len(s.Sources) == 0 {
			return fmt.Errorf("pipeline stage %q has no sources", s.Name)
		}
	}
	return nil
}

func (c *Config) VMConfig() vm.Config {
	return vm.Config{
		MemorySize: c.VM.MemorySize,
		StepBudget: c.VM.StepBudget,
		Quantum:    c.VM.Quantum,
		Trace:      c.VM.Trace,
	}
}

func (c *Config) AsmConfig() asm.Config {
	return asm.Config{
		LabelTableSize: c.Asm.LabelTableSize,
		MemorySize:     c.VM.MemorySize,
	}
}
