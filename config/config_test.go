package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aryanA101a/intcode-vm-go/vm"
)

func TestDefault(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}
	v := c.VMConfig()
	if v.MemorySize != vm.DefaultMemorySize || v.StepBudget != 10_000_000 || v.Quantum != 100_000 {
		t.Errorf("VMConfig = %+v", v)
	}
	a := c.AsmConfig()
	if a.LabelTableSize != 10000 || a.MemorySize != vm.DefaultMemorySize {
		t.Errorf("AsmConfig = %+v", a)
	}
}

func TestParse(t *testing.T) {
	src := `
[vm]
memory_size = 12000
step_budget = 500
trace = true

[log]
verbosity = 2

[[pipeline.stage]]
name = "syn"
sources = ["syn.int", "blib.int"]

[[pipeline.stage]]
name = "trn"
sources = ["trn.int"]
`
	c := Default()
	if err := Parse([]byte(src), c); err != nil {
		t.Fatal(err)
	}
	if c.VM.MemorySize != 12000 || c.VM.StepBudget != 500 || !c.VM.Trace {
		t.Errorf("vm = %+v", c.VM)
	}
	if c.VM.Quantum != 100_000 {
		t.Errorf("quantum = %d, want the default kept", c.VM.Quantum)
	}
	if c.Log.Verbosity != 2 {
		t.Errorf("verbosity = %d", c.Log.Verbosity)
	}
	if len(c.Pipeline.Stages) != 2 || c.Pipeline.Stages[0].Name != "syn" || len(c.Pipeline.Stages[0].Sources) != 2 {
		t.Errorf("stages = %+v", c.Pipeline.Stages)
	}
	if c.AsmConfig().MemorySize != 12000 {
		t.Errorf("assembler memory = %d, want 12000", c.AsmConfig().MemorySize)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"small memory", "[vm]\nmemory_size = 400", "memory_size"},
		{"large memory", "[vm]\nmemory_size = 40000", "memory_size"},
		{"zero budget", "[vm]\nstep_budget = 0", "step_budget"},
		{"negative quantum", "[vm]\nquantum = -1", "quantum"},
		{"no labels", "[asm]\nlabel_table_size = 0", "label_table_size"},
		{"unnamed stage", "[[pipeline.stage]]\nsources = [\"a\"]", "no name"},
		{"empty stage", "[[pipeline.stage]]\nname = \"a\"", "no sources"},
		{"syntax", "[vm\n", ""},
	}
	for _, tt := range tests {
		err := Parse([]byte(tt.src), Default())
		if err == nil {
			t.Errorf("%s: no error", tt.name)
			continue
		}
		if !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: error = %v, want mention of %q", tt.name, err, tt.want)
		}
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, DefaultFile)

	c, err := Load(missing, true)
	if err != nil {
		t.Fatalf("missing file with missingOK: %v", err)
	}
	if c.VM.MemorySize != vm.DefaultMemorySize {
		t.Errorf("memory = %d", c.VM.MemorySize)
	}
	if _, err := Load(missing, false); err == nil {
		t.Error("missing file accepted")
	}

	if err := os.WriteFile(missing, []byte("[asm]\nlabel_table_size = 500\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err = Load(missing, false)
	if err != nil {
		t.Fatal(err)
	}
	if c.Asm.LabelTableSize != 500 {
		t.Errorf("label_table_size = %d", c.Asm.LabelTableSize)
	}

	if err := os.WriteFile(missing, []byte("[vm]\nstep_budget = -5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(missing, true); err == nil || !strings.Contains(err.Error(), missing) {
		t.Errorf("error = %v, want one naming the file", err)
	}
}
