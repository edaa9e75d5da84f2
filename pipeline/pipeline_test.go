package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/aryanA101a/intcode-vm-go/asm"
	"github.com/aryanA101a/intcode-vm-go/config"
	"github.com/aryanA101a/intcode-vm-go/vm"
)

const (
	echo  = "G1L1\n1 L13 K3 SP8 A1 FL2 LIP8 SP7 L14 K5 JL1\n2 X4\n"
	shift = "G1L1\n1 L13 K3 SP8 A1 FL2 LIP8 A1 SP7 L14 K5 JL1\n2 X4\n"
)

func newPipeline(stages ...Stage) *Pipeline {
	return New(stages, asm.DefaultConfig(), vm.DefaultConfig())
}

func TestRun(t *testing.T) {
	p := newPipeline(
		Stage{Name: "echo", Source: echo},
		Stage{Name: "shift1", Source: shift},
		Stage{Name: "shift2", Source: shift},
	)
	report, err := p.Run(context.Background(), "abc")
	if err != nil {
		t.Fatal(err)
	}
	if report.Output != "cde" {
		t.Errorf("output = %q, want %q", report.Output, "cde")
	}
	if _, err := uuid.Parse(report.RunID); err != nil {
		t.Errorf("run id %q: %v", report.RunID, err)
	}
	if len(report.Stages) != 3 {
		t.Fatalf("%d stage reports", len(report.Stages))
	}
	for _, s := range report.Stages {
		if s.Output != 3 || s.Steps == 0 || s.Words <= vm.ProgStart {
			t.Errorf("stage report %+v", s)
		}
	}

	// images are reused on the next run
	again, err := p.Run(context.Background(), "x")
	if err != nil {
		t.Fatal(err)
	}
	if again.Output != "z" || again.RunID == report.RunID {
		t.Errorf("second run = %+v", again)
	}
}

func TestEmptyStageOutput(t *testing.T) {
	p := newPipeline(
		Stage{Name: "silent", Source: "G1L1\n1 X4\n"},
		Stage{Name: "echo", Source: echo},
	)
	report, err := p.Run(context.Background(), "abc")
	if !errors.Is(err, ErrEmptyStageOutput) {
		t.Fatalf("error = %v, want ErrEmptyStageOutput", err)
	}
	var se *StageError
	if !errors.As(err, &se) || se.Stage != "silent" {
		t.Errorf("error = %v, want one naming stage silent", err)
	}
	if len(report.Stages) != 1 {
		t.Errorf("%d stages ran, want 1", len(report.Stages))
	}
}

func TestStageFault(t *testing.T) {
	p := newPipeline(Stage{Name: "bad", Source: "G1L1\n1 L65 SP5 L14 K3 X99\n"})
	_, err := p.Run(context.Background(), "")
	var se *StageError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want StageError", err)
	}
	if se.Output != "A" {
		t.Errorf("partial output = %q, want %q", se.Output, "A")
	}
	if !errors.Is(err, vm.UnknownOperator) {
		t.Errorf("error = %v, want UnknownOperator", err)
	}
}

func TestAssemblyFailure(t *testing.T) {
	p := newPipeline(
		Stage{Name: "ok", Source: echo},
		Stage{Name: "broken", Source: "G0L1\n"},
	)
	_, err := p.Run(context.Background(), "abc")
	var se *StageError
	if !errors.As(err, &se) || se.Stage != "broken" {
		t.Fatalf("error = %v, want StageError for broken", err)
	}
	if !errors.Is(err, asm.ErrGlobalRange) {
		t.Errorf("error = %v, want ErrGlobalRange", err)
	}
}

func TestNoStages(t *testing.T) {
	if _, err := newPipeline().Run(context.Background(), "x"); err == nil {
		t.Error("empty pipeline ran")
	}
}

func TestLoadStages(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "head.int"), []byte("G1L1\n1 L13 K3 SP8 A1 FL2"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "tail.int"), []byte("LIP8 SP7 L14 K5 JL1\n2 X4\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	stages, err := LoadStages([]config.Stage{{Name: "echo", Sources: []string{"head.int", "tail.int"}}}, dir)
	if err != nil {
		t.Fatal(err)
	}
	report, err := New(stages, asm.DefaultConfig(), vm.DefaultConfig()).Run(context.Background(), "hi\n")
	if err != nil {
		t.Fatal(err)
	}
	if report.Output != "hi\n" {
		t.Errorf("output = %q", report.Output)
	}

	_, err = LoadStages([]config.Stage{{Name: "gone", Sources: []string{"nope.int"}}}, dir)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want ErrNotExist", err)
	}
}

func TestCancelledRun(t *testing.T) {
	config := vm.DefaultConfig()
	config.Quantum = 1
	p := New([]Stage{{Name: "echo", Source: echo}}, asm.DefaultConfig(), config)
	if err := p.Assemble(context.Background()); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Run(ctx, "abc")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
