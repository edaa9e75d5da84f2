// Package pipeline drives multi-stage INTCODE programs such as a compiler
// split into passes: each stage reads the previous stage's output as its
// input. Every stage is assembled once and run on a fresh VM.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"golang.org/x/sync/errgroup"

	"github.com/aryanA101a/intcode-vm-go/asm"
	"github.com/aryanA101a/intcode-vm-go/config"
	"github.com/aryanA101a/intcode-vm-go/vm"
)

var log = commonlog.GetLogger("intcode.pipeline")

var ErrEmptyStageOutput = errors.New("stage produced no output")

// Stage is one pass: a name and its INTCODE source text.
type Stage struct {
	Name   string
	Source string
}

// StageError reports which stage failed, keeping whatever it printed.
type StageError struct {
	Stage  string
	Output string
	Err    error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %s", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

type StageReport struct {
	Name     string
	Words    int
	Warnings []asm.Warning
	Steps    int64
	Output   int // bytes written
}

type Report struct {
	RunID  string
	Stages []StageReport
	Output string
}

type Pipeline struct {
	stages    []Stage
	asmConfig asm.Config
	vmConfig  vm.Config

	images   []vm.Image
	warnings [][]asm.Warning
}

func New(stages []Stage, asmConfig asm.Config, vmConfig vm.Config) *Pipeline {
	return &Pipeline{stages: stages, asmConfig: asmConfig, vmConfig: vmConfig}
}

// LoadStages reads the sources named by configured stages, resolving
// relative paths against dir.
func LoadStages(stages []config.Stage, dir string) ([]Stage, error) {
	out := make([]Stage, 0, len(stages))
	for _, s := range stages {
		var b strings.Builder
		for _, src := range s.Sources {
			if !filepath.IsAbs(src) {
				src = filepath.Join(dir, src)
			}
			data, err := os.ReadFile(src)
			if err != nil {
				return nil, fmt.Errorf("stage %s: cannot read %s: %w", s.Name, src, err)
			}
			b.Write(data)
			b.WriteByte('\n')
		}
		out = append(out, Stage{Name: s.Name, Source: b.String()})
	}
	return out, nil
}

// Assemble assembles every stage concurrently. It is called by Run when
// needed and does nothing once the images exist.
func (p *Pipeline) Assemble(ctx context.Context) error {
	if p.images != nil {
		return nil
	}
	images := make([]vm.Image, len(p.stages))
	warnings := make([][]asm.Warning, len(p.stages))

	g, ctx := errgroup.WithContext(ctx)
	for i, stage := range p.stages {
		i, stage := i, stage
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			as := asm.New(p.asmConfig)
			img, err := as.Assemble(stage.Source)
			if err != nil {
				return &StageError{Stage: stage.Name, Err: err}
			}
			images[i] = img
			warnings[i] = as.Warnings()
			log.Infof("stage %s: assembled %d words", stage.Name, len(img))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	p.images, p.warnings = images, warnings
	return nil
}

// Run feeds input to the first stage and each stage's output to the next.
// The last stage's output is returned in the report.
func (p *Pipeline) Run(ctx context.Context, input string) (*Report, error) {
	if len(p.stages) == 0 {
		return nil, errors.New("pipeline has no stages")
	}
	if err := p.Assemble(ctx); err != nil {
		return nil, err
	}

	report := &Report{RunID: uuid.NewString()}
	text := input
	for i, stage := range p.stages {
		log.Infof("[%s] stage %s: %d bytes of input", report.RunID, stage.Name, len(text))

		machine := vm.NewVM(p.vmConfig)
		if err := machine.Load(p.images[i]); err != nil {
			return report, &StageError{Stage: stage.Name, Err: err}
		}
		machine.SetInput([]byte(text))
		res := machine.Run(ctx)

		report.Stages = append(report.Stages, StageReport{
			Name:     stage.Name,
			Words:    len(p.images[i]),
			Warnings: p.warnings[i],
			Steps:    res.Steps,
			Output:   len(res.Output),
		})
		if !res.Success {
			return report, &StageError{Stage: stage.Name, Output: res.Output, Err: res.Err}
		}
		if res.Output == "" {
			return report, &StageError{Stage: stage.Name, Err: ErrEmptyStageOutput}
		}
		log.Infof("[%s] stage %s: %d instructions, %d bytes of output", report.RunID, stage.Name, res.Steps, len(res.Output))
		text = res.Output
	}
	report.Output = text
	return report, nil
}
