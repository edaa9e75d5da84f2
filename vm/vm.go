// Package vm emulates the INTCODE word machine: a flat memory of 16-bit
// words, a two-accumulator register set and a small emulated BCPL runtime
// reached through system calls.
package vm

import (
	"context"
	"fmt"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("intcode.vm")

// Config bounds a single run.
type Config struct {
	MemorySize int   // words, globals included
	StepBudget int64 // instructions before InstructionBudgetExceeded
	Quantum    int64 // instructions between cancellation checks
	Trace      bool  // log every instruction at debug level
}

func DefaultConfig() Config {
	return Config{
		MemorySize: DefaultMemorySize,
		StepBudget: 10_000_000,
		Quantum:    100_000,
	}
}

// VM owns one memory and one register set. Use a fresh VM per run.
type VM struct {
	config Config
	memory *Memory
	cpu    cpu
}

// Result is everything a run reports: whether it finished cleanly, the
// captured output (partial on failure) and the fault, if any.
type Result struct {
	Success  bool
	Output   string
	Err      error
	ExitCode int   // accumulator at termination
	Steps    int64 // instructions executed
}

func NewVM(config Config) *VM {
	if config.MemorySize <= ProgStart {
		config.MemorySize = DefaultMemorySize
	}
	if config.StepBudget <= 0 {
		config.StepBudget = DefaultConfig().StepBudget
	}
	mem := NewMemory(config.MemorySize)
	vm := &VM{
		config: config,
		memory: mem,
		cpu:    newCpu(mem),
	}
	vm.cpu.trace = config.Trace && log.AllowLevel(commonlog.Debug)
	return vm
}

// Load copies img into memory from address 0 and places the first frame
// just past it.
func (vm *VM) Load(img Image) error {
	if len(img) > vm.memory.Len() {
		return fmt.Errorf("image of %d words exceeds memory of %d words", len(img), vm.memory.Len())
	}
	copy(vm.memory.Ram, img)
	vm.cpu.lomem = len(img)
	vm.cpu.internalRegisters.sp = len(img)
	log.Infof("loaded %d words, %d of program", len(img), max(0, len(img)-ProgStart))
	return nil
}

// SetInput seeds the emulated standard input.
func (vm *VM) SetInput(input []byte) {
	vm.cpu.io.input = append([]byte(nil), input...)
	vm.cpu.io.inputPos = 0
}

// Run executes from ProgStart until the program finishes or faults.
func (vm *VM) Run(ctx context.Context) Result {
	vm.cpu.reset()
	log.Debugf("starting at pc=%d sp=%d", vm.cpu.internalRegisters.pc, vm.cpu.internalRegisters.sp)

	err := vm.cpu.start(ctx, vm.config.StepBudget, vm.config.Quantum)
	res := Result{
		Success:  err == nil,
		Output:   vm.cpu.io.output.String(),
		Err:      err,
		ExitCode: int(vm.cpu.internalRegisters.a),
		Steps:    vm.cpu.steps,
	}
	if err != nil {
		log.Errorf("run failed after %d instructions: %s (%s)", res.Steps, err, &vm.cpu)
	} else {
		log.Infof("run completed after %d instructions", res.Steps)
	}
	return res
}

// Memory exposes the word store, chiefly for inspection after a run.
func (vm *VM) Memory() *Memory {
	return vm.memory
}

// Registers returns pc, sp, a and b.
func (vm *VM) Registers() (pc, sp int, a, b Word) {
	r := vm.cpu.internalRegisters
	return r.pc, r.sp, r.a, r.b
}
