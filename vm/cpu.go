package vm

import (
	"context"
	"fmt"
)

type cpu struct {
	running           bool
	memory            *Memory
	internalRegisters struct {
		pc, // next instruction
		sp int // base of the current activation frame
		a, // accumulator
		b Word // previous a, set by Load
	}
	io      io
	lomem   int // end of the loaded image
	himem   int // heap watermark, grows down
	result2 Word

	lastpc int
	instr  Word
	steps  int64
	trace  bool
}

func newCpu(memory *Memory) cpu {
	return cpu{
		memory: memory,
		io:     newIO(),
		lomem:  ProgStart,
		himem:  memory.Len() - 1,
	}
}

func (cpu *cpu) reset() {
	cpu.internalRegisters.pc = ProgStart
	cpu.internalRegisters.sp = cpu.lomem
	cpu.internalRegisters.a = 0
	cpu.internalRegisters.b = 0
	cpu.io.output.Reset()
	cpu.steps = 0
}

// start runs until the program stops, a fault occurs or budget instructions
// have executed. ctx is consulted every quantum instructions.
func (cpu *cpu) start(ctx context.Context, budget, quantum int64) error {
	cpu.running = true
	defer cpu.stop()

	for cpu.running {
		if cpu.steps >= budget {
			return cpu.newError(InstructionBudgetExceeded)
		}
		if quantum > 0 && cpu.steps%quantum == 0 {
			if err := ctx.Err(); err != nil {
				return cpu.newErrorFull(Cancelled, 0, 0, err)
			}
		}
		if err := cpu.step(); err != nil {
			return err
		}
	}
	return nil
}

func (cpu *cpu) stop() {
	cpu.running = false
}

// step executes one instruction. Faults raised below unwind to here.
func (cpu *cpu) step() (err error) {
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(*Error)
			if !ok {
				panic(r)
			}
			cpu.running = false
			err = e
		}
	}()

	cpu.lastpc = cpu.internalRegisters.pc
	cpu.instr = cpu.memRead(cpu.internalRegisters.pc)
	cpu.internalRegisters.pc++
	cpu.steps++
	cpu.decodeAndExecuteInstruction(cpu.instr)
	return nil
}

func (cpu *cpu) decodeAndExecuteInstruction(instruction Word) {
	in := Decode(instruction)

	d := in.Operand
	var data Word
	if in.DataWord {
		data = cpu.memRead(cpu.internalRegisters.pc)
		cpu.internalRegisters.pc++
		d = int(data)
	}
	if cpu.trace {
		log.Debugf("%5d %-8s a=%d b=%d sp=%d", cpu.lastpc, in.Mnemonic(data),
			cpu.internalRegisters.a, cpu.internalRegisters.b, cpu.internalRegisters.sp)
	}
	if in.FrameRelative {
		d += cpu.internalRegisters.sp
	}
	if in.Indirect {
		d = int(cpu.memRead(d))
	}

	switch in.Op {
	case OP_L:
		cpu.internalRegisters.b = cpu.internalRegisters.a
		cpu.internalRegisters.a = Wrap16(int64(d))

	case OP_S:
		cpu.memWrite(d, cpu.internalRegisters.a)

	case OP_A:
		cpu.internalRegisters.a = Wrap16(int64(cpu.internalRegisters.a) + int64(d))

	case OP_J:
		cpu.internalRegisters.pc = d

	case OP_T:
		if cpu.internalRegisters.a != 0 {
			cpu.internalRegisters.pc = d
		}

	case OP_F:
		if cpu.internalRegisters.a == 0 {
			cpu.internalRegisters.pc = d
		}

	case OP_K:
		frame := d + cpu.internalRegisters.sp
		if int(cpu.internalRegisters.a) < ProgStart {
			cpu.systemCall(int(cpu.internalRegisters.a), frame)
			return
		}
		cpu.memWrite(frame, Word(cpu.internalRegisters.sp))
		cpu.memWrite(frame+1, Word(cpu.internalRegisters.pc))
		cpu.internalRegisters.sp = frame
		cpu.internalRegisters.pc = int(cpu.internalRegisters.a)

	case OP_X:
		cpu.operator(d)

	default:
		cpu.fault(cpu.newError(UnknownOpcode))
	}
}

func (cpu *cpu) operator(op int) {
	r := &cpu.internalRegisters
	a, b := int64(r.a), int64(r.b)

	switch op {
	case X_RV:
		r.a = cpu.memRead(int(r.a))
	case X_NEG:
		r.a = Wrap16(-a)
	case X_NOT:
		r.a = ^r.a
	case X_RTRN:
		sp := r.sp
		r.pc = int(cpu.memRead(sp + 1))
		r.sp = int(cpu.memRead(sp))
	case X_MULT:
		r.a = Wrap16(b * a)
	case X_DIV:
		if a != 0 {
			r.a = Wrap16(int64(floorDiv(int(b), int(a))))
		}
	case X_REM:
		if a != 0 {
			r.a = Wrap16(b % a)
		}
	case X_PLUS:
		r.a = Wrap16(b + a)
	case X_MINUS:
		r.a = Wrap16(b - a)
	case X_EQ:
		r.a = boolWord(b == a)
	case X_NE:
		r.a = boolWord(b != a)
	case X_LS:
		r.a = boolWord(b < a)
	case X_GE:
		r.a = boolWord(b >= a)
	case X_GR:
		r.a = boolWord(b > a)
	case X_LE:
		r.a = boolWord(b <= a)
	case X_LSHIFT:
		r.a = Wrap16(b << (uint64(a) & 31))
	case X_RSHIFT:
		r.a = Wrap16(b >> (uint64(a) & 31))
	case X_LOGAND:
		r.a = r.b & r.a
	case X_LOGOR:
		r.a = r.b | r.a
	case X_NEQV:
		r.a = r.b ^ r.a
	case X_EQV:
		r.a = ^(r.b ^ r.a)
	case X_FINISH:
		cpu.stop()
	case X_SWITCH:
		cpu.switchOn()
	default:
		cpu.fault(cpu.newErrorFull(UnknownOperator, 0, op, nil))
	}
}

// switchOn consumes a case count and a default target at pc, then scans the
// (value, target) pairs that follow. The first matching value wins.
func (cpu *cpu) switchOn() {
	r := &cpu.internalRegisters
	v := r.pc
	count := cpu.memRead(v)
	r.b = count
	r.pc = int(cpu.memRead(v + 1))
	v += 2
	for n := int(count); n > 0; n-- {
		if cpu.memRead(v) == r.a {
			r.pc = int(cpu.memRead(v + 1))
			return
		}
		v += 2
	}
}

func (cpu *cpu) memRead(addr int) Word {
	w, err := cpu.memory.Read(addr)
	cpu.check(err)
	return w
}

func (cpu *cpu) memWrite(addr int, value Word) {
	cpu.check(cpu.memory.Write(addr, value))
}

// check turns a memory error into a fault at the current instruction.
func (cpu *cpu) check(err error) {
	if err == nil {
		return
	}
	addr := 0
	if e, ok := err.(*Error); ok {
		addr = e.Addr
	}
	cpu.fault(cpu.newErrorFull(MemoryFault, addr, 0, nil))
}

func (cpu *cpu) arg(args, i int) Word {
	return cpu.memRead(args + i)
}

func (cpu *cpu) String() string {
	r := cpu.internalRegisters
	return fmt.Sprintf("pc=%d sp=%d a=%d b=%d", r.pc, r.sp, r.a, r.b)
}
