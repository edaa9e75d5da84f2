package vm

import "fmt"

// List of VM faults for Errno
const (
	MemoryFault = Errno(iota)
	UnknownOpcode
	UnknownOperator
	UnknownSystemCall
	InstructionBudgetExceeded
	Cancelled
)

var strError = []string{
	"memory fault",
	"unknown opcode",
	"unknown operator",
	"unknown system call",
	"instruction budget exceeded",
	"cancelled",
}

// Errno describes the reason for a VM fault.
type Errno int

func (e Errno) Error() string {
	if int(e) < len(strError) {
		return strError[e]
	}
	return fmt.Sprintf("errno %d", int(e))
}

// Error describes the cause and the context of a VM fault.
type Error struct {
	Errno Errno // nature of the fault
	PC    int   // address of the faulting instruction
	Instr Word  // instruction word that raised the fault
	Addr  int   // address when Errno is MemoryFault
	Code  int   // operator or call number when relevant
	Err   error // underlying cause, e.g. context error when Cancelled
}

func (e *Error) Error() string {
	msg := "intcode: " + e.Errno.Error()
	switch e.Errno {
	case MemoryFault:
		msg += fmt.Sprintf(" at address %d", e.Addr)
	case UnknownOperator, UnknownSystemCall:
		msg += fmt.Sprintf(" %d", e.Code)
	case UnknownOpcode:
		msg += fmt.Sprintf(" %#04x", uint16(e.Instr))
	case Cancelled:
		if e.Err != nil {
			msg += ": " + e.Err.Error()
		}
	}
	return msg + fmt.Sprintf(" (pc %d)", e.PC)
}

// Unwrap lets errors.Is match against an Errno.
func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Errno, e.Err}
	}
	return []error{e.Errno}
}

func (cpu *cpu) newErrorFull(errno Errno, addr, code int, err error) *Error {
	return &Error{
		Errno: errno,
		PC:    cpu.lastpc,
		Instr: cpu.instr,
		Addr:  addr,
		Code:  code,
		Err:   err,
	}
}

func (cpu *cpu) newError(errno Errno) *Error {
	return cpu.newErrorFull(errno, 0, 0, nil)
}

// fault aborts the current instruction; step recovers it.
func (cpu *cpu) fault(e *Error) {
	panic(e)
}
