package vm

import "fmt"

// Word is the machine's 16-bit two's-complement cell.
type Word int16

// Wrap16 truncates x to its low 16 bits and reinterprets them as a signed
// Word.
func Wrap16(x int64) Word {
	return Word(int16(x))
}

const (
	DefaultMemorySize = 19900
	GlobalCount       = 401 // words 0..400
	ProgStart         = 401 // PROGSTART
)

// opcodes, low three bits of an instruction word
type Opcode uint8

const (
	OP_L Opcode = iota // load
	OP_S               // store
	OP_A               // add
	OP_J               // jump
	OP_T               // jump if true
	OP_F               // jump if false
	OP_K               // call
	OP_X               // execute operator
)

var opcodeLetters = [8]byte{'L', 'S', 'A', 'J', 'T', 'F', 'K', 'X'}

func (op Opcode) String() string {
	if int(op) < len(opcodeLetters) {
		return string(opcodeLetters[op])
	}
	return fmt.Sprintf("op%d", uint8(op))
}

// OpcodeForLetter maps an assembler mnemonic letter to its opcode.
func OpcodeForLetter(c byte) (Opcode, bool) {
	for i, l := range opcodeLetters {
		if l == c {
			return Opcode(i), true
		}
	}
	return 0, false
}

// instruction word layout
const (
	OpcodeMask    = 0x7
	FlagIndirect  = 1 << 3 // I
	FlagFrameRel  = 1 << 4 // P
	FlagDataWord  = 1 << 5 // D: operand is the following word
	OperandShift  = 8
	InlineMaximum = 0xFF
)

// Encode builds an instruction word with an inline operand. operand must be
// in 0..InlineMaximum.
func Encode(op Opcode, flags int, operand int) Word {
	return Wrap16(int64(int(op) | flags | operand<<OperandShift))
}

// Instruction is a decoded instruction word.
type Instruction struct {
	Op            Opcode
	Indirect      bool
	FrameRelative bool
	DataWord      bool
	Operand       int // inline operand; meaningless when DataWord is set
}

func Decode(w Word) Instruction {
	u := uint16(w)
	return Instruction{
		Op:            Opcode(u & OpcodeMask),
		Indirect:      u&FlagIndirect != 0,
		FrameRelative: u&FlagFrameRel != 0,
		DataWord:      u&FlagDataWord != 0,
		Operand:       int(u>>OperandShift) & InlineMaximum,
	}
}

// Mnemonic renders the instruction in assembler syntax. data is the
// following word and is only consulted when DataWord is set.
func (in Instruction) Mnemonic(data Word) string {
	s := in.Op.String()
	if in.Indirect {
		s += "I"
	}
	if in.FrameRelative {
		s += "P"
	}
	if in.DataWord {
		return fmt.Sprintf("%s%d", s, data)
	}
	return fmt.Sprintf("%s%d", s, in.Operand)
}

// Boolean results of the relational operators.
const (
	True  Word = -1
	False Word = 0
)

func boolWord(b bool) Word {
	if b {
		return True
	}
	return False
}
