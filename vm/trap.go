package vm

// system calls (K-codes): a Call whose target is below ProgStart
const (
	K_START        = 1
	K_SETPM        = 2
	K_ABORT        = 3
	K_BACKTRACE    = 4
	K_SELECTINPUT  = 11
	K_SELECTOUTPUT = 12
	K_RDCH         = 13
	K_WRCH         = 14
	K_UNRDCH       = 15
	K_INPUT        = 16
	K_OUTPUT       = 17
	K_STOP         = 30
	K_LEVEL        = 31
	K_LONGJUMP     = 32
	K_BINWRCH      = 34
	K_REWIND       = 35
	K_APTOVEC      = 40
	K_FINDOUTPUT   = 41
	K_FINDINPUT    = 42
	K_ENDREAD      = 46
	K_ENDWRITE     = 47
	K_WRITES       = 60
	K_WRITEN       = 62
	K_NEWLINE      = 63
	K_NEWPAGE      = 64
	K_PACKSTRING   = 66
	K_UNPACKSTRING = 67
	K_WRITED       = 68
	K_READN        = 70
	K_TERMINATOR   = 71
	K_WRITEHEX     = 75
	K_WRITEF       = 76
	K_WRITEOCT     = 77
	K_GETBYTE      = 85
	K_PUTBYTE      = 86
	K_GETVEC       = 87
	K_FREEVEC      = 88
	K_MULDIV       = 90
	K_RESULT2      = 91
)

// operators selected by the Execute opcode
const (
	X_RV     = 1 // indirection
	X_NEG    = 2
	X_NOT    = 3
	X_RTRN   = 4
	X_MULT   = 5
	X_DIV    = 6
	X_REM    = 7
	X_PLUS   = 8
	X_MINUS  = 9
	X_EQ     = 10
	X_NE     = 11
	X_LS     = 12
	X_GE     = 13
	X_GR     = 14
	X_LE     = 15
	X_LSHIFT = 16
	X_RSHIFT = 17
	X_LOGAND = 18
	X_LOGOR  = 19
	X_NEQV   = 20
	X_EQV    = 21
	X_FINISH = 22
	X_SWITCH = 23
)

// OperatorName returns a short name for an operator id, or "" when the id
// is not defined.
func OperatorName(op int) string {
	if op > 0 && op < len(operatorNames) {
		return operatorNames[op]
	}
	return ""
}

var operatorNames = [...]string{
	"",
	"rv", "neg", "not", "rtrn", "mult", "div", "rem", "plus", "minus",
	"eq", "ne", "ls", "ge", "gr", "le", "lshift", "rshift",
	"logand", "logor", "neqv", "eqv", "finish", "switchon",
}

// Stream handles returned by FINDINPUT/FINDOUTPUT. Only output selected to
// SysPrint reaches the output buffer.
const (
	SysIn    = 1
	SysPrint = 1
)

// EndStreamCh is returned by RDCH once the input is exhausted.
const EndStreamCh = -1
