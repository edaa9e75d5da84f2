package vm

import (
	"bytes"
	"strconv"
	"strings"
)

// io is the emulated runtime's stream state: a pre-seeded input buffer, the
// captured output and the currently selected handles.
type io struct {
	input    []byte
	inputPos int
	output   bytes.Buffer
	cis, cos int
	lastTerm int // character that ended the last readn
}

func newIO() io {
	return io{cis: SysIn, cos: SysPrint, lastTerm: EndStreamCh}
}

func (io *io) rdch() int {
	if io.inputPos < len(io.input) {
		c := io.input[io.inputPos]
		io.inputPos++
		return int(c)
	}
	return EndStreamCh
}

func (io *io) peek() int {
	if io.inputPos < len(io.input) {
		return int(io.input[io.inputPos])
	}
	return EndStreamCh
}

func (io *io) unrdch() {
	if io.inputPos > 0 {
		io.inputPos--
	}
}

func (io *io) printing() bool {
	return io.cos == SysPrint
}

// wrch appends one byte when output is selected to SysPrint.
func (io *io) wrch(ch int) {
	if !io.printing() {
		return
	}
	if ch == 10 {
		io.output.WriteByte('\n')
		return
	}
	io.output.WriteByte(byte(ch))
}

func (io *io) writeString(s string) {
	if io.printing() {
		io.output.WriteString(s)
	}
}

func (io *io) writed(n Word, width int) {
	s := strconv.Itoa(int(n))
	if pad := width - len(s); pad > 0 {
		s = strings.Repeat(" ", pad) + s
	}
	io.writeString(s)
}

func (io *io) writeBase(n Word, width, base int) {
	s := strings.ToUpper(strconv.FormatUint(uint64(uint16(n)), base))
	if pad := width - len(s); pad > 0 {
		s = strings.Repeat("0", pad) + s
	}
	io.writeString(s)
}

// readn skips leading blanks, accepts an optional '-' and a run of decimal
// digits. The terminating character is left unread.
func (io *io) readn() Word {
	for {
		c := io.peek()
		if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
			break
		}
		io.inputPos++
	}
	neg := false
	if io.peek() == '-' {
		neg = true
		io.inputPos++
	}
	var n int64
	for {
		c := io.peek()
		if c < '0' || c > '9' {
			io.lastTerm = c
			break
		}
		n = (n*10 + int64(c-'0')) & 0xFFFF
		io.inputPos++
	}
	if neg {
		n = -n
	}
	return Wrap16(n)
}
