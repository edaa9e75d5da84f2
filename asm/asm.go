// Package asm turns symbolic INTCODE into a loadable memory image in one
// forward pass. Forward references are threaded through the image itself
// and patched when their label is defined.
package asm

import (
	"fmt"

	"github.com/aryanA101a/intcode-vm-go/vm"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("intcode.asm")

const eof = -1

// Config sizes the image and the label table.
type Config struct {
	LabelTableSize int
	MemorySize     int
}

func DefaultConfig() Config {
	return Config{
		LabelTableSize: 10000,
		MemorySize:     vm.DefaultMemorySize,
	}
}

// Assembler holds the state of one assembly run. Assemble may be called
// repeatedly; each call starts from a fresh image and label table.
type Assembler struct {
	config Config

	mem    *vm.Memory
	labels labelTable
	lomem  int // write cursor

	src       string
	pos       int
	ch        int
	line, col int

	warnings []Warning
	err      error
}

func New(config Config) *Assembler {
	def := DefaultConfig()
	if config.LabelTableSize <= 0 {
		config.LabelTableSize = def.LabelTableSize
	}
	if config.MemorySize <= vm.ProgStart {
		config.MemorySize = def.MemorySize
	}
	return &Assembler{config: config}
}

// Assemble is a convenience wrapper using DefaultConfig.
func Assemble(text string) (vm.Image, []Warning, error) {
	as := New(DefaultConfig())
	img, err := as.Assemble(text)
	return img, as.Warnings(), err
}

// Warnings returns the diagnostics of the last Assemble call.
func (as *Assembler) Warnings() []Warning {
	return as.warnings
}

// Assemble returns the image from address 0 up to the final write cursor.
// A non-nil error means the image is unusable; warnings never abort.
func (as *Assembler) Assemble(text string) (vm.Image, error) {
	as.mem = vm.NewMemory(as.config.MemorySize)
	as.labels = newLabelTable(as.config.LabelTableSize)
	as.lomem = vm.ProgStart
	as.src, as.pos, as.line, as.col = text, 0, 1, 0
	as.warnings = nil
	as.err = nil

	as.bootstrap()
	as.assemble()
	if as.err != nil {
		return nil, as.err
	}
	as.reportUnresolved()

	log.Infof("assembled %d words, %d warnings", as.lomem-vm.ProgStart, len(as.warnings))
	return as.mem.Image(as.lomem), nil
}

// bootstrap emits the self-starting prologue: load the entry point from
// global 1, call it, finish if it returns.
func (as *Assembler) bootstrap() {
	as.stw(vm.Encode(vm.OP_L, vm.FlagIndirect, 1))
	as.stw(vm.Encode(vm.OP_K, 0, 2))
	as.stw(vm.Encode(vm.OP_X, 0, vm.X_FINISH))
}

func (as *Assembler) assemble() {
	as.rch()
	for as.err == nil {
		c := as.ch
		switch {
		case c == eof:
			return
		case c == '$' || c <= ' ':
			as.rch()
		case isDigit(c) || c == '-':
			as.setLabel(as.rdn())
		default:
			as.statement(byte(c))
		}
	}
}

func (as *Assembler) statement(c byte) {
	if op, ok := vm.OpcodeForLetter(c); ok {
		as.instruction(op)
		return
	}

	switch c {
	case 'C':
		as.rch()
		as.stw(vm.Wrap16(int64(as.rdn())))

	case 'D':
		as.rch()
		if as.ch == 'L' {
			as.rch()
			as.stw(0)
			as.labref(as.rdn(), as.lomem-1)
		} else {
			as.stw(vm.Wrap16(int64(as.rdn())))
		}

	case 'G':
		as.rch()
		line, col := as.line, as.col
		g := as.rdn()
		if as.ch != 'L' {
			as.warn(Warning{Kind: MalformedGlobal, Line: line, Col: col})
			return
		}
		as.rch()
		if g <= 0 || g >= vm.GlobalCount {
			as.fail(ErrGlobalRange, nil, fmt.Sprintf("G%d", g))
			return
		}
		as.store(g, 0)
		as.labref(as.rdn(), g)

	case 'Z':
		as.reportUnresolved()
		as.labels = newLabelTable(as.config.LabelTableSize)
		as.rch()

	default:
		as.warn(Warning{Kind: UnknownCharacter, Char: c, Line: as.line, Col: as.col})
		as.rch()
	}
}

// instruction reads optional I and P flags, then a G<n>, L<label> or plain
// numeric operand.
func (as *Assembler) instruction(op vm.Opcode) {
	as.rch()
	flags := 0
	if as.ch == 'I' {
		flags |= vm.FlagIndirect
		as.rch()
	}
	if as.ch == 'P' {
		flags |= vm.FlagFrameRel
		as.rch()
	}
	global := false
	if as.ch == 'G' {
		global = true
		as.rch()
	}

	if as.ch == 'L' {
		as.rch()
		as.stw(vm.Encode(op, flags|vm.FlagDataWord, 0))
		as.stw(0)
		as.labref(as.rdn(), as.lomem-1)
		return
	}

	n := as.rdn()
	if !global && n >= 0 && n <= vm.InlineMaximum {
		as.stw(vm.Encode(op, flags, n))
		return
	}
	as.stw(vm.Encode(op, flags|vm.FlagDataWord, 0))
	as.stw(vm.Wrap16(int64(n)))
}

// setLabel defines label n at the write cursor and patches every word on
// its chain.
func (as *Assembler) setLabel(n int) {
	if !as.labels.inRange(n) {
		as.fail(ErrLabelRange, nil, fmt.Sprintf("L%d (table size %d)", n, len(as.labels)))
		return
	}
	if prev, ok := as.labels.defined(n); ok {
		as.warn(Warning{Kind: DuplicateLabel, Label: n, Addr: prev, Line: as.line, Col: as.col})
	}

	addr := vm.Word(as.lomem)
	k := as.labels[n]
	for steps := 0; k > 0; steps++ {
		if steps >= as.mem.Len() {
			as.warn(Warning{Kind: CorruptChain, Label: n, Line: as.line, Col: as.col})
			break
		}
		next, err := as.mem.Read(k)
		if err != nil {
			as.fail(ErrImageOverflow, err, "")
			return
		}
		as.store(k, addr)
		k = int(next)
	}
	as.labels[n] = -as.lomem
}

// labref records a reference to label n from the word at addr: resolved at
// once if n is defined, otherwise pushed onto the label's chain.
func (as *Assembler) labref(n, addr int) {
	if as.err != nil {
		return
	}
	if !as.labels.inRange(n) {
		as.fail(ErrLabelRange, nil, fmt.Sprintf("L%d (table size %d)", n, len(as.labels)))
		return
	}
	if def, ok := as.labels.defined(n); ok {
		as.store(addr, vm.Word(def))
		return
	}
	as.store(addr, vm.Word(as.labels[n]))
	as.labels[n] = addr
}

func (as *Assembler) reportUnresolved() {
	for _, u := range as.labels.unresolved() {
		as.warn(Warning{Kind: UnresolvedLabel, Label: u[0], Addr: u[1], Line: as.line, Col: as.col})
	}
}

func (as *Assembler) stw(w vm.Word) {
	if as.err != nil {
		return
	}
	if err := as.mem.Write(as.lomem, w); err != nil {
		as.fail(ErrImageOverflow, err, fmt.Sprintf("at word %d", as.lomem))
		return
	}
	as.lomem++
}

func (as *Assembler) store(addr int, w vm.Word) {
	if as.err != nil {
		return
	}
	if err := as.mem.Write(addr, w); err != nil {
		as.fail(ErrImageOverflow, err, fmt.Sprintf("at word %d", addr))
	}
}

func (as *Assembler) fail(sentinel, cause error, detail string) {
	if as.err == nil {
		as.err = &Error{Line: as.line, Col: as.col, Err: sentinel, Cause: cause, Detail: detail}
	}
}

func (as *Assembler) warn(w Warning) {
	log.Warning(w.String())
	as.warnings = append(as.warnings, w)
}

// next reads one raw character.
func (as *Assembler) next() {
	if as.pos >= len(as.src) {
		as.ch = eof
		return
	}
	as.ch = int(as.src[as.pos])
	as.pos++
	if as.ch == '\n' {
		as.line++
		as.col = 0
	} else {
		as.col++
	}
}

// rch reads the next significant character. '/' starts a comment that runs
// to the end of the line and swallows the line terminators after it.
func (as *Assembler) rch() {
	as.next()
	for as.ch == '/' {
		for as.ch != '\n' && as.ch != '\r' && as.ch != eof {
			as.next()
		}
		for as.ch == '\n' || as.ch == '\r' {
			as.next()
		}
	}
}

// rdn reads an optionally negative decimal number.
func (as *Assembler) rdn() int {
	neg := false
	if as.ch == '-' {
		neg = true
		as.rch()
	}
	n := 0
	for isDigit(as.ch) {
		if n < 100_000_000 {
			n = n*10 + as.ch - '0'
		}
		as.rch()
	}
	if neg {
		return -n
	}
	return n
}

func isDigit(c int) bool {
	return c >= '0' && c <= '9'
}
