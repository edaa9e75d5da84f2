package asm

import (
	"errors"
	"fmt"
)

var (
	ErrLabelRange    = errors.New("label number out of range")
	ErrGlobalRange   = errors.New("global number out of range")
	ErrImageOverflow = errors.New("program does not fit in memory")
)

// Error is a fatal assembly error at a source position.
type Error struct {
	Line, Col int
	Err       error  // one of the sentinels above
	Cause     error  // underlying memory error, if any
	Detail    string // e.g. the offending number
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("asm:%d:%d: %s", e.Line, e.Col, e.Err)
	if e.Detail != "" {
		msg += " " + e.Detail
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

// WarningKind classifies non-fatal assembly diagnostics.
type WarningKind int

const (
	UnresolvedLabel WarningKind = iota
	DuplicateLabel
	UnknownCharacter
	MalformedGlobal
	CorruptChain
)

var strWarning = []string{
	"unresolved label",
	"duplicate label",
	"unknown character",
	"malformed global directive",
	"corrupt reference chain",
}

func (k WarningKind) String() string {
	return strWarning[k]
}

// Warning is a diagnostic that does not stop assembly.
type Warning struct {
	Kind      WarningKind
	Label     int  // label number, for label warnings
	Addr      int  // chain head or previous definition
	Char      byte // offending character for UnknownCharacter
	Line, Col int
}

func (w Warning) String() string {
	pos := fmt.Sprintf("%d:%d", w.Line, w.Col)
	switch w.Kind {
	case UnresolvedLabel:
		return fmt.Sprintf("%s: %s L%d (first reference chain at %d)", pos, w.Kind, w.Label, w.Addr)
	case DuplicateLabel:
		return fmt.Sprintf("%s: %s L%d (was %d)", pos, w.Kind, w.Label, w.Addr)
	case UnknownCharacter:
		return fmt.Sprintf("%s: %s %q", pos, w.Kind, w.Char)
	case CorruptChain:
		return fmt.Sprintf("%s: %s for L%d", pos, w.Kind, w.Label)
	}
	return pos + ": " + w.Kind.String()
}
