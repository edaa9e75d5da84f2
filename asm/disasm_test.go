package asm

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestDisassemble(t *testing.T) {
	img, _ := assemble(t, "G1L1\n1 L5 LL2 X8 X99\n2 C7")
	var buf bytes.Buffer
	if err := Disassemble(&buf, img); err != nil {
		t.Fatal(err)
	}
	listing := buf.String()
	for _, line := range []string{
		"  401  LI1        / 264\n",
		"  403  X22        / finish\n",
		"  404  L5         / 1280\n",
		"  405  L409       / 32 409\n",
		"  407  X8         / plus\n",
		"  408  X99        / 25351\n",
		"  409  X0         / 7\n",
	} {
		if !strings.Contains(listing, line) {
			t.Errorf("listing lacks %q:\n%s", line, listing)
		}
	}
	if n := strings.Count(listing, "\n"); n != 8 {
		t.Errorf("listing has %d lines, want 8", n)
	}
}

type failingWriter struct{}

var errWrite = errors.New("write failed")

func (failingWriter) Write([]byte) (int, error) {
	return 0, errWrite
}

func TestDisassembleWriteError(t *testing.T) {
	img, _ := assemble(t, "X22")
	if err := Disassemble(failingWriter{}, img); !errors.Is(err, errWrite) {
		t.Errorf("error = %v, want %v", err, errWrite)
	}
}
