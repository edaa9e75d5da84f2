package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/aryanA101a/intcode-vm-go/config"
)

func TestReplSession(t *testing.T) {
	var out bytes.Buffer
	r := &repl{cfg: config.Default(), out: &out}
	ctx := context.Background()

	for _, line := range []string{
		"G1L1",
		"1 L13 K3 SP8 A1 FL2 LIP8 SP7 L14 K5 JL1",
		"2 X4",
		`:run hi\n`,
		":list",
	} {
		if r.handle(ctx, line) {
			t.Fatalf("%q ended the session", line)
		}
	}
	got := out.String()
	for _, want := range []string{"hi\n[finished:", "   2  1 L13 K3"} {
		if !strings.Contains(got, want) {
			t.Errorf("session output lacks %q:\n%s", want, got)
		}
	}

	out.Reset()
	r.handle(ctx, ":clear")
	r.handle(ctx, ":asm")
	if got := out.String(); got != "3 words of program\n" {
		t.Errorf(":asm after :clear = %q", got)
	}

	out.Reset()
	r.handle(ctx, "G0L1")
	r.handle(ctx, ":run")
	if !strings.HasPrefix(out.String(), "error: ") {
		t.Errorf("bad program: %q", out.String())
	}

	if !r.handle(ctx, ":quit") {
		t.Error(":quit did not end the session")
	}
}

func TestReplRunFailure(t *testing.T) {
	var out bytes.Buffer
	r := &repl{cfg: config.Default(), out: &out}
	r.handle(context.Background(), "G1L1\n1 X99")
	r.handle(context.Background(), ":run")
	if !strings.Contains(out.String(), "[failed: intcode: unknown operator 99") {
		t.Errorf("output = %q", out.String())
	}
}

func TestUnescape(t *testing.T) {
	if got := unescape(`a\nb\n`); got != "a\nb\n" {
		t.Errorf("unescape = %q", got)
	}
}
