package main

import (
	"context"
	"errors"
	"fmt"
	goIO "io"
	"os"
	"strings"

	"github.com/peterh/liner"

	"github.com/aryanA101a/intcode-vm-go/asm"
	"github.com/aryanA101a/intcode-vm-go/config"
	"github.com/aryanA101a/intcode-vm-go/vm"
)

const replHelp = `Lines of INTCODE are collected into a program buffer.
  :run [input]   assemble the buffer and run it, optionally with input text
  :asm           assemble and report size and warnings
  :dis           assemble and disassemble
  :list          show the buffer
  :clear         empty the buffer
  :quit          leave
`

type repl struct {
	cfg    *config.Config
	source []string
	out    goIO.Writer
}

func cmdRepl(ctx context.Context, cfg *config.Config) int {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	r := &repl{cfg: cfg, out: os.Stdout}
	fmt.Fprintln(r.out, "INTCODE monitor, :help for commands")
	for {
		line, err := ln.Prompt("intcode> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, goIO.EOF) {
				fmt.Fprintln(r.out)
				return 0
			}
			fmt.Fprintf(os.Stderr, "intcode repl: %v\n", err)
			return 1
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		ln.AppendHistory(line)
		if r.handle(ctx, line) {
			return 0
		}
	}
}

// handle processes one line and reports whether the session should end.
func (r *repl) handle(ctx context.Context, line string) (exit bool) {
	if !strings.HasPrefix(line, ":") {
		r.source = append(r.source, line)
		return false
	}
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	switch cmd {
	case ":quit", ":q":
		return true
	case ":help":
		fmt.Fprint(r.out, replHelp)
	case ":list":
		for i, l := range r.source {
			fmt.Fprintf(r.out, "%4d  %s\n", i+1, l)
		}
	case ":clear":
		r.source = nil
	case ":asm":
		if img, ok := r.assemble(); ok {
			fmt.Fprintf(r.out, "%d words of program\n", len(img)-vm.ProgStart)
		}
	case ":dis":
		if img, ok := r.assemble(); ok {
			asm.Disassemble(r.out, img)
		}
	case ":run":
		img, ok := r.assemble()
		if !ok {
			return false
		}
		machine := vm.NewVM(r.cfg.VMConfig())
		if err := machine.Load(img); err != nil {
			fmt.Fprintf(r.out, "error: %v\n", err)
			return false
		}
		machine.SetInput([]byte(unescape(arg)))
		res := machine.Run(ctx)
		fmt.Fprint(r.out, res.Output)
		if !strings.HasSuffix(res.Output, "\n") && res.Output != "" {
			fmt.Fprintln(r.out)
		}
		if res.Success {
			fmt.Fprintf(r.out, "[finished: a=%d, %d instructions]\n", res.ExitCode, res.Steps)
		} else {
			fmt.Fprintf(r.out, "[failed: %v]\n", res.Err)
		}
	default:
		fmt.Fprintf(r.out, "unknown command %s\n", cmd)
	}
	return false
}

func (r *repl) assemble() (vm.Image, bool) {
	as := asm.New(r.cfg.AsmConfig())
	img, err := as.Assemble(strings.Join(r.source, "\n"))
	for _, w := range as.Warnings() {
		fmt.Fprintf(r.out, "warning: %s\n", w)
	}
	if err != nil {
		fmt.Fprintf(r.out, "error: %v\n", err)
		return nil, false
	}
	return img, true
}

// unescape turns \n in :run input into line feeds.
func unescape(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}
