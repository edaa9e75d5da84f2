package asm

import (
	"fmt"
	"io"

	"github.com/aryanA101a/intcode-vm-go/vm"
)

// Disassemble writes a linear listing of img from ProgStart. Code and data
// share the address space, so data words are decoded as if they were
// instructions; the raw value is printed alongside for that reason.
func Disassemble(w io.Writer, img vm.Image) error {
	for addr := vm.ProgStart; addr < len(img); {
		word := img[addr]
		in := vm.Decode(word)
		var data vm.Word
		size := 1
		if in.DataWord && addr+1 < len(img) {
			data = img[addr+1]
			size = 2
		}

		text := in.Mnemonic(data)
		note := ""
		switch {
		case in.Op == vm.OP_X && !in.DataWord && !in.Indirect && !in.FrameRelative:
			note = vm.OperatorName(in.Operand)
		case size == 2:
			note = fmt.Sprintf("%d %d", word, data)
		}

		var err error
		if note != "" {
			_, err = fmt.Fprintf(w, "%5d  %-10s / %s\n", addr, text, note)
		} else {
			_, err = fmt.Fprintf(w, "%5d  %-10s / %d\n", addr, text, word)
		}
		if err != nil {
			return err
		}
		addr += size
	}
	return nil
}
