package vm

import "testing"

func TestWrap16(t *testing.T) {
	tests := []struct {
		in   int64
		want Word
	}{
		{0, 0},
		{1, 1},
		{-1, -1},
		{32767, 32767},
		{32768, -32768},
		{-32768, -32768},
		{-32769, 32767},
		{65535, -1},
		{65536, 0},
		{1<<40 + 5, 5},
		{-(1 << 40) - 3, -3},
	}
	for _, tt := range tests {
		got := Wrap16(tt.in)
		if got != tt.want {
			t.Errorf("Wrap16(%d) = %d, want %d", tt.in, got, tt.want)
		}
		if again := Wrap16(int64(got)); again != got {
			t.Errorf("Wrap16(Wrap16(%d)) = %d, want %d", tt.in, again, got)
		}
	}
}

func TestEncodeDecode(t *testing.T) {
	tests := []struct {
		op       Opcode
		flags    int
		operand  int
		mnemonic string
	}{
		{OP_L, 0, 5, "L5"},
		{OP_S, FlagFrameRel, 3, "SP3"},
		{OP_L, FlagIndirect, 1, "LI1"},
		{OP_L, FlagIndirect | FlagFrameRel, 255, "LIP255"},
		{OP_K, 0, 2, "K2"},
		{OP_X, 0, 22, "X22"},
		{OP_J, FlagDataWord, 0, "J700"},
	}
	for _, tt := range tests {
		w := Encode(tt.op, tt.flags, tt.operand)
		in := Decode(w)
		if in.Op != tt.op {
			t.Errorf("Decode(%#x).Op = %v, want %v", uint16(w), in.Op, tt.op)
		}
		if in.Indirect != (tt.flags&FlagIndirect != 0) ||
			in.FrameRelative != (tt.flags&FlagFrameRel != 0) ||
			in.DataWord != (tt.flags&FlagDataWord != 0) {
			t.Errorf("Decode(%#x) flags = %+v, want %#x", uint16(w), in, tt.flags)
		}
		if !in.DataWord && in.Operand != tt.operand {
			t.Errorf("Decode(%#x).Operand = %d, want %d", uint16(w), in.Operand, tt.operand)
		}
		if got := in.Mnemonic(700); got != tt.mnemonic {
			t.Errorf("Mnemonic = %q, want %q", got, tt.mnemonic)
		}
	}
}

func TestOpcodeForLetter(t *testing.T) {
	for i, c := range []byte("LSAJTFKX") {
		op, ok := OpcodeForLetter(c)
		if !ok || op != Opcode(i) {
			t.Errorf("OpcodeForLetter(%q) = %v, %v", c, op, ok)
		}
		if op.String() != string(c) {
			t.Errorf("Opcode(%d).String() = %q", i, op.String())
		}
	}
	if _, ok := OpcodeForLetter('Q'); ok {
		t.Error("OpcodeForLetter('Q') reported an opcode")
	}
}
