package vm

// systemCall dispatches a K-code. Arguments start two words above the frame.
func (cpu *cpu) systemCall(callNum, frame int) {
	r := &cpu.internalRegisters
	args := frame + 2

	switch callNum {
	case 0, K_START, K_SETPM, K_ABORT, K_BACKTRACE:

	case K_SELECTINPUT:
		cpu.io.cis = int(cpu.arg(args, 0))
	case K_SELECTOUTPUT:
		cpu.io.cos = int(cpu.arg(args, 0))
	case K_INPUT:
		r.a = Word(cpu.io.cis)
	case K_OUTPUT:
		r.a = Word(cpu.io.cos)
	case K_FINDINPUT:
		r.a = SysIn
	case K_FINDOUTPUT:
		r.a = SysPrint
	case K_ENDREAD, K_ENDWRITE:

	case K_RDCH:
		r.a = Word(cpu.io.rdch())
	case K_UNRDCH:
		cpu.io.unrdch()
	case K_REWIND:
		cpu.io.inputPos = 0
	case K_WRCH:
		cpu.io.wrch(int(cpu.arg(args, 0)))
	case K_BINWRCH:
		if cpu.io.printing() {
			cpu.io.output.WriteByte(byte(cpu.arg(args, 0)))
		}
	case K_NEWLINE:
		cpu.io.wrch('\n')
	case K_NEWPAGE:
		cpu.io.wrch('\f')

	case K_STOP:
		r.a = cpu.arg(args, 0)
		cpu.stop()

	case K_LEVEL:
		r.a = Word(r.sp)
	case K_LONGJUMP:
		r.sp = int(cpu.arg(args, 0))
		r.pc = int(cpu.arg(args, 1))

	case K_APTOVEC:
		// frame for the routine sits above the n+1 word vector
		n := cpu.arg(args, 1)
		b := frame + int(n) + 1
		cpu.memWrite(b, Word(r.sp))
		cpu.memWrite(b+1, Word(r.pc))
		cpu.memWrite(b+2, Word(frame))
		cpu.memWrite(b+3, n)
		r.sp = b
		r.pc = int(cpu.arg(args, 0))

	case K_WRITES:
		cpu.writes(int(cpu.arg(args, 0)))
	case K_WRITEN:
		cpu.io.writed(cpu.arg(args, 0), 0)
	case K_WRITED:
		cpu.io.writed(cpu.arg(args, 0), int(cpu.arg(args, 1)))
	case K_WRITEHEX:
		cpu.io.writeBase(cpu.arg(args, 0), int(cpu.arg(args, 1)), 16)
	case K_WRITEOCT:
		cpu.io.writeBase(cpu.arg(args, 0), int(cpu.arg(args, 1)), 8)
	case K_WRITEF:
		cpu.writef(args)

	case K_READN:
		r.a = cpu.io.readn()
	case K_TERMINATOR:
		r.a = Word(cpu.io.lastTerm)

	case K_PACKSTRING:
		r.a = cpu.packString(int(cpu.arg(args, 0)), int(cpu.arg(args, 1)))
	case K_UNPACKSTRING:
		cpu.unpackString(int(cpu.arg(args, 0)), int(cpu.arg(args, 1)))

	case K_GETBYTE:
		r.a = Word(cpu.getByte(int(cpu.arg(args, 0)), int(cpu.arg(args, 1))))
	case K_PUTBYTE:
		cpu.setByte(int(cpu.arg(args, 0)), int(cpu.arg(args, 1)), byte(cpu.arg(args, 2)))

	case K_GETVEC:
		r.a = cpu.getvec(int(cpu.arg(args, 0)))
	case K_FREEVEC:

	case K_MULDIV:
		a, b, c := int64(cpu.arg(args, 0)), int64(cpu.arg(args, 1)), int64(cpu.arg(args, 2))
		if c != 0 {
			r.a = Wrap16(a * b / c)
			cpu.result2 = Wrap16(a * b % c)
		}
	case K_RESULT2:
		r.a = cpu.result2

	default:
		log.Warningf("%s %d at pc %d ignored", UnknownSystemCall, callNum, cpu.lastpc)
	}
}

// getvec carves n words off the top of free memory and returns their base,
// or 0 once the heap would run into the current frame.
func (cpu *cpu) getvec(n int) Word {
	if n < 0 {
		return 0
	}
	top := cpu.himem - n
	if top <= cpu.internalRegisters.sp {
		return 0
	}
	cpu.himem = top
	return Word(top)
}

// bcplString reads a length-prefixed, byte-packed string.
func (cpu *cpu) bcplString(addr int) []byte {
	n := cpu.getByte(addr, 0)
	s := make([]byte, n)
	for i := range s {
		s[i] = cpu.getByte(addr, i+1)
	}
	return s
}

func (cpu *cpu) getByte(addr, offset int) byte {
	b, err := cpu.memory.GetByte(addr, offset)
	cpu.check(err)
	return b
}

func (cpu *cpu) setByte(addr, offset int, value byte) {
	cpu.check(cpu.memory.SetByte(addr, offset, value))
}

func (cpu *cpu) writes(addr int) {
	for _, c := range cpu.bcplString(addr) {
		cpu.io.wrch(int(c))
	}
}

// writef interprets %S %N %C %I<w> %X<w> %O<w>, taking one argument word
// per specifier from args+1 onwards.
func (cpu *cpu) writef(args int) {
	format := cpu.bcplString(int(cpu.arg(args, 0)))
	next := 1
	take := func() Word {
		w := cpu.arg(args, next)
		next++
		return w
	}
	width := func(i *int) int {
		*i++
		if *i < len(format) {
			return int(format[*i]) - '0'
		}
		return 0
	}

	for i := 0; i < len(format); i++ {
		ch := format[i]
		if ch != '%' {
			cpu.io.wrch(int(ch))
			continue
		}
		i++
		if i >= len(format) {
			break
		}
		switch spec := format[i]; spec {
		case 'S':
			cpu.writes(int(take()))
		case 'N':
			cpu.io.writed(take(), 0)
		case 'C':
			cpu.io.wrch(int(take()))
		case 'I':
			w := width(&i)
			cpu.io.writed(take(), w)
		case 'X':
			w := width(&i)
			cpu.io.writeBase(take(), w, 16)
		case 'O':
			w := width(&i)
			cpu.io.writeBase(take(), w, 8)
		default:
			cpu.io.wrch(int(spec))
		}
	}
}

// packString packs v!1..v!n (n = v!0) into s as a BCPL string and returns
// the index of the last word written.
func (cpu *cpu) packString(v, s int) Word {
	n := int(cpu.memRead(v)) & 0xFF
	for i := 0; i <= n; i++ {
		cpu.setByte(s, i, byte(cpu.memRead(v+i)))
	}
	// clear the unused lane of the final word
	if (n+1)%2 == 1 {
		cpu.setByte(s, n+1, 0)
	}
	return Word(n / 2)
}

// unpackString stores the length and each character of s into v!0..v!n.
func (cpu *cpu) unpackString(s, v int) {
	n := int(cpu.getByte(s, 0))
	for i := 0; i <= n; i++ {
		cpu.memWrite(v+i, Word(cpu.getByte(s, i)))
	}
}
