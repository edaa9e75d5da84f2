package vm

// Memory is the flat word store shared by code, data and frames.
type Memory struct {
	Ram []Word
}

// NewMemory allocates size words. The global vector is identity-initialised
// so that Ram[i] == i for 0 <= i < GlobalCount.
func NewMemory(size int) *Memory {
	ram := make([]Word, size)
	for i := 0; i < GlobalCount && i < size; i++ {
		ram[i] = Word(i)
	}
	return &Memory{Ram: ram}
}

func (mem *Memory) Len() int {
	return len(mem.Ram)
}

func (mem *Memory) Read(addr int) (Word, error) {
	if addr < 0 || addr >= len(mem.Ram) {
		return 0, &Error{Errno: MemoryFault, Addr: addr}
	}
	return mem.Ram[addr], nil
}

func (mem *Memory) Write(addr int, value Word) error {
	if addr < 0 || addr >= len(mem.Ram) {
		return &Error{Errno: MemoryFault, Addr: addr}
	}
	mem.Ram[addr] = value
	return nil
}

// Bytes are packed two per word, even offsets in the low lane.
func byteLane(addr, offset int) (int, uint) {
	wordAddr := addr + floorDiv(offset, 2)
	lane := uint(offset-2*floorDiv(offset, 2)) * 8
	return wordAddr, lane
}

func (mem *Memory) GetByte(addr, offset int) (byte, error) {
	wordAddr, lane := byteLane(addr, offset)
	w, err := mem.Read(wordAddr)
	if err != nil {
		return 0, err
	}
	return byte(uint16(w) >> lane), nil
}

func (mem *Memory) SetByte(addr, offset int, value byte) error {
	wordAddr, lane := byteLane(addr, offset)
	w, err := mem.Read(wordAddr)
	if err != nil {
		return err
	}
	u := uint16(w)&^(0xFF<<lane) | uint16(value)<<lane
	return mem.Write(wordAddr, Word(u))
}

// Image returns a copy of words [0, n).
func (mem *Memory) Image(n int) Image {
	img := make(Image, n)
	copy(img, mem.Ram[:n])
	return img
}

// Image is a loadable memory image starting at address 0.
type Image []Word

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
