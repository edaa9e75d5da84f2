package asm

// labelTable maps label numbers to their state:
//
//	0    never referenced
//	> 0  head of a backpatch chain threaded through the image
//	< 0  defined; the magnitude is the address
type labelTable []int

func newLabelTable(size int) labelTable {
	return make(labelTable, size)
}

func (t labelTable) inRange(n int) bool {
	return n >= 0 && n < len(t)
}

func (t labelTable) defined(n int) (int, bool) {
	if t[n] < 0 {
		return -t[n], true
	}
	return 0, false
}

// unresolved lists labels that were referenced but never defined, with the
// head of each one's chain.
func (t labelTable) unresolved() [][2]int {
	var out [][2]int
	for n, v := range t {
		if v > 0 {
			out = append(out, [2]int{n, v})
		}
	}
	return out
}
