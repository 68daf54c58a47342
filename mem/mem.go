// Package mem provides the DCPU-16 memory model: a flat 64 Ki-word address
// space shared by the CPU, devices, and the assembler's linked image.
package mem

// RamSize is the number of addressable words: the DCPU-16 address space is
// the full 16-bit range, word-addressed (not byte-addressed).
const RamSize = 1 << 16

// A Ram is the central (global) object that connects the CPU and every
// attached device together. Addresses wrap modulo RamSize; there is no
// memory-mapped division between RAM, ROM, and device windows at this
// layer -- devices claim regions by convention (their "_map" registers)
// and read/write through the same Ram a CPU instruction would use.
type Ram struct {
	Words [RamSize]uint16 // zeroed on init
}

// New returns a zeroed Ram.
func New() *Ram {
	return &Ram{}
}

// Read returns the word at addr.
func (r *Ram) Read(addr uint16) uint16 {
	return r.Words[addr]
}

// Write stores data at addr.
func (r *Ram) Write(addr uint16, data uint16) {
	r.Words[addr] = data
}

// Load copies program into Ram starting at offset, wrapping around the end
// of the address space if program does not fit before addr 0xffff.
func (r *Ram) Load(program []uint16, offset uint16) {
	addr := offset
	for _, w := range program {
		r.Words[addr] = w
		addr++ // uint16 wraps automatically
	}
}

// IterWrap returns the n words starting at offset, wrapping around the end
// of the address space. It is used by devices (LEM1802's video/font/
// palette maps, M35FD's DMA transfers) that read or write a contiguous
// region which may cross the 0xffff/0x0000 boundary.
func (r *Ram) IterWrap(offset uint16, n int) []uint16 {
	out := make([]uint16, n)
	addr := offset
	for i := range out {
		out[i] = r.Words[addr]
		addr++
	}
	return out
}

// CopyWrap writes data into Ram starting at offset, wrapping around the end
// of the address space. It is the write-side counterpart to IterWrap, used
// by M35FD sector reads (sector writes read RAM through IterWrap).
func (r *Ram) CopyWrap(data []uint16, offset uint16) {
	addr := offset
	for _, w := range data {
		r.Words[addr] = w
		addr++
	}
}

// GetString reads a NUL-terminated string out of Ram starting at addr, for
// host-side diagnostics (exposed as Cpu.GetString).
func (r *Ram) GetString(addr uint16) string {
	var b []byte
	for {
		w := r.Words[addr]
		if w == 0 {
			break
		}
		b = append(b, byte(w))
		addr++
	}
	return string(b)
}
