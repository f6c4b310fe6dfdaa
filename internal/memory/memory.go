// Package memory implements the 64KB address space that a binary image is loaded into.
package memory

// Size is the number of addressable bytes.
const Size = 1 << 16

// AddressSpace holds the memory image being disassembled. All addresses are 16 bit,
// so arithmetic on them wraps around at the end of the address space.
type AddressSpace struct {
	data     [Size]byte
	fileName string
}

// New returns an empty address space filled with zero bytes.
func New() *AddressSpace {
	return &AddressSpace{}
}

// FromBytes returns an address space with data copied to start.
// Bytes that would extend past the end of the address space are dropped.
func FromBytes(start uint16, data []byte) *AddressSpace {
	m := New()
	m.Load(start, data)
	return m
}

// Load copies data into the address space beginning at start and returns
// the number of bytes copied.
func (m *AddressSpace) Load(start uint16, data []byte) int {
	return copy(m.data[start:], data)
}

// Read returns the byte at address.
func (m *AddressSpace) Read(address uint16) byte {
	return m.data[address]
}

// ReadWord returns the little endian word stored at address.
func (m *AddressSpace) ReadWord(address uint16) uint16 {
	low := uint16(m.data[address])
	high := uint16(m.data[address+1])
	return high<<8 | low
}

// ReadSlice returns a copy of n bytes starting at address. Every address is
// masked individually, so a slice that crosses 0xFFFF continues at 0x0000.
func (m *AddressSpace) ReadSlice(address uint16, n int) []byte {
	b := make([]byte, n)
	for i := range n {
		b[i] = m.data[address+uint16(i)]
	}
	return b
}

// Window returns a copy of the inclusive address range [start, end].
func (m *AddressSpace) Window(start, end uint16) []byte {
	if end < start {
		return nil
	}
	return m.ReadSlice(start, int(end)-int(start)+1)
}

// FileName returns the name of the file the image was loaded from, if any.
func (m *AddressSpace) FileName() string {
	return m.fileName
}

// SetFileName tags the address space with the name of its source file.
func (m *AddressSpace) SetFileName(name string) {
	m.fileName = name
}
