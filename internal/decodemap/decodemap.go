// Package decodemap tracks how every address of the disassembled window has been classified.
package decodemap

import (
	"errors"
	"fmt"

	"github.com/retroenv/z80disasm/internal/instruction"
	"github.com/retroenv/z80disasm/internal/memory"
)

// Kind is the classification of a single address.
type Kind uint8

// Address classifications.
const (
	Unclaimed Kind = iota
	Head
	Parameter
)

func (k Kind) String() string {
	switch k {
	case Unclaimed:
		return "unclaimed"
	case Head:
		return "instruction head"
	case Parameter:
		return "parameter"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// ErrNoInstruction is returned by HeadOf when the address is not part of a placed instruction.
var ErrNoInstruction = errors.New("address is not part of an instruction")

// ConflictError is returned when an instruction placement overlaps already claimed bytes.
type ConflictError struct {
	Address uint16
	Length  int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("instruction of %d bytes at 0x%04X overlaps claimed bytes", e.Length, e.Address)
}

type cell struct {
	kind Kind
	def  *instruction.Definition
}

// Map holds one classification cell per address and the disassembly bounds.
type Map struct {
	cells [memory.Size]cell
	start uint16
	end   uint16
}

// New returns a map with every address unclaimed and the given inclusive bounds.
func New(start, end uint16) (*Map, error) {
	if start > end {
		return nil, fmt.Errorf("start address 0x%04X is higher than end address 0x%04X", start, end)
	}
	return &Map{start: start, end: end}, nil
}

// Start returns the lower disassembly bound.
func (m *Map) Start() uint16 { return m.start }

// End returns the inclusive upper disassembly bound.
func (m *Map) End() uint16 { return m.end }

// IsInBounds returns whether the address lies inside the disassembly bounds.
func (m *Map) IsInBounds(address int) bool {
	return address >= int(m.start) && address <= int(m.end)
}

// Kind returns the classification of an address.
func (m *Map) Kind(address uint16) Kind {
	return m.cells[address].kind
}

// IsUnclaimed returns whether no instruction covers the address.
func (m *Map) IsUnclaimed(address uint16) bool {
	return m.cells[address].kind == Unclaimed
}

// IsHead returns whether an instruction starts at the address.
func (m *Map) IsHead(address uint16) bool {
	return m.cells[address].kind == Head
}

// IsParameter returns whether the address is an operand byte of an instruction.
func (m *Map) IsParameter(address uint16) bool {
	return m.cells[address].kind == Parameter
}

// Definition returns the instruction placed at a head address.
func (m *Map) Definition(address uint16) (*instruction.Definition, bool) {
	c := m.cells[address]
	if c.kind != Head {
		return nil, false
	}
	return c.def, true
}

// IsAvailable returns whether all bytes of [address, address+length) are unclaimed.
// A range reaching past the end of the address space is not available.
func (m *Map) IsAvailable(address uint16, length int) bool {
	if int(address)+length > memory.Size {
		return false
	}
	for i := range length {
		if m.cells[int(address)+i].kind != Unclaimed {
			return false
		}
	}
	return true
}

// Place claims the bytes of an instruction at address. The placement is atomic:
// on conflict no cell is modified.
func (m *Map) Place(address uint16, def *instruction.Definition) error {
	length := def.Len()
	if !m.IsAvailable(address, length) {
		return &ConflictError{Address: address, Length: length}
	}

	m.cells[address] = cell{kind: Head, def: def}
	for i := 1; i < length; i++ {
		m.cells[int(address)+i] = cell{kind: Parameter}
	}
	return nil
}

// HeadOf returns the head address of the instruction that the address belongs to.
func (m *Map) HeadOf(address uint16) (uint16, error) {
	a := int(address)
	for a >= 0 && m.cells[a].kind == Parameter {
		a--
	}
	if a < 0 || m.cells[a].kind != Head {
		return 0, fmt.Errorf("finding instruction of 0x%04X: %w", address, ErrNoInstruction)
	}
	return uint16(a), nil
}

// Heads returns the number of placed instructions inside the bounds.
func (m *Map) Heads() int {
	count := 0
	for a := int(m.start); a <= int(m.end); a++ {
		if m.cells[a].kind == Head {
			count++
		}
	}
	return count
}
