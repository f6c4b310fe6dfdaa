package disasm

import "fmt"

// WarningKind identifies a non fatal condition found during disassembly.
type WarningKind uint8

// Warning kinds.
const (
	Overlap          WarningKind = iota // instruction would overlap already claimed bytes
	UnresolvedTarget                    // jump target is held in a register
	MidInstruction                      // start address inside the operand of an instruction
)

func (k WarningKind) String() string {
	switch k {
	case Overlap:
		return "overlap"
	case UnresolvedTarget:
		return "unresolved target"
	case MidInstruction:
		return "mid instruction start"
	default:
		return fmt.Sprintf("WarningKind(%d)", k)
	}
}

// Warning describes a condition that terminated a disassembly thread or
// required an offset label.
type Warning struct {
	Kind    WarningKind
	Address uint16
	Head    uint16 // instruction containing Address, set for MidInstruction
	Message string
}

func (w Warning) String() string {
	if w.Kind == MidInstruction {
		return fmt.Sprintf("%04X: %s (instruction at %04X)", w.Address, w.Message, w.Head)
	}
	return fmt.Sprintf("%04X: %s", w.Address, w.Message)
}
