package instruction

import "github.com/retroenv/retrogolib/arch/cpu/z80"

// Category classifies an instruction by its effect on control flow.
type Category uint8

// Instruction categories.
const (
	Other Category = iota
	Return
	UnconditionalJump
	ConditionalJump
	Call
	IndirectJump
	RelativeJumpUnconditional
	RelativeJumpConditional
	Restart
)

var categoryNames = map[Category]string{
	Other:                     "other",
	Return:                    "return",
	UnconditionalJump:         "unconditional jump",
	ConditionalJump:           "conditional jump",
	Call:                      "call",
	IndirectJump:              "indirect jump",
	RelativeJumpUnconditional: "unconditional relative jump",
	RelativeJumpConditional:   "conditional relative jump",
	Restart:                   "restart",
}

func (c Category) String() string {
	return categoryNames[c]
}

// opcodeInfo returns the CPU opcode entry addressed by the literal leading
// bytes of a pattern.
func opcodeInfo(pattern []patternByte) (z80.Opcode, bool) {
	if len(pattern) == 0 || pattern[0].wildcard {
		return z80.Opcode{}, false
	}
	first := pattern[0].value

	var table *[256]z80.Opcode
	switch PrefixOf(first) {
	case PrefixNone:
		op := z80.Opcodes[first]
		return op, op.Instruction != nil
	case PrefixCB:
		table = &z80.CBOpcodes
	case PrefixDD:
		table = &z80.DDOpcodes
	case PrefixED:
		table = &z80.EDOpcodes
	case PrefixFD:
		table = &z80.FDOpcodes
	default:
		return z80.Opcode{}, false
	}

	if len(pattern) < 2 || pattern[1].wildcard {
		return z80.Opcode{}, false
	}
	op := table[pattern[1].value]
	return op, op.Instruction != nil
}

// categorize derives the category from the literal leading bytes of a mask.
func categorize(pattern []patternByte) Category {
	op, ok := opcodeInfo(pattern)
	if !ok {
		return Other
	}

	ins := op.Instruction
	if !z80.BranchingInstructions.Contains(ins.Name) &&
		!z80.NotExecutingFollowingOpcodeInstructions.Contains(ins.Name) {
		return Other
	}

	switch ins.Name {
	case z80.JpName:
		switch {
		case op.Addressing != z80.ExtendedAddressing: // JP (HL), JP (IX), JP (IY)
			return IndirectJump
		case ins == z80.JpCond:
			return ConditionalJump
		default:
			return UnconditionalJump
		}

	case z80.JrName:
		if ins == z80.JrCond {
			return RelativeJumpConditional
		}
		return RelativeJumpUnconditional

	case z80.DjnzName:
		return RelativeJumpConditional

	case z80.CallName:
		return Call

	case z80.RstName:
		return Restart

	case z80.RetName:
		if ins == z80.RetCond {
			return Other
		}
		return Return

	case z80.RetiName, z80.RetnName:
		return Return

	default: // HALT
		return Other
	}
}
