// Package instruction contains the Z80 instruction definitions and the catalog used to match them.
package instruction

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/retroenv/retrogolib/arch/cpu/z80"
)

// Operand placeholders used in byte masks and mnemonic templates.
const (
	ByteToken         = "##"
	DisplacementToken = "%%"
	WordToken         = "####"

	undocumentedMarker = "*"
)

// Prefix is the prefix class of an instruction, selected by its first byte.
type Prefix uint8

// Prefix classes.
const (
	PrefixNone Prefix = iota
	PrefixCB
	PrefixDD
	PrefixED
	PrefixFD

	prefixCount
)

var prefixNames = [prefixCount]string{"NONE", "CB", "DD", "ED", "FD"}

func (p Prefix) String() string {
	if p >= prefixCount {
		return fmt.Sprintf("Prefix(%d)", p)
	}
	return prefixNames[p]
}

// PrefixOf returns the prefix class that an instruction starting with b belongs to.
func PrefixOf(b byte) Prefix {
	switch b {
	case z80.PrefixCB:
		return PrefixCB
	case z80.PrefixDD:
		return PrefixDD
	case z80.PrefixED:
		return PrefixED
	case z80.PrefixFD:
		return PrefixFD
	default:
		return PrefixNone
	}
}

type patternByte struct {
	value    byte
	wildcard bool
}

// Definition describes a single instruction: a byte mask with optional operand
// placeholders and the mnemonic template that renders it.
type Definition struct {
	mask     string
	template string
	mnemonic string

	pattern  []patternByte
	prefix   Prefix
	category Category

	wordIndex         int
	displacementIndex int
	dataIndex         int
	undocumented      bool
}

// Operands contains the rendered operand texts that replace the placeholders of a template.
type Operands struct {
	Word         string
	Displacement string
	Data         string
}

// NewDefinition parses a byte mask and mnemonic template into a definition.
func NewDefinition(mask, template string) (*Definition, error) {
	mask = strings.ToUpper(strings.TrimSpace(mask))
	template = strings.TrimSpace(template)
	if template == "" {
		return nil, errors.New("empty mnemonic template")
	}

	d := &Definition{
		mask:              mask,
		template:          template,
		undocumented:      strings.Contains(template, undocumentedMarker),
		wordIndex:         -1,
		displacementIndex: -1,
		dataIndex:         -1,
	}
	d.mnemonic = strings.TrimSpace(strings.ReplaceAll(template, undocumentedMarker, ""))

	if err := d.compile(); err != nil {
		return nil, fmt.Errorf("invalid byte mask '%s': %w", mask, err)
	}

	d.prefix = PrefixOf(d.pattern[0].value)
	d.category = categorize(d.pattern)
	return d, nil
}

// compile converts the mask into a byte pattern and records the operand positions.
func (d *Definition) compile() error {
	if d.mask == "" || len(d.mask)%2 != 0 {
		return errors.New("mask must consist of byte pairs")
	}

	count := len(d.mask) / 2
	d.pattern = make([]patternByte, 0, count)

	for i := 0; i < count; i++ {
		pair := d.mask[i*2 : i*2+2]

		switch pair {
		case ByteToken:
			if i+1 < count && d.mask[i*2+2:i*2+4] == ByteToken {
				if d.wordIndex >= 0 {
					return errors.New("multiple word placeholders")
				}
				d.wordIndex = i
				d.pattern = append(d.pattern, patternByte{wildcard: true}, patternByte{wildcard: true})
				i++
				continue
			}
			if d.dataIndex >= 0 {
				return errors.New("multiple byte placeholders")
			}
			d.dataIndex = i
			d.pattern = append(d.pattern, patternByte{wildcard: true})

		case DisplacementToken:
			if d.displacementIndex >= 0 {
				return errors.New("multiple displacement placeholders")
			}
			d.displacementIndex = i
			d.pattern = append(d.pattern, patternByte{wildcard: true})

		default:
			b, err := hex.DecodeString(pair)
			if err != nil {
				return fmt.Errorf("invalid hex pair '%s'", pair)
			}
			d.pattern = append(d.pattern, patternByte{value: b[0]})
		}
	}

	if d.pattern[0].wildcard {
		return errors.New("first byte must be a literal opcode")
	}
	return nil
}

// Mnemonic returns the mnemonic template without the undocumented marker.
func (d *Definition) Mnemonic() string { return d.mnemonic }

// Len returns the instruction length in bytes.
func (d *Definition) Len() int { return len(d.pattern) }

// Prefix returns the prefix class of the instruction.
func (d *Definition) Prefix() Prefix { return d.prefix }

// Category returns the control flow category of the instruction.
func (d *Definition) Category() Category { return d.category }

// Undocumented returns whether the instruction is flagged as undocumented.
func (d *Definition) Undocumented() bool { return d.undocumented }

// HasWord returns whether the instruction has a two byte word operand.
func (d *Definition) HasWord() bool { return d.wordIndex >= 0 }

// HasDisplacement returns whether the instruction has a signed displacement operand.
func (d *Definition) HasDisplacement() bool { return d.displacementIndex >= 0 }

// DisplacementIndex returns the byte index of the displacement operand or -1.
func (d *Definition) DisplacementIndex() int { return d.displacementIndex }

// LoadsWord returns whether the instruction is a load that references a fixed word,
// either as immediate value or as memory address.
func (d *Definition) LoadsWord() bool {
	return d.HasWord() && strings.HasPrefix(d.mnemonic, "LD ")
}

// Equal returns whether both definitions have the same mask and template.
func (d *Definition) Equal(other *Definition) bool {
	if other == nil {
		return false
	}
	return d.mask == other.mask && d.template == other.template
}

// Match returns whether the byte slice matches the mask. The slice must have
// exactly the length of the instruction.
func (d *Definition) Match(b []byte) bool {
	if len(b) != len(d.pattern) {
		return false
	}
	for i, p := range d.pattern {
		if !p.wildcard && p.value != b[i] {
			return false
		}
	}
	return true
}

// MatchHex returns whether a hex encoded byte sequence matches the mask.
// The hex digits are matched case-insensitively.
func (d *Definition) MatchHex(s string) bool {
	b, err := hex.DecodeString(s)
	if err != nil {
		return false
	}
	return d.Match(b)
}

// Word returns the little endian word operand of the instruction bytes.
func (d *Definition) Word(b []byte) (uint16, bool) {
	if d.wordIndex < 0 || len(b) < d.wordIndex+2 {
		return 0, false
	}
	return uint16(b[d.wordIndex+1])<<8 | uint16(b[d.wordIndex]), true
}

// Displacement returns the signed displacement operand of the instruction bytes.
func (d *Definition) Displacement(b []byte) (int8, bool) {
	if d.displacementIndex < 0 || len(b) <= d.displacementIndex {
		return 0, false
	}
	return int8(b[d.displacementIndex]), true
}

// Data returns the one byte value operand of the instruction bytes.
func (d *Definition) Data(b []byte) (byte, bool) {
	if d.dataIndex < 0 || len(b) <= d.dataIndex {
		return 0, false
	}
	return b[d.dataIndex], true
}

// RelativeTarget returns the destination of a relative jump placed at head.
func (d *Definition) RelativeTarget(head uint16, b []byte) uint16 {
	disp, _ := d.Displacement(b)
	return head + uint16(int(disp)+d.Len())
}

// RestartTarget returns the vector address of a restart instruction.
func (d *Definition) RestartTarget() uint16 {
	return uint16(d.pattern[0].value & 0x38)
}

// Format renders the mnemonic with the placeholders replaced by the given operand texts.
func (d *Definition) Format(ops Operands) string {
	r := strings.NewReplacer(
		WordToken, ops.Word,
		DisplacementToken, ops.Displacement,
		ByteToken, ops.Data,
	)
	return r.Replace(d.mnemonic)
}

func (d *Definition) String() string {
	return d.mask + ":" + d.template
}
