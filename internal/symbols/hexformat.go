package symbols

import (
	"fmt"
	"strconv"
	"strings"
)

// HexFormat selects how numeric literals are written to the output.
type HexFormat uint8

// Supported literal formats.
const (
	SuffixH HexFormat = iota // 0FFH
	Dollar                   // $FF
	CStyle                   // 0xFF
)

// ParseHexFormat parses the name of a literal format. An empty name selects SuffixH.
func ParseHexFormat(s string) (HexFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "h", "suffix":
		return SuffixH, nil
	case "$", "dollar":
		return Dollar, nil
	case "0x", "c":
		return CStyle, nil
	default:
		return SuffixH, fmt.Errorf("unsupported hex format '%s', valid values are H, $ and 0x", s)
	}
}

func (f HexFormat) String() string {
	switch f {
	case Dollar:
		return "$"
	case CStyle:
		return "0x"
	default:
		return "H"
	}
}

// Byte renders a byte literal.
func (f HexFormat) Byte(b byte) string {
	switch f {
	case Dollar:
		return fmt.Sprintf("$%02X", b)
	case CStyle:
		return fmt.Sprintf("0x%02X", b)
	default:
		return fmt.Sprintf("0%02XH", b)
	}
}

// Word renders a word literal.
func (f HexFormat) Word(w uint16) string {
	switch f {
	case Dollar:
		return fmt.Sprintf("$%04X", w)
	case CStyle:
		return fmt.Sprintf("0x%04X", w)
	default:
		return fmt.Sprintf("0%04XH", w)
	}
}

// ParseNumber parses a 16 bit number given in decimal or in one of the hex
// notations 0x1F, $1F, #1F or 1FH.
func ParseNumber(s string) (uint16, error) {
	text := strings.TrimSpace(s)
	base := 10

	lower := strings.ToLower(text)
	switch {
	case strings.HasPrefix(lower, "0x"):
		text, base = text[2:], 16
	case strings.HasPrefix(text, "$"), strings.HasPrefix(text, "#"):
		text, base = text[1:], 16
	case len(lower) > 1 && strings.HasSuffix(lower, "h"):
		text, base = text[:len(text)-1], 16
	}

	value, err := strconv.ParseUint(text, base, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid number '%s': %w", s, err)
	}
	return uint16(value), nil
}
