package writer

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/z80disasm/internal/decodemap"
	"github.com/retroenv/z80disasm/internal/disasm"
	"github.com/retroenv/z80disasm/internal/instruction"
	"github.com/retroenv/z80disasm/internal/memory"
	"github.com/retroenv/z80disasm/internal/symbols"
)

type testCase struct {
	mem     *memory.AddressSpace
	decoded *decodemap.Map
	symbols *symbols.Table
}

func setup(t *testing.T, start uint16, data []byte, prepare func(sym *symbols.Table)) testCase {
	t.Helper()

	catalog, err := instruction.LoadDefault(instruction.Options{})
	assert.NoError(t, err)
	end := start + uint16(len(data)) - 1
	decoded, err := decodemap.New(start, end)
	assert.NoError(t, err)

	mem := memory.FromBytes(start, data)
	sym := symbols.New(symbols.DefaultCodePrefix, symbols.DefaultDataPrefix, symbols.SuffixH)
	if prepare != nil {
		prepare(sym)
	}

	dis := disasm.New(log.NewTestLogger(t), mem, catalog, decoded, sym)
	dis.AddStart(start)
	dis.Process()

	return testCase{mem: mem, decoded: decoded, symbols: sym}
}

func (tc testCase) source(t *testing.T, options Options) string {
	t.Helper()
	var buf bytes.Buffer
	assert.NoError(t, New(tc.mem, tc.decoded, tc.symbols, options).WriteSource(&buf))
	return buf.String()
}

func (tc testCase) listing(t *testing.T, options Options) string {
	t.Helper()
	var buf bytes.Buffer
	assert.NoError(t, New(tc.mem, tc.decoded, tc.symbols, options).WriteListing(&buf))
	return buf.String()
}

//nolint:funlen // test functions can be long
func TestWriteSource(t *testing.T) {
	t.Run("code data and labels", func(t *testing.T) {
		// LD A,05H / JR 0005H / RST 38H / RET / data
		tc := setup(t, 0x8000, []byte{0x3E, 0x05, 0x18, 0x01, 0xFF, 0xC9, 0x01, 0x02}, nil)
		out := tc.source(t, Options{TabSize: 4})

		expected := strings.Join([]string{
			"",
			"    ORG 08000H",
			"",
			"L8000:",
			"    LD A,005H",
			"    JR L8005",
			"",
			"D8004:",
			"    db 0FFH",
			"",
			"L8005:",
			"    RET",
			"",
			"D8006:",
			"    db 001H, 002H",
			"",
		}, "\n")
		assert.True(t, strings.HasSuffix(out, expected))
		assert.Contains(t, out, "; Generated by z80disasm")
		assert.Contains(t, out, "; Address range: 08000H - 08007H")
		assert.Contains(t, out, "; CRC32 checksum: ")
	})

	t.Run("equ aliases", func(t *testing.T) {
		// LD C,09H / CALL 0005H / RET
		tc := setup(t, 0x0100, []byte{0x0E, 0x09, 0xCD, 0x05, 0x00, 0xC9}, func(sym *symbols.Table) {
			sym.MapEqu("BDOS", "5")
			sym.MapEqu("PRINT", "9")
		})
		out := tc.source(t, Options{TabSize: 2})

		assert.Contains(t, out, "BDOS:        EQU 00005H\n")
		assert.Contains(t, out, "PRINT:       EQU 00009H\n")
		assert.Contains(t, out, "  LD C,PRINT\n")
		assert.Contains(t, out, "  CALL BDOS\n")
		assert.True(t, strings.Index(out, "BDOS:") < strings.Index(out, "PRINT:"))
	})

	t.Run("labels outside of the window become equs", func(t *testing.T) {
		// JP 0000H / RET
		tc := setup(t, 0x4000, []byte{0xC3, 0x00, 0x00, 0xC9}, func(sym *symbols.Table) {
			sym.MapLabel(0x0000, "RESET")
		})
		out := tc.source(t, Options{})

		assert.Contains(t, out, "RESET:       EQU 00000H\n")
		assert.Contains(t, out, "\nJP RESET\n")
	})

	t.Run("jump into instruction with named head", func(t *testing.T) {
		// LD BC,1234H / JP 0001H
		tc := setup(t, 0, []byte{0x01, 0x34, 0x12, 0xC3, 0x01, 0x00}, func(sym *symbols.Table) {
			sym.MapLabel(0x0000, "START")
		})
		out := tc.source(t, Options{TabSize: 4})

		assert.Contains(t, out, "\nSTART:\n    LD BC,01234H\n    JP START + 1\n")
		assert.NotContains(t, out, "L0000")
	})

	t.Run("undocumented and hex comments", func(t *testing.T) {
		// LD (4000H),HL undocumented / RET
		tc := setup(t, 0, []byte{0xED, 0x63, 0x00, 0x40, 0xC9}, nil)

		out := tc.source(t, Options{TabSize: 4})
		assert.Contains(t, out, "    LD (04000H),HL               ; ED 63 00 40\n")

		out = tc.source(t, Options{TabSize: 4, HexComments: true})
		assert.Contains(t, out, "    RET                          ; 0004: C9\n")
	})

	t.Run("data runs break at labels and line length", func(t *testing.T) {
		data := []byte{0xC9, 1, 2, 3, 4, 5, 6, 7}
		tc := setup(t, 0, data, func(sym *symbols.Table) {
			sym.MapLabel(0x0005, "TABLE")
		})
		out := tc.source(t, Options{DataBytesPerLine: 3, TabSize: 4})

		expected := strings.Join([]string{
			"D0001:",
			"    db 001H, 002H, 003H",
			"    db 004H",
			"",
			"TABLE:",
			"    db 005H, 006H, 007H",
			"",
		}, "\n")
		assert.Contains(t, out, expected)
	})
}

func TestWriteListing(t *testing.T) {
	// LD HL,8006H / DJNZ 8003H / RET / data
	data := []byte{0x21, 0x06, 0x80, 0x10, 0xFE, 0xC9, 0xAA, 0xBB, 0xCC}
	tc := setup(t, 0x8000, data, nil)

	out := tc.listing(t, Options{DataBytesPerLine: 2, Date: "2026-10-17"})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Equal(t, []string{
		"; Generated by z80disasm",
		"; Date: 2026-10-17",
		"",
		"8000: 21 06 80    : LD HL,08006H",
		"8003: 10 FE       : DJNZ 08003H",
		"8005: C9          : RET",
		"8006:             : AA BB",
		"8008:             : CC",
	}, lines)
}

func TestBundleDataWrites(t *testing.T) {
	sym := symbols.New("L", "D", symbols.Dollar)
	w := New(memory.New(), nil, sym, Options{DataBytesPerLine: 2, TabSize: 1})

	var lines []string
	var addresses []uint16
	err := w.BundleDataWrites([]byte{1, 2, 3}, 0x10, func(line string, address uint16, _ int) error {
		lines = append(lines, line)
		addresses = append(addresses, address)
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, []string{" db $01, $02", " db $03"}, lines)
	assert.Equal(t, []uint16{0x10, 0x12}, addresses)
}

// literalBytes builds the bytes of a mask with fixed operand values: word
// 1234H, displacement -2 and data 0A5H.
func literalBytes(t *testing.T, mask string) []byte {
	t.Helper()
	var b []byte
	for i := 0; i < len(mask); i += 2 {
		switch pair := mask[i : i+2]; {
		case strings.HasPrefix(mask[i:], instruction.WordToken):
			b = append(b, 0x34, 0x12)
			i += 2
		case pair == instruction.DisplacementToken:
			b = append(b, 0xFE)
		case pair == instruction.ByteToken:
			b = append(b, 0xA5)
		default:
			v, err := hex.DecodeString(pair)
			assert.NoError(t, err)
			b = append(b, v...)
		}
	}
	return b
}

func TestRenderLiteralDefinitions(t *testing.T) {
	catalog, err := instruction.LoadDefault(instruction.Options{})
	assert.NoError(t, err)
	decoded, err := decodemap.New(0x0000, 0xFFFF)
	assert.NoError(t, err)
	sym := symbols.New(symbols.DefaultCodePrefix, symbols.DefaultDataPrefix, symbols.SuffixH)
	w := New(memory.New(), decoded, sym, Options{})

	const address = 0x1000
	prefixes := []instruction.Prefix{
		instruction.PrefixNone, instruction.PrefixCB, instruction.PrefixDD, instruction.PrefixED, instruction.PrefixFD,
	}
	for _, prefix := range prefixes {
		for _, def := range catalog.Group(prefix) {
			mask, _, _ := strings.Cut(def.String(), ":")
			b := literalBytes(t, mask)
			assert.Equal(t, def.Len(), len(b), def.String())

			displacement := "0FEH"
			switch def.Category() {
			case instruction.RelativeJumpConditional, instruction.RelativeJumpUnconditional:
				displacement = "01000H" // JR and DJNZ are two bytes long
			default:
			}
			expected := strings.ReplaceAll(def.Mnemonic(), instruction.WordToken, "01234H")
			expected = strings.ReplaceAll(expected, instruction.DisplacementToken, displacement)
			expected = strings.ReplaceAll(expected, instruction.ByteToken, "0A5H")

			assert.Equal(t, expected, w.renderLiteral(address, def, b), def.String())
		}
	}
}
