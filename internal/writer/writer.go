// Package writer renders the classified address space as assembly source and as listing.
package writer

import (
	"fmt"
	"hash/crc32"
	"io"
	"strings"

	"github.com/retroenv/z80disasm/internal/decodemap"
	"github.com/retroenv/z80disasm/internal/instruction"
	"github.com/retroenv/z80disasm/internal/memory"
	"github.com/retroenv/z80disasm/internal/symbols"
)

// Default layout values.
const (
	DefaultDataBytesPerLine = 16
	DefaultTabSize          = 4
)

const generator = "z80disasm"

type lineWriterFunc func(line string, address uint16, byteCount int) error

// Options of the writer.
type Options struct {
	DataBytesPerLine int    // maximum number of bytes of a data line
	TabSize          int    // indentation of instructions and directives
	HexComments      bool   // append address and opcode bytes as comment to instructions
	Date             string // generation date written to the headers, omitted if empty
}

// Writer renders the decoded address space.
type Writer struct {
	memory  *memory.AddressSpace
	decoded *decodemap.Map
	symbols *symbols.Table
	options Options
	indent  string
}

// New creates a new writer.
func New(mem *memory.AddressSpace, decoded *decodemap.Map, symbolTable *symbols.Table, options Options) *Writer {
	if options.DataBytesPerLine <= 0 {
		options.DataBytesPerLine = DefaultDataBytesPerLine
	}
	if options.TabSize < 0 {
		options.TabSize = 0
	}

	return &Writer{
		memory:  mem,
		decoded: decoded,
		symbols: symbolTable,
		options: options,
		indent:  strings.Repeat(" ", options.TabSize),
	}
}

// WriteSource writes the assembly source: a comment header, the EQU directives,
// the origin directive and the instruction and data stream with labels.
func (w *Writer) WriteSource(out io.Writer) error {
	if err := w.writeCommentHeader(out); err != nil {
		return err
	}
	if err := w.writeEquates(out); err != nil {
		return err
	}

	start := w.decoded.Start()
	if _, err := fmt.Fprintf(out, "\n%sORG %s\n", w.indent, w.symbols.Format().Word(start)); err != nil {
		return fmt.Errorf("writing origin: %w", err)
	}

	end := int(w.decoded.End())
	for address := int(start); address <= end; {
		current := uint16(address)

		if err := w.writeLabel(out, current); err != nil {
			return err
		}

		def, ok := w.decoded.Definition(current)
		if !ok {
			count, err := w.bundleDataWrites(out, current)
			if err != nil {
				return err
			}
			address += count
			continue
		}

		if err := w.writeCodeLine(out, current, def); err != nil {
			return err
		}
		address += def.Len()
	}
	return nil
}

// WriteListing writes the listing: one line per decoded unit with the address,
// the raw bytes and the mnemonic with literal operands.
func (w *Writer) WriteListing(out io.Writer) error {
	if err := w.writeListingHeader(out); err != nil {
		return err
	}

	end := int(w.decoded.End())
	for address := int(w.decoded.Start()); address <= end; {
		current := uint16(address)

		def, ok := w.decoded.Definition(current)
		if !ok {
			count := w.listingDataRun(current)
			b := w.memory.ReadSlice(current, count)
			line := fmt.Sprintf("%04X: %s: %s", current, strings.Repeat(" ", 12), hexBytes(b))
			if _, err := fmt.Fprintln(out, line); err != nil {
				return fmt.Errorf("writing listing data line: %w", err)
			}
			address += count
			continue
		}

		b := w.memory.ReadSlice(current, def.Len())
		line := fmt.Sprintf("%04X: %-12s: %s", current, hexBytes(b), w.renderLiteral(current, def, b))
		if _, err := fmt.Fprintln(out, line); err != nil {
			return fmt.Errorf("writing listing code line: %w", err)
		}
		address += def.Len()
	}
	return nil
}

// BundleDataWrites bundles data bytes to lines of at most the configured number of bytes.
func (w *Writer) BundleDataWrites(data []byte, address uint16, lineWriter lineWriterFunc) error {
	remaining := len(data)
	for i := 0; remaining > 0; {
		toWrite := min(remaining, w.options.DataBytesPerLine)

		values := make([]string, toWrite)
		for j := range toWrite {
			values[j] = w.symbols.Format().Byte(data[i+j])
		}

		line := w.indent + "db " + strings.Join(values, ", ")
		if err := lineWriter(line, address+uint16(i), toWrite); err != nil {
			return fmt.Errorf("writing data line: %w", err)
		}

		i += toWrite
		remaining -= toWrite
	}
	return nil
}

// writeCommentHeader writes the generator information, the CRC32 checksum of the
// disassembled window and the window bounds as comments.
func (w *Writer) writeCommentHeader(out io.Writer) error {
	format := w.symbols.Format()
	window := w.memory.Window(w.decoded.Start(), w.decoded.End())

	lines := []string{fmt.Sprintf("; Generated by %s", generator)}
	if w.options.Date != "" {
		lines = append(lines, "; Date: "+w.options.Date)
	}
	if name := w.memory.FileName(); name != "" {
		lines = append(lines, "; Input file: "+name)
	}
	lines = append(lines,
		fmt.Sprintf("; CRC32 checksum: %08x", crc32.ChecksumIEEE(window)),
		fmt.Sprintf("; Address range: %s - %s", format.Word(w.decoded.Start()), format.Word(w.decoded.End())),
	)

	for _, line := range lines {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return fmt.Errorf("writing comment header: %w", err)
		}
	}
	return nil
}

// writeEquates writes the EQU aliases and all labels that can not be placed
// in the instruction stream, because they are outside of the window or inside
// of an instruction.
func (w *Writer) writeEquates(out io.Writer) error {
	equs := w.symbols.Equs()
	for _, address := range w.symbols.Addresses() {
		label, _ := w.symbols.Label(address)
		if w.isPlaceable(address) || strings.Contains(label, " ") {
			continue
		}
		equs = append(equs, symbols.Equ{Name: label, Value: w.symbols.Format().Word(address)})
	}
	if len(equs) == 0 {
		return nil
	}

	if _, err := fmt.Fprintln(out); err != nil {
		return fmt.Errorf("writing line: %w", err)
	}
	for _, equ := range equs {
		if _, err := fmt.Fprintf(out, "%-12s EQU %s\n", equ.Name+":", equ.Value); err != nil {
			return fmt.Errorf("writing equ: %w", err)
		}
	}
	return nil
}

// isPlaceable returns whether a label at the address is written in the instruction stream.
func (w *Writer) isPlaceable(address uint16) bool {
	return w.decoded.IsInBounds(int(address)) && !w.decoded.IsParameter(address)
}

func (w *Writer) writeLabel(out io.Writer, address uint16) error {
	label, ok := w.symbols.Label(address)
	if !ok {
		return nil
	}
	if _, err := fmt.Fprintf(out, "\n%s:\n", label); err != nil {
		return fmt.Errorf("writing label: %w", err)
	}
	return nil
}

func (w *Writer) writeCodeLine(out io.Writer, address uint16, def *instruction.Definition) error {
	b := w.memory.ReadSlice(address, def.Len())
	code := w.indent + w.renderInstruction(address, def, b)

	var comment string
	switch {
	case w.options.HexComments:
		comment = fmt.Sprintf("%04X: %s", address, hexBytes(b))
	case def.Undocumented():
		comment = hexBytes(b)
	}

	var err error
	if comment == "" {
		_, err = fmt.Fprintf(out, "%s\n", code)
	} else {
		_, err = fmt.Fprintf(out, "%-32s ; %s\n", code, comment)
	}
	if err != nil {
		return fmt.Errorf("writing code line: %w", err)
	}
	return nil
}

// renderInstruction substitutes the operands of an instruction, resolving
// addresses to labels and literals to EQU aliases.
func (w *Writer) renderInstruction(address uint16, def *instruction.Definition, b []byte) string {
	var ops instruction.Operands

	if word, ok := def.Word(b); ok {
		ops.Word = w.symbols.Resolve(word)
	}
	if data, ok := def.Data(b); ok {
		ops.Data = w.symbols.Byte(data)
	}
	if def.HasDisplacement() {
		switch def.Category() {
		case instruction.RelativeJumpConditional, instruction.RelativeJumpUnconditional:
			ops.Displacement = w.symbols.Resolve(def.RelativeTarget(address, b))
		default:
			ops.Displacement = w.symbols.Byte(b[def.DisplacementIndex()])
		}
	}
	return def.Format(ops)
}

// renderLiteral substitutes the operands of an instruction as plain literals,
// relative jumps are shown with their absolute target.
func (w *Writer) renderLiteral(address uint16, def *instruction.Definition, b []byte) string {
	format := w.symbols.Format()
	var ops instruction.Operands

	if word, ok := def.Word(b); ok {
		ops.Word = format.Word(word)
	}
	if data, ok := def.Data(b); ok {
		ops.Data = format.Byte(data)
	}
	if def.HasDisplacement() {
		switch def.Category() {
		case instruction.RelativeJumpConditional, instruction.RelativeJumpUnconditional:
			ops.Displacement = format.Word(def.RelativeTarget(address, b))
		default:
			ops.Displacement = format.Byte(b[def.DisplacementIndex()])
		}
	}
	return def.Format(ops)
}

func (w *Writer) writeListingHeader(out io.Writer) error {
	lines := []string{fmt.Sprintf("; Generated by %s", generator)}
	if w.options.Date != "" {
		lines = append(lines, "; Date: "+w.options.Date)
	}
	if name := w.memory.FileName(); name != "" {
		lines = append(lines, "; Input file: "+name)
	}
	lines = append(lines, "")

	for _, line := range lines {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return fmt.Errorf("writing listing header: %w", err)
		}
	}
	return nil
}

// listingDataRun returns the number of unclaimed bytes starting at address
// that fit in one listing line.
func (w *Writer) listingDataRun(address uint16) int {
	end := int(w.decoded.End())
	count := 0
	for a := int(address); a <= end && count < w.options.DataBytesPerLine; a++ {
		if !w.decoded.IsUnclaimed(uint16(a)) {
			break
		}
		count++
	}
	return count
}

// bundleDataWrites writes the data run starting at address and returns its length.
func (w *Writer) bundleDataWrites(out io.Writer, address uint16) (int, error) {
	data := w.dataRun(address)

	lineWriter := func(line string, lineAddress uint16, _ int) error {
		var err error
		if w.options.HexComments {
			_, err = fmt.Fprintf(out, "%-32s ; %04X\n", line, lineAddress)
		} else {
			_, err = fmt.Fprintf(out, "%s\n", line)
		}
		return err
	}

	if err := w.BundleDataWrites(data, address, lineWriter); err != nil {
		return 0, err
	}
	return len(data), nil
}

// dataRun returns the unclaimed bytes starting at address, stopping at the first
// claimed byte, at the first label after the start or at the end of the window.
func (w *Writer) dataRun(address uint16) []byte {
	end := int(w.decoded.End())
	length := 0
	for a := int(address); a <= end; a++ {
		if !w.decoded.IsUnclaimed(uint16(a)) {
			break
		}
		if a > int(address) && w.symbols.HasLabel(uint16(a)) {
			break
		}
		length++
	}
	return w.memory.ReadSlice(address, length)
}

func hexBytes(b []byte) string {
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = fmt.Sprintf("%02X", v)
	}
	return strings.Join(parts, " ")
}
