package instruction

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/retrogolib/arch/cpu/z80"
	"github.com/retroenv/z80disasm/internal/memory"
)

//go:embed z80.dat
var z80Table string

const (
	commentChar = ';'
	separator   = ":"
)

// ParseError is returned for a malformed line of an instruction table.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("instruction table line %d '%s': %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Options controls which definitions of a table take part in matching.
type Options struct {
	ExcludeUndocumented bool // undocumented definitions are parsed but never matched
}

// Catalog contains the instruction definitions grouped by prefix class,
// each group in declaration order.
type Catalog struct {
	groups  [prefixCount][]*Definition
	options Options
	count   int
}

// Load parses an instruction table. Every non blank line that is not a comment
// has to be in the format MASK:TEMPLATE.
func Load(r io.Reader, options Options) (*Catalog, error) {
	c := &Catalog{options: options}

	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++

		line := cleanLine(scanner.Text())
		if line == "" {
			continue
		}

		mask, template, ok := strings.Cut(line, separator)
		if !ok {
			return nil, &ParseError{Line: lineNumber, Text: line, Err: fmt.Errorf("missing '%s' separator", separator)}
		}

		def, err := NewDefinition(mask, template)
		if err != nil {
			return nil, &ParseError{Line: lineNumber, Text: line, Err: err}
		}
		c.add(def)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading instruction table: %w", err)
	}

	return c, nil
}

// LoadDefault returns the catalog of the embedded Z80 instruction table.
func LoadDefault(options Options) (*Catalog, error) {
	c, err := Load(strings.NewReader(z80Table), options)
	if err != nil {
		return nil, fmt.Errorf("loading embedded instruction table: %w", err)
	}
	return c, nil
}

func (c *Catalog) add(def *Definition) {
	c.groups[def.Prefix()] = append(c.groups[def.Prefix()], def)
	c.count++
}

// Len returns the number of parsed definitions, including excluded ones.
func (c *Catalog) Len() int {
	return c.count
}

// Group returns the definitions of a prefix class in declaration order.
func (c *Catalog) Group(prefix Prefix) []*Definition {
	if prefix >= prefixCount {
		return nil
	}
	return c.groups[prefix]
}

// Match returns the first definition of the prefix group of b[0] that matches
// the start of b.
func (c *Catalog) Match(b []byte) (*Definition, bool) {
	if len(b) == 0 {
		return nil, false
	}

	for _, def := range c.groups[PrefixOf(b[0])] {
		if c.options.ExcludeUndocumented && def.Undocumented() {
			continue
		}
		if def.Len() > len(b) {
			continue
		}
		if def.Match(b[:def.Len()]) {
			return def, true
		}
	}
	return nil, false
}

// MatchAt returns the first definition that matches the bytes at address.
func (c *Catalog) MatchAt(m *memory.AddressSpace, address uint16) (*Definition, bool) {
	return c.Match(m.ReadSlice(address, z80.MaxOpcodeSize))
}

// cleanLine removes a trailing comment and surrounding whitespace.
func cleanLine(line string) string {
	if i := strings.IndexByte(line, commentChar); i >= 0 {
		line = line[:i]
	}
	line = strings.ReplaceAll(line, "\t", " ")
	return strings.TrimSpace(line)
}
