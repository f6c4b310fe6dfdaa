package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/retroenv/z80disasm/internal/symbols"
)

const commentChar = '#'

var errMultipleValues = errors.New("key is expected to have a single value")

type entry struct {
	value string
	line  int
}

// Properties contains the values of a project file, keys can be repeated.
type Properties struct {
	values map[Key][]entry
}

// NewProperties returns an empty property set.
func NewProperties() *Properties {
	return &Properties{values: make(map[Key][]entry)}
}

// ReadProject parses a project file. Every non empty line has the form
// "KEY: value", text after a '#' outside of quotes is a comment.
func ReadProject(r io.Reader) (*Properties, error) {
	props := NewProperties()
	scanner := bufio.NewScanner(r)

	for lineNumber := 1; scanner.Scan(); lineNumber++ {
		line := cleanLine(scanner.Text())
		if line == "" {
			continue
		}

		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, &Error{Line: lineNumber, Err: fmt.Errorf("missing ':' separator in '%s'", line)}
		}

		key, err := LookupKey(name)
		if err != nil {
			return nil, &Error{Line: lineNumber, Err: fmt.Errorf("key '%s': %w", strings.TrimSpace(name), err)}
		}
		props.add(key, strings.TrimSpace(value), lineNumber)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading project file: %w", err)
	}
	return props, nil
}

// Set adds a value for a key.
func (p *Properties) Set(key Key, value string) {
	p.add(key, value, 0)
}

func (p *Properties) add(key Key, value string, line int) {
	p.values[key] = append(p.values[key], entry{value: value, line: line})
}

// Has returns whether the key has at least one value.
func (p *Properties) Has(key Key) bool {
	return len(p.values[key]) > 0
}

// String returns the single value of a key.
func (p *Properties) String(key Key) (string, bool, error) {
	e, ok, err := p.single(key)
	return e.value, ok, err
}

// Int returns the single value of a key as decimal integer.
func (p *Properties) Int(key Key) (int, bool, error) {
	e, ok, err := p.single(key)
	if !ok || err != nil {
		return 0, ok, err
	}

	i, err := strconv.Atoi(e.value)
	if err != nil {
		return 0, true, &Error{Key: key, Line: e.line, Err: fmt.Errorf("invalid integer '%s'", e.value)}
	}
	return i, true, nil
}

// Address returns the single value of a key as 16 bit address. Decimal, 0x, $, #
// and H suffixed hexadecimal notations are supported.
func (p *Properties) Address(key Key) (uint16, bool, error) {
	e, ok, err := p.single(key)
	if !ok || err != nil {
		return 0, ok, err
	}

	address, err := symbols.ParseNumber(e.value)
	if err != nil {
		return 0, true, &Error{Key: key, Line: e.line, Err: err}
	}
	return address, true, nil
}

// Bool returns the single value of a key as boolean.
func (p *Properties) Bool(key Key) (bool, bool, error) {
	e, ok, err := p.single(key)
	if !ok || err != nil {
		return false, ok, err
	}

	switch strings.ToLower(e.value) {
	case "true", "yes", "on", "1":
		return true, true, nil
	case "false", "no", "off", "0":
		return false, true, nil
	default:
		return false, true, &Error{Key: key, Line: e.line, Err: fmt.Errorf("invalid boolean '%s'", e.value)}
	}
}

// List returns all values of a repeatable key in file order.
func (p *Properties) List(key Key) []string {
	entries := p.values[key]
	values := make([]string, len(entries))
	for i, e := range entries {
		values[i] = e.value
	}
	return values
}

// Line returns the line of the n-th value of a key, 0 if unknown.
func (p *Properties) Line(key Key, n int) int {
	entries := p.values[key]
	if n < 0 || n >= len(entries) {
		return 0
	}
	return entries[n].line
}

func (p *Properties) single(key Key) (entry, bool, error) {
	entries := p.values[key]
	switch len(entries) {
	case 0:
		return entry{}, false, nil
	case 1:
		return entries[0], true, nil
	default:
		return entries[0], true, &Error{Key: key, Line: entries[1].line, Err: errMultipleValues}
	}
}

// cleanLine removes a trailing comment that is not inside of a quoted
// string, replaces tabs by spaces and trims the line.
func cleanLine(line string) string {
	var inDouble, inSingle bool

	for i, c := range line {
		switch {
		case c == '"' && !inSingle:
			inDouble = !inDouble
		case c == '\'' && !inDouble:
			inSingle = !inSingle
		case c == commentChar && !inDouble && !inSingle:
			line = line[:i]
			return strings.TrimSpace(strings.ReplaceAll(line, "\t", " "))
		}
	}
	return strings.TrimSpace(strings.ReplaceAll(line, "\t", " "))
}
