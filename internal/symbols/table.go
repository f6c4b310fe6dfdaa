// Package symbols maps addresses to labels and literal values to EQU aliases.
package symbols

import (
	"fmt"
	"slices"
	"strings"
)

// Default label prefixes.
const (
	DefaultCodePrefix = "L"
	DefaultDataPrefix = "D"
)

// Equ is a named alias of a literal value.
type Equ struct {
	Name  string
	Value string
}

// Table contains the labels and EQU aliases used when rendering operands.
type Table struct {
	labels map[uint16]string
	equs   map[string]string // rendered literal -> name
	names  map[string]string // name -> value as written in the EQU directive

	codePrefix string
	dataPrefix string
	format     HexFormat
}

// New returns an empty symbol table.
func New(codePrefix, dataPrefix string, format HexFormat) *Table {
	return &Table{
		labels:     make(map[uint16]string),
		equs:       make(map[string]string),
		names:      make(map[string]string),
		codePrefix: codePrefix,
		dataPrefix: dataPrefix,
		format:     format,
	}
}

// Format returns the literal format of the table.
func (t *Table) Format() HexFormat {
	return t.format
}

// MapLabel assigns a label to an address. The first label assigned to an address
// is kept, later calls for the same address are ignored. It returns whether the
// label was assigned.
func (t *Table) MapLabel(address uint16, label string) bool {
	if _, ok := t.labels[address]; ok {
		return false
	}
	t.labels[address] = label
	return true
}

// MapCodeLabel assigns a generated code label to an address.
func (t *Table) MapCodeLabel(address uint16) bool {
	return t.MapLabel(address, t.addressLabel(t.codePrefix, address))
}

// MapDataLabel assigns a generated data label to an address.
func (t *Table) MapDataLabel(address uint16) bool {
	return t.MapLabel(address, t.addressLabel(t.dataPrefix, address))
}

// MapOffsetLabel assigns a label to an address inside the instruction starting at head,
// expressed as the label of head plus the byte offset. A head without a label
// gets a generated code label.
func (t *Table) MapOffsetLabel(address, head uint16) bool {
	t.MapCodeLabel(head)
	label := fmt.Sprintf("%s + %d", t.labels[head], address-head)
	return t.MapLabel(address, label)
}

// MapEqu registers an alias for a value. Numeric values are normalized to the
// table's literal format, so that they match rendered operands.
func (t *Table) MapEqu(name, value string) {
	number, err := ParseNumber(value)
	if err != nil {
		t.names[name] = value
		t.equs[value] = name
		return
	}

	word := t.format.Word(number)
	t.names[name] = word
	t.equs[word] = name
	if number <= 0xFF {
		t.equs[t.format.Byte(byte(number))] = name
	}
}

// Label returns the label of an address.
func (t *Table) Label(address uint16) (string, bool) {
	label, ok := t.labels[address]
	return label, ok
}

// HasLabel returns whether the address has a label.
func (t *Table) HasLabel(address uint16) bool {
	_, ok := t.labels[address]
	return ok
}

// Resolve returns the label of an address, otherwise the EQU alias of its
// literal form, otherwise the literal itself.
func (t *Table) Resolve(address uint16) string {
	if label, ok := t.labels[address]; ok {
		return label
	}
	return t.Alias(t.format.Word(address))
}

// Alias returns the EQU name registered for a rendered literal, or the literal itself.
func (t *Table) Alias(literal string) string {
	if name, ok := t.equs[literal]; ok {
		return name
	}
	return literal
}

// Byte renders a byte operand, using an EQU alias if one matches.
func (t *Table) Byte(b byte) string {
	return t.Alias(t.format.Byte(b))
}

// Equs returns all EQU aliases sorted by name.
func (t *Table) Equs() []Equ {
	equs := make([]Equ, 0, len(t.names))
	for name, value := range t.names {
		equs = append(equs, Equ{Name: name, Value: value})
	}
	slices.SortFunc(equs, func(a, b Equ) int {
		return strings.Compare(a.Name, b.Name)
	})
	return equs
}

// Addresses returns all labeled addresses in ascending order.
func (t *Table) Addresses() []uint16 {
	addresses := make([]uint16, 0, len(t.labels))
	for address := range t.labels {
		addresses = append(addresses, address)
	}
	slices.Sort(addresses)
	return addresses
}

// Len returns the number of labels.
func (t *Table) Len() int {
	return len(t.labels)
}

func (t *Table) addressLabel(prefix string, address uint16) string {
	return fmt.Sprintf("%s%04X", prefix, address)
}
