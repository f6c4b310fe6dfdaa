// Package detector handles entry point detection of binary images.
package detector

import (
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/z80disasm/internal/memory"
)

// Entry is a detected entry address.
type Entry struct {
	Name    string
	Address uint16
	Code    bool // the address is executed, otherwise it points to data
}

// msxHeaderSize is the size of the MSX cartridge header "AB", INIT, STATEMENT,
// DEVICE, TEXT followed by 6 reserved bytes.
const msxHeaderSize = 16

var msxHeaderFields = []struct {
	name   string
	offset uint16
	code   bool
}{
	{name: "MSX_INIT", offset: 2, code: true},
	{name: "MSX_STATEMENT", offset: 4, code: true},
	{name: "MSX_DEVICE", offset: 6, code: true},
	{name: "MSX_TEXT", offset: 8, code: false},
}

// Detector handles entry point detection of binary images.
type Detector struct {
	logger *log.Logger
}

// New creates a new entry point detector.
func New(logger *log.Logger) *Detector {
	return &Detector{
		logger: logger,
	}
}

// Detect returns the entry points of the image in the window start..end.
// A MSX cartridge header at the start address provides the entries that are
// set and inside of the window, otherwise the start address is the only entry.
func (d *Detector) Detect(mem *memory.AddressSpace, start, end uint16) []Entry {
	entries := d.detectMSXHeader(mem, start, end)
	if len(entries) > 0 {
		return entries
	}

	d.logger.Debug("Using start address as entry point", log.Hex("address", start))
	return []Entry{{Name: "", Address: start, Code: true}}
}

func (d *Detector) detectMSXHeader(mem *memory.AddressSpace, start, end uint16) []Entry {
	if int(end)-int(start)+1 < msxHeaderSize || mem.Read(start) != 'A' || mem.Read(start+1) != 'B' {
		return nil
	}

	var entries []Entry
	for _, field := range msxHeaderFields {
		address := mem.ReadWord(start + field.offset)
		if address == 0 || address < start || address > end {
			continue
		}

		entries = append(entries, Entry{Name: field.name, Address: address, Code: field.code})
		d.logger.Debug("Detected MSX cartridge header entry",
			log.String("name", field.name),
			log.Hex("address", address))
	}

	hasCode := false
	for _, entry := range entries {
		hasCode = hasCode || entry.Code
	}
	if !hasCode {
		return nil
	}
	return entries
}
