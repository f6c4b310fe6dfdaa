// Package options contains the program options.
package options

import (
	"path/filepath"

	"github.com/retroenv/z80disasm/internal/symbols"
)

// Default project values.
const (
	DefaultProjectFile = "default.cfg"
	DefaultDBAlign     = 16
	DefaultTabSize     = 4
	MaxDBAlign         = 64
	MaxTabSize         = 32
)

// Program options of the disassembler, set by command line parameters.
type Program struct {
	Project string   // project file to process
	Init    string   // project file to scaffold
	Batch   string   // glob pattern of binary files to process with default settings
	Files   []string // binary files to process with default settings

	Verbose bool
	Quiet   bool
	Verify  bool // verify that the listing reproduces the binary image
}

// Label is a user defined label.
type Label struct {
	Name    string
	Address uint16
}

// Equ is a user defined alias for a literal value.
type Equ struct {
	Name  string
	Value string
}

// Project defines the settings to disassemble a single binary file.
type Project struct {
	BinaryFile  string
	BinaryStart uint16 // address of the first byte of the binary file
	BinaryEnd   uint16 // last address filled with binary data

	OutputFile string
	ListFile   string
	LogFile    string

	DBAlign         int
	TabSize         int
	CodeLabelPrefix string
	DataLabelPrefix string
	HexFormat       symbols.HexFormat

	StartAddress    uint16
	EndAddress      uint16
	HasStartAddress bool
	HasEndAddress   bool // without an end address the last loaded byte is used

	StartOffsets []uint16
	Labels       []Label
	Equs         []Equ

	Undocumented bool
	HexComments  bool
}

// NewProject returns a project with default settings for the binary file.
func NewProject(binaryFile string) Project {
	return Project{
		BinaryFile:      binaryFile,
		BinaryEnd:       0xFFFF,
		DBAlign:         DefaultDBAlign,
		TabSize:         DefaultTabSize,
		CodeLabelPrefix: symbols.DefaultCodePrefix,
		DataLabelPrefix: symbols.DefaultDataPrefix,
		HexFormat:       symbols.SuffixH,
		Undocumented:    true,
	}
}

// ApplyDefaultFileNames sets the output file names that are not configured to
// the base name of the binary file with the .asm, .lst and .log extensions.
func (p *Project) ApplyDefaultFileNames() {
	ext := filepath.Ext(p.BinaryFile)
	base := p.BinaryFile[:len(p.BinaryFile)-len(ext)]

	if p.OutputFile == "" {
		p.OutputFile = base + ".asm"
	}
	if p.ListFile == "" {
		p.ListFile = base + ".lst"
	}
	if p.LogFile == "" {
		p.LogFile = base + ".log"
	}
}
