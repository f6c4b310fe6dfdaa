package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/z80disasm/internal/options"
	"github.com/retroenv/z80disasm/internal/symbols"
)

const testProject = `# test project
BINARY_FILE: game.rom   # the image
BINARY_START: 0x4000
DB_ALIGN: 8
tab: 2
HEX_FORMAT: $
START_ADDRESS: 4000H
END_ADDRESS: $7FFF
START_OFF: 0x4010
START_OFF: 16400
LABEL: INIT 0x4010
EQU: BDOS 5
EQU: TEXT "a # b"
UNDOCUMENTED: false
HEX_COMMENTS: yes
`

//nolint:funlen // test functions can be long
func TestNewProject(t *testing.T) {
	props, err := ReadProject(strings.NewReader(testProject))
	assert.NoError(t, err)

	project, err := NewProject(props)
	assert.NoError(t, err)

	assert.Equal(t, "game.rom", project.BinaryFile)
	assert.Equal(t, uint16(0x4000), project.BinaryStart)
	assert.Equal(t, uint16(0xFFFF), project.BinaryEnd)
	assert.Equal(t, "game.asm", project.OutputFile)
	assert.Equal(t, "game.lst", project.ListFile)
	assert.Equal(t, "game.log", project.LogFile)
	assert.Equal(t, 8, project.DBAlign)
	assert.Equal(t, 2, project.TabSize)
	assert.Equal(t, symbols.Dollar, project.HexFormat)
	assert.True(t, project.HasStartAddress)
	assert.True(t, project.HasEndAddress)
	assert.Equal(t, uint16(0x4000), project.StartAddress)
	assert.Equal(t, uint16(0x7FFF), project.EndAddress)
	assert.Equal(t, []uint16{0x4010, 0x4010}, project.StartOffsets)
	assert.Equal(t, []options.Label{{Name: "INIT", Address: 0x4010}}, project.Labels)
	assert.Equal(t, []options.Equ{
		{Name: "BDOS", Value: "5"},
		{Name: "TEXT", Value: `"a # b"`},
	}, project.Equs)
	assert.False(t, project.Undocumented)
	assert.True(t, project.HexComments)
}

func TestNewProjectDefaults(t *testing.T) {
	props := NewProperties()
	props.Set(BinaryFile, "dir/prog.bin")

	project, err := NewProject(props)
	assert.NoError(t, err)
	assert.Equal(t, options.DefaultDBAlign, project.DBAlign)
	assert.Equal(t, options.DefaultTabSize, project.TabSize)
	assert.Equal(t, "L", project.CodeLabelPrefix)
	assert.Equal(t, "D", project.DataLabelPrefix)
	assert.Equal(t, "dir/prog.asm", project.OutputFile)
	assert.True(t, project.Undocumented)
	assert.False(t, project.HasStartAddress)
	assert.Empty(t, project.StartOffsets)
}

func TestNewProjectErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
	}{
		{name: "missing binary file", input: "DB_ALIGN: 4", message: "BINARY_FILE"},
		{name: "duplicate singular key", input: "BINARY_FILE: a\nBINARY_FILE: b", message: "line 2"},
		{
			name:    "first duplicated file name is reported",
			input:   "BINARY_FILE: a\nLOG_FILE: x\nLOG_FILE: y\nOUTPUT_FILE: o\nOUTPUT_FILE: p",
			message: "line 5: key OUTPUT_FILE",
		},
		{name: "db align out of range", input: "BINARY_FILE: a\nDB_ALIGN: 65", message: "not in range"},
		{name: "malformed address", input: "BINARY_FILE: a\nSTART_ADDRESS: xyz", message: "START_ADDRESS"},
		{name: "inverted window", input: "BINARY_FILE: a\nSTART_ADDRESS: 10\nEND_ADDRESS: 5", message: "lower"},
		{name: "inverted binary range", input: "BINARY_FILE: a\nBINARY_START: 10\nBINARY_END: 5", message: "lower"},
		{name: "malformed label", input: "BINARY_FILE: a\nLABEL: NAME", message: "name value"},
		{name: "malformed boolean", input: "BINARY_FILE: a\nHEX_COMMENTS: maybe", message: "boolean"},
		{name: "unknown hex format", input: "BINARY_FILE: a\nHEX_FORMAT: octal", message: "HEX_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			props, err := ReadProject(strings.NewReader(tt.input))
			assert.NoError(t, err)

			_, err = NewProject(props)
			assert.ErrorContains(t, err, tt.message)

			var cfgErr *Error
			assert.True(t, errors.As(err, &cfgErr))
		})
	}
}

func TestReadProjectErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
	}{
		{name: "unknown key", input: "# comment\nUNKNOWN: 1", line: 2},
		{name: "ambiguous key", input: "HEX: 1", line: 1},
		{name: "missing separator", input: "\n\nBINARY_FILE a.rom", line: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadProject(strings.NewReader(tt.input))
			assert.Error(t, err)

			var cfgErr *Error
			assert.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.line, cfgErr.Line)
		})
	}
}

func TestLookupKey(t *testing.T) {
	key, err := LookupKey("binary_f")
	assert.NoError(t, err)
	assert.Equal(t, BinaryFile, key)

	key, err = LookupKey(" Label ")
	assert.NoError(t, err)
	assert.Equal(t, Label, key)

	_, err = LookupKey("start")
	assert.Error(t, err)
}

func TestCleanLine(t *testing.T) {
	assert.Equal(t, "KEY: value", cleanLine("\tKEY: value # comment"))
	assert.Equal(t, `EQU: C '#'`, cleanLine(`EQU: C '#' # comment`))
	assert.Equal(t, "", cleanLine("# only a comment"))
}

func TestWriteDefaultProject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "default.cfg")
	assert.NoError(t, WriteDefaultProject(path))

	file, err := os.Open(path)
	assert.NoError(t, err)
	defer func() { _ = file.Close() }()

	props, err := ReadProject(file)
	assert.NoError(t, err)
	project, err := NewProject(props)
	assert.NoError(t, err)
	assert.Equal(t, "program.rom", project.BinaryFile)
	assert.Equal(t, options.DefaultDBAlign, project.DBAlign)

	err = WriteDefaultProject(path)
	assert.True(t, errors.Is(err, ErrProjectExists))
}
