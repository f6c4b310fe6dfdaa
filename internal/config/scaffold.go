package config

import (
	"errors"
	"fmt"
	"os"
)

// ErrProjectExists is returned when scaffolding would overwrite a file.
var ErrProjectExists = errors.New("project file already exists")

const defaultProject = `# z80disasm project file
#
# Every line has the form "KEY: value". Text after a '#' is a comment.
# Numbers can be written as decimal, 0x0000, $0000 or 0000H values.

# Binary file to disassemble (required).
BINARY_FILE: program.rom

# Address of the first byte of the binary file and the last address to fill.
BINARY_START: 0x0000
BINARY_END: 0xFFFF

# Output files, default to the binary file name with the extensions .asm, .lst and .log.
# OUTPUT_FILE: program.asm
# LIST_FILE: program.lst
# LOG_FILE: program.log

# Maximum number of bytes of a data line (1..64).
DB_ALIGN: 16

# Indentation of instructions and directives (0..32).
TAB_SIZE: 4

# Prefixes of generated code and data labels.
CODE_LABEL_PREFIX: L
DATA_LABEL_PREFIX: D

# Literal format of hexadecimal values: H (0FFH), $ ($FF) or 0x (0xFF).
HEX_FORMAT: H

# Window to disassemble, defaults to the loaded binary data.
# START_ADDRESS: 0x0000
# END_ADDRESS: 0x3FFF

# Entry points of the code, can be repeated. Without an entry point the MSX
# cartridge header or the start address is used.
# START_OFF: 0x0000

# User labels in the form "name address", can be repeated.
# LABEL: CHPUT 0x00A2

# Aliases for literal values in the form "name value", can be repeated.
# EQU: BDOS 5

# Decode undocumented instructions.
UNDOCUMENTED: true

# Append address and opcode bytes as comment to every instruction.
HEX_COMMENTS: false
`

// WriteDefaultProject writes a documented default project file. It fails if
// the file already exists.
func WriteDefaultProject(path string) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrProjectExists, path)
		}
		return fmt.Errorf("creating project file: %w", err)
	}

	if _, err := file.WriteString(defaultProject); err != nil {
		_ = file.Close()
		return fmt.Errorf("writing project file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing project file: %w", err)
	}
	return nil
}
