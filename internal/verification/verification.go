// Package verification verifies that the generated listing recreates the input.
package verification

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/z80disasm/internal/memory"
)

// VerifyListingFile verifies that the listing file reproduces the bytes of the
// address space in the window start..end.
func VerifyListingFile(logger *log.Logger, listFile string, mem *memory.AddressSpace, start, end uint16) error {
	file, err := os.Open(listFile)
	if err != nil {
		return fmt.Errorf("opening listing file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return VerifyListing(logger, file, mem, start, end)
}

// VerifyListing parses a listing, places the bytes of every line at its address
// and compares the result with the bytes of the address space.
func VerifyListing(logger *log.Logger, listing io.Reader, mem *memory.AddressSpace, start, end uint16) error {
	size := int(end) - int(start) + 1
	output := make([]byte, size)
	covered := make([]bool, size)

	scanner := bufio.NewScanner(listing)
	for lineNumber := 1; scanner.Scan(); lineNumber++ {
		address, b, ok, err := parseLine(scanner.Text())
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNumber, err)
		}
		if !ok {
			continue
		}

		for i, v := range b {
			offset := int(address) + i - int(start)
			if offset < 0 || offset >= size {
				return fmt.Errorf("line %d: address 0x%04X is outside of the window", lineNumber, int(address)+i)
			}
			if covered[offset] {
				return fmt.Errorf("line %d: address 0x%04X is listed more than once", lineNumber, int(address)+i)
			}
			output[offset] = v
			covered[offset] = true
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading listing: %w", err)
	}

	for i, ok := range covered {
		if !ok {
			return fmt.Errorf("address 0x%04X is missing in the listing", int(start)+i)
		}
	}

	return checkBufferEqual(logger, start, mem.Window(start, end), output)
}

// parseLine parses a listing line of the form "XXXX: bytes : mnemonic" for
// instructions or "XXXX:             : bytes" for data. Comment and empty lines
// are skipped.
func parseLine(line string) (uint16, []byte, bool, error) {
	line = strings.TrimRight(line, " ")
	if line == "" || strings.HasPrefix(line, ";") {
		return 0, nil, false, nil
	}

	addressField, rest, ok := strings.Cut(line, ":")
	if !ok {
		return 0, nil, false, fmt.Errorf("missing address separator in '%s'", line)
	}
	address, err := strconv.ParseUint(strings.TrimSpace(addressField), 16, 16)
	if err != nil {
		return 0, nil, false, fmt.Errorf("parsing address '%s': %w", addressField, err)
	}

	bytesField, dataField, ok := strings.Cut(rest, ":")
	if !ok {
		return 0, nil, false, fmt.Errorf("missing bytes separator in '%s'", line)
	}

	hexField := bytesField
	if strings.TrimSpace(bytesField) == "" {
		hexField = dataField
	}

	var b []byte
	for _, field := range strings.Fields(hexField) {
		v, err := strconv.ParseUint(field, 16, 8)
		if err != nil {
			return 0, nil, false, fmt.Errorf("parsing byte '%s': %w", field, err)
		}
		b = append(b, byte(v))
	}
	return uint16(address), b, true, nil
}

func checkBufferEqual(logger *log.Logger, start uint16, input, output []byte) error {
	if len(input) != len(output) {
		return fmt.Errorf("mismatched lengths, %d != %d", len(input), len(output))
	}

	var diffs uint64
	for i := range input {
		if input[i] == output[i] {
			continue
		}

		diffs++
		if diffs < 10 {
			logger.Error("Address mismatch",
				log.Hex("address", int(start)+i),
				log.Hex("expected", input[i]),
				log.Hex("got", output[i]))
		}
	}
	if diffs == 0 {
		return nil
	}
	return fmt.Errorf("%d address mismatches", diffs)
}
