// Package loader handles binary image loading operations.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/z80disasm/internal/memory"
	"github.com/retroenv/z80disasm/internal/options"
)

var errEmptyImage = errors.New("binary image is empty")

// Loader handles loading binary images from disk.
type Loader struct{}

// New creates a new binary image loader.
func New() *Loader {
	return &Loader{}
}

// Image is a binary file loaded into the address space.
type Image struct {
	Memory *memory.AddressSpace
	Start  uint16 // address of the first loaded byte
	Loaded int    // number of loaded bytes
}

// End returns the address of the last loaded byte.
func (i Image) End() uint16 {
	return i.Start + uint16(i.Loaded-1)
}

// Load reads the binary file of the project and places it at the configured
// binary start address. Data beyond the configured binary end address is truncated.
func (l *Loader) Load(project options.Project) (Image, error) {
	file, err := os.Open(project.BinaryFile)
	if err != nil {
		return Image{}, fmt.Errorf("opening file %s: %w", project.BinaryFile, err)
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return Image{}, fmt.Errorf("reading file %s: %w", project.BinaryFile, err)
	}

	image, err := l.LoadFromBytes(data, project.BinaryStart, project.BinaryEnd)
	if err != nil {
		return Image{}, err
	}
	image.Memory.SetFileName(project.BinaryFile)
	return image, nil
}

// LoadFromBytes places the data at start, truncated to the range start..end.
func (l *Loader) LoadFromBytes(data []byte, start, end uint16) (Image, error) {
	if start > end {
		return Image{}, fmt.Errorf("binary end address 0x%04X is lower than start address 0x%04X", end, start)
	}
	if len(data) == 0 {
		return Image{}, errEmptyImage
	}

	size := int(end) - int(start) + 1
	if len(data) > size {
		data = data[:size]
	}

	mem := memory.New()
	loaded := mem.Load(start, data)
	return Image{Memory: mem, Start: start, Loaded: loaded}, nil
}
