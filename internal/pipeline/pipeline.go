// Package pipeline orchestrates the disassembly workflow stages.
package pipeline

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/z80disasm/internal/config"
	"github.com/retroenv/z80disasm/internal/decodemap"
	"github.com/retroenv/z80disasm/internal/detector"
	"github.com/retroenv/z80disasm/internal/disasm"
	"github.com/retroenv/z80disasm/internal/instruction"
	"github.com/retroenv/z80disasm/internal/loader"
	"github.com/retroenv/z80disasm/internal/memory"
	"github.com/retroenv/z80disasm/internal/options"
	"github.com/retroenv/z80disasm/internal/symbols"
	"github.com/retroenv/z80disasm/internal/verification"
	"github.com/retroenv/z80disasm/internal/writer"
)

const dateFormat = "2006-01-02 15:04:05"

// Result summarizes the disassembly of a binary file.
type Result struct {
	File         string
	Start        uint16
	End          uint16
	Instructions int // number of decoded instructions
	DataBytes    int // number of bytes left as data
	Labels       int
	Threads      int // number of processed start addresses
	Warnings     []disasm.Warning
}

// Pipeline orchestrates the complete disassembly workflow.
type Pipeline struct {
	logger   *log.Logger
	detector *detector.Detector
	loader   *loader.Loader
	now      func() time.Time
}

// New creates a new disassembly pipeline.
func New(logger *log.Logger) *Pipeline {
	return &Pipeline{
		logger:   logger,
		detector: detector.New(logger),
		loader:   loader.New(),
		now:      time.Now,
	}
}

// Execute loads the binary file of the project, disassembles it and writes
// the source, listing and log files. With verify set the written listing is
// checked to reproduce the binary image.
func (p *Pipeline) Execute(ctx context.Context, project options.Project, verify bool) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("processing %s: %w", project.BinaryFile, err)
	}

	image, err := p.loader.Load(project)
	if err != nil {
		return Result{}, fmt.Errorf("loading binary: %w", err)
	}

	state, err := p.Disassemble(ctx, project, image)
	if err != nil {
		return Result{}, err
	}

	if err := p.writeOutputs(project, state); err != nil {
		return Result{}, err
	}

	if verify {
		start, end := state.decoded.Start(), state.decoded.End()
		if err := verification.VerifyListingFile(p.logger, project.ListFile, state.memory, start, end); err != nil {
			return Result{}, fmt.Errorf("verification failed: %w", err)
		}
		p.logger.Info("Verification successful", log.String("file", project.ListFile))
	}

	return state.result(project.BinaryFile), nil
}

// State is the disassembled address space of a binary file.
type State struct {
	memory   *memory.AddressSpace
	decoded  *decodemap.Map
	symbols  *symbols.Table
	threads  int
	warnings []disasm.Warning
}

// Disassemble runs the disassembly engine on a loaded image.
func (p *Pipeline) Disassemble(ctx context.Context, project options.Project, image loader.Image) (*State, error) {
	start, end, err := window(project, image)
	if err != nil {
		return nil, err
	}

	catalog, err := instruction.LoadDefault(instruction.Options{ExcludeUndocumented: !project.Undocumented})
	if err != nil {
		return nil, fmt.Errorf("loading instruction catalog: %w", err)
	}

	decoded, err := decodemap.New(start, end)
	if err != nil {
		return nil, &config.Error{Key: config.EndAddress, Err: err}
	}

	sym := symbols.New(project.CodeLabelPrefix, project.DataLabelPrefix, project.HexFormat)
	for _, label := range project.Labels {
		sym.MapLabel(label.Address, label.Name)
	}
	for _, equ := range project.Equs {
		sym.MapEqu(equ.Name, equ.Value)
	}

	dis := disasm.New(p.logger, image.Memory, catalog, decoded, sym)
	p.addStarts(dis, sym, project, image.Memory, start, end)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("processing %s: %w", project.BinaryFile, err)
	}

	p.logger.Debug("Disassembling",
		log.String("file", project.BinaryFile),
		log.Hex("start", start),
		log.Hex("end", end))
	dis.Process()

	return &State{
		memory:   image.Memory,
		decoded:  decoded,
		symbols:  sym,
		threads:  dis.Threads(),
		warnings: dis.Warnings(),
	}, nil
}

// window returns the disassembly bounds, defaulting to the loaded bytes.
func window(project options.Project, image loader.Image) (uint16, uint16, error) {
	start, end := image.Start, image.End()
	if project.HasStartAddress {
		start = project.StartAddress
	}
	if project.HasEndAddress {
		end = project.EndAddress
	}
	if start > end {
		return 0, 0, &config.Error{
			Key: config.StartAddress,
			Err: fmt.Errorf("start address 0x%04X is higher than end address 0x%04X", start, end),
		}
	}
	return start, end, nil
}

// addStarts queues the configured start offsets, or the detected entry points
// if none are configured.
func (p *Pipeline) addStarts(dis *disasm.Disasm, sym *symbols.Table, project options.Project,
	mem *memory.AddressSpace, start, end uint16) {

	if len(project.StartOffsets) > 0 {
		for _, address := range project.StartOffsets {
			if !dis.AddStart(address) {
				p.logger.Warn("Start offset outside of disassembly window ignored", log.Hex("address", address))
			}
		}
		return
	}

	for _, entry := range p.detector.Detect(mem, start, end) {
		if entry.Name != "" {
			sym.MapLabel(entry.Address, entry.Name)
		}
		if entry.Code {
			dis.AddStart(entry.Address)
		}
	}
}

func (p *Pipeline) writeOutputs(project options.Project, state *State) error {
	w := writer.New(state.memory, state.decoded, state.symbols, writer.Options{
		DataBytesPerLine: project.DBAlign,
		TabSize:          project.TabSize,
		HexComments:      project.HexComments,
		Date:             p.now().Format(dateFormat),
	})

	outputs := []struct {
		name  string
		write func(io.Writer) error
	}{
		{name: project.OutputFile, write: w.WriteSource},
		{name: project.ListFile, write: w.WriteListing},
		{name: project.LogFile, write: state.writeLog},
	}
	for _, output := range outputs {
		if err := writeFile(output.name, output.write); err != nil {
			return err
		}
		p.logger.Debug("Wrote output file", log.String("file", output.name))
	}
	return nil
}

// writeFile replaces the file with the output of the write function.
func writeFile(name string, write func(io.Writer) error) error {
	if err := os.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing file '%s': %w", name, err)
	}

	file, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("creating file '%s': %w", name, err)
	}

	buffered := bufio.NewWriter(file)
	if err := write(buffered); err != nil {
		_ = file.Close()
		return fmt.Errorf("writing file '%s': %w", name, err)
	}
	if err := buffered.Flush(); err != nil {
		_ = file.Close()
		return fmt.Errorf("writing file '%s': %w", name, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing file '%s': %w", name, err)
	}
	return nil
}

func (s *State) writeLog(out io.Writer) error {
	for _, warning := range s.warnings {
		if _, err := fmt.Fprintf(out, "warning: %s: %s\n", warning.Kind, warning); err != nil {
			return fmt.Errorf("writing warning: %w", err)
		}
	}

	r := s.result("")
	_, err := fmt.Fprintf(out, "instructions: %d\ndata bytes: %d\nlabels: %d\nthreads: %d\nwarnings: %d\n",
		r.Instructions, r.DataBytes, r.Labels, r.Threads, len(r.Warnings))
	if err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	return nil
}

func (s *State) result(file string) Result {
	start, end := s.decoded.Start(), s.decoded.End()

	dataBytes := 0
	for address := int(start); address <= int(end); address++ {
		if s.decoded.IsUnclaimed(uint16(address)) {
			dataBytes++
		}
	}

	return Result{
		File:         file,
		Start:        start,
		End:          end,
		Instructions: s.decoded.Heads(),
		DataBytes:    dataBytes,
		Labels:       s.symbols.Len(),
		Threads:      s.threads,
		Warnings:     s.warnings,
	}
}
