// Package disasm implements the control flow following Z80 disassembly engine.
package disasm

import (
	"slices"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
	"github.com/retroenv/z80disasm/internal/decodemap"
	"github.com/retroenv/z80disasm/internal/instruction"
	"github.com/retroenv/z80disasm/internal/memory"
	"github.com/retroenv/z80disasm/internal/symbols"
)

// Disasm follows the execution flow from a list of start addresses, classifies
// the bytes of the address space as instructions or data and assigns labels.
type Disasm struct {
	logger  *log.Logger
	memory  *memory.AddressSpace
	catalog *instruction.Catalog
	decoded *decodemap.Map
	symbols *symbols.Table

	offsetsToParse []uint16
	wordReferences set.Set[uint16] // addresses referenced by word loads
	warnings       []Warning
	threads        int
}

// New returns a disassembler that classifies into decoded and labels into symbols.
func New(logger *log.Logger, mem *memory.AddressSpace, catalog *instruction.Catalog,
	decoded *decodemap.Map, symbolTable *symbols.Table) *Disasm {

	return &Disasm{
		logger:         logger,
		memory:         mem,
		catalog:        catalog,
		decoded:        decoded,
		symbols:        symbolTable,
		wordReferences: set.New[uint16](),
	}
}

// AddStart queues an address to start disassembling from. Addresses outside
// the disassembly bounds are ignored and false is returned.
func (dis *Disasm) AddStart(address uint16) bool {
	if !dis.decoded.IsInBounds(int(address)) {
		return false
	}
	dis.offsetsToParse = append(dis.offsetsToParse, address)
	return true
}

// Process runs the traversal until no queued address is left and then
// labels the data blocks that were found.
func (dis *Disasm) Process() {
	dis.followExecutionFlow()
	dis.labelDataBlocks()
	dis.labelWordReferences()
}

// Warnings returns the warnings recorded during processing, in order of occurrence.
func (dis *Disasm) Warnings() []Warning {
	return dis.warnings
}

// Threads returns the number of queued addresses that were processed.
func (dis *Disasm) Threads() int {
	return dis.threads
}

// followExecutionFlow pops queued addresses and decodes a thread of instructions from each.
func (dis *Disasm) followExecutionFlow() {
	for len(dis.offsetsToParse) > 0 {
		address := dis.offsetsToParse[0]
		dis.offsetsToParse = dis.offsetsToParse[1:]
		dis.threads++

		switch dis.decoded.Kind(address) {
		case decodemap.Head:
			dis.symbols.MapCodeLabel(address)

		case decodemap.Parameter:
			dis.handleJumpIntoInstruction(address)

		default:
			dis.symbols.MapCodeLabel(address)
			dis.scan(address)
		}
	}
}

// scan decodes instructions starting at address until the thread terminates.
func (dis *Disasm) scan(address uint16) {
	end := int(dis.decoded.End())

	for pc := int(address); pc <= end; {
		current := uint16(pc)
		if !dis.decoded.IsUnclaimed(current) {
			return // merges into already decoded code
		}

		def, ok := dis.catalog.MatchAt(dis.memory, current)
		if !ok || pc+def.Len()-1 > end {
			pc++ // leave the byte as data and try the next one
			continue
		}

		if err := dis.decoded.Place(current, def); err != nil {
			dis.warn(Warning{
				Kind:    Overlap,
				Address: current,
				Message: "overlapping instruction " + def.Mnemonic(),
			})
			return
		}

		if dis.followInstruction(current, def) {
			return
		}
		pc += def.Len()
	}
}

// followInstruction queues the targets of a control flow instruction placed at
// address and returns whether the thread terminates after it.
func (dis *Disasm) followInstruction(address uint16, def *instruction.Definition) bool {
	b := dis.memory.ReadSlice(address, def.Len())

	switch def.Category() {
	case instruction.Return:
		return true

	case instruction.IndirectJump:
		dis.warn(Warning{
			Kind:    UnresolvedTarget,
			Address: address,
			Message: "jump target of " + def.Mnemonic() + " can not be resolved",
		})
		return true

	case instruction.UnconditionalJump, instruction.ConditionalJump, instruction.Call:
		target, _ := def.Word(b)
		dis.AddStart(target)
		return def.Category() == instruction.UnconditionalJump

	case instruction.RelativeJumpUnconditional, instruction.RelativeJumpConditional:
		dis.AddStart(def.RelativeTarget(address, b))
		return def.Category() == instruction.RelativeJumpUnconditional

	case instruction.Restart:
		dis.AddStart(def.RestartTarget())

	default:
		if def.LoadsWord() {
			word, _ := def.Word(b)
			dis.wordReferences.Add(word)
		}
	}
	return false
}

// handleJumpIntoInstruction labels a start address that points into the operand
// bytes of an already decoded instruction.
func (dis *Disasm) handleJumpIntoInstruction(address uint16) {
	head, err := dis.decoded.HeadOf(address)
	if err != nil {
		return
	}

	dis.warn(Warning{
		Kind:    MidInstruction,
		Address: address,
		Head:    head,
		Message: "start address points into an instruction",
	})
	dis.symbols.MapOffsetLabel(address, head)
}

// labelDataBlocks assigns data labels to unclaimed bytes that follow an instruction.
func (dis *Disasm) labelDataBlocks() {
	start, end := int(dis.decoded.Start()), int(dis.decoded.End())
	for address := start + 1; address <= end; address++ {
		if !dis.decoded.IsUnclaimed(uint16(address-1)) && dis.decoded.IsUnclaimed(uint16(address)) {
			dis.symbols.MapDataLabel(uint16(address))
		}
	}
}

// labelWordReferences assigns data labels to unclaimed addresses that are referenced
// by word load instructions.
func (dis *Disasm) labelWordReferences() {
	addresses := make([]uint16, 0, len(dis.wordReferences))
	for address := range dis.wordReferences {
		addresses = append(addresses, address)
	}
	slices.Sort(addresses)

	for _, address := range addresses {
		if dis.decoded.IsInBounds(int(address)) && dis.decoded.IsUnclaimed(address) {
			dis.symbols.MapDataLabel(address)
		}
	}
}

func (dis *Disasm) warn(w Warning) {
	dis.warnings = append(dis.warnings, w)
	dis.logger.Warn(w.Message,
		log.Stringer("kind", w.Kind),
		log.Hex("address", w.Address))
}
