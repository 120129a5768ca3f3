package contract

import (
	"github.com/teranos/solmap/disasm"
	"github.com/teranos/solmap/errors"
)

// Resolution failures. All are local and non-retryable: nothing
// transient exists to retry against once the artifact is loaded.
var (
	// ErrInstructionNotFound indicates the address is not the start
	// of any decoded instruction.
	ErrInstructionNotFound = errors.New("instruction not found")
	// ErrIndexOutOfRange indicates the instruction index exceeds the
	// decoded source map, i.e. disassembly and map disagree upstream.
	ErrIndexOutOfRange = errors.New("mapping entry index out of range")
	// ErrNoSourceForEntry indicates the entry maps to
	// compiler-internal code with no user source file.
	ErrNoSourceForEntry = errors.New("no source file for mapping entry")
)

// SourceLocation is the resolved source position of one instruction.
// A plain value with no back-reference into the contract.
type SourceLocation struct {
	// Filename is the source file as named in the artifact.
	Filename string
	// LineNumber is 1-indexed, nil for autogenerated code.
	LineNumber *int
	// Snippet is the mapped source text, lossily decoded as UTF-8.
	Snippet string
	// RawToken is the original source-map token for diagnostics.
	RawToken string
}

// SourceInfo resolves the instruction at address to its source
// location, against the constructor or runtime bytecode. Repeated
// calls with the same arguments return identical values.
func (c *Contract) SourceInfo(address int, constructor bool) (*SourceLocation, error) {
	instructions := c.Instructions(constructor)
	entries := c.Mappings(constructor)

	index, ok := disasm.InstructionIndex(instructions, address)
	if !ok {
		return nil, errors.Wrapf(ErrInstructionNotFound, "address 0x%x", address)
	}
	if index >= len(entries) {
		return nil, errors.Wrapf(ErrIndexOutOfRange, "instruction %d of %d mapped", index, len(entries))
	}

	entry := entries[index]
	file, ok := c.registry.File(entry.FileIndex)
	if !ok {
		return nil, errors.Wrapf(ErrNoSourceForEntry, "file index %d", entry.FileIndex)
	}

	return &SourceLocation{
		Filename:   file.Filename(),
		LineNumber: entry.LineNumber,
		Snippet:    file.Snippet(entry.Offset, entry.Length),
		RawToken:   entry.RawToken,
	}, nil
}
