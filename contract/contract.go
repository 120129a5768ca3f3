// Package contract ties a compiled Solidity contract's bytecode,
// disassembly, and decoded source maps together, and resolves
// instruction addresses back to source locations.
package contract

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/solmap/disasm"
	"github.com/teranos/solmap/errors"
	"github.com/teranos/solmap/solc"
	"github.com/teranos/solmap/srcmap"
)

// ErrNoContractFound indicates no artifact entry matches the requested
// file and contract name with non-empty runtime bytecode.
var ErrNoContractFound = errors.New("no contract found")

// Contract is one compiled contract with everything needed for source
// resolution. Immutable after construction; concurrent SourceInfo
// calls are safe.
type Contract struct {
	Name      string
	InputFile string

	code         []byte
	creationCode []byte

	registry           *srcmap.Registry
	runtimeEntries     []srcmap.MappingEntry
	constructorEntries []srcmap.MappingEntry

	runtimeInstructions     []disasm.Instruction
	constructorInstructions []disasm.Instruction
}

// New builds a Contract from a compiled artifact. With a non-empty
// name, the artifact entry "<inputFile>:<name>" must exist with
// non-empty runtime bytecode; with an empty name, the last matching
// entry for the file in sorted key order is taken. read loads source
// file contents for the registry.
func New(artifact *solc.Artifact, inputFile, name string, read srcmap.ReadFileFunc, logger *zap.SugaredLogger) (*Contract, error) {
	selectedName, entry, ok := selectEntry(artifact, inputFile, name)
	if !ok {
		return nil, errors.Wrapf(ErrNoContractFound, "%s:%s", inputFile, name)
	}

	registry, err := srcmap.Build(artifact.SourceList, artifact.ASTs(), read)
	if err != nil {
		return nil, err
	}

	decoder := srcmap.NewDecoder(registry)
	runtimeEntries, err := decoder.Decode(entry.SrcMapRuntime)
	if err != nil {
		return nil, errors.Wrapf(err, "decode runtime source map for %s", selectedName)
	}
	constructorEntries, err := decoder.Decode(entry.SrcMap)
	if err != nil {
		return nil, errors.Wrapf(err, "decode constructor source map for %s", selectedName)
	}

	code, err := disasm.DecodeHex(entry.BinRuntime)
	if err != nil {
		return nil, errors.Wrapf(err, "runtime bytecode for %s", selectedName)
	}
	creationCode, err := disasm.DecodeHex(entry.Bin)
	if err != nil {
		return nil, errors.Wrapf(err, "creation bytecode for %s", selectedName)
	}

	c := &Contract{
		Name:                    selectedName,
		InputFile:               inputFile,
		code:                    code,
		creationCode:            creationCode,
		registry:                registry,
		runtimeEntries:          runtimeEntries,
		constructorEntries:      constructorEntries,
		runtimeInstructions:     disasm.Disassemble(code),
		constructorInstructions: disasm.Disassemble(creationCode),
	}

	if logger != nil {
		logger.Debugw("Contract loaded",
			"contract", selectedName,
			"file", inputFile,
			"runtime_instructions", len(c.runtimeInstructions),
			"runtime_entries", len(runtimeEntries),
		)
	}
	return c, nil
}

// FromFile builds every contract declared in inputFile that has
// non-empty runtime bytecode, in sorted artifact key order.
func FromFile(artifact *solc.Artifact, inputFile string, read srcmap.ReadFileFunc, logger *zap.SugaredLogger) ([]*Contract, error) {
	var contracts []*Contract
	for _, key := range sortedKeys(artifact.Contracts) {
		filename, name := splitKey(key)
		if filename != inputFile || artifact.Contracts[key].BinRuntime == "" {
			continue
		}
		c, err := New(artifact, inputFile, name, read, logger)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, c)
	}
	if len(contracts) == 0 {
		return nil, errors.Wrapf(ErrNoContractFound, "%s", inputFile)
	}
	return contracts, nil
}

// selectEntry picks the artifact entry for inputFile per the lookup
// rules: exact name match, or the last non-empty entry for the file
// when no name is given.
func selectEntry(artifact *solc.Artifact, inputFile, name string) (string, solc.ContractEntry, bool) {
	var (
		selected solc.ContractEntry
		selName  string
		found    bool
	)
	for _, key := range sortedKeys(artifact.Contracts) {
		filename, entryName := splitKey(key)
		entry := artifact.Contracts[key]
		if filename != inputFile || entry.BinRuntime == "" {
			continue
		}
		if name != "" {
			if entryName == name {
				return entryName, entry, true
			}
			continue
		}
		// No name requested: last match in sorted order wins
		selected, selName, found = entry, entryName, true
	}
	return selName, selected, found
}

// splitKey splits an artifact key "<filename>:<contract_name>" on its
// last colon, so filenames containing colons stay intact.
func splitKey(key string) (filename, name string) {
	i := strings.LastIndex(key, ":")
	if i < 0 {
		return key, ""
	}
	return key[:i], key[i+1:]
}

func sortedKeys(contracts map[string]solc.ContractEntry) []string {
	keys := make([]string, 0, len(contracts))
	for key := range contracts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Code returns the deployed bytecode.
func (c *Contract) Code() []byte {
	return c.code
}

// CreationCode returns the constructor bytecode.
func (c *Contract) CreationCode() []byte {
	return c.creationCode
}

// Instructions returns the disassembly for the runtime or constructor
// bytecode.
func (c *Contract) Instructions(constructor bool) []disasm.Instruction {
	if constructor {
		return c.constructorInstructions
	}
	return c.runtimeInstructions
}

// Mappings returns the decoded source-map entries for the runtime or
// constructor bytecode, index-aligned with Instructions.
func (c *Contract) Mappings(constructor bool) []srcmap.MappingEntry {
	if constructor {
		return c.constructorEntries
	}
	return c.runtimeEntries
}
