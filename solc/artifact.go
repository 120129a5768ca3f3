// Package solc invokes the Solidity compiler and models its
// combined-json artifact, the input for source-map resolution.
package solc

import (
	"encoding/json"

	"github.com/teranos/solmap/errors"
)

// ContractEntry is one contract's slice of the combined-json artifact,
// keyed in Artifact.Contracts by "<filename>:<contract_name>".
type ContractEntry struct {
	// Bin is the creation (constructor) bytecode as hex.
	Bin string `json:"bin"`
	// BinRuntime is the deployed bytecode as hex. Empty for
	// interfaces and abstract contracts.
	BinRuntime string `json:"bin-runtime"`
	// SrcMap is the compact source map for the creation bytecode.
	SrcMap string `json:"srcmap"`
	// SrcMapRuntime is the compact source map for the deployed
	// bytecode.
	SrcMapRuntime string `json:"srcmap-runtime"`
}

// SourceEntry carries the per-file AST needed to extract top-level
// declaration ranges. The AST is kept raw; srcmap owns its decoding.
type SourceEntry struct {
	AST json.RawMessage `json:"AST"`
}

// Artifact is a parsed solc --combined-json output.
type Artifact struct {
	Contracts  map[string]ContractEntry `json:"contracts"`
	SourceList []string                 `json:"sourceList"`
	Sources    map[string]SourceEntry   `json:"sources"`
	Version    string                   `json:"version"`
}

// ParseArtifact decodes a combined-json document.
func ParseArtifact(data []byte) (*Artifact, error) {
	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, errors.Wrap(err, "parse combined-json artifact")
	}
	return &artifact, nil
}

// ASTs returns the per-file ASTs keyed by filename, the shape
// srcmap.Build consumes.
func (a *Artifact) ASTs() map[string]json.RawMessage {
	asts := make(map[string]json.RawMessage, len(a.Sources))
	for filename, source := range a.Sources {
		asts[filename] = source.AST
	}
	return asts
}
