// Package srcmap decodes solc's compact source mappings back to source
// file locations.
//
// A source mapping is a semicolon-separated list of tokens, one per
// bytecode instruction. Each token carries up to five colon-separated
// fields; the first three (byte offset, byte length, source file index)
// identify the source range that produced the instruction. The encoding
// is sparse: an empty token repeats the previous token, and an empty or
// absent field repeats that field's previous value.
package srcmap

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/teranos/solmap/errors"
)

// SourceFile is an immutable holder of one source file's raw text plus
// the byte ranges of whole top-level declarations within it. Ranges are
// kept as verbatim "offset:length:fileIndex" strings because the
// autogenerated check is exact-match membership, not containment.
type SourceFile struct {
	filename   string
	content    []byte
	declRanges map[string]struct{}
}

// Filename returns the file's name as declared in the compiler artifact.
func (f *SourceFile) Filename() string {
	return f.filename
}

// Content returns the file's raw bytes. Callers must not mutate the
// returned slice.
func (f *SourceFile) Content() []byte {
	return f.content
}

// LineAt returns the 1-indexed line number containing the given byte
// offset. Offsets past the end of the file clamp to the last line.
func (f *SourceFile) LineAt(offset int) int {
	if offset > len(f.content) {
		offset = len(f.content)
	}
	if offset < 0 {
		offset = 0
	}
	return bytes.Count(f.content[:offset], []byte{'\n'}) + 1
}

// Snippet returns the file bytes in [offset, offset+length) decoded as
// UTF-8, replacing invalid sequences (a range cut mid-rune stays lossy
// rather than failing). Out-of-bounds ranges clamp to the file.
func (f *SourceFile) Snippet(offset, length int) string {
	if offset < 0 {
		offset = 0
	}
	if offset > len(f.content) {
		offset = len(f.content)
	}
	end := offset + length
	if end > len(f.content) {
		end = len(f.content)
	}
	if end < offset {
		end = offset
	}
	return strings.ToValidUTF8(string(f.content[offset:end]), string(utf8.RuneError))
}

// isWholeDeclaration reports whether the given range coincides exactly
// with a top-level declaration of this file.
func (f *SourceFile) isWholeDeclaration(src string) bool {
	_, ok := f.declRanges[src]
	return ok
}

// Registry is an ordered, immutable collection of SourceFile indexed by
// the compiler's per-artifact file index.
type Registry struct {
	files []*SourceFile
}

// Len returns the number of registered source files.
func (r *Registry) Len() int {
	return len(r.files)
}

// File returns the source file at the given artifact index, or false if
// the index has no registered file. Negative and past-the-source-list
// indexes are how solc marks compiler-internal code.
func (r *Registry) File(index int) (*SourceFile, bool) {
	if index < 0 || index >= len(r.files) {
		return nil, false
	}
	return r.files[index], true
}

// ReadFileFunc loads the contents of a source file named in the
// compiler artifact's source list.
type ReadFileFunc func(filename string) ([]byte, error)

// Build constructs a Registry from the artifact's ordered source list
// and per-file ASTs, loading file contents through read. Files appear in
// source-list order so artifact file indexes resolve directly.
//
// A missing or malformed AST yields a file with no declaration ranges;
// a read failure is fatal since nothing can be resolved without the
// file's bytes.
func Build(sourceList []string, asts map[string]json.RawMessage, read ReadFileFunc) (*Registry, error) {
	files := make([]*SourceFile, 0, len(sourceList))
	for _, filename := range sourceList {
		content, err := read(filename)
		if err != nil {
			return nil, errors.Wrapf(err, "read source file %s", filename)
		}
		files = append(files, &SourceFile{
			filename:   filename,
			content:    content,
			declRanges: extractDeclRanges(asts[filename]),
		})
	}
	return &Registry{files: files}, nil
}

// legacyASTNode is the subset of solc's legacy AST shape needed to find
// top-level contract declarations.
type legacyASTNode struct {
	Src        string          `json:"src"`
	Attributes json.RawMessage `json:"attributes"`
	Children   []legacyASTNode `json:"children"`
	// Post-0.8 combined-json emits the modern AST shape instead.
	NodeType     string          `json:"nodeType"`
	ContractKind string          `json:"contractKind"`
	Nodes        []legacyASTNode `json:"nodes"`
}

// extractDeclRanges scans the top-level declaration list of a file's
// AST and records the src range of every declaration carrying a
// contract-kind marker (contract, interface, library). These are the
// ranges solc maps compiler-injected code to, e.g. implicit
// constructors. Malformed nodes are skipped; partial extraction is
// acceptable.
func extractDeclRanges(ast json.RawMessage) map[string]struct{} {
	ranges := make(map[string]struct{})
	if len(ast) == 0 {
		return ranges
	}

	var root legacyASTNode
	if err := json.Unmarshal(ast, &root); err != nil {
		return ranges
	}

	children := root.Children
	if len(children) == 0 {
		children = root.Nodes
	}
	for _, child := range children {
		if child.Src == "" {
			continue
		}
		if child.hasContractKind() {
			ranges[child.Src] = struct{}{}
		}
	}
	return ranges
}

// hasContractKind reports whether the node declares a whole contract,
// interface, or library, in either AST shape.
func (n legacyASTNode) hasContractKind() bool {
	if n.ContractKind != "" || n.NodeType == "ContractDefinition" {
		return true
	}
	if len(n.Attributes) == 0 {
		return false
	}
	var attrs map[string]json.RawMessage
	if err := json.Unmarshal(n.Attributes, &attrs); err != nil {
		return false
	}
	_, ok := attrs["contractKind"]
	return ok
}
