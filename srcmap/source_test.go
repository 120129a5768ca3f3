package srcmap

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildReadsFilesInSourceListOrder(t *testing.T) {
	var read []string
	reg, err := Build([]string{"A.sol", "B.sol"}, nil, func(filename string) ([]byte, error) {
		read = append(read, filename)
		return []byte("contract " + filename + " {}"), nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"A.sol", "B.sol"}, read)
	require.Equal(t, 2, reg.Len())

	a, ok := reg.File(0)
	require.True(t, ok)
	assert.Equal(t, "A.sol", a.Filename())

	b, ok := reg.File(1)
	require.True(t, ok)
	assert.Equal(t, "B.sol", b.Filename())
}

func TestBuildReadFailureIsFatal(t *testing.T) {
	_, err := Build([]string{"missing.sol"}, nil, func(filename string) ([]byte, error) {
		return nil, assert.AnError
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "missing.sol")
}

func TestRegistryFileOutOfRange(t *testing.T) {
	reg := buildTestRegistry(t, map[string][]byte{"C.sol": []byte(testSource)}, nil)

	_, ok := reg.File(-1)
	assert.False(t, ok)
	_, ok = reg.File(1)
	assert.False(t, ok)
	_, ok = reg.File(0)
	assert.True(t, ok)
}

func TestLineAt(t *testing.T) {
	f := &SourceFile{content: []byte("one\ntwo\nthree")}

	assert.Equal(t, 1, f.LineAt(0))
	assert.Equal(t, 1, f.LineAt(3))
	assert.Equal(t, 2, f.LineAt(4))
	assert.Equal(t, 3, f.LineAt(8))
	assert.Equal(t, 3, f.LineAt(13))
	// Out-of-range offsets clamp instead of panicking
	assert.Equal(t, 3, f.LineAt(500))
	assert.Equal(t, 1, f.LineAt(-1))
}

func TestSnippet(t *testing.T) {
	f := &SourceFile{content: []byte(testSource)}

	assert.Equal(t, "pragma", f.Snippet(0, 6))
	// 10-byte range starting right after the first newline
	assert.Equal(t, "contract C", f.Snippet(24, 10))
	// Clamped past end of file
	assert.Equal(t, "}", f.Snippet(60, 40))
	// Degenerate ranges clamp to empty instead of slicing backwards
	assert.Equal(t, "", f.Snippet(24, -5))
	assert.Equal(t, "", f.Snippet(200, 10))
}

func TestSnippetLossyUTF8(t *testing.T) {
	// "é" is two bytes; cutting between them must not fail
	f := &SourceFile{content: []byte("café")}
	got := f.Snippet(0, 4)
	assert.Equal(t, "caf�", got)
}

func TestExtractDeclRangesLegacyAST(t *testing.T) {
	ast := json.RawMessage(`{
		"name": "SourceUnit",
		"children": [
			{"src": "0:23:0", "name": "PragmaDirective", "attributes": {"literals": ["solidity"]}},
			{"src": "24:37:0", "name": "ContractDefinition", "attributes": {"contractKind": "contract", "name": "C"}},
			{"src": "62:12:0", "name": "ContractDefinition", "attributes": {"contractKind": "library", "name": "L"}}
		]
	}`)

	ranges := extractDeclRanges(ast)
	assert.Len(t, ranges, 2)
	assert.Contains(t, ranges, "24:37:0")
	assert.Contains(t, ranges, "62:12:0")
	assert.NotContains(t, ranges, "0:23:0")
}

func TestExtractDeclRangesModernAST(t *testing.T) {
	ast := json.RawMessage(`{
		"nodeType": "SourceUnit",
		"nodes": [
			{"src": "0:23:0", "nodeType": "PragmaDirective"},
			{"src": "24:37:0", "nodeType": "ContractDefinition", "contractKind": "contract"}
		]
	}`)

	ranges := extractDeclRanges(ast)
	assert.Len(t, ranges, 1)
	assert.Contains(t, ranges, "24:37:0")
}

func TestExtractDeclRangesMalformed(t *testing.T) {
	// Malformed declarations are skipped, never fatal
	assert.Empty(t, extractDeclRanges(nil))
	assert.Empty(t, extractDeclRanges(json.RawMessage(`not json`)))
	assert.Empty(t, extractDeclRanges(json.RawMessage(`{"children": "wat"}`)))

	// One malformed child does not block extraction of the others
	ast := json.RawMessage(`{
		"children": [
			{"attributes": {"contractKind": "contract"}},
			{"src": "5:10:0", "attributes": {"contractKind": "contract"}}
		]
	}`)
	ranges := extractDeclRanges(ast)
	assert.Len(t, ranges, 1)
	assert.Contains(t, ranges, "5:10:0")
}
