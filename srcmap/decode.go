package srcmap

import (
	"fmt"
	"strconv"
	"strings"
)

// MappingEntry is one decoded source-map token, aligned by position
// with one instruction of the matching disassembly.
type MappingEntry struct {
	// Offset is the byte offset of the mapped range in the source file.
	Offset int
	// Length is the byte length of the mapped range.
	Length int
	// FileIndex is the artifact source-list index, or -1 for
	// compiler-internal code with no user file.
	FileIndex int
	// LineNumber is the 1-indexed line of Offset, or nil when the
	// entry is classified autogenerated.
	LineNumber *int
	// RawToken is the original encoded token before empty-token
	// substitution, kept for diagnostics.
	RawToken string
}

// Src returns the entry's range in solc's "offset:length:fileIndex"
// notation.
func (e MappingEntry) Src() string {
	return fmt.Sprintf("%d:%d:%d", e.Offset, e.Length, e.FileIndex)
}

// DecodeError reports a malformed source map.
type DecodeError struct {
	Token string // offending token
	Index int    // token position in the map
	Cause string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("source map token %d (%q): %s", e.Index, e.Token, e.Cause)
}

// field is one running source-map value: either explicitly set by some
// token, or still undefined because no token has set it yet.
type field struct {
	value int
	set   bool
}

// carry holds the three running values threaded through the decode
// loop. Fields a token leaves empty keep their previous value; that is
// what makes the encoding compact.
type carry struct {
	offset    field
	length    field
	fileIndex field
}

// apply overwrites the running values for every position of parts that
// is present and non-empty. Offset and length must be non-negative;
// only the file index admits the -1 sentinel.
func (c *carry) apply(parts []string) error {
	for i, dst := range []*field{&c.offset, &c.length, &c.fileIndex} {
		if i >= len(parts) || parts[i] == "" {
			continue
		}
		v, err := strconv.Atoi(parts[i])
		if err != nil {
			return fmt.Errorf("field %d is not an integer: %q", i, parts[i])
		}
		if v < 0 && i < 2 {
			return fmt.Errorf("field %d is negative: %q", i, parts[i])
		}
		*dst = field{value: v, set: true}
	}
	return nil
}

// defined reports whether all three running values have been set.
func (c *carry) defined() bool {
	return c.offset.set && c.length.set && c.fileIndex.set
}

// Decoder resolves compact source mappings against a Registry, which
// supplies line numbers and whole-declaration ranges.
type Decoder struct {
	registry *Registry
}

// NewDecoder returns a Decoder backed by the given registry.
func NewDecoder(registry *Registry) *Decoder {
	return &Decoder{registry: registry}
}

// Decode turns a raw compact source mapping into one MappingEntry per
// token. The returned slice always has exactly as many entries as the
// map has semicolon-separated tokens, so it stays index-aligned with
// the matching disassembly.
//
// A leading token that leaves any of the first three fields undefined
// has nothing to inherit from and fails with a DecodeError rather than
// guessing a default.
func (d *Decoder) Decode(rawMap string) ([]MappingEntry, error) {
	tokens := strings.Split(rawMap, ";")
	entries := make([]MappingEntry, 0, len(tokens))

	var cur carry
	prev := ""
	for i, raw := range tokens {
		token := raw
		if token == "" {
			// Full-token inheritance: repeat the previous token.
			token = prev
		}

		if err := cur.apply(strings.Split(token, ":")); err != nil {
			return nil, &DecodeError{Token: raw, Index: i, Cause: err.Error()}
		}
		if !cur.defined() {
			return nil, &DecodeError{Token: raw, Index: i, Cause: "field inherited with no predecessor"}
		}

		offset := cur.offset.value
		length := cur.length.value
		fileIndex := cur.fileIndex.value

		var line *int
		if !d.isAutogenerated(offset, length, fileIndex) {
			file, _ := d.registry.File(fileIndex)
			n := file.LineAt(offset)
			line = &n
		}

		entries = append(entries, MappingEntry{
			Offset:     offset,
			Length:     length,
			FileIndex:  fileIndex,
			LineNumber: line,
			RawToken:   raw,
		})
		prev = token
	}
	return entries, nil
}

// isAutogenerated reports whether a mapped range is compiler-injected
// code with no meaningful user source: either the file index has no
// registered file (-1, or a solc generated-source index past the
// source list), or the range coincides exactly with a whole top-level
// declaration, which is where solc maps injected code such as implicit
// constructors.
func (d *Decoder) isAutogenerated(offset, length, fileIndex int) bool {
	file, ok := d.registry.File(fileIndex)
	if !ok {
		return true
	}
	return file.isWholeDeclaration(fmt.Sprintf("%d:%d:%d", offset, length, fileIndex))
}
