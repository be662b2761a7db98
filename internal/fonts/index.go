// Package fonts is the Font Service (spec §4.2): it resolves a
// (family, bold, italic) request to embedded bytes or an index hit,
// parses the face, and builds the dense glyph remapping + metrics the
// Layout Engine and PDF writer need. It never fails a conversion —
// every resolution path bottoms out at the Helvetica/WinAnsi fallback.
package fonts

// Index is the external font-directory lookup the spec treats as a
// collaborator (§6 "Font index"): given a lowercased family and style
// bits, return the file bytes and the face index to use within that
// file (non-zero for TrueType collections). A real implementation would
// scan OS font directories; that discovery is out of scope per §1, so
// this package only depends on the interface.
type Index interface {
	Resolve(familyLower string, bold, italic bool) (data []byte, faceIndex int, ok bool)
}

// MemIndex is a trivial in-memory Index, sufficient for tests and for
// callers that preload a small fixed font set rather than scanning a
// directory.
type MemIndex struct {
	entries map[indexKey][]byte
}

type indexKey struct {
	familyLower   string
	bold, italic bool
}

// NewMemIndex builds an empty in-memory index.
func NewMemIndex() *MemIndex {
	return &MemIndex{entries: map[indexKey][]byte{}}
}

// Add registers family/bold/italic -> the raw font file bytes.
func (m *MemIndex) Add(familyLower string, bold, italic bool, data []byte) {
	m.entries[indexKey{familyLower, bold, italic}] = data
}

// Resolve implements Index.
func (m *MemIndex) Resolve(familyLower string, bold, italic bool) ([]byte, int, bool) {
	data, ok := m.entries[indexKey{familyLower, bold, italic}]
	return data, 0, ok
}
