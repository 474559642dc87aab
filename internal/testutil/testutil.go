// Package testutil provides shared fixtures for codec and archive tests:
// an in-memory byte source and a programmatic SBAsset6 builder.
package testutil

import (
	"bytes"
	"encoding/binary"
	"io"
	"sort"
	"testing"

	"github.com/starfall/sbon"
)

// MockByteSource implements a simple in-memory byte source for tests.
type MockByteSource struct {
	data []byte
}

// NewMockByteSource returns a byte source backed by the provided data.
func NewMockByteSource(data []byte) *MockByteSource {
	return &MockByteSource{data: data}
}

// ReadAt implements io.ReaderAt semantics over the backing slice.
func (m *MockByteSource) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if off+int64(n) >= int64(len(m.data)) {
		return n, io.EOF
	}
	return n, nil
}

// Size returns the total size of the backing data.
func (m *MockByteSource) Size() int64 {
	return int64(len(m.data))
}

// Bytes returns the backing slice for tests that need to corrupt data.
func (m *MockByteSource) Bytes() []byte {
	return m.data
}

// BuildArchive assembles a well-formed SBAsset6 byte image: header, file
// payloads packed after the header in sorted path order, then the index
// block with the given metadata map.
func BuildArchive(tb testing.TB, files map[string][]byte, meta map[string]sbon.Dynamic) []byte {
	tb.Helper()

	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	const headerSize = 16
	type location struct {
		offset uint64
		size   uint64
	}
	locations := make(map[string]location, len(files))

	var payload bytes.Buffer
	for _, p := range paths {
		locations[p] = location{
			offset: uint64(headerSize + payload.Len()),
			size:   uint64(len(files[p])),
		}
		payload.Write(files[p])
	}

	var out bytes.Buffer
	out.WriteString("SBAsset6")
	var u64 [8]byte
	binary.BigEndian.PutUint64(u64[:], uint64(headerSize+payload.Len()))
	out.Write(u64[:])
	out.Write(payload.Bytes())

	out.WriteString("INDEX")
	w := sbon.NewWriter(&out)
	if meta == nil {
		meta = map[string]sbon.Dynamic{}
	}
	if err := w.Map(meta); err != nil {
		tb.Fatalf("write metadata: %v", err)
	}
	if err := w.Varuint(uint64(len(paths))); err != nil {
		tb.Fatalf("write file count: %v", err)
	}
	for _, p := range paths {
		if err := w.String(p); err != nil {
			tb.Fatalf("write index path: %v", err)
		}
		binary.BigEndian.PutUint64(u64[:], locations[p].offset)
		out.Write(u64[:])
		binary.BigEndian.PutUint64(u64[:], locations[p].size)
		out.Write(u64[:])
	}
	return out.Bytes()
}
