package sbon

import (
	"bytes"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVaruint_Decode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input []byte
		want  uint64
	}{
		{"zero", []byte{0x00}, 0},
		{"one", []byte{0x01}, 1},
		{"seven bits", []byte{0x7f}, 127},
		{"two bytes", []byte{0x81, 0x00}, 128},
		{"two bytes full", []byte{0xff, 0x7f}, 16383},
		{"three bytes", []byte{0x81, 0x80, 0x00}, 16384},
		{"max uint64", []byte{0x81, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x7f}, math.MaxUint64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := NewReader(bytes.NewReader(tt.input)).Varuint()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVaruint_Overflow(t *testing.T) {
	t.Parallel()

	// Eleven continuation-flagged bytes: must fail, must not loop.
	input := bytes.Repeat([]byte{0x80}, 11)
	_, err := NewReader(bytes.NewReader(input)).Varuint()
	require.ErrorIs(t, err, ErrVarintOverflow)
}

func TestVaruint_TruncatedStream(t *testing.T) {
	t.Parallel()

	// Continuation bit set, then the stream ends.
	_, err := NewReader(bytes.NewReader([]byte{0x81})).Varuint()
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)

	// Empty stream reports plain EOF: no value has started.
	_, err = NewReader(bytes.NewReader(nil)).Varuint()
	require.ErrorIs(t, err, io.EOF)
}

func TestVarint_Decode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input []byte
		want  int64
	}{
		{"zero", []byte{0x00}, 0},
		{"one", []byte{0x02}, 1},
		{"minus one", []byte{0x01}, -1},
		{"two", []byte{0x04}, 2},
		{"minus two", []byte{0x03}, -2},
		// The shift applies on the even branch too: 0x06 is 3, not 6.
		{"even branch shifts", []byte{0x06}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := NewReader(bytes.NewReader(tt.input)).Varint()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestString_Decode(t *testing.T) {
	t.Parallel()

	r := NewReader(bytes.NewReader(append([]byte{0x05}, []byte("hello")...)))
	s, err := r.String()
	require.NoError(t, err)
	assert.Equal(t, "hello", s)
}

func TestString_InvalidUTF8(t *testing.T) {
	t.Parallel()

	r := NewReader(bytes.NewReader([]byte{0x02, 0xff, 0xfe}))
	_, err := r.String()
	require.ErrorIs(t, err, ErrInvalidString)
}

func TestString_ShortRead(t *testing.T) {
	t.Parallel()

	// Declares ten bytes, supplies three.
	r := NewReader(bytes.NewReader([]byte{0x0a, 'a', 'b', 'c'}))
	_, err := r.String()
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestDynamic_Decode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input []byte
		want  Dynamic
	}{
		{"null", []byte{0x01}, Null()},
		{"double", []byte{0x02, 0x40, 0x09, 0x21, 0xfb, 0x54, 0x44, 0x2d, 0x18}, Double(3.141592653589793)},
		{"bool true", []byte{0x03, 0x01}, Bool(true)},
		{"bool false", []byte{0x03, 0x00}, Bool(false)},
		{"bool nonzero is true", []byte{0x03, 0x7f}, Bool(true)},
		{"int", []byte{0x04, 0x54}, Int(42)},
		{"string", []byte{0x05, 0x02, 'h', 'i'}, String("hi")},
		{"empty list", []byte{0x06, 0x00}, List()},
		{"list", []byte{0x06, 0x02, 0x01, 0x03, 0x01}, List(Null(), Bool(true))},
		{"map", []byte{0x07, 0x01, 0x01, 'k', 0x04, 0x02}, Map(map[string]Dynamic{"k": Int(1)})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := NewReader(bytes.NewReader(tt.input)).Dynamic()
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %#v", got)
		})
	}
}

func TestDynamic_UnknownTag(t *testing.T) {
	t.Parallel()

	for _, tag := range []byte{0x00, 0x08, 0x42, 0xff} {
		src := bytes.NewReader([]byte{tag, 0xaa})
		_, err := NewReader(src).Dynamic()
		require.ErrorIs(t, err, ErrInvalidType)
		assert.Contains(t, err.Error(), "0x", "error should name the offending byte")

		// Exactly one byte consumed before failing.
		assert.Equal(t, 1, src.Len())
	}
}

func TestMap_DuplicateKeys(t *testing.T) {
	t.Parallel()

	// Two entries under the same key: the later one wins.
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.Varuint(2))
	require.NoError(t, w.String("k"))
	require.NoError(t, w.Dynamic(Int(1)))
	require.NoError(t, w.String("k"))
	require.NoError(t, w.Dynamic(Int(2)))

	m, err := NewReader(&buf).Map()
	require.NoError(t, err)
	require.Len(t, m, 1)
	assert.True(t, Int(2).Equal(m["k"]))
}

func TestReader_PlainReader(t *testing.T) {
	t.Parallel()

	// A bare io.Reader without ReadByte: the single-byte fallback must
	// behave identically.
	r := NewReader(struct{ io.Reader }{strings.NewReader("\x04\x54")})
	v, err := r.Dynamic()
	require.NoError(t, err)
	assert.True(t, Int(42).Equal(v))
}
