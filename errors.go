package sbon

import "errors"

// Sentinel errors returned by the codec. Underlying I/O errors are
// propagated verbatim and are not wrapped in any of these.
var (
	// ErrInvalidType is returned when a dynamic type-tag byte is outside
	// the valid range 1-7. The wrapped message carries the offending byte.
	ErrInvalidType = errors.New("sbon: invalid dynamic type byte")

	// ErrVarintOverflow is returned when a varint runs past the 10 bytes
	// needed to encode a 64-bit value.
	ErrVarintOverflow = errors.New("sbon: varint overflow")

	// ErrSizeOverflow is returned when a declared length does not fit in
	// the host's int range.
	ErrSizeOverflow = errors.New("sbon: size overflow")

	// ErrInvalidString is returned when string bytes are not valid UTF-8.
	ErrInvalidString = errors.New("sbon: string is not valid UTF-8")
)
