package sbon

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"unicode/utf8"
)

// maxVarintLen is the most bytes a base-128 varint needs for a 64-bit
// value. Anything longer is malformed input, not a bigger number.
const maxVarintLen = 10

// Reader decodes SBON primitives from a sequential byte stream.
//
// Reader performs no read-ahead of its own: it consumes exactly the bytes
// of each value, so it can share a stream with outer framing (the container
// formats rely on this). If the underlying reader implements io.ByteReader
// it is used directly, otherwise single-byte reads are issued.
type Reader struct {
	r io.Reader
	b io.ByteReader
}

// NewReader creates a Reader decoding from r.
func NewReader(r io.Reader) *Reader {
	br, _ := r.(io.ByteReader)
	return &Reader{r: r, b: br}
}

func (r *Reader) readByte() (byte, error) {
	if r.b != nil {
		return r.b.ReadByte()
	}
	var buf [1]byte
	if _, err := io.ReadFull(r.r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// Varuint decodes an unsigned base-128 varint: seven data bits per byte,
// most significant group first, high bit set on every byte but the last.
// Inputs longer than ten bytes fail with ErrVarintOverflow rather than
// looping.
func (r *Reader) Varuint() (uint64, error) {
	var v uint64
	for i := 0; i < maxVarintLen; i++ {
		b, err := r.readByte()
		if err != nil {
			if i > 0 && err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return 0, err
		}
		v = v<<7 | uint64(b&0x7f)
		if b&0x80 == 0 {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: more than %d continuation bytes", ErrVarintOverflow, maxVarintLen)
}

// Varint decodes a signed varint: a zigzag mapping over Varuint. The shift
// applies on both the negative and non-negative paths.
func (r *Reader) Varint() (int64, error) {
	u, err := r.Varuint()
	if err != nil {
		return 0, err
	}
	if u&1 != 0 {
		return -int64(u>>1) - 1, nil
	}
	return int64(u >> 1), nil
}

// Bytes decodes a varuint length prefix followed by exactly that many
// bytes. A length that does not fit the host int range fails with
// ErrSizeOverflow; a short stream fails with io.ErrUnexpectedEOF.
func (r *Reader) Bytes() ([]byte, error) {
	n, err := r.Varuint()
	if err != nil {
		return nil, err
	}
	if n > uint64(math.MaxInt) {
		return nil, fmt.Errorf("%w: declared length %d", ErrSizeOverflow, n)
	}
	buf := make([]byte, int(n))
	if _, err := io.ReadFull(r.r, buf); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return buf, nil
}

// String decodes a length-prefixed UTF-8 string.
func (r *Reader) String() (string, error) {
	b, err := r.Bytes()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", ErrInvalidString
	}
	return string(b), nil
}

// List decodes a varuint count followed by that many dynamic values.
func (r *Reader) List() ([]Dynamic, error) {
	n, err := r.Varuint()
	if err != nil {
		return nil, err
	}
	var list []Dynamic
	for i := uint64(0); i < n; i++ {
		v, err := r.Dynamic()
		if err != nil {
			return nil, err
		}
		list = append(list, v)
	}
	return list, nil
}

// Map decodes a varuint count followed by that many (string, dynamic)
// pairs. A duplicate key overwrites the earlier value.
func (r *Reader) Map() (map[string]Dynamic, error) {
	n, err := r.Varuint()
	if err != nil {
		return nil, err
	}
	m := make(map[string]Dynamic)
	for i := uint64(0); i < n; i++ {
		k, err := r.String()
		if err != nil {
			return nil, err
		}
		v, err := r.Dynamic()
		if err != nil {
			return nil, err
		}
		m[k] = v
	}
	return m, nil
}

// Dynamic decodes one type-tag byte and then the payload it announces.
// A tag outside 1-7 fails with ErrInvalidType after consuming only the tag
// byte.
func (r *Reader) Dynamic() (Dynamic, error) {
	tag, err := r.readByte()
	if err != nil {
		return Dynamic{}, err
	}
	switch Type(tag) {
	case TypeNull:
		return Null(), nil
	case TypeDouble:
		var buf [8]byte
		if _, err := io.ReadFull(r.r, buf[:]); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return Dynamic{}, err
		}
		return Double(math.Float64frombits(binary.BigEndian.Uint64(buf[:]))), nil
	case TypeBool:
		b, err := r.readByte()
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return Dynamic{}, err
		}
		return Bool(b != 0), nil
	case TypeInt:
		v, err := r.Varint()
		if err != nil {
			return Dynamic{}, err
		}
		return Int(v), nil
	case TypeString:
		s, err := r.String()
		if err != nil {
			return Dynamic{}, err
		}
		return String(s), nil
	case TypeList:
		l, err := r.List()
		if err != nil {
			return Dynamic{}, err
		}
		return List(l...), nil
	case TypeMap:
		m, err := r.Map()
		if err != nil {
			return Dynamic{}, err
		}
		return Map(m), nil
	default:
		return Dynamic{}, fmt.Errorf("%w: 0x%02x (expected 1-7)", ErrInvalidType, tag)
	}
}
