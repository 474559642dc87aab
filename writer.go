package sbon

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Writer encodes SBON primitives to a byte stream. It is the structural
// inverse of [Reader]: for any value, decoding what Writer emits yields the
// value back.
type Writer struct {
	w io.Writer
}

// NewWriter creates a Writer encoding to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Varuint encodes v as a minimal-length big-endian base-128 varint.
func (w *Writer) Varuint(v uint64) error {
	var buf [maxVarintLen]byte
	i := len(buf) - 1
	buf[i] = byte(v & 0x7f)
	v >>= 7
	for v > 0 {
		i--
		buf[i] = byte(v&0x7f) | 0x80
		v >>= 7
	}
	_, err := w.w.Write(buf[i:])
	return err
}

// Varint encodes v with the zigzag mapping: negative values become
// ((-v-1)<<1)|1, non-negative values become v<<1.
func (w *Writer) Varint(v int64) error {
	var u uint64
	if v < 0 {
		u = uint64(-(v+1))<<1 | 1
	} else {
		u = uint64(v) << 1
	}
	return w.Varuint(u)
}

// Bytes encodes a varuint length prefix followed by the raw bytes.
func (w *Writer) Bytes(b []byte) error {
	if err := w.Varuint(uint64(len(b))); err != nil {
		return err
	}
	_, err := w.w.Write(b)
	return err
}

// String encodes a length-prefixed string.
func (w *Writer) String(s string) error {
	return w.Bytes([]byte(s))
}

// List encodes a varuint count followed by each element in order.
func (w *Writer) List(list []Dynamic) error {
	if err := w.Varuint(uint64(len(list))); err != nil {
		return err
	}
	for _, v := range list {
		if err := w.Dynamic(v); err != nil {
			return err
		}
	}
	return nil
}

// Map encodes a varuint count followed by each (key, value) pair.
// Iteration order is unspecified; SBON maps carry no key order.
func (w *Writer) Map(m map[string]Dynamic) error {
	if err := w.Varuint(uint64(len(m))); err != nil {
		return err
	}
	for k, v := range m {
		if err := w.String(k); err != nil {
			return err
		}
		if err := w.Dynamic(v); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeByte(b byte) error {
	_, err := w.w.Write([]byte{b})
	return err
}

// Dynamic encodes the type-tag byte for v followed by its payload.
func (w *Writer) Dynamic(v Dynamic) error {
	if err := w.writeByte(byte(v.Type())); err != nil {
		return err
	}
	switch v.Type() {
	case TypeNull:
		return nil
	case TypeDouble:
		f, _ := v.AsDouble()
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(f))
		_, err := w.w.Write(buf[:])
		return err
	case TypeBool:
		b, _ := v.AsBool()
		if b {
			return w.writeByte(1)
		}
		return w.writeByte(0)
	case TypeInt:
		i, _ := v.AsInt()
		return w.Varint(i)
	case TypeString:
		s, _ := v.AsString()
		return w.String(s)
	case TypeList:
		l, _ := v.AsList()
		return w.List(l)
	case TypeMap:
		m, _ := v.AsMap()
		return w.Map(m)
	default:
		return fmt.Errorf("%w: %d", ErrInvalidType, byte(v.Type()))
	}
}
