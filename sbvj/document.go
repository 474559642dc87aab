// Package sbvj reads and writes SBVJ01 versioned documents: a named,
// optionally-versioned SBON payload, used by the Starbound engine for
// player and other save files.
//
// A standalone file carries a 6-byte "SBVJ01" magic envelope followed by
// the document; documents embedded in other streams omit the envelope.
package sbvj

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/starfall/sbon"
)

// Magic is the envelope marker at the start of a standalone document file.
const Magic = "SBVJ01"

// ErrInvalidMagic is returned when a stream does not start with "SBVJ01".
var ErrInvalidMagic = errors.New("sbvj: invalid magic number")

// Document is a named, optionally-versioned SBON payload. Version is nil
// when the document carries no version number.
type Document struct {
	Name    string
	Version *int32
	Data    sbon.Dynamic
}

// ReadDocument decodes a bare document: name, version flag byte (low bit
// set means a big-endian int32 version follows), then the data payload.
func ReadDocument(r io.Reader) (*Document, error) {
	sr := sbon.NewReader(r)

	name, err := sr.String()
	if err != nil {
		return nil, fmt.Errorf("read document name: %w", err)
	}

	var flag [1]byte
	if _, err := io.ReadFull(r, flag[:]); err != nil {
		return nil, fmt.Errorf("read version flag: %w", err)
	}

	var version *int32
	if flag[0]&1 != 0 {
		var buf [4]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, fmt.Errorf("read version: %w", err)
		}
		v := int32(binary.BigEndian.Uint32(buf[:]))
		version = &v
	}

	data, err := sr.Dynamic()
	if err != nil {
		return nil, fmt.Errorf("read document data: %w", err)
	}

	return &Document{Name: name, Version: version, Data: data}, nil
}

// Read decodes an enveloped document: the "SBVJ01" magic followed by the
// document itself.
func Read(r io.Reader) (*Document, error) {
	var magic [6]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("read magic: %w", err)
	}
	if string(magic[:]) != Magic {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMagic, magic[:])
	}
	return ReadDocument(r)
}

// Open reads an enveloped document from a file on disk.
func Open(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// WriteDocument encodes a bare document. The flag byte is 1 iff a version
// is present.
func WriteDocument(w io.Writer, doc *Document) error {
	sw := sbon.NewWriter(w)

	if err := sw.String(doc.Name); err != nil {
		return fmt.Errorf("write document name: %w", err)
	}

	if doc.Version == nil {
		if _, err := w.Write([]byte{0}); err != nil {
			return fmt.Errorf("write version flag: %w", err)
		}
	} else {
		var buf [5]byte
		buf[0] = 1
		binary.BigEndian.PutUint32(buf[1:], uint32(*doc.Version))
		if _, err := w.Write(buf[:]); err != nil {
			return fmt.Errorf("write version: %w", err)
		}
	}

	if err := sw.Dynamic(doc.Data); err != nil {
		return fmt.Errorf("write document data: %w", err)
	}
	return nil
}

// Write encodes the "SBVJ01" magic followed by the document.
func Write(w io.Writer, doc *Document) error {
	if _, err := io.WriteString(w, Magic); err != nil {
		return fmt.Errorf("write magic: %w", err)
	}
	return WriteDocument(w, doc)
}
