// Package sbasset reads SBAsset6 archives: the indexed multi-file
// container format the Starbound engine uses for asset packages (.pak).
//
// Opening an archive parses only the header and the file index; payload
// bytes are read lazily, each through its own bounded cursor over the
// underlying source. An [Archive] is therefore safe for concurrent readers
// whenever its [ByteSource] is (true for *os.File and in-memory sources).
//
// The package implements fs.FS and related interfaces for stdlib
// compatibility.
package sbasset

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"log/slog"
	"math"
	"os"
	"sort"

	"github.com/starfall/sbon"
)

const (
	archiveMagic = "SBAsset6"
	indexMagic   = "INDEX"

	headerSize = 16 // 8-byte magic + big-endian u64 index offset
)

// Sentinel errors for malformed archives.
var (
	// ErrInvalidMagic is returned when a source does not start with "SBAsset6".
	ErrInvalidMagic = errors.New("sbasset: invalid magic number")

	// ErrInvalidIndex is returned when the index block does not start with "INDEX".
	ErrInvalidIndex = errors.New("sbasset: invalid index marker")

	// ErrFileTooLarge is returned when an entry exceeds the configured size limit.
	ErrFileTooLarge = errors.New("sbasset: file exceeds size limit")
)

// ByteSource provides random access to the archive bytes.
//
// Implementations exist for local files (via [Open]) and in-memory buffers
// (bytes.Reader satisfies it with a trivial wrapper).
type ByteSource interface {
	io.ReaderAt
	Size() int64
}

// Entry locates one file's payload inside the archive.
type Entry struct {
	Path   string
	Offset uint64
	Size   uint64
}

// File is an extracted file: its archive path and verbatim payload bytes.
type File struct {
	Path string
	Data []byte
}

// Archive provides random access to the files of an SBAsset6 container.
//
// The index and metadata are parsed once at construction and held for the
// archive's lifetime; file payloads are read on demand.
//
// Archive implements fs.FS, fs.StatFS, fs.ReadFileFS, and fs.ReadDirFS.
// Archive paths are "/"-rooted; the fs.FS view strips the leading slash.
type Archive struct {
	source      ByteSource
	index       map[string]Entry
	meta        Metadata
	maxFileSize uint64
	logger      *slog.Logger
}

// Interface compliance.
var (
	_ fs.FS         = (*Archive)(nil)
	_ fs.StatFS     = (*Archive)(nil)
	_ fs.ReadFileFS = (*Archive)(nil)
	_ fs.ReadDirFS  = (*Archive)(nil)
)

// Option configures an Archive.
type Option func(*Archive)

// WithLogger sets a logger for diagnostic output. Nil (the default)
// discards all log output.
func WithLogger(l *slog.Logger) Option {
	return func(a *Archive) {
		a.logger = l
	}
}

// WithMaxFileSize caps the size of any single extracted file.
// Set to 0 (the default) to disable the limit.
func WithMaxFileSize(limit uint64) Option {
	return func(a *Archive) {
		a.maxFileSize = limit
	}
}

// log returns the logger, falling back to a discard logger if nil.
func (a *Archive) log() *slog.Logger {
	if a.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.logger
}

// New creates an Archive over the given source.
//
// New validates the magic number, then parses the metadata map and the
// full file index. It fails fast on any malformed step but reads no
// payload bytes: an entry pointing outside the source only fails when that
// entry is extracted.
func New(src ByteSource, opts ...Option) (*Archive, error) {
	a := &Archive{source: src}
	for _, opt := range opts {
		opt(a)
	}

	var header [headerSize]byte
	if _, err := io.ReadFull(io.NewSectionReader(src, 0, headerSize), header[:]); err != nil {
		return nil, fmt.Errorf("sbasset: read header: %w", noEOF(err))
	}
	if string(header[:8]) != archiveMagic {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMagic, header[:8])
	}

	indexOffset := binary.BigEndian.Uint64(header[8:])
	if indexOffset > uint64(math.MaxInt64) {
		return nil, fmt.Errorf("%w: index offset %d", sbon.ErrSizeOverflow, indexOffset)
	}
	if err := a.parseIndex(int64(indexOffset)); err != nil {
		return nil, err
	}
	a.log().Debug("archive opened", "files", len(a.index), "index_offset", indexOffset)
	return a, nil
}

// parseIndex reads the index block: the "INDEX" marker, the metadata map,
// and the path table.
func (a *Archive) parseIndex(offset int64) error {
	section := io.NewSectionReader(a.source, offset, a.source.Size()-offset)
	br := bufio.NewReader(section)

	var marker [5]byte
	if _, err := io.ReadFull(br, marker[:]); err != nil {
		return fmt.Errorf("sbasset: read index marker: %w", noEOF(err))
	}
	if string(marker[:]) != indexMagic {
		return fmt.Errorf("%w: %q", ErrInvalidIndex, marker[:])
	}

	sr := sbon.NewReader(br)

	rawMeta, err := sr.Map()
	if err != nil {
		return fmt.Errorf("sbasset: read metadata: %w", err)
	}
	a.meta = metadataFromMap(rawMeta)

	count, err := sr.Varuint()
	if err != nil {
		return fmt.Errorf("sbasset: read file count: %w", err)
	}

	a.index = make(map[string]Entry)
	var u64 [8]byte
	for i := uint64(0); i < count; i++ {
		path, err := sr.String()
		if err != nil {
			return fmt.Errorf("sbasset: read index entry %d: %w", i, err)
		}
		if _, err := io.ReadFull(br, u64[:]); err != nil {
			return fmt.Errorf("sbasset: read index entry %d: %w", i, noEOF(err))
		}
		off := binary.BigEndian.Uint64(u64[:])
		if _, err := io.ReadFull(br, u64[:]); err != nil {
			return fmt.Errorf("sbasset: read index entry %d: %w", i, noEOF(err))
		}
		length := binary.BigEndian.Uint64(u64[:])

		if _, dup := a.index[path]; dup {
			a.log().Debug("duplicate index path, keeping later entry", "path", path)
		}
		a.index[path] = Entry{Path: path, Offset: off, Size: length}
	}
	return nil
}

// Metadata returns the archive's metadata projection.
func (a *Archive) Metadata() Metadata {
	return a.meta
}

// Len returns the number of files in the archive.
func (a *Archive) Len() int {
	return len(a.index)
}

// Has reports whether the archive contains the given path. No I/O.
func (a *Archive) Has(path string) bool {
	_, ok := a.index[path]
	return ok
}

// Lookup returns the index entry for the given path. No I/O.
func (a *Archive) Lookup(path string) (Entry, bool) {
	e, ok := a.index[path]
	return e, ok
}

// Paths returns all archive paths, sorted. No payload I/O.
func (a *Archive) Paths() []string {
	paths := make([]string, 0, len(a.index))
	for p := range a.index {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Entries returns an iterator over all index entries, sorted by path.
// No payload I/O.
func (a *Archive) Entries() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for _, p := range a.Paths() {
			if !yield(a.index[p]) {
				return
			}
		}
	}
}

// Files returns an iterator extracting every file, sorted by path, one
// read per step. A file that fails to read yields (nil, err) and iteration
// continues with the next entry. The sequence is single-pass over live
// source reads; re-ranging re-reads.
func (a *Archive) Files() iter.Seq2[*File, error] {
	return a.files(a.Paths())
}

func (a *Archive) files(paths []string) iter.Seq2[*File, error] {
	return func(yield func(*File, error) bool) {
		for _, p := range paths {
			data, err := a.readEntry(a.index[p])
			if err != nil {
				if !yield(nil, err) {
					return
				}
				continue
			}
			if !yield(&File{Path: p, Data: data}, nil) {
				return
			}
		}
	}
}

// GetFile extracts a single file by its archive path. ok is false when the
// path is not in the index; absence is not an error.
func (a *Archive) GetFile(path string) (f *File, ok bool, err error) {
	entry, ok := a.index[path]
	if !ok {
		return nil, false, nil
	}
	data, err := a.readEntry(entry)
	if err != nil {
		return nil, true, err
	}
	return &File{Path: path, Data: data}, true, nil
}

// readEntry extracts one entry through its own bounded section reader.
// Entries that run past the end of the source fail here with a short-read
// error, not at open time.
func (a *Archive) readEntry(e Entry) ([]byte, error) {
	if a.maxFileSize > 0 && e.Size > a.maxFileSize {
		return nil, fmt.Errorf("read %s: %w (%d bytes, limit %d)", e.Path, ErrFileTooLarge, e.Size, a.maxFileSize)
	}
	if e.Offset > uint64(math.MaxInt64) || e.Size > uint64(math.MaxInt) {
		return nil, fmt.Errorf("read %s: %w", e.Path, sbon.ErrSizeOverflow)
	}

	buf := make([]byte, int(e.Size))
	section := io.NewSectionReader(a.source, int64(e.Offset), int64(e.Size))
	n, err := io.ReadFull(section, buf)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("read %s: short read (%d of %d bytes)", e.Path, n, e.Size)
		}
		return nil, fmt.Errorf("read %s: %w", e.Path, err)
	}
	return buf, nil
}

// noEOF maps io.EOF to io.ErrUnexpectedEOF for reads inside framing,
// where running out of bytes means truncation rather than a clean end.
func noEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// fileSource wraps *os.File to implement ByteSource.
// os.File has ReadAt but not Size, so the size is cached at construction.
type fileSource struct {
	file *os.File
	size int64
}

func newFileSource(f *os.File) (*fileSource, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat archive file: %w", err)
	}
	return &fileSource{file: f, size: info.Size()}, nil
}

// ReadAt implements io.ReaderAt.
func (fsrc *fileSource) ReadAt(p []byte, off int64) (int, error) {
	return fsrc.file.ReadAt(p, off)
}

// Size returns the total size of the file.
func (fsrc *fileSource) Size() int64 {
	return fsrc.size
}

var _ ByteSource = (*fileSource)(nil)

// ArchiveFile wraps an Archive with its underlying file handle.
// Close must be called to release the handle.
type ArchiveFile struct {
	*Archive
	file *os.File
}

// Close closes the underlying archive file.
func (af *ArchiveFile) Close() error {
	if af.file == nil {
		return nil
	}
	err := af.file.Close()
	af.file = nil
	return err
}

// Open opens an SBAsset6 archive from a file on disk.
// The returned ArchiveFile must be closed to release the file handle.
func Open(path string, opts ...Option) (*ArchiveFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	src, err := newFileSource(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	a, err := New(src, opts...)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &ArchiveFile{Archive: a, file: f}, nil
}
