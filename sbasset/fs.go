package sbasset

import (
	"io"
	"io/fs"
	"math"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/starfall/sbon"
)

// Archive paths are "/"-rooted ("/items/sword.item"); fs.ValidPath names
// are not. The fs.FS view accepts the rootless form and maps it back onto
// the index. Directories are synthesized from path prefixes; the archive
// stores none.

// fsName strips the leading slashes from an archive path.
func fsName(archivePath string) string {
	return strings.TrimLeft(archivePath, "/")
}

// lookupName resolves an fs.ValidPath name against the index, preferring
// the "/"-rooted spelling real archives use.
func (a *Archive) lookupName(name string) (Entry, bool) {
	if e, ok := a.index["/"+name]; ok {
		return e, true
	}
	e, ok := a.index[name]
	return e, ok
}

// isDir reports whether name is a synthetic directory: the root, or a
// proper prefix of at least one indexed path.
func (a *Archive) isDir(name string) bool {
	if name == "." {
		return true
	}
	prefix := name + "/"
	for p := range a.index {
		if strings.HasPrefix(fsName(p), prefix) {
			return true
		}
	}
	return false
}

// Open implements fs.FS.
//
// Open returns an fs.File reading the named file through its own bounded
// cursor; concurrent opens do not share state. Directory names yield a
// directory file whose entries are synthesized from the index.
func (a *Archive) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	if e, ok := a.lookupName(name); ok {
		if e.Offset > uint64(math.MaxInt64) || e.Size > uint64(math.MaxInt64) {
			return nil, &fs.PathError{Op: "open", Path: name, Err: sbon.ErrSizeOverflow}
		}
		return &openFile{
			info:    fileInfo{name: path.Base(name), size: int64(e.Size)},
			section: io.NewSectionReader(a.source, int64(e.Offset), int64(e.Size)),
		}, nil
	}
	if a.isDir(name) {
		return &openDir{a: a, name: name, info: fileInfo{name: path.Base(name), dir: true}}, nil
	}
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}

// Stat implements fs.StatFS without reading file content.
func (a *Archive) Stat(name string) (fs.FileInfo, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrInvalid}
	}
	if e, ok := a.lookupName(name); ok {
		if e.Size > uint64(math.MaxInt64) {
			return nil, &fs.PathError{Op: "stat", Path: name, Err: sbon.ErrSizeOverflow}
		}
		return fileInfo{name: path.Base(name), size: int64(e.Size)}, nil
	}
	if a.isDir(name) {
		return fileInfo{name: path.Base(name), dir: true}, nil
	}
	return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
}

// ReadFile implements fs.ReadFileFS.
//
// An absent path fails with fs.ErrNotExist, which stays distinguishable
// from a read failure on a path that is present.
func (a *Archive) ReadFile(name string) ([]byte, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: fs.ErrInvalid}
	}
	e, ok := a.lookupName(name)
	if !ok {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: fs.ErrNotExist}
	}
	data, err := a.readEntry(e)
	if err != nil {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: err}
	}
	return data, nil
}

// ReadDir implements fs.ReadDirFS.
//
// ReadDir returns entries for the named directory, sorted by name.
// Directories are synthesized from file paths.
func (a *Archive) ReadDir(name string) ([]fs.DirEntry, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrInvalid}
	}
	entries := a.dirEntries(name)
	if entries == nil && name != "." {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrNotExist}
	}
	return entries, nil
}

// dirEntries synthesizes the immediate children of a directory. It
// returns nil when name is neither the root nor a prefix of any entry.
func (a *Archive) dirEntries(name string) []fs.DirEntry {
	prefix := ""
	if name != "." {
		prefix = name + "/"
	}
	seen := make(map[string]fs.DirEntry)
	for p, e := range a.index {
		fp := fsName(p)
		if !strings.HasPrefix(fp, prefix) {
			continue
		}
		rest := fp[len(prefix):]
		if rest == "" {
			continue
		}
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			dir := rest[:i]
			if _, ok := seen[dir]; !ok {
				seen[dir] = dirEntry{fileInfo{name: dir, dir: true}}
			}
		} else {
			size := int64(0)
			if e.Size <= uint64(math.MaxInt64) {
				size = int64(e.Size)
			}
			seen[rest] = dirEntry{fileInfo{name: rest, size: size}}
		}
	}
	if len(seen) == 0 && name != "." {
		return nil
	}
	entries := make([]fs.DirEntry, 0, len(seen))
	for _, e := range seen {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries
}

// fileInfo is the fs.FileInfo for archive files and synthetic directories.
// Archives carry no modes or timestamps, so files are read-only and
// timestamps are zero.
type fileInfo struct {
	name string
	size int64
	dir  bool
}

func (fi fileInfo) Name() string { return fi.name }
func (fi fileInfo) Size() int64  { return fi.size }
func (fi fileInfo) Mode() fs.FileMode {
	if fi.dir {
		return fs.ModeDir | 0o555
	}
	return 0o444
}
func (fi fileInfo) ModTime() time.Time { return time.Time{} }
func (fi fileInfo) IsDir() bool        { return fi.dir }
func (fi fileInfo) Sys() any           { return nil }

// dirEntry is the fs.DirEntry for synthesized listings.
type dirEntry struct {
	info fileInfo
}

func (d dirEntry) Name() string               { return d.info.name }
func (d dirEntry) IsDir() bool                { return d.info.dir }
func (d dirEntry) Type() fs.FileMode          { return d.info.Mode().Type() }
func (d dirEntry) Info() (fs.FileInfo, error) { return d.info, nil }

// openFile reads one archive file through a dedicated section reader.
type openFile struct {
	info    fileInfo
	section *io.SectionReader
}

func (f *openFile) Stat() (fs.FileInfo, error) { return f.info, nil }
func (f *openFile) Read(p []byte) (int, error) { return f.section.Read(p) }
func (f *openFile) ReadAt(p []byte, off int64) (int, error) {
	return f.section.ReadAt(p, off)
}
func (f *openFile) Seek(offset int64, whence int) (int64, error) {
	return f.section.Seek(offset, whence)
}
func (f *openFile) Close() error { return nil }

// openDir is an open synthetic directory.
type openDir struct {
	a       *Archive
	name    string
	info    fileInfo
	entries []fs.DirEntry
	pos     int
}

func (d *openDir) Stat() (fs.FileInfo, error) { return d.info, nil }
func (d *openDir) Close() error               { return nil }

func (d *openDir) Read([]byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.name, Err: fs.ErrInvalid}
}

// ReadDir implements fs.ReadDirFile.
func (d *openDir) ReadDir(n int) ([]fs.DirEntry, error) {
	if d.entries == nil {
		d.entries = d.a.dirEntries(d.name)
		if d.entries == nil {
			d.entries = []fs.DirEntry{}
		}
	}
	remaining := d.entries[d.pos:]
	if n <= 0 {
		d.pos = len(d.entries)
		return remaining, nil
	}
	if len(remaining) == 0 {
		return nil, io.EOF
	}
	if n > len(remaining) {
		n = len(remaining)
	}
	d.pos += n
	return remaining[:n], nil
}
