package sbasset

import (
	"errors"
	"fmt"
	"iter"

	"github.com/gobwas/glob"
)

// ErrBadPattern is returned when a glob pattern fails to compile. It is
// distinct from format and I/O errors so callers can report user input
// mistakes separately.
var ErrBadPattern = errors.New("sbasset: invalid glob pattern")

// compileGlob compiles a pattern with "/" as the separator, so "*" stays
// within one path segment and "**" crosses segments.
func compileGlob(pattern string) (glob.Glob, error) {
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrBadPattern, pattern, err)
	}
	return g, nil
}

// GlobPaths returns the sorted archive paths matching the pattern.
// No payload I/O.
func (a *Archive) GlobPaths(pattern string) ([]string, error) {
	g, err := compileGlob(pattern)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, p := range a.Paths() {
		if g.Match(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

// GlobFiles returns an iterator extracting every file whose path matches
// the pattern, in sorted path order. Pattern compilation failure is
// reported up front; per-file read errors surface through the iterator as
// in [Archive.Files].
func (a *Archive) GlobFiles(pattern string) (iter.Seq2[*File, error], error) {
	paths, err := a.GlobPaths(pattern)
	if err != nil {
		return nil, err
	}
	return a.files(paths), nil
}
