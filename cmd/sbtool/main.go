// sbtool inspects and extracts Starbound data files.
//
// It understands both on-disk formats: SBAsset6 archives (.pak) and
// SBVJ01 versioned documents (player files, world metadata). The file
// kind is sniffed from the leading magic bytes, so commands that accept
// either format need no type flag.
//
// Subcommands:
//
//	info     print archive metadata and file counts
//	list     list archive paths, optionally filtered by glob
//	extract  write archive files out to a directory
//	json     convert a versioned document or archive metadata to JSON
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/starfall/sbon/sbasset"
	"github.com/starfall/sbon/sbvj"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		fmt.Fprintf(os.Stderr, "sbtool: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		usage()
		return nil
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "info":
		return runInfo(rest)
	case "list":
		return runList(rest)
	case "extract":
		return runExtract(rest)
	case "json":
		return runJSON(rest)
	case "help", "-h", "--help":
		usage()
		return nil
	default:
		return fmt.Errorf("unknown command %q (run \"sbtool help\")", cmd)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: sbtool <command> [flags] <file>

commands:
  info     <archive.pak>   print archive metadata and file counts
  list     <archive.pak>   list archive paths (--glob to filter)
  extract  <archive.pak>   extract files (-o dir, --glob, --workers)
  json     <file>          print a versioned document or archive metadata as JSON`)
}

// newFlagSet returns a flag set carrying the shared --verbose flag.
func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.BoolP("verbose", "v", false, "enable debug logging")
	return fs
}

// newLogger builds the command logger after flags are parsed.
func newLogger(fs *pflag.FlagSet) *slog.Logger {
	level := slog.LevelWarn
	if verbose, _ := fs.GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// singleArg extracts the one positional argument every subcommand takes.
func singleArg(fs *pflag.FlagSet, what string) (string, error) {
	if fs.NArg() != 1 {
		return "", fmt.Errorf("expected exactly one %s argument", what)
	}
	return fs.Arg(0), nil
}

func openArchive(path string, logger *slog.Logger) (*sbasset.ArchiveFile, error) {
	return sbasset.Open(path, sbasset.WithLogger(logger))
}

func runInfo(args []string) error {
	fs := newFlagSet("info")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := singleArg(fs, "archive")
	if err != nil {
		return err
	}
	logger := newLogger(fs)

	a, err := openArchive(path, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	meta := a.Metadata()
	rows := []struct{ label, value string }{
		{"name", meta.InternalName},
		{"friendly name", meta.FriendlyName},
		{"author", meta.Author},
		{"version", meta.Version},
		{"description", meta.Description},
		{"steam id", meta.SteamID},
		{"link", meta.Link},
		{"tags", meta.Tags},
		{"includes", strings.Join(meta.Includes, ", ")},
		{"requires", strings.Join(meta.Requires, ", ")},
	}
	for _, row := range rows {
		if row.value != "" {
			fmt.Printf("%-14s %s\n", row.label+":", row.value)
		}
	}
	fmt.Printf("%-14s %d\n", "files:", a.Len())
	return nil
}

func runList(args []string) error {
	fs := newFlagSet("list")
	pattern := fs.String("glob", "", "only list paths matching this pattern")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := singleArg(fs, "archive")
	if err != nil {
		return err
	}
	logger := newLogger(fs)

	a, err := openArchive(path, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	paths := a.Paths()
	if *pattern != "" {
		if paths, err = a.GlobPaths(*pattern); err != nil {
			return err
		}
	}
	for _, p := range paths {
		fmt.Println(p)
	}
	return nil
}

func runExtract(args []string) error {
	fs := newFlagSet("extract")
	pattern := fs.String("glob", "", "only extract paths matching this pattern")
	outDir := fs.StringP("output", "o", ".", "directory to extract into")
	workers := fs.Int("workers", runtime.GOMAXPROCS(0), "concurrent extraction workers")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := singleArg(fs, "archive")
	if err != nil {
		return err
	}
	logger := newLogger(fs)

	a, err := openArchive(path, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	paths := a.Paths()
	if *pattern != "" {
		if paths, err = a.GlobPaths(*pattern); err != nil {
			return err
		}
	}

	// Entries are independent reads over one io.ReaderAt, so extraction
	// parallelizes without shared cursor state.
	var g errgroup.Group
	g.SetLimit(max(*workers, 1))
	for _, p := range paths {
		g.Go(func() error {
			f, ok, err := a.GetFile(p)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			dest := filepath.Join(*outDir, filepath.FromSlash(strings.TrimPrefix(p, "/")))
			if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(dest, f.Data, 0o644); err != nil {
				return err
			}
			logger.Debug("extracted", "path", p, "bytes", len(f.Data))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	fmt.Printf("extracted %d files to %s\n", len(paths), *outDir)
	return nil
}

func runJSON(args []string) error {
	fs := newFlagSet("json")
	indent := fs.Bool("indent", true, "pretty-print the output")
	outPath := fs.StringP("output", "o", "", "write to this file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := singleArg(fs, "file")
	if err != nil {
		return err
	}
	logger := newLogger(fs)

	kind, err := sniff(path)
	if err != nil {
		return err
	}

	var value any
	switch kind {
	case sbvj.Magic:
		doc, err := sbvj.Open(path)
		if err != nil {
			return err
		}
		out := map[string]any{"name": doc.Name, "data": doc.Data}
		if doc.Version != nil {
			out["version"] = *doc.Version
		}
		value = out
	case "SBAsset6":
		a, err := openArchive(path, logger)
		if err != nil {
			return err
		}
		defer a.Close()
		value = map[string]any{
			"metadata": a.Metadata(),
			"files":    a.Len(),
		}
	default:
		return fmt.Errorf("%s: unrecognized format (magic %q)", path, kind)
	}

	var out io.Writer = os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	enc := json.NewEncoder(out)
	if *indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(value)
}

// sniff reads enough leading bytes to identify the file format.
func sniff(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	magic := make([]byte, 8)
	n, err := io.ReadFull(f, magic)
	if err != nil && err != io.ErrUnexpectedEOF {
		return "", err
	}
	head := string(magic[:n])
	if strings.HasPrefix(head, sbvj.Magic) {
		return sbvj.Magic, nil
	}
	return head, nil
}
