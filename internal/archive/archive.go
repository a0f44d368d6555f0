// Package archive packs a directory tree into a single file and back.
//
// Three formats are supported: zip (Deflate), tar compressed with zstd and tar
// compressed with lz4. Uncompress recognizes the format from the file itself.
package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Format names an archive layout.
type Format string

const (
	// Zip is a zip archive with Deflate compression.
	Zip Format = "zip"
	// TarZstd is a tar stream compressed with zstd.
	TarZstd Format = "tar.zst"
	// TarLZ4 is a tar stream compressed with an lz4 frame.
	TarLZ4 Format = "tar.lz4"
)

var (
	// ErrUnknownFormat is returned for unsupported or unrecognized archives.
	ErrUnknownFormat = errors.New("unknown archive format")
	// ErrUnsafePath is returned for entries that would be written outside the target directory.
	ErrUnsafePath = errors.New("archive entry escapes target directory")
)

// Formats lists the supported formats, default first.
//
//nolint:gochecknoglobals
var Formats = []Format{Zip, TarZstd, TarLZ4}

// ParseFormat returns the Format named by s.
func ParseFormat(s string) (Format, error) {
	for _, format := range Formats {
		if string(format) == s {
			return format, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

//nolint:gochecknoglobals
var magics = map[Format][][]byte{
	Zip:     {[]byte("PK\x03\x04"), []byte("PK\x05\x06")},
	TarZstd: {{0x28, 0xb5, 0x2f, 0xfd}},
	TarLZ4:  {{0x04, 0x22, 0x4d, 0x18}},
}

// Archiver packs and unpacks directory trees.
type Archiver struct {
	// Format used by Compress. Empty means Zip.
	Format Format

	// Logger receives per-entry details. Nil discards.
	Logger *slog.Logger
}

func (a *Archiver) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}

	return a.Logger
}

// entry is one file or directory below the archived root.
type entry struct {
	path string
	name string
	info fs.FileInfo
}

// Compress writes every file and directory below srcDir into the archive dst.
// Entry names are relative to srcDir and slash-separated; srcDir itself is not stored.
func (a *Archiver) Compress(srcDir, dst string) (err error) {
	format := a.Format
	if format == "" {
		format = Zip
	}

	if format, err = ParseFormat(string(format)); err != nil {
		return err
	}

	entries, err := collect(srcDir)
	if err != nil {
		return err
	}

	f, err := os.Create(filepath.Clean(dst))
	if err != nil {
		return fmt.Errorf("creating archive: %w", err)
	}

	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing archive: %w", closeErr)
		}
	}()

	if format == Zip {
		err = writeZip(f, entries)
	} else {
		err = writeTar(f, format, entries)
	}

	if err != nil {
		return fmt.Errorf("writing %s archive: %w", format, err)
	}

	a.logger().Debug("archive written", "format", format, "entries", len(entries), "path", dst)

	return nil
}

// Uncompress extracts the archive src below dstDir, recreating directories,
// contents and modification times.
func (a *Archiver) Uncompress(src, dstDir string) error {
	format, err := Detect(src)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dstDir, 0o750); err != nil {
		return fmt.Errorf("creating target directory: %w", err)
	}

	if format == Zip {
		err = readZip(src, dstDir)
	} else {
		err = readTar(src, format, dstDir)
	}

	if err != nil {
		return fmt.Errorf("reading %s archive: %w", format, err)
	}

	a.logger().Debug("archive extracted", "format", format, "path", src, "target", dstDir)

	return nil
}

// Detect recognizes the archive format of the file at path by its leading bytes.
func Detect(path string) (Format, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	head := make([]byte, 4)
	if _, err := io.ReadFull(f, head); err != nil {
		return "", fmt.Errorf("%w: reading header: %w", ErrUnknownFormat, err)
	}

	for _, format := range Formats {
		for _, magic := range magics[format] {
			if bytes.HasPrefix(head, magic) {
				return format, nil
			}
		}
	}

	return "", fmt.Errorf("%w: header %x", ErrUnknownFormat, head)
}

// collect lists srcDir's descendants in lexical order. Anything that is neither a
// regular file nor a directory is left out.
func collect(srcDir string) ([]entry, error) {
	var entries []entry

	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if path == srcDir || (!d.IsDir() && !d.Type().IsRegular()) {
			return nil
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		name := filepath.ToSlash(rel)
		if d.IsDir() {
			name += "/"
		}

		entries = append(entries, entry{path: path, name: name, info: info})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %q: %w", srcDir, err)
	}

	return entries, nil
}

// target maps an entry name onto dstDir, refusing names that leave it.
func target(dstDir, name string) (string, error) {
	if name == "" || strings.HasPrefix(name, "/") || filepath.IsAbs(name) {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}

	path := filepath.Join(dstDir, filepath.FromSlash(name))

	rel, err := filepath.Rel(dstDir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}

	return path, nil
}

// writeFile creates path from r and stamps it with modTime.
func writeFile(path string, r io.Reader, modTime time.Time) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating parent directory: %w", err)
	}

	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating %q: %w", path, err)
	}

	if _, err := io.Copy(out, r); err != nil {
		out.Close()

		return fmt.Errorf("writing %q: %w", path, err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %q: %w", path, err)
	}

	if !modTime.IsZero() {
		if err := os.Chtimes(path, modTime, modTime); err != nil {
			return fmt.Errorf("setting times on %q: %w", path, err)
		}
	}

	return nil
}
