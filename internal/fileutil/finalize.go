// Package fileutil provides shared file operation helpers.
package fileutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

const executableBits = 0o111

// TempContext holds state for an atomic file write operation.
type TempContext struct {
	IsExec  bool
	ModTime time.Time
	TmpFile *os.File
	TmpName string
}

// NewTempContext creates a temp file next to outPath for atomic writing.
// When src is non-empty its mode and modification time are recorded for the output.
// Caller must defer CleanupOnError.
func NewTempContext(src, outPath string) (*TempContext, error) {
	tc := &TempContext{}

	if src != "" {
		info, err := os.Stat(src)
		if err != nil {
			return nil, fmt.Errorf("getting file info for %q: %w", src, err)
		}

		tc.IsExec = info.Mode()&executableBits != 0
		tc.ModTime = info.ModTime()
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(outPath), ".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("creating temporary file: %w", err)
	}

	tc.TmpFile = tmpFile
	tc.TmpName = tmpFile.Name()

	return tc, nil
}

// CleanupOnError closes the temp file and removes it if the write failed.
func (tc *TempContext) CleanupOnError(errp *error) {
	tc.TmpFile.Close() //nolint:errcheck,gosec // best-effort cleanup

	if *errp != nil {
		os.Remove(tc.TmpName) //nolint:errcheck,gosec // best-effort cleanup
	}
}

// Commit sets the permissions, closes the temp file and renames it to outPath.
// The executable bit of the source is carried over.
func (tc *TempContext) Commit(outPath string, perm os.FileMode) error {
	if tc.IsExec {
		perm |= executableBits
	}

	if err := os.Chmod(tc.TmpName, perm); err != nil {
		return fmt.Errorf("setting file permissions: %w", err)
	}

	if err := tc.TmpFile.Sync(); err != nil {
		return fmt.Errorf("syncing temporary file: %w", err)
	}

	if err := tc.TmpFile.Close(); err != nil {
		return fmt.Errorf("closing temporary file: %w", err)
	}

	if err := os.Rename(tc.TmpName, outPath); err != nil {
		return fmt.Errorf("renaming output file: %w", err)
	}

	return nil
}

// WriteFile atomically replaces outPath with whatever write produces.
func WriteFile(outPath string, perm os.FileMode, write func(w io.Writer) error) (err error) {
	tc, err := NewTempContext("", outPath)
	if err != nil {
		return fmt.Errorf("preparing atomic write: %w", err)
	}

	defer tc.CleanupOnError(&err)

	if err = write(tc.TmpFile); err != nil {
		return err
	}

	return tc.Commit(outPath, perm)
}

// FinalizeOutput optionally preserves timestamps and returns the output file size.
func FinalizeOutput(outPath string, preserveTimestamps bool, modTime time.Time) (int64, error) {
	if preserveTimestamps && !modTime.IsZero() {
		if err := os.Chtimes(outPath, modTime, modTime); err != nil {
			return 0, fmt.Errorf("preserving timestamps: %w", err)
		}
	}

	outInfo, err := os.Stat(outPath)
	if err != nil {
		return 0, fmt.Errorf("stat output %q: %w", outPath, err)
	}

	return outInfo.Size(), nil
}
