package archive

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zip"
)

func writeZip(w io.Writer, entries []entry) error {
	zw := zip.NewWriter(w)

	for _, e := range entries {
		header, err := zip.FileInfoHeader(e.info)
		if err != nil {
			return fmt.Errorf("building header for %q: %w", e.name, err)
		}

		header.Name = e.name
		header.Method = zip.Deflate

		if e.info.IsDir() {
			header.Method = zip.Store
		}

		dst, err := zw.CreateHeader(header)
		if err != nil {
			return fmt.Errorf("adding %q: %w", e.name, err)
		}

		if e.info.IsDir() {
			continue
		}

		if err := copyFrom(dst, e.path); err != nil {
			return err
		}
	}

	return zw.Close()
}

func readZip(src, dstDir string) error {
	zr, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("opening zip: %w", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		path, err := target(dstDir, f.Name)
		if err != nil {
			return err
		}

		if strings.HasSuffix(f.Name, "/") {
			if err := os.MkdirAll(path, 0o750); err != nil {
				return fmt.Errorf("creating %q: %w", path, err)
			}

			continue
		}

		if !f.Mode().IsRegular() {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("opening %q: %w", f.Name, err)
		}

		err = writeFile(path, rc, f.Modified)
		rc.Close()

		if err != nil {
			return err
		}
	}

	return nil
}

// copyFrom streams the file at path into w.
func copyFrom(w io.Writer, path string) error {
	f, err := os.Open(path) //nolint:gosec // path comes from walking the archived tree
	if err != nil {
		return fmt.Errorf("opening %q: %w", path, err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("copying %q: %w", path, err)
	}

	return nil
}
