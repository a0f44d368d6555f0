package archive

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// compressor wraps a tar stream in a compression layer.
type compressor struct {
	writer func(io.Writer) (io.WriteCloser, error)
	reader func(io.Reader) (io.ReadCloser, error)
}

//nolint:gochecknoglobals
var compressors = map[Format]compressor{
	TarZstd: {
		writer: func(w io.Writer) (io.WriteCloser, error) {
			return zstd.NewWriter(w)
		},
		reader: func(r io.Reader) (io.ReadCloser, error) {
			dec, err := zstd.NewReader(r)
			if err != nil {
				return nil, err
			}

			return dec.IOReadCloser(), nil
		},
	},
	TarLZ4: {
		writer: func(w io.Writer) (io.WriteCloser, error) {
			return lz4.NewWriter(w), nil
		},
		reader: func(r io.Reader) (io.ReadCloser, error) {
			return io.NopCloser(lz4.NewReader(r)), nil
		},
	},
}

func writeTar(w io.Writer, format Format, entries []entry) error {
	cw, err := compressors[format].writer(w)
	if err != nil {
		return fmt.Errorf("creating %s writer: %w", format, err)
	}

	tw := tar.NewWriter(cw)

	for _, e := range entries {
		header, err := tar.FileInfoHeader(e.info, "")
		if err != nil {
			return fmt.Errorf("building header for %q: %w", e.name, err)
		}

		header.Name = e.name
		header.Format = tar.FormatPAX

		if err := tw.WriteHeader(header); err != nil {
			return fmt.Errorf("adding %q: %w", e.name, err)
		}

		if e.info.IsDir() {
			continue
		}

		if err := copyFrom(tw, e.path); err != nil {
			return err
		}
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("closing tar stream: %w", err)
	}

	return cw.Close()
}

func readTar(src string, format Format, dstDir string) error {
	f, err := os.Open(filepath.Clean(src))
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	cr, err := compressors[format].reader(f)
	if err != nil {
		return fmt.Errorf("creating %s reader: %w", format, err)
	}
	defer cr.Close()

	tr := tar.NewReader(cr)

	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("reading tar header: %w", err)
		}

		path, err := target(dstDir, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(path, 0o750); err != nil {
				return fmt.Errorf("creating %q: %w", path, err)
			}
		case tar.TypeReg:
			if err := writeFile(path, tr, header.ModTime); err != nil {
				return err
			}
		}
	}
}
