// Package manifest records, in reconstruction order, every carrier image of a hidden
// payload together with its size, checksums and the number of payload bytes it holds.
//
// A manifest is the only artifact needed besides the images to recover a payload, and
// its checksums are what keeps tampered or substituted images from being trusted.
package manifest

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"
)

// Version is written into every new manifest.
const Version = "1.0"

// MaxHiddenBytes bounds the payload of one entry: its bit count must fit a signed 32-bit integer.
const MaxHiddenBytes = (1<<31 - 1) / 8

// Manifest is the ordered list of carriers of one payload.
type Manifest struct {
	Version string  `json:"version" yaml:"version"`
	Entries []Entry `json:"entries" yaml:"entries"`
}

// Entry describes one carrier image.
type Entry struct {
	// Name is the carrier file name, without directory
	Name string `json:"name" yaml:"name"`

	// Size is the carrier file size in bytes
	Size int64 `json:"size" yaml:"size"`

	// HiddenBytes is the number of payload bytes stored in the carrier
	HiddenBytes int `json:"hidden_bytes" yaml:"hidden_bytes"`

	// Checksums of the carrier file, md5 and adler32 always among them
	Checksums []Checksum `json:"checksums" yaml:"checksums"`
}

// Checksum is one named digest of a carrier file.
type Checksum struct {
	Algorithm Algorithm `json:"algorithm" yaml:"algorithm"`
	Value     string    `json:"value" yaml:"value"`
}

// Lookup returns the recorded value for alg.
func (e Entry) Lookup(alg Algorithm) (string, bool) {
	for _, c := range e.Checksums {
		if c.Algorithm == alg {
			return c.Value, true
		}
	}

	return "", false
}

// Carrier names a carrier image and the payload bytes it holds, in stream order.
type Carrier struct {
	Name        string
	HiddenBytes int
}

// Options tunes Build and Validate.
type Options struct {
	// Extra lists checksums recorded in addition to md5 and adler32
	Extra []Algorithm

	// Parallel bounds how many files are hashed at once. Zero means one per CPU.
	Parallel int

	// Logger receives per-entry details. Nil discards.
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}

	return o.Logger
}

func (o Options) parallel() int {
	if o.Parallel <= 0 {
		return runtime.NumCPU()
	}

	return o.Parallel
}

// Build hashes every carrier in dir and returns a manifest listing them in the given order.
func Build(dir string, carriers []Carrier, opts Options) (*Manifest, error) {
	algs := slices.Clone(Required)

	for _, alg := range opts.Extra {
		if _, ok := hashers[alg]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, alg)
		}

		if !slices.Contains(algs, alg) {
			algs = append(algs, alg)
		}
	}

	entries := make([]Entry, len(carriers))

	group := errgroup.Group{}
	group.SetLimit(opts.parallel())

	for i, carrier := range carriers {
		group.Go(func() error {
			if err := checkName(carrier.Name); err != nil {
				return err
			}

			size, sums, err := Sum(filepath.Join(dir, carrier.Name), algs)
			if err != nil {
				return fmt.Errorf("hashing %q: %w", carrier.Name, err)
			}

			entries[i] = Entry{Name: carrier.Name, Size: size, HiddenBytes: carrier.HiddenBytes, Checksums: sums}

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("building manifest: %w", err)
	}

	opts.logger().Debug("manifest built", "entries", len(entries), "checksums", algs)

	return &Manifest{Version: Version, Entries: entries}, nil
}

// checkName rejects names that point outside the carrier directory.
func checkName(name string) error {
	if name == "" || name == "." || name == ".." || name != filepath.Base(name) || filepath.IsAbs(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	return nil
}
