package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// Rejection is an entry that failed validation and why.
type Rejection struct {
	Entry Entry
	Err   error
}

// Report is the outcome of Validate.
type Report struct {
	// Accepted carriers in manifest order
	Accepted []Carrier

	// Rejected entries in manifest order
	Rejected []Rejection
}

// Validate checks every entry against the files in dir. An entry is accepted only
// when its file exists and matches the recorded size and every recorded checksum.
// A failing entry is reported and skipped while the others are still checked;
// ErrNoValidEntries is returned, together with the report, when none passes.
func Validate(m *Manifest, dir string, opts Options) (*Report, error) {
	if m == nil || len(m.Entries) == 0 {
		return &Report{}, fmt.Errorf("%w: manifest is empty", ErrNoValidEntries)
	}

	logger := opts.logger()
	failures := make([]error, len(m.Entries))

	group := errgroup.Group{}
	group.SetLimit(opts.parallel())

	for i, entry := range m.Entries {
		group.Go(func() error {
			failures[i] = checkEntry(entry, dir)

			return nil
		})
	}

	_ = group.Wait() //nolint:errcheck // per-entry failures are collected above

	report := &Report{}

	for i, entry := range m.Entries {
		if err := failures[i]; err != nil {
			report.Rejected = append(report.Rejected, Rejection{Entry: entry, Err: err})

			logger.Error("rejecting manifest entry", "index", i, "name", entry.Name, "error", err)

			continue
		}

		report.Accepted = append(report.Accepted, Carrier{Name: entry.Name, HiddenBytes: entry.HiddenBytes})
	}

	if len(report.Accepted) == 0 {
		causes := make([]error, len(report.Rejected))
		for i, r := range report.Rejected {
			causes[i] = r.Err
		}

		return report, fmt.Errorf("%w: %w", ErrNoValidEntries, errors.Join(causes...))
	}

	logger.Debug("manifest validated", "accepted", len(report.Accepted), "rejected", len(report.Rejected))

	return report, nil
}

// checkEntry recomputes size and checksums of one entry's file.
func checkEntry(entry Entry, dir string) error {
	if err := checkName(entry.Name); err != nil {
		return err
	}

	if entry.HiddenBytes <= 0 || entry.HiddenBytes > MaxHiddenBytes {
		return fmt.Errorf("%w: %q hides %d bytes", ErrInvalidEntry, entry.Name, entry.HiddenBytes)
	}

	for _, alg := range Required {
		if _, ok := entry.Lookup(alg); !ok {
			return fmt.Errorf("%w: %q has no %s", ErrMissingChecksum, entry.Name, alg)
		}
	}

	algs := make([]Algorithm, len(entry.Checksums))
	for i, c := range entry.Checksums {
		if _, ok := hashers[c.Algorithm]; !ok {
			return fmt.Errorf("%w: %q in %q", ErrUnknownAlgorithm, c.Algorithm, entry.Name)
		}

		algs[i] = c.Algorithm
	}

	path := filepath.Join(dir, entry.Name)

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("locating %q: %w", entry.Name, err)
	}

	if info.Size() != entry.Size {
		return fmt.Errorf("%w: %q is %d bytes, recorded %d", ErrSizeMismatch, entry.Name, info.Size(), entry.Size)
	}

	_, sums, err := Sum(path, algs)
	if err != nil {
		return fmt.Errorf("hashing %q: %w", entry.Name, err)
	}

	for i, sum := range sums {
		if sum.Value != entry.Checksums[i].Value {
			return fmt.Errorf("%w: %s of %q is %s, recorded %s",
				ErrChecksumMismatch, sum.Algorithm, entry.Name, sum.Value, entry.Checksums[i].Value)
		}
	}

	return nil
}
