package manifest

import "errors"

var (
	// ErrNoValidEntries is returned when not a single entry survives validation.
	ErrNoValidEntries = errors.New("no valid manifest entries")
	// ErrChecksumMismatch is returned when a carrier does not hash to its recorded value.
	ErrChecksumMismatch = errors.New("checksum mismatch")
	// ErrSizeMismatch is returned when a carrier size differs from its recorded size.
	ErrSizeMismatch = errors.New("size mismatch")
	// ErrMissingChecksum is returned for entries lacking a required checksum.
	ErrMissingChecksum = errors.New("missing checksum")
	// ErrUnknownAlgorithm is returned for checksum names this build cannot compute.
	ErrUnknownAlgorithm = errors.New("unknown checksum algorithm")
	// ErrInvalidEntry is returned for entries with an impossible hidden byte count.
	ErrInvalidEntry = errors.New("invalid manifest entry")
	// ErrInvalidName is returned for entry names that are not plain file names.
	ErrInvalidName = errors.New("invalid file name")
	// ErrUnknownVersion is returned when loading a manifest written by an unknown format version.
	ErrUnknownVersion = errors.New("unknown manifest version")
)
