// Package logic wires the cipher, archive, embedding and manifest layers into the
// hide, extract, verify and capacity operations.
package logic

import (
	"errors"
	"log/slog"
	"time"

	"github.com/idelchi/pixvault/internal/config"
	"github.com/idelchi/pixvault/internal/encryption"
	"github.com/idelchi/pixvault/internal/manifest"
	"github.com/idelchi/pixvault/internal/stego"
)

// ErrCarriersRejected is returned by Verify when at least one manifest entry fails validation.
var ErrCarriersRejected = errors.New("carrier images rejected")

const workspacePrefix = "pixvault"

// Summary describes what one operation did.
type Summary struct {
	// Files encrypted on hide or decrypted on extract
	Files int

	// Files left out by the include/exclude patterns
	Skipped int

	// Payload is the size of the encrypted archive in bytes
	Payload int64

	// Carriers written on hide, or accepted on extract and verify
	Carriers int

	// Rejected manifest entries
	Rejected int

	// Duration of the operation
	Duration time.Duration
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}

	return logger
}

// cipherSpec maps the configured names onto a cipher spec and derivation scheme.
// Unset names fall back to AES/CBC with PBKDF2.
func cipherSpec(cfg *config.Config) (encryption.Spec, encryption.Scheme) {
	spec := encryption.DefaultSpec

	if cfg.Algorithm != "" {
		spec.Algorithm = encryption.Algorithm(cfg.Algorithm)
	}

	if cfg.Mode != "" {
		spec.Mode = encryption.Mode(cfg.Mode)
	}

	scheme := encryption.SchemePBKDF2
	if cfg.KDF != "" {
		scheme = encryption.Scheme(cfg.KDF)
	}

	return spec, scheme
}

func newTree(cfg *config.Config, logger *slog.Logger) *encryption.Tree {
	spec, scheme := cipherSpec(cfg)

	return &encryption.Tree{
		Password:           cfg.Password,
		Spec:               spec,
		Scheme:             scheme,
		Parallel:           cfg.Parallel,
		PreserveTimestamps: cfg.PreserveTimestamps,
		Logger:             logger,
	}
}

func manifestOptions(cfg *config.Config, logger *slog.Logger) manifest.Options {
	opts := manifest.Options{Parallel: cfg.Parallel, Logger: logger}

	if cfg.Blake3 {
		opts.Extra = append(opts.Extra, manifest.BLAKE3)
	}

	return opts
}

func toCarriers(placements []stego.Placement) []manifest.Carrier {
	carriers := make([]manifest.Carrier, len(placements))
	for i, p := range placements {
		carriers[i] = manifest.Carrier{Name: p.Name, HiddenBytes: p.ByteCount}
	}

	return carriers
}

func toPlacements(carriers []manifest.Carrier) []stego.Placement {
	placements := make([]stego.Placement, len(carriers))
	for i, c := range carriers {
		placements[i] = stego.Placement{Name: c.Name, ByteCount: c.HiddenBytes}
	}

	return placements
}
