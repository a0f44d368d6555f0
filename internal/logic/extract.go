package logic

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/idelchi/pixvault/internal/archive"
	"github.com/idelchi/pixvault/internal/config"
	"github.com/idelchi/pixvault/internal/encryption"
	"github.com/idelchi/pixvault/internal/fileutil"
	"github.com/idelchi/pixvault/internal/manifest"
	"github.com/idelchi/pixvault/internal/stego"
)

// Extract validates the carriers in cfg.Images against the manifest at cfg.Manifest,
// reassembles the payload from the accepted ones in manifest order and restores the
// decrypted input below cfg.Output. Rejected carriers are logged and left out.
func Extract(cfg *config.Config, logger *slog.Logger) (Summary, error) {
	start := time.Now()
	logger = orDiscard(logger)

	var summary Summary

	if cfg.Password == "" {
		return summary, encryption.ErrEmptyPassword
	}

	report, err := validate(cfg, logger, &summary)
	if err != nil {
		return summary, err
	}

	ws, err := fileutil.NewWorkspace(workspacePrefix, logger)
	if err != nil {
		return summary, err
	}
	defer ws.Close()

	payload := ws.Path("payload")

	summary.Payload, err = reassemble(payload, cfg.Images, report.Accepted, logger)
	if err != nil {
		return summary, err
	}

	sealed := ws.Path("sealed")

	if err := (&archive.Archiver{Logger: logger}).Uncompress(payload, sealed); err != nil {
		return summary, fmt.Errorf("unpacking payload: %w", err)
	}

	entries, err := os.ReadDir(sealed)
	if err != nil {
		return summary, fmt.Errorf("reading unpacked payload: %w", err)
	}

	tree := newTree(cfg, logger)

	for _, entry := range entries {
		crypted, err := tree.Crypt(encryption.Decrypt, filepath.Join(sealed, entry.Name()), cfg.Output)
		summary.Files += crypted.Files

		if err != nil {
			return summary, fmt.Errorf("decrypting %q: %w", entry.Name(), err)
		}
	}

	summary.Duration = time.Since(start)

	logger.Info("input restored",
		"output", cfg.Output,
		"files", summary.Files,
		"carriers", summary.Carriers,
		"payload", humanize.IBytes(uint64(summary.Payload)), //nolint:gosec // sizes are non-negative
	)

	if cfg.Stats {
		printStats(os.Stderr, config.Extract, summary)
	}

	return summary, nil
}

// Verify checks every carrier in cfg.Images against the manifest at cfg.Manifest
// without extracting anything. It fails unless all entries are accepted.
func Verify(cfg *config.Config, logger *slog.Logger) (Summary, error) {
	start := time.Now()
	logger = orDiscard(logger)

	var summary Summary

	report, err := validate(cfg, logger, &summary)
	if err != nil {
		return summary, err
	}

	for _, carrier := range report.Accepted {
		summary.Payload += int64(carrier.HiddenBytes)

		logger.Info("carrier accepted", "name", carrier.Name, "bytes", carrier.HiddenBytes)
	}

	summary.Duration = time.Since(start)

	if cfg.Stats {
		printStats(os.Stderr, config.Verify, summary)
	}

	if summary.Rejected > 0 {
		return summary, fmt.Errorf("%w: %d of %d", ErrCarriersRejected, summary.Rejected, summary.Rejected+summary.Carriers)
	}

	return summary, nil
}

// validate loads the manifest and checks it against the image directory. Each rejected
// entry is logged; an error is returned only when nothing can be trusted.
func validate(cfg *config.Config, logger *slog.Logger, summary *Summary) (*manifest.Report, error) {
	m, err := manifest.Load(cfg.Manifest)
	if err != nil {
		return nil, err
	}

	report, err := manifest.Validate(m, cfg.Images, manifestOptions(cfg, logger))

	summary.Carriers = len(report.Accepted)
	summary.Rejected = len(report.Rejected)

	if err != nil {
		return nil, fmt.Errorf("validating carriers: %w", err)
	}

	return report, nil
}

// reassemble writes the payload held by carriers, in order, to path.
func reassemble(path, dir string, carriers []manifest.Carrier, logger *slog.Logger) (int64, error) {
	var written int64

	err := fileutil.WriteFile(path, 0o600, func(w io.Writer) error {
		n, err := (&stego.Embedder{Logger: logger}).ExtractStream(toPlacements(carriers), &stego.DirStore{Dir: dir}, w)
		written = n

		return err
	})
	if err != nil {
		return written, fmt.Errorf("reassembling payload: %w", err)
	}

	return written, nil
}
