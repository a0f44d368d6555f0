package logic

import (
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/idelchi/pixvault/internal/archive"
	"github.com/idelchi/pixvault/internal/config"
	"github.com/idelchi/pixvault/internal/encryption"
	"github.com/idelchi/pixvault/internal/fileutil"
	"github.com/idelchi/pixvault/internal/filter"
	"github.com/idelchi/pixvault/internal/manifest"
	"github.com/idelchi/pixvault/internal/stego"
)

// Hide encrypts cfg.Input file by file, packs the result into one archive and spreads it
// over as many carriers derived from cfg.Template as needed. The carriers are written to
// cfg.Images and described by the manifest written to cfg.Manifest. When a later step
// fails, the carriers written so far are removed again.
func Hide(cfg *config.Config, logger *slog.Logger) (summary Summary, err error) {
	start := time.Now()
	logger = orDiscard(logger)

	if cfg.Password == "" {
		return summary, encryption.ErrEmptyPassword
	}

	if _, err := os.Stat(cfg.Input); err != nil {
		return summary, fmt.Errorf("checking input: %w", err)
	}

	template, format, err := stego.LoadImage(cfg.Template)
	if err != nil {
		return summary, fmt.Errorf("loading template: %w", err)
	}

	logger.Debug("template loaded", "path", cfg.Template, "format", format, "bounds", template.Bounds())

	selector, err := filter.Load(cfg.Include, cfg.Exclude, cfg.IncludeFrom, cfg.ExcludeFrom)
	if err != nil {
		return summary, err
	}

	ws, err := fileutil.NewWorkspace(workspacePrefix, logger)
	if err != nil {
		return summary, err
	}
	defer ws.Close()

	sealed, err := ws.Mkdir("sealed")
	if err != nil {
		return summary, err
	}

	tree := newTree(cfg, logger)

	if selector != nil {
		logger.Debug("selecting input files", "filter", selector)

		tree.Selector = selector

		checkPatterns(cfg, logger)
	}

	crypted, err := tree.Crypt(encryption.Encrypt, cfg.Input, sealed)
	if err != nil {
		return summary, fmt.Errorf("encrypting input: %w", err)
	}

	summary.Files, summary.Skipped = crypted.Files, crypted.Skipped

	payload := ws.Path("payload")

	archiver := &archive.Archiver{Format: archive.Format(cfg.Archive), Logger: logger}
	if err := archiver.Compress(sealed, payload); err != nil {
		return summary, fmt.Errorf("packing encrypted input: %w", err)
	}

	store := &stego.DirStore{Dir: cfg.Images, Prefix: templateName(cfg.Template)}

	placements, size, err := embed(payload, template, store, logger)
	if err != nil {
		return summary, err
	}

	summary.Payload = size

	defer func() {
		if err == nil {
			return
		}

		for _, p := range placements {
			if removeErr := store.Remove(p.Name); removeErr != nil {
				logger.Warn("removing carrier", "name", p.Name, "error", removeErr)
			}
		}
	}()

	m, err := manifest.Build(cfg.Images, toCarriers(placements), manifestOptions(cfg, logger))
	if err != nil {
		return summary, fmt.Errorf("building manifest: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Manifest), 0o750); err != nil {
		return summary, fmt.Errorf("creating manifest directory: %w", err)
	}

	if err := manifest.Save(cfg.Manifest, m); err != nil {
		return summary, err
	}

	summary.Carriers = len(placements)
	summary.Duration = time.Since(start)

	logger.Info("input hidden",
		"input", cfg.Input,
		"carriers", summary.Carriers,
		"payload", humanize.IBytes(uint64(summary.Payload)), //nolint:gosec // sizes are non-negative
		"manifest", cfg.Manifest,
	)

	if cfg.Stats {
		printStats(os.Stderr, config.Hide, summary)
	}

	return summary, nil
}

// embed spreads the archive at payload over carriers put into store.
func embed(payload string, template image.Image, store *stego.DirStore, logger *slog.Logger) ([]stego.Placement, int64, error) {
	f, err := os.Open(payload) //nolint:gosec // path is inside the private workspace
	if err != nil {
		return nil, 0, fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, 0, fmt.Errorf("stat archive: %w", err)
	}

	if err := os.MkdirAll(store.Dir, 0o750); err != nil {
		return nil, 0, fmt.Errorf("creating image directory: %w", err)
	}

	embedder := &stego.Embedder{Logger: logger}

	placements, err := embedder.EmbedStream(f, info.Size(), template, store)
	if err != nil {
		return nil, 0, fmt.Errorf("embedding archive: %w", err)
	}

	return placements, info.Size(), nil
}

// templateName is the template's file name without extension.
func templateName(path string) string {
	base := filepath.Base(path)

	return strings.TrimSuffix(base, filepath.Ext(base))
}
