package logic

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/idelchi/pixvault/internal/config"
	"github.com/idelchi/pixvault/internal/filter"
	"github.com/idelchi/pixvault/internal/stego"
)

// Estimate is the outcome of Capacity.
type Estimate struct {
	// Template is the path of the inspected template
	Template string

	// Width and Height of every carrier
	Width, Height int

	// PerCarrier is the number of payload bytes one carrier holds
	PerCarrier int

	// Files and Bytes of the selected input, zero without input
	Files int
	Bytes int64

	// Payload is the expected encrypted size of the input, before archiving
	Payload int64

	// Carriers needed for Payload
	Carriers int
}

// Capacity reports how many payload bytes one carrier made from cfg.Template holds and,
// when cfg.Input is set, roughly how many carriers the input needs. Archive overhead is
// not included in the estimate.
func Capacity(cfg *config.Config, logger *slog.Logger) (Estimate, error) {
	logger = orDiscard(logger)

	template, format, err := stego.LoadImage(cfg.Template)
	if err != nil {
		return Estimate{}, fmt.Errorf("loading template: %w", err)
	}

	canvas := stego.Resize(template)

	estimate := Estimate{
		Template:   cfg.Template,
		Width:      canvas.Rect.Dx(),
		Height:     canvas.Rect.Dy(),
		PerCarrier: stego.Capacity(canvas.Rect.Dx(), canvas.Rect.Dy()),
	}

	logger.Debug("template inspected", "path", cfg.Template, "format", format, "capacity", estimate.PerCarrier)

	if cfg.Input == "" {
		return estimate, nil
	}

	selector, err := filter.Load(cfg.Include, cfg.Exclude, cfg.IncludeFrom, cfg.ExcludeFrom)
	if err != nil {
		return estimate, err
	}

	spec, _ := cipherSpec(cfg)

	err = walkFiles(cfg.Input, func(rel string, info fs.FileInfo) {
		if selector != nil && !selector.Match(rel) {
			return
		}

		estimate.Files++
		estimate.Bytes += info.Size()
		estimate.Payload += spec.CiphertextSize(info.Size())
	})
	if err != nil {
		return estimate, err
	}

	if estimate.Payload > 0 {
		perCarrier := int64(estimate.PerCarrier)
		estimate.Carriers = int((estimate.Payload + perCarrier - 1) / perCarrier)
	}

	return estimate, nil
}

// walkFiles calls fn for every regular file below root, or for root itself when it is a
// file, with its slash-separated path relative to root.
func walkFiles(root string, fn func(rel string, info fs.FileInfo)) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("stat %q: %w", root, err)
	}

	if !info.IsDir() {
		fn(filepath.Base(root), info)

		return nil
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		fn(filepath.ToSlash(rel), info)

		return nil
	})
	if err != nil {
		return fmt.Errorf("walking %q: %w", root, err)
	}

	return nil
}
