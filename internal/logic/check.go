package logic

import (
	"io/fs"
	"log/slog"

	"github.com/idelchi/pixvault/internal/config"
	"github.com/idelchi/pixvault/internal/filter"
)

// checkPatterns warns about every include or exclude pattern that matches no file of
// cfg.Input, which usually means a typo. It never fails the operation.
func checkPatterns(cfg *config.Config, logger *slog.Logger) {
	includes, excludes, err := filter.Patterns(cfg.Include, cfg.Exclude, cfg.IncludeFrom, cfg.ExcludeFrom)
	if err != nil {
		logger.Warn("checking patterns", "error", err)

		return
	}

	var candidates []string

	if err := walkFiles(cfg.Input, func(rel string, _ fs.FileInfo) {
		candidates = append(candidates, rel)
	}); err != nil {
		logger.Warn("checking patterns", "error", err)

		return
	}

	for _, pattern := range includes {
		countMatches(logger, "include", pattern, candidates)
	}

	for _, pattern := range excludes {
		countMatches(logger, "exclude", pattern, candidates)
	}
}

// countMatches logs how many candidates a single pattern matches.
func countMatches(logger *slog.Logger, kind, pattern string, candidates []string) {
	matcher, err := filter.New([]string{pattern}, nil)
	if err != nil {
		logger.Warn("invalid pattern", "kind", kind, "pattern", pattern, "error", err)

		return
	}

	var count int

	for _, rel := range candidates {
		if matcher.Match(rel) {
			count++
		}
	}

	if count == 0 {
		logger.Warn("pattern matches no files", "kind", kind, "pattern", pattern)
	} else {
		logger.Debug("pattern matches", "kind", kind, "pattern", pattern, "files", count)
	}
}
