package fileutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Workspace is a private temporary directory owned by one operation.
type Workspace struct {
	dir    string
	logger *slog.Logger
}

// NewWorkspace creates a uniquely named directory below the system temp location.
func NewWorkspace(prefix string, logger *slog.Logger) (*Workspace, error) {
	dir, err := os.MkdirTemp("", prefix+"-*")
	if err != nil {
		return nil, fmt.Errorf("creating workspace: %w", err)
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	logger.Debug("workspace created", "dir", dir)

	return &Workspace{dir: dir, logger: logger}, nil
}

// Dir returns the workspace root.
func (w *Workspace) Dir() string { return w.dir }

// Path joins elem onto the workspace root.
func (w *Workspace) Path(elem ...string) string {
	return filepath.Join(append([]string{w.dir}, elem...)...)
}

// Mkdir creates a subdirectory of the workspace and returns its path.
func (w *Workspace) Mkdir(name string) (string, error) {
	path := w.Path(name)

	if err := os.MkdirAll(path, 0o700); err != nil {
		return "", fmt.Errorf("creating workspace directory %q: %w", name, err)
	}

	return path, nil
}

// Close removes the workspace. A failure is logged, never returned.
func (w *Workspace) Close() {
	if err := os.RemoveAll(w.dir); err != nil {
		w.logger.Warn("removing workspace", "dir", w.dir, "error", err)

		return
	}

	w.logger.Debug("workspace removed", "dir", w.dir)
}
