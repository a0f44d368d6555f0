package encryption

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/idelchi/pixvault/internal/fileutil"
)

// Selector decides whether a file, given by its slash-separated path relative to the
// tree root, takes part in a Tree run.
type Selector interface {
	Match(rel string) bool
}

// Tree encrypts or decrypts a file or a whole directory tree into an output directory,
// mirroring its structure.
type Tree struct {
	// Password the keys are derived from
	Password string

	// Spec is the cipher to use
	Spec Spec

	// Scheme is the key derivation scheme
	Scheme Scheme

	// Selector optionally restricts which files of a directory are processed.
	// Directories are always mirrored.
	Selector Selector

	// Parallel bounds the number of files processed at once. Zero means one per CPU.
	Parallel int

	// PreserveTimestamps copies the source modification time onto each output file
	PreserveTimestamps bool

	// Logger receives per-file progress. Nil discards.
	Logger *slog.Logger
}

// job is one file to run through the cipher.
type job struct {
	src string
	dst string
}

// Crypt processes input into outputDir. A single file lands at outputDir/<name>;
// a directory is reproduced as outputDir/<name>/... with every file transformed
// independently. Files already written are left in place when a later one fails.
func (t *Tree) Crypt(direction Direction, input, outputDir string) (Summary, error) {
	if t.Password == "" {
		return Summary{}, ErrEmptyPassword
	}

	if err := t.Spec.Validate(); err != nil {
		return Summary{}, err
	}

	logger := t.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	dirs, jobs, skipped, err := t.plan(input, outputDir, logger)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{Dirs: len(dirs), Skipped: skipped}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return summary, fmt.Errorf("creating directory %q: %w", dir, err)
		}
	}

	results := make(chan Result, len(jobs))

	parallel := t.Parallel
	if parallel <= 0 {
		parallel = runtime.NumCPU()
	}

	group := errgroup.Group{}
	group.SetLimit(parallel)

	done := make(chan struct{})

	var errored int

	go func() {
		defer close(done)

		for result := range results {
			if result.Error != nil {
				errored++

				logger.Error("processing file", "input", result.Input, "error", result.Error)

				continue
			}

			summary.Files++
			summary.Bytes += result.OutputSize

			logger.Debug("processed", "direction", direction, "input", result.Input, "output", result.Output)
		}
	}()

	for _, job := range jobs {
		group.Go(func() error {
			size, err := t.cryptFile(direction, job.src, job.dst)
			if err != nil {
				results <- Result{Input: job.src, Error: err}

				return err
			}

			results <- Result{Input: job.src, Output: job.dst, OutputSize: size}

			return nil
		})
	}

	err = group.Wait()

	close(results)

	<-done // Wait for printer to finish

	if err != nil {
		return summary, fmt.Errorf("%s tree %q: %d file(s) failed: %w", direction, input, errored, err)
	}

	return summary, nil
}

// plan walks input with an explicit stack and returns the directories to create and the
// files to process. It never recurses and keeps no state between calls.
func (t *Tree) plan(input, outputDir string, logger *slog.Logger) (dirs []string, jobs []job, skipped int, err error) {
	input = filepath.Clean(input)

	info, err := os.Stat(input)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("stat %q: %w", input, err)
	}

	root := filepath.Join(outputDir, filepath.Base(input))

	if !info.IsDir() {
		return []string{outputDir}, []job{{src: input, dst: root}}, 0, nil
	}

	stack := []string{"."}

	for len(stack) > 0 {
		rel := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		dirs = append(dirs, filepath.Join(root, rel))

		entries, err := os.ReadDir(filepath.Join(input, rel))
		if err != nil {
			return nil, nil, 0, fmt.Errorf("reading directory %q: %w", filepath.Join(input, rel), err)
		}

		for _, entry := range entries {
			child := filepath.Join(rel, entry.Name())

			switch {
			case entry.IsDir():
				stack = append(stack, child)
			case !entry.Type().IsRegular():
				skipped++

				logger.Warn("skipping non-regular file", "path", filepath.Join(input, child))
			case t.Selector != nil && !t.Selector.Match(filepath.ToSlash(child)):
				skipped++

				logger.Debug("excluded", "path", filepath.Join(input, child))
			default:
				jobs = append(jobs, job{src: filepath.Join(input, child), dst: filepath.Join(root, child)})
			}
		}
	}

	return dirs, jobs, skipped, nil
}

// cryptFile transforms one file through a temp file and an atomic rename.
func (t *Tree) cryptFile(direction Direction, src, dst string) (size int64, err error) {
	tc, err := fileutil.NewTempContext(src, dst)
	if err != nil {
		return 0, fmt.Errorf("preparing atomic write: %w", err)
	}

	defer tc.CleanupOnError(&err)

	inFile, err := os.Open(filepath.Clean(src))
	if err != nil {
		return 0, fmt.Errorf("opening input file: %w", err)
	}
	defer inFile.Close()

	if err := Transform(direction, inFile, tc.TmpFile, t.Password, t.Spec, t.Scheme); err != nil {
		return 0, fmt.Errorf("%sing %q: %w", direction, src, err)
	}

	const ownerReadWrite = 0o600

	if err := tc.Commit(dst, ownerReadWrite); err != nil {
		return 0, err
	}

	size, err = fileutil.FinalizeOutput(dst, t.PreserveTimestamps, tc.ModTime)
	if err != nil {
		return 0, fmt.Errorf("finalizing output: %w", err)
	}

	return size, nil
}
