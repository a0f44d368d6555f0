package encryption

// Result represents the outcome of processing a single file of a tree.
type Result struct {
	// Input file path
	Input string

	// Output file path
	Output string

	// Output file size in bytes
	OutputSize int64

	// Any error that occurred during processing
	Error error
}

// Summary aggregates the results of one Tree.Crypt call.
type Summary struct {
	// Directories mirrored into the output
	Dirs int

	// Files run through the cipher
	Files int

	// Files left out by the selector or because they are not regular files
	Skipped int

	// Total size of the written files in bytes
	Bytes int64
}
