package logic

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/idelchi/pixvault/internal/config"
)

func printStats(w io.Writer, action config.Action, s Summary) {
	fmt.Fprintf(w, "\nStats (%s)\n", action)
	fmt.Fprintf(w, "  Files:     %d\n", s.Files)
	fmt.Fprintf(w, "  Skipped:   %d\n", s.Skipped)
	fmt.Fprintf(w, "  Carriers:  %d\n", s.Carriers)
	fmt.Fprintf(w, "  Rejected:  %d\n", s.Rejected)
	//nolint:gosec // payload is always non-negative
	fmt.Fprintf(w, "  Payload:   %s\n", humanize.IBytes(uint64(max(0, s.Payload))))
	fmt.Fprintf(w, "  Duration:  %s\n", s.Duration.Round(time.Millisecond))
}
