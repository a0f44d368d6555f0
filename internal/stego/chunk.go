package stego

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"

	"github.com/dustin/go-humanize"
)

// Placement records which carrier holds which part of a payload stream.
// The order of a []Placement is the reconstruction order.
type Placement struct {
	// Name identifies the carrier within its store
	Name string

	// ByteCount is the number of payload bytes hidden in the carrier
	ByteCount int
}

// Embedder splits a payload stream over as many carriers as needed.
type Embedder struct {
	// Logger receives per-carrier progress. Nil discards.
	Logger *slog.Logger
}

func (e *Embedder) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}

	return e.Logger
}

// EmbedStream reads exactly size bytes from r and hides them, capacity-sized chunk
// by chunk, in fresh copies of the resized template. Every carrier is handed to store
// as soon as it is ready. On failure the carriers stored so far are removed and no
// placements are returned.
func (e *Embedder) EmbedStream(r io.Reader, size int64, template image.Image, store CarrierStore) (placements []Placement, err error) {
	if size <= 0 {
		return nil, ErrPayloadEmpty
	}

	logger := e.logger()

	canvas := Resize(template)
	capacity := Capacity(canvas.Rect.Dx(), canvas.Rect.Dy())

	defer func() {
		if err == nil {
			return
		}

		for _, p := range placements {
			if removeErr := store.Remove(p.Name); removeErr != nil {
				logger.Warn("removing partial carrier", "name", p.Name, "error", removeErr)
			}
		}

		placements = nil
	}()

	chunk := make([]byte, min(int64(capacity), size))

	var total int64

	for index := 0; ; index++ {
		n, readErr := io.ReadFull(r, chunk)
		if n == 0 && errors.Is(readErr, io.EOF) {
			break
		}

		if readErr != nil && !errors.Is(readErr, io.ErrUnexpectedEOF) {
			return placements, fmt.Errorf("reading payload: %w", readErr)
		}

		carrier, err := Embed(canvas, chunk[:n])
		if err != nil {
			return placements, fmt.Errorf("embedding chunk %d: %w", index, err)
		}

		name, err := store.Put(index, carrier)
		if err != nil {
			return placements, fmt.Errorf("storing carrier %d: %w", index, err)
		}

		placements = append(placements, Placement{Name: name, ByteCount: n})
		total += int64(n)

		logger.Debug("carrier written", "index", index, "name", name, "bytes", n)

		if readErr != nil {
			break
		}
	}

	if total != size {
		return placements, fmt.Errorf("%w: embedded %d bytes, expected %d", ErrLengthMismatch, total, size)
	}

	logger.Info("payload embedded",
		"carriers", len(placements),
		"size", humanize.IBytes(uint64(total)), //nolint:gosec // total is positive
		"capacity", humanize.IBytes(uint64(capacity)), //nolint:gosec // capacity is positive
	)

	return placements, nil
}

// ExtractStream reads the carriers in placement order and writes the concatenated
// payload to w. It returns the number of bytes written.
func (e *Embedder) ExtractStream(placements []Placement, store CarrierStore, w io.Writer) (int64, error) {
	if len(placements) == 0 {
		return 0, ErrNoCarriers
	}

	logger := e.logger()

	var written, declared int64

	for index, p := range placements {
		declared += int64(p.ByteCount)

		img, err := store.Open(p.Name)
		if err != nil {
			return written, fmt.Errorf("opening carrier %q: %w", p.Name, err)
		}

		data, err := Extract(img, p.ByteCount)
		if err != nil {
			return written, fmt.Errorf("extracting carrier %q: %w", p.Name, err)
		}

		n, err := w.Write(data)
		written += int64(n)

		if err != nil {
			return written, fmt.Errorf("writing payload: %w", err)
		}

		logger.Debug("carrier read", "index", index, "name", p.Name, "bytes", n)
	}

	if written != declared {
		return written, fmt.Errorf("%w: extracted %d bytes, declared %d", ErrLengthMismatch, written, declared)
	}

	return written, nil
}
