package stego

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/idelchi/pixvault/internal/fileutil"
)

// CarrierStore persists carrier images losslessly.
type CarrierStore interface {
	// Put stores the carrier with the given position in the stream and returns its name.
	Put(index int, img *image.RGBA) (string, error)
	// Open loads a previously stored carrier.
	Open(name string) (image.Image, error)
	// Remove deletes a stored carrier.
	Remove(name string) error
}

// DirStore keeps carriers as PNG files in a directory.
type DirStore struct {
	// Dir holds the carrier files
	Dir string

	// Prefix starts every generated file name, usually the template's base name
	Prefix string
}

// Put writes img atomically as <prefix>_data_container_<uuid>_<index>.png.
func (s *DirStore) Put(index int, img *image.RGBA) (string, error) {
	prefix := s.Prefix
	if prefix == "" {
		prefix = "carrier"
	}

	name := fmt.Sprintf("%s_data_container_%s_%d.png", prefix, uuid.NewString(), index)

	const perm = 0o644

	err := fileutil.WriteFile(filepath.Join(s.Dir, name), perm, func(w io.Writer) error {
		return png.Encode(w, img)
	})
	if err != nil {
		return "", fmt.Errorf("writing %q: %w", name, err)
	}

	return name, nil
}

// Open decodes the PNG carrier called name.
func (s *DirStore) Open(name string) (image.Image, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening carrier: %w", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding carrier %q: %w", name, err)
	}

	return img, nil
}

// Remove deletes the carrier file called name.
func (s *DirStore) Remove(name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("removing carrier: %w", err)
	}

	return nil
}

// path returns the file backing the carrier called name.
func (s *DirStore) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	return filepath.Join(s.Dir, name), nil
}

// MemoryStore keeps PNG-encoded carriers in memory.
type MemoryStore struct {
	carriers map[string][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carriers: make(map[string][]byte)}
}

// Put encodes img and stores it under a name derived from index.
func (s *MemoryStore) Put(index int, img *image.RGBA) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encoding carrier: %w", err)
	}

	name := fmt.Sprintf("carrier-%04d.png", index)
	s.carriers[name] = buf.Bytes()

	return name, nil
}

// Open decodes the carrier called name.
func (s *MemoryStore) Open(name string) (image.Image, error) {
	data, ok := s.carriers[name]
	if !ok {
		return nil, fmt.Errorf("carrier %q: %w", name, os.ErrNotExist)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding carrier %q: %w", name, err)
	}

	return img, nil
}

// Remove forgets the carrier called name.
func (s *MemoryStore) Remove(name string) error {
	delete(s.carriers, name)

	return nil
}

// Bytes returns the encoded carrier called name, or nil.
func (s *MemoryStore) Bytes(name string) []byte {
	return s.carriers[name]
}

// Set replaces the encoded carrier called name.
func (s *MemoryStore) Set(name string, data []byte) {
	s.carriers[name] = data
}

// Len reports how many carriers are stored.
func (s *MemoryStore) Len() int {
	return len(s.carriers)
}
