package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/goccy/go-yaml"
	"github.com/tidwall/jsonc"

	"github.com/idelchi/pixvault/internal/fileutil"
)

// Codec serializes manifests in one document format.
type Codec interface {
	Encode(w io.Writer, m *Manifest) error
	Decode(data []byte) (*Manifest, error)
}

//nolint:gochecknoglobals
var (
	cborEncMode = mustCBOREncMode()

	// codecs maps lower-case file extensions to their codec.
	codecs = map[string]Codec{
		".xml":  xmlCodec{},
		".json": jsonCodec{},
		".yaml": yamlCodec{},
		".yml":  yamlCodec{},
		".cbor": cborCodec{},
	}
)

// knownVersions lists the manifest versions this build understands.
//
//nolint:gochecknoglobals
var knownVersions = []string{Version}

// CodecFor picks the codec by the extension of path. Unknown extensions use XML.
func CodecFor(path string) Codec {
	if codec, ok := codecs[strings.ToLower(filepath.Ext(path))]; ok {
		return codec
	}

	return xmlCodec{}
}

// Save atomically writes m to path in the format implied by its extension.
func Save(path string, m *Manifest) error {
	const perm = 0o644

	if err := fileutil.WriteFile(path, perm, func(w io.Writer) error {
		return CodecFor(path).Encode(w, m)
	}); err != nil {
		return fmt.Errorf("saving manifest %q: %w", path, err)
	}

	return nil
}

// Load reads the manifest at path and checks its version.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	m, err := CodecFor(path).Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding manifest %q: %w", path, err)
	}

	if !slices.Contains(knownVersions, m.Version) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVersion, m.Version)
	}

	return m, nil
}

type jsonCodec struct{}

func (jsonCodec) Encode(w io.Writer, m *Manifest) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(m)
}

// Decode accepts JSON with comments and trailing commas.
func (jsonCodec) Decode(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(jsonc.ToJSON(data), &m); err != nil {
		return nil, err
	}

	return &m, nil
}

type yamlCodec struct{}

func (yamlCodec) Encode(w io.Writer, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}

	_, err = w.Write(data)

	return err
}

func (yamlCodec) Decode(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}

	return &m, nil
}

// cborCodec writes Core Deterministic CBOR, so equal manifests encode to equal bytes.
type cborCodec struct{}

func (cborCodec) Encode(w io.Writer, m *Manifest) error {
	data, err := cborEncMode.Marshal(m)
	if err != nil {
		return err
	}

	_, err = w.Write(data)

	return err
}

func (cborCodec) Decode(data []byte) (*Manifest, error) {
	var m Manifest
	if err := cbor.NewDecoder(bytes.NewReader(data)).Decode(&m); err != nil {
		return nil, err
	}

	return &m, nil
}

func mustCBOREncMode() cbor.EncMode {
	mode, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("manifest: CBOR encoder initialization failed: " + err.Error())
	}

	return mode
}
