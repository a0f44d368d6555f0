package logic_test

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/idelchi/pixvault/internal/config"
	"github.com/idelchi/pixvault/internal/encryption"
	"github.com/idelchi/pixvault/internal/logic"
	"github.com/idelchi/pixvault/internal/manifest"
	"github.com/idelchi/pixvault/internal/stego"
)

// writeTemplate stores a small gradient PNG and returns its path.
func writeTemplate(t *testing.T, dir string) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 160, 120))
	for x := range 160 {
		for y := range 120 {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y * 2), B: uint8(x + y), A: 255}) //nolint:gosec // small values
		}
	}

	path := filepath.Join(dir, "holiday.png")

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}

	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	return path
}

// pseudoRandom returns n bytes that do not compress, reproducible per seed.
func pseudoRandom(n int, seed uint64) []byte {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) //nolint:gosec // test data only

	data := make([]byte, n)
	for i := range data {
		data[i] = byte(rng.Uint32())
	}

	return data
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
}

// newConfig returns a hide configuration below base; callers adjust it per test.
func newConfig(base, input, template string) *config.Config {
	return &config.Config{
		Password:  "testpassword",
		Algorithm: "aes",
		Mode:      "cbc",
		KDF:       "pbkdf2",
		Archive:   "zip",
		LogFormat: "text",
		Parallel:  2,
		Input:     input,
		Template:  template,
		Images:    filepath.Join(base, "images"),
		Manifest:  filepath.Join(base, "report.xml"),
		Output:    filepath.Join(base, "restored"),
		Action:    config.Hide,
	}
}

func hideAndExtract(t *testing.T, cfg *config.Config) (logic.Summary, *manifest.Manifest) {
	t.Helper()

	hidden, err := logic.Hide(cfg, nil)
	if err != nil {
		t.Fatalf("Hide() error = %v", err)
	}

	m, err := manifest.Load(cfg.Manifest)
	if err != nil {
		t.Fatalf("loading manifest: %v", err)
	}

	extract := *cfg
	extract.Action = config.Extract

	if _, err := logic.Extract(&extract, nil); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	return hidden, m
}

func TestScenarioSmallFile(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	template := writeTemplate(t, base)

	original := pseudoRandom(2048, 1)
	input := filepath.Join(base, "secret.bin")
	writeFile(t, input, original)

	cfg := newConfig(base, input, template)

	summary, m := hideAndExtract(t, cfg)

	if summary.Carriers != 1 || len(m.Entries) != 1 {
		t.Fatalf("got %d carriers and %d entries, want 1 each", summary.Carriers, len(m.Entries))
	}

	if int64(m.Entries[0].HiddenBytes) != summary.Payload {
		t.Errorf("hidden bytes = %d, want the archive length %d", m.Entries[0].HiddenBytes, summary.Payload)
	}

	if !strings.HasPrefix(m.Entries[0].Name, "holiday_data_container_") {
		t.Errorf("carrier name %q does not start with the template name", m.Entries[0].Name)
	}

	restored, err := os.ReadFile(filepath.Join(cfg.Output, "secret.bin"))
	if err != nil {
		t.Fatalf("reading restored file: %v", err)
	}

	if !bytes.Equal(restored, original) {
		t.Error("restored file differs from the original")
	}
}

func TestScenarioLargeFile(t *testing.T) {
	if testing.Short() {
		t.Skip("hides 5 MB")
	}

	t.Parallel()

	base := t.TempDir()
	template := writeTemplate(t, base)

	original := pseudoRandom(5*1024*1024, 2)
	input := filepath.Join(base, "large.bin")
	writeFile(t, input, original)

	cfg := newConfig(base, input, template)

	summary, m := hideAndExtract(t, cfg)

	perCarrier := int64(stego.CanvasCapacity)
	want := int((summary.Payload + perCarrier - 1) / perCarrier)

	if summary.Carriers != want || len(m.Entries) != want {
		t.Fatalf("got %d carriers and %d entries, want %d", summary.Carriers, len(m.Entries), want)
	}

	var total int64

	for i, entry := range m.Entries {
		total += int64(entry.HiddenBytes)

		if i < len(m.Entries)-1 && entry.HiddenBytes != stego.CanvasCapacity {
			t.Errorf("entry %d holds %d bytes, want a full carrier of %d", i, entry.HiddenBytes, stego.CanvasCapacity)
		}
	}

	if total != summary.Payload {
		t.Errorf("manifest declares %d bytes, archive has %d", total, summary.Payload)
	}

	restored, err := os.ReadFile(filepath.Join(cfg.Output, "large.bin"))
	if err != nil {
		t.Fatalf("reading restored file: %v", err)
	}

	if !bytes.Equal(restored, original) {
		t.Error("restored file differs from the original")
	}
}

func TestDirectoryRoundTrip(t *testing.T) {
	t.Parallel()

	files := map[string][]byte{
		"notes.txt":             []byte("remember the milk"),
		"photos/cat.raw":        pseudoRandom(300_000, 3),
		"photos/日本/夏.txt":       []byte("summer"),
		"deep/er/still/empty.x": {},
	}

	tests := []struct {
		name   string
		modify func(*config.Config)
	}{
		{name: "defaults"},
		{name: "tripledes ecb legacy", modify: func(c *config.Config) {
			c.Algorithm, c.Mode, c.KDF = "tripledes", "ecb", "legacy"
		}},
		{name: "tar.zst json manifest with blake3", modify: func(c *config.Config) {
			c.Archive, c.Blake3 = "tar.zst", true
			c.Manifest = strings.TrimSuffix(c.Manifest, ".xml") + ".json"
		}},
		{name: "tar.lz4 cbor manifest", modify: func(c *config.Config) {
			c.Archive = "tar.lz4"
			c.Manifest = strings.TrimSuffix(c.Manifest, ".xml") + ".cbor"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			base := t.TempDir()
			template := writeTemplate(t, base)

			input := filepath.Join(base, "backup")
			for rel, data := range files {
				writeFile(t, filepath.Join(input, filepath.FromSlash(rel)), data)
			}

			cfg := newConfig(base, input, template)
			if tt.modify != nil {
				tt.modify(cfg)
			}

			summary, m := hideAndExtract(t, cfg)

			if summary.Files != len(files) {
				t.Errorf("encrypted %d files, want %d", summary.Files, len(files))
			}

			if summary.Carriers < 2 {
				t.Errorf("got %d carriers, want the payload split over several", summary.Carriers)
			}

			if cfg.Blake3 {
				if _, ok := m.Entries[0].Lookup(manifest.BLAKE3); !ok {
					t.Error("blake3 checksum missing")
				}
			}

			for rel, data := range files {
				restored, err := os.ReadFile(filepath.Join(cfg.Output, "backup", filepath.FromSlash(rel)))
				if err != nil {
					t.Errorf("%s: %v", rel, err)

					continue
				}

				if !bytes.Equal(restored, data) {
					t.Errorf("%s: restored content differs", rel)
				}
			}
		})
	}
}

func TestHideSelection(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	template := writeTemplate(t, base)

	input := filepath.Join(base, "docs")
	writeFile(t, filepath.Join(input, "keep.txt"), []byte("keep"))
	writeFile(t, filepath.Join(input, "sub", "keep.txt"), []byte("keep too"))
	writeFile(t, filepath.Join(input, "drop.log"), []byte("drop"))

	var logs bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	cfg := newConfig(base, input, template)
	cfg.Include = []string{"*.txt", "*.nomatch"}

	summary, err := logic.Hide(cfg, logger)
	if err != nil {
		t.Fatalf("Hide() error = %v", err)
	}

	if summary.Files != 2 || summary.Skipped != 1 {
		t.Errorf("summary = %+v, want 2 files and 1 skipped", summary)
	}

	if !strings.Contains(logs.String(), "pattern matches no files") || !strings.Contains(logs.String(), "*.nomatch") {
		t.Errorf("no warning about the unmatched pattern in %q", logs.String())
	}

	cfg.Action = config.Extract
	if _, err := logic.Extract(cfg, nil); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(cfg.Output, "docs", "drop.log")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("excluded file was restored: %v", err)
	}

	if _, err := os.Stat(filepath.Join(cfg.Output, "docs", "sub", "keep.txt")); err != nil {
		t.Errorf("selected file missing: %v", err)
	}
}

func TestVerifyAndTamper(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	template := writeTemplate(t, base)

	input := filepath.Join(base, "data.bin")
	writeFile(t, input, pseudoRandom(3*stego.CanvasCapacity, 4))

	cfg := newConfig(base, input, template)

	if _, err := logic.Hide(cfg, nil); err != nil {
		t.Fatalf("Hide() error = %v", err)
	}

	cfg.Action = config.Verify

	summary, err := logic.Verify(cfg, nil)
	if err != nil {
		t.Fatalf("Verify() on untouched carriers error = %v", err)
	}

	if summary.Rejected != 0 || summary.Carriers != 4 {
		t.Errorf("summary = %+v, want 4 accepted and none rejected", summary)
	}

	m, err := manifest.Load(cfg.Manifest)
	if err != nil {
		t.Fatal(err)
	}

	first := filepath.Join(cfg.Images, m.Entries[0].Name)

	data, err := os.ReadFile(first)
	if err != nil {
		t.Fatal(err)
	}

	data[len(data)/2] ^= 0x01
	writeFile(t, first, data)

	var logs bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelError}))

	summary, err = logic.Verify(cfg, logger)
	if !errors.Is(err, logic.ErrCarriersRejected) {
		t.Fatalf("Verify() error = %v, want %v", err, logic.ErrCarriersRejected)
	}

	if summary.Rejected != 1 || summary.Carriers != 3 {
		t.Errorf("summary = %+v, want 3 accepted and 1 rejected", summary)
	}

	if n := strings.Count(logs.String(), "level=ERROR"); n != 1 {
		t.Errorf("rejection logged %d times at error level, want once:\n%s", n, logs.String())
	}

	cfg.Action = config.Extract
	if _, err := logic.Extract(cfg, nil); err == nil {
		t.Error("Extract() with a tampered first carrier succeeded, want error")
	}
}

func TestExtractAllRejected(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	template := writeTemplate(t, base)

	input := filepath.Join(base, "data.bin")
	writeFile(t, input, []byte("tiny"))

	cfg := newConfig(base, input, template)

	if _, err := logic.Hide(cfg, nil); err != nil {
		t.Fatalf("Hide() error = %v", err)
	}

	cfg.Images = filepath.Join(base, "elsewhere")
	cfg.Action = config.Extract

	if _, err := logic.Extract(cfg, nil); !errors.Is(err, manifest.ErrNoValidEntries) {
		t.Errorf("Extract() error = %v, want %v", err, manifest.ErrNoValidEntries)
	}
}

func TestExtractEditedHiddenBytes(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	template := writeTemplate(t, base)

	input := filepath.Join(base, "data.bin")
	writeFile(t, input, []byte("guarded by checksums"))

	cfg := newConfig(base, input, template)

	if _, err := logic.Hide(cfg, nil); err != nil {
		t.Fatalf("Hide() error = %v", err)
	}

	m, err := manifest.Load(cfg.Manifest)
	if err != nil {
		t.Fatal(err)
	}

	m.Entries[0].HiddenBytes = 1 << 61

	if err := manifest.Save(cfg.Manifest, m); err != nil {
		t.Fatal(err)
	}

	cfg.Action = config.Extract

	if _, err := logic.Extract(cfg, nil); !errors.Is(err, manifest.ErrInvalidEntry) {
		t.Errorf("Extract() error = %v, want %v", err, manifest.ErrInvalidEntry)
	}
}

func TestExtractWrongPassword(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	template := writeTemplate(t, base)

	original := []byte(strings.Repeat("confidential ", 100))
	input := filepath.Join(base, "secret.txt")
	writeFile(t, input, original)

	cfg := newConfig(base, input, template)

	if _, err := logic.Hide(cfg, nil); err != nil {
		t.Fatalf("Hide() error = %v", err)
	}

	cfg.Action = config.Extract
	cfg.Password = "not the password"

	if _, err := logic.Extract(cfg, nil); err != nil {
		return
	}

	restored, err := os.ReadFile(filepath.Join(cfg.Output, "secret.txt"))
	if err == nil && bytes.Equal(restored, original) {
		t.Error("wrong password restored the original content")
	}
}

func TestHideErrors(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	template := writeTemplate(t, base)

	input := filepath.Join(base, "in.txt")
	writeFile(t, input, []byte("x"))

	t.Run("empty password", func(t *testing.T) {
		t.Parallel()

		cfg := newConfig(t.TempDir(), input, template)
		cfg.Password = ""

		if _, err := logic.Hide(cfg, nil); !errors.Is(err, encryption.ErrEmptyPassword) {
			t.Errorf("Hide() error = %v, want %v", err, encryption.ErrEmptyPassword)
		}
	})

	t.Run("missing input", func(t *testing.T) {
		t.Parallel()

		cfg := newConfig(t.TempDir(), filepath.Join(base, "missing"), template)

		if _, err := logic.Hide(cfg, nil); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("Hide() error = %v, want %v", err, os.ErrNotExist)
		}
	})

	t.Run("missing template", func(t *testing.T) {
		t.Parallel()

		out := t.TempDir()
		cfg := newConfig(out, input, filepath.Join(base, "missing.png"))

		if _, err := logic.Hide(cfg, nil); err == nil {
			t.Error("Hide() with a missing template succeeded, want error")
		}

		if _, err := os.Stat(cfg.Images); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("image directory created despite failure: %v", err)
		}
	})

	t.Run("template that is not an image", func(t *testing.T) {
		t.Parallel()

		bogus := filepath.Join(t.TempDir(), "bogus.png")
		writeFile(t, bogus, []byte("not a png"))

		cfg := newConfig(t.TempDir(), input, bogus)

		if _, err := logic.Hide(cfg, nil); err == nil {
			t.Error("Hide() with an undecodable template succeeded, want error")
		}
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()

		out := t.TempDir()
		empty := filepath.Join(out, "empty")

		if err := os.Mkdir(empty, 0o750); err != nil {
			t.Fatal(err)
		}

		cfg := newConfig(out, empty, template)
		cfg.Archive = "tar.lz4"
		cfg.Include = []string{"*.none"}

		// The archive of an empty tree still has a header, so hiding succeeds.
		if _, err := logic.Hide(cfg, nil); err != nil {
			t.Errorf("Hide() of an empty directory error = %v", err)
		}
	})
}

func TestCapacity(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	template := writeTemplate(t, base)

	cfg := &config.Config{Template: template, Action: config.Capacity}

	estimate, err := logic.Capacity(cfg, nil)
	if err != nil {
		t.Fatalf("Capacity() error = %v", err)
	}

	if estimate.Width != 640 || estimate.Height != 480 || estimate.PerCarrier != 230399 {
		t.Errorf("estimate = %+v, want 640x480 holding 230399 bytes", estimate)
	}

	if estimate.Carriers != 0 {
		t.Errorf("carriers = %d without input, want 0", estimate.Carriers)
	}

	input := filepath.Join(base, "in")
	writeFile(t, filepath.Join(input, "a.txt"), make([]byte, 10))
	writeFile(t, filepath.Join(input, "b.txt"), make([]byte, 20))
	writeFile(t, filepath.Join(input, "c.log"), make([]byte, 500_000))

	cfg.Input = input
	cfg.Exclude = []string{"*.log"}

	estimate, err = logic.Capacity(cfg, nil)
	if err != nil {
		t.Fatalf("Capacity() error = %v", err)
	}

	if estimate.Files != 2 || estimate.Bytes != 30 || estimate.Payload != 48 || estimate.Carriers != 1 {
		t.Errorf("estimate = %+v, want 2 files, 30 bytes, 48 encrypted, 1 carrier", estimate)
	}

	cfg.Exclude = nil

	estimate, err = logic.Capacity(cfg, nil)
	if err != nil {
		t.Fatalf("Capacity() error = %v", err)
	}

	if estimate.Carriers != 3 {
		t.Errorf("carriers = %d for about 500 KB, want 3", estimate.Carriers)
	}
}
