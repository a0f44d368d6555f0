package encryption_test

import (
	"bytes"
	"encoding/hex"
	"errors"
	"os"
	"testing"

	"github.com/goccy/go-yaml"

	"github.com/idelchi/pixvault/internal/encryption"
)

// Vector is one known-answer case from testdata/derive.yml.
type Vector struct {
	Password  string `yaml:"password"`
	Algorithm string `yaml:"algorithm"`
	Salt      string `yaml:"salt"`
	Key       string `yaml:"key"`
	IV        string `yaml:"iv"`
}

// VectorGroup collects the vectors of one derivation scheme.
type VectorGroup struct {
	Name   string   `yaml:"name"`
	Scheme string   `yaml:"scheme"`
	Cases  []Vector `yaml:"cases"`
}

func loadVectors(t *testing.T) []VectorGroup {
	t.Helper()

	data, err := os.ReadFile("testdata/derive.yml")
	if err != nil {
		t.Fatalf("reading testdata: %v", err)
	}

	var groups []VectorGroup
	if err := yaml.Unmarshal(data, &groups); err != nil {
		t.Fatalf("parsing testdata: %v", err)
	}

	if len(groups) == 0 {
		t.Fatal("no vectors in testdata/derive.yml")
	}

	return groups
}

func TestDeriveKnownVectors(t *testing.T) {
	t.Parallel()

	for _, group := range loadVectors(t) {
		for _, tc := range group.Cases {
			t.Run(group.Name+"/"+tc.Algorithm+"/"+tc.Password, func(t *testing.T) {
				t.Parallel()

				spec := encryption.Spec{Algorithm: encryption.Algorithm(tc.Algorithm), Mode: encryption.ModeCBC}

				got, err := encryption.Derive(tc.Password, spec, encryption.Scheme(group.Scheme))
				if err != nil {
					t.Fatalf("Derive(%q) returned error: %v", tc.Password, err)
				}

				if salt := hex.EncodeToString(got.Salt); salt != tc.Salt {
					t.Errorf("salt = %s, want %s", salt, tc.Salt)
				}

				if string(got.Key) != tc.Key {
					t.Errorf("key = %q, want %q", got.Key, tc.Key)
				}

				if string(got.IV) != tc.IV {
					t.Errorf("iv = %q, want %q", got.IV, tc.IV)
				}
			})
		}
	}
}

func TestDeriveDeterministic(t *testing.T) {
	t.Parallel()

	spec := encryption.DefaultSpec

	first, err := encryption.Derive("testpassword", spec, encryption.SchemePBKDF2)
	if err != nil {
		t.Fatalf("Derive returned error: %v", err)
	}

	for range 3 {
		again, err := encryption.Derive("testpassword", spec, encryption.SchemePBKDF2)
		if err != nil {
			t.Fatalf("Derive returned error: %v", err)
		}

		if !bytes.Equal(first.Key, again.Key) || !bytes.Equal(first.IV, again.IV) || !bytes.Equal(first.Salt, again.Salt) {
			t.Fatalf("Derive is not repeatable: %+v != %+v", first, again)
		}
	}

	other, err := encryption.Derive("testpassword2", spec, encryption.SchemePBKDF2)
	if err != nil {
		t.Fatalf("Derive returned error: %v", err)
	}

	if bytes.Equal(first.Key, other.Key) {
		t.Errorf("distinct passwords produced the same key %q", first.Key)
	}
}

func TestDeriveLengths(t *testing.T) {
	t.Parallel()

	tests := []struct {
		spec    encryption.Spec
		keyLen  int
		ivLen   int
		comment string
	}{
		{encryption.Spec{Algorithm: encryption.AES, Mode: encryption.ModeCBC}, 16, 16, "aes cbc"},
		{encryption.Spec{Algorithm: encryption.AES, Mode: encryption.ModeECB}, 16, 0, "aes ecb"},
		{encryption.Spec{Algorithm: encryption.TripleDES, Mode: encryption.ModeCBC}, 24, 8, "3des cbc"},
		{encryption.Spec{Algorithm: encryption.TripleDES, Mode: encryption.ModeECB}, 24, 0, "3des ecb"},
	}

	for _, tt := range tests {
		t.Run(tt.comment, func(t *testing.T) {
			t.Parallel()

			got, err := encryption.Derive("secret", tt.spec, encryption.SchemePBKDF2)
			if err != nil {
				t.Fatalf("Derive returned error: %v", err)
			}

			if len(got.Key) != tt.keyLen {
				t.Errorf("len(key) = %d, want %d", len(got.Key), tt.keyLen)
			}

			if len(got.IV) != tt.ivLen {
				t.Errorf("len(iv) = %d, want %d", len(got.IV), tt.ivLen)
			}

			if len(got.Salt) != 8 {
				t.Errorf("len(salt) = %d, want 8", len(got.Salt))
			}
		})
	}
}

func TestDeriveErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		password string
		spec     encryption.Spec
		scheme   encryption.Scheme
		want     error
	}{
		{"empty password", "", encryption.DefaultSpec, encryption.SchemePBKDF2, encryption.ErrEmptyPassword},
		{"unknown algorithm", "pw", encryption.Spec{Algorithm: "rc4", Mode: encryption.ModeCBC}, encryption.SchemePBKDF2, encryption.ErrUnknownAlgorithm},
		{"unknown mode", "pw", encryption.Spec{Algorithm: encryption.AES, Mode: "gcm"}, encryption.SchemePBKDF2, encryption.ErrUnknownMode},
		{"unknown scheme", "pw", encryption.DefaultSpec, "scrypt", encryption.ErrUnknownScheme},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := encryption.Derive(tt.password, tt.spec, tt.scheme)
			if !errors.Is(err, tt.want) {
				t.Errorf("Derive(%q) error = %v, want %v", tt.password, err, tt.want)
			}
		})
	}
}

func TestSpecString(t *testing.T) {
	t.Parallel()

	if got := encryption.DefaultSpec.String(); got != "AES/CBC/PKCS5Padding" {
		t.Errorf("DefaultSpec.String() = %q, want %q", got, "AES/CBC/PKCS5Padding")
	}

	spec := encryption.Spec{Algorithm: encryption.TripleDES, Mode: encryption.ModeECB}
	if got := spec.String(); got != "DESede/ECB/PKCS5Padding" {
		t.Errorf("String() = %q, want %q", got, "DESede/ECB/PKCS5Padding")
	}
}
