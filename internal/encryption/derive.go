package encryption

import (
	"bytes"
	"crypto/sha1" //nolint:gosec // fixed PBE scheme, kept for compatibility
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"slices"

	"golang.org/x/crypto/pbkdf2"
)

// Scheme selects how raw key material is produced from the password and salt.
type Scheme string

const (
	// SchemePBKDF2 runs PBKDF2-HMAC-SHA1 over the password and the derived salt.
	SchemePBKDF2 Scheme = "pbkdf2"
	// SchemeLegacy uses the password bytes directly as raw key material,
	// which reproduces keys written by older backups.
	SchemeLegacy Scheme = "legacy"
)

const (
	saltLength    = 8
	pbeIterations = 1024

	// Go imposes no key length policy on ciphers.
	unrestrictedKeyBits = math.MaxInt32
)

//nolint:gochecknoglobals
var schemes = map[Scheme]func(password, salt []byte, keyLen int) []byte{
	SchemePBKDF2: func(password, salt []byte, keyLen int) []byte {
		return pbkdf2.Key(password, salt, pbeIterations, keyLen, sha1.New)
	},
	SchemeLegacy: func(password, _ []byte, _ int) []byte {
		return bytes.Clone(password)
	},
}

// KeyMaterial is the output of Derive.
type KeyMaterial struct {
	// Key is the literal cipher key.
	Key []byte
	// Salt is the password-derived salt fed into the PBE step.
	Salt []byte
	// IV is nil for ECB.
	IV []byte
}

// Derive computes key, salt and IV for spec from the password alone.
// The result is a pure function of its arguments, so the same password always
// yields the same key and IV.
func Derive(password string, spec Spec, scheme Scheme) (KeyMaterial, error) {
	if password == "" {
		return KeyMaterial{}, ErrEmptyPassword
	}

	if err := spec.Validate(); err != nil {
		return KeyMaterial{}, err
	}

	pbe, ok := schemes[scheme]
	if !ok {
		return KeyMaterial{}, fmt.Errorf("%w: %q", ErrUnknownScheme, scheme)
	}

	params := algorithms[spec.Algorithm]

	secret := []byte(password)
	salt := deriveSalt(secret)

	keyBits := min(unrestrictedKeyBits, params.keyBits)
	raw := pbe(secret, salt, keyBits/8)

	digest := sha256.Sum256(raw)
	key := fit([]byte(hex.EncodeToString(digest[:])), keyBits/8)

	material := KeyMaterial{Key: key, Salt: salt}

	if spec.Mode == ModeCBC {
		iv := fit(key, params.blockSize())
		slices.Reverse(iv)
		material.IV = iv
	}

	return material, nil
}

// deriveSalt takes the leading bytes of SHA-256(password).
// A salt as long as the hash would equal it, so that case is shortened by one byte.
func deriveSalt(password []byte) []byte {
	digest := sha256.Sum256(password)

	n := saltLength
	if n >= len(digest) {
		n = len(digest) - 1
	}

	return bytes.Clone(digest[:n])
}

// fit returns exactly n bytes of src, truncating or repeating it as needed.
func fit(src []byte, n int) []byte {
	out := make([]byte, n)
	if len(src) == 0 {
		return out
	}

	for i := 0; i < n; i += len(src) {
		copy(out[i:], src)
	}

	return out
}
