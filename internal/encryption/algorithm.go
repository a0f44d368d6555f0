package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/des"
	"fmt"
	"strings"
)

// Algorithm identifies one of the supported block ciphers.
type Algorithm string

const (
	// AES is AES-128.
	AES Algorithm = "aes"
	// TripleDES is DESede with a 192-bit key.
	TripleDES Algorithm = "tripledes"
)

// Mode is the block cipher mode of operation.
type Mode string

const (
	// ModeECB encrypts every block independently.
	ModeECB Mode = "ecb"
	// ModeCBC chains blocks with a derived IV.
	ModeCBC Mode = "cbc"
)

// Direction selects encryption or decryption.
type Direction int

const (
	// Encrypt turns plaintext into ciphertext.
	Encrypt Direction = iota
	// Decrypt turns ciphertext into plaintext.
	Decrypt
)

func (d Direction) String() string {
	if d == Decrypt {
		return "decrypt"
	}

	return "encrypt"
}

// Spec describes a cipher transformation. Padding is always PKCS5.
type Spec struct {
	Algorithm Algorithm
	Mode      Mode
}

// DefaultSpec is AES/CBC/PKCS5Padding.
//
//nolint:gochecknoglobals
var DefaultSpec = Spec{Algorithm: AES, Mode: ModeCBC}

// String renders s as a transformation string such as "AES/CBC/PKCS5Padding".
func (s Spec) String() string {
	name := string(s.Algorithm)
	if params, ok := algorithms[s.Algorithm]; ok {
		name = params.name
	}

	return name + "/" + strings.ToUpper(string(s.Mode)) + "/PKCS5Padding"
}

// Validate reports whether both the algorithm and the mode are known.
func (s Spec) Validate() error {
	if _, err := lookup(s.Algorithm); err != nil {
		return err
	}

	switch s.Mode {
	case ModeECB, ModeCBC:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMode, s.Mode)
	}
}

// CiphertextSize returns the encrypted length of n plaintext bytes. Empty input stays empty.
func (s Spec) CiphertextSize(n int64) int64 {
	params, ok := algorithms[s.Algorithm]
	if !ok || n <= 0 {
		return 0
	}

	block := int64(params.blockSize())

	return (n/block + 1) * block
}

// algorithm holds the fixed parameters of a cipher.
type algorithm struct {
	name      string
	keyBits   int
	blockBits int
	newCipher func(key []byte) (cipher.Block, error)
}

func (a algorithm) keySize() int   { return a.keyBits / 8 }
func (a algorithm) blockSize() int { return a.blockBits / 8 }

//nolint:gochecknoglobals
var algorithms = map[Algorithm]algorithm{
	AES: {
		name:      "AES",
		keyBits:   128,
		blockBits: 128,
		newCipher: aes.NewCipher,
	},
	TripleDES: {
		name:      "DESede",
		keyBits:   192,
		blockBits: 64,
		newCipher: des.NewTripleDESCipher,
	},
}

func lookup(a Algorithm) (algorithm, error) {
	params, ok := algorithms[a]
	if !ok {
		return algorithm{}, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, a)
	}

	return params, nil
}
