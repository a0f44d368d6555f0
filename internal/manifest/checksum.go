package manifest

import (
	"crypto/md5" //nolint:gosec // integrity check against accidental change, fixed by the format
	"encoding/hex"
	"fmt"
	"hash"
	"hash/adler32"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/zeebo/blake3"
)

// Algorithm names a checksum as written into manifests.
type Algorithm string

const (
	// MD5 is rendered as lowercase hex.
	MD5 Algorithm = "md5"
	// Adler32 is rendered as an unsigned decimal number.
	Adler32 Algorithm = "adler32"
	// BLAKE3 is rendered as lowercase hex of the 32-byte digest.
	BLAKE3 Algorithm = "blake3"
)

// Required lists the checksums every entry must carry.
//
//nolint:gochecknoglobals
var Required = []Algorithm{MD5, Adler32}

type hasher struct {
	new    func() hash.Hash
	format func(hash.Hash) string
}

//nolint:gochecknoglobals
var hashers = map[Algorithm]hasher{
	MD5: {
		new:    md5.New,
		format: hexDigest,
	},
	Adler32: {
		new: func() hash.Hash { return adler32.New() },
		format: func(h hash.Hash) string {
			return strconv.FormatUint(uint64(h.(hash.Hash32).Sum32()), 10) //nolint:forcetypeassert // adler32 is a Hash32
		},
	},
	BLAKE3: {
		new:    func() hash.Hash { return blake3.New() },
		format: hexDigest,
	},
}

func hexDigest(h hash.Hash) string {
	return hex.EncodeToString(h.Sum(nil))
}

// Sum reads the file at path once and returns its size and the requested checksums
// in the order given.
func Sum(path string, algs []Algorithm) (int64, []Checksum, error) {
	hashes := make([]hash.Hash, len(algs))
	writers := make([]io.Writer, len(algs))

	for i, alg := range algs {
		h, ok := hashers[alg]
		if !ok {
			return 0, nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, alg)
		}

		hashes[i] = h.new()
		writers[i] = hashes[i]
	}

	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return 0, nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(io.MultiWriter(writers...), f)
	if err != nil {
		return 0, nil, fmt.Errorf("reading file: %w", err)
	}

	sums := make([]Checksum, len(algs))
	for i, alg := range algs {
		sums[i] = Checksum{Algorithm: alg, Value: hashers[alg].format(hashes[i])}
	}

	return size, sums, nil
}
