package encryption

import "errors"

var (
	// ErrEmptyPassword is returned when no password is supplied.
	ErrEmptyPassword = errors.New("password must not be empty")
	// ErrUnknownAlgorithm is returned for a cipher outside the supported set.
	ErrUnknownAlgorithm = errors.New("unknown cipher algorithm")
	// ErrUnknownMode is returned for a block mode other than ECB or CBC.
	ErrUnknownMode = errors.New("unknown cipher mode")
	// ErrUnknownScheme is returned for an unsupported key derivation scheme.
	ErrUnknownScheme = errors.New("unknown key derivation scheme")
	// ErrEmptyData is returned when attempting to unpad empty data.
	ErrEmptyData = errors.New("empty data")
	// ErrInvalidPadding is returned when PKCS5 padding is malformed, usually because of a wrong password.
	ErrInvalidPadding = errors.New("invalid padding")
	// ErrInvalidBlockSize is returned when ciphertext length is not aligned with the cipher block size.
	ErrInvalidBlockSize = errors.New("ciphertext is not a multiple of block size")
)
