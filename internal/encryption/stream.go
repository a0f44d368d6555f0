package encryption

import (
	"bufio"
	"crypto/cipher"
	"errors"
	"fmt"
	"io"
)

// Transform runs everything read from r through the cipher described by spec and writes the
// result to w. Key and IV are derived from the password.
// Empty input produces empty output without touching the cipher.
// Buffered output is flushed on every return path; closing r and w is up to the caller.
func Transform(direction Direction, r io.Reader, w io.Writer, password string, spec Spec, scheme Scheme) (err error) {
	mode, err := newBlockMode(direction, password, spec, scheme)
	if err != nil {
		return err
	}

	in := bufio.NewReaderSize(r, defaultBufferSize)
	if _, err := in.Peek(1); errors.Is(err, io.EOF) {
		return nil
	} else if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	out := bufio.NewWriterSize(w, defaultBufferSize)

	defer func() {
		if flushErr := out.Flush(); flushErr != nil && err == nil {
			err = fmt.Errorf("flushing output: %w", flushErr)
		}
	}()

	if direction == Decrypt {
		return decryptBlocks(mode, in, out)
	}

	return encryptBlocks(mode, in, out)
}

// newBlockMode derives the key material and sets up the block mode for direction.
func newBlockMode(direction Direction, password string, spec Spec, scheme Scheme) (cipher.BlockMode, error) {
	material, err := Derive(password, spec, scheme)
	if err != nil {
		return nil, fmt.Errorf("deriving key: %w", err)
	}

	block, err := algorithms[spec.Algorithm].newCipher(material.Key)
	if err != nil {
		return nil, fmt.Errorf("creating %s cipher: %w", spec.Algorithm, err)
	}

	switch {
	case spec.Mode == ModeECB:
		return newECB(block, direction), nil
	case direction == Decrypt:
		return cipher.NewCBCDecrypter(block, material.IV), nil
	default:
		return cipher.NewCBCEncrypter(block, material.IV), nil
	}
}

// encryptBlocks encrypts complete blocks as they arrive and pads the tail at EOF.
func encryptBlocks(mode cipher.BlockMode, r io.Reader, w io.Writer) error {
	size := mode.BlockSize()

	buf := bufferPool.Get().([]byte) //nolint:forcetypeassert // pool only holds []byte
	defer bufferPool.Put(buf)        //nolint:staticcheck // slice header allocation is acceptable here

	pending := make([]byte, 0, defaultBufferSize+size)

	for {
		n, err := r.Read(buf)
		pending = append(pending, buf[:n]...)

		isEOF := errors.Is(err, io.EOF)
		if err != nil && !isEOF {
			return fmt.Errorf("reading input: %w", err)
		}

		if isEOF {
			padded := pkcs5Pad(pending, size)
			mode.CryptBlocks(padded, padded)

			if _, err := w.Write(padded); err != nil {
				return fmt.Errorf("writing final encrypted block: %w", err)
			}

			return nil
		}

		full := len(pending) - len(pending)%size
		if full == 0 {
			continue
		}

		mode.CryptBlocks(pending[:full], pending[:full])

		if _, err := w.Write(pending[:full]); err != nil {
			return fmt.Errorf("writing encrypted block: %w", err)
		}

		pending = append(pending[:0], pending[full:]...)
	}
}

// decryptBlocks decrypts complete blocks, always holding back the last one so that the
// padding can be stripped once EOF is reached.
func decryptBlocks(mode cipher.BlockMode, r io.Reader, w io.Writer) error {
	size := mode.BlockSize()

	buf := bufferPool.Get().([]byte) //nolint:forcetypeassert // pool only holds []byte
	defer bufferPool.Put(buf)        //nolint:staticcheck // slice header allocation is acceptable here

	pending := make([]byte, 0, defaultBufferSize+2*size)

	for {
		n, err := r.Read(buf)
		pending = append(pending, buf[:n]...)

		isEOF := errors.Is(err, io.EOF)
		if err != nil && !isEOF {
			return fmt.Errorf("reading input: %w", err)
		}

		if isEOF {
			if len(pending) == 0 || len(pending)%size != 0 {
				return ErrInvalidBlockSize
			}

			mode.CryptBlocks(pending, pending)

			plain, err := pkcs5Unpad(pending, size)
			if err != nil {
				return fmt.Errorf("removing padding: %w", err)
			}

			if _, err := w.Write(plain); err != nil {
				return fmt.Errorf("writing final decrypted block: %w", err)
			}

			return nil
		}

		full := len(pending) - len(pending)%size
		if full == len(pending) {
			full -= size
		}

		if full <= 0 {
			continue
		}

		mode.CryptBlocks(pending[:full], pending[:full])

		if _, err := w.Write(pending[:full]); err != nil {
			return fmt.Errorf("writing decrypted block: %w", err)
		}

		pending = append(pending[:0], pending[full:]...)
	}
}
