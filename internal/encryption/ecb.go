package encryption

import "crypto/cipher"

// ecb is a cipher.BlockMode that applies the block cipher to each block in isolation.
type ecb struct {
	block   cipher.Block
	decrypt bool
}

func newECB(block cipher.Block, direction Direction) cipher.BlockMode {
	return &ecb{block: block, decrypt: direction == Decrypt}
}

func (e *ecb) BlockSize() int { return e.block.BlockSize() }

func (e *ecb) CryptBlocks(dst, src []byte) {
	size := e.block.BlockSize()
	if len(src)%size != 0 {
		panic("encryption: input not full blocks")
	}

	if len(dst) < len(src) {
		panic("encryption: output smaller than input")
	}

	for len(src) > 0 {
		if e.decrypt {
			e.block.Decrypt(dst[:size], src[:size])
		} else {
			e.block.Encrypt(dst[:size], src[:size])
		}

		src = src[size:]
		dst = dst[size:]
	}
}
