package stego

import (
	"fmt"
	"image"
)

const (
	bitsPerChannel = 2
	channels       = 3
	bitsPerPixel   = bitsPerChannel * channels
	channelMask    = 1<<bitsPerChannel - 1

	// maxDimension bounds each side of a carrier.
	maxDimension = 15000
	// maxPayloadBits keeps the payload bit count within a signed 32-bit integer.
	maxPayloadBits = 1<<31 - 1
)

// Capacity returns how many payload bytes a width x height carrier holds.
func Capacity(width, height int) int {
	return width*height*channels/4 - 1
}

// Embed writes payload into the low bits of a copy of img and returns the copy.
// The returned image is opaque and starts at the origin; img is not modified.
func Embed(img image.Image, payload []byte) (*image.RGBA, error) {
	bounds := img.Bounds()

	if err := checkEmbed(bounds.Dx(), bounds.Dy(), len(payload)); err != nil {
		return nil, err
	}

	out := toRGBA(img)
	width, height := bounds.Dx(), bounds.Dy()

	total := len(payload) * 8
	bit := 0

	for x := 0; x < width && bit < total; x++ {
		for y := 0; y < height && bit < total; y++ {
			off := out.PixOffset(x, y)

			for c := 0; c < channels && bit < total; c++ {
				out.Pix[off+c] = out.Pix[off+c]&^channelMask | readBits(payload, bit)
				bit += bitsPerChannel
			}
		}
	}

	return out, nil
}

// Extract reads n payload bytes back from the low bits of img.
func Extract(img image.Image, n int) ([]byte, error) {
	if n <= 0 {
		return nil, ErrPayloadEmpty
	}

	src := toRGBA(img)
	width, height := src.Rect.Dx(), src.Rect.Dy()

	if limit := width * height * bitsPerPixel / 8; n > limit {
		return nil, fmt.Errorf("%w: %d bytes requested, image holds at most %d", ErrCapacityExceeded, n, limit)
	}

	total := n * 8

	payload := make([]byte, n)
	bit := 0

	for x := 0; x < width && bit < total; x++ {
		for y := 0; y < height && bit < total; y++ {
			off := src.PixOffset(x, y)

			for c := 0; c < channels && bit < total; c++ {
				writeBits(payload, bit, src.Pix[off+c]&channelMask)
				bit += bitsPerChannel
			}
		}
	}

	return payload, nil
}

// checkEmbed validates carrier dimensions against the payload length.
func checkEmbed(width, height, length int) error {
	if length == 0 {
		return ErrPayloadEmpty
	}

	bits := int64(length) * 8
	if bits > maxPayloadBits {
		return fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, length)
	}

	if width*height <= 2 {
		return fmt.Errorf("%w: %dx%d", ErrCarrierTooSmall, width, height)
	}

	if width >= maxDimension || height >= maxDimension {
		return fmt.Errorf("%w: %dx%d", ErrCarrierTooLarge, width, height)
	}

	if pixels := (bits + bitsPerPixel - 1) / bitsPerPixel; pixels >= int64(width*height) {
		return fmt.Errorf("%w: %d bytes need %d pixels, image has %d", ErrCapacityExceeded, length, pixels, width*height)
	}

	return nil
}

// readBits returns the two payload bits starting at bit offset pos, MSB first.
func readBits(payload []byte, pos int) uint8 {
	shift := 8 - bitsPerChannel - pos%8

	return payload[pos/8] >> shift & channelMask
}

// writeBits stores two bits at bit offset pos, MSB first.
func writeBits(payload []byte, pos int, bits uint8) {
	shift := 8 - bitsPerChannel - pos%8
	payload[pos/8] |= bits << shift
}
