package stego

import (
	"fmt"
	"image"
	_ "image/gif"  // template decoder
	_ "image/jpeg" // template decoder
	_ "image/png"  // template decoder
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"  // template decoder
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // template decoder
	_ "golang.org/x/image/webp" // template decoder
)

const (
	// CanvasWidth is the fixed carrier width.
	CanvasWidth = 640
	// CanvasHeight is the fixed carrier height.
	CanvasHeight = 480
)

// CanvasCapacity is the number of payload bytes one resized carrier holds.
//
//nolint:gochecknoglobals
var CanvasCapacity = Capacity(CanvasWidth, CanvasHeight)

// Resize scales img onto an opaque CanvasWidth x CanvasHeight canvas.
// Payload is always written after resizing so that later rescaling by other tools
// cannot be mistaken for a valid carrier.
func Resize(img image.Image) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, CanvasWidth, CanvasHeight))
	xdraw.BiLinear.Scale(canvas, canvas.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	opaque(canvas)

	return canvas
}

// LoadImage decodes an image file in any of the registered formats.
func LoadImage(path string) (image.Image, string, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, "", fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("decoding image %q: %w", path, err)
	}

	return img, format, nil
}

// toRGBA copies img into a new opaque RGBA image anchored at the origin.
func toRGBA(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	xdraw.Draw(out, out.Bounds(), img, bounds.Min, xdraw.Src)
	opaque(out)

	return out
}

// opaque forces full alpha, matching the RGB-only carrier format.
func opaque(img *image.RGBA) {
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
}
