package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	_ "image/gif"
	_ "image/jpeg"

	"golang.org/x/image/draw"
)

// CanonicalSize is the resolution the diffusion model expects for
// seed images.
const CanonicalSize = 512

// NormalizeSeed decodes an uploaded image, converts it to RGBA and
// scales it to the canonical 512x512 resolution, returning PNG bytes.
// The aspect ratio is not preserved; the diffusion pipeline wants an
// exact square.
func NormalizeSeed(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode seed image: %w", err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, CanonicalSize, CanonicalSize))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode seed image: %w", err)
	}
	return buf.Bytes(), nil
}
