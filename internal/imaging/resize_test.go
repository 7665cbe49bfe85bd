package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

func TestNormalizeSeedResizesToCanonical(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 1024, 768))
	for x := 0; x < 1024; x += 64 {
		for y := 0; y < 768; y++ {
			src.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}

	out, err := NormalizeSeed(encodePNG(t, src))
	if err != nil {
		t.Fatalf("NormalizeSeed err: %v", err)
	}

	decoded, format, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if format != "png" {
		t.Fatalf("expected png output, got %s", format)
	}
	bounds := decoded.Bounds()
	if bounds.Dx() != CanonicalSize || bounds.Dy() != CanonicalSize {
		t.Fatalf("expected %dx%d, got %dx%d", CanonicalSize, CanonicalSize, bounds.Dx(), bounds.Dy())
	}
}

func TestNormalizeSeedAcceptsJPEG(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewYCbCr(image.Rect(0, 0, 64, 64), image.YCbCrSubsampleRatio420), nil); err != nil {
		t.Fatalf("encode jpeg fixture: %v", err)
	}

	out, err := NormalizeSeed(buf.Bytes())
	if err != nil {
		t.Fatalf("NormalizeSeed err: %v", err)
	}
	decoded, _, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if decoded.Bounds().Dx() != CanonicalSize {
		t.Fatalf("jpeg input not normalized: %v", decoded.Bounds())
	}
}

func TestNormalizeSeedRejectsGarbage(t *testing.T) {
	if _, err := NormalizeSeed([]byte("not an image")); err == nil {
		t.Fatal("expected decode error for garbage input")
	}
}
