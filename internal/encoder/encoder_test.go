package encoder

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 8), G: uint8(y * 8), B: 128, A: 255})
		}
	}
	return img
}

func TestNewJPEGEncoder_ClampsQuality(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-5, 1},
		{0, 1},
		{50, 50},
		{DefaultPhotoQuality, 95},
		{250, 100},
	}
	for _, tt := range tests {
		if got := NewJPEGEncoder(tt.in).Quality(); got != tt.want {
			t.Errorf("NewJPEGEncoder(%d).Quality() = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestJPEGEncoder_Encode(t *testing.T) {
	e := NewJPEGEncoder(DefaultPhotoQuality)
	data, err := e.Encode(testImage(32, 24))
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a JPEG: %v", err)
	}
	if cfg.Width != 32 || cfg.Height != 24 {
		t.Errorf("decoded size = %dx%d, want 32x24", cfg.Width, cfg.Height)
	}
	if e.MIMEType() != "image/jpeg" || e.Extension() != "jpg" {
		t.Errorf("MIMEType/Extension = %q/%q", e.MIMEType(), e.Extension())
	}
}

func TestPNGEncoder_Lossless(t *testing.T) {
	src := testImage(16, 16)
	data, err := NewPNGEncoder().Encode(src)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	out, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			r1, g1, b1, a1 := src.At(x, y).RGBA()
			r2, g2, b2, a2 := out.At(x, y).RGBA()
			if r1 != r2 || g1 != g2 || b1 != b2 || a1 != a2 {
				t.Fatalf("pixel (%d,%d) changed after PNG round trip", x, y)
			}
		}
	}
}
