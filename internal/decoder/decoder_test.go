package decoder

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodedSquare(t *testing.T, format string) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 8, 6))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	img.Set(0, 0, color.NRGBA{R: 10, A: 255})
	var buf bytes.Buffer
	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "jpeg":
		err = jpeg.Encode(&buf, img, nil)
	}
	if err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestJPEGDecoder_Decode(t *testing.T) {
	img, err := NewJPEGDecoder().Decode(encodedSquare(t, "jpeg"))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 6 {
		t.Errorf("bounds = %v, want 8x6", img.Bounds())
	}
}

func TestImageDecoder_Formats(t *testing.T) {
	d := NewImageDecoder()
	for _, format := range []string{"png", "jpeg"} {
		img, err := d.Decode(encodedSquare(t, format))
		if err != nil {
			t.Fatalf("%s: Decode() error = %v", format, err)
		}
		if img.Bounds().Dx() != 8 {
			t.Errorf("%s: width = %d, want 8", format, img.Bounds().Dx())
		}
	}
}

func TestImageDecoder_Unsupported(t *testing.T) {
	_, err := NewImageDecoder().Decode([]byte("%PDF-1.4 not an image"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Decode() error = %v, want ErrUnsupportedFormat", err)
	}
	if _, _, err := Config([]byte("plain text")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Config() error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestConfig(t *testing.T) {
	cfg, format, err := Config(encodedSquare(t, "png"))
	if err != nil {
		t.Fatalf("Config() error = %v", err)
	}
	if format != "png" || cfg.Width != 8 || cfg.Height != 6 {
		t.Errorf("Config() = %v %dx%d", format, cfg.Width, cfg.Height)
	}
}
