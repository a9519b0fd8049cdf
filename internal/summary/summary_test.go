package summary

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/junsooki/kyccapture/internal/artifact"
	"github.com/junsooki/kyccapture/internal/kyc"
)

func pngFile(t *testing.T, name string, w, h int) *artifact.File {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return &artifact.File{Name: name, MIMEType: "image/png", Data: buf.Bytes()}
}

func TestWrite(t *testing.T) {
	sig := pngFile(t, "sig.png", 200, 80)
	s := &kyc.Summary{
		Reference:   "KYC2026123456789012",
		SessionID:   "session-1",
		SubmittedAt: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
		Data: kyc.Data{
			AadharFront: pngFile(t, "front.png", 160, 100),
			AadharBack:  pngFile(t, "back.png", 161, 100),
			PANCard:     pngFile(t, "pan.png", 90, 60),
			Photo:       pngFile(t, "selfie.png", 48, 64),
			Signature:   artifact.NewDataURI("image/png", sig.Data),
		},
	}

	var buf bytes.Buffer
	if err := Write(&buf, s); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	out := buf.Bytes()
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("output does not start with a PDF header: %q", out[:8])
	}
	if got := bytes.Count(out, []byte("/Subtype /Image")); got != 5 {
		t.Errorf("embedded images = %d, want 5", got)
	}
}

func TestWrite_OnlyPresentArtifacts(t *testing.T) {
	s := &kyc.Summary{
		Reference: "KYC2026000000000002",
		Data: kyc.Data{
			PANCard: pngFile(t, "pan.png", 90, 60),
			Photo:   pngFile(t, "selfie.png", 48, 64),
		},
	}
	var buf bytes.Buffer
	if err := Write(&buf, s); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if got := bytes.Count(buf.Bytes(), []byte("/Subtype /Image")); got != 2 {
		t.Errorf("embedded images = %d, want 2", got)
	}
}

func TestWrite_BadSignature(t *testing.T) {
	s := &kyc.Summary{Reference: "KYC2026000000000001", Data: kyc.Data{Signature: "not-a-uri"}}
	if err := Write(&bytes.Buffer{}, s); err == nil {
		t.Error("Write() accepted a malformed signature")
	}
}

func TestThumbnail(t *testing.T) {
	tests := []struct {
		name         string
		w, h, limit  int
		wantW, wantH int
	}{
		{"landscape", 1200, 600, 300, 300, 150},
		{"portrait", 400, 1000, 100, 40, 100},
		{"small kept", 50, 20, 300, 50, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := image.NewRGBA(image.Rect(0, 0, tt.w, tt.h))
			got := Thumbnail(img, tt.limit).Bounds()
			if got.Dx() != tt.wantW || got.Dy() != tt.wantH {
				t.Errorf("Thumbnail() = %dx%d, want %dx%d", got.Dx(), got.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestThumbnail_FlattensTransparency(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	got := Thumbnail(img, 100).RGBAAt(5, 5)
	if got != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("transparent pixel became %v, want white", got)
	}
}
