package decoder

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// ErrUnsupportedFormat is returned for payloads that are not PNG, JPEG or WebP.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// ImageDecoder sniffs the payload and decodes PNG, JPEG and WebP.
type ImageDecoder struct{}

func NewImageDecoder() *ImageDecoder {
	return &ImageDecoder{}
}

func (d *ImageDecoder) Decode(data []byte) (*image.RGBA, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, ErrUnsupportedFormat
		}
		return nil, err
	}
	return toRGBA(img), nil
}

// Config reads dimensions and the format name without decoding pixels.
func Config(data []byte) (image.Config, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return image.Config{}, "", ErrUnsupportedFormat
		}
		return image.Config{}, "", fmt.Errorf("read image header: %w", err)
	}
	return cfg, format, nil
}
