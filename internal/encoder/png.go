package encoder

import (
	"bytes"
	"image"
	"image/png"
)

// PNGEncoder encodes images losslessly. Signatures are mostly transparent
// with a single ink colour, so BestCompression keeps data URIs small.
type PNGEncoder struct {
	enc png.Encoder
}

// NewPNGEncoder creates a PNG encoder.
func NewPNGEncoder() *PNGEncoder {
	return &PNGEncoder{enc: png.Encoder{CompressionLevel: png.BestCompression}}
}

func (e *PNGEncoder) Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.enc.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *PNGEncoder) MIMEType() string  { return "image/png" }
func (e *PNGEncoder) Extension() string { return "png" }
