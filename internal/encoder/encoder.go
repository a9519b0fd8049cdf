package encoder

import "image"

// Encoder encodes an image into bytes of a single, fixed format.
type Encoder interface {
	Encode(img image.Image) ([]byte, error)
	MIMEType() string
	Extension() string
}
