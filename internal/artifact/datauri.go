package artifact

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedDataURI is returned when a string is not a base64 data URI.
var ErrMalformedDataURI = errors.New("malformed data uri")

// DataURI is a self-contained image string of the form
// "data:<mime>;base64,<payload>".
type DataURI string

// NewDataURI wraps data as a base64 data URI with the given MIME type.
func NewDataURI(mimeType string, data []byte) DataURI {
	return DataURI("data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data))
}

// Decode splits the URI into its MIME type and decoded payload.
func (u DataURI) Decode() (mimeType string, data []byte, err error) {
	s := string(u)
	if !strings.HasPrefix(s, "data:") {
		return "", nil, ErrMalformedDataURI
	}
	header, payload, ok := strings.Cut(s[len("data:"):], ",")
	if !ok {
		return "", nil, ErrMalformedDataURI
	}
	mimeType, ok = strings.CutSuffix(header, ";base64")
	if !ok {
		return "", nil, fmt.Errorf("%w: only base64 payloads are supported", ErrMalformedDataURI)
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrMalformedDataURI, err)
	}
	return mimeType, data, nil
}

// Empty reports whether the URI holds nothing.
func (u DataURI) Empty() bool { return u == "" }
