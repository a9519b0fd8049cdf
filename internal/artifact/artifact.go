// Package artifact holds the finished, immutable results handed from the
// capture components to the wizard.
package artifact

import (
	"errors"
	"time"
)

// DefaultMaxUpload is the largest file a user may upload in place of a
// capture.
const DefaultMaxUpload = 5 << 20

// ErrTooLarge is returned when an upload exceeds its size limit.
var ErrTooLarge = errors.New("file exceeds the upload limit")

// File is a named binary image, the result of a camera capture or a
// document upload. Data must not be modified once the File has been handed
// to a callback.
type File struct {
	Name      string
	MIMEType  string
	Data      []byte
	CreatedAt time.Time
}

// Size returns the payload length in bytes.
func (f *File) Size() int {
	if f == nil {
		return 0
	}
	return len(f.Data)
}

// SizeKB formats the payload size the way the upload cards show it.
func (f *File) SizeKB() float64 {
	return float64(f.Size()) / 1024
}
