// Package capture produces camera frames and holds the most recent one for
// consumers that sample rather than stream.
package capture

import (
	"image"
	"sync/atomic"
	"time"
)

// Frame is one decoded video frame at its native resolution.
type Frame struct {
	Image     *image.RGBA
	Timestamp time.Time
	Seq       uint64
}

// Size returns the frame's pixel dimensions.
func (f *Frame) Size() (int, int) {
	if f == nil || f.Image == nil {
		return 0, 0
	}
	b := f.Image.Bounds()
	return b.Dx(), b.Dy()
}

// Capturer produces frames on a channel until stopped.
type Capturer interface {
	Start() error
	Stop()
	Frames() <-chan *Frame
}

// Latest holds the newest frame seen on a feed.
type Latest struct {
	frame atomic.Pointer[Frame]
	count atomic.Uint64
}

// Store replaces the held frame, assigning it the next sequence number.
func (l *Latest) Store(f *Frame) {
	if f == nil {
		return
	}
	f.Seq = l.count.Add(1)
	l.frame.Store(f)
}

// Load returns the held frame, or false before the first Store.
func (l *Latest) Load() (*Frame, bool) {
	f := l.frame.Load()
	return f, f != nil
}

// Count is the number of frames stored so far.
func (l *Latest) Count() uint64 { return l.count.Load() }
