// Package camera drives a live camera feed through acquisition, preview and
// capture, and freezes the current frame into a JPEG artifact.
package camera

import (
	"context"
	"errors"

	"github.com/junsooki/kyccapture/internal/capture"
)

var (
	// ErrPermissionDenied is returned by platforms when the user or host
	// refuses camera access.
	ErrPermissionDenied = errors.New("camera permission denied")
	// ErrDeviceUnavailable is returned when no camera can serve the request.
	ErrDeviceUnavailable = errors.New("camera unavailable")
	// ErrClosed is returned by operations on a closed session.
	ErrClosed = errors.New("camera session closed")
	// ErrInvalidState is returned when an operation does not apply to the
	// current state.
	ErrInvalidState = errors.New("camera: operation not valid in current state")
	// ErrNoFrame is returned by Capture when the feed has not produced a
	// frame yet.
	ErrNoFrame = errors.New("camera: no frame available")
)

// FailureMessage is shown to the user whenever acquisition fails.
const FailureMessage = "Unable to access camera. Please check permissions."

// Facing selects the front or rear camera.
type Facing string

const (
	FacingUser        Facing = "user"
	FacingEnvironment Facing = "environment"
)

// Toggle returns the opposite direction.
func (f Facing) Toggle() Facing {
	if f == FacingUser {
		return FacingEnvironment
	}
	return FacingUser
}

func (f Facing) Valid() bool {
	return f == FacingUser || f == FacingEnvironment
}

// Constraints describes the stream a session asks for.
type Constraints struct {
	Facing      Facing
	IdealWidth  int
	IdealHeight int
}

// DefaultConstraints asks for 1280x720 from the given direction.
func DefaultConstraints(f Facing) Constraints {
	return Constraints{Facing: f, IdealWidth: 1280, IdealHeight: 720}
}

// Stream is a live feed handed out by a Platform.
type Stream interface {
	ID() string
	// LatestFrame returns the most recent decoded frame.
	LatestFrame() (*capture.Frame, bool)
}

// Interruptible is implemented by streams that can end on their own, for
// example when a remote host hangs up. Done is closed once the feed is lost
// and Err then reports why.
type Interruptible interface {
	Done() <-chan struct{}
	Err() error
}

// Platform is the host capability for acquiring and releasing camera feeds.
// AcquireStream may block; it should return promptly once ctx is done.
type Platform interface {
	AcquireStream(ctx context.Context, c Constraints) (Stream, error)
	ReleaseStream(s Stream) error
}
