// Package display is the desktop window of the capture app. It shows the
// camera preview or the signature pad and turns mouse and touch input into
// wire-format pointer events.
package display

import (
	"image"

	"github.com/junsooki/kyccapture/internal/raster"
)

// InputCallback is called when the user generates an input event.
type InputCallback func(eventJSON []byte)

// View provides the image the window shows.
type View interface {
	Image() *image.RGBA
}

// PointerView is drawn unscaled so pointer positions map onto it directly.
// The window reports where it placed the view, in logical viewport units.
type PointerView interface {
	View
	SetOrigin(origin raster.Point)
}

// ViewFunc adapts a function to View.
type ViewFunc func() *image.RGBA

func (f ViewFunc) Image() *image.RGBA { return f() }
