// Package raster provides the drawable pixel buffer shared by the signature
// pad and the photo capture. Callers work in logical units; the surface maps
// them onto a physical buffer of logical size × device pixel density.
package raster

import (
	"errors"
	"image"
	"image/color"

	"github.com/junsooki/kyccapture/internal/encoder"
)

var (
	// ErrInvalidSize is returned when a surface would have no pixels.
	ErrInvalidSize = errors.New("raster: surface size must be positive")
	// ErrEncode wraps failures turning the buffer into bytes.
	ErrEncode = errors.New("raster: encode failed")
)

// Point is a position in logical units.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// StrokeStyle is the fixed pen used for freehand input. Caps and joins are
// always round.
type StrokeStyle struct {
	Width float64
	Color color.Color
}

// DefaultStrokeStyle is a 2 unit black pen.
func DefaultStrokeStyle() StrokeStyle {
	return StrokeStyle{Width: 2, Color: color.Black}
}

// Surface is a mutable 2D pixel buffer.
type Surface interface {
	LogicalSize() (w, h float64)
	PhysicalSize() (w, h int)
	Density() float64

	// PaintLine strokes a single segment between two logical points.
	PaintLine(from, to Point) error
	// PaintDot marks a single logical point with a pen-sized disc.
	PaintDot(p Point) error
	// PaintImage draws img stretched over the full logical area.
	PaintImage(img image.Image)
	// PaintFrame draws img at physical resolution, ignoring density.
	PaintFrame(img image.Image)

	Clear()
	Blank() bool
	Image() *image.RGBA
	Encode(enc encoder.Encoder) ([]byte, error)
	Close() error
}

// Factory allocates a surface. Components take one so tests can substitute
// their own buffers.
type Factory func(logicalW, logicalH, density float64, style StrokeStyle) (Surface, error)

// DefaultFactory allocates gg-backed canvases.
func DefaultFactory(logicalW, logicalH, density float64, style StrokeStyle) (Surface, error) {
	return New(logicalW, logicalH, density, style)
}
