package raster

import (
	"fmt"
	"image"
	"math"

	"github.com/gogpu/gg"

	"github.com/junsooki/kyccapture/internal/encoder"
)

// Canvas is a Surface drawn with gg's software rasterizer.
type Canvas struct {
	dc       *gg.Context
	logicalW float64
	logicalH float64
	density  float64
	style    StrokeStyle
}

var _ Surface = (*Canvas)(nil)

// New allocates a canvas of the given logical size. The physical buffer is
// rounded to whole pixels; density <= 0 is treated as 1.
func New(logicalW, logicalH, density float64, style StrokeStyle) (*Canvas, error) {
	if density <= 0 {
		density = 1
	}
	pw, ph := physical(logicalW, density), physical(logicalH, density)
	if pw <= 0 || ph <= 0 {
		return nil, fmt.Errorf("%w: %gx%g at density %g", ErrInvalidSize, logicalW, logicalH, density)
	}
	if style.Width <= 0 {
		style.Width = DefaultStrokeStyle().Width
	}
	if style.Color == nil {
		style.Color = DefaultStrokeStyle().Color
	}
	c := &Canvas{
		dc:       gg.NewContext(pw, ph),
		logicalW: logicalW,
		logicalH: logicalH,
		density:  density,
		style:    style,
	}
	c.configure()
	return c, nil
}

// NewFrame allocates a canvas whose logical and physical sizes match, for
// freezing video frames at their native resolution.
func NewFrame(width, height int) (*Canvas, error) {
	return New(float64(width), float64(height), 1, DefaultStrokeStyle())
}

func physical(logical, density float64) int {
	return int(math.Round(logical * density))
}

func (c *Canvas) configure() {
	c.dc.Identity()
	c.dc.Scale(c.density, c.density)
	c.dc.SetLineWidth(c.style.Width)
	c.dc.SetLineCap(gg.LineCapRound)
	c.dc.SetLineJoin(gg.LineJoinRound)
	c.dc.SetColor(c.style.Color)
}

func (c *Canvas) LogicalSize() (float64, float64) { return c.logicalW, c.logicalH }
func (c *Canvas) PhysicalSize() (int, int)        { return c.dc.Width(), c.dc.Height() }
func (c *Canvas) Density() float64                { return c.density }

func (c *Canvas) PaintLine(from, to Point) error {
	c.dc.MoveTo(from.X, from.Y)
	c.dc.LineTo(to.X, to.Y)
	return c.dc.Stroke()
}

func (c *Canvas) PaintDot(p Point) error {
	c.dc.DrawCircle(p.X, p.Y, c.style.Width/2)
	return c.dc.Fill()
}

func (c *Canvas) PaintImage(img image.Image) {
	c.dc.DrawImageEx(gg.ImageBufFromImage(img), gg.DrawImageOptions{
		DstWidth:      c.logicalW,
		DstHeight:     c.logicalH,
		Interpolation: gg.InterpBilinear,
	})
}

func (c *Canvas) PaintFrame(img image.Image) {
	w, h := c.PhysicalSize()
	c.dc.Push()
	c.dc.Identity()
	c.dc.DrawImageEx(gg.ImageBufFromImage(img), gg.DrawImageOptions{
		DstWidth:      float64(w),
		DstHeight:     float64(h),
		Interpolation: gg.InterpNearest,
	})
	c.dc.Pop()
}

// Clear erases every physical pixel to transparent.
func (c *Canvas) Clear() {
	c.dc.ClearPath()
	c.dc.Clear()
}

// Blank reports whether every pixel is fully transparent.
func (c *Canvas) Blank() bool {
	img := c.Image()
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			return false
		}
	}
	return true
}

// Image returns a copy of the physical buffer.
func (c *Canvas) Image() *image.RGBA {
	if rgba, ok := c.dc.Image().(*image.RGBA); ok {
		return rgba
	}
	src := c.dc.Image()
	b := src.Bounds()
	rgba := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			rgba.Set(x, y, src.At(x, y))
		}
	}
	return rgba
}

// Encode serializes the full physical buffer.
func (c *Canvas) Encode(enc encoder.Encoder) ([]byte, error) {
	if err := c.dc.FlushGPU(); err != nil {
		return nil, fmt.Errorf("%w: flush: %v", ErrEncode, err)
	}
	data, err := enc.Encode(c.Image())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrEncode, enc.MIMEType(), err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s produced no data", ErrEncode, enc.MIMEType())
	}
	return data, nil
}

// Resize reallocates the buffer for a new logical size or density.
// Existing content is not preserved.
func (c *Canvas) Resize(logicalW, logicalH, density float64) error {
	if density <= 0 {
		density = 1
	}
	pw, ph := physical(logicalW, density), physical(logicalH, density)
	if err := c.dc.Resize(pw, ph); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSize, err)
	}
	c.logicalW, c.logicalH, c.density = logicalW, logicalH, density
	c.dc.Clear()
	c.configure()
	return nil
}

func (c *Canvas) Close() error {
	return c.dc.Close()
}
