package capture

import (
	"fmt"
	"image"
	"image/color"
	"sync"
	"time"

	"github.com/gogpu/gg"
)

// PatternCapturer renders a moving test card. It stands in for a physical
// camera on hosts without one.
type PatternCapturer struct {
	width   int
	height  int
	fps     int
	tint    color.Color
	frameCh chan *Frame
	stopCh  chan struct{}

	mu      sync.Mutex
	running bool
	dc      *gg.Context
	tick    int
}

// NewPatternCapturer creates a test card source of the given size. tint
// colors the background so different facings are distinguishable.
func NewPatternCapturer(width, height, fps int, tint color.Color) (*PatternCapturer, error) {
	if fps <= 0 || fps > 60 {
		return nil, fmt.Errorf("fps must be 1-60, got %d", fps)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", width, height)
	}
	if tint == nil {
		tint = color.RGBA{R: 40, G: 40, B: 48, A: 255}
	}
	return &PatternCapturer{
		width:   width,
		height:  height,
		fps:     fps,
		tint:    tint,
		frameCh: make(chan *Frame, 2),
		stopCh:  make(chan struct{}),
	}, nil
}

func (c *PatternCapturer) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return fmt.Errorf("already running")
	}
	c.running = true
	c.dc = gg.NewContext(c.width, c.height)
	go c.loop()
	return nil
}

func (c *PatternCapturer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.running = false
	close(c.stopCh)
}

func (c *PatternCapturer) Frames() <-chan *Frame {
	return c.frameCh
}

func (c *PatternCapturer) loop() {
	ticker := time.NewTicker(time.Second / time.Duration(c.fps))
	defer ticker.Stop()
	defer close(c.frameCh)
	defer func() {
		c.mu.Lock()
		c.dc.Close()
		c.dc = nil
		c.mu.Unlock()
	}()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			f := c.Render()
			select {
			case c.frameCh <- f:
			default:
			}
		}
	}
}

// Render draws the next card without waiting for the ticker.
func (c *PatternCapturer) Render() *Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dc == nil {
		c.dc = gg.NewContext(c.width, c.height)
	}

	w, h := float64(c.width), float64(c.height)
	dc := c.dc
	dc.SetColor(c.tint)
	dc.DrawRectangle(0, 0, w, h)
	_ = dc.Fill()

	// Vertical bars, one per primary.
	bars := []color.Color{
		color.RGBA{R: 220, A: 255},
		color.RGBA{G: 200, A: 255},
		color.RGBA{B: 220, A: 255},
	}
	bw := w / float64(2*len(bars))
	for i, col := range bars {
		dc.SetColor(col)
		dc.DrawRectangle(float64(2*i)*bw+bw/2, h/4, bw, h/2)
		_ = dc.Fill()
	}

	// A white dot sweeping left to right marks motion.
	steps := c.fps * 2
	x := w * float64(c.tick%steps) / float64(steps)
	dc.SetColor(color.White)
	dc.DrawCircle(x, h*7/8, h/16)
	_ = dc.Fill()
	c.tick++

	_ = dc.FlushGPU()
	img, ok := dc.Image().(*image.RGBA)
	if !ok {
		img = image.NewRGBA(image.Rect(0, 0, c.width, c.height))
	}
	return &Frame{Image: img, Timestamp: time.Now()}
}
