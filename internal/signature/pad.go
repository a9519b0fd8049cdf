// Package signature implements the freehand signature pad: pointer input is
// rasterized onto a density-scaled surface and exported as a PNG data URI.
package signature

import (
	"fmt"
	"image"
	"io"
	"log/slog"
	"sync"

	"github.com/junsooki/kyccapture/internal/artifact"
	"github.com/junsooki/kyccapture/internal/decoder"
	"github.com/junsooki/kyccapture/internal/encoder"
	"github.com/junsooki/kyccapture/internal/input"
	"github.com/junsooki/kyccapture/internal/raster"
)

// Config describes a pad. Width and Height are logical units; Density is the
// device pixel ratio of the display hosting the pad.
type Config struct {
	Width   float64
	Height  float64
	Density float64
	// Origin is the pad's top-left corner in viewport coordinates.
	Origin raster.Point
	Style  raster.StrokeStyle

	// Saved is a previously exported signature, painted before any input.
	Saved artifact.DataURI
	// OnSave receives each exported signature.
	OnSave func(artifact.DataURI)

	Logger     *slog.Logger
	NewSurface raster.Factory
	Encoder    encoder.Encoder
}

// Pad is a signature surface. It is safe for concurrent use.
type Pad struct {
	mu         sync.Mutex
	cfg        Config
	surface    raster.Surface
	origin     raster.Point
	drawing    bool
	hasContent bool
	last       raster.Point
	stroke     []raster.Point
	strokes    [][]raster.Point
	saved      artifact.DataURI

	// trackMu serializes events through tracker; it is taken before mu.
	trackMu sync.Mutex
	tracker *input.Tracker
	logger  *slog.Logger
}

var _ input.StrokeHandler = (*Pad)(nil)

// New allocates the pad's surface and paints cfg.Saved if present.
func New(cfg Config) (*Pad, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.NewSurface == nil {
		cfg.NewSurface = raster.DefaultFactory
	}
	if cfg.Encoder == nil {
		cfg.Encoder = encoder.NewPNGEncoder()
	}
	if cfg.Style.Width <= 0 || cfg.Style.Color == nil {
		cfg.Style = raster.DefaultStrokeStyle()
	}

	surface, err := cfg.NewSurface(cfg.Width, cfg.Height, cfg.Density, cfg.Style)
	if err != nil {
		return nil, fmt.Errorf("signature pad: %w", err)
	}
	p := &Pad{
		cfg:     cfg,
		surface: surface,
		origin:  cfg.Origin,
		saved:   cfg.Saved,
		logger:  cfg.Logger.With("component", "signature"),
	}
	p.tracker = input.NewTracker(p)

	if !cfg.Saved.Empty() {
		if err := p.preload(cfg.Saved); err != nil {
			p.logger.Warn("saved signature not restored", "err", err)
		}
	}
	return p, nil
}

func (p *Pad) preload(uri artifact.DataURI) error {
	_, data, err := uri.Decode()
	if err != nil {
		return err
	}
	img, err := decoder.NewImageDecoder().Decode(data)
	if err != nil {
		return err
	}
	p.surface.PaintImage(img)
	p.hasContent = true
	return nil
}

// Begin starts a stroke at the given viewport position.
func (p *Pad) Begin(x, y float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pt := raster.Pt(x, y).Sub(p.origin)
	p.finishLocked()
	p.drawing = true
	p.hasContent = true
	p.last = pt
	p.stroke = []raster.Point{pt}
}

// Extend paints a segment from the previous point to the given viewport
// position. It does nothing unless a stroke is active.
func (p *Pad) Extend(x, y float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.drawing {
		return
	}
	pt := raster.Pt(x, y).Sub(p.origin)
	if err := p.surface.PaintLine(p.last, pt); err != nil {
		p.logger.Error("paint segment", "err", err)
	}
	p.last = pt
	p.stroke = append(p.stroke, pt)
}

// End finishes the active stroke. Calling it with no stroke active is a
// no-op.
func (p *Pad) End() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.finishLocked()
}

func (p *Pad) finishLocked() {
	if !p.drawing {
		return
	}
	p.drawing = false
	// A tap with no movement leaves a dot.
	if len(p.stroke) == 1 {
		if err := p.surface.PaintDot(p.stroke[0]); err != nil {
			p.logger.Error("paint dot", "err", err)
		}
	}
	p.strokes = append(p.strokes, p.stroke)
	p.stroke = nil
}

// Clear erases the pad. It is a no-op on an empty pad.
func (p *Pad) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.hasContent {
		return
	}
	p.surface.Clear()
	p.hasContent = false
	p.drawing = false
	p.stroke = nil
	p.strokes = nil
	p.logger.Debug("cleared")
}

// Save encodes the pad and passes the data URI to OnSave. An empty pad
// produces nothing. The pad keeps its content after saving.
func (p *Pad) Save() error {
	p.mu.Lock()
	if !p.hasContent {
		p.mu.Unlock()
		return nil
	}
	data, err := p.surface.Encode(p.cfg.Encoder)
	if err != nil {
		p.mu.Unlock()
		p.logger.Error("export signature", "err", err)
		return fmt.Errorf("save signature: %w", err)
	}
	uri := artifact.NewDataURI(p.cfg.Encoder.MIMEType(), data)
	p.saved = uri
	onSave := p.cfg.OnSave
	p.mu.Unlock()

	p.logger.Info("signature saved", "bytes", len(data))
	if onSave != nil {
		onSave(uri)
	}
	return nil
}

// HasContent reports whether anything has been drawn or restored.
func (p *Pad) HasContent() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasContent
}

// CanSave and CanClear gate the pad's controls.
func (p *Pad) CanSave() bool  { return p.HasContent() }
func (p *Pad) CanClear() bool { return p.HasContent() }

// IsDrawing reports whether a stroke is in progress.
func (p *Pad) IsDrawing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.drawing
}

// Saved returns the last exported data URI, or the one the pad was created
// with.
func (p *Pad) Saved() artifact.DataURI {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.saved
}

// HandleEvent routes a pointer event through the mouse/touch tracker.
func (p *Pad) HandleEvent(ev *input.Event) error {
	p.trackMu.Lock()
	defer p.trackMu.Unlock()
	return p.tracker.Handle(ev)
}

// HandleJSON decodes and routes a wire-format pointer event.
func (p *Pad) HandleJSON(data []byte) error {
	ev, err := input.Decode(data)
	if err != nil {
		return err
	}
	return p.HandleEvent(ev)
}

// SetOrigin moves the pad within the viewport.
func (p *Pad) SetOrigin(origin raster.Point) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.origin = origin
}

// Resize reallocates the surface. Existing strokes are dropped.
func (p *Pad) Resize(width, height, density float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	surface, err := p.cfg.NewSurface(width, height, density, p.cfg.Style)
	if err != nil {
		return fmt.Errorf("resize signature pad: %w", err)
	}
	if err := p.surface.Close(); err != nil {
		p.logger.Warn("close surface", "err", err)
	}
	p.surface = surface
	p.cfg.Width, p.cfg.Height, p.cfg.Density = width, height, density
	p.hasContent = false
	p.drawing = false
	p.stroke = nil
	p.strokes = nil
	return nil
}

// Image returns a snapshot of the physical buffer.
func (p *Pad) Image() *image.RGBA {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.surface.Image()
}

// PhysicalSize returns the buffer size in pixels.
func (p *Pad) PhysicalSize() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.surface.PhysicalSize()
}

// Strokes returns the completed strokes in pad-local logical units.
func (p *Pad) Strokes() [][]raster.Point {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([][]raster.Point, len(p.strokes))
	for i, s := range p.strokes {
		out[i] = append([]raster.Point(nil), s...)
	}
	return out
}

func (p *Pad) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.surface.Close()
}
