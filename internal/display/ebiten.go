package display

import (
	"encoding/json"
	"image"
	"image/color"
	"io/fs"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/junsooki/kyccapture/internal/input"
	"github.com/junsooki/kyccapture/internal/raster"
)

var background = color.RGBA{R: 245, G: 245, B: 247, A: 255}

// Options configures a Window.
type Options struct {
	Title string
	// OnInput receives pointer events as JSON in logical viewport units.
	OnInput InputCallback
	// OnDensity is called whenever the device scale factor changes.
	OnDensity func(density float64)
	// Status returns the text overlay.
	Status func() string
	// Keys maps key presses to actions.
	Keys map[ebiten.Key]func()
	// OnDrop receives files dropped onto the window.
	OnDrop func(name string, data []byte)
}

// Window renders the active view using Ebitengine and captures input.
type Window struct {
	opts Options

	mu      sync.Mutex
	view    View
	quit    bool
	density float64

	ebitenImage *ebiten.Image
	pointer     pointerState
	touchIDs    []ebiten.TouchID
}

// NewWindow creates an Ebitengine-based window.
func NewWindow(opts Options) *Window {
	if opts.Title == "" {
		opts.Title = "KYC Capture"
	}
	return &Window{opts: opts, density: 1}
}

// SetView switches what the window shows. A nil view shows only the status.
func (w *Window) SetView(v View) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.view = v
}

// Close ends the game loop at the next tick.
func (w *Window) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.quit = true
}

// Run starts the Ebitengine game loop. Must be called from the main goroutine.
func (w *Window) Run() error {
	ebiten.SetWindowSize(1280, 720)
	ebiten.SetWindowTitle(w.opts.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(w)
}

// --- ebiten.Game interface ---

func (w *Window) Update() error {
	w.mu.Lock()
	quit := w.quit
	w.mu.Unlock()
	if quit {
		return ebiten.Termination
	}

	for k, action := range w.opts.Keys {
		if inpututil.IsKeyJustPressed(k) {
			action()
		}
	}
	w.capturePointer()
	w.captureDrops()
	return nil
}

func (w *Window) Draw(screen *ebiten.Image) {
	screen.Fill(background)

	w.mu.Lock()
	view := w.view
	density := w.density
	w.mu.Unlock()

	if view != nil {
		if img := view.Image(); img != nil {
			w.drawImage(screen, img, view, density)
		}
	}
	if w.opts.Status != nil {
		ebitenutil.DebugPrint(screen, w.opts.Status())
	}
}

func (w *Window) drawImage(screen *ebiten.Image, img *image.RGBA, view View, density float64) {
	iw, ih := img.Bounds().Dx(), img.Bounds().Dy()
	if iw == 0 || ih == 0 {
		return
	}
	if w.ebitenImage == nil ||
		w.ebitenImage.Bounds().Dx() != iw ||
		w.ebitenImage.Bounds().Dy() != ih {
		if w.ebitenImage != nil {
			w.ebitenImage.Deallocate()
		}
		w.ebitenImage = ebiten.NewImage(iw, ih)
	}
	w.ebitenImage.WritePixels(img.Pix)

	sw, sh := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())
	op := &ebiten.DrawImageOptions{}

	if pv, ok := view.(PointerView); ok {
		// Unscaled and centred: the image is already at physical resolution.
		offX := float64(int((sw - float64(iw)) / 2))
		offY := float64(int((sh - float64(ih)) / 2))
		op.GeoM.Translate(offX, offY)
		screen.DrawImage(w.ebitenImage, op)
		pv.SetOrigin(raster.Pt(offX/density, offY/density))
		return
	}

	scale, offsetX, offsetY := aspectFitTransform(sw, sh, float64(iw), float64(ih))
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(offsetX, offsetY)
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(w.ebitenImage, op)
}

// Layout renders at physical resolution so HiDPI content stays sharp.
func (w *Window) Layout(outsideWidth, outsideHeight int) (int, int) {
	s := ebiten.Monitor().DeviceScaleFactor()
	if s <= 0 {
		s = 1
	}
	w.mu.Lock()
	changed := s != w.density
	w.density = s
	w.mu.Unlock()
	if changed && w.opts.OnDensity != nil {
		w.opts.OnDensity(s)
	}
	return int(float64(outsideWidth) * s), int(float64(outsideHeight) * s)
}

// --- Input capture ---

func (w *Window) capturePointer() {
	w.mu.Lock()
	density := w.density
	w.mu.Unlock()

	mx, my := ebiten.CursorPosition()
	ww, wh := ebiten.WindowSize()
	x, y := float64(mx)/density, float64(my)/density

	snap := pointerSnapshot{
		X:        x,
		Y:        y,
		Inside:   x >= 0 && y >= 0 && x < float64(ww) && y < float64(wh),
		Pressed:  inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft),
		Released: inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft),
	}

	w.touchIDs = ebiten.AppendTouchIDs(w.touchIDs[:0])
	for _, id := range w.touchIDs {
		tx, ty := ebiten.TouchPosition(id)
		snap.Touches = append(snap.Touches, input.Touch{
			ID: int(id),
			X:  float64(tx) / density,
			Y:  float64(ty) / density,
		})
	}
	snap.TouchStarted = len(inpututil.AppendJustPressedTouchIDs(nil)) > 0
	snap.TouchEnded = len(inpututil.AppendJustReleasedTouchIDs(nil)) > 0

	for _, ev := range w.pointer.events(snap) {
		w.sendInput(ev)
	}
}

func (w *Window) captureDrops() {
	files := ebiten.DroppedFiles()
	if files == nil || w.opts.OnDrop == nil {
		return
	}
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := fs.ReadFile(files, e.Name())
		if err != nil {
			continue
		}
		w.opts.OnDrop(e.Name(), data)
	}
}

func (w *Window) sendInput(e input.Event) {
	if w.opts.OnInput == nil {
		return
	}
	data, err := json.Marshal(e)
	if err != nil {
		return
	}
	w.opts.OnInput(data)
}
