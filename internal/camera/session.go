package camera

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/junsooki/kyccapture/internal/artifact"
	"github.com/junsooki/kyccapture/internal/capture"
	"github.com/junsooki/kyccapture/internal/decoder"
	"github.com/junsooki/kyccapture/internal/encoder"
	"github.com/junsooki/kyccapture/internal/raster"
)

// Config wires a Session to its platform and collaborators.
type Config struct {
	Platform Platform
	// Facing is the initial direction; defaults to FacingUser.
	Facing Facing

	// OnCapture receives every captured or uploaded photo.
	OnCapture func(*artifact.File)
	// OnRemove is called when the user discards the current photo.
	OnRemove func()

	// MaxUploadBytes caps uploaded photos; defaults to artifact.DefaultMaxUpload.
	MaxUploadBytes int

	Logger     *slog.Logger
	Encoder    encoder.Encoder
	Namer      *artifact.Namer
	NewSurface raster.Factory
}

// heldStream tracks one acquired stream so it is released exactly once.
// stop is closed when the session lets go of it.
type heldStream struct {
	stream Stream
	stop   chan struct{}
}

// Session is the photo capture state machine. All methods are safe for
// concurrent use; acquisition completes on its own goroutine.
type Session struct {
	cfg    Config
	logger *slog.Logger

	mu        sync.Mutex
	state     State
	facing    Facing
	gen       uint64
	held      *heldStream
	cancel    context.CancelFunc
	closed    bool
	photo     *artifact.File
	listeners []func(State)
	pending   []State
}

// NewSession creates an idle session.
func NewSession(cfg Config) *Session {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if !cfg.Facing.Valid() {
		cfg.Facing = FacingUser
	}
	if cfg.Encoder == nil {
		cfg.Encoder = encoder.NewJPEGEncoder(encoder.DefaultPhotoQuality)
	}
	if cfg.Namer == nil {
		cfg.Namer = artifact.NewNamer("selfie", cfg.Encoder.Extension())
	}
	if cfg.NewSurface == nil {
		cfg.NewSurface = raster.DefaultFactory
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = artifact.DefaultMaxUpload
	}
	return &Session{
		cfg:    cfg,
		logger: cfg.Logger.With("component", "camera"),
		state:  Idle{},
		facing: cfg.Facing,
	}
}

// Subscribe registers fn to observe every state transition.
func (s *Session) Subscribe(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Facing() Facing {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.facing
}

// Photo returns the last captured or uploaded photo, if any.
func (s *Session) Photo() *artifact.File {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.photo
}

// Preview returns the newest frame of the live stream, if one is held.
func (s *Session) Preview() (*capture.Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.held == nil {
		return nil, false
	}
	return s.held.stream.LatestFrame()
}

// CanCapture reports whether Capture would freeze a frame.
func (s *Session) CanCapture() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.state.(Active)
	return ok
}

// Start requests a stream for the current facing. It returns once the
// request is issued; the outcome arrives as a transition to Active or Failed.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	switch s.state.(type) {
	case Idle, Failed:
	default:
		st := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: start from %s", ErrInvalidState, st.Name())
	}
	s.acquireLocked(ctx, s.detachLocked())
	s.mu.Unlock()
	s.flush()
	return nil
}

// acquireLocked issues a new request. prev, if any, is released on the
// acquisition goroutine before the platform is asked for a stream.
func (s *Session) acquireLocked(ctx context.Context, prev *heldStream) {
	s.gen++
	gen := s.gen
	actx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	constraints := DefaultConstraints(s.facing)
	s.setStateLocked(Acquiring{Facing: s.facing})
	s.logger.Debug("acquiring stream", "facing", s.facing, "gen", gen)

	go func() {
		s.release(prev)
		stream, err := s.cfg.Platform.AcquireStream(actx, constraints)
		s.complete(gen, stream, err)
	}()
}

func (s *Session) complete(gen uint64, stream Stream, err error) {
	s.mu.Lock()
	_, acquiring := s.state.(Acquiring)
	if s.closed || gen != s.gen || !acquiring {
		s.mu.Unlock()
		if stream != nil {
			s.logger.Debug("releasing superseded stream", "stream", stream.ID(), "gen", gen)
			if rerr := s.cfg.Platform.ReleaseStream(stream); rerr != nil {
				s.logger.Warn("release superseded stream", "err", rerr)
			}
		}
		return
	}
	s.stopAcquireLocked()
	if err != nil {
		s.logger.Warn("camera acquisition failed", "err", err, "permission_denied", errors.Is(err, ErrPermissionDenied))
		s.setStateLocked(Failed{Err: err, Message: FailureMessage})
	} else {
		h := &heldStream{stream: stream, stop: make(chan struct{})}
		s.held = h
		s.logger.Info("camera active", "stream", stream.ID(), "facing", s.facing)
		s.setStateLocked(Active{Facing: s.facing, StreamID: stream.ID()})
		if in, ok := stream.(Interruptible); ok {
			go s.watch(h, in)
		}
	}
	s.mu.Unlock()
	s.flush()
}

// watch moves the session to Failed if a held stream ends on its own.
func (s *Session) watch(h *heldStream, in Interruptible) {
	select {
	case <-h.stop:
		return
	case <-in.Done():
	}

	s.mu.Lock()
	if s.held != h {
		s.mu.Unlock()
		return
	}
	s.detachLocked()
	err := in.Err()
	if !errors.Is(err, ErrPermissionDenied) && !errors.Is(err, ErrDeviceUnavailable) {
		err = fmt.Errorf("%w: stream ended: %v", ErrDeviceUnavailable, err)
	}
	s.logger.Warn("camera stream lost", "stream", h.stream.ID(), "err", err)
	s.setStateLocked(Failed{Err: err, Message: FailureMessage})
	s.mu.Unlock()

	s.release(h)
	s.flush()
}

// Capture freezes the latest frame as a JPEG, releases the stream and hands
// the photo to OnCapture. Outside Active it does nothing.
func (s *Session) Capture() error {
	s.mu.Lock()
	active, ok := s.state.(Active)
	if !ok || s.held == nil {
		s.mu.Unlock()
		return nil
	}
	frame, ok := s.held.stream.LatestFrame()
	if !ok || frame.Image == nil {
		s.mu.Unlock()
		return ErrNoFrame
	}
	s.setStateLocked(Capturing{})

	data, err := s.encodeFrame(frame)
	if err != nil {
		s.setStateLocked(active)
		s.mu.Unlock()
		s.flush()
		s.logger.Error("capture photo", "err", err)
		return fmt.Errorf("capture photo: %w", err)
	}

	name, at := s.cfg.Namer.Next()
	photo := &artifact.File{
		Name:      name,
		MIMEType:  s.cfg.Encoder.MIMEType(),
		Data:      data,
		CreatedAt: at,
	}
	s.photo = photo
	h := s.detachLocked()
	s.setStateLocked(Idle{})
	onCapture := s.cfg.OnCapture
	s.mu.Unlock()
	s.release(h)
	s.flush()

	s.logger.Info("photo captured", "name", photo.Name, "bytes", len(data))
	if onCapture != nil {
		onCapture(photo)
	}
	return nil
}

// encodeFrame paints the frame at its native resolution and encodes it.
func (s *Session) encodeFrame(frame *capture.Frame) ([]byte, error) {
	w, h := frame.Size()
	surface, err := s.cfg.NewSurface(float64(w), float64(h), 1, raster.DefaultStrokeStyle())
	if err != nil {
		return nil, err
	}
	defer surface.Close()
	surface.PaintFrame(frame.Image)
	return surface.Encode(s.cfg.Encoder)
}

// Cancel abandons an active or pending stream without producing a photo.
func (s *Session) Cancel() {
	s.mu.Lock()
	switch s.state.(type) {
	case Active, Acquiring:
	default:
		s.mu.Unlock()
		return
	}
	s.gen++
	s.stopAcquireLocked()
	h := s.detachLocked()
	s.setStateLocked(Idle{})
	s.mu.Unlock()
	s.release(h)
	s.flush()
	s.logger.Debug("camera cancelled")
}

// SwitchFacing toggles between the front and rear camera. While a stream is
// held or pending it is replaced by exactly one new request.
func (s *Session) SwitchFacing(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.facing = s.facing.Toggle()
	switch s.state.(type) {
	case Active, Acquiring:
		s.stopAcquireLocked()
		s.acquireLocked(ctx, s.detachLocked())
	}
	s.mu.Unlock()
	s.flush()
	return nil
}

// Upload accepts a photo file instead of a camera capture. It is offered
// while no stream is live, including after a failed acquisition.
func (s *Session) Upload(name string, data []byte) error {
	s.mu.Lock()
	switch s.state.(type) {
	case Idle, Failed:
	default:
		st := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: upload while %s", ErrInvalidState, st.Name())
	}
	s.mu.Unlock()

	if len(data) > s.cfg.MaxUploadBytes {
		return fmt.Errorf("upload photo: %w: %d bytes", artifact.ErrTooLarge, len(data))
	}

	_, format, err := decoder.Config(data)
	if err != nil {
		return fmt.Errorf("upload photo: %w", err)
	}
	photo := &artifact.File{
		Name:      name,
		MIMEType:  "image/" + format,
		Data:      data,
		CreatedAt: s.now(),
	}

	s.mu.Lock()
	s.photo = photo
	onCapture := s.cfg.OnCapture
	s.mu.Unlock()

	s.logger.Info("photo uploaded", "name", name, "bytes", len(data))
	if onCapture != nil {
		onCapture(photo)
	}
	return nil
}

// Remove discards the current photo so another can be taken.
func (s *Session) Remove() {
	s.mu.Lock()
	if s.photo == nil {
		s.mu.Unlock()
		return
	}
	s.photo = nil
	onRemove := s.cfg.OnRemove
	s.mu.Unlock()

	if onRemove != nil {
		onRemove()
	}
}

// Close releases everything the session holds. Later calls are no-ops.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.gen++
	s.stopAcquireLocked()
	h := s.detachLocked()
	if _, idle := s.state.(Idle); !idle {
		s.setStateLocked(Idle{})
	}
	s.mu.Unlock()
	err := s.release(h)
	s.flush()
	return err
}

func (s *Session) now() time.Time {
	if s.cfg.Namer.Now != nil {
		return s.cfg.Namer.Now()
	}
	return time.Now()
}

func (s *Session) stopAcquireLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// detachLocked hands the held stream to the caller, who must pass it to
// release once the lock is dropped.
func (s *Session) detachLocked() *heldStream {
	h := s.held
	s.held = nil
	if h != nil {
		close(h.stop)
	}
	return h
}

// release returns a detached stream to the platform. Call without s.mu.
func (s *Session) release(h *heldStream) error {
	if h == nil {
		return nil
	}
	if err := s.cfg.Platform.ReleaseStream(h.stream); err != nil {
		s.logger.Warn("release stream", "stream", h.stream.ID(), "err", err)
		return fmt.Errorf("release stream: %w", err)
	}
	return nil
}

func (s *Session) setStateLocked(st State) {
	s.state = st
	s.pending = append(s.pending, st)
}

// flush delivers queued transitions outside the lock.
func (s *Session) flush() {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	for _, st := range pending {
		for _, fn := range listeners {
			fn(st)
		}
	}
}
