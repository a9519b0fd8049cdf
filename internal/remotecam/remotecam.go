// Package remotecam implements camera.Platform on top of a camera host
// reached through signaling and WebRTC.
package remotecam

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"

	"github.com/junsooki/kyccapture/internal/camera"
	"github.com/junsooki/kyccapture/internal/capture"
	"github.com/junsooki/kyccapture/internal/decoder"
	"github.com/junsooki/kyccapture/internal/peer"
	"github.com/junsooki/kyccapture/internal/signaling"
)

var errReleased = fmt.Errorf("%w: stream released", camera.ErrDeviceUnavailable)

// DefaultFirstFrameTimeout bounds how long an acquisition waits for the
// host to deliver its first frame.
const DefaultFirstFrameTimeout = 10 * time.Second

type Config struct {
	SignalingURL      string
	HostID            string
	FirstFrameTimeout time.Duration
	Logger            *slog.Logger
}

// Platform acquires streams from a single camera host.
type Platform struct {
	cfg    Config
	logger *slog.Logger
}

var _ camera.Platform = (*Platform)(nil)

func New(cfg Config) *Platform {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.FirstFrameTimeout <= 0 {
		cfg.FirstFrameTimeout = DefaultFirstFrameTimeout
	}
	return &Platform{
		cfg:    cfg,
		logger: cfg.Logger.With("component", "remotecam", "host", cfg.HostID),
	}
}

// Classify maps a host refusal onto the camera error taxonomy.
func Classify(reason, msg string) error {
	if msg == "" {
		msg = reason
	}
	switch reason {
	case signaling.ReasonPermissionDenied:
		return fmt.Errorf("%w: %s", camera.ErrPermissionDenied, msg)
	default:
		return fmt.Errorf("%w: %s", camera.ErrDeviceUnavailable, msg)
	}
}

// AcquireStream connects to the host and returns once the first frame has
// been decoded.
func (p *Platform) AcquireStream(ctx context.Context, c camera.Constraints) (camera.Stream, error) {
	s := newStream(p.cfg.HostID, p.logger)
	viewerID := "viewer-" + s.id[:8]

	registered := make(chan struct{}, 1)
	sig := signaling.NewClient(p.cfg.SignalingURL, viewerID, signaling.ClientTypeViewer, signaling.Handler{
		OnRegistered: func() {
			select {
			case registered <- struct{}{}:
			default:
			}
		},
		OnAnswer: func(from string, payload json.RawMessage) {
			if err := s.viewer.HandleAnswer(payload); err != nil {
				s.fail(fmt.Errorf("%w: answer: %v", camera.ErrDeviceUnavailable, err))
			}
		},
		OnICECandidate: func(from string, payload json.RawMessage) {
			if err := s.viewer.HandleICECandidate(payload); err != nil {
				s.logger.Warn("handle ICE candidate", "err", err)
			}
		},
		OnError: func(from, reason, msg string) {
			s.fail(Classify(reason, msg))
		},
		OnHangup: func(from string) {
			s.fail(fmt.Errorf("%w: host hung up", camera.ErrDeviceUnavailable))
		},
		OnHostDisconnected: func(hostID string) {
			if hostID == s.hostID {
				s.fail(fmt.Errorf("%w: host went offline", camera.ErrDeviceUnavailable))
			}
		},
	}, p.cfg.Logger)
	s.sig = sig

	viewer, err := peer.NewViewer(sig, p.cfg.HostID, p.cfg.Logger, func(state webrtc.PeerConnectionState) {
		if peer.Terminal(state) {
			s.fail(fmt.Errorf("%w: peer connection %s", camera.ErrDeviceUnavailable, state))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", camera.ErrDeviceUnavailable, err)
	}
	s.viewer = viewer
	viewer.Transport().OnFrame(s.receive)

	timer := time.NewTimer(p.cfg.FirstFrameTimeout)
	defer timer.Stop()

	if err := sig.Connect(ctx); err != nil {
		s.close()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", camera.ErrDeviceUnavailable, err)
	}

	if err := s.wait(ctx, registered, timer.C); err != nil {
		s.close()
		return nil, err
	}
	p.logger.Debug("requesting stream", "facing", c.Facing, "ideal_width", c.IdealWidth, "ideal_height", c.IdealHeight)
	if err := viewer.Connect(string(c.Facing)); err != nil {
		s.close()
		return nil, fmt.Errorf("%w: offer: %v", camera.ErrDeviceUnavailable, err)
	}
	if err := s.wait(ctx, s.ready, timer.C); err != nil {
		s.close()
		return nil, err
	}

	go func() {
		select {
		case <-sig.Done():
			s.fail(fmt.Errorf("%w: signaling closed", camera.ErrDeviceUnavailable))
		case <-s.done:
		}
	}()

	p.logger.Info("remote stream ready", "stream", s.id, "facing", c.Facing)
	return s, nil
}

// ReleaseStream hangs up on the host. Releasing twice is a no-op.
func (p *Platform) ReleaseStream(cs camera.Stream) error {
	s, ok := cs.(*Stream)
	if !ok {
		return fmt.Errorf("remotecam: foreign stream %T", cs)
	}
	s.close()
	return nil
}

// Stream is a live feed from a camera host.
type Stream struct {
	id     string
	hostID string
	logger *slog.Logger
	dec    decoder.Decoder
	latest capture.Latest

	sig    *signaling.Client
	viewer *peer.Viewer

	ready     chan struct{}
	readyOnce sync.Once
	done      chan struct{}
	failOnce  sync.Once
	err       error
	closeOnce sync.Once
}

var (
	_ camera.Stream        = (*Stream)(nil)
	_ camera.Interruptible = (*Stream)(nil)
)

func newStream(hostID string, logger *slog.Logger) *Stream {
	id := uuid.NewString()
	return &Stream{
		id:     id,
		hostID: hostID,
		logger: logger.With("stream", id),
		dec:    decoder.NewJPEGDecoder(),
		ready:  make(chan struct{}),
		done:   make(chan struct{}),
	}
}

func (s *Stream) ID() string { return s.id }

func (s *Stream) LatestFrame() (*capture.Frame, bool) {
	return s.latest.Load()
}

// Received counts decoded frames.
func (s *Stream) Received() uint64 { return s.latest.Count() }

func (s *Stream) receive(data []byte) {
	img, err := s.dec.Decode(data)
	if err != nil {
		s.logger.Debug("drop undecodable frame", "err", err)
		return
	}
	s.latest.Store(&capture.Frame{Image: img, Timestamp: time.Now()})
	s.readyOnce.Do(func() { close(s.ready) })
}

// Done is closed when the feed is lost: the host hung up or refused, the
// peer connection failed, or signaling dropped.
func (s *Stream) Done() <-chan struct{} { return s.done }

// Err reports why Done was closed, or nil while the feed is live.
func (s *Stream) Err() error {
	select {
	case <-s.done:
		return s.err
	default:
		return nil
	}
}

// fail records the first error and closes Done.
func (s *Stream) fail(err error) {
	s.failOnce.Do(func() {
		s.err = err
		close(s.done)
	})
}

func (s *Stream) wait(ctx context.Context, until <-chan struct{}, timeout <-chan time.Time) error {
	var done <-chan struct{}
	if s.sig != nil {
		done = s.sig.Done()
	}
	select {
	case <-until:
		return nil
	case <-s.done:
		return s.err
	case <-ctx.Done():
		return ctx.Err()
	case <-timeout:
		return fmt.Errorf("%w: no frame from %s", camera.ErrDeviceUnavailable, s.hostID)
	case <-done:
		return fmt.Errorf("%w: signaling closed", camera.ErrDeviceUnavailable)
	}
}

func (s *Stream) close() {
	s.closeOnce.Do(func() {
		if s.sig != nil {
			_ = s.sig.SendHangup(s.hostID)
		}
		if s.viewer != nil {
			if err := s.viewer.Close(); err != nil {
				s.logger.Debug("close viewer", "err", err)
			}
		}
		if s.sig != nil {
			s.sig.Close()
		}
		s.fail(errReleased)
		s.logger.Debug("stream released")
	})
}
