package main

import (
	"context"
	"encoding/json"
	"image/color"
	"log"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/gogpu/gg"
	"github.com/pion/webrtc/v4"

	"github.com/junsooki/kyccapture/internal/capture"
	"github.com/junsooki/kyccapture/internal/config"
	"github.com/junsooki/kyccapture/internal/discovery"
	"github.com/junsooki/kyccapture/internal/encoder"
	"github.com/junsooki/kyccapture/internal/peer"
	"github.com/junsooki/kyccapture/internal/signaling"
	"github.com/junsooki/kyccapture/internal/transport"
)

// tints tell the two facings apart on the test card.
var tints = map[string]color.Color{
	"user":        color.RGBA{R: 36, G: 52, B: 96, A: 255},
	"environment": color.RGBA{R: 30, G: 80, B: 52, A: 255},
}

// viewerSession is one viewer's stream.
type viewerSession struct {
	peer     *peer.Host
	capturer *capture.PatternCapturer
	once     sync.Once
}

func (s *viewerSession) close() {
	s.once.Do(func() {
		s.capturer.Stop()
		s.peer.Close()
	})
}

func main() {
	cfg := config.ParseCameraHostFlags()

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	gg.SetLogger(logger)

	log.Printf("Camera host starting")
	log.Printf("  Host ID:    %s", cfg.HostID)
	log.Printf("  Signaling:  %s", cfg.SignalingURL)
	log.Printf("  Frames:     %dx%d @ %d fps, quality %d", cfg.Width, cfg.Height, cfg.FPS, cfg.Quality)
	log.Printf("  Facings:    %v", cfg.Facings)

	if cfg.Listen != "" {
		mux := http.NewServeMux()
		mux.Handle("/ws", signaling.NewServer(logger))
		ln, err := net.Listen("tcp", cfg.Listen)
		if err != nil {
			log.Fatalf("signaling listen: %v", err)
		}
		srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		go func() {
			if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
				log.Fatalf("signaling server: %v", err)
			}
		}()
		defer srv.Close()
		log.Printf("Serving signaling on %s/ws", cfg.Listen)
	}

	enc := encoder.NewJPEGEncoder(cfg.Quality)

	var (
		mu       sync.Mutex
		sessions = make(map[string]*viewerSession)
		sig      *signaling.Client
	)
	drop := func(viewerID string) {
		mu.Lock()
		s := sessions[viewerID]
		delete(sessions, viewerID)
		mu.Unlock()
		if s != nil {
			s.close()
			logger.Info("viewer session closed", "viewer", viewerID)
		}
	}

	sig = signaling.NewClient(cfg.SignalingURL, cfg.HostID, signaling.ClientTypeHost, signaling.Handler{
		OnRegistered: func() {
			log.Println("Registered with signaling server")
		},
		OnOffer: func(from, facing string, payload json.RawMessage) {
			logger.Info("offer received", "viewer", from, "facing", facing)
			if cfg.Deny {
				_ = sig.SendError(from, signaling.ReasonPermissionDenied, "camera access denied on host")
				return
			}
			if !cfg.Offers(facing) {
				_ = sig.SendError(from, signaling.ReasonUnavailable, "no "+facing+" camera on this host")
				return
			}
			drop(from)

			capturer, err := capture.NewPatternCapturer(cfg.Width, cfg.Height, cfg.FPS, tints[facing])
			if err != nil {
				logger.Error("create capturer", "err", err)
				_ = sig.SendError(from, signaling.ReasonUnavailable, err.Error())
				return
			}
			hostPeer, err := peer.NewHost(sig, from, logger, func(state webrtc.PeerConnectionState) {
				if peer.Terminal(state) {
					go drop(from)
				}
			})
			if err != nil {
				logger.Error("create host peer", "err", err)
				_ = sig.SendError(from, signaling.ReasonUnavailable, err.Error())
				return
			}
			s := &viewerSession{peer: hostPeer, capturer: capturer}
			mu.Lock()
			sessions[from] = s
			mu.Unlock()

			hostPeer.Transport().OnOpen(func() {
				if err := capturer.Start(); err != nil {
					logger.Warn("capture start", "err", err)
					return
				}
				go streamFrames(capturer.Frames(), enc, hostPeer.Transport(), logger)
			})

			if err := hostPeer.HandleOffer(payload); err != nil {
				logger.Error("handle offer", "err", err)
				drop(from)
			}
		},
		OnICECandidate: func(from string, payload json.RawMessage) {
			mu.Lock()
			s := sessions[from]
			mu.Unlock()
			if s != nil {
				if err := s.peer.HandleICECandidate(payload); err != nil {
					logger.Warn("handle ICE candidate", "err", err)
				}
			}
		},
		OnHangup: drop,
		OnError: func(from, reason, msg string) {
			logger.Warn("signaling error", "from", from, "reason", reason, "message", msg)
		},
	}, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err := sig.Connect(ctx)
	cancel()
	if err != nil {
		log.Fatalf("signaling connect: %v", err)
	}
	defer sig.Close()

	if cfg.Advertise {
		if port := advertisedPort(cfg); port > 0 {
			mdnsServer, err := discovery.Advertise(cfg.HostID, port, cfg.SignalingURL)
			if err != nil {
				logger.Warn("mDNS advertise failed", "err", err)
			} else {
				defer mdnsServer.Shutdown()
				logger.Info("advertising over mDNS", "port", port)
			}
		}
	}

	log.Printf("Camera host ready. Share this ID with the capture app: %s", cfg.HostID)

	// Wait for interrupt.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-sig.Done():
		log.Println("Signaling connection lost")
	}

	log.Println("Shutting down...")
	mu.Lock()
	ids := make([]string, 0, len(sessions))
	for id := range sessions {
		ids = append(ids, id)
	}
	mu.Unlock()
	for _, id := range ids {
		_ = sig.SendHangup(id)
		drop(id)
	}
}

// advertisedPort is the port browsers should associate with this host.
func advertisedPort(cfg *config.CameraHostConfig) int {
	if cfg.Listen != "" {
		if _, p, err := net.SplitHostPort(cfg.Listen); err == nil {
			if n, err := strconv.Atoi(p); err == nil {
				return n
			}
		}
	}
	u, err := url.Parse(cfg.SignalingURL)
	if err != nil {
		return 0
	}
	n, _ := strconv.Atoi(u.Port())
	return n
}

func streamFrames(frames <-chan *capture.Frame, enc encoder.Encoder, t transport.FrameSender, logger *slog.Logger) {
	for frame := range frames {
		data, err := enc.Encode(frame.Image)
		if err != nil {
			logger.Warn("encode frame", "err", err)
			continue
		}
		if err := t.SendFrame(data); err != nil {
			continue
		}
	}
}
