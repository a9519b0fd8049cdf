package config

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"
)

// CaptureConfig holds configuration for the capture app.
type CaptureConfig struct {
	SignalingURL string
	HostID       string
	Discover     time.Duration

	AadharFront string
	AadharBack  string
	PANCard     string
	Photo       string

	Facing            string
	FirstFrameTimeout time.Duration
	PadWidth          int
	PadHeight         int
	MaxUploadMB       int
	Output            string
	Debug             bool
}

// ParseCaptureFlags parses flags for the capture binary.
func ParseCaptureFlags() *CaptureConfig {
	cfg, err := parseCaptureFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return cfg
}

func parseCaptureFlags(fs *flag.FlagSet, args []string) (*CaptureConfig, error) {
	cfg := &CaptureConfig{}
	fs.StringVar(&cfg.SignalingURL, "signaling", "ws://localhost:8080/ws", "Signaling server WebSocket URL")
	fs.StringVar(&cfg.HostID, "host", "", "Camera host ID (discovered over mDNS if empty)")
	fs.DurationVar(&cfg.Discover, "discover", 3*time.Second, "How long to browse for a camera host")
	fs.StringVar(&cfg.AadharFront, "aadhar-front", "", "Image of the Aadhar card front side")
	fs.StringVar(&cfg.AadharBack, "aadhar-back", "", "Image of the Aadhar card back side")
	fs.StringVar(&cfg.PANCard, "pan", "", "Image of the PAN card")
	fs.StringVar(&cfg.Photo, "photo", "", "Photo to upload instead of using the camera")
	fs.StringVar(&cfg.Facing, "facing", "user", "Initial camera facing (user or environment)")
	fs.DurationVar(&cfg.FirstFrameTimeout, "frame-timeout", 10*time.Second, "How long to wait for the first camera frame")
	fs.IntVar(&cfg.PadWidth, "pad-width", 600, "Signature pad width in logical pixels")
	fs.IntVar(&cfg.PadHeight, "pad-height", 200, "Signature pad height in logical pixels")
	fs.IntVar(&cfg.MaxUploadMB, "max-upload", 5, "Largest accepted document in MB")
	fs.StringVar(&cfg.Output, "out", "kyc-summary.pdf", "Where to write the verification summary")
	fs.BoolVar(&cfg.Debug, "debug", false, "Enable debug logging")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate clamps values to usable ranges.
func (c *CaptureConfig) Validate() error {
	if c.Facing != "user" && c.Facing != "environment" {
		c.Facing = "user"
	}
	if c.FirstFrameTimeout <= 0 {
		c.FirstFrameTimeout = 10 * time.Second
	}
	if c.Discover <= 0 {
		c.Discover = 3 * time.Second
	}
	if c.PadWidth < 100 {
		c.PadWidth = 600
	}
	if c.PadHeight < 50 {
		c.PadHeight = 200
	}
	if c.MaxUploadMB <= 0 {
		c.MaxUploadMB = 5
	}
	if c.Output == "" {
		return fmt.Errorf("-out must not be empty")
	}
	return nil
}

// CameraHostConfig holds configuration for the camera host binary.
type CameraHostConfig struct {
	SignalingURL string
	HostID       string
	Listen       string
	Advertise    bool

	Width   int
	Height  int
	FPS     int
	Quality int
	Facings []string
	Deny    bool
	Debug   bool
}

// ParseCameraHostFlags parses flags for the camera host binary.
func ParseCameraHostFlags() *CameraHostConfig {
	cfg, err := parseCameraHostFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return cfg
}

func parseCameraHostFlags(fs *flag.FlagSet, args []string) (*CameraHostConfig, error) {
	cfg := &CameraHostConfig{}
	var facings string
	fs.StringVar(&cfg.SignalingURL, "signaling", "ws://localhost:8080/ws", "Signaling server WebSocket URL")
	fs.StringVar(&cfg.HostID, "id", "", "Host ID (auto-generated if empty)")
	fs.StringVar(&cfg.Listen, "listen", "", "Serve signaling on this address (e.g. :8080)")
	fs.BoolVar(&cfg.Advertise, "advertise", true, "Announce this host over mDNS")
	fs.IntVar(&cfg.Width, "width", 1280, "Frame width")
	fs.IntVar(&cfg.Height, "height", 720, "Frame height")
	fs.IntVar(&cfg.FPS, "fps", 15, "Target frames per second")
	fs.IntVar(&cfg.Quality, "quality", 70, "JPEG quality (1-100)")
	fs.StringVar(&facings, "facings", "user,environment", "Comma separated camera facings this host offers")
	fs.BoolVar(&cfg.Deny, "deny", false, "Refuse every request as if camera permission were denied")
	fs.BoolVar(&cfg.Debug, "debug", false, "Enable debug logging")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	for _, f := range strings.Split(facings, ",") {
		if f = strings.TrimSpace(f); f != "" {
			cfg.Facings = append(cfg.Facings, f)
		}
	}
	if cfg.HostID == "" {
		cfg.HostID = fmt.Sprintf("cam-%s", randomID())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate clamps values to usable ranges.
func (c *CameraHostConfig) Validate() error {
	if c.FPS <= 0 || c.FPS > 60 {
		c.FPS = 15
	}
	if c.Quality < 1 || c.Quality > 100 {
		c.Quality = 70
	}
	if c.Width <= 0 || c.Height <= 0 {
		c.Width, c.Height = 1280, 720
	}
	for _, f := range c.Facings {
		if f != "user" && f != "environment" {
			return fmt.Errorf("unknown facing %q", f)
		}
	}
	return nil
}

// Offers reports whether the host serves the given facing.
func (c *CameraHostConfig) Offers(facing string) bool {
	for _, f := range c.Facings {
		if f == facing {
			return true
		}
	}
	return false
}

func randomID() string {
	b := make([]byte, 4)
	rand.Read(b)
	return hex.EncodeToString(b)
}
