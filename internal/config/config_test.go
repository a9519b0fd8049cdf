package config

import (
	"flag"
	"io"
	"strings"
	"testing"
	"time"
)

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestParseCaptureFlags_Defaults(t *testing.T) {
	cfg, err := parseCaptureFlags(newFlagSet(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Facing != "user" || cfg.MaxUploadMB != 5 || cfg.FirstFrameTimeout != 10*time.Second {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.Output != "kyc-summary.pdf" || cfg.PadWidth != 600 || cfg.PadHeight != 200 {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestParseCaptureFlags_Clamps(t *testing.T) {
	cfg, err := parseCaptureFlags(newFlagSet(), []string{
		"-facing", "sideways",
		"-pad-width", "10",
		"-max-upload", "0",
		"-frame-timeout", "-1s",
		"-host", "cam-1",
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Facing != "user" || cfg.PadWidth != 600 || cfg.MaxUploadMB != 5 || cfg.FirstFrameTimeout != 10*time.Second {
		t.Errorf("clamped = %+v", cfg)
	}
	if cfg.HostID != "cam-1" {
		t.Errorf("HostID = %q", cfg.HostID)
	}
}

func TestParseCaptureFlags_EmptyOutput(t *testing.T) {
	if _, err := parseCaptureFlags(newFlagSet(), []string{"-out", ""}); err == nil {
		t.Error("empty -out accepted")
	}
}

func TestParseCameraHostFlags(t *testing.T) {
	cfg, err := parseCameraHostFlags(newFlagSet(), []string{"-fps", "500", "-quality", "0", "-facings", "environment, ", "-width", "-3"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.FPS != 15 || cfg.Quality != 70 || cfg.Width != 1280 || cfg.Height != 720 {
		t.Errorf("clamped = %+v", cfg)
	}
	if !strings.HasPrefix(cfg.HostID, "cam-") || len(cfg.HostID) != len("cam-")+8 {
		t.Errorf("HostID = %q", cfg.HostID)
	}
	if cfg.Offers("user") || !cfg.Offers("environment") {
		t.Errorf("Facings = %v", cfg.Facings)
	}
}

func TestParseCameraHostFlags_UnknownFacing(t *testing.T) {
	if _, err := parseCameraHostFlags(newFlagSet(), []string{"-facings", "user,rear"}); err == nil {
		t.Error("unknown facing accepted")
	}
}
