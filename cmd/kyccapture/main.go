package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gogpu/gg"

	"github.com/junsooki/kyccapture/internal/camera"
	"github.com/junsooki/kyccapture/internal/config"
	"github.com/junsooki/kyccapture/internal/discovery"
	"github.com/junsooki/kyccapture/internal/display"
	"github.com/junsooki/kyccapture/internal/kyc"
	"github.com/junsooki/kyccapture/internal/remotecam"
	"github.com/junsooki/kyccapture/internal/signature"
)

func main() {
	cfg := config.ParseCaptureFlags()

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	gg.SetLogger(logger)

	if cfg.HostID == "" {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Discover)
		host, err := discovery.Browse(ctx, cfg.Discover)
		cancel()
		if err != nil {
			log.Printf("No camera host found (%v); photo upload only", err)
		} else {
			log.Printf("Found camera host %s at %s", host.ID, host.Addr)
			cfg.HostID = host.ID
			cfg.SignalingURL = host.SignalingURL
		}
	}

	log.Printf("KYC capture starting")
	log.Printf("  Signaling:   %s", cfg.SignalingURL)
	log.Printf("  Camera host: %s", cfg.HostID)
	log.Printf("  Summary:     %s", cfg.Output)

	wizard := kyc.NewWizard(kyc.Options{
		Logger:         logger,
		MaxUploadBytes: cfg.MaxUploadMB << 20,
	})

	for _, doc := range []struct {
		slot kyc.Slot
		path string
	}{
		{kyc.SlotAadharFront, cfg.AadharFront},
		{kyc.SlotAadharBack, cfg.AadharBack},
		{kyc.SlotPANCard, cfg.PANCard},
	} {
		if doc.path == "" {
			continue
		}
		data, err := os.ReadFile(doc.path)
		if err != nil {
			log.Fatalf("read %s: %v", doc.slot, err)
		}
		if err := wizard.UploadDocument(doc.slot, filepath.Base(doc.path), data); err != nil {
			log.Fatalf("upload %s: %v", doc.slot, err)
		}
	}

	session := camera.NewSession(camera.Config{
		Platform: remotecam.New(remotecam.Config{
			SignalingURL:      cfg.SignalingURL,
			HostID:            cfg.HostID,
			FirstFrameTimeout: cfg.FirstFrameTimeout,
			Logger:            logger,
		}),
		Facing:         camera.Facing(cfg.Facing),
		OnCapture:      wizard.SetPhoto,
		OnRemove:       wizard.RemovePhoto,
		MaxUploadBytes: cfg.MaxUploadMB << 20,
		Logger:         logger,
	})
	defer session.Close()

	if cfg.Photo != "" {
		data, err := os.ReadFile(cfg.Photo)
		if err != nil {
			log.Fatalf("read photo: %v", err)
		}
		if err := session.Upload(filepath.Base(cfg.Photo), data); err != nil {
			log.Fatalf("upload photo: %v", err)
		}
	}

	pad, err := signature.New(signature.Config{
		Width:   float64(cfg.PadWidth),
		Height:  float64(cfg.PadHeight),
		Density: 1,
		OnSave:  wizard.SetSignature,
		Logger:  logger,
	})
	if err != nil {
		log.Fatalf("signature pad: %v", err)
	}
	defer pad.Close()

	a := &app{
		cfg:     cfg,
		logger:  logger,
		wizard:  wizard,
		session: session,
		pad:     pad,
	}
	a.window = display.NewWindow(a.windowOptions())
	session.Subscribe(a.onCameraState)
	a.sync()

	// Ebitengine RunGame must be on the main goroutine (macOS requirement).
	if err := a.window.Run(); err != nil {
		log.Fatalf("display: %v", err)
	}
}
