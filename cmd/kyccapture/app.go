package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/junsooki/kyccapture/internal/artifact"
	"github.com/junsooki/kyccapture/internal/camera"
	"github.com/junsooki/kyccapture/internal/config"
	"github.com/junsooki/kyccapture/internal/decoder"
	"github.com/junsooki/kyccapture/internal/display"
	"github.com/junsooki/kyccapture/internal/kyc"
	"github.com/junsooki/kyccapture/internal/signature"
	"github.com/junsooki/kyccapture/internal/summary"
)

// app glues the wizard, camera session and signature pad to the window.
type app struct {
	cfg     *config.CaptureConfig
	logger  *slog.Logger
	wizard  *kyc.Wizard
	session *camera.Session
	pad     *signature.Pad
	window  *display.Window

	mu      sync.Mutex
	notice  string
	preview struct {
		file *artifact.File
		img  *image.RGBA
	}
}

func (a *app) windowOptions() display.Options {
	return display.Options{
		Title: "Secure KYC Verification",
		OnInput: func(data []byte) {
			if a.wizard.Step() != 4 || a.wizard.Complete() {
				return
			}
			if err := a.pad.HandleJSON(data); err != nil {
				a.logger.Debug("pointer event", "err", err)
			}
		},
		OnDensity: func(density float64) {
			if a.pad.HasContent() {
				return
			}
			if err := a.pad.Resize(float64(a.cfg.PadWidth), float64(a.cfg.PadHeight), density); err != nil {
				a.logger.Warn("resize signature pad", "err", err)
			}
		},
		OnDrop: a.drop,
		Status: a.status,
		Keys: map[ebiten.Key]func(){
			ebiten.KeyEnter:     a.next,
			ebiten.KeyBackspace: a.previous,
			ebiten.KeyC:         a.startCamera,
			ebiten.KeySpace:     a.capture,
			ebiten.KeyF:         a.switchFacing,
			ebiten.KeyX:         a.session.Cancel,
			ebiten.KeyR:         a.removeCurrent,
			ebiten.KeyS:         a.saveSignature,
			ebiten.KeyDelete:    a.pad.Clear,
			ebiten.KeyEscape:    func() { a.window.Close() },
		},
	}
}

func (a *app) setNotice(format string, args ...any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.notice = fmt.Sprintf(format, args...)
}

// sync points the window at the view for the current step.
func (a *app) sync() {
	if a.wizard.Complete() {
		a.window.SetView(nil)
		return
	}
	switch a.wizard.Step() {
	case 3:
		a.window.SetView(display.ViewFunc(a.photoImage))
	case 4:
		a.window.SetView(a.pad)
	default:
		a.window.SetView(display.ViewFunc(a.documentImage))
	}
}

func (a *app) next() {
	sum, err := a.wizard.Next()
	switch {
	case errors.Is(err, kyc.ErrCannotProceed):
		a.setNotice("Complete this step first")
		return
	case err != nil:
		a.setNotice("%v", err)
		return
	}
	a.session.Cancel()
	a.setNotice("")
	a.sync()
	if sum == nil {
		return
	}
	if err := summary.WriteFile(a.cfg.Output, sum); err != nil {
		a.logger.Error("write summary", "err", err)
		a.setNotice("Could not write summary: %v", err)
		return
	}
	a.setNotice("Summary written to %s", a.cfg.Output)
}

func (a *app) previous() {
	if err := a.wizard.Previous(); err != nil {
		return
	}
	a.session.Cancel()
	a.sync()
}

func (a *app) startCamera() {
	if a.wizard.Step() != 3 || a.wizard.Data().Photo != nil {
		return
	}
	if a.cfg.HostID == "" {
		a.setNotice("No camera host; drop a photo onto the window instead")
		return
	}
	if err := a.session.Start(context.Background()); err != nil {
		a.setNotice("%v", err)
	}
}

func (a *app) capture() {
	if !a.session.CanCapture() {
		return
	}
	if err := a.session.Capture(); err != nil {
		a.setNotice("Capture failed: %v", err)
	}
}

func (a *app) switchFacing() {
	if err := a.session.SwitchFacing(context.Background()); err != nil {
		a.setNotice("%v", err)
	}
}

func (a *app) saveSignature() {
	if a.wizard.Step() != 4 || !a.pad.CanSave() {
		return
	}
	if err := a.pad.Save(); err != nil {
		a.setNotice("Could not save signature: %v", err)
		return
	}
	a.setNotice("Signature saved")
}

// removeCurrent discards the newest artifact of the current step.
func (a *app) removeCurrent() {
	switch a.wizard.Step() {
	case 1:
		d := a.wizard.Data()
		if d.AadharBack != nil {
			a.wizard.RemoveFile(kyc.SlotAadharBack)
		} else {
			a.wizard.RemoveFile(kyc.SlotAadharFront)
		}
	case 2:
		a.wizard.RemoveFile(kyc.SlotPANCard)
	case 3:
		a.session.Remove()
	}
}

// drop uploads a file dropped onto the window into the current step.
func (a *app) drop(name string, data []byte) {
	var err error
	switch a.wizard.Step() {
	case 1:
		slot := kyc.SlotAadharFront
		if a.wizard.Data().AadharFront != nil {
			slot = kyc.SlotAadharBack
		}
		err = a.wizard.UploadDocument(slot, name, data)
	case 2:
		err = a.wizard.UploadDocument(kyc.SlotPANCard, name, data)
	case 3:
		err = a.session.Upload(name, data)
	default:
		return
	}
	if err != nil {
		a.setNotice("%s: %v", name, err)
		return
	}
	a.setNotice("Uploaded %s", name)
}

func (a *app) onCameraState(st camera.State) {
	if f, ok := st.(camera.Failed); ok {
		a.setNotice("%s", f.Message)
	}
}

func (a *app) documentImage() *image.RGBA {
	d := a.wizard.Data()
	f := d.AadharBack
	if f == nil {
		f = d.AadharFront
	}
	if a.wizard.Step() == 2 {
		f = d.PANCard
	}
	return a.decoded(f)
}

func (a *app) photoImage() *image.RGBA {
	if frame, ok := a.session.Preview(); ok {
		return frame.Image
	}
	return a.decoded(a.wizard.Data().Photo)
}

// decoded returns f's pixels, decoding each file once.
func (a *app) decoded(f *artifact.File) *image.RGBA {
	if f == nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.preview.file == f {
		return a.preview.img
	}
	img, err := decoder.NewImageDecoder().Decode(f.Data)
	if err != nil {
		a.logger.Warn("preview decode", "name", f.Name, "err", err)
	}
	a.preview.file, a.preview.img = f, img
	return img
}

func (a *app) status() string {
	var b strings.Builder
	b.WriteString("Secure KYC Verification\n\n")

	if sum := a.wizard.Summary(); sum != nil {
		b.WriteString("Verification Complete!\n")
		b.WriteString("Your KYC documents have been submitted successfully\n\n")
		fmt.Fprintf(&b, "Reference Number: %s\n", sum.Reference)
	} else {
		for _, s := range a.wizard.Steps() {
			mark := " "
			switch {
			case s.Completed:
				mark = "x"
			case s.Current:
				mark = ">"
			}
			fmt.Fprintf(&b, "[%s] %d. %s\n", mark, s.ID, s.Label)
		}
		b.WriteString("\n")
		b.WriteString(a.stepHelp())
		b.WriteString("\n[Enter] ")
		if a.wizard.Step() == kyc.StepCount {
			b.WriteString("Submit")
		} else {
			b.WriteString("Next")
		}
		b.WriteString("  [Backspace] Previous  [Esc] Quit\n")
	}

	a.mu.Lock()
	notice := a.notice
	a.mu.Unlock()
	if notice != "" {
		fmt.Fprintf(&b, "\n%s\n", notice)
	}
	return b.String()
}

func (a *app) stepHelp() string {
	d := a.wizard.Data()
	switch a.wizard.Step() {
	case 1:
		return fmt.Sprintf("Drop the front, then the back of your Aadhar card.\n  Front: %s\n  Back:  %s\n[R] Remove\n",
			describe(d.AadharFront), describe(d.AadharBack))
	case 2:
		return fmt.Sprintf("Drop an image of your PAN card (PNG, JPG up to %d MB).\n  PAN: %s\n[R] Remove\n",
			a.cfg.MaxUploadMB, describe(d.PANCard))
	case 3:
		st := a.session.State()
		return fmt.Sprintf("Take a selfie or drop a photo.\n  Camera: %s (%s)\n  Photo:  %s\n[C] Start camera  [Space] Capture  [F] Switch camera  [X] Cancel  [R] Retake\n",
			st.Name(), a.session.Facing(), describe(d.Photo))
	case 4:
		saved := "not saved"
		if !d.Signature.Empty() {
			saved = "saved"
		}
		return fmt.Sprintf("Sign inside the box with mouse or touch.\n  Signature: %s\n[S] Save  [Delete] Clear\n", saved)
	}
	return ""
}

func describe(f *artifact.File) string {
	if f == nil {
		return "missing"
	}
	return fmt.Sprintf("%s (%.2f KB)", f.Name, f.SizeKB())
}
