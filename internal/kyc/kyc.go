// Package kyc is the four step verification wizard: Aadhar card, PAN card,
// photo and signature. It owns the collected artifacts and decides when the
// user may move on.
package kyc

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/junsooki/kyccapture/internal/artifact"
	"github.com/junsooki/kyccapture/internal/decoder"
)

// DefaultMaxUpload is the largest document accepted by UploadDocument.
const DefaultMaxUpload = artifact.DefaultMaxUpload

var (
	ErrNotImage      = errors.New("only image files are accepted")
	ErrTooLarge      = artifact.ErrTooLarge
	ErrCannotProceed = errors.New("current step is incomplete")
	ErrUnknownSlot   = errors.New("unknown document slot")
	ErrAlreadyDone   = errors.New("verification already submitted")
	ErrFirstStep     = errors.New("already at the first step")
)

// Slot names a file the wizard collects.
type Slot int

const (
	SlotAadharFront Slot = iota
	SlotAadharBack
	SlotPANCard
	SlotPhoto
)

// Document describes an upload slot as presented to the user.
type Document struct {
	Slot        Slot
	Label       string
	Title       string
	Description string
}

// Documents lists the file slots in summary order.
var Documents = []Document{
	{SlotAadharFront, "Aadhar Front", "Aadhar Card - Front Side", "Upload a clear image of the front side of your Aadhar card"},
	{SlotAadharBack, "Aadhar Back", "Aadhar Card - Back Side", "Upload a clear image of the back side of your Aadhar card"},
	{SlotPANCard, "PAN Card", "PAN Card", "Upload a clear image of your PAN card"},
	{SlotPhoto, "Photo", "Photo", "Take a selfie or upload a recent photo"},
}

func (s Slot) String() string {
	for _, d := range Documents {
		if d.Slot == s {
			return d.Label
		}
	}
	return fmt.Sprintf("slot(%d)", int(s))
}

// Step is one entry of the progress indicator.
type Step struct {
	ID        int
	Label     string
	Completed bool
	Current   bool
}

var stepLabels = []string{"Aadhar Card", "PAN Card", "Photo", "Signature"}

// StepCount is the number of wizard steps.
const StepCount = 4

// Data is everything collected so far.
type Data struct {
	AadharFront *artifact.File
	AadharBack  *artifact.File
	PANCard     *artifact.File
	Photo       *artifact.File
	Signature   artifact.DataURI
}

func (d *Data) slot(s Slot) (**artifact.File, error) {
	switch s {
	case SlotAadharFront:
		return &d.AadharFront, nil
	case SlotAadharBack:
		return &d.AadharBack, nil
	case SlotPANCard:
		return &d.PANCard, nil
	case SlotPhoto:
		return &d.Photo, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownSlot, int(s))
}

// File returns the artifact held in slot s, or nil.
func (d Data) File(s Slot) *artifact.File {
	p, err := d.slot(s)
	if err != nil {
		return nil
	}
	return *p
}

// Summary is produced on submit.
type Summary struct {
	Reference   string
	SessionID   string
	SubmittedAt time.Time
	Data        Data
}

type Options struct {
	Logger         *slog.Logger
	MaxUploadBytes int
	Now            func() time.Time
	// Digits draws the random part of the reference number.
	Digits func() int64
}

// Wizard tracks the current step and the collected artifacts. It is safe
// for concurrent use.
type Wizard struct {
	opts      Options
	logger    *slog.Logger
	sessionID string

	mu      sync.Mutex
	step    int
	data    Data
	summary *Summary
}

func NewWizard(opts Options) *Wizard {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUpload
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Digits == nil {
		opts.Digits = func() int64 { return rand.Int64N(1_000_000_000_000) }
	}
	id := uuid.NewString()
	return &Wizard{
		opts:      opts,
		logger:    opts.Logger.With("component", "kyc", "session", id),
		sessionID: id,
		step:      1,
	}
}

func (w *Wizard) SessionID() string { return w.sessionID }

// Step returns the current step, 1 through StepCount.
func (w *Wizard) Step() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Steps returns the progress indicator entries.
func (w *Wizard) Steps() []Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	steps := make([]Step, len(stepLabels))
	for i, label := range stepLabels {
		id := i + 1
		steps[i] = Step{ID: id, Label: label, Completed: w.step > id, Current: w.step == id}
	}
	return steps
}

// Data returns a copy of the collected artifacts.
func (w *Wizard) Data() Data {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.data
}

// CanProceed reports whether the current step has everything it needs.
func (w *Wizard) CanProceed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.canProceedLocked()
}

func (w *Wizard) canProceedLocked() bool {
	if w.summary != nil {
		return false
	}
	switch w.step {
	case 1:
		return w.data.AadharFront != nil && w.data.AadharBack != nil
	case 2:
		return w.data.PANCard != nil
	case 3:
		return w.data.Photo != nil
	case 4:
		return !w.data.Signature.Empty()
	}
	return false
}

// Next advances one step, or submits from the last step.
func (w *Wizard) Next() (*Summary, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.summary != nil {
		return nil, ErrAlreadyDone
	}
	if !w.canProceedLocked() {
		return nil, fmt.Errorf("%w: step %d", ErrCannotProceed, w.step)
	}
	if w.step < StepCount {
		w.step++
		w.logger.Debug("advanced", "step", w.step)
		return nil, nil
	}
	return w.submitLocked(), nil
}

// Previous moves back one step.
func (w *Wizard) Previous() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.summary != nil {
		return ErrAlreadyDone
	}
	if w.step <= 1 {
		return ErrFirstStep
	}
	w.step--
	return nil
}

func (w *Wizard) submitLocked() *Summary {
	now := w.opts.Now()
	w.summary = &Summary{
		Reference:   fmt.Sprintf("KYC%d%012d", now.Year(), w.opts.Digits()%1_000_000_000_000),
		SessionID:   w.sessionID,
		SubmittedAt: now,
		Data:        w.data,
	}
	w.logger.Info("verification submitted", "reference", w.summary.Reference)
	return w.summary
}

// Summary returns the submitted summary, or nil before submit.
func (w *Wizard) Summary() *Summary {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.summary
}

// Complete reports whether the wizard has been submitted.
func (w *Wizard) Complete() bool { return w.Summary() != nil }

// SetFile stores f in slot s. A nil f empties the slot.
func (w *Wizard) SetFile(s Slot, f *artifact.File) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.summary != nil {
		return ErrAlreadyDone
	}
	p, err := w.data.slot(s)
	if err != nil {
		return err
	}
	*p = f
	if f != nil {
		w.logger.Info("document stored", "slot", s, "name", f.Name, "kb", fmt.Sprintf("%.2f", f.SizeKB()))
	} else {
		w.logger.Info("document removed", "slot", s)
	}
	return nil
}

// RemoveFile empties slot s.
func (w *Wizard) RemoveFile(s Slot) error {
	return w.SetFile(s, nil)
}

// UploadDocument validates a picked file and stores it in slot s. Only
// images within the upload limit are accepted.
func (w *Wizard) UploadDocument(s Slot, name string, data []byte) error {
	if len(data) > w.opts.MaxUploadBytes {
		return fmt.Errorf("%w: %s is %d bytes", ErrTooLarge, name, len(data))
	}
	_, format, err := decoder.Config(data)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNotImage, name, err)
	}
	return w.SetFile(s, &artifact.File{
		Name:      name,
		MIMEType:  "image/" + format,
		Data:      data,
		CreatedAt: w.opts.Now(),
	})
}

// SetPhoto and RemovePhoto plug into the camera session callbacks.
func (w *Wizard) SetPhoto(f *artifact.File) {
	if err := w.SetFile(SlotPhoto, f); err != nil {
		w.logger.Warn("photo not stored", "err", err)
	}
}

func (w *Wizard) RemovePhoto() {
	w.SetPhoto(nil)
}

// SetSignature plugs into the signature pad's save callback.
func (w *Wizard) SetSignature(uri artifact.DataURI) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.summary != nil {
		w.logger.Warn("signature not stored", "err", ErrAlreadyDone)
		return
	}
	w.data.Signature = uri
	w.logger.Info("signature stored", "bytes", len(uri))
}
