package transcription

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jeff-barlow-spady/transkript/pkg/logger"
)

// DefaultAcceptedFormats are passed to the recognizer without conversion
// unless the recognizer or an option says otherwise
var DefaultAcceptedFormats = []string{"wav", "caf", "m4a"}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithAcceptedFormats overrides the extensions that skip conversion
func WithAcceptedFormats(exts ...string) Option {
	return func(o *Orchestrator) {
		o.accepted = formatSet(exts)
	}
}

// WithTempDir sets the directory for converted audio
func WithTempDir(dir string) Option {
	return func(o *Orchestrator) {
		o.tempDir = dir
	}
}

// WithStateTracker makes the orchestrator report to an existing tracker
func WithStateTracker(t *StateTracker) Option {
	return func(o *Orchestrator) {
		o.state = t
	}
}

// Orchestrator runs one transcription at a time: it converts the source
// audio when needed, drives the recognizer and reduces its signals to a
// single result
type Orchestrator struct {
	recognizer Recognizer
	transcoder Transcoder
	accepted   map[string]bool
	tempDir    string
	state      *StateTracker
	busy       atomic.Bool
}

// NewOrchestrator creates an orchestrator. The transcoder may be nil when
// every input is expected in an accepted format.
func NewOrchestrator(recognizer Recognizer, transcoder Transcoder, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		recognizer: recognizer,
		transcoder: transcoder,
		tempDir:    os.TempDir(),
		state:      NewStateTracker(),
	}
	if fl, ok := recognizer.(FormatLister); ok {
		o.accepted = formatSet(fl.AcceptedFormats())
	} else {
		o.accepted = formatSet(DefaultAcceptedFormats)
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns the tracker observers subscribe to
func (o *Orchestrator) State() *StateTracker {
	return o.state
}

// Accepts reports whether files with extension ext skip conversion
func (o *Orchestrator) Accepts(ext string) bool {
	return o.accepted[extensionOf("x."+ext)]
}

// Transcribe converts and recognizes the request's audio and returns the
// final transcript. Errors are *Error values of kind RecognizerUnavailable,
// ConversionFailed or RecognitionFailed; ErrBusy is returned without any
// state change while another request is running.
func (o *Orchestrator) Transcribe(ctx context.Context, req Request) (string, error) {
	if !o.busy.CompareAndSwap(false, true) {
		return "", ErrBusy
	}
	defer o.busy.Store(false)

	if err := o.checkAvailable(ctx, req.Locale); err != nil {
		logger.Warning(logger.CategoryTranscription, "Recognizer %s not usable: %v", o.recognizer.Name(), err)
		return "", err
	}

	start := time.Now()
	o.state.begin()

	handle, err := o.prepareAudio(ctx, req)
	if err != nil {
		o.state.fail()
		logger.Error(logger.CategoryTranscription, "Audio preparation failed: %v", err)
		return "", err
	}
	defer func() {
		if err := handle.Release(); err != nil {
			logger.Warning(logger.CategoryTranscription, "Failed to remove temporary audio %s: %v", handle.Path, err)
		}
	}()

	o.state.advance(StatusTranscribing, ProgressTranscribing)

	text, err := o.recognize(ctx, handle.Path, req.Locale)
	if err != nil {
		o.state.fail()
		logger.Error(logger.CategoryTranscription, "Recognition failed: %v", err)
		return "", err
	}

	logger.Info(logger.CategoryTranscription, "Transcribed %s with %s in %v (%d characters)",
		filepath.Base(req.AudioPath), o.recognizer.Name(), time.Since(start).Round(time.Millisecond), len(text))
	return text, nil
}

func (o *Orchestrator) checkAvailable(ctx context.Context, locale string) error {
	if !o.recognizer.Supports(locale) {
		return newError(KindRecognizerUnavailable, fmt.Errorf("%w: %s has no model for %s", ErrUnsupportedLocale, o.recognizer.Name(), locale))
	}
	if !o.recognizer.IsAvailable(ctx) {
		return newError(KindRecognizerUnavailable, fmt.Errorf("%s is not available", o.recognizer.Name()))
	}
	return nil
}

// prepareAudio passes accepted formats through and converts everything
// else into a temporary file owned by the returned handle
func (o *Orchestrator) prepareAudio(ctx context.Context, req Request) (*AudioHandle, error) {
	ext := req.Extension()
	if o.accepted[ext] {
		nc, ok := o.recognizer.(NativeChecker)
		if !ok || nc.ReadsNatively(req.AudioPath) {
			logger.Debug(logger.CategoryTranscription, "Using %s as is (%s)", req.AudioPath, ext)
			return &AudioHandle{Path: req.AudioPath}, nil
		}
		logger.Debug(logger.CategoryTranscription, "%s cannot read %s directly", o.recognizer.Name(), req.AudioPath)
	}

	if o.transcoder == nil {
		return nil, newError(KindConversionFailed, fmt.Errorf("no transcoder for .%s input", ext))
	}

	if err := os.MkdirAll(o.tempDir, 0755); err != nil {
		return nil, newError(KindConversionFailed, fmt.Errorf("failed to create temp directory: %w", err))
	}
	dst := filepath.Join(o.tempDir, uuid.NewString()+"."+o.transcoder.TargetExtension())

	logger.Info(logger.CategoryTranscription, "Converting .%s input to %s", ext, o.transcoder.TargetExtension())
	if err := o.transcoder.Transcode(ctx, req.AudioPath, dst); err != nil {
		os.Remove(dst)
		return nil, newError(KindConversionFailed, err)
	}
	return &AudioHandle{Path: dst, Temporary: true}, nil
}

// recognize bridges the recognizer's signal stream into one result
func (o *Orchestrator) recognize(ctx context.Context, path, locale string) (string, error) {
	rctx, cancel := context.WithCancel(ctx)
	// Abandons the stream once a result is known
	defer cancel()

	slot := newResultSlot()
	handle := func(s Signal) {
		slot.mu.Lock()
		defer slot.mu.Unlock()
		if slot.resolved {
			return
		}
		switch s.Kind {
		case SignalPartial:
			o.state.advance(StatusTranscribing, ProgressPartial)
		case SignalFinal:
			o.state.finish()
			slot.resolveLocked(s.Text, nil)
		case SignalError:
			cause := s.Err
			if cause == nil {
				cause = errors.New("recognizer reported an error")
			}
			slot.resolveLocked("", newError(KindRecognitionFailed, cause))
		}
	}

	if err := o.recognizer.Recognize(rctx, path, locale, handle); err != nil {
		slot.resolve("", newError(KindRecognitionFailed, err))
	}

	select {
	case r := <-slot.ch:
		return r.text, r.err
	case <-ctx.Done():
		slot.resolve("", newError(KindRecognitionFailed, ctx.Err()))
		r := <-slot.ch
		return r.text, r.err
	}
}

type result struct {
	text string
	err  error
}

// resultSlot is assigned once; later assignments are ignored
type resultSlot struct {
	mu       sync.Mutex
	resolved bool
	ch       chan result
}

func newResultSlot() *resultSlot {
	return &resultSlot{ch: make(chan result, 1)}
}

func (s *resultSlot) resolve(text string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolveLocked(text, err)
}

func (s *resultSlot) resolveLocked(text string, err error) {
	if s.resolved {
		return
	}
	s.resolved = true
	s.ch <- result{text: text, err: err}
}

func formatSet(exts []string) map[string]bool {
	set := make(map[string]bool, len(exts))
	for _, ext := range exts {
		set[extensionOf("x."+ext)] = true
	}
	return set
}
