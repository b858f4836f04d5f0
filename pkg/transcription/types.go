package transcription

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// DefaultLocale is the spoken language every request is recognized in
const DefaultLocale = "sk-SK"

// Request references one source audio file and the locale to recognize it in
type Request struct {
	AudioPath string
	Locale    string
}

// NewRequest creates a request for path in the default locale
func NewRequest(path string) Request {
	return Request{AudioPath: path, Locale: DefaultLocale}
}

// Extension returns the lower-cased extension of the source file without the dot
func (r Request) Extension() string {
	return extensionOf(r.AudioPath)
}

func extensionOf(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// SignalKind tells partial, final and error signals apart
type SignalKind int

const (
	SignalPartial SignalKind = iota
	SignalFinal
	SignalError
)

// Signal is one result delivered by a recognizer
type Signal struct {
	Kind SignalKind
	Text string
	Err  error
}

// SignalHandler receives recognizer signals. It is safe to call from any goroutine.
type SignalHandler func(Signal)

// Recognizer is a speech recognition backend.
//
// Recognize starts recognition of audioPath and delivers zero or more
// SignalPartial values followed by one SignalFinal or SignalError through
// handle, either before returning or later from another goroutine. A non-nil
// return means recognition could not be started and no signals will follow.
// Recognizers should stop once ctx is cancelled.
type Recognizer interface {
	Name() string
	Supports(locale string) bool
	IsAvailable(ctx context.Context) bool
	Recognize(ctx context.Context, audioPath, locale string, handle SignalHandler) error
}

// FormatLister is implemented by recognizers that know which file
// extensions they read natively
type FormatLister interface {
	AcceptedFormats() []string
}

// NativeChecker is implemented by recognizers that read only some files
// of an accepted format, e.g. WAV at one sample rate. Files it rejects are
// converted like any other format.
type NativeChecker interface {
	ReadsNatively(path string) bool
}

// Transcoder converts audio into a format a recognizer accepts
type Transcoder interface {
	TargetExtension() string
	Transcode(ctx context.Context, src, dst string) error
}

// AudioHandle references audio ready for recognition
type AudioHandle struct {
	Path string
	// Temporary is set when Path was created by the orchestrator
	Temporary bool
}

// Release removes a temporary asset. Pass-through handles are left alone.
func (h *AudioHandle) Release() error {
	if h == nil || !h.Temporary {
		return nil
	}
	if err := os.Remove(h.Path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
