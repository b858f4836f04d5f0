// Package transcription turns a local audio file into a transcript by
// normalizing its format and driving a speech recognition backend
package transcription

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a transcription failure
type ErrorKind int

const (
	// KindUnknown is returned by KindOf for errors outside the taxonomy
	KindUnknown ErrorKind = iota
	// KindRecognizerUnavailable means the backend cannot serve the locale right now
	KindRecognizerUnavailable
	// KindConversionFailed means the audio could not be brought into an accepted format
	KindConversionFailed
	// KindRecognitionFailed means the backend failed while recognizing
	KindRecognitionFailed
)

func (k ErrorKind) String() string {
	switch k {
	case KindRecognizerUnavailable:
		return "recognizer unavailable"
	case KindConversionFailed:
		return "conversion failed"
	case KindRecognitionFailed:
		return "recognition failed"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is checks against a kind
var (
	ErrRecognizerUnavailable = &Error{Kind: KindRecognizerUnavailable}
	ErrConversionFailed      = &Error{Kind: KindConversionFailed}
	ErrRecognitionFailed     = &Error{Kind: KindRecognitionFailed}
)

// ErrBusy is returned when Transcribe is called while another request is in flight
var ErrBusy = errors.New("a transcription is already in progress")

// Backend error types
var (
	// ErrExecutableNotFound indicates that no whisper executable could be found
	ErrExecutableNotFound = errors.New("whisper executable not found")

	// ErrInvalidExecutablePath indicates that the provided executable path does not exist or is not valid
	ErrInvalidExecutablePath = errors.New("invalid whisper executable path")

	// ErrModelDownloadFailed indicates that downloading the model failed
	ErrModelDownloadFailed = errors.New("failed to download whisper model")

	// ErrModelNotFound indicates that the model was not found in any of the standard locations
	ErrModelNotFound = errors.New("whisper model not found")

	// ErrTranscriptionFailed indicates that the whisper process failed
	ErrTranscriptionFailed = errors.New("transcription process failed")

	// ErrUnsupportedLocale indicates that a backend has no model for the locale
	ErrUnsupportedLocale = errors.New("locale not supported")
)

// Error is a classified transcription failure carrying its cause
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrConversionFailed)
// holds regardless of the cause
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func newError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// KindOf returns the kind of a transcription error, or KindUnknown
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
