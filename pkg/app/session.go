// Package app wires configuration, the transcription orchestrator and
// transcript output into a single-file transcription session
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jeff-barlow-spady/transkript/config"
	"github.com/jeff-barlow-spady/transkript/internal/clipboard"
	"github.com/jeff-barlow-spady/transkript/pkg/audio"
	"github.com/jeff-barlow-spady/transkript/pkg/logger"
	"github.com/jeff-barlow-spady/transkript/pkg/transcript"
	"github.com/jeff-barlow-spady/transkript/pkg/transcription"
)

// SupportedExtensions are the audio files a session accepts
var SupportedExtensions = []string{".m4a", ".mp3", ".wav", ".aac", ".flac", ".ogg", ".caf"}

var (
	// ErrNoFile indicates that no input file was given
	ErrNoFile = errors.New("no audio file selected")
	// ErrFileNotFound indicates that the input file does not exist
	ErrFileNotFound = errors.New("audio file not found")
	// ErrUnsupportedFile indicates an input that is not a known audio format
	ErrUnsupportedFile = errors.New("unsupported audio file")
)

// NewRecognizer builds the recognition backend selected in cfg
func NewRecognizer(cfg *config.Config) (transcription.Recognizer, error) {
	switch cfg.Backend {
	case config.BackendWhisper, "":
		return transcription.NewWhisperRecognizer(transcription.WhisperConfig{
			ModelSize:      transcription.ModelSize(cfg.WhisperModelType),
			ModelPath:      cfg.WhisperModelPath,
			ExecutablePath: cfg.WhisperExecutablePath,
			Threads:        cfg.WhisperThreads,
			AllowDownload:  cfg.AllowModelDownload,
		}), nil
	case config.BackendOpenAI:
		return transcription.NewOpenAIRecognizer(transcription.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
		}), nil
	default:
		return nil, fmt.Errorf("unknown backend: %s", cfg.Backend)
	}
}

// NewOrchestrator builds an orchestrator with the configured backend and
// an ffmpeg transcoder
func NewOrchestrator(cfg *config.Config) (*transcription.Orchestrator, error) {
	recognizer, err := NewRecognizer(cfg)
	if err != nil {
		return nil, err
	}

	var opts []transcription.Option
	if cfg.TempDir != "" {
		opts = append(opts, transcription.WithTempDir(cfg.TempDir))
	}

	transcoder := audio.NewFFmpegTranscoder(cfg.FFmpegPath)
	if !transcoder.Available() {
		logger.Warning(logger.CategoryApp, "ffmpeg not found; only %v files can be transcribed with %s",
			acceptedBy(recognizer), recognizer.Name())
	}

	logger.Info(logger.CategoryApp, "Using %s backend for %s", recognizer.Name(), cfg.Locale)
	return transcription.NewOrchestrator(recognizer, transcoder, opts...), nil
}

func acceptedBy(r transcription.Recognizer) []string {
	if fl, ok := r.(transcription.FormatLister); ok {
		return fl.AcceptedFormats()
	}
	return transcription.DefaultAcceptedFormats
}

// Result is the outcome of a successful session run
type Result struct {
	Text string
	// Files written next to the source; empty paths were not written
	Saved transcript.Saved
	// SaveErr is set when writing the transcript failed; the run still succeeds
	SaveErr error
	Copied  bool
}

// SessionOptions controls what a session does with a transcript
type SessionOptions struct {
	Locale          string
	WriteMarkdown   bool
	CopyToClipboard bool
	// CopyFunc replaces the system clipboard, mainly for tests
	CopyFunc func(string) error
}

// Session runs transcriptions of single files and stores the results
type Session struct {
	orchestrator *transcription.Orchestrator
	options      SessionOptions
}

// NewSession creates a session from configuration
func NewSession(cfg *config.Config) (*Session, error) {
	o, err := NewOrchestrator(cfg)
	if err != nil {
		return nil, err
	}
	return NewSessionWith(o, SessionOptions{
		Locale:          cfg.Locale,
		WriteMarkdown:   cfg.WriteMarkdown,
		CopyToClipboard: cfg.CopyToClipboard,
	}), nil
}

// NewSessionWith creates a session around an existing orchestrator
func NewSessionWith(o *transcription.Orchestrator, opts SessionOptions) *Session {
	if opts.Locale == "" {
		opts.Locale = transcription.DefaultLocale
	}
	if opts.CopyFunc == nil {
		opts.CopyFunc = clipboard.SetText
	}
	return &Session{orchestrator: o, options: opts}
}

// State exposes the orchestrator's observable state
func (s *Session) State() *transcription.StateTracker {
	return s.orchestrator.State()
}

// ValidateInput checks that path names an existing audio file
func ValidateInput(path string) error {
	if strings.TrimSpace(path) == "" {
		return ErrNoFile
	}

	ext := strings.ToLower(filepath.Ext(path))
	supported := false
	for _, e := range SupportedExtensions {
		if ext == e {
			supported = true
			break
		}
	}
	if !supported {
		return fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Base(path))
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrUnsupportedFile, path)
	}
	return nil
}

// Run transcribes path, then writes the transcript next to it and copies
// it to the clipboard when enabled. Output failures are logged and
// reported in the result, not returned.
func (s *Session) Run(ctx context.Context, path string) (Result, error) {
	if err := ValidateInput(path); err != nil {
		return Result{}, err
	}

	req := transcription.Request{AudioPath: path, Locale: s.options.Locale}
	text, err := s.orchestrator.Transcribe(ctx, req)
	if err != nil {
		return Result{}, err
	}

	result := Result{Text: text}
	result.Saved, result.SaveErr = transcript.Save(path, text, transcript.Options{Markdown: s.options.WriteMarkdown})
	if result.SaveErr != nil {
		logger.Warning(logger.CategoryApp, "Could not save transcript: %v", result.SaveErr)
	}

	if s.options.CopyToClipboard && text != "" {
		if err := s.options.CopyFunc(text); err != nil {
			logger.Warning(logger.CategoryApp, "Could not copy transcript to clipboard: %v", err)
		} else {
			result.Copied = true
		}
	}
	return result, nil
}
