package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jeff-barlow-spady/transkript/config"
	"github.com/jeff-barlow-spady/transkript/pkg/app"
	"github.com/jeff-barlow-spady/transkript/pkg/transcription"
)

// fixedRecognizer always recognizes the same text
type fixedRecognizer struct {
	text string
}

func (f fixedRecognizer) Name() string                     { return "fixed" }
func (f fixedRecognizer) Supports(string) bool             { return true }
func (f fixedRecognizer) IsAvailable(context.Context) bool { return true }

func (f fixedRecognizer) Recognize(ctx context.Context, path, locale string, handle transcription.SignalHandler) error {
	handle(transcription.Signal{Kind: transcription.SignalFinal, Text: f.text})
	return nil
}

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"backend":"whisper","locale":"sk-SK","whisper_model_type":"small","whisper_threads":4,"log_level":"info"}`), 0600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestParseFlagsPositionalFile(t *testing.T) {
	opts, _, err := parseFlags([]string{"-markdown", "/audio/clip.m4a"})
	if err != nil {
		t.Fatalf("parseFlags failed: %v", err)
	}
	if opts.file != "/audio/clip.m4a" {
		t.Errorf("Expected positional file, got %q", opts.file)
	}
	if !opts.markdown {
		t.Error("Expected markdown flag to be set")
	}
}

func TestLoadConfigAppliesFlagOverrides(t *testing.T) {
	path := writeConfig(t)
	opts, fs, err := parseFlags([]string{"-config", path, "-model", "base", "-clipboard", "-debug"})
	if err != nil {
		t.Fatalf("parseFlags failed: %v", err)
	}

	cfg, err := loadConfig(opts, fs)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.WhisperModelType != "base" {
		t.Errorf("Expected model base, got %s", cfg.WhisperModelType)
	}
	if !cfg.CopyToClipboard {
		t.Error("Expected clipboard override")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Expected debug log level, got %s", cfg.LogLevel)
	}
	if cfg.Backend != config.BackendWhisper {
		t.Errorf("Expected whisper backend, got %s", cfg.Backend)
	}
}

func TestLoadConfigRejectsInvalidOverride(t *testing.T) {
	path := writeConfig(t)
	opts, fs, err := parseFlags([]string{"-config", path, "-backend", "vosk"})
	if err != nil {
		t.Fatalf("parseFlags failed: %v", err)
	}
	if _, err := loadConfig(opts, fs); err == nil {
		t.Error("Expected validation error for unknown backend")
	}
}

func TestRunHeadlessSucceedsWhenSaveFails(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "clip.wav")
	if err := os.WriteFile(src, []byte("audio"), 0644); err != nil {
		t.Fatalf("Failed to write audio: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "clip.txt"), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	session := app.NewSessionWith(transcription.NewOrchestrator(fixedRecognizer{text: "ahoj"}, nil), app.SessionOptions{})
	if code := runHeadless(session, src); code != 0 {
		t.Errorf("Expected exit code 0, got %d", code)
	}
}

func TestRunHeadlessFailsWithoutTranscript(t *testing.T) {
	session := app.NewSessionWith(transcription.NewOrchestrator(fixedRecognizer{text: "ahoj"}, nil), app.SessionOptions{})
	if code := runHeadless(session, filepath.Join(t.TempDir(), "missing.wav")); code != 1 {
		t.Errorf("Expected exit code 1, got %d", code)
	}
}

// countingStopper counts Stop calls
type countingStopper struct {
	calls chan struct{}
}

func (c *countingStopper) Stop() { c.calls <- struct{}{} }

func TestStopOnCancelStopsInterface(t *testing.T) {
	s := &countingStopper{calls: make(chan struct{}, 1)}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	defer close(done)

	go stopOnCancel(ctx, done, s)
	cancel()

	select {
	case <-s.calls:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected Stop to be called after cancellation")
	}
}

func TestStopOnCancelIgnoresFinishedInterface(t *testing.T) {
	s := &countingStopper{calls: make(chan struct{}, 1)}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})

	finished := make(chan struct{})
	go func() {
		stopOnCancel(ctx, done, s)
		close(finished)
	}()
	close(done)

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected stopOnCancel to return once the interface finished")
	}
	if len(s.calls) != 0 {
		t.Error("Expected Stop not to be called")
	}
}
