package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jeff-barlow-spady/transkript/config"
	"github.com/jeff-barlow-spady/transkript/pkg/transcription"
)

// fakeRecognizer returns a fixed result
type fakeRecognizer struct {
	text  string
	err   error
	calls int
}

func (f *fakeRecognizer) Name() string                     { return "fake" }
func (f *fakeRecognizer) Supports(string) bool             { return true }
func (f *fakeRecognizer) IsAvailable(context.Context) bool { return true }

func (f *fakeRecognizer) Recognize(ctx context.Context, path, locale string, handle transcription.SignalHandler) error {
	f.calls++
	if f.err != nil {
		handle(transcription.Signal{Kind: transcription.SignalError, Err: f.err})
		return nil
	}
	handle(transcription.Signal{Kind: transcription.SignalFinal, Text: f.text})
	return nil
}

func writeAudio(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("audio"), 0644); err != nil {
		t.Fatalf("Failed to write audio file: %v", err)
	}
	return path
}

func TestValidateInput(t *testing.T) {
	existing := writeAudio(t, "clip.M4A")
	notAudio := writeAudio(t, "notes.pdf")
	dir := filepath.Join(t.TempDir(), "folder.wav")
	if err := os.Mkdir(dir, 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	testCases := []struct {
		name string
		path string
		want error
	}{
		{"empty", " ", ErrNoFile},
		{"unsupported", notAudio, ErrUnsupportedFile},
		{"missing", filepath.Join(t.TempDir(), "gone.mp3"), ErrFileNotFound},
		{"directory", dir, ErrUnsupportedFile},
		{"ok", existing, nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateInput(tc.path)
			if tc.want == nil {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Errorf("Expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestSessionRunSavesTranscript(t *testing.T) {
	rec := &fakeRecognizer{text: "dobrý deň"}
	var copied string
	s := NewSessionWith(transcription.NewOrchestrator(rec, nil), SessionOptions{
		WriteMarkdown:   true,
		CopyToClipboard: true,
		CopyFunc:        func(text string) error { copied = text; return nil },
	})

	src := writeAudio(t, "clip.wav")
	result, err := s.Run(context.Background(), src)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Text != "dobrý deň" {
		t.Errorf("Expected 'dobrý deň', got %q", result.Text)
	}
	if result.SaveErr != nil {
		t.Errorf("Expected transcript to be saved, got %v", result.SaveErr)
	}

	data, err := os.ReadFile(filepath.Join(filepath.Dir(src), "clip.txt"))
	if err != nil {
		t.Fatalf("Expected clip.txt next to the source: %v", err)
	}
	if string(data) != "dobrý deň" {
		t.Errorf("Expected saved text 'dobrý deň', got %q", string(data))
	}
	if result.Saved.MarkdownPath == "" {
		t.Error("Expected markdown transcript to be written")
	}
	if !result.Copied || copied != "dobrý deň" {
		t.Errorf("Expected transcript on the clipboard, got %q (copied=%v)", copied, result.Copied)
	}
}

func TestSessionRunClipboardFailureIsNotFatal(t *testing.T) {
	s := NewSessionWith(transcription.NewOrchestrator(&fakeRecognizer{text: "ahoj"}, nil), SessionOptions{
		CopyToClipboard: true,
		CopyFunc:        func(string) error { return errors.New("no display") },
	})

	result, err := s.Run(context.Background(), writeAudio(t, "clip.wav"))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Copied {
		t.Error("Expected Copied to be false when the clipboard fails")
	}
}

func TestSessionRunFailure(t *testing.T) {
	rec := &fakeRecognizer{err: errors.New("backend fault")}
	s := NewSessionWith(transcription.NewOrchestrator(rec, nil), SessionOptions{})

	src := writeAudio(t, "clip.wav")
	_, err := s.Run(context.Background(), src)
	if transcription.KindOf(err) != transcription.KindRecognitionFailed {
		t.Fatalf("Expected RecognitionFailed, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(src), "clip.txt")); !os.IsNotExist(err) {
		t.Error("Expected no transcript file after a failure")
	}
	if s.State().Snapshot().IsTranscribing {
		t.Error("Expected transcribing flag to be reset after failure")
	}
}

func TestSessionRunRejectsMissingFile(t *testing.T) {
	rec := &fakeRecognizer{text: "x"}
	s := NewSessionWith(transcription.NewOrchestrator(rec, nil), SessionOptions{})

	_, err := s.Run(context.Background(), filepath.Join(t.TempDir(), "missing.m4a"))
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("Expected ErrFileNotFound, got %v", err)
	}
	if rec.calls != 0 {
		t.Error("Expected recognizer not to be called for a missing file")
	}
}

func TestNewRecognizer(t *testing.T) {
	cfg := config.DefaultConfig()
	r, err := NewRecognizer(cfg)
	if err != nil {
		t.Fatalf("NewRecognizer failed: %v", err)
	}
	if r.Name() != "whisper" {
		t.Errorf("Expected whisper backend, got %s", r.Name())
	}

	cfg.Backend = config.BackendOpenAI
	cfg.OpenAIAPIKey = "sk-test"
	r, err = NewRecognizer(cfg)
	if err != nil {
		t.Fatalf("NewRecognizer failed: %v", err)
	}
	if r.Name() != "openai" {
		t.Errorf("Expected openai backend, got %s", r.Name())
	}

	cfg.Backend = "vosk"
	if _, err := NewRecognizer(cfg); err == nil {
		t.Error("Expected error for unknown backend")
	}
}

func TestSessionRunSaveFailureIsNotFatal(t *testing.T) {
	src := writeAudio(t, "clip.wav")
	// A directory in place of clip.txt makes the transcript write fail
	if err := os.Mkdir(filepath.Join(filepath.Dir(src), "clip.txt"), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	s := NewSessionWith(transcription.NewOrchestrator(&fakeRecognizer{text: "dobrý deň"}, nil), SessionOptions{})

	result, err := s.Run(context.Background(), src)
	if err != nil {
		t.Fatalf("Expected run to succeed when saving fails, got %v", err)
	}
	if result.Text != "dobrý deň" {
		t.Errorf("Expected 'dobrý deň', got %q", result.Text)
	}
	if result.SaveErr == nil {
		t.Error("Expected SaveErr to report the failed write")
	}
	if result.Saved.TextPath != "" {
		t.Errorf("Expected no text path, got %s", result.Saved.TextPath)
	}
}
