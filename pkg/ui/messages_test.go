package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jeff-barlow-spady/transkript/pkg/app"
	"github.com/jeff-barlow-spady/transkript/pkg/transcription"
)

func TestUserMessage(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		contains string
	}{
		{"nil", nil, ""},
		{"no file", app.ErrNoFile, "Select an audio file"},
		{"missing", fmt.Errorf("%w: /tmp/x.wav", app.ErrFileNotFound), "no longer exists"},
		{"unsupported", fmt.Errorf("%w: notes.pdf", app.ErrUnsupportedFile), ".m4a"},
		{"busy", transcription.ErrBusy, "already running"},
		{"cancelled", context.Canceled, "cancelled"},
		{"unavailable", transcription.ErrRecognizerUnavailable, "not available"},
		{"conversion", &transcription.Error{Kind: transcription.KindConversionFailed, Err: errors.New("exit status 1")}, "could not be converted"},
		{"recognition", fmt.Errorf("run: %w", &transcription.Error{Kind: transcription.KindRecognitionFailed, Err: errors.New("model crashed")}), "Transcription failed: model crashed"},
		{"other", errors.New("disk on fire"), "disk on fire"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := UserMessage(tc.err)
			if tc.contains == "" {
				if got != "" {
					t.Errorf("Expected empty message, got %q", got)
				}
				return
			}
			if !strings.Contains(got, tc.contains) {
				t.Errorf("Expected message containing %q, got %q", tc.contains, got)
			}
		})
	}
}
