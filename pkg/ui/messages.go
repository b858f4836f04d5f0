package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jeff-barlow-spady/transkript/pkg/app"
	"github.com/jeff-barlow-spady/transkript/pkg/transcription"
)

// UserMessage turns an error from a session run into text for the user
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, app.ErrNoFile):
		return "Select an audio file first."
	case errors.Is(err, app.ErrFileNotFound):
		return "The selected file no longer exists."
	case errors.Is(err, app.ErrUnsupportedFile):
		return fmt.Sprintf("Unsupported file. Choose one of: %s.", strings.Join(app.SupportedExtensions, ", "))
	case errors.Is(err, transcription.ErrBusy):
		return "A transcription is already running. Wait for it to finish."
	case errors.Is(err, context.Canceled):
		return "Transcription was cancelled."
	case errors.Is(err, context.DeadlineExceeded):
		return "Transcription took too long and was stopped."
	}

	switch transcription.KindOf(err) {
	case transcription.KindRecognizerUnavailable:
		return "Speech recognition for this language is not available. " +
			"Install whisper with its model, or configure the OpenAI backend."
	case transcription.KindConversionFailed:
		return "The audio could not be converted. Check that ffmpeg is installed and the file is not damaged."
	case transcription.KindRecognitionFailed:
		var te *transcription.Error
		if errors.As(err, &te) && te.Err != nil {
			return "Transcription failed: " + te.Err.Error()
		}
		return "Transcription failed."
	}
	return err.Error()
}
