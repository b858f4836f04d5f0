package transcription

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/jeff-barlow-spady/transkript/pkg/logger"
)

// OpenAIConfig holds configuration for an OpenAI-compatible transcription API
type OpenAIConfig struct {
	APIKey string
	// BaseURL of a compatible server; empty means api.openai.com
	BaseURL string
	Model   string
}

// OpenAIRecognizer sends the whole file to an OpenAI-compatible
// /audio/transcriptions endpoint. It reports no partial results.
type OpenAIRecognizer struct {
	config OpenAIConfig
	client *openai.Client
}

// NewOpenAIRecognizer creates a recognizer for the given API settings
func NewOpenAIRecognizer(config OpenAIConfig) *OpenAIRecognizer {
	if config.Model == "" {
		config.Model = openai.Whisper1
	}
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	return &OpenAIRecognizer{
		config: config,
		client: openai.NewClientWithConfig(clientConfig),
	}
}

// Name identifies the backend in logs
func (o *OpenAIRecognizer) Name() string {
	return "openai"
}

// AcceptedFormats lists the uploads the API decodes itself
func (o *OpenAIRecognizer) AcceptedFormats() []string {
	return []string{"wav", "mp3", "m4a"}
}

// Supports reports whether the API knows locale's language
func (o *OpenAIRecognizer) Supports(locale string) bool {
	lang, err := baseLanguage(locale)
	return err == nil && whisperLanguages[lang]
}

// IsAvailable reports whether credentials or a self-hosted endpoint are configured
func (o *OpenAIRecognizer) IsAvailable(ctx context.Context) bool {
	return o.config.APIKey != "" || o.config.BaseURL != ""
}

// Recognize uploads audioPath and delivers the transcript as one final
// signal, or an error signal
func (o *OpenAIRecognizer) Recognize(ctx context.Context, audioPath, locale string, handle SignalHandler) error {
	lang, err := baseLanguage(locale)
	if err != nil {
		return err
	}

	go func() {
		start := time.Now()
		resp, err := o.client.CreateTranscription(ctx, openai.AudioRequest{
			Model:    o.config.Model,
			FilePath: audioPath,
			Language: lang,
		})
		if err != nil {
			handle(Signal{Kind: SignalError, Err: fmt.Errorf("%w: %w", ErrTranscriptionFailed, err)})
			return
		}
		logger.Debug(logger.CategoryTranscription, "API transcribed %s in %v",
			filepath.Base(audioPath), time.Since(start).Round(time.Millisecond))
		handle(Signal{Kind: SignalFinal, Text: normalizeTranscriptionText(resp.Text)})
	}()
	return nil
}
