package transcription

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/jeff-barlow-spady/transkript/pkg/logger"
)

// modelBaseURL is where ggml models are published
var modelBaseURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/"

// WhisperModelFilenames maps model size to the multilingual ggml filename
var WhisperModelFilenames = map[ModelSize]string{
	ModelTiny:    "ggml-tiny.bin",
	ModelBase:    "ggml-base.bin",
	ModelSmall:   "ggml-small.bin",
	ModelMedium:  "ggml-medium.bin",
	ModelLargeV3: "ggml-large-v3.bin",
}

func modelFilename(size ModelSize) string {
	if name, ok := WhisperModelFilenames[size]; ok {
		return name
	}
	logger.Warning(logger.CategoryTranscription, "Unknown model size: %s, using small", size)
	return WhisperModelFilenames[ModelSmall]
}

// DownloadModel downloads the model for size into modelFile unless it
// already exists
func DownloadModel(ctx context.Context, modelFile string, size ModelSize) error {
	if _, err := os.Stat(modelFile); err == nil {
		logger.Debug(logger.CategoryTranscription, "Using existing model file: %s", modelFile)
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("error checking model file: %w", err)
	}

	logger.Info(logger.CategoryTranscription, "Model file %s not found. Downloading...", modelFile)
	if err := os.MkdirAll(filepath.Dir(modelFile), 0755); err != nil {
		return fmt.Errorf("%w: failed to create model directory: %v", ErrModelDownloadFailed, err)
	}

	if err := downloadModelFile(ctx, modelFile, modelBaseURL+modelFilename(size)); err != nil {
		return fmt.Errorf("%w: %v", ErrModelDownloadFailed, err)
	}

	logger.Info(logger.CategoryTranscription, "Model downloaded successfully: %s", modelFile)
	return nil
}

// downloadModelFile streams url into outputPath through a .part file so an
// interrupted download never looks like a model
func downloadModelFile(ctx context.Context, outputPath, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %s", resp.Status)
	}

	if resp.ContentLength > 0 {
		logger.Info(logger.CategoryTranscription, "Downloading model (%d MB). This may take a while...", resp.ContentLength/(1024*1024))
	} else {
		logger.Info(logger.CategoryTranscription, "Downloading model. Size unknown. This may take a while...")
	}

	partPath := outputPath + ".part"
	out, err := os.Create(partPath)
	if err != nil {
		return err
	}

	reader := io.TeeReader(resp.Body, &progressWriter{total: resp.ContentLength})
	if _, err := io.Copy(out, reader); err != nil {
		out.Close()
		os.Remove(partPath)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(partPath)
		return err
	}
	return os.Rename(partPath, outputPath)
}

// progressWriter logs download progress every 10MB
type progressWriter struct {
	total        int64
	downloaded   int64
	lastReported int64
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n := len(p)
	pw.downloaded += int64(n)

	if pw.total > 0 && (pw.downloaded-pw.lastReported > 10*1024*1024 || pw.downloaded == pw.total) {
		logger.Info(logger.CategoryTranscription, "Downloaded %.1f MB of %.1f MB (%.1f%%)",
			float64(pw.downloaded)/1024/1024, float64(pw.total)/1024/1024,
			float64(pw.downloaded)/float64(pw.total)*100)
		pw.lastReported = pw.downloaded
	}
	return n, nil
}
