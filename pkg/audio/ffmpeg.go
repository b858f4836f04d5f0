package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/jeff-barlow-spady/transkript/pkg/logger"
)

// ErrFFmpegNotFound indicates that no ffmpeg executable could be found
var ErrFFmpegNotFound = errors.New("ffmpeg executable not found")

// FFmpegTranscoder converts arbitrary audio into 16 kHz mono 16-bit WAV
// using an ffmpeg executable
type FFmpegTranscoder struct {
	// Path to the ffmpeg executable; resolved from PATH when empty
	Path string
}

// NewFFmpegTranscoder creates a transcoder for the given executable path.
// An empty path means "look ffmpeg up in PATH".
func NewFFmpegTranscoder(path string) *FFmpegTranscoder {
	return &FFmpegTranscoder{Path: path}
}

// TargetExtension is the extension of the files Transcode produces
func (t *FFmpegTranscoder) TargetExtension() string {
	return "wav"
}

// Available reports whether an ffmpeg executable can be found
func (t *FFmpegTranscoder) Available() bool {
	_, err := t.executable()
	return err == nil
}

func (t *FFmpegTranscoder) executable() (string, error) {
	if t.Path != "" {
		if _, err := os.Stat(t.Path); err != nil {
			return "", fmt.Errorf("%w: %s", ErrFFmpegNotFound, t.Path)
		}
		return t.Path, nil
	}
	path, err := exec.LookPath("ffmpeg")
	if err != nil {
		return "", ErrFFmpegNotFound
	}
	return path, nil
}

// Transcode converts src into a speech-ready WAV file at dst. The output is
// checked with the WAV decoder before success is reported; a partial output
// file is removed on failure.
func (t *FFmpegTranscoder) Transcode(ctx context.Context, src, dst string) error {
	execPath, err := t.executable()
	if err != nil {
		return err
	}

	args := transcodeArgs(src, dst)
	logger.Debug(logger.CategoryAudio, "Executing: %s %s", execPath, strings.Join(args, " "))

	start := time.Now()
	cmd := exec.CommandContext(ctx, execPath, args...)
	cmd.Stderr = logger.GetStandardLogWriter(logger.LevelWarning, logger.CategoryAudio)

	if err := cmd.Run(); err != nil {
		os.Remove(dst)
		if ctx.Err() != nil {
			return fmt.Errorf("ffmpeg interrupted: %w", ctx.Err())
		}
		return fmt.Errorf("ffmpeg failed: %w", err)
	}

	info, err := Probe(dst)
	if err != nil {
		os.Remove(dst)
		return fmt.Errorf("ffmpeg produced unreadable output: %w", err)
	}
	if !info.IsSpeechReady() {
		os.Remove(dst)
		return fmt.Errorf("ffmpeg produced %d Hz/%d ch/%d bit audio, expected %d Hz mono %d bit",
			info.SampleRate, info.Channels, info.BitDepth, SampleRate, BitDepth)
	}

	logger.Info(logger.CategoryAudio, "Converted %s (%.1f s of audio) in %v",
		src, info.Duration.Seconds(), time.Since(start).Round(time.Millisecond))
	return nil
}

// transcodeArgs returns the ffmpeg arguments for a speech-ready conversion
func transcodeArgs(src, dst string) []string {
	return []string{
		"-y",
		"-loglevel", "error",
		"-i", src,
		"-vn",
		"-ac", strconv.Itoa(NumChannels),
		"-ar", strconv.Itoa(SampleRate),
		"-c:a", "pcm_s16le",
		dst,
	}
}
