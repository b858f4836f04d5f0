// Package audio provides WAV probing and audio format conversion
package audio

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/jeff-barlow-spady/transkript/pkg/logger"
)

const (
	// SampleRate is the sample rate whisper expects
	SampleRate = 16000
	// BitDepth of the PCM data we produce
	BitDepth = 16
	// NumChannels of the PCM data we produce (mono)
	NumChannels = 1

	wavFormatPCM = 1
)

// ErrInvalidWav indicates that a file is not a readable RIFF/WAVE file
var ErrInvalidWav = errors.New("not a valid WAV file")

// Info describes the header of a WAV file
type Info struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Duration   time.Duration
}

// IsSpeechReady reports whether the file is already 16 kHz mono 16-bit PCM
func (i Info) IsSpeechReady() bool {
	return i.SampleRate == SampleRate && i.Channels == NumChannels && i.BitDepth == BitDepth
}

// Probe reads the WAV header of path
func Probe(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("failed to open WAV file: %w", err)
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return Info{}, fmt.Errorf("%w: %s", ErrInvalidWav, path)
	}

	duration, err := d.Duration()
	if err != nil {
		return Info{}, fmt.Errorf("failed to read WAV duration: %w", err)
	}

	info := Info{
		SampleRate: int(d.SampleRate),
		Channels:   int(d.NumChans),
		BitDepth:   int(d.BitDepth),
		Duration:   duration,
	}
	logger.Debug(logger.CategoryAudio, "WAV file %s: %d channels, %d Hz, %d bits, %.2f seconds",
		filepath.Base(path), info.Channels, info.SampleRate, info.BitDepth, info.Duration.Seconds())
	return info, nil
}

// SaveToWav saves float32 samples in [-1, 1] as 16 kHz mono 16-bit PCM
func SaveToWav(samples []float32, outputPath string) error {
	logger.Debug(logger.CategoryAudio, "Saving audio to WAV file: %s", outputPath)

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create WAV file: %w", err)
	}
	defer f.Close()

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = floatToPCM16(s)
	}

	enc := wav.NewEncoder(f, SampleRate, BitDepth, NumChannels, wavFormatPCM)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: NumChannels, SampleRate: SampleRate},
		Data:           data,
		SourceBitDepth: BitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to write WAV data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize WAV file: %w", err)
	}
	return nil
}

// LoadFromWav loads a WAV file and returns mono float32 samples in [-1, 1].
// Multi-channel files are averaged down to mono.
func LoadFromWav(path string) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open WAV file: %w", err)
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidWav, path)
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read PCM data: %w", err)
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}
	scale := float32(math.Pow(2, float64(buf.SourceBitDepth-1)))
	if scale == 0 {
		scale = 32768
	}

	samples := make([]float32, len(buf.Data)/channels)
	for i := range samples {
		var sum float32
		for c := 0; c < channels; c++ {
			sum += float32(buf.Data[i*channels+c])
		}
		samples[i] = sum / float32(channels) / scale
	}
	return samples, nil
}

// CalculateRMSLevel calculates the Root Mean Square of the audio buffer
func CalculateRMSLevel(buffer []float32) float32 {
	if len(buffer) == 0 {
		return 0
	}

	var sumSquares float64
	for _, sample := range buffer {
		sumSquares += float64(sample * sample)
	}

	return float32(math.Sqrt(sumSquares / float64(len(buffer))))
}

func floatToPCM16(sample float32) int {
	if sample > 1.0 {
		sample = 1.0
	} else if sample < -1.0 {
		sample = -1.0
	}
	if sample >= 0 {
		return int(sample * 32767.0)
	}
	return int(sample * 32768.0)
}
