package transcription

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/language"

	"github.com/jeff-barlow-spady/transkript/pkg/audio"
	"github.com/jeff-barlow-spady/transkript/pkg/logger"
)

// WhisperConfig holds configuration for the whisper executable backend
type WhisperConfig struct {
	// Model size to use
	ModelSize ModelSize
	// Model file, or directory holding it (if empty, uses default locations)
	ModelPath string
	// Path to the executable (if empty, auto-detected)
	ExecutablePath string
	// Threads passed to whisper
	Threads int
	// Download the model when it is missing
	AllowDownload bool
	// Finder used when ExecutablePath is empty
	Finder ExecutableFinder
}

// DefaultWhisperConfig returns the default configuration for the whisper backend
func DefaultWhisperConfig() WhisperConfig {
	return WhisperConfig{
		ModelSize:     ModelSmall,
		Threads:       4,
		AllowDownload: true,
	}
}

// whisperLanguages are the language codes whisper models are trained on
var whisperLanguages = map[string]bool{
	"af": true, "am": true, "ar": true, "as": true, "az": true, "ba": true, "be": true, "bg": true,
	"bn": true, "bo": true, "br": true, "bs": true, "ca": true, "cs": true, "cy": true, "da": true,
	"de": true, "el": true, "en": true, "es": true, "et": true, "eu": true, "fa": true, "fi": true,
	"fo": true, "fr": true, "gl": true, "gu": true, "ha": true, "haw": true, "he": true, "hi": true,
	"hr": true, "ht": true, "hu": true, "hy": true, "id": true, "is": true, "it": true, "ja": true,
	"jw": true, "ka": true, "kk": true, "km": true, "kn": true, "ko": true, "la": true, "lb": true,
	"ln": true, "lo": true, "lt": true, "lv": true, "mg": true, "mi": true, "mk": true, "ml": true,
	"mn": true, "mr": true, "ms": true, "mt": true, "my": true, "ne": true, "nl": true, "nn": true,
	"no": true, "oc": true, "pa": true, "pl": true, "ps": true, "pt": true, "ro": true, "ru": true,
	"sa": true, "sd": true, "si": true, "sk": true, "sl": true, "sn": true, "so": true, "sq": true,
	"sr": true, "su": true, "sv": true, "sw": true, "ta": true, "te": true, "tg": true, "th": true,
	"tk": true, "tl": true, "tr": true, "tt": true, "uk": true, "ur": true, "uz": true, "vi": true,
	"yi": true, "yo": true, "zh": true, "yue": true,
}

// baseLanguage returns the ISO 639 base of a BCP 47 locale ("sk-SK" -> "sk")
func baseLanguage(locale string) (string, error) {
	tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedLocale, locale)
	}
	base, _ := tag.Base()
	return base.String(), nil
}

// WhisperRecognizer runs a whisper executable on 16 kHz WAV files
type WhisperRecognizer struct {
	config WhisperConfig
	finder ExecutableFinder

	mu        sync.Mutex
	execPath  string
	execType  ExecutableType
	modelFile string
}

// NewWhisperRecognizer creates a whisper backend. Executable and model are
// resolved lazily.
func NewWhisperRecognizer(config WhisperConfig) *WhisperRecognizer {
	finder := config.Finder
	if finder == nil {
		finder = &DefaultExecutableFinder{ExecutablePath: config.ExecutablePath}
	}
	return &WhisperRecognizer{
		config:    config,
		finder:    finder,
		modelFile: resolveModelFile(config.ModelPath, config.ModelSize),
	}
}

// Name identifies the backend in logs
func (w *WhisperRecognizer) Name() string {
	return "whisper"
}

// AcceptedFormats lists the extensions whisper reads directly
func (w *WhisperRecognizer) AcceptedFormats() []string {
	return []string{"wav"}
}

// ReadsNatively reports whether path is a 16 kHz mono 16-bit WAV file
func (w *WhisperRecognizer) ReadsNatively(path string) bool {
	info, err := audio.Probe(path)
	return err == nil && info.IsSpeechReady()
}

// Supports reports whether whisper has a model for locale's language
func (w *WhisperRecognizer) Supports(locale string) bool {
	lang, err := baseLanguage(locale)
	return err == nil && whisperLanguages[lang]
}

// IsAvailable reports whether an executable was found and the model is
// present or can be downloaded
func (w *WhisperRecognizer) IsAvailable(ctx context.Context) bool {
	if _, _, err := w.executable(); err != nil {
		logger.Warning(logger.CategoryTranscription, "Whisper executable unavailable: %v", err)
		return false
	}
	if _, err := os.Stat(w.modelFile); err == nil {
		return true
	}
	if !w.config.AllowDownload {
		logger.Warning(logger.CategoryTranscription, "%v: %s", ErrModelNotFound, w.modelFile)
		return false
	}
	return true
}

// ModelFile returns the model file the recognizer uses
func (w *WhisperRecognizer) ModelFile() string {
	return w.modelFile
}

func (w *WhisperRecognizer) executable() (string, ExecutableType, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.execPath != "" {
		return w.execPath, w.execType, nil
	}
	path, err := w.finder.FindExecutable()
	if err != nil {
		return "", ExecutableTypeUnknown, err
	}
	w.execPath = path
	w.execType = detectExecutableType(path)
	logger.Info(logger.CategoryTranscription, "Using %s executable: %s", w.execType, path)
	return w.execPath, w.execType, nil
}

func (w *WhisperRecognizer) ensureModel(ctx context.Context) error {
	if _, err := os.Stat(w.modelFile); err == nil {
		return nil
	}
	if !w.config.AllowDownload {
		return fmt.Errorf("%w: %s", ErrModelNotFound, w.modelFile)
	}
	return DownloadModel(ctx, w.modelFile, w.config.ModelSize)
}

// Recognize starts whisper on audioPath. Each transcript line is delivered
// as a partial signal with the text so far; the normalized full text
// follows as the final signal once the process exits.
func (w *WhisperRecognizer) Recognize(ctx context.Context, audioPath, locale string, handle SignalHandler) error {
	execPath, execType, err := w.executable()
	if err != nil {
		return err
	}
	lang, err := baseLanguage(locale)
	if err != nil {
		return err
	}

	var audioLength time.Duration
	if info, err := audio.Probe(audioPath); err == nil {
		audioLength = info.Duration
		if isSilent(audioPath, info) {
			logger.Info(logger.CategoryTranscription, "No speech detected in %s", filepath.Base(audioPath))
			handle(Signal{Kind: SignalFinal, Text: ""})
			return nil
		}
	} else {
		logger.Warning(logger.CategoryTranscription, "Could not read audio duration: %v", err)
	}
	timeout := calculateTimeout(audioLength)

	if err := w.ensureModel(ctx); err != nil {
		return err
	}

	// openai-whisper always writes a transcript file; it goes to a
	// directory removed when the run ends
	var outputDir string
	if execType == ExecutableTypePython || execType == ExecutableTypeOpenAI {
		if outputDir, err = os.MkdirTemp("", "transkript-whisper-"); err != nil {
			return fmt.Errorf("%w: failed to create output directory: %v", ErrTranscriptionFailed, err)
		}
	}

	args := getArgs(execType, w.modelFile, lang, audioPath, outputDir, w.config.Threads)
	logger.Debug(logger.CategoryTranscription, "Executing: %s %s", execPath, strings.Join(args, " "))

	pctx, cancel := context.WithTimeout(ctx, timeout)
	cmd := exec.CommandContext(pctx, execPath, args...)
	cmd.Env = append(os.Environ(), fmt.Sprintf("OMP_NUM_THREADS=%d", max(w.config.Threads, 1)))
	cmd.Stderr = logger.GetStandardLogWriter(logger.LevelDebug, logger.CategoryTranscription)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		removeOutputDir(outputDir)
		return fmt.Errorf("%w: failed to create stdout pipe: %v", ErrTranscriptionFailed, err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		removeOutputDir(outputDir)
		return fmt.Errorf("%w: failed to start process: %v", ErrTranscriptionFailed, err)
	}

	go func() {
		defer cancel()
		w.stream(pctx, cmd, bufio.NewScanner(stdout), execType, timeout, outputDir, handle)
	}()
	return nil
}

// stream reads whisper's stdout until the process exits and reports the outcome
func (w *WhisperRecognizer) stream(ctx context.Context, cmd *exec.Cmd, scanner *bufio.Scanner,
	execType ExecutableType, timeout time.Duration, outputDir string, handle SignalHandler) {
	start := time.Now()
	var result strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		if isProcessingLine(line) {
			continue
		}
		cleaned := cleanOutputLine(line, execType)
		if cleaned == "" {
			continue
		}

		if result.Len() > 0 {
			result.WriteString(" ")
		}
		result.WriteString(cleaned)
		handle(Signal{Kind: SignalPartial, Text: result.String()})
	}
	scanErr := scanner.Err()
	waitErr := cmd.Wait()
	removeOutputDir(outputDir)

	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		logger.Warning(logger.CategoryTranscription, "Transcription timed out after %v", timeout)
		handle(Signal{Kind: SignalError, Err: fmt.Errorf("%w: timed out after %v", ErrTranscriptionFailed, timeout)})
	case ctx.Err() != nil:
		handle(Signal{Kind: SignalError, Err: fmt.Errorf("%w: %v", ErrTranscriptionFailed, ctx.Err())})
	case scanErr != nil:
		handle(Signal{Kind: SignalError, Err: fmt.Errorf("%w: error reading output: %v", ErrTranscriptionFailed, scanErr)})
	case waitErr != nil:
		handle(Signal{Kind: SignalError, Err: fmt.Errorf("%w: process exited with error: %v", ErrTranscriptionFailed, waitErr)})
	default:
		text := normalizeTranscriptionText(result.String())
		if text == "" {
			logger.Info(logger.CategoryTranscription, "No speech recognized")
		}
		logger.Debug(logger.CategoryTranscription, "Whisper finished in %v", time.Since(start).Round(time.Millisecond))
		handle(Signal{Kind: SignalFinal, Text: text})
	}
}

// Audio quieter than silenceThreshold (RMS of samples in [-1, 1]) is not
// sent to whisper. Only files up to maxSilenceCheck are measured.
const (
	silenceThreshold = 0.001
	maxSilenceCheck  = 10 * time.Minute
)

// isSilent reports whether the WAV file at path holds no audible signal
func isSilent(path string, info audio.Info) bool {
	if info.Duration <= 0 || info.Duration > maxSilenceCheck {
		return false
	}
	samples, err := audio.LoadFromWav(path)
	if err != nil {
		logger.Debug(logger.CategoryTranscription, "Skipping silence check: %v", err)
		return false
	}
	if len(samples) == 0 {
		return false
	}
	level := audio.CalculateRMSLevel(samples)
	logger.Debug(logger.CategoryTranscription, "Audio RMS level of %s: %.5f", filepath.Base(path), level)
	return level < silenceThreshold
}

func removeOutputDir(dir string) {
	if dir == "" {
		return
	}
	if err := os.RemoveAll(dir); err != nil {
		logger.Warning(logger.CategoryTranscription, "Failed to remove whisper output directory %s: %v", dir, err)
	}
}
