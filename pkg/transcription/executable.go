package transcription

import (
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jeff-barlow-spady/transkript/pkg/logger"
)

// ExecutableType represents the type of whisper executable
type ExecutableType int

const (
	ExecutableTypeUnknown ExecutableType = iota
	ExecutableTypeWhisperCpp
	ExecutableTypePython
	ExecutableTypeOpenAI
)

func (t ExecutableType) String() string {
	switch t {
	case ExecutableTypeWhisperCpp:
		return "whisper.cpp"
	case ExecutableTypePython:
		return "python whisper"
	case ExecutableTypeOpenAI:
		return "openai-whisper"
	default:
		return "unknown"
	}
}

var (
	timestampRegex = regexp.MustCompile(`\[(?:\d{2}:)?\d{2}:\d{2}\.\d{3}\s*-->\s*(?:\d{2}:)?\d{2}:\d{2}\.\d{3}\]`)
	noiseRegex     = regexp.MustCompile(`\[(?i)(?:MUSIC|APPLAUSE|LAUGHTER|INAUDIBLE|NOISE|CROSSTALK|BLANK_AUDIO)\]`)
)

// detectExecutableType determines the type of whisper executable
func detectExecutableType(execPath string) ExecutableType {
	execName := strings.ToLower(filepath.Base(execPath))

	switch {
	case strings.Contains(execName, "whisper-cli") ||
		strings.Contains(execName, "whisper-cpp") ||
		strings.Contains(execName, "whisper.cpp") ||
		strings.TrimSuffix(execName, ".exe") == "main":
		return ExecutableTypeWhisperCpp

	case strings.HasSuffix(execName, ".py"):
		return ExecutableTypePython
	}

	// Fall back to the --help output
	output, err := exec.Command(execPath, "--help").CombinedOutput()
	if err == nil || len(output) > 0 {
		outputStr := strings.ToLower(string(output))

		switch {
		case strings.Contains(outputStr, "whisper.cpp") || strings.Contains(outputStr, "--output-txt"):
			return ExecutableTypeWhisperCpp

		case strings.Contains(outputStr, "openai") || strings.Contains(outputStr, "--output_format"):
			return ExecutableTypeOpenAI

		case strings.Contains(outputStr, "python") || strings.Contains(outputStr, "pytorch"):
			return ExecutableTypePython
		}
	}

	logger.Info(logger.CategoryTranscription, "Could not determine executable type for %s, defaulting to whisper.cpp style", execPath)
	return ExecutableTypeWhisperCpp
}

// getArgs returns command arguments for transcribing inputFile with the given
// executable type. Output goes to stdout without timestamps; openai-whisper
// also writes a txt file into outputDir.
func getArgs(execType ExecutableType, modelPath, language, inputFile, outputDir string, threads int) []string {
	if threads < 1 {
		threads = 4
	}

	switch execType {
	case ExecutableTypePython, ExecutableTypeOpenAI:
		// openai-whisper takes a model name, not a ggml file
		model := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(modelPath), "ggml-"), ".bin")
		args := []string{
			"--model", model,
			"--task", "transcribe",
			"--output_format", "txt",
			"--output_dir", outputDir,
			"--verbose", "True",
			"--temperature", "0",
			"--threads", strconv.Itoa(threads),
		}
		if language != "" {
			args = append(args, "--language", language)
		}
		return append(args, inputFile)

	default:
		args := []string{
			"-m", modelPath,
			"-f", inputFile,
			"-nt", // No timestamps
			"-np", // No progress prints
			"-t", strconv.Itoa(threads),
		}
		if language != "" {
			args = append(args, "-l", language)
		}
		return args
	}
}

// isProcessingLine identifies lines that are just progress information
func isProcessingLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return true
	}

	return strings.HasPrefix(trimmed, "whisper_") || // Internal debug logs
		strings.HasPrefix(trimmed, "system_info:") ||
		strings.HasPrefix(trimmed, "main:") ||
		strings.HasPrefix(trimmed, "Detected language:")
}

// cleanOutputLine cleans a line of output based on executable type
func cleanOutputLine(line string, execType ExecutableType) string {
	line = strings.TrimSpace(line)
	if line == "" {
		return ""
	}

	// Both whisper.cpp and openai-whisper print [start --> end] in verbose mode
	line = timestampRegex.ReplaceAllString(line, "")
	line = strings.TrimSpace(line)

	if execType == ExecutableTypeWhisperCpp {
		// Lines made only of a bracketed marker are progress or silence
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") && !noiseRegex.MatchString(line) {
			return ""
		}
	}

	line = noiseRegex.ReplaceAllString(line, "")
	return strings.TrimSpace(line)
}

// calculateTimeout returns how long whisper may run for audio of the given
// length: twice the duration plus 30 seconds, never less than a minute.
// Unknown durations get a generous fixed limit.
func calculateTimeout(audioLength time.Duration) time.Duration {
	const (
		minTimeout     = 60 * time.Second
		unknownTimeout = 30 * time.Minute
	)
	if audioLength <= 0 {
		return unknownTimeout
	}

	timeout := 2*audioLength + 30*time.Second
	if timeout < minTimeout {
		timeout = minTimeout
	}
	return timeout
}
