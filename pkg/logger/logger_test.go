package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func captureOutput(t *testing.T, level LogLevel) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	EnableColors(false)
	SetOutput(&buf)
	SetLevel(level)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetLevel(LevelInfo)
		EnableColors(true)
	})
	return &buf
}

func TestLevelFiltering(t *testing.T) {
	buf := captureOutput(t, LevelWarning)

	Debug(CategoryApp, "debug %d", 1)
	Info(CategoryApp, "info %d", 2)
	Warning(CategoryAudio, "warn %d", 3)

	out := buf.String()
	if strings.Contains(out, "debug 1") || strings.Contains(out, "info 2") {
		t.Errorf("Expected debug and info to be filtered, got %q", out)
	}
	if !strings.Contains(out, "warn 3") {
		t.Errorf("Expected warning in output, got %q", out)
	}
	if !strings.Contains(out, "AUDIO") {
		t.Errorf("Expected category in output, got %q", out)
	}
}

func TestSilentLevel(t *testing.T) {
	buf := captureOutput(t, LevelSilent)

	Error(CategoryApp, "should not appear")
	if buf.Len() != 0 {
		t.Errorf("Expected no output at silent level, got %q", buf.String())
	}
}

func TestRepeatedErrorsAreSuppressed(t *testing.T) {
	buf := captureOutput(t, LevelDebug)

	for i := 0; i < 5; i++ {
		Error(CategoryTranscription, "same failure")
	}

	out := buf.String()
	if got := strings.Count(out, "same failure"); got != 2 {
		t.Errorf("Expected 2 logged lines for 5 identical errors, got %d: %q", got, out)
	}
	if !strings.Contains(out, "repeated 5 times") {
		t.Errorf("Expected repeat marker, got %q", out)
	}
}

func TestStandardLogWriterSplitsLines(t *testing.T) {
	buf := captureOutput(t, LevelDebug)

	w := GetStandardLogWriter(LevelWarning, CategoryAudio)
	n, err := w.Write([]byte("first line\n\nsecond line\n"))
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if n != len("first line\n\nsecond line\n") {
		t.Errorf("Expected full length written, got %d", n)
	}

	out := buf.String()
	if !strings.Contains(out, "first line") || !strings.Contains(out, "second line") {
		t.Errorf("Expected both lines in output, got %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	testCases := map[string]LogLevel{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warning": LevelWarning,
		"error":   LevelError,
		"silent":  LevelSilent,
		"bogus":   LevelInfo,
	}
	for in, want := range testCases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q): expected %d, got %d", in, want, got)
		}
	}
}

func TestGetLevelReportsParsedLevel(t *testing.T) {
	captureOutput(t, LevelInfo)

	testCases := map[string]string{
		"warning": "warn",
		"off":     "silent",
		"DEBUG":   "debug",
		"bogus":   "info",
	}
	for input, want := range testCases {
		SetLevel(ParseLevel(input))
		if got := GetLevel().String(); got != want {
			t.Errorf("Expected %q to set level %s, got %s", input, want, got)
		}
	}
}

func TestSystemCategoryInOutput(t *testing.T) {
	buf := captureOutput(t, LevelDebug)

	Debug(CategorySystem, "found %s", "whisper-cli")

	out := buf.String()
	if !strings.Contains(out, "SYSTEM") || !strings.Contains(out, "found whisper-cli") {
		t.Errorf("Expected system category line, got %q", out)
	}
}
