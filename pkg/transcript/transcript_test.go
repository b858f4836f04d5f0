package transcript

import (
	"os"
	"path/filepath"
	"testing"
	"unicode/utf8"
)

func TestSiblingPath(t *testing.T) {
	testCases := []struct {
		src      string
		ext      string
		expected string
	}{
		{"/audio/clip.m4a", ".txt", "/audio/clip.txt"},
		{"/audio/clip.m4a", "md", "/audio/clip.md"},
		{"/audio/my.talk.mp3", ".txt", "/audio/my.talk.txt"},
		{"/audio/noext", ".txt", "/audio/noext.txt"},
	}
	for _, tc := range testCases {
		if got := SiblingPath(tc.src, tc.ext); got != tc.expected {
			t.Errorf("SiblingPath(%q, %q): expected %q, got %q", tc.src, tc.ext, tc.expected, got)
		}
	}
}

func TestSaveWritesSiblingText(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "clip.m4a")
	text := "Dobrý deň, ako sa máte? Ďakujem, výborne."

	saved, err := Save(src, text, Options{})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if saved.TextPath != filepath.Join(dir, "clip.txt") {
		t.Errorf("Expected clip.txt, got %s", saved.TextPath)
	}
	if saved.MarkdownPath != "" {
		t.Errorf("Expected no markdown file, got %s", saved.MarkdownPath)
	}

	data, err := os.ReadFile(saved.TextPath)
	if err != nil {
		t.Fatalf("Failed to read transcript: %v", err)
	}
	if !utf8.Valid(data) {
		t.Error("Expected transcript to be valid UTF-8")
	}
	if string(data) != text {
		t.Errorf("Expected %q, got %q", text, string(data))
	}
	if _, err := os.Stat(filepath.Join(dir, "clip.md")); !os.IsNotExist(err) {
		t.Error("Expected no clip.md without the markdown option")
	}
}

func TestSaveWritesMarkdown(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "rozhovor.wav")

	saved, err := Save(src, "Hovoriaci 1: Ahoj.\n\nHovoriaci 2: Čau.", Options{Markdown: true})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	data, err := os.ReadFile(saved.MarkdownPath)
	if err != nil {
		t.Fatalf("Failed to read markdown: %v", err)
	}
	expected := "# Transkript\n\n## Hovoriaci 1\n\nAhoj.\n\n## Hovoriaci 2\n\nČau."
	if string(data) != expected {
		t.Errorf("Expected %q, got %q", expected, string(data))
	}
}

func TestSaveReportsWriteFailure(t *testing.T) {
	src := filepath.Join(t.TempDir(), "missing-dir", "clip.m4a")

	saved, err := Save(src, "text", Options{Markdown: true})
	if err == nil {
		t.Fatal("Expected an error when the directory does not exist")
	}
	if saved.TextPath != "" || saved.MarkdownPath != "" {
		t.Errorf("Expected nothing saved, got %+v", saved)
	}
}

func TestMarkdown(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "  \n ", "# Transkript\n\n*(prázdne)*"},
		{"plain", "Dobrý deň.", "# Transkript\n\nDobrý deň."},
		{"speaker", "Hovoriaci 1:   Dobrý deň.", "# Transkript\n\n## Hovoriaci 1\n\nDobrý deň."},
		{"multiline speaker", "Hovoriaci 3: prvý riadok\ndruhý riadok", "# Transkript\n\n## Hovoriaci 3\n\nprvý riadok\ndruhý riadok"},
		{"mixed", "Úvod\n\nHovoriaci 2: Áno", "# Transkript\n\nÚvod\n\n## Hovoriaci 2\n\nÁno"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Markdown(tc.input); got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}
