// Package transcript writes finished transcripts next to their source audio
package transcript

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jeff-barlow-spady/transkript/pkg/logger"
)

const (
	markdownTitle = "# Transkript"
	markdownEmpty = "*(prázdne)*"
)

// speakerBlock matches "Hovoriaci 2: text" paragraphs
var speakerBlock = regexp.MustCompile(`(?s)^(Hovoriaci \d+):\s*(.*)$`)

// Options controls which files Save writes
type Options struct {
	// Markdown also writes a .md rendering
	Markdown bool
}

// Saved lists the files Save wrote
type Saved struct {
	TextPath     string
	MarkdownPath string
}

// SiblingPath replaces the extension of src with ext (".txt", "md", ...)
func SiblingPath(src, ext string) string {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return strings.TrimSuffix(src, filepath.Ext(src)) + ext
}

// Save writes text as UTF-8 to a .txt file next to src and, when enabled,
// a Markdown rendering to a .md file. Files that were written are reported
// even when another write fails.
func Save(src, text string, opts Options) (Saved, error) {
	var saved Saved
	var errs []error

	txtPath := SiblingPath(src, ".txt")
	if err := os.WriteFile(txtPath, []byte(text), 0644); err != nil {
		errs = append(errs, fmt.Errorf("failed to write transcript: %w", err))
	} else {
		saved.TextPath = txtPath
		logger.Info(logger.CategoryApp, "Transcript saved to %s", txtPath)
	}

	if opts.Markdown {
		mdPath := SiblingPath(src, ".md")
		if err := os.WriteFile(mdPath, []byte(Markdown(text)), 0644); err != nil {
			errs = append(errs, fmt.Errorf("failed to write markdown transcript: %w", err))
		} else {
			saved.MarkdownPath = mdPath
			logger.Info(logger.CategoryApp, "Markdown transcript saved to %s", mdPath)
		}
	}

	return saved, errors.Join(errs...)
}

// Markdown renders a transcript under a "# Transkript" heading. Paragraphs
// of the form "Hovoriaci N: text" become "## Hovoriaci N" sections.
func Markdown(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return markdownTitle + "\n\n" + markdownEmpty
	}

	blocks := strings.Split(text, "\n\n")
	for i, block := range blocks {
		if m := speakerBlock.FindStringSubmatch(block); m != nil {
			blocks[i] = "## " + m[1] + "\n\n" + strings.TrimSpace(m[2])
		}
	}
	return markdownTitle + "\n\n" + strings.Join(blocks, "\n\n")
}
