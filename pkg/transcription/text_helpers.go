package transcription

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	parenPattern   = regexp.MustCompile(`\([^)]*(?i)(music|noise|applause|laughter|hudba|smiech)[^)]*\)`)
	bracketPattern = regexp.MustCompile(`\[(?i)(?:MUSIC|APPLAUSE|LAUGHTER|INAUDIBLE|NOISE|CROSSTALK|SILENCE|BLANK_AUDIO)\]`)
	spacePattern   = regexp.MustCompile(`\s+`)
)

// normalizeTranscriptionText cleans up transcription text for better quality
func normalizeTranscriptionText(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	// Remove noise markers
	text = parenPattern.ReplaceAllString(text, "")
	text = bracketPattern.ReplaceAllString(text, "")

	text = spacePattern.ReplaceAllString(text, " ")

	// Fix punctuation
	text = strings.ReplaceAll(text, " .", ".")
	text = strings.ReplaceAll(text, " ,", ",")
	text = strings.ReplaceAll(text, " ?", "?")
	text = strings.ReplaceAll(text, " !", "!")

	text = strings.TrimSpace(text)
	return capitalizeFirst(text)
}

// capitalizeFirst upper-cases the first rune, which may be multi-byte (č, š, ž)
func capitalizeFirst(text string) string {
	r, size := utf8.DecodeRuneInString(text)
	if r == utf8.RuneError {
		return text
	}
	return string(unicode.ToUpper(r)) + text[size:]
}
