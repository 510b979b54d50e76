// Package source turns uploaded documents and web pages into plain text
// that can be fed into a quiz-generation prompt.
package source

import (
	"errors"
	"strings"
	"unicode/utf8"
)

var (
	// ErrUnsupportedType is returned when an upload is not a PDF.
	ErrUnsupportedType = errors.New("unsupported document type")
	// ErrMalformedDocument is returned when a PDF cannot be parsed.
	ErrMalformedDocument = errors.New("malformed pdf document")
	// ErrEmptyDocument is returned when no text could be recovered.
	ErrEmptyDocument = errors.New("document contains no extractable text")
	// ErrInvalidURL is returned for anything but absolute http(s) URLs.
	ErrInvalidURL = errors.New("url must be an absolute http or https address")
	// ErrFetchFailed is returned when a page could not be downloaded.
	ErrFetchFailed = errors.New("could not fetch page")
	// ErrTooLarge is returned when an input exceeds its size limit.
	ErrTooLarge = errors.New("document too large")
)

// Truncate cuts text to at most limit runes, preferring a whitespace boundary.
// A limit of zero or less disables truncation.
func Truncate(text string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)[:limit]
	cut := string(runes)
	if i := strings.LastIndexAny(cut, " \n\t"); i > len(cut)/2 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut)
}

// collapseWhitespace trims each line, squeezes runs of spaces and drops
// repeated blank lines.
func collapseWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if blank || len(out) == 0 {
				continue
			}
			blank = true
			out = append(out, "")
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
