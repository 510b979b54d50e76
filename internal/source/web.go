package source

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
)

// blockTags are closed with a newline before sanitizing so paragraphs survive
// as separate lines once the markup is gone.
var blockTags = regexp.MustCompile(`(?i)</?(p|div|br|li|h[1-6]|tr|section|article|header|footer|blockquote)[^>]*>`)

// invisible drops elements whose contents are never page text.
var invisible = regexp.MustCompile(`(?is)<(script|style|noscript|template|svg)[^>]*>.*?</(script|style|noscript|template|svg)>`)

// Fetcher downloads web pages and reduces them to readable text.
type Fetcher struct {
	client   *http.Client
	policy   *bluemonday.Policy
	maxBytes int64
	logger   zerolog.Logger
}

// NewFetcher builds a Fetcher with the given timeout and body size limit.
func NewFetcher(timeout time.Duration, maxBytes int64, logger zerolog.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		policy:   bluemonday.StrictPolicy(),
		maxBytes: maxBytes,
		logger:   logger.With().Str("component", "web_fetcher").Logger(),
	}
}

// ValidateURL checks that raw is an absolute http(s) URL.
func ValidateURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, ErrInvalidURL
	}
	return u, nil
}

// FetchText downloads target and returns its visible text.
func (f *Fetcher) FetchText(ctx context.Context, target string) (string, error) {
	u, err := ValidateURL(target)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "text/html,text/plain;q=0.9,*/*;q=0.5")
	req.Header.Set("User-Agent", "quizgen-service/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrFetchFailed, u.Host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %s: unexpected status %d", ErrFetchFailed, u.Host, resp.StatusCode)
	}

	body := io.Reader(resp.Body)
	if f.maxBytes > 0 {
		body = io.LimitReader(resp.Body, f.maxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", u.Host, err)
	}
	if f.maxBytes > 0 && int64(len(data)) > f.maxBytes {
		return "", fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, u.Host, f.maxBytes)
	}

	text := f.HTMLText(string(data))
	if text == "" {
		return "", ErrEmptyDocument
	}
	f.logger.Debug().Str("host", u.Host).Int("chars", len(text)).Msg("page fetched")
	return text, nil
}

// HTMLText strips markup from document and returns its text content.
func (f *Fetcher) HTMLText(document string) string {
	document = invisible.ReplaceAllString(document, " ")
	document = blockTags.ReplaceAllString(document, "\n")
	text := html.UnescapeString(f.policy.Sanitize(document))
	return collapseWhitespace(text)
}
