// Package source resolves raw-source links into file contents.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/autodocx/relay-api/pkg/metrics"
)

const defaultMaxBytes = 2 << 20

var rawURLPattern = regexp.MustCompile(`^https://raw\.githubusercontent\.com/.+`)

// ErrTooLarge is returned when the file exceeds the fetch limit.
var ErrTooLarge = errors.New("source file too large")

// IsRawURL reports whether input is a raw GitHub file link.
func IsRawURL(input string) bool {
	return rawURLPattern.MatchString(input)
}

// Fetcher downloads raw source files.
type Fetcher struct {
	httpClient *http.Client
	maxBytes   int64
	match      func(string) bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithMaxBytes caps the size of fetched files.
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) { f.maxBytes = n }
}

// WithMatcher replaces the link recognizer.
func WithMatcher(match func(string) bool) Option {
	return func(f *Fetcher) { f.match = match }
}

// NewFetcher creates a Fetcher whose requests are bounded by timeout.
func NewFetcher(timeout time.Duration, opts ...Option) *Fetcher {
	f := &Fetcher{
		httpClient: &http.Client{Timeout: timeout},
		maxBytes:   defaultMaxBytes,
		match:      IsRawURL,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Matches reports whether input should be fetched rather than summarized
// as-is.
func (f *Fetcher) Matches(input string) bool {
	return f.match(input)
}

// Fetch downloads url and returns its body.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	start := time.Now()
	body, err := f.fetch(ctx, url)

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	metrics.RecordUpstream("source", outcome, time.Since(start).Seconds())
	return body, err
}

func (f *Fetcher) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	res, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch source: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch source: status %d", res.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, f.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read source: %w", err)
	}
	if int64(len(body)) > f.maxBytes {
		return "", ErrTooLarge
	}
	return string(body), nil
}
