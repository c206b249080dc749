// Package source acquires the raw registry spreadsheet from a local path or
// an HTTP(S) URL and stages it in a working file.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "micsync/1.0"

// maxRedirects matches net/http's default redirect policy.
const maxRedirects = 10

// Document is a fetched spreadsheet.
type Document struct {
	// Location is where the bytes came from (path or URL).
	Location string
	// Path is the working file the bytes were written to.
	Path string
	// Data holds the raw spreadsheet bytes.
	Data []byte
}

// FetchError represents a failure to obtain or stage the source spreadsheet.
type FetchError struct {
	Location string
	Message  string
	Cause    error
}

func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.Location, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.Location, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// Options configures the fetch behavior.
type Options struct {
	// WorkFile is the path the fetched bytes are written to.
	WorkFile  string
	Timeout   time.Duration
	UserAgent string
	// Client overrides the HTTP client (Timeout is ignored when set).
	Client *http.Client
}

// Fetcher obtains source spreadsheets.
type Fetcher struct {
	opts   Options
	client *http.Client
	logger *slog.Logger
}

// NewFetcher creates a Fetcher. A zero Timeout or empty UserAgent falls back
// to the package defaults.
func NewFetcher(opts Options, logger *slog.Logger) (*Fetcher, error) {
	if opts.WorkFile == "" {
		return nil, errors.New("work file path is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if logger == nil {
		logger = slog.Default()
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{
			Timeout: opts.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		}
	}

	return &Fetcher{opts: opts, client: client, logger: logger}, nil
}

// Fetch reads location (a filesystem path, file:// URL or http(s) URL),
// writes the bytes to the working file and returns them.
func (f *Fetcher) Fetch(ctx context.Context, location string) (*Document, error) {
	var (
		data []byte
		err  error
	)
	if isRemote(location) {
		data, err = f.download(ctx, location)
	} else {
		data, err = readLocal(location)
	}
	if err != nil {
		return nil, err
	}

	if err := writeWorkFile(f.opts.WorkFile, data); err != nil {
		return nil, &FetchError{
			Location: location,
			Message:  fmt.Sprintf("failed to write working file %s", f.opts.WorkFile),
			Cause:    err,
		}
	}

	f.logger.Debug("source fetched",
		"location", location,
		"work_file", f.opts.WorkFile,
		"bytes", len(data),
	)

	return &Document{
		Location: location,
		Path:     f.opts.WorkFile,
		Data:     data,
	}, nil
}

func (f *Fetcher) download(ctx context.Context, location string) ([]byte, error) {
	parsedURL, err := url.Parse(location)
	if err != nil || parsedURL.Host == "" {
		return nil, &FetchError{
			Location: location,
			Message:  "invalid URL",
			Cause:    err,
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, &FetchError{
			Location: location,
			Message:  "failed to create request",
			Cause:    err,
		}
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{
			Location: location,
			Message:  "HTTP request failed",
			Cause:    err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{
			Location: location,
			Message:  fmt.Sprintf("unexpected status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{
			Location: location,
			Message:  "failed to read response body",
			Cause:    err,
		}
	}
	return body, nil
}

func readLocal(location string) ([]byte, error) {
	path := strings.TrimPrefix(location, "file://")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FetchError{
			Location: location,
			Message:  "failed to read local file",
			Cause:    err,
		}
	}
	return data, nil
}

// writeWorkFile replaces path with data via a temp file in the same directory.
func writeWorkFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

// isRemote reports whether location is an http or https URL.
func isRemote(location string) bool {
	lower := strings.ToLower(location)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
