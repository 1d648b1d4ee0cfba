package contract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const maxDocumentSize = 4 << 20

// SourceOption customises LoadLocation.
type SourceOption func(*sourceOptions)

type sourceOptions struct {
	http    *http.Client
	timeout time.Duration
}

// WithSourceHTTPClient sets the client used for http(s) locations.
func WithSourceHTTPClient(hc *http.Client) SourceOption {
	return func(o *sourceOptions) {
		if hc != nil {
			o.http = hc
		}
	}
}

// WithSourceTimeout bounds remote fetches. Defaults to 10s.
func WithSourceTimeout(d time.Duration) SourceOption {
	return func(o *sourceOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// LoadLocation reads a document from a file path or an http(s) URL and
// parses it with Load.
func LoadLocation(ctx context.Context, location string, opts ...SourceOption) (*Document, error) {
	o := sourceOptions{http: http.DefaultClient, timeout: 10 * time.Second}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	location = strings.TrimSpace(location)
	var (
		data []byte
		err  error
	)
	switch {
	case location == "":
		return nil, errors.New("contract: document location is required")
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		data, err = fetch(ctx, o, location)
	default:
		data, err = readFile(ctx, location)
	}
	if err != nil {
		return nil, err
	}
	return Load(ctx, data)
}

func readFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("contract: read %s: %w", path, err)
	}
	return data, nil
}

func fetch(ctx context.Context, o sourceOptions, location string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("contract: build request: %w", err)
	}
	req.Header.Set("Accept", "application/yaml, application/json")

	resp, err := o.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("contract: fetch %s: %w", location, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("contract: fetch %s: status %d", location, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("contract: read %s: %w", location, err)
	}
	return data, nil
}
