package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultFetchTimeout = 30 * time.Second
	maxFileBytes        = 64 << 20
)

// HTTPOption configures an HTTPSource.
type HTTPOption func(*HTTPSource)

// WithHTTPClient sets the client used for fetches.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(s *HTTPSource) {
		if c != nil {
			s.client = c
		}
	}
}

// WithFetchTimeout bounds a single fetch.
func WithFetchTimeout(d time.Duration) HTTPOption {
	return func(s *HTTPSource) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// HTTPSource downloads files from the drive-sync backend, which serves
// synced files at {base}/files/{name}.
type HTTPSource struct {
	base    *url.URL
	client  *http.Client
	timeout time.Duration
}

// NewHTTPSource validates baseURL and creates the source.
func NewHTTPSource(baseURL string, opts ...HTTPOption) (*HTTPSource, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	s := &HTTPSource{base: u, client: http.DefaultClient, timeout: defaultFetchTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Kind implements ByteSource.
func (s *HTTPSource) Kind() string { return "http" }

// Root implements Rooted.
func (s *HTTPSource) Root() string { return s.base.String() }

// URL returns the address a file is fetched from.
func (s *HTTPSource) URL(name string) string {
	u := *s.base
	u.Path = u.Path + "/files/" + name
	return u.String()
}

// Fetch implements ByteSource.
func (s *HTTPSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	n, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL(n), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetchFailed, n, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, n)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: %s: status %d", ErrFetchFailed, n, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFileBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetchFailed, n, err)
	}
	if len(body) > maxFileBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrFetchFailed, n, maxFileBytes)
	}
	return body, nil
}
