package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/corpix/uarand"
	"github.com/klauspost/compress/gzip"
)

// DefaultMaxBodyBytes caps a downloaded feed. Published sheets of a few
// thousand rows stay well below this.
const DefaultMaxBodyBytes = 8 << 20

// Fetcher downloads the raw bytes of a feed.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// StatusError reports a non-success HTTP status from the feed host.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}

// Client downloads CSV exports over HTTP. It does not retry: a failed
// download is reported to the caller and the next request tries again.
type Client struct {
	httpClient   *http.Client
	maxBodyBytes int64
}

// NewClient creates a feed client. The per-request deadline comes from the
// caller's context; timeout is a transport-level backstop.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		maxBodyBytes: DefaultMaxBodyBytes,
	}
}

// NewClientWithHTTP wraps an existing http.Client (used by tests).
func NewClientWithHTTP(hc *http.Client) *Client {
	return &Client{httpClient: hc, maxBodyBytes: DefaultMaxBodyBytes}
}

// Fetch performs one GET and returns the decoded body.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Setting Accept-Encoding ourselves disables the transport's transparent
	// decompression, so gzip is decoded below.
	req.Header.Set("User-Agent", uarand.GetRandom())
	req.Header.Set("Accept", "text/csv,text/plain;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "vi-VN,vi;q=0.9,en-US;q=0.8,en;q=0.7")
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	var reader io.Reader = resp.Body
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress gzip: %w", err)
		}
		defer func() { _ = gz.Close() }()
		reader = gz
	}

	body, err := io.ReadAll(io.LimitReader(reader, c.maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if int64(len(body)) > c.maxBodyBytes {
		return nil, fmt.Errorf("feed body exceeds %d bytes", c.maxBodyBytes)
	}
	return body, nil
}
