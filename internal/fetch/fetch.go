// Package fetch is the outbound HTTP primitive used by the scraper.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultUserAgent is a stable desktop browser string.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// maxBodySize caps how much of a page is read.
const maxBodySize = 10 << 20

// Response is a fetched page.
type Response struct {
	Status   int
	Body     []byte
	FinalURL string
}

// Fetcher retrieves a page. Implementations return *TransportError for
// timeouts, connection failures and non-2xx statuses.
type Fetcher interface {
	Get(ctx context.Context, rawURL string, query url.Values, timeout time.Duration) (*Response, error)
}

// TransportError describes a failed fetch.
type TransportError struct {
	URL     string
	Status  int // 0 when no response was received
	Timeout bool
	Err     error
}

func (e *TransportError) Error() string {
	switch {
	case e.Timeout:
		return fmt.Sprintf("fetch %s: timed out: %v", e.URL, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.Status)
	default:
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// Client fetches pages over plain HTTP with browser-like headers.
type Client struct {
	httpClient *http.Client
	headers    http.Header
}

// NewClient builds a Client. An empty userAgent uses DefaultUserAgent.
func NewClient(userAgent string) *Client {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	h := http.Header{}
	h.Set("User-Agent", userAgent)
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	h.Set("Accept-Language", "en-US,en;q=0.5")
	h.Set("Connection", "keep-alive")
	h.Set("Upgrade-Insecure-Requests", "1")
	return &Client{
		httpClient: &http.Client{},
		headers:    h,
	}
}

// Get fetches rawURL with query merged into its existing query string.
func (c *Client) Get(ctx context.Context, rawURL string, query url.Values, timeout time.Duration) (*Response, error) {
	target, err := BuildURL(rawURL, query)
	if err != nil {
		return nil, &TransportError{URL: rawURL, Err: err}
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &TransportError{URL: target, Err: err}
	}
	req.Header = c.headers.Clone()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{URL: target, Timeout: isTimeout(err), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &TransportError{URL: target, Timeout: isTimeout(err), Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{URL: target, Status: resp.StatusCode, Err: fmt.Errorf("status %s", resp.Status)}
	}

	return &Response{
		Status:   resp.StatusCode,
		Body:     body,
		FinalURL: resp.Request.URL.String(),
	}, nil
}

// BuildURL merges query into rawURL and checks it is an http(s) URL.
func BuildURL(rawURL string, query url.Values) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	if !strings.HasPrefix(u.Scheme, "http") {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			q[k] = append([]string(nil), vs...)
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne interface{ Timeout() bool }
	return errors.As(err, &ne) && ne.Timeout()
}
