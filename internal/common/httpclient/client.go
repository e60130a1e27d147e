// Package httpclient wraps net/http with the timeouts, browser-like request
// headers and bounded retry policy shared by every outbound call.
package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// defaultHeaders mimic a desktop browser; several issuer verification pages
// refuse requests with a bare Go user agent.
var defaultHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.5",
}

type Client struct {
	httpClient  *http.Client
	maxAttempts int
}

func NewClient(timeout time.Duration, maxAttempts int) *Client {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxAttempts: maxAttempts,
	}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

// Get fetches a URL with browser headers, retrying transient failures with
// exponential backoff. The caller owns the response body.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	var resp *http.Response

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		applyHeaders(req)

		r, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		if r.StatusCode >= 500 {
			r.Body.Close()
			return fmt.Errorf("server error: %s", r.Status)
		}
		if r.StatusCode >= 400 {
			r.Body.Close()
			return backoff.Permanent(fmt.Errorf("request failed: %s", r.Status))
		}
		resp = r
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(c.maxAttempts-1)),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return resp, nil
}

// Head issues a HEAD request and reports the Content-Type, used to confirm
// that a candidate link actually serves a PDF before downloading it.
func (c *Client) Head(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return "", err
	}
	applyHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	return resp.Header.Get("Content-Type"), nil
}

// Download streams a URL into w, returning the Content-Type.
func (c *Client) Download(ctx context.Context, url string, w io.Writer) (string, error) {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if _, err := io.Copy(w, resp.Body); err != nil {
		return "", fmt.Errorf("download copy failed: %w", err)
	}
	return resp.Header.Get("Content-Type"), nil
}

func applyHeaders(req *http.Request) {
	for k, v := range defaultHeaders {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}
}
