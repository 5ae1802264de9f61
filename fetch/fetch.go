// Package fetch retrieves listing pages over HTTP. Network errors and non-2xx
// responses are reported as transport failures; a fetched page with an empty
// body is not an error.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
)

// Errors returned by Fetch. Every failure wraps ErrTransport; bad statuses
// additionally wrap ErrUnexpectedStatus.
var (
	ErrTransport        = errors.New("transport failure")
	ErrUnexpectedStatus = errors.New("unexpected status code")
)

// Browser-like headers; some publishers refuse the Go default user agent.
const (
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultAccept         = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	DefaultAcceptLanguage = "ja,en-US;q=0.7,en;q=0.3"
)

// Page is a successfully retrieved document. Body is UTF-8 for HTML pages
// whose charset could be determined.
type Page struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

// Config configures a Client.
type Config struct {
	Timeout        time.Duration // per request, default 30s
	MaxBytes       int64         // body cap, default 10MB
	UserAgent      string
	AcceptLanguage string
	Retry          RetryPolicy
	Logger         *slog.Logger
}

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = 10 * 1024 * 1024
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.AcceptLanguage == "" {
		c.AcceptLanguage = DefaultAcceptLanguage
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = 1
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
}

// Client fetches pages with bounded retry.
type Client struct {
	client *http.Client
	config Config
}

// New creates a Client. Zero fields of cfg take their defaults; a zero
// Retry means a single attempt.
func New(cfg Config) *Client {
	cfg.defaults()
	return &Client{
		client: &http.Client{Timeout: cfg.Timeout},
		config: cfg,
	}
}

// Fetch retrieves url. Transient failures (network errors and the statuses
// in isRetryableStatus) are retried up to the policy's attempt budget with
// backoff; other statuses fail at once. Cancelling ctx stops both the request
// and any pending backoff.
func (c *Client) Fetch(ctx context.Context, url string) (*Page, error) {
	policy := c.config.Retry
	var lastErr error

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		page, retry, err := c.fetchOnce(ctx, url)
		if err == nil {
			return page, nil
		}
		lastErr = err

		if !retry || attempt == policy.MaxAttempts || ctx.Err() != nil {
			break
		}

		delay := policy.Delay(attempt)
		c.config.Logger.Debug("retrying fetch",
			"url", url,
			"attempt", attempt,
			"delay", delay,
			"err", err)

		if err := sleep(ctx, delay); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTransport, err)
		}
	}

	return nil, lastErr
}

// fetchOnce performs one request. The boolean reports whether the failure
// is worth retrying.
func (c *Client) fetchOnce(ctx context.Context, url string) (*Page, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, false, fmt.Errorf("%w: failed to create request: %w", ErrTransport, err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", DefaultAccept)
	req.Header.Set("Accept-Language", c.config.AcceptLanguage)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, fmt.Errorf("%w: request failed: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
		return nil, isRetryableStatus(resp.StatusCode),
			fmt.Errorf("%w: %w: %d", ErrTransport, ErrUnexpectedStatus, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxBytes))
	if err != nil {
		return nil, true, fmt.Errorf("%w: failed to read response body: %w", ErrTransport, err)
	}

	contentType := resp.Header.Get("Content-Type")
	if len(data) > 0 && isHTML(contentType) {
		if data, err = toUTF8(data, contentType); err != nil {
			return nil, false, fmt.Errorf("%w: failed to decode body: %w", ErrTransport, err)
		}
	}

	return &Page{
		URL:         resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Body:        data,
	}, false, nil
}

// toUTF8 transcodes an HTML body using the charset from the Content-Type
// header, a BOM or a meta element, in that order of precedence.
func toUTF8(data []byte, contentType string) ([]byte, error) {
	r, err := charset.NewReader(bytes.NewReader(data), contentType)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}

// isHTML reports whether the body should be transcoded to UTF-8. XML and
// feed documents declare their own encoding and are left untouched.
func isHTML(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(strings.ToLower(contentType), "html")
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}

// isRetryableStatus determines if we should retry based on HTTP status code.
func isRetryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout, // 408
		http.StatusTooManyRequests,    // 429
		http.StatusBadGateway,         // 502
		http.StatusServiceUnavailable, // 503
		http.StatusGatewayTimeout:     // 504
		return true
	}
	return false
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
