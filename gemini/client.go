// Package gemini fronts the Generative Language REST API for script
// generation, image generation, and model listing. All outbound failures are
// normalized into user-safe service errors; the API key never appears in a
// message.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"videogen/errs"
	"videogen/retry"
	"videogen/types"
)

// ServiceName identifies this adapter in usage events.
const ServiceName = "gemini"

// DefaultBaseURL is the production REST endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

const (
	// DefaultTextModel is used when the caller selects no text model.
	DefaultTextModel = "gemini-2.0-flash"
	// FallbackImageModel is the hard-coded last resort when the model
	// listing offers no image-capable entry.
	FallbackImageModel = "gemini-2.0-flash-exp-image-generation"
)

// Client is a thin HTTP client shared by the script, image, and model-listing
// services. The model catalog is cached per client instance with a 60-second
// TTL.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	policy     retry.Policy
	sanitizer  *errs.Sanitizer

	mu      sync.Mutex
	catalog []types.ModelInfo
	fetched time.Time
	now     func() time.Time
}

const catalogTTL = 60 * time.Second

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetryPolicy overrides the adapter retry policy.
func WithRetryPolicy(p retry.Policy) Option {
	return func(c *Client) { c.policy = p }
}

// NewClient builds a Client. The API key is required.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errs.NewConfigurationError("gemini API key is not configured (set GEMINI_API_KEY)")
	}
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		policy:     retry.DefaultPolicy,
		sanitizer:  errs.NewSanitizer(apiKey),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// httpError carries an upstream non-2xx status so it can be translated into a
// user-safe message at the adapter boundary.
type httpError struct {
	status int
	body   string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("upstream status %d", e.status)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, payload, out)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// do runs one HTTP exchange under the retry policy. Upstream status errors
// are permanent; only transport-level connection and timeout failures retry.
func (c *Client) do(ctx context.Context, method, path string, payload []byte, out any) error {
	return retry.Do(ctx, c.policy, func() error {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("x-goog-api-key", c.apiKey)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		res, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer res.Body.Close()

		raw, err := io.ReadAll(res.Body)
		if err != nil {
			return err
		}
		if res.StatusCode < 200 || res.StatusCode >= 300 {
			return &httpError{status: res.StatusCode, body: string(raw)}
		}
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return &httpError{status: res.StatusCode, body: "malformed response body"}
		}
		return nil
	})
}

// userMessage rewrites an adapter failure into a user-safe message. Known
// upstream statuses have fixed phrasings; everything else falls back to the
// sanitized generic message.
func (c *Client) userMessage(err error, fallback string) string {
	var he *httpError
	if errors.As(err, &he) {
		switch {
		case he.status == http.StatusUnauthorized || he.status == http.StatusForbidden:
			return "Authentication failed"
		case he.status == http.StatusTooManyRequests:
			return "Rate limit exceeded"
		case he.status == http.StatusRequestTimeout:
			return "Request timed out"
		case he.status >= 500:
			return "Server error"
		}
		return c.sanitizer.Clean(fmt.Sprintf("%s (status %d)", fallback, he.status))
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return "Request timed out"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "Request timed out"
	}
	return c.sanitizer.Clean(fallback)
}

// notify calls a progress or warning callback if one was provided.
func notify(cb func(string), msg string) {
	if cb != nil {
		cb(msg)
	}
}
