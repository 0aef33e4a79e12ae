// Package restclient implements the per-entity REST service contract over
// HTTP against the warehouse API.
package restclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

// DefaultEnvelope is the JSONPath of the payload inside API responses.
const DefaultEnvelope = "$.data"

// DefaultTimeout is the HTTP timeout used when none is configured.
const DefaultTimeout = 30 * time.Second

// Sentinel errors for client operations.
var (
	// ErrNotFound is returned when the API answers 404.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is returned when the API answers 401.
	ErrUnauthorized = errors.New("unauthorized")
)

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int
	Code    string
	Message string
	cause   error
}

// Error returns the server-provided message when there is one, so it can be
// shown to users unchanged.
func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed: status %d", e.Status)
}

// Unwrap exposes ErrNotFound and ErrUnauthorized.
func (e *APIError) Unwrap() error {
	return e.cause
}

// errorResponse is the API's error body.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// TokenSource supplies the bearer token for a request. The console passes
// the signed-in user's token through the request context.
type TokenSource func(ctx context.Context) string

// Client is an HTTP client for the warehouse API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      TokenSource
	envelope   jp.Expr
}

// Option configures a Client.
type Option func(*Client) error

// WithTimeout sets the HTTP timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) error {
		c.httpClient.Timeout = timeout
		return nil
	}
}

// WithToken sets a fixed auth token.
func WithToken(token string) Option {
	return func(c *Client) error {
		c.token = func(context.Context) string { return token }
		return nil
	}
}

// WithTokenSource sets a per-request auth token source.
func WithTokenSource(src TokenSource) Option {
	return func(c *Client) error {
		c.token = src
		return nil
	}
}

// WithEnvelope sets the JSONPath that locates the payload in a response body.
// An empty path means the body is the payload.
func WithEnvelope(path string) Option {
	return func(c *Client) error {
		if path == "" || path == "$" {
			c.envelope = nil
			return nil
		}
		expr, err := jp.ParseString(path)
		if err != nil {
			return fmt.Errorf("invalid envelope path %q: %w", path, err)
		}
		c.envelope = expr
		return nil
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		c.httpClient = hc
		return nil
	}
}

// New creates a new API client.
func New(baseURL string, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	if err := WithEnvelope(DefaultEnvelope)(c); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health checks that the API answers on path.
func (c *Client) Health(ctx context.Context, path string) error {
	resp, err := c.send(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("api unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

// Do sends a request with an optional JSON body and decodes the enveloped
// payload into out. out may be nil.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	return c.decode(data, out)
}

// decode unwraps the envelope, if any, and decodes the payload into out.
func (c *Client) decode(data []byte, out any) error {
	if c.envelope == nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}

	// oj keeps integers as int64, so ids above 2^53 survive the re-encode.
	doc, err := oj.Parse(data)
	if err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	payload := doc
	if found := c.envelope.Get(doc); len(found) > 0 {
		payload = found[0]
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to re-encode payload: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode payload: %w", err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
		reader = &buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		if token := c.token(ctx); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return c.httpClient.Do(req)
}

func parseError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	switch resp.StatusCode {
	case http.StatusNotFound:
		apiErr.cause = ErrNotFound
	case http.StatusUnauthorized:
		apiErr.cause = ErrUnauthorized
	}

	body, _ := io.ReadAll(resp.Body)
	var errResp errorResponse
	if json.Unmarshal(body, &errResp) == nil {
		apiErr.Code = errResp.Error
		apiErr.Message = errResp.Message
	}
	return apiErr
}
