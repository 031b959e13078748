// Package gateway is the typed HTTP transport shared by the backend clients.
// Each client owns one Client configured with a fixed base URL and timeout.
// Failures are always returned as values from the errors.go taxonomy.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	neturl "net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Client issues requests against a single backend.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	logger     zerolog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. The client is copied;
// its Timeout is set to the gateway timeout when left at zero.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc == nil {
			return
		}
		cp := *hc
		c.httpClient = &cp
	}
}

// WithLogger attaches a logger for per-request debug output.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// Response is a raw HTTP response with its body fully read.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// New constructs a Client. A trailing slash on baseURL is stripped.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		timeout: timeout,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.httpClient.Timeout == 0 {
		c.httpClient.Timeout = timeout
	}
	return c
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Timeout returns the per-request timeout.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Do sends a request and returns the raw response. A non-nil body is encoded
// as JSON. Non-2xx statuses yield both the response and a *StatusError.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	url := c.baseURL + path

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, &ValidationError{Field: "body", Message: err.Error()}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, &ValidationError{Field: "url", Message: err.Error()}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		netErr := &NetworkError{Method: method, URL: url, Err: unwrapURLError(err)}
		c.logger.Debug().
			Str("method", method).
			Str("url", url).
			Dur("elapsed", time.Since(started)).
			Err(err).
			Msg("request failed")
		return nil, netErr
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Method: method, URL: url, Err: err}
	}

	c.logger.Debug().
		Str("method", method).
		Str("url", url).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(started)).
		Msg("request completed")

	out := &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       raw,
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return out, &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       raw,
		}
	}
	return out, nil
}

// DoJSON sends a request and decodes a 2xx body into T.
func DoJSON[T any](ctx context.Context, c *Client, method, path string, body any) (T, error) {
	var out T
	resp, err := c.Do(ctx, method, path, body)
	if err != nil {
		return out, err
	}
	if err := Decode(path, resp.Body, &out); err != nil {
		return out, err
	}
	return out, nil
}

// Decode unmarshals data into v, wrapping failures as DeserializationError.
func Decode(path string, data []byte, v any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return &DeserializationError{Path: path, Err: errors.New("empty body")}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &DeserializationError{Path: path, Err: err}
	}
	return nil
}

// unwrapURLError strips the *url.Error wrapper so messages do not repeat the
// method and URL.
func unwrapURLError(err error) error {
	var urlErr *neturl.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err
	}
	return err
}
