// Package gateway is the single egress point for backend calls. It attaches the
// session credential, purges the session on authentication failures and
// decodes JSON and binary responses.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/hcms-console/hcms-console/internal/session"
)

// Credentials is the part of the session store the gateway depends on.
type Credentials interface {
	Credential() string
	Clear(ctx context.Context, reason string) error
}

// Recorder receives gateway metrics.
type Recorder interface {
	ObserveBackend(method string, status int)
}

// Client issues backend requests on behalf of one session.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      Credentials
	logger     *slog.Logger
	recorder   Recorder
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the gateway logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Client) {
		c.recorder = r
	}
}

// New constructs a Client for the backend rooted at baseURL. The client has no
// session until WithStore is called; requests then go out unauthenticated.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithStore returns a copy of c bound to store.
func (c *Client) WithStore(store Credentials) *Client {
	clone := *c
	clone.store = store
	return &clone
}

// BuildURL joins the base URL, path and query.
func (c *Client) BuildURL(path string, query url.Values) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// Get decodes the JSON response of GET path into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

// Post sends body as JSON and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

// Put sends body as JSON and decodes the response into out.
func (c *Client) Put(ctx context.Context, path string, query url.Values, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, query, body, out)
}

// Delete issues DELETE path.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// GetRaw returns the undecoded JSON body of GET path.
func (c *Client) GetRaw(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.Do(ctx, http.MethodGet, path, query, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Do performs a JSON request. A nil out discards the response body.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("gateway: encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	resp, err := c.send(ctx, method, path, query, reader, "application/json")
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("gateway: read %s %s: %w", method, path, err)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], data...)
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("gateway: decode %s %s: %w", method, path, err)
	}
	return nil
}

// send dispatches the request and converts non-2xx responses into errors. On
// success the caller owns resp.Body.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, body io.Reader, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BuildURL(path, query), body)
	if err != nil {
		return nil, fmt.Errorf("gateway: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", accept)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.store != nil {
		if token := c.store.Credential(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if c.recorder != nil {
			c.recorder.ObserveBackend(method, 0)
		}
		return nil, fmt.Errorf("gateway: %s %s: %w", method, path, err)
	}
	if c.recorder != nil {
		c.recorder.ObserveBackend(method, resp.StatusCode)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
	apiErr := newAPIError(method, path, resp.StatusCode, data)

	if resp.StatusCode == http.StatusUnauthorized && c.store != nil {
		c.logger.Info("backend rejected credential, clearing session", slog.String("method", method), slog.String("path", path))
		if clearErr := c.store.Clear(ctx, session.ReasonUnauthorized); clearErr != nil {
			c.logger.Warn("clear session", slog.Any("error", clearErr))
		}
	} else if resp.StatusCode >= http.StatusInternalServerError {
		c.logger.Warn("backend failure", slog.String("method", method), slog.String("path", path), slog.Int("status", resp.StatusCode))
	}
	return nil, apiErr
}
