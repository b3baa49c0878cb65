// Package httpkit provides the shared JSON client for the CRM REST API.
// This is part of the platform layer and contains no business logic.
package httpkit

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

	"telecrm/platform/apperr"
	"telecrm/platform/config"
	"telecrm/platform/logger"

	"github.com/google/uuid"
)

const (
	// RequestIDHeader carries a per-request identifier for server-side correlation.
	RequestIDHeader = "X-Request-ID"

	maxErrorBody = 64 << 10
)

// ErrorResponse is the error payload returned by the API.
// The server uses "message"; some routes answer with "error" instead.
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (e ErrorResponse) text() string {
	if strings.TrimSpace(e.Message) != "" {
		return e.Message
	}
	return e.Error
}

// Client performs JSON requests against the API base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

// Option customizes a Client.
type Option func(*options)

type options struct {
	base           http.RoundTripper
	jar            http.CookieJar
	onUnauthorized func(path string)
}

// WithBaseTransport replaces http.DefaultTransport at the bottom of the chain.
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.base = rt }
}

// WithCookieJar attaches the session cookie jar.
func WithCookieJar(jar http.CookieJar) Option {
	return func(o *options) { o.jar = jar }
}

// WithUnauthorizedHandler installs the cross-cutting 401 interceptor.
func WithUnauthorizedHandler(fn func(path string)) Option {
	return func(o *options) { o.onUnauthorized = fn }
}

// New creates a client for cfg's base URL. The transport chain is
// rate limit -> 401 interceptor -> base transport.
func New(cfg config.APIConfig, log *logger.Logger, opts ...Option) *Client {
	o := options{base: http.DefaultTransport}
	for _, opt := range opts {
		opt(&o)
	}

	var rt http.RoundTripper = o.base
	if o.onUnauthorized != nil {
		rt = &UnauthorizedInterceptor{Next: rt, OnUnauthorized: o.onUnauthorized}
	}
	if cfg.GetAPIRateLimit() > 0 {
		rt = NewRateLimitedTransport(rt, cfg.GetAPIRateLimit(), cfg.GetAPIRateBurst())
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.GetAPIBaseURL(), "/"),
		httpClient: &http.Client{
			Timeout:   cfg.GetHTTPTimeout(),
			Transport: rt,
			Jar:       o.jar,
		},
		log: log,
	}
}

// BaseURL returns the API base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get performs a GET request and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Patch performs a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, body, out)
}

// Do sends the request. Non-2xx answers become *apperr.Error carrying the
// server message verbatim; network failures become KindTransport errors.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	op := method + " " + path
	requestID := uuid.NewString()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return apperr.Wrap(apperr.KindValidation, "encode request", err).WithOp(op)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return apperr.Wrap(apperr.KindValidation, "create request", err).WithOp(op)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.APIError(method, path, err, requestID)
		return apperr.Transport("network error", err).WithOp(op)
	}
	defer resp.Body.Close()

	c.log.APIRequest(method, path, resp.StatusCode, float64(time.Since(start).Milliseconds()), requestID)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp).WithOp(op)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		c.log.APIError(method, path, err, requestID)
		return apperr.Wrap(apperr.KindInternal, fmt.Sprintf("decode response: %v", err), err).WithOp(op)
	}

	return nil
}

func decodeError(resp *http.Response) *apperr.Error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var payload ErrorResponse
	if err := json.Unmarshal(raw, &payload); err == nil {
		return apperr.FromStatus(resp.StatusCode, payload.text())
	}
	return apperr.FromStatus(resp.StatusCode, "")
}
