// Package apiclient talks to the FreshXpress backend REST API.
//
// AuthFetch attaches the stored bearer token to every request and clears the
// token when the backend answers 401. It never navigates: callers classify
// the returned error with Classify and route to the login view themselves.
package apiclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/freshxpress/dashboard/internal/session"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader carries the correlation id to the backend.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// WithRequestID returns a context carrying id for outbound requests.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the id stored by WithRequestID, or "".
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Client is safe for concurrent use. A Client returned by New has no token
// store; bind one with WithTokens before calling AuthFetch.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
	tokens  session.TokenStore
}

// New returns a client for the API rooted at baseURL.
func New(baseURL string, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		logger:  logger,
	}
}

// WithTokens returns a copy of c bound to the given token store.
func (c *Client) WithTokens(tokens session.TokenStore) *Client {
	cp := *c
	cp.tokens = tokens
	return &cp
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string { return c.baseURL }

// AuthFetch sends an authenticated request to path (relative to the base URL).
// Caller headers are kept; Authorization is set last. On success the caller
// owns the response body.
func (c *Client) AuthFetch(ctx context.Context, method, path string, body io.Reader, header http.Header) (*http.Response, error) {
	if c.tokens == nil {
		return nil, ErrEnvironment
	}
	token, err := c.tokens.Token()
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}
	if token == "" {
		return nil, ErrNoToken
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		if err := c.tokens.Clear(); err != nil {
			c.logger.Warn("failed to clear rejected token", zap.Error(err))
		}
		c.logger.Info("backend rejected token",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", req.Header.Get(RequestIDHeader)))
		return nil, ErrUnauthorized
	}
	return resp, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	id := RequestIDFrom(ctx)
	if id == "" {
		id = uuid.New().String()
	}
	req.Header.Set(RequestIDHeader, id)
	req.Header.Set("Accept", "application/json")
	return req, nil
}
