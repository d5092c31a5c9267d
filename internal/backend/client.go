package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/observability"
)

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 1 << 16
)

// HTTPClient matches the subset of http.Client used by Client.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// Authorizer decorates outgoing requests with visitor credentials.
type Authorizer interface {
	Apply(*http.Request)
}

// Client performs JSON calls against the storefront API.
type Client struct {
	base   *url.URL
	client HTTPClient
}

// NewClient constructs a Client for the given base URL. A nil client gets a default with timeout.
func NewClient(baseURL string, client HTTPClient) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("backend: base URL is required")
	}
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("backend: parse base URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("backend: base URL %q must be absolute", baseURL)
	}
	if !strings.HasSuffix(parsed.Path, "/") {
		parsed.Path += "/"
	}
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{base: parsed, client: client}, nil
}

// BaseURL returns the configured API origin.
func (c *Client) BaseURL() *url.URL {
	u := *c.base
	return &u
}

// Request describes one backend call.
type Request struct {
	// Operation names the call in spans and logs, e.g. "cart.load".
	Operation string
	Method    string
	Path      string
	Query     url.Values
	// JSON is encoded as the request body when set.
	JSON any
	// Body and ContentType send a pre-encoded payload (multipart uploads).
	Body        io.Reader
	ContentType string
	Auth        Authorizer
	Header      http.Header
}

// Do sends the request and decodes a 2xx JSON body into out (when non-nil). Non-2xx responses
// return *Error; transport failures wrap ErrUnavailable.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return err
	}

	operation := req.Operation
	if operation == "" {
		operation = req.Method + " " + req.Path
	}
	ctx, finish := observability.StartClientSpan(ctx, "backend."+operation, httpReq)
	httpReq = httpReq.WithContext(ctx)
	logger := observability.FromContext(ctx)

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		finish(0, err)
		logger.Warn("backend request failed",
			zap.String("operation", operation),
			zap.String("path", httpReq.URL.Path),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %s: %w", ErrUnavailable, operation, err)
	}
	defer resp.Body.Close()
	finish(resp.StatusCode, nil)

	logger.Debug("backend request completed",
		zap.String("operation", operation),
		zap.String("method", httpReq.Method),
		zap.String("path", httpReq.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errorFromResponse(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %s: read body: %w", ErrUnavailable, operation, err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("backend: decode %s: %w", operation, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	contentType := req.ContentType
	switch {
	case req.JSON != nil:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(req.JSON); err != nil {
			return nil, fmt.Errorf("backend: encode payload: %w", err)
		}
		body = &buf
		contentType = "application/json"
	case req.Body != nil:
		body = req.Body
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.Resolve(req.Path, req.Query), body)
	if err != nil {
		return nil, fmt.Errorf("backend: build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	for key, values := range req.Header {
		httpReq.Header[key] = values
	}
	if req.Auth != nil {
		req.Auth.Apply(httpReq)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	} else if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	return httpReq, nil
}

// Resolve joins an API path (and optional query) onto the base URL.
func (c *Client) Resolve(endpoint string, query url.Values) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	ref := &url.URL{Path: strings.TrimPrefix(endpoint, "/")}
	if len(query) > 0 {
		ref.RawQuery = query.Encode()
	}
	return c.base.ResolveReference(ref).String()
}

// AbsoluteMedia turns a relative media path returned by the API into an absolute URL.
func (c *Client) AbsoluteMedia(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") || strings.HasPrefix(path, "//") {
		return path
	}
	return c.base.ResolveReference(&url.URL{Path: strings.TrimPrefix(path, "/")}).String()
}
