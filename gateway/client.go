package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// maxErrorBody bounds how much of an error response is kept in HTTPError
const maxErrorBody = 2048

// DefaultTimeout is used when no http.Client is supplied
const DefaultTimeout = 10 * time.Second

// client is the shared JSON-over-HTTP plumbing of every gateway
type client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

func newClient(baseURL string, httpClient *http.Client, logger *zap.Logger) client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		logger:  logger,
	}
}

// request describes one call; Body is JSON-encoded unless Form is set
type request struct {
	Op      string
	Method  string
	Path    string
	Query   url.Values
	Body    interface{}
	Form    url.Values
	Headers map[string]string
}

// do executes req and returns the raw 2xx body
func (c client) do(ctx context.Context, req request) ([]byte, error) {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	contentType := ""
	switch {
	case req.Form != nil:
		body = strings.NewReader(req.Form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case req.Body != nil:
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to encode request: %w", req.Op, err)
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build request: %w", req.Op, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	started := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s: %w", req.Op, ctx.Err())
		}
		c.logger.Warn("request failed",
			zap.String("op", req.Op),
			zap.String("url", target),
			zap.Error(err))
		return nil, &NetworkError{Op: req.Op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s: %w", req.Op, ctx.Err())
		}
		return nil, &NetworkError{Op: req.Op, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	c.logger.Debug("request completed",
		zap.String("op", req.Op),
		zap.String("method", req.Method),
		zap.String("url", target),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(started)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text := strings.TrimSpace(string(data))
		if len(text) > maxErrorBody {
			text = text[:maxErrorBody]
		}
		return nil, &HTTPError{Op: req.Op, StatusCode: resp.StatusCode, Body: text}
	}
	return data, nil
}

// doJSON executes req and decodes the 2xx body into out
func (c client) doJSON(ctx context.Context, req request, out interface{}) error {
	data, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &ShapeError{Op: req.Op, Reason: "malformed JSON", Err: err}
	}
	return nil
}
