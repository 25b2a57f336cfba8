// Package client provides an HTTP JSON client for the SCCSE chatbot server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/raphaelgruber/sccse-chat/internal/apperr"
)

// DefaultEndpoint is the address the development server listens on.
const DefaultEndpoint = "http://127.0.0.1:5000"

// RequestIDHeader carries a per-call uuid so server logs can be correlated.
const RequestIDHeader = "X-Request-ID"

// Client talks to the auth and chat-reply endpoints.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a new client.
// If endpoint is empty, uses SCCSE_SERVER_URL env var or defaults to DefaultEndpoint.
// A zero timeout means calls may stay pending until ctx is done.
func New(endpoint string, timeout time.Duration, logger *slog.Logger) *Client {
	if endpoint == "" {
		endpoint = os.Getenv("SCCSE_SERVER_URL")
	}
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Endpoint returns the base URL requests are sent to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// do sends a JSON request and decodes a JSON response body into out.
// Any status is decoded; the caller decides what the status means.
// Failures to complete the call or decode the body are KindTransport errors.
func (c *Client) do(ctx context.Context, op, method, path, requestID string, in, out any) (int, error) {
	var body io.Reader
	if in != nil {
		reqBody, err := json.Marshal(in)
		if err != nil {
			return 0, apperr.Transport(op, fmt.Errorf("marshal request: %w", err))
		}
		body = bytes.NewReader(reqBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, body)
	if err != nil {
		return 0, apperr.Transport(op, fmt.Errorf("create request: %w", err))
	}
	if requestID == "" {
		requestID = uuid.New().String()
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "op", op, "request_id", requestID, "error", err)
		return 0, apperr.Transport(op, fmt.Errorf("execute request: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, apperr.Transport(op, fmt.Errorf("read response: %w", err))
	}

	c.logger.Debug("request completed",
		"op", op,
		"request_id", requestID,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if out != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return resp.StatusCode, apperr.Transport(op, fmt.Errorf("unmarshal response (%s): %w", resp.Status, err))
		}
	}

	return resp.StatusCode, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
