// Package client is the HTTP client for the chat endpoint.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/zhouzirui/contrario/pkg/api"
)

// ErrMalformedResponse marks a 2xx reply whose body is not a chat response.
var ErrMalformedResponse = errors.New("malformed chat response")

// StatusError is returned for any non-2xx reply.
type StatusError struct {
	Code   int
	Status string
	Detail string
}

// Error prefers the service-provided detail and falls back to the status text.
func (e *StatusError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.Status != "" {
		return e.Status
	}
	return "HTTP " + strconv.Itoa(e.Code)
}

// Config holds client options.
type Config struct {
	// BaseURL of the chat service, without the /chat suffix.
	BaseURL string

	// Timeout bounds a whole request. Zero waits indefinitely.
	Timeout time.Duration

	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// Client posts chat turns to the remote service.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// New creates a Client.
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		endpoint:   strings.TrimRight(cfg.BaseURL, "/") + api.ChatPath,
		httpClient: httpClient,
	}
}

// Chat sends one turn and returns the assistant reply.
func (c *Client) Chat(ctx context.Context, req api.ChatRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", errors.Wrap(err, "encode chat request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "build chat request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "read chat response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", newStatusError(resp, raw)
	}

	var decoded api.ChatResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", errors.Wrapf(ErrMalformedResponse, "decode body: %v", err)
	}
	if decoded.Response == nil {
		return "", errors.Wrap(ErrMalformedResponse, "missing response field")
	}
	return *decoded.Response, nil
}

func newStatusError(resp *http.Response, raw []byte) *StatusError {
	statusErr := &StatusError{
		Code:   resp.StatusCode,
		Status: statusText(resp),
	}

	var body api.ErrorBody
	if err := json.Unmarshal(raw, &body); err == nil {
		statusErr.Detail = strings.TrimSpace(body.Detail)
	}
	return statusErr
}

// statusText strips the numeric code from resp.Status ("500 Internal Server
// Error" becomes "Internal Server Error").
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	if text == "" {
		return fmt.Sprintf("HTTP %d", resp.StatusCode)
	}
	return text
}
