// Package chatapi provides an HTTP client for the /api surface of the server.
package chatapi

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

	"github.com/myrsple/azv-bot/internal/domain"
)

// Client is an HTTP client for the assistant proxy API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ErrorResponse represents an error response from the server.
type ErrorResponse struct {
	Error string `json:"error"`
}

type postMessageRequest struct {
	Content string `json:"content"`
}

// CreateThread calls POST /api/thread.
func (c *Client) CreateThread(ctx context.Context) (domain.Thread, error) {
	var thread domain.Thread
	err := c.do(ctx, "CreateThread", http.MethodPost, "/api/thread", nil, &thread)
	return thread, err
}

// PostMessage calls POST /api/thread/:threadId/message.
func (c *Client) PostMessage(ctx context.Context, threadID, content string) (domain.ThreadMessage, error) {
	var msg domain.ThreadMessage
	err := c.do(ctx, "PostMessage", http.MethodPost,
		"/api/thread/"+url.PathEscape(threadID)+"/message",
		postMessageRequest{Content: content}, &msg)
	return msg, err
}

// StartRun calls POST /api/thread/:threadId/run.
func (c *Client) StartRun(ctx context.Context, threadID string) (domain.Run, error) {
	var run domain.Run
	err := c.do(ctx, "StartRun", http.MethodPost, "/api/thread/"+url.PathEscape(threadID)+"/run", nil, &run)
	return run, err
}

// GetRun calls GET /api/thread/:threadId/run/:runId.
func (c *Client) GetRun(ctx context.Context, threadID, runID string) (domain.Run, error) {
	var run domain.Run
	err := c.do(ctx, "GetRun", http.MethodGet,
		"/api/thread/"+url.PathEscape(threadID)+"/run/"+url.PathEscape(runID), nil, &run)
	return run, err
}

// ListMessages calls GET /api/thread/:threadId/messages.
func (c *Client) ListMessages(ctx context.Context, threadID string) (domain.MessageList, error) {
	var list domain.MessageList
	err := c.do(ctx, "ListMessages", http.MethodGet, "/api/thread/"+url.PathEscape(threadID)+"/messages", nil, &list)
	return list, err
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal %s request: %w", op, err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &domain.ProviderError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return decodeError(op, resp.StatusCode, respBody)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.ProviderError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

// decodeError turns an error response back into the server's domain error.
func decodeError(op string, status int, body []byte) error {
	var errResp ErrorResponse
	msg := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
		msg = errResp.Error
	}

	switch status {
	case http.StatusConflict:
		return domain.ErrRunInFlight
	case http.StatusBadRequest:
		if msg == domain.ErrEmptyContent.Error() {
			return domain.ErrEmptyContent
		}
		if reason, ok := strings.CutPrefix(msg, domain.PolicyViolationPrefix); ok {
			return &domain.PolicyViolation{Reason: reason}
		}
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &domain.ProviderError{Op: op, StatusCode: status, Err: errors.New(msg)}
}
