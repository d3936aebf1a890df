package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/myrsple/azv-bot/internal/domain"
)

// Options configures the OpenAI client.
type Options struct {
	APIKey        string
	BaseURL       string
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
}

// OpenAIClient is the Assistants API client.
type OpenAIClient struct {
	client  *openai.Client
	limiter *rate.Limiter
}

// NewOpenAIClient creates a new Assistants API client.
func NewOpenAIClient(opts Options) *OpenAIClient {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(opts.BaseURL, "/")
	}
	cfg.HTTPClient = &http.Client{
		Timeout:   opts.Timeout,
		Transport: captureTransport{base: http.DefaultTransport},
	}

	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}
	burst := opts.Burst
	if burst < 1 {
		burst = 1
	}

	return &OpenAIClient{
		client:  openai.NewClientWithConfig(cfg),
		limiter: rate.NewLimiter(limit, burst),
	}
}

// CreateAssistant creates a new assistant.
func (c *OpenAIClient) CreateAssistant(ctx context.Context, spec domain.AssistantSpec) (domain.Assistant, error) {
	if err := c.wait(ctx, "CreateAssistant"); err != nil {
		return domain.Assistant{}, err
	}
	req := openai.AssistantRequest{
		Model:        spec.Model,
		Name:         &spec.Name,
		Instructions: &spec.Instructions,
	}
	ctx, body := withCapture(ctx)
	resp, err := c.client.CreateAssistant(ctx, req)
	if err != nil {
		return domain.Assistant{}, providerError("CreateAssistant", err)
	}
	out := toAssistant(resp)
	out.Raw = body.payload(resp)
	return out, nil
}

// CreateThread creates a new empty thread.
func (c *OpenAIClient) CreateThread(ctx context.Context) (domain.Thread, error) {
	if err := c.wait(ctx, "CreateThread"); err != nil {
		return domain.Thread{}, err
	}
	ctx, body := withCapture(ctx)
	resp, err := c.client.CreateThread(ctx, openai.ThreadRequest{})
	if err != nil {
		return domain.Thread{}, providerError("CreateThread", err)
	}
	return domain.Thread{
		ID:        resp.ID,
		Object:    resp.Object,
		CreatedAt: int64(resp.CreatedAt),
		Raw:       body.payload(resp),
	}, nil
}

// CreateMessage appends a user message to the thread.
func (c *OpenAIClient) CreateMessage(ctx context.Context, threadID, content string) (domain.ThreadMessage, error) {
	if err := c.wait(ctx, "CreateMessage"); err != nil {
		return domain.ThreadMessage{}, err
	}
	ctx, body := withCapture(ctx)
	resp, err := c.client.CreateMessage(ctx, threadID, openai.MessageRequest{
		Role:    openai.ChatMessageRoleUser,
		Content: content,
	})
	if err != nil {
		return domain.ThreadMessage{}, providerError("CreateMessage", err)
	}
	msg := toThreadMessage(resp)
	msg.Raw = body.payload(resp)
	return msg, nil
}

// CreateRun starts a run of the given assistant on the thread.
func (c *OpenAIClient) CreateRun(ctx context.Context, threadID, assistantID string) (domain.Run, error) {
	if err := c.wait(ctx, "CreateRun"); err != nil {
		return domain.Run{}, err
	}
	ctx, body := withCapture(ctx)
	resp, err := c.client.CreateRun(ctx, threadID, openai.RunRequest{AssistantID: assistantID})
	if err != nil {
		return domain.Run{}, providerError("CreateRun", err)
	}
	run := toRun(resp)
	run.Raw = body.payload(resp)
	return run, nil
}

// RetrieveRun fetches the run's current state.
func (c *OpenAIClient) RetrieveRun(ctx context.Context, threadID, runID string) (domain.Run, error) {
	if err := c.wait(ctx, "RetrieveRun"); err != nil {
		return domain.Run{}, err
	}
	ctx, body := withCapture(ctx)
	resp, err := c.client.RetrieveRun(ctx, threadID, runID)
	if err != nil {
		return domain.Run{}, providerError("RetrieveRun", err)
	}
	run := toRun(resp)
	run.Raw = body.payload(resp)
	return run, nil
}

// ListMessages lists the thread's messages in provider order.
func (c *OpenAIClient) ListMessages(ctx context.Context, threadID string) (domain.MessageList, error) {
	if err := c.wait(ctx, "ListMessages"); err != nil {
		return domain.MessageList{}, err
	}
	ctx, body := withCapture(ctx)
	resp, err := c.client.ListMessage(ctx, threadID, nil, nil, nil, nil, nil)
	if err != nil {
		return domain.MessageList{}, providerError("ListMessages", err)
	}

	list := domain.MessageList{
		Object:  resp.Object,
		Data:    make([]domain.ThreadMessage, 0, len(resp.Messages)),
		HasMore: resp.HasMore,
		Raw:     body.payload(resp),
	}
	if resp.FirstID != nil {
		list.FirstID = *resp.FirstID
	}
	if resp.LastID != nil {
		list.LastID = *resp.LastID
	}
	for _, m := range resp.Messages {
		list.Data = append(list.Data, toThreadMessage(m))
	}
	return list, nil
}

func (c *OpenAIClient) wait(ctx context.Context, op string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &domain.ProviderError{Op: op, Err: err}
	}
	return nil
}

// providerError wraps an SDK error, keeping the HTTP status when there is one.
func providerError(op string, err error) error {
	perr := &domain.ProviderError{Op: op, Err: err}

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		perr.StatusCode = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		perr.StatusCode = reqErr.HTTPStatusCode
	}
	return perr
}

func toAssistant(a openai.Assistant) domain.Assistant {
	out := domain.Assistant{
		ID:        a.ID,
		Object:    a.Object,
		CreatedAt: int64(a.CreatedAt),
		Model:     a.Model,
	}
	if a.Name != nil {
		out.Name = *a.Name
	}
	if a.Instructions != nil {
		out.Instructions = *a.Instructions
	}
	return out
}

func toRun(r openai.Run) domain.Run {
	out := domain.Run{
		ID:          r.ID,
		Object:      r.Object,
		CreatedAt:   int64(r.CreatedAt),
		ThreadID:    r.ThreadID,
		AssistantID: r.AssistantID,
		Status:      domain.RunStatus(r.Status),
	}
	if r.LastError != nil {
		out.LastError = &domain.RunLastError{
			Code:    string(r.LastError.Code),
			Message: r.LastError.Message,
		}
	}
	return out
}

func toThreadMessage(m openai.Message) domain.ThreadMessage {
	out := domain.ThreadMessage{
		ID:        m.ID,
		Object:    m.Object,
		CreatedAt: int64(m.CreatedAt),
		ThreadID:  m.ThreadID,
		Role:      domain.Role(m.Role),
		Content:   make([]domain.ContentPart, 0, len(m.Content)),
	}
	if m.AssistantID != nil {
		out.AssistantID = *m.AssistantID
	}
	if m.RunID != nil {
		out.RunID = *m.RunID
	}
	for _, part := range m.Content {
		p := domain.ContentPart{Type: part.Type}
		if part.Text != nil {
			p.Text = &domain.TextContent{
				Value:       part.Text.Value,
				Annotations: part.Text.Annotations,
			}
		}
		out.Content = append(out.Content, p)
	}
	return out
}

type captureKey struct{}

// responseBody holds the body of the one provider response made under its context.
type responseBody struct {
	data []byte
}

func withCapture(ctx context.Context) (context.Context, *responseBody) {
	body := &responseBody{}
	return context.WithValue(ctx, captureKey{}, body), body
}

// payload returns the captured provider object, falling back to the SDK's
// decoding of it when nothing usable was captured.
func (b *responseBody) payload(decoded interface{}) json.RawMessage {
	if len(b.data) > 0 && json.Valid(b.data) {
		return b.data
	}
	raw, err := json.Marshal(decoded)
	if err != nil {
		return nil
	}
	return raw
}

// captureTransport records successful response bodies for requests whose
// context carries a responseBody.
type captureTransport struct {
	base http.RoundTripper
}

func (t captureTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	body, ok := req.Context().Value(captureKey{}).(*responseBody)
	if !ok || resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, nil
	}

	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	body.data = data
	resp.Body = io.NopCloser(bytes.NewReader(data))
	return resp, nil
}
