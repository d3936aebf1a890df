package assistant

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/myrsple/azv-bot/internal/domain"
)

// MockClient is an in-memory Provider for local development and tests.
// A run reports queued, then in_progress, then completes on the following
// retrieve and appends a reply carrying one citation marker.
type MockClient struct {
	mu              sync.Mutex
	threads         map[string]*mockThread
	runs            map[string]*mockRun
	stepsToComplete int
}

type mockThread struct {
	id       string
	created  int64
	messages []domain.ThreadMessage // oldest first
}

type mockRun struct {
	run       domain.Run
	retrieves int
}

// NewMockClient creates a new mock provider.
func NewMockClient() *MockClient {
	return &MockClient{
		threads:         make(map[string]*mockThread),
		runs:            make(map[string]*mockRun),
		stepsToComplete: 2,
	}
}

// CreateAssistant returns a mock assistant.
func (m *MockClient) CreateAssistant(ctx context.Context, spec domain.AssistantSpec) (domain.Assistant, error) {
	return domain.Assistant{
		ID:           "asst_mock_" + shortID(),
		Object:       "assistant",
		CreatedAt:    time.Now().Unix(),
		Name:         spec.Name,
		Model:        spec.Model,
		Instructions: spec.Instructions,
	}, nil
}

// CreateThread creates an in-memory thread.
func (m *MockClient) CreateThread(ctx context.Context) (domain.Thread, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := &mockThread{id: "thread_mock_" + shortID(), created: time.Now().Unix()}
	m.threads[t.id] = t
	return domain.Thread{ID: t.id, Object: "thread", CreatedAt: t.created}, nil
}

// CreateMessage appends a user message.
func (m *MockClient) CreateMessage(ctx context.Context, threadID, content string) (domain.ThreadMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.threads[threadID]
	if !ok {
		return domain.ThreadMessage{}, notFound("CreateMessage", "thread", threadID)
	}
	msg := newMockMessage(threadID, domain.RoleUser, content, "")
	t.messages = append(t.messages, msg)
	return msg, nil
}

// CreateRun queues a run.
func (m *MockClient) CreateRun(ctx context.Context, threadID, assistantID string) (domain.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.threads[threadID]; !ok {
		return domain.Run{}, notFound("CreateRun", "thread", threadID)
	}
	r := &mockRun{run: domain.Run{
		ID:          "run_mock_" + shortID(),
		Object:      "thread.run",
		CreatedAt:   time.Now().Unix(),
		ThreadID:    threadID,
		AssistantID: assistantID,
		Status:      domain.RunStatusQueued,
	}}
	m.runs[r.run.ID] = r
	return r.run, nil
}

// RetrieveRun advances the run one step and returns it.
func (m *MockClient) RetrieveRun(ctx context.Context, threadID, runID string) (domain.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.runs[runID]
	if !ok || r.run.ThreadID != threadID {
		return domain.Run{}, notFound("RetrieveRun", "run", runID)
	}
	if r.run.Status.IsTerminal() {
		return r.run, nil
	}

	r.retrieves++
	if r.retrieves < m.stepsToComplete {
		r.run.Status = domain.RunStatusInProgress
		return r.run, nil
	}

	t := m.threads[threadID]
	reply := m.generateMockReply(t)
	t.messages = append(t.messages, newMockMessage(threadID, domain.RoleAssistant, reply, runID))
	r.run.Status = domain.RunStatusCompleted
	return r.run, nil
}

// ListMessages returns the thread's messages, newest first.
func (m *MockClient) ListMessages(ctx context.Context, threadID string) (domain.MessageList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.threads[threadID]
	if !ok {
		return domain.MessageList{}, notFound("ListMessages", "thread", threadID)
	}

	list := domain.MessageList{Object: "list", Data: make([]domain.ThreadMessage, 0, len(t.messages))}
	for i := len(t.messages) - 1; i >= 0; i-- {
		list.Data = append(list.Data, t.messages[i])
	}
	if n := len(list.Data); n > 0 {
		list.FirstID = list.Data[0].ID
		list.LastID = list.Data[n-1].ID
	}
	return list, nil
}

// generateMockReply answers the latest user message.
func (m *MockClient) generateMockReply(t *mockThread) string {
	var lastUserMessage string
	for i := len(t.messages) - 1; i >= 0; i-- {
		if t.messages[i].Role == domain.RoleUser {
			lastUserMessage, _ = t.messages[i].Text()
			break
		}
	}

	if lastUserMessage == "" {
		return "[MOCK] This is a mock response 【0:0†knowledge-base.txt】."
	}
	return fmt.Sprintf("[MOCK] Received your message: %q 【0:1†knowledge-base.txt】.", truncate(lastUserMessage, 100))
}

func newMockMessage(threadID string, role domain.Role, content, runID string) domain.ThreadMessage {
	return domain.ThreadMessage{
		ID:        "msg_mock_" + shortID(),
		Object:    "thread.message",
		CreatedAt: time.Now().Unix(),
		ThreadID:  threadID,
		Role:      role,
		Content: []domain.ContentPart{{
			Type: "text",
			Text: &domain.TextContent{Value: content, Annotations: []any{}},
		}},
		RunID: runID,
	}
}

func notFound(op, kind, id string) error {
	return &domain.ProviderError{
		Op:         op,
		StatusCode: http.StatusNotFound,
		Err:        fmt.Errorf("no %s found with id '%s'", kind, id),
	}
}

func shortID() string {
	return uuid.New().String()[:8]
}

// truncate shortens s to maxLen runes.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
