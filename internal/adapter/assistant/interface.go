// Package assistant provides an abstraction over the hosted assistant provider.
package assistant

import (
	"context"

	"github.com/myrsple/azv-bot/internal/domain"
)

// Provider defines the hosted assistant operations used by the proxy.
// Implementations return *domain.ProviderError for upstream failures.
type Provider interface {
	// CreateAssistant creates a new assistant identity.
	CreateAssistant(ctx context.Context, spec domain.AssistantSpec) (domain.Assistant, error)

	// CreateThread creates an empty conversation thread.
	CreateThread(ctx context.Context) (domain.Thread, error)

	// CreateMessage appends a user message to a thread.
	CreateMessage(ctx context.Context, threadID, content string) (domain.ThreadMessage, error)

	// CreateRun starts the assistant over the thread's current history.
	CreateRun(ctx context.Context, threadID, assistantID string) (domain.Run, error)

	// RetrieveRun fetches the current state of a run.
	RetrieveRun(ctx context.Context, threadID, runID string) (domain.Run, error)

	// ListMessages lists the thread's messages, newest first.
	ListMessages(ctx context.Context, threadID string) (domain.MessageList, error)
}

// Ensure implementations satisfy Provider.
var (
	_ Provider = (*OpenAIClient)(nil)
	_ Provider = (*MockClient)(nil)
)
