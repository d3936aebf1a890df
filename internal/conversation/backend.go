// Package conversation drives a chat session against the assistant proxy:
// it posts user turns, starts runs, polls them to a terminal status and
// extracts the reply.
package conversation

import (
	"context"

	"github.com/myrsple/azv-bot/internal/domain"
)

// Backend is the server surface a session talks to. Both the HTTP client
// and the in-process service satisfy it.
type Backend interface {
	CreateThread(ctx context.Context) (domain.Thread, error)
	PostMessage(ctx context.Context, threadID, content string) (domain.ThreadMessage, error)
	StartRun(ctx context.Context, threadID string) (domain.Run, error)
	GetRun(ctx context.Context, threadID, runID string) (domain.Run, error)
	ListMessages(ctx context.Context, threadID string) (domain.MessageList, error)
}
