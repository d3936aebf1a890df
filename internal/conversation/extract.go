package conversation

import (
	"context"
	"fmt"

	"github.com/myrsple/azv-bot/internal/domain"
)

// Extract returns the assistant reply produced by runID, with citation
// markers removed. Lists are newest first, so the first match wins.
// Messages without a text part are skipped.
func Extract(list domain.MessageList, runID string) (domain.Message, bool) {
	for _, m := range list.Data {
		if m.Role != domain.RoleAssistant || m.RunID != runID {
			continue
		}
		text, ok := m.Text()
		if !ok {
			continue
		}
		return domain.Message{Role: domain.RoleAssistant, Content: StripCitations(text)}, true
	}
	return domain.Message{}, false
}

// ExtractResponse lists the thread's messages and extracts the reply of runID.
// A missing reply is reported by found, not by an error.
func ExtractResponse(ctx context.Context, backend Backend, threadID, runID string) (msg domain.Message, found bool, err error) {
	list, err := backend.ListMessages(ctx, threadID)
	if err != nil {
		return domain.Message{}, false, fmt.Errorf("failed to list messages: %w", err)
	}
	msg, found = Extract(list, runID)
	return msg, found, nil
}
