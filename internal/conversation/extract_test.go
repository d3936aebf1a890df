package conversation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myrsple/azv-bot/internal/domain"
)

func textMessage(role domain.Role, runID, text string) domain.ThreadMessage {
	return domain.ThreadMessage{
		Role:  role,
		RunID: runID,
		Content: []domain.ContentPart{
			{Type: "text", Text: &domain.TextContent{Value: text}},
		},
	}
}

func TestExtractEmptyList(t *testing.T) {
	_, found := Extract(domain.MessageList{}, "run_1")
	assert.False(t, found)
}

func TestExtractSelectsByRunID(t *testing.T) {
	list := domain.MessageList{Data: []domain.ThreadMessage{
		textMessage(domain.RoleAssistant, "run_2", "newer reply"),
		textMessage(domain.RoleUser, "", "second question"),
		textMessage(domain.RoleAssistant, "run_1", "Result 【3:1†doc.txt】 end"),
		textMessage(domain.RoleUser, "", "first question"),
	}}

	msg, found := Extract(list, "run_1")
	require.True(t, found)
	assert.Equal(t, domain.Message{Role: domain.RoleAssistant, Content: "Result  end"}, msg)

	msg, found = Extract(list, "run_2")
	require.True(t, found)
	assert.Equal(t, "newer reply", msg.Content)

	_, found = Extract(list, "run_3")
	assert.False(t, found)
}

func TestExtractIgnoresUserMessagesWithRunID(t *testing.T) {
	list := domain.MessageList{Data: []domain.ThreadMessage{
		textMessage(domain.RoleUser, "run_1", "not a reply"),
	}}
	_, found := Extract(list, "run_1")
	assert.False(t, found)
}

func TestExtractTakesFirstTextPart(t *testing.T) {
	msg := domain.ThreadMessage{
		Role:  domain.RoleAssistant,
		RunID: "run_1",
		Content: []domain.ContentPart{
			{Type: "image_file"},
			{Type: "text", Text: &domain.TextContent{Value: "first"}},
			{Type: "text", Text: &domain.TextContent{Value: "second"}},
		},
	}
	noText := domain.ThreadMessage{Role: domain.RoleAssistant, RunID: "run_1", Content: []domain.ContentPart{{Type: "image_file"}}}

	got, found := Extract(domain.MessageList{Data: []domain.ThreadMessage{noText, msg}}, "run_1")
	require.True(t, found)
	assert.Equal(t, "first", got.Content)

	_, found = Extract(domain.MessageList{Data: []domain.ThreadMessage{noText}}, "run_1")
	assert.False(t, found)
}

func TestExtractResponseListError(t *testing.T) {
	backend := newFakeBackend()
	backend.listErr = errors.New("boom")

	_, found, err := ExtractResponse(context.Background(), backend, "thread_1", "run_1")
	assert.False(t, found)
	assert.ErrorContains(t, err, "boom")
}
