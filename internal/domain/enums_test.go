package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunStatusIsTerminal(t *testing.T) {
	terminal := []RunStatus{
		RunStatusCompleted, RunStatusFailed, RunStatusCancelled,
		RunStatusExpired, RunStatusRequiresAction, RunStatusIncomplete,
	}
	for _, s := range terminal {
		assert.True(t, s.IsTerminal(), s)
	}

	for _, s := range []RunStatus{RunStatusQueued, RunStatusInProgress, RunStatusCancelling, ""} {
		assert.False(t, s.IsTerminal(), s)
	}
}

func TestThreadMessageText(t *testing.T) {
	msg := ThreadMessage{Content: []ContentPart{
		{Type: "image_file"},
		{Type: "text", Text: &TextContent{Value: "first"}},
		{Type: "text", Text: &TextContent{Value: "second"}},
	}}
	text, ok := msg.Text()
	assert.True(t, ok)
	assert.Equal(t, "first", text)

	_, ok = ThreadMessage{}.Text()
	assert.False(t, ok)
}

func TestProviderErrorUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("create thread: %w", &ProviderError{Op: "CreateThread", Err: cause})

	var perr *ProviderError
	assert.True(t, errors.As(err, &perr))
	assert.Equal(t, "CreateThread", perr.Op)
	assert.ErrorIs(t, err, cause)
}

func TestNewRunFailedError(t *testing.T) {
	err := NewRunFailedError(Run{
		ID:        "run_1",
		Status:    RunStatusFailed,
		LastError: &RunLastError{Code: "rate_limit_exceeded", Message: "slow down"},
	})
	assert.Equal(t, "rate_limit_exceeded", err.Code)
	assert.Equal(t, "run run_1 ended with status failed: slow down", err.Error())

	bare := NewRunFailedError(Run{ID: "run_2", Status: RunStatusExpired})
	assert.Equal(t, "run run_2 ended with status expired", bare.Error())
}
