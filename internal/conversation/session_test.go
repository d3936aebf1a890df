package conversation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myrsple/azv-bot/internal/domain"
)

func newTestSession(backend *fakeBackend) *Session {
	return NewSession(backend, NewPoller(backend, clockwork.NewFakeClock(), testInterval, 0))
}

func TestSessionStartIsIdempotent(t *testing.T) {
	backend := newFakeBackend()
	s := newTestSession(backend)

	id, err := s.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "thread_1", id)

	id, err = s.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "thread_1", id)

	creates, _, _, _, _ := backend.calls()
	assert.Equal(t, 1, creates)
}

func TestSessionStartFailure(t *testing.T) {
	backend := newFakeBackend()
	backend.createErr = &domain.ProviderError{Op: "CreateThread", StatusCode: 500, Err: errors.New("down")}
	s := newTestSession(backend)

	_, err := s.Start(context.Background())
	var perr *domain.ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Empty(t, s.ThreadID())

	_, _, err = s.Send(context.Background(), "What is AZV?")
	assert.ErrorIs(t, err, domain.ErrNotStarted)
	assert.Empty(t, s.Messages())

	_, posts, _, _, _ := backend.calls()
	assert.Zero(t, posts)
}

func TestSessionSendEmpty(t *testing.T) {
	backend := newFakeBackend()
	s := newTestSession(backend)
	_, err := s.Start(context.Background())
	require.NoError(t, err)

	_, _, err = s.Send(context.Background(), "  \t\n")
	assert.ErrorIs(t, err, domain.ErrEmptyContent)
	assert.Empty(t, s.Messages())
	assert.False(t, s.Loading())
}

func TestSessionSendCompleted(t *testing.T) {
	backend := newFakeBackend()
	backend.startStatus = domain.RunStatusCompleted
	backend.messages = domain.MessageList{Data: []domain.ThreadMessage{
		textMessage(domain.RoleAssistant, "run_1", "AZV is an agency 【4:0†zdroj.pdf】."),
		textMessage(domain.RoleUser, "", "What is AZV?"),
	}}
	s := newTestSession(backend)
	_, err := s.Start(context.Background())
	require.NoError(t, err)

	reply, found, err := s.Send(context.Background(), "  What is AZV?  ")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "AZV is an agency .", reply.Content)

	assert.Equal(t, []domain.Message{
		{Role: domain.RoleUser, Content: "What is AZV?"},
		{Role: domain.RoleAssistant, Content: "AZV is an agency ."},
	}, s.Messages())
	assert.False(t, s.Loading())
}

func TestSessionPostFailure(t *testing.T) {
	backend := newFakeBackend()
	backend.postErr = &domain.ProviderError{Op: "PostMessage", StatusCode: 500, Err: errors.New("Failed to add message")}
	s := newTestSession(backend)
	_, err := s.Start(context.Background())
	require.NoError(t, err)

	_, found, err := s.Send(context.Background(), "What is AZV?")
	require.Error(t, err)
	assert.False(t, found)

	var perr *domain.ProviderError
	assert.True(t, errors.As(err, &perr))
	assert.Equal(t, []domain.Message{{Role: domain.RoleUser, Content: "What is AZV?"}}, s.Messages())
	assert.False(t, s.Loading())

	_, _, starts, gets, lists := backend.calls()
	assert.Zero(t, starts)
	assert.Zero(t, gets)
	assert.Zero(t, lists)
}

func TestSessionRunFailed(t *testing.T) {
	backend := newFakeBackend()
	backend.startStatus = domain.RunStatusFailed
	backend.lastError = &domain.RunLastError{Code: "rate_limit_exceeded", Message: "slow down"}
	s := newTestSession(backend)
	_, err := s.Start(context.Background())
	require.NoError(t, err)

	_, found, err := s.Send(context.Background(), "What is AZV?")
	assert.False(t, found)
	var rerr *domain.RunFailedError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, domain.RunStatusFailed, rerr.Status)
	assert.Len(t, s.Messages(), 1)

	_, _, _, _, lists := backend.calls()
	assert.Zero(t, lists)
}

func TestSessionExtractionMiss(t *testing.T) {
	backend := newFakeBackend()
	backend.startStatus = domain.RunStatusCompleted
	backend.messages = domain.MessageList{Data: []domain.ThreadMessage{
		textMessage(domain.RoleAssistant, "run_other", "stale reply"),
	}}
	s := newTestSession(backend)
	_, err := s.Start(context.Background())
	require.NoError(t, err)

	_, found, err := s.Send(context.Background(), "What is AZV?")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Len(t, s.Messages(), 1)
	assert.False(t, s.Loading())
}

func TestSessionBusy(t *testing.T) {
	backend := newFakeBackend()
	backend.startStatus = domain.RunStatusCompleted
	backend.postStarted = make(chan struct{})
	backend.postRelease = make(chan struct{})
	s := newTestSession(backend)
	_, err := s.Start(context.Background())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, _, err := s.Send(context.Background(), "first")
		done <- err
	}()

	<-backend.postStarted
	assert.True(t, s.Loading())
	_, _, err = s.Send(context.Background(), "second")
	assert.ErrorIs(t, err, domain.ErrBusy)

	close(backend.postRelease)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("first Send did not finish")
	}

	assert.False(t, s.Loading())
	assert.Equal(t, []domain.Message{{Role: domain.RoleUser, Content: "first"}}, s.Messages())
}

func TestSessionTranscript(t *testing.T) {
	backend := newFakeBackend()
	backend.startStatus = domain.RunStatusCompleted
	backend.messages = domain.MessageList{Data: []domain.ThreadMessage{
		textMessage(domain.RoleAssistant, "run_1", "Agentura."),
	}}
	s := newTestSession(backend)
	assert.Empty(t, s.Transcript("Uživatel", "Vědátor"))

	_, err := s.Start(context.Background())
	require.NoError(t, err)
	_, _, err = s.Send(context.Background(), "Co je AZV?")
	require.NoError(t, err)

	assert.Equal(t, "Uživatel: Co je AZV?\n\nVědátor: Agentura.", s.Transcript("Uživatel", "Vědátor"))
}
