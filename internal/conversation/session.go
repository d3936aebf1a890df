package conversation

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/myrsple/azv-bot/internal/domain"
)

// Session holds one user's conversation: the thread, the ordered
// messages and whether a reply is pending. One turn runs at a time.
type Session struct {
	backend Backend
	poller  *Poller

	startMu sync.Mutex

	mu       sync.Mutex
	threadID string
	messages []domain.Message
	loading  bool
}

// NewSession creates a session that is not started yet.
func NewSession(backend Backend, poller *Poller) *Session {
	return &Session{backend: backend, poller: poller}
}

// Start creates the session's thread. Later calls return the existing id.
// On failure the session stays unstarted; Start is not retried for the caller.
func (s *Session) Start(ctx context.Context) (string, error) {
	s.startMu.Lock()
	defer s.startMu.Unlock()

	if id := s.ThreadID(); id != "" {
		return id, nil
	}

	thread, err := s.backend.CreateThread(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create thread: %w", err)
	}

	s.mu.Lock()
	s.threadID = thread.ID
	s.mu.Unlock()
	return thread.ID, nil
}

// ThreadID returns the thread id, or "" before Start succeeds.
func (s *Session) ThreadID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.threadID
}

// Loading reports whether a turn is waiting for its reply.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Messages returns a copy of the conversation so far.
func (s *Session) Messages() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Send runs one turn: post the message, start a run, poll it and extract
// the reply. The user message stays in the conversation even when the turn
// fails. found is false when the run completed without a text reply.
func (s *Session) Send(ctx context.Context, content string) (reply domain.Message, found bool, err error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Message{}, false, domain.ErrEmptyContent
	}

	s.mu.Lock()
	switch {
	case s.threadID == "":
		s.mu.Unlock()
		return domain.Message{}, false, domain.ErrNotStarted
	case s.loading:
		s.mu.Unlock()
		return domain.Message{}, false, domain.ErrBusy
	}
	threadID := s.threadID
	s.messages = append(s.messages, domain.Message{Role: domain.RoleUser, Content: content})
	s.loading = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	if _, err := s.backend.PostMessage(ctx, threadID, content); err != nil {
		return domain.Message{}, false, fmt.Errorf("failed to post message: %w", err)
	}

	run, err := s.backend.StartRun(ctx, threadID)
	if err != nil {
		return domain.Message{}, false, fmt.Errorf("failed to start run: %w", err)
	}
	if run.ThreadID == "" {
		run.ThreadID = threadID
	}

	run, err = s.poller.Await(ctx, run)
	if err != nil {
		return domain.Message{}, false, err
	}
	if run.Status != domain.RunStatusCompleted {
		return domain.Message{}, false, domain.NewRunFailedError(run)
	}

	reply, found, err = ExtractResponse(ctx, s.backend, threadID, run.ID)
	if err != nil || !found {
		return domain.Message{}, false, err
	}

	s.mu.Lock()
	s.messages = append(s.messages, reply)
	s.mu.Unlock()
	return reply, true, nil
}

// Transcript renders the conversation as "label: content" blocks separated
// by blank lines.
func (s *Session) Transcript(userLabel, assistantLabel string) string {
	messages := s.Messages()
	blocks := make([]string, 0, len(messages))
	for _, m := range messages {
		label := userLabel
		if m.Role == domain.RoleAssistant {
			label = assistantLabel
		}
		blocks = append(blocks, label+": "+m.Content)
	}
	return strings.Join(blocks, "\n\n")
}
