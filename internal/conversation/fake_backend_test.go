package conversation

import (
	"context"
	"sync"

	"github.com/myrsple/azv-bot/internal/domain"
)

// fakeBackend scripts run statuses and records calls.
type fakeBackend struct {
	mu sync.Mutex

	startStatus domain.RunStatus
	statuses    []domain.RunStatus // returned by successive GetRun calls; the last repeats
	lastError   *domain.RunLastError
	messages    domain.MessageList

	createErr error
	postErr   error
	startErr  error
	getErr    error
	listErr   error

	// postStarted is closed when PostMessage is entered; PostMessage then
	// waits for postRelease when it is set.
	postStarted chan struct{}
	postRelease chan struct{}

	createCalls int
	postCalls   int
	startCalls  int
	getCalls    int
	listCalls   int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{startStatus: domain.RunStatusQueued}
}

func (f *fakeBackend) CreateThread(ctx context.Context) (domain.Thread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return domain.Thread{}, f.createErr
	}
	return domain.Thread{ID: "thread_1", Object: "thread"}, nil
}

func (f *fakeBackend) PostMessage(ctx context.Context, threadID, content string) (domain.ThreadMessage, error) {
	f.mu.Lock()
	f.postCalls++
	started, release, err := f.postStarted, f.postRelease, f.postErr
	f.mu.Unlock()

	if started != nil {
		close(started)
	}
	if release != nil {
		<-release
	}
	if err != nil {
		return domain.ThreadMessage{}, err
	}
	return textMessage(domain.RoleUser, "", content), nil
}

func (f *fakeBackend) StartRun(ctx context.Context, threadID string) (domain.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.startCalls++
	if f.startErr != nil {
		return domain.Run{}, f.startErr
	}
	return domain.Run{ID: "run_1", ThreadID: threadID, Status: f.startStatus}, nil
}

func (f *fakeBackend) GetRun(ctx context.Context, threadID, runID string) (domain.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.getErr != nil {
		return domain.Run{}, f.getErr
	}
	status := domain.RunStatusInProgress
	if n := len(f.statuses); n > 0 {
		i := f.getCalls - 1
		if i >= n {
			i = n - 1
		}
		status = f.statuses[i]
	}
	run := domain.Run{ID: runID, ThreadID: threadID, Status: status}
	if status.IsTerminal() && status != domain.RunStatusCompleted {
		run.LastError = f.lastError
	}
	return run, nil
}

func (f *fakeBackend) ListMessages(ctx context.Context, threadID string) (domain.MessageList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return domain.MessageList{}, f.listErr
	}
	return f.messages, nil
}

func (f *fakeBackend) calls() (create, post, start, get, list int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createCalls, f.postCalls, f.startCalls, f.getCalls, f.listCalls
}
