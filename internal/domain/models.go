package domain

import (
	"encoding/json"
	"time"
)

// Thread is a provider-held conversation context.
type Thread struct {
	ID        string `json:"id"`
	Object    string `json:"object"`
	CreatedAt int64  `json:"created_at"`

	Raw json.RawMessage `json:"-"`
}

// MarshalJSON emits the provider payload when there is one.
func (t Thread) MarshalJSON() ([]byte, error) {
	if len(t.Raw) > 0 {
		return t.Raw, nil
	}
	type thread Thread
	return json.Marshal(thread(t))
}

// Message is a session-level chat message.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// TextContent is the text payload of a message content part.
type TextContent struct {
	Value       string `json:"value"`
	Annotations []any  `json:"annotations"`
}

// ContentPart is one element of a provider message's content array.
type ContentPart struct {
	Type string       `json:"type"`
	Text *TextContent `json:"text,omitempty"`
}

// ThreadMessage is the provider message object.
type ThreadMessage struct {
	ID          string        `json:"id"`
	Object      string        `json:"object"`
	CreatedAt   int64         `json:"created_at"`
	ThreadID    string        `json:"thread_id"`
	Role        Role          `json:"role"`
	Content     []ContentPart `json:"content"`
	AssistantID string        `json:"assistant_id,omitempty"`
	RunID       string        `json:"run_id,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// MarshalJSON emits the provider payload when there is one.
func (m ThreadMessage) MarshalJSON() ([]byte, error) {
	if len(m.Raw) > 0 {
		return m.Raw, nil
	}
	type message ThreadMessage
	return json.Marshal(message(m))
}

// Text returns the value of the first text content part.
func (m ThreadMessage) Text() (string, bool) {
	for _, part := range m.Content {
		if part.Type == "text" && part.Text != nil {
			return part.Text.Value, true
		}
	}
	return "", false
}

// MessageList is a page of thread messages, newest first.
type MessageList struct {
	Object  string          `json:"object"`
	Data    []ThreadMessage `json:"data"`
	FirstID string          `json:"first_id,omitempty"`
	LastID  string          `json:"last_id,omitempty"`
	HasMore bool            `json:"has_more"`

	Raw json.RawMessage `json:"-"`
}

// MarshalJSON emits the provider payload when there is one.
func (l MessageList) MarshalJSON() ([]byte, error) {
	if len(l.Raw) > 0 {
		return l.Raw, nil
	}
	type list MessageList
	return json.Marshal(list(l))
}

// RunLastError describes why a run did not complete.
type RunLastError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Run is a single execution of the assistant against a thread.
type Run struct {
	ID          string        `json:"id"`
	Object      string        `json:"object"`
	CreatedAt   int64         `json:"created_at"`
	ThreadID    string        `json:"thread_id"`
	AssistantID string        `json:"assistant_id"`
	Status      RunStatus     `json:"status"`
	LastError   *RunLastError `json:"last_error,omitempty"`

	// Raw is the provider's run object; the fields above are what the proxy acts on.
	Raw json.RawMessage `json:"-"`
}

// MarshalJSON emits the provider payload when there is one.
func (r Run) MarshalJSON() ([]byte, error) {
	if len(r.Raw) > 0 {
		return r.Raw, nil
	}
	type run Run
	return json.Marshal(run(r))
}

// Assistant is a provider assistant identity.
type Assistant struct {
	ID           string `json:"id"`
	Object       string `json:"object"`
	CreatedAt    int64  `json:"created_at"`
	Name         string `json:"name,omitempty"`
	Model        string `json:"model"`
	Instructions string `json:"instructions,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// MarshalJSON emits the provider payload when there is one.
func (a Assistant) MarshalJSON() ([]byte, error) {
	if len(a.Raw) > 0 {
		return a.Raw, nil
	}
	type assistant Assistant
	return json.Marshal(assistant(a))
}

// AssistantSpec describes an assistant to create.
type AssistantSpec struct {
	Name         string
	Instructions string
	Model        string
}

// RunSlot is the ledger view of a thread's run slot.
type RunSlot struct {
	ThreadID    string     `json:"thread_id"`
	ActiveRunID string     `json:"active_run_id,omitempty"`
	ClaimedAt   *time.Time `json:"claimed_at,omitempty"`
}

// Held reports whether a run currently occupies the slot.
func (s RunSlot) Held() bool {
	return s.ClaimedAt != nil
}

// RunRecord is the ledger view of a run.
type RunRecord struct {
	RunID     string     `json:"run_id"`
	ThreadID  string     `json:"thread_id"`
	Status    RunStatus  `json:"status"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// Event represents a ledger event for a run or thread.
type Event struct {
	EventID  string          `json:"event_id"`
	ThreadID string          `json:"thread_id"`
	RunID    string          `json:"run_id,omitempty"`
	Ts       int64           `json:"ts"` // Unix milliseconds
	Type     EventType       `json:"type"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}
