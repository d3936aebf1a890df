// Package domain defines the core domain models for the assistant proxy.
package domain

// RunStatus represents the provider status of a run.
type RunStatus string

const (
	RunStatusQueued         RunStatus = "queued"
	RunStatusInProgress     RunStatus = "in_progress"
	RunStatusRequiresAction RunStatus = "requires_action"
	RunStatusCancelling     RunStatus = "cancelling"
	RunStatusCancelled      RunStatus = "cancelled"
	RunStatusFailed         RunStatus = "failed"
	RunStatusCompleted      RunStatus = "completed"
	RunStatusIncomplete     RunStatus = "incomplete"
	RunStatusExpired        RunStatus = "expired"
)

// IsTerminal reports whether polling must stop at this status.
// requires_action is terminal here because tool outputs are never submitted.
func (s RunStatus) IsTerminal() bool {
	switch s {
	case RunStatusCompleted, RunStatusFailed, RunStatusCancelled,
		RunStatusExpired, RunStatusRequiresAction, RunStatusIncomplete:
		return true
	}
	return false
}

// Role is the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// EventType represents the type of a ledger event.
type EventType string

const (
	EventTypeThreadCreated   EventType = "thread_created"
	EventTypeMessagePosted   EventType = "message_posted"
	EventTypeMessageRejected EventType = "message_rejected"
	EventTypeRunStarted      EventType = "run_started"
	EventTypeRunStatus       EventType = "run_status"
	EventTypeRunFinished     EventType = "run_finished"
	EventTypeSlotReleased    EventType = "slot_released"
)
