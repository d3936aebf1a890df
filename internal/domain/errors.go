package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyContent is returned when a message has no non-blank content.
	ErrEmptyContent = errors.New("message content is empty")
	// ErrRunInFlight is returned when a thread already has an unresolved run.
	ErrRunInFlight = errors.New("a run is already in flight for this thread")
	// ErrBusy is returned when a session is still waiting for a reply.
	ErrBusy = errors.New("session is waiting for a reply")
	// ErrNotStarted is returned when a session has no thread.
	ErrNotStarted = errors.New("session has no thread")
	// ErrPollDeadline is returned when a run does not finish within the maximum wait.
	ErrPollDeadline = errors.New("run did not reach a terminal status in time")
)

// ConfigurationError reports a required setting that is missing.
type ConfigurationError struct {
	Key string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s is not set", e.Key)
}

// ProviderError wraps a failed call to the hosted assistant provider.
type ProviderError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("provider %s failed [%d]: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("provider %s failed: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// PolicyViolationPrefix starts every PolicyViolation message.
const PolicyViolationPrefix = "message rejected by policy: "

// PolicyViolation reports a message blocked by the admission policy.
type PolicyViolation struct {
	Reason string
}

func (e *PolicyViolation) Error() string {
	return PolicyViolationPrefix + e.Reason
}

// RunFailedError reports a run that ended in a terminal status other than completed.
type RunFailedError struct {
	RunID   string
	Status  RunStatus
	Code    string
	Message string
}

func (e *RunFailedError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("run %s ended with status %s: %s", e.RunID, e.Status, e.Message)
	}
	return fmt.Sprintf("run %s ended with status %s", e.RunID, e.Status)
}

// NewRunFailedError builds a RunFailedError from a terminal run.
func NewRunFailedError(run Run) *RunFailedError {
	err := &RunFailedError{RunID: run.ID, Status: run.Status}
	if run.LastError != nil {
		err.Code = run.LastError.Code
		err.Message = run.LastError.Message
	}
	return err
}
