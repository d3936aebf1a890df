package domain

// ThreadCreatedPayload is the payload for thread_created event.
type ThreadCreatedPayload struct {
	ThreadID string `json:"thread_id"`
}

// MessagePostedPayload is the payload for message_posted event.
// Only the length is kept; message text lives in the provider store.
type MessagePostedPayload struct {
	MessageID string `json:"message_id"`
	Length    int    `json:"length"`
}

// MessageRejectedPayload is the payload for message_rejected event.
type MessageRejectedPayload struct {
	Reason string `json:"reason"`
}

// RunStartedPayload is the payload for run_started event.
type RunStartedPayload struct {
	AssistantID string    `json:"assistant_id"`
	Status      RunStatus `json:"status"`
}

// RunStatusPayload is the payload for run_status event.
type RunStatusPayload struct {
	Status RunStatus `json:"status"`
}

// RunFinishedPayload is the payload for run_finished event.
type RunFinishedPayload struct {
	Status  RunStatus `json:"status"`
	Code    string    `json:"code,omitempty"`
	Message string    `json:"message,omitempty"`
}

// SlotReleasedPayload is the payload for slot_released event.
type SlotReleasedPayload struct {
	Reason string `json:"reason"`
}
