package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// PostMessageRequest is the body of POST /api/thread/:threadId/message.
type PostMessageRequest struct {
	Content string `json:"content"`
}

// CreateThread creates a new conversation thread.
// POST /api/thread
func (h *Handler) CreateThread(c echo.Context) error {
	thread, err := h.service.CreateThread(c.Request().Context())
	if err != nil {
		return respondError(c, err, "Failed to create thread")
	}
	return c.JSON(http.StatusOK, thread)
}

// PostMessage adds a user message to a thread.
// POST /api/thread/:threadId/message
func (h *Handler) PostMessage(c echo.Context) error {
	var req PostMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	msg, err := h.service.PostMessage(c.Request().Context(), c.Param("threadId"), req.Content)
	if err != nil {
		return respondError(c, err, "Failed to add message")
	}
	return c.JSON(http.StatusOK, msg)
}

// ListMessages returns a thread's messages, newest first.
// GET /api/thread/:threadId/messages
func (h *Handler) ListMessages(c echo.Context) error {
	list, err := h.service.ListMessages(c.Request().Context(), c.Param("threadId"))
	if err != nil {
		return respondError(c, err, "Failed to get messages")
	}
	return c.JSON(http.StatusOK, list)
}

// CreateAssistant creates an assistant from the configured settings.
// POST /api/assistant
func (h *Handler) CreateAssistant(c echo.Context) error {
	a, err := h.service.CreateAssistant(c.Request().Context())
	if err != nil {
		return respondError(c, err, "Failed to create assistant")
	}
	return c.JSON(http.StatusOK, a)
}
