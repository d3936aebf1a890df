package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// StartRun runs the configured assistant over a thread.
// POST /api/thread/:threadId/run
func (h *Handler) StartRun(c echo.Context) error {
	run, err := h.service.StartRun(c.Request().Context(), c.Param("threadId"))
	if err != nil {
		return respondError(c, err, "Failed to run assistant")
	}
	return c.JSON(http.StatusOK, run)
}

// GetRun returns the current state of a run.
// GET /api/thread/:threadId/run/:runId
func (h *Handler) GetRun(c echo.Context) error {
	run, err := h.service.GetRun(c.Request().Context(), c.Param("threadId"), c.Param("runId"))
	if err != nil {
		return respondError(c, err, "Failed to get run status")
	}
	return c.JSON(http.StatusOK, run)
}

// GetRunEvents retrieves ledger events for a run.
// GET /api/thread/:threadId/run/:runId/events
func (h *Handler) GetRunEvents(c echo.Context) error {
	limit := 100
	if l := c.QueryParam("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil && val > 0 {
			limit = val
		}
	}
	afterTs := int64(0)
	if t := c.QueryParam("after_ts"); t != "" {
		if val, err := strconv.ParseInt(t, 10, 64); err == nil {
			afterTs = val
		}
	}

	events, err := h.service.GetRunEvents(c.Request().Context(), c.Param("threadId"), c.Param("runId"), afterTs, limit)
	if err != nil {
		return respondError(c, err, "Failed to get run events")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"events": events,
	})
}
