package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"healthmate-server/internal/events"
	"healthmate-server/internal/middleware"
	"healthmate-server/internal/utils"
)

// EventsHandler serves the per-user change-notification stream.
type EventsHandler struct {
	Broadcaster *events.Broadcaster
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(broadcaster *events.Broadcaster) *EventsHandler {
	return &EventsHandler{Broadcaster: broadcaster}
}

// Stream holds an SSE connection open and forwards change events addressed
// to the authenticated user. Clients reload the named table's list on each
// event.
func (h *EventsHandler) Stream(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	ch := h.Broadcaster.Subscribe(userID)
	defer h.Broadcaster.Unsubscribe(userID, ch)

	fmt.Fprintf(c.Writer, "data: %s\n\n", "connected")
	c.Writer.Flush()

	for {
		select {
		case message, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(c.Writer, "data: %s\n\n", message)
			c.Writer.Flush()
		case <-c.Request.Context().Done():
			return
		}
	}
}
