package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"healthmate-server/internal/events"
	"healthmate-server/internal/models"
)

func TestEventStreamDeliversAddressedEvents(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, models.RolePatient)

	broadcaster := events.NewBroadcaster()
	handler := NewEventsHandler(broadcaster)

	router := gin.New()
	router.GET("/events", authAs(user), handler.Stream)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		router.ServeHTTP(w, req)
	}()

	// Give the stream a moment to subscribe before publishing. The recorder
	// body is only read after the handler goroutine has returned.
	time.Sleep(100 * time.Millisecond)
	broadcaster.Publish(events.Event{Table: "appointments", Action: "insert"}, user.ID)
	time.Sleep(100 * time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not terminate on context cancellation")
	}

	body := w.Body.String()
	assert.Contains(t, body, "data: connected")
	assert.Contains(t, body, `"table":"appointments"`)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
}
