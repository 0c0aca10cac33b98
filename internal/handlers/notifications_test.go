package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"healthmate-server/internal/models"
)

func newNotificationRouter(db *gorm.DB, user *models.User) *gin.Engine {
	handler := NewNotificationHandler(db)
	router := gin.New()
	group := router.Group("/notifications", authAs(user))
	group.GET("", handler.GetNotifications)
	group.GET("/unread-count", handler.GetUnreadCount)
	group.PATCH("/:id/read", handler.MarkNotificationRead)
	group.POST("/read-all", handler.MarkAllNotificationsRead)
	return router
}

func seedNotification(t *testing.T, db *gorm.DB, userID, title string, read bool) *models.Notification {
	t.Helper()
	n := &models.Notification{
		UserID:  userID,
		Title:   title,
		Message: "test message",
		Type:    models.NotificationSystem,
		IsRead:  read,
	}
	require.NoError(t, db.Create(n).Error)
	return n
}

func TestGetNotificationsUnreadFilter(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, models.RolePatient)
	other := createTestUser(t, db, models.RolePatient)

	seedNotification(t, db, user.ID, "one", false)
	seedNotification(t, db, user.ID, "two", true)
	seedNotification(t, db, other.ID, "theirs", false)

	router := newNotificationRouter(db, user)

	var all []models.Notification
	w := performJSON(t, router, http.MethodGet, "/notifications", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &all)
	assert.Len(t, all, 2)

	var unread []models.Notification
	w = performJSON(t, router, http.MethodGet, "/notifications?unread=true", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &unread)
	require.Len(t, unread, 1)
	assert.Equal(t, "one", unread[0].Title)
}

func TestMarkNotificationReadOwnership(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, models.RolePatient)
	intruder := createTestUser(t, db, models.RolePatient)
	n := seedNotification(t, db, owner.ID, "one", false)

	w := performJSON(t, newNotificationRouter(db, intruder), http.MethodPatch, "/notifications/"+n.ID+"/read", nil, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = performJSON(t, newNotificationRouter(db, owner), http.MethodPatch, "/notifications/"+n.ID+"/read", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var updated models.Notification
	decodeData(t, w, &updated)
	assert.True(t, updated.IsRead)
}

func TestMarkAllNotificationsRead(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, models.RolePatient)
	seedNotification(t, db, user.ID, "one", false)
	seedNotification(t, db, user.ID, "two", false)

	router := newNotificationRouter(db, user)

	w := performJSON(t, router, http.MethodPost, "/notifications/read-all", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = performJSON(t, router, http.MethodGet, "/notifications/unread-count", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var payload struct {
		Count int64 `json:"count"`
	}
	decodeData(t, w, &payload)
	assert.EqualValues(t, 0, payload.Count)
}
