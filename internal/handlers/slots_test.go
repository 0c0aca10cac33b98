package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"healthmate-server/internal/events"
	"healthmate-server/internal/models"
)

func newSlotRouter(db *gorm.DB, user *models.User) *gin.Engine {
	handler := NewSlotHandler(db, events.NewBroadcaster())
	router := gin.New()
	group := router.Group("/slots", authAs(user))
	group.POST("", handler.CreateSlot)
	group.GET("", handler.GetMySlots)
	group.GET("/doctor/:doctorId", handler.GetDoctorSlots)
	group.DELETE("/:id", handler.DeleteSlot)
	return router
}

func TestCreateSlotComputesEndTime(t *testing.T) {
	db := setupTestDB(t)
	doctor := createTestUser(t, db, models.RoleDoctor)
	date := time.Now().AddDate(0, 0, 3).Format(models.DateLayout)

	w := performJSON(t, newSlotRouter(db, doctor), http.MethodPost, "/slots", gin.H{
		"date":      date,
		"startTime": "14:00",
		"duration":  30,
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var slot models.AvailableSlot
	decodeData(t, w, &slot)
	assert.Equal(t, "14:30", slot.EndTime)
	assert.Equal(t, doctor.ID, slot.DoctorID)
	assert.True(t, slot.IsAvailable)
}

func TestCreateSlotRejectsBadInput(t *testing.T) {
	db := setupTestDB(t)
	doctor := createTestUser(t, db, models.RoleDoctor)
	router := newSlotRouter(db, doctor)

	w := performJSON(t, router, http.MethodPost, "/slots", gin.H{
		"date": "03/09/2026", "startTime": "14:00", "duration": 30,
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performJSON(t, router, http.MethodPost, "/slots", gin.H{
		"date": time.Now().AddDate(0, 0, 3).Format(models.DateLayout), "startTime": "2pm", "duration": 30,
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performJSON(t, router, http.MethodPost, "/slots", gin.H{
		"date": time.Now().AddDate(0, 0, 3).Format(models.DateLayout), "startTime": "14:00", "duration": 0,
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateSlotRejectsOverlap(t *testing.T) {
	db := setupTestDB(t)
	doctor := createTestUser(t, db, models.RoleDoctor)
	router := newSlotRouter(db, doctor)
	date := time.Now().AddDate(0, 0, 3).Format(models.DateLayout)

	w := performJSON(t, router, http.MethodPost, "/slots", gin.H{
		"date": date, "startTime": "14:00", "duration": 60,
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	// 14:30 falls inside the published 14:00-15:00 slot.
	w = performJSON(t, router, http.MethodPost, "/slots", gin.H{
		"date": date, "startTime": "14:30", "duration": 30,
	}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// A touching slot starting exactly at 15:00 is fine.
	w = performJSON(t, router, http.MethodPost, "/slots", gin.H{
		"date": date, "startTime": "15:00", "duration": 30,
	}, nil)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestGetDoctorSlotsOnlyOpenAndFuture(t *testing.T) {
	db := setupTestDB(t)
	doctor := createTestUser(t, db, models.RoleDoctor)
	patient := createTestUser(t, db, models.RolePatient)

	future := time.Now().AddDate(0, 0, 5).Format(models.DateLayout)
	past := time.Now().AddDate(0, 0, -5).Format(models.DateLayout)

	open := models.AvailableSlot{DoctorID: doctor.ID, Date: future, StartTime: "10:00", EndTime: "10:30", IsAvailable: true}
	booked := models.AvailableSlot{DoctorID: doctor.ID, Date: future, StartTime: "11:00", EndTime: "11:30", IsAvailable: false}
	stale := models.AvailableSlot{DoctorID: doctor.ID, Date: past, StartTime: "10:00", EndTime: "10:30", IsAvailable: true}
	earlier := models.AvailableSlot{DoctorID: doctor.ID, Date: future, StartTime: "08:00", EndTime: "08:30", IsAvailable: true}
	for _, s := range []*models.AvailableSlot{&open, &booked, &stale, &earlier} {
		require.NoError(t, db.Create(s).Error)
	}

	w := performJSON(t, newSlotRouter(db, patient), http.MethodGet, "/slots/doctor/"+doctor.ID, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var slots []models.AvailableSlot
	decodeData(t, w, &slots)
	require.Len(t, slots, 2)
	assert.Equal(t, "08:00", slots[0].StartTime)
	assert.Equal(t, "10:00", slots[1].StartTime)
}

func TestGetDoctorSlotsUnknownDoctor(t *testing.T) {
	db := setupTestDB(t)
	patient := createTestUser(t, db, models.RolePatient)

	w := performJSON(t, newSlotRouter(db, patient), http.MethodGet, "/slots/doctor/b81bc81b-dead-4e5d-abff-90865d1e13b2", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteSlotRules(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, models.RoleDoctor)
	other := createTestUser(t, db, models.RoleDoctor)

	future := time.Now().AddDate(0, 0, 4).Format(models.DateLayout)
	open := models.AvailableSlot{DoctorID: owner.ID, Date: future, StartTime: "10:00", EndTime: "10:30", IsAvailable: true}
	booked := models.AvailableSlot{DoctorID: owner.ID, Date: future, StartTime: "11:00", EndTime: "11:30", IsAvailable: false}
	require.NoError(t, db.Create(&open).Error)
	require.NoError(t, db.Create(&booked).Error)

	// Not the owner.
	w := performJSON(t, newSlotRouter(db, other), http.MethodDelete, "/slots/"+open.ID, nil, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Consumed slots cannot be removed.
	w = performJSON(t, newSlotRouter(db, owner), http.MethodDelete, "/slots/"+booked.ID, nil, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = performJSON(t, newSlotRouter(db, owner), http.MethodDelete, "/slots/"+open.ID, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, db.Model(&models.AvailableSlot{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
