package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"healthmate-server/internal/models"
)

func newUserRouter(db *gorm.DB, user *models.User) *gin.Engine {
	handler := NewUserHandler(db)
	router := gin.New()
	group := router.Group("/users", authAs(user))
	group.GET("/doctors", handler.GetDoctors)
	group.GET("/doctor-patients", handler.GetDoctorPatients)
	group.POST("", handler.CreateUser)
	group.GET("", handler.GetUsers)
	group.GET("/:id", handler.GetUserByID)
	group.PUT("/:id", handler.UpdateUser)
	group.DELETE("/:id", handler.DeactivateUser)
	return router
}

func TestGetDoctorsWithSlotCounts(t *testing.T) {
	db := setupTestDB(t)
	patient := createTestUser(t, db, models.RolePatient)

	busy := createTestUser(t, db, models.RoleDoctor)
	busy.FullName = "Dr. Adams"
	busy.Specialization = "Cardiology"
	require.NoError(t, db.Save(busy).Error)

	idle := createTestUser(t, db, models.RoleDoctor)
	idle.FullName = "Dr. Baker"
	require.NoError(t, db.Save(idle).Error)

	inactive := createTestUser(t, db, models.RoleDoctor)
	inactive.IsActive = false
	require.NoError(t, db.Save(inactive).Error)

	future := time.Now().AddDate(0, 0, 2).Format(models.DateLayout)
	past := time.Now().AddDate(0, 0, -2).Format(models.DateLayout)
	slots := []models.AvailableSlot{
		{DoctorID: busy.ID, Date: future, StartTime: "09:00", EndTime: "09:30", IsAvailable: true},
		{DoctorID: busy.ID, Date: future, StartTime: "10:00", EndTime: "10:30", IsAvailable: true},
		{DoctorID: busy.ID, Date: future, StartTime: "11:00", EndTime: "11:30", IsAvailable: false},
		{DoctorID: busy.ID, Date: past, StartTime: "09:00", EndTime: "09:30", IsAvailable: true},
	}
	for i := range slots {
		require.NoError(t, db.Create(&slots[i]).Error)
	}

	w := performJSON(t, newUserRouter(db, patient), http.MethodGet, "/users/doctors", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var doctors []DoctorWithSlots
	decodeData(t, w, &doctors)
	require.Len(t, doctors, 2)
	// Ordered by name; inactive doctors are excluded.
	assert.Equal(t, "Dr. Adams", doctors[0].FullName)
	assert.Equal(t, "Cardiology", doctors[0].Specialization)
	assert.EqualValues(t, 2, doctors[0].AvailableSlots)
	assert.Equal(t, "Dr. Baker", doctors[1].FullName)
	assert.EqualValues(t, 0, doctors[1].AvailableSlots)
}

func TestGetDoctorPatientsDistinct(t *testing.T) {
	db := setupTestDB(t)
	doctor := createTestUser(t, db, models.RoleDoctor)
	patient := createTestUser(t, db, models.RolePatient)
	date := time.Now().AddDate(0, 0, 1).Format(models.DateLayout)

	// Two appointments with the same patient collapse to one row.
	for _, tm := range []string{"09:00", "10:00"} {
		appointment := models.Appointment{
			PatientID: patient.ID, DoctorID: doctor.ID,
			Date: date, Time: tm, Duration: 30,
			Type: models.TypeVideo, Status: models.StatusConfirmed, Reason: "Checkup",
		}
		require.NoError(t, db.Create(&appointment).Error)
	}

	w := performJSON(t, newUserRouter(db, doctor), http.MethodGet, "/users/doctor-patients", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var patients []models.UserSanitized
	decodeData(t, w, &patients)
	require.Len(t, patients, 1)
	assert.Equal(t, patient.ID, patients[0].ID)
}

func TestAdminUserManagement(t *testing.T) {
	db := setupTestDB(t)
	admin := createTestUser(t, db, models.RoleAdmin)
	router := newUserRouter(db, admin)

	w := performJSON(t, router, http.MethodPost, "/users", gin.H{
		"fullName": "New Doctor",
		"email":    "newdoc@example.com",
		"password": "Password123!",
		"role":     "doctor",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created models.UserSanitized
	decodeData(t, w, &created)
	assert.Equal(t, models.RoleDoctor, created.Role)

	// Role filter only returns doctors.
	w = performJSON(t, router, http.MethodGet, "/users?role=doctor", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []models.UserSanitized
	decodeData(t, w, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)

	// Admins may flip role and active state.
	w = performJSON(t, router, http.MethodPut, "/users/"+created.ID, gin.H{
		"role":     "admin",
		"isActive": false,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var updated models.UserSanitized
	decodeData(t, w, &updated)
	assert.Equal(t, models.RoleAdmin, updated.Role)
	assert.False(t, updated.IsActive)
}

func TestDeactivateUserKeepsRow(t *testing.T) {
	db := setupTestDB(t)
	admin := createTestUser(t, db, models.RoleAdmin)
	target := createTestUser(t, db, models.RolePatient)

	w := performJSON(t, newUserRouter(db, admin), http.MethodDelete, "/users/"+target.ID, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Deactivation never deletes the row.
	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", target.ID).Error)
	assert.False(t, stored.IsActive)
}

func TestUpdateUserRejectsDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	admin := createTestUser(t, db, models.RoleAdmin)
	first := createTestUser(t, db, models.RolePatient)
	second := createTestUser(t, db, models.RolePatient)

	w := performJSON(t, newUserRouter(db, admin), http.MethodPut, "/users/"+second.ID, gin.H{
		"email": first.Email,
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
