package jobs

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"healthmate-server/internal/events"
	"healthmate-server/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))
	return db
}

func seedAppointment(t *testing.T, db *gorm.DB, startsAt time.Time, status models.AppointmentStatus, reminded bool) *models.Appointment {
	t.Helper()
	appt := &models.Appointment{
		PatientID: uuid.New().String(),
		DoctorID:  uuid.New().String(),
		Date:      startsAt.Format(models.DateLayout),
		Time:      startsAt.Format(models.TimeLayout),
		Duration:  30,
		Type:      models.TypeVideo,
		Status:    status,
		Reason:    "Checkup",
		Reminded:  reminded,
	}
	require.NoError(t, db.Create(appt).Error)
	return appt
}

func notificationCount(t *testing.T, db *gorm.DB, userID string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", userID, models.NotificationReminder).
		Count(&count).Error)
	return count
}

func TestSendRemindersWithinWindow(t *testing.T) {
	db := setupTestDB(t)
	job := NewReminderJob(db, events.NewBroadcaster())

	soon := seedAppointment(t, db, time.Now().Add(3*time.Hour), models.StatusConfirmed, false)

	require.NoError(t, job.SendReminders())
	assert.EqualValues(t, 1, notificationCount(t, db, soon.PatientID))

	var reloaded models.Appointment
	require.NoError(t, db.First(&reloaded, "id = ?", soon.ID).Error)
	assert.True(t, reloaded.Reminded)
}

func TestSendRemindersIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	job := NewReminderJob(db, events.NewBroadcaster())

	soon := seedAppointment(t, db, time.Now().Add(3*time.Hour), models.StatusPending, false)

	require.NoError(t, job.SendReminders())
	require.NoError(t, job.SendReminders())
	assert.EqualValues(t, 1, notificationCount(t, db, soon.PatientID))
}

func TestSendRemindersSkipsOutOfScopeAppointments(t *testing.T) {
	db := setupTestDB(t)
	job := NewReminderJob(db, events.NewBroadcaster())

	// Further than 24 hours out.
	far := seedAppointment(t, db, time.Now().Add(72*time.Hour), models.StatusConfirmed, false)
	// Cancelled appointments never get reminders.
	cancelled := seedAppointment(t, db, time.Now().Add(3*time.Hour), models.StatusCancelled, false)
	// Already swept.
	done := seedAppointment(t, db, time.Now().Add(3*time.Hour), models.StatusConfirmed, true)

	require.NoError(t, job.SendReminders())
	assert.EqualValues(t, 0, notificationCount(t, db, far.PatientID))
	assert.EqualValues(t, 0, notificationCount(t, db, cancelled.PatientID))
	assert.EqualValues(t, 0, notificationCount(t, db, done.PatientID))
}
