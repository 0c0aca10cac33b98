package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"healthmate-server/internal/events"
	"healthmate-server/internal/models"
)

// ReminderJob sweeps for upcoming appointments and writes reminder
// notifications for their patients.
type ReminderJob struct {
	DB          *gorm.DB
	Broadcaster *events.Broadcaster
}

// NewReminderJob creates a new ReminderJob.
func NewReminderJob(db *gorm.DB, broadcaster *events.Broadcaster) *ReminderJob {
	return &ReminderJob{DB: db, Broadcaster: broadcaster}
}

// Start schedules the sweep every 15 minutes and returns the running cron
// so the caller can stop it on shutdown.
func (j *ReminderJob) Start() *cron.Cron {
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("*/15 * * * *", func() {
		if err := j.SendReminders(); err != nil {
			log.Printf("appointment reminder sweep failed: %v", err)
		}
	}); err != nil {
		log.Printf("failed to schedule reminder job: %v", err)
		return scheduler
	}
	scheduler.Start()
	return scheduler
}

// SendReminders notifies patients of pending or confirmed appointments
// within the next 24 hours. The Reminded flag keeps the sweep idempotent.
func (j *ReminderJob) SendReminders() error {
	now := time.Now()
	today := now.Format(models.DateLayout)
	tomorrow := now.Add(24 * time.Hour).Format(models.DateLayout)

	var appointments []models.Appointment
	if err := j.DB.Where("date IN ? AND status IN ? AND reminded = ?",
		[]string{today, tomorrow},
		[]models.AppointmentStatus{models.StatusPending, models.StatusConfirmed},
		false).Find(&appointments).Error; err != nil {
		return err
	}

	for _, appt := range appointments {
		startsAt, err := time.ParseInLocation(
			models.DateLayout+" "+models.TimeLayout,
			appt.Date+" "+appt.Time,
			now.Location(),
		)
		if err != nil {
			continue
		}
		if startsAt.Before(now) || startsAt.After(now.Add(24*time.Hour)) {
			continue
		}

		err = j.DB.Transaction(func(tx *gorm.DB) error {
			notification := models.Notification{
				UserID:  appt.PatientID,
				Title:   "Upcoming appointment",
				Message: fmt.Sprintf("You have an appointment on %s at %s.", appt.Date, appt.Time),
				Type:    models.NotificationReminder,
			}
			if err := tx.Create(&notification).Error; err != nil {
				return err
			}
			return tx.Model(&models.Appointment{}).Where("id = ?", appt.ID).Update("reminded", true).Error
		})
		if err != nil {
			log.Printf("failed to create reminder for appointment %s: %v", appt.ID, err)
			continue
		}

		j.Broadcaster.Publish(events.Event{Table: "notifications", Action: "insert"}, appt.PatientID)
	}

	return nil
}
