package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"healthmate-server/internal/audit"
	"healthmate-server/internal/events"
	"healthmate-server/internal/meetings"
	"healthmate-server/internal/middleware"
	"healthmate-server/internal/models"
	"healthmate-server/internal/utils"
)

// AppointmentHandler handles the booking flow and appointment lifecycle.
type AppointmentHandler struct {
	DB          *gorm.DB
	Broadcaster *events.Broadcaster
	Meetings    meetings.Provider
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(db *gorm.DB, broadcaster *events.Broadcaster, meetings meetings.Provider) *AppointmentHandler {
	return &AppointmentHandler{DB: db, Broadcaster: broadcaster, Meetings: meetings}
}

// BookAppointmentRequest represents the request body for booking a slot.
type BookAppointmentRequest struct {
	SlotID string                 `json:"slotId" binding:"required,uuid"`
	Type   models.AppointmentType `json:"type" binding:"required,oneof=video in_person phone"`
	Reason string                 `json:"reason" binding:"required"`
}

// BookAppointment books an appointment from an available slot. In a single
// transaction the slot is atomically claimed and the appointment row created,
// so two patients racing for one slot resolve to exactly one winner; the
// loser gets a 409. An optional Idempotency-Key header makes retries safe:
// a replayed key returns the originally created appointment.
func (h *AppointmentHandler) BookAppointment(c *gin.Context) {
	var req BookAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	patientID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	// Replay lookup is scoped to the caller: keys are unique per client, so
	// another patient's key must never surface their appointment here.
	idempotencyKey := c.GetHeader("Idempotency-Key")
	if idempotencyKey != "" {
		var existing models.Appointment
		if err := h.DB.Where("idempotency_key = ? AND patient_id = ?", idempotencyKey, patientID).First(&existing).Error; err == nil {
			utils.Success(c, "Appointment already booked", existing)
			return
		} else if err != gorm.ErrRecordNotFound {
			utils.InternalServerError(c, "Database error: "+err.Error())
			return
		}
	}

	var appointment models.Appointment
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		var slot models.AvailableSlot
		if err := tx.First(&slot, "id = ?", req.SlotID).Error; err != nil {
			return err
		}

		// Atomic claim: only one booking can flip the availability flag.
		claim := tx.Model(&models.AvailableSlot{}).
			Where("id = ? AND is_available = ?", slot.ID, true).
			Update("is_available", false)
		if claim.Error != nil {
			return claim.Error
		}
		if claim.RowsAffected == 0 {
			return errSlotTaken
		}

		appointment = models.Appointment{
			PatientID: patientID,
			DoctorID:  slot.DoctorID,
			SlotID:    slot.ID,
			Date:      slot.Date,
			Time:      slot.StartTime,
			Duration:  slot.DurationMinutes(),
			Type:      req.Type,
			Status:    models.StatusPending,
			Reason:    req.Reason,
		}
		if idempotencyKey != "" {
			appointment.IdempotencyKey = &idempotencyKey
		}
		if err := tx.Create(&appointment).Error; err != nil {
			return err
		}

		notification := models.Notification{
			UserID:  slot.DoctorID,
			Title:   "New appointment request",
			Message: fmt.Sprintf("A patient requested a %s appointment on %s at %s.", req.Type, slot.Date, slot.StartTime),
			Type:    models.NotificationAppointment,
		}
		return tx.Create(&notification).Error
	})

	if err == errSlotTaken {
		utils.Conflict(c, "This slot is no longer available")
		return
	}
	if err == gorm.ErrRecordNotFound {
		utils.NotFound(c, "Slot not found")
		return
	}
	if err != nil && idempotencyKey != "" && isDuplicateKeyError(err) {
		// Lost an idempotency race: either our own earlier request won, in
		// which case this is a replay, or another client holds the key.
		var existing models.Appointment
		if lookupErr := h.DB.Where("idempotency_key = ? AND patient_id = ?", idempotencyKey, patientID).First(&existing).Error; lookupErr == nil {
			utils.Success(c, "Appointment already booked", existing)
			return
		}
		utils.Conflict(c, "This idempotency key is already in use")
		return
	}
	if err != nil {
		utils.InternalServerError(c, "Failed to book appointment: "+err.Error())
		return
	}

	h.Broadcaster.Publish(events.Event{Table: "available_slots", Action: "update"}, patientID, appointment.DoctorID)
	h.Broadcaster.Publish(events.Event{Table: "appointments", Action: "insert"}, patientID, appointment.DoctorID)
	h.Broadcaster.Publish(events.Event{Table: "notifications", Action: "insert"}, appointment.DoctorID)

	audit.Record(h.DB, audit.Entry{
		ActorID: patientID,
		Action:  "appointment.booked",
		Details: fmt.Sprintf("Slot %s with doctor %s", appointment.SlotID, appointment.DoctorID),
		IP:      c.ClientIP(),
	})

	utils.Created(c, "Appointment booked successfully", appointment)
}

// errSlotTaken signals a lost booking race inside the transaction.
var errSlotTaken = fmt.Errorf("slot already taken")

// isDuplicateKeyError recognizes a unique-index violation from either the
// MySQL or the sqlite driver.
func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint failed")
}

// GetAppointmentsForUser fetches appointments for the logged-in user:
// patients see their own, doctors see theirs, admins see all.
func (h *AppointmentHandler) GetAppointmentsForUser(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	userRole, _ := middleware.GetUserRoleFromContext(c)

	query := h.DB.Preload("Patient").Preload("Doctor").Order("date asc, time asc")
	if date := c.Query("date"); date != "" {
		query = query.Where("date = ?", date)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var appointments []models.Appointment
	var err error
	switch userRole {
	case models.RolePatient:
		err = query.Where("patient_id = ?", userID).Find(&appointments).Error
	case models.RoleDoctor:
		err = query.Where("doctor_id = ?", userID).Find(&appointments).Error
	case models.RoleAdmin:
		err = query.Find(&appointments).Error
	default:
		utils.Forbidden(c, "User role not permitted to view appointments")
		return
	}

	if err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}

	utils.Success(c, "Appointments fetched successfully", appointments)
}

// GetAppointmentByID fetches a single appointment, visible only to the
// involved patient, the involved doctor, or an admin.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	appointmentID := c.Param("id")

	var appointment models.Appointment
	if err := h.DB.Preload("Patient").Preload("Doctor").First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)

	isPatientInvolved := userID == appointment.PatientID
	isDoctorInvolved := userID == appointment.DoctorID

	if userRole != models.RoleAdmin && !isPatientInvolved && !isDoctorInvolved {
		utils.Forbidden(c, "You are not authorized to view this appointment")
		return
	}

	utils.Success(c, "Appointment fetched successfully", appointment)
}

// UpdateAppointmentStatusRequest represents the request body for a status transition.
type UpdateAppointmentStatusRequest struct {
	Status models.AppointmentStatus `json:"status" binding:"required,oneof=pending confirmed in_progress completed cancelled"`
	Notes  string                   `json:"notes"`
}

// UpdateAppointmentStatus moves an appointment along its lifecycle:
// pending -> confirmed|cancelled, confirmed -> in_progress|cancelled,
// in_progress -> completed. Doctors and admins may perform any allowed
// transition; patients may only cancel. Moving a video appointment to
// in_progress provisions a meeting link if one is not set yet.
func (h *AppointmentHandler) UpdateAppointmentStatus(c *gin.Context) {
	appointmentID := c.Param("id")

	var req UpdateAppointmentStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var appointment models.Appointment
	if err := h.DB.First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)

	canUpdate := false
	switch {
	case userRole == models.RoleAdmin:
		canUpdate = true
	case userRole == models.RoleDoctor && userID == appointment.DoctorID:
		canUpdate = true
	case userRole == models.RolePatient && userID == appointment.PatientID:
		if req.Status != models.StatusCancelled {
			utils.Forbidden(c, "Patients can only cancel appointments.")
			return
		}
		canUpdate = true
	}
	if !canUpdate {
		utils.Forbidden(c, "You are not authorized to update this appointment's status.")
		return
	}

	if !appointment.Status.CanTransitionTo(req.Status) {
		utils.Conflict(c, fmt.Sprintf("Cannot move appointment from %s to %s", appointment.Status, req.Status))
		return
	}

	if req.Status == models.StatusInProgress && appointment.Type == models.TypeVideo && appointment.MeetingLink == "" {
		link, err := h.Meetings.CreateMeeting(c.Request.Context(), appointment.ID)
		if err != nil {
			utils.InternalServerError(c, "Failed to provision meeting link: "+err.Error())
			return
		}
		appointment.MeetingLink = link
	}

	appointment.Status = req.Status
	if req.Notes != "" {
		appointment.Notes = req.Notes
	}

	if err := h.DB.Save(&appointment).Error; err != nil {
		utils.InternalServerError(c, "Failed to update appointment status: "+err.Error())
		return
	}

	// Notify the counterparty of the change.
	counterparty := appointment.PatientID
	if userID == appointment.PatientID {
		counterparty = appointment.DoctorID
	}
	notification := models.Notification{
		UserID:  counterparty,
		Title:   "Appointment " + string(req.Status),
		Message: fmt.Sprintf("Your appointment on %s at %s is now %s.", appointment.Date, appointment.Time, req.Status),
		Type:    models.NotificationAppointment,
	}
	if err := h.DB.Create(&notification).Error; err == nil {
		h.Broadcaster.Publish(events.Event{Table: "notifications", Action: "insert"}, counterparty)
	}

	h.Broadcaster.Publish(events.Event{Table: "appointments", Action: "update"}, appointment.PatientID, appointment.DoctorID)

	audit.Record(h.DB, audit.Entry{
		ActorID: userID,
		Action:  "appointment.status_changed",
		Details: fmt.Sprintf("Appointment %s -> %s", appointment.ID, req.Status),
		IP:      c.ClientIP(),
	})

	utils.Success(c, "Appointment status updated successfully", appointment)
}
