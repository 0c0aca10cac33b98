package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"healthmate-server/internal/events"
	"healthmate-server/internal/middleware"
	"healthmate-server/internal/models"
	"healthmate-server/internal/utils"
)

// SlotHandler handles available-slot management.
type SlotHandler struct {
	DB          *gorm.DB
	Broadcaster *events.Broadcaster
}

// NewSlotHandler creates a new SlotHandler.
func NewSlotHandler(db *gorm.DB, broadcaster *events.Broadcaster) *SlotHandler {
	return &SlotHandler{DB: db, Broadcaster: broadcaster}
}

// CreateSlotRequest represents the request body for a doctor publishing a slot.
type CreateSlotRequest struct {
	Date      string `json:"date" binding:"required"`      // YYYY-MM-DD
	StartTime string `json:"startTime" binding:"required"` // HH:MM
	Duration  int    `json:"duration" binding:"required,min=5,max=240"`
}

// CreateSlot publishes a new bookable slot for the authenticated doctor.
// End time is computed from start time plus duration; a slot overlapping an
// existing slot on the same date is rejected.
func (h *SlotHandler) CreateSlot(c *gin.Context) {
	var req CreateSlotRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	doctorID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	if _, err := time.Parse(models.DateLayout, req.Date); err != nil {
		utils.BadRequest(c, "Invalid date, expected YYYY-MM-DD")
		return
	}

	endTime, err := models.ComputeEndTime(req.StartTime, req.Duration)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	// Reject overlaps with the doctor's existing slots on that date.
	var existing []models.AvailableSlot
	if err := h.DB.Where("doctor_id = ? AND date = ?", doctorID, req.Date).Find(&existing).Error; err != nil {
		utils.InternalServerError(c, "Failed to check existing slots: "+err.Error())
		return
	}
	for _, s := range existing {
		if s.Overlaps(req.StartTime, endTime) {
			utils.Conflict(c, "Slot overlaps an existing slot from "+s.StartTime+" to "+s.EndTime)
			return
		}
	}

	slot := models.AvailableSlot{
		DoctorID:    doctorID,
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     endTime,
		IsAvailable: true,
	}

	if err := h.DB.Create(&slot).Error; err != nil {
		utils.InternalServerError(c, "Failed to create slot: "+err.Error())
		return
	}

	h.Broadcaster.Publish(events.Event{Table: "available_slots", Action: "insert"}, doctorID)

	utils.Created(c, "Slot created successfully", slot)
}

// GetMySlots lists the authenticated doctor's slots, optionally for one date.
func (h *SlotHandler) GetMySlots(c *gin.Context) {
	doctorID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	query := h.DB.Where("doctor_id = ?", doctorID).Order("date asc, start_time asc")
	if date := c.Query("date"); date != "" {
		query = query.Where("date = ?", date)
	}

	var slots []models.AvailableSlot
	if err := query.Find(&slots).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch slots: "+err.Error())
		return
	}

	utils.Success(c, "Slots fetched successfully", slots)
}

// GetDoctorSlots lists a doctor's open slots from today onward, ordered by
// date then start time. This feeds the patient booking dialog.
func (h *SlotHandler) GetDoctorSlots(c *gin.Context) {
	doctorID := c.Param("doctorId")

	var doctor models.User
	if err := h.DB.Where("id = ? AND role = ?", doctorID, models.RoleDoctor).First(&doctor).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	today := time.Now().Format(models.DateLayout)
	var slots []models.AvailableSlot
	if err := h.DB.Where("doctor_id = ? AND is_available = ? AND date >= ?", doctorID, true, today).
		Order("date asc, start_time asc").Find(&slots).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch slots: "+err.Error())
		return
	}

	utils.Success(c, "Slots fetched successfully", slots)
}

// DeleteSlot removes one of the doctor's own slots, provided it has not been
// consumed by a booking.
func (h *SlotHandler) DeleteSlot(c *gin.Context) {
	slotID := c.Param("id")

	doctorID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var slot models.AvailableSlot
	if err := h.DB.First(&slot, "id = ?", slotID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Slot not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if slot.DoctorID != doctorID {
		utils.Forbidden(c, "You can only delete your own slots")
		return
	}
	if !slot.IsAvailable {
		utils.Conflict(c, "Slot has been booked and can no longer be deleted")
		return
	}

	if err := h.DB.Delete(&slot).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete slot: "+err.Error())
		return
	}

	h.Broadcaster.Publish(events.Event{Table: "available_slots", Action: "delete"}, doctorID)

	utils.Success(c, "Slot deleted successfully", nil)
}
