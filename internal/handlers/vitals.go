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

// VitalHandler handles vital sign tracking.
type VitalHandler struct {
	DB          *gorm.DB
	Broadcaster *events.Broadcaster
}

// NewVitalHandler creates a new VitalHandler.
func NewVitalHandler(db *gorm.DB, broadcaster *events.Broadcaster) *VitalHandler {
	return &VitalHandler{DB: db, Broadcaster: broadcaster}
}

// CreateVitalRequest represents the request body for recording a reading.
type CreateVitalRequest struct {
	Type  models.VitalType `json:"type" binding:"required,oneof=blood_pressure heart_rate temperature weight height blood_sugar"`
	Value string           `json:"value" binding:"required"`
	Unit  string           `json:"unit"`
	Notes string           `json:"notes"`
}

// CreateVital records a reading for the authenticated patient. Status is
// classified server-side from the fixed thresholds.
func (h *VitalHandler) CreateVital(c *gin.Context) {
	var req CreateVitalRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	patientID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	unit := req.Unit
	if unit == "" {
		unit = models.DefaultUnit(req.Type)
	}

	reading := models.VitalReading{
		PatientID:  patientID,
		Type:       req.Type,
		Value:      req.Value,
		Unit:       unit,
		Status:     models.ClassifyVital(req.Type, req.Value),
		Notes:      req.Notes,
		RecordedAt: time.Now(),
	}

	if err := h.DB.Create(&reading).Error; err != nil {
		utils.InternalServerError(c, "Failed to record vital: "+err.Error())
		return
	}

	h.Broadcaster.Publish(events.Event{Table: "vitals", Action: "insert"}, patientID)

	utils.Created(c, "Vital recorded successfully", reading)
}

// GetVitals lists the authenticated patient's readings newest-first,
// optionally filtered by type.
func (h *VitalHandler) GetVitals(c *gin.Context) {
	patientID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	query := h.DB.Where("patient_id = ?", patientID).Order("recorded_at desc")
	if vitalType := c.Query("type"); vitalType != "" {
		query = query.Where("type = ?", vitalType)
	}

	var readings []models.VitalReading
	if err := query.Find(&readings).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch vitals: "+err.Error())
		return
	}

	utils.Success(c, "Vitals fetched successfully", readings)
}

// GetLatestVitals returns the most recent reading per vital type for the
// dashboard cards.
func (h *VitalHandler) GetLatestVitals(c *gin.Context) {
	patientID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var readings []models.VitalReading
	if err := h.DB.Where("patient_id = ?", patientID).Order("recorded_at desc").Find(&readings).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch vitals: "+err.Error())
		return
	}

	latest := make(map[models.VitalType]models.VitalReading)
	for _, r := range readings {
		if _, seen := latest[r.Type]; !seen {
			latest[r.Type] = r
		}
	}

	utils.Success(c, "Latest vitals fetched successfully", latest)
}
