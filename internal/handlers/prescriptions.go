package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"healthmate-server/internal/events"
	"healthmate-server/internal/middleware"
	"healthmate-server/internal/models"
	"healthmate-server/internal/utils"
)

// PrescriptionHandler handles prescription requests.
type PrescriptionHandler struct {
	DB          *gorm.DB
	Broadcaster *events.Broadcaster
}

// NewPrescriptionHandler creates a new PrescriptionHandler.
func NewPrescriptionHandler(db *gorm.DB, broadcaster *events.Broadcaster) *PrescriptionHandler {
	return &PrescriptionHandler{DB: db, Broadcaster: broadcaster}
}

// CreatePrescriptionRequest represents the request body for prescribing.
type CreatePrescriptionRequest struct {
	PatientID      string `json:"patientId" binding:"required,uuid"`
	MedicationName string `json:"medicationName" binding:"required"`
	Dosage         string `json:"dosage" binding:"required"`
	Frequency      string `json:"frequency" binding:"required"`
	Duration       string `json:"duration"`
	Instructions   string `json:"instructions"`
}

// CreatePrescription lets a doctor prescribe a medication to a patient and
// notifies the patient.
func (h *PrescriptionHandler) CreatePrescription(c *gin.Context) {
	var req CreatePrescriptionRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	doctorID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var patient models.User
	if err := h.DB.Where("id = ? AND role = ?", req.PatientID, models.RolePatient).First(&patient).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error verifying patient: "+err.Error())
		}
		return
	}

	prescription := models.Prescription{
		PatientID:      req.PatientID,
		DoctorID:       doctorID,
		MedicationName: req.MedicationName,
		Dosage:         req.Dosage,
		Frequency:      req.Frequency,
		Duration:       req.Duration,
		Instructions:   req.Instructions,
		IsActive:       true,
	}

	if err := h.DB.Create(&prescription).Error; err != nil {
		utils.InternalServerError(c, "Failed to create prescription: "+err.Error())
		return
	}

	notification := models.Notification{
		UserID:  req.PatientID,
		Title:   "New prescription",
		Message: "You have been prescribed " + req.MedicationName + " (" + req.Dosage + ", " + req.Frequency + ").",
		Type:    models.NotificationPrescription,
	}
	if err := h.DB.Create(&notification).Error; err == nil {
		h.Broadcaster.Publish(events.Event{Table: "notifications", Action: "insert"}, req.PatientID)
	}

	h.Broadcaster.Publish(events.Event{Table: "prescriptions", Action: "insert"}, req.PatientID, doctorID)

	utils.Created(c, "Prescription created successfully", prescription)
}

// GetPrescriptionsForUser lists prescriptions for the caller: patients see
// their own (active first), doctors see those they wrote.
func (h *PrescriptionHandler) GetPrescriptionsForUser(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	userRole, _ := middleware.GetUserRoleFromContext(c)

	query := h.DB.Preload("Patient").Preload("Doctor").Order("is_active desc, created_at desc")

	var prescriptions []models.Prescription
	var err error
	switch userRole {
	case models.RolePatient:
		err = query.Where("patient_id = ?", userID).Find(&prescriptions).Error
	case models.RoleDoctor:
		err = query.Where("doctor_id = ?", userID).Find(&prescriptions).Error
	case models.RoleAdmin:
		err = query.Find(&prescriptions).Error
	default:
		utils.Forbidden(c, "User role not permitted to view prescriptions")
		return
	}

	if err != nil {
		utils.InternalServerError(c, "Failed to fetch prescriptions: "+err.Error())
		return
	}

	utils.Success(c, "Prescriptions fetched successfully", prescriptions)
}

// DeactivatePrescription marks a prescription inactive. Only the prescribing
// doctor or an admin may do this.
func (h *PrescriptionHandler) DeactivatePrescription(c *gin.Context) {
	prescriptionID := c.Param("id")

	var prescription models.Prescription
	if err := h.DB.First(&prescription, "id = ?", prescriptionID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Prescription not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)
	if userRole == models.RoleDoctor && prescription.DoctorID != userID {
		utils.Forbidden(c, "You can only deactivate prescriptions you wrote")
		return
	}

	prescription.IsActive = false
	if err := h.DB.Save(&prescription).Error; err != nil {
		utils.InternalServerError(c, "Failed to deactivate prescription: "+err.Error())
		return
	}

	h.Broadcaster.Publish(events.Event{Table: "prescriptions", Action: "update"}, prescription.PatientID, prescription.DoctorID)

	utils.Success(c, "Prescription deactivated successfully", prescription)
}
