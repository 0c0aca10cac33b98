package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"healthmate-server/internal/events"
	"healthmate-server/internal/middleware"
	"healthmate-server/internal/models"
	"healthmate-server/internal/utils"
)

// maxAttachmentBytes caps uploaded attachment size at 10 MiB.
const maxAttachmentBytes = 10 << 20

// MedicalRecordHandler handles medical record requests.
type MedicalRecordHandler struct {
	DB          *gorm.DB
	Broadcaster *events.Broadcaster
}

// NewMedicalRecordHandler creates a new MedicalRecordHandler.
func NewMedicalRecordHandler(db *gorm.DB, broadcaster *events.Broadcaster) *MedicalRecordHandler {
	return &MedicalRecordHandler{DB: db, Broadcaster: broadcaster}
}

// CreateMedicalRecordRequest represents the request body for creating a record.
type CreateMedicalRecordRequest struct {
	PatientID   string                   `json:"patientId"` // ignored for patients, required for doctors
	Title       string                   `json:"title" binding:"required"`
	RecordType  models.MedicalRecordType `json:"recordType" binding:"omitempty,oneof=consultation lab_result imaging prescription vaccination other"`
	Description string                   `json:"description"`
}

// CreateMedicalRecord creates a record. Patients create records for
// themselves; doctors create records for a named patient.
func (h *MedicalRecordHandler) CreateMedicalRecord(c *gin.Context) {
	var req CreateMedicalRecordRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	userRole, _ := middleware.GetUserRoleFromContext(c)

	record := models.MedicalRecord{
		Title:       req.Title,
		RecordType:  req.RecordType,
		Description: req.Description,
	}
	if record.RecordType == "" {
		record.RecordType = models.RecordTypeOther
	}

	switch userRole {
	case models.RolePatient:
		record.PatientID = userID
	case models.RoleDoctor:
		if req.PatientID == "" {
			utils.BadRequest(c, "patientId is required when a doctor creates a record")
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
		record.PatientID = req.PatientID
		record.DoctorID = userID
	default:
		utils.Forbidden(c, "Only patients and doctors can create medical records")
		return
	}

	if err := h.DB.Create(&record).Error; err != nil {
		utils.InternalServerError(c, "Failed to create medical record: "+err.Error())
		return
	}

	h.Broadcaster.Publish(events.Event{Table: "medical_records", Action: "insert"}, record.PatientID)

	utils.Created(c, "Medical record created successfully", record)
}

// GetMedicalRecordsForPatient lists a patient's records, newest first.
// Patients may only list their own; doctors and admins may list any patient's.
func (h *MedicalRecordHandler) GetMedicalRecordsForPatient(c *gin.Context) {
	patientID := c.Param("patientId")

	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)

	if userRole == models.RolePatient && userID != patientID {
		utils.Forbidden(c, "You can only view your own medical records")
		return
	}

	var records []models.MedicalRecord
	if err := h.DB.Preload("Attachments").Where("patient_id = ?", patientID).
		Order("created_at desc").Find(&records).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch medical records: "+err.Error())
		return
	}

	utils.Success(c, "Medical records fetched successfully", records)
}

// GetMedicalRecordByID fetches a single record for the owning patient, any
// doctor, or an admin.
func (h *MedicalRecordHandler) GetMedicalRecordByID(c *gin.Context) {
	recordID := c.Param("id")

	var record models.MedicalRecord
	if err := h.DB.Preload("Attachments").First(&record, "id = ?", recordID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Medical record not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if !h.canAccessRecord(c, &record) {
		utils.Forbidden(c, "You are not authorized to view this medical record")
		return
	}

	utils.Success(c, "Medical record fetched successfully", record)
}

// UpdateMedicalRecordRequest represents the request body for updating a record.
type UpdateMedicalRecordRequest struct {
	Title       string                   `json:"title"`
	RecordType  models.MedicalRecordType `json:"recordType" binding:"omitempty,oneof=consultation lab_result imaging prescription vaccination other"`
	Description string                   `json:"description"`
}

// UpdateMedicalRecord updates a record. Only the authoring doctor or an
// admin may update.
func (h *MedicalRecordHandler) UpdateMedicalRecord(c *gin.Context) {
	recordID := c.Param("id")

	var req UpdateMedicalRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	var record models.MedicalRecord
	if err := h.DB.First(&record, "id = ?", recordID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Medical record not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)
	if userRole == models.RoleDoctor && record.DoctorID != userID {
		utils.Forbidden(c, "You can only update records you created")
		return
	}

	if req.Title != "" {
		record.Title = req.Title
	}
	if req.RecordType != "" {
		record.RecordType = req.RecordType
	}
	if req.Description != "" {
		record.Description = req.Description
	}

	if err := h.DB.Save(&record).Error; err != nil {
		utils.InternalServerError(c, "Failed to update medical record: "+err.Error())
		return
	}

	h.Broadcaster.Publish(events.Event{Table: "medical_records", Action: "update"}, record.PatientID)

	utils.Success(c, "Medical record updated successfully", record)
}

// DeleteMedicalRecord removes a record and its attachments. Only the
// authoring doctor or an admin may delete.
func (h *MedicalRecordHandler) DeleteMedicalRecord(c *gin.Context) {
	recordID := c.Param("id")

	var record models.MedicalRecord
	if err := h.DB.First(&record, "id = ?", recordID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Medical record not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)
	if userRole == models.RoleDoctor && record.DoctorID != userID {
		utils.Forbidden(c, "You can only delete records you created")
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("medical_record_id = ?", record.ID).Delete(&models.MedicalRecordAttachment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&record).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to delete medical record: "+err.Error())
		return
	}

	h.Broadcaster.Publish(events.Event{Table: "medical_records", Action: "delete"}, record.PatientID)

	utils.Success(c, "Medical record deleted successfully", nil)
}

// UploadMedicalRecordAttachment stores a multipart file on a record and sets
// the record's FileURL to the attachment serve endpoint.
func (h *MedicalRecordHandler) UploadMedicalRecordAttachment(c *gin.Context) {
	recordID := c.Param("id")

	var record models.MedicalRecord
	if err := h.DB.First(&record, "id = ?", recordID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Medical record not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if !h.canAccessRecord(c, &record) {
		utils.Forbidden(c, "You are not authorized to attach files to this record")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.BadRequest(c, "No file provided: "+err.Error())
		return
	}
	if fileHeader.Size > maxAttachmentBytes {
		utils.BadRequest(c, "File exceeds the 10MB limit")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.InternalServerError(c, "Failed to open uploaded file: "+err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		utils.InternalServerError(c, "Failed to read uploaded file: "+err.Error())
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	attachment := models.MedicalRecordAttachment{
		MedicalRecordID: record.ID,
		FileName:        fileHeader.Filename,
		FileType:        contentType,
		FileData:        data,
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&attachment).Error; err != nil {
			return err
		}
		record.FileURL = "/api/v1/medical-records/attachments/" + attachment.ID
		return tx.Save(&record).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to store attachment: "+err.Error())
		return
	}

	h.Broadcaster.Publish(events.Event{Table: "medical_records", Action: "update"}, record.PatientID)

	// Return metadata only, never the blob.
	utils.Created(c, "Attachment uploaded successfully", gin.H{
		"id":       attachment.ID,
		"fileName": attachment.FileName,
		"fileType": attachment.FileType,
		"fileUrl":  record.FileURL,
	})
}

// GetMedicalRecordAttachment streams an attachment's bytes back to an
// authorized caller.
func (h *MedicalRecordHandler) GetMedicalRecordAttachment(c *gin.Context) {
	attachmentID := c.Param("attachmentId")

	var attachment models.MedicalRecordAttachment
	if err := h.DB.First(&attachment, "id = ?", attachmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Attachment not found")
		} else {
			utils.InternalServerError(c, "Database error fetching attachment: "+err.Error())
		}
		return
	}

	var record models.MedicalRecord
	if err := h.DB.First(&record, "id = ?", attachment.MedicalRecordID).Error; err != nil {
		utils.InternalServerError(c, "Could not fetch parent medical record for authorization check.")
		return
	}

	if !h.canAccessRecord(c, &record) {
		utils.Forbidden(c, "You are not authorized to view this attachment.")
		return
	}

	c.Writer.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", attachment.FileName))
	c.Data(http.StatusOK, attachment.FileType, attachment.FileData)
}

// canAccessRecord applies the record visibility policy: the owning patient,
// any doctor, or an admin.
func (h *MedicalRecordHandler) canAccessRecord(c *gin.Context, record *models.MedicalRecord) bool {
	userID, idOK := middleware.GetUserIDFromContext(c)
	userRole, roleOK := middleware.GetUserRoleFromContext(c)
	if !idOK || !roleOK {
		return false
	}

	switch userRole {
	case models.RoleAdmin, models.RoleDoctor:
		return true
	case models.RolePatient:
		return userID == record.PatientID
	default:
		return false
	}
}
