package handlers

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"healthmate-server/internal/ai"
	"healthmate-server/internal/middleware"
	"healthmate-server/internal/models"
	"healthmate-server/internal/utils"
)

// AssistantHandler exposes the completion-API features: symptom checking,
// mental-health chat, consultation summaries, educational content and triage.
type AssistantHandler struct {
	DB *gorm.DB
	AI *ai.Client
}

// NewAssistantHandler creates a new AssistantHandler.
func NewAssistantHandler(db *gorm.DB, aiClient *ai.Client) *AssistantHandler {
	return &AssistantHandler{DB: db, AI: aiClient}
}

// SymptomCheckRequest represents the request body for symptom analysis.
type SymptomCheckRequest struct {
	Symptoms string `json:"symptoms" binding:"required"`
}

// CheckSymptoms runs the symptom-checker prompt over the reported symptoms.
func (h *AssistantHandler) CheckSymptoms(c *gin.Context) {
	var req SymptomCheckRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	analysis := h.AI.SymptomChecker(c.Request.Context(), req.Symptoms)
	utils.Success(c, "Symptom analysis generated", gin.H{"analysis": analysis})
}

// MentalHealthRequest represents the request body for the mental-health chat.
type MentalHealthRequest struct {
	Message   string `json:"message" binding:"required"`
	MoodLevel int    `json:"moodLevel" binding:"omitempty,min=1,max=5"`
}

// MentalHealthChat responds to a mental-health chat message.
func (h *AssistantHandler) MentalHealthChat(c *gin.Context) {
	var req MentalHealthRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	reply := h.AI.MentalHealthAssistant(c.Request.Context(), req.Message, req.MoodLevel)
	utils.Success(c, "Response generated", gin.H{"reply": reply})
}

// ConsultationSummaryRequest represents the request body for summarization.
type ConsultationSummaryRequest struct {
	Transcript string `json:"transcript" binding:"required"`
}

// SummarizeConsultation produces a structured summary of a consultation
// transcript (doctor-only route).
func (h *AssistantHandler) SummarizeConsultation(c *gin.Context) {
	var req ConsultationSummaryRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	summary := h.AI.ConsultationSummary(c.Request.Context(), req.Transcript)
	utils.Success(c, "Summary generated", gin.H{"summary": summary})
}

// EducationRequest represents the request body for educational content.
type EducationRequest struct {
	Topic string `json:"topic" binding:"required"`
}

// GenerateEducation creates patient-facing educational content about a topic.
func (h *AssistantHandler) GenerateEducation(c *gin.Context) {
	var req EducationRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	content := h.AI.EducationalContent(c.Request.Context(), req.Topic)
	utils.Success(c, "Educational content generated", gin.H{"content": content})
}

// TriageRequest represents the request body for triage assessment.
type TriageRequest struct {
	Symptoms string `json:"symptoms" binding:"required"`
}

// Triage assesses urgency from symptoms plus the caller's latest vitals.
func (h *AssistantHandler) Triage(c *gin.Context) {
	var req TriageRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	assessment := h.AI.TriageAssessment(c.Request.Context(), req.Symptoms, h.latestVitalsSummary(userID))
	utils.Success(c, "Triage assessment generated", gin.H{"assessment": assessment})
}

// latestVitalsSummary renders the patient's most recent reading per type as
// a compact line for the triage prompt. Missing vitals yield an empty string.
func (h *AssistantHandler) latestVitalsSummary(patientID string) string {
	var readings []models.VitalReading
	if err := h.DB.Where("patient_id = ?", patientID).Order("recorded_at desc").Limit(50).Find(&readings).Error; err != nil {
		return ""
	}

	seen := make(map[models.VitalType]bool)
	var parts []string
	for _, r := range readings {
		if seen[r.Type] {
			continue
		}
		seen[r.Type] = true
		parts = append(parts, fmt.Sprintf("%s: %s %s (%s)", r.Type, r.Value, r.Unit, r.Status))
	}
	return strings.Join(parts, ", ")
}
