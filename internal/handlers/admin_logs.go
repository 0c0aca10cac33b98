package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"healthmate-server/internal/models"
	"healthmate-server/internal/utils"
)

// AuditLogHandler serves the admin log view.
type AuditLogHandler struct {
	DB *gorm.DB
}

// NewAuditLogHandler creates a new AuditLogHandler.
func NewAuditLogHandler(db *gorm.DB) *AuditLogHandler {
	return &AuditLogHandler{DB: db}
}

// GetAuditLogs lists audit entries newest-first. Supports ?level= filtering,
// ?q= substring search over action/details/actor email, and ?limit=.
func (h *AuditLogHandler) GetAuditLogs(c *gin.Context) {
	query := h.DB.Order("created_at desc")

	if level := c.Query("level"); level != "" {
		query = query.Where("level = ?", level)
	}
	if q := c.Query("q"); q != "" {
		like := "%" + q + "%"
		query = query.Where("action LIKE ? OR details LIKE ? OR actor_email LIKE ?", like, like, like)
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 1000 {
			utils.BadRequest(c, "limit must be an integer between 1 and 1000")
			return
		}
		limit = parsed
	}

	var logs []models.AuditLog
	if err := query.Limit(limit).Find(&logs).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch audit logs: "+err.Error())
		return
	}

	utils.Success(c, "Audit logs fetched successfully", logs)
}
