package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"healthmate-server/internal/middleware"
	"healthmate-server/internal/models"
	"healthmate-server/internal/utils"
)

// DashboardHandler composes the role-specific dashboard payloads.
type DashboardHandler struct {
	DB *gorm.DB
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{DB: db}
}

// GetDashboard branches on the caller's role and returns the widgets that
// role's dashboard renders.
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	userRole, _ := middleware.GetUserRoleFromContext(c)

	switch userRole {
	case models.RolePatient:
		h.patientDashboard(c, userID)
	case models.RoleDoctor:
		h.doctorDashboard(c, userID)
	case models.RoleAdmin:
		h.adminDashboard(c)
	default:
		utils.Forbidden(c, "Unknown role")
	}
}

func (h *DashboardHandler) patientDashboard(c *gin.Context, patientID string) {
	today := time.Now().Format(models.DateLayout)

	var upcoming []models.Appointment
	if err := h.DB.Preload("Doctor").
		Where("patient_id = ? AND date >= ? AND status IN ?", patientID, today,
			[]models.AppointmentStatus{models.StatusPending, models.StatusConfirmed}).
		Order("date asc, time asc").Limit(5).Find(&upcoming).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}

	var readings []models.VitalReading
	if err := h.DB.Where("patient_id = ?", patientID).Order("recorded_at desc").Limit(50).Find(&readings).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch vitals: "+err.Error())
		return
	}
	latestVitals := make(map[models.VitalType]models.VitalReading)
	for _, r := range readings {
		if _, seen := latestVitals[r.Type]; !seen {
			latestVitals[r.Type] = r
		}
	}

	var activePrescriptions int64
	if err := h.DB.Model(&models.Prescription{}).
		Where("patient_id = ? AND is_active = ?", patientID, true).Count(&activePrescriptions).Error; err != nil {
		utils.InternalServerError(c, "Failed to count prescriptions: "+err.Error())
		return
	}

	var unreadNotifications int64
	if err := h.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", patientID, false).Count(&unreadNotifications).Error; err != nil {
		utils.InternalServerError(c, "Failed to count notifications: "+err.Error())
		return
	}

	utils.Success(c, "Dashboard fetched successfully", gin.H{
		"role":                 models.RolePatient,
		"upcomingAppointments": upcoming,
		"latestVitals":         latestVitals,
		"activePrescriptions":  activePrescriptions,
		"unreadNotifications":  unreadNotifications,
	})
}

func (h *DashboardHandler) doctorDashboard(c *gin.Context, doctorID string) {
	today := time.Now().Format(models.DateLayout)

	var todayAppointments []models.Appointment
	if err := h.DB.Preload("Patient").
		Where("doctor_id = ? AND date = ?", doctorID, today).
		Order("time asc").Find(&todayAppointments).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}

	var pendingCount int64
	if err := h.DB.Model(&models.Appointment{}).
		Where("doctor_id = ? AND status = ?", doctorID, models.StatusPending).Count(&pendingCount).Error; err != nil {
		utils.InternalServerError(c, "Failed to count pending appointments: "+err.Error())
		return
	}

	var patientCount int64
	if err := h.DB.Model(&models.Appointment{}).
		Where("doctor_id = ?", doctorID).Distinct("patient_id").Count(&patientCount).Error; err != nil {
		utils.InternalServerError(c, "Failed to count patients: "+err.Error())
		return
	}

	var openSlots int64
	if err := h.DB.Model(&models.AvailableSlot{}).
		Where("doctor_id = ? AND is_available = ? AND date >= ?", doctorID, true, today).Count(&openSlots).Error; err != nil {
		utils.InternalServerError(c, "Failed to count slots: "+err.Error())
		return
	}

	utils.Success(c, "Dashboard fetched successfully", gin.H{
		"role":                models.RoleDoctor,
		"todayAppointments":   todayAppointments,
		"pendingAppointments": pendingCount,
		"patientCount":        patientCount,
		"openSlots":           openSlots,
	})
}

func (h *DashboardHandler) adminDashboard(c *gin.Context) {
	usersByRole := make(map[models.Role]int64)
	for _, role := range []models.Role{models.RolePatient, models.RoleDoctor, models.RoleAdmin} {
		var count int64
		if err := h.DB.Model(&models.User{}).Where("role = ?", role).Count(&count).Error; err != nil {
			utils.InternalServerError(c, "Failed to count users: "+err.Error())
			return
		}
		usersByRole[role] = count
	}

	appointmentsByStatus := make(map[models.AppointmentStatus]int64)
	for _, status := range []models.AppointmentStatus{
		models.StatusPending, models.StatusConfirmed, models.StatusInProgress,
		models.StatusCompleted, models.StatusCancelled,
	} {
		var count int64
		if err := h.DB.Model(&models.Appointment{}).Where("status = ?", status).Count(&count).Error; err != nil {
			utils.InternalServerError(c, "Failed to count appointments: "+err.Error())
			return
		}
		appointmentsByStatus[status] = count
	}

	var recentLogs []models.AuditLog
	if err := h.DB.Order("created_at desc").Limit(10).Find(&recentLogs).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch audit logs: "+err.Error())
		return
	}

	utils.Success(c, "Dashboard fetched successfully", gin.H{
		"role":                 models.RoleAdmin,
		"usersByRole":          usersByRole,
		"appointmentsByStatus": appointmentsByStatus,
		"recentLogs":           recentLogs,
	})
}
