package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"healthmate-server/internal/audit"
	"healthmate-server/internal/middleware"
	"healthmate-server/internal/models"
	"healthmate-server/internal/utils"
)

// UserHandler handles user-related requests (typically admin operations).
type UserHandler struct {
	DB *gorm.DB
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{DB: db}
}

// DoctorWithSlots is a row of the available-doctors listing: a doctor plus
// the count of their open future slots.
type DoctorWithSlots struct {
	ID             string `json:"id"`
	FullName       string `json:"fullName"`
	Specialization string `json:"specialization"`
	AvailableSlots int64  `json:"availableSlots"`
}

// GetDoctors lists active doctors with their open future slot counts.
// This backs the patient booking dialog's doctor selection.
func (h *UserHandler) GetDoctors(c *gin.Context) {
	var doctors []models.User
	if err := h.DB.Where("role = ? AND is_active = ?", models.RoleDoctor, true).
		Order("full_name asc").Find(&doctors).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch doctors: "+err.Error())
		return
	}

	today := time.Now().Format(models.DateLayout)
	result := make([]DoctorWithSlots, 0, len(doctors))
	for _, doc := range doctors {
		var count int64
		if err := h.DB.Model(&models.AvailableSlot{}).
			Where("doctor_id = ? AND is_available = ? AND date >= ?", doc.ID, true, today).
			Count(&count).Error; err != nil {
			utils.InternalServerError(c, "Failed to count slots: "+err.Error())
			return
		}
		result = append(result, DoctorWithSlots{
			ID:             doc.ID,
			FullName:       doc.FullName,
			Specialization: doc.Specialization,
			AvailableSlots: count,
		})
	}

	utils.Success(c, "Doctors fetched successfully", result)
}

// GetDoctorPatients lists the distinct patients a doctor has appointments with.
func (h *UserHandler) GetDoctorPatients(c *gin.Context) {
	doctorID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var patientIDs []string
	if err := h.DB.Model(&models.Appointment{}).
		Where("doctor_id = ?", doctorID).
		Distinct("patient_id").
		Pluck("patient_id", &patientIDs).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch patient ids: "+err.Error())
		return
	}

	var patients []models.User
	if len(patientIDs) > 0 {
		if err := h.DB.Where("id IN ?", patientIDs).Order("full_name asc").Find(&patients).Error; err != nil {
			utils.InternalServerError(c, "Failed to fetch patients: "+err.Error())
			return
		}
	}

	sanitized := make([]models.UserSanitized, len(patients))
	for i, p := range patients {
		sanitized[i] = p.Sanitize()
	}

	utils.Success(c, "Patients fetched successfully", sanitized)
}

// CreateUserRequest represents the request body for creating a user by an admin.
type CreateUserRequest struct {
	FullName       string `json:"fullName" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,min=8"`
	Role           string `json:"role" binding:"required,oneof=patient doctor admin"`
	Phone          string `json:"phone"`
	MedicalLicense string `json:"medicalLicense"`
	Specialization string `json:"specialization"`
}

// CreateUser handles creating a new user (admin).
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var existingUser models.User
	if err := h.DB.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		utils.BadRequest(c, "User with this email already exists")
		return
	} else if err != gorm.ErrRecordNotFound {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	user := models.User{
		FullName:       req.FullName,
		Email:          req.Email,
		Role:           models.Role(req.Role),
		Phone:          req.Phone,
		MedicalLicense: req.MedicalLicense,
		Specialization: req.Specialization,
		IsActive:       true,
	}
	if err := user.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Failed to hash password: "+err.Error())
		return
	}

	if err := h.DB.Create(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to create user: "+err.Error())
		return
	}

	h.auditAdminAction(c, "admin.user_created", "Created "+req.Role+" "+req.Email)

	utils.Created(c, "User created successfully", user.Sanitize())
}

// GetUsers handles fetching all users (admin), optionally filtered by role
// and a name/email search term.
func (h *UserHandler) GetUsers(c *gin.Context) {
	query := h.DB.Order("created_at desc")

	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	if q := c.Query("q"); q != "" {
		like := "%" + q + "%"
		query = query.Where("full_name LIKE ? OR email LIKE ?", like, like)
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch users: "+err.Error())
		return
	}

	sanitizedUsers := make([]models.UserSanitized, len(users))
	for i, u := range users {
		sanitizedUsers[i] = u.Sanitize()
	}

	utils.Success(c, "Users fetched successfully", sanitizedUsers)
}

// GetUserByID handles fetching a single user by ID (admin).
func (h *UserHandler) GetUserByID(c *gin.Context) {
	userID := c.Param("id")

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, "User fetched successfully", user.Sanitize())
}

// UpdateUserRequest represents the request body for updating a user by an admin.
// Unlike profile self-service, admins may change role and active state.
type UpdateUserRequest struct {
	FullName       string `json:"fullName"`
	Email          string `json:"email"`
	Role           string `json:"role" binding:"omitempty,oneof=patient doctor admin"`
	Phone          string `json:"phone"`
	MedicalLicense string `json:"medicalLicense"`
	Specialization string `json:"specialization"`
	IsActive       *bool  `json:"isActive"`
}

// UpdateUser handles updating a user by ID (admin).
func (h *UserHandler) UpdateUser(c *gin.Context) {
	userID := c.Param("id")

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.NotFound(c, "User not found")
		return
	}

	if req.Email != "" && req.Email != user.Email {
		var existing models.User
		if err := h.DB.Where("email = ? AND id <> ?", req.Email, userID).First(&existing).Error; err == nil {
			utils.BadRequest(c, "Another user with this email already exists")
			return
		} else if err != gorm.ErrRecordNotFound {
			utils.InternalServerError(c, "Database error: "+err.Error())
			return
		}
		user.Email = req.Email
	}
	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.Role != "" {
		user.Role = models.Role(req.Role)
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if req.MedicalLicense != "" {
		user.MedicalLicense = req.MedicalLicense
	}
	if req.Specialization != "" {
		user.Specialization = req.Specialization
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := h.DB.Save(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to update user: "+err.Error())
		return
	}

	h.auditAdminAction(c, "admin.user_updated", "Updated "+user.Email)

	utils.Success(c, "User updated successfully", user.Sanitize())
}

// DeactivateUser soft-deletes a user by flagging them inactive. Profiles are
// never hard-deleted; history referencing them must stay intact.
func (h *UserHandler) DeactivateUser(c *gin.Context) {
	userID := c.Param("id")

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	user.IsActive = false
	if err := h.DB.Save(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to deactivate user: "+err.Error())
		return
	}

	h.auditAdminAction(c, "admin.user_deactivated", "Deactivated "+user.Email)

	utils.Success(c, "User deactivated successfully", user.Sanitize())
}

func (h *UserHandler) auditAdminAction(c *gin.Context, action, details string) {
	actorID, _ := middleware.GetUserIDFromContext(c)
	audit.Record(h.DB, audit.Entry{
		ActorID: actorID,
		Action:  action,
		Details: details,
		IP:      c.ClientIP(),
	})
}
