package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role enum
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// User represents a profile in the system: the stored identity record
// carrying role and contact/medical metadata.
type User struct {
	BaseModel
	Email            string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password         string     `gorm:"size:255;not null" json:"-"` // Never send password in JSON
	FullName         string     `gorm:"size:255;not null" json:"fullName"`
	Role             Role       `gorm:"size:20;default:'patient'" json:"role"`
	Phone            string     `gorm:"size:30" json:"phone,omitempty"`
	DateOfBirth      *time.Time `json:"dateOfBirth,omitempty"`
	Address          string     `gorm:"size:255" json:"address,omitempty"`
	EmergencyContact string     `gorm:"size:255" json:"emergencyContact,omitempty"`
	MedicalLicense   string     `gorm:"size:100" json:"medicalLicense,omitempty"`
	Specialization   string     `gorm:"size:100" json:"specialization,omitempty"`
	AvatarURL        string     `gorm:"size:512" json:"avatarUrl,omitempty"`
	IsActive         bool       `gorm:"default:true" json:"isActive"`

	// Relations (not always preloaded)
	RefreshTokens       []RefreshToken  `gorm:"foreignKey:UserID" json:"-"`
	AvailableSlots      []AvailableSlot `gorm:"foreignKey:DoctorID" json:"-"`
	DoctorAppointments  []Appointment   `gorm:"foreignKey:DoctorID" json:"-"`
	PatientAppointments []Appointment   `gorm:"foreignKey:PatientID" json:"-"`
	MedicalRecords      []MedicalRecord `gorm:"foreignKey:PatientID" json:"-"`
	VitalReadings       []VitalReading  `gorm:"foreignKey:PatientID" json:"-"`
	Notifications       []Notification  `gorm:"foreignKey:UserID" json:"-"`
}

// UserSanitized represents the user data that is safe to send in API responses.
type UserSanitized struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	FullName         string     `json:"fullName"`
	Role             Role       `json:"role"`
	Phone            string     `json:"phone,omitempty"`
	DateOfBirth      *time.Time `json:"dateOfBirth,omitempty"`
	Address          string     `json:"address,omitempty"`
	EmergencyContact string     `json:"emergencyContact,omitempty"`
	MedicalLicense   string     `json:"medicalLicense,omitempty"`
	Specialization   string     `json:"specialization,omitempty"`
	AvatarURL        string     `json:"avatarUrl,omitempty"`
	IsActive         bool       `json:"isActive"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// SetPassword hashes a password and sets it on the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the user's hashed password
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// Sanitize creates a UserSanitized struct from a User model, excluding sensitive data.
func (u *User) Sanitize() UserSanitized {
	return UserSanitized{
		ID:               u.ID,
		Email:            u.Email,
		FullName:         u.FullName,
		Role:             u.Role,
		Phone:            u.Phone,
		DateOfBirth:      u.DateOfBirth,
		Address:          u.Address,
		EmergencyContact: u.EmergencyContact,
		MedicalLicense:   u.MedicalLicense,
		Specialization:   u.Specialization,
		AvatarURL:        u.AvatarURL,
		IsActive:         u.IsActive,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}
