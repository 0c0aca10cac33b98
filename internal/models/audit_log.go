package models

// AuditLevel is a coarse severity for audit entries.
type AuditLevel string

const (
	AuditInfo    AuditLevel = "info"
	AuditWarning AuditLevel = "warning"
	AuditError   AuditLevel = "error"
)

// AuditLog records a security-relevant action for the admin log view.
type AuditLog struct {
	BaseModel
	ActorID    string     `gorm:"size:36;index" json:"actorId,omitempty"`
	ActorEmail string     `gorm:"size:255" json:"actorEmail,omitempty"`
	Action     string     `gorm:"size:100;index;not null" json:"action"`
	Details    string     `gorm:"type:text" json:"details,omitempty"`
	Level      AuditLevel `gorm:"size:10;default:'info';index" json:"level"`
	IP         string     `gorm:"size:45" json:"ip,omitempty"`
}
