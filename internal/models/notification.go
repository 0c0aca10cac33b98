package models

// NotificationType categorizes notifications for the client badge/icon.
type NotificationType string

const (
	NotificationAppointment  NotificationType = "appointment"
	NotificationReminder     NotificationType = "reminder"
	NotificationPrescription NotificationType = "prescription"
	NotificationSystem       NotificationType = "system"
)

// Notification is a server-created message for a single user. Rows are
// written by the booking flow, status transitions and the reminder job.
type Notification struct {
	BaseModel
	UserID  string           `gorm:"size:36;index;not null" json:"userId"`
	Title   string           `gorm:"size:255;not null" json:"title"`
	Message string           `gorm:"type:text;not null" json:"message"`
	Type    NotificationType `gorm:"size:30;default:'system'" json:"type"`
	IsRead  bool             `gorm:"default:false;index" json:"isRead"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"-"`
}
