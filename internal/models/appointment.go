package models

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending    AppointmentStatus = "pending"
	StatusConfirmed  AppointmentStatus = "confirmed"
	StatusInProgress AppointmentStatus = "in_progress"
	StatusCompleted  AppointmentStatus = "completed"
	StatusCancelled  AppointmentStatus = "cancelled"
)

// AppointmentType represents how the consultation is held
type AppointmentType string

const (
	TypeVideo    AppointmentType = "video"
	TypeInPerson AppointmentType = "in_person"
	TypePhone    AppointmentType = "phone"
)

// statusTransitions is the canonical lifecycle:
// pending -> confirmed | cancelled
// confirmed -> in_progress | cancelled
// in_progress -> completed
var statusTransitions = map[AppointmentStatus][]AppointmentStatus{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted},
}

// CanTransitionTo reports whether the lifecycle allows moving to next.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Appointment represents a scheduled medical appointment, created by the
// booking flow from a consumed slot plus patient-supplied type and reason.
type Appointment struct {
	BaseModel
	PatientID      string            `gorm:"size:36;index;not null" json:"patientId"`
	DoctorID       string            `gorm:"size:36;index;not null" json:"doctorId"`
	SlotID         string            `gorm:"size:36;index" json:"slotId,omitempty"`
	Date           string            `gorm:"size:10;index;not null" json:"date"`
	Time           string            `gorm:"size:5;not null" json:"time"`
	Duration       int               `gorm:"default:30" json:"duration"`
	Type           AppointmentType   `gorm:"size:20;default:'video'" json:"type"`
	Status         AppointmentStatus `gorm:"size:20;default:'pending'" json:"status"`
	Reason         string            `gorm:"size:255" json:"reason"`
	Notes          string            `gorm:"type:text" json:"notes"`
	MeetingLink    string            `gorm:"size:512" json:"meetingLink,omitempty"`
	IdempotencyKey *string           `gorm:"size:64;uniqueIndex" json:"-"`
	Reminded       bool              `gorm:"default:false" json:"-"`

	// Relations
	Patient User `gorm:"foreignKey:PatientID" json:"-"`
	Doctor  User `gorm:"foreignKey:DoctorID" json:"-"`
}
