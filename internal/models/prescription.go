package models

// Prescription represents a medication prescribed by a doctor to a patient.
type Prescription struct {
	BaseModel
	PatientID      string `gorm:"size:36;index;not null" json:"patientId"`
	DoctorID       string `gorm:"size:36;index;not null" json:"doctorId"`
	MedicationName string `gorm:"size:255;not null" json:"medicationName"`
	Dosage         string `gorm:"size:100;not null" json:"dosage"`
	Frequency      string `gorm:"size:100;not null" json:"frequency"`
	Duration       string `gorm:"size:100" json:"duration,omitempty"`
	Instructions   string `gorm:"type:text" json:"instructions,omitempty"`
	IsActive       bool   `gorm:"default:true;index" json:"isActive"`

	// Relations
	Patient User `gorm:"foreignKey:PatientID" json:"-"`
	Doctor  User `gorm:"foreignKey:DoctorID" json:"-"`
}
