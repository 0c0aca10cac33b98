package models

// MedicalRecordType represents the type of medical record
type MedicalRecordType string

const (
	RecordTypeConsultation MedicalRecordType = "consultation"
	RecordTypeLabResult    MedicalRecordType = "lab_result"
	RecordTypeImaging      MedicalRecordType = "imaging"
	RecordTypePrescription MedicalRecordType = "prescription"
	RecordTypeVaccination  MedicalRecordType = "vaccination"
	RecordTypeOther        MedicalRecordType = "other"
)

// MedicalRecord represents a patient's medical record. DoctorID is empty for
// patient-uploaded records.
type MedicalRecord struct {
	BaseModel
	PatientID   string            `gorm:"size:36;index;not null" json:"patientId"`
	DoctorID    string            `gorm:"size:36;index" json:"doctorId,omitempty"`
	Title       string            `gorm:"size:255;not null" json:"title"`
	RecordType  MedicalRecordType `gorm:"size:50;default:'other'" json:"recordType"`
	Description string            `gorm:"type:text" json:"description,omitempty"`
	FileURL     string            `gorm:"size:512" json:"fileUrl,omitempty"`

	// Relations
	Patient     User                      `gorm:"foreignKey:PatientID" json:"-"`
	Doctor      User                      `gorm:"foreignKey:DoctorID" json:"-"`
	Attachments []MedicalRecordAttachment `gorm:"foreignKey:MedicalRecordID" json:"attachments,omitempty"`
}

// MedicalRecordAttachment represents a file attached to a medical record.
// File content lives in the database; the record's FileURL points at the
// serve endpoint for the attachment.
type MedicalRecordAttachment struct {
	BaseModel
	MedicalRecordID string `gorm:"not null;type:varchar(36);index" json:"medicalRecordId"`
	FileName        string `gorm:"not null" json:"fileName"`
	FileType        string `gorm:"not null" json:"fileType"` // MIME type
	FileData        []byte `gorm:"type:longblob;not null" json:"-"`
}
