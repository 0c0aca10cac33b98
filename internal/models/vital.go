package models

import (
	"strconv"
	"strings"
	"time"
)

// VitalType enumerates the tracked vital sign kinds.
type VitalType string

const (
	VitalBloodPressure VitalType = "blood_pressure"
	VitalHeartRate     VitalType = "heart_rate"
	VitalTemperature   VitalType = "temperature"
	VitalWeight        VitalType = "weight"
	VitalHeight        VitalType = "height"
	VitalBloodSugar    VitalType = "blood_sugar"
)

// VitalStatus is the threshold classification of a reading.
type VitalStatus string

const (
	VitalNormal VitalStatus = "normal"
	VitalHigh   VitalStatus = "high"
	VitalLow    VitalStatus = "low"
)

// VitalReading is a patient-recorded measurement. Status is classified
// server-side from fixed thresholds at creation time.
// Value is stored as text so compound readings like "120/80" fit.
type VitalReading struct {
	BaseModel
	PatientID  string      `gorm:"size:36;index;not null" json:"patientId"`
	Type       VitalType   `gorm:"size:30;index;not null" json:"type"`
	Value      string      `gorm:"size:30;not null" json:"value"`
	Unit       string      `gorm:"size:20" json:"unit"`
	Status     VitalStatus `gorm:"size:10;default:'normal'" json:"status"`
	Notes      string      `gorm:"size:255" json:"notes,omitempty"`
	RecordedAt time.Time   `gorm:"index" json:"recordedAt"`

	// Relations
	Patient User `gorm:"foreignKey:PatientID" json:"-"`
}

// DefaultUnit returns the display unit for a vital type.
func DefaultUnit(t VitalType) string {
	switch t {
	case VitalBloodPressure:
		return "mmHg"
	case VitalHeartRate:
		return "bpm"
	case VitalTemperature:
		return "°F"
	case VitalWeight:
		return "lbs"
	case VitalHeight:
		return "cm"
	case VitalBloodSugar:
		return "mg/dL"
	default:
		return ""
	}
}

// ClassifyVital applies the fixed threshold rules:
// heart_rate >100 high, <60 low; blood_pressure systolic >140 high, <90 low;
// temperature >99.5 high, <97 low; blood_sugar >140 high, <70 low.
// Weight, height and unparseable values classify as normal.
func ClassifyVital(t VitalType, value string) VitalStatus {
	switch t {
	case VitalBloodPressure:
		systolicPart := strings.SplitN(value, "/", 2)[0]
		systolic, err := strconv.ParseFloat(strings.TrimSpace(systolicPart), 64)
		if err != nil {
			return VitalNormal
		}
		return classifyRange(systolic, 90, 140)
	case VitalHeartRate:
		return classifyNumeric(value, 60, 100)
	case VitalTemperature:
		return classifyNumeric(value, 97, 99.5)
	case VitalBloodSugar:
		return classifyNumeric(value, 70, 140)
	default:
		return VitalNormal
	}
}

func classifyNumeric(value string, low, high float64) VitalStatus {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return VitalNormal
	}
	return classifyRange(v, low, high)
}

func classifyRange(v, low, high float64) VitalStatus {
	if v > high {
		return VitalHigh
	}
	if v < low {
		return VitalLow
	}
	return VitalNormal
}
