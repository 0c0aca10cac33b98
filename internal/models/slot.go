package models

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for slot and appointment dates.
const DateLayout = "2006-01-02"

// TimeLayout is the wire format for slot and appointment times of day.
const TimeLayout = "15:04"

// AvailableSlot is a doctor-published, date/time-bounded interval offered
// for booking. The booking endpoint is the only writer that flips
// IsAvailable; a consumed slot is never offered to a second patient.
type AvailableSlot struct {
	BaseModel
	DoctorID    string `gorm:"size:36;index;not null" json:"doctorId"`
	Date        string `gorm:"size:10;index;not null" json:"date"`
	StartTime   string `gorm:"size:5;not null" json:"startTime"`
	EndTime     string `gorm:"size:5;not null" json:"endTime"`
	IsAvailable bool   `gorm:"default:true;index" json:"isAvailable"`

	// Relations
	Doctor User `gorm:"foreignKey:DoctorID" json:"-"`
}

// ComputeEndTime adds duration minutes to an HH:MM start time.
func ComputeEndTime(startTime string, durationMinutes int) (string, error) {
	start, err := time.Parse(TimeLayout, startTime)
	if err != nil {
		return "", fmt.Errorf("invalid start time %q: %w", startTime, err)
	}
	if durationMinutes <= 0 {
		return "", fmt.Errorf("duration must be positive, got %d", durationMinutes)
	}
	return start.Add(time.Duration(durationMinutes) * time.Minute).Format(TimeLayout), nil
}

// DurationMinutes returns the slot length derived from its bounds.
func (s *AvailableSlot) DurationMinutes() int {
	start, err := time.Parse(TimeLayout, s.StartTime)
	if err != nil {
		return 0
	}
	end, err := time.Parse(TimeLayout, s.EndTime)
	if err != nil {
		return 0
	}
	return int(end.Sub(start).Minutes())
}

// Overlaps reports whether two HH:MM intervals on the same date intersect.
func (s *AvailableSlot) Overlaps(startTime, endTime string) bool {
	return s.StartTime < endTime && startTime < s.EndTime
}
