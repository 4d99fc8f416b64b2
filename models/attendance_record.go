package models

import (
	"time"
)

const (
	StatusPresent = "Present"
	StatusAbsent  = "Absent"
	StatusLate    = "Late"
	StatusExcused = "Excused"

	MarkedByFace   = "Face Recognition"
	MarkedByManual = "Manual"
)

// AttendanceRecord holds one attendance event. The unique index on
// (student_id, date) closes the check-then-insert race for concurrent marking.
type AttendanceRecord struct {
	ID              uint64 `gorm:"primaryKey"`
	CreatedAt       int
	StudentID       uint64  `gorm:"not null;index:uniq_student_date,unique,priority:1"`
	Student         Student `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Date            string  `gorm:"type:varchar(10);not null;index:uniq_student_date,unique,priority:2"`
	TimeIn          time.Time
	TimeOut         *time.Time
	Status          string `gorm:"type:varchar(20);default:Present"`
	ConfidenceScore float64
	MarkedBy        string `gorm:"type:varchar(30)"`
}

func ValidStatus(status string) bool {
	switch status {
	case StatusPresent, StatusAbsent, StatusLate, StatusExcused:
		return true
	}
	return false
}

func AllStatuses() []string {
	return []string{StatusPresent, StatusAbsent, StatusLate, StatusExcused}
}
