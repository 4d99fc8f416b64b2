package models

import (
	"time"

	"attendance/db"
)

// AttendanceSession records one recognition run, opened on start and closed
// on stop
type AttendanceSession struct {
	ID        uint64 `gorm:"primaryKey"`
	CreatedAt int
	Name      string `gorm:"type:varchar(100)"`
	StartTime time.Time
	EndTime   *time.Time
	IsActive  bool `gorm:"not null;default:true"`
	FaceCount int  // Enrolled faces loaded for this session
}

func OpenSession(name string, faceCount int) (s AttendanceSession, err error) {
	s.Name = name
	s.StartTime = time.Now()
	s.IsActive = true
	s.FaceCount = faceCount
	err = db.Instance.Create(&s).Error
	return
}

func (s *AttendanceSession) Close() error {
	if s.ID == 0 {
		return nil
	}
	now := time.Now()
	s.EndTime = &now
	s.IsActive = false
	return db.Instance.Save(s).Error
}
