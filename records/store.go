// Package records implements attendance marking and reporting on top of
// the student roster. The Recorder is the only writer of attendance rows;
// handlers go through it so the already-marked rules hold everywhere.
package records

import (
	"errors"
	"time"

	"attendance/db"
	"attendance/models"

	"gorm.io/gorm"
)

var (
	ErrAlreadyMarked        = errors.New("attendance already marked for today")
	ErrNotFound             = errors.New("attendance record not found")
	ErrTimeOutAlreadyMarked = errors.New("time out already marked for this record")
)

// Store is the persistence surface the Recorder works against
type Store interface {
	FindRecord(studentID uint64, date string) (*models.AttendanceRecord, error)
	RecordByID(id uint64) (*models.AttendanceRecord, error)
	CreateRecord(record *models.AttendanceRecord) error
	CreateRecords(batch []*models.AttendanceRecord) error
	UpdateStatus(id uint64, status string) error
	MarkTimeOut(id uint64, at time.Time) error
	DeleteRecord(id uint64) error
	DeleteForStudent(studentID uint64) error
	RecordsForDate(date string) ([]models.AttendanceRecord, error)
}

// GormStore persists attendance records through gorm, normally over the
// process-wide connection opened by db.Init
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore() *GormStore {
	return &GormStore{DB: db.Instance}
}

// FindRecord returns the record for one student and date, nil when none exists
func (s *GormStore) FindRecord(studentID uint64, date string) (*models.AttendanceRecord, error) {
	var record models.AttendanceRecord
	err := s.DB.First(&record, "student_id = ? AND date = ?", studentID, date).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *GormStore) RecordByID(id uint64) (*models.AttendanceRecord, error) {
	var record models.AttendanceRecord
	err := s.DB.Preload("Student").First(&record, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// CreateRecord inserts one attendance row. The unique index on
// (student_id, date) turns concurrent double-marking into ErrAlreadyMarked.
func (s *GormStore) CreateRecord(record *models.AttendanceRecord) error {
	err := s.DB.Create(record).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyMarked
	}
	return err
}

// CreateRecords inserts the batch as one multi-row statement, so a
// duplicate anywhere rolls the whole batch back
func (s *GormStore) CreateRecords(batch []*models.AttendanceRecord) error {
	if len(batch) == 0 {
		return nil
	}
	err := s.DB.Create(batch).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyMarked
	}
	return err
}

func (s *GormStore) UpdateStatus(id uint64, status string) error {
	result := s.DB.Model(&models.AttendanceRecord{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkTimeOut sets the time-out once. The conditional update keeps two
// concurrent requests from both claiming the write.
func (s *GormStore) MarkTimeOut(id uint64, at time.Time) error {
	result := s.DB.Model(&models.AttendanceRecord{}).
		Where("id = ? AND time_out IS NULL", id).
		Update("time_out", at)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTimeOutAlreadyMarked
	}
	return nil
}

func (s *GormStore) DeleteRecord(id uint64) error {
	result := s.DB.Delete(&models.AttendanceRecord{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) DeleteForStudent(studentID uint64) error {
	return s.DB.Delete(&models.AttendanceRecord{}, "student_id = ?", studentID).Error
}

// RecordsForDate returns the day's records, newest first, with students loaded
func (s *GormStore) RecordsForDate(date string) ([]models.AttendanceRecord, error) {
	var result []models.AttendanceRecord
	err := s.DB.Preload("Student").Order("created_at desc, id desc").Find(&result, "date = ?", date).Error
	return result, err
}
