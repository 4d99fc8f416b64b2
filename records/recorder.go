package records

import (
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"sync"
	"time"

	"attendance/faces"
	"attendance/metrics"
	"attendance/models"
	"attendance/utils"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// MarkedStudent is one row of an auto-marking result
type MarkedStudent struct {
	Name        string
	StudentCode string
	Status      string
	Confidence  float64
}

// Summary aggregates one day's records for the dashboard
type Summary struct {
	TotalRecords      int
	PresentCount      int
	AbsentCount       int
	LateCount         int
	PresentPercentage float64
	AbsentPercentage  float64
	LatePercentage    float64
	StartDate         string
	EndDate           string
}

// Recorder applies the attendance marking rules. It keeps a small
// already-marked cache per student and day so the detection UI does not hit
// the database on every poll; the unique index remains the authority.
type Recorder struct {
	store     Store
	students  func(id uint64) (models.Student, error)
	threshold float64
	marked    cmap.ConcurrentMap[string, bool]

	mu       sync.Mutex
	cacheDay string
}

// NewRecorder wires a Recorder. students resolves roster entries for
// auto-marking, threshold is the minimum confidence for automatic marks.
func NewRecorder(store Store, students func(uint64) (models.Student, error), threshold float64) *Recorder {
	return &Recorder{
		store:     store,
		students:  students,
		threshold: threshold,
		marked:    cmap.New[bool](),
	}
}

func markedKey(studentID uint64, date string) string {
	return fmt.Sprintf("%d:%s", studentID, date)
}

// rollCache evicts prior-day cache entries the first time a new date is seen
func (r *Recorder) rollCache(date string) {
	r.mu.Lock()
	if r.cacheDay == date {
		r.mu.Unlock()
		return
	}
	r.cacheDay = date
	r.mu.Unlock()
	for item := range r.marked.IterBuffered() {
		if !strings.HasSuffix(item.Key, ":"+date) {
			r.marked.Remove(item.Key)
		}
	}
}

// MarkPresent records a present mark for today. ErrAlreadyMarked when a
// record for the student already exists, whatever its status.
func (r *Recorder) MarkPresent(studentID uint64, confidence float64, markedBy string) (*models.AttendanceRecord, error) {
	date := utils.Today()
	r.rollCache(date)
	key := markedKey(studentID, date)
	if r.marked.Has(key) {
		return nil, ErrAlreadyMarked
	}
	existing, err := r.store.FindRecord(studentID, date)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		r.marked.Set(key, true)
		return nil, ErrAlreadyMarked
	}

	record := &models.AttendanceRecord{
		StudentID:       studentID,
		Date:            date,
		TimeIn:          time.Now(),
		Status:          models.StatusPresent,
		ConfidenceScore: confidence,
		MarkedBy:        markedBy,
	}
	if err := r.store.CreateRecord(record); err != nil {
		if errors.Is(err, ErrAlreadyMarked) {
			r.marked.Set(key, true)
		}
		return nil, err
	}
	r.marked.Set(key, true)
	metrics.MarkedTotal.WithLabelValues(sourceLabel(markedBy)).Inc()
	return record, nil
}

// MarkStatus sets today's status for a student, creating the record when
// none exists yet. Returns whether a new record was created.
func (r *Recorder) MarkStatus(studentID uint64, status string) (*models.AttendanceRecord, bool, error) {
	date := utils.Today()
	r.rollCache(date)
	existing, err := r.store.FindRecord(studentID, date)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		if err := r.store.UpdateStatus(existing.ID, status); err != nil {
			return nil, false, err
		}
		existing.Status = status
		return existing, false, nil
	}

	record := &models.AttendanceRecord{
		StudentID: studentID,
		Date:      date,
		TimeIn:    time.Now(),
		Status:    status,
		MarkedBy:  models.MarkedByManual,
	}
	if err := r.store.CreateRecord(record); err != nil {
		return nil, false, err
	}
	r.marked.Set(markedKey(studentID, date), true)
	metrics.MarkedTotal.WithLabelValues("manual").Inc()
	return record, true, nil
}

// AutoMark marks every matched detection above the confidence threshold
// that has no record yet, in one batch. Returns summaries of the new marks,
// empty when there was nothing to do.
func (r *Recorder) AutoMark(detections []faces.Detection) ([]MarkedStudent, error) {
	date := utils.Today()
	r.rollCache(date)
	now := time.Now()
	seen := map[uint64]bool{}
	batch := []*models.AttendanceRecord{}
	marked := []MarkedStudent{}

	for _, det := range detections {
		if !det.Matched() || det.Confidence <= r.threshold {
			continue
		}
		id := *det.StudentID
		if seen[id] {
			continue
		}
		seen[id] = true

		key := markedKey(id, date)
		if r.marked.Has(key) {
			continue
		}
		existing, err := r.store.FindRecord(id, date)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			r.marked.Set(key, true)
			continue
		}
		student, err := r.students(id)
		if err != nil {
			log.Printf("Auto-marking skipped student %d: %v", id, err)
			continue
		}
		batch = append(batch, &models.AttendanceRecord{
			StudentID:       id,
			Date:            date,
			TimeIn:          now,
			Status:          models.StatusPresent,
			ConfidenceScore: det.Confidence,
			MarkedBy:        models.MarkedByFace,
		})
		marked = append(marked, MarkedStudent{
			Name:        student.Name,
			StudentCode: student.StudentID,
			Status:      models.StatusPresent,
			Confidence:  det.Confidence,
		})
	}

	if len(batch) == 0 {
		return nil, nil
	}
	if err := r.store.CreateRecords(batch); err != nil {
		return nil, err
	}
	for _, record := range batch {
		r.marked.Set(markedKey(record.StudentID, date), true)
	}
	metrics.MarkedTotal.WithLabelValues("face").Add(float64(len(batch)))
	return marked, nil
}

// UpdateStatus changes the status of an existing record and returns the
// updated record plus the status it had before
func (r *Recorder) UpdateStatus(recordID uint64, status string) (*models.AttendanceRecord, string, error) {
	record, err := r.store.RecordByID(recordID)
	if err != nil {
		return nil, "", err
	}
	oldStatus := record.Status
	if err := r.store.UpdateStatus(recordID, status); err != nil {
		return nil, "", err
	}
	record.Status = status
	return record, oldStatus, nil
}

// TimeOut stamps the record's time-out, once
func (r *Recorder) TimeOut(recordID uint64) (time.Time, error) {
	record, err := r.store.RecordByID(recordID)
	if err != nil {
		return time.Time{}, err
	}
	if record.TimeOut != nil {
		return time.Time{}, ErrTimeOutAlreadyMarked
	}
	at := time.Now()
	if err := r.store.MarkTimeOut(recordID, at); err != nil {
		return time.Time{}, err
	}
	return at, nil
}

// Delete removes a record and lets the student be marked again today
func (r *Recorder) Delete(recordID uint64) (*models.AttendanceRecord, error) {
	record, err := r.store.RecordByID(recordID)
	if err != nil {
		return nil, err
	}
	if err := r.store.DeleteRecord(recordID); err != nil {
		return nil, err
	}
	r.marked.Remove(markedKey(record.StudentID, record.Date))
	return record, nil
}

// Forget drops a student's attendance rows and cache entry, for purges
func (r *Recorder) Forget(studentID uint64) error {
	if err := r.store.DeleteForStudent(studentID); err != nil {
		return err
	}
	r.marked.Remove(markedKey(studentID, utils.Today()))
	return nil
}

// TodayRecords returns today's records, newest first
func (r *Recorder) TodayRecords() ([]models.AttendanceRecord, error) {
	return r.store.RecordsForDate(utils.Today())
}

// Summary aggregates the given day's records, nil when the day is empty
func (r *Recorder) Summary(date string) (*Summary, error) {
	dayRecords, err := r.store.RecordsForDate(date)
	if err != nil {
		return nil, err
	}
	if len(dayRecords) == 0 {
		return nil, nil
	}

	summary := &Summary{TotalRecords: len(dayRecords)}
	summary.StartDate = dayRecords[0].Date
	summary.EndDate = dayRecords[0].Date
	for _, record := range dayRecords {
		switch record.Status {
		case models.StatusPresent:
			summary.PresentCount++
		case models.StatusAbsent:
			summary.AbsentCount++
		case models.StatusLate:
			summary.LateCount++
		}
		if record.Date < summary.StartDate {
			summary.StartDate = record.Date
		}
		if record.Date > summary.EndDate {
			summary.EndDate = record.Date
		}
	}
	total := float64(summary.TotalRecords)
	summary.PresentPercentage = round2(float64(summary.PresentCount) / total * 100)
	summary.AbsentPercentage = round2(float64(summary.AbsentCount) / total * 100)
	summary.LatePercentage = round2(float64(summary.LateCount) / total * 100)
	return summary, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func sourceLabel(markedBy string) string {
	if markedBy == models.MarkedByFace {
		return "face"
	}
	return "manual"
}
