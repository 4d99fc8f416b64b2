package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"attendance/models"
	"attendance/records"
	"attendance/utils"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type AttendanceMarkRequest struct {
	StudentCode string `form:"student_id"`
}

type AttendancePresentRequest struct {
	StudentID  uint64  `json:"student_id"`
	Confidence float64 `json:"confidence"`
}

type AttendanceStatusRequest struct {
	RecordID uint64 `json:"record_id"`
	Status   string `json:"status"`
}

type AttendanceMarkStatusRequest struct {
	StudentID uint64 `json:"student_id"`
	Status    string `json:"status"`
}

type AttendanceRecordRequest struct {
	RecordID uint64 `json:"record_id" binding:"required"`
}

// AttendanceMark marks a student present by their campus ID code. Manual
// entries always get confidence 1.0.
func (a *API) AttendanceMark(c *gin.Context) {
	r := AttendanceMarkRequest{}
	_ = c.ShouldBindWith(&r, binding.Form)
	code := strings.TrimSpace(r.StudentCode)
	if code == "" {
		fail(c, http.StatusBadRequest, "Student ID is required")
		return
	}
	student, err := models.StudentByCode(code)
	if err != nil {
		fail(c, http.StatusNotFound, "Student with ID "+code+" not found")
		return
	}
	record, err := a.Recorder.MarkPresent(student.ID, 1.0, models.MarkedByManual)
	if err != nil {
		if errors.Is(err, records.ErrAlreadyMarked) {
			fail(c, http.StatusOK, student.Name+" already marked present today")
			return
		}
		log.Printf("Manual attendance failed: %v", err)
		fail(c, http.StatusInternalServerError, "Error marking attendance")
		return
	}
	log.Printf("Manual attendance marked: %s (%s) - %s", student.Name, student.StudentID, record.Status)
	ok(c, fmt.Sprintf("%s marked present at %s", student.Name, record.TimeIn.Format("15:04:05")))
}

// AttendancePresent marks one student from the live detection list, keeping
// the confidence the recognizer reported
func (a *API) AttendancePresent(c *gin.Context) {
	r := AttendancePresentRequest{}
	_ = c.ShouldBindWith(&r, binding.JSON)
	if r.StudentID == 0 {
		fail(c, http.StatusOK, "Student ID required")
		return
	}
	student, err := models.StudentByID(r.StudentID)
	if err != nil {
		fail(c, http.StatusOK, "Student not found")
		return
	}
	record, err := a.Recorder.MarkPresent(student.ID, r.Confidence, models.MarkedByFace)
	if err != nil {
		if errors.Is(err, records.ErrAlreadyMarked) {
			fail(c, http.StatusOK, student.Name+" already marked present today")
			return
		}
		log.Printf("Attendance marking failed: %v", err)
		fail(c, http.StatusOK, err.Error())
		return
	}
	log.Printf("Attendance marked: %s (%s) - %s", student.Name, student.StudentID, record.Status)
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      student.Name + " marked present",
		"student_name": student.Name,
		"status":       record.Status,
		"time":         record.TimeIn.Format("15:04:05"),
	})
}

func (a *API) AttendanceAuto(c *gin.Context) {
	available, active, _ := a.Coordinator.Status()
	if !available {
		fail(c, http.StatusOK, "Face recognition not available")
		return
	}
	if !active {
		fail(c, http.StatusOK, "Face recognition not active")
		return
	}
	marked, err := a.Recorder.AutoMark(a.Coordinator.Detections())
	if err != nil {
		log.Printf("Auto marking failed: %v", err)
		fail(c, http.StatusOK, err.Error())
		return
	}
	if len(marked) == 0 {
		fail(c, http.StatusOK, "No new students to mark present")
		return
	}
	markedOut := []gin.H{}
	for _, m := range marked {
		markedOut = append(markedOut, gin.H{
			"name":       m.Name,
			"student_id": m.StudentCode,
			"status":     m.Status,
			"confidence": m.Confidence,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"message":         fmt.Sprintf("Marked %d students present", len(marked)),
		"marked_students": markedOut,
	})
}

// AttendanceStatus rewrites the status of an existing record
func (a *API) AttendanceStatus(c *gin.Context) {
	r := AttendanceStatusRequest{}
	_ = c.ShouldBindWith(&r, binding.JSON)
	if r.RecordID == 0 || r.Status == "" {
		fail(c, http.StatusBadRequest, "Record ID and status are required")
		return
	}
	if !models.ValidStatus(r.Status) {
		fail(c, http.StatusBadRequest, "Invalid status. Must be one of: "+strings.Join(models.AllStatuses(), ", "))
		return
	}
	record, oldStatus, err := a.Recorder.UpdateStatus(r.RecordID, r.Status)
	if err != nil {
		if errors.Is(err, records.ErrNotFound) {
			fail(c, http.StatusNotFound, "Record not found")
			return
		}
		log.Printf("Status update failed: %v", err)
		fail(c, http.StatusInternalServerError, "Error updating status: "+err.Error())
		return
	}
	log.Printf("Attendance status updated: %s %s -> %s", record.Student.Name, oldStatus, r.Status)
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      fmt.Sprintf("Updated %s status from %s to %s", record.Student.Name, oldStatus, r.Status),
		"student_name": record.Student.Name,
		"status":       r.Status,
	})
}

// AttendanceMarkStatus sets today's status for a student, creating the
// record when the student has none yet
func (a *API) AttendanceMarkStatus(c *gin.Context) {
	r := AttendanceMarkStatusRequest{}
	_ = c.ShouldBindWith(&r, binding.JSON)
	if r.StudentID == 0 || r.Status == "" {
		fail(c, http.StatusBadRequest, "Student ID and status are required")
		return
	}
	if !models.ValidStatus(r.Status) {
		fail(c, http.StatusBadRequest, "Invalid status. Must be one of: "+strings.Join(models.AllStatuses(), ", "))
		return
	}
	student, err := models.StudentByID(r.StudentID)
	if err != nil {
		fail(c, http.StatusNotFound, "Student not found")
		return
	}
	_, created, err := a.Recorder.MarkStatus(student.ID, r.Status)
	if err != nil {
		log.Printf("Status marking failed: %v", err)
		fail(c, http.StatusInternalServerError, "Error marking status: "+err.Error())
		return
	}
	message := fmt.Sprintf("Updated %s status to %s", student.Name, r.Status)
	if created {
		message = fmt.Sprintf("Marked %s as %s", student.Name, r.Status)
	}
	log.Printf("Student status marked: %s -> %s", student.Name, r.Status)
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      message,
		"student_name": student.Name,
		"status":       r.Status,
	})
}

func (a *API) AttendanceTimeOut(c *gin.Context) {
	r := AttendanceRecordRequest{}
	if err := c.ShouldBindWith(&r, binding.JSON); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	at, err := a.Recorder.TimeOut(r.RecordID)
	if err != nil {
		switch {
		case errors.Is(err, records.ErrTimeOutAlreadyMarked):
			fail(c, http.StatusBadRequest, "Time out already marked for this record")
		case errors.Is(err, records.ErrNotFound):
			fail(c, http.StatusNotFound, "Record not found")
		default:
			log.Printf("Time out failed: %v", err)
			fail(c, http.StatusInternalServerError, "Error marking time out: "+err.Error())
		}
		return
	}
	log.Printf("Time out marked for record ID: %d", r.RecordID)
	ok(c, "Time out marked at "+at.Format("15:04:05"))
}

func (a *API) AttendanceDelete(c *gin.Context) {
	r := AttendanceRecordRequest{}
	if err := c.ShouldBindWith(&r, binding.JSON); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	record, err := a.Recorder.Delete(r.RecordID)
	if err != nil {
		if errors.Is(err, records.ErrNotFound) {
			fail(c, http.StatusNotFound, "Record not found")
			return
		}
		log.Printf("Record delete failed: %v", err)
		fail(c, http.StatusInternalServerError, "Error deleting record: "+err.Error())
		return
	}
	studentName := record.Student.Name
	if studentName == "" {
		studentName = "Unknown"
	}
	log.Printf("Attendance record deleted: %s (Record ID: %d)", studentName, r.RecordID)
	ok(c, "Attendance record for "+studentName+" deleted successfully")
}

// AttendanceToday returns today's headline numbers plus the ten newest
// records for the dashboard
func (a *API) AttendanceToday(c *gin.Context) {
	today, err := a.Recorder.TodayRecords()
	if err != nil {
		log.Printf("Today listing failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	latest := today
	if len(latest) > 10 {
		latest = latest[:10]
	}
	recordsOut := []gin.H{}
	for _, record := range latest {
		recordsOut = append(recordsOut, gin.H{
			"id":           record.ID,
			"student_name": record.Student.Name,
			"student_id":   record.Student.StudentID,
			"time":         record.TimeIn.Format("15:04:05"),
			"status":       record.Status,
			"confidence":   record.ConfidenceScore,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"date":          utils.Today(),
		"total_present": len(today),
		"records":       recordsOut,
	})
}

func (a *API) AttendanceSummary(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		date = utils.Today()
	}
	summary, err := a.Recorder.Summary(date)
	if err != nil {
		log.Printf("Summary failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if summary == nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total_records":      summary.TotalRecords,
		"present_count":      summary.PresentCount,
		"absent_count":       summary.AbsentCount,
		"late_count":         summary.LateCount,
		"present_percentage": summary.PresentPercentage,
		"absent_percentage":  summary.AbsentPercentage,
		"late_percentage":    summary.LatePercentage,
		"date_range": gin.H{
			"start_date": summary.StartDate,
			"end_date":   summary.EndDate,
		},
	})
}
