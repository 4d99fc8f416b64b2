package records

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"attendance/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func testStore(t *testing.T) *GormStore {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "attendance_test.db")), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("cannot open test database: %v", err)
	}
	if err := gdb.AutoMigrate(&models.Student{}, &models.AttendanceRecord{}); err != nil {
		t.Fatalf("cannot migrate test database: %v", err)
	}
	return &GormStore{DB: gdb}
}

func createStudent(t *testing.T, store *GormStore, code, name string) models.Student {
	t.Helper()
	student := models.Student{
		StudentID:  code,
		Name:       name,
		Email:      code + "@campus.test",
		Department: "CS",
		IsActive:   true,
	}
	if err := store.DB.Create(&student).Error; err != nil {
		t.Fatalf("cannot create student: %v", err)
	}
	return student
}

func TestStoreCreateAndFind(t *testing.T) {
	store := testStore(t)
	alice := createStudent(t, store, "CS101", "Alice")

	record := &models.AttendanceRecord{
		StudentID:       alice.ID,
		Date:            "2026-03-02",
		TimeIn:          time.Now(),
		Status:          models.StatusPresent,
		ConfidenceScore: 0.9,
		MarkedBy:        models.MarkedByFace,
	}
	if err := store.CreateRecord(record); err != nil {
		t.Fatalf("CreateRecord() error = %v", err)
	}
	if record.ID == 0 {
		t.Errorf("CreateRecord() did not backfill the id")
	}

	found, err := store.FindRecord(alice.ID, "2026-03-02")
	if err != nil {
		t.Fatalf("FindRecord() error = %v", err)
	}
	if found == nil || found.Status != models.StatusPresent || found.MarkedBy != models.MarkedByFace {
		t.Errorf("FindRecord() = %+v", found)
	}

	missing, err := store.FindRecord(alice.ID, "2026-03-03")
	if err != nil {
		t.Fatalf("FindRecord() error = %v", err)
	}
	if missing != nil {
		t.Errorf("FindRecord() for an empty day = %+v, want nil", missing)
	}
}

func TestStoreRejectsSecondMarkForDay(t *testing.T) {
	store := testStore(t)
	alice := createStudent(t, store, "CS101", "Alice")

	first := &models.AttendanceRecord{StudentID: alice.ID, Date: "2026-03-02", TimeIn: time.Now()}
	if err := store.CreateRecord(first); err != nil {
		t.Fatalf("CreateRecord() error = %v", err)
	}

	second := &models.AttendanceRecord{StudentID: alice.ID, Date: "2026-03-02", TimeIn: time.Now()}
	if err := store.CreateRecord(second); !errors.Is(err, ErrAlreadyMarked) {
		t.Errorf("CreateRecord() duplicate error = %v, want %v", err, ErrAlreadyMarked)
	}

	// A different day is a different record
	other := &models.AttendanceRecord{StudentID: alice.ID, Date: "2026-03-03", TimeIn: time.Now()}
	if err := store.CreateRecord(other); err != nil {
		t.Errorf("CreateRecord() next day error = %v", err)
	}
}

func TestStoreBatchRollsBackOnDuplicate(t *testing.T) {
	store := testStore(t)
	alice := createStudent(t, store, "CS101", "Alice")
	bob := createStudent(t, store, "CS102", "Bob")

	existing := &models.AttendanceRecord{StudentID: alice.ID, Date: "2026-03-02", TimeIn: time.Now()}
	if err := store.CreateRecord(existing); err != nil {
		t.Fatalf("CreateRecord() error = %v", err)
	}

	batch := []*models.AttendanceRecord{
		{StudentID: bob.ID, Date: "2026-03-02", TimeIn: time.Now()},
		{StudentID: alice.ID, Date: "2026-03-02", TimeIn: time.Now()},
	}
	if err := store.CreateRecords(batch); !errors.Is(err, ErrAlreadyMarked) {
		t.Fatalf("CreateRecords() error = %v, want %v", err, ErrAlreadyMarked)
	}

	day, err := store.RecordsForDate("2026-03-02")
	if err != nil {
		t.Fatalf("RecordsForDate() error = %v", err)
	}
	if len(day) != 1 {
		t.Errorf("batch partially applied, day has %d records, want 1", len(day))
	}
}

func TestStoreUpdateStatus(t *testing.T) {
	store := testStore(t)
	alice := createStudent(t, store, "CS101", "Alice")
	record := &models.AttendanceRecord{StudentID: alice.ID, Date: "2026-03-02", TimeIn: time.Now(), Status: models.StatusPresent}
	if err := store.CreateRecord(record); err != nil {
		t.Fatalf("CreateRecord() error = %v", err)
	}

	if err := store.UpdateStatus(record.ID, models.StatusLate); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	updated, err := store.RecordByID(record.ID)
	if err != nil {
		t.Fatalf("RecordByID() error = %v", err)
	}
	if updated.Status != models.StatusLate {
		t.Errorf("status = %q, want %q", updated.Status, models.StatusLate)
	}

	if err := store.UpdateStatus(999, models.StatusLate); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateStatus(missing) error = %v, want %v", err, ErrNotFound)
	}
}

func TestStoreMarkTimeOutOnce(t *testing.T) {
	store := testStore(t)
	alice := createStudent(t, store, "CS101", "Alice")
	record := &models.AttendanceRecord{StudentID: alice.ID, Date: "2026-03-02", TimeIn: time.Now()}
	if err := store.CreateRecord(record); err != nil {
		t.Fatalf("CreateRecord() error = %v", err)
	}

	if err := store.MarkTimeOut(record.ID, time.Now()); err != nil {
		t.Fatalf("MarkTimeOut() error = %v", err)
	}
	stamped, err := store.RecordByID(record.ID)
	if err != nil {
		t.Fatalf("RecordByID() error = %v", err)
	}
	if stamped.TimeOut == nil {
		t.Errorf("time out not persisted")
	}

	if err := store.MarkTimeOut(record.ID, time.Now()); !errors.Is(err, ErrTimeOutAlreadyMarked) {
		t.Errorf("second MarkTimeOut() error = %v, want %v", err, ErrTimeOutAlreadyMarked)
	}
}

func TestStoreRecordByIDLoadsStudent(t *testing.T) {
	store := testStore(t)
	alice := createStudent(t, store, "CS101", "Alice")
	record := &models.AttendanceRecord{StudentID: alice.ID, Date: "2026-03-02", TimeIn: time.Now()}
	if err := store.CreateRecord(record); err != nil {
		t.Fatalf("CreateRecord() error = %v", err)
	}

	loaded, err := store.RecordByID(record.ID)
	if err != nil {
		t.Fatalf("RecordByID() error = %v", err)
	}
	if loaded.Student.Name != "Alice" {
		t.Errorf("RecordByID() student = %+v, want Alice", loaded.Student)
	}

	if _, err := store.RecordByID(999); !errors.Is(err, ErrNotFound) {
		t.Errorf("RecordByID(missing) error = %v, want %v", err, ErrNotFound)
	}
}

func TestStoreDeletes(t *testing.T) {
	store := testStore(t)
	alice := createStudent(t, store, "CS101", "Alice")
	bob := createStudent(t, store, "CS102", "Bob")

	for _, record := range []*models.AttendanceRecord{
		{StudentID: alice.ID, Date: "2026-03-02", TimeIn: time.Now()},
		{StudentID: alice.ID, Date: "2026-03-03", TimeIn: time.Now()},
		{StudentID: bob.ID, Date: "2026-03-02", TimeIn: time.Now()},
	} {
		if err := store.CreateRecord(record); err != nil {
			t.Fatalf("CreateRecord() error = %v", err)
		}
	}

	if err := store.DeleteForStudent(alice.ID); err != nil {
		t.Fatalf("DeleteForStudent() error = %v", err)
	}
	day, err := store.RecordsForDate("2026-03-02")
	if err != nil {
		t.Fatalf("RecordsForDate() error = %v", err)
	}
	if len(day) != 1 || day[0].StudentID != bob.ID {
		t.Errorf("after DeleteForStudent day = %+v, want only Bob", day)
	}

	if err := store.DeleteRecord(day[0].ID); err != nil {
		t.Fatalf("DeleteRecord() error = %v", err)
	}
	if err := store.DeleteRecord(day[0].ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteRecord(gone) error = %v, want %v", err, ErrNotFound)
	}
}
