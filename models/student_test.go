package models

import (
	"testing"

	"attendance/faces"
)

func TestStudentValidate(t *testing.T) {
	tests := []struct {
		name    string
		student Student
		want    []string
	}{
		{
			"complete",
			Student{StudentID: "CS101", Name: "Asha Verma", Email: "asha@campus.edu", Department: "CS"},
			[]string{},
		},
		{
			"missing everything",
			Student{},
			[]string{
				"Student ID is required",
				"Name is required",
				"Email is required",
				"Department is required",
			},
		},
		{
			"short id",
			Student{StudentID: "C1", Name: "Asha Verma", Email: "asha@campus.edu", Department: "CS"},
			[]string{"Student ID must be at least 3 characters"},
		},
		{
			"bad email",
			Student{StudentID: "CS101", Name: "Asha Verma", Email: "not-an-email", Department: "CS"},
			[]string{"Invalid email format"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.student.Validate()
			if len(got) != len(tt.want) {
				t.Fatalf("Validate() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Validate()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestStudentFaceEncodingRoundTrip(t *testing.T) {
	s := Student{}
	if s.HasFaceEncoding() {
		t.Error("HasFaceEncoding() = true for a new student")
	}
	if s.GetFaceEncoding() != nil {
		t.Error("GetFaceEncoding() != nil for a new student")
	}
	enc := faces.Encoding{0.5, 1, 127.25, 254}
	s.SetFaceEncoding(enc)
	if !s.HasFaceEncoding() {
		t.Error("HasFaceEncoding() = false after SetFaceEncoding")
	}
	got := s.GetFaceEncoding()
	if len(got) != len(enc) {
		t.Fatalf("GetFaceEncoding() length = %d, want %d", len(got), len(enc))
	}
	for i := range got {
		if got[i] != enc[i] {
			t.Errorf("GetFaceEncoding()[%d] = %v, want %v", i, got[i], enc[i])
		}
	}
}

func TestValidStatus(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{StatusPresent, true},
		{StatusAbsent, true},
		{StatusLate, true},
		{StatusExcused, true},
		{"present", false},
		{"", false},
		{"Skipped", false},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			if got := ValidStatus(tt.status); got != tt.want {
				t.Errorf("ValidStatus(%q) = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}
