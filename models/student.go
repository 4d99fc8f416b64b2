package models

import (
	"strings"

	"attendance/db"
	"attendance/faces"
	"attendance/utils"
)

type Student struct {
	ID           uint64 `gorm:"primaryKey"`
	CreatedAt    int
	UpdatedAt    int
	StudentID    string `gorm:"type:varchar(20);index:uniq_student_id,unique"`
	Name         string `gorm:"type:varchar(100)"`
	Email        string `gorm:"type:varchar(120);index:uniq_student_email,unique"`
	Phone        string `gorm:"type:varchar(15)"`
	Department   string `gorm:"type:varchar(50)"`
	Year         string `gorm:"type:varchar(10)"`
	Section      string `gorm:"type:varchar(5)"`
	FaceEncoding []byte `gorm:"type:blob"`
	PhotoPath    string `gorm:"type:varchar(200)"`
	ThumbPath    string `gorm:"type:varchar(200)"`
	IsActive     bool   `gorm:"not null;default:true"`
}

func (s *Student) SetFaceEncoding(encoding faces.Encoding) {
	s.FaceEncoding = utils.Float32ArrayToByteArray(encoding)
}

func (s *Student) GetFaceEncoding() faces.Encoding {
	if len(s.FaceEncoding) == 0 {
		return nil
	}
	return utils.ByteArrayToFloat32Array(s.FaceEncoding)
}

func (s *Student) HasFaceEncoding() bool {
	return len(s.FaceEncoding) > 0
}

// Validate returns all registration problems, empty when the data is usable
func (s *Student) Validate() []string {
	problems := []string{}
	if s.StudentID == "" {
		problems = append(problems, "Student ID is required")
	} else if len(s.StudentID) < 3 {
		problems = append(problems, "Student ID must be at least 3 characters")
	}
	if s.Name == "" {
		problems = append(problems, "Name is required")
	}
	if s.Email == "" {
		problems = append(problems, "Email is required")
	} else if !strings.Contains(s.Email, "@") {
		problems = append(problems, "Invalid email format")
	}
	if s.Department == "" {
		problems = append(problems, "Department is required")
	}
	return problems
}

func (s *Student) Create() error {
	return db.Instance.Create(s).Error
}

func (s *Student) Save() error {
	return db.Instance.Save(s).Error
}

func StudentByID(id uint64) (s Student, err error) {
	err = db.Instance.First(&s, id).Error
	return
}

// StudentByCode looks an active student up by their campus ID (not the DB key)
func StudentByCode(code string) (s Student, err error) {
	err = db.Instance.First(&s, "student_id = ? AND is_active = 1", code).Error
	return
}

func ActiveStudents() (result []Student, err error) {
	err = db.Instance.Order("name").Find(&result, "is_active = 1").Error
	return
}

// StudentExists reports whether any student row, active or not, already
// uses the given campus ID
func StudentExists(code string) (bool, error) {
	var count int64
	err := db.Instance.Raw("select count(1) from students where student_id=?", code).Scan(&count).Error
	return count > 0, err
}

// EnrolledFaces builds the matching snapshot: one entry per active student
// with a stored encoding
func EnrolledFaces() ([]faces.EnrolledFace, error) {
	students, err := ActiveStudents()
	if err != nil {
		return nil, err
	}
	result := []faces.EnrolledFace{}
	for _, s := range students {
		if !s.HasFaceEncoding() {
			continue
		}
		result = append(result, faces.EnrolledFace{
			StudentID: s.ID,
			Name:      s.Name,
			Encoding:  s.GetFaceEncoding(),
		})
	}
	return result, nil
}
