package handlers

import (
	"bytes"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"attendance/db"
	"attendance/faces"
	"attendance/models"
	"attendance/utils"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
)

// ThumbSize is the bounding box for student photo thumbnails
const ThumbSize = 320

type StudentRegisterRequest struct {
	StudentID  string `form:"student_id"`
	Name       string `form:"name"`
	Email      string `form:"email"`
	Phone      string `form:"phone"`
	Department string `form:"department"`
	Year       string `form:"year"`
	Section    string `form:"section"`
}

type StudentDeleteRequest struct {
	ID uint64 `json:"id" binding:"required"`
}

func studentInfo(s *models.Student) gin.H {
	return gin.H{
		"id":                s.ID,
		"student_id":        s.StudentID,
		"name":              s.Name,
		"email":             s.Email,
		"phone":             s.Phone,
		"department":        s.Department,
		"year":              s.Year,
		"section":           s.Section,
		"is_active":         s.IsActive,
		"has_face_encoding": s.HasFaceEncoding(),
		"created_at":        s.CreatedAt,
	}
}

func (a *API) StudentRegister(c *gin.Context) {
	r := StudentRegisterRequest{}
	if err := c.ShouldBindWith(&r, binding.FormMultipart); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	student := models.Student{
		StudentID:  strings.TrimSpace(r.StudentID),
		Name:       strings.TrimSpace(r.Name),
		Email:      strings.TrimSpace(r.Email),
		Phone:      strings.TrimSpace(r.Phone),
		Department: strings.TrimSpace(r.Department),
		Year:       strings.TrimSpace(r.Year),
		Section:    strings.TrimSpace(r.Section),
		IsActive:   true,
	}
	if problems := student.Validate(); len(problems) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": strings.Join(problems, "; "),
			"errors":  problems,
		})
		return
	}
	exists, err := models.StudentExists(student.StudentID)
	if err != nil {
		log.Printf("Student lookup failed: %v", err)
		fail(c, http.StatusInternalServerError, "Error registering student")
		return
	}
	if exists {
		fail(c, http.StatusBadRequest, "Student ID already exists")
		return
	}
	file, err := c.FormFile("image")
	if err != nil {
		fail(c, http.StatusBadRequest, "Student photo is required")
		return
	}
	if file.Filename == "" {
		fail(c, http.StatusBadRequest, "No image selected")
		return
	}
	ext := utils.AllowedImageExt(file.Filename)
	if ext == "" {
		fail(c, http.StatusBadRequest, "Error uploading image")
		return
	}
	reader, err := file.Open()
	if err != nil {
		log.Printf("Photo open failed: %v", err)
		fail(c, http.StatusBadRequest, "Error uploading image")
		return
	}
	defer reader.Close()

	photoID := uuid.NewString()
	student.PhotoPath = "students/" + photoID + ext
	if _, err = a.Storage.Save(student.PhotoPath, reader); err != nil {
		log.Printf("Photo save failed: %v", err)
		fail(c, http.StatusInternalServerError, "Error uploading image")
		return
	}
	// Thumbnail failures don't block registration
	var buf, thumb bytes.Buffer
	if _, err = a.Storage.Load(student.PhotoPath, &buf); err == nil {
		if _, err = utils.CreateThumb(ThumbSize, &buf, &thumb); err == nil {
			thumbPath := "students/thumbs/" + photoID + ".jpg"
			if _, err = a.Storage.Save(thumbPath, &thumb); err == nil {
				student.ThumbPath = thumbPath
			}
		} else {
			log.Printf("CreateThumb error: %v", err)
		}
	}

	encoding, err := a.encodePhoto(student.PhotoPath)
	if err != nil {
		if !errors.Is(err, faces.ErrNotAvailable) {
			a.deletePhotos(&student)
			fail(c, http.StatusBadRequest, "No face detected in the image. Please upload a clear photo.")
			return
		}
		// No detection capability: register without an encoding
	} else {
		student.SetFaceEncoding(encoding)
	}

	if err = student.Create(); err != nil {
		log.Printf("Student create failed: %v", err)
		a.deletePhotos(&student)
		fail(c, http.StatusInternalServerError, "Error registering student")
		return
	}
	log.Printf("New student registered: %s (ID: %s)", student.Name, student.StudentID)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Student registered successfully!",
		"student": studentInfo(&student),
	})
}

// encodePhoto runs face encoding over a stored photo, downloading it first
// when the backend is remote
func (a *API) encodePhoto(path string) (faces.Encoding, error) {
	if err := a.Storage.EnsureLocalFile(path); err != nil {
		return nil, err
	}
	defer a.Storage.ReleaseLocalFile(path)
	return a.Encoder.EncodeImageFile(a.Storage.GetFullPath(path))
}

func (a *API) deletePhotos(student *models.Student) {
	if student.PhotoPath != "" {
		if err := a.Storage.Delete(student.PhotoPath); err != nil {
			log.Printf("Photo delete failed: %v", err)
		}
	}
	if student.ThumbPath != "" {
		if err := a.Storage.Delete(student.ThumbPath); err != nil {
			log.Printf("Thumb delete failed: %v", err)
		}
	}
}

func (a *API) StudentList(c *gin.Context) {
	students, err := models.ActiveStudents()
	if err != nil {
		log.Printf("Student list failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "DB error"})
		return
	}
	result := []gin.H{}
	for i := range students {
		result = append(result, studentInfo(&students[i]))
	}
	c.JSON(http.StatusOK, result)
}

func (a *API) StudentGet(c *gin.Context) {
	student, found := a.loadStudent(c)
	if !found {
		return
	}
	c.JSON(http.StatusOK, studentInfo(&student))
}

func (a *API) StudentPhoto(c *gin.Context) {
	student, found := a.loadStudent(c)
	if !found {
		return
	}
	if student.PhotoPath == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "No photo"})
		return
	}
	path := student.PhotoPath
	if c.Query("thumb") != "" && student.ThumbPath != "" {
		path = student.ThumbPath
	}
	a.Storage.Serve(path, c.Request, c.Writer)
}

func (a *API) StudentDelete(c *gin.Context) {
	r := StudentDeleteRequest{}
	if err := c.ShouldBindWith(&r, binding.JSON); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	student, err := models.StudentByID(r.ID)
	if err != nil {
		fail(c, http.StatusNotFound, "Student not found")
		return
	}
	student.IsActive = false
	if err = student.Save(); err != nil {
		log.Printf("Student delete failed: %v", err)
		fail(c, http.StatusInternalServerError, "Error deleting student: "+err.Error())
		return
	}
	log.Printf("Student deleted: %s (ID: %d)", student.Name, student.ID)
	ok(c, "Student "+student.Name+" deleted successfully")
}

func (a *API) StudentPurge(c *gin.Context) {
	r := StudentDeleteRequest{}
	if err := c.ShouldBindWith(&r, binding.JSON); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	student, err := models.StudentByID(r.ID)
	if err != nil {
		fail(c, http.StatusNotFound, "Student not found")
		return
	}
	if err = a.Recorder.Forget(student.ID); err != nil {
		log.Printf("Attendance purge failed: %v", err)
		fail(c, http.StatusInternalServerError, "Error permanently deleting student: "+err.Error())
		return
	}
	a.deletePhotos(&student)
	if err = db.Instance.Delete(&student).Error; err != nil {
		log.Printf("Student purge failed: %v", err)
		fail(c, http.StatusInternalServerError, "Error permanently deleting student: "+err.Error())
		return
	}
	log.Printf("Student permanently deleted: %s (ID: %d)", student.Name, student.ID)
	ok(c, "Student "+student.Name+" permanently deleted")
}

func (a *API) loadStudent(c *gin.Context) (student models.Student, found bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid student ID"})
		return student, false
	}
	student, err = models.StudentByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return student, false
	}
	return student, true
}
