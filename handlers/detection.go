package handlers

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"attendance/config"
	"attendance/faces"
	"attendance/session"
	"attendance/video"

	"github.com/gin-gonic/gin"
)

func (a *API) DetectionStart(c *gin.Context) {
	if err := a.Coordinator.StartCamera(); err != nil {
		if errors.Is(err, session.ErrCameraActive) {
			fail(c, http.StatusOK, "Camera already active")
			return
		}
		fail(c, http.StatusOK, "Failed to start camera. Please check if camera is available.")
		return
	}
	ok(c, "Camera started successfully")
}

func (a *API) DetectionStop(c *gin.Context) {
	a.Coordinator.StopCamera()
	ok(c, "Camera stopped")
}

func (a *API) RecognitionStart(c *gin.Context) {
	count, err := a.Coordinator.StartRecognition()
	if err != nil {
		switch {
		case errors.Is(err, faces.ErrNotAvailable):
			fail(c, http.StatusOK, "Face recognition not available")
		case errors.Is(err, session.ErrRecognitionActive):
			fail(c, http.StatusOK, "Face recognition already active")
		case errors.Is(err, session.ErrNoEnrolledFaces):
			fail(c, http.StatusOK, "No students with face encodings found. Please register students first.")
		case errors.Is(err, session.ErrCameraFailed):
			fail(c, http.StatusOK, "Failed to start camera. Please check if camera is available.")
		default:
			fail(c, http.StatusInternalServerError, err.Error())
		}
		return
	}
	ok(c, fmt.Sprintf("Face recognition started with %d known faces", count))
}

func (a *API) RecognitionStop(c *gin.Context) {
	a.Coordinator.StopRecognition()
	ok(c, "Face recognition stopped")
}

func (a *API) DetectionStatus(c *gin.Context) {
	available, active, cameraActive := a.Coordinator.Status()
	c.JSON(http.StatusOK, gin.H{
		"available":     available,
		"active":        active,
		"camera_active": cameraActive,
	})
}

func (a *API) DetectionFaces(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"faces": detectionList(a.Coordinator.Detections())})
}

// detectionList shapes detections for the polling UI: null student_id for
// unknown faces, confidence to two decimals, location as [x, y, w, h]
func detectionList(detections []faces.Detection) []gin.H {
	result := []gin.H{}
	for _, det := range detections {
		var studentID interface{}
		if det.StudentID != nil {
			studentID = *det.StudentID
		}
		result = append(result, gin.H{
			"student_id": studentID,
			"name":       det.Name,
			"confidence": math.Round(det.Confidence*100) / 100,
			"location":   []int{det.Region.X, det.Region.Y, det.Region.W, det.Region.H},
			"timestamp":  det.Timestamp.Format(time.RFC3339),
		})
	}
	return result
}

func (a *API) VideoFeed(c *gin.Context) {
	video.ServeMJPEG(c.Writer, c.Request, a.Coordinator.StreamFrame, a.Coordinator.Active, config.STREAM_FPS)
}
