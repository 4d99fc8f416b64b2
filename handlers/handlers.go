// Package handlers wires the HTTP surface: session control, live
// detections, student enrollment and attendance marking. Handlers shape
// all JSON themselves; models stay presentation-free.
package handlers

import (
	"net/http"

	"attendance/faces"
	"attendance/records"
	"attendance/session"
	"attendance/storage"

	"github.com/gin-gonic/gin"
)

// API carries the shared dependencies of all handlers
type API struct {
	Coordinator *session.Coordinator
	Recorder    *records.Recorder
	Encoder     *faces.Encoder
	Storage     storage.StorageAPI
}

func ok(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}

// fail mirrors the success envelope. Session and marking conflicts come
// back as 200 with success=false, the contract the polling UI expects.
func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}
