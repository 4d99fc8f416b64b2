// Package video streams the live camera feed as motion JPEG, the format
// browsers render natively inside an img tag.
package video

import (
	"fmt"
	"net/http"
	"time"

	"attendance/camera"
	"attendance/metrics"
)

// Boundary separates the JPEG parts of the multipart stream
const Boundary = "frame"

const contentType = "multipart/x-mixed-replace; boundary=" + Boundary

const jpegQuality = 90

// FrameFunc produces the next frame to send, false when none is available
type FrameFunc func() (camera.Frame, bool)

// ServeMJPEG writes the multipart JPEG stream until active turns false or
// the client goes away. Frames are paced at the given rate; cycles without
// a frame send nothing and keep the connection open.
func ServeMJPEG(w http.ResponseWriter, r *http.Request, next FrameFunc, active func() bool, fps int) {
	if fps <= 0 {
		fps = 30
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-cache")

	metrics.StreamClients.Inc()
	defer metrics.StreamClients.Dec()

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	for active() {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
		frame, ok := next()
		if !ok {
			continue
		}
		data, err := frame.EncodeJPEG(jpegQuality)
		if err != nil {
			continue
		}
		if _, err := fmt.Fprintf(w, "--%s\r\nContent-Type: image/jpeg\r\n\r\n", Boundary); err != nil {
			return
		}
		if _, err := w.Write(data); err != nil {
			return
		}
		if _, err := fmt.Fprint(w, "\r\n"); err != nil {
			return
		}
		flusher.Flush()
	}
}
