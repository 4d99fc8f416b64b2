// Package metrics exposes the Prometheus collectors for the capture and
// detection pipeline
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FramesCaptured = promauto.NewCounter(prometheus.CounterOpts{
		Name: "attendance_frames_captured_total",
		Help: "Frames successfully read from the camera device",
	})
	CaptureReadErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "attendance_capture_read_errors_total",
		Help: "Failed camera reads, regardless of retry policy",
	})
	DetectCycles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "attendance_detect_cycles_total",
		Help: "Completed locate-encode-match cycles",
	})
	DetectCycleSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "attendance_detect_cycle_seconds",
		Help:    "Duration of one detection cycle",
		Buckets: prometheus.DefBuckets,
	})
	FacesDetected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_faces_detected_total",
		Help: "Faces located per cycle, split by match outcome",
	}, []string{"matched"})
	MarkedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_marked_total",
		Help: "Attendance records created, split by marking source",
	}, []string{"source"})
	StreamClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "attendance_stream_clients",
		Help: "Currently connected MJPEG stream clients",
	})
)
