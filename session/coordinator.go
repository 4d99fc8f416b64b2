// Package session coordinates the two user-facing sessions, plain camera
// monitoring and face recognition, over the single shared capture source.
package session

import (
	"errors"
	"log"
	"sync"
	"time"

	"attendance/camera"
	"attendance/faces"
)

var (
	ErrCameraActive      = errors.New("camera already active")
	ErrCameraFailed      = errors.New("camera failed to start")
	ErrRecognitionActive = errors.New("face recognition already active")
	ErrNoEnrolledFaces   = errors.New("no students with face encodings")
)

// FrameSource is the capture side the Coordinator drives, camera.Source
// in production
type FrameSource interface {
	Start() error
	Stop()
	LatestFrame() (camera.Frame, bool)
	Running() bool
}

// FaceDetector is the recognition side, faces.Detector in production
type FaceDetector interface {
	Start(enrolled []faces.EnrolledFace) error
	Stop()
	Detections() []faces.Detection
	Running() bool
}

type Config struct {
	Source   FrameSource
	Detector FaceDetector
	// Available reports whether face recognition can run at all
	Available bool
	// LoadEnrolled snapshots the matchable roster at recognition start
	LoadEnrolled func() ([]faces.EnrolledFace, error)
	// OpenSession optionally records a recognition session and returns its
	// closer, called best effort on stop
	OpenSession func(faceCount int) func()
}

// Coordinator owns the session flags the status endpoint reports. The
// source keeps running as long as either session needs it and stops with
// the last one.
type Coordinator struct {
	cfg Config

	mu                sync.Mutex
	cameraActive      bool
	recognitionActive bool
	closeSession      func()
}

func NewCoordinator(cfg Config) *Coordinator {
	return &Coordinator{cfg: cfg}
}

// StartCamera begins the plain monitoring session. The capture source is
// reused when recognition already holds it open.
func (c *Coordinator) StartCamera() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cameraActive {
		return ErrCameraActive
	}
	if !c.cfg.Source.Running() {
		if err := c.cfg.Source.Start(); err != nil {
			log.Printf("Cannot start camera: %v", err)
			return ErrCameraFailed
		}
	}
	c.cameraActive = true
	return nil
}

// StopCamera ends the monitoring session. The source keeps running when
// recognition still needs it. Safe to call when not active.
func (c *Coordinator) StopCamera() {
	c.mu.Lock()
	if !c.cameraActive {
		c.mu.Unlock()
		return
	}
	c.cameraActive = false
	stopSource := !c.recognitionActive
	c.mu.Unlock()

	if stopSource {
		c.cfg.Source.Stop()
	}
}

// StartRecognition begins a recognition session and returns the number of
// enrolled faces it will match against
func (c *Coordinator) StartRecognition() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.cfg.Available {
		return 0, faces.ErrNotAvailable
	}
	if c.recognitionActive {
		return 0, ErrRecognitionActive
	}
	enrolled, err := c.cfg.LoadEnrolled()
	if err != nil {
		return 0, err
	}
	if len(enrolled) == 0 {
		return 0, ErrNoEnrolledFaces
	}
	startedSource := false
	if !c.cfg.Source.Running() {
		if err := c.cfg.Source.Start(); err != nil {
			log.Printf("Cannot start camera for recognition: %v", err)
			return 0, ErrCameraFailed
		}
		startedSource = true
	}
	if err := c.cfg.Detector.Start(enrolled); err != nil {
		if startedSource && !c.cameraActive {
			c.cfg.Source.Stop()
		}
		return 0, err
	}
	c.recognitionActive = true
	if c.cfg.OpenSession != nil {
		c.closeSession = c.cfg.OpenSession(len(enrolled))
	}
	return len(enrolled), nil
}

// StopRecognition ends the recognition session and clears its detections.
// Safe to call when not active.
func (c *Coordinator) StopRecognition() {
	c.mu.Lock()
	if !c.recognitionActive {
		c.mu.Unlock()
		return
	}
	c.recognitionActive = false
	stopSource := !c.cameraActive
	closeSession := c.closeSession
	c.closeSession = nil
	c.mu.Unlock()

	c.cfg.Detector.Stop()
	if stopSource {
		c.cfg.Source.Stop()
	}
	if closeSession != nil {
		closeSession()
	}
}

// Status reports the three flags of the status endpoint
func (c *Coordinator) Status() (available, active, cameraActive bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg.Available, c.recognitionActive, c.cameraActive
}

// Active is true while either session runs, the stream loop predicate
func (c *Coordinator) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recognitionActive || c.cameraActive
}

// Detections returns the live detection list, empty outside a
// recognition session
func (c *Coordinator) Detections() []faces.Detection {
	c.mu.Lock()
	active := c.recognitionActive
	c.mu.Unlock()
	if !active {
		return nil
	}
	return c.cfg.Detector.Detections()
}

// StreamFrame produces the next video feed frame: detections drawn in
// during recognition, a timestamp overlay for plain monitoring
func (c *Coordinator) StreamFrame() (camera.Frame, bool) {
	c.mu.Lock()
	recognition := c.recognitionActive
	cameraOnly := c.cameraActive && !recognition
	c.mu.Unlock()
	if !recognition && !cameraOnly {
		return camera.Frame{}, false
	}

	frame, ok := c.cfg.Source.LatestFrame()
	if !ok {
		return camera.Frame{}, false
	}
	if recognition {
		return faces.Annotate(frame, c.cfg.Detector.Detections()), true
	}
	// LatestFrame returned an owned copy, draw the overlay in place
	frame.DrawText(time.Now().Format("2006-01-02 15:04:05"), 10, 30, camera.Green)
	frame.DrawText("Camera Active - Manual Attendance Mode", 10, 60, camera.White)
	return frame, true
}
