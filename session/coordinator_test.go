package session

import (
	"errors"
	"sync"
	"testing"

	"attendance/camera"
	"attendance/faces"
)

type stubSource struct {
	mu        sync.Mutex
	running   bool
	failStart bool
	frame     camera.Frame
	has       bool
	starts    int
	stops     int
}

func (s *stubSource) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.starts++
	if s.failStart {
		return errors.New("no such device")
	}
	s.running = true
	return nil
}

func (s *stubSource) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.stops++
}

func (s *stubSource) LatestFrame() (camera.Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.has {
		return camera.Frame{}, false
	}
	return s.frame.Clone(), true
}

func (s *stubSource) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *stubSource) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.starts, s.stops
}

type stubDetector struct {
	mu         sync.Mutex
	running    bool
	detections []faces.Detection
	failStart  error
}

func (d *stubDetector) Start(enrolled []faces.EnrolledFace) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failStart != nil {
		return d.failStart
	}
	d.running = true
	return nil
}

func (d *stubDetector) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.running = false
}

func (d *stubDetector) Detections() []faces.Detection {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running {
		return nil
	}
	return d.detections
}

func (d *stubDetector) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}

func enrolledLoader(n int) func() ([]faces.EnrolledFace, error) {
	return func() ([]faces.EnrolledFace, error) {
		result := make([]faces.EnrolledFace, n)
		for i := range result {
			result[i] = faces.EnrolledFace{StudentID: uint64(i + 1), Name: "Student"}
		}
		return result, nil
	}
}

func TestCameraLifecycle(t *testing.T) {
	source := &stubSource{}
	coordinator := NewCoordinator(Config{
		Source:   source,
		Detector: &stubDetector{},
	})

	if err := coordinator.StartCamera(); err != nil {
		t.Fatalf("StartCamera() error = %v", err)
	}
	if _, _, cameraActive := coordinator.Status(); !cameraActive {
		t.Errorf("Status() camera inactive after StartCamera()")
	}
	if err := coordinator.StartCamera(); !errors.Is(err, ErrCameraActive) {
		t.Errorf("second StartCamera() error = %v, want %v", err, ErrCameraActive)
	}

	coordinator.StopCamera()
	if coordinator.Active() {
		t.Errorf("Active() = true after StopCamera()")
	}
	if source.Running() {
		t.Errorf("source still running after StopCamera()")
	}
	coordinator.StopCamera()
}

func TestStartCameraFailure(t *testing.T) {
	coordinator := NewCoordinator(Config{
		Source:   &stubSource{failStart: true},
		Detector: &stubDetector{},
	})

	if err := coordinator.StartCamera(); !errors.Is(err, ErrCameraFailed) {
		t.Errorf("StartCamera() error = %v, want %v", err, ErrCameraFailed)
	}
	if coordinator.Active() {
		t.Errorf("Active() = true after failed start")
	}
}

func TestRecognitionLifecycle(t *testing.T) {
	source := &stubSource{}
	detector := &stubDetector{}
	opened := 0
	closed := 0
	coordinator := NewCoordinator(Config{
		Source:       source,
		Detector:     detector,
		Available:    true,
		LoadEnrolled: enrolledLoader(2),
		OpenSession: func(faceCount int) func() {
			opened = faceCount
			return func() { closed++ }
		},
	})

	count, err := coordinator.StartRecognition()
	if err != nil {
		t.Fatalf("StartRecognition() error = %v", err)
	}
	if count != 2 {
		t.Errorf("StartRecognition() = %d faces, want 2", count)
	}
	if opened != 2 {
		t.Errorf("session hook saw %d faces, want 2", opened)
	}
	if _, active, _ := coordinator.Status(); !active {
		t.Errorf("Status() recognition inactive after start")
	}
	if !detector.Running() || !source.Running() {
		t.Errorf("detector/source not running during recognition")
	}

	if _, err := coordinator.StartRecognition(); !errors.Is(err, ErrRecognitionActive) {
		t.Errorf("second StartRecognition() error = %v, want %v", err, ErrRecognitionActive)
	}

	coordinator.StopRecognition()
	if detector.Running() || source.Running() {
		t.Errorf("detector/source still running after StopRecognition()")
	}
	if closed != 1 {
		t.Errorf("session closer called %d times, want 1", closed)
	}
	coordinator.StopRecognition()
	if closed != 1 {
		t.Errorf("idempotent stop closed the session again")
	}
}

func TestRecognitionUnavailable(t *testing.T) {
	coordinator := NewCoordinator(Config{
		Source:       &stubSource{},
		Detector:     &stubDetector{},
		Available:    false,
		LoadEnrolled: enrolledLoader(2),
	})

	if _, err := coordinator.StartRecognition(); !errors.Is(err, faces.ErrNotAvailable) {
		t.Errorf("StartRecognition() error = %v, want %v", err, faces.ErrNotAvailable)
	}
}

func TestRecognitionNeedsEnrolledFaces(t *testing.T) {
	source := &stubSource{}
	coordinator := NewCoordinator(Config{
		Source:       source,
		Detector:     &stubDetector{},
		Available:    true,
		LoadEnrolled: enrolledLoader(0),
	})

	if _, err := coordinator.StartRecognition(); !errors.Is(err, ErrNoEnrolledFaces) {
		t.Errorf("StartRecognition() error = %v, want %v", err, ErrNoEnrolledFaces)
	}
	if starts, _ := source.counts(); starts != 0 {
		t.Errorf("camera started despite empty roster")
	}
}

func TestSourceSharedBetweenSessions(t *testing.T) {
	source := &stubSource{}
	coordinator := NewCoordinator(Config{
		Source:       source,
		Detector:     &stubDetector{},
		Available:    true,
		LoadEnrolled: enrolledLoader(1),
	})

	if err := coordinator.StartCamera(); err != nil {
		t.Fatalf("StartCamera() error = %v", err)
	}
	if _, err := coordinator.StartRecognition(); err != nil {
		t.Fatalf("StartRecognition() error = %v", err)
	}
	if starts, _ := source.counts(); starts != 1 {
		t.Errorf("source started %d times, want 1", starts)
	}

	// The camera session ends but recognition still needs the source
	coordinator.StopCamera()
	if !source.Running() {
		t.Errorf("source stopped while recognition still active")
	}

	coordinator.StopRecognition()
	if source.Running() {
		t.Errorf("source still running after the last session ended")
	}
	if _, stops := source.counts(); stops != 1 {
		t.Errorf("source stopped %d times, want 1", stops)
	}
}

func TestDetectionsOnlyDuringRecognition(t *testing.T) {
	detector := &stubDetector{detections: []faces.Detection{{Name: "Unknown"}}}
	coordinator := NewCoordinator(Config{
		Source:       &stubSource{},
		Detector:     detector,
		Available:    true,
		LoadEnrolled: enrolledLoader(1),
	})

	if got := coordinator.Detections(); len(got) != 0 {
		t.Errorf("Detections() = %v while idle, want none", got)
	}
	if _, err := coordinator.StartRecognition(); err != nil {
		t.Fatalf("StartRecognition() error = %v", err)
	}
	if got := coordinator.Detections(); len(got) != 1 {
		t.Errorf("Detections() = %v during recognition, want 1 entry", got)
	}
}

func TestStreamFrame(t *testing.T) {
	source := &stubSource{frame: camera.NewFrame(64, 64), has: true}
	detector := &stubDetector{detections: []faces.Detection{
		{Name: "Unknown", Region: faces.Region{X: 5, Y: 35, W: 20, H: 20}},
	}}
	coordinator := NewCoordinator(Config{
		Source:       source,
		Detector:     detector,
		Available:    true,
		LoadEnrolled: enrolledLoader(1),
	})

	// No session, no frames
	if _, ok := coordinator.StreamFrame(); ok {
		t.Errorf("StreamFrame() produced a frame with no session")
	}

	// Camera session gets the overlay
	if err := coordinator.StartCamera(); err != nil {
		t.Fatalf("StartCamera() error = %v", err)
	}
	frame, ok := coordinator.StreamFrame()
	if !ok {
		t.Fatal("StreamFrame() = false during camera session")
	}
	painted := 0
	for _, v := range frame.Pix {
		if v != 0 {
			painted++
		}
	}
	if painted == 0 {
		t.Errorf("overlay painted nothing")
	}

	// Recognition gets the annotated frame, red box for the unknown face
	if _, err := coordinator.StartRecognition(); err != nil {
		t.Fatalf("StartRecognition() error = %v", err)
	}
	frame, ok = coordinator.StreamFrame()
	if !ok {
		t.Fatal("StreamFrame() = false during recognition")
	}
	i := 3 * (35*frame.Width + 5)
	if frame.Pix[i] != 255 || frame.Pix[i+1] != 0 || frame.Pix[i+2] != 0 {
		t.Errorf("detection box pixel = (%d,%d,%d), want red", frame.Pix[i], frame.Pix[i+1], frame.Pix[i+2])
	}
}

func TestStreamFrameWithoutCapture(t *testing.T) {
	coordinator := NewCoordinator(Config{
		Source:   &stubSource{},
		Detector: &stubDetector{},
	})
	if err := coordinator.StartCamera(); err != nil {
		t.Fatalf("StartCamera() error = %v", err)
	}
	if _, ok := coordinator.StreamFrame(); ok {
		t.Errorf("StreamFrame() produced a frame with nothing captured")
	}
}
