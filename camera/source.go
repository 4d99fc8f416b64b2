package camera

import (
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"attendance/metrics"
)

// ReadErrorPolicy decides what the capture loop does when a device read fails
type ReadErrorPolicy int

const (
	// RetryOnError waits briefly and keeps the loop alive (the default)
	RetryOnError ReadErrorPolicy = iota
	// AbortOnError ends the loop on the first failed read
	AbortOnError
)

func PolicyFromString(s string) ReadErrorPolicy {
	if strings.EqualFold(s, "abort") {
		return AbortOnError
	}
	return RetryOnError
}

var ErrAlreadyRunning = errors.New("capture already running")

type SourceConfig struct {
	Open        func() (Device, error)
	Interval    time.Duration // capture cadence, ~30 fps by default
	RetryDelay  time.Duration // wait after a failed read under RetryOnError
	Policy      ReadErrorPolicy
	StopTimeout time.Duration // bounded wait for the loop to end on Stop
}

// Source owns one camera device and keeps the most recent frame available.
// The lock is held only while the frame slot is copied or swapped, never
// across device reads.
type Source struct {
	cfg SourceConfig

	mu       sync.Mutex
	device   Device
	frame    Frame
	hasFrame bool
	running  bool
	stop     chan struct{}
	done     chan struct{}
}

func NewSource(cfg SourceConfig) *Source {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second / 30
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 100 * time.Millisecond
	}
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = 2 * time.Second
	}
	return &Source{cfg: cfg}
}

// Start opens the device and spawns the capture loop. It fails when the
// device cannot be opened or a loop is already running.
func (s *Source) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrAlreadyRunning
	}
	device, err := s.cfg.Open()
	if err != nil {
		return err
	}
	s.device = device
	s.running = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.captureLoop(device, s.stop, s.done)
	return nil
}

func (s *Source) captureLoop(device Device, stop chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
		frame, ok := device.Read()
		if !ok {
			metrics.CaptureReadErrors.Inc()
			if s.cfg.Policy == AbortOnError {
				log.Println("Camera read failed, ending capture loop")
				return
			}
			select {
			case <-stop:
				return
			case <-time.After(s.cfg.RetryDelay):
			}
			continue
		}
		s.mu.Lock()
		// The stop channel identifies this loop's session; a read that
		// completes after Stop must not resurrect a cleared frame
		if s.stop == stop && s.running {
			s.frame = frame
			s.hasFrame = true
		}
		s.mu.Unlock()
		metrics.FramesCaptured.Inc()
	}
}

// Stop ends the capture loop, waiting up to StopTimeout for it to finish.
// The device is released even when the loop fails to stop in time, and the
// stored frame is cleared. Safe to call when not running.
func (s *Source) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stop)
	device := s.device
	s.device = nil
	done := s.done
	s.mu.Unlock()

	select {
	case <-done:
	case <-time.After(s.cfg.StopTimeout):
		log.Println("Capture loop did not stop in time, releasing camera anyway")
	}
	if device != nil {
		if err := device.Close(); err != nil {
			log.Printf("Error releasing camera: %v", err)
		}
	}
	s.mu.Lock()
	s.frame = Frame{}
	s.hasFrame = false
	s.mu.Unlock()
}

// LatestFrame returns a copy of the most recent frame, or false when
// nothing has been captured yet
func (s *Source) LatestFrame() (Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasFrame {
		return Frame{}, false
	}
	return s.frame.Clone(), true
}

func (s *Source) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
