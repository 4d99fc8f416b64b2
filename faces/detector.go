package faces

import (
	"log"
	"strconv"
	"sync"
	"time"

	"attendance/camera"
	"attendance/metrics"
)

// FrameSource provides the latest captured frame
type FrameSource interface {
	LatestFrame() (camera.Frame, bool)
	Running() bool
}

type DetectorConfig struct {
	Source        FrameSource
	Locator       Locator
	Encoder       *Encoder
	MinConfidence float64       // display threshold for the published list
	Interval      time.Duration // cycle cadence, slower than capture
	StopTimeout   time.Duration
	OnPublish     func([]Detection) // optional, receives a copy after each cycle
}

// Detector runs the periodic locate-encode-match cycle against the frame
// source and publishes the resulting detection list wholesale. One session
// spans Start to Stop; the enrolled snapshot is fixed for its duration.
type Detector struct {
	cfg DetectorConfig

	mu         sync.Mutex
	running    bool
	enrolled   []EnrolledFace
	detections []Detection
	stop       chan struct{}
	done       chan struct{}
}

func NewDetector(cfg DetectorConfig) *Detector {
	if cfg.Interval <= 0 {
		cfg.Interval = 200 * time.Millisecond
	}
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = 2 * time.Second
	}
	return &Detector{cfg: cfg}
}

// Start begins a detection session with the given enrollment snapshot.
// It fails when a session is already running or the frame source is not.
func (d *Detector) Start(enrolled []EnrolledFace) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return ErrAlreadyRunning
	}
	if d.cfg.Source == nil || !d.cfg.Source.Running() {
		return ErrSourceNotRunning
	}
	d.enrolled = append([]EnrolledFace(nil), enrolled...)
	d.detections = nil
	d.running = true
	d.stop = make(chan struct{})
	d.done = make(chan struct{})
	go d.cycleLoop(d.stop, d.done)
	return nil
}

func (d *Detector) cycleLoop(stop chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(d.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
		d.runCycle(stop)
	}
}

func (d *Detector) runCycle(stop chan struct{}) {
	frame, ok := d.cfg.Source.LatestFrame()
	if !ok {
		// Nothing captured yet, skip the cycle
		return
	}
	started := time.Now()
	gray := Grayscale(frame)
	regions := d.cfg.Locator.Locate(gray)

	d.mu.Lock()
	enrolled := d.enrolled
	d.mu.Unlock()

	detections := make([]Detection, 0, len(regions))
	for _, region := range regions {
		encoding := d.cfg.Encoder.EncodePatch(gray, region)
		detection := Match(encoding, enrolled, d.cfg.MinConfidence)
		detection.Region = region
		detections = append(detections, detection)
		metrics.FacesDetected.WithLabelValues(strconv.FormatBool(detection.Matched())).Inc()
	}

	// Replace the published list wholesale. The stop channel identifies
	// this session so a slow cycle cannot publish after Stop cleared state.
	published := false
	d.mu.Lock()
	if d.stop == stop && d.running {
		d.detections = detections
		published = true
	}
	d.mu.Unlock()

	metrics.DetectCycles.Inc()
	metrics.DetectCycleSeconds.Observe(time.Since(started).Seconds())
	if published && d.cfg.OnPublish != nil {
		d.cfg.OnPublish(append([]Detection(nil), detections...))
	}
}

// Stop ends the session, waits up to StopTimeout for the cycle loop and
// clears all detection state so nothing stale leaks into the next session.
// Safe to call when not running.
func (d *Detector) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	close(d.stop)
	done := d.done
	d.mu.Unlock()

	select {
	case <-done:
	case <-time.After(d.cfg.StopTimeout):
		log.Println("Detection loop did not stop in time")
	}
	d.mu.Lock()
	d.detections = nil
	d.enrolled = nil
	d.mu.Unlock()
}

// Detections returns a copy of the latest published list, empty when idle
func (d *Detector) Detections() []Detection {
	d.mu.Lock()
	defer d.mu.Unlock()
	result := make([]Detection, len(d.detections))
	copy(result, d.detections)
	return result
}

func (d *Detector) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}
