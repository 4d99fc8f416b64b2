// Package faces implements the recognition side of the attendance
// pipeline: locating face regions, encoding them to comparable vectors,
// matching against enrolled students and publishing detections.
package faces

import (
	"errors"
	"time"
)

// Region is an axis-aligned box in frame coordinates. Regions carry no
// identity across detection cycles.
type Region struct {
	X int
	Y int
	W int
	H int
}

func (r Region) Area() int {
	return r.W * r.H
}

// Encoding is the flattened gray face patch used for correlation matching.
// Two encodings are only comparable when produced at the same patch size.
type Encoding []float32

// EnrolledFace is one student's matching reference, loaded as a snapshot
// when a recognition session starts
type EnrolledFace struct {
	StudentID uint64
	Name      string
	Encoding  Encoding
}

// Detection is one located face in the latest published cycle.
// StudentID is nil when no enrolled face matched above the threshold.
type Detection struct {
	StudentID  *uint64
	Name       string
	Confidence float64
	Region     Region
	Timestamp  time.Time
}

func (d Detection) Matched() bool {
	return d.StudentID != nil
}

var (
	// ErrNoFace means an enrollment photo contained no locatable face
	ErrNoFace = errors.New("no face found in image")
	// ErrNotAvailable means face detection support is not compiled in or disabled
	ErrNotAvailable = errors.New("face detection not available")
	// ErrAlreadyRunning is returned by Detector.Start during an active session
	ErrAlreadyRunning = errors.New("detection already running")
	// ErrSourceNotRunning is returned by Detector.Start when the frame source is stopped
	ErrSourceNotRunning = errors.New("frame source is not running")
)
