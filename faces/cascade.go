//go:build !nocamera

package faces

import (
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Compiled reports whether cascade face detection is part of this build
const Compiled = true

// CascadeLocator wraps a Haar cascade classifier. The scale factor and
// minimum neighbor count are fixed per instance but configurable at
// construction.
type CascadeLocator struct {
	mu           sync.Mutex
	classifier   gocv.CascadeClassifier
	scale        float64
	minNeighbors int
}

func NewCascadeLocator(cascadeFile string, scale float64, minNeighbors int) (Locator, error) {
	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(cascadeFile) {
		_ = classifier.Close()
		return nil, fmt.Errorf("cannot load cascade file %s", cascadeFile)
	}
	return &CascadeLocator{
		classifier:   classifier,
		scale:        scale,
		minNeighbors: minNeighbors,
	}, nil
}

func (l *CascadeLocator) Locate(gray *image.Gray) []Region {
	mat, err := grayToMat(gray)
	if err != nil {
		return []Region{}
	}
	defer mat.Close()

	// The classifier keeps internal scan state and is not safe for
	// concurrent use
	l.mu.Lock()
	rects := l.classifier.DetectMultiScaleWithParams(
		mat, l.scale, l.minNeighbors, 0, image.Point{}, image.Point{})
	l.mu.Unlock()

	regions := make([]Region, 0, len(rects))
	for _, r := range rects {
		regions = append(regions, Region{X: r.Min.X, Y: r.Min.Y, W: r.Dx(), H: r.Dy()})
	}
	return regions
}

func (l *CascadeLocator) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	_ = l.classifier.Close()
}

func grayToMat(gray *image.Gray) (gocv.Mat, error) {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	data := gray.Pix
	if gray.Stride != width {
		data = make([]uint8, width*height)
		for y := 0; y < height; y++ {
			copy(data[y*width:(y+1)*width], gray.Pix[y*gray.Stride:y*gray.Stride+width])
		}
	}
	return gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC1, data)
}
