//go:build nocamera

package faces

// Compiled reports whether cascade face detection is part of this build
const Compiled = false

// NewCascadeLocator always fails in builds without OpenCV support
func NewCascadeLocator(cascadeFile string, scale float64, minNeighbors int) (Locator, error) {
	return nil, ErrNotAvailable
}
