package faces

import "image"

// Locator finds candidate face regions in a grayscale frame. Zero faces is
// an empty slice, never an error. Region order is whatever the scan
// produced; callers treat the result as a set.
type Locator interface {
	Locate(gray *image.Gray) []Region
	Close()
}
