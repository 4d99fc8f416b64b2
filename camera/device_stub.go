//go:build nocamera

package camera

import "errors"

// OpenDevice always fails in builds without OpenCV support
func OpenDevice(index, width, height, fps int) (Device, error) {
	return nil, errors.New("camera support not compiled in")
}
