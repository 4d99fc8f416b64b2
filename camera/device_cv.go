//go:build !nocamera

package camera

import (
	"fmt"

	"gocv.io/x/gocv"
)

type cvDevice struct {
	cap *gocv.VideoCapture
	mat gocv.Mat
}

// OpenDevice opens the local camera at the given index and requests the
// capture resolution and rate. The driver may ignore the requests.
func OpenDevice(index, width, height, fps int) (Device, error) {
	cap, err := gocv.OpenVideoCapture(index)
	if err != nil {
		return nil, fmt.Errorf("cannot open camera %d: %w", index, err)
	}
	if !cap.IsOpened() {
		_ = cap.Close()
		return nil, fmt.Errorf("cannot open camera %d", index)
	}
	cap.Set(gocv.VideoCaptureFrameWidth, float64(width))
	cap.Set(gocv.VideoCaptureFrameHeight, float64(height))
	cap.Set(gocv.VideoCaptureFPS, float64(fps))
	return &cvDevice{cap: cap, mat: gocv.NewMat()}, nil
}

func (d *cvDevice) Read() (Frame, bool) {
	if !d.cap.Read(&d.mat) || d.mat.Empty() {
		return Frame{}, false
	}
	if d.mat.Channels() != 3 {
		return Frame{}, false
	}
	data, err := d.mat.DataPtrUint8()
	if err != nil {
		return Frame{}, false
	}
	width, height := d.mat.Cols(), d.mat.Rows()
	if len(data) < 3*width*height {
		return Frame{}, false
	}
	// OpenCV delivers BGR, the Frame convention is RGB
	f := NewFrame(width, height)
	for i := 0; i < 3*width*height; i += 3 {
		f.Pix[i] = data[i+2]
		f.Pix[i+1] = data[i+1]
		f.Pix[i+2] = data[i]
	}
	return f, true
}

func (d *cvDevice) Close() error {
	_ = d.mat.Close()
	return d.cap.Close()
}
