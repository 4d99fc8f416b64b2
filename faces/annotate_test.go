package faces

import (
	"bytes"
	"testing"

	"attendance/camera"
)

func pixelAt(f camera.Frame, x, y int) (uint8, uint8, uint8) {
	i := 3 * (y*f.Width + x)
	return f.Pix[i], f.Pix[i+1], f.Pix[i+2]
}

func TestAnnotate(t *testing.T) {
	frame := gradientFrame(64, 64)
	before := frame.Clone()
	id := uint64(3)
	detections := []Detection{
		{StudentID: &id, Name: "Alice", Confidence: 0.853, Region: Region{X: 10, Y: 35, W: 20, H: 20}},
		{Name: "Unknown", Confidence: 0, Region: Region{X: 40, Y: 40, W: 30, H: 30}},
	}

	out := Annotate(frame, detections)
	if out.Width != frame.Width || out.Height != frame.Height {
		t.Fatalf("Annotate() size = %dx%d, want %dx%d", out.Width, out.Height, frame.Width, frame.Height)
	}
	if !bytes.Equal(frame.Pix, before.Pix) {
		t.Errorf("Annotate() modified its input frame")
	}

	if r, g, b := pixelAt(out, 10, 35); r != 0 || g != 255 || b != 0 {
		t.Errorf("matched box edge = (%d,%d,%d), want green", r, g, b)
	}
	if r, g, b := pixelAt(out, 40, 40); r != 255 || g != 0 || b != 0 {
		t.Errorf("unmatched box edge = (%d,%d,%d), want red", r, g, b)
	}
	if r, g, b := pixelAt(out, 12, 8); r != 0 || g != 255 || b != 0 {
		t.Errorf("label bar = (%d,%d,%d), want green fill", r, g, b)
	}
}

func TestAnnotateClipsAtFrameEdges(t *testing.T) {
	frame := gradientFrame(32, 32)
	detections := []Detection{
		// Label bar extends above the frame, box extends past the right edge
		{Name: "Unknown", Region: Region{X: 20, Y: 5, W: 30, H: 30}},
		{Name: "Unknown", Region: Region{X: -4, Y: -4, W: 10, H: 10}},
	}

	out := Annotate(frame, detections)
	if out.Width != 32 || out.Height != 32 {
		t.Errorf("Annotate() size = %dx%d, want 32x32", out.Width, out.Height)
	}
}

func TestAnnotateNoDetections(t *testing.T) {
	frame := gradientFrame(16, 16)
	out := Annotate(frame, nil)
	if !bytes.Equal(out.Pix, frame.Pix) {
		t.Errorf("Annotate() with no detections changed pixels")
	}
}
