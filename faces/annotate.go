package faces

import (
	"fmt"

	"attendance/camera"
)

// Annotate draws detection boxes and name labels onto a copy of the frame.
// Matched faces get a green box with "Name (85.3%)", unmatched a red box
// with "Unknown". The input frame is never modified.
func Annotate(frame camera.Frame, detections []Detection) camera.Frame {
	out := frame.Clone()
	for _, det := range detections {
		color := camera.Red
		label := "Unknown"
		if det.Matched() {
			color = camera.Green
			label = fmt.Sprintf("%s (%.1f%%)", det.Name, det.Confidence*100)
		}
		x, y, w, h := det.Region.X, det.Region.Y, det.Region.W, det.Region.H
		out.DrawRect(x, y, w, h, color, 2)
		out.FillRect(x, y-30, w, 30, color)
		out.DrawText(label, x+5, y-10, camera.White)
	}
	return out
}
