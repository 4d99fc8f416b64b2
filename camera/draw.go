package camera

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// RGB is a draw color for frame annotations
type RGB struct {
	R, G, B uint8
}

var (
	Green = RGB{0, 255, 0}
	Red   = RGB{255, 0, 0}
	White = RGB{255, 255, 255}
)

// DrawRect outlines the given rectangle in place with the given border
// thickness. Coordinates outside the frame are clipped.
func (f *Frame) DrawRect(x, y, w, h int, c RGB, thickness int) {
	for t := 0; t < thickness; t++ {
		f.drawHLine(x, x+w-1, y+t, c)
		f.drawHLine(x, x+w-1, y+h-1-t, c)
		f.drawVLine(y, y+h-1, x+t, c)
		f.drawVLine(y, y+h-1, x+w-1-t, c)
	}
}

// FillRect fills the given rectangle in place, clipped to the frame
func (f *Frame) FillRect(x, y, w, h int, c RGB) {
	for yy := y; yy < y+h; yy++ {
		f.drawHLine(x, x+w-1, yy, c)
	}
}

func (f *Frame) drawHLine(x0, x1, y int, c RGB) {
	if y < 0 || y >= f.Height {
		return
	}
	if x0 < 0 {
		x0 = 0
	}
	if x1 >= f.Width {
		x1 = f.Width - 1
	}
	for x := x0; x <= x1; x++ {
		f.set(x, y, c.R, c.G, c.B)
	}
}

func (f *Frame) drawVLine(y0, y1, x int, c RGB) {
	if x < 0 || x >= f.Width {
		return
	}
	if y0 < 0 {
		y0 = 0
	}
	if y1 >= f.Height {
		y1 = f.Height - 1
	}
	for y := y0; y <= y1; y++ {
		f.set(x, y, c.R, c.G, c.B)
	}
}

// DrawText paints text in place with its baseline at (x, y)
func (f *Frame) DrawText(text string, x, y int, c RGB) {
	d := font.Drawer{
		Dst:  frameImage{f},
		Src:  image.NewUniform(color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
