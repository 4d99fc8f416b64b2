// Package camera provides the capture side of the attendance pipeline:
// a dense RGB frame type, a device abstraction and the background
// capture loop that keeps the latest frame available under a lock.
package camera

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
)

// Frame is a dense 8-bit RGB pixel grid. Pix holds 3 bytes per pixel in
// row-major order. Frames are handed between goroutines by value-copy
// (Clone), never shared.
type Frame struct {
	Pix    []uint8
	Width  int
	Height int
}

func NewFrame(width, height int) Frame {
	return Frame{
		Pix:    make([]uint8, 3*width*height),
		Width:  width,
		Height: height,
	}
}

func (f Frame) Empty() bool {
	return len(f.Pix) == 0 || f.Width <= 0 || f.Height <= 0
}

// Clone returns a deep copy that shares no memory with the receiver
func (f Frame) Clone() Frame {
	out := Frame{
		Pix:    make([]uint8, len(f.Pix)),
		Width:  f.Width,
		Height: f.Height,
	}
	copy(out.Pix, f.Pix)
	return out
}

func (f Frame) at(x, y int) (r, g, b uint8) {
	i := 3 * (y*f.Width + x)
	return f.Pix[i], f.Pix[i+1], f.Pix[i+2]
}

func (f Frame) set(x, y int, r, g, b uint8) {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return
	}
	i := 3 * (y*f.Width + x)
	f.Pix[i], f.Pix[i+1], f.Pix[i+2] = r, g, b
}

// ToImage converts the frame to a standard RGBA image (alpha fully opaque)
func (f Frame) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		src := 3 * y * f.Width
		dst := img.PixOffset(0, y)
		for x := 0; x < f.Width; x++ {
			img.Pix[dst] = f.Pix[src]
			img.Pix[dst+1] = f.Pix[src+1]
			img.Pix[dst+2] = f.Pix[src+2]
			img.Pix[dst+3] = 0xff
			src += 3
			dst += 4
		}
	}
	return img
}

// FrameFromImage copies any image into a Frame
func FrameFromImage(img image.Image) Frame {
	bounds := img.Bounds()
	f := NewFrame(bounds.Dx(), bounds.Dy())
	rgba, ok := img.(*image.RGBA)
	if !ok {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}
	for y := 0; y < f.Height; y++ {
		src := rgba.PixOffset(0, y)
		dst := 3 * y * f.Width
		for x := 0; x < f.Width; x++ {
			f.Pix[dst] = rgba.Pix[src]
			f.Pix[dst+1] = rgba.Pix[src+1]
			f.Pix[dst+2] = rgba.Pix[src+2]
			src += 4
			dst += 3
		}
	}
	return f
}

// EncodeJPEG returns the frame as a JPEG byte stream
func (f Frame) EncodeJPEG(quality int) ([]byte, error) {
	var buf bytes.Buffer
	err := jpeg.Encode(&buf, f.ToImage(), &jpeg.Options{Quality: quality})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// frameImage adapts a Frame to draw.Image so font rendering can paint
// directly into the pixel grid
type frameImage struct {
	f *Frame
}

func (im frameImage) ColorModel() color.Model {
	return color.RGBAModel
}

func (im frameImage) Bounds() image.Rectangle {
	return image.Rect(0, 0, im.f.Width, im.f.Height)
}

func (im frameImage) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= im.f.Width || y >= im.f.Height {
		return color.RGBA{}
	}
	r, g, b := im.f.at(x, y)
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

func (im frameImage) Set(x, y int, c color.Color) {
	r, g, b, _ := c.RGBA()
	im.f.set(x, y, uint8(r>>8), uint8(g>>8), uint8(b>>8))
}
