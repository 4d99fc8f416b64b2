package faces

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"attendance/camera"

	"github.com/nfnt/resize"
)

// Grayscale converts a frame to 8-bit grayscale using BT.601 luma weights
func Grayscale(f camera.Frame) *image.Gray {
	gray := image.NewGray(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		src := 3 * y * f.Width
		dst := y * gray.Stride
		for x := 0; x < f.Width; x++ {
			r := uint32(f.Pix[src])
			g := uint32(f.Pix[src+1])
			b := uint32(f.Pix[src+2])
			gray.Pix[dst] = uint8((19595*r + 38470*g + 7471*b + 1<<15) >> 16)
			src += 3
			dst++
		}
	}
	return gray
}

// GrayscaleImage converts any decoded image to 8-bit grayscale
func GrayscaleImage(img image.Image) *image.Gray {
	if gray, ok := img.(*image.Gray); ok {
		return gray
	}
	bounds := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		dst := (y - bounds.Min.Y) * gray.Stride
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			// RGBA returns 16-bit channels
			gray.Pix[dst] = uint8((19595*(r>>8) + 38470*(g>>8) + 7471*(b>>8) + 1<<15) >> 16)
			dst++
		}
	}
	return gray
}

// Encoder turns face regions into fixed-length encodings: crop the gray
// patch, resize it to PatchSize x PatchSize and flatten row-major to
// float32. The same scheme must be used for enrollment and live matching.
type Encoder struct {
	patchSize int
	locator   Locator
}

// NewEncoder builds an Encoder. The locator may be nil when detection
// support is unavailable; only EncodeImageFile needs it.
func NewEncoder(patchSize int, locator Locator) *Encoder {
	if patchSize <= 0 {
		patchSize = 100
	}
	return &Encoder{patchSize: patchSize, locator: locator}
}

func (e *Encoder) PatchSize() int {
	return e.patchSize
}

// EncodePatch encodes one region of the grayscale frame. The region is
// clamped to the frame bounds first; a fully out-of-bounds region yields an
// all-zero encoding.
func (e *Encoder) EncodePatch(gray *image.Gray, r Region) Encoding {
	encoding := make(Encoding, e.patchSize*e.patchSize)
	bounds := gray.Bounds()
	x0, y0 := max(r.X, bounds.Min.X), max(r.Y, bounds.Min.Y)
	x1, y1 := min(r.X+r.W, bounds.Max.X), min(r.Y+r.H, bounds.Max.Y)
	if x1 <= x0 || y1 <= y0 {
		return encoding
	}
	patch := gray.SubImage(image.Rect(x0, y0, x1, y1))
	resized := resize.Resize(uint(e.patchSize), uint(e.patchSize), patch, resize.Bilinear)
	if g, ok := resized.(*image.Gray); ok {
		rb := g.Bounds()
		i := 0
		for y := rb.Min.Y; y < rb.Max.Y; y++ {
			row := g.Pix[(y-rb.Min.Y)*g.Stride:]
			for x := 0; x < rb.Dx(); x++ {
				encoding[i] = float32(row[x])
				i++
			}
		}
		return encoding
	}
	rb := resized.Bounds()
	i := 0
	for y := rb.Min.Y; y < rb.Max.Y; y++ {
		for x := rb.Min.X; x < rb.Max.X; x++ {
			r16, g16, b16, _ := resized.At(x, y).RGBA()
			encoding[i] = float32(uint8((19595*(r16>>8) + 38470*(g16>>8) + 7471*(b16>>8) + 1<<15) >> 16))
			i++
		}
	}
	return encoding
}

// EncodeImageFile extracts the enrollment encoding from a photo on disk.
// When the photo contains several faces the largest area wins, first
// encountered on ties. Zero faces is ErrNoFace and the caller must reject
// the enrollment.
func (e *Encoder) EncodeImageFile(path string) (Encoding, error) {
	if e.locator == nil {
		return nil, ErrNotAvailable
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, err
	}
	gray := GrayscaleImage(img)
	regions := e.locator.Locate(gray)
	if len(regions) == 0 {
		return nil, ErrNoFace
	}
	largest := regions[0]
	for _, r := range regions[1:] {
		if r.Area() > largest.Area() {
			largest = r
		}
	}
	return e.EncodePatch(gray, largest), nil
}
