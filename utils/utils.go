package utils

import (
	"bytes"
	"encoding/binary"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/nfnt/resize"
)

// Float32ArrayToByteArray packs a face encoding for BLOB storage
func Float32ArrayToByteArray(fa []float32) []byte {
	buf := bytes.Buffer{}
	_ = binary.Write(&buf, binary.LittleEndian, fa)
	return buf.Bytes()
}

func ByteArrayToFloat32Array(b []byte) (result []float32) {
	for i := 0; i+4 <= len(b); i += 4 {
		ui32 := uint32(b[i+0]) +
			uint32(b[i+1])<<8 +
			uint32(b[i+2])<<16 +
			uint32(b[i+3])<<24
		result = append(result, math.Float32frombits(ui32))
	}
	return
}

// DateString formats a time as the calendar date used for attendance keys
func DateString(t time.Time) string {
	return t.Format("2006-01-02")
}

func Today() string {
	return DateString(time.Now())
}

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// AllowedImageExt returns the lower-cased extension of fileName if it is an
// accepted photo format, or "" otherwise
func AllowedImageExt(fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if !allowedImageExts[ext] {
		return ""
	}
	return ext
}

// CreateThumb re-encodes the image from reader as a JPEG thumbnail that fits
// within size x size and writes it to writer
func CreateThumb(size uint, reader io.Reader, writer io.Writer) (int64, error) {
	img, _, err := image.Decode(reader)
	if err != nil {
		return 0, err
	}
	var newBuf bytes.Buffer
	newImage := resize.Thumbnail(size, size, img, resize.Lanczos3)
	if err = jpeg.Encode(&newBuf, newImage, &jpeg.Options{Quality: 90}); err != nil {
		return 0, err
	}
	return io.Copy(writer, &newBuf)
}
