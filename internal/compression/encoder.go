package compression

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
)

// Quality bounds accepted by the encoder boundary.
const (
	MinQuality = 1
	MaxQuality = 100
)

// Encoder turns an image into JPEG bytes at a quality with a density tag.
type Encoder interface {
	Encode(img image.Image, quality, dpi int) ([]byte, error)
}

// JPEGEncoder encodes with the standard JPEG codec. *image.Gray inputs produce
// single-channel files. The density is written as a JFIF header and as EXIF
// resolution tags.
type JPEGEncoder struct {
	// SkipExif leaves out the EXIF block and writes only the JFIF density.
	SkipExif bool
}

// NewJPEGEncoder creates a new JPEG encoder
func NewJPEGEncoder() *JPEGEncoder {
	return &JPEGEncoder{}
}

// Encode encodes img at quality and tags it with dpi.
func (e *JPEGEncoder) Encode(img image.Image, quality, dpi int) ([]byte, error) {
	if img == nil {
		return nil, fmt.Errorf("encode: nil image")
	}
	if quality < MinQuality || quality > MaxQuality {
		return nil, fmt.Errorf("encode: quality %d outside [%d,%d]", quality, MinQuality, MaxQuality)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}

	if dpi <= 0 {
		return buf.Bytes(), nil
	}

	segments, err := densitySegments(dpi, !e.SkipExif)
	if err != nil {
		return nil, err
	}
	return insertAfterSOI(buf.Bytes(), segments)
}
