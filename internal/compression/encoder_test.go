package compression

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noisyRGBA(w, h int, seed int64) *image.RGBA {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(x + rng.Intn(64)),
				G: uint8(y + rng.Intn(64)),
				B: uint8(rng.Intn(256)),
				A: 0xFF,
			})
		}
	}
	return img
}

func TestJPEGEncoder_WritesDensity(t *testing.T) {
	enc := NewJPEGEncoder()

	data, err := enc.Encode(noisyRGBA(64, 48, 1), 85, 200)
	require.NoError(t, err)

	assert.Equal(t, 200, ReadJFIFDensity(data))
	assert.True(t, bytes.Contains(data, exifPrefix), "expected an EXIF block")

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Width)
	assert.Equal(t, 48, cfg.Height)
}

func TestJPEGEncoder_SkipExif(t *testing.T) {
	enc := &JPEGEncoder{SkipExif: true}

	data, err := enc.Encode(noisyRGBA(16, 16, 2), 90, 96)
	require.NoError(t, err)

	assert.Equal(t, 96, ReadJFIFDensity(data))
	assert.False(t, bytes.Contains(data, exifPrefix))
}

func TestJPEGEncoder_NoDensity(t *testing.T) {
	data, err := NewJPEGEncoder().Encode(noisyRGBA(16, 16, 3), 90, 0)
	require.NoError(t, err)

	assert.Equal(t, 0, ReadJFIFDensity(data))
}

func TestJPEGEncoder_GrayStaysSingleChannel(t *testing.T) {
	src := noisyRGBA(40, 20, 4)
	gray := image.NewGray(src.Bounds())
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			gray.Set(x, y, src.At(x, y))
		}
	}

	data, err := NewJPEGEncoder().Encode(gray, 80, 200)
	require.NoError(t, err)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, color.GrayModel, cfg.ColorModel)
}

func TestJPEGEncoder_RejectsBadInput(t *testing.T) {
	enc := NewJPEGEncoder()

	_, err := enc.Encode(nil, 80, 96)
	assert.Error(t, err)

	_, err = enc.Encode(noisyRGBA(4, 4, 5), 0, 96)
	assert.Error(t, err)

	_, err = enc.Encode(noisyRGBA(4, 4, 5), 101, 96)
	assert.Error(t, err)
}

func TestReadJFIFDensity_Garbage(t *testing.T) {
	assert.Equal(t, 0, ReadJFIFDensity(nil))
	assert.Equal(t, 0, ReadJFIFDensity([]byte("not a jpeg at all, really")))
}

func TestInsertAfterSOI(t *testing.T) {
	out, err := insertAfterSOI([]byte{0xFF, 0xD8, 0xFF, 0xD9}, []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xD8, 1, 2, 3, 0xFF, 0xD9}, out)

	_, err = insertAfterSOI([]byte{0x00}, []byte{1})
	assert.Error(t, err)
}

func TestCompress_PhotoScenario(t *testing.T) {
	// 276x354 photo, 20-50 KB window, 50 KB target.
	img := noisyRGBA(276, 354, 6)
	c := newTestCompressor(NewJPEGEncoder(), DefaultOptions())

	target := photoTarget(50 * 1024)
	result, err := c.Compress(context.Background(), img, target)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, result.Quality, MinQuality)
	assert.LessOrEqual(t, result.Quality, MaxQuality)
	assert.LessOrEqual(t, len(result.Attempts), 10)
	assert.Equal(t, len(result.Data), result.Size)
	assert.Equal(t, 200, ReadJFIFDensity(result.Data))

	decoded, err := jpeg.Decode(bytes.NewReader(result.Data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 276, 354), decoded.Bounds())

	for _, a := range result.Attempts {
		if !a.Failed() {
			assert.GreaterOrEqual(t, a.Diff, result.Diff(target.Bytes))
		}
	}
}
