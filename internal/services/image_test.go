package services

import (
	"errors"
	"image"
	"image/color"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"examphoto/internal/common"
	"examphoto/internal/compression"
	"examphoto/internal/dimensions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageService_Load(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "photo.png", gradient(120, 80))
	service := NewImageService(testLogger())

	src, err := service.Load(path)
	require.NoError(t, err)

	stat, err := os.Stat(path)
	require.NoError(t, err)

	assert.Equal(t, "png", src.Format)
	assert.Equal(t, stat.Size(), src.SizeBytes)
	assert.Equal(t, 120, src.Image.Bounds().Dx())
	assert.Equal(t, 80, src.Image.Bounds().Dy())
}

func TestImageService_LoadErrors(t *testing.T) {
	dir := t.TempDir()
	service := NewImageService(testLogger())

	_, err := service.Load(filepath.Join(dir, "missing.jpg"))
	assert.True(t, errors.Is(err, fs.ErrNotExist), "expected not-exist, got %v", err)

	garbage := filepath.Join(dir, "notes.jpg")
	require.NoError(t, os.WriteFile(garbage, []byte("definitely not an image"), 0644))

	_, err = service.Load(garbage)
	assert.ErrorIs(t, err, common.ErrUnsupportedImage)
}

func TestImageService_Prepare(t *testing.T) {
	service := NewImageService(testLogger())
	src := gradient(300, 200)

	tests := []struct {
		name      string
		size      dimensions.Spec
		grayscale bool
	}{
		{name: "downscale colour", size: dimensions.Spec{Width: 276, Height: 354}},
		{name: "signature gray", size: dimensions.Spec{Width: 472, Height: 157}, grayscale: true},
		{name: "upscale", size: dimensions.Spec{Width: 1000, Height: 1000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := service.Prepare(src, tt.size, tt.grayscale)
			require.NoError(t, err)

			assert.Equal(t, tt.size.Width, out.Bounds().Dx())
			assert.Equal(t, tt.size.Height, out.Bounds().Dy())

			if tt.grayscale {
				assert.IsType(t, &image.Gray{}, out)
			} else {
				assert.IsType(t, &image.RGBA{}, out)
			}
		})
	}
}

func TestImageService_PrepareFlattensTransparency(t *testing.T) {
	service := NewImageService(testLogger())
	transparent := image.NewNRGBA(image.Rect(0, 0, 10, 10))

	out, err := service.Prepare(transparent, dimensions.Spec{Width: 10, Height: 10}, false)
	require.NoError(t, err)

	r, g, b, a := out.At(5, 5).RGBA()
	assert.Equal(t, uint32(0xFFFF), r)
	assert.Equal(t, uint32(0xFFFF), g)
	assert.Equal(t, uint32(0xFFFF), b)
	assert.Equal(t, uint32(0xFFFF), a)
}

func TestImageService_PrepareRejectsBadSize(t *testing.T) {
	service := NewImageService(testLogger())

	_, err := service.Prepare(gradient(10, 10), dimensions.Spec{Width: 0, Height: 10}, false)
	assert.ErrorIs(t, err, common.ErrInvalidDimension)
}

func TestImageService_Inspect(t *testing.T) {
	dir := t.TempDir()
	service := NewImageService(testLogger())

	withExif := writeJPEG(t, dir, "exif.jpg", gradient(64, 32), compression.NewJPEGEncoder(), 200)
	jfifOnly := writeJPEG(t, dir, "jfif.jpg", gradient(64, 32), &compression.JPEGEncoder{SkipExif: true}, 96)
	plain := writePNG(t, dir, "plain.png", gradient(20, 30))

	tests := []struct {
		name   string
		path   string
		format string
		width  int
		height int
		dpi    int
	}{
		{name: "exif resolution", path: withExif, format: "jpeg", width: 64, height: 32, dpi: 200},
		{name: "jfif density", path: jfifOnly, format: "jpeg", width: 64, height: 32, dpi: 96},
		{name: "no density", path: plain, format: "png", width: 20, height: 30, dpi: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := service.Inspect(tt.path)
			require.NoError(t, err)

			stat, err := os.Stat(tt.path)
			require.NoError(t, err)

			assert.Equal(t, tt.format, info.Format)
			assert.Equal(t, tt.width, info.Width)
			assert.Equal(t, tt.height, info.Height)
			assert.Equal(t, tt.dpi, info.DPI)
			assert.Equal(t, stat.Size(), info.SizeBytes)
		})
	}
}

func TestImageService_InspectGrayOutput(t *testing.T) {
	dir := t.TempDir()
	service := NewImageService(testLogger())

	gray := image.NewGray(image.Rect(0, 0, 16, 16))
	for i := range gray.Pix {
		gray.Pix[i] = uint8(i)
	}
	path := writeJPEG(t, dir, "sig.jpg", gray, compression.NewJPEGEncoder(), 200)

	src, err := service.Load(path)
	require.NoError(t, err)
	assert.Equal(t, color.GrayModel, src.Image.ColorModel())
}
