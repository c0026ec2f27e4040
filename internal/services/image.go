package services

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"math"
	"os"

	"examphoto/internal/common"
	"examphoto/internal/compression"
	"examphoto/internal/dimensions"

	"github.com/disintegration/imaging"
	"github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Source is a decoded input image.
type Source struct {
	Path      string
	Image     image.Image
	Format    string
	SizeBytes int64
}

// SourceInfo describes an input file without converting it.
type SourceInfo struct {
	Path      string `json:"path"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Format    string `json:"format"`
	SizeBytes int64  `json:"size_bytes"`
	DPI       int    `json:"dpi"`
}

// ImageService decodes, inspects and prepares source images
type ImageService struct {
	logger *slog.Logger
}

// NewImageService creates a new image service
func NewImageService(logger *slog.Logger) *ImageService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageService{logger: logger}
}

// Load reads and decodes path, applying any EXIF orientation.
func (s *ImageService) Load(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", common.ErrUnsupportedImage, path, err)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", common.ErrUnsupportedImage, path, err)
	}

	s.logger.Debug("Source image loaded",
		"path", path,
		"format", format,
		"width", img.Bounds().Dx(),
		"height", img.Bounds().Dy(),
		"size_bytes", len(data))

	return &Source{
		Path:      path,
		Image:     img,
		Format:    format,
		SizeBytes: int64(len(data)),
	}, nil
}

// Prepare resizes img to exactly size with Lanczos resampling and flattens
// transparency onto white. The result is *image.Gray when grayscale is set and
// *image.RGBA otherwise.
func (s *ImageService) Prepare(img image.Image, size dimensions.Spec, grayscale bool) (image.Image, error) {
	if err := size.Validate(); err != nil {
		return nil, err
	}

	resized := imaging.Resize(img, size.Width, size.Height, imaging.Lanczos)
	flat := imaging.Overlay(imaging.New(size.Width, size.Height, color.White), resized, image.Pt(0, 0), 1.0)

	bounds := flat.Bounds()
	if grayscale {
		gray := image.NewGray(bounds)
		xdraw.Draw(gray, bounds, flat, bounds.Min, xdraw.Src)
		return gray, nil
	}

	rgba := image.NewRGBA(bounds)
	xdraw.Draw(rgba, bounds, flat, bounds.Min, xdraw.Src)
	return rgba, nil
}

// Inspect reports the dimensions, format, file size and stored density of path.
// DPI is 0 when the file carries none.
func (s *ImageService) Inspect(path string) (*SourceInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", common.ErrUnsupportedImage, path, err)
	}

	info := &SourceInfo{
		Path:      path,
		Width:     cfg.Width,
		Height:    cfg.Height,
		Format:    format,
		SizeBytes: int64(len(data)),
	}

	dpi, err := exifDPI(data)
	if err != nil {
		s.logger.Debug("No EXIF resolution", "path", path, "reason", err)
	}
	if dpi == 0 && format == "jpeg" {
		dpi = compression.ReadJFIFDensity(data)
	}
	info.DPI = dpi

	return info, nil
}

// exifDPI reads XResolution and ResolutionUnit from the first IFD.
func exifDPI(data []byte) (int, error) {
	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil {
		return 0, err
	}

	im := exifcommon.NewIfdMapping()
	ti := exif.NewTagIndex()
	if err := exifcommon.LoadStandardIfds(im); err != nil {
		return 0, err
	}

	_, index, err := exif.Collect(im, ti, rawExif)
	if err != nil {
		return 0, err
	}

	tags, err := index.RootIfd.FindTagWithName("XResolution")
	if err != nil || len(tags) == 0 {
		return 0, fmt.Errorf("no XResolution tag")
	}
	val, err := tags[0].Value()
	if err != nil {
		return 0, err
	}
	rats, ok := val.([]exifcommon.Rational)
	if !ok || len(rats) == 0 || rats[0].Denominator == 0 {
		return 0, fmt.Errorf("unexpected XResolution value %v", val)
	}
	dpi := float64(rats[0].Numerator) / float64(rats[0].Denominator)

	if tags, err := index.RootIfd.FindTagWithName("ResolutionUnit"); err == nil && len(tags) > 0 {
		if val, err := tags[0].Value(); err == nil {
			if units, ok := val.([]uint16); ok && len(units) > 0 && units[0] == 3 {
				dpi *= 2.54
			}
		}
	}

	return int(math.Round(dpi)), nil
}
