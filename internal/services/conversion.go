package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"strings"

	"examphoto/internal/common"
	"examphoto/internal/compression"
	"examphoto/internal/dimensions"
	"examphoto/internal/domain/conversion"
	"examphoto/internal/models"
	"examphoto/internal/presets"
)

var errOutputIsSource = errors.New("output path is the source file")

// DefaultsProvider supplies the fallback dimensions for blank request fields.
type DefaultsProvider interface {
	Get() dimensions.Spec
}

// ConversionRecorder persists finished conversions.
type ConversionRecorder interface {
	Record(rec *models.ConversionRecord) error
}

// ConversionService runs a single conversion end to end: preset lookup,
// dimension resolution, resize, size search and output.
type ConversionService struct {
	images     *ImageService
	defaults   DefaultsProvider
	compressor *compression.Compressor
	recorder   ConversionRecorder
	logger     *slog.Logger
}

// NewConversionService creates a new conversion service. recorder may be nil.
func NewConversionService(images *ImageService, defaults DefaultsProvider, compressor *compression.Compressor, recorder ConversionRecorder, logger *slog.Logger) *ConversionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConversionService{
		images:     images,
		defaults:   defaults,
		compressor: compressor,
		recorder:   recorder,
		logger:     logger,
	}
}

// Convert validates request, writes the output JPEG and returns its details.
// A result below the preset minimum is reported through BelowMinimum and is
// not an error.
func (s *ConversionService) Convert(ctx context.Context, request conversion.Request) (*conversion.Response, error) {
	preset, err := presets.Lookup(request.Category, request.DocumentType)
	if err != nil {
		return nil, common.NewConversionError("lookup", request.SourcePath, err)
	}

	size, err := dimensions.Resolve(request.Dimensions, preset.DPI, s.defaults.Get())
	if err != nil {
		return nil, common.NewConversionError("resolve", request.SourcePath, err)
	}

	targetBytes, err := TargetBytes(request.TargetKB, preset)
	if err != nil {
		return nil, common.NewConversionError("validate", request.SourcePath, err)
	}

	target := compression.Target{
		Bytes:    targetBytes,
		MinBytes: preset.MinBytes(),
		MaxBytes: preset.MaxBytes(),
		DPI:      preset.DPI,
	}
	if err := target.Validate(); err != nil {
		return nil, common.NewConversionError("validate", request.SourcePath, err)
	}

	outputPath := request.OutputPath
	if outputPath == "" {
		outputPath = DefaultOutputPath(request.SourcePath, preset)
	}
	if samePath(outputPath, request.SourcePath) {
		return nil, common.NewConversionError("validate", request.SourcePath, errOutputIsSource)
	}

	src, err := s.images.Load(request.SourcePath)
	if err != nil {
		return nil, common.NewConversionError("load", request.SourcePath, err)
	}

	img, err := s.images.Prepare(src.Image, size, preset.Grayscale())
	if err != nil {
		return nil, common.NewConversionError("resize", request.SourcePath, err)
	}

	target.InputSizeBytes = src.SizeBytes
	result, err := s.compressor.Compress(ctx, img, target)
	if err != nil {
		return nil, common.NewConversionError("compress", request.SourcePath, err)
	}

	if err := common.WriteFileAtomic(outputPath, result.Data, common.DefaultFileMode); err != nil {
		return nil, common.NewConversionError("write", outputPath, err)
	}

	response := &conversion.Response{
		ID:           common.GenerateUUID(),
		SourcePath:   request.SourcePath,
		OutputPath:   outputPath,
		Width:        size.Width,
		Height:       size.Height,
		Quality:      result.Quality,
		SizeBytes:    result.Size,
		Attempts:     len(result.Attempts),
		TargetBytes:  target.Bytes,
		BelowMinimum: result.Size < preset.MinBytes(),
		Preset:       preset,
	}

	if response.BelowMinimum {
		s.logger.Warn("Output is below the preset minimum",
			"output", outputPath,
			"size_bytes", result.Size,
			"min_bytes", preset.MinBytes())
	}

	s.logger.Info("Conversion completed",
		"source", request.SourcePath,
		"output", outputPath,
		"dimensions", size.String(),
		"quality", result.Quality,
		"size_bytes", result.Size,
		"target_bytes", target.Bytes,
		"attempts", len(result.Attempts))

	s.record(response)
	return response, nil
}

func (s *ConversionService) record(response *conversion.Response) {
	if s.recorder == nil {
		return
	}
	err := s.recorder.Record(&models.ConversionRecord{
		ID:           response.ID,
		Source:       response.SourcePath,
		Output:       response.OutputPath,
		Category:     response.Preset.Category,
		DocumentType: response.Preset.DocumentType,
		Width:        response.Width,
		Height:       response.Height,
		TargetBytes:  response.TargetBytes,
		SizeBytes:    response.SizeBytes,
		Quality:      response.Quality,
		Attempts:     response.Attempts,
		BelowMinimum: response.BelowMinimum,
	})
	if err != nil {
		s.logger.Warn("Failed to record conversion", "id", response.ID, "error", err)
	}
}

// TargetBytes converts a requested size in KB to bytes, truncating any
// fraction. A non-positive request selects the preset maximum; NaN, infinite
// and out-of-range sizes are ErrInvalidTarget.
func TargetBytes(targetKB float64, preset presets.Preset) (int, error) {
	if math.IsNaN(targetKB) || math.IsInf(targetKB, 0) {
		return 0, fmt.Errorf("%w: size %v KB is not a finite number", common.ErrInvalidTarget, targetKB)
	}
	if targetKB <= 0 {
		return preset.MaxBytes(), nil
	}
	if targetKB*common.BytesPerKB > math.MaxInt32 {
		return 0, fmt.Errorf("%w: size %v KB is too large", common.ErrInvalidTarget, targetKB)
	}
	return int(targetKB * common.BytesPerKB), nil
}

// DefaultOutputPath places the output next to source, named after the preset.
func DefaultOutputPath(source string, preset presets.Preset) string {
	dir := filepath.Dir(source)
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	name := base + "_" + common.Slug(preset.Category) + "_" + common.Slug(preset.DocumentType) + common.OutputExtension
	return filepath.Join(dir, name)
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
