package application

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"

	"examphoto/internal/common"
	"examphoto/internal/dimensions"
	conversionDomain "examphoto/internal/domain/conversion"
	"examphoto/internal/presets"
)

// ConvertOptions are the settings shared by every file in one run.
type ConvertOptions struct {
	Category     string           `json:"category"`
	DocumentType string           `json:"document_type"`
	Dimensions   dimensions.Input `json:"dimensions"`
	TargetKB     float64          `json:"target_kb"`
	// OutputDir collects outputs; empty writes next to each source.
	OutputDir string `json:"output_dir"`
}

// FileResult is the outcome for one source file.
type FileResult struct {
	SourcePath string                     `json:"source_path"`
	Status     string                     `json:"status"`
	Response   *conversionDomain.Response `json:"response,omitempty"`
	Error      string                     `json:"error,omitempty"`
}

type ConversionHandler struct {
	service conversionDomain.Service
	logger  *slog.Logger
}

func NewConversionHandler(service conversionDomain.Service, logger *slog.Logger) *ConversionHandler {
	return &ConversionHandler{service: service, logger: logger}
}

// Convert runs a single request.
func (h *ConversionHandler) Convert(ctx context.Context, request conversionDomain.Request) (*conversionDomain.Response, error) {
	return h.service.Convert(ctx, request)
}

// ConvertFiles converts files one after another with shared options. A
// directory stands for the image files inside it. A failed file is reported in
// its FileResult and does not stop the rest.
func (h *ConversionHandler) ConvertFiles(ctx context.Context, paths []string, opts ConvertOptions) ([]FileResult, error) {
	preset, err := presets.Lookup(opts.Category, opts.DocumentType)
	if err != nil {
		return nil, err
	}
	files, err := ExpandSources(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoFilesProvided
	}

	results := make([]FileResult, 0, len(files))
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, h.convertOne(ctx, file, preset, opts))
	}
	return results, nil
}

func (h *ConversionHandler) convertOne(ctx context.Context, file string, preset presets.Preset, opts ConvertOptions) FileResult {
	request := conversionDomain.Request{
		SourcePath:   file,
		Category:     opts.Category,
		DocumentType: opts.DocumentType,
		Dimensions:   opts.Dimensions,
		TargetKB:     opts.TargetKB,
	}
	if opts.OutputDir != "" {
		request.OutputPath = OutputPathIn(opts.OutputDir, file, preset)
	}

	response, err := h.service.Convert(ctx, request)
	if err != nil {
		h.logger.Error("Error processing file",
			"file", filepath.Base(file),
			"error", err)
		var convErr *common.ConversionError
		if !errors.As(err, &convErr) {
			err = common.NewConversionError("processing", file, err)
		}
		return FileResult{SourcePath: file, Status: StatusError, Error: err.Error()}
	}
	return FileResult{SourcePath: file, Status: StatusCompleted, Response: response}
}
