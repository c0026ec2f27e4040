package conversion

import (
	"examphoto/internal/dimensions"
	"examphoto/internal/presets"
)

// Request describes one photo conversion. Blank dimension fields fall back to
// the stored defaults; TargetKB <= 0 means the preset maximum.
type Request struct {
	SourcePath   string           `json:"source_path"`
	OutputPath   string           `json:"output_path"`
	Category     string           `json:"category"`
	DocumentType string           `json:"document_type"`
	Dimensions   dimensions.Input `json:"dimensions"`
	TargetKB     float64          `json:"target_kb"`
}

// Response describes a written output file.
type Response struct {
	ID           string         `json:"id"`
	SourcePath   string         `json:"source_path"`
	OutputPath   string         `json:"output_path"`
	Width        int            `json:"width"`
	Height       int            `json:"height"`
	Quality      int            `json:"quality"`
	SizeBytes    int            `json:"size_bytes"`
	Attempts     int            `json:"attempts"`
	TargetBytes  int            `json:"target_bytes"`
	BelowMinimum bool           `json:"below_minimum"`
	Preset       presets.Preset `json:"preset"`
}
