package common

import (
	"errors"
	"fmt"
)

// Conversion error taxonomy. Callers match with errors.Is.
var (
	ErrInvalidDimension = errors.New("invalid dimension")
	ErrInvalidTarget    = errors.New("invalid target size")
	ErrSizeUnreachable  = errors.New("no encoding attempt produced output")
	ErrUnknownPreset    = errors.New("unknown preset")
	ErrUnsupportedImage = errors.New("unsupported image")
)

// DimensionError describes a width or height that could not be resolved.
type DimensionError struct {
	Axis  string // "width" or "height"
	Field string // "px", "cm" or "default"
	Value string
	Err   error
}

func (e *DimensionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s (%s %q): %v", e.Axis, e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("invalid %s (%s %q)", e.Axis, e.Field, e.Value)
}

func (e *DimensionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidDimension}
	}
	return []error{ErrInvalidDimension, e.Err}
}

// TargetError reports a requested byte size outside the allowed range.
type TargetError struct {
	Bytes    int
	MinBytes int
	MaxBytes int
}

func (e *TargetError) Error() string {
	if e.Bytes <= 0 {
		return fmt.Sprintf("target size must be positive, got %d bytes", e.Bytes)
	}
	return fmt.Sprintf("target size %d bytes must be between %d and %d bytes", e.Bytes, e.MinBytes, e.MaxBytes)
}

func (e *TargetError) Unwrap() error {
	return ErrInvalidTarget
}

// ConversionError represents a failure in one step of a conversion
type ConversionError struct {
	Operation string
	FilePath  string
	Err       error
}

func (e *ConversionError) Error() string {
	if e.FilePath != "" {
		return fmt.Sprintf("conversion %s failed for file %s: %v", e.Operation, e.FilePath, e.Err)
	}
	return fmt.Sprintf("conversion %s failed: %v", e.Operation, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// NewConversionError creates a new conversion error
func NewConversionError(operation, filePath string, err error) *ConversionError {
	return &ConversionError{
		Operation: operation,
		FilePath:  filePath,
		Err:       err,
	}
}

// PreferencesError represents preferences-related errors
type PreferencesError struct {
	Operation string
	Err       error
}

func (e *PreferencesError) Error() string {
	return fmt.Sprintf("preferences %s failed: %v", e.Operation, e.Err)
}

func (e *PreferencesError) Unwrap() error {
	return e.Err
}

// NewPreferencesError creates a new preferences error
func NewPreferencesError(operation string, err error) *PreferencesError {
	return &PreferencesError{
		Operation: operation,
		Err:       err,
	}
}
