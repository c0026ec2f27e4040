package application

import (
	"errors"
)

// Application error types
var (
	ErrNoFilesProvided = errors.New("no source files provided")
	ErrNotStarted      = errors.New("application not started")
	ErrPresetRequired  = errors.New("exam category and document type are required")
)
