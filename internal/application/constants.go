package application

import "time"

const (
	// DefaultDPI converts centimetre defaults when no preset is named.
	DefaultDPI = 96

	// History listing
	DefaultHistoryLimit = 20

	// Watch mode
	WatchDebounce = 500 * time.Millisecond

	// File result statuses
	StatusCompleted = "completed"
	StatusError     = "error"
)
