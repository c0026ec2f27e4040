package statistics

import "time"

// AppStats summarises the conversion history
type AppStats struct {
	TotalConversions  int64   `json:"total_conversions"`
	BelowMinimumCount int64   `json:"below_minimum_count"`
	TotalBytesWritten int64   `json:"total_bytes_written"`
	AverageQuality    float64 `json:"average_quality"`
}

// HistoryEntry is one past conversion.
type HistoryEntry struct {
	ID           string    `json:"id"`
	Source       string    `json:"source"`
	Output       string    `json:"output"`
	Category     string    `json:"category"`
	DocumentType string    `json:"document_type"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	SizeBytes    int       `json:"size_bytes"`
	Quality      int       `json:"quality"`
	BelowMinimum bool      `json:"below_minimum"`
	CreatedAt    time.Time `json:"created_at"`
}

// Service defines the interface for statistics operations
type Service interface {
	Recent(limit int) ([]HistoryEntry, error)
	Stats() (*AppStats, error)
}
