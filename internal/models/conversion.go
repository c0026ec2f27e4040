package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConversionRecord is one finished conversion in the history database.
type ConversionRecord struct {
	ID           string    `gorm:"primaryKey;type:text" json:"id"`
	Source       string    `gorm:"type:text" json:"source"`
	Output       string    `gorm:"type:text" json:"output"`
	Category     string    `gorm:"index" json:"category"`
	DocumentType string    `json:"document_type"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	TargetBytes  int       `json:"target_bytes"`
	SizeBytes    int       `json:"size_bytes"`
	Quality      int       `json:"quality"`
	Attempts     int       `json:"attempts"`
	BelowMinimum bool      `json:"below_minimum"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
}

// BeforeCreate assigns an ID to records created without one.
func (r *ConversionRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// ConversionTotals aggregates the whole history table.
type ConversionTotals struct {
	Count             int64
	BelowMinimumCount int64
	TotalBytes        int64
	AverageQuality    float64
}

// RecentConversions returns up to limit records, newest first.
func RecentConversions(db *gorm.DB, limit int) ([]ConversionRecord, error) {
	var records []ConversionRecord
	err := db.Order("created_at DESC").Order("rowid DESC").Limit(limit).Find(&records).Error
	return records, err
}

// SumConversions computes totals over every stored record.
func SumConversions(db *gorm.DB) (ConversionTotals, error) {
	var totals ConversionTotals
	err := db.Model(&ConversionRecord{}).
		Select("COUNT(*) AS count, " +
			"COALESCE(SUM(CASE WHEN below_minimum THEN 1 ELSE 0 END), 0) AS below_minimum_count, " +
			"COALESCE(SUM(size_bytes), 0) AS total_bytes, " +
			"COALESCE(AVG(quality), 0) AS average_quality").
		Scan(&totals).Error
	return totals, err
}
