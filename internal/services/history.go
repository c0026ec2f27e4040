package services

import (
	"examphoto/internal/models"

	"gorm.io/gorm"
)

// DefaultHistoryLimit is used when Recent is called with a non-positive limit.
const DefaultHistoryLimit = 20

// HistoryService stores and queries finished conversions
type HistoryService struct {
	db *gorm.DB
}

// NewHistoryService creates a new history service
func NewHistoryService(db *gorm.DB) *HistoryService {
	return &HistoryService{db: db}
}

// Record inserts rec. An empty ID is filled in.
func (s *HistoryService) Record(rec *models.ConversionRecord) error {
	return s.db.Create(rec).Error
}

// Recent returns the newest conversions first.
func (s *HistoryService) Recent(limit int) ([]models.ConversionRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return models.RecentConversions(s.db, limit)
}

// Totals aggregates the full history.
func (s *HistoryService) Totals() (models.ConversionTotals, error) {
	return models.SumConversions(s.db)
}
