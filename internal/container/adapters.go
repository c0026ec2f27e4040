package container

import (
	statisticsDomain "examphoto/internal/domain/statistics"
	"examphoto/internal/services"
)

// StatisticsServiceAdapter adapts services.HistoryService to statisticsDomain.Service
type StatisticsServiceAdapter struct {
	service *services.HistoryService
}

func (a *StatisticsServiceAdapter) Recent(limit int) ([]statisticsDomain.HistoryEntry, error) {
	records, err := a.service.Recent(limit)
	if err != nil {
		return nil, err
	}

	// Convert service model to domain model
	entries := make([]statisticsDomain.HistoryEntry, len(records))
	for i, r := range records {
		entries[i] = statisticsDomain.HistoryEntry{
			ID:           r.ID,
			Source:       r.Source,
			Output:       r.Output,
			Category:     r.Category,
			DocumentType: r.DocumentType,
			Width:        r.Width,
			Height:       r.Height,
			SizeBytes:    r.SizeBytes,
			Quality:      r.Quality,
			BelowMinimum: r.BelowMinimum,
			CreatedAt:    r.CreatedAt,
		}
	}
	return entries, nil
}

func (a *StatisticsServiceAdapter) Stats() (*statisticsDomain.AppStats, error) {
	totals, err := a.service.Totals()
	if err != nil {
		return nil, err
	}

	return &statisticsDomain.AppStats{
		TotalConversions:  totals.Count,
		BelowMinimumCount: totals.BelowMinimumCount,
		TotalBytesWritten: totals.TotalBytes,
		AverageQuality:    totals.AverageQuality,
	}, nil
}
