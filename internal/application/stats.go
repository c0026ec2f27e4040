package application

import (
	statisticsDomain "examphoto/internal/domain/statistics"
)

// HistoryReport pairs recent conversions with overall totals.
type HistoryReport struct {
	Entries []statisticsDomain.HistoryEntry `json:"entries"`
	Stats   *statisticsDomain.AppStats      `json:"stats"`
}

type StatsManager struct {
	service statisticsDomain.Service
}

func NewStatsManager(service statisticsDomain.Service) *StatsManager {
	return &StatsManager{service: service}
}

func (m *StatsManager) GetStats() (*statisticsDomain.AppStats, error) {
	return m.service.Stats()
}

func (m *StatsManager) Report(limit int) (*HistoryReport, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	entries, err := m.service.Recent(limit)
	if err != nil {
		return nil, err
	}
	stats, err := m.service.Stats()
	if err != nil {
		return nil, err
	}
	return &HistoryReport{Entries: entries, Stats: stats}, nil
}
