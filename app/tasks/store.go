package tasks

import (
	"sync"
	"time"

	"github.com/lysyi3m/weather-advices/app/pipeline"
)

type StoredReport struct {
	Report    pipeline.Report
	UpdatedAt time.Time
}

// ReportStore holds the latest background report per zone.
type ReportStore struct {
	mu      sync.RWMutex
	reports map[string]StoredReport
}

func NewReportStore() *ReportStore {
	return &ReportStore{
		reports: make(map[string]StoredReport),
	}
}

func (s *ReportStore) Put(report pipeline.Report, updatedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[report.Zone] = StoredReport{Report: report, UpdatedAt: updatedAt}
}

func (s *ReportStore) Get(zoneName string) (StoredReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.reports[zoneName]
	return stored, ok
}

// Fresh returns the stored report only if it was written within maxAge of now.
func (s *ReportStore) Fresh(zoneName string, now time.Time, maxAge time.Duration) (StoredReport, bool) {
	stored, ok := s.Get(zoneName)
	if !ok || now.Sub(stored.UpdatedAt) > maxAge {
		return StoredReport{}, false
	}
	return stored, true
}

func (s *ReportStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reports)
}
