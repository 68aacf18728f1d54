package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/regiq/regiq/internal/errors"
	"github.com/regiq/regiq/internal/models"
)

// MemoryStore is an in-memory Store used when no database is configured.
// Data does not survive restarts.
type MemoryStore struct {
	mu         sync.RWMutex
	alerts     map[string]models.Alert // keyed by alert ID
	dedupKeys  map[string]string       // dedup_key -> alert ID
	syncLogs   map[string]models.SyncLog
	freshness  map[string]models.DataFreshness
	failures   map[string]models.ProcessFailurePattern
	importGaps map[string]models.ImportComplianceGap
	indicators map[string]models.RegulatoryGapIndicator
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		alerts:     make(map[string]models.Alert),
		dedupKeys:  make(map[string]string),
		syncLogs:   make(map[string]models.SyncLog),
		freshness:  make(map[string]models.DataFreshness),
		failures:   make(map[string]models.ProcessFailurePattern),
		importGaps: make(map[string]models.ImportComplianceGap),
		indicators: make(map[string]models.RegulatoryGapIndicator),
	}
}

func (s *MemoryStore) InsertAlert(_ context.Context, alert models.Alert) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.dedupKeys[alert.DedupKey]; exists {
		return false, nil
	}
	now := time.Now().UTC()
	alert.CreatedAt = now
	alert.UpdatedAt = now
	s.alerts[alert.ID] = alert
	s.dedupKeys[alert.DedupKey] = alert.ID
	return true, nil
}

func (s *MemoryStore) HasRecentAlert(_ context.Context, title, source string, since time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.alerts {
		if a.Title == title && a.Source == source && !a.PublishedDate.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) QueryAlerts(_ context.Context, q models.AlertQuery) ([]models.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []models.Alert
	for _, a := range s.alerts {
		if q.Matches(a) {
			matched = append(matched, a)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].PublishedDate.Equal(matched[j].PublishedDate) {
			return matched[i].PublishedDate.After(matched[j].PublishedDate)
		}
		return strings.Compare(matched[i].ID, matched[j].ID) < 0
	})

	if q.Offset > 0 {
		if q.Offset >= len(matched) {
			return nil, nil
		}
		matched = matched[q.Offset:]
	}
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

func (s *MemoryStore) GetAlert(_ context.Context, id string) (*models.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.alerts[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &a, nil
}

func (s *MemoryStore) ListAlertsForAnalysis(ctx context.Context, ids []string, analyzeAll bool, limit int) ([]models.Alert, error) {
	if len(ids) > 0 {
		return s.QueryAlerts(ctx, models.AlertQuery{IDs: ids})
	}
	if !analyzeAll {
		return nil, nil
	}
	return s.QueryAlerts(ctx, models.AlertQuery{Limit: limit})
}

func (s *MemoryStore) StartSyncLog(_ context.Context, source string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	s.syncLogs[id] = models.SyncLog{
		ID:        id,
		Source:    source,
		StartedAt: time.Now().UTC(),
		Status:    models.SyncStatusRunning,
	}
	return id, nil
}

func (s *MemoryStore) FinishSyncLog(_ context.Context, log models.SyncLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.syncLogs[log.ID]
	if !ok {
		return apperrors.ErrNotFound
	}
	log.Source = existing.Source
	log.StartedAt = existing.StartedAt
	s.syncLogs[log.ID] = log
	return nil
}

// GetSyncLog returns a sync log by ID. Used by tests.
func (s *MemoryStore) GetSyncLog(id string) (models.SyncLog, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	log, ok := s.syncLogs[id]
	return log, ok
}

func (s *MemoryStore) UpsertDataFreshness(_ context.Context, f models.DataFreshness) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.freshness[f.SourceName]; ok && f.Status != "success" {
		f.LastSuccessfulFetch = prev.LastSuccessfulFetch
	}
	s.freshness[f.SourceName] = f
	return nil
}

func (s *MemoryStore) GetDataFreshness(_ context.Context) ([]models.DataFreshness, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]models.DataFreshness, 0, len(s.freshness))
	for _, f := range s.freshness {
		result = append(result, f)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].SourceName < result[j].SourceName
	})
	return result, nil
}

func (s *MemoryStore) UpsertProcessFailurePattern(_ context.Context, p models.ProcessFailurePattern) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[p.AlertID] = p
	return nil
}

func (s *MemoryStore) UpsertImportComplianceGap(_ context.Context, g models.ImportComplianceGap) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.importGaps[g.AlertID] = g
	return nil
}

func (s *MemoryStore) UpsertGapIndicator(_ context.Context, ind models.RegulatoryGapIndicator) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indicators[ind.IndicatorType] = ind
	return nil
}

func (s *MemoryStore) ListGapIndicators(_ context.Context) ([]models.RegulatoryGapIndicator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]models.RegulatoryGapIndicator, 0, len(s.indicators))
	for _, ind := range s.indicators {
		result = append(result, ind)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].RiskScore > result[j].RiskScore
	})
	return result, nil
}

// ProcessFailureCount returns the number of stored failure patterns. Used by tests.
func (s *MemoryStore) ProcessFailureCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.failures)
}

// ImportGapCount returns the number of stored import gaps. Used by tests.
func (s *MemoryStore) ImportGapCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.importGaps)
}

func (s *MemoryStore) Health(_ context.Context) error {
	return nil
}
