package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/purunsolnp/sonagi-stock/internal/interfaces"
	"github.com/purunsolnp/sonagi-stock/internal/models"
)

// Compile-time interface check
var _ interfaces.QuotaStore = (*QuotaStore)(nil)

// QuotaStore is an in-memory QuotaStore. A single mutex makes Increment
// atomic.
type QuotaStore struct {
	mu      sync.Mutex
	records map[string]*models.QuotaRecord
	now     func() time.Time
}

// NewQuotaStore creates an empty store.
func NewQuotaStore() *QuotaStore {
	return &QuotaStore{records: make(map[string]*models.QuotaRecord), now: time.Now}
}

func (s *QuotaStore) Get(_ context.Context, userID, period string) (*models.QuotaRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[userID]
	if !ok {
		return nil, fmt.Errorf("quota for %s: %w", userID, models.ErrNotFound)
	}
	view := rec.ForPeriod(period)
	return &view, nil
}

func (s *QuotaStore) Create(_ context.Context, rec *models.QuotaRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[rec.UserID]; ok {
		return nil
	}
	cp := *rec
	s.records[rec.UserID] = &cp
	return nil
}

func (s *QuotaStore) Increment(_ context.Context, userID, period string) (*models.QuotaRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[userID]
	if !ok {
		return nil, fmt.Errorf("quota for %s: %w", userID, models.ErrNotFound)
	}
	rolled := rec.ForPeriod(period)
	rolled.UsageThisMonth++
	rolled.UpdatedAt = s.now()
	s.records[userID] = &rolled
	out := rolled
	return &out, nil
}

func (s *QuotaStore) ResetUsage(_ context.Context, userID, period string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[userID]
	if !ok {
		return fmt.Errorf("quota for %s: %w", userID, models.ErrNotFound)
	}
	rec.UsageThisMonth = 0
	rec.Period = period
	rec.UpdatedAt = s.now()
	return nil
}

func (s *QuotaStore) SetLimit(_ context.Context, userID string, limit int, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[userID]
	if !ok {
		return fmt.Errorf("quota for %s: %w", userID, models.ErrNotFound)
	}
	rec.Limit = limit
	rec.Enabled = enabled
	rec.UpdatedAt = s.now()
	return nil
}

func (s *QuotaStore) ListUsers(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
