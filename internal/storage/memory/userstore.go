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
var _ interfaces.UserDataStore = (*UserStore)(nil)

// UserStore is an in-memory UserDataStore.
type UserStore struct {
	mu      sync.Mutex
	records map[string]*models.UserRecord
	now     func() time.Time
}

// NewUserStore creates an empty store.
func NewUserStore() *UserStore {
	return &UserStore{records: make(map[string]*models.UserRecord), now: time.Now}
}

func compositeKey(userID, subject, key string) string {
	return userID + ":" + subject + ":" + key
}

func (m *UserStore) Get(_ context.Context, userID, subject, key string) (*models.UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.records[compositeKey(userID, subject, key)]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, fmt.Errorf("%s '%s': %w", subject, key, models.ErrNotFound)
}

// Put stores a copy of record, bumping Version. A zero DateTime is stamped
// with the current time.
func (m *UserStore) Put(_ context.Context, record *models.UserRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ck := compositeKey(record.UserID, record.Subject, record.Key)
	if existing, ok := m.records[ck]; ok {
		record.Version = existing.Version + 1
	} else {
		record.Version = 1
	}
	if record.DateTime.IsZero() {
		record.DateTime = m.now()
	}
	cp := *record
	m.records[ck] = &cp
	return nil
}

func (m *UserStore) Delete(_ context.Context, userID, subject, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, compositeKey(userID, subject, key))
	return nil
}

func (m *UserStore) List(_ context.Context, userID, subject string) ([]*models.UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.collect(userID, subject), nil
}

func (m *UserStore) collect(userID, subject string) []*models.UserRecord {
	var result []*models.UserRecord
	for _, r := range m.records {
		if r.UserID == userID && r.Subject == subject {
			cp := *r
			result = append(result, &cp)
		}
	}
	return result
}

func (m *UserStore) Query(_ context.Context, userID, subject string, opts interfaces.QueryOptions) ([]*models.UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := m.collect(userID, subject)

	asc := opts.OrderBy == "datetime_asc"
	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.DateTime.Equal(b.DateTime) {
			if asc {
				return a.Key < b.Key
			}
			return a.Key > b.Key
		}
		if asc {
			return a.DateTime.Before(b.DateTime)
		}
		return a.DateTime.After(b.DateTime)
	})

	if opts.Limit > 0 && len(result) > opts.Limit {
		result = result[:opts.Limit]
	}
	return result, nil
}

func (m *UserStore) DeleteBySubject(_ context.Context, subject string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for ck, r := range m.records {
		if r.Subject == subject {
			delete(m.records, ck)
			count++
		}
	}
	return count, nil
}

func (m *UserStore) Close() error { return nil }
