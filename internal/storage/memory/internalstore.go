package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/purunsolnp/sonagi-stock/internal/models"
)

// InternalStore is an in-memory InternalStore.
type InternalStore struct {
	mu       sync.RWMutex
	users    map[string]*models.InternalUser
	systemKV map[string]string
}

// NewInternalStore creates an empty store.
func NewInternalStore() *InternalStore {
	return &InternalStore{
		users:    make(map[string]*models.InternalUser),
		systemKV: make(map[string]string),
	}
}

func (s *InternalStore) GetUser(_ context.Context, userID string) (*models.InternalUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, models.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (s *InternalStore) GetUserByEmail(_ context.Context, email string) (*models.InternalUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user with email %s: %w", email, models.ErrNotFound)
}

func (s *InternalStore) SaveUser(_ context.Context, user *models.InternalUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *user
	s.users[user.UserID] = &cp
	return nil
}

func (s *InternalStore) DeleteUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, userID)
	return nil
}

func (s *InternalStore) ListUsers(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *InternalStore) GetSystemKV(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.systemKV[key]
	if !ok {
		return "", fmt.Errorf("system kv %s: %w", key, models.ErrNotFound)
	}
	return v, nil
}

func (s *InternalStore) SetSystemKV(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.systemKV[key] = value
	return nil
}

func (s *InternalStore) Close() error { return nil }
