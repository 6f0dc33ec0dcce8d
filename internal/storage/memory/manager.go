// Package memory provides process-local implementations of the storage
// interfaces, used for development and tests.
package memory

import (
	"github.com/purunsolnp/sonagi-stock/internal/common"
	"github.com/purunsolnp/sonagi-stock/internal/interfaces"
)

// Compile-time interface check
var _ interfaces.StorageManager = (*Manager)(nil)

// Manager implements interfaces.StorageManager in memory.
type Manager struct {
	internalStore *InternalStore
	userStore     *UserStore
	quotaStore    *QuotaStore
}

// NewManager creates an empty in-memory storage manager.
func NewManager(logger *common.Logger) *Manager {
	logger.Info().Msg("In-memory storage manager initialized")
	return &Manager{
		internalStore: NewInternalStore(),
		userStore:     NewUserStore(),
		quotaStore:    NewQuotaStore(),
	}
}

func (m *Manager) InternalStore() interfaces.InternalStore {
	return m.internalStore
}

func (m *Manager) UserDataStore() interfaces.UserDataStore {
	return m.userStore
}

func (m *Manager) QuotaStore() interfaces.QuotaStore {
	return m.quotaStore
}

func (m *Manager) Close() error {
	return nil
}
