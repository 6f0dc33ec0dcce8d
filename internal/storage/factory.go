// Package storage selects and assembles the configured storage backends.
package storage

import (
	"context"
	"fmt"

	"github.com/purunsolnp/sonagi-stock/internal/common"
	"github.com/purunsolnp/sonagi-stock/internal/interfaces"
	"github.com/purunsolnp/sonagi-stock/internal/storage/memory"
	"github.com/purunsolnp/sonagi-stock/internal/storage/redis"
	"github.com/purunsolnp/sonagi-stock/internal/storage/surrealdb"
)

// Backend type constants.
const (
	BackendMemory    = "memory"
	BackendSurrealDB = "surrealdb"

	QuotaBackendStore = "store"
	QuotaBackendRedis = "redis"
)

// NewStorageManager creates a storage manager based on the configuration.
// Supported backends: "memory" (default), "surrealdb". When the quota
// backend is "redis" the manager's quota store is replaced by Redis.
func NewStorageManager(ctx context.Context, logger *common.Logger, config *common.Config) (interfaces.StorageManager, error) {
	var base interfaces.StorageManager

	backend := config.Storage.Backend
	if backend == "" {
		backend = BackendMemory
	}

	switch backend {
	case BackendMemory:
		base = memory.NewManager(logger)

	case BackendSurrealDB:
		m, err := surrealdb.NewManager(logger, config)
		if err != nil {
			return nil, fmt.Errorf("failed to create SurrealDB storage: %w", err)
		}
		base = m

	default:
		return nil, fmt.Errorf("unknown storage backend: %s (supported: memory, surrealdb)", backend)
	}

	switch config.Quota.Backend {
	case "", QuotaBackendStore:
		return base, nil

	case QuotaBackendRedis:
		quotas, err := redis.NewQuotaStore(ctx, config.Quota, logger)
		if err != nil {
			base.Close()
			return nil, fmt.Errorf("failed to create Redis quota store: %w", err)
		}
		return &quotaOverride{StorageManager: base, quotas: quotas}, nil

	default:
		base.Close()
		return nil, fmt.Errorf("unknown quota backend: %s (supported: store, redis)", config.Quota.Backend)
	}
}

// quotaOverride serves quotas from Redis and everything else from the base manager.
type quotaOverride struct {
	interfaces.StorageManager
	quotas *redis.QuotaStore
}

func (m *quotaOverride) QuotaStore() interfaces.QuotaStore {
	return m.quotas
}

func (m *quotaOverride) Close() error {
	qerr := m.quotas.Close()
	if err := m.StorageManager.Close(); err != nil {
		return err
	}
	return qerr
}
