package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purunsolnp/sonagi-stock/internal/common"
	"github.com/purunsolnp/sonagi-stock/internal/storage/memory"
)

func TestNewStorageManager_MemoryDefault(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.Storage.Backend = ""
	cfg.Quota.Backend = ""

	mgr, err := NewStorageManager(context.Background(), common.NewSilentLogger(), cfg)
	require.NoError(t, err)
	defer mgr.Close()

	_, ok := mgr.(*memory.Manager)
	assert.True(t, ok, "empty backend should default to memory")
	assert.NotNil(t, mgr.QuotaStore())
}

func TestNewStorageManager_UnknownBackends(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.Storage.Backend = "badger"
	_, err := NewStorageManager(context.Background(), common.NewSilentLogger(), cfg)
	assert.ErrorContains(t, err, "unknown storage backend")

	cfg = common.NewDefaultConfig()
	cfg.Storage.Backend = BackendMemory
	cfg.Quota.Backend = "memcached"
	_, err = NewStorageManager(context.Background(), common.NewSilentLogger(), cfg)
	assert.ErrorContains(t, err, "unknown quota backend")
}
