package surrealdb

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purunsolnp/sonagi-stock/internal/interfaces"
	"github.com/purunsolnp/sonagi-stock/internal/models"
)

func TestUserStoreGetPut(t *testing.T) {
	store := testManager(t).UserDataStore()
	ctx := context.Background()

	_, err := store.Get(ctx, "user1", "portfolio", "missing")
	assert.True(t, errors.Is(err, models.ErrNotFound))

	record := &models.UserRecord{
		UserID:   "user1",
		Subject:  "portfolio",
		Key:      "item-1",
		Value:    `{"ticker":"AAPL"}`,
		DateTime: time.Now().Truncate(time.Second),
	}
	require.NoError(t, store.Put(ctx, record))
	require.NoError(t, store.Put(ctx, record))

	got, err := store.Get(ctx, "user1", "portfolio", "item-1")
	require.NoError(t, err)
	assert.Equal(t, `{"ticker":"AAPL"}`, got.Value)
	assert.Equal(t, 2, got.Version)
}

func TestUserStoreQueryOrder(t *testing.T) {
	store := testManager(t).UserDataStore()
	ctx := context.Background()
	base := time.Now().Truncate(time.Second)

	for i, key := range []string{"a", "b", "c"} {
		require.NoError(t, store.Put(ctx, &models.UserRecord{
			UserID:   "user1",
			Subject:  "report_history",
			Key:      key,
			Value:    key,
			DateTime: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	recs, err := store.Query(ctx, "user1", "report_history", interfaces.QueryOptions{Limit: 2})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "c", recs[0].Key)
	assert.Equal(t, "b", recs[1].Key)

	n, err := store.DeleteBySubject(ctx, "report_history")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestInternalStoreUsers(t *testing.T) {
	store := testManager(t).InternalStore()
	ctx := context.Background()

	require.NoError(t, store.SaveUser(ctx, &models.InternalUser{
		UserID: "u1", Email: "Kim@Example.com", Role: models.RoleAdmin, CreatedAt: time.Now(),
	}))

	u, err := store.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())

	byEmail, err := store.GetUserByEmail(ctx, "kim@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", byEmail.UserID)

	_, err = store.GetUser(ctx, "nobody")
	assert.True(t, errors.Is(err, models.ErrNotFound))

	require.NoError(t, store.SetSystemKV(ctx, "gemini_api_key", "k"))
	v, err := store.GetSystemKV(ctx, "gemini_api_key")
	require.NoError(t, err)
	assert.Equal(t, "k", v)
}

func TestQuotaStoreLifecycle(t *testing.T) {
	store := testManager(t).QuotaStore()
	ctx := context.Background()

	_, err := store.Get(ctx, "u1", "2025-03")
	assert.True(t, errors.Is(err, models.ErrNotFound))

	rec := &models.QuotaRecord{UserID: "u1", Enabled: true, Limit: 5, Period: "2025-03", CreatedAt: time.Now()}
	require.NoError(t, store.Create(ctx, rec))
	require.NoError(t, store.Create(ctx, &models.QuotaRecord{UserID: "u1", Enabled: true, Limit: 50, Period: "2025-03"}))

	got, err := store.Get(ctx, "u1", "2025-03")
	require.NoError(t, err)
	assert.Equal(t, 5, got.Limit)

	inc, err := store.Increment(ctx, "u1", "2025-03")
	require.NoError(t, err)
	assert.Equal(t, 1, inc.UsageThisMonth)

	require.NoError(t, store.SetLimit(ctx, "u1", 9, false))
	got, _ = store.Get(ctx, "u1", "2025-03")
	assert.Equal(t, 9, got.Limit)
	assert.False(t, got.Enabled)
	assert.Equal(t, 1, got.UsageThisMonth)

	// a new month reads as zero and the next increment starts over
	got, _ = store.Get(ctx, "u1", "2025-04")
	assert.Equal(t, 0, got.UsageThisMonth)
	inc, err = store.Increment(ctx, "u1", "2025-04")
	require.NoError(t, err)
	assert.Equal(t, 1, inc.UsageThisMonth)
	assert.Equal(t, "2025-04", inc.Period)

	require.NoError(t, store.ResetUsage(ctx, "u1", "2025-04"))
	got, _ = store.Get(ctx, "u1", "2025-04")
	assert.Equal(t, 0, got.UsageThisMonth)

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, users)

	assert.True(t, errors.Is(store.SetLimit(ctx, "ghost", 1, true), models.ErrNotFound))
}

func TestQuotaStoreConcurrentIncrement(t *testing.T) {
	store := testManager(t).QuotaStore()
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, &models.QuotaRecord{UserID: "u1", Enabled: true, Limit: 100, Period: "2025-03"}))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Increment(ctx, "u1", "2025-03")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := store.Get(ctx, "u1", "2025-03")
	require.NoError(t, err)
	assert.Equal(t, 10, got.UsageThisMonth)
}
