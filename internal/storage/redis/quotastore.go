// Package redis provides a Redis-backed quota store. Usage lives in one
// counter key per user and period, so a new month starts from a missing key.
package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/purunsolnp/sonagi-stock/internal/common"
	"github.com/purunsolnp/sonagi-stock/internal/interfaces"
	"github.com/purunsolnp/sonagi-stock/internal/models"
)

const (
	keyPrefix = "sonagi:quota:"
	usersKey  = keyPrefix + "users"

	// counters outlive their month so a late read still sees them
	counterTTL = 62 * 24 * time.Hour
)

// Compile-time interface check
var _ interfaces.QuotaStore = (*QuotaStore)(nil)

// QuotaStore implements interfaces.QuotaStore on Redis.
type QuotaStore struct {
	client *redis.Client
	logger *common.Logger
	now    func() time.Time
}

// NewQuotaStore connects to the configured Redis instance.
func NewQuotaStore(ctx context.Context, cfg common.QuotaConfig, logger *common.Logger) (*QuotaStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddress,
		DB:   cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.RedisAddress, err)
	}
	logger.Info().Str("address", cfg.RedisAddress).Int("db", cfg.RedisDB).Msg("Redis quota store initialized")
	return newQuotaStore(client, logger, time.Now), nil
}

func newQuotaStore(client *redis.Client, logger *common.Logger, now func() time.Time) *QuotaStore {
	return &QuotaStore{client: client, logger: logger, now: now}
}

func metaKey(userID string) string {
	return keyPrefix + userID
}

func counterKey(userID, period string) string {
	return keyPrefix + userID + ":" + period
}

func (s *QuotaStore) Get(ctx context.Context, userID, period string) (*models.QuotaRecord, error) {
	meta, err := s.client.HGetAll(ctx, metaKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read quota: %w", err)
	}
	if len(meta) == 0 {
		return nil, fmt.Errorf("quota for %s: %w", userID, models.ErrNotFound)
	}

	usage, err := s.client.Get(ctx, counterKey(userID, period)).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to read quota usage: %w", err)
	}

	rec := decodeMeta(userID, meta)
	rec.UsageThisMonth = usage
	rec.Period = period
	return rec, nil
}

// Create stores the record's settings unless the user already has some.
// Every field is written with HSETNX inside one MULTI, so a concurrent Get
// never sees created_at without enabled and limit, and an existing record
// keeps its values.
func (s *QuotaStore) Create(ctx context.Context, rec *models.QuotaRecord) error {
	key := metaKey(rec.UserID)
	created := rec.CreatedAt
	if created.IsZero() {
		created = s.now()
	}
	stamp := created.UTC().Format(time.RFC3339)

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSetNX(ctx, key, "created_at", stamp)
		pipe.HSetNX(ctx, key, "enabled", formatBool(rec.Enabled))
		pipe.HSetNX(ctx, key, "limit", strconv.Itoa(rec.Limit))
		pipe.HSetNX(ctx, key, "updated_at", stamp)
		pipe.SAdd(ctx, usersKey, rec.UserID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create quota: %w", err)
	}
	return nil
}

// Increment is a single INCR on the period's counter.
func (s *QuotaStore) Increment(ctx context.Context, userID, period string) (*models.QuotaRecord, error) {
	meta, err := s.client.HGetAll(ctx, metaKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read quota: %w", err)
	}
	if len(meta) == 0 {
		return nil, fmt.Errorf("quota for %s: %w", userID, models.ErrNotFound)
	}

	key := counterKey(userID, period)
	usage, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to increment quota: %w", err)
	}
	if err := s.client.Expire(ctx, key, counterTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Failed to set quota counter expiry")
	}

	rec := decodeMeta(userID, meta)
	rec.UsageThisMonth = int(usage)
	rec.Period = period
	return rec, nil
}

func (s *QuotaStore) ResetUsage(ctx context.Context, userID, period string) error {
	if err := s.requireUser(ctx, userID); err != nil {
		return err
	}
	if err := s.client.Del(ctx, counterKey(userID, period)).Err(); err != nil {
		return fmt.Errorf("failed to reset quota: %w", err)
	}
	return nil
}

func (s *QuotaStore) SetLimit(ctx context.Context, userID string, limit int, enabled bool) error {
	if err := s.requireUser(ctx, userID); err != nil {
		return err
	}
	if err := s.client.HSet(ctx, metaKey(userID),
		"enabled", formatBool(enabled),
		"limit", strconv.Itoa(limit),
		"updated_at", s.now().UTC().Format(time.RFC3339),
	).Err(); err != nil {
		return fmt.Errorf("failed to set quota limit: %w", err)
	}
	return nil
}

func (s *QuotaStore) ListUsers(ctx context.Context) ([]string, error) {
	users, err := s.client.SMembers(ctx, usersKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list quota users: %w", err)
	}
	sort.Strings(users)
	return users, nil
}

// Close closes the Redis connection.
func (s *QuotaStore) Close() error {
	return s.client.Close()
}

func (s *QuotaStore) requireUser(ctx context.Context, userID string) error {
	n, err := s.client.Exists(ctx, metaKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("failed to read quota: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("quota for %s: %w", userID, models.ErrNotFound)
	}
	return nil
}

func decodeMeta(userID string, meta map[string]string) *models.QuotaRecord {
	rec := &models.QuotaRecord{
		UserID:  userID,
		Enabled: meta["enabled"] == "1",
	}
	rec.Limit, _ = strconv.Atoi(meta["limit"])
	rec.CreatedAt, _ = time.Parse(time.RFC3339, meta["created_at"])
	rec.UpdatedAt, _ = time.Parse(time.RFC3339, meta["updated_at"])
	return rec
}

func formatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
