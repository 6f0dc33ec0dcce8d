package surrealdb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/purunsolnp/sonagi-stock/internal/common"
	"github.com/purunsolnp/sonagi-stock/internal/interfaces"
	"github.com/purunsolnp/sonagi-stock/internal/models"
)

// Compile-time interface check
var _ interfaces.QuotaStore = (*QuotaStore)(nil)

// QuotaStore keeps one quota record per user. Increments run as a single
// server-side UPDATE so concurrent calls never lose a count.
type QuotaStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewQuotaStore(db *surrealdb.DB, logger *common.Logger) *QuotaStore {
	return &QuotaStore{db: db, logger: logger}
}

func quotaRID(userID string) surrealmodels.RecordID {
	return surrealmodels.NewRecordID("quota", userID)
}

func (s *QuotaStore) selectRecord(ctx context.Context, userID string) (*models.QuotaRecord, error) {
	rec, err := surrealdb.Select[models.QuotaRecord](ctx, s.db, quotaRID(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to select quota: %w", err)
	}
	if rec == nil || rec.UserID == "" {
		return nil, fmt.Errorf("quota for %s: %w", userID, models.ErrNotFound)
	}
	return rec, nil
}

func (s *QuotaStore) Get(ctx context.Context, userID, period string) (*models.QuotaRecord, error) {
	rec, err := s.selectRecord(ctx, userID)
	if err != nil {
		return nil, err
	}
	view := rec.ForPeriod(period)
	return &view, nil
}

// Create inserts rec unless the user already has a record.
func (s *QuotaStore) Create(ctx context.Context, rec *models.QuotaRecord) error {
	sql := "CREATE $rid CONTENT $record"
	vars := map[string]any{"rid": quotaRID(rec.UserID), "record": rec}

	if _, err := surrealdb.Query[[]models.QuotaRecord](ctx, s.db, sql, vars); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "already exists") {
			return nil
		}
		return fmt.Errorf("failed to create quota: %w", err)
	}
	return nil
}

// Increment rolls a stale period over and adds one in the same statement.
// SET clauses apply in order, so usage is computed against the old period.
func (s *QuotaStore) Increment(ctx context.Context, userID, period string) (*models.QuotaRecord, error) {
	sql := `UPDATE $rid SET
		usage_this_month = IF period = $period THEN usage_this_month + 1 ELSE 1 END,
		period = $period,
		updated_at = $now
		RETURN AFTER`
	vars := map[string]any{
		"rid":    quotaRID(userID),
		"period": period,
		"now":    time.Now(),
	}

	results, err := surrealdb.Query[[]models.QuotaRecord](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to increment quota: %w", err)
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("quota for %s: %w", userID, models.ErrNotFound)
	}
	rec := (*results)[0].Result[0]
	return &rec, nil
}

func (s *QuotaStore) ResetUsage(ctx context.Context, userID, period string) error {
	sql := "UPDATE $rid SET usage_this_month = 0, period = $period, updated_at = $now RETURN AFTER"
	vars := map[string]any{
		"rid":    quotaRID(userID),
		"period": period,
		"now":    time.Now(),
	}
	return s.update(ctx, userID, sql, vars, "reset quota")
}

func (s *QuotaStore) SetLimit(ctx context.Context, userID string, limit int, enabled bool) error {
	sql := "UPDATE $rid SET `limit` = $limit, enabled = $enabled, updated_at = $now RETURN AFTER"
	vars := map[string]any{
		"rid":     quotaRID(userID),
		"limit":   limit,
		"enabled": enabled,
		"now":     time.Now(),
	}
	return s.update(ctx, userID, sql, vars, "set quota limit")
}

func (s *QuotaStore) update(ctx context.Context, userID, sql string, vars map[string]any, op string) error {
	results, err := surrealdb.Query[[]models.QuotaRecord](ctx, s.db, sql, vars)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return fmt.Errorf("quota for %s: %w", userID, models.ErrNotFound)
	}
	return nil
}

func (s *QuotaStore) ListUsers(ctx context.Context) ([]string, error) {
	list, err := surrealdb.Select[[]models.QuotaRecord](ctx, s.db, surrealmodels.Table("quota"))
	if err != nil {
		return nil, fmt.Errorf("failed to list quotas: %w", err)
	}

	var userIDs []string
	if list != nil {
		for _, q := range *list {
			if q.UserID != "" {
				userIDs = append(userIDs, q.UserID)
			}
		}
	}
	return userIDs, nil
}
