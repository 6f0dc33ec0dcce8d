package surrealdb

import (
	"context"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/purunsolnp/sonagi-stock/internal/common"
	"github.com/purunsolnp/sonagi-stock/internal/interfaces"
	"github.com/purunsolnp/sonagi-stock/internal/models"
)

// Compile-time interface check
var _ interfaces.UserDataStore = (*UserStore)(nil)

type UserStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewUserStore(db *surrealdb.DB, logger *common.Logger) *UserStore {
	return &UserStore{
		db:     db,
		logger: logger,
	}
}

func recordID(userID, subject, key string) string {
	return userID + "_" + subject + "_" + key
}

func (s *UserStore) Get(ctx context.Context, userID, subject, key string) (*models.UserRecord, error) {
	record, err := surrealdb.Select[models.UserRecord](ctx, s.db, surrealmodels.NewRecordID("user_data", recordID(userID, subject, key)))
	if err != nil {
		return nil, fmt.Errorf("failed to select user record: %w", err)
	}
	if record == nil || record.Key == "" {
		return nil, fmt.Errorf("%s '%s': %w", subject, key, models.ErrNotFound)
	}
	return record, nil
}

// Put upserts the record, bumping Version from the stored copy.
func (s *UserStore) Put(ctx context.Context, record *models.UserRecord) error {
	id := recordID(record.UserID, record.Subject, record.Key)
	rid := surrealmodels.NewRecordID("user_data", id)

	if existing, err := surrealdb.Select[models.UserRecord](ctx, s.db, rid); err == nil && existing != nil && existing.Key != "" {
		record.Version = existing.Version + 1
	} else {
		record.Version = 1
	}
	if record.DateTime.IsZero() {
		record.DateTime = time.Now()
	}

	sql := "UPSERT $rid CONTENT $record"
	vars := map[string]any{"rid": rid, "record": record}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]models.UserRecord](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("failed to put user record after retries: %w", lastErr)
}

func (s *UserStore) Delete(ctx context.Context, userID, subject, key string) error {
	_, err := surrealdb.Delete[models.UserRecord](ctx, s.db, surrealmodels.NewRecordID("user_data", recordID(userID, subject, key)))
	if err != nil && !isNotFoundError(err) {
		return fmt.Errorf("failed to delete user record: %w", err)
	}
	return nil
}

func (s *UserStore) List(ctx context.Context, userID, subject string) ([]*models.UserRecord, error) {
	sql := "SELECT * FROM user_data WHERE user_id = $user_id AND subject = $subject"
	vars := map[string]any{
		"user_id": userID,
		"subject": subject,
	}

	results, err := surrealdb.Query[[]models.UserRecord](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list user records: %w", err)
	}
	return mapRecords(results), nil
}

func (s *UserStore) Query(ctx context.Context, userID, subject string, opts interfaces.QueryOptions) ([]*models.UserRecord, error) {
	sql := "SELECT * FROM user_data WHERE user_id = $user_id AND subject = $subject"

	if opts.OrderBy == "datetime_asc" {
		sql += " ORDER BY datetime ASC"
	} else {
		sql += " ORDER BY datetime DESC"
	}

	if opts.Limit > 0 {
		sql += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}

	vars := map[string]any{
		"user_id": userID,
		"subject": subject,
	}

	results, err := surrealdb.Query[[]models.UserRecord](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to query user records: %w", err)
	}
	return mapRecords(results), nil
}

func mapRecords(results *[]surrealdb.QueryResult[[]models.UserRecord]) []*models.UserRecord {
	if results == nil || len(*results) == 0 {
		return nil
	}
	var mapped []*models.UserRecord
	for i := range (*results)[0].Result {
		mapped = append(mapped, &(*results)[0].Result[i])
	}
	return mapped
}

func (s *UserStore) DeleteBySubject(ctx context.Context, subject string) (int, error) {
	sql := "DELETE user_data WHERE subject = $subject RETURN BEFORE"
	vars := map[string]any{"subject": subject}

	results, err := surrealdb.Query[[]models.UserRecord](ctx, s.db, sql, vars)
	if err != nil {
		return 0, fmt.Errorf("failed to delete by subject: %w", err)
	}

	count := 0
	if results != nil && len(*results) > 0 {
		count = len((*results)[0].Result)
	}
	return count, nil
}

func (s *UserStore) Close() error {
	return nil
}
