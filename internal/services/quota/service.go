// Package quota provides the per-user monthly AI usage ledger
package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/purunsolnp/sonagi-stock/internal/common"
	"github.com/purunsolnp/sonagi-stock/internal/interfaces"
	"github.com/purunsolnp/sonagi-stock/internal/metrics"
	"github.com/purunsolnp/sonagi-stock/internal/models"
)

// Compile-time interface check
var _ interfaces.QuotaService = (*Service)(nil)

// Service implements QuotaService. Usage belongs to a calendar month in
// the configured location; a record from an older month reads as unused.
type Service struct {
	store        interfaces.QuotaStore
	logger       *common.Logger
	metrics      *metrics.Registry
	defaultLimit int
	loc          *time.Location
	now          func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMetrics records denials and increments.
func WithMetrics(m *metrics.Registry) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates a new quota service
func NewService(store interfaces.QuotaStore, cfg common.QuotaConfig, logger *common.Logger, opts ...Option) *Service {
	limit := cfg.DefaultLimit
	if limit < 0 {
		limit = 0
	}
	s := &Service{
		store:        store,
		logger:       logger,
		defaultLimit: limit,
		loc:          cfg.GetLocation(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) period() string {
	return models.QuotaPeriod(s.now(), s.loc)
}

// ensure fetches the record for userID in the current period, creating it
// with defaults on first access.
func (s *Service) ensure(ctx context.Context, userID string) (*models.QuotaRecord, error) {
	period := s.period()
	rec, err := s.store.Get(ctx, userID, period)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("failed to load quota: %w", err)
	}

	now := s.now()
	fresh := &models.QuotaRecord{
		UserID:    userID,
		Enabled:   true,
		Limit:     s.defaultLimit,
		Period:    period,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, fresh); err != nil {
		return nil, fmt.Errorf("failed to create quota: %w", err)
	}
	s.logger.Debug().Str("user_id", userID).Int("limit", fresh.Limit).Msg("Quota record created")

	// Create is a no-op when a concurrent request won the race.
	rec, err = s.store.Get(ctx, userID, period)
	if err != nil {
		return nil, fmt.Errorf("failed to load quota: %w", err)
	}
	return rec, nil
}

// Load returns the caller's quota status
func (s *Service) Load(ctx context.Context) (*models.QuotaStatus, error) {
	rec, err := s.ensure(ctx, common.ResolveUserID(ctx))
	if err != nil {
		return nil, err
	}
	st := rec.Status()
	return &st, nil
}

// Check returns *models.QuotaExceededError when the caller may not use the AI
func (s *Service) Check(ctx context.Context) error {
	userID := common.ResolveUserID(ctx)
	rec, err := s.ensure(ctx, userID)
	if err != nil {
		return err
	}
	if !rec.CanUse() {
		s.metrics.QuotaDenied()
		s.logger.Info().Str("user_id", userID).Int("usage", rec.UsageThisMonth).Int("limit", rec.Limit).Msg("Quota exceeded")
		return &models.QuotaExceededError{Usage: rec.UsageThisMonth, Limit: rec.Limit}
	}
	return nil
}

// Increment atomically records one AI call for the caller
func (s *Service) Increment(ctx context.Context) (*models.QuotaStatus, error) {
	userID := common.ResolveUserID(ctx)
	if _, err := s.ensure(ctx, userID); err != nil {
		return nil, err
	}
	rec, err := s.store.Increment(ctx, userID, s.period())
	if err != nil {
		return nil, fmt.Errorf("failed to increment quota: %w", err)
	}
	s.metrics.QuotaIncremented()
	st := rec.Status()
	return &st, nil
}

// ResetMonthly zeroes usage for target. An empty target means the caller.
func (s *Service) ResetMonthly(ctx context.Context, targetUserID string) error {
	caller := common.ResolveUserID(ctx)
	if targetUserID == "" {
		targetUserID = caller
	}
	if targetUserID != caller && !common.IsAdmin(ctx) {
		return fmt.Errorf("reset quota for %s: %w", targetUserID, models.ErrForbidden)
	}
	if _, err := s.ensure(ctx, targetUserID); err != nil {
		return err
	}
	if err := s.store.ResetUsage(ctx, targetUserID, s.period()); err != nil {
		return fmt.Errorf("failed to reset quota: %w", err)
	}
	s.logger.Info().Str("user_id", targetUserID).Str("by", caller).Msg("Quota usage reset")
	return nil
}

// SetLimit changes a user's limit and enabled flag; admin only
func (s *Service) SetLimit(ctx context.Context, targetUserID string, limit int, enabled bool) error {
	if !common.IsAdmin(ctx) {
		return fmt.Errorf("set quota limit: %w", models.ErrForbidden)
	}
	if targetUserID == "" {
		return models.Validationf("user id is required")
	}
	if limit < 0 {
		return models.Validationf("limit must be zero or more, got %d", limit)
	}
	if _, err := s.ensure(ctx, targetUserID); err != nil {
		return err
	}
	if err := s.store.SetLimit(ctx, targetUserID, limit, enabled); err != nil {
		return fmt.Errorf("failed to set quota limit: %w", err)
	}
	s.logger.Info().Str("user_id", targetUserID).Int("limit", limit).Bool("enabled", enabled).Msg("Quota limit changed")
	return nil
}

// ResetAll zeroes usage for every user; admin only
func (s *Service) ResetAll(ctx context.Context) (int, error) {
	if !common.IsAdmin(ctx) {
		return 0, fmt.Errorf("reset all quotas: %w", models.ErrForbidden)
	}
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list quota users: %w", err)
	}
	period := s.period()
	count := 0
	for _, userID := range users {
		if err := s.store.ResetUsage(ctx, userID, period); err != nil {
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("Failed to reset quota")
			continue
		}
		count++
	}
	s.logger.Info().Int("count", count).Msg("All quotas reset")
	return count, nil
}

// List returns every user's status; admin only
func (s *Service) List(ctx context.Context) ([]models.QuotaStatus, error) {
	if !common.IsAdmin(ctx) {
		return nil, fmt.Errorf("list quotas: %w", models.ErrForbidden)
	}
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list quota users: %w", err)
	}
	period := s.period()
	out := make([]models.QuotaStatus, 0, len(users))
	for _, userID := range users {
		rec, err := s.store.Get(ctx, userID, period)
		if err != nil {
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("Failed to load quota")
			continue
		}
		out = append(out, rec.Status())
	}
	return out, nil
}
