// Package report stores AI analysis reports and their history
package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/purunsolnp/sonagi-stock/internal/common"
	"github.com/purunsolnp/sonagi-stock/internal/interfaces"
	"github.com/purunsolnp/sonagi-stock/internal/metrics"
	"github.com/purunsolnp/sonagi-stock/internal/models"
)

// Record subjects in the user data store.
const (
	subjectLatest           = "report"
	subjectHistory          = "report_history"
	subjectPortfolio        = "portfolio_report"
	subjectPortfolioHistory = "portfolio_report_history"

	portfolioKey = "latest"

	// DefaultRecent is the number of reports RecentReports returns for n <= 0.
	DefaultRecent = 5
)

const historyStamp = "20060102T150405.000000000Z"

// Compile-time interface check
var _ interfaces.ReportService = (*Service)(nil)

// Service implements ReportService
type Service struct {
	storage interfaces.StorageManager
	logger  *common.Logger
	metrics *metrics.Registry
	now     func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithMetrics counts saved reports.
func WithMetrics(m *metrics.Registry) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new report service
func NewService(storage interfaces.StorageManager, logger *common.Logger, opts ...Option) *Service {
	s := &Service{
		storage: storage,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func latestKey(t models.SubjectType, ticker string) string {
	return string(t) + ":" + ticker
}

// SaveReport stores the latest stock or ETF report and appends it to history.
// Re-saving keeps the original CreatedAt.
func (s *Service) SaveReport(ctx context.Context, report *models.Report) error {
	if report == nil {
		return models.Validationf("report is required")
	}
	if report.SubjectType != models.SubjectStock && report.SubjectType != models.SubjectETF {
		return models.Validationf("subject type %q is not an instrument", report.SubjectType)
	}
	report.SubjectID = models.NormalizeTicker(report.SubjectID)
	if report.SubjectID == "" {
		return models.Validationf("subject id is required")
	}

	key := latestKey(report.SubjectType, report.SubjectID)
	return s.save(ctx, report, subjectLatest, key, subjectHistory)
}

// SavePortfolioReport stores the latest portfolio report and appends it to history
func (s *Service) SavePortfolioReport(ctx context.Context, report *models.Report) error {
	if report == nil {
		return models.Validationf("report is required")
	}
	report.SubjectType = models.SubjectPortfolio
	if report.SubjectID == "" {
		report.SubjectID = "PORTFOLIO"
	}
	return s.save(ctx, report, subjectPortfolio, portfolioKey, subjectPortfolioHistory)
}

func (s *Service) save(ctx context.Context, report *models.Report, subject, key, historySubject string) error {
	userID := common.ResolveUserID(ctx)
	store := s.storage.UserDataStore()

	now := s.now().UTC()
	report.UpdatedAt = now
	if existing, err := s.read(ctx, subject, key); err == nil && !existing.CreatedAt.IsZero() {
		report.CreatedAt = existing.CreatedAt
	} else if report.CreatedAt.IsZero() {
		report.CreatedAt = now
	}

	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := store.Put(ctx, &models.UserRecord{
		UserID:   userID,
		Subject:  subject,
		Key:      key,
		Value:    string(data),
		DateTime: now,
	}); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	historyKey := key + ":" + now.Format(historyStamp)
	if err := store.Put(ctx, &models.UserRecord{
		UserID:   userID,
		Subject:  historySubject,
		Key:      historyKey,
		Value:    string(data),
		DateTime: now,
	}); err != nil {
		// the latest copy is already stored
		s.logger.Warn().Err(err).Str("key", historyKey).Msg("Failed to append report history")
	}

	s.metrics.ReportSaved(string(report.SubjectType))
	s.logger.Info().
		Str("user_id", userID).
		Str("subject_type", string(report.SubjectType)).
		Str("subject_id", report.SubjectID).
		Msg("Report saved")
	return nil
}

// GetReport returns the latest report for a ticker
func (s *Service) GetReport(ctx context.Context, subjectType models.SubjectType, ticker string) (*models.Report, error) {
	if !subjectType.Valid() || subjectType == models.SubjectPortfolio {
		return nil, models.Validationf("unknown subject type %q", subjectType)
	}
	return s.read(ctx, subjectLatest, latestKey(subjectType, models.NormalizeTicker(ticker)))
}

// GetPortfolioReport returns the latest portfolio report
func (s *Service) GetPortfolioReport(ctx context.Context) (*models.Report, error) {
	return s.read(ctx, subjectPortfolio, portfolioKey)
}

// ListReports returns the latest reports, newest first. An empty subject
// type lists stocks and ETFs together.
func (s *Service) ListReports(ctx context.Context, subjectType models.SubjectType) ([]*models.Report, error) {
	if subjectType != "" && !subjectType.Valid() {
		return nil, models.Validationf("unknown subject type %q", subjectType)
	}
	userID := common.ResolveUserID(ctx)
	recs, err := s.storage.UserDataStore().List(ctx, userID, subjectLatest)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	reports := s.decodeAll(recs)
	if subjectType != "" {
		filtered := reports[:0]
		for _, r := range reports {
			if r.SubjectType == subjectType {
				filtered = append(filtered, r)
			}
		}
		reports = filtered
	}
	sortNewest(reports)
	return reports, nil
}

// RecentReports returns the n most recently updated instrument reports
func (s *Service) RecentReports(ctx context.Context, n int) ([]*models.Report, error) {
	if n <= 0 {
		n = DefaultRecent
	}
	userID := common.ResolveUserID(ctx)
	recs, err := s.storage.UserDataStore().Query(ctx, userID, subjectLatest, interfaces.QueryOptions{
		Limit:   n,
		OrderBy: "datetime_desc",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query recent reports: %w", err)
	}
	reports := s.decodeAll(recs)
	sortNewest(reports)
	return reports, nil
}

// History returns past versions of a ticker's report, newest first.
// n <= 0 returns all of them.
func (s *Service) History(ctx context.Context, subjectType models.SubjectType, ticker string, n int) ([]*models.Report, error) {
	if !subjectType.Valid() || subjectType == models.SubjectPortfolio {
		return nil, models.Validationf("unknown subject type %q", subjectType)
	}
	prefix := latestKey(subjectType, models.NormalizeTicker(ticker)) + ":"
	return s.history(ctx, subjectHistory, prefix, n)
}

// PortfolioHistory returns past portfolio reports, newest first
func (s *Service) PortfolioHistory(ctx context.Context, n int) ([]*models.Report, error) {
	return s.history(ctx, subjectPortfolioHistory, portfolioKey+":", n)
}

func (s *Service) history(ctx context.Context, subject, prefix string, n int) ([]*models.Report, error) {
	userID := common.ResolveUserID(ctx)
	recs, err := s.storage.UserDataStore().Query(ctx, userID, subject, interfaces.QueryOptions{OrderBy: "datetime_desc"})
	if err != nil {
		return nil, fmt.Errorf("failed to query report history: %w", err)
	}

	matched := recs[:0]
	for _, rec := range recs {
		if strings.HasPrefix(rec.Key, prefix) {
			matched = append(matched, rec)
		}
	}
	reports := s.decodeAll(matched)
	sortNewest(reports)
	if n > 0 && len(reports) > n {
		reports = reports[:n]
	}
	return reports, nil
}

func (s *Service) read(ctx context.Context, subject, key string) (*models.Report, error) {
	userID := common.ResolveUserID(ctx)
	rec, err := s.storage.UserDataStore().Get(ctx, userID, subject, key)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("report %s: %w", key, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	var report models.Report
	if err := json.Unmarshal([]byte(rec.Value), &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &report, nil
}

func (s *Service) decodeAll(recs []*models.UserRecord) []*models.Report {
	reports := make([]*models.Report, 0, len(recs))
	for _, rec := range recs {
		var r models.Report
		if err := json.Unmarshal([]byte(rec.Value), &r); err != nil {
			s.logger.Warn().Err(err).Str("key", rec.Key).Msg("Skipping unreadable report")
			continue
		}
		reports = append(reports, &r)
	}
	return reports
}

func sortNewest(reports []*models.Report) {
	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].UpdatedAt.After(reports[j].UpdatedAt)
	})
}
