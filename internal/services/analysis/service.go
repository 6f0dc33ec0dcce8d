// Package analysis runs AI analyses: quota check, prompt, provider call,
// parse, save, then usage increment.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/purunsolnp/sonagi-stock/internal/common"
	"github.com/purunsolnp/sonagi-stock/internal/interfaces"
	"github.com/purunsolnp/sonagi-stock/internal/metrics"
	"github.com/purunsolnp/sonagi-stock/internal/models"
	"github.com/purunsolnp/sonagi-stock/internal/services/parser"
	"github.com/purunsolnp/sonagi-stock/internal/services/prompt"
)

// Compile-time interface check
var _ interfaces.AnalysisService = (*Service)(nil)

// Service implements AnalysisService
type Service struct {
	catalog   interfaces.Catalog
	portfolio interfaces.PortfolioService
	reports   interfaces.ReportService
	quota     interfaces.QuotaService
	ai        interfaces.AIClient
	logger    *common.Logger
	metrics   *metrics.Registry

	timeout     time.Duration
	temperature float64
	maxTokens   int

	mu       sync.Mutex
	inflight map[string]struct{}
}

// Option configures a Service
type Option func(*Service)

// WithMetrics records AI call counts and durations.
func WithMetrics(m *metrics.Registry) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates a new analysis service. Sampling and timeout settings
// come from the provider config.
func NewService(
	catalog interfaces.Catalog,
	portfolio interfaces.PortfolioService,
	reports interfaces.ReportService,
	quota interfaces.QuotaService,
	ai interfaces.AIClient,
	cfg common.GeminiConfig,
	logger *common.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		catalog:     catalog,
		portfolio:   portfolio,
		reports:     reports,
		quota:       quota,
		ai:          ai,
		logger:      logger,
		timeout:     cfg.GetTimeout(),
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxOutputTokens,
		inflight:    make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AnalyzeInstrument analyses one stock or ETF and stores the report.
func (s *Service) AnalyzeInstrument(ctx context.Context, ticker, style string) (*models.Report, error) {
	ticker = models.NormalizeTicker(ticker)
	if ticker == "" {
		return nil, models.Validationf("ticker is required")
	}
	release, err := s.acquire(ctx, "instrument:"+ticker)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := s.quota.Check(ctx); err != nil {
		return nil, err
	}

	inst, ok := s.catalog.Lookup(ticker)
	if !ok {
		return nil, models.Validationf("unknown ticker %s", ticker)
	}

	st := prompt.ParseStyle(style)
	var p models.Prompt
	switch inst.Kind {
	case models.KindETF:
		var avg *models.ThemeAverage
		if a, ok := s.catalog.ThemeAverage(inst.ETF.Theme); ok {
			avg = &a
		}
		p = prompt.BuildETFPrompt(*inst.ETF, avg, st)
	default:
		var avg *models.SectorAverage
		if a, ok := s.catalog.SectorAverage(inst.Stock.Sector); ok {
			avg = &a
		}
		p = prompt.BuildStockPrompt(*inst.Stock, avg, st)
	}

	text, err := s.complete(ctx, string(models.SubjectTypeFor(inst.Kind)), p)
	if err != nil {
		return nil, err
	}

	report := parser.ParseInstrument(text, ticker, models.SubjectTypeFor(inst.Kind))
	report.Style = string(st)
	if err := s.reports.SaveReport(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to save report: %w", err)
	}

	s.increment(ctx)
	s.logger.Info().Str("ticker", ticker).Str("style", string(st)).Bool("parsed", report.Error == "").Msg("Instrument analysed")
	return report, nil
}

// AnalyzePortfolio reviews the selected holdings, or all of them when none
// are selected, and stores the portfolio report.
func (s *Service) AnalyzePortfolio(ctx context.Context, req interfaces.PortfolioAnalysisRequest) (*models.Report, error) {
	release, err := s.acquire(ctx, "portfolio")
	if err != nil {
		return nil, err
	}
	defer release()

	if err := s.quota.Check(ctx); err != nil {
		return nil, err
	}

	items, err := s.selectItems(ctx, req.ItemIDs)
	if err != nil {
		return nil, err
	}

	st := prompt.ParseStyle(req.Style)
	p, err := prompt.BuildPortfolioPrompt(items, st, req.Cash)
	if err != nil {
		return nil, err
	}

	text, err := s.complete(ctx, string(models.SubjectPortfolio), p)
	if err != nil {
		return nil, err
	}

	report := parser.ParsePortfolio(text)
	report.Style = string(st)
	if err := s.reports.SavePortfolioReport(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to save portfolio report: %w", err)
	}

	s.increment(ctx)
	s.logger.Info().Int("items", len(items)).Str("style", string(st)).Msg("Portfolio analysed")
	return report, nil
}

// RecommendCash asks how to deploy cash and stores the answer as the
// portfolio report's cash suggestion.
func (s *Service) RecommendCash(ctx context.Context, style string, cash float64) (*models.Report, error) {
	if cash <= 0 {
		return nil, models.Validationf("cash amount must be positive")
	}
	release, err := s.acquire(ctx, "portfolio")
	if err != nil {
		return nil, err
	}
	defer release()

	if err := s.quota.Check(ctx); err != nil {
		return nil, err
	}

	items, err := s.portfolio.List(ctx)
	if err != nil {
		return nil, err
	}

	st := prompt.ParseStyle(style)
	p, err := prompt.BuildCashPrompt(items, cash, st)
	if err != nil {
		return nil, err
	}

	text, err := s.complete(ctx, "cash", p)
	if err != nil {
		return nil, err
	}

	parsed := parser.ParseCash(text)
	report := parsed
	existing, err := s.reports.GetPortfolioReport(ctx)
	switch {
	case err == nil && existing.Portfolio != nil:
		existing.Portfolio.CashSuggestion = parsed.Portfolio.CashSuggestion
		report = existing
	case err != nil && !errors.Is(err, models.ErrNotFound):
		return nil, fmt.Errorf("failed to load portfolio report: %w", err)
	default:
		report.Style = string(st)
	}

	if err := s.reports.SavePortfolioReport(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to save portfolio report: %w", err)
	}

	s.increment(ctx)
	s.logger.Info().Float64("cash", cash).Str("style", string(st)).Msg("Cash recommendation stored")
	return report, nil
}

func (s *Service) selectItems(ctx context.Context, ids []string) ([]models.PortfolioItem, error) {
	if len(ids) == 0 {
		return s.portfolio.List(ctx)
	}
	items := make([]models.PortfolioItem, 0, len(ids))
	for _, id := range ids {
		item, err := s.portfolio.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}

// complete calls the provider under the configured timeout. Failures are
// wrapped with models.ErrProvider and keep the provider message.
func (s *Service) complete(ctx context.Context, kind string, p models.Prompt) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	text, err := s.ai.Complete(callCtx, models.CompletionRequest{
		System:      p.System,
		Prompt:      p.Text,
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
	})
	s.metrics.ObserveAI(kind, time.Since(start), err)
	if err != nil {
		s.logger.Warn().Err(err).Str("kind", kind).Msg("AI call failed")
		return "", fmt.Errorf("%w: %w", models.ErrProvider, err)
	}
	return text, nil
}

// increment records usage after a saved report. A failure here does not
// undo the analysis.
func (s *Service) increment(ctx context.Context) {
	if _, err := s.quota.Increment(ctx); err != nil {
		s.logger.Error().Err(err).Str("user_id", common.ResolveUserID(ctx)).Msg("Failed to increment quota")
	}
}

// acquire marks an analysis for the caller as running. One analysis per
// user at a time keeps the quota check and the increment of one call from
// interleaving with another call's check.
func (s *Service) acquire(ctx context.Context, subject string) (func(), error) {
	key := common.ResolveUserID(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[key]; busy {
		return nil, fmt.Errorf("%s: %w", subject, models.ErrBusy)
	}
	s.inflight[key] = struct{}{}
	return func() {
		s.mu.Lock()
		delete(s.inflight, key)
		s.mu.Unlock()
	}, nil
}
