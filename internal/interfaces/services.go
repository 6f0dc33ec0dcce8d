package interfaces

import (
	"context"

	"github.com/purunsolnp/sonagi-stock/internal/models"
)

// Catalog is the read-only instrument universe.
type Catalog interface {
	Stocks() []models.Stock
	ETFs() []models.ETF
	Lookup(ticker string) (models.Instrument, bool)
	SectorAverage(sector string) (models.SectorAverage, bool)
	ThemeAverage(theme string) (models.ThemeAverage, bool)
}

// QuotaService gates AI calls per user and month
type QuotaService interface {
	// Load fetches the caller's record, creating it with defaults on first access
	Load(ctx context.Context) (*models.QuotaStatus, error)

	// Check returns *models.QuotaExceededError when the caller may not call the AI
	Check(ctx context.Context) error

	// Increment atomically records one AI call for the caller
	Increment(ctx context.Context) (*models.QuotaStatus, error)

	// ResetMonthly zeroes usage for target; owner or admin only
	ResetMonthly(ctx context.Context, targetUserID string) error

	// Admin operations
	SetLimit(ctx context.Context, targetUserID string, limit int, enabled bool) error
	ResetAll(ctx context.Context) (int, error)
	List(ctx context.Context) ([]models.QuotaStatus, error)
}

// PortfolioService manages the caller's holdings
type PortfolioService interface {
	Add(ctx context.Context, input models.AddItemInput) (*models.PortfolioItem, error)
	Update(ctx context.Context, id string, input models.UpdateItemInput) (*models.PortfolioItem, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*models.PortfolioItem, error)
	List(ctx context.Context) ([]models.PortfolioItem, error)
	View(ctx context.Context) (*models.PortfolioView, error)
	Contains(ctx context.Context, ticker string) (bool, error)
	AllocationChart(ctx context.Context) ([]byte, error)
}

// ReportService handles report storage and history
type ReportService interface {
	SaveReport(ctx context.Context, report *models.Report) error
	GetReport(ctx context.Context, subjectType models.SubjectType, ticker string) (*models.Report, error)
	ListReports(ctx context.Context, subjectType models.SubjectType) ([]*models.Report, error)
	RecentReports(ctx context.Context, n int) ([]*models.Report, error)
	History(ctx context.Context, subjectType models.SubjectType, ticker string, n int) ([]*models.Report, error)

	SavePortfolioReport(ctx context.Context, report *models.Report) error
	GetPortfolioReport(ctx context.Context) (*models.Report, error)
	PortfolioHistory(ctx context.Context, n int) ([]*models.Report, error)
}

// AnalysisService runs the quota-gated prompt, AI call, parse and save flow
type AnalysisService interface {
	AnalyzeInstrument(ctx context.Context, ticker, style string) (*models.Report, error)
	AnalyzePortfolio(ctx context.Context, req PortfolioAnalysisRequest) (*models.Report, error)
	RecommendCash(ctx context.Context, style string, cash float64) (*models.Report, error)
}

// PortfolioAnalysisRequest selects holdings and options for a portfolio analysis.
// Empty ItemIDs means every holding.
type PortfolioAnalysisRequest struct {
	ItemIDs []string `json:"item_ids,omitempty"`
	Style   string   `json:"style"`
	Cash    float64  `json:"cash,omitempty"`
}
