// Package app wires configuration, storage, clients and services into the
// shared core used by cmd/sonagi-server and cmd/sonagi.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/purunsolnp/sonagi-stock/internal/catalog"
	"github.com/purunsolnp/sonagi-stock/internal/clients/gemini"
	"github.com/purunsolnp/sonagi-stock/internal/common"
	"github.com/purunsolnp/sonagi-stock/internal/interfaces"
	"github.com/purunsolnp/sonagi-stock/internal/metrics"
	"github.com/purunsolnp/sonagi-stock/internal/models"
	"github.com/purunsolnp/sonagi-stock/internal/services/analysis"
	"github.com/purunsolnp/sonagi-stock/internal/services/portfolio"
	"github.com/purunsolnp/sonagi-stock/internal/services/quota"
	"github.com/purunsolnp/sonagi-stock/internal/services/report"
	"github.com/purunsolnp/sonagi-stock/internal/storage"
)

// App holds all initialized services, clients, and the MCP server.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Storage          interfaces.StorageManager
	Catalog          *catalog.Catalog
	Metrics          *metrics.Registry
	AIClient         interfaces.AIClient
	QuotaService     interfaces.QuotaService
	PortfolioService interfaces.PortfolioService
	ReportService    interfaces.ReportService
	AnalysisService  interfaces.AnalysisService
	MCPServer        *server.MCPServer
	StartupTime      time.Time
}

// errAIUnavailable is returned by every AI call when no API key is configured.
var errAIUnavailable = errors.New("gemini API key not configured")

// unavailableClient stands in for the provider when no key resolves, so the
// rest of the app still serves catalog, portfolio and report routes.
type unavailableClient struct{}

func (unavailableClient) Complete(context.Context, models.CompletionRequest) (string, error) {
	return "", errAIUnavailable
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// resolveConfigPath checks the provided path, SONAGI_CONFIG, the binary
// directory, then the development fallback.
func resolveConfigPath(configPath string) string {
	if configPath == "" {
		configPath = os.Getenv("SONAGI_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "sonagi.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/sonagi.toml"
		}
	}
	return configPath
}

// NewApp loads configuration and initializes storage, the catalog, the AI
// client, every service and the MCP server. configPath may be empty.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()
	ctx := context.Background()

	// Load version from .version file (fallback if ldflags not set)
	common.LoadVersionFromFile()

	config, err := common.LoadConfig(resolveConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	storageManager, err := storage.NewStorageManager(ctx, logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	cat := catalog.Default()
	if config.Catalog.Path != "" {
		cat, err = catalog.Load(config.Catalog.Path)
		if err != nil {
			storageManager.Close()
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
	}

	var aiClient interfaces.AIClient = unavailableClient{}
	geminiKey, err := common.ResolveAPIKey(ctx, storageManager.InternalStore(), "gemini_api_key", config.Clients.Gemini.APIKey)
	if err != nil {
		logger.Warn().Msg("Gemini API key not configured - AI analysis will be unavailable")
	} else {
		client, err := gemini.NewClient(ctx, geminiKey, gemini.OptionsFromConfig(config.Clients.Gemini, logger)...)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Gemini client")
		} else {
			aiClient = client
		}
	}

	a := New(config, logger, storageManager, cat, aiClient)
	a.StartupTime = startupStart

	logger.Info().
		Int("stocks", len(cat.Stocks())).
		Int("etfs", len(cat.ETFs())).
		Dur("startup", time.Since(startupStart)).
		Msg("App initialized")

	return a, nil
}

// New builds the services on top of already constructed dependencies.
// Tests use it with the memory backend and the fake AI client.
func New(config *common.Config, logger *common.Logger, sm interfaces.StorageManager, cat *catalog.Catalog, ai interfaces.AIClient) *App {
	reg := metrics.NewRegistry()

	quotaService := quota.NewService(sm.QuotaStore(), config.Quota, logger, quota.WithMetrics(reg))
	portfolioService := portfolio.NewService(sm, cat, logger)
	reportService := report.NewService(sm, logger, report.WithMetrics(reg))
	analysisService := analysis.NewService(
		cat, portfolioService, reportService, quotaService, ai,
		config.Clients.Gemini, logger, analysis.WithMetrics(reg),
	)

	mcpServer := server.NewMCPServer(
		"sonagi",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	a := &App{
		Config:           config,
		Logger:           logger,
		Storage:          sm,
		Catalog:          cat,
		Metrics:          reg,
		AIClient:         ai,
		QuotaService:     quotaService,
		PortfolioService: portfolioService,
		ReportService:    reportService,
		AnalysisService:  analysisService,
		MCPServer:        mcpServer,
		StartupTime:      time.Now(),
	}

	a.registerTools()

	return a
}

// Close releases the AI client and storage.
func (a *App) Close() {
	if c, ok := a.AIClient.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close AI client")
		}
	}
	if a.Storage != nil {
		if err := a.Storage.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage")
		}
	}
}
