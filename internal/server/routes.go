package server

import (
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/purunsolnp/sonagi-stock/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.Handle("/metrics", s.app.Metrics.Handler())

	// MCP over Streamable HTTP; tools see the bearer user through the request context
	mux.Handle("/mcp", mcpserver.NewStreamableHTTPServer(s.app.MCPServer,
		mcpserver.WithStateLess(true),
	))

	// Auth
	mux.HandleFunc("/api/auth/login", s.handleAuthLogin)
	mux.HandleFunc("/api/users", s.handleUserCreate)

	// Catalog
	mux.HandleFunc("/api/catalog/stocks", s.handleCatalogStocks)
	mux.HandleFunc("/api/catalog/etfs", s.handleCatalogETFs)
	mux.HandleFunc("/api/catalog/presets", s.handleCatalogPresets)
	mux.HandleFunc("/api/catalog/compare", s.handleCatalogCompare)

	// Analysis
	mux.HandleFunc("/api/analysis/instrument", s.handleAnalyzeInstrument)
	mux.HandleFunc("/api/analysis/portfolio", s.handleAnalyzePortfolio)
	mux.HandleFunc("/api/analysis/cash", s.handleRecommendCash)

	// Reports
	mux.HandleFunc("/api/reports/", s.routeReports)
	mux.HandleFunc("/api/reports", s.handleReportList)

	// Portfolio
	mux.HandleFunc("/api/portfolio/report/history", s.handlePortfolioReportHistory)
	mux.HandleFunc("/api/portfolio/report", s.handlePortfolioReport)
	mux.HandleFunc("/api/portfolio/chart", s.handlePortfolioChart)
	mux.HandleFunc("/api/portfolio/", s.routePortfolio)
	mux.HandleFunc("/api/portfolio", s.handlePortfolio)

	// Quota
	mux.HandleFunc("/api/quota/reset", s.handleQuotaReset)
	mux.HandleFunc("/api/quota", s.handleQuota)

	// Admin
	mux.HandleFunc("/api/admin/quotas/", s.routeAdminQuotas)
	mux.HandleFunc("/api/admin/quotas", s.handleAdminQuotas)
}

// handleHealth responds to GET/HEAD /api/health with {"status":"ok"}.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleVersion responds to GET/HEAD /api/version with build info.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
		"uptime":  time.Since(s.app.StartupTime).Round(time.Second).String(),
	})
}
