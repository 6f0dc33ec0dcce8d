package server

import (
	"net/http"

	"github.com/purunsolnp/sonagi-stock/internal/interfaces"
)

// handleAnalyzeInstrument handles POST /api/analysis/instrument.
func (s *Server) handleAnalyzeInstrument(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Ticker string `json:"ticker"`
		Style  string `json:"style"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	report, err := s.app.AnalysisService.AnalyzeInstrument(r.Context(), req.Ticker, req.Style)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, report)
}

// handleAnalyzePortfolio handles POST /api/analysis/portfolio.
func (s *Server) handleAnalyzePortfolio(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req interfaces.PortfolioAnalysisRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	report, err := s.app.AnalysisService.AnalyzePortfolio(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, report)
}

// handleRecommendCash handles POST /api/analysis/cash.
func (s *Server) handleRecommendCash(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Style string  `json:"style"`
		Cash  float64 `json:"cash"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	report, err := s.app.AnalysisService.RecommendCash(r.Context(), req.Style, req.Cash)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, report)
}
