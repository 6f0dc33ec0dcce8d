package server

import (
	"net/http"
	"strings"

	"github.com/purunsolnp/sonagi-stock/internal/models"
	"github.com/purunsolnp/sonagi-stock/internal/services/report"
)

// handleReportList handles GET /api/reports?type=stock|etf.
func (s *Server) handleReportList(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	t := models.SubjectType(strings.ToLower(r.URL.Query().Get("type")))
	reports, err := s.app.ReportService.ListReports(r.Context(), t)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(reports),
		"reports": reports,
	})
}

// routeReports dispatches /api/reports/recent, /api/reports/{type}/{ticker}
// and /api/reports/{type}/{ticker}/history.
func (s *Server) routeReports(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	parts := pathSegments(r, "/api/reports/")
	switch {
	case len(parts) == 0:
		s.handleReportList(w, r)
	case len(parts) == 1 && parts[0] == "recent":
		s.handleReportRecent(w, r)
	case len(parts) == 2:
		s.handleReportGet(w, r, parts[0], parts[1])
	case len(parts) == 3 && parts[2] == "history":
		s.handleReportHistory(w, r, parts[0], parts[1])
	default:
		WriteErrorWithCode(w, http.StatusNotFound, "unknown report route", CodeNotFound)
	}
}

func (s *Server) handleReportRecent(w http.ResponseWriter, r *http.Request) {
	reports, err := s.app.ReportService.RecentReports(r.Context(), queryInt(r, "n", report.DefaultRecent))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(reports),
		"reports": reports,
	})
}

// instrumentSubject accepts stock and etf; portfolio reports have their own route.
func instrumentSubject(w http.ResponseWriter, raw string) (models.SubjectType, bool) {
	t := models.SubjectType(strings.ToLower(raw))
	if t != models.SubjectStock && t != models.SubjectETF {
		WriteErrorWithCode(w, http.StatusBadRequest, "report type must be stock or etf", CodeValidation)
		return "", false
	}
	return t, true
}

func (s *Server) handleReportGet(w http.ResponseWriter, r *http.Request, rawType, ticker string) {
	t, ok := instrumentSubject(w, rawType)
	if !ok {
		return
	}

	rep, err := s.app.ReportService.GetReport(r.Context(), t, ticker)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if r.URL.Query().Get("format") == "markdown" {
		writeMarkdown(w, report.Markdown(rep))
		return
	}
	WriteJSON(w, http.StatusOK, rep)
}

func (s *Server) handleReportHistory(w http.ResponseWriter, r *http.Request, rawType, ticker string) {
	t, ok := instrumentSubject(w, rawType)
	if !ok {
		return
	}

	reports, err := s.app.ReportService.History(r.Context(), t, ticker, queryInt(r, "n", 0))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(reports),
		"reports": reports,
	})
}

// handlePortfolioReport handles GET /api/portfolio/report.
func (s *Server) handlePortfolioReport(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	rep, err := s.app.ReportService.GetPortfolioReport(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if r.URL.Query().Get("format") == "markdown" {
		writeMarkdown(w, report.Markdown(rep))
		return
	}
	WriteJSON(w, http.StatusOK, rep)
}

// handlePortfolioReportHistory handles GET /api/portfolio/report/history.
func (s *Server) handlePortfolioReportHistory(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	reports, err := s.app.ReportService.PortfolioHistory(r.Context(), queryInt(r, "n", 0))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(reports),
		"reports": reports,
	})
}

func writeMarkdown(w http.ResponseWriter, md string) {
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(md))
}
