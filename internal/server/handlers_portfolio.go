package server

import (
	"net/http"

	"github.com/purunsolnp/sonagi-stock/internal/models"
)

// handlePortfolio handles GET (items with totals) and POST (add) on /api/portfolio.
func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}

	if r.Method == http.MethodPost {
		var input models.AddItemInput
		if !DecodeJSON(w, r, &input) {
			return
		}
		item, err := s.app.PortfolioService.Add(r.Context(), input)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusCreated, item)
		return
	}

	view, err := s.app.PortfolioService.View(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, view)
}

// routePortfolio dispatches /api/portfolio/{id} to update and delete.
func (s *Server) routePortfolio(w http.ResponseWriter, r *http.Request) {
	parts := pathSegments(r, "/api/portfolio/")
	if len(parts) != 1 {
		WriteErrorWithCode(w, http.StatusNotFound, "unknown portfolio route", CodeNotFound)
		return
	}
	id := parts[0]

	switch r.Method {
	case http.MethodGet:
		item, err := s.app.PortfolioService.Get(r.Context(), id)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, item)
	case http.MethodPut:
		var input models.UpdateItemInput
		if !DecodeJSON(w, r, &input) {
			return
		}
		item, err := s.app.PortfolioService.Update(r.Context(), id, input)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, item)
	case http.MethodDelete:
		if err := s.app.PortfolioService.Delete(r.Context(), id); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

// handlePortfolioChart handles GET /api/portfolio/chart and returns a PNG.
func (s *Server) handlePortfolioChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	png, err := s.app.PortfolioService.AllocationChart(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
