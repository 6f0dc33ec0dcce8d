package server

import (
	"net/http"

	"github.com/purunsolnp/sonagi-stock/internal/common"
)

// handleQuota handles GET /api/quota for the caller.
func (s *Server) handleQuota(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	st, err := s.app.QuotaService.Load(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, st)
}

// handleQuotaReset handles POST /api/quota/reset for the caller.
func (s *Server) handleQuotaReset(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	ctx := r.Context()
	if err := s.app.QuotaService.ResetMonthly(ctx, common.ResolveUserID(ctx)); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	st, err := s.app.QuotaService.Load(ctx)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, st)
}

// handleAdminQuotas handles GET /api/admin/quotas.
func (s *Server) handleAdminQuotas(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	statuses, err := s.app.QuotaService.List(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"count":  len(statuses),
		"quotas": statuses,
	})
}

// routeAdminQuotas dispatches /api/admin/quotas/reset-all,
// /api/admin/quotas/{user}/limit and /api/admin/quotas/{user}/reset.
func (s *Server) routeAdminQuotas(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	parts := pathSegments(r, "/api/admin/quotas/")
	switch {
	case len(parts) == 1 && parts[0] == "reset-all":
		s.handleAdminQuotaResetAll(w, r)
	case len(parts) == 2 && parts[1] == "limit":
		s.handleAdminQuotaLimit(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "reset":
		s.handleAdminQuotaReset(w, r, parts[0])
	default:
		WriteErrorWithCode(w, http.StatusNotFound, "unknown quota route", CodeNotFound)
	}
}

func (s *Server) handleAdminQuotaResetAll(w http.ResponseWriter, r *http.Request) {
	count, err := s.app.QuotaService.ResetAll(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"reset": count})
}

func (s *Server) handleAdminQuotaLimit(w http.ResponseWriter, r *http.Request, userID string) {
	var req struct {
		Limit   *int  `json:"limit"`
		Enabled *bool `json:"enabled"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Limit == nil {
		WriteErrorWithCode(w, http.StatusBadRequest, "limit is required", CodeValidation)
		return
	}
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	if err := s.app.QuotaService.SetLimit(r.Context(), userID, *req.Limit, enabled); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"user_id": userID,
		"limit":   *req.Limit,
		"enabled": enabled,
	})
}

func (s *Server) handleAdminQuotaReset(w http.ResponseWriter, r *http.Request, userID string) {
	// ResetMonthly also lets owners reset themselves; this route is admin only
	if !common.IsAdmin(r.Context()) {
		WriteErrorWithCode(w, http.StatusForbidden, "admin role required", CodeForbidden)
		return
	}
	if err := s.app.QuotaService.ResetMonthly(r.Context(), userID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"user_id": userID, "reset": true})
}
