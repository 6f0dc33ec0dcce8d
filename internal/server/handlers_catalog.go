package server

import (
	"net/http"

	"github.com/purunsolnp/sonagi-stock/internal/models"
	"github.com/purunsolnp/sonagi-stock/internal/services/filter"
)

// handleCatalogStocks handles GET /api/catalog/stocks. A preset parameter
// replaces the range parameters.
func (s *Server) handleCatalogStocks(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	c := filter.StockCriteriaFromQuery(r.URL.Query())
	if name := r.URL.Query().Get("preset"); name != "" {
		p, err := filter.StockPreset(name)
		if err != nil {
			WriteErrorWithCode(w, http.StatusBadRequest, err.Error(), CodeValidation)
			return
		}
		c = p
	}

	stocks := filter.ApplyFilters(s.app.Catalog.Stocks(), c)
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"criteria": c,
		"count":    len(stocks),
		"stocks":   stocks,
	})
}

// handleCatalogETFs handles GET /api/catalog/etfs.
func (s *Server) handleCatalogETFs(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	c := filter.ETFCriteriaFromQuery(r.URL.Query())
	if name := r.URL.Query().Get("preset"); name != "" {
		p, err := filter.ETFPreset(name)
		if err != nil {
			WriteErrorWithCode(w, http.StatusBadRequest, err.Error(), CodeValidation)
			return
		}
		c = p
	}

	etfs := filter.ApplyFilters(s.app.Catalog.ETFs(), c)
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"criteria": c,
		"count":    len(etfs),
		"etfs":     etfs,
	})
}

// handleCatalogPresets handles GET /api/catalog/presets.
func (s *Server) handleCatalogPresets(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"stock": filter.Presets(models.KindStock),
		"etf":   filter.Presets(models.KindETF),
	})
}

// compareResponse is a comparison plus the requested tickers that the
// active filter hid.
type compareResponse struct {
	filter.Comparison
	Dropped []string `json:"dropped"`
}

// handleCatalogCompare handles POST /api/catalog/compare. The tickers are
// selected against the criteria or preset (the whole catalog when neither
// is given); tickers the filter hides are dropped and reported.
func (s *Server) handleCatalogCompare(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Tickers  []string             `json:"tickers"`
		Preset   string               `json:"preset"`
		Criteria models.StockCriteria `json:"criteria"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if len(req.Tickers) == 0 {
		WriteErrorWithCode(w, http.StatusBadRequest, "tickers are required", CodeValidation)
		return
	}

	session := filter.NewSession(s.app.Catalog.Stocks(), filter.StockPresets())
	if req.Preset != "" {
		if _, err := session.ApplyPreset(req.Preset); err != nil {
			WriteErrorWithCode(w, http.StatusBadRequest, err.Error(), CodeValidation)
			return
		}
	} else {
		session.Apply(req.Criteria)
	}

	ids := make([]string, 0, len(req.Tickers))
	for _, t := range req.Tickers {
		st, ok := s.app.Catalog.Stock(t)
		if !ok {
			WriteErrorWithCode(w, http.StatusBadRequest, "unknown stock ticker: "+t, CodeValidation)
			return
		}
		ids = append(ids, st.ID())
	}
	dropped := session.Select(ids...)

	// display order follows the request
	stocks := make([]models.Stock, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !session.Contains(id) || seen[id] {
			continue
		}
		seen[id] = true
		st, _ := s.app.Catalog.Stock(id)
		stocks = append(stocks, st)
	}

	resp := compareResponse{Comparison: filter.Compare(stocks), Dropped: dropped}
	if resp.Dropped == nil {
		resp.Dropped = []string{}
	}
	WriteJSON(w, http.StatusOK, resp)
}
