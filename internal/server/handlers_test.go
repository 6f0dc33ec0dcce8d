package server

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purunsolnp/sonagi-stock/internal/models"
)

func TestHealthAndVersion(t *testing.T) {
	h := newHarness(t, 5)

	rec := h.do(t, http.MethodGet, "/api/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))

	rec = h.do(t, http.MethodGet, "/api/version", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "version")

	rec = h.do(t, http.MethodOptions, "/api/catalog/stocks", nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCatalogStocks(t *testing.T) {
	h := newHarness(t, 5)

	rec := h.do(t, http.MethodGet, "/api/catalog/stocks?sector=Healthcare&per_max=30", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Count  int            `json:"count"`
		Stocks []models.Stock `json:"stocks"`
	}
	decode(t, rec, &resp)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "JNJ", resp.Stocks[0].Ticker)

	// malformed bound is open
	rec = h.do(t, http.MethodGet, "/api/catalog/stocks?per_max=abc", nil, "")
	decode(t, rec, &resp)
	assert.Equal(t, len(h.app.Catalog.Stocks()), resp.Count)

	rec = h.do(t, http.MethodGet, "/api/catalog/stocks?preset=nope", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCatalogETFs_Preset(t *testing.T) {
	h := newHarness(t, 5)

	rec := h.do(t, http.MethodGet, "/api/catalog/etfs?preset=stable", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		ETFs []models.ETF `json:"etfs"`
	}
	decode(t, rec, &resp)
	require.NotEmpty(t, resp.ETFs)
	for _, e := range resp.ETFs {
		assert.Equal(t, "Dividend", e.Theme)
		assert.False(t, e.IsLeveraged)
	}

	rec = h.do(t, http.MethodGet, "/api/catalog/presets", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "aggressive")
}

func TestCatalogCompare(t *testing.T) {
	h := newHarness(t, 5)

	rec := h.do(t, http.MethodPost, "/api/catalog/compare", map[string][]string{"tickers": {"aapl", "MSFT"}}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var cmp struct {
		Tickers    []string `json:"tickers"`
		SameSector *bool    `json:"same_sector"`
	}
	decode(t, rec, &cmp)
	assert.Equal(t, []string{"AAPL", "MSFT"}, cmp.Tickers)
	require.NotNil(t, cmp.SameSector)
	assert.True(t, *cmp.SameSector)

	rec = h.do(t, http.MethodPost, "/api/catalog/compare", map[string][]string{"tickers": {"ZZZZ"}}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/catalog/compare", map[string][]string{}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCatalogCompare_PrunesTickersOutsideFilter(t *testing.T) {
	h := newHarness(t, 5)

	body := map[string]interface{}{
		"tickers":  []string{"AAPL", "jnj"},
		"criteria": map[string]string{"sector": "Healthcare"},
	}
	rec := h.do(t, http.MethodPost, "/api/catalog/compare", body, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var cmp struct {
		Tickers []string `json:"tickers"`
		Dropped []string `json:"dropped"`
	}
	decode(t, rec, &cmp)
	assert.Equal(t, []string{"JNJ"}, cmp.Tickers)
	assert.Equal(t, []string{"AAPL"}, cmp.Dropped)

	rec = h.do(t, http.MethodPost, "/api/catalog/compare", map[string]interface{}{"tickers": []string{"AAPL"}, "preset": "nope"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeInstrument_SavesReport(t *testing.T) {
	h := newHarness(t, 5)
	token := h.register(t, "kim@example.com")

	rec := h.do(t, http.MethodPost, "/api/analysis/instrument", map[string]string{"ticker": "aapl", "style": "growth"}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var rep models.Report
	decode(t, rec, &rep)
	assert.Equal(t, "AAPL", rep.SubjectID)
	require.NotNil(t, rep.Instrument)
	assert.Equal(t, "$170~$175", rep.Instrument.Recommendation.BuyRange)

	rec = h.do(t, http.MethodGet, "/api/reports/stock/AAPL", nil, token)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/reports/stock/AAPL?format=markdown", nil, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/markdown"))
	assert.Contains(t, rec.Body.String(), "# AAPL")

	rec = h.do(t, http.MethodGet, "/api/reports/stock/AAPL/history", nil, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":1`)

	rec = h.do(t, http.MethodGet, "/api/reports/recent?n=3", nil, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "AAPL")

	rec = h.do(t, http.MethodGet, "/api/reports?type=etf", nil, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":0`)

	// reports are per user
	other := h.register(t, "lee@example.com")
	rec = h.do(t, http.MethodGet, "/api/reports/stock/AAPL", nil, other)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/reports/bond/AAPL", nil, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeInstrument_QuotaExceeded(t *testing.T) {
	h := newHarness(t, 1)
	token := h.register(t, "kim@example.com")

	rec := h.do(t, http.MethodPost, "/api/analysis/instrument", map[string]string{"ticker": "MSFT"}, token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/analysis/instrument", map[string]string{"ticker": "MSFT"}, token)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	var body QuotaErrorResponse
	decode(t, rec, &body)
	assert.Equal(t, CodeQuotaExceeded, body.Code)
	assert.Equal(t, 1, body.Usage)
	assert.Equal(t, 1, body.Limit)
	assert.Equal(t, 1, h.ai.Calls(), "denied call must not reach the provider")
}

func TestAnalyzeInstrument_Errors(t *testing.T) {
	h := newHarness(t, 5)
	token := h.register(t, "kim@example.com")

	rec := h.do(t, http.MethodPost, "/api/analysis/instrument", map[string]string{"ticker": "ZZZZ"}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	h.ai.Err = errors.New("upstream 503")
	rec = h.do(t, http.MethodPost, "/api/analysis/instrument", map[string]string{"ticker": "AAPL"}, token)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), CodeProvider)

	rec = h.do(t, http.MethodGet, "/api/quota", nil, token)
	var st models.QuotaStatus
	decode(t, rec, &st)
	assert.Equal(t, 0, st.Usage, "provider failure must not consume quota")

	rec = h.do(t, http.MethodPost, "/api/analysis/instrument", "not an object", token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPortfolioRoutes(t *testing.T) {
	h := newHarness(t, 5)
	token := h.register(t, "kim@example.com")

	rec := h.do(t, http.MethodPost, "/api/portfolio", models.AddItemInput{Ticker: "aapl", AvgPrice: 100, Quantity: 10}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var item models.PortfolioItem
	decode(t, rec, &item)
	assert.Equal(t, "AAPL", item.Ticker)

	rec = h.do(t, http.MethodPost, "/api/portfolio", models.AddItemInput{Ticker: "AAPL", AvgPrice: 1, Quantity: 1}, token)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/portfolio", models.AddItemInput{Ticker: "SCHD", AvgPrice: 0, Quantity: 1}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	price := 110.0
	rec = h.do(t, http.MethodPut, "/api/portfolio/"+item.ID, models.UpdateItemInput{CurrentPrice: &price}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &item)
	assert.Equal(t, 1100.0, item.CurrentValue)
	assert.Equal(t, 10.0, item.ReturnRate)

	rec = h.do(t, http.MethodGet, "/api/portfolio", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var view models.PortfolioView
	decode(t, rec, &view)
	assert.Equal(t, 1, view.Totals.Count)
	assert.Equal(t, 100.0, view.Totals.ReturnAmount)

	rec = h.do(t, http.MethodGet, "/api/portfolio/chart", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "\x89PNG"))

	rec = h.do(t, http.MethodDelete, "/api/portfolio/"+item.ID, nil, token)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = h.do(t, http.MethodDelete, "/api/portfolio/"+item.ID, nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/portfolio/chart", nil, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "empty portfolio has no chart")
}

func TestPortfolioAnalysisAndCash(t *testing.T) {
	h := newHarness(t, 5)
	token := h.register(t, "kim@example.com")

	rec := h.do(t, http.MethodGet, "/api/portfolio/report", nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/analysis/portfolio", map[string]string{"style": "stable"}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "empty portfolio")

	h.do(t, http.MethodPost, "/api/portfolio", models.AddItemInput{Ticker: "AAPL", AvgPrice: 150, Quantity: 5}, token)
	h.do(t, http.MethodPost, "/api/portfolio", models.AddItemInput{Ticker: "SCHD", AvgPrice: 25, Quantity: 40}, token)

	rec = h.do(t, http.MethodPost, "/api/analysis/portfolio", map[string]string{"style": "stable"}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.do(t, http.MethodPost, "/api/analysis/cash", map[string]interface{}{"style": "stable", "cash": 0}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/analysis/cash", map[string]interface{}{"style": "stable", "cash": 1000000}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.do(t, http.MethodGet, "/api/portfolio/report", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var rep models.Report
	decode(t, rec, &rep)
	require.NotNil(t, rep.Portfolio)
	assert.Contains(t, rep.Portfolio.Overweight, "AAPL")
	assert.Contains(t, rep.Portfolio.CashSuggestion, "SCHD")

	rec = h.do(t, http.MethodGet, "/api/portfolio/report/history", nil, token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestQuotaRoutes(t *testing.T) {
	h := newHarness(t, 3)
	admin := h.register(t, "admin@example.com")
	user := h.register(t, "kim@example.com")

	h.do(t, http.MethodPost, "/api/analysis/instrument", map[string]string{"ticker": "AAPL"}, user)
	rec := h.do(t, http.MethodGet, "/api/quota", nil, user)
	var st models.QuotaStatus
	decode(t, rec, &st)
	assert.Equal(t, 1, st.Usage)
	assert.Equal(t, 2, st.Remaining)

	rec = h.do(t, http.MethodPost, "/api/quota/reset", nil, user)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &st)
	assert.Equal(t, 0, st.Usage)
	userID := st.UserID

	// non-admin is refused on every admin route
	assert.Equal(t, http.StatusForbidden, h.do(t, http.MethodGet, "/api/admin/quotas", nil, user).Code)
	assert.Equal(t, http.StatusForbidden, h.do(t, http.MethodPost, "/api/admin/quotas/reset-all", nil, user).Code)
	assert.Equal(t, http.StatusForbidden, h.do(t, http.MethodPost, "/api/admin/quotas/"+userID+"/reset", nil, user).Code)
	assert.Equal(t, http.StatusForbidden, h.do(t, http.MethodPost, "/api/admin/quotas/"+userID+"/limit", map[string]int{"limit": 99}, user).Code)

	rec = h.do(t, http.MethodPost, "/api/admin/quotas/"+userID+"/limit", map[string]interface{}{"limit": 10, "enabled": true}, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.do(t, http.MethodGet, "/api/quota", nil, user)
	decode(t, rec, &st)
	assert.Equal(t, 10, st.Limit)

	rec = h.do(t, http.MethodPost, "/api/admin/quotas/"+userID+"/limit", map[string]interface{}{"enabled": false}, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "limit is required")

	rec = h.do(t, http.MethodGet, "/api/admin/quotas", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), userID)

	rec = h.do(t, http.MethodPost, "/api/admin/quotas/reset-all", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/admin/quotas/"+userID+"/reset", nil, admin)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/admin/quotas/"+userID+"/bogus", nil, admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHarness(t, 5)
	h.do(t, http.MethodGet, "/api/health", nil, "")

	rec := h.do(t, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sonagi_http_requests_total")
}
