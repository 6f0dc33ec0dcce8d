// Package filter applies range and category criteria to the catalog and
// tracks the analysis selection.
package filter

import (
	"net/url"
	"strings"

	"github.com/purunsolnp/sonagi-stock/internal/models"
)

// Criteria is a predicate over catalog records.
type Criteria[T any] interface {
	Match(item T) bool
}

// ApplyFilters returns the items accepted by c, in input order.
func ApplyFilters[T any, C Criteria[T]](items []T, c C) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if c.Match(item) {
			out = append(out, item)
		}
	}
	return out
}

// StockCriteriaFromQuery reads per_min, per_max, roe_min, roe_max,
// market_cap_min, market_cap_max, dividend_min, dividend_max and sector.
// Missing or malformed numbers leave that bound open.
func StockCriteriaFromQuery(q url.Values) models.StockCriteria {
	return models.StockCriteria{
		PER:           models.ParseBound(q.Get("per_min"), q.Get("per_max")),
		ROE:           models.ParseBound(q.Get("roe_min"), q.Get("roe_max")),
		MarketCap:     models.ParseBound(q.Get("market_cap_min"), q.Get("market_cap_max")),
		DividendYield: models.ParseBound(q.Get("dividend_min"), q.Get("dividend_max")),
		Sector:        strings.TrimSpace(q.Get("sector")),
	}
}

// ETFCriteriaFromQuery reads dividend_min, dividend_max, expense_min,
// expense_max, aum_min, aum_max, theme and exclude_leveraged.
func ETFCriteriaFromQuery(q url.Values) models.ETFCriteria {
	return models.ETFCriteria{
		DividendYield:    models.ParseBound(q.Get("dividend_min"), q.Get("dividend_max")),
		ExpenseRatio:     models.ParseBound(q.Get("expense_min"), q.Get("expense_max")),
		AUM:              models.ParseBound(q.Get("aum_min"), q.Get("aum_max")),
		Theme:            strings.TrimSpace(q.Get("theme")),
		ExcludeLeveraged: parseFlag(q.Get("exclude_leveraged")),
	}
}

func parseFlag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
