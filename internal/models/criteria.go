package models

import (
	"math"
	"strconv"
	"strings"
)

// Bound is an inclusive numeric range. A nil side is unbounded, so a blank
// minimum never rejects negative values and a blank maximum never rejects
// large ones.
type Bound struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// Contains reports whether v lies within the bound.
func (b Bound) Contains(v float64) bool {
	if b.Min != nil && !math.IsNaN(*b.Min) && v < *b.Min {
		return false
	}
	if b.Max != nil && !math.IsNaN(*b.Max) && v > *b.Max {
		return false
	}
	return true
}

// IsZero reports whether neither side is set.
func (b Bound) IsZero() bool {
	return b.Min == nil && b.Max == nil
}

// Between builds a closed bound.
func Between(min, max float64) Bound {
	return Bound{Min: &min, Max: &max}
}

// AtLeast builds a bound with only a minimum.
func AtLeast(min float64) Bound {
	return Bound{Min: &min}
}

// ParseBound converts raw form text into a Bound. Blank or malformed text
// leaves that side unbounded.
func ParseBound(minText, maxText string) Bound {
	return Bound{Min: parseNumber(minText), Max: parseNumber(maxText)}
}

func parseNumber(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return nil
	}
	return &v
}

// StockCriteria filters the stock catalog. An empty Sector matches all.
type StockCriteria struct {
	PER           Bound  `json:"per"`
	ROE           Bound  `json:"roe"`
	MarketCap     Bound  `json:"market_cap"`
	DividendYield Bound  `json:"dividend_yield"`
	Sector        string `json:"sector,omitempty"`
}

// Match reports whether the stock satisfies every present constraint.
func (c StockCriteria) Match(s Stock) bool {
	if !c.PER.Contains(s.PER) || !c.ROE.Contains(s.ROE) {
		return false
	}
	if !c.MarketCap.Contains(s.MarketCap) || !c.DividendYield.Contains(s.DividendYield) {
		return false
	}
	return c.Sector == "" || s.Sector == c.Sector
}

// ETFCriteria filters the ETF catalog. An empty Theme matches all.
type ETFCriteria struct {
	DividendYield    Bound  `json:"dividend_yield"`
	ExpenseRatio     Bound  `json:"expense_ratio"`
	AUM              Bound  `json:"aum"`
	Theme            string `json:"theme,omitempty"`
	ExcludeLeveraged bool   `json:"exclude_leveraged,omitempty"`
}

// Match reports whether the ETF satisfies every present constraint.
func (c ETFCriteria) Match(e ETF) bool {
	if c.ExcludeLeveraged && e.IsLeveraged {
		return false
	}
	if !c.DividendYield.Contains(e.DividendYield) || !c.ExpenseRatio.Contains(e.ExpenseRatio) {
		return false
	}
	if !c.AUM.Contains(e.AUM) {
		return false
	}
	return c.Theme == "" || e.Theme == c.Theme
}
