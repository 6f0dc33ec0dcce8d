package models

import "strings"

// InstrumentKind distinguishes the two catalogs.
type InstrumentKind string

const (
	KindStock InstrumentKind = "stock"
	KindETF   InstrumentKind = "etf"
)

// ParseKind accepts "stock"/"stocks"/"etf"/"etfs" in any case.
func ParseKind(s string) (InstrumentKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stock", "stocks":
		return KindStock, true
	case "etf", "etfs":
		return KindETF, true
	}
	return "", false
}

// Stock is a read-only stock catalog record. MarketCap is in USD billions.
type Stock struct {
	Ticker        string  `json:"ticker" yaml:"ticker"`
	Name          string  `json:"name" yaml:"name"`
	Sector        string  `json:"sector" yaml:"sector"`
	Industry      string  `json:"industry" yaml:"industry"`
	Price         float64 `json:"price" yaml:"price"`
	PER           float64 `json:"per" yaml:"per"`
	ROE           float64 `json:"roe" yaml:"roe"`
	DividendYield float64 `json:"dividend_yield" yaml:"dividend_yield"`
	MarketCap     float64 `json:"market_cap" yaml:"market_cap"`
	Beta          float64 `json:"beta" yaml:"beta"`
}

// ID returns the canonical identifier.
func (s Stock) ID() string { return s.Ticker }

// ETF is a read-only ETF catalog record. AUM is in USD millions and
// ExpenseRatio is a percentage.
type ETF struct {
	Ticker        string   `json:"ticker" yaml:"ticker"`
	Name          string   `json:"name" yaml:"name"`
	Theme         string   `json:"theme" yaml:"theme"`
	Price         float64  `json:"price" yaml:"price"`
	DividendYield float64  `json:"dividend_yield" yaml:"dividend_yield"`
	ExpenseRatio  float64  `json:"expense_ratio" yaml:"expense_ratio"`
	AUM           float64  `json:"aum" yaml:"aum"`
	IsLeveraged   bool     `json:"is_leveraged" yaml:"is_leveraged"`
	TopHoldings   []string `json:"top_holdings" yaml:"top_holdings"`
}

// ID returns the canonical identifier.
func (e ETF) ID() string { return e.Ticker }

// SectorAverage holds the comparison baseline for one stock sector.
type SectorAverage struct {
	PER           float64 `json:"per" yaml:"per"`
	ROE           float64 `json:"roe" yaml:"roe"`
	DividendYield float64 `json:"dividend_yield" yaml:"dividend_yield"`
	MarketCap     float64 `json:"market_cap" yaml:"market_cap"`
}

// ThemeAverage holds the comparison baseline for one ETF theme.
type ThemeAverage struct {
	DividendYield float64 `json:"dividend_yield" yaml:"dividend_yield"`
	ExpenseRatio  float64 `json:"expense_ratio" yaml:"expense_ratio"`
	AUM           float64 `json:"aum" yaml:"aum"`
}

// Instrument is the catalog lookup result for a ticker of either kind.
type Instrument struct {
	Kind  InstrumentKind
	Stock *Stock
	ETF   *ETF
}

// Ticker returns the canonical ticker of whichever record is set.
func (i Instrument) Ticker() string {
	if i.Stock != nil {
		return i.Stock.Ticker
	}
	if i.ETF != nil {
		return i.ETF.Ticker
	}
	return ""
}

// NormalizeTicker canonicalizes a ticker to trimmed upper case.
func NormalizeTicker(t string) string {
	return strings.ToUpper(strings.TrimSpace(t))
}
