package filter

import (
	"math"

	"github.com/purunsolnp/sonagi-stock/internal/models"
)

// Comparison summarizes a side-by-side selection of stocks.
type Comparison struct {
	Tickers          []string `json:"tickers"`
	SectorCount      int      `json:"sector_count"`
	AvgPER           float64  `json:"avg_per"`
	AvgROE           float64  `json:"avg_roe"`
	AvgDividendYield float64  `json:"avg_dividend_yield"`
	PERGap           *float64 `json:"per_gap,omitempty"` // first two only
	SameSector       *bool    `json:"same_sector,omitempty"`
	HasValueStock    bool     `json:"has_value_stock"` // any PER below 15
	HasTechnology    bool     `json:"has_technology"`
	Profile          string   `json:"profile"`
}

// Compare computes the comparison for stocks in the given order. An empty
// input yields the zero Comparison.
func Compare(stocks []models.Stock) Comparison {
	var c Comparison
	if len(stocks) == 0 {
		return c
	}

	sectors := make(map[string]struct{})
	var perSum, roeSum, divSum float64
	hasHighDividend, hasHighPER := false, false

	for _, s := range stocks {
		c.Tickers = append(c.Tickers, s.Ticker)
		sectors[s.Sector] = struct{}{}
		perSum += s.PER
		roeSum += s.ROE
		divSum += s.DividendYield
		if s.PER < 15 {
			c.HasValueStock = true
		}
		if s.Sector == "Technology" {
			c.HasTechnology = true
		}
		if s.DividendYield > 3 {
			hasHighDividend = true
		}
		if s.PER > 30 {
			hasHighPER = true
		}
	}

	n := float64(len(stocks))
	c.SectorCount = len(sectors)
	c.AvgPER = round1(perSum / n)
	c.AvgROE = round1(roeSum / n)
	c.AvgDividendYield = round1(divSum / n)

	if len(stocks) > 1 {
		gap := round1(math.Abs(stocks[0].PER - stocks[1].PER))
		same := stocks[0].Sector == stocks[1].Sector
		c.PERGap = &gap
		c.SameSector = &same
	}

	switch {
	case hasHighDividend:
		c.Profile = "배당 수익 중시형"
	case hasHighPER:
		c.Profile = "성장성 중시형"
	default:
		c.Profile = "밸런스형"
	}
	return c
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
