package models

import "time"

// PortfolioItem is one holding. CurrentValue, ReturnAmount and ReturnRate
// are derived on every read and never trusted from storage.
type PortfolioItem struct {
	ID             string    `json:"id"`
	Ticker         string    `json:"ticker"`
	Name           string    `json:"name"`
	AvgPrice       float64   `json:"avg_price"`
	Quantity       int       `json:"quantity"`
	CurrentPrice   float64   `json:"current_price"`
	IsETF          bool      `json:"is_etf"`
	Classification string    `json:"classification"`
	HasDividend    bool      `json:"has_dividend"`
	DividendYield  float64   `json:"dividend_yield"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	CurrentValue float64 `json:"current_value"`
	ReturnAmount float64 `json:"return_amount"`
	ReturnRate   float64 `json:"return_rate"` // percent
}

// CostBasis is the average price times quantity.
func (p PortfolioItem) CostBasis() float64 {
	return p.AvgPrice * float64(p.Quantity)
}

// AddItemInput is the payload for adding a holding.
type AddItemInput struct {
	Ticker   string  `json:"ticker"`
	AvgPrice float64 `json:"avg_price"`
	Quantity int     `json:"quantity"`
}

// UpdateItemInput carries the fields to merge into an existing holding.
// Nil fields are left unchanged.
type UpdateItemInput struct {
	AvgPrice     *float64 `json:"avg_price,omitempty"`
	Quantity     *int     `json:"quantity,omitempty"`
	CurrentPrice *float64 `json:"current_price,omitempty"`
}

// PortfolioTotals aggregates a set of holdings.
type PortfolioTotals struct {
	TotalCost    float64 `json:"total_cost"`
	TotalValue   float64 `json:"total_value"`
	ReturnAmount float64 `json:"return_amount"`
	ReturnRate   float64 `json:"return_rate"` // percent, 0 when cost basis is 0
	Count        int     `json:"count"`
}

// PortfolioView is a listing with its totals.
type PortfolioView struct {
	Items  []PortfolioItem `json:"items"`
	Totals PortfolioTotals `json:"totals"`
}
