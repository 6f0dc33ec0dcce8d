package portfolio

import (
	"github.com/shopspring/decimal"

	"github.com/purunsolnp/sonagi-stock/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Derive fills CurrentValue, ReturnAmount and ReturnRate from the stored
// price and quantity. Money is rounded to cents; rates are left unrounded
// and rounded only for display.
func Derive(item models.PortfolioItem) models.PortfolioItem {
	qty := decimal.NewFromInt(int64(item.Quantity))
	cost := decimal.NewFromFloat(item.AvgPrice).Mul(qty)
	value := decimal.NewFromFloat(item.CurrentPrice).Mul(qty)
	ret := value.Sub(cost)

	item.CurrentValue = value.Round(2).InexactFloat64()
	item.ReturnAmount = ret.Round(2).InexactFloat64()
	item.ReturnRate = rate(ret, cost)
	return item
}

// Totals aggregates holdings. The return rate is weighted by cost basis and
// is 0 when the cost basis is 0.
func Totals(items []models.PortfolioItem) models.PortfolioTotals {
	cost := decimal.Zero
	value := decimal.Zero
	for _, it := range items {
		qty := decimal.NewFromInt(int64(it.Quantity))
		cost = cost.Add(decimal.NewFromFloat(it.AvgPrice).Mul(qty))
		value = value.Add(decimal.NewFromFloat(it.CurrentPrice).Mul(qty))
	}
	ret := value.Sub(cost)

	return models.PortfolioTotals{
		TotalCost:    cost.Round(2).InexactFloat64(),
		TotalValue:   value.Round(2).InexactFloat64(),
		ReturnAmount: ret.Round(2).InexactFloat64(),
		ReturnRate:   rate(ret, cost),
		Count:        len(items),
	}
}

func rate(ret, cost decimal.Decimal) float64 {
	if cost.IsZero() {
		return 0
	}
	return ret.Div(cost).Mul(hundred).InexactFloat64()
}
