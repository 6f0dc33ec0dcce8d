package filter

import (
	"fmt"
	"sort"

	"github.com/purunsolnp/sonagi-stock/internal/models"
)

// Preset names.
const (
	PresetAggressive = "aggressive"
	PresetStable     = "stable"
)

// PresetInfo describes a preset for listings.
type PresetInfo struct {
	Kind  models.InstrumentKind `json:"kind"`
	Name  string                `json:"name"`
	Label string                `json:"label"`
}

var presetLabels = map[string]string{
	PresetAggressive: "공격형 투자자용",
	PresetStable:     "안정형 투자자용",
}

// StockPresets returns fresh copies of the stock presets.
func StockPresets() map[string]models.StockCriteria {
	return map[string]models.StockCriteria{
		// low PER, high ROE
		PresetAggressive: {
			PER:           models.Between(0, 20),
			ROE:           models.Between(20, 1000),
			MarketCap:     models.Between(0, 10000),
			DividendYield: models.Between(0, 10),
		},
		// dividend payers of some size
		PresetStable: {
			PER:           models.Between(0, 25),
			ROE:           models.Between(10, 1000),
			MarketCap:     models.Between(100, 10000),
			DividendYield: models.Between(2.5, 10),
		},
	}
}

// ETFPresets returns fresh copies of the ETF presets.
func ETFPresets() map[string]models.ETFCriteria {
	return map[string]models.ETFCriteria{
		PresetAggressive: {
			DividendYield:    models.Between(0, 5),
			ExpenseRatio:     models.Between(0, 0.5),
			AUM:              models.Between(5000, 1000000),
			Theme:            "Technology",
			ExcludeLeveraged: true,
		},
		PresetStable: {
			DividendYield:    models.Between(3, 10),
			ExpenseRatio:     models.Between(0, 0.2),
			AUM:              models.Between(10000, 1000000),
			Theme:            "Dividend",
			ExcludeLeveraged: true,
		},
	}
}

// StockPreset returns the named stock preset.
func StockPreset(name string) (models.StockCriteria, error) {
	c, ok := StockPresets()[name]
	if !ok {
		return models.StockCriteria{}, fmt.Errorf("stock preset %q: %w", name, models.ErrNotFound)
	}
	return c, nil
}

// ETFPreset returns the named ETF preset.
func ETFPreset(name string) (models.ETFCriteria, error) {
	c, ok := ETFPresets()[name]
	if !ok {
		return models.ETFCriteria{}, fmt.Errorf("etf preset %q: %w", name, models.ErrNotFound)
	}
	return c, nil
}

// Presets lists the presets of kind sorted by name.
func Presets(kind models.InstrumentKind) []PresetInfo {
	var names []string
	switch kind {
	case models.KindStock:
		for n := range StockPresets() {
			names = append(names, n)
		}
	case models.KindETF:
		for n := range ETFPresets() {
			names = append(names, n)
		}
	}
	sort.Strings(names)

	out := make([]PresetInfo, 0, len(names))
	for _, n := range names {
		out = append(out, PresetInfo{Kind: kind, Name: n, Label: presetLabels[n]})
	}
	return out
}
