// Package catalog holds the read-only stock and ETF universe.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/purunsolnp/sonagi-stock/internal/interfaces"
	"github.com/purunsolnp/sonagi-stock/internal/models"
)

//go:embed catalog.yaml
var seed []byte

// file is the on-disk YAML layout.
type file struct {
	Stocks         []models.Stock                  `yaml:"stocks"`
	ETFs           []models.ETF                    `yaml:"etfs"`
	SectorAverages map[string]models.SectorAverage `yaml:"sector_averages"`
	ThemeAverages  map[string]models.ThemeAverage  `yaml:"theme_averages"`
}

// Catalog is loaded once and never mutated.
type Catalog struct {
	stocks   []models.Stock
	etfs     []models.ETF
	sectors  map[string]models.SectorAverage
	themes   map[string]models.ThemeAverage
	stockIdx map[string]int
	etfIdx   map[string]int
}

var _ interfaces.Catalog = (*Catalog)(nil)

// Load reads the catalog at path, or the embedded seed when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Parse(seed)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Default returns the embedded seed catalog.
func Default() *Catalog {
	c, err := Parse(seed)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return c
}

// Parse decodes and validates catalog YAML. Tickers are canonicalized to
// upper case and must be unique across both collections.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	c := &Catalog{
		stocks:   make([]models.Stock, 0, len(f.Stocks)),
		etfs:     make([]models.ETF, 0, len(f.ETFs)),
		sectors:  f.SectorAverages,
		themes:   f.ThemeAverages,
		stockIdx: make(map[string]int, len(f.Stocks)),
		etfIdx:   make(map[string]int, len(f.ETFs)),
	}
	seen := make(map[string]string)

	for _, s := range f.Stocks {
		s.Ticker = models.NormalizeTicker(s.Ticker)
		if s.Ticker == "" {
			return nil, fmt.Errorf("catalog stock %q has no ticker", s.Name)
		}
		if kind, dup := seen[s.Ticker]; dup {
			return nil, fmt.Errorf("duplicate ticker %s (already a %s)", s.Ticker, kind)
		}
		seen[s.Ticker] = "stock"
		c.stockIdx[s.Ticker] = len(c.stocks)
		c.stocks = append(c.stocks, s)
	}
	for _, e := range f.ETFs {
		e.Ticker = models.NormalizeTicker(e.Ticker)
		if e.Ticker == "" {
			return nil, fmt.Errorf("catalog etf %q has no ticker", e.Name)
		}
		if kind, dup := seen[e.Ticker]; dup {
			return nil, fmt.Errorf("duplicate ticker %s (already a %s)", e.Ticker, kind)
		}
		seen[e.Ticker] = "etf"
		e.TopHoldings = append([]string(nil), e.TopHoldings...)
		c.etfIdx[e.Ticker] = len(c.etfs)
		c.etfs = append(c.etfs, e)
	}

	if c.sectors == nil {
		c.sectors = map[string]models.SectorAverage{}
	}
	if c.themes == nil {
		c.themes = map[string]models.ThemeAverage{}
	}
	return c, nil
}

// Stocks returns a copy of all stocks in catalog order.
func (c *Catalog) Stocks() []models.Stock {
	return append([]models.Stock(nil), c.stocks...)
}

// ETFs returns a copy of all ETFs in catalog order.
func (c *Catalog) ETFs() []models.ETF {
	out := make([]models.ETF, len(c.etfs))
	for i, e := range c.etfs {
		e.TopHoldings = append([]string(nil), e.TopHoldings...)
		out[i] = e
	}
	return out
}

// Stock looks up a stock by ticker, case-insensitively.
func (c *Catalog) Stock(ticker string) (models.Stock, bool) {
	i, ok := c.stockIdx[models.NormalizeTicker(ticker)]
	if !ok {
		return models.Stock{}, false
	}
	return c.stocks[i], true
}

// ETF looks up an ETF by ticker, case-insensitively.
func (c *Catalog) ETF(ticker string) (models.ETF, bool) {
	i, ok := c.etfIdx[models.NormalizeTicker(ticker)]
	if !ok {
		return models.ETF{}, false
	}
	e := c.etfs[i]
	e.TopHoldings = append([]string(nil), e.TopHoldings...)
	return e, true
}

// Lookup resolves a ticker of either kind, stocks first.
func (c *Catalog) Lookup(ticker string) (models.Instrument, bool) {
	if s, ok := c.Stock(ticker); ok {
		return models.Instrument{Kind: models.KindStock, Stock: &s}, true
	}
	if e, ok := c.ETF(ticker); ok {
		return models.Instrument{Kind: models.KindETF, ETF: &e}, true
	}
	return models.Instrument{}, false
}

// Sectors lists distinct stock sectors in first-seen order.
func (c *Catalog) Sectors() []string {
	return distinct(len(c.stocks), func(i int) string { return c.stocks[i].Sector })
}

// Themes lists distinct ETF themes in first-seen order.
func (c *Catalog) Themes() []string {
	return distinct(len(c.etfs), func(i int) string { return c.etfs[i].Theme })
}

func distinct(n int, at func(int) string) []string {
	seen := make(map[string]bool, n)
	out := make([]string, 0)
	for i := 0; i < n; i++ {
		v := strings.TrimSpace(at(i))
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// SectorAverage returns the baseline for a stock sector.
func (c *Catalog) SectorAverage(sector string) (models.SectorAverage, bool) {
	a, ok := c.sectors[sector]
	return a, ok
}

// ThemeAverage returns the baseline for an ETF theme.
func (c *Catalog) ThemeAverage(theme string) (models.ThemeAverage, bool) {
	a, ok := c.themes[theme]
	return a, ok
}
