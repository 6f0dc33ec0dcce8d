package parser

import (
	"encoding/json"
	"strings"

	"github.com/purunsolnp/sonagi-stock/internal/models"
)

// advisory is the JSON shape requested by the instrument prompts. Stock
// and ETF responses use different names for the same slots.
type advisory struct {
	Summary          string         `json:"summary"`
	Financials       string         `json:"financials"`
	Costs            string         `json:"costs"`
	SectorComparison string         `json:"sectorComparison"`
	Composition      string         `json:"composition"`
	Industry         string         `json:"industry"`
	StyleFit         map[string]any `json:"styleFit"`
	Technicals       struct {
		MovingAvg string `json:"movingAvg"`
		MACD      string `json:"macd"`
		RSI       string `json:"rsi"`
		Momentum  string `json:"momentum"`
		Trend     string `json:"trend"`
	} `json:"technicals"`
	Recommendation struct {
		BuyRange       string `json:"buyRange"`
		SellSuggestion string `json:"sellSuggestion"`
	} `json:"recommendation"`
	Conclusion string `json:"conclusion"`
}

// decodeInstrumentJSON reads the outermost {...} block of raw. It only
// succeeds when the object carries a summary or a conclusion.
func decodeInstrumentJSON(raw string) (*models.InstrumentAnalysis, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, false
	}

	var adv advisory
	if err := json.Unmarshal([]byte(raw[start:end+1]), &adv); err != nil {
		return nil, false
	}
	if strings.TrimSpace(adv.Summary) == "" && strings.TrimSpace(adv.Conclusion) == "" {
		return nil, false
	}

	a := &models.InstrumentAnalysis{
		Summary:    adv.Summary,
		Financials: firstNonEmpty(adv.Financials, adv.Costs),
		Industry:   firstNonEmpty(adv.SectorComparison, adv.Composition, adv.Industry),
		Technicals: models.Technicals{
			MovingAverage: adv.Technicals.MovingAvg,
			MACD:          adv.Technicals.MACD,
			RSI:           adv.Technicals.RSI,
			Momentum:      adv.Technicals.Momentum,
			Trend:         adv.Technicals.Trend,
		},
		Recommendation: models.Recommendation{
			BuyRange:       adv.Recommendation.BuyRange,
			SellSuggestion: adv.Recommendation.SellSuggestion,
		},
		Conclusion: adv.Conclusion,
	}
	if m := priceRange.FindString(a.Recommendation.BuyRange); m != "" {
		a.Recommendation.BuyRange = m
	}
	for key, v := range adv.StyleFit {
		if !truthy(v) {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "안정형", "conservative", "stable":
			a.StyleFit.Conservative = true
		case "성장형", "growth":
			a.StyleFit.Growth = true
		case "단타형", "daytrading", "day trading":
			a.StyleFit.Daytrading = true
		}
	}
	trimInstrument(a)
	return a, true
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		return s == "true" || s == "yes" || s == "적합"
	case float64:
		return t != 0
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
