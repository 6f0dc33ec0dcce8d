package models

import "time"

// SubjectType tags what a Report describes.
type SubjectType string

const (
	SubjectStock     SubjectType = "stock"
	SubjectETF       SubjectType = "etf"
	SubjectPortfolio SubjectType = "portfolio"
)

// Valid reports whether t is a known subject type.
func (t SubjectType) Valid() bool {
	switch t {
	case SubjectStock, SubjectETF, SubjectPortfolio:
		return true
	}
	return false
}

// SubjectTypeFor maps a catalog kind onto a report subject type.
func SubjectTypeFor(kind InstrumentKind) SubjectType {
	if kind == KindETF {
		return SubjectETF
	}
	return SubjectStock
}

// Report is one AI-derived analysis. Exactly one of Instrument or Portfolio
// is set, selected by SubjectType; the other is null in JSON.
type Report struct {
	SubjectID   string              `json:"subject_id"`
	SubjectType SubjectType         `json:"subject_type"`
	Style       string              `json:"style,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	Instrument  *InstrumentAnalysis `json:"instrument"`
	Portfolio   *PortfolioAnalysis  `json:"portfolio"`
	RawText     string              `json:"raw_text"`
	Error       string              `json:"error,omitempty"`
}

// StyleFit records which investor styles the analysis marked suitable.
type StyleFit struct {
	Conservative bool `json:"conservative"`
	Growth       bool `json:"growth"`
	Daytrading   bool `json:"daytrading"`
}

// Technicals holds one note per indicator. Momentum and Trend are only
// filled for ETFs.
type Technicals struct {
	MovingAverage string `json:"moving_average"`
	MACD          string `json:"macd"`
	RSI           string `json:"rsi"`
	Momentum      string `json:"momentum,omitempty"`
	Trend         string `json:"trend,omitempty"`
}

// Recommendation is the buy/sell pair.
type Recommendation struct {
	BuyRange       string `json:"buy_range"`
	SellSuggestion string `json:"sell_suggestion"`
}

// InstrumentAnalysis holds the narrative fields of a stock or ETF report.
type InstrumentAnalysis struct {
	Summary        string         `json:"summary"`
	Financials     string         `json:"financials"`
	Industry       string         `json:"industry"`
	StyleFit       StyleFit       `json:"style_fit"`
	Technicals     Technicals     `json:"technicals"`
	Recommendation Recommendation `json:"recommendation"`
	Conclusion     string         `json:"conclusion"`
}

// Empty reports whether no narrative field was extracted.
func (a *InstrumentAnalysis) Empty() bool {
	if a == nil {
		return true
	}
	return a.Summary == "" && a.Financials == "" && a.Industry == "" &&
		a.StyleFit == (StyleFit{}) && a.Technicals == (Technicals{}) &&
		a.Recommendation == (Recommendation{}) && a.Conclusion == ""
}

// PortfolioAnalysis holds the narrative fields of a portfolio report.
type PortfolioAnalysis struct {
	Summary         string   `json:"summary"`
	Overweight      []string `json:"overweight"`
	Underweight     []string `json:"underweight"`
	RebalanceAdvice string   `json:"rebalance_advice"`
	RiskAnalysis    string   `json:"risk_analysis"`
	CashSuggestion  string   `json:"cash_suggestion,omitempty"`
}

// Empty reports whether no portfolio field was extracted.
func (a *PortfolioAnalysis) Empty() bool {
	if a == nil {
		return true
	}
	return a.Summary == "" && len(a.Overweight) == 0 && len(a.Underweight) == 0 &&
		a.RebalanceAdvice == "" && a.RiskAnalysis == "" && a.CashSuggestion == ""
}
