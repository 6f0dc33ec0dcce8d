package parser

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/purunsolnp/sonagi-stock/internal/models"
)

// Instrument report fields.
const (
	fieldSummary    = "summary"
	fieldFinancials = "financials"
	fieldIndustry   = "industry"
	fieldStyleFit   = "styleFit"
	fieldTechnicals = "technicals"
	fieldBuy        = "buy"
	fieldSell       = "sell"
	fieldConclusion = "conclusion"
)

// NoSectionsNote is set on reports whose text matched no known section.
const NoSectionsNote = "응답에서 분석 항목을 찾지 못했습니다. 원문을 확인하세요."

// Order matters: the first matching heading wins.
var instrumentHeadings = []Heading{
	{fieldSummary, pattern(`(?:종목\s*|ETF\s*)?(?:요약|개요)`)},
	{fieldFinancials, pattern(`재무\s*분석|배당\s*분석|총보수율|비용\s*및\s*배당`)},
	{fieldIndustry, pattern(`산업\s*분석|섹터\s*(?:비교\s*)?분석|테마\s*분석|구성\s*및\s*전략`)},
	{fieldStyleFit, pattern(`투자\s*스타일|적합한\s*투자자`)},
	{fieldTechnicals, pattern(`기술적\s*분석|차트\s*분석`)},
	{fieldBuy, pattern(`매수\s*(?:구간|타이밍|포인트)|투자\s*추천`)},
	{fieldSell, pattern(`매도\s*(?:타이밍|포인트|고려|시점|가격|전략)`)},
	{fieldConclusion, pattern(`종합\s*(?:의견|평가)|결론|투자\s*제안`)},
}

var (
	priceRange = regexp.MustCompile(`\$[0-9]+(?:\.[0-9]+)?(?:\s*[~-]\s*\$[0-9]+(?:\.[0-9]+)?)?`)

	summaryFallback    = regexp.MustCompile(`(?:요약|개요)[^\n]*\n+([^#]+)`)
	conclusionFallback = regexp.MustCompile(`(?:결론|종합 의견)[^\n]*\n+([^#]+)`)

	movingAverage = regexp.MustCompile(`이동\s*평균|(?i:moving average)|\bMA\b|\bMA\d+\b|\bSMA\b|\bEMA\b`)
)

// ParseInstrument extracts a stock or ETF report from raw AI text. It never
// fails: on internal errors it returns the raw text with Error set.
func ParseInstrument(raw, ticker string, subjectType models.SubjectType) (report *models.Report) {
	now := time.Now()
	report = &models.Report{
		SubjectID:   models.NormalizeTicker(ticker),
		SubjectType: subjectType,
		CreatedAt:   now,
		UpdatedAt:   now,
		Instrument:  &models.InstrumentAnalysis{},
		RawText:     raw,
	}

	defer func() {
		if r := recover(); r != nil {
			report.Instrument = &models.InstrumentAnalysis{}
			report.Error = fmt.Sprintf("응답 파싱 중 오류가 발생했습니다: %v", r)
		}
	}()

	if a, ok := decodeInstrumentJSON(raw); ok {
		report.Instrument = a
		return report
	}

	a := report.Instrument
	scanInstrument(raw, a)

	if a.Summary == "" {
		if m := summaryFallback.FindStringSubmatch(raw); m != nil {
			a.Summary = m[1]
		}
	}
	if a.Conclusion == "" {
		if m := conclusionFallback.FindStringSubmatch(raw); m != nil {
			a.Conclusion = m[1]
		}
	}
	trimInstrument(a)

	if a.Empty() {
		report.Error = NoSectionsNote
	}
	return report
}

func scanInstrument(raw string, a *models.InstrumentAnalysis) {
	var buyText []string
	buyMatched := false

	x := Extractor{
		Headings: instrumentHeadings,
		Strategy: LineScan,
		Handlers: map[string]LineHandler{
			fieldStyleFit: func(l Line) {
				text := l.Text
				if l.Heading {
					text = l.Inline
				}
				applyStyleFit(text, &a.StyleFit)
			},
			fieldTechnicals: func(l Line) {
				text := l.Text
				if l.Heading {
					text = l.Inline
				}
				applyTechnical(text, &a.Technicals)
			},
			fieldBuy: func(l Line) {
				if buyMatched {
					return
				}
				if m := priceRange.FindString(l.Text); m != "" {
					a.Recommendation.BuyRange = m
					buyMatched = true
					return
				}
				text := l.Text
				if l.Heading {
					text = l.Inline
				}
				if text != "" {
					buyText = append(buyText, text)
				}
			},
		},
	}

	sections := x.Extract(raw)
	a.Summary = sections[fieldSummary].Join(" ")
	a.Financials = sections[fieldFinancials].Join(" ")
	a.Industry = sections[fieldIndustry].Join(" ")
	a.Recommendation.SellSuggestion = sections[fieldSell].Join(" ")
	a.Conclusion = sections[fieldConclusion].Join(" ")
	if !buyMatched {
		a.Recommendation.BuyRange = strings.Join(buyText, " ")
	}
}

var (
	affirmTokens = []string{"적합", "추천", "suitable", "recommended"}
	negateTokens = []string{"부적합", "비추천", "않", "unsuitable", "not "}

	// Clauses end at list separators and at sentence ends; a period only
	// counts when followed by space or end so "$1.5" stays whole.
	clauseSplit = regexp.MustCompile(`[,;/|·。!?]|\.(?:\s|$)|다(?:\s|$)`)
)

// applyStyleFit marks a style when a clause names it alongside an
// affirmation and without a negation.
func applyStyleFit(line string, fit *models.StyleFit) {
	for _, clause := range clauseSplit.Split(line, -1) {
		lower := strings.ToLower(clause)
		if !containsAny(lower, affirmTokens) || containsAny(lower, negateTokens) {
			continue
		}
		if containsAny(lower, []string{"안정형", "conservative"}) {
			fit.Conservative = true
		}
		if containsAny(lower, []string{"성장형", "growth"}) {
			fit.Growth = true
		}
		if containsAny(lower, []string{"단타형", "단타", "daytrading", "day trading"}) {
			fit.Daytrading = true
		}
	}
}

// applyTechnical files a line under the first indicator it names. MACD is
// tested before moving averages so "MACD" is never read as "MA".
func applyTechnical(line string, t *models.Technicals) {
	if line == "" {
		return
	}
	switch {
	case strings.Contains(line, "MACD"):
		t.MACD = line
	case strings.Contains(line, "RSI"):
		t.RSI = line
	case movingAverage.MatchString(line):
		t.MovingAverage = line
	case strings.Contains(line, "모멘텀") || strings.Contains(strings.ToLower(line), "momentum"):
		t.Momentum = line
	case strings.Contains(line, "추세") || strings.Contains(strings.ToLower(line), "trend"):
		t.Trend = line
	}
}

func trimInstrument(a *models.InstrumentAnalysis) {
	a.Summary = strings.TrimSpace(a.Summary)
	a.Financials = strings.TrimSpace(a.Financials)
	a.Industry = strings.TrimSpace(a.Industry)
	a.Conclusion = strings.TrimSpace(a.Conclusion)
	a.Recommendation.BuyRange = strings.TrimSpace(a.Recommendation.BuyRange)
	a.Recommendation.SellSuggestion = strings.TrimSpace(a.Recommendation.SellSuggestion)
	a.Technicals.MovingAverage = strings.TrimSpace(a.Technicals.MovingAverage)
	a.Technicals.MACD = strings.TrimSpace(a.Technicals.MACD)
	a.Technicals.RSI = strings.TrimSpace(a.Technicals.RSI)
	a.Technicals.Momentum = strings.TrimSpace(a.Technicals.Momentum)
	a.Technicals.Trend = strings.TrimSpace(a.Technicals.Trend)
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
