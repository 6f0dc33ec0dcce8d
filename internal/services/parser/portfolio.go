package parser

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/purunsolnp/sonagi-stock/internal/models"
)

// PortfolioSubjectID identifies the single per-user portfolio report.
const PortfolioSubjectID = "PORTFOLIO"

const (
	fieldOverweight  = "overweight"
	fieldUnderweight = "underweight"
	fieldRebalance   = "rebalance"
	fieldRisk        = "risk"
	fieldCash        = "cash"
)

var portfolioHeadings = []Heading{
	{fieldSummary, pattern(`(?:포트폴리오\s*)?요약\s*분석|(?:포트폴리오\s*)?종합\s*분석`)},
	{fieldOverweight, pattern(`과대\s*비중`)},
	{fieldUnderweight, pattern(`과소\s*비중`)},
	{fieldRebalance, pattern(`리밸런싱`)},
	{fieldRisk, pattern(`리스크\s*분석`)},
	{fieldCash, pattern(`예수금\s*투자\s*(?:제안|추천)`)},
}

var (
	tickerWord   = regexp.MustCompile(`^[A-Z][A-Z0-9]{0,5}(?:[.\-][A-Z0-9]{1,2})?`)
	placeholders = map[string]bool{"없음": true, "N/A": true, "NONE": true, "-": true, "": true}
)

// ParsePortfolio extracts a portfolio report from raw AI text. Like
// ParseInstrument it never fails.
func ParsePortfolio(raw string) (report *models.Report) {
	now := time.Now()
	report = &models.Report{
		SubjectID:   PortfolioSubjectID,
		SubjectType: models.SubjectPortfolio,
		CreatedAt:   now,
		UpdatedAt:   now,
		Portfolio:   emptyPortfolio(),
		RawText:     raw,
	}

	defer func() {
		if r := recover(); r != nil {
			report.Portfolio = emptyPortfolio()
			report.Error = fmt.Sprintf("응답 파싱 중 오류가 발생했습니다: %v", r)
		}
	}()

	x := Extractor{Headings: portfolioHeadings, Strategy: Region}
	sections := x.Extract(raw)

	p := report.Portfolio
	p.Summary = sections[fieldSummary].Join("\n")
	p.Overweight = ParseTickerList(sections[fieldOverweight].First())
	p.Underweight = ParseTickerList(sections[fieldUnderweight].First())
	p.RebalanceAdvice = sections[fieldRebalance].Join("\n")
	p.RiskAnalysis = sections[fieldRisk].Join("\n")
	p.CashSuggestion = sections[fieldCash].Join("\n")

	if p.Empty() {
		report.Error = NoSectionsNote
	}
	return report
}

// ParseCash wraps a standalone cash recommendation as a portfolio report
// whose only field is the cash suggestion.
func ParseCash(raw string) *models.Report {
	report := ParsePortfolio(raw)
	if report.Portfolio.CashSuggestion == "" {
		report.Portfolio.CashSuggestion = strings.TrimSpace(raw)
	}
	if report.Portfolio.CashSuggestion != "" {
		report.Error = ""
	}
	return report
}

// ParseTickerList splits a comma separated ticker line. Bullets and
// placeholder tokens are dropped and tickers are upper-cased and deduplicated.
func ParseTickerList(line string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, part := range strings.FieldsFunc(line, func(r rune) bool { return r == ',' || r == '、' || r == '，' }) {
		token := strings.ToUpper(strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(part), "-*•·")))
		if placeholders[token] {
			continue
		}
		ticker := tickerWord.FindString(token)
		if ticker == "" || placeholders[ticker] || seen[ticker] {
			continue
		}
		seen[ticker] = true
		out = append(out, ticker)
	}
	return out
}

func emptyPortfolio() *models.PortfolioAnalysis {
	return &models.PortfolioAnalysis{Overweight: []string{}, Underweight: []string{}}
}
