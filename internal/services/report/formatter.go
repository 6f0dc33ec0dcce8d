package report

import (
	"fmt"
	"strings"

	"github.com/purunsolnp/sonagi-stock/internal/models"
)

// Markdown renders a report for display. Empty sections are skipped.
func Markdown(r *models.Report) string {
	if r == nil {
		return ""
	}
	var sb strings.Builder

	switch r.SubjectType {
	case models.SubjectPortfolio:
		sb.WriteString("# 포트폴리오 분석\n\n")
	default:
		sb.WriteString(fmt.Sprintf("# %s 분석 (%s)\n\n", r.SubjectID, strings.ToUpper(string(r.SubjectType))))
	}
	if r.Style != "" {
		sb.WriteString(fmt.Sprintf("**투자 성향:** %s\n", r.Style))
	}
	if !r.UpdatedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("**분석 일시:** %s\n", r.UpdatedAt.Format("2006-01-02 15:04")))
	}
	sb.WriteString("\n")

	if r.Error != "" {
		sb.WriteString(fmt.Sprintf("> %s\n\n", r.Error))
	}

	switch {
	case r.Instrument != nil:
		formatInstrument(&sb, r.Instrument)
	case r.Portfolio != nil:
		formatPortfolio(&sb, r.Portfolio)
	}

	if r.Error != "" && r.RawText != "" {
		sb.WriteString("## 원문\n\n")
		sb.WriteString(r.RawText)
		sb.WriteString("\n")
	}
	return sb.String()
}

func section(sb *strings.Builder, title, body string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	sb.WriteString(fmt.Sprintf("## %s\n\n%s\n\n", title, body))
}

func formatInstrument(sb *strings.Builder, a *models.InstrumentAnalysis) {
	section(sb, "요약", a.Summary)
	section(sb, "재무 분석", a.Financials)
	section(sb, "산업 분석", a.Industry)

	if a.StyleFit != (models.StyleFit{}) {
		sb.WriteString("## 투자 성향 적합도\n\n")
		sb.WriteString("| 안정형 | 성장형 | 단타형 |\n")
		sb.WriteString("|--------|--------|--------|\n")
		sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n\n",
			formatFit(a.StyleFit.Conservative), formatFit(a.StyleFit.Growth), formatFit(a.StyleFit.Daytrading)))
	}

	if a.Technicals != (models.Technicals{}) {
		sb.WriteString("## 기술적 분석\n\n")
		rows := [][2]string{
			{"이동평균선", a.Technicals.MovingAverage},
			{"MACD", a.Technicals.MACD},
			{"RSI", a.Technicals.RSI},
			{"모멘텀", a.Technicals.Momentum},
			{"추세", a.Technicals.Trend},
		}
		for _, row := range rows {
			if row[1] != "" {
				sb.WriteString(fmt.Sprintf("- **%s:** %s\n", row[0], row[1]))
			}
		}
		sb.WriteString("\n")
	}

	if a.Recommendation != (models.Recommendation{}) {
		sb.WriteString("## 매수/매도 추천\n\n")
		if a.Recommendation.BuyRange != "" {
			sb.WriteString(fmt.Sprintf("- **매수 구간:** %s\n", a.Recommendation.BuyRange))
		}
		if a.Recommendation.SellSuggestion != "" {
			sb.WriteString(fmt.Sprintf("- **매도 제안:** %s\n", a.Recommendation.SellSuggestion))
		}
		sb.WriteString("\n")
	}

	section(sb, "종합 의견", a.Conclusion)
}

func formatPortfolio(sb *strings.Builder, a *models.PortfolioAnalysis) {
	section(sb, "전체 요약", a.Summary)
	section(sb, "비중 확대", strings.Join(a.Overweight, ", "))
	section(sb, "비중 축소", strings.Join(a.Underweight, ", "))
	section(sb, "리밸런싱 전략", a.RebalanceAdvice)
	section(sb, "리스크 분석", a.RiskAnalysis)
	section(sb, "예수금 투자 제안", a.CashSuggestion)
}

func formatFit(ok bool) string {
	if ok {
		return "적합"
	}
	return "-"
}
