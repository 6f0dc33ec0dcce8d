package prompt

import (
	"fmt"
	"strings"

	"github.com/purunsolnp/sonagi-stock/internal/models"
)

const rule = "-------------------------------------------------------------------"

// BuildStockPrompt renders the analysis request for one stock. A nil or
// zero avg omits every sector comparison clause.
func BuildStockPrompt(s models.Stock, avg *models.SectorAverage, style Style) models.Prompt {
	var base models.SectorAverage
	if avg != nil {
		base = *avg
	}
	label := style.InstrumentLabel()

	var sb strings.Builder
	sb.WriteString("안녕하세요! 당신은 주식 분석에 전문성을 갖춘 투자 애널리스트입니다. 아래 주어진 종목 정보와 지침에 따라 전문적인 분석 보고서를 작성해주세요.\n\n")
	sb.WriteString(fmt.Sprintf("분석 대상 종목: %s (%s)\n%s\n", s.Ticker, s.Name, rule))
	sb.WriteString(fmt.Sprintf("• 섹터: %s\n", orUnknown(s.Sector)))
	sb.WriteString(fmt.Sprintf("• 산업: %s\n", orUnknown(s.Industry)))
	sb.WriteString(fmt.Sprintf("• 시가총액: %s\n", formatMarketCap(s.MarketCap)))
	sb.WriteString(fmt.Sprintf("• 현재가: %s\n", numberOrUnknown(s.Price, "$%.2f")))
	sb.WriteString(fmt.Sprintf("• PER: %s%s\n", numberOrUnknown(s.PER, "%.1f"), compareClause("섹터", s.PER, base.PER, "%.1f")))
	sb.WriteString(fmt.Sprintf("• ROE: %s%s\n", numberOrUnknown(s.ROE, "%.1f%%"), compareClause("섹터", s.ROE, base.ROE, "%.1f%%")))
	sb.WriteString(fmt.Sprintf("• 배당률: %s%s\n", numberOrUnknown(s.DividendYield, "%.2f%%"), compareClause("섹터", s.DividendYield, base.DividendYield, "%.2f%%")))
	sb.WriteString(fmt.Sprintf("• 베타: %s\n\n", numberOrUnknown(s.Beta, "%.2f")))

	sb.WriteString(fmt.Sprintf("투자 성향: %s\n%s\n", label, rule))
	sb.WriteString(stockGuidelines(style, s, base))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf(`분석 보고서는 다음과 같은 구조로 작성해 주세요:
1. 요약: 종목의 전반적인 특징과 투자 가치를 간략히 설명

2. 재무 분석:
   - PER, ROE 등의 주요 재무지표 해석
   - 해당 지표가 투자 가치에 어떤 의미를 갖는지 설명

3. 섹터 비교 분석:
   - 이 종목의 지표가 섹터 평균과 비교해 어떤 의미를 갖는지
   - 경쟁사 대비 강점과 약점

4. 기술적 분석:
   - 이동평균선 상황 (골든크로스/데드크로스 등)
   - MACD 지표 분석
   - RSI 과매수/과매도 상황

5. 투자 추천:
   - 적정 매수 가격대 ($가격~$가격 형식)
   - 매도 고려 시점 또는 가격대
   - %[1]s 투자자에게 적합한 투자 전략

6. 종합 평가:
   - %[1]s 투자자에게 이 종목이 적합한지 명확히 평가
   - 잠재적 리스크 요인
   - 중장기 전망

`, label))
	sb.WriteString(stockSchema)
	return models.Prompt{System: models.AnalystSystemRole, Text: sb.String()}
}

// BuildETFPrompt renders the analysis request for one ETF, comparing
// against the theme average when one is given.
func BuildETFPrompt(e models.ETF, avg *models.ThemeAverage, style Style) models.Prompt {
	var base models.ThemeAverage
	if avg != nil {
		base = *avg
	}
	label := style.InstrumentLabel()

	holdings := unknown
	if len(e.TopHoldings) > 0 {
		holdings = strings.Join(e.TopHoldings, ", ")
	}
	leveraged := "아니오"
	if e.IsLeveraged {
		leveraged = "예"
	}

	var sb strings.Builder
	sb.WriteString("안녕하세요! 당신은 ETF 분석에 전문성을 갖춘 투자 애널리스트입니다. 아래 주어진 ETF 정보와 지침에 따라 전문적인 분석 보고서를 작성해주세요.\n\n")
	sb.WriteString(fmt.Sprintf("분석 대상 ETF: %s (%s)\n%s\n", e.Ticker, e.Name, rule))
	sb.WriteString("• 유형: ETF\n")
	sb.WriteString(fmt.Sprintf("• 테마/섹터: %s\n", orUnknown(e.Theme)))
	sb.WriteString(fmt.Sprintf("• 자산 규모: %s%s\n", formatAUM(e.AUM), compareClause("테마", e.AUM/1000, base.AUM/1000, "$%.2fB")))
	sb.WriteString(fmt.Sprintf("• 현재가: %s\n", numberOrUnknown(e.Price, "$%.2f")))
	sb.WriteString(fmt.Sprintf("• 비용 비율: %s%s\n", numberOrUnknown(e.ExpenseRatio, "%.2f%%"), compareClause("테마", e.ExpenseRatio, base.ExpenseRatio, "%.2f%%")))
	sb.WriteString(fmt.Sprintf("• 배당 수익률: %s%s\n", numberOrUnknown(e.DividendYield, "%.2f%%"), compareClause("테마", e.DividendYield, base.DividendYield, "%.2f%%")))
	sb.WriteString(fmt.Sprintf("• 레버리지: %s\n", leveraged))
	sb.WriteString(fmt.Sprintf("• 상위 종목: %s\n\n", holdings))

	sb.WriteString(fmt.Sprintf("투자 성향: %s\n%s\n", label, rule))
	sb.WriteString(etfGuidelines(style))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf(`분석 보고서는 다음과 같은 구조로 작성해 주세요:
1. 요약: ETF의 전반적인 특징과 투자 가치를 간략히 설명

2. 구성 및 전략 분석:
   - ETF의 투자 전략 및 구성 특징
   - 주요 편입 종목 및 섹터 비중 분석

3. 비용 및 배당 분석:
   - 비용 비율 및 배당 수익률 평가
   - 유사 ETF 대비 비용 효율성

4. 기술적 분석:
   - 이동평균선 상황
   - 모멘텀 및 추세 분석

5. 투자 추천:
   - 적정 매수 가격대 ($가격~$가격 형식)
   - 매도 고려 시점
   - %[1]s 투자자에게 적합한 투자 전략

6. 종합 평가:
   - %[1]s 투자자에게 이 ETF가 적합한지 명확히 평가
   - 잠재적 리스크 요인
   - 중장기 전망

`, label))
	sb.WriteString(etfSchema)
	return models.Prompt{System: models.AnalystSystemRole, Text: sb.String()}
}

func stockGuidelines(style Style, s models.Stock, base models.SectorAverage) string {
	per := higherLower(s.PER, base.PER)
	roe := higherLower(s.ROE, base.ROE)
	div := higherLower(s.DividendYield, base.DividendYield)

	lines := []string{"성향 기반 분석 지침:"}
	switch style {
	case StyleConservative:
		lines = append(lines,
			"• 안정형 투자자에게 적합한 종목인지 평가해주세요",
			"• PER이 섹터 평균보다 "+per+" - 안정형 투자자에게는 적정 밸류에이션이 중요합니다",
			"• ROE가 섹터 평균보다 "+roe+" - 안정적인 수익성이 중요합니다",
			"• 배당률이 섹터 평균보다 "+div+" - 안정적인 배당 수익도 고려해주세요",
			"• 변동성과 리스크가 낮은지 특히 강조해서 평가해주세요",
			"• 베타가 1보다 낮으면 시장 대비 변동성이 낮다는 의미이니 이를 해석해주세요",
			"• 매수/매도 전략은 안정적인 장기 보유를 전제로 제안해주세요")
	case StyleGrowth:
		lines = append(lines,
			"• 성장형 투자자에게 적합한 종목인지 평가해주세요",
			"• PER이 섹터 평균보다 "+per+" - 성장 가능성이 있다면 높은 PER도 긍정적으로 볼 수 있습니다",
			"• ROE가 섹터 평균보다 "+roe+" - 높은 자본수익률은 성장 기업의 중요한 지표입니다",
			"• 배당률이 섹터 평균보다 "+div+" - 성장형 투자자는 배당보다 주가 상승 가능성에 관심이 있습니다",
			"• 회사의 미래 성장 가능성과 혁신성을 강조해서 평가해주세요",
			"• 시장 트렌드와 미래 산업 전망을 고려해 분석해주세요")
	case StyleDividend:
		lines = append(lines,
			"• 배당형 투자자에게 적합한 종목인지 평가해주세요",
			"• PER이 섹터 평균보다 "+per+" - 밸류에이션 대비 배당 수익률이 중요합니다",
			"• ROE가 섹터 평균보다 "+roe+" - 안정적인 수익성이 꾸준한 배당의 원천입니다",
			"• 배당률이 섹터 평균보다 "+div+" - 배당률이 높고 지속가능한지가 핵심입니다",
			"• 배당 성장률, 배당 지속성, 페이아웃 비율을 심층 분석해주세요",
			"• 배당금 재투자에 따른 복리 효과를 고려한 장기 수익률도 계산해주세요")
	case StyleAggressive:
		lines = append(lines,
			"• 공격형 투자자에게 적합한 종목인지 평가해주세요",
			"• PER이 섹터 평균보다 "+per+" - 고성장 가능성이 있다면 높은 밸류에이션도 받아들일 수 있습니다",
			"• ROE가 섹터 평균보다 "+roe+" - 높은 자본수익률은 주가 상승 가능성을 시사합니다",
			"• 배당률이 섹터 평균보다 "+div+" - 공격형 투자자는 배당보다 자본이득에 관심이 많습니다",
			"• 단기적 모멘텀과 기술적 지표를 더 중요하게 다루어주세요",
			"• 기술적 분석을 통한 단기 매매 전략을 제시해주세요")
	default:
		lines = append(lines,
			"• 해당 종목의 전반적인 투자 가치를 평가해주세요",
			"• PER, ROE, 배당률 등의 지표를 종합적으로 분석해주세요",
			"• 해당 종목이 어떤 유형의 투자자에게 적합한지 알려주세요",
			"• 현재 주가 대비 매수/매도 타이밍을 제안해주세요")
	}
	return strings.Join(lines, "\n")
}

func etfGuidelines(style Style) string {
	lines := []string{"성향 기반 분석 지침:"}
	switch style {
	case StyleConservative:
		lines = append(lines,
			"• 안정형 투자자에게 적합한 ETF인지 평가해주세요",
			"• 변동성이 낮고 안정적인 수익을 제공하는지 분석해주세요",
			"• 비용 비율이 장기 보유에 미치는 영향을 평가해주세요",
			"• 매수/매도 전략은 안정적인 장기 보유를 전제로 제안해주세요")
	case StyleGrowth:
		lines = append(lines,
			"• 성장형 투자자에게 적합한 ETF인지 평가해주세요",
			"• 성장 가능성이 높은 산업에 투자하는지 분석해주세요",
			"• 매수/매도 전략은 중장기적 성장을 목표로 제안해주세요")
	case StyleDividend:
		lines = append(lines,
			"• 배당형 투자자에게 적합한 ETF인지 평가해주세요",
			"• 배당 수익률, 배당 성장률, 배당 지속성을 심층 분석해주세요",
			"• 배당 지급 주기와 재투자 효과를 평가해주세요",
			"• 매수/매도 전략은 장기적인 배당 수익을 목표로 제안해주세요")
	case StyleAggressive:
		lines = append(lines,
			"• 공격형 투자자에게 적합한 ETF인지 평가해주세요",
			"• 초과 수익 가능성과 그에 따른 리스크를 분석해주세요",
			"• 레버리지나 특정 산업에 집중된 ETF라면 위험도를 설명해주세요",
			"• 매수/매도 전략은 단기~중기 성과를 목표로 제안해주세요")
	default:
		lines = append(lines,
			"• 해당 ETF의 전반적인 투자 가치를 평가해주세요",
			"• ETF의 구성, 전략, 비용을 종합적으로 분석해주세요",
			"• 해당 ETF가 어떤 유형의 투자자에게 적합한지 알려주세요")
	}
	return strings.Join(lines, "\n")
}

const stockSchema = `응답 형식은 반드시 아래 JSON 구조를 유지해주세요:
{
  "summary": "종목 요약",
  "financials": "재무 지표 분석",
  "sectorComparison": "섹터 평균 대비 분석",
  "styleFit": {
    "안정형": boolean,
    "성장형": boolean,
    "단타형": boolean
  },
  "technicals": {
    "movingAvg": "이동평균선 분석",
    "macd": "MACD 분석",
    "rsi": "RSI 분석"
  },
  "recommendation": {
    "buyRange": "$가격~$가격",
    "sellSuggestion": "매도 고려 시점"
  },
  "conclusion": "종합 평가"
}

주의: 각 필드에는 분석 내용을 자세히 담아주세요. 가능한 많은 수치와 데이터를 포함해서 분석해주세요.
`

const etfSchema = `응답 형식은 반드시 아래 JSON 구조를 유지해주세요:
{
  "summary": "ETF 요약",
  "composition": "구성 및 전략 분석",
  "costs": "비용 및 배당 분석",
  "styleFit": {
    "안정형": boolean,
    "성장형": boolean,
    "단타형": boolean
  },
  "technicals": {
    "movingAvg": "이동평균선 분석",
    "momentum": "모멘텀 분석",
    "trend": "추세 분석"
  },
  "recommendation": {
    "buyRange": "$가격~$가격",
    "sellSuggestion": "매도 고려 시점"
  },
  "conclusion": "종합 평가"
}

주의: 각 필드에는 분석 내용을 자세히 담아주세요.
`
