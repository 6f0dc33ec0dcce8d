package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purunsolnp/sonagi-stock/internal/models"
)

func TestParseInstrument_SummaryAndConclusion(t *testing.T) {
	r := ParseInstrument("요약\n분석 내용입니다\n결론\n최종 의견입니다", "aapl", models.SubjectStock)

	require.NotNil(t, r.Instrument)
	assert.Equal(t, "AAPL", r.SubjectID)
	assert.Equal(t, models.SubjectStock, r.SubjectType)
	assert.Equal(t, "분석 내용입니다", r.Instrument.Summary)
	assert.Equal(t, "최종 의견입니다", r.Instrument.Conclusion)
	assert.Empty(t, r.Instrument.Financials)
	assert.Empty(t, r.Instrument.Industry)
	assert.Equal(t, models.StyleFit{}, r.Instrument.StyleFit)
	assert.Equal(t, models.Technicals{}, r.Instrument.Technicals)
	assert.Equal(t, models.Recommendation{}, r.Instrument.Recommendation)
	assert.Empty(t, r.Error)
}

func TestParseInstrument_BuyRangeFromSentence(t *testing.T) {
	r := ParseInstrument("매수 구간은 $170~$175 입니다", "AAPL", models.SubjectStock)
	assert.Equal(t, "$170~$175", r.Instrument.Recommendation.BuyRange)
}

func TestParseInstrument_BuyRangeOverridesFreeText(t *testing.T) {
	text := strings.Join([]string{
		"매수 포인트",
		"조정 시 분할 매수를 권합니다",
		"적정 매수 가격은 $182.5 - $190 입니다",
		"추가 설명",
	}, "\n")
	r := ParseInstrument(text, "AAPL", models.SubjectStock)
	assert.Equal(t, "$182.5 - $190", r.Instrument.Recommendation.BuyRange)

	r = ParseInstrument("매수 타이밍\n조정 시 분할 매수\n실적 발표 이후", "AAPL", models.SubjectStock)
	assert.Equal(t, "조정 시 분할 매수 실적 발표 이후", r.Instrument.Recommendation.BuyRange)
}

func TestParseInstrument_CanonicalRoundTrip(t *testing.T) {
	text := strings.Join([]string{
		"## 1. 종목 요약",
		"애플은 견고한 생태계를 가진 기업입니다.",
		"서비스 매출이 성장하고 있습니다.",
		"## 2. 재무 분석",
		"PER 34.2로 섹터 평균보다 높습니다.",
		"## 3. 산업 분석",
		"스마트폰 시장 점유율이 안정적입니다.",
		"## 4. 적합한 투자자",
		"안정형 투자자에게 적합합니다.",
		"성장형 투자자에게도 추천합니다.",
		"단타형 투자자에게는 적합하지 않습니다.",
		"## 5. 기술적 분석",
		"이동평균선: 50일선이 200일선 위에 있습니다.",
		"MACD: 시그널선 상향 돌파.",
		"RSI: 58로 중립 구간입니다.",
		"## 6. 매수 구간",
		"$170~$175",
		"## 7. 매도 포인트",
		"$230 돌파 시 일부 차익 실현.",
		"## 8. 결론",
		"장기 보유 관점에서 매력적입니다.",
	}, "\n")

	r := ParseInstrument(text, "AAPL", models.SubjectStock)
	a := r.Instrument
	assert.Equal(t, "애플은 견고한 생태계를 가진 기업입니다. 서비스 매출이 성장하고 있습니다.", a.Summary)
	assert.Equal(t, "PER 34.2로 섹터 평균보다 높습니다.", a.Financials)
	assert.Equal(t, "스마트폰 시장 점유율이 안정적입니다.", a.Industry)
	assert.Equal(t, models.StyleFit{Conservative: true, Growth: true}, a.StyleFit)
	assert.Equal(t, "이동평균선: 50일선이 200일선 위에 있습니다.", a.Technicals.MovingAverage)
	assert.Equal(t, "MACD: 시그널선 상향 돌파.", a.Technicals.MACD)
	assert.Equal(t, "RSI: 58로 중립 구간입니다.", a.Technicals.RSI)
	assert.Equal(t, "$170~$175", a.Recommendation.BuyRange)
	assert.Equal(t, "$230 돌파 시 일부 차익 실현.", a.Recommendation.SellSuggestion)
	assert.Equal(t, "장기 보유 관점에서 매력적입니다.", a.Conclusion)
	assert.Empty(t, r.Error)
}

func TestParseInstrument_MACDNotMovingAverage(t *testing.T) {
	r := ParseInstrument("기술적 분석\nMACD 골든크로스 발생", "X", models.SubjectStock)
	assert.Equal(t, "MACD 골든크로스 발생", r.Instrument.Technicals.MACD)
	assert.Empty(t, r.Instrument.Technicals.MovingAverage)
}

func TestParseInstrument_InlineHeadingContent(t *testing.T) {
	r := ParseInstrument("**요약**: 배당 성장주입니다\n**결론**: 매수 의견", "KO", models.SubjectStock)
	assert.Equal(t, "배당 성장주입니다", r.Instrument.Summary)
	assert.Equal(t, "매수 의견", r.Instrument.Conclusion)
}

func TestParseInstrument_ContentMentioningKeywordMidLine(t *testing.T) {
	text := "기술적 분석\nRSI 72로 과매수 구간에 진입했습니다\n결론\n관망"
	r := ParseInstrument(text, "NVDA", models.SubjectStock)
	assert.Equal(t, "RSI 72로 과매수 구간에 진입했습니다", r.Instrument.Technicals.RSI)
	assert.Empty(t, r.Instrument.Recommendation.BuyRange)
}

func TestParseInstrument_StyleFitNegation(t *testing.T) {
	r := ParseInstrument("투자 스타일\n안정형: 적합, 단타형: 부적합", "X", models.SubjectStock)
	assert.True(t, r.Instrument.StyleFit.Conservative)
	assert.False(t, r.Instrument.StyleFit.Daytrading)
}

func TestParseInstrument_DecoratedHeadings(t *testing.T) {
	text := strings.Join([]string{
		"### 📈 기술적 분석",
		"- RSI: 61로 중립 구간입니다.",
		"### 💡 AAPL 투자 스타일 적합성",
		"- 성장형: 추천",
		"#### 🔍 이번 분기 결론",
		"보유 유지",
	}, "\n")
	r := ParseInstrument(text, "AAPL", models.SubjectStock)
	a := r.Instrument
	assert.Equal(t, "- RSI: 61로 중립 구간입니다.", a.Technicals.RSI)
	assert.Equal(t, models.StyleFit{Growth: true}, a.StyleFit)
	assert.Equal(t, "보유 유지", a.Conclusion)
}

func TestParseInstrument_StyleFitNegationAcrossSentences(t *testing.T) {
	text := "적합한 투자자\n안정형 투자자에게 적합합니다. 단타형 투자자에게는 적합하지 않습니다."
	r := ParseInstrument(text, "AAPL", models.SubjectStock)
	assert.True(t, r.Instrument.StyleFit.Conservative)
	assert.False(t, r.Instrument.StyleFit.Daytrading)

	r = ParseInstrument("투자 스타일\n성장형에 추천합니다 단타형은 적합하지 않습니다", "AAPL", models.SubjectStock)
	assert.True(t, r.Instrument.StyleFit.Growth)
	assert.False(t, r.Instrument.StyleFit.Daytrading)
}

func TestParseInstrument_SellPriceUnderRecommendation(t *testing.T) {
	text := "5. 투자 추천:\n- 적정 매수 가격대: $170~$175\n- 매도 고려 시점: $210 돌파 시"
	r := ParseInstrument(text, "AAPL", models.SubjectStock)
	assert.Equal(t, "$170~$175", r.Instrument.Recommendation.BuyRange)
	assert.Contains(t, r.Instrument.Recommendation.SellSuggestion, "$210")
}

func TestParseInstrument_BuyRangeKeepsFirstPrice(t *testing.T) {
	text := "매수 구간\n1차 매수: $150~$155\n손절 기준 $140 이탈"
	r := ParseInstrument(text, "AAPL", models.SubjectStock)
	assert.Equal(t, "$150~$155", r.Instrument.Recommendation.BuyRange)
}

func TestParseInstrument_RegexFallback(t *testing.T) {
	// keywords inside sentences never switch sections, so the fallback fires
	text := "이번 보고서의 요약 입니다\n견조한 실적\n\n# 기타\n최종 결론을 정리합니다\n보유 권장"
	r := ParseInstrument(text, "X", models.SubjectStock)
	assert.Equal(t, "견조한 실적", r.Instrument.Summary)
	assert.Equal(t, "보유 권장", r.Instrument.Conclusion)
}

func TestParseInstrument_JSONTier(t *testing.T) {
	text := "```json\n" + `{
  "summary": "ETF 요약입니다",
  "composition": "기술주 중심 구성",
  "costs": "보수 0.20%",
  "styleFit": {"안정형": false, "성장형": true, "단타형": "true"},
  "technicals": {"movingAvg": "50일선 지지", "momentum": "강세", "trend": "상승 추세"},
  "recommendation": {"buyRange": "매수 가격대는 $480~$500", "sellSuggestion": "$560 부근"},
  "conclusion": "장기 보유 추천"
}` + "\n```"
	r := ParseInstrument(text, "qqq", models.SubjectETF)
	a := r.Instrument
	assert.Equal(t, "ETF 요약입니다", a.Summary)
	assert.Equal(t, "보수 0.20%", a.Financials)
	assert.Equal(t, "기술주 중심 구성", a.Industry)
	assert.Equal(t, models.StyleFit{Growth: true, Daytrading: true}, a.StyleFit)
	assert.Equal(t, "강세", a.Technicals.Momentum)
	assert.Equal(t, "상승 추세", a.Technicals.Trend)
	assert.Equal(t, "$480~$500", a.Recommendation.BuyRange)
	assert.Equal(t, "장기 보유 추천", a.Conclusion)
	assert.Equal(t, text, r.RawText)
}

func TestParseInstrument_InvalidJSONFallsBackToScan(t *testing.T) {
	r := ParseInstrument("요약\n{broken json\n결론\n끝", "X", models.SubjectStock)
	assert.Equal(t, "{broken json", r.Instrument.Summary)
	assert.Equal(t, "끝", r.Instrument.Conclusion)
}

func TestParseInstrument_TotalFunction(t *testing.T) {
	inputs := []string{
		"",
		"   \n\t\n",
		"\x00\x01\xff\xfe garbage",
		"{}",
		"}{",
		strings.Repeat("매수 구간\n", 50),
		"# 요약",
	}
	for _, in := range inputs {
		r := ParseInstrument(in, "X", models.SubjectETF)
		require.NotNil(t, r, "input %q", in)
		require.NotNil(t, r.Instrument, "input %q", in)
		assert.Equal(t, in, r.RawText)
		assert.Equal(t, models.SubjectETF, r.SubjectType)
		assert.False(t, r.CreatedAt.IsZero())
	}

	r := ParseInstrument("", "X", models.SubjectStock)
	assert.Equal(t, NoSectionsNote, r.Error)
}
