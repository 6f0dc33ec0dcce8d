package prompt

import (
	"fmt"
	"math"
	"strings"

	"github.com/Rhymond/go-money"

	"github.com/purunsolnp/sonagi-stock/internal/models"
)

// HoldingLine renders one holding as a single summary line.
func HoldingLine(item models.PortfolioItem) string {
	var sb strings.Builder
	sb.WriteString(item.Ticker)
	if item.IsETF {
		sb.WriteString(" (ETF)")
	}
	sb.WriteString(fmt.Sprintf(": 평균단가 $%.2f, 현재가 $%.2f, 수익률 %s%%",
		item.AvgPrice, item.CurrentPrice, signed(item.ReturnRate, 2)))
	if item.HasDividend {
		sb.WriteString(fmt.Sprintf(", 배당률 %.1f%%", item.DividendYield))
	}
	sb.WriteString(fmt.Sprintf(", 보유 수량 %d주", item.Quantity))
	return sb.String()
}

// FormatKRW renders a won amount with grouping, e.g. ₩1,000,000.
func FormatKRW(amount float64) string {
	return money.New(int64(math.Round(amount)), money.KRW).Display()
}

// BuildPortfolioPrompt renders the portfolio review request. A cash amount
// of zero or less omits both the cash line and the cash section.
func BuildPortfolioPrompt(items []models.PortfolioItem, style Style, cash float64) (models.Prompt, error) {
	if len(items) == 0 {
		return models.Prompt{}, models.Validationf("portfolio has no items")
	}
	label := style.PortfolioLabel()
	withCash := cash > 0

	var sb strings.Builder
	sb.WriteString("사용자의 포트폴리오는 다음과 같습니다:\n\n")
	for _, item := range items {
		sb.WriteString(HoldingLine(item))
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("\n사용자 투자성향: %s\n", label))
	if withCash {
		sb.WriteString(fmt.Sprintf("예수금: %s\n", FormatKRW(cash)))
	}

	sb.WriteString(`
위 데이터를 바탕으로 아래 항목을 분석해주세요:

1. 포트폴리오 종합 분석:
   - 전체 구성 평가 (업종/섹터 비중, 수익률, 리스크 등)
   - 종목간 분산 정도와 시너지 효과 분석
   - 투자 성향과의 적합도 평가

2. 투자 비중 분석:
   - 과대 비중 종목 (ticker 형식으로 나열)
   - 과소 비중 종목 (ticker 형식으로 나열)

3. 리밸런싱 전략:
   - 포트폴리오 최적화를 위한 리밸런싱 제안
   - 비중 조정이 필요한 종목과 목표 비중

4. 리스크 분석:
   - 현재 포트폴리오의 주요 리스크 요인
   - 시장 상황별 대응 전략
`)
	if withCash {
		sb.WriteString(`
5. 예수금 투자 제안:
   - 추가 매수 추천 종목 (기존 보유 종목 중)
   - 신규 추천 종목 (다양성 향상을 위한 제안)
   - 투자 성향에 맞는 자산 배분 비율
`)
	}

	sb.WriteString(`
분석 결과를 다음 제목으로 구조화하여 제시해주세요:
- 요약 분석 (전체 포트폴리오에 대한 종합적인 평가)
- 과대 비중 종목: ticker만 쉼표로 구분
- 과소 비중 종목: ticker만 쉼표로 구분
- 리밸런싱 전략 (구체적인 제안)
- 리스크 분석 (주요 리스크와 대응 방안)
`)
	if withCash {
		sb.WriteString("- 예수금 투자 제안 (구체적인 종목 추천과 비율)\n")
	}
	sb.WriteString(fmt.Sprintf("\n투자 성향(%s)을 고려하여 맞춤형 분석을 제공해주세요.\n", label))

	return models.Prompt{System: models.AnalystSystemRole, Text: sb.String()}, nil
}

// BuildCashPrompt renders a standalone request for deploying cash.
func BuildCashPrompt(items []models.PortfolioItem, cash float64, style Style) (models.Prompt, error) {
	if len(items) == 0 {
		return models.Prompt{}, models.Validationf("portfolio has no items")
	}
	if cash <= 0 {
		return models.Prompt{}, models.Validationf("cash amount must be positive")
	}
	label := style.PortfolioLabel()

	var sb strings.Builder
	sb.WriteString("사용자의 포트폴리오는 다음과 같습니다:\n\n")
	for _, item := range items {
		sb.WriteString(HoldingLine(item))
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("\n사용자 투자성향: %s\n예수금: %s\n", label, FormatKRW(cash)))
	sb.WriteString(`
위 데이터를 바탕으로 다음 항목을 분석해주세요:

1. 예수금 투자 추천:
   - 추가 매수하면 좋을 기존 보유 종목과 각각의 비중(%)
   - 다양성 향상을 위한 신규 종목 추천과 각각의 비중(%)
   - 투자 성향에 맞는 자산 배분 제안 (주식/ETF/채권 등)

2. 투자 제안의 근거:
   - 각 추천 종목에 대한 간략한 선정 이유
   - 현재 포트폴리오와의 시너지 효과
   - 추천 종목의 예상 리스크와 수익 가능성
`)
	sb.WriteString(fmt.Sprintf("\n투자 성향(%s)을 고려하여 맞춤형 제안을 제공해주세요.\n", label))
	sb.WriteString("특히 안정형 투자자는 리스크 관리를, 공격형 투자자는 성장 가능성을 중시하여 추천해주세요.\n")

	return models.Prompt{System: models.AnalystSystemRole, Text: sb.String()}, nil
}
